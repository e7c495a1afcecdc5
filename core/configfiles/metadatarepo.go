package configfiles

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/BuyNemesis/nemesis-backend/core/ccc/db"
)

// MetadataRepository defines the interface for CRUD operations on config metadata
type MetadataRepository interface {
	// GetByID retrieves metadata by config ID. Returns nil, nil when the
	// config does not exist.
	GetByID(ctx context.Context, id string) (*Metadata, error)

	// List retrieves all config metadata, newest first
	List(ctx context.Context) ([]*Metadata, error)

	// Add stores new metadata in the repository
	Add(ctx context.Context, meta *Metadata) error

	// Delete removes metadata by config ID
	Delete(ctx context.Context, id string) error

	// IncrementDownloads bumps the download counter and returns the new value
	IncrementDownloads(ctx context.Context, id string) (int64, error)
}

// SQLiteMetadataRepository implements MetadataRepository using SQLite
type SQLiteMetadataRepository struct {
	db *sql.DB
}

// NewSQLiteMetadataRepository creates a new SQLite-based MetadataRepository
func NewSQLiteMetadataRepository(database *sql.DB) (*SQLiteMetadataRepository, error) {
	repo := &SQLiteMetadataRepository{db: database}
	if err := repo.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return repo, nil
}

// createTables ensures that the required tables exist
func (r *SQLiteMetadataRepository) createTables() error {
	createConfigsTable := `
	CREATE TABLE IF NOT EXISTS configs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		author TEXT NOT NULL,
		tags TEXT NOT NULL,
		original_filename TEXT NOT NULL,
		size INTEGER NOT NULL,
		uploaded_at TEXT NOT NULL,
		downloads INTEGER NOT NULL DEFAULT 0
	);`

	_, err := r.db.Exec(createConfigsTable)
	return err
}

// GetByID retrieves metadata by config ID
func (r *SQLiteMetadataRepository) GetByID(ctx context.Context, id string) (*Metadata, error) {
	query := `
	SELECT id, name, description, author, tags, original_filename, size, uploaded_at, downloads
	FROM configs WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)

	meta, err := scanMetadata(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get config by ID: %w", err)
	}

	return meta, nil
}

// List retrieves all config metadata, newest first
func (r *SQLiteMetadataRepository) List(ctx context.Context) ([]*Metadata, error) {
	query := `
	SELECT id, name, description, author, tags, original_filename, size, uploaded_at, downloads
	FROM configs ORDER BY uploaded_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query configs: %w", err)
	}
	defer rows.Close()

	var metas []*Metadata
	for rows.Next() {
		meta, err := scanMetadata(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan config: %w", err)
		}
		metas = append(metas, meta)
	}

	return metas, rows.Err()
}

// Add stores new metadata in the repository
func (r *SQLiteMetadataRepository) Add(ctx context.Context, meta *Metadata) error {
	query := `
	INSERT INTO configs (id, name, description, author, tags, original_filename, size, uploaded_at, downloads)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		meta.ID, meta.Name, meta.Description, meta.Author, strings.Join(meta.Tags, ","),
		meta.OriginalFilename, meta.Size, db.TimeToString(meta.UploadedAt), meta.Downloads,
	)
	if err != nil {
		return fmt.Errorf("failed to add config: %w", err)
	}

	return nil
}

// Delete removes metadata by config ID
func (r *SQLiteMetadataRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM configs WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete config: %w", err)
	}

	return nil
}

// IncrementDownloads bumps the download counter and returns the new value
func (r *SQLiteMetadataRepository) IncrementDownloads(ctx context.Context, id string) (int64, error) {
	query := `UPDATE configs SET downloads = downloads + 1 WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return 0, fmt.Errorf("failed to increment downloads: %w", err)
	}

	var downloads int64
	row := r.db.QueryRowContext(ctx, `SELECT downloads FROM configs WHERE id = ?`, id)
	if err := row.Scan(&downloads); err != nil {
		return 0, fmt.Errorf("failed to read download count: %w", err)
	}

	return downloads, nil
}

// scanMetadata reads one metadata row using the given scan function
func scanMetadata(scan func(dest ...any) error) (*Metadata, error) {
	meta := &Metadata{}
	var tagsStr string
	var uploadedAtStr string

	err := scan(
		&meta.ID, &meta.Name, &meta.Description, &meta.Author, &tagsStr,
		&meta.OriginalFilename, &meta.Size, &uploadedAtStr, &meta.Downloads,
	)
	if err != nil {
		return nil, err
	}

	if tagsStr != "" {
		meta.Tags = strings.Split(tagsStr, ",")
	}

	meta.UploadedAt, err = db.StringToTime(uploadedAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse uploaded_at: %w", err)
	}

	return meta, nil
}
