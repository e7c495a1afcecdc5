package configfiles

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/BuyNemesis/nemesis-backend/core/ccc/logging"
)

// StoreRequest carries an incoming config file and its metadata fields
type StoreRequest struct {
	FileName    string
	Data        []byte
	Name        string
	Description string
	Author      string
	Tags        []string
}

// StorageManager coordinates the metadata index and the disk file store
type StorageManager interface {
	// StoreConfig persists a new config file and returns its metadata
	StoreConfig(ctx context.Context, request StoreRequest) (*Metadata, error)

	// GetConfig retrieves metadata for a config. Returns nil, nil when the
	// config does not exist.
	GetConfig(ctx context.Context, id string) (*Metadata, error)

	// DownloadConfig returns the file bytes and metadata for a config and
	// bumps its download counter. Returns nil, nil, nil when the config
	// does not exist.
	DownloadConfig(ctx context.Context, id string) (*Metadata, []byte, error)

	// ListConfigs retrieves metadata for all stored configs, newest first
	ListConfigs(ctx context.Context) ([]*Metadata, error)

	// DeleteConfig removes a config file, its sidecar and its metadata
	DeleteConfig(ctx context.Context, id string) error
}

// storageManager implements StorageManager
type storageManager struct {
	logger    logging.Logger
	repo      MetadataRepository
	fileStore FileStore
}

// NewStorageManager creates a new storage manager
func NewStorageManager(logger logging.Logger, repo MetadataRepository, fileStore FileStore) StorageManager {
	if logger == nil {
		logger = logging.NopLogger
	}

	return &storageManager{
		logger:    logger,
		repo:      repo,
		fileStore: fileStore,
	}
}

// StoreConfig persists a new config file and returns its metadata
func (s *storageManager) StoreConfig(ctx context.Context, request StoreRequest) (*Metadata, error) {
	name := request.Name
	if name == "" {
		name = request.FileName
	}

	meta := &Metadata{
		ID:               uuid.NewString(),
		Name:             name,
		Description:      request.Description,
		Author:           request.Author,
		Tags:             request.Tags,
		OriginalFilename: request.FileName,
		Size:             int64(len(request.Data)),
		UploadedAt:       time.Now().UTC(),
		Downloads:        0,
	}

	if err := s.fileStore.Write(meta.ID, request.Data, meta); err != nil {
		s.logger.Error("failed to write config file", "error", err, "id", meta.ID)
		return nil, err
	}

	if err := s.repo.Add(ctx, meta); err != nil {
		s.logger.Error("failed to index config metadata", "error", err, "id", meta.ID)
		// Don't leave an unindexed file behind
		if cleanupErr := s.fileStore.Delete(meta.ID); cleanupErr != nil {
			s.logger.Warn("failed to clean up config file after index failure", "error", cleanupErr, "id", meta.ID)
		}
		return nil, err
	}

	s.logger.Info("stored config", "id", meta.ID, "name", meta.Name, "size", meta.Size)
	return meta, nil
}

// GetConfig retrieves metadata for a config
func (s *storageManager) GetConfig(ctx context.Context, id string) (*Metadata, error) {
	return s.repo.GetByID(ctx, id)
}

// DownloadConfig returns the file bytes for a config and bumps its counter
func (s *storageManager) DownloadConfig(ctx context.Context, id string) (*Metadata, []byte, error) {
	meta, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if meta == nil {
		return nil, nil, nil
	}

	data, err := s.fileStore.Read(id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config %s: %w", id, err)
	}

	downloads, err := s.repo.IncrementDownloads(ctx, id)
	if err != nil {
		// The download itself succeeded; a stale counter is not worth failing over
		s.logger.Warn("failed to increment download counter", "error", err, "id", id)
	} else {
		meta.Downloads = downloads
	}

	return meta, data, nil
}

// ListConfigs retrieves metadata for all stored configs
func (s *storageManager) ListConfigs(ctx context.Context) ([]*Metadata, error) {
	return s.repo.List(ctx)
}

// DeleteConfig removes a config file, its sidecar and its metadata
func (s *storageManager) DeleteConfig(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.fileStore.Delete(id); err != nil {
		s.logger.Warn("failed to delete config file from disk", "error", err, "id", id)
	}

	s.logger.Info("deleted config", "id", id)
	return nil
}
