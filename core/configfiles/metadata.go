package configfiles

import "time"

// Metadata describes a stored config file. It is persisted twice: in the
// SQLite index for queries and as a JSON sidecar next to the file itself,
// so the storage directory stays self-describing.
type Metadata struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	Author           string    `json:"author,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	OriginalFilename string    `json:"original_filename"`
	Size             int64     `json:"size"`
	UploadedAt       time.Time `json:"uploaded_at"`
	Downloads        int64     `json:"downloads"`
}
