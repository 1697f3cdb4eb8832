package model

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Document represents a source document registered in the index
type Document struct {
	ID         int64     `json:"id"`
	RID        uuid.UUID `json:"rid"`
	Name       string    `json:"name"` // Display name shown to users
	Source     string    `json:"source,omitempty"`
	Content    string    `json:"content,omitempty" db:"-"` // Temporary field for processing, not stored in DB
	ChunkCount int       `json:"chunk_count"`
	Metadata   Metadata  `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewDocumentFromFile reads a file and creates a Document with the file content.
// The name defaults to the filename without extension, and source to the file path.
// The content is expected to be already-converted plain text (binary formats are
// handled by an external converter before ingestion).
func NewDocumentFromFile(filePath string, metadata Metadata) (*Document, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	filename := filepath.Base(filePath)
	name := filename[:len(filename)-len(filepath.Ext(filename))]
	if name == "" {
		name = filename
	}

	return &Document{
		Name:     name,
		Source:   filePath,
		Content:  string(content),
		Metadata: metadata,
	}, nil
}
