package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Chunk represents a contiguous slice of a document's normalized text.
// StartPos/EndPos hold the character span [start, end) in the source text.
type Chunk struct {
	ID          int64     `json:"id"`
	DocumentID  int64     `json:"document_id"`
	DocumentRID uuid.UUID `json:"document_rid"`
	ChunkID     string    `json:"chunk_id"` // Deterministic: "<document rid>_chunk_<index>"
	Content     string    `json:"content"`
	Embedding   []float32 `json:"embedding,omitempty"`
	StartPos    int       `json:"start_pos"`
	EndPos      int       `json:"end_pos"`
	ChunkIndex  int       `json:"chunk_index"`
	TotalChunks int       `json:"total_chunks"`
	Metadata    Metadata  `json:"metadata,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	// Results
	Distance float64 `json:"distance,omitempty"`
}

// ChunkIDFor derives the stable chunk identifier from a document RID and
// the chunk's ordinal index.
func ChunkIDFor(documentRID uuid.UUID, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentRID.String(), index)
}
