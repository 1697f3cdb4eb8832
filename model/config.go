package model

import (
	"time"

	"github.com/google/uuid"
)

// QueryConfig represents configuration for a retrieval query
type QueryConfig struct {
	// Vector search parameters
	TopK int `json:"top_k"`

	// Context assembly
	MaxContextChars int `json:"max_context_chars"`

	// Document filtering, empty means search everything
	DocumentRIDs []uuid.UUID `json:"document_rids,omitempty"`

	// Bound on the external answer generation call
	GenerationTimeout time.Duration `json:"generation_timeout"`
}

// DefaultQueryConfig returns a sensible default configuration
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		TopK:              10,
		MaxContextChars:   20000,
		GenerationTimeout: 60 * time.Second,
	}
}
