package model

import "github.com/google/uuid"

// SearchResult represents a chunk returned by a similarity search.
// Distance is the cosine distance to the query embedding, lower = more similar.
type SearchResult struct {
	ChunkID     string    `json:"chunk_id"`
	DocumentRID uuid.UUID `json:"document_rid"`
	Text        string    `json:"text"`
	ChunkIndex  int       `json:"chunk_index"`
	TotalChunks int       `json:"total_chunks"`
	Metadata    Metadata  `json:"metadata,omitempty"`
	Distance    float64   `json:"distance"`
}

// RetrievalTrace captures what a single retrieval did, for logging and tuning.
// Results holds the full ranked search results; Included is the subset that
// fit the context budget.
type RetrievalTrace struct {
	ResultCount       int            `json:"result_count"`
	KeywordMatches    []string       `json:"keyword_matches"`
	Results           []SearchResult `json:"results,omitempty"`
	Included          []SearchResult `json:"included"`
	TotalContextChars int            `json:"total_context_chars"`
}

// QueryResponse is the result of a full question/answer cycle.
type QueryResponse struct {
	Answer         string          `json:"answer"`
	ConversationID uuid.UUID       `json:"conversation_id"`
	EntryID        string          `json:"entry_id,omitempty"`
	Trace          *RetrievalTrace `json:"trace,omitempty"`
	ResponseTimeMS float64         `json:"response_time_ms"`
}
