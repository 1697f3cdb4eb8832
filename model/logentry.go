package model

import "time"

// PreviewLength is the number of characters kept in a logged chunk preview
const PreviewLength = 150

// LogEntry is one recorded retrieval+answer cycle. Entries are immutable
// once written and are either fully written or not written at all.
type LogEntry struct {
	EntryID   string        `json:"entry_id"`
	Timestamp time.Time     `json:"timestamp"`
	Query     QueryInfo     `json:"query"`
	Models    ModelInfo     `json:"models"`
	Retrieval RetrievalInfo `json:"retrieval"`
	Response  ResponseInfo  `json:"response"`
	Metadata  Metadata      `json:"metadata,omitempty"`
}

// QueryInfo identifies the question and its document scope
type QueryInfo struct {
	Question       string `json:"question"`
	FileID         string `json:"file_id"` // Document RID, or "all" for unscoped queries
	FileName       string `json:"file_name,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ModelInfo records which models produced the embeddings and the answer
type ModelInfo struct {
	EmbeddingModel string `json:"embedding_model"`
	LLMProvider    string `json:"llm_provider"`
	LLMModel       string `json:"llm_model"`
}

// RetrievalInfo captures the retrieval stats of one cycle
type RetrievalInfo struct {
	VectorResultsCount int              `json:"vector_results_count"`
	KeywordMatches     []string         `json:"keyword_matches"`
	KeywordMatchCount  int              `json:"keyword_match_count"`
	TotalContextChars  int              `json:"total_context_chars"`
	TopChunks          []RetrievedChunk `json:"top_chunks"`
}

// RetrievedChunk is one ranked chunk as recorded in the log
type RetrievedChunk struct {
	Rank        int      `json:"rank"`
	ChunkID     string   `json:"chunk_id"`
	Distance    float64  `json:"distance"`
	TextPreview string   `json:"text_preview"`
	TextFull    string   `json:"text_full"`
	TextLength  int      `json:"text_length"`
	Metadata    Metadata `json:"metadata,omitempty"`
}

// ResponseInfo records the generated answer and timing
type ResponseInfo struct {
	Answer         string  `json:"answer"`
	AnswerLength   int     `json:"answer_length"`
	ResponseTimeMS float64 `json:"response_time_ms"`
}

// NewRetrievedChunk builds the logged form of a ranked search result.
// Rank is 1-based.
func NewRetrievedChunk(rank int, result SearchResult) RetrievedChunk {
	preview := result.Text
	if len(preview) > PreviewLength {
		preview = preview[:PreviewLength] + "..."
	}
	return RetrievedChunk{
		Rank:        rank,
		ChunkID:     result.ChunkID,
		Distance:    result.Distance,
		TextPreview: preview,
		TextFull:    result.Text,
		TextLength:  len(result.Text),
		Metadata:    result.Metadata,
	}
}

// LogFilters selects log entries in a search. Zero values mean "no filter".
type LogFilters struct {
	QuestionContains string  `json:"question_contains,omitempty"`
	FileID           string  `json:"file_id,omitempty"`
	MinResponseTime  float64 `json:"min_response_time,omitempty"`
	Date             string  `json:"date,omitempty"` // "2006-01-02"
}

// Statistics aggregates one day's recorded queries
type Statistics struct {
	TotalQueries      int        `json:"total_queries"`
	AvgResponseTimeMS float64    `json:"avg_response_time_ms"`
	MinResponseTimeMS float64    `json:"min_response_time_ms"`
	MaxResponseTimeMS float64    `json:"max_response_time_ms"`
	AvgContextSize    float64    `json:"avg_context_size"`
	ModelsUsed        ModelsUsed `json:"models_used"`
}

// ModelsUsed lists the distinct model identifiers observed in a day
type ModelsUsed struct {
	Embedding []string `json:"embedding"`
	LLM       []string `json:"llm"`
}
