package retrieval

import (
	"fmt"
	"strings"

	"github.com/docuquery/docuquery/database"
	"github.com/docuquery/docuquery/model"
)

// Engine turns a question embedding into a ranked, budget-limited context
type Engine struct {
	chunks *database.ChunksDBHandler
}

// NewEngine creates a new retrieval engine
func NewEngine(chunks *database.ChunksDBHandler) *Engine {
	return &Engine{
		chunks: chunks,
	}
}

// VectorRetrieve performs vector similarity search scoped to the configured
// documents. Results are ranked by ascending distance and never exceed TopK.
// Index failures surface as model.ErrRetrieval, they are never converted
// into an empty result.
func (e *Engine) VectorRetrieve(embedding []float32, config *model.QueryConfig) ([]model.SearchResult, error) {
	chunks, err := e.chunks.SelectChunksBySimilarity(embedding, config.TopK, config.DocumentRIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrRetrieval, err)
	}

	results := make([]model.SearchResult, len(chunks))
	for i, chunk := range chunks {
		results[i] = model.SearchResult{
			ChunkID:     chunk.ChunkID,
			DocumentRID: chunk.DocumentRID,
			Text:        chunk.Content,
			ChunkIndex:  chunk.ChunkIndex,
			TotalChunks: chunk.TotalChunks,
			Metadata:    chunk.Metadata,
			Distance:    chunk.Distance,
		}
	}

	return results, nil
}

// AnswerContext runs a full retrieval for a question: vector search, keyword
// diagnostics and context assembly under the character budget. A search with
// zero results is not an error, the context is simply empty and the external
// generator decides how to express that.
func (e *Engine) AnswerContext(question string, embedding []float32, config *model.QueryConfig) (string, *model.RetrievalTrace, error) {
	results, err := e.VectorRetrieve(embedding, config)
	if err != nil {
		return "", nil, err
	}

	// Keyword matches are recorded for observability and tuning only,
	// they do not re-rank the vector results.
	keywords := ExtractKeywords(question)
	matches := MatchKeywords(keywords, results)

	contextText, included, totalChars := AssembleContext(results, config.MaxContextChars)

	trace := &model.RetrievalTrace{
		ResultCount:       len(results),
		KeywordMatches:    matches,
		Results:           results,
		Included:          included,
		TotalContextChars: totalChars,
	}

	return contextText, trace, nil
}

// AssembleContext concatenates ranked results, each tagged with its source,
// until appending the next chunk would exceed maxChars. Chunks are never
// truncated mid-text; assembly stops at the first chunk that would overflow
// the budget. Only retrieved chunk text counts against the budget, the
// source tags do not.
func AssembleContext(results []model.SearchResult, maxChars int) (string, []model.SearchResult, int) {
	var builder strings.Builder
	var included []model.SearchResult
	totalChars := 0

	for _, result := range results {
		if totalChars+len(result.Text) > maxChars {
			break
		}

		builder.WriteString(fmt.Sprintf("[Source: %s, chunk %d/%d]\n", result.ChunkID, result.ChunkIndex+1, result.TotalChunks))
		builder.WriteString(result.Text)
		builder.WriteString("\n\n")

		included = append(included, result)
		totalChars += len(result.Text)
	}

	return builder.String(), included, totalChars
}
