package retrieval

import (
	"context"
	"strings"
	"testing"

	"github.com/docuquery/docuquery/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorRetrieve(t *testing.T) {
	documents, chunks, engine := initEngine(t)
	ctx := context.Background()

	doc := &model.Document{Name: "Laporan Keuangan", Source: "laporan.txt"}
	require.NoError(t, documents.InsertDocument(doc))
	defer documents.DeleteDocument(doc.RID)

	stored := []*model.Chunk{
		{
			ChunkID:     model.ChunkIDFor(doc.RID, 0),
			Content:     "Aset lancar perusahaan sebesar 120 miliar rupiah.",
			Embedding:   []float32{1, 0, 0},
			StartPos:    0,
			EndPos:      49,
			ChunkIndex:  0,
			TotalChunks: 2,
			Metadata:    model.Metadata{},
		},
		{
			ChunkID:     model.ChunkIDFor(doc.RID, 1),
			Content:     "Pendapatan tahunan meningkat dua belas persen.",
			Embedding:   []float32{0, 1, 0},
			StartPos:    45,
			EndPos:      91,
			ChunkIndex:  1,
			TotalChunks: 2,
			Metadata:    model.Metadata{},
		},
	}
	require.NoError(t, chunks.ReplaceDocumentChunks(ctx, doc.RID, stored))

	t.Run("Results ranked by distance and capped at TopK", func(t *testing.T) {
		config := model.DefaultQueryConfig()
		config.TopK = 1

		results, err := engine.VectorRetrieve([]float32{1, 0, 0}, &config)

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, model.ChunkIDFor(doc.RID, 0), results[0].ChunkID)
		assert.Equal(t, doc.RID, results[0].DocumentRID)
		assert.Contains(t, results[0].Text, "Aset lancar")
		assert.InDelta(t, 0.0, results[0].Distance, 1e-6)
	})

	t.Run("Scoped retrieval only sees the given documents", func(t *testing.T) {
		other := &model.Document{Name: "Other", Source: "other.txt"}
		require.NoError(t, documents.InsertDocument(other))
		defer documents.DeleteDocument(other.RID)

		require.NoError(t, chunks.ReplaceDocumentChunks(ctx, other.RID, []*model.Chunk{{
			ChunkID:     model.ChunkIDFor(other.RID, 0),
			Content:     "Unrelated content.",
			Embedding:   []float32{1, 0, 0},
			EndPos:      18,
			TotalChunks: 1,
			Metadata:    model.Metadata{},
		}}))

		config := model.DefaultQueryConfig()
		config.DocumentRIDs = []uuid.UUID{doc.RID}

		results, err := engine.VectorRetrieve([]float32{1, 0, 0}, &config)

		require.NoError(t, err)
		for _, result := range results {
			assert.Equal(t, doc.RID, result.DocumentRID, "Expected only scoped document results")
		}
	})

	t.Run("Empty index yields empty results without error", func(t *testing.T) {
		config := model.DefaultQueryConfig()
		config.DocumentRIDs = []uuid.UUID{uuid.New()}

		results, err := engine.VectorRetrieve([]float32{1, 0, 0}, &config)

		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestAnswerContext(t *testing.T) {
	documents, chunks, engine := initEngine(t)
	ctx := context.Background()

	doc := &model.Document{Name: "Laporan", Source: "laporan.txt"}
	require.NoError(t, documents.InsertDocument(doc))
	defer documents.DeleteDocument(doc.RID)

	require.NoError(t, chunks.ReplaceDocumentChunks(ctx, doc.RID, []*model.Chunk{{
		ChunkID:     model.ChunkIDFor(doc.RID, 0),
		Content:     "Aset lancar perusahaan sebesar 120 miliar rupiah.",
		Embedding:   []float32{1, 0, 0},
		EndPos:      49,
		TotalChunks: 1,
		Metadata:    model.Metadata{},
	}}))

	t.Run("Full retrieval with keyword diagnostics", func(t *testing.T) {
		config := model.DefaultQueryConfig()

		contextText, trace, err := engine.AnswerContext("Berapa aset lancar?", []float32{1, 0, 0}, &config)

		require.NoError(t, err)
		require.NotNil(t, trace)
		assert.Equal(t, 1, trace.ResultCount)
		assert.ElementsMatch(t, []string{"aset", "lancar"}, trace.KeywordMatches, "Expected question words filtered, salient terms matched")
		require.Len(t, trace.Results, 1)
		require.Len(t, trace.Included, 1)
		assert.Equal(t, 49, trace.TotalContextChars)
		assert.Contains(t, contextText, "[Source: "+model.ChunkIDFor(doc.RID, 0)+", chunk 1/1]")
		assert.Contains(t, contextText, "Aset lancar perusahaan")
	})

	t.Run("Ranked results stay on the trace when the budget excludes them", func(t *testing.T) {
		config := model.DefaultQueryConfig()
		config.MaxContextChars = 10

		contextText, trace, err := engine.AnswerContext("Berapa aset lancar?", []float32{1, 0, 0}, &config)

		require.NoError(t, err)
		require.NotNil(t, trace)
		assert.Empty(t, contextText)
		assert.Empty(t, trace.Included)
		assert.Equal(t, 0, trace.TotalContextChars)
		require.Len(t, trace.Results, 1, "Expected the ranked results regardless of context inclusion")
		assert.Equal(t, model.ChunkIDFor(doc.RID, 0), trace.Results[0].ChunkID)
	})

	t.Run("No results produces empty context and zeroed trace", func(t *testing.T) {
		config := model.DefaultQueryConfig()
		config.DocumentRIDs = []uuid.UUID{uuid.New()}

		contextText, trace, err := engine.AnswerContext("Berapa aset lancar?", []float32{1, 0, 0}, &config)

		require.NoError(t, err)
		require.NotNil(t, trace)
		assert.Empty(t, contextText)
		assert.Equal(t, 0, trace.ResultCount)
		assert.Empty(t, trace.Results)
		assert.Empty(t, trace.Included)
		assert.Equal(t, 0, trace.TotalContextChars)
	})
}

func TestAssembleContext(t *testing.T) {
	makeResult := func(index int, text string) model.SearchResult {
		return model.SearchResult{
			ChunkID:     "doc_chunk_" + string(rune('0'+index)),
			Text:        text,
			ChunkIndex:  index,
			TotalChunks: 3,
		}
	}

	t.Run("Budget admits only whole chunks", func(t *testing.T) {
		results := []model.SearchResult{
			makeResult(0, strings.Repeat("a", 60)),
			makeResult(1, strings.Repeat("b", 60)),
			makeResult(2, strings.Repeat("c", 60)),
		}

		contextText, included, totalChars := AssembleContext(results, 100)

		require.Len(t, included, 1, "Expected only the first chunk to fit")
		assert.Equal(t, 60, totalChars, "Expected budget to count chunk text only")
		assert.Contains(t, contextText, strings.Repeat("a", 60))
		assert.NotContains(t, contextText, strings.Repeat("b", 60))
	})

	t.Run("Assembly stops at the first overflowing chunk", func(t *testing.T) {
		results := []model.SearchResult{
			makeResult(0, strings.Repeat("a", 60)),
			makeResult(1, strings.Repeat("b", 200)),
			makeResult(2, strings.Repeat("c", 10)),
		}

		_, included, totalChars := AssembleContext(results, 100)

		require.Len(t, included, 1, "Expected no chunk after the first overflow, even if it would fit")
		assert.Equal(t, 60, totalChars)
	})

	t.Run("Chunks are never truncated", func(t *testing.T) {
		results := []model.SearchResult{makeResult(0, strings.Repeat("a", 150))}

		contextText, included, totalChars := AssembleContext(results, 100)

		assert.Empty(t, included)
		assert.Equal(t, 0, totalChars)
		assert.Empty(t, contextText)
	})

	t.Run("Source tags identify chunk and position", func(t *testing.T) {
		results := []model.SearchResult{makeResult(1, "some content")}

		contextText, included, _ := AssembleContext(results, 100)

		require.Len(t, included, 1)
		assert.Contains(t, contextText, "[Source: doc_chunk_1, chunk 2/3]")
	})

	t.Run("Empty results produce empty context", func(t *testing.T) {
		contextText, included, totalChars := AssembleContext(nil, 100)

		assert.Empty(t, contextText)
		assert.Empty(t, included)
		assert.Equal(t, 0, totalChars)
	})
}
