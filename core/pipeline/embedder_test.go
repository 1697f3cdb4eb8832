package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEmbedder(t *testing.T) {
	// Note: DefaultEmbedder uses hugot which requires downloading models
	// These tests may take longer on first run

	t.Run("Create embedder successfully", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping DefaultEmbedder test in short mode (requires model download)")
		}

		embedder, batchEmbedder, err := DefaultEmbedder()

		require.NoError(t, err)
		assert.NotNil(t, embedder)
		assert.NotNil(t, batchEmbedder)
	})

	t.Run("Generate embedding for text", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping DefaultEmbedder test in short mode (requires model download)")
		}

		embedder, _, err := DefaultEmbedder()
		require.NoError(t, err)

		text := "This is a test sentence."
		embedding, err := embedder(text)

		require.NoError(t, err)
		assert.NotNil(t, embedding)
		assert.Equal(t, DefaultEmbeddingDim, len(embedding), "paraphrase-multilingual-MiniLM-L12-v2 produces 384-dimensional embeddings")

		// Verify embedding contains non-zero values
		hasNonZero := false
		for _, val := range embedding {
			if val != 0 {
				hasNonZero = true
				break
			}
		}
		assert.True(t, hasNonZero, "Embedding should contain non-zero values")
	})

	t.Run("Same text produces same embedding", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping DefaultEmbedder test in short mode (requires model download)")
		}

		embedder, _, err := DefaultEmbedder()
		require.NoError(t, err)

		text := "Deterministic embedding test"
		embedding1, err1 := embedder(text)
		require.NoError(t, err1)

		embedding2, err2 := embedder(text)
		require.NoError(t, err2)

		assert.Equal(t, len(embedding1), len(embedding2))

		// Check that embeddings are identical (or very close due to floating point)
		for i := range embedding1 {
			assert.InDelta(t, embedding1[i], embedding2[i], 0.0001, "Same text should produce same embedding")
		}
	})

	t.Run("Batch embedding matches per-item embedding", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping DefaultEmbedder test in short mode (requires model download)")
		}

		embedder, batchEmbedder, err := DefaultEmbedder()
		require.NoError(t, err)

		texts := []string{"First sentence.", "Second sentence."}

		batched, err := batchEmbedder(texts)
		require.NoError(t, err)
		require.Len(t, batched, len(texts))

		for i, text := range texts {
			single, err := embedder(text)
			require.NoError(t, err)
			require.Equal(t, len(single), len(batched[i]))

			for j := range single {
				assert.InDelta(t, single[j], batched[i][j], 0.0001, "Batch embeddings should equal per-item embeddings")
			}
		}
	})

	t.Run("Different texts produce different embeddings", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping DefaultEmbedder test in short mode (requires model download)")
		}

		embedder, _, err := DefaultEmbedder()
		require.NoError(t, err)

		embedding1, err := embedder("The cat sat on the mat.")
		require.NoError(t, err)

		embedding2, err := embedder("Quarterly revenue grew by twelve percent.")
		require.NoError(t, err)

		different := false
		for i := range embedding1 {
			if embedding1[i] != embedding2[i] {
				different = true
				break
			}
		}
		assert.True(t, different, "Different texts should produce different embeddings")
	})

	t.Run("Batch of empty input returns nothing", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping DefaultEmbedder test in short mode (requires model download)")
		}

		_, batchEmbedder, err := DefaultEmbedder()
		require.NoError(t, err)

		embeddings, err := batchEmbedder(nil)
		require.NoError(t, err)
		assert.Empty(t, embeddings)
	})
}
