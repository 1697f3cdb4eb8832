package pipeline

import (
	"fmt"

	"github.com/docuquery/docuquery/model"
	"github.com/google/uuid"
)

// Default chunking parameters, tuned for question answering over
// converted documents
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// FixedChunker creates a chunker that splits text into overlapping
// fixed-size segments. Chunk i covers the span
// [i*(size-overlap), i*(size-overlap)+size) of the source text; the final
// chunk may be shorter. Consecutive chunks share exactly overlap characters,
// so dropping each chunk's leading overlap (except the first) reconstructs
// the original text byte for byte. Splitting is length-based on purpose:
// predictable span boundaries matter more to downstream ranking than
// linguistic naturalness.
func FixedChunker(size int, overlap int) ChunkFunc {
	return func(text string, documentRID uuid.UUID) ([]*model.Chunk, error) {
		if size <= 0 {
			return nil, fmt.Errorf("chunk size must be positive")
		}
		if overlap < 0 || overlap >= size {
			return nil, fmt.Errorf("chunk overlap must be in [0, size)")
		}

		if len(text) == 0 {
			return []*model.Chunk{}, nil
		}

		stride := size - overlap
		total := chunkCount(len(text), size, overlap)

		chunks := make([]*model.Chunk, 0, total)
		for i := 0; i < total; i++ {
			start := i * stride
			end := start + size
			if end > len(text) {
				end = len(text)
			}

			chunks = append(chunks, &model.Chunk{
				ChunkID:     model.ChunkIDFor(documentRID, i),
				DocumentRID: documentRID,
				Content:     text[start:end],
				StartPos:    start,
				EndPos:      end,
				ChunkIndex:  i,
				TotalChunks: total,
				Metadata:    model.Metadata{},
			})
		}

		return chunks, nil
	}
}

// chunkCount returns ceil(max(length-overlap, 0) / (size-overlap)) for
// non-empty text, the number of chunks a fixed split produces
func chunkCount(length int, size int, overlap int) int {
	if length <= 0 {
		return 0
	}
	remaining := length - overlap
	if remaining <= 0 {
		return 1
	}
	stride := size - overlap
	return (remaining + stride - 1) / stride
}

// DefaultChunker creates a fixed chunker with the default size and overlap
func DefaultChunker() ChunkFunc {
	return FixedChunker(DefaultChunkSize, DefaultChunkOverlap)
}
