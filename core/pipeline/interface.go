package pipeline

import (
	"fmt"

	"github.com/docuquery/docuquery/model"
	"github.com/google/uuid"
)

// ChunkFunc is a function that splits a document's normalized text into
// ordered chunks carrying their character spans and deterministic chunk ids
type ChunkFunc func(text string, documentRID uuid.UUID) ([]*model.Chunk, error)

// EmbedFunc is a function that generates an embedding for a single text
type EmbedFunc func(text string) ([]float32, error)

// BatchEmbedFunc generates embeddings for several texts in one call.
// It must produce the same vectors as calling an EmbedFunc per item,
// in the same order; it exists purely as a throughput optimization.
type BatchEmbedFunc func(texts []string) ([][]float32, error)

// Pipeline combines chunking and embedding functions
type Pipeline struct {
	Chunker       ChunkFunc
	Embedder      EmbedFunc
	BatchEmbedder BatchEmbedFunc // Optional, used when set
	ModelID       string         // Embedding model identifier recorded in query logs
}

// NewPipeline creates a new processing pipeline
func NewPipeline(chunker ChunkFunc, embedder EmbedFunc) *Pipeline {
	return &Pipeline{
		Chunker:  chunker,
		Embedder: embedder,
	}
}

// SetBatchEmbedder sets the batch embedding function used during ingestion
func (p *Pipeline) SetBatchEmbedder(embedder BatchEmbedFunc) {
	p.BatchEmbedder = embedder
}

// Process splits text into chunks and attaches their embeddings and
// index metadata. All chunks are embedded before anything is returned,
// so a failed embedding leaves no partially embedded result behind.
func (p *Pipeline) Process(text string, documentRID uuid.UUID) ([]*model.Chunk, error) {
	chunks, err := p.Chunker(text, documentRID)
	if err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		return nil, nil
	}

	if p.BatchEmbedder != nil {
		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Content
		}

		embeddings, err := p.BatchEmbedder(texts)
		if err != nil {
			return nil, err
		}
		if len(embeddings) != len(chunks) {
			return nil, fmt.Errorf("embedding count mismatch: got %d embeddings for %d chunks", len(embeddings), len(chunks))
		}

		for i, chunk := range chunks {
			chunk.Embedding = embeddings[i]
		}
	} else {
		for _, chunk := range chunks {
			embedding, err := p.Embedder(chunk.Content)
			if err != nil {
				return nil, err
			}
			chunk.Embedding = embedding
		}
	}

	for _, chunk := range chunks {
		chunk.DocumentRID = documentRID
		if chunk.Metadata == nil {
			chunk.Metadata = model.Metadata{}
		}
		chunk.Metadata["file_id"] = documentRID.String()
		chunk.Metadata["chunk_index"] = chunk.ChunkIndex
		chunk.Metadata["total_chunks"] = chunk.TotalChunks
	}

	return chunks, nil
}
