package pipeline

import (
	"fmt"
	"sync"

	"github.com/docuquery/docuquery/helper"
	"github.com/docuquery/docuquery/model"
	"github.com/knights-analytics/hugot"
)

// DefaultEmbeddingModel is the multilingual sentence transformer used for
// all embeddings. It produces 384-dimensional vectors and handles the
// mixed-language corpora this system is fed (Indonesian and English
// financial reports among them).
const DefaultEmbeddingModel = "sentence-transformers/paraphrase-multilingual-MiniLM-L12-v2"

// DefaultEmbeddingDim is the vector dimension of DefaultEmbeddingModel
const DefaultEmbeddingDim = 384

// The loaded model is a process-wide singleton: loading is expensive and the
// hugot pipeline is safe for concurrent read-only inference once created.
// The once guard makes concurrent first callers block until a single load
// completes; a failed load is remembered and surfaced on every later call.
var (
	loadOnce   sync.Once
	loadErr    error
	embedText  EmbedFunc
	embedTexts BatchEmbedFunc
)

func loadDefaultEmbedder() {
	modelPath, err := helper.PrepareModel(DefaultEmbeddingModel, "onnx/model.onnx")
	if err != nil {
		loadErr = fmt.Errorf("%w: %v", model.ErrModelLoad, err)
		return
	}

	// Initialize hugot session with Go backend
	session, err := hugot.NewGoSession()
	if err != nil {
		loadErr = fmt.Errorf("%w: failed to create hugot session: %v", model.ErrModelLoad, err)
		return
	}

	// Create sentence transformers pipeline configuration
	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "embedder-pipeline",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			loadErr = fmt.Errorf("%w: failed to create sentence pipeline: %v (cleanup error: %v)", model.ErrModelLoad, err, destroyErr)
			return
		}
		loadErr = fmt.Errorf("%w: failed to create sentence pipeline: %v", model.ErrModelLoad, err)
		return
	}

	embedTexts = func(texts []string) ([][]float32, error) {
		if len(texts) == 0 {
			return nil, nil
		}

		result, err := sentencePipeline.RunPipeline(texts)
		if err != nil {
			return nil, fmt.Errorf("failed to generate embeddings: %w", err)
		}

		if len(result.Embeddings) != len(texts) {
			return nil, fmt.Errorf("embedding count mismatch: got %d embeddings for %d texts", len(result.Embeddings), len(texts))
		}

		return result.Embeddings, nil
	}

	embedText = func(text string) ([]float32, error) {
		embeddings, err := embedTexts([]string{text})
		if err != nil {
			return nil, err
		}
		if len(embeddings) == 0 {
			return nil, fmt.Errorf("no embedding generated")
		}
		return embeddings[0], nil
	}
}

// DefaultEmbedder returns the process-wide embedding functions backed by
// DefaultEmbeddingModel, loading the model on first call. Both functions are
// pure for a fixed model version: the same input always yields the same
// vector, and batch results equal per-item results in the same order.
func DefaultEmbedder() (EmbedFunc, BatchEmbedFunc, error) {
	loadOnce.Do(loadDefaultEmbedder)
	if loadErr != nil {
		return nil, nil, loadErr
	}
	return embedText, embedTexts, nil
}
