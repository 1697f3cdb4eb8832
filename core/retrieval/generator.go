package retrieval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docuquery/docuquery/helper"
	"github.com/docuquery/docuquery/model"
)

// Generator is the external answer collaborator. Implementations call a
// language model with the question and the assembled context and must honor
// context cancellation. Provider and Model identify the backend in every
// log entry.
type Generator interface {
	Generate(ctx context.Context, question string, contextText string) (string, error)
	Provider() string
	Model() string
}

type generateResult struct {
	answer string
	err    error
}

// GenerateWithTimeout calls the generator with a bounded wait. A hung
// external call must not hang the request: the call runs in its own
// goroutine and is abandoned once the deadline passes, surfacing
// model.ErrGenerationTimeout.
func GenerateWithTimeout(ctx context.Context, generator Generator, question string, contextText string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resultCh := make(chan generateResult, 1)
	go func() {
		answer, err := generator.Generate(ctx, question, contextText)
		resultCh <- generateResult{answer: answer, err: err}
	}()

	select {
	case result := <-resultCh:
		if result.err != nil {
			if errors.Is(result.err, context.DeadlineExceeded) {
				return "", fmt.Errorf("%w after %s", model.ErrGenerationTimeout, timeout)
			}
			return "", helper.NewError("generate answer", result.err)
		}
		return result.answer, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", model.ErrGenerationTimeout, timeout)
		}
		return "", ctx.Err()
	}
}
