package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/scrypster/docgraph/internal/storage"
)

// ErrEmptyPrompt is returned for blank questions.
var ErrEmptyPrompt = errors.New("prompt is empty")

// StatsSource reports current graph counts.
type StatsSource interface {
	Stats() storage.Stats
}

// Assistant forwards chat questions to a TextGenerator, prefixed with the
// size of the knowledge graph. Calls are paced by a token bucket.
type Assistant struct {
	gen     TextGenerator
	stats   StatsSource
	limiter *rate.Limiter
}

// NewAssistant creates an assistant. requestsPerSecond <= 0 disables
// pacing; burst < 1 is treated as 1.
func NewAssistant(gen TextGenerator, stats StatsSource, requestsPerSecond float64, burst int) *Assistant {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &Assistant{
		gen:     gen,
		stats:   stats,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Model names the generator's model.
func (a *Assistant) Model() string {
	return a.gen.GetModel()
}

// Prompt builds the text sent for question.
func (a *Assistant) Prompt(question string) string {
	st := a.stats.Stats()
	return fmt.Sprintf("The knowledge graph currently holds %d entities and %d relationships.\n\n%s",
		st.EntityCount, st.RelationshipCount, strings.TrimSpace(question))
}

// Ask waits for a pacing token and sends the question.
func (a *Assistant) Ask(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyPrompt
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("assistant: rate limit wait: %w", err)
	}
	reply, err := a.gen.Complete(ctx, a.Prompt(question))
	if err != nil {
		return "", fmt.Errorf("assistant: %w", err)
	}
	return reply, nil
}
