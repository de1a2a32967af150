package types

import (
	"context"

	"jobradar-engine/internal/domain"
)

// ScrapeResult is what one source hands back to the orchestrator.
type ScrapeResult struct {
	Source string
	Jobs   []domain.Job
}

// Fetcher is the adapter capability: produce a finite batch of normalized,
// pre-filtered candidates for one source. An unreachable source returns an
// error (or an empty result for configuration gaps); it never panics.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) (ScrapeResult, error)
}
