package types

import (
	"context"

	"buyerfinder/internal/domain"
)

// FetchResult is the batch one source produced for a run.
type FetchResult struct {
	Source  domain.SourceKind
	Records []domain.RawRecord
}

// Fetcher is implemented by each source adapter. Fetch returns every raw
// record the source can supply for the configured search, or an error when
// the source is unavailable — an empty result is not a failure.
type Fetcher interface {
	Name() string
	Kind() domain.SourceKind
	Fetch(ctx context.Context) (FetchResult, error)
}
