// Package source fans raw-record fetching out across the configured
// adapters and reports availability per source.
package source

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"buyerfinder/internal/domain"
	"buyerfinder/internal/source/types"
)

// SourceError records which source failed and why. Failures are reported,
// not swallowed: the caller decides whether a partial run is acceptable.
type SourceError struct {
	Name string
	Kind domain.SourceKind
	Err  error
}

func (e SourceError) Error() string { return e.Name + ": " + e.Err.Error() }
func (e SourceError) Unwrap() error { return e.Err }

// RunResult is the combined outcome of one fetch pass.
type RunResult struct {
	Records  []domain.RawRecord
	Failures []SourceError
}

// Failed reports whether the named source kind was unavailable this run.
func (r RunResult) Failed(kind domain.SourceKind) bool {
	for _, f := range r.Failures {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

// FetchAll runs every fetcher concurrently with a per-fetcher timeout and
// concatenates results in fetcher order, so arrival order (and with it
// first-seen identity order) is stable across runs.
func FetchAll(ctx context.Context, fetchers []types.Fetcher, timeout time.Duration) RunResult {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	results := make([]types.FetchResult, len(fetchers))
	errs := make([]error, len(fetchers))

	var g errgroup.Group
	for i, f := range fetchers {
		i, f := i, f
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			slog.Info("fetching source", "source", f.Name())
			start := time.Now()
			res, err := f.Fetch(fctx)
			if err != nil {
				errs[i] = err
				return nil // siblings keep running
			}
			slog.Info("source done", "source", f.Name(),
				"records", len(res.Records), "elapsed", time.Since(start).Round(time.Millisecond))
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	var out RunResult
	for i, f := range fetchers {
		if errs[i] != nil {
			out.Failures = append(out.Failures, SourceError{Name: f.Name(), Kind: f.Kind(), Err: errs[i]})
			continue
		}
		out.Records = append(out.Records, results[i].Records...)
	}
	return out
}
