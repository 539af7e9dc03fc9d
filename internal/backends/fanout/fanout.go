// Package fanout runs independent per-item store calls concurrently.
package fanout

import (
	"clientsvc/internal/types"
	"context"
	"sync"
)

// DefaultConcurrency bounds the number of in-flight calls when the caller passes limit <= 0.
const DefaultConcurrency = 16

// InsertFunc writes a single candidate.
type InsertFunc func(ctx context.Context, candidate types.Record) (types.Record, error)

// InsertAll calls insert for every candidate with at most limit calls in flight.
// Results keep the input order and skip failed inputs. A *types.BatchError is returned
// when at least one input failed; the other inputs stay written.
func InsertAll(ctx context.Context, candidates []types.Record, limit int, insert InsertFunc) ([]types.Record, error) {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	results := make([]types.Record, len(candidates))
	errs := make([]error, len(candidates))

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i, c := range candidates {
		wg.Add(1)
		go func(i int, c types.Record) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}
			defer func() { <-sem }()
			results[i], errs[i] = insert(ctx, c)
		}(i, c)
	}
	wg.Wait()

	inserted := make([]types.Record, 0, len(candidates))
	var batchErr *types.BatchError
	for i := range candidates {
		if errs[i] != nil {
			if batchErr == nil {
				batchErr = &types.BatchError{Total: len(candidates), Failed: map[int]error{}}
			}
			batchErr.Failed[i] = errs[i]
			continue
		}
		inserted = append(inserted, results[i])
	}
	if batchErr != nil {
		return inserted, batchErr
	}
	return inserted, nil
}
