// Package memory keeps client records in process. It serves local development and tests;
// data does not survive a restart.
package memory

import (
	"clientsvc/internal/backends/fanout"
	"clientsvc/internal/types"
	"context"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
)

type RecordStore struct {
	items       *xsync.MapOf[string, types.Record]
	concurrency int
	newID       func() string
}

// NewRecordStore creates an empty store. concurrency bounds InsertAll; <= 0 uses the
// fanout default.
func NewRecordStore(concurrency int) *RecordStore {
	return &RecordStore{
		items:       xsync.NewMapOf[string, types.Record](),
		concurrency: concurrency,
		newID:       uuid.NewString,
	}
}

func (s *RecordStore) GetAll(ctx context.Context) ([]types.Record, error) {
	records := make([]types.Record, 0, s.items.Size())
	s.items.Range(func(_ string, r types.Record) bool {
		records = append(records, r.Clone())
		return true
	})
	return records, nil
}

func (s *RecordStore) GetByID(ctx context.Context, id string) (types.Record, error) {
	r, ok := s.items.Load(id)
	if !ok {
		return nil, nil
	}
	return r.Clone(), nil
}

func (s *RecordStore) Insert(ctx context.Context, candidate types.Record) (types.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, types.Err(types.ErrStorageUnavailable, err, "")
	}
	rec := candidate.Clone()
	if rec == nil {
		rec = types.Record{}
	}
	id := s.newID()
	rec[types.IDField] = id
	if _, loaded := s.items.LoadOrStore(id, rec); loaded {
		return nil, types.Err(types.ErrAlreadyExists, nil, "id %s", id)
	}
	return rec.Clone(), nil
}

func (s *RecordStore) InsertAll(ctx context.Context, candidates []types.Record) ([]types.Record, error) {
	return fanout.InsertAll(ctx, candidates, s.concurrency, s.Insert)
}

func (s *RecordStore) Update(ctx context.Context, id string, updates types.Record) (types.UpdateResult, error) {
	fields := types.UpdateFields(updates)
	if len(fields) == 0 {
		return types.UpdateResult{Outcome: types.NoFieldsProvided}, nil
	}
	merged, ok := s.items.Compute(id, func(old types.Record, loaded bool) (types.Record, bool) {
		if !loaded {
			// delete=true on a missing key leaves the map unchanged
			return nil, true
		}
		next := old.Clone()
		for k, v := range fields {
			next[k] = v
		}
		return next, false
	})
	if !ok {
		return types.UpdateResult{Outcome: types.UpdateNotFound}, nil
	}
	return types.UpdatedWith(merged.Clone()), nil
}

func (s *RecordStore) DeleteItem(ctx context.Context, id string) error {
	s.items.Delete(id)
	return nil
}

func (s *RecordStore) CreateTable(ctx context.Context) error { return nil }

func (s *RecordStore) DeleteTable(ctx context.Context) error {
	s.items.Clear()
	return nil
}
