package backends

import (
	"clientsvc/internal/metrics"
	"clientsvc/internal/ports"
	"clientsvc/internal/types"
	"context"
	"time"
)

// Store is what a backend provides: the record operations and table provisioning.
type Store interface {
	ports.RecordStore
	ports.TableManager
}

// instrumented records metrics for every call of the wrapped store.
type instrumented struct {
	name  string
	inner Store
}

// Instrument wraps s so that each operation is counted and timed under the backend name.
func Instrument(name string, s Store) Store {
	return &instrumented{name: name, inner: s}
}

func (i *instrumented) GetAll(ctx context.Context) (out []types.Record, err error) {
	defer func(start time.Time) { metrics.ObserveStoreOp(i.name, "get_all", start, err) }(time.Now())
	return i.inner.GetAll(ctx)
}

func (i *instrumented) GetByID(ctx context.Context, id string) (out types.Record, err error) {
	defer func(start time.Time) { metrics.ObserveStoreOp(i.name, "get_by_id", start, err) }(time.Now())
	return i.inner.GetByID(ctx, id)
}

func (i *instrumented) Insert(ctx context.Context, candidate types.Record) (out types.Record, err error) {
	defer func(start time.Time) { metrics.ObserveStoreOp(i.name, "insert", start, err) }(time.Now())
	return i.inner.Insert(ctx, candidate)
}

func (i *instrumented) InsertAll(ctx context.Context, candidates []types.Record) (out []types.Record, err error) {
	defer func(start time.Time) { metrics.ObserveStoreOp(i.name, "insert_all", start, err) }(time.Now())
	return i.inner.InsertAll(ctx, candidates)
}

func (i *instrumented) Update(ctx context.Context, id string, updates types.Record) (out types.UpdateResult, err error) {
	defer func(start time.Time) { metrics.ObserveStoreOp(i.name, "update", start, err) }(time.Now())
	return i.inner.Update(ctx, id, updates)
}

func (i *instrumented) DeleteItem(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { metrics.ObserveStoreOp(i.name, "delete_item", start, err) }(time.Now())
	return i.inner.DeleteItem(ctx, id)
}

func (i *instrumented) CreateTable(ctx context.Context) (err error) {
	defer func(start time.Time) { metrics.ObserveStoreOp(i.name, "create_table", start, err) }(time.Now())
	return i.inner.CreateTable(ctx)
}

func (i *instrumented) DeleteTable(ctx context.Context) (err error) {
	defer func(start time.Time) { metrics.ObserveStoreOp(i.name, "delete_table", start, err) }(time.Now())
	return i.inner.DeleteTable(ctx)
}
