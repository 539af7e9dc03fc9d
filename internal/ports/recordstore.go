package ports

import (
	"clientsvc/internal/types"
	"context"
)

// RecordStore is the Store Adapter for client records. Implementations hold one long-lived
// connection and are safe for concurrent use.
type RecordStore interface {
	// GetAll scans the whole table. It MUST return an empty, non-nil slice when the table is
	// empty. Cost grows with the table size.
	GetAll(ctx context.Context) ([]types.Record, error)

	// GetByID MUST return (nil, nil) when no record matches. Errors are reserved for store failures.
	GetByID(ctx context.Context, id string) (types.Record, error)

	// Insert assigns a fresh id, writes the full record and returns it.
	Insert(ctx context.Context, candidate types.Record) (types.Record, error)

	// InsertAll inserts each candidate independently and concurrently. It is not atomic:
	// on partial failure the inserted records are returned together with a *types.BatchError.
	InsertAll(ctx context.Context, candidates []types.Record) ([]types.Record, error)

	// Update sets exactly the named fields. It never creates a record and never changes the id.
	Update(ctx context.Context, id string, updates types.Record) (types.UpdateResult, error)

	// DeleteItem removes the record; deleting a missing id is not an error.
	DeleteItem(ctx context.Context, id string) error
}

// TableManager provisions the backing table. CRUD calls assume it already exists.
type TableManager interface {
	CreateTable(ctx context.Context) error
	DeleteTable(ctx context.Context) error
}
