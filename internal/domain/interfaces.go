package domain

import "context"

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// Record is one schemaless stored document.
type Record map[string]any

// Query describes a filtered, ordered read against one collection.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// Filter is a single field comparison. Op is one of "==", ">=", "<=".
type Filter struct {
	Field string
	Op    string
	Value any
}

// RecordStore abstracts the durable document store backing the Stats
// Repository. Implemented by infra/sqlite.Store.
type RecordStore interface {
	// ReadRecord returns the record, or ErrRecordNotFound if absent.
	ReadRecord(ctx context.Context, collection, id string) (Record, error)

	// WriteRecord stores a record. With merge=true, fields absent from data
	// keep their stored values instead of being clobbered.
	WriteRecord(ctx context.Context, collection, id string, data Record, merge bool) error

	// UpdateRecord applies fn to the current record (nil if absent) and
	// writes the result back within a single transaction. Concurrent updates
	// to the same collection serialize here rather than racing on
	// read-then-write.
	UpdateRecord(ctx context.Context, collection, id string, fn func(Record) (Record, error)) error

	// AppendRecord adds a record to an append-only collection and returns
	// the generated ID.
	AppendRecord(ctx context.Context, collection string, data Record) (string, error)

	// QueryRecords returns matching records in query order.
	QueryRecords(ctx context.Context, collection string, q Query) ([]Record, error)

	// Ping checks store connectivity.
	Ping() error
}
