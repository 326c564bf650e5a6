// Package storage provides the article sinks. Both backends key a partition
// per publisher media code and enforce uniqueness on the article id; that
// unique index, not the in-memory dedup filter, is what makes ingestion
// at-most-once-effective under concurrent or resumed runs.
package storage

import (
	"context"

	"newscrawl/internal/article"
)

// PutResult classifies the outcome of an idempotent insert.
type PutResult int

const (
	// Stored means the record was newly persisted.
	Stored PutResult = iota
	// DuplicateIgnored means the partition already held the article id;
	// this is success-equivalent, not a failure.
	DuplicateIgnored
)

// Sink persists article records. Put must map a uniqueness violation on the
// article id to DuplicateIgnored; any other fault is an error the caller
// logs and drops without stopping the walk.
type Sink interface {
	// EnsurePartition creates the partition for a media code if absent.
	EnsurePartition(ctx context.Context, mediaCode string) error
	// KnownIDs loads every article id already stored in the partition,
	// used once per run to prime the dedup filter.
	KnownIDs(ctx context.Context, mediaCode string) (map[string]struct{}, error)
	Put(ctx context.Context, rec *article.Record) (PutResult, error)
	Close(ctx context.Context) error
}
