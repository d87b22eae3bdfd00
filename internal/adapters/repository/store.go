// Package repository holds the published per-grouping snapshots.
package repository

import (
	"context"
	"time"

	"github.com/okian/salesdash/internal/domain/aggregate"
	"github.com/okian/salesdash/internal/domain/grouping"
	"github.com/okian/salesdash/internal/domain/types"
)

// Snapshot is an immutable view of one grouping: the records as served and
// the engine output computed from them.
type Snapshot struct {
	Grouping    grouping.Grouping
	Dataset     types.Dataset
	Summary     *aggregate.Summary
	Version     uint64
	PublishedAt time.Time
}

// Store provides access to the published snapshots.
type Store interface {
	// Get returns the current snapshot of g.
	// Returns ErrNotFound if nothing was published for g yet.
	Get(ctx context.Context, g grouping.Grouping) (*Snapshot, error)

	// Publish replaces the snapshot of its grouping and returns the stored copy
	// carrying the assigned version and publish time.
	Publish(ctx context.Context, snap *Snapshot) (*Snapshot, error)

	// All returns the published snapshots in grouping order.
	All(ctx context.Context) []*Snapshot

	// Count returns the number of groupings with a published snapshot.
	Count(ctx context.Context) int
}
