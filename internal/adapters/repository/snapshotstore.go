package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/okian/salesdash/internal/domain/grouping"
	"github.com/okian/salesdash/pkg/metrics"
)

// SnapshotStore keeps one atomically replaced snapshot per grouping.
//
// The slot map is built once in NewSnapshotStore and never written again, so
// readers only touch atomic pointers.
type SnapshotStore struct {
	order   []grouping.Grouping
	slots   map[grouping.Grouping]*atomic.Pointer[Snapshot]
	version atomic.Uint64
	now     func() time.Time
}

// NewSnapshotStore constructs a store with a slot for every grouping.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{
		order: grouping.All(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.slots = make(map[grouping.Grouping]*atomic.Pointer[Snapshot], len(s.order))
	for _, g := range s.order {
		s.slots[g] = &atomic.Pointer[Snapshot]{}
	}
	return s
}

// Get returns the current snapshot of g.
func (s *SnapshotStore) Get(_ context.Context, g grouping.Grouping) (*Snapshot, error) {
	slot, ok := s.slots[g]
	if !ok {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, grouping.ErrUnknown)
	}
	snap := slot.Load()
	if snap == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, g)
	}
	return snap, nil
}

// Publish stores a copy of snap under a new version. Versions increase
// monotonically across all groupings.
func (s *SnapshotStore) Publish(_ context.Context, snap *Snapshot) (*Snapshot, error) {
	if snap == nil {
		return nil, ErrNilSnapshot
	}
	slot, ok := s.slots[snap.Grouping]
	if !ok {
		return nil, fmt.Errorf("%w: %q", grouping.ErrUnknown, string(snap.Grouping))
	}

	stored := *snap
	stored.Version = s.version.Add(1)
	stored.PublishedAt = s.now()
	slot.Store(&stored)

	metrics.UpdateSnapshot(stored.Grouping.String(), stored.Version, len(stored.Dataset.Sales), stored.PublishedAt.Unix())
	return &stored, nil
}

// All returns the published snapshots in grouping order.
func (s *SnapshotStore) All(_ context.Context) []*Snapshot {
	out := make([]*Snapshot, 0, len(s.order))
	for _, g := range s.order {
		if snap := s.slots[g].Load(); snap != nil {
			out = append(out, snap)
		}
	}
	return out
}

// Count returns the number of groupings with a published snapshot.
func (s *SnapshotStore) Count(ctx context.Context) int {
	return len(s.All(ctx))
}
