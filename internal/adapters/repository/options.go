package repository

import (
	"time"

	"github.com/okian/salesdash/internal/domain/grouping"
)

// Option applies a configuration option to the SnapshotStore.
type Option func(*SnapshotStore)

// WithClock overrides the publish time source.
func WithClock(now func() time.Time) Option {
	return func(s *SnapshotStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithGroupings restricts the slots the store holds.
func WithGroupings(gs ...grouping.Grouping) Option {
	return func(s *SnapshotStore) {
		if len(gs) > 0 {
			s.order = gs
		}
	}
}
