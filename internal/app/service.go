// Package service loads every grouping's dataset, runs the aggregation engine
// on it and publishes the result as snapshots the HTTP API reads from.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/okian/salesdash/internal/adapters/repository"
	"github.com/okian/salesdash/internal/adapters/source"
	"github.com/okian/salesdash/internal/domain/aggregate"
	"github.com/okian/salesdash/internal/domain/grouping"
	"github.com/okian/salesdash/internal/domain/types"
	"github.com/okian/salesdash/pkg/logger"
	"github.com/okian/salesdash/pkg/metrics"
)

// Outcome describes what a refresh did.
type Outcome string

// Refresh outcomes.
const (
	OutcomePublished Outcome = "published"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeFailed    Outcome = "failed"
)

const (
	defaultLoadTimeout     = 5 * time.Second
	defaultRefreshInterval = 30 * time.Second
)

// Service implements the API dependencies for the sales dashboard.
type Service struct {
	mu sync.RWMutex

	source    source.Loader
	store     repository.Store
	groupings []grouping.Grouping

	refreshInterval time.Duration
	loadTimeout     time.Duration

	flight singleflight.Group

	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	refreshes atomic.Int64
	published atomic.Int64
	unchanged atomic.Int64
	failed    atomic.Int64

	errMu      sync.Mutex
	lastErrors map[grouping.Grouping]string

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSource sets where datasets are loaded from.
func WithSource(src source.Loader) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithStore sets the snapshot store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRefreshInterval sets how often datasets are reloaded. Zero or negative disables the loop.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		s.refreshInterval = d
	}
}

// WithLoadTimeout bounds a single dataset load.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.loadTimeout = d
		}
	}
}

// WithGroupings limits the groupings warmed and refreshed by the service.
func WithGroupings(gs ...grouping.Grouping) Option {
	return func(s *Service) {
		if len(gs) > 0 {
			s.groupings = gs
		}
	}
}

// New constructs a Service over the embedded sample data and an in-memory store.
func New(opts ...Option) *Service {
	s := &Service{
		groupings:       grouping.All(),
		refreshInterval: defaultRefreshInterval,
		loadTimeout:     defaultLoadTimeout,
		lastErrors:      make(map[grouping.Grouping]string),
		logger:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.source == nil {
		s.source = source.New(source.WithLogger(s.logger))
	}
	if s.store == nil {
		s.store = repository.NewSnapshotStore()
	}
	return s
}

// Start loads every grouping concurrently and starts the refresh loop. A
// grouping that fails to load is logged and served on demand later.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting sales service...")
	s.refreshAll(ctx)

	s.stopCh = make(chan struct{})
	if s.refreshInterval > 0 {
		s.wg.Add(1)
		go s.refreshLoop(ctx, s.stopCh)
	}

	s.started = true
	s.logger.Info(ctx, "sales service started",
		logger.Int("groupings", len(s.groupings)),
		logger.Int("published", s.store.Count(ctx)),
		logger.Duration("refreshInterval", s.refreshInterval),
		logger.Duration("loadTimeout", s.loadTimeout),
	)
	return nil
}

// Stop terminates the refresh loop. It is safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping sales service...")
	close(s.stopCh)
	s.wg.Wait()

	s.started = false
	s.logger.Info(context.Background(), "sales service stopped")
}

func (s *Service) refreshLoop(ctx context.Context, stop <-chan struct{}) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			s.refreshAll(ctx)
		}
	}
}

// refreshAll refreshes every grouping concurrently; failures are logged by Refresh.
func (s *Service) refreshAll(ctx context.Context) {
	var eg errgroup.Group
	for _, g := range s.groupings {
		g := g
		eg.Go(func() error {
			_, _ = s.Refresh(ctx, g)
			return nil
		})
	}
	_ = eg.Wait()
}

// Refresh reloads g and publishes a new snapshot when its content changed.
// On failure the previously published snapshot stays in place.
// Concurrent refreshes of the same grouping share one load, bounded only by
// the load timeout; a caller whose ctx ends stops waiting without failing it.
func (s *Service) Refresh(ctx context.Context, g grouping.Grouping) (Outcome, error) {
	if !g.Valid() {
		return OutcomeFailed, fmt.Errorf("%w: %q", grouping.ErrUnknown, string(g))
	}
	shared := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(g.String(), func() (any, error) {
		return s.refresh(shared, g)
	})
	select {
	case <-ctx.Done():
		return OutcomeFailed, ctx.Err()
	case res := <-ch:
		outcome, _ := res.Val.(Outcome)
		return outcome, res.Err
	}
}

func (s *Service) refresh(ctx context.Context, g grouping.Grouping) (Outcome, error) {
	s.refreshes.Add(1)

	lctx, cancel := context.WithTimeout(ctx, s.loadTimeout)
	defer cancel()

	ds, err := s.source.Load(lctx, g)
	if err != nil {
		return s.fail(ctx, g, err)
	}

	if prev, err := s.store.Get(ctx, g); err == nil && ds.Digest != 0 && prev.Dataset.Digest == ds.Digest {
		s.unchanged.Add(1)
		s.clearError(g)
		metrics.RecordRefresh(g.String(), string(OutcomeUnchanged))
		s.logger.Debug(ctx, "dataset unchanged, keeping snapshot",
			logger.String("grouping", g.String()),
			logger.Uint64("version", prev.Version),
		)
		return OutcomeUnchanged, nil
	}

	start := time.Now()
	summary := aggregate.Compute(ds.Sales)
	metrics.RecordAggregation(summary.Records, summary.Duplicates, float64(time.Since(start).Microseconds())/1000)

	snap, err := s.store.Publish(ctx, &repository.Snapshot{Grouping: g, Dataset: ds, Summary: summary})
	if err != nil {
		return s.fail(ctx, g, err)
	}

	s.published.Add(1)
	s.clearError(g)
	metrics.RecordRefresh(g.String(), string(OutcomePublished))
	s.logger.Info(ctx, "snapshot published",
		logger.String("grouping", g.String()),
		logger.Uint64("version", snap.Version),
		logger.Int("records", summary.Records),
		logger.Int("quarters", len(summary.Quarters)),
		logger.Int("categories", len(summary.Categories)),
	)
	if summary.Duplicates > 0 {
		s.logger.Warn(ctx, "dataset repeats (quarter, category) pairs; values were summed",
			logger.String("grouping", g.String()),
			logger.Int("duplicates", summary.Duplicates),
		)
	}
	return OutcomePublished, nil
}

func (s *Service) fail(ctx context.Context, g grouping.Grouping, err error) (Outcome, error) {
	s.failed.Add(1)
	s.errMu.Lock()
	s.lastErrors[g] = err.Error()
	s.errMu.Unlock()
	metrics.RecordRefresh(g.String(), string(OutcomeFailed))
	s.logger.Warn(ctx, "refresh failed, keeping previous snapshot",
		logger.String("grouping", g.String()),
		logger.Error(err),
	)
	return OutcomeFailed, err
}

func (s *Service) clearError(g grouping.Grouping) {
	s.errMu.Lock()
	delete(s.lastErrors, g)
	s.errMu.Unlock()
}

// snapshot serves g from the store, loading it synchronously on a miss.
func (s *Service) snapshot(ctx context.Context, g grouping.Grouping) (*repository.Snapshot, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("%w: %q", grouping.ErrUnknown, string(g))
	}
	snap, err := s.store.Get(ctx, g)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if _, err := s.Refresh(ctx, g); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, g)
}

// Sales returns the record set of g as last published.
func (s *Service) Sales(ctx context.Context, g grouping.Grouping) (types.Dataset, error) {
	snap, err := s.snapshot(ctx, g)
	if err != nil {
		return types.Dataset{}, err
	}
	return snap.Dataset, nil
}

// Summary returns the engine output for g as last published.
func (s *Service) Summary(ctx context.Context, g grouping.Grouping) (*aggregate.Summary, error) {
	snap, err := s.snapshot(ctx, g)
	if err != nil {
		return nil, err
	}
	return snap.Summary, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":           started,
		"refreshIntervalMs": s.refreshInterval.Milliseconds(),
		"loadTimeoutMs":     s.loadTimeout.Milliseconds(),
		"refreshes":         s.refreshes.Load(),
		"published":         s.published.Load(),
		"unchanged":         s.unchanged.Load(),
		"failed":            s.failed.Load(),
		"snapshots":         s.store.Count(ctx),
	}
	if o, ok := s.source.(interface{ Origin() string }); ok {
		stats["source"] = o.Origin()
	}

	s.errMu.Lock()
	defer s.errMu.Unlock()

	groupings := make(map[string]interface{}, len(s.groupings))
	for _, g := range s.groupings {
		entry := map[string]interface{}{"published": false}
		if snap, err := s.store.Get(ctx, g); err == nil {
			entry["published"] = true
			entry["version"] = snap.Version
			entry["publishedAt"] = snap.PublishedAt.UTC().Format(time.RFC3339)
			entry["records"] = snap.Summary.Records
			entry["duplicates"] = snap.Summary.Duplicates
			entry["quarters"] = len(snap.Summary.Quarters)
			entry["categories"] = len(snap.Summary.Categories)
		}
		if msg, ok := s.lastErrors[g]; ok {
			entry["lastError"] = msg
		}
		groupings[g.String()] = entry
	}
	stats["groupings"] = groupings
	return stats
}
