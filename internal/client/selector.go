package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/salesdash/internal/domain/aggregate"
	"github.com/okian/salesdash/internal/domain/grouping"
	"github.com/okian/salesdash/internal/domain/types"
	"github.com/okian/salesdash/pkg/logger"
	"github.com/okian/salesdash/pkg/metrics"
)

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 10 * time.Second

// Status is the lifecycle phase of the current selection.
type Status int

// Selection phases.
const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is an aggregated dataset. It is never mutated after publication.
type Result struct {
	Grouping  grouping.Grouping
	Dataset   types.Dataset
	Summary   *aggregate.Summary
	FetchedAt time.Time
}

// State is an immutable view of the selector.
// Result is the newest successful result, which may belong to an earlier grouping
// while a selection is loading or after it failed.
type State struct {
	Grouping   grouping.Grouping
	Status     Status
	Err        error
	Result     *Result
	Generation uint64
}

// Selector runs fetch-and-aggregate for the active grouping. A newer Select
// cancels the in-flight one, whose outcome is then discarded.
type Selector struct {
	fetcher   Fetcher
	timeout   time.Duration
	logger    logger.Logger
	observers []func(*State)
	now       func() time.Time

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	state      atomic.Pointer[State]
}

// NewSelector creates a selector reading from f.
func NewSelector(f Fetcher, opts ...SelectorOption) *Selector {
	s := &Selector{
		fetcher: f,
		timeout: DefaultTimeout,
		logger:  logger.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state.Store(&State{Status: StatusIdle})
	return s
}

// State returns the current state.
func (s *Selector) State() *State {
	return s.state.Load()
}

// Select makes g the active grouping, fetches its records and aggregates them.
// It returns ErrSuperseded if another Select started before this one finished.
func (s *Selector) Select(ctx context.Context, g grouping.Grouping) (*Result, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("%w: %q", grouping.ErrUnknown, string(g))
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	if s.cancel != nil {
		s.cancel()
	}
	fctx, cancel := context.WithTimeout(ctx, s.timeout)
	s.cancel = cancel
	s.publish(&State{Grouping: g, Status: StatusLoading, Result: s.state.Load().Result, Generation: gen})
	s.mu.Unlock()
	defer cancel()

	start := time.Now()
	ds, err := s.fetcher.Fetch(fctx, g)
	var summary *aggregate.Summary
	if err == nil {
		summary = aggregate.Compute(ds.Sales)
	} else if errors.Is(fctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%w after %s: %w", ErrTimeout, s.timeout, err)
	}
	latency := float64(time.Since(start).Microseconds()) / 1000

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		metrics.RecordSelectorFetch("superseded", latency)
		metrics.RecordSelectorSuperseded()
		s.logger.Debug(ctx, "selection superseded",
			logger.String("grouping", g.String()),
			logger.Uint64("generation", gen))
		return nil, ErrSuperseded
	}
	s.cancel = nil
	prior := s.state.Load().Result

	if err != nil {
		outcome := "failed"
		if errors.Is(err, ErrTimeout) {
			outcome = "timeout"
		}
		metrics.RecordSelectorFetch(outcome, latency)
		s.logger.Warn(ctx, "selection failed",
			logger.String("grouping", g.String()),
			logger.Uint64("generation", gen),
			logger.Error(err))
		s.publish(&State{Grouping: g, Status: StatusFailed, Err: err, Result: prior, Generation: gen})
		return nil, err
	}

	res := &Result{Grouping: g, Dataset: ds, Summary: summary, FetchedAt: s.now()}
	metrics.RecordSelectorFetch("succeeded", latency)
	s.publish(&State{Grouping: g, Status: StatusSucceeded, Result: res, Generation: gen})
	return res, nil
}

// publish must be called with mu held.
func (s *Selector) publish(st *State) {
	s.state.Store(st)
	for _, fn := range s.observers {
		fn(st)
	}
}
