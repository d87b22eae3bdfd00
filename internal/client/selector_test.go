package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/salesdash/internal/domain/grouping"
	"github.com/okian/salesdash/internal/domain/types"
)

type stubFetcher struct {
	calls   atomic.Int64
	started chan grouping.Grouping

	mu     sync.Mutex
	data   map[grouping.Grouping]types.Dataset
	errs   map[grouping.Grouping]error
	blocks map[grouping.Grouping]bool
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		started: make(chan grouping.Grouping, 8),
		data:    map[grouping.Grouping]types.Dataset{},
		errs:    map[grouping.Grouping]error{},
		blocks:  map[grouping.Grouping]bool{},
	}
}

func (f *stubFetcher) Fetch(ctx context.Context, g grouping.Grouping) (types.Dataset, error) {
	f.calls.Add(1)
	f.started <- g
	f.mu.Lock()
	ds, err, block := f.data[g], f.errs[g], f.blocks[g]
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return types.Dataset{}, ctx.Err()
	}
	return ds, err
}

func (f *stubFetcher) fail(g grouping.Grouping, err error) {
	f.mu.Lock()
	f.errs[g] = err
	f.mu.Unlock()
}

func record(q, c string, count int64, acv string) types.SalesRecord {
	return types.SalesRecord{Quarter: q, Category: c, Count: count, ACV: decimal.RequireFromString(acv)}
}

func TestSelectorSelect(t *testing.T) {
	Convey("Given a selector over a stub source", t, func() {
		f := newStubFetcher()
		f.data[grouping.Industry] = types.Dataset{Group: "industry", Sales: []types.SalesRecord{
			record("2023-Q3", "Retail", 1, "100"),
			record("2023-Q3", "Finance", 2, "300"),
		}}
		f.data[grouping.Team] = types.Dataset{Group: "team", Sales: []types.SalesRecord{
			record("2023-Q3", "Europe", 5, "50"),
		}}
		fixed := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

		var seen []*State
		s := NewSelector(f, WithClock(func() time.Time { return fixed }), WithObserver(func(st *State) {
			seen = append(seen, st)
		}))
		ctx := context.Background()

		Convey("Then it should start idle", func() {
			st := s.State()
			So(st.Status, ShouldEqual, StatusIdle)
			So(st.Result, ShouldBeNil)
			So(st.Generation, ShouldEqual, 0)
		})

		Convey("When an unknown grouping is selected", func() {
			_, err := s.Select(ctx, grouping.Grouping("region"))

			Convey("Then it should be rejected before any fetch", func() {
				So(errors.Is(err, grouping.ErrUnknown), ShouldBeTrue)
				So(f.calls.Load(), ShouldEqual, 0)
				So(s.State().Status, ShouldEqual, StatusIdle)
				So(len(seen), ShouldEqual, 0)
			})
		})

		Convey("When a grouping is selected", func() {
			res, err := s.Select(ctx, grouping.Industry)

			Convey("Then the aggregated result should be published", func() {
				So(err, ShouldBeNil)
				So(res.Grouping, ShouldEqual, grouping.Industry)
				So(res.FetchedAt, ShouldEqual, fixed)
				So(res.Summary.Categories, ShouldResemble, []string{"Retail", "Finance"})
				So(res.Summary.Totals["2023-Q3"].ACV.String(), ShouldEqual, "400")
				So(res.Summary.SeriesByCategory["Finance"][0].Percent, ShouldEqual, 75)

				st := s.State()
				So(st.Status, ShouldEqual, StatusSucceeded)
				So(st.Result, ShouldEqual, res)
				So(st.Generation, ShouldEqual, 1)
			})

			Convey("Then observers should see loading before success", func() {
				So(len(seen), ShouldEqual, 2)
				So(seen[0].Status, ShouldEqual, StatusLoading)
				So(seen[0].Result, ShouldBeNil)
				So(seen[1].Status, ShouldEqual, StatusSucceeded)
			})

			Convey("And a later selection fails", func() {
				boom := errors.New("boom")
				f.fail(grouping.Team, boom)
				_, err := s.Select(ctx, grouping.Team)

				Convey("Then the prior result should be held with the error", func() {
					So(errors.Is(err, boom), ShouldBeTrue)
					st := s.State()
					So(st.Status, ShouldEqual, StatusFailed)
					So(st.Grouping, ShouldEqual, grouping.Team)
					So(errors.Is(st.Err, boom), ShouldBeTrue)
					So(st.Result, ShouldEqual, res)
					So(st.Generation, ShouldEqual, 2)
				})

				Convey("Then the loading state should have carried the prior result", func() {
					So(seen[2].Status, ShouldEqual, StatusLoading)
					So(seen[2].Result, ShouldEqual, res)
				})
			})
		})

		Convey("When an empty dataset is selected", func() {
			f.data[grouping.ACVRange] = types.Dataset{Group: "acv_range", Sales: []types.SalesRecord{}}
			res, err := s.Select(ctx, grouping.ACVRange)

			Convey("Then it should succeed with no data", func() {
				So(err, ShouldBeNil)
				So(res.Summary.Empty(), ShouldBeTrue)
				So(s.State().Status, ShouldEqual, StatusSucceeded)
			})
		})
	})
}

func TestSelectorSupersede(t *testing.T) {
	Convey("Given a selection whose fetch is still in flight", t, func() {
		f := newStubFetcher()
		f.blocks[grouping.Team] = true
		f.data[grouping.Industry] = types.Dataset{Group: "industry", Sales: []types.SalesRecord{
			record("2023-Q3", "Retail", 1, "100"),
		}}
		s := NewSelector(f)
		ctx := context.Background()

		type outcome struct {
			res *Result
			err error
		}
		first := make(chan outcome, 1)
		go func() {
			res, err := s.Select(ctx, grouping.Team)
			first <- outcome{res, err}
		}()
		So(<-f.started, ShouldEqual, grouping.Team)

		Convey("When a newer grouping is selected", func() {
			res, err := s.Select(ctx, grouping.Industry)
			old := <-first

			Convey("Then the older selection should be discarded", func() {
				So(errors.Is(old.err, ErrSuperseded), ShouldBeTrue)
				So(old.res, ShouldBeNil)
			})

			Convey("Then only the newest result should be visible", func() {
				So(err, ShouldBeNil)
				st := s.State()
				So(st.Grouping, ShouldEqual, grouping.Industry)
				So(st.Status, ShouldEqual, StatusSucceeded)
				So(st.Result, ShouldEqual, res)
				So(st.Generation, ShouldEqual, 2)
			})
		})
	})
}

func TestSelectorTimeout(t *testing.T) {
	Convey("Given a source that never answers", t, func() {
		f := newStubFetcher()
		f.blocks[grouping.Team] = true
		s := NewSelector(f, WithTimeout(20*time.Millisecond))

		Convey("When a grouping is selected", func() {
			start := time.Now()
			_, err := s.Select(context.Background(), grouping.Team)

			Convey("Then the fetch should fail with a timeout", func() {
				So(errors.Is(err, ErrTimeout), ShouldBeTrue)
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
				So(time.Since(start), ShouldBeLessThan, 5*time.Second)
				So(s.State().Status, ShouldEqual, StatusFailed)
			})
		})
	})
}

func TestStatusString(t *testing.T) {
	Convey("Given every status", t, func() {
		So(StatusIdle.String(), ShouldEqual, "idle")
		So(StatusLoading.String(), ShouldEqual, "loading")
		So(StatusSucceeded.String(), ShouldEqual, "succeeded")
		So(StatusFailed.String(), ShouldEqual, "failed")
		So(Status(42).String(), ShouldEqual, "unknown")
	})
}
