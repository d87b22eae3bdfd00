package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should register under the salesdash namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.refreshes.WithLabelValues("team", "published").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(strings.Join(names, ","), ShouldContainSubstring, "salesdash_refresh_total")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("bi"),
				WithSubsystem("dash"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(false),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "bi")
				So(manager.subsystem, ShouldEqual, "dash")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.enabled, ShouldBeFalse)
				manager.aggregationRecords.Add(3)
				n, err := testutil.GatherAndCount(registry, "bi_dash_aggregation_records_total")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When passing empty option values", func() {
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then the defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "salesdash")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.customLabels, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		SetEnabled(true)

		Convey("When recording refresh outcomes", func() {
			before := testutil.ToFloat64(globalManager.refreshes.WithLabelValues("industry", "unchanged"))
			RecordRefresh("industry", "unchanged")
			RecordRefresh("industry", "unchanged")

			Convey("Then the counter should grow by two", func() {
				after := testutil.ToFloat64(globalManager.refreshes.WithLabelValues("industry", "unchanged"))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When publishing a snapshot", func() {
			UpdateSnapshot("team", 7, 42, 1700000000)

			Convey("Then the gauges should reflect it", func() {
				So(testutil.ToFloat64(globalManager.snapshotVersion.WithLabelValues("team")), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.snapshotRecords.WithLabelValues("team")), ShouldEqual, 42)
				So(testutil.ToFloat64(globalManager.snapshotLastUnix.WithLabelValues("team")), ShouldEqual, 1700000000)
			})
		})

		Convey("When recording an aggregation run", func() {
			records := testutil.ToFloat64(globalManager.aggregationRecords)
			dups := testutil.ToFloat64(globalManager.aggregationDuplicates)
			RecordAggregation(10, 2, 0.4)

			Convey("Then records and duplicates should be added", func() {
				So(testutil.ToFloat64(globalManager.aggregationRecords)-records, ShouldEqual, 10)
				So(testutil.ToFloat64(globalManager.aggregationDuplicates)-dups, ShouldEqual, 2)
			})
		})

		Convey("When recording is disabled", func() {
			SetEnabled(false)
			defer SetEnabled(true)
			before := testutil.ToFloat64(globalManager.selectorSupersedes)
			RecordSelectorSuperseded()

			Convey("Then nothing should change", func() {
				So(testutil.ToFloat64(globalManager.selectorSupersedes), ShouldEqual, before)
			})
		})

		Convey("When recording the remaining families", func() {
			So(func() {
				RecordHTTPRequest("/api/sales", "GET", "200")
				RecordHTTPRequestDuration("/api/sales", "GET", "200", 1.5)
				RecordErrorByEndpoint("/api/sales", "GET", "bad_request")
				RecordErrorByComponent("source", "malformed")
				RecordSourceLoad("acv_range", "ok", 0.8)
				RecordSelectorFetch("succeeded", 12)
				RecordSelectorSuperseded()
				UpdateSystemMemoryUsage(1024 * 1024)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("When gathering the custom registry", func() {
			RecordHTTPRequest("/api/health", "GET", "200")
			families, err := GetRegistry().Gather()

			Convey("Then it should contain only dashboard metrics", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				for _, f := range families {
					So(f.GetName(), ShouldStartWith, "salesdash_")
				}
			})
		})
	})
}
