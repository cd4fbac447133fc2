package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then metrics are registered under the momentum namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.matchesCreated.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "momentum_engine_matches_created_total")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("test_prefix"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then names and labels follow the options", func() {
				manager.momentumGoals.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, f := range families {
					if f.GetName() != "test_namespace_test_subsystem_test_prefix_momentum_goals_total" {
						continue
					}
					found = true
					So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When options receive empty values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithMetricPrefix(""),
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithRefreshInterval(-1*time.Second),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "momentum")
				So(manager.subsystem, ShouldEqual, "engine")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording engine metrics", func() {
			before := testutil.ToFloat64(globalManager.eventsProcessed.WithLabelValues("goal"))
			RecordEventProcessed("goal")
			RecordEventProcessed("goal")
			RecordMomentumShift("switch")
			RecordPatternDetected("crescendo")

			Convey("Then the labelled counters move", func() {
				So(testutil.ToFloat64(globalManager.eventsProcessed.WithLabelValues("goal")), ShouldEqual, before+2)
				So(testutil.ToFloat64(globalManager.momentumShifts.WithLabelValues("switch")), ShouldBeGreaterThanOrEqualTo, 1)
				So(testutil.ToFloat64(globalManager.patternsDetected.WithLabelValues("crescendo")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When the match count changes", func() {
			UpdateActiveMatches(3)

			Convey("Then the gauge holds the latest value", func() {
				So(testutil.ToFloat64(globalManager.activeMatches), ShouldEqual, 3)
				UpdateActiveMatches(1)
				So(testutil.ToFloat64(globalManager.activeMatches), ShouldEqual, 1)
			})
		})

		Convey("When summing a counter family", func() {
			before, err := CounterTotal("events_rejected_total")
			So(err, ShouldBeNil)
			RecordEventRejected("queue_full")
			RecordEventRejected("match_not_found")
			after, err := CounterTotal("events_rejected_total")

			Convey("Then every label series is included", func() {
				So(err, ShouldBeNil)
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When the counter family does not exist", func() {
			total, err := CounterTotal("no_such_metric_total")

			Convey("Then the total is zero", func() {
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 0)
			})
		})

		Convey("When recording the remaining metrics", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordEventDuplicate()
					RecordEventLatency(1.5)
					RecordMomentumGoal()
					RecordAnalysisLatency("forecast", 0.4)
					RecordMatchCreated()
					RecordMatchDeleted()
					RecordStreamPublished("shift")
					RecordStreamPublishError("pattern")
					RecordHTTPRequest("/matches", "POST", "201")
					RecordHTTPRequestDuration("/matches", "POST", "201", 2.0)
					UpdateQueueSize(10)
					UpdateQueueCapacity(100)
					UpdateQueueUtilization(0.1)
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					RecordQueueProcessingLatency(0.2)
					UpdateWorkerActiveCount(4)
					UpdateWorkerMessagesPerSecond(120)
					RecordWorkerProcessingLatency(0.3)
					RecordWorkerError()
					RecordErrorByComponent("worker", "engine_error")
					RecordErrorByType("engine_error", "high")
					RecordErrorByEndpoint("/matches/{id}/events", "POST", "bad_request")
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(12)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given metrics recorded from many goroutines", t, func() {
		before := testutil.ToFloat64(globalManager.eventsDuplicate)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					RecordEventDuplicate()
					UpdateQueueSize(j)
					RecordHTTPRequest("/healthz", "GET", "200")
				}
			}()
		}
		wg.Wait()

		Convey("Then no increments are lost", func() {
			So(testutil.ToFloat64(globalManager.eventsDuplicate), ShouldEqual, before+1000)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		Convey("Then it is the one the global manager registered on", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}
