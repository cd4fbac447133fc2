package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	service "github.com/okian/momentum/internal/app"
	"github.com/okian/momentum/internal/domain/model"
	"github.com/okian/momentum/internal/domain/momentum"
	"github.com/okian/momentum/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func startService(opts ...service.Option) *service.Service {
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	return svc
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should report defaults without starting", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["queueSize"], ShouldEqual, 50_000)
			So(stats["maxForecastHorizon"], ShouldEqual, 30)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(4),
			service.WithQueueSize(1_000),
			service.WithDedupeSize(500),
			service.WithMaxMatches(3),
			service.WithMaxForecastHorizon(10),
		)

		Convey("Then the options should be applied", func() {
			stats := svc.GetStats()
			So(stats["workerCount"], ShouldEqual, 4)
			So(stats["queueSize"], ShouldEqual, 1_000)
			So(stats["dedupeSize"], ShouldEqual, 500)
			So(stats["maxMatches"], ShouldEqual, 3)
			So(stats["maxForecastHorizon"], ShouldEqual, 10)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		svc := service.New()

		Convey("Then every operation should be unavailable", func() {
			_, _, err := svc.CreateMatch(context.Background(), "m", momentum.DefaultInitConfig())
			So(errors.Is(err, model.ErrUnavailable), ShouldBeTrue)

			_, err = svc.Submit(context.Background(), model.MatchEvent{MatchID: "m", EventID: "e", Type: "goal", Side: "home", Minute: 1})
			So(errors.Is(err, model.ErrUnavailable), ShouldBeTrue)

			_, err = svc.Report(context.Background(), "m")
			So(errors.Is(err, model.ErrUnavailable), ShouldBeTrue)
		})

		Convey("And stopping it should be a no-op", func() {
			So(func() { svc.Stop() }, ShouldNotPanic)
		})
	})

	Convey("Given a started service", t, func() {
		svc := startService(service.WithWorkerCount(2))

		Convey("Then starting again should succeed", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldEqual, true)
			svc.Stop()
		})

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Matches(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startService(service.WithWorkerCount(2), service.WithMaxMatches(2))
		defer svc.Stop()

		Convey("When creating a match without an id", func() {
			id, res, err := svc.CreateMatch(ctx, "", momentum.DefaultInitConfig())

			Convey("Then an id should be generated", func() {
				So(err, ShouldBeNil)
				So(id, ShouldNotBeEmpty)
				So(res.Context.CurrentPhase, ShouldEqual, "kickoff")
			})
		})

		Convey("When creating the same match twice", func() {
			_, _, err := svc.CreateMatch(ctx, "derby", momentum.DefaultInitConfig())
			So(err, ShouldBeNil)
			_, _, err = svc.CreateMatch(ctx, "derby", momentum.DefaultInitConfig())

			Convey("Then the second should conflict", func() {
				So(errors.Is(err, model.ErrConflict), ShouldBeTrue)
			})
		})

		Convey("When the config is invalid", func() {
			cfg := momentum.DefaultInitConfig()
			cfg.CrowdFactor = 2
			_, _, err := svc.CreateMatch(ctx, "bad", cfg)

			Convey("Then it should be rejected as invalid input", func() {
				So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
				So(errors.Is(err, momentum.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When the match limit is reached", func() {
			_, _, err := svc.CreateMatch(ctx, "a", momentum.DefaultInitConfig())
			So(err, ShouldBeNil)
			_, _, err = svc.CreateMatch(ctx, "b", momentum.DefaultInitConfig())
			So(err, ShouldBeNil)
			_, _, err = svc.CreateMatch(ctx, "c", momentum.DefaultInitConfig())

			Convey("Then creation should be refused with backpressure", func() {
				So(errors.Is(err, model.ErrBackpressure), ShouldBeTrue)
			})

			Convey("And listing should show both matches", func() {
				list, err := svc.ListMatches(ctx)
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 2)
			})
		})

		Convey("When deleting a match", func() {
			_, _, err := svc.CreateMatch(ctx, "gone", momentum.DefaultInitConfig())
			So(err, ShouldBeNil)
			So(svc.DeleteMatch(ctx, "gone"), ShouldBeNil)

			Convey("Then it should no longer be found", func() {
				_, err := svc.Report(ctx, "gone")
				So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
				So(errors.Is(svc.DeleteMatch(ctx, "gone"), model.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_ProcessEvent(t *testing.T) {
	Convey("Given a started service with one match", t, func() {
		ctx := context.Background()
		svc := startService(service.WithWorkerCount(2), service.WithMaxForecastHorizon(10))
		defer svc.Stop()
		_, _, err := svc.CreateMatch(ctx, "m1", momentum.DefaultInitConfig())
		So(err, ShouldBeNil)

		Convey("When a goal is processed synchronously", func() {
			res, dup, err := svc.ProcessEvent(ctx, model.MatchEvent{MatchID: "m1", EventID: "e1", Type: "goal", Side: "home", Minute: 5})

			Convey("Then the result should reflect the goal", func() {
				So(err, ShouldBeNil)
				So(dup, ShouldBeFalse)
				So(res.Sequence, ShouldEqual, 1)
				So(res.DominantSide, ShouldEqual, momentum.Home)
			})

			Convey("And replaying the same event id should be a duplicate", func() {
				_, dup, err := svc.ProcessEvent(ctx, model.MatchEvent{MatchID: "m1", EventID: "e1", Type: "goal", Side: "home", Minute: 5})
				So(err, ShouldBeNil)
				So(dup, ShouldBeTrue)

				rep, err := svc.Report(ctx, "m1")
				So(err, ShouldBeNil)
				So(rep.FinalScore, ShouldResemble, momentum.Tally{Home: 1})
			})
		})

		Convey("When events carry no id", func() {
			for i := 1; i <= 3; i++ {
				_, dup, err := svc.ProcessEvent(ctx, model.MatchEvent{MatchID: "m1", Type: "key_pass", Side: "away", Minute: i})
				So(err, ShouldBeNil)
				So(dup, ShouldBeFalse)
			}

			Convey("Then each should be applied", func() {
				a, err := svc.Analyze(ctx, "m1", nil)
				So(err, ShouldBeNil)
				So(a.Minute, ShouldEqual, 3)
			})
		})

		Convey("When the event is malformed", func() {
			_, _, err := svc.ProcessEvent(ctx, model.MatchEvent{MatchID: "m1", Type: "goal", Side: "both", Minute: 5})

			Convey("Then it should be invalid input", func() {
				So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
				So(errors.Is(err, momentum.ErrInvalidSide), ShouldBeTrue)
			})
		})

		Convey("When the match does not exist", func() {
			_, _, err := svc.ProcessEvent(ctx, model.MatchEvent{MatchID: "nope", Type: "goal", Side: "home", Minute: 5})

			Convey("Then it should be not found", func() {
				So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When asking for a forecast beyond the limit", func() {
			_, err := svc.Forecast(ctx, "m1", 11)

			Convey("Then it should be invalid input", func() {
				So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
			})
		})

		Convey("When asking for an unrecorded minute", func() {
			minute := 77
			_, err := svc.Analyze(ctx, "m1", &minute)

			Convey("Then it should be not found", func() {
				So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
				So(errors.Is(err, momentum.ErrMinuteNotRecorded), ShouldBeTrue)
			})
		})

		Convey("When asking for triggers of no side", func() {
			_, err := svc.Triggers(ctx, "m1", momentum.NoSide)

			Convey("Then it should be invalid input", func() {
				So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
			})
		})
	})
}

func TestService_DeleteForgetsEventIDs(t *testing.T) {
	Convey("Given a match that saw an event id", t, func() {
		ctx := context.Background()
		svc := startService(service.WithWorkerCount(1))
		defer svc.Stop()

		_, _, err := svc.CreateMatch(ctx, "replay", momentum.DefaultInitConfig())
		So(err, ShouldBeNil)
		_, _, err = svc.ProcessEvent(ctx, model.MatchEvent{MatchID: "replay", EventID: "e1", Type: "missed_chance", Side: "home", Minute: 1})
		So(err, ShouldBeNil)

		Convey("When the match is deleted and recreated", func() {
			So(svc.DeleteMatch(ctx, "replay"), ShouldBeNil)
			_, _, err := svc.CreateMatch(ctx, "replay", momentum.DefaultInitConfig())
			So(err, ShouldBeNil)

			Convey("Then the same event id should be accepted again", func() {
				_, dup, err := svc.ProcessEvent(ctx, model.MatchEvent{MatchID: "replay", EventID: "e1", Type: "missed_chance", Side: "home", Minute: 1})
				So(err, ShouldBeNil)
				So(dup, ShouldBeFalse)
			})
		})
	})
}

func TestService_DedupeWithSeparatorInIDs(t *testing.T) {
	Convey("Given matches whose ids contain a colon", t, func() {
		ctx := context.Background()
		svc := startService(service.WithWorkerCount(1))
		defer svc.Stop()

		for _, id := range []string{"a:b", "a"} {
			_, _, err := svc.CreateMatch(ctx, id, momentum.DefaultInitConfig())
			So(err, ShouldBeNil)
		}
		_, dup, err := svc.ProcessEvent(ctx, model.MatchEvent{MatchID: "a:b", EventID: "c", Type: "key_pass", Side: "home", Minute: 1})
		So(err, ShouldBeNil)
		So(dup, ShouldBeFalse)

		Convey("When another match sends an id that would join to the same text", func() {
			_, dup, err := svc.ProcessEvent(ctx, model.MatchEvent{MatchID: "a", EventID: "b:c", Type: "key_pass", Side: "home", Minute: 1})

			Convey("Then it should not be treated as a duplicate", func() {
				So(err, ShouldBeNil)
				So(dup, ShouldBeFalse)
			})
		})

		Convey("When the shorter match is deleted", func() {
			So(svc.DeleteMatch(ctx, "a"), ShouldBeNil)

			Convey("Then the other match should still reject replays", func() {
				_, dup, err := svc.ProcessEvent(ctx, model.MatchEvent{MatchID: "a:b", EventID: "c", Type: "key_pass", Side: "home", Minute: 1})
				So(err, ShouldBeNil)
				So(dup, ShouldBeTrue)
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a started service with a processed event", t, func() {
		ctx := context.Background()
		svc := startService(service.WithWorkerCount(2))
		defer svc.Stop()

		_, _, err := svc.CreateMatch(ctx, "s1", momentum.DefaultInitConfig())
		So(err, ShouldBeNil)
		_, _, err = svc.ProcessEvent(ctx, model.MatchEvent{MatchID: "s1", EventID: "e1", Type: "goal", Side: "away", Minute: 3})
		So(err, ShouldBeNil)

		Convey("Then stats should include runtime figures", func() {
			deadline := time.Now().Add(time.Second)
			var stats map[string]interface{}
			for time.Now().Before(deadline) {
				stats = svc.GetStats()
				if stats["matches"] == 1 {
					break
				}
				time.Sleep(10 * time.Millisecond)
			}
			So(stats["started"], ShouldEqual, true)
			So(stats["matches"], ShouldEqual, 1)
			So(stats["dedupeEntries"], ShouldEqual, int64(1))
			So(stats, ShouldContainKey, "queueLength")
			So(stats, ShouldContainKey, "eventsProcessed")
		})
	})
}
