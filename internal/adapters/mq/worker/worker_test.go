package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/momentum/internal/adapters/mq/queue"
	worker "github.com/okian/momentum/internal/adapters/mq/worker"
	model "github.com/okian/momentum/internal/domain/model"
	logging "github.com/okian/momentum/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	shards []chan model.MatchEvent
	once   sync.Once
}

func newMockQueue(n int) *mockQueue {
	q := &mockQueue{shards: make([]chan model.MatchEvent, n)}
	for i := range q.shards {
		q.shards[i] = make(chan model.MatchEvent, 64)
	}
	return q
}

func (mq *mockQueue) Dequeue(_ context.Context, shard int) <-chan model.MatchEvent {
	return mq.shards[shard]
}

func (mq *mockQueue) Shards() int { return len(mq.shards) }

func (mq *mockQueue) Close() error {
	mq.once.Do(func() {
		for _, ch := range mq.shards {
			close(ch)
		}
	})
	return nil
}

type recordingProcessor struct {
	mu     sync.Mutex
	seen   map[string][]int
	failOn string
}

func newRecordingProcessor() *recordingProcessor {
	return &recordingProcessor{seen: make(map[string][]int)}
}

func (p *recordingProcessor) Process(_ context.Context, e model.MatchEvent) error { //nolint:gocritic // test double
	if e.EventID == p.failOn {
		return errors.New("engine rejected event")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen[e.MatchID] = append(p.seen[e.MatchID], e.Minute)
	return nil
}

func (p *recordingProcessor) minutes(matchID string) []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.seen[matchID]...)
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker bound to one shard", t, func() {
		_ = logging.Init()

		q := newMockQueue(1)
		proc := newRecordingProcessor()
		w := worker.NewInMemoryWorker(q, 0, proc, worker.WithName("test-worker"))
		go w.Run(context.Background())
		defer func() { _ = w.Shutdown(context.Background()) }()

		convey.Convey("When events arrive", func() {
			for i := 1; i <= 3; i++ {
				q.shards[0] <- model.MatchEvent{EventID: fmt.Sprintf("e%d", i), MatchID: "m1", Minute: i}
			}

			convey.Convey("Then they are processed in order", func() {
				convey.So(waitFor(func() bool { return w.Processed() == 3 }), convey.ShouldBeTrue)
				convey.So(proc.minutes("m1"), convey.ShouldResemble, []int{1, 2, 3})
			})
		})

		convey.Convey("When processing fails", func() {
			proc.failOn = "bad"
			q.shards[0] <- model.MatchEvent{EventID: "bad", MatchID: "m1", Minute: 1}
			q.shards[0] <- model.MatchEvent{EventID: "good", MatchID: "m1", Minute: 2}

			convey.Convey("Then the worker keeps going", func() {
				convey.So(waitFor(func() bool { return w.Processed() == 1 }), convey.ShouldBeTrue)
				convey.So(proc.minutes("m1"), convey.ShouldResemble, []int{2})
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			convey.Convey("Then it should shutdown gracefully", func() {
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})

			convey.Convey("Then shutting down twice is harmless", func() {
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})
}

func TestProcessorFunc(t *testing.T) {
	convey.Convey("Given a function adapted to Processor", t, func() {
		var got string
		var p worker.Processor = worker.ProcessorFunc(func(_ context.Context, e model.MatchEvent) error {
			got = e.EventID
			return nil
		})

		convey.Convey("Then Process calls it", func() {
			convey.So(p.Process(context.Background(), model.MatchEvent{EventID: "x"}), convey.ShouldBeNil)
			convey.So(got, convey.ShouldEqual, "x")
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool over a sharded queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithShards(4), queue.WithCapacity(4000))
		proc := newRecordingProcessor()
		pool := worker.NewPool(q, proc)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.Convey("Then there is one worker per shard", func() {
			convey.So(pool.Size(), convey.ShouldEqual, 4)
		})

		convey.Convey("When many matches stream events concurrently", func() {
			const matches, perMatch = 8, 100
			var wg sync.WaitGroup
			for m := 0; m < matches; m++ {
				wg.Add(1)
				go func(m int) {
					defer wg.Done()
					for i := 0; i < perMatch; i++ {
						e := model.MatchEvent{EventID: fmt.Sprintf("e%d", i), MatchID: fmt.Sprintf("m%d", m), Minute: i}
						for q.Enqueue(context.Background(), e) != nil {
							time.Sleep(time.Millisecond)
						}
					}
				}(m)
			}
			wg.Wait()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			err := pool.Shutdown(shutdownCtx)

			convey.Convey("Then every event is applied once and in order per match", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(pool.Processed(), convey.ShouldEqual, matches*perMatch)
				for m := 0; m < matches; m++ {
					minutes := proc.minutes(fmt.Sprintf("m%d", m))
					convey.So(minutes, convey.ShouldHaveLength, perMatch)
					ordered := true
					for i := 1; i < len(minutes); i++ {
						if minutes[i] <= minutes[i-1] {
							ordered = false
						}
					}
					convey.So(ordered, convey.ShouldBeTrue)
				}
			})
		})
	})
}

func TestWorkerPool_DrainsAfterCancel(t *testing.T) {
	convey.Convey("Given a pool whose start context is already canceled", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithShards(2), queue.WithCapacity(100))
		proc := newRecordingProcessor()
		pool := worker.NewPool(q, proc)
		ctx, cancel := context.WithCancel(context.Background())
		pool.Start(ctx)
		cancel()

		convey.Convey("When events are enqueued and the pool is shut down", func() {
			for i := 1; i <= 5; i++ {
				e := model.MatchEvent{EventID: fmt.Sprintf("e%d", i), MatchID: "m1", Minute: i}
				convey.So(q.Enqueue(context.Background(), e), convey.ShouldBeNil)
			}
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			err := pool.Shutdown(shutdownCtx)

			convey.Convey("Then every queued event is still applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(pool.Processed(), convey.ShouldEqual, 5)
				convey.So(proc.minutes("m1"), convey.ShouldResemble, []int{1, 2, 3, 4, 5})
			})
		})
	})
}
