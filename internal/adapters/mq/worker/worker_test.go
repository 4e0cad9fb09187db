package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	queue "github.com/stitchsocial/clout/internal/adapters/mq/queue"
	worker "github.com/stitchsocial/clout/internal/adapters/mq/worker"
	"github.com/stitchsocial/clout/internal/adapters/repository"
	model "github.com/stitchsocial/clout/internal/domain/model"
	"github.com/stitchsocial/clout/internal/domain/progression"
	"github.com/stitchsocial/clout/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// failingUpdater always rejects upserts.
type failingUpdater struct{}

func (f *failingUpdater) Upsert(ctx context.Context, creatorID string, state progression.GlobalState) (bool, error) {
	return false, errors.New("store unavailable")
}

// recordingUpdater captures the last state written per creator.
type recordingUpdater struct {
	mu     sync.Mutex
	states map[string]progression.GlobalState
}

func newRecordingUpdater() *recordingUpdater {
	return &recordingUpdater{states: make(map[string]progression.GlobalState)}
}

func (r *recordingUpdater) Upsert(ctx context.Context, creatorID string, state progression.GlobalState) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	changed := r.states[creatorID] != state
	r.states[creatorID] = state
	return changed, nil
}

func (r *recordingUpdater) state(creatorID string) progression.GlobalState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[creatorID]
}

func drainAndProcess(events ...model.XPEvent) (*recordingUpdater, *repository.MilestoneLedger) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemoryQueue(queue.WithCapacity(len(events) + 1))
	xp := repository.NewXPStore()
	ledger := repository.NewMilestoneLedger()
	updater := newRecordingUpdater()

	w := worker.NewInMemoryWorker(q, xp, ledger, updater, worker.WithName("test-worker"))
	go w.Run(ctx)

	for _, e := range events {
		q.Enqueue(ctx, e)
	}
	time.Sleep(200 * time.Millisecond)
	_ = q.Close()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	_ = w.Shutdown(shutdownCtx)

	return updater, ledger
}

func TestWorkerProcessesXPEvents(t *testing.T) {
	Convey("Given a worker wired to an XP store, ledger and leaderboard", t, func() {
		Convey("When a single XP event is processed", func() {
			updater, _ := drainAndProcess(model.XPEvent{
				EventID:     "event-1",
				CreatorID:   "creator-1",
				CommunityID: "community-a",
				Amount:      400,
			})

			Convey("Then the creator's recomputed state is published", func() {
				state := updater.state("creator-1")
				So(state.TotalGlobalXP, ShouldEqual, 100) // floor(400 * 0.25)
				So(state.CommunitiesActive, ShouldEqual, 1)
				So(state.GlobalLevel, ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When events for several communities accumulate", func() {
			updater, _ := drainAndProcess(
				model.XPEvent{EventID: "e1", CreatorID: "creator-1", CommunityID: "community-a", Amount: 40},
				model.XPEvent{EventID: "e2", CreatorID: "creator-1", CommunityID: "community-b", Amount: 200},
			)

			Convey("Then contributions floor per community before summing", func() {
				state := updater.state("creator-1")
				So(state.TotalGlobalXP, ShouldEqual, 60) // 10 + 50
				So(state.CommunitiesActive, ShouldEqual, 2)
			})
		})

		Convey("When enough XP lands to cross a milestone", func() {
			// A quarter of 20000 is 5000 XP, comfortably past level 10.
			updater, ledger := drainAndProcess(model.XPEvent{
				EventID:     "big",
				CreatorID:   "creator-1",
				CommunityID: "community-a",
				Amount:      20_000,
			})

			Convey("Then the milestone is recorded in the ledger", func() {
				So(ledger.Awarded(context.Background(), "creator-1").Has(10), ShouldBeTrue)
			})

			Convey("And the published state carries the clout bonus", func() {
				So(updater.state("creator-1").PermanentCloutBonus, ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestWorkerMilestoneReportedOnce(t *testing.T) {
	Convey("Given repeated recomputes at or above a milestone level", t, func() {
		events := make([]model.XPEvent, 0, 5)
		for i := 0; i < 5; i++ {
			events = append(events, model.XPEvent{
				EventID:     "e" + string(rune('0'+i)),
				CreatorID:   "creator-1",
				CommunityID: "community-a",
				Amount:      20_000,
			})
		}
		_, ledger := drainAndProcess(events...)

		Convey("Then the ledger holds each crossed milestone exactly once", func() {
			awarded := ledger.Awarded(context.Background(), "creator-1")
			So(awarded.Has(10), ShouldBeTrue)
			// Insert-only set: levels appear once by construction; the
			// interesting property is that no level was ever re-reported,
			// which Record guarantees by returning only the delta.
			So(len(awarded.Levels()), ShouldBeGreaterThan, 0)
		})
	})
}

func TestWorkerUpdaterFailure(t *testing.T) {
	Convey("Given a worker whose leaderboard rejects writes", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		xp := repository.NewXPStore()
		ledger := repository.NewMilestoneLedger()

		w := worker.NewInMemoryWorker(q, xp, ledger, &failingUpdater{})
		go w.Run(ctx)

		Convey("When an event is processed", func() {
			q.Enqueue(ctx, model.XPEvent{
				EventID:     "e1",
				CreatorID:   "creator-1",
				CommunityID: "community-a",
				Amount:      100,
			})
			time.Sleep(100 * time.Millisecond)

			Convey("Then the XP credit itself still lands", func() {
				totals, ok := xp.Totals(ctx, "creator-1")
				So(ok, ShouldBeTrue)
				So(totals["community-a"], ShouldEqual, 100)
			})
		})

		_ = q.Close()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
		defer shutdownCancel()
		_ = w.Shutdown(shutdownCtx)
	})
}

func TestWorkerPoolLifecycle(t *testing.T) {
	Convey("Given a worker pool", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(1000))
		xp := repository.NewXPStore()
		ledger := repository.NewMilestoneLedger()
		updater := newRecordingUpdater()

		pool := worker.NewPool(4, q, xp, ledger, updater)
		pool.Start(ctx)

		Convey("When many events for many creators are enqueued", func() {
			for i := 0; i < 200; i++ {
				q.Enqueue(ctx, model.XPEvent{
					EventID:     "pool-event-" + string(rune('a'+i%26)) + string(rune('0'+i%10)),
					CreatorID:   "creator-" + string(rune('a'+i%8)),
					CommunityID: "community-" + string(rune('a'+i%3)),
					Amount:      50,
				})
			}
			time.Sleep(300 * time.Millisecond)

			Convey("Then every creator ends up with a published state", func() {
				for i := 0; i < 8; i++ {
					id := "creator-" + string(rune('a'+i))
					So(updater.state(id).CommunitiesActive, ShouldBeGreaterThan, 0)
				}
			})
		})

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer shutdownCancel()
		So(pool.Shutdown(shutdownCtx), ShouldBeNil)
	})
}
