package service_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	service "github.com/stitchsocial/clout/internal/app"
	"github.com/stitchsocial/clout/internal/domain/matching"
	"github.com/stitchsocial/clout/internal/domain/model"
	"github.com/stitchsocial/clout/internal/domain/types"
	"github.com/stitchsocial/clout/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(50_000),
			service.WithDedupeSize(25_000),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		// Ensure service is stopped after test
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
			})
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_SeenAndRecord(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)
		// Ensure service is stopped after test
		defer svc.Stop()

		Convey("When checking a new event ID", func() {
			eventID := "event-123"
			seen := svc.SeenAndRecord(ctx, eventID)

			Convey("Then it should not have been seen before", func() {
				So(seen, ShouldBeFalse)
			})
		})

		Convey("When checking the same event ID again", func() {
			eventID := "event-456"
			svc.SeenAndRecord(ctx, eventID)         // First time
			seen := svc.SeenAndRecord(ctx, eventID) // Second time

			Convey("Then it should have been seen before", func() {
				So(seen, ShouldBeTrue)
			})
		})
	})
}

func TestService_Enqueue(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)
		// Ensure service is stopped after test
		defer svc.Stop()

		Convey("When enqueueing a valid XP event", func() {
			event := model.XPEvent{
				EventID:     "event-123",
				CreatorID:   "creator-456",
				CommunityID: "community-a",
				Amount:      250,
			}

			success := svc.Enqueue(ctx, event)

			Convey("Then it should be enqueued successfully", func() {
				So(success, ShouldBeTrue)
			})
		})

		Convey("When gating a submission through the deduper", func() {
			event := model.XPEvent{
				EventID:     "event-dup",
				CreatorID:   "creator-456",
				CommunityID: "community-a",
				Amount:      250,
			}

			first := svc.SeenAndRecord(ctx, event.EventID)
			So(first, ShouldBeFalse)
			So(svc.Enqueue(ctx, event), ShouldBeTrue)

			second := svc.SeenAndRecord(ctx, event.EventID)

			Convey("Then the second submission is flagged as a duplicate", func() {
				So(second, ShouldBeTrue)
			})
		})
	})
}

func TestService_Progression(t *testing.T) {
	Convey("Given a started service with processed XP", t, func() {
		svc := service.New(service.WithWorkerCount(2))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		svc.Enqueue(ctx, model.XPEvent{
			EventID:     "prog-1",
			CreatorID:   "creator-1",
			CommunityID: "community-a",
			Amount:      400,
		})
		time.Sleep(200 * time.Millisecond)

		Convey("When fetching the creator's progression", func() {
			state, awarded, err := svc.Progression(ctx, "creator-1")

			Convey("Then it should return the derived global state", func() {
				So(err, ShouldBeNil)
				So(state.TotalGlobalXP, ShouldEqual, 100)
				So(state.CommunitiesActive, ShouldEqual, 1)
				So(awarded, ShouldBeEmpty)
			})
		})

		Convey("When fetching an unknown creator", func() {
			_, _, err := svc.Progression(ctx, "creator-unknown")

			Convey("Then it should report not found", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestService_MatchScore(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New()

		Convey("When scoring a creator with no campaign requirements set", func() {
			score := svc.MatchScore(matching.CampaignRequirements{}, matching.CreatorMetrics{
				Tier: types.TierInfluencer,
			})

			Convey("Then the neutral baseline applies", func() {
				So(score, ShouldEqual, 70)
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()

		Convey("When getting stats before starting", func() {
			stats := svc.GetStats()

			Convey("Then it should return basic stats", func() {
				So(stats, ShouldNotBeNil)
				So(stats["started"], ShouldEqual, false)
			})
		})
	})
}
