package testevents

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/stitchsocial/clout/pkg/logger"
)

// Constants for random number generation.
const (
	eventIDDivisor    = 10000
	amountCaseDivisor = 8
)

// Pool sizing: several events land on the same creator so the aggregator
// has something to sum.
const (
	eventsPerCreator = 4
)

// Constants for XP amount generation ranges.
const (
	tapBatchMin        = 1
	tapBatchRange      = 49
	contentRewardMin   = 100
	contentRewardRange = 400
	challengeMin       = 500
	challengeRange     = 1500
	jackpotMin         = 5000
	jackpotRange       = 15000
	trickleMin         = 1
	trickleRange       = 9
	streakMin          = 200
	streakRange        = 300
	referralMin        = 50
	referralRange      = 150
	wideMin            = 1
	wideRange          = 9999
)

// Constants for amount distribution cases.
const (
	caseTapBatch      = 0
	caseContentReward = 1
	caseChallenge     = 2
	caseJackpot       = 3
	caseTrickle       = 4
	caseStreak        = 5
	caseReferral      = 6
	caseWide          = 7
)

// communityIDs is the fixed set of communities events are spread across.
var communityIDs = []string{
	"community-dance",
	"community-gaming",
	"community-music",
	"community-comedy",
	"community-food",
}

// randomInt64 returns a random int64 in [0, n) using crypto/rand.
func randomInt64(n int64) int64 {
	v, _ := rand.Int(rand.Reader, big.NewInt(n))
	return v.Int64()
}

// generateEvents creates the specified number of events over a pool of
// creator IDs.
func generateEvents(ctx context.Context, config *Config, stats *Stats) ([]Event, error) {
	logger.Get().Info(ctx, "generating events over a creator pool", logger.Int("numEvents", config.NumEvents))

	events := make([]Event, config.NumEvents)

	// Pre-allocate the creator pool; events are assigned round-robin so each
	// creator accrues XP in more than one community.
	poolSize := config.NumEvents / eventsPerCreator
	if poolSize < 1 {
		poolSize = 1
	}
	creatorIDs := make([]string, poolSize)
	for i := range creatorIDs {
		creatorIDs[i] = uuid.New().String()
	}

	// Generate events concurrently
	type eventResult struct {
		index int
		event Event
		err   error
	}

	resultChan := make(chan eventResult, config.NumEvents)

	// Use worker pool for event generation
	workerCount := minInt(config.Workers, config.NumEvents)
	eventsPerWorker := config.NumEvents / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * eventsPerWorker
		end := start + eventsPerWorker
		if worker == workerCount-1 {
			end = config.NumEvents // Last worker gets remaining events
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- eventResult{index: i, err: ctx.Err()}
					return
				default:
					event := generateSingleEvent(i, creatorIDs[i%len(creatorIDs)])
					resultChan <- eventResult{index: i, event: event, err: nil}
				}
			}
		}(start, end)
	}

	// Collect results
	for i := 0; i < config.NumEvents; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during event generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate event %d: %w", result.index, result.err)
			}
			events[result.index] = result.event
		}
	}

	stats.EventsGenerated = len(events)
	logger.Get().Info(ctx, "generated events successfully",
		logger.Int("count", len(events)),
		logger.Int("creators", len(creatorIDs)))

	return events, nil
}

// generateSingleEvent creates a single event with the given index and creator ID.
func generateSingleEvent(index int, creatorID string) Event {
	amount := generateVariedAmount()

	community := communityIDs[int(randomInt64(int64(len(communityIDs))))]

	// Current timestamp in RFC3339 format
	timestamp := time.Now().UTC().Format(time.RFC3339)

	// Generate unique event ID
	eventID := "event_" + strconv.FormatInt(int64(index), 10) + "_" + strconv.FormatInt(time.Now().Unix(), 10) + "_" + strconv.FormatInt(randomInt64(eventIDDivisor), 10)

	return Event{
		EventID:     eventID,
		CreatorID:   creatorID,
		CommunityID: community,
		Amount:      amount,
		TS:          timestamp,
	}
}

// generateVariedAmount creates an XP amount with varied distribution.
func generateVariedAmount() int64 {
	switch randomInt64(amountCaseDivisor) {
	case caseTapBatch:
		// Clicker taps flushed in small batches - most common
		return tapBatchMin + randomInt64(tapBatchRange)
	case caseContentReward:
		// Published content rewards
		return contentRewardMin + randomInt64(contentRewardRange)
	case caseChallenge:
		// Community challenge completions
		return challengeMin + randomInt64(challengeRange)
	case caseJackpot:
		// Viral spikes - rare
		return jackpotMin + randomInt64(jackpotRange)
	case caseTrickle:
		// Single-digit passive drips
		return trickleMin + randomInt64(trickleRange)
	case caseStreak:
		// Daily streak bonuses
		return streakMin + randomInt64(streakRange)
	case caseReferral:
		// Referral rewards
		return referralMin + randomInt64(referralRange)
	case caseWide:
		// Random across the full range
		return wideMin + randomInt64(wideRange)
	default:
		return wideMin + randomInt64(wideRange)
	}
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
