package testevents

import (
	"context"
	"fmt"
	"log"
	"sort"
)

// verifyResults verifies the consistency of rankings and leaderboard.
func verifyResults(ctx context.Context, config *Config, rankings, leaderboard []Entry, stats *Stats) error {
	log.Println("🔍 Verifying results...")

	if len(rankings) == 0 {
		return fmt.Errorf("no rankings to verify")
	}

	// Sort rankings by global XP (descending) to get top creators
	sortedRankings := make([]Entry, len(rankings))
	copy(sortedRankings, rankings)
	sort.Slice(sortedRankings, func(i, j int) bool {
		return sortedRankings[i].GlobalXP > sortedRankings[j].GlobalXP
	})

	// Verify leaderboard consistency if we have leaderboard data
	if len(leaderboard) > 0 {
		if err := verifyLeaderboardConsistency(sortedRankings, leaderboard); err != nil {
			log.Printf("⚠️  Leaderboard consistency warning: %v", err)
		} else {
			log.Println("✅ Leaderboard consistency verified")
		}
	}

	// Display top creators
	displayTopCreators(sortedRankings, leaderboard, config.Verbose)

	log.Println("✅ Result verification completed")
	return nil
}

// verifyLeaderboardConsistency checks if leaderboard matches top rankings.
func verifyLeaderboardConsistency(sortedRankings, leaderboard []Entry) error {
	if len(leaderboard) == 0 {
		return fmt.Errorf("empty leaderboard")
	}

	// Check if top entry in leaderboard matches highest ranked creator
	topRanking := sortedRankings[0]
	topLeaderboard := leaderboard[0]

	if topRanking.CreatorID != topLeaderboard.CreatorID {
		return fmt.Errorf("top leaderboard entry (%s) does not match top ranked creator (%s)",
			topLeaderboard.CreatorID, topRanking.CreatorID)
	}

	if topRanking.GlobalXP != topLeaderboard.GlobalXP {
		return fmt.Errorf("top leaderboard XP (%d) does not match top ranked XP (%d)",
			topLeaderboard.GlobalXP, topRanking.GlobalXP)
	}

	// Check if leaderboard is properly sorted
	for i := 1; i < len(leaderboard); i++ {
		if leaderboard[i].GlobalXP > leaderboard[i-1].GlobalXP {
			return fmt.Errorf("leaderboard not properly sorted: entry %d has more XP than entry %d",
				i, i-1)
		}
	}

	return nil
}

// displayTopCreators shows the top creators from rankings and leaderboard.
func displayTopCreators(sortedRankings, leaderboard []Entry, verbose bool) {
	topN := 10
	if len(sortedRankings) < topN {
		topN = len(sortedRankings)
	}

	log.Printf("🏆 Top %d creators from rankings:", topN)
	for i := 0; i < topN; i++ {
		entry := sortedRankings[i]
		log.Printf("   %d. %s - XP: %d (level %d)", i+1, entry.CreatorID, entry.GlobalXP, entry.GlobalLevel)
	}

	if len(leaderboard) > 0 {
		leaderboardTopN := topN
		if len(leaderboard) < leaderboardTopN {
			leaderboardTopN = len(leaderboard)
		}

		log.Printf("🥇 Top %d creators from leaderboard:", leaderboardTopN)
		for i := 0; i < leaderboardTopN; i++ {
			entry := leaderboard[i]
			log.Printf("   %d. %s - XP: %d (level %d)", i+1, entry.CreatorID, entry.GlobalXP, entry.GlobalLevel)
		}
	}

	if verbose {
		// Show some statistics
		if len(sortedRankings) > 0 {
			avgXP := calculateAverageXP(sortedRankings)
			maxXP := sortedRankings[0].GlobalXP
			minXP := sortedRankings[len(sortedRankings)-1].GlobalXP

			log.Printf(`📊 XP statistics:
   Average: %.1f
   Maximum: %d
   Minimum: %d
`, avgXP, maxXP, minXP)
		}
	}
}

// calculateAverageXP calculates the average global XP from rankings.
func calculateAverageXP(rankings []Entry) float64 {
	if len(rankings) == 0 {
		return 0
	}

	var sum int64
	for _, entry := range rankings {
		sum += entry.GlobalXP
	}

	return float64(sum) / float64(len(rankings))
}
