// Package progression aggregates per-community XP into a creator's global
// progression state.
//
// Recalculate is pure and idempotent: the whole state, the cumulative clout
// bonus included, is derived from scratch on every call rather than
// incremented. The milestone ledger supplied by the caller is only consumed
// and extended here; persisting the union is the caller's job, and that
// persistence is what makes a milestone reportable as new at most once.
package progression

import (
	"sort"

	"github.com/stitchsocial/clout/internal/domain/leveling"
)

// globalShareDivisor fixes each community's contribution to the global
// total at a quarter of its XP, floored per community before summation.
const globalShareDivisor = 4

// GlobalState is a creator's derived cross-community progression snapshot.
type GlobalState struct {
	TotalGlobalXP       int64 `json:"total_global_xp"`
	GlobalLevel         int   `json:"global_level"`
	TapMultiplierBonus  int   `json:"tap_multiplier_bonus"`
	PermanentCloutBonus int64 `json:"permanent_clout_bonus"`
	CommunitiesActive   int   `json:"communities_active"`
}

// MilestoneSet tracks milestone levels already credited to a creator.
// Insert-only; it never shrinks.
type MilestoneSet map[int]struct{}

// NewMilestoneSet builds a set from previously credited levels.
func NewMilestoneSet(levels ...int) MilestoneSet {
	s := make(MilestoneSet, len(levels))
	for _, l := range levels {
		s[l] = struct{}{}
	}
	return s
}

// Has reports whether level was already credited.
func (s MilestoneSet) Has(level int) bool {
	_, ok := s[level]
	return ok
}

// Add records level as credited.
func (s MilestoneSet) Add(level int) {
	s[level] = struct{}{}
}

// Union returns a new set containing both operands' levels.
func (s MilestoneSet) Union(other MilestoneSet) MilestoneSet {
	out := make(MilestoneSet, len(s)+len(other))
	for l := range s {
		out[l] = struct{}{}
	}
	for l := range other {
		out[l] = struct{}{}
	}
	return out
}

// Levels returns the credited levels in ascending order.
func (s MilestoneSet) Levels() []int {
	out := make([]int, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Ints(out)
	return out
}

// Recalculate derives the global progression state from per-community XP
// totals and reports which milestones the creator crossed for the first
// time. Negative community totals clamp to zero. An empty mapping yields
// the zero state at the floor level with no awards.
func Recalculate(perCommunityXP map[string]int64, awarded MilestoneSet) (GlobalState, []int) {
	var total int64
	active := 0
	for _, xp := range perCommunityXP {
		if xp <= 0 {
			continue
		}
		total += xp / globalShareDivisor
		active++
	}

	level := leveling.LevelFromXP(total)
	state := GlobalState{
		TotalGlobalXP:       total,
		GlobalLevel:         level,
		TapMultiplierBonus:  leveling.TapMultiplierForLevel(level),
		PermanentCloutBonus: leveling.CumulativeCloutBonus(level),
		CommunitiesActive:   active,
	}

	var newly []int
	for _, m := range leveling.Milestones() {
		if m > level {
			break
		}
		if !awarded.Has(m) {
			newly = append(newly, m)
		}
	}
	return state, newly
}
