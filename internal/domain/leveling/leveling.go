// Package leveling defines the shared level curve and reward tables.
//
// The curve is the single source of truth for both per-community and global
// leveling. Call sites must not reimplement it, otherwise a creator's local
// and global levels drift apart for the same XP.
package leveling

// Level curve constants.
const (
	// MinLevel is the floor level; zero or negative XP still means level 1.
	MinLevel = 1

	// curveStep controls quadratic XP growth between levels.
	curveStep = 50
)

// tapMultiplierSteps maps level thresholds to tap-bonus multipliers.
// Ascending; the highest threshold at or below the level wins.
var tapMultiplierSteps = []struct {
	level int
	bonus int
}{
	{10, 1},
	{25, 2},
	{50, 3},
	{75, 4},
	{100, 5},
}

// milestones lists the one-time reward levels in ascending order.
var milestones = []int{10, 25, 50, 75, 100, 150, 200}

// XPForLevel returns the total XP required to reach level. Levels at or
// below MinLevel require no XP.
func XPForLevel(level int) int64 {
	if level <= MinLevel {
		return 0
	}
	n := int64(level - 1)
	return curveStep * n * (n + 1)
}

// LevelFromXP returns the highest level whose threshold is at or below xp.
// Negative XP clamps to MinLevel.
func LevelFromXP(xp int64) int {
	if xp <= 0 {
		return MinLevel
	}
	level := MinLevel
	for XPForLevel(level+1) <= xp {
		level++
	}
	return level
}

// TapMultiplierForLevel returns the tap-bonus multiplier for a level.
// The step table is non-decreasing; levels below the lowest threshold
// yield 0.
func TapMultiplierForLevel(level int) int {
	bonus := 0
	for _, step := range tapMultiplierSteps {
		if level < step.level {
			break
		}
		bonus = step.bonus
	}
	return bonus
}

// Milestones returns the milestone levels in ascending order. The returned
// slice is a copy; callers may not mutate the table.
func Milestones() []int {
	out := make([]int, len(milestones))
	copy(out, milestones)
	return out
}

// MilestoneReward returns the one-time clout reward for a milestone level.
// Levels not in the milestone table yield 0.
func MilestoneReward(level int) int64 {
	for _, m := range milestones {
		if m == level {
			return int64(m) * 10
		}
	}
	return 0
}

// CumulativeCloutBonus returns the sum of rewards for every milestone at or
// below level. Recomputed from scratch so it is always consistent with the
// level it was derived from.
func CumulativeCloutBonus(level int) int64 {
	var total int64
	for _, m := range milestones {
		if m > level {
			break
		}
		total += MilestoneReward(m)
	}
	return total
}
