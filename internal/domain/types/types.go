// Package types contains common types used across the application
package types

import "strings"

// Tier classifies a creator by clout range. Tiers form a total order:
// each constant ranks strictly above the one before it.
type Tier int

const (
	TierRookie Tier = iota
	TierRising
	TierMicro
	TierInfluencer
	TierMacro
	TierElite
)

// tierNames maps tiers to their wire/display names.
var tierNames = map[Tier]string{
	TierRookie:     "rookie",
	TierRising:     "rising",
	TierMicro:      "micro",
	TierInfluencer: "influencer",
	TierMacro:      "macro",
	TierElite:      "elite",
}

// Rank returns the ordinal position of the tier in the clout order.
// Higher rank means a bigger clout range.
func (t Tier) Rank() int {
	return int(t)
}

// String returns the wire name of the tier.
func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return "rookie"
}

// Valid reports whether the tier is one of the known constants.
func (t Tier) Valid() bool {
	_, ok := tierNames[t]
	return ok
}

// ParseTier resolves a wire name to a Tier. Unknown names normalize to
// TierRookie so callers never have to handle a parse failure.
func ParseTier(s string) Tier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rising":
		return TierRising
	case "micro":
		return TierMicro
	case "influencer":
		return TierInfluencer
	case "macro":
		return TierMacro
	case "elite":
		return TierElite
	default:
		return TierRookie
	}
}

// Entry represents a progression leaderboard row.
type Entry struct {
	Rank              int    `json:"rank"`
	CreatorID         string `json:"creator_id"`
	GlobalXP          int64  `json:"global_xp"`
	GlobalLevel       int    `json:"global_level"`
	CloutBonus        int64  `json:"clout_bonus"`
	CommunitiesActive int    `json:"communities_active"`
}
