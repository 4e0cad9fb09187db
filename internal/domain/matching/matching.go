// Package matching computes sponsorship match scores between campaign
// requirements and creator metrics.
//
// Scoring is additive with a single hard gate: a creator below the campaign's
// minimum tier scores exactly 0. Every other criterion contributes a positive
// amount when satisfied, a smaller penalty when explicitly unmet, or a fixed
// neutral credit when the campaign left it unspecified. The result is always
// clamped to [0, 100].
package matching

import (
	"strings"

	"github.com/stitchsocial/clout/internal/domain/types"
)

// Scoring table constants.
const (
	tierPassBonus = 20

	thresholdMetBonus     = 15
	thresholdUnmetPenalty = 10
	thresholdNeutral      = 10

	viewsMetBonus     = 10
	viewsUnmetPenalty = 5
	viewsNeutral      = 5

	categoryMatchBonus = 20
	categoryNeutral    = 10

	hashtagPerMatch = 5
	hashtagCap      = 15
	hashtagNeutral  = 5

	maxScore = 100
)

// CampaignRequirements holds sponsor-defined eligibility and preference
// criteria. Nil threshold fields mean the sponsor set no requirement; an
// unset requirement still earns the creator a fixed neutral credit rather
// than counting as satisfied.
type CampaignRequirements struct {
	MinimumTier        types.Tier
	MinFollowers       *int64
	MinEngagementScore *float64
	MinEngagementRate  *float64
	MinViews           *int64

	PreferredCategories []string
	RequiredHashtags    []string
}

// CreatorMetrics is an immutable snapshot of a creator's measured
// performance, supplied fresh per scoring call.
type CreatorMetrics struct {
	Tier            types.Tier
	Followers       int64
	EngagementScore float64
	EngagementRate  float64
	Views           int64
	Category        string // empty means unknown
	Hashtags        []string
}

// Score computes the match score for a creator against a campaign.
// Total over its input domain: no errors, no side effects.
func Score(req CampaignRequirements, m CreatorMetrics) int {
	// Hard gate: below the minimum tier there is no partial credit.
	if m.Tier.Rank() < req.MinimumTier.Rank() {
		return 0
	}

	score := tierPassBonus

	switch {
	case req.MinFollowers == nil:
		score += thresholdNeutral
	case m.Followers >= *req.MinFollowers:
		score += thresholdMetBonus
	default:
		score -= thresholdUnmetPenalty
	}

	switch {
	case req.MinEngagementScore == nil:
		score += thresholdNeutral
	case m.EngagementScore >= *req.MinEngagementScore:
		score += thresholdMetBonus
	default:
		score -= thresholdUnmetPenalty
	}

	switch {
	case req.MinEngagementRate == nil:
		score += thresholdNeutral
	case m.EngagementRate >= *req.MinEngagementRate:
		score += thresholdMetBonus
	default:
		score -= thresholdUnmetPenalty
	}

	switch {
	case req.MinViews == nil:
		score += viewsNeutral
	case m.Views >= *req.MinViews:
		score += viewsMetBonus
	default:
		score -= viewsUnmetPenalty
	}

	// Category has no penalty branch: anything short of a confirmed match
	// (preferences present, creator category known, and contained) earns
	// the neutral credit, mismatch included.
	if len(req.PreferredCategories) > 0 && m.Category != "" && containsFold(req.PreferredCategories, m.Category) {
		score += categoryMatchBonus
	} else {
		score += categoryNeutral
	}

	if len(req.RequiredHashtags) == 0 {
		score += hashtagNeutral
	} else {
		overlap := hashtagOverlap(req.RequiredHashtags, m.Hashtags) * hashtagPerMatch
		if overlap > hashtagCap {
			overlap = hashtagCap
		}
		score += overlap
	}

	if score < 0 {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

// containsFold reports whether set contains s, ignoring case.
func containsFold(set []string, s string) bool {
	for _, v := range set {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// hashtagOverlap counts distinct required tags the creator also uses,
// ignoring case and a leading '#'.
func hashtagOverlap(required, used []string) int {
	seen := make(map[string]struct{}, len(used))
	for _, tag := range used {
		seen[normalizeTag(tag)] = struct{}{}
	}
	counted := make(map[string]struct{}, len(required))
	overlap := 0
	for _, tag := range required {
		key := normalizeTag(tag)
		if _, dup := counted[key]; dup {
			continue
		}
		counted[key] = struct{}{}
		if _, ok := seen[key]; ok {
			overlap++
		}
	}
	return overlap
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
}
