package matching_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	matching "github.com/stitchsocial/clout/internal/domain/matching"
	types "github.com/stitchsocial/clout/internal/domain/types"
)

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }

func TestScoreTierGate(t *testing.T) {
	Convey("Given a campaign requiring the influencer tier", t, func() {
		req := matching.CampaignRequirements{MinimumTier: types.TierInfluencer}

		Convey("When the creator is below the minimum tier", func() {
			m := matching.CreatorMetrics{Tier: types.TierMicro}

			Convey("Then the score is exactly zero with no partial credit", func() {
				So(matching.Score(req, m), ShouldEqual, 0)
			})
		})

		Convey("When every lower tier is tried", func() {
			Convey("Then each one gates to zero", func() {
				for _, tier := range []types.Tier{types.TierRookie, types.TierRising, types.TierMicro} {
					m := matching.CreatorMetrics{
						Tier:      tier,
						Followers: 1_000_000,
						Views:     1_000_000,
					}
					So(matching.Score(req, m), ShouldEqual, 0)
				}
			})
		})

		Convey("When the creator meets the tier exactly", func() {
			m := matching.CreatorMetrics{Tier: types.TierInfluencer}

			Convey("Then the tier-pass base plus all neutral credits apply", func() {
				// 20 base + 10+10+10 threshold neutrals + 5 views neutral +
				// 10 category neutral + 5 hashtag neutral.
				So(matching.Score(req, m), ShouldEqual, 70)
			})
		})

		Convey("When the creator exceeds the tier", func() {
			m := matching.CreatorMetrics{Tier: types.TierElite}

			Convey("Then the gate passes", func() {
				So(matching.Score(req, m), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestScoreThresholds(t *testing.T) {
	Convey("Given a campaign with all numeric thresholds set", t, func() {
		req := matching.CampaignRequirements{
			MinimumTier:        types.TierRookie,
			MinFollowers:       i64(10_000),
			MinEngagementScore: f64(50),
			MinEngagementRate:  f64(0.05),
			MinViews:           i64(100_000),
		}

		Convey("When the creator meets every threshold", func() {
			m := matching.CreatorMetrics{
				Tier:            types.TierMicro,
				Followers:       20_000,
				EngagementScore: 80,
				EngagementRate:  0.08,
				Views:           500_000,
			}

			Convey("Then each met criterion adds its bonus", func() {
				// 20 + 15*3 + 10 + 10 category neutral + 5 hashtag neutral.
				So(matching.Score(req, m), ShouldEqual, 90)
			})
		})

		Convey("When the creator misses every threshold", func() {
			m := matching.CreatorMetrics{Tier: types.TierMicro}

			Convey("Then explicit misses are penalized but the floor holds", func() {
				// 20 - 10*3 - 5 + 10 + 5 = 0.
				So(matching.Score(req, m), ShouldEqual, 0)
			})
		})

		Convey("When thresholds sit exactly at the boundary", func() {
			m := matching.CreatorMetrics{
				Tier:            types.TierMicro,
				Followers:       10_000,
				EngagementScore: 50,
				EngagementRate:  0.05,
				Views:           100_000,
			}

			Convey("Then equality counts as met", func() {
				So(matching.Score(req, m), ShouldEqual, 90)
			})
		})
	})

	Convey("Given a campaign with no thresholds at all", t, func() {
		req := matching.CampaignRequirements{MinimumTier: types.TierRookie}

		Convey("When scoring a creator with zero metrics", func() {
			m := matching.CreatorMetrics{Tier: types.TierRookie}

			Convey("Then the asymmetric neutral credits apply, not full marks", func() {
				So(matching.Score(req, m), ShouldEqual, 70)
			})
		})
	})
}

func TestScoreCategory(t *testing.T) {
	Convey("Given a campaign preferring certain categories", t, func() {
		req := matching.CampaignRequirements{
			MinimumTier:         types.TierRookie,
			PreferredCategories: []string{"comedy", "dance"},
		}

		Convey("When the creator's category matches", func() {
			m := matching.CreatorMetrics{Tier: types.TierRookie, Category: "dance"}

			Convey("Then the match bonus applies", func() {
				So(matching.Score(req, m), ShouldEqual, 80) // 20+10+10+10+5+20+5
			})
		})

		Convey("When the creator's category matches with different casing", func() {
			m := matching.CreatorMetrics{Tier: types.TierRookie, Category: "Dance"}

			Convey("Then the comparison is case-insensitive", func() {
				So(matching.Score(req, m), ShouldEqual, 80)
			})
		})

		Convey("When the creator's category is known but not preferred", func() {
			m := matching.CreatorMetrics{Tier: types.TierRookie, Category: "gaming"}

			Convey("Then an explicit mismatch still earns the neutral credit", func() {
				So(matching.Score(req, m), ShouldEqual, 70)
			})
		})

		Convey("When the creator has no known category", func() {
			m := matching.CreatorMetrics{Tier: types.TierRookie}

			Convey("Then the neutral credit applies", func() {
				So(matching.Score(req, m), ShouldEqual, 70)
			})
		})
	})
}

func TestScoreHashtags(t *testing.T) {
	Convey("Given a campaign requiring hashtags", t, func() {
		req := matching.CampaignRequirements{
			MinimumTier:      types.TierRookie,
			RequiredHashtags: []string{"#fyp", "#stitch", "#duet", "#viral"},
		}
		base := matching.CreatorMetrics{Tier: types.TierRookie}

		score := func(tags ...string) int {
			m := base
			m.Hashtags = tags
			return matching.Score(req, m)
		}

		Convey("When the creator uses none of them", func() {
			Convey("Then the hashtag criterion contributes nothing", func() {
				So(score(), ShouldEqual, 65) // 20+10+10+10+5+10+0
			})
		})

		Convey("When overlap grows one tag at a time", func() {
			Convey("Then the contribution is monotonic at 5 per match", func() {
				So(score("#fyp"), ShouldEqual, 70)
				So(score("#fyp", "#stitch"), ShouldEqual, 75)
				So(score("#fyp", "#stitch", "#duet"), ShouldEqual, 80)
			})
		})

		Convey("When the overlap exceeds three tags", func() {
			Convey("Then the contribution is capped at 15", func() {
				So(score("#fyp", "#stitch", "#duet", "#viral"), ShouldEqual, 80)
			})
		})

		Convey("When tags differ only in case or a leading hash", func() {
			Convey("Then they still count as overlap", func() {
				So(score("FYP", "Stitch"), ShouldEqual, 75)
			})
		})

		Convey("When the required list repeats a tag", func() {
			dup := matching.CampaignRequirements{
				MinimumTier:      types.TierRookie,
				RequiredHashtags: []string{"#fyp", "#fyp", "#fyp", "#fyp"},
			}
			m := base
			m.Hashtags = []string{"#fyp"}

			Convey("Then the overlap is counted once", func() {
				So(matching.Score(dup, m), ShouldEqual, 70)
			})
		})
	})

	Convey("Given a campaign with no required hashtags", t, func() {
		req := matching.CampaignRequirements{MinimumTier: types.TierRookie}
		m := matching.CreatorMetrics{
			Tier:     types.TierRookie,
			Hashtags: []string{"#fyp", "#stitch"},
		}

		Convey("Then the hashtag neutral credit applies regardless of usage", func() {
			So(matching.Score(req, m), ShouldEqual, 70)
		})
	})
}

func TestScoreBounds(t *testing.T) {
	Convey("Given a wide sweep of campaigns and creators", t, func() {
		campaigns := []matching.CampaignRequirements{
			{MinimumTier: types.TierRookie},
			{
				MinimumTier:         types.TierRookie,
				MinFollowers:        i64(1),
				MinEngagementScore:  f64(1),
				MinEngagementRate:   f64(0.01),
				MinViews:            i64(1),
				PreferredCategories: []string{"comedy"},
				RequiredHashtags:    []string{"#a", "#b", "#c", "#d", "#e"},
			},
			{
				MinimumTier:        types.TierElite,
				MinFollowers:       i64(1 << 40),
				MinEngagementScore: f64(1e9),
				MinEngagementRate:  f64(1),
				MinViews:           i64(1 << 40),
			},
		}
		creators := []matching.CreatorMetrics{
			{},
			{Tier: types.TierElite, Followers: 1 << 41, EngagementScore: 1e10, EngagementRate: 2, Views: 1 << 41,
				Category: "comedy", Hashtags: []string{"#a", "#b", "#c", "#d", "#e"}},
			{Tier: types.TierRising, Followers: -5, Views: -5},
		}

		Convey("Then every score lands in [0, 100]", func() {
			for _, req := range campaigns {
				for _, m := range creators {
					s := matching.Score(req, m)
					So(s, ShouldBeGreaterThanOrEqualTo, 0)
					So(s, ShouldBeLessThanOrEqualTo, 100)
				}
			}
		})

		Convey("And a fully-met rich campaign maxes out below the clamp", func() {
			s := matching.Score(campaigns[1], creators[1])
			// 20 + 15+15+15 + 10 + 20 + 15 = 110, clamped.
			So(s, ShouldEqual, 100)
		})
	})
}
