package types_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	types "github.com/stitchsocial/clout/internal/domain/types"
)

func TestTierOrdering(t *testing.T) {
	Convey("Given the tier ladder", t, func() {
		ladder := []types.Tier{
			types.TierRookie,
			types.TierRising,
			types.TierMicro,
			types.TierInfluencer,
			types.TierMacro,
			types.TierElite,
		}

		Convey("When ranks are compared", func() {
			Convey("Then each tier ranks strictly above the previous one", func() {
				for i := 1; i < len(ladder); i++ {
					So(ladder[i].Rank(), ShouldBeGreaterThan, ladder[i-1].Rank())
				}
			})
		})

		Convey("When validity is checked", func() {
			Convey("Then every ladder tier is valid", func() {
				for _, tier := range ladder {
					So(tier.Valid(), ShouldBeTrue)
				}
			})

			Convey("And an out-of-range value is not", func() {
				So(types.Tier(42).Valid(), ShouldBeFalse)
			})
		})
	})
}

func TestParseTier(t *testing.T) {
	Convey("Given tier wire names", t, func() {
		Convey("When known names are parsed", func() {
			Convey("Then each resolves to its tier", func() {
				So(types.ParseTier("rookie"), ShouldEqual, types.TierRookie)
				So(types.ParseTier("rising"), ShouldEqual, types.TierRising)
				So(types.ParseTier("micro"), ShouldEqual, types.TierMicro)
				So(types.ParseTier("influencer"), ShouldEqual, types.TierInfluencer)
				So(types.ParseTier("macro"), ShouldEqual, types.TierMacro)
				So(types.ParseTier("elite"), ShouldEqual, types.TierElite)
			})
		})

		Convey("When names carry casing or whitespace", func() {
			Convey("Then parsing normalizes them", func() {
				So(types.ParseTier("  Influencer "), ShouldEqual, types.TierInfluencer)
				So(types.ParseTier("ELITE"), ShouldEqual, types.TierElite)
			})
		})

		Convey("When the name is unknown or empty", func() {
			Convey("Then it normalizes to rookie", func() {
				So(types.ParseTier(""), ShouldEqual, types.TierRookie)
				So(types.ParseTier("megastar"), ShouldEqual, types.TierRookie)
			})
		})

		Convey("When round-tripping through String", func() {
			Convey("Then parse inverts formatting", func() {
				for _, tier := range []types.Tier{
					types.TierRookie, types.TierRising, types.TierMicro,
					types.TierInfluencer, types.TierMacro, types.TierElite,
				} {
					So(types.ParseTier(tier.String()), ShouldEqual, tier)
				}
			})
		})
	})
}

func TestEntry(t *testing.T) {
	Convey("Given a leaderboard entry", t, func() {
		Convey("When populated", func() {
			entry := types.Entry{
				Rank:              1,
				CreatorID:         "creator-123",
				GlobalXP:          4200,
				GlobalLevel:       9,
				CloutBonus:        100,
				CommunitiesActive: 3,
			}

			Convey("Then it carries the progression snapshot", func() {
				So(entry.Rank, ShouldEqual, 1)
				So(entry.CreatorID, ShouldEqual, "creator-123")
				So(entry.GlobalXP, ShouldEqual, 4200)
				So(entry.GlobalLevel, ShouldEqual, 9)
				So(entry.CloutBonus, ShouldEqual, 100)
				So(entry.CommunitiesActive, ShouldEqual, 3)
			})
		})

		Convey("When zero-valued", func() {
			entry := types.Entry{}

			Convey("Then all fields default", func() {
				So(entry.Rank, ShouldEqual, 0)
				So(entry.CreatorID, ShouldEqual, "")
				So(entry.GlobalXP, ShouldEqual, 0)
			})
		})
	})
}
