package leaderboard

import (
	"math"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestFormatPoints(t *testing.T) {
	convey.Convey("Given point values", t, func() {
		cases := []struct {
			want string
			in   float64
		}{
			{in: 12.3456, want: "12.345"},
			{in: -12.3456, want: "-12.345"},
			{in: 5, want: "5.000"},
			{in: 0, want: "0.000"},
			{in: 0.9999, want: "0.999"},
			{in: -0.0004, want: "0.000"},
			{in: 1.005, want: "1.005"},
			{in: 1234567.891011, want: "1234567.891"},
			{in: 99.1, want: "99.100"},
		}

		convey.Convey("Then they are truncated toward zero with three digits", func() {
			for _, c := range cases {
				convey.So(FormatPoints(c.in), convey.ShouldEqual, c.want)
			}
		})

		convey.Convey("Then non-finite values format as zero", func() {
			convey.So(FormatPoints(math.NaN()), convey.ShouldEqual, "0.000")
			convey.So(FormatPoints(math.Inf(1)), convey.ShouldEqual, "0.000")
			convey.So(FormatPoints(math.Inf(-1)), convey.ShouldEqual, "0.000")
		})
	})

	convey.Convey("Given random values", t, func() {
		r := rand.New(rand.NewPCG(42, 7))

		convey.Convey("Then formatting the parsed output yields the same string", func() {
			for range 2000 {
				v := (r.Float64() - 0.5) * 20000
				out := FormatPoints(v)
				parsed, err := strconv.ParseFloat(out, 64)
				convey.So(err, convey.ShouldBeNil)
				convey.So(FormatPoints(parsed), convey.ShouldEqual, out)
			}
		})
	})
}

func TestRankChangeLabel(t *testing.T) {
	convey.Convey("Given rank changes", t, func() {
		convey.So(RankChangeLabel(nil), convey.ShouldEqual, "")
		convey.So(RankChangeLabel(intPtr(0)), convey.ShouldEqual, "")
		convey.So(RankChangeLabel(intPtr(3)), convey.ShouldEqual, "+3")
		convey.So(RankChangeLabel(intPtr(-2)), convey.ShouldEqual, "-2")
	})
}

func TestTierForRank(t *testing.T) {
	convey.Convey("Given ranks", t, func() {
		convey.So(TierForRank(1), convey.ShouldEqual, TierGold)
		convey.So(TierForRank(2), convey.ShouldEqual, TierSilver)
		convey.So(TierForRank(3), convey.ShouldEqual, TierBronze)
		convey.So(TierForRank(4), convey.ShouldEqual, TierNone)
		convey.So(TierForRank(0), convey.ShouldEqual, TierNone)
	})
}
