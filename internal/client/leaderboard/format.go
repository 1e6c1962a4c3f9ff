package leaderboard

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// FormatPoints truncates p toward zero at the third decimal digit and always
// prints three digits: 12.3456 -> "12.345", -12.3456 -> "-12.345", 5 -> "5.000".
// The value is converted through its shortest decimal representation, so
// formatting the parsed output again returns the same string.
func FormatPoints(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return "0.000"
	}
	return decimal.NewFromFloat(p).Truncate(3).StringFixed(3)
}

// RankChangeLabel renders a rank delta as "+N" or "-N". nil and 0 render nothing.
func RankChangeLabel(change *int) string {
	if change == nil || *change == 0 {
		return ""
	}
	if *change > 0 {
		return "+" + strconv.Itoa(*change)
	}
	return strconv.Itoa(*change)
}
