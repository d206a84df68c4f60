package common

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ScoreCap is the composite score above which the display collapses to "100+".
const ScoreCap = 100.0

// ColorToken names a palette entry; renderers map tokens to concrete colours.
type ColorToken string

const (
	ColorEmerald ColorToken = "emerald"
	ColorGreen   ColorToken = "green"
	ColorAmber   ColorToken = "amber"
	ColorOrange  ColorToken = "orange"
	ColorRed     ColorToken = "red"
	ColorBlue    ColorToken = "blue"
	ColorGray    ColorToken = "gray"
)

// Hex returns the palette colour for a token (no leading #).
func (c ColorToken) Hex() string {
	switch c {
	case ColorEmerald:
		return "059669"
	case ColorGreen:
		return "16a34a"
	case ColorAmber:
		return "d97706"
	case ColorOrange:
		return "ea580c"
	case ColorRed:
		return "dc2626"
	case ColorBlue:
		return "2563eb"
	default:
		return "9ca3af"
	}
}

// NotAvailable is shown for missing or non-finite values.
const NotAvailable = "N/A"

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// RoundHalfUp rounds v to places decimals, halves away from zero.
// Non-finite values are returned unchanged.
func RoundHalfUp(v float64, places int32) float64 {
	if !finite(v) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// FormatScore renders a composite or sub-index score with one decimal.
// Scores above 100 render as "100+".
func FormatScore(v float64) string {
	if !finite(v) {
		return NotAvailable
	}
	if v > ScoreCap {
		return "100+"
	}
	return decimal.NewFromFloat(v).StringFixed(1)
}

// FormatScorePtr renders a nullable score; nil means insufficient data.
func FormatScorePtr(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return FormatScore(*v)
}

// FormatSignedPct renders a percentage with an explicit sign, e.g. "+12.3%".
func FormatSignedPct(v float64) string {
	if !finite(v) {
		return NotAvailable
	}
	s := decimal.NewFromFloat(v).StringFixed(1)
	if s == "-0.0" {
		s = "0.0"
	}
	if !strings.HasPrefix(s, "-") && s != "0.0" {
		s = "+" + s
	}
	return s + "%"
}

// FormatPct renders an unsigned percentage with one decimal.
func FormatPct(v float64) string {
	if !finite(v) {
		return NotAvailable
	}
	return decimal.NewFromFloat(v).StringFixed(1) + "%"
}

// FormatPrice renders a price with thousands separators; whole prices drop decimals.
func FormatPrice(v float64) string {
	if !finite(v) {
		return NotAvailable
	}
	d := decimal.NewFromFloat(v).Round(2)
	if d.Equal(d.Truncate(0)) {
		return groupThousands(d.StringFixed(0))
	}
	return groupThousands(d.StringFixed(2))
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int) string {
	return groupThousands(strconv.Itoa(n))
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var sb strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	out := sb.String()
	if hasFrac {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// ScoreColor picks the palette token for a 0-100 score.
func ScoreColor(v float64) ColorToken {
	switch {
	case v >= 80:
		return ColorEmerald
	case v >= 65:
		return ColorGreen
	case v >= 50:
		return ColorAmber
	case v >= 35:
		return ColorOrange
	default:
		return ColorRed
	}
}

// ScoreColorPtr is ScoreColor for nullable scores; nil is gray.
func ScoreColorPtr(v *float64) ColorToken {
	if v == nil {
		return ColorGray
	}
	return ScoreColor(*v)
}

// ReturnColor colours a signed return: gains green, losses red, flat gray.
func ReturnColor(v float64) ColorToken {
	switch {
	case RoundHalfUp(v, 1) > 0:
		return ColorGreen
	case RoundHalfUp(v, 1) < 0:
		return ColorRed
	default:
		return ColorGray
	}
}

// PercentileBucket maps a 1-based rank among total into a display bucket.
func PercentileBucket(rank, total int) string {
	if rank <= 0 || total <= 0 || rank > total {
		return ""
	}
	pct := float64(rank) / float64(total) * 100
	switch {
	case pct <= 1:
		return "Top 1%"
	case pct <= 5:
		return "Top 5%"
	case pct <= 10:
		return "Top 10%"
	case pct <= 25:
		return "Top 25%"
	case pct <= 50:
		return "Top 50%"
	default:
		return "Bottom 50%"
	}
}
