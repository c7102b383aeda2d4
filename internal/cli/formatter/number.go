package formatter

import (
	"encoding/json"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultDecimals is the precision used for values below 1.
const DefaultDecimals = 4

const maxSmallDecimals = 6

var numericPrefix = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// FormatNumber renders an amount with tiered precision and K/M suffixes.
func FormatNumber(v any) string {
	return FormatNumberDecimals(v, DefaultDecimals)
}

// FormatNumberDecimals is FormatNumber with an explicit precision for values
// below 1 (capped at 6). Larger magnitudes use fixed tiers:
// >=1e6 "M", >=1e3 "K", >=100 two places, >=10 three, >=1 four.
func FormatNumberDecimals(v any, decimals int) string {
	n, ok := toFloat(v)
	if !ok {
		return "0"
	}
	abs := math.Abs(n)
	switch {
	case abs >= 1_000_000:
		return toFixed(n/1_000_000, 2) + "M"
	case abs >= 1_000:
		return toFixed(n/1_000, 2) + "K"
	case abs >= 100:
		return toFixed(n, 2)
	case abs >= 10:
		return toFixed(n, 3)
	case abs >= 1:
		return toFixed(n, 4)
	default:
		return toFixed(n, max(0, min(decimals, maxSmallDecimals)))
	}
}

// toFixed rounds the exact binary value of n to prec places, halves away
// from zero.
func toFixed(n float64, prec int) string {
	r := new(big.Rat).SetFloat64(n)
	if r == nil {
		return "0"
	}
	return r.FloatString(prec)
}

func toFloat(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int32:
		n = float64(x)
	case int64:
		n = float64(x)
	case uint:
		n = float64(x)
	case uint32:
		n = float64(x)
	case uint64:
		n = float64(x)
	case decimal.Decimal:
		n = x.InexactFloat64()
	case decimal.NullDecimal:
		if !x.Valid {
			return 0, false
		}
		n = x.Decimal.InexactFloat64()
	case json.Number:
		return parseLeadingFloat(x.String())
	case string:
		return parseLeadingFloat(x)
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// parseLeadingFloat reads the numeric prefix of s, ignoring trailing junk.
func parseLeadingFloat(s string) (float64, bool) {
	m := numericPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
