package services

import (
	"strconv"
	"strings"
)

// OpenEndedMax is the effective upper bound for "N+" price buckets.
const OpenEndedMax = 1_000_000_000

// PriceRange is a parsed price bucket.
type PriceRange struct {
	Min float64
	Max float64 // OpenEndedMax when the bucket is open-ended
}

// ParsePriceBucket parses UI price bucket strings into a range.
// Accepted forms: "50k-100k", "200k+", "$50 - $100". A "k" suffix multiplies
// by 1000 and a trailing "+" opens the maximum. Malformed segments parse to 0
// rather than erroring; an empty bucket means no constraint (0..open).
func ParsePriceBucket(bucket string) PriceRange {
	s := strings.TrimSpace(bucket)
	if s == "" {
		return PriceRange{Min: 0, Max: OpenEndedMax}
	}

	if strings.HasSuffix(s, "+") {
		return PriceRange{
			Min: parsePriceToken(strings.TrimSuffix(s, "+")),
			Max: OpenEndedMax,
		}
	}

	if idx := strings.Index(s, "-"); idx >= 0 {
		return PriceRange{
			Min: parsePriceToken(s[:idx]),
			Max: parsePriceToken(s[idx+1:]),
		}
	}

	v := parsePriceToken(s)
	return PriceRange{Min: v, Max: v}
}

// parsePriceToken parses one side of a bucket. Anything unparseable is 0.
func parsePriceToken(token string) float64 {
	t := strings.ToLower(strings.TrimSpace(token))
	t = strings.TrimPrefix(t, "$")
	t = strings.ReplaceAll(t, ",", "")
	t = strings.TrimSpace(t)
	if t == "" {
		return 0
	}

	mult := 1.0
	if strings.HasSuffix(t, "k") {
		mult = 1000
		t = strings.TrimSuffix(t, "k")
	}

	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0
	}
	return v * mult
}
