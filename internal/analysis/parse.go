package analysis

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	leadingFloatRe = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)
	leadingIntRe   = regexp.MustCompile(`^[+-]?\d+`)

	paceQuoteRe = regexp.MustCompile(`(\d+)'(\d+)`)
	paceColonRe = regexp.MustCompile(`(\d+):(\d+)`)
)

// leadingFloat parses the longest numeric prefix of s after leading
// whitespace. ok is false when no prefix parses.
func leadingFloat(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	m := leadingFloatRe.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseFloat reads the leading number of s, returning 0 when there is none.
// "72.5kg" parses as 72.5, "abc" as 0.
func ParseFloat(s string) float64 {
	v, _ := leadingFloat(s)
	return v
}

// ParseInt reads the leading integer of s, returning 0 when there is none.
// "3.5" parses as 3.
func ParseInt(s string) int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	m := leadingIntRe.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return v
}

// ParseLoose is the permissive parser used for free-text run fields.
// A value that is already a well-formed number is returned as is. Otherwise
// a range such as "120-140" keeps only its lower bound, every "bpm", "BPM"
// and space is removed, and the leading number is parsed. It never returns
// NaN; total failure yields 0.
func ParseLoose(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v
	}
	if strings.Contains(s, "-") && !strings.HasPrefix(s, "-") {
		s = strings.TrimSpace(s[:strings.Index(s, "-")])
	}
	for _, suffix := range []string{"bpm", "BPM", " "} {
		s = strings.ReplaceAll(s, suffix, "")
	}
	return ParseFloat(s)
}

// ParsePace converts a pace string such as 5'30" or 5:30 to decimal minutes.
func ParsePace(s string) (float64, bool) {
	m := paceQuoteRe.FindStringSubmatch(s)
	if m == nil {
		m = paceColonRe.FindStringSubmatch(s)
	}
	if m == nil {
		return 0, false
	}
	return ParseFloat(m[1]) + ParseFloat(m[2])/60, true
}

// FormatPace renders decimal minutes as M:SS.
func FormatPace(minutes float64) string {
	if minutes <= 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return "-"
	}
	total := int(math.Round(minutes * 60))
	return strconv.Itoa(total/60) + ":" + twoDigits(total%60)
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// round rounds v to the given number of decimal places, halves away from zero.
func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
