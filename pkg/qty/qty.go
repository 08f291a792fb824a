// Package qty parses free-text quantities such as "12,5 м", "1 200 шт" or
// "3.5m" into a number and a unit. It is the only place where ambiguous
// user-entered numbers are interpreted; every accumulator goes through it.
package qty

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numberRe matches the first numeric run. Digit groups of three separated by
// a space, NBSP, narrow NBSP, thin space or apostrophe are folded together.
var numberRe = regexp.MustCompile(`[-\x{2212}]?(?:\d{1,3}(?:[ \x{00A0}\x{202F}\x{2009}'\x{2019}]\d{3})+|\d+)(?:[.,]\d+)*`)

var groupSeparators = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "\u2009", "", "'", "", "\u2019", "", "\u2212", "-")

// unitTrim is stripped from both ends of the non-numeric remainder.
const unitTrim = " \t\u00a0\u202f\u2009.,;:=()[]-\u2012\u2013\u2014\u2212~"

// Amount is a parsed quantity with its unit.
type Amount struct {
	Value float64
	Unit  string
}

// Parse extracts the first number in s. It reports false when s holds no
// digits, in which case the value is 0.
func Parse(s string) (float64, bool) {
	loc := numberRe.FindStringIndex(s)
	if loc == nil {
		return 0, false
	}
	v, ok := normalize(s[loc[0]:loc[1]])
	if !ok {
		return 0, false
	}
	return v, true
}

// Value is Parse without the flag.
func Value(s string) float64 {
	v, _ := Parse(s)
	return v
}

// ParseAmount parses amount and resolves its unit: an explicit unit wins,
// otherwise the non-numeric remainder of amount is used.
func ParseAmount(amount, unit string) Amount {
	out := Amount{Unit: strings.TrimSpace(unit)}
	loc := numberRe.FindStringIndex(amount)
	if loc == nil {
		return out
	}
	if v, ok := normalize(amount[loc[0]:loc[1]]); ok {
		out.Value = v
	}
	if out.Unit == "" {
		rest := numberRe.ReplaceAllString(amount[:loc[0]]+" "+amount[loc[1]:], " ")
		out.Unit = strings.Trim(strings.Join(strings.Fields(rest), " "), unitTrim)
	}
	return out
}

// normalize turns a matched numeric run into a float. A single '.' or ','
// is the decimal separator. With several, a uniform separator means
// thousands grouping; mixed separators make the last one decimal.
func normalize(raw string) (float64, bool) {
	s := groupSeparators.Replace(raw)
	seps := strings.Count(s, ".") + strings.Count(s, ",")
	switch {
	case seps == 1:
		s = strings.Replace(s, ",", ".", 1)
	case seps > 1:
		last := strings.LastIndexAny(s, ".,")
		if strings.Count(s, string(s[last])) == seps {
			s = strings.NewReplacer(".", "", ",", "").Replace(s)
		} else {
			s = strings.NewReplacer(".", "", ",", "").Replace(s[:last]) + "." + s[last+1:]
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// NonNegative clamps v to zero from below.
func NonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Ceil rounds v up, ignoring float noise below 1e-9 so that 10*0.3 is 3.
func Ceil(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Ceil(v - 1e-9)
}
