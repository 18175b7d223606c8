package model

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// digits, optional spaced thousands groups, optional decimal part
	numberRegexp  = regexp.MustCompile(`\d+(?:[ \x{a0}\x{202f}]\d{3})*(?:[.,]\d+)?`)
	integerRegexp = regexp.MustCompile(`\d+(?:[ \x{a0}\x{202f}]\d{3})*`)
	scoreRegexp   = regexp.MustCompile(`^\s*(\d+(?:[.,]\d+)?)`)
	reviewsRegexp = regexp.MustCompile(`\((\d+)\)`)
)

// ParsePrice extracts the first number from strings like "450€/personne"
// or "À partir de 1 200,50 €".
func ParsePrice(raw string) (float64, bool) {
	match := numberRegexp.FindString(raw)
	if match == "" {
		return 0, false
	}
	return parseDecimal(match)
}

// ParseCapacity reads "80-250" as a range; a single number is the maximum.
func ParseCapacity(raw string) (min, max int, ok bool) {
	matches := integerRegexp.FindAllString(raw, 2)
	switch len(matches) {
	case 0:
		return 0, 0, false
	case 1:
		n, err := atoi(matches[0])
		if err != nil {
			return 0, 0, false
		}
		return 0, n, true
	}
	lo, err := atoi(matches[0])
	if err != nil {
		return 0, 0, false
	}
	hi, err := atoi(matches[1])
	if err != nil {
		return 0, 0, false
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi, true
}

// ParseRating reads "4.8 (23)". The score is reported only when present;
// the review count defaults to zero.
func ParseRating(raw string) (score float64, hasScore bool, reviews int) {
	if m := scoreRegexp.FindStringSubmatch(raw); m != nil {
		score, hasScore = parseDecimal(m[1])
	}
	if m := reviewsRegexp.FindStringSubmatch(raw); m != nil {
		reviews, _ = strconv.Atoi(m[1])
	}
	return score, hasScore, reviews
}

func parseDecimal(s string) (float64, bool) {
	s = stripGroupSpaces(s)
	s = strings.Replace(s, ",", ".", 1)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func atoi(s string) (int, error) {
	return strconv.Atoi(stripGroupSpaces(s))
}

func stripGroupSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, s)
}
