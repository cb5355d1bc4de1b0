package facet

import (
	"math"
	"regexp"
	"strconv"

	perr "afsearch/internal/platform/errors"
)

var (
	minBound = strconv.FormatInt(math.MinInt64, 10)
	maxBound = strconv.FormatInt(math.MaxInt64, 10)

	boundPattern    = regexp.MustCompile(`^[0-9."-]+$`)
	intervalPattern = regexp.MustCompile(`^([\[\]])([0-9."-]+) \.\. ([0-9."-]+)([\[\]])$`)
)

// Interval is an interval facet value with optional bounds.
// An absent bound is unbounded and renders as the int64 min or max
type Interval struct {
	Lower         string
	Upper         string
	HasLower      bool
	HasUpper      bool
	LowerExcluded bool
	UpperExcluded bool
}

// NewInterval builds an inclusive interval; an empty bound is absent, both cannot be
func NewInterval(lower, upper string) (Interval, error) {
	if lower == minBound {
		lower = ""
	}
	if upper == maxBound {
		upper = ""
	}
	if lower == "" && upper == "" {
		return Interval{}, perr.Validationf("interval boundaries cannot both be absent")
	}
	for _, b := range []string{lower, upper} {
		if b != "" && !boundPattern.MatchString(b) {
			return Interval{}, perr.Validationf("invalid interval bound %q", b)
		}
	}
	return Interval{Lower: lower, Upper: upper, HasLower: lower != "", HasUpper: upper != ""}, nil
}

// ExcludeLower returns a copy whose lower bound is exclusive
func (i Interval) ExcludeLower() Interval {
	i.LowerExcluded = true
	return i
}

// ExcludeUpper returns a copy whose upper bound is exclusive
func (i Interval) ExcludeUpper() Interval {
	i.UpperExcluded = true
	return i
}

// String renders the interval as "[lo .. hi]", brackets flipped for excluded bounds
func (i Interval) String() string {
	open, lo, hi, closing := "[", minBound, maxBound, "]"
	if i.LowerExcluded {
		open = "]"
	}
	if i.UpperExcluded {
		closing = "["
	}
	if i.HasLower {
		lo = i.Lower
	}
	if i.HasUpper {
		hi = i.Upper
	}
	return open + lo + " .. " + hi + closing
}

// ParseInterval is the inverse of String
func ParseInterval(s string) (Interval, error) {
	m := intervalPattern.FindStringSubmatch(s)
	if m == nil {
		return Interval{}, perr.Validationf("invalid interval %q", s)
	}
	iv, err := NewInterval(m[2], m[3])
	if err != nil {
		return Interval{}, err
	}
	iv.LowerExcluded = m[1] == "]"
	iv.UpperExcluded = m[4] == "["
	return iv, nil
}
