package facet

import (
	"strconv"
	"strings"

	perr "afsearch/internal/platform/errors"
)

// Direction orders sort keys and facet values
type Direction string

const (
	Desc Direction = "DESC"
	Asc  Direction = "ASC"
)

// ParseDirection accepts any casing of ASC or DESC
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToUpper(strings.TrimSpace(s))); d {
	case Asc, Desc:
		return d, nil
	}
	return "", perr.Validationf("invalid sort order %q", s)
}

// SortMode selects what facet values are sorted on
type SortMode string

const (
	SortAlpha    SortMode = "alpha"
	SortItems    SortMode = "items"
	SortAlphaKey SortMode = "alphaKey"
	SortNumKey   SortMode = "numKey"
)

// ValuesSortOrder sorts the values of a facet
type ValuesSortOrder struct {
	Mode  SortMode
	Order Direction
}

// NewValuesSortOrder validates mode and order
func NewValuesSortOrder(mode SortMode, order Direction) (ValuesSortOrder, error) {
	switch mode {
	case SortAlpha, SortItems, SortAlphaKey, SortNumKey:
	default:
		return ValuesSortOrder{}, perr.Validationf("invalid facet values sort mode %q", mode)
	}
	if _, err := ParseDirection(string(order)); err != nil {
		return ValuesSortOrder{}, err
	}
	return ValuesSortOrder{Mode: mode, Order: order}, nil
}

// Format returns [mode, order]
func (v ValuesSortOrder) Format() []string { return []string{string(v.Mode), string(v.Order)} }

// DefaultReplies is the number of values per facet asked to the server by default
const DefaultReplies = 1000

// Default holds the options applied to every facet of a query
type Default struct {
	Replies   int
	SortOrder *ValuesSortOrder
}

// NewDefault returns the server defaults
func NewDefault() Default { return Default{Replies: DefaultReplies} }

// WithReplies returns a copy asking for n values per facet
func (d Default) WithReplies(n int) (Default, error) {
	if n <= 0 {
		return d, perr.Validationf("facet replies must be positive, got %d", n)
	}
	d.Replies = n
	return d, nil
}

// WithSortOrder returns a copy sorting facet values
func (d Default) WithSortOrder(mode SortMode, order Direction) (Default, error) {
	so, err := NewValuesSortOrder(mode, order)
	if err != nil {
		return d, err
	}
	d.SortOrder = &so
	return d, nil
}

// IsZero reports whether d equals the server defaults
func (d Default) IsZero() bool {
	return (d.Replies == 0 || d.Replies == DefaultReplies) && d.SortOrder == nil
}

// Format renders the facetDefault parameter values
func (d Default) Format() []string {
	n := d.Replies
	if n == 0 {
		n = DefaultReplies
	}
	out := []string{"replies=" + strconv.Itoa(n)}
	if d.SortOrder != nil {
		out = append(out, "sort="+string(d.SortOrder.Mode), "order="+string(d.SortOrder.Order))
	}
	return out
}

// ParseDefault is the inverse of Format
func ParseDefault(values []string) (Default, error) {
	d := NewDefault()
	var mode SortMode
	var order Direction
	for _, v := range values {
		k, val, ok := strings.Cut(v, "=")
		if !ok {
			return d, perr.Validationf("invalid facet default %q", v)
		}
		switch k {
		case "replies":
			n, err := strconv.Atoi(val)
			if err != nil {
				return d, perr.Wrapf(err, perr.ErrorCodeValidation, "invalid facet default replies %q", val)
			}
			if d, err = d.WithReplies(n); err != nil {
				return d, err
			}
		case "sort":
			mode = SortMode(val)
		case "order":
			order = Direction(val)
		default:
			return d, perr.Validationf("unknown facet default option %q", k)
		}
	}
	if mode != "" || order != "" {
		if order == "" {
			order = Desc
		}
		return d.WithSortOrder(mode, order)
	}
	return d, nil
}
