// Package coder turns queries into compact link parameters and back.
// Lists are packed into one value with separator characters; a separator or
// escape character inside an item is preceded by the escape character
package coder

import (
	"strings"
	"unicode/utf8"

	perr "afsearch/internal/platform/errors"
)

// escaper knows the special characters of one coder
type escaper struct {
	escape   rune
	specials []rune
}

func newEscaper(escape rune, seps ...rune) (escaper, error) {
	all := append([]rune{escape}, seps...)
	for i, r := range all {
		if r == 0 || r == utf8.RuneError {
			return escaper{}, perr.Validationf("invalid coder character %q", r)
		}
		for _, o := range all[:i] {
			if o == r {
				return escaper{}, perr.Validationf("coder characters must be distinct, %q is repeated", r)
			}
		}
	}
	return escaper{escape: escape, specials: all}, nil
}

func (e escaper) special(r rune) bool {
	for _, s := range e.specials {
		if s == r {
			return true
		}
	}
	return false
}

// quote prefixes every special character with the escape character
func (e escaper) quote(s string) string {
	var b strings.Builder
	for _, r := range s {
		if e.special(r) {
			b.WriteRune(e.escape)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// unquote drops the escape character in front of special characters
func (e escaper) unquote(s string) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if !escaped && r == e.escape {
			escaped = true
			continue
		}
		if escaped && !e.special(r) {
			b.WriteRune(e.escape)
		}
		escaped = false
		b.WriteRune(r)
	}
	if escaped {
		b.WriteRune(e.escape)
	}
	return b.String()
}

// split cuts s on every sep not preceded by an escape; pieces stay quoted
func (e escaper) split(s string, sep rune) []string {
	var out []string
	var b strings.Builder
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == e.escape:
			escaped = true
		case r == sep:
			out = append(out, b.String())
			b.Reset()
			continue
		}
		b.WriteRune(r)
	}
	return append(out, b.String())
}

// FeedCoder packs feed names: ["a_b", "c"] -> a|_b_c
type FeedCoder struct {
	esc escaper
	sep rune
}

// NewFeedCoder fails when sep and escape are the same character
func NewFeedCoder(sep, escape rune) (*FeedCoder, error) {
	esc, err := newEscaper(escape, sep)
	if err != nil {
		return nil, err
	}
	return &FeedCoder{esc: esc, sep: sep}, nil
}

// DefaultFeedCoder separates with '_' and escapes with '|'
func DefaultFeedCoder() *FeedCoder {
	c, _ := NewFeedCoder('_', '|')
	return c
}

// Encode joins the escaped names
func (c *FeedCoder) Encode(feeds []string) string {
	parts := make([]string, len(feeds))
	for i, f := range feeds {
		parts[i] = c.esc.quote(f)
	}
	return strings.Join(parts, string(c.sep))
}

// Decode is the inverse of Encode; an empty string holds no feed
func (c *FeedCoder) Decode(s string) []string {
	if s == "" {
		return nil
	}
	parts := c.esc.split(s, c.sep)
	for i, p := range parts {
		parts[i] = c.esc.unquote(p)
	}
	return parts
}
