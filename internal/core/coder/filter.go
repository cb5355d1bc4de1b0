package coder

import (
	"strings"

	"afsearch/internal/core/facet"
	"afsearch/internal/core/query"
	perr "afsearch/internal/platform/errors"
)

// FilterCoder packs filters: facet_v1_v2-facet2_v
type FilterCoder struct {
	esc       escaper
	valueSep  rune
	filterSep rune
}

// NewFilterCoder fails unless the three characters are distinct
func NewFilterCoder(valueSep, filterSep, escape rune) (*FilterCoder, error) {
	esc, err := newEscaper(escape, valueSep, filterSep)
	if err != nil {
		return nil, err
	}
	return &FilterCoder{esc: esc, valueSep: valueSep, filterSep: filterSep}, nil
}

// DefaultFilterCoder uses '_' between values, '-' between filters and '|' to escape
func DefaultFilterCoder() *FilterCoder {
	c, _ := NewFilterCoder('_', '-', '|')
	return c
}

// Encode packs filters in order
func (c *FilterCoder) Encode(filters []query.Filter) string {
	out := make([]string, len(filters))
	for i, f := range filters {
		parts := make([]string, 0, len(f.Values)+1)
		parts = append(parts, c.esc.quote(f.Facet))
		for _, v := range f.Values {
			parts = append(parts, c.esc.quote(v))
		}
		out[i] = strings.Join(parts, string(c.valueSep))
	}
	return strings.Join(out, string(c.filterSep))
}

// Decode unpacks filters; facet ids must be valid identifiers
func (c *FilterCoder) Decode(s string) ([]query.Filter, error) {
	if s == "" {
		return nil, nil
	}
	var out []query.Filter
	for _, chunk := range c.esc.split(s, c.filterSep) {
		parts := c.esc.split(chunk, c.valueSep)
		id := c.esc.unquote(parts[0])
		if !facet.ValidID(id) {
			return nil, perr.WithField(perr.Validationf("invalid facet id %q in filter parameter", id), query.KeyFilter)
		}
		f := query.Filter{Facet: id}
		for _, p := range parts[1:] {
			f.Values = append(f.Values, c.esc.unquote(p))
		}
		out = append(out, f)
	}
	return out, nil
}

// SortCoder packs sort entries as alternating key and order: price_ASC_afs:relevance_DESC
type SortCoder struct {
	esc escaper
	sep rune
}

// NewSortCoder fails when sep and escape are the same character
func NewSortCoder(sep, escape rune) (*SortCoder, error) {
	esc, err := newEscaper(escape, sep)
	if err != nil {
		return nil, err
	}
	return &SortCoder{esc: esc, sep: sep}, nil
}

// DefaultSortCoder separates with '_' and escapes with '|'
func DefaultSortCoder() *SortCoder {
	c, _ := NewSortCoder('_', '|')
	return c
}

// Encode packs entries in order
func (c *SortCoder) Encode(entries []query.SortEntry) string {
	parts := make([]string, 0, 2*len(entries))
	for _, e := range entries {
		parts = append(parts, c.esc.quote(e.Key), c.esc.quote(string(e.Order)))
	}
	return strings.Join(parts, string(c.sep))
}

// Decode fails on an odd number of items
func (c *SortCoder) Decode(s string) ([]query.SortEntry, error) {
	if s == "" {
		return nil, nil
	}
	parts := c.esc.split(s, c.sep)
	if len(parts)%2 != 0 {
		return nil, perr.WithField(perr.Validationf("cannot decode sort value %q", s), query.KeySort)
	}
	out := make([]query.SortEntry, 0, len(parts)/2)
	for i := 0; i < len(parts); i += 2 {
		out = append(out, query.SortEntry{
			Key:   c.esc.unquote(parts[i]),
			Order: query.SortOrder(c.esc.unquote(parts[i+1])),
		})
	}
	return out, nil
}
