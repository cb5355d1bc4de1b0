package query

import (
	"slices"
	"strconv"

	perr "afsearch/internal/platform/errors"
)

// Feed is one source of documents queried by name.
// A feed carries its own parameter overrides, filters and sort, all emitted as key@feed
type Feed struct {
	name      string
	activated bool
	params    []kv
	filters   filterSet
	sort      []SortEntry
}

func newFeed(name string) Feed { return Feed{name: name, activated: true} }

func (f Feed) clone() Feed {
	f.params = slices.Clone(f.params)
	f.filters = f.filters.clone()
	f.sort = slices.Clone(f.sort)
	return f
}

// Name of the feed
func (f Feed) Name() string { return f.name }

// Activated reports whether the feed is sent to the server
func (f Feed) Activated() bool { return f.activated }

// Parameter returns a per-feed override
func (f Feed) Parameter(key string) (string, bool) { return getKV(f.params, key) }

// Page is the per-feed page, 1 unless overridden
func (f Feed) Page() int {
	if v, ok := getKV(f.params, KeyPage); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 1
}

// Replies is the per-feed replies override, if any
func (f Feed) Replies() (int, bool) {
	if v, ok := getKV(f.params, KeyReplies); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Filters returns the feed filters in insertion order
func (f Feed) Filters() []Filter { return f.filters.clone() }

// HasFilter reports whether value is selected on facet for this feed
func (f Feed) HasFilter(facetID, value string) bool { return f.filters.has(facetID, value) }

// FilterValues returns the feed values of facet; NotFound when absent
func (f Feed) FilterValues(facetID string) ([]string, error) {
	v, ok := f.filters.values(facetID)
	if !ok {
		return nil, perr.NotFoundf("no filter on facet %q for feed %q", facetID, f.name)
	}
	return v, nil
}

// Sort returns the feed sort entries
func (f Feed) Sort() []SortEntry { return slices.Clone(f.sort) }

// parameters renders the feed scoped parameters in stable order
func (f Feed) parameters() []Parameter {
	var out []Parameter
	ordered := []string{KeyQuery, KeyReplies, KeyPage}
	for _, k := range ordered {
		v, ok := getKV(f.params, k)
		if !ok || (k == KeyPage && v == "1") {
			continue
		}
		out = append(out, Parameter{Key: k, Feed: f.name, Values: []string{v}})
	}
	for _, e := range f.params {
		if slices.Contains(ordered, e.k) {
			continue
		}
		out = append(out, Parameter{Key: e.k, Feed: f.name, Values: []string{e.v}})
	}
	if len(f.filters) > 0 {
		out = append(out, Parameter{Key: KeyFilter, Feed: f.name, Filters: f.filters.clone()})
	}
	if len(f.sort) > 0 {
		out = append(out, Parameter{Key: KeySort, Feed: f.name, Sort: slices.Clone(f.sort)})
	}
	return out
}

// checkFeedParameter validates an override; filter and sort have their own setters
func checkFeedParameter(key, value string) error {
	switch key {
	case "", KeyFilter, KeySort, KeyFeed:
		return perr.WithField(perr.InvalidArgf("parameter %q cannot be set per feed", key), key)
	case KeyReplies, KeyPage:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return perr.WithField(perr.Validationf("%s must be a positive integer, got %q", key, value), key)
		}
	case KeyLang:
		if _, err := ParseLanguage(value); err != nil {
			return err
		}
	}
	return nil
}
