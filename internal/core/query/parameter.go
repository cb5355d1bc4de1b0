package query

import (
	"slices"
	"strings"

	"afsearch/internal/core/facet"
)

// Well known parameter keys, without the server prefix
const (
	KeyQuery          = "query"
	KeyFilter         = "filter"
	KeyFeed           = "feed"
	KeyReplies        = "replies"
	KeyPage           = "page"
	KeySort           = "sort"
	KeyLang           = "lang"
	KeyCluster        = "cluster"
	KeyMaxClusters    = "maxClusters"
	KeyOverspill      = "overspill"
	KeyCount          = "count"
	KeyAdvancedFilter = "advancedFilter"
	KeyFtsDefault     = "ftsDefault"
	KeyFrom           = "from"
	KeyUserID         = "userId"
	KeySessionID      = "sessionId"
	KeyFacetDefault   = "facetDefault"
	KeyLog            = "log"
	KeyKey            = "key"
)

// Filter is the set of values selected on one facet
type Filter struct {
	Facet  string
	Values []string
}

// Parameter is one named query parameter, optionally scoped to a feed.
// Filter and sort parameters carry structured payloads; the others carry Values
type Parameter struct {
	Key     string
	Feed    string
	Values  []string
	Filters []Filter
	Sort    []SortEntry
}

// Name is key or key@feed
func (p Parameter) Name() string {
	if p.Feed == "" {
		return p.Key
	}
	return p.Key + "@" + p.Feed
}

// Format yields the transport name and values.
// Filters are joined through reg; a nil registry leaves every value unquoted
func (p Parameter) Format(reg *facet.Registry) (string, []string) {
	switch {
	case p.Filters != nil:
		out := make([]string, 0, len(p.Filters)+len(p.Values))
		for _, f := range p.Filters {
			out = append(out, joinFilter(reg, f))
		}
		return p.Name(), append(out, p.Values...)
	case p.Sort != nil:
		out := make([]string, len(p.Sort))
		for i, e := range p.Sort {
			out[i] = e.String()
		}
		return p.Name(), out
	}
	return p.Name(), slices.Clone(p.Values)
}

func joinFilter(reg *facet.Registry, f Filter) string {
	if reg != nil {
		return reg.GetOrCreate(f.Facet).Join(f.Values)
	}
	parts := make([]string, len(f.Values))
	for i, v := range f.Values {
		parts[i] = f.Facet + "=" + v
	}
	return strings.Join(parts, " or ")
}

// filterSet keeps filters in first-insertion order.
// Values are sets; a facet left with no value is dropped
type filterSet []Filter

func (fs filterSet) clone() filterSet {
	if fs == nil {
		return nil
	}
	out := make(filterSet, len(fs))
	for i, f := range fs {
		out[i] = Filter{Facet: f.Facet, Values: slices.Clone(f.Values)}
	}
	return out
}

func (fs filterSet) index(id string) int {
	return slices.IndexFunc(fs, func(f Filter) bool { return f.Facet == id })
}

func dedup(values []string) []string {
	var out []string
	for _, v := range values {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func (fs filterSet) set(id string, values []string) filterSet {
	out := fs.clone()
	values = dedup(values)
	i := out.index(id)
	switch {
	case len(values) == 0 && i >= 0:
		return out.drop(i)
	case len(values) == 0:
		return out
	case i >= 0:
		out[i].Values = values
		return out
	}
	return append(out, Filter{Facet: id, Values: values})
}

func (fs filterSet) add(id string, values []string) filterSet {
	i := fs.index(id)
	if i < 0 {
		return fs.set(id, values)
	}
	return fs.set(id, append(slices.Clone(fs[i].Values), values...))
}

func (fs filterSet) remove(id, value string) filterSet {
	i := fs.index(id)
	if i < 0 {
		return fs.clone()
	}
	kept := slices.DeleteFunc(slices.Clone(fs[i].Values), func(v string) bool { return v == value })
	return fs.set(id, kept)
}

func (fs filterSet) drop(i int) filterSet {
	out := slices.Delete(fs, i, i+1)
	if len(out) == 0 {
		return nil
	}
	return out
}

func (fs filterSet) has(id, value string) bool {
	i := fs.index(id)
	return i >= 0 && slices.Contains(fs[i].Values, value)
}

func (fs filterSet) values(id string) ([]string, bool) {
	i := fs.index(id)
	if i < 0 {
		return nil, false
	}
	return slices.Clone(fs[i].Values), true
}

// kv is one ordered string option
type kv struct{ k, v string }

func setKV(list []kv, k, v string) []kv {
	out := slices.Clone(list)
	for i := range out {
		if out[i].k == k {
			out[i].v = v
			return out
		}
	}
	return append(out, kv{k, v})
}

func getKV(list []kv, k string) (string, bool) {
	for _, e := range list {
		if e.k == k {
			return e.v, true
		}
	}
	return "", false
}
