package query

import (
	"net/url"
	"strconv"
	"strings"
)

// ServerPrefix is prepended to every parameter sent to the search server
const ServerPrefix = "afs:"

// TransportParameters converts q into the parameter set understood by the search server.
// Filters are joined through the query registry, which may declare the facets it meets
func TransportParameters(q Query) url.Values {
	reg := q.Registry()
	out := url.Values{}
	for _, p := range q.Parameters(true) {
		name, values := p.Format(reg)
		if p.Key == KeyAdvancedFilter {
			name = Parameter{Key: KeyFilter, Feed: p.Feed}.Name()
		}
		for _, v := range values {
			out.Add(ServerPrefix+name, v)
		}
	}

	if reg.DefaultSticky() {
		out.Add(ServerPrefix+KeyFacetDefault, "sticky=true")
	}
	for _, f := range reg.Facets() {
		opts := []string{f.ID()}
		if s := reg.IsSticky(f); s != reg.DefaultSticky() {
			opts = append(opts, "sticky="+strconv.FormatBool(s))
		}
		if so, ok := reg.ValuesSortOrder(f.ID()); ok {
			opts = append(opts, "sort="+string(so.Mode), "order="+string(so.Order))
		}
		if len(opts) > 1 {
			out.Add(ServerPrefix+"facet", strings.Join(opts, ","))
		}
	}
	if order := reg.OrderIDs(); reg.IsStrict() && len(order) > 0 {
		out.Set(ServerPrefix+"facetOrder", strings.Join(order, ","))
	}

	for _, e := range q.custom {
		out.Set(e.k, e.v)
	}
	return out
}
