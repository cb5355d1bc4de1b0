package query

import (
	"slices"
	"strconv"

	"afsearch/internal/core/facet"
	perr "afsearch/internal/platform/errors"
)

// Parameters flattens the query in transport order.
// Without all, only the parameters worth keeping in a link are returned
func (q Query) Parameters(all bool) []Parameter {
	one := func(k, v string) Parameter { return Parameter{Key: k, Values: []string{v}} }

	out := []Parameter{one(KeyReplies, strconv.Itoa(q.replies))}
	if q.page != DefaultPage {
		out = append(out, one(KeyPage, strconv.Itoa(q.page)))
	}
	if names := q.FeedNames(); len(names) > 0 {
		out = append(out, Parameter{Key: KeyFeed, Values: names})
	}
	if q.text != "" {
		out = append(out, one(KeyQuery, q.text))
	}
	if len(q.filters) > 0 {
		out = append(out, Parameter{Key: KeyFilter, Filters: q.filters.clone()})
	}
	if len(q.sort) > 0 {
		out = append(out, Parameter{Key: KeySort, Sort: slices.Clone(q.sort)})
	}
	if cl := q.cluster; cl != nil {
		out = append(out, one(KeyCluster, cl.String()))
		if cl.MaxClusters > 0 {
			out = append(out, one(KeyMaxClusters, strconv.Itoa(cl.MaxClusters)))
		}
		if cl.Overspill {
			out = append(out, one(KeyOverspill, "true"))
		}
		if cl.Count != "" {
			out = append(out, one(KeyCount, string(cl.Count)))
		}
	}
	if len(q.advanced) > 0 {
		out = append(out, Parameter{Key: KeyAdvancedFilter, Values: slices.Clone(q.advanced)})
	}
	if q.fts != "" {
		out = append(out, one(KeyFtsDefault, string(q.fts)))
	}
	if !q.lang.IsZero() {
		out = append(out, one(KeyLang, q.lang.String()))
	}
	if all {
		if q.from != "" {
			out = append(out, one(KeyFrom, string(q.from)))
		}
		if q.userID != "" {
			out = append(out, one(KeyUserID, q.userID))
		}
		if q.sessionID != "" {
			out = append(out, one(KeySessionID, q.sessionID))
		}
		out = append(out, Parameter{Key: KeyFacetDefault, Values: q.facetDef.Format()})
		if len(q.logs) > 0 {
			out = append(out, Parameter{Key: KeyLog, Values: slices.Clone(q.logs)})
		}
		if q.key != "" {
			out = append(out, one(KeyKey, q.key))
		}
	}
	for _, f := range q.feeds {
		if f.activated {
			out = append(out, f.parameters()...)
		}
	}
	return out
}

// FromParameters builds a query from decoded parameters.
// Feeds are applied first and page last; unknown keys are ignored
func FromParameters(ps []Parameter) (Query, error) {
	ordered := slices.Clone(ps)
	rank := func(p Parameter) int {
		switch {
		case p.Key == KeyFeed && p.Feed == "":
			return 0
		case p.Key == KeyPage && p.Feed == "":
			return 3
		case p.Feed != "":
			return 2
		}
		return 1
	}
	slices.SortStableFunc(ordered, func(a, b Parameter) int { return rank(a) - rank(b) })

	q := New()
	var err error
	for _, p := range ordered {
		if p.Feed != "" {
			q, err = q.applyFeedParameter(p)
		} else {
			q, err = q.applyParameter(p)
		}
		if err != nil {
			return Query{}, perr.WithOp(err, "query.FromParameters")
		}
	}
	return q, nil
}

// lastValue keeps the last occurrence of a repeated scalar
func lastValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}

func atoi(key, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, perr.WithField(perr.Wrapf(err, perr.ErrorCodeValidation, "invalid %s %q", key, v), key)
	}
	return n, nil
}

func (q Query) applyParameter(p Parameter) (Query, error) {
	v := lastValue(p.Values)
	switch p.Key {
	case KeyFeed:
		return q.AddFeed(p.Values...), nil
	case KeyQuery:
		return q.SetQuery(v), nil
	case KeyFilter:
		for _, f := range p.Filters {
			q = q.AddFilter(f.Facet, f.Values...)
		}
		return q, nil
	case KeySort:
		var err error
		for _, e := range p.Sort {
			if q, err = q.AddSort(e.Key, e.Order); err != nil {
				return q, err
			}
		}
		return q, nil
	case KeyReplies:
		n, err := atoi(p.Key, v)
		if err != nil {
			return q, err
		}
		return q.SetReplies(n)
	case KeyPage:
		n, err := atoi(p.Key, v)
		if err != nil {
			return q, err
		}
		return q.SetPage(n)
	case KeyLang:
		return q.SetLang(v)
	case KeyCluster:
		cl, err := ParseCluster(v)
		if err != nil {
			return q, err
		}
		return q.SetCluster(cl.Facet, cl.Replies)
	case KeyMaxClusters:
		n, err := atoi(p.Key, v)
		if err != nil {
			return q, err
		}
		return q.SetMaxClusters(n)
	case KeyOverspill:
		return q.SetOverspill(v == "true" || v == "1")
	case KeyCount:
		c, err := ParseCount(v)
		if err != nil {
			return q, err
		}
		return q.SetCount(c)
	case KeyAdvancedFilter:
		return q.AddAdvancedFilter(p.Values...), nil
	case KeyFtsDefault:
		m, err := ParseFtsMode(v)
		if err != nil {
			return q, err
		}
		return q.SetFtsDefault(m)
	case KeyFrom:
		o, err := ParseOrigin(v)
		if err != nil {
			return q, err
		}
		return q.SetFrom(o)
	case KeyUserID:
		return q.SetUserID(v), nil
	case KeySessionID:
		return q.SetSessionID(v), nil
	case KeyLog:
		for _, l := range p.Values {
			q = q.AddLog(l)
		}
		return q, nil
	case KeyKey:
		return q.SetKey(v), nil
	case KeyFacetDefault:
		d, err := facet.ParseDefault(p.Values)
		if err != nil {
			return q, err
		}
		return q.SetFacetDefault(d), nil
	}
	return q, nil
}

func (q Query) applyFeedParameter(p Parameter) (Query, error) {
	if !q.HasFeed(p.Feed) {
		q = q.AddFeed(p.Feed)
	}
	var err error
	switch p.Key {
	case KeyFilter:
		for _, f := range p.Filters {
			if q, err = q.AddFeedFilter(p.Feed, f.Facet, f.Values...); err != nil {
				return q, err
			}
		}
		return q, nil
	case KeySort:
		for _, e := range p.Sort {
			if q, err = q.SetFeedSort(p.Feed, e.Key, e.Order); err != nil {
				return q, err
			}
		}
		return q, nil
	case KeyFeed:
		return q, nil
	case KeyQuery:
		return q.SetFeedQuery(p.Feed, lastValue(p.Values))
	}
	return q.SetFeedParameter(p.Feed, p.Key, lastValue(p.Values))
}
