// Package query holds the immutable search query model.
// Every mutator returns a modified copy and leaves the receiver untouched,
// so a Query can be kept as a snapshot and compared later
package query

import (
	"reflect"
	"slices"

	"afsearch/internal/core/facet"
	perr "afsearch/internal/platform/errors"

	"github.com/google/uuid"
)

// Defaults applied by New
const (
	DefaultReplies = 10
	DefaultPage    = 1
)

// Query is one search request in the making
type Query struct {
	text      string
	feeds     []Feed
	filters   filterSet
	advanced  []string
	sort      []SortEntry
	page      int
	replies   int
	lang      Language
	cluster   *Cluster
	from      Origin
	autoFrom  bool
	userID    string
	sessionID string
	logs      []string
	key       string
	custom    []kv
	facetDef  facet.Default
	fts       FtsMode
	registry  *facet.Registry
}

// New returns a query with server defaults, fresh ids and its own facet registry
func New() Query {
	return Query{
		page:      DefaultPage,
		replies:   DefaultReplies,
		autoFrom:  true,
		userID:    uuid.NewString(),
		sessionID: uuid.NewString(),
		facetDef:  facet.NewDefault(),
		registry:  facet.NewRegistry(),
	}
}

func (q Query) clone() Query {
	c := q
	c.feeds = make([]Feed, len(q.feeds))
	for i, f := range q.feeds {
		c.feeds[i] = f.clone()
	}
	if q.feeds == nil {
		c.feeds = nil
	}
	c.filters = q.filters.clone()
	c.advanced = slices.Clone(q.advanced)
	c.sort = slices.Clone(q.sort)
	c.logs = slices.Clone(q.logs)
	c.custom = slices.Clone(q.custom)
	if q.cluster != nil {
		cl := *q.cluster
		c.cluster = &cl
	}
	return c
}

func (q Query) resetPage() Query {
	q.page = DefaultPage
	return q
}

func (q Query) auto(o Origin) Query {
	if q.autoFrom {
		q.from = o
	}
	return q
}

// Registry is the facet registry shared with the reply decoder
func (q Query) Registry() *facet.Registry {
	if q.registry == nil {
		return facet.NewRegistry()
	}
	return q.registry
}

// WithRegistry shares reg with the returned query
func (q Query) WithRegistry(reg *facet.Registry) Query {
	c := q.clone()
	c.registry = reg
	return c
}

// Text query

// SetQuery sets the free-text query
func (q Query) SetQuery(text string) Query {
	c := q.clone()
	c.text = text
	return c.resetPage().auto(OriginSearchBox)
}

// Query returns the free-text query
func (q Query) Query() string { return q.text }

// HasQuery reports whether a free-text query is set
func (q Query) HasQuery() bool { return q.text != "" }

// Feeds

// SetFeed replaces the feed list
func (q Query) SetFeed(names ...string) Query {
	c := q.clone()
	c.feeds = nil
	return c.AddFeed(names...)
}

// AddFeed appends feeds that are not listed yet
func (q Query) AddFeed(names ...string) Query {
	c := q.clone()
	for _, n := range names {
		if n == "" || c.feedIndex(n) >= 0 {
			continue
		}
		c.feeds = append(c.feeds, newFeed(n))
	}
	return c.resetPage()
}

func (q Query) feedIndex(name string) int {
	return slices.IndexFunc(q.feeds, func(f Feed) bool { return f.name == name })
}

// Feeds returns the feed list in order
func (q Query) Feeds() []Feed {
	out := make([]Feed, len(q.feeds))
	for i, f := range q.feeds {
		out[i] = f.clone()
	}
	return out
}

// FeedNames lists the names of the activated feeds
func (q Query) FeedNames() []string {
	var out []string
	for _, f := range q.feeds {
		if f.activated {
			out = append(out, f.name)
		}
	}
	return out
}

// HasFeed reports whether at least one feed is set, or the named one when given
func (q Query) HasFeed(name ...string) bool {
	if len(name) == 0 {
		return len(q.feeds) > 0
	}
	return q.feedIndex(name[0]) >= 0
}

// Feed returns the named feed
func (q Query) Feed(name string) (Feed, error) {
	i := q.feedIndex(name)
	if i < 0 {
		return Feed{}, perr.WithField(perr.NotFoundf("unknown feed %q", name), KeyFeed)
	}
	return q.feeds[i].clone(), nil
}

func (q Query) withFeed(name string, fn func(*Feed) error) (Query, error) {
	i := q.feedIndex(name)
	if i < 0 {
		return q, perr.WithField(perr.NotFoundf("unknown feed %q", name), KeyFeed)
	}
	c := q.clone()
	if err := fn(&c.feeds[i]); err != nil {
		return q, err
	}
	return c, nil
}

// ActivateFeed toggles whether a listed feed is sent
func (q Query) ActivateFeed(name string, on bool) (Query, error) {
	return q.withFeed(name, func(f *Feed) error {
		f.activated = on
		return nil
	})
}

// SetFeedParameter overrides key for one feed; emitted as key@feed
func (q Query) SetFeedParameter(feed, key, value string) (Query, error) {
	if err := checkFeedParameter(key, value); err != nil {
		return q, err
	}
	return q.withFeed(feed, func(f *Feed) error {
		f.params = setKV(f.params, key, value)
		return nil
	})
}

// SetFeedQuery sets a free-text query for one feed
func (q Query) SetFeedQuery(feed, text string) (Query, error) {
	c, err := q.SetFeedParameter(feed, KeyQuery, text)
	if err != nil {
		return q, err
	}
	return c.resetPage().auto(OriginSearchBox), nil
}

// Filters

// SetFilter replaces the values selected on facetID
func (q Query) SetFilter(facetID string, values ...string) Query {
	c := q.clone()
	c.filters = c.filters.set(facetID, values)
	return c.resetPage().auto(OriginFacet)
}

// AddFilter selects more values on facetID; values already selected are kept once
func (q Query) AddFilter(facetID string, values ...string) Query {
	c := q.clone()
	c.filters = c.filters.add(facetID, values)
	return c.resetPage().auto(OriginFacet)
}

// RemoveFilter unselects value; removing an absent value is a no-op
func (q Query) RemoveFilter(facetID, value string) Query {
	c := q.clone()
	c.filters = c.filters.remove(facetID, value)
	return c.resetPage().auto(OriginFacet)
}

// HasFilter reports whether value is selected on facetID
func (q Query) HasFilter(facetID, value string) bool { return q.filters.has(facetID, value) }

// FilterValues returns the values selected on facetID; NotFound when none
func (q Query) FilterValues(facetID string) ([]string, error) {
	v, ok := q.filters.values(facetID)
	if !ok {
		return nil, perr.WithField(perr.NotFoundf("no filter on facet %q", facetID), KeyFilter)
	}
	return v, nil
}

// Filters returns every filter in insertion order
func (q Query) Filters() []Filter { return q.filters.clone() }

func (q Query) feedFilter(feed string, fn func(filterSet) filterSet) (Query, error) {
	c, err := q.withFeed(feed, func(f *Feed) error {
		f.filters = fn(f.filters)
		return nil
	})
	if err != nil {
		return q, err
	}
	return c.resetPage().auto(OriginFacet), nil
}

// SetFeedFilter replaces the values selected on facetID for one feed
func (q Query) SetFeedFilter(feed, facetID string, values ...string) (Query, error) {
	return q.feedFilter(feed, func(fs filterSet) filterSet { return fs.set(facetID, values) })
}

// AddFeedFilter selects more values on facetID for one feed
func (q Query) AddFeedFilter(feed, facetID string, values ...string) (Query, error) {
	return q.feedFilter(feed, func(fs filterSet) filterSet { return fs.add(facetID, values) })
}

// RemoveFeedFilter unselects value for one feed
func (q Query) RemoveFeedFilter(feed, facetID, value string) (Query, error) {
	return q.feedFilter(feed, func(fs filterSet) filterSet { return fs.remove(facetID, value) })
}

// HasFeedFilter reports whether value is selected on facetID for feed
func (q Query) HasFeedFilter(feed, facetID, value string) bool {
	i := q.feedIndex(feed)
	return i >= 0 && q.feeds[i].filters.has(facetID, value)
}

// Advanced filters

// SetAdvancedFilter replaces the advanced filter expressions
func (q Query) SetAdvancedFilter(exprs ...string) Query {
	c := q.clone()
	c.advanced = nil
	return c.AddAdvancedFilter(exprs...)
}

// AddAdvancedFilter appends advanced filter expressions
func (q Query) AddAdvancedFilter(exprs ...string) Query {
	c := q.clone()
	for _, e := range exprs {
		if e != "" {
			c.advanced = append(c.advanced, e)
		}
	}
	return c.resetPage().auto(OriginFacet)
}

// AdvancedFilters returns the advanced filter expressions
func (q Query) AdvancedFilters() []string { return slices.Clone(q.advanced) }

// Sort

// SetSort replaces the whole sort specification with one key
func (q Query) SetSort(key string, order SortOrder) (Query, error) {
	e, err := newSortEntry(key, order)
	if err != nil {
		return q, err
	}
	c := q.clone()
	c.sort = []SortEntry{e}
	return c.resetPage(), nil
}

// AddSort appends a key, or changes its order when already present
func (q Query) AddSort(key string, order SortOrder) (Query, error) {
	e, err := newSortEntry(key, order)
	if err != nil {
		return q, err
	}
	c := q.clone()
	c.sort = setSortEntry(c.sort, e)
	return c.resetPage(), nil
}

// SetFeedSort appends or changes a sort key of one feed
func (q Query) SetFeedSort(feed, key string, order SortOrder) (Query, error) {
	e, err := newSortEntry(key, order)
	if err != nil {
		return q, err
	}
	c, err := q.withFeed(feed, func(f *Feed) error {
		f.sort = setSortEntry(f.sort, e)
		return nil
	})
	if err != nil {
		return q, err
	}
	return c.resetPage(), nil
}

// ResetSort drops the sort specification
func (q Query) ResetSort() Query {
	c := q.clone()
	c.sort = nil
	return c.resetPage()
}

// Sort returns the sort entries in order
func (q Query) Sort() []SortEntry { return slices.Clone(q.sort) }

// HasSort reports whether key is part of the sort specification
func (q Query) HasSort(key string) bool {
	return slices.ContainsFunc(q.sort, func(e SortEntry) bool { return e.Key == key })
}

// SortString renders key,ORDER;key,ORDER
func (q Query) SortString() string { return FormatSort(q.sort) }

// Paging

// SetPage moves to page p
func (q Query) SetPage(p int) (Query, error) {
	if p <= 0 {
		return q, perr.WithField(perr.Validationf("page must be positive, got %d", p), KeyPage)
	}
	c := q.clone()
	c.page = p
	return c.auto(OriginPager), nil
}

// Page is the current page, starting at 1
func (q Query) Page() int { return q.page }

// SetReplies sets the number of replies per page
func (q Query) SetReplies(n int) (Query, error) {
	if n <= 0 {
		return q, perr.WithField(perr.Validationf("replies must be positive, got %d", n), KeyReplies)
	}
	c := q.clone()
	c.replies = n
	return c.resetPage(), nil
}

// Replies is the number of replies per page
func (q Query) Replies() int { return q.replies }

// FeedReplies is the replies per page in effect for feed
func (q Query) FeedReplies(feed string) int {
	if f, err := q.Feed(feed); err == nil {
		if n, ok := f.Replies(); ok {
			return n
		}
	}
	return q.replies
}

// Language

// SetLang validates and sets the query language; empty resets it
func (q Query) SetLang(s string) (Query, error) {
	l, err := ParseLanguage(s)
	if err != nil {
		return q, err
	}
	c := q.clone()
	c.lang = l
	return c.resetPage(), nil
}

// ResetLang drops the query language
func (q Query) ResetLang() Query {
	c := q.clone()
	c.lang = Language{}
	return c.resetPage()
}

// Lang is the query language; zero when unset
func (q Query) Lang() Language { return q.lang }

// HasLang reports whether a language is set
func (q Query) HasLang() bool { return !q.lang.IsZero() }

// Clustering

// SetCluster groups replies on facetID with repliesPerCluster replies in each group
func (q Query) SetCluster(facetID string, repliesPerCluster int) (Query, error) {
	cl, err := newCluster(facetID, repliesPerCluster)
	if err != nil {
		return q, err
	}
	c := q.clone()
	c.cluster = &cl
	return c, nil
}

// UnsetCluster drops clustering and its options
func (q Query) UnsetCluster() Query {
	c := q.clone()
	c.cluster = nil
	return c
}

// Cluster returns the cluster specification
func (q Query) Cluster() (Cluster, bool) {
	if q.cluster == nil {
		return Cluster{}, false
	}
	return *q.cluster, true
}

// HasCluster reports whether clustering is on
func (q Query) HasCluster() bool { return q.cluster != nil }

func (q Query) withCluster(option string, fn func(*Cluster)) (Query, error) {
	if q.cluster == nil {
		return q, perr.WithField(perr.ClusterStatef("%s requires a cluster, call SetCluster first", option), option)
	}
	c := q.clone()
	fn(c.cluster)
	return c, nil
}

// SetMaxClusters limits the number of clusters
func (q Query) SetMaxClusters(n int) (Query, error) {
	if n <= 0 && q.cluster != nil {
		return q, perr.WithField(perr.Validationf("max clusters must be positive, got %d", n), KeyMaxClusters)
	}
	return q.withCluster(KeyMaxClusters, func(cl *Cluster) { cl.MaxClusters = n })
}

// SetOverspill asks for replies that belong to no displayed cluster
func (q Query) SetOverspill(on bool) (Query, error) {
	return q.withCluster(KeyOverspill, func(cl *Cluster) { cl.Overspill = on })
}

// SetCount selects what totals count
func (q Query) SetCount(mode Count) (Query, error) {
	if q.cluster != nil {
		if _, err := ParseCount(string(mode)); err != nil {
			return q, err
		}
	}
	return q.withCluster(KeyCount, func(cl *Cluster) { cl.Count = mode })
}

// Full text mode

// SetFtsDefault sets whether query words are mandatory
func (q Query) SetFtsDefault(m FtsMode) (Query, error) {
	if _, err := ParseFtsMode(string(m)); err != nil {
		return q, err
	}
	c := q.clone()
	c.fts = m
	return c, nil
}

// FtsDefault returns the full text mode; empty when unset
func (q Query) FtsDefault() FtsMode { return q.fts }

// Origin

// AutoSetFrom toggles deriving the origin from each mutation
func (q Query) AutoSetFrom(on bool) Query {
	c := q.clone()
	c.autoFrom = on
	return c
}

// IsAutoSetFrom reports whether the origin follows mutations
func (q Query) IsAutoSetFrom() bool { return q.autoFrom }

// SetFrom sets the origin explicitly
func (q Query) SetFrom(o Origin) (Query, error) {
	if _, err := ParseOrigin(string(o)); err != nil {
		return q, err
	}
	c := q.clone()
	c.from = o
	return c, nil
}

// From is the origin; empty when never set
func (q Query) From() Origin { return q.from }

// Logs, key and custom parameters

// AddLog appends a free form log entry
func (q Query) AddLog(v string) Query {
	c := q.clone()
	c.logs = append(c.logs, v)
	return c
}

// Logs returns the log entries
func (q Query) Logs() []string { return slices.Clone(q.logs) }

// SetKey sets the opaque key
func (q Query) SetKey(k string) Query {
	c := q.clone()
	c.key = k
	return c
}

// Key returns the opaque key
func (q Query) Key() string { return q.key }

// SetCustomParameter sets a pass-through parameter, sent verbatim
func (q Query) SetCustomParameter(k, v string) Query {
	c := q.clone()
	c.custom = setKV(c.custom, k, v)
	return c
}

// CustomParameter returns a pass-through parameter
func (q Query) CustomParameter(k string) (string, bool) { return getKV(q.custom, k) }

// CustomParameters returns the pass-through parameters in insertion order
func (q Query) CustomParameters() [][2]string {
	out := make([][2]string, len(q.custom))
	for i, e := range q.custom {
		out[i] = [2]string{e.k, e.v}
	}
	return out
}

// Facet default

// SetFacetDefault replaces the options applied to every facet
func (q Query) SetFacetDefault(d facet.Default) Query {
	c := q.clone()
	c.facetDef = d
	return c
}

// FacetDefault returns the options applied to every facet
func (q Query) FacetDefault() facet.Default { return q.facetDef }

// Equal compares everything but the generated ids and the registry
func (q Query) Equal(o Query) bool {
	a, b := q.clone(), o.clone()
	a.userID, a.sessionID, a.registry = "", "", nil
	b.userID, b.sessionID, b.registry = "", "", nil
	return reflect.DeepEqual(a, b)
}
