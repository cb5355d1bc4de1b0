package coder

import (
	"net/url"
	"slices"
	"strings"

	"afsearch/internal/core/query"
	perr "afsearch/internal/platform/errors"
)

// order in which parameters are decoded and generated
var keyOrder = []string{
	query.KeyReplies, query.KeyPage, query.KeyFeed, query.KeyQuery, query.KeyFilter, query.KeySort,
	query.KeyCluster, query.KeyMaxClusters, query.KeyOverspill, query.KeyCount,
	query.KeyAdvancedFilter, query.KeyFtsDefault, query.KeyLang, query.KeyFrom, query.KeyLog, query.KeyKey,
}

// Options configure a QueryCoder; nil coders get the defaults
type Options struct {
	Path   string
	Feed   *FeedCoder
	Filter *FilterCoder
	Sort   *SortCoder
}

// QueryCoder builds queries from link parameters and links from queries
type QueryCoder struct {
	path   string
	feed   *FeedCoder
	filter *FilterCoder
	sort   *SortCoder
	custom [][2]string
}

// New returns a QueryCoder generating links on opt.Path
func New(opt Options) *QueryCoder {
	c := &QueryCoder{path: opt.Path, feed: opt.Feed, filter: opt.Filter, sort: opt.Sort}
	if c.feed == nil {
		c.feed = DefaultFeedCoder()
	}
	if c.filter == nil {
		c.filter = DefaultFilterCoder()
	}
	if c.sort == nil {
		c.sort = DefaultSortCoder()
	}
	return c
}

// Path is the base of generated links
func (c *QueryCoder) Path() string { return c.path }

// SetCustomParameter adds k=v to every generated link
func (c *QueryCoder) SetCustomParameter(k, v string) {
	for i := range c.custom {
		if c.custom[i][0] == k {
			c.custom[i][1] = v
			return
		}
	}
	c.custom = append(c.custom, [2]string{k, v})
}

func rank(key string) int {
	if i := slices.Index(keyOrder, key); i >= 0 {
		return i
	}
	return len(keyOrder)
}

// BuildQuery decodes link parameters into a query. Unknown keys are ignored
func (c *QueryCoder) BuildQuery(params url.Values) (query.Query, error) {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		ka, _, _ := strings.Cut(a, "@")
		kb, _, _ := strings.Cut(b, "@")
		if d := rank(ka) - rank(kb); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})

	var ps []query.Parameter
	for _, name := range names {
		key, feed, _ := strings.Cut(name, "@")
		if rank(key) == len(keyOrder) && feed == "" {
			continue
		}
		p, err := c.decode(key, feed, params[name])
		if err != nil {
			return query.Query{}, perr.WithOp(err, "coder.BuildQuery")
		}
		ps = append(ps, p)
	}
	return query.FromParameters(ps)
}

func (c *QueryCoder) decode(key, feed string, values []string) (query.Parameter, error) {
	p := query.Parameter{Key: key, Feed: feed}
	switch key {
	case query.KeyFilter:
		p.Filters = []query.Filter{}
		for _, v := range values {
			fs, err := c.filter.Decode(v)
			if err != nil {
				return p, err
			}
			p.Filters = append(p.Filters, fs...)
		}
	case query.KeySort:
		p.Sort = []query.SortEntry{}
		for _, v := range values {
			es, err := c.sort.Decode(v)
			if err != nil {
				return p, err
			}
			p.Sort = append(p.Sort, es...)
		}
	case query.KeyFeed:
		for _, v := range values {
			p.Values = append(p.Values, c.feed.Decode(v)...)
		}
	default:
		p.Values = values
	}
	return p, nil
}

// GenerateParameters renders the link parameters of q in a stable order
func (c *QueryCoder) GenerateParameters(q query.Query) string {
	var out []string
	add := func(name, value string) {
		out = append(out, url.QueryEscape(name)+"="+url.QueryEscape(value))
	}
	for _, p := range q.Parameters(false) {
		switch {
		case p.Filters != nil:
			add(p.Name(), c.filter.Encode(p.Filters))
		case p.Sort != nil:
			add(p.Name(), c.sort.Encode(p.Sort))
		case p.Key == query.KeyFeed:
			add(p.Name(), c.feed.Encode(p.Values))
		default:
			for _, v := range p.Values {
				add(p.Name(), v)
			}
		}
	}
	for _, kv := range c.custom {
		add(kv[0], kv[1])
	}
	return strings.Join(out, "&")
}

// GenerateLink is Path()?GenerateParameters(q)
func (c *QueryCoder) GenerateLink(q query.Query) string {
	return c.path + "?" + c.GenerateParameters(q)
}
