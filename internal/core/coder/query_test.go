package coder

import (
	"net/url"
	"strings"
	"testing"

	"afsearch/internal/core/query"
	perr "afsearch/internal/platform/errors"
	"afsearch/internal/platform/testkit"
)

func build(t *testing.T, c *QueryCoder, raw string) query.Query {
	t.Helper()
	v, err := url.ParseQuery(raw)
	testkit.MustNoErr(t, err)
	q, err := c.BuildQuery(v)
	testkit.MustNoErr(t, err)
	return q
}

func TestBuildQuery(t *testing.T) {
	c := New(Options{Path: "/search"})

	q := build(t, c, "")
	if q.HasQuery() || len(q.Filters()) != 0 {
		t.Fatalf("empty parameters should give an empty query")
	}

	q = build(t, c, "query=FOO")
	if q.Query() != "FOO" || len(q.Filters()) != 0 {
		t.Fatalf("query = %q", q.Query())
	}

	q = build(t, c, "filter=FOO_bar_baz")
	if q.HasQuery() || !q.HasFilter("FOO", "bar") || !q.HasFilter("FOO", "baz") || q.HasFilter("FOO", "bat") {
		t.Fatalf("filters = %+v", q.Filters())
	}

	q = build(t, c, "X=42&Y=666")
	if q.HasQuery() || len(q.Filters()) != 0 {
		t.Fatalf("unknown keys should be ignored")
	}

	q = build(t, c, "feed=Catalog_News&filter%40Catalog=SIZE_42&replies%40News=3&page=2&lang=FR")
	testkit.MustEqual(t, q.FeedNames(), []string{"Catalog", "News"})
	if !q.HasFeedFilter("Catalog", "SIZE", "42") || q.Page() != 2 || q.Lang().String() != "fr" {
		t.Fatalf("scoped parameters not decoded")
	}
}

func TestBuildQueryErrors(t *testing.T) {
	c := New(Options{})
	for _, raw := range []string{"sort=price_ASC_x", "filter=1bad_v", "page=0", "cluster=FOO"} {
		v, _ := url.ParseQuery(raw)
		_, err := c.BuildQuery(v)
		testkit.MustCode(t, err, perr.ErrorCodeValidation)
	}
	v, _ := url.ParseQuery("maxClusters=3")
	_, err := c.BuildQuery(v)
	testkit.MustCode(t, err, perr.ErrorCodeClusterState)
}

func TestGenerateParametersOrder(t *testing.T) {
	c := New(Options{Path: "/search"})
	q := query.New().SetFeed("Catalog").SetQuery("red shoes").AddFilter("COLOR", "red", "dark_red")
	q, _ = q.AddSort("price", query.Asc)
	q, _ = q.SetCluster("BRAND", 2)
	q, _ = q.SetLang("en")
	q, _ = q.SetPage(2)
	c.SetCustomParameter("theme", "dark")

	want := "replies=10&page=2&feed=Catalog&query=red+shoes&filter=COLOR_red_dark%7C_red" +
		"&sort=price_ASC&cluster=BRAND%2C2&lang=en&theme=dark"
	if got := c.GenerateParameters(q); got != want {
		t.Fatalf("GenerateParameters =\n%s\nwant\n%s", got, want)
	}
	if link := c.GenerateLink(q); !strings.HasPrefix(link, "/search?replies=10&") {
		t.Fatalf("GenerateLink = %q", link)
	}
	if strings.Contains(c.GenerateParameters(q), "userId") {
		t.Fatalf("links must not carry ids")
	}
}

func TestCustomParametersInLinks(t *testing.T) {
	c := New(Options{Path: "/"})
	q := build(t, c, "query=u2s!57e2")
	c.SetCustomParameter("mycustomparameter", "mycustomvalue")
	c.SetCustomParameter("andanotherone", "withanothervalue")
	link := c.GenerateLink(q)
	testkit.MustContain(t, link, "mycustomparameter=mycustomvalue")
	testkit.MustContain(t, link, "andanotherone=withanothervalue")
}

func TestRoundTrip(t *testing.T) {
	c := New(Options{Path: "/search"})
	q := query.New().SetFeed("a_b", "c|d").AddFilter("F", "x-y", "z_w").AddFilter("G", "1")
	q, _ = q.AddSort("price", query.Asc)
	q, _ = q.AddSort("afs:weight", query.Desc)
	q, _ = q.SetCluster("C", 3)
	q, _ = q.SetMaxClusters(4)
	q, _ = q.SetOverspill(true)
	q, _ = q.SetCount(query.CountClusters)
	q, _ = q.AddFeedFilter("a_b", "H", "2")
	q, _ = q.SetPage(7)

	v, err := url.ParseQuery(c.GenerateParameters(q))
	testkit.MustNoErr(t, err)
	back, err := c.BuildQuery(v)
	testkit.MustNoErr(t, err)

	testkit.MustEqual(t, back.Filters(), q.Filters())
	testkit.MustEqual(t, back.Feeds(), q.Feeds())
	testkit.MustEqual(t, back.Sort(), q.Sort())
	c1, _ := back.Cluster()
	c2, _ := q.Cluster()
	if c1 != c2 || back.Page() != 7 {
		t.Fatalf("cluster %+v vs %+v, page %d", c1, c2, back.Page())
	}
}
