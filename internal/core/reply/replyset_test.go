package reply

import (
	"testing"

	"afsearch/internal/core/clientdata"
	"afsearch/internal/core/coder"
	"afsearch/internal/core/facet"
	"afsearch/internal/core/query"
	perr "afsearch/internal/platform/errors"
	"afsearch/internal/platform/testkit"
)

func must[T any](t *testing.T) func(T, error) T {
	t.Helper()
	return func(v T, err error) T {
		t.Helper()
		testkit.MustNoErr(t, err)
		return v
	}
}

func parse(t *testing.T, fixture string, q query.Query, cfg Config) *Response {
	t.Helper()
	r, err := Parse(testkit.Fixture(t, fixture), q, cfg)
	testkit.MustNoErr(t, err)
	return r
}

func titleQuery(t *testing.T) query.Query {
	q := query.New().SetQuery("title")
	q = must[query.Query](t)(q.SetReplies(2))
	return must[query.Query](t)(q.SetPage(3))
}

func TestReplysetWithLinks(t *testing.T) {
	q := titleQuery(t)
	testkit.MustNoErr(t, q.Registry().Add(must[*facet.Facet](t)(facet.New("BOOL", facet.TypeBool, facet.LayoutTree, facet.ModeOr))))
	cfg := Config{Coder: coder.New(coder.Options{Path: "foo.php"})}

	rs := must[*Replyset](t)(parse(t, "replyset.json", q, cfg).Replyset(""))

	meta := rs.Meta()
	testkit.MustEqual(t, meta.Feed(), "Test")
	testkit.MustEqual(t, meta.TotalReplies(), 200)
	testkit.MustEqual(t, meta.Duration(), 42)
	testkit.MustEqual(t, meta.Producer(), ProducerSearch)
	if !meta.IsTotalExact() || meta.HasCluster() {
		t.Fatalf("meta flags: exact=%v cluster=%v", meta.IsTotalExact(), meta.HasCluster())
	}

	facets := rs.Facets()
	if len(facets) != 3 {
		t.Fatalf("facets = %d", len(facets))
	}
	testkit.MustEqual(t, facets[0].Label(), "Boolean facet")
	values := facets[0].Values()
	testkit.MustEqual(t, values[0].Label, "BAD")
	testkit.MustEqual(t, values[0].Next.Link, "foo.php?replies=2&query=title&filter=BOOL_false")

	testkit.MustEqual(t, rs.NbReplies(), 2)
	testkit.MustEqual(t, rs.Replies()[0].Title(), "The <b>title</b> 116")
	testkit.MustEqual(t, rs.Replies()[1].Title(), "The <b>title</b> 81")

	pager := must[*Pager](t)(rs.Pager())
	testkit.MustEqual(t, must[Page](t)(pager.Next()).Link, "foo.php?replies=2&page=3&query=title")
	testkit.MustEqual(t, must[Page](t)(pager.Previous()).Link, "foo.php?replies=2&query=title")
}

func TestTreeFacetValues(t *testing.T) {
	q := query.New()
	rs := must[*Replyset](t)(parse(t, "replyset.json", q, Config{}).Replyset("Test"))
	f := must[*Facet](t)(rs.Facet("BOOL"))

	cases := []struct {
		key   string
		label string
		count int
	}{
		{"false", "BAD", 67},
		{"true", "GOOD", 133},
	}
	for i, c := range cases {
		v := f.Values()[i]
		if v.Key != c.key || v.Label != c.label || v.Count != c.count || v.Active {
			t.Fatalf("value %d = %+v", i, v)
		}
		if !v.Next.Query.HasFilter("BOOL", c.key) || v.Next.Link != "" {
			t.Fatalf("value %s next should filter on its own key without link", c.key)
		}
		if v.Next.Query.From() != query.OriginFacet {
			t.Fatalf("next query origin = %s", v.Next.Query.From())
		}
	}

	// filtering on false makes it active and its next step removes the filter
	filtered := q.AddFilter("BOOL", "false")
	rs = must[*Replyset](t)(parse(t, "replyset.json", filtered, Config{}).Replyset("Test"))
	f = must[*Facet](t)(rs.Facet("BOOL"))
	bad, good := f.Values()[0], f.Values()[1]
	if !bad.Active || bad.Next.Query.HasFilter("BOOL", "false") {
		t.Fatalf("active value should remove its filter: %+v", bad)
	}
	if good.Active || !good.Next.Query.HasFilter("BOOL", "false") || !good.Next.Query.HasFilter("BOOL", "true") {
		t.Fatalf("OR facet should keep the active value: %+v", good.Next.Query.Filters())
	}
}

func TestFacetModeAndRegistry(t *testing.T) {
	q := query.New()
	reg := q.Registry()
	testkit.MustNoErr(t, reg.Add(must[*facet.Facet](t)(facet.New("BOOL", facet.TypeBool, facet.LayoutTree, facet.ModeReplace))))
	_, err := reg.Declare("price")
	testkit.MustNoErr(t, err)

	q = q.AddFilter("BOOL", "false")
	rs := must[*Replyset](t)(parse(t, "replyset.json", q, Config{}).Replyset("Test"))

	good := must[*Facet](t)(rs.Facet("BOOL")).Values()[1]
	testkit.MustEqual(t, good.Next.Query.Filters(), []query.Filter{{Facet: "BOOL", Values: []string{"true"}}})

	price := must[*facet.Facet](t)(reg.Get("price"))
	if price.IsDeclared() || price.Type() != facet.TypeReal || price.Layout() != facet.LayoutInterval {
		t.Fatalf("declared facet not resolved from reply: %s", price)
	}
	if !reg.Has("category") {
		t.Fatalf("unknown reply facet should be registered")
	}
}

func TestFacetOrder(t *testing.T) {
	cases := []struct {
		name  string
		order facet.Order
		ids   []string
		want  []string
	}{
		{"reply order", "", nil, []string{"BOOL", "category", "price"}},
		{"lax", facet.OrderLax, []string{"price"}, []string{"price", "BOOL", "category"}},
		{"strict", facet.OrderStrict, []string{"price", "BOOL"}, []string{"price", "BOOL"}},
	}
	for _, c := range cases {
		q := query.New()
		if c.order != "" {
			testkit.MustNoErr(t, q.Registry().SetOrder(c.order, c.ids...))
		}
		rs := must[*Replyset](t)(parse(t, "replyset.json", q, Config{}).Replyset("Test"))
		var got []string
		for _, f := range rs.Facets() {
			got = append(got, f.ID())
		}
		testkit.MustEqual(t, got, c.want)
		if _, err := rs.Facet("category"); err != nil {
			t.Fatalf("%s: hidden facet should stay reachable by id", c.name)
		}
	}
}

func TestStrictOrderDropsRegisteredFacets(t *testing.T) {
	q := query.New()
	reg := q.Registry()
	testkit.MustNoErr(t, reg.Add(must[*facet.Facet](t)(facet.New("category", facet.TypeString, facet.LayoutTree, facet.ModeOr))))
	testkit.MustNoErr(t, reg.SetOrder(facet.OrderStrict, "price", "BOOL"))

	rs := must[*Replyset](t)(parse(t, "replyset.json", q, Config{}).Replyset("Test"))
	var got []string
	for _, f := range rs.Facets() {
		got = append(got, f.ID())
	}
	testkit.MustEqual(t, got, []string{"price", "BOOL"})
}

func TestUnspecifiedModeFacetFails(t *testing.T) {
	q := query.New()
	testkit.MustNoErr(t, q.Registry().Add(must[*facet.Facet](t)(facet.New("BOOL", facet.TypeBool, facet.LayoutTree, facet.ModeUnspecified))))

	_, err := Parse(testkit.Fixture(t, "replyset.json"), q, Config{})
	testkit.MustCode(t, err, perr.ErrorCodeState)
}

func TestDeclaredFacetGetsOrMode(t *testing.T) {
	q := query.New().AddFilter("category", "Shoes")
	placeholder := must[*facet.Facet](t)(q.Registry().Declare("category"))
	rs := must[*Replyset](t)(parse(t, "replyset.json", q, Config{}).Replyset("Test"))
	if placeholder.IsDeclared() || placeholder.Mode() != facet.ModeOr {
		t.Fatalf("placeholder = %s mode %s", placeholder, placeholder.Mode())
	}

	cat := must[*Facet](t)(rs.Facet("category"))
	for _, v := range cat.Values() {
		if v.Key == "Shoes" {
			continue
		}
		got := v.Next.Query.Filters()
		if len(got) != 1 || len(got[0].Values) != 2 {
			t.Fatalf("%s next filters = %+v", v.Key, got)
		}
	}
}

func TestTreeChildrenIntervalsAndMeta(t *testing.T) {
	rs := must[*Replyset](t)(parse(t, "replyset.json", query.New(), Config{}).Replyset("Test"))

	cat := must[*Facet](t)(rs.Facet("category"))
	testkit.MustEqual(t, cat.Label(), "Category")
	testkit.MustEqual(t, cat.Labels()[1], Label{Lang: "fr", Label: "Catégorie"})
	if !cat.IsSticky() || cat.Type() != facet.TypeString {
		t.Fatalf("category facet: sticky=%v type=%s", cat.IsSticky(), cat.Type())
	}
	shoes := cat.Values()[0]
	if len(shoes.Children) != 2 || shoes.Children[0].Label != "Winter boots" || shoes.Children[1].Label != "Derby" {
		t.Fatalf("children = %+v", shoes.Children)
	}
	testkit.MustEqual(t, must[string](t)(shoes.Meta("icon")), "shoe.png")
	_, err := shoes.Meta("color")
	testkit.MustCode(t, err, perr.ErrorCodeNotFound)
	boots := must[FacetValue](t)(cat.Value("Boots"))
	if !boots.Next.Query.HasFilter("category", "Boots") {
		t.Fatalf("child value should filter on its own key")
	}

	price := must[*Facet](t)(rs.Facet("price"))
	testkit.MustEqual(t, price.Layout(), facet.LayoutInterval)
	testkit.MustEqual(t, price.Values()[0].Label, "cheap")
	testkit.MustEqual(t, price.Values()[1].Label, "]50 .. 500]")
	if price.Values()[0].Children != nil {
		t.Fatalf("interval values are flat")
	}
	_, err = rs.Facet("nope")
	testkit.MustCode(t, err, perr.ErrorCodeNotFound)
}

func TestReplyItem(t *testing.T) {
	rs := must[*Replyset](t)(parse(t, "replyset.json", query.New(), Config{}).Replyset(""))
	r := rs.Replies()[0]
	testkit.MustEqual(t, r.DocID(), 198)
	testkit.MustEqual(t, r.URI(), "http://foo.bar.baz/116")
	testkit.MustEqual(t, r.Rank(), 3)
	testkit.MustEqual(t, r.Abstract(), "viens de tomber a monté d'un nouveau cran...")
	geo, ok := r.Geo()
	if !ok || geo["lat"] != 48.85 {
		t.Fatalf("geo = %v", geo)
	}

	first := must[string](t)(must[*clientdata.Manager](t)(r.ClientDatas()).Value("", "/clientdata/data/data1[2]", clientdata.Options{}))
	testkit.MustEqual(t, first, "data 1")
	extra := must[string](t)(must[*clientdata.Manager](t)(r.ClientDatas()).Value("extra", "tags[1]", clientdata.Options{}))
	testkit.MustEqual(t, extra, "b")

	second := rs.Replies()[1]
	testkit.MustEqual(t, second.Abstract(), "")
	if _, ok := second.Geo(); ok {
		t.Fatalf("reply without geo extension")
	}
	_, err := second.ClientData("")
	testkit.MustCode(t, err, perr.ErrorCodeNotFound)
}

func TestPager(t *testing.T) {
	q := titleQuery(t)
	rs := must[*Replyset](t)(parse(t, "replyset.json", q, Config{}).Replyset(""))
	p := must[*Pager](t)(rs.Pager())
	testkit.MustEqual(t, p.Current(), 2)

	next := must[Page](t)(p.Next())
	if next.Number != 3 || next.Query.Page() != 3 || next.Query.From() != query.OriginPager || next.Link != "" {
		t.Fatalf("next = %+v", next)
	}
	pages := must[[]Page](t)(p.Pages())
	if len(pages) != 10 || pages[4].Label != "5" || pages[4].Query.Page() != 5 {
		t.Fatalf("pages = %+v", pages)
	}
	all := must[[]Page](t)(p.AllPages())
	if len(all) != 12 || all[0].Label != "previous" || all[11].Label != "next" {
		t.Fatalf("all pages = %d", len(all))
	}
	// 200 replies, 2 per page
	testkit.MustEqual(t, p.LastPageNumber(), 100)
	testkit.MustEqual(t, must[Page](t)(p.LastPage()).Query.Page(), 100)

	clustered := must[*Replyset](t)(parse(t, "clusters.json", query.New(), Config{}).Replyset(""))
	p = must[*Pager](t)(clustered.Pager())
	_, err := p.Previous()
	testkit.MustCode(t, err, perr.ErrorCodeOutOfRange)
	if p.HasPrevious() || !p.HasNext() {
		t.Fatalf("first page flags")
	}
}

func TestPagerUsesFeedReplies(t *testing.T) {
	q := must[query.Query](t)(query.New().SetFeed("Test").SetFeedParameter("Test", query.KeyReplies, "8"))
	rs := must[*Replyset](t)(parse(t, "replyset.json", q, Config{}).Replyset("Test"))
	// 200 replies, 8 per page for this feed
	testkit.MustEqual(t, must[*Pager](t)(rs.Pager()).LastPageNumber(), 25)
}

func TestLastPage(t *testing.T) {
	cases := []struct{ total, per, want int }{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{20, 10, 2},
		{200, 2, 100},
		{201, 2, 101},
		{5, 0, 0},
	}
	for _, c := range cases {
		if got := LastPage(c.total, c.per); got != c.want {
			t.Fatalf("LastPage(%d, %d) = %d, want %d", c.total, c.per, got, c.want)
		}
	}
}

func TestClusters(t *testing.T) {
	q := must[query.Query](t)(query.New().SetCluster("marketing", 1))
	rs := must[*Replyset](t)(parse(t, "clusters.json", q, Config{}).Replyset("Catalog"))

	testkit.MustEqual(t, rs.Meta().ClusterID(), "marketing")
	testkit.MustEqual(t, rs.Meta().ClusterLabel(), "Marketing")
	if !rs.HasCluster() || len(rs.Clusters()) != 2 {
		t.Fatalf("clusters = %d", len(rs.Clusters()))
	}

	uris := func(rs []*Reply) []string {
		var out []string
		for _, r := range rs {
			out = append(out, r.URI())
		}
		return out
	}
	testkit.MustEqual(t, uris(rs.ClusterReplies()), []string{"166_en", "112_fr"})
	testkit.MustEqual(t, uris(rs.Overspill()), []string{"165_en"})
	testkit.MustEqual(t, uris(rs.AllReplies()), []string{"166_en", "112_fr", "165_en"})

	op8 := must[*Cluster](t)(rs.Cluster("OPERATION_8"))
	testkit.MustEqual(t, op8.Label(), "Summer sales")
	testkit.MustEqual(t, op8.TotalReplies(), 6)
	testkit.MustEqual(t, op8.Replies()[0].Title(), "HTC Touch Diamond")
	next := op8.Next().Query
	if next.HasCluster() || !next.HasFilter("marketing", "OPERATION_8") || next.From() != query.OriginFacet {
		t.Fatalf("cluster next query: cluster=%v filters=%v from=%s", next.HasCluster(), next.Filters(), next.From())
	}
	testkit.MustEqual(t, must[*Cluster](t)(rs.Cluster("OPERATION_9")).Label(), "OPERATION_9")
	_, err := rs.Cluster("OPERATION_1")
	testkit.MustCode(t, err, perr.ErrorCodeNotFound)

	plain := must[*Replyset](t)(parse(t, "replyset.json", query.New(), Config{}).Replyset(""))
	if plain.Overspill() != nil || len(plain.AllReplies()) != 2 {
		t.Fatalf("unclustered replyset: overspill=%v all=%d", plain.Overspill(), len(plain.AllReplies()))
	}
}
