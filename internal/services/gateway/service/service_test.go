package service

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"

	"afsearch/internal/adapters/afs"
	"afsearch/internal/core/coder"
	"afsearch/internal/core/facet"
	"afsearch/internal/core/query"
	perr "afsearch/internal/platform/errors"
	"afsearch/internal/platform/testkit"
	"afsearch/internal/services/gateway/domain"
)

type stubConn struct {
	mu   sync.Mutex
	body []byte
	err  error
	sent []url.Values
}

func (s *stubConn) Send(_ context.Context, params url.Values) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, params)
	return s.body, s.err
}

func (s *stubConn) GeneratedURL() string { return "http://stub/search" }

func (s *stubConn) last(t *testing.T) url.Values {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		t.Fatalf("nothing sent")
	}
	return s.sent[len(s.sent)-1]
}

// twoPerPage is a base query with two replies per page and the BOOL facet declared
func twoPerPage() (query.Query, error) {
	q, err := query.New().SetReplies(2)
	if err != nil {
		return q, err
	}
	f, err := facet.New("BOOL", facet.TypeBool, facet.LayoutTree, facet.ModeOr)
	if err != nil {
		return q, err
	}
	return q, q.Registry().Add(f)
}

func newService(t *testing.T, conn afs.Connector, base func() (query.Query, error), langs ...string) Service {
	t.Helper()
	s, err := New(Deps{Conn: conn, Coder: coder.New(coder.Options{Path: "/search"}), Base: base, Langs: langs})
	testkit.MustNoErr(t, err)
	return s
}

func TestSearchRendersReplyset(t *testing.T) {
	conn := &stubConn{body: testkit.Fixture(t, "replyset.json")}
	s := newService(t, conn, twoPerPage)

	res, err := s.Search(context.Background(), SearchInput{
		Params: url.Values{"query": {"title"}, "page": {"3"}},
	})
	testkit.MustNoErr(t, err)

	sent := conn.last(t)
	if sent.Get("afs:query") != "title" || sent.Get("afs:page") != "3" || sent.Get("afs:replies") != "2" {
		t.Fatalf("sent = %v", sent)
	}

	testkit.MustEqual(t, res.Query, "title")
	testkit.MustEqual(t, res.DurationMs, 666)
	if len(res.Replysets) != 1 {
		t.Fatalf("replysets = %d", len(res.Replysets))
	}
	rs := res.Replysets[0]
	if rs.Feed != "Test" || rs.Total != 200 || !rs.TotalExact || rs.FirstItem != 3 || rs.LastItem != 4 {
		t.Fatalf("replyset = %+v", rs)
	}
	testkit.MustEqual(t, len(rs.Replies), 2)
	testkit.MustEqual(t, rs.Replies[0].Title, "The <b>title</b> 116")
	testkit.MustEqual(t, rs.Replies[0].URI, "http://foo.bar.baz/116")

	if len(rs.Facets) != 3 {
		t.Fatalf("facets = %d", len(rs.Facets))
	}
	boolean := rs.Facets[0]
	testkit.MustEqual(t, boolean.ID, "BOOL")
	testkit.MustEqual(t, boolean.Values[0].Link, "/search?replies=2&query=title&filter=BOOL_false")

	category := rs.Facets[1]
	testkit.MustEqual(t, category.Values[0].Key, "Shoes")
	testkit.MustEqual(t, category.Values[0].Meta, map[string]string{"icon": "shoe.png"})
	testkit.MustEqual(t, len(category.Values[0].Children), 2)

	if rs.Pager == nil {
		t.Fatalf("pager expected")
	}
	testkit.MustEqual(t, rs.Pager.Current, 2)
	testkit.MustEqual(t, rs.Pager.Last, 100)
	pages := rs.Pager.Pages
	if len(pages) != 12 || pages[0].Label != "previous" || pages[11].Label != "next" {
		t.Fatalf("pages = %+v", pages)
	}
	testkit.MustEqual(t, pages[11].Link, "/search?replies=2&page=3&query=title")
}

func TestSearchServices(t *testing.T) {
	conn := &stubConn{body: testkit.Fixture(t, "services.json")}
	s := newService(t, conn, nil)

	res, err := s.Search(context.Background(), SearchInput{Params: url.Values{"query": {"vet"}}})
	testkit.MustNoErr(t, err)

	if len(res.Spellcheck) != 1 {
		t.Fatalf("spellcheck = %+v", res.Spellcheck)
	}
	sc := res.Spellcheck[0]
	if sc.Feed != "Catalog" || sc.Raw != "vert" || sc.Formatted != "<b>vert</b>" {
		t.Fatalf("suggestion = %+v", sc)
	}
	testkit.MustContain(t, sc.Link, "query=vert")

	if len(res.Concepts) != 3 || res.Concepts[1].Text != " et " || len(res.Concepts[1].Concepts) != 0 {
		t.Fatalf("concepts = %+v", res.Concepts)
	}
	testkit.MustEqual(t, res.Concepts[0].Concepts, []domain.ConceptData{{URI: "lnf:taxo#QI-thm2009862", Contents: "foo"}})

	if len(res.Promote) != 2 {
		t.Fatalf("promote = %+v", res.Promote)
	}
	tresor := res.Promote[0]
	testkit.MustEqual(t, tresor.Type, "default")
	testkit.MustEqual(t, tresor.URL, "http://www.wanimo.com/marques/tresor")
	testkit.MustEqual(t, tresor.ImageURL, "")
	testkit.MustEqual(t, tresor.Custom["slogan"], "Pour chien et chat")
	banner := res.Promote[1]
	if banner.Type != "banner" || banner.URL != "url" || banner.ImageURL != "image_url" {
		t.Fatalf("banner = %+v", banner)
	}
}

func TestSearchNegotiatesLanguage(t *testing.T) {
	cases := []struct {
		name   string
		params url.Values
		header string
		want   string
	}{
		{"header match", url.Values{"query": {"x"}}, "en-US,en;q=0.9", "en"},
		{"first supported", url.Values{"query": {"x"}}, "fr-CA", "fr"},
		{"no match", url.Values{"query": {"x"}}, "de", ""},
		{"no header", url.Values{"query": {"x"}}, "", ""},
		{"link wins", url.Values{"query": {"x"}, "lang": {"fr"}}, "en", "fr"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conn := &stubConn{body: testkit.Fixture(t, "replyset.json")}
			s := newService(t, conn, nil, "fr", "en")

			res, err := s.Search(context.Background(), SearchInput{Params: tc.params, AcceptLanguage: tc.header})
			testkit.MustNoErr(t, err)
			testkit.MustEqual(t, conn.last(t).Get("afs:lang"), tc.want)
			testkit.MustEqual(t, res.Lang, tc.want)
		})
	}
}

func TestSearchKeepsSessions(t *testing.T) {
	conn := &stubConn{body: testkit.Fixture(t, "replyset.json")}
	s := newService(t, conn, nil)
	store := afs.NewMemoryStore()

	_, err := s.Search(context.Background(), SearchInput{Params: url.Values{}, Store: store})
	testkit.MustNoErr(t, err)

	if v, _ := store.Get(afs.UserCookie); v != "afd070b6-4315-40cc-975d-747e28bf132a" {
		t.Fatalf("user = %q", v)
	}
	if conn.last(t).Get("afs:userId") == "" {
		t.Fatalf("user id not sent")
	}
}

func TestSearchErrors(t *testing.T) {
	t.Run("transport", func(t *testing.T) {
		s := newService(t, &stubConn{err: perr.Unavailablef("down")}, nil)
		_, err := s.Search(context.Background(), SearchInput{})
		testkit.MustCode(t, err, perr.ErrorCodeUnavailable)
	})
	t.Run("bad link parameter", func(t *testing.T) {
		conn := &stubConn{}
		s := newService(t, conn, nil)
		_, err := s.Search(context.Background(), SearchInput{Params: url.Values{"page": {"zero"}}})
		if err == nil {
			t.Fatalf("expected an error")
		}
		if len(conn.sent) != 0 {
			t.Fatalf("nothing should be sent")
		}
	})
	t.Run("base query", func(t *testing.T) {
		s := newService(t, &stubConn{}, func() (query.Query, error) {
			return query.Query{}, perr.Validationf("no base")
		})
		_, err := s.Search(context.Background(), SearchInput{})
		testkit.MustCode(t, err, perr.ErrorCodeValidation)
	})
}

func TestNewRejectsLanguage(t *testing.T) {
	_, err := New(Deps{Coder: coder.New(coder.Options{}), Langs: []string{"fr", "not a lang"}})
	if err == nil {
		t.Fatalf("expected an error")
	}
	if e, ok := perr.As(err); !ok || e.Op() != "gateway.New" {
		t.Fatalf("err = %v", err)
	}
}

func TestLink(t *testing.T) {
	s := newService(t, &stubConn{}, nil)
	ctx := context.Background()

	res, err := s.Link(ctx, domain.LinkRequest{Params: map[string][]string{"query": {"x"}}})
	testkit.MustNoErr(t, err)
	testkit.MustEqual(t, res.Link, "/search?replies=10&query=x")
	testkit.MustEqual(t, res.Parameters, "replies=10&query=x")

	text := "shoes"
	res, err = s.Link(ctx, domain.LinkRequest{
		Query:   &text,
		Feeds:   []string{"Catalog"},
		Filters: []domain.FilterInput{{Facet: "price", Values: []string{"cheap"}}},
		Page:    2,
		Lang:    "en",
	})
	testkit.MustNoErr(t, err)
	if !strings.HasPrefix(res.Link, "/search?") {
		t.Fatalf("link = %s", res.Link)
	}

	vals, err := url.ParseQuery(res.Parameters)
	testkit.MustNoErr(t, err)
	back, err := coder.New(coder.Options{}).BuildQuery(vals)
	testkit.MustNoErr(t, err)
	if back.Query() != "shoes" || back.Page() != 2 || back.Lang().String() != "en" {
		t.Fatalf("decoded = %q page %d lang %s", back.Query(), back.Page(), back.Lang())
	}
	testkit.MustEqual(t, back.FeedNames(), []string{"Catalog"})
	if !back.HasFilter("price", "cheap") {
		t.Fatalf("filter lost: %s", res.Parameters)
	}
}

func TestSuggest(t *testing.T) {
	conn := &stubConn{body: []byte(`["sho", ["shoes", "shorts"], [{"cat": "footwear"}, {}]]`)}
	s, err := New(Deps{ACPConn: conn, Coder: coder.New(coder.Options{Path: "/search"}), Base: twoPerPage})
	testkit.MustNoErr(t, err)
	store := afs.NewMemoryStore()
	store.Set(afs.UserCookie, "stored-user")

	res, err := s.Suggest(context.Background(), SuggestInput{
		Params: url.Values{"query": {"sho"}, "feed": {"Catalog"}, "replies": {"5"}},
		Store:  store,
	})
	testkit.MustNoErr(t, err)

	sent := conn.last(t)
	testkit.MustEqual(t, sent.Get("afs:query"), "sho")
	testkit.MustEqual(t, sent.Get("afs:feed"), "Catalog")
	testkit.MustEqual(t, sent.Get("afs:replies"), "5")
	testkit.MustEqual(t, sent.Get("afs:userId"), "stored-user")

	testkit.MustEqual(t, res.Query, "sho")
	testkit.MustEqual(t, len(res.Feeds), 1)
	items := res.Feeds[0].Items
	testkit.MustEqual(t, items[0].Value, "shoes")
	testkit.MustEqual(t, items[0].Options, map[string]string{"cat": "footwear"})
	if items[1].Options != nil {
		t.Fatalf("shorts has no option: %v", items[1].Options)
	}
	testkit.MustContain(t, items[1].Link, "query=shorts")
	testkit.MustContain(t, items[1].Link, "from=ACP")
}

func TestSuggestErrors(t *testing.T) {
	ctx := context.Background()

	_, err := newService(t, &stubConn{}, nil).Suggest(ctx, SuggestInput{})
	testkit.MustCode(t, err, perr.ErrorCodeUnavailable)

	conn := &stubConn{}
	s, err := New(Deps{ACPConn: conn, Coder: coder.New(coder.Options{})})
	testkit.MustNoErr(t, err)
	_, err = s.Suggest(ctx, SuggestInput{Params: url.Values{"replies": {"many"}}})
	testkit.MustCode(t, err, perr.ErrorCodeInvalidArgument)
	if len(conn.sent) != 0 {
		t.Fatalf("nothing should be sent")
	}

	conn.body = []byte(`{"error": "unknown service"}`)
	res, err := s.Suggest(ctx, SuggestInput{Params: url.Values{"query": {"x"}}})
	testkit.MustNoErr(t, err)
	testkit.MustEqual(t, res.Error, "unknown service")
	testkit.MustEqual(t, len(res.Feeds), 0)
}
