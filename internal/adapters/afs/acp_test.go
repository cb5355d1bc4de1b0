package afs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"afsearch/internal/core/acp"
	perr "afsearch/internal/platform/errors"
	"afsearch/internal/platform/testkit"
)

func TestACPExecuteOverHTTP(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/acp" {
			t.Errorf("path = %s", r.URL.Path)
		}
		got = r.URL.Query()
		_, _ = w.Write([]byte(`{"Catalog": ["sho", ["shoes", "shorts"]], "Brands": ["sho", []]}`))
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	testkit.MustNoErr(t, err)
	c, err := NewClient(Options{Host: u.Host, Service: Service{ID: 42}, Endpoint: EndpointACP})
	testkit.MustNoErr(t, err)
	c.http = srv.Client()

	store := NewMemoryStore()
	store.Set(UserCookie, "stored-user")
	a := NewACP(c).WithSessions(NewUserSessionManager(store))

	resp, err := a.Execute(context.Background(), acp.NewQuery().SetQuery("sho").SetFeed("Catalog", "Brands"))
	testkit.MustNoErr(t, err)

	testkit.MustEqual(t, got.Get("afs:output"), "json,1")
	testkit.MustEqual(t, got["afs:feed"], []string{"Catalog", "Brands"})
	testkit.MustEqual(t, got.Get("afs:query"), "sho")
	testkit.MustEqual(t, got.Get("afs:userId"), "stored-user")

	testkit.MustEqual(t, resp.Feeds(), []string{"Catalog"})
	rs, err := resp.Replyset("Catalog")
	testkit.MustNoErr(t, err)
	testkit.MustEqual(t, rs.Replies()[1].Value(), "shorts")
}

func TestACPExecuteErrors(t *testing.T) {
	conn := &fakeConnector{err: perr.Unavailablef("down")}
	_, err := NewACP(conn).Execute(context.Background(), acp.NewQuery())
	testkit.MustCode(t, err, perr.ErrorCodeUnavailable)
	if e, _ := perr.As(err); e.Op() != "afs.Suggest" {
		t.Fatalf("op = %q", e.Op())
	}

	conn = &fakeConnector{body: []byte(`["sho"]`)}
	_, err = NewACP(conn).Execute(context.Background(), acp.NewQuery())
	testkit.MustCode(t, err, perr.ErrorCodeReplyInvalid)

	conn = &fakeConnector{body: []byte(`{"error": "unknown service"}`)}
	resp, err := NewACP(conn).Execute(context.Background(), acp.NewQuery())
	testkit.MustNoErr(t, err)
	if !resp.InError() {
		t.Fatalf("service error not reported")
	}
}
