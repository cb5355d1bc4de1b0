package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"afsearch/internal/adapters/afs"
	perr "afsearch/internal/platform/errors"
	phttp "afsearch/internal/platform/net/http"
	"afsearch/internal/platform/testkit"
	"afsearch/internal/services/gateway/domain"
	svc "afsearch/internal/services/gateway/service"

	"github.com/go-chi/chi/v5"
)

type fakeSvc struct {
	searchIn  svc.SearchInput
	searchErr error
	linkIn    domain.LinkRequest
	suggestIn svc.SuggestInput
}

func (f *fakeSvc) Search(_ context.Context, in svc.SearchInput) (domain.SearchResult, error) {
	f.searchIn = in
	if f.searchErr != nil {
		return domain.SearchResult{}, f.searchErr
	}
	if in.Store != nil {
		in.Store.Set(afs.UserCookie, "u-1")
	}
	return domain.SearchResult{Query: in.Params.Get("query"), Replysets: []domain.Replyset{}}, nil
}

func (f *fakeSvc) Link(_ context.Context, in domain.LinkRequest) (domain.LinkResponse, error) {
	f.linkIn = in
	return domain.LinkResponse{Link: "/search?replies=10&query=x", Parameters: "replies=10&query=x"}, nil
}

func (f *fakeSvc) Suggest(_ context.Context, in svc.SuggestInput) (domain.Completions, error) {
	f.suggestIn = in
	if f.searchErr != nil {
		return domain.Completions{}, f.searchErr
	}
	return domain.Completions{
		Query: in.Params.Get("query"),
		Feeds: []domain.CompletionFeed{{Items: []domain.Completion{{Value: "shoes", Link: "/search?query=shoes"}}}},
	}, nil
}

func mount(f *fakeSvc, d Deps) stdhttp.Handler {
	afs.RegisterTags()
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), f, d)
	return mux
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) phttp.Envelope {
	t.Helper()
	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return env
}

func TestSearchHandler(t *testing.T) {
	f := &fakeSvc{}
	h := mount(f, Deps{ServiceName: "afs-gateway", Cookies: true})

	req := httptest.NewRequest(stdhttp.MethodGet, "/search?query=shoes&page=2", nil)
	req.Header.Set("Accept-Language", "fr-FR")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	testkit.MustEqual(t, rec.Code, stdhttp.StatusOK)
	testkit.MustEqual(t, f.searchIn.Params.Get("page"), "2")
	testkit.MustEqual(t, f.searchIn.AcceptLanguage, "fr-FR")
	testkit.MustContain(t, rec.Header().Get("Set-Cookie"), afs.UserCookie+"=u-1")

	env := envelope(t, rec)
	data, _ := env.Data.(map[string]any)
	if data["query"] != "shoes" {
		t.Fatalf("data = %+v", env.Data)
	}
}

func TestSearchHandlerWithoutCookies(t *testing.T) {
	f := &fakeSvc{}
	h := mount(f, Deps{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/search", nil))

	testkit.MustEqual(t, rec.Code, stdhttp.StatusOK)
	if f.searchIn.Store != nil {
		t.Fatalf("no store expected")
	}
	if c := rec.Header().Get("Set-Cookie"); c != "" {
		t.Fatalf("unexpected cookie %q", c)
	}
}

func TestSearchHandlerErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{perr.Unavailablef("engine down"), stdhttp.StatusServiceUnavailable, "unavailable"},
		{perr.ReplyInvalid(nil, []byte("<html>"), "decode reply"), stdhttp.StatusBadGateway, "reply_invalid"},
		{perr.WithField(perr.InvalidArgf("page must be positive"), "page"), stdhttp.StatusUnprocessableEntity, "invalid_argument"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			h := mount(&fakeSvc{searchErr: tc.err}, Deps{})
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/search?query=x", nil))

			testkit.MustEqual(t, rec.Code, tc.status)
			testkit.MustEqual(t, envelope(t, rec).Code, tc.code)
		})
	}
}

func TestSuggestHandler(t *testing.T) {
	f := &fakeSvc{}
	h := mount(f, Deps{Cookies: true})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/suggest?query=sho&feed=Catalog&feed=Brands", nil))

	testkit.MustEqual(t, rec.Code, stdhttp.StatusOK)
	testkit.MustEqual(t, f.suggestIn.Params["feed"], []string{"Catalog", "Brands"})
	if f.suggestIn.Store == nil {
		t.Fatalf("cookie store expected")
	}
	testkit.MustContain(t, rec.Body.String(), `"value":"shoes"`)

	h = mount(&fakeSvc{searchErr: perr.Unavailablef("autocomplete is not configured")}, Deps{})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/suggest?query=sho", nil))
	testkit.MustEqual(t, rec.Code, stdhttp.StatusServiceUnavailable)
}

func TestLinkHandler(t *testing.T) {
	f := &fakeSvc{}
	h := mount(f, Deps{})

	body := `{"query":"x","filters":[{"facet":"category","values":["Shoes"]}],"page":2}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodPost, "/links", strings.NewReader(body)))

	testkit.MustEqual(t, rec.Code, stdhttp.StatusOK)
	if f.linkIn.Query == nil || *f.linkIn.Query != "x" || f.linkIn.Page != 2 {
		t.Fatalf("link input = %+v", f.linkIn)
	}
	testkit.MustEqual(t, f.linkIn.Filters, []domain.FilterInput{{Facet: "category", Values: []string{"Shoes"}}})
	data, _ := envelope(t, rec).Data.(map[string]any)
	testkit.MustEqual(t, data["link"], any("/search?replies=10&query=x"))
}

func TestLinkHandlerValidation(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"bad facet id", `{"filters":[{"facet":"not an id","values":["a"]}]}`, "facet"},
		{"no values", `{"filters":[{"facet":"category","values":[]}]}`, "values"},
		{"negative page", `{"page":-1}`, "page"},
		{"bad lang", `{"lang":"???"}`, "lang"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeSvc{}
			h := mount(f, Deps{})
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodPost, "/links", strings.NewReader(tc.body)))

			testkit.MustEqual(t, rec.Code, stdhttp.StatusBadRequest)
			env := envelope(t, rec)
			testkit.MustEqual(t, env.Code, "validation")
			testkit.MustEqual(t, env.Field, tc.field)
		})
	}
}

func TestHealthAndVersion(t *testing.T) {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	h := mount(&fakeSvc{}, Deps{ServiceName: "afs-gateway", StartedAt: started})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/healthz", nil))
	testkit.MustEqual(t, rec.Code, stdhttp.StatusOK)
	testkit.MustContain(t, rec.Body.String(), `"started":"2026-01-02T03:04:05Z"`)
	testkit.MustContain(t, rec.Body.String(), `"service":"afs-gateway"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/version", nil))
	testkit.MustEqual(t, rec.Code, stdhttp.StatusOK)
	testkit.MustContain(t, rec.Body.String(), `"version":"dev"`)
}
