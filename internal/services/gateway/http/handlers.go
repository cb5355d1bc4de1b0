// Package http provides http transport for the search gateway
package http

import (
	stdhttp "net/http"
	"time"

	"afsearch/internal/adapters/afs"
	"afsearch/internal/core/version"
	phttp "afsearch/internal/platform/net/http"
	"afsearch/internal/services/gateway/domain"
	svc "afsearch/internal/services/gateway/service"
)

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	// Cookies keeps user and session ids in browser cookies when true
	Cookies bool
}

type handlers struct {
	svc  svc.Service
	deps Deps
}

// Register mounts the gateway routes
func Register(r phttp.Router, s svc.Service, d Deps) {
	h := &handlers{svc: s, deps: d}

	r.Get("/search", h.search)
	r.Get("/suggest", h.suggest)
	phttp.PostJSON[domain.LinkRequest](r, "/links", h.link)
	phttp.GetJSON(r, "/healthz", h.health)
	phttp.GetJSON(r, "/version", h.version)
}

// search needs the response writer for the id cookies, so it is a plain handler
func (h *handlers) search(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	in := svc.SearchInput{
		Params:         r.URL.Query(),
		AcceptLanguage: r.Header.Get("Accept-Language"),
	}
	if h.deps.Cookies {
		in.Store = afs.NewCookieStore(w, r)
	}
	out, err := h.svc.Search(r.Context(), in)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	phttp.RespondOK(w, r, out)
}

func (h *handlers) suggest(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	in := svc.SuggestInput{Params: r.URL.Query()}
	if h.deps.Cookies {
		in.Store = afs.NewCookieStore(w, r)
	}
	out, err := h.svc.Suggest(r.Context(), in)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	phttp.RespondOK(w, r, out)
}

func (h *handlers) link(r *stdhttp.Request, in domain.LinkRequest) (any, error) {
	return h.svc.Link(r.Context(), in)
}

func (h *handlers) health(_ *stdhttp.Request) (any, error) {
	return domain.Health{
		OK:      true,
		Service: h.deps.ServiceName,
		Version: version.Info(h.deps.ServiceName).Version,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *handlers) version(_ *stdhttp.Request) (any, error) {
	return version.Info(h.deps.ServiceName), nil
}
