package http

import "net/http"

// Handler is the handler type routes are mounted with
type Handler = func(http.ResponseWriter, *http.Request)

// Router is the surface the gateway mounts against
type Router interface {
	Get(path string, h Handler)
	Post(path string, h Handler)
	Options(path string, h Handler)

	Handle(path string, h http.Handler)
	Use(mw ...func(http.Handler) http.Handler)
	Group(fn func(Router))
	Route(pattern string, fn func(Router))

	Mux() http.Handler
}
