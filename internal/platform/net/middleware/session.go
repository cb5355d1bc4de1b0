package middleware

import (
	"net/http"

	pnet "afsearch/internal/platform/net"
)

// SessionCookie copies the value of the named cookie onto the request context
// so logs of the request carry the search session id
func SessionCookie(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(name)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := pnet.WithRequest(r.Context(), pnet.RequestID(r.Context()), c.Value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
