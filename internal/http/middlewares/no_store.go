package middlewares

import "net/http"

// WithNoStore agrega Cache-Control: no-store. Las URLs firmadas caducan y
// no deben quedar en caches intermedios.
func WithNoStore() Middleware {
	return WithCacheControl("no-store")
}

// WithCacheControl agrega Cache-Control con la directiva dada.
func WithCacheControl(directive string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", directive)
			next.ServeHTTP(w, r)
		})
	}
}
