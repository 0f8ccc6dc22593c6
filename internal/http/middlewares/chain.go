package middlewares

import "net/http"

// Middleware decora un http.Handler.
type Middleware func(http.Handler) http.Handler

// Stack compone varios middlewares en uno; el primero es el más externo.
// Los nil se ignoran (p. ej. métricas deshabilitadas).
func Stack(mws ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			if mws[i] != nil {
				h = mws[i](h)
			}
		}
		return h
	}
}
