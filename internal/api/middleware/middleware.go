package middleware

import "net/http"

type Middleware func(http.HandlerFunc) http.HandlerFunc

// Chain wraps f so the first middleware in m runs outermost.
func Chain(f http.HandlerFunc, m ...Middleware) http.HandlerFunc {
	for i := len(m) - 1; i >= 0; i-- {
		f = m[i](f)
	}
	return f
}
