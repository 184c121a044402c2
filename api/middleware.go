package api

import (
	"fmt"
	"net/http"

	"ctidash/util/goroutine"
)

// allowedMethods is answered on every preflight from the frontend origin
const allowedMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"

// corsMiddleware adds CORS headers for the configured frontend origin only.
// Requested headers are echoed back and credentials are allowed.
func (a *API) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")

		origin := r.Header.Get("Origin")
		if origin != "" && origin == a.config.API.FrontendOrigin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
			w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

			if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
				w.Header().Set("Access-Control-Allow-Headers", requested)
			} else {
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// recoveryMiddleware turns a handler panic into a logged 500
func (a *API) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer goroutine.RecoverWith("http:"+r.URL.Path, a.requestLogger(r), func(v interface{}) {
			writeError(w, http.StatusInternalServerError, "Internal server error",
				fmt.Errorf("panic: %v", v), nil)
		})
		next.ServeHTTP(w, r)
	})
}
