// Package middleware provides the HTTP middleware stack for the demo
// backend: panic recovery, request logging, CORS for the browser
// storefront, and bearer-token auth.
//
// Order matters; wire Recovery innermost so it catches panics from the
// handlers and from RequestLog's bookkeeping:
//
//	r.Use(reqid.Middleware())
//	r.Use(middleware.RequestLog)
//	r.Use(middleware.Recovery)
package middleware

import (
	"encoding/json"
	"net/http"
)

// writeMessage emits the {"message": ...} error envelope the client's
// decodeErrorMessage path expects on every non-2xx response.
func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
