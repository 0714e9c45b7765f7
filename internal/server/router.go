// Package server exposes the dashboard's JSON API over HTTP.
package server

import (
	"net/http"

	"github.com/google/uuid"
	"paydash/internal/logger"
	"paydash/internal/reconcile"
)

// New constructs the root http.Handler with all routes and middleware applied.
func New(svc Querier, rules reconcile.SupplierRules) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	h := NewDashboardHandler(svc, rules, nil)
	mux.Handle("/api/dashboard", requestID(http.HandlerFunc(h.Dashboard)))
	mux.Handle("/api/suppliers", requestID(http.HandlerFunc(h.Suppliers)))

	return mux
}

// requestID assigns each request a UUID, exposes it in the X-Request-ID
// response header and attaches a request-scoped logger to the context.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		log := logger.WithRequestID(id)
		next.ServeHTTP(w, r.WithContext(log.WithContext(r.Context())))
	})
}
