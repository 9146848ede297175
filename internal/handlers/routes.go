package handlers

import (
	"net/http"

	"media-slideshow/internal/middleware"

	"github.com/gorilla/mux"
)

// NewRouter registers every status route with logging and metrics
// middleware.
func NewRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Logger(middleware.DefaultLoggingConfig()))
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet).Name("health")
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead).Name("livez")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet).Name("readyz")
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet).Name("version")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", h.GetStatus).Methods(http.MethodGet).Name("status")
	api.HandleFunc("/history", h.GetHistory).Methods(http.MethodGet).Name("history")

	r.Handle("/metrics", h.MetricsHandler()).Methods(http.MethodGet).Name("metrics")

	return r
}
