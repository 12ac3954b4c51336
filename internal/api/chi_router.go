// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/audiencegrid/audiencegrid/internal/config"
	"github.com/audiencegrid/audiencegrid/internal/middleware"
)

// Router assembles the HTTP API on top of chi.
type Router struct {
	handler *Handler
	cfg     *config.Config
	mw      *ChiMiddleware
}

// NewRouter creates a router around the given handler set.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	return &Router{
		handler: handler,
		cfg:     cfg,
		mw:      NewChiMiddleware(cfg.API),
	}
}

// SetupChi builds the route tree.
//
// Route groups:
//
//	/api/v1/health     liveness, readiness, aggregate status
//	/api/v1/admin      data generation and analytics refresh
//	/api/v1/analytics  cached reporting queries
//	/metrics           Prometheus exposition
func (rt *Router) SetupChi() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(rt.mw.CORS())
	r.Use(APISecurityHeaders())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/health", func(r chi.Router) {
			r.Use(rt.mw.RateLimitHealth())
			r.Get("/live", rt.handler.HealthLive)
			r.Get("/ready", rt.handler.HealthReady)
			r.Get("/", rt.handler.Health)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(rt.mw.RateLimitAdmin())
			r.Use(middleware.PrometheusMetrics)
			r.Post("/generate/reference", rt.handler.GenerateReference)
			r.Post("/generate/crm", rt.handler.GenerateCRM)
			r.Post("/generate/events", rt.handler.GenerateEvents)
			r.Post("/refresh", rt.handler.Refresh)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Use(rt.mw.RateLimitAnalytics())
			r.Use(middleware.PrometheusMetrics)
			r.Use(middleware.Compression)
			r.Get("/customers/top", rt.handler.TopCustomers)
			r.Get("/programmes/top", rt.handler.TopProgrammes)
			r.Get("/peak-hours", rt.handler.PeakHours)
			r.Get("/devices", rt.handler.Devices)
			r.Get("/daily-summary", rt.handler.DailySummary)
			r.Get("/overlap", rt.handler.Overlap)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found", nil)
	})

	return r
}
