// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package api

import (
	"net/http"
	"time"

	"github.com/audiencegrid/audiencegrid/internal/models"
)

// HealthLive handles GET /api/v1/health/live: process liveness, no
// dependency checks.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   map[string]string{"status": "alive"},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady handles GET /api/v1/health/ready: readiness including a
// database ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "Database not reachable", err)
		return
	}
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   map[string]string{"status": "ready"},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// Health handles GET /api/v1/health: overall status with uptime and stored
// row counts.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.db.Ping(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "Database not reachable", err)
		return
	}

	customers, err := h.db.CountCustomers(ctx)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	events, err := h.db.CountViewingEvents(ctx)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	profiles, err := h.db.CountCustomerProfiles(ctx)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"status":         "healthy",
			"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
			"customers":      customers,
			"viewing_events": events,
			"profiles":       profiles,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
