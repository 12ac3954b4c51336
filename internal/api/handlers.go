// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

// Package api implements the HTTP surface: admin generation endpoints,
// the analytics refresh trigger, and cached reporting endpoints.
//
// Handler methods are split across files by concern:
//   - handlers.go: Handler struct, constructor, utilities (this file)
//   - handlers_helpers.go: response/param helpers
//   - handlers_admin.go: generation and refresh endpoints
//   - handlers_analytics.go: reporting endpoints
//   - handlers_health.go: health/liveness/readiness
package api

import (
	"time"

	"github.com/audiencegrid/audiencegrid/internal/analytics"
	"github.com/audiencegrid/audiencegrid/internal/cache"
	"github.com/audiencegrid/audiencegrid/internal/config"
	"github.com/audiencegrid/audiencegrid/internal/database"
	"github.com/audiencegrid/audiencegrid/internal/logging"
)

// Handler carries the dependencies of every API endpoint.
type Handler struct {
	db        *database.DB
	cfg       *config.Config
	refresher *analytics.Refresher
	cache     *cache.Cache
	startTime time.Time
}

// NewHandler creates the API handler. Reporting responses are cached with
// the configured analytics TTL; the cache is invalidated after every
// successful refresh via the refresher hook.
func NewHandler(db *database.DB, cfg *config.Config, refresher *analytics.Refresher) *Handler {
	h := &Handler{
		db:        db,
		cfg:       cfg,
		refresher: refresher,
		cache:     cache.New(cfg.Analytics.CacheTTL),
		startTime: time.Now(),
	}
	if refresher != nil {
		refresher.OnRefresh(h.ClearCache)
	}
	return h
}

// ClearCache invalidates all cached reporting data. Called after refresh
// runs and data-mutating admin operations so clients never read stale
// derived tables.
func (h *Handler) ClearCache() {
	if h.cache != nil {
		h.cache.Clear()
		logging.Info().Msg("Analytics cache cleared")
	}
}
