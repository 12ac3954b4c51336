// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/audiencegrid/audiencegrid/internal/models"
)

// TopCustomers handles GET /api/v1/analytics/customers/top: the highest
// engagement profiles from CUSTOMER_360, tie-broken by customer id.
func (h *Handler) TopCustomers(w http.ResponseWriter, r *http.Request) {
	limit := getIntParam(r, "limit", h.cfg.Analytics.TopCustomersLimit)
	if limit < 1 || limit > 1000 {
		respondError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "limit must be in [1,1000]", nil)
		return
	}

	h.executeCached(w, r, "TopCustomers", limit, func(ctx context.Context) (interface{}, error) {
		return h.db.TopCustomers(ctx, limit)
	})
}

// TopProgrammes handles GET /api/v1/analytics/programmes/top: programme
// slots ranked by unique viewers inside the reporting window.
func (h *Handler) TopProgrammes(w http.ResponseWriter, r *http.Request) {
	limit := getIntParam(r, "limit", h.cfg.Analytics.TopProgrammesLimit)
	if limit < 1 || limit > 1000 {
		respondError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "limit must be in [1,1000]", nil)
		return
	}
	days := getIntParam(r, "days", h.cfg.Analytics.ReportingWindowDays)
	if days < 1 || days > 365 {
		respondError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "days must be in [1,365]", nil)
		return
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	params := struct {
		Limit int
		Days  int
	}{limit, days}
	h.executeCached(w, r, "TopProgrammes", params, func(ctx context.Context) (interface{}, error) {
		return h.db.TopProgrammes(ctx, limit, since)
	})
}

// PeakHours handles GET /api/v1/analytics/peak-hours: average unique
// viewers per hour and weekday over the reporting window.
func (h *Handler) PeakHours(w http.ResponseWriter, r *http.Request) {
	days := getIntParam(r, "days", h.cfg.Analytics.ReportingWindowDays)
	if days < 1 || days > 365 {
		respondError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "days must be in [1,365]", nil)
		return
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	h.executeCached(w, r, "PeakHours", days, func(ctx context.Context) (interface{}, error) {
		return h.db.PeakHours(ctx, since)
	})
}

// Devices handles GET /api/v1/analytics/devices: the device/OS/connection
// breakdown.
func (h *Handler) Devices(w http.ResponseWriter, r *http.Request) {
	h.executeCached(w, r, "Devices", nil, func(ctx context.Context) (interface{}, error) {
		return h.db.DeviceSummaries(ctx)
	})
}

// DailySummary handles GET /api/v1/analytics/daily-summary with an optional
// from/to date range (YYYY-MM-DD, inclusive). Defaults to the reporting
// window ending today.
func (h *Handler) DailySummary(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	to := getDateParam(r, "to", now)
	from := getDateParam(r, "from", to.AddDate(0, 0, -h.cfg.Analytics.ReportingWindowDays))
	if from.After(to) {
		respondError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "from must not be after to", nil)
		return
	}

	params := struct {
		From string
		To   string
	}{from.Format("2006-01-02"), to.Format("2006-01-02")}
	h.executeCached(w, r, "DailySummary", params, func(ctx context.Context) (interface{}, error) {
		return h.db.DailySummaries(ctx, from, to)
	})
}

// Overlap handles GET /api/v1/analytics/overlap: the population overlap
// ratio and per-class counts against the reference identity set.
func (h *Handler) Overlap(w http.ResponseWriter, r *http.Request) {
	h.executeCached(w, r, "Overlap", nil, func(ctx context.Context) (interface{}, error) {
		breakdown, err := h.db.OverlapBreakdown(ctx)
		if err != nil {
			return nil, err
		}

		stats := models.OverlapStats{ByType: breakdown}
		for t, n := range breakdown {
			stats.Total += n
			if t.Matched() {
				stats.Matched += n
			}
		}
		// The in-memory classifier reports NaN for an empty population;
		// JSON cannot carry NaN, so the wire format uses 0 with Total 0.
		if stats.Total > 0 {
			stats.Ratio = float64(stats.Matched) / float64(stats.Total)
		}
		return stats, nil
	})
}
