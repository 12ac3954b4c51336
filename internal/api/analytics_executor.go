// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/audiencegrid/audiencegrid/internal/cache"
	"github.com/audiencegrid/audiencegrid/internal/metrics"
	"github.com/audiencegrid/audiencegrid/internal/models"
)

// queryFunc executes a reporting query. The result must be JSON-serializable
// as it is cached and returned inside the APIResponse envelope.
type queryFunc func(ctx context.Context) (interface{}, error)

// executeCached is the cache-first execution path shared by every reporting
// handler: check the cache under a key derived from the handler name and its
// parameters, run the query on a miss, cache the result, respond with query
// time metadata. Cache hits report zero query time with Cached set.
func (h *Handler) executeCached(w http.ResponseWriter, r *http.Request, name string, params interface{}, query queryFunc) {
	if h.db == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "Database not available", nil)
		return
	}

	key := cache.GenerateKey(name, params)
	if h.cache != nil {
		if cached, found := h.cache.Get(key); found {
			metrics.CacheHits.Inc()
			respondJSON(w, http.StatusOK, &models.APIResponse{
				Status: "success",
				Data:   cached,
				Metadata: models.Metadata{
					Timestamp: time.Now(),
					Cached:    true,
				},
			})
			return
		}
		metrics.CacheMisses.Inc()
	}

	start := time.Now()
	data, err := query(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if h.cache != nil {
		h.cache.Set(key, data)
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}
