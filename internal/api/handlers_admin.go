// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/audiencegrid/audiencegrid/internal/crm"
	"github.com/audiencegrid/audiencegrid/internal/logging"
	"github.com/audiencegrid/audiencegrid/internal/metrics"
	"github.com/audiencegrid/audiencegrid/internal/models"
	"github.com/audiencegrid/audiencegrid/internal/viewing"
)

// GenerateCRM handles POST /api/v1/admin/generate/crm: synthesize a CRM
// population, classify it against the stored reference set, and persist it.
func (h *Handler) GenerateCRM(w http.ResponseWriter, r *http.Request) {
	var req GenerateCRMRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Malformed JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	ctx := r.Context()
	start := time.Now()

	identities, err := h.db.ReferenceIdentities(ctx)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	refs := crm.NewReferenceIndex(identities)

	genCfg := h.cfg.Generator
	if req.OverlapFraction != nil {
		genCfg.OverlapFraction = *req.OverlapFraction
	}
	if req.Seed != 0 {
		genCfg.Seed = req.Seed
	}

	gen := crm.NewGenerator(genCfg, crm.NewCounterSequence(0))
	records, err := gen.Generate(req.TargetRows, refs)
	if err != nil {
		if errors.Is(err, crm.ErrInvalidRowCount) {
			respondError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error(), nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "GENERATION_ERROR", "CRM generation failed", err)
		return
	}

	if err := h.db.InsertCustomers(ctx, records, req.Overwrite); err != nil {
		respondDomainError(w, err)
		return
	}

	elapsed := time.Since(start)
	metrics.RecordGeneration("crm", len(records), elapsed)
	h.ClearCache()

	stats := crm.Stats(records)
	logging.Ctx(ctx).Info().
		Int("rows", len(records)).
		Int("matched", stats.Matched).
		Dur("elapsed", elapsed).
		Msg("CRM population generated")

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"rows":    len(records),
			"overlap": stats,
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: elapsed.Milliseconds(),
		},
	})
}

// GenerateEvents handles POST /api/v1/admin/generate/events: synthesize a
// week of viewing events attached to the stored population.
func (h *Handler) GenerateEvents(w http.ResponseWriter, r *http.Request) {
	var req GenerateEventsRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Malformed JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	ctx := r.Context()
	start := time.Now()

	customerIDs, err := h.db.CustomerIDs(ctx)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	viewCfg := h.cfg.Viewing
	if req.SampleMultiplier > 0 {
		viewCfg.SampleMultiplier = req.SampleMultiplier
	}
	if req.AttachCustomerPct != nil {
		viewCfg.AttachCustomerPct = *req.AttachCustomerPct
	}
	if req.Seed != 0 {
		viewCfg.Seed = req.Seed
	}

	syn := viewing.NewSynthesizer(viewCfg, customerIDs)
	events := syn.Generate(time.Now().UTC())

	if err := h.db.InsertViewingEvents(ctx, events, viewCfg.BatchSize, req.Overwrite); err != nil {
		respondDomainError(w, err)
		return
	}

	elapsed := time.Since(start)
	metrics.RecordGeneration("events", len(events), elapsed)
	h.ClearCache()

	logging.Ctx(ctx).Info().
		Int("events", len(events)).
		Int("customer_pool", len(customerIDs)).
		Dur("elapsed", elapsed).
		Msg("Viewing log generated")

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"events":        len(events),
			"customer_pool": len(customerIDs),
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: elapsed.Milliseconds(),
		},
	})
}

// GenerateReference handles POST /api/v1/admin/generate/reference: stand up
// a demo external identity set for the overlap classifier to match against.
func (h *Handler) GenerateReference(w http.ResponseWriter, r *http.Request) {
	var req GenerateReferenceRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Malformed JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	ctx := r.Context()
	start := time.Now()

	identities := crm.SynthesizeReferenceIdentities(req.Count, req.Seed)
	if err := h.db.InsertReferenceIdentities(ctx, identities, req.Overwrite); err != nil {
		respondDomainError(w, err)
		return
	}

	elapsed := time.Since(start)
	metrics.RecordGeneration("reference", len(identities), elapsed)

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"identities": len(identities),
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: elapsed.Milliseconds(),
		},
	})
}

// Refresh handles POST /api/v1/admin/refresh: recompute every derived
// output from the stored population and event log.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "Refresher not available", nil)
		return
	}

	result, err := h.refresher.Refresh(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   result,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: result.Duration.Milliseconds(),
		},
	})
}

// respondValidationError writes a 400 with the validator's details.
func respondValidationError(w http.ResponseWriter, apiErr *models.APIError) {
	respondJSON(w, http.StatusBadRequest, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: apiErr,
	})
}
