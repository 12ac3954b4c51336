// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package api

// GenerateCRMRequest is the body of POST /api/v1/admin/generate/crm.
// OverlapFraction overrides the configured fraction for this run when set.
type GenerateCRMRequest struct {
	TargetRows      int      `json:"target_rows" validate:"required,min=1,max=10000000"`
	Overwrite       bool     `json:"overwrite"`
	OverlapFraction *float64 `json:"overlap_fraction,omitempty" validate:"omitempty,min=0,max=1"`
	Seed            int64    `json:"seed,omitempty"`
}

// GenerateEventsRequest is the body of POST /api/v1/admin/generate/events.
// Zero-value fields fall back to the configured viewing defaults.
type GenerateEventsRequest struct {
	SampleMultiplier  int      `json:"sample_multiplier,omitempty" validate:"omitempty,min=1,max=100"`
	AttachCustomerPct *float64 `json:"attach_customer_pct,omitempty" validate:"omitempty,min=0,max=1"`
	Overwrite         bool     `json:"overwrite"`
	Seed              int64    `json:"seed,omitempty"`
}

// GenerateReferenceRequest is the body of POST /api/v1/admin/generate/reference.
type GenerateReferenceRequest struct {
	Count     int   `json:"count" validate:"required,min=1,max=1000000"`
	Overwrite bool  `json:"overwrite"`
	Seed      int64 `json:"seed,omitempty"`
}
