// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package validation

import (
	"strings"
	"testing"
)

type generateRequest struct {
	TargetRows      int      `validate:"required,min=1,max=10000000"`
	OverlapFraction *float64 `validate:"omitempty,gte=0,lte=1"`
	Format          string   `validate:"omitempty,oneof=json csv"`
}

func TestValidateStructPasses(t *testing.T) {
	frac := 0.25
	req := generateRequest{TargetRows: 100000, OverlapFraction: &frac, Format: "json"}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestValidateStructSingleFailure(t *testing.T) {
	req := generateRequest{TargetRows: 0}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) != 1 {
		t.Fatalf("errors = %d, want 1", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %s", apiErr.Code)
	}
	if apiErr.Details["field"] != "TargetRows" {
		t.Errorf("field = %v, want TargetRows", apiErr.Details["field"])
	}
}

func TestValidateStructMultipleFailures(t *testing.T) {
	frac := 1.5
	req := generateRequest{TargetRows: -1, OverlapFraction: &frac, Format: "xml"}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) != 3 {
		t.Fatalf("errors = %d, want 3", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	if !strings.Contains(apiErr.Message, "OverlapFraction") {
		t.Errorf("message missing field name: %s", apiErr.Message)
	}
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Error("multi-error details missing fields list")
	}
}

func TestTranslateOneof(t *testing.T) {
	req := generateRequest{TargetRows: 10, Format: "xml"}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Errors()[0].Error()
	if !strings.Contains(msg, "must be one of") {
		t.Errorf("message = %q, want oneof template", msg)
	}
}
