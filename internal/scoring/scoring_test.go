// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package scoring

import (
	"errors"
	"math"
	"testing"

	"github.com/audiencegrid/audiencegrid/internal/models"
)

func TestEngagementScore(t *testing.T) {
	tests := []struct {
		name             string
		watchSeconds     int64
		activeDays       int
		uniqueProgrammes int
		want             float64
	}{
		{"zero activity", 0, 0, 0, 0},
		// 20h watched over 10 days across 5 programmes:
		// 20*2 + 10*3 + 5*0.5 = 72.5
		{"regular viewer", 72000, 10, 5, 72.5},
		{"capped at 100", 360000, 30, 200, 100},
		{"one hour single day", 3600, 1, 1, 5.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EngagementScore(tt.watchSeconds, tt.activeDays, tt.uniqueProgrammes)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("EngagementScore() = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 100 {
				t.Errorf("EngagementScore() = %v outside [0,100]", got)
			}
		})
	}
}

func TestEstimatedCLV(t *testing.T) {
	tests := []struct {
		name     string
		tier     models.SubscriptionLevel
		spanDays int
		want     string
	}{
		{"free tier is always zero", models.SubscriptionFree, 365, "0"},
		{"basic one month floor", models.SubscriptionBasic, 10, "4.99"},
		{"standard two months", models.SubscriptionStandard, 60, "19.98"},
		{"premium fractional months", models.SubscriptionPremium, 45, "22.49"},
		{"negative span clamps to floor", models.SubscriptionPremium, -5, "14.99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EstimatedCLV(tt.tier, tt.spanDays)
			if err != nil {
				t.Fatalf("EstimatedCLV: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("EstimatedCLV() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEstimatedCLVUnknownTier(t *testing.T) {
	if _, err := EstimatedCLV("GOLD", 30); !errors.Is(err, ErrUnknownTier) {
		t.Errorf("error = %v, want ErrUnknownTier", err)
	}
}

func TestSegment(t *testing.T) {
	tests := []struct {
		watchSeconds int64
		want         models.ViewerSegment
	}{
		{0, models.SegmentMinimal},
		{4*3600 + 3599, models.SegmentMinimal},
		{5 * 3600, models.SegmentLight},
		{20 * 3600, models.SegmentRegular},
		{49 * 3600, models.SegmentRegular},
		{50 * 3600, models.SegmentHeavy},
	}
	for _, tt := range tests {
		if got := Segment(tt.watchSeconds); got != tt.want {
			t.Errorf("Segment(%d) = %s, want %s", tt.watchSeconds, got, tt.want)
		}
	}
}
