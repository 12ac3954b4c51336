// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

// Package scoring derives engagement scores, lifetime-value estimates and
// viewer segments from per-customer viewing rollups. All functions are pure;
// the profile composer is the only caller and owns the zero-activity
// defaults, so inputs here always describe a customer with at least one
// viewing event.
package scoring

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/audiencegrid/audiencegrid/internal/models"
)

// ErrUnknownTier is returned for a subscription level outside the known set.
var ErrUnknownTier = errors.New("unknown subscription tier")

// Monthly tier prices in EUR. Exact decimals; float64 would drift when
// multiplied across long subscription spans.
var tierMonthlyBase = map[models.SubscriptionLevel]decimal.Decimal{
	models.SubscriptionFree:     decimal.Zero,
	models.SubscriptionBasic:    decimal.RequireFromString("4.99"),
	models.SubscriptionStandard: decimal.RequireFromString("9.99"),
	models.SubscriptionPremium:  decimal.RequireFromString("14.99"),
}

// EngagementScore computes the 0-100 engagement score from a customer's
// viewing rollup: two points per watched hour, three per active day, half a
// point per distinct programme, capped at 100.
func EngagementScore(watchSeconds int64, activeDays, uniqueProgrammes int) float64 {
	hours := float64(watchSeconds) / 3600
	score := hours*2 + float64(activeDays)*3 + float64(uniqueProgrammes)*0.5
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

// EstimatedCLV estimates customer lifetime value as the tier's monthly price
// times the number of watched months, with a floor of one month. spanDays is
// the first-to-last viewing span from the per-customer rollup; negative
// spans clamp to the one-month floor rather than producing a negative value.
func EstimatedCLV(tier models.SubscriptionLevel, spanDays int) (decimal.Decimal, error) {
	base, ok := tierMonthlyBase[tier]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}
	months := decimal.NewFromInt(int64(spanDays)).Div(decimal.NewFromInt(30))
	if months.LessThan(decimal.NewFromInt(1)) {
		months = decimal.NewFromInt(1)
	}
	return base.Mul(months).Round(2), nil
}

// Segment buckets a customer by total watch time. Only customers with
// viewing activity are segmented; SegmentNoActivity is assigned by the
// composer when no rollup exists.
func Segment(watchSeconds int64) models.ViewerSegment {
	hours := float64(watchSeconds) / 3600
	switch {
	case hours >= 50:
		return models.SegmentHeavy
	case hours >= 20:
		return models.SegmentRegular
	case hours >= 5:
		return models.SegmentLight
	default:
		return models.SegmentMinimal
	}
}
