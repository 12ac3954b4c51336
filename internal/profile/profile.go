// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

// Package profile composes CUSTOMER_360 rows by left-joining the CRM
// population with the per-customer viewing rollup and the engagement scorer.
package profile

import (
	"fmt"
	"time"

	"github.com/audiencegrid/audiencegrid/internal/models"
	"github.com/audiencegrid/audiencegrid/internal/scoring"
)

// Compose builds exactly one CustomerProfile per customer record. Records
// without a viewing summary keep numeric zero defaults, the "No Activity"
// segment and the "Never Active" status. Summaries without a matching record
// (events referencing customers outside this population) are dropped.
//
// The function is pure: callers replace the stored CUSTOMER_360 table
// wholesale with the result rather than patching rows.
func Compose(records []models.CustomerRecord, summaries []models.CustomerViewingSummary, now time.Time) ([]models.CustomerProfile, error) {
	byCustomer := make(map[string]*models.CustomerViewingSummary, len(summaries))
	for i := range summaries {
		byCustomer[summaries[i].CustomerID] = &summaries[i]
	}

	profiles := make([]models.CustomerProfile, 0, len(records))
	for i := range records {
		rec := &records[i]

		p := models.CustomerProfile{
			CustomerRecord: *rec,
			ViewerSegment:  models.SegmentNoActivity,
			ActivityStatus: models.ActivityNever,
		}

		if s, ok := byCustomer[rec.CustomerID]; ok {
			p.TotalEvents = s.TotalEvents
			p.ActiveDays = s.ActiveDays
			p.UniqueProgrammes = s.UniqueProgrammes
			p.TotalWatchSeconds = s.TotalWatchSeconds
			p.TotalWatchHours = float64(s.TotalWatchSeconds) / 3600
			p.TotalAdSeconds = s.TotalAdSeconds
			p.PreferredDevice = s.PreferredDevice
			p.PreferredConnection = s.PreferredConnection
			p.AvgBitrateKbps = s.AvgBitrateKbps
			p.AvgBufferEvents = s.AvgBufferEvents
			p.AvgRebufferRatio = s.AvgRebufferRatio
			p.Region = s.LastRegion
			p.City = s.LastCity
			p.ISP = s.LastISP
			first, last := s.FirstViewing, s.LastViewing
			p.FirstViewing = &first
			p.LastViewing = &last
			p.ViewingSpanDays = s.ViewingSpanDays

			p.EngagementScore = scoring.EngagementScore(s.TotalWatchSeconds, s.ActiveDays, s.UniqueProgrammes)
			p.ViewerSegment = scoring.Segment(s.TotalWatchSeconds)

			// CLV is priced on the watched span, not subscription tenure:
			// a customer with no viewing history is worth 0.
			clv, err := scoring.EstimatedCLV(rec.SubscriptionLevel, s.ViewingSpanDays)
			if err != nil {
				return nil, fmt.Errorf("compose %s: %w", rec.CustomerID, err)
			}
			p.EstimatedCLV = clv.InexactFloat64()
		}

		p.ActivityStatus = activityStatus(p.LastViewing, now)
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// activityStatus derives the recency state from the last viewing timestamp.
func activityStatus(lastViewing *time.Time, now time.Time) models.ActivityStatus {
	if lastViewing == nil {
		return models.ActivityNever
	}
	age := now.Sub(*lastViewing)
	switch {
	case age <= 7*24*time.Hour:
		return models.ActivityActive
	case age <= 30*24*time.Hour:
		return models.ActivityRecent
	default:
		return models.ActivityInactive
	}
}
