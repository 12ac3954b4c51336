// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/audiencegrid/audiencegrid/internal/logging"
	"github.com/audiencegrid/audiencegrid/internal/models"
)

// ReplaceCustomerProfiles swaps the CUSTOMER_360 table for the freshly
// composed profile set in one transaction. Profiles are never patched row by
// row; a refresh always replaces the table wholesale.
func (db *DB) ReplaceCustomerProfiles(ctx context.Context, profiles []models.CustomerProfile) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM customer_360"); err != nil {
		return fmt.Errorf("failed to clear customer_360: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO customer_360 (
		customer_id, email, phone, first_name, last_name,
		gender, profession, date_joined, subscription_level, overlap_type,
		total_events, active_days, unique_programmes,
		total_watch_seconds, total_watch_hours, total_ad_seconds,
		preferred_device, preferred_connection,
		avg_bitrate_kbps, avg_buffer_events, avg_rebuffer_ratio,
		region, city, isp, first_viewing, last_viewing, viewing_span_days,
		engagement_score, estimated_clv, viewer_segment, activity_status
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare profile insert: %w", err)
	}
	defer closeQuietly(stmt)

	for i := range profiles {
		p := &profiles[i]
		if _, err := stmt.ExecContext(ctx,
			p.CustomerID, p.Email, p.Phone, p.FirstName, p.LastName,
			p.Gender, p.Profession, p.DateJoined, string(p.SubscriptionLevel), string(p.OverlapType),
			p.TotalEvents, p.ActiveDays, p.UniqueProgrammes,
			p.TotalWatchSeconds, p.TotalWatchHours, p.TotalAdSeconds,
			nullIfEmpty(p.PreferredDevice), nullIfEmpty(p.PreferredConnection),
			p.AvgBitrateKbps, p.AvgBufferEvents, p.AvgRebufferRatio,
			nullIfEmpty(p.Region), nullIfEmpty(p.City), nullIfEmpty(p.ISP),
			p.FirstViewing, p.LastViewing, p.ViewingSpanDays,
			p.EngagementScore, p.EstimatedCLV, string(p.ViewerSegment), string(p.ActivityStatus),
		); err != nil {
			return fmt.Errorf("failed to insert profile %s: %w", p.CustomerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit profile replace: %w", err)
	}

	logging.Info().
		Int("rows", len(profiles)).
		Dur("elapsed", time.Since(start)).
		Msg("CUSTOMER_360 replaced")
	return nil
}

// TopCustomers returns the highest-engagement profiles, ties broken by
// customer id so the ranking is stable across refreshes.
func (db *DB) TopCustomers(ctx context.Context, limit int) ([]models.CustomerProfile, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit < 1 {
		limit = 100
	}

	rows, err := db.conn.QueryContext(ctx, `
	SELECT customer_id, email, phone, first_name, last_name,
	       gender, profession, date_joined, subscription_level, overlap_type,
	       total_events, active_days, unique_programmes,
	       total_watch_seconds, total_watch_hours, total_ad_seconds,
	       COALESCE(preferred_device, ''), COALESCE(preferred_connection, ''),
	       avg_bitrate_kbps, avg_buffer_events, avg_rebuffer_ratio,
	       COALESCE(region, ''), COALESCE(city, ''), COALESCE(isp, ''),
	       first_viewing, last_viewing, viewing_span_days,
	       engagement_score, estimated_clv, viewer_segment, activity_status
	FROM customer_360
	ORDER BY engagement_score DESC, customer_id
	LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top customers: %w", err)
	}
	defer closeQuietly(rows)

	var profiles []models.CustomerProfile
	for rows.Next() {
		var p models.CustomerProfile
		var level, overlap, segment, status string
		if err := rows.Scan(
			&p.CustomerID, &p.Email, &p.Phone, &p.FirstName, &p.LastName,
			&p.Gender, &p.Profession, &p.DateJoined, &level, &overlap,
			&p.TotalEvents, &p.ActiveDays, &p.UniqueProgrammes,
			&p.TotalWatchSeconds, &p.TotalWatchHours, &p.TotalAdSeconds,
			&p.PreferredDevice, &p.PreferredConnection,
			&p.AvgBitrateKbps, &p.AvgBufferEvents, &p.AvgRebufferRatio,
			&p.Region, &p.City, &p.ISP,
			&p.FirstViewing, &p.LastViewing, &p.ViewingSpanDays,
			&p.EngagementScore, &p.EstimatedCLV, &segment, &status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		p.SubscriptionLevel = models.SubscriptionLevel(level)
		p.OverlapType = models.OverlapType(overlap)
		p.ViewerSegment = models.ViewerSegment(segment)
		p.ActivityStatus = models.ActivityStatus(status)
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// CountCustomerProfiles returns the CUSTOMER_360 row count.
func (db *DB) CountCustomerProfiles(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return db.tableCount(ctx, "customer_360")
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
