// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/audiencegrid/audiencegrid/internal/models"
)

// RefreshDailySummary rebuilds the per-date platform rollup.
func (db *DB) RefreshDailySummary(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM daily_summary"); err != nil {
		return 0, fmt.Errorf("failed to clear daily_summary: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
	INSERT INTO daily_summary
	SELECT
		CAST(event_time AS DATE) AS summary_date,
		COUNT(*) AS total_events,
		COUNT(DISTINCT COALESCE(customer_id, ip_address)) AS unique_viewers,
		SUM(watch_seconds) / 3600.0 AS total_watch_hours,
		SUM(ad_total_seconds) / 60.0 AS total_ad_minutes,
		AVG(bitrate_kbps) AS avg_bitrate_kbps,
		AVG(buffer_events) AS avg_buffer_events,
		AVG(rebuffer_ratio) AS avg_rebuffer_ratio,
		AVG(CASE WHEN customer_id IS NOT NULL THEN 1.0 ELSE 0.0 END) AS identified_viewer_rate
	FROM viewing_events
	GROUP BY 1`)
	if err != nil {
		return 0, fmt.Errorf("failed to rebuild daily_summary: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit daily_summary: %w", err)
	}

	n, _ := res.RowsAffected()
	return n, nil
}

// DailySummaries returns daily rollups within [from, to], oldest first.
func (db *DB) DailySummaries(ctx context.Context, from, to time.Time) ([]models.DailySummary, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
	SELECT summary_date, total_events, unique_viewers,
	       total_watch_hours, total_ad_minutes,
	       avg_bitrate_kbps, avg_buffer_events, avg_rebuffer_ratio,
	       identified_viewer_rate
	FROM daily_summary
	WHERE summary_date >= CAST(? AS DATE) AND summary_date <= CAST(? AS DATE)
	ORDER BY summary_date`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily summaries: %w", err)
	}
	defer closeQuietly(rows)

	var out []models.DailySummary
	for rows.Next() {
		var d models.DailySummary
		if err := rows.Scan(
			&d.SummaryDate, &d.TotalEvents, &d.UniqueViewers,
			&d.TotalWatchHours, &d.TotalAdMinutes,
			&d.AvgBitrateKbps, &d.AvgBufferEvents, &d.AvgRebufferRatio,
			&d.IdentifiedViewerRate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan daily summary: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
