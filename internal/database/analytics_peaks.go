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

// RefreshPeakTimesAnalytics rebuilds the date×hour×weekday reduction.
func (db *DB) RefreshPeakTimesAnalytics(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM peak_times_analytics"); err != nil {
		return 0, fmt.Errorf("failed to clear peak_times_analytics: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
	INSERT INTO peak_times_analytics
	SELECT
		CAST(event_time AS DATE) AS viewing_date,
		EXTRACT(hour FROM event_time) AS viewing_hour,
		DAYNAME(event_time) AS day_name,
		COUNT(*) AS total_events,
		COUNT(DISTINCT COALESCE(customer_id, ip_address)) AS unique_viewers,
		SUM(watch_seconds) / 3600.0 AS total_watch_hours,
		AVG(bitrate_kbps) AS avg_bitrate_kbps
	FROM viewing_events
	GROUP BY 1, 2, 3`)
	if err != nil {
		return 0, fmt.Errorf("failed to rebuild peak_times_analytics: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit peak_times_analytics: %w", err)
	}

	n, _ := res.RowsAffected()
	return n, nil
}

// PeakHours averages unique viewers per (hour, weekday) cell since the given
// cutoff, busiest cells first. Ordering falls back to hour then day name so
// equal cells rank stably.
func (db *DB) PeakHours(ctx context.Context, since time.Time) ([]models.PeakHour, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
	SELECT viewing_hour, day_name,
	       AVG(unique_viewers) AS avg_unique_viewers,
	       AVG(total_watch_hours) AS avg_watch_hours
	FROM peak_times_analytics
	WHERE viewing_date >= CAST(? AS DATE)
	GROUP BY viewing_hour, day_name
	ORDER BY avg_unique_viewers DESC, viewing_hour, day_name`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query peak hours: %w", err)
	}
	defer closeQuietly(rows)

	var out []models.PeakHour
	for rows.Next() {
		var p models.PeakHour
		if err := rows.Scan(&p.ViewingHour, &p.DayName, &p.AvgUniqueViewers, &p.AvgWatchHours); err != nil {
			return nil, fmt.Errorf("failed to scan peak hour: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
