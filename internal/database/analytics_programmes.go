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

// RefreshProgrammeAnalytics rebuilds the programme×date×hour reduction from
// the event log. Unique viewers counts identified customers by id and
// anonymous viewers by ip address; the top region tie-break is lexicographic
// so the table is identical across rebuilds of the same log.
func (db *DB) RefreshProgrammeAnalytics(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM programme_analytics"); err != nil {
		return 0, fmt.Errorf("failed to clear programme_analytics: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
	INSERT INTO programme_analytics
	WITH stats AS (
		SELECT
			programme_id,
			CAST(slot_start_time AS DATE) AS programme_date,
			EXTRACT(hour FROM slot_start_time) AS programme_hour,
			COUNT(*) AS total_events,
			COUNT(DISTINCT COALESCE(customer_id, ip_address)) AS unique_viewers,
			SUM(watch_seconds) / 3600.0 AS total_watch_hours,
			AVG(watch_seconds) AS avg_watch_seconds,
			AVG(CASE WHEN event_type = 'play_end' THEN 1.0 ELSE 0.0 END) AS completion_rate
		FROM viewing_events
		GROUP BY 1, 2, 3
	),
	regions AS (
		SELECT
			programme_id,
			CAST(slot_start_time AS DATE) AS programme_date,
			EXTRACT(hour FROM slot_start_time) AS programme_hour,
			region,
			ROW_NUMBER() OVER (
				PARTITION BY programme_id, CAST(slot_start_time AS DATE), EXTRACT(hour FROM slot_start_time)
				ORDER BY COUNT(*) DESC, region
			) AS rn
		FROM viewing_events
		GROUP BY 1, 2, 3, 4
	)
	SELECT
		s.programme_id, s.programme_date, s.programme_hour,
		s.total_events, s.unique_viewers, s.total_watch_hours,
		s.avg_watch_seconds, s.completion_rate,
		COALESCE(r.region, '') AS top_region
	FROM stats s
	LEFT JOIN regions r
		ON r.programme_id = s.programme_id
		AND r.programme_date = s.programme_date
		AND r.programme_hour = s.programme_hour
		AND r.rn = 1`)
	if err != nil {
		return 0, fmt.Errorf("failed to rebuild programme_analytics: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit programme_analytics: %w", err)
	}

	n, _ := res.RowsAffected()
	return n, nil
}

// TopProgrammes returns the programme slots with the most unique viewers
// since the given cutoff, ties broken by programme id.
func (db *DB) TopProgrammes(ctx context.Context, limit int, since time.Time) ([]models.ProgrammeSummary, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit < 1 {
		limit = 50
	}

	rows, err := db.conn.QueryContext(ctx, `
	SELECT programme_id, programme_date, programme_hour,
	       total_events, unique_viewers, total_watch_hours,
	       avg_watch_seconds, completion_rate, top_region
	FROM programme_analytics
	WHERE programme_date >= CAST(? AS DATE)
	ORDER BY unique_viewers DESC, programme_id
	LIMIT ?`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top programmes: %w", err)
	}
	defer closeQuietly(rows)

	var out []models.ProgrammeSummary
	for rows.Next() {
		var p models.ProgrammeSummary
		if err := rows.Scan(
			&p.ProgrammeID, &p.ProgrammeDate, &p.ProgrammeHour,
			&p.TotalEvents, &p.UniqueViewers, &p.TotalWatchHours,
			&p.AvgWatchSeconds, &p.CompletionRate, &p.TopRegion,
		); err != nil {
			return nil, fmt.Errorf("failed to scan programme summary: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
