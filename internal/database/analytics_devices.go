// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package database

import (
	"context"
	"fmt"

	"github.com/audiencegrid/audiencegrid/internal/models"
)

// RefreshDeviceAnalytics rebuilds the device×OS×connection reduction.
func (db *DB) RefreshDeviceAnalytics(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM device_analytics"); err != nil {
		return 0, fmt.Errorf("failed to clear device_analytics: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
	INSERT INTO device_analytics
	SELECT
		device_type,
		os_name,
		connection_type,
		COUNT(*) AS total_events,
		COUNT(DISTINCT COALESCE(customer_id, ip_address)) AS unique_users,
		AVG(bitrate_kbps) AS avg_bitrate_kbps,
		AVG(buffer_events) AS avg_buffer_events,
		AVG(rebuffer_ratio) AS avg_rebuffer_ratio,
		AVG(watch_seconds) AS avg_watch_seconds
	FROM viewing_events
	GROUP BY 1, 2, 3`)
	if err != nil {
		return 0, fmt.Errorf("failed to rebuild device_analytics: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit device_analytics: %w", err)
	}

	n, _ := res.RowsAffected()
	return n, nil
}

// DeviceSummaries returns the device reduction ordered by event volume,
// ties broken by the group key.
func (db *DB) DeviceSummaries(ctx context.Context) ([]models.DeviceSummary, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
	SELECT device_type, os_name, connection_type,
	       total_events, unique_users,
	       avg_bitrate_kbps, avg_buffer_events, avg_rebuffer_ratio, avg_watch_seconds
	FROM device_analytics
	ORDER BY total_events DESC, device_type, os_name, connection_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to query device summaries: %w", err)
	}
	defer closeQuietly(rows)

	var out []models.DeviceSummary
	for rows.Next() {
		var d models.DeviceSummary
		if err := rows.Scan(
			&d.DeviceType, &d.OSName, &d.ConnectionType,
			&d.TotalEvents, &d.UniqueUsers,
			&d.AvgBitrateKbps, &d.AvgBufferEvents, &d.AvgRebufferRatio, &d.AvgWatchSeconds,
		); err != nil {
			return nil, fmt.Errorf("failed to scan device summary: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
