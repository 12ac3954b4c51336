// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/audiencegrid/audiencegrid/internal/logging"
	"github.com/audiencegrid/audiencegrid/internal/models"
)

// validateEvent rejects malformed events before they enter the append-only
// log; once stored, events are never repaired.
func validateEvent(ev *models.ViewingEvent) error {
	if ev.WatchSeconds < 0 {
		return fmt.Errorf("%w: negative watch seconds (%d) on event %s", ErrInvalidArgument, ev.WatchSeconds, ev.LogID)
	}
	if ev.ProgrammeID == "" {
		return fmt.Errorf("%w: missing programme id on event %s", ErrInvalidArgument, ev.LogID)
	}
	if ev.EventTime.IsZero() {
		return fmt.Errorf("%w: missing event time on event %s", ErrInvalidArgument, ev.LogID)
	}
	return nil
}

// InsertViewingEvents bulk-loads viewing events in batched transactions.
// With overwrite true the existing log is truncated first; with overwrite
// false against a non-empty log the load is refused with ErrAlreadyExists.
// The whole input is validated up front, so a malformed event rejects the
// load before anything is written.
func (db *DB) InsertViewingEvents(ctx context.Context, events []models.ViewingEvent, batchSize int, overwrite bool) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	for i := range events {
		if err := validateEvent(&events[i]); err != nil {
			return err
		}
	}

	existing, err := db.tableCount(ctx, "viewing_events")
	if err != nil {
		return err
	}
	if existing > 0 && !overwrite {
		return fmt.Errorf("%w: viewing_events table has %d rows and overwrite is false", ErrAlreadyExists, existing)
	}

	if batchSize < 1 {
		batchSize = 5000
	}

	start := time.Now()
	if overwrite && existing > 0 {
		if _, err := db.conn.ExecContext(ctx, "DELETE FROM viewing_events"); err != nil {
			return fmt.Errorf("failed to clear viewing events: %w", err)
		}
	}

	for offset := 0; offset < len(events); offset += batchSize {
		end := offset + batchSize
		if end > len(events) {
			end = len(events)
		}
		if err := db.insertEventBatch(ctx, events[offset:end]); err != nil {
			return err
		}
	}

	logging.Info().
		Int("rows", len(events)).
		Int("batch_size", batchSize).
		Dur("elapsed", time.Since(start)).
		Msg("Viewing events loaded")
	return nil
}

func (db *DB) insertEventBatch(ctx context.Context, events []models.ViewingEvent) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO viewing_events (
		log_id, channel, event_time, slot_start_time, programme_id, customer_id,
		device_type, os_name, connection_type,
		bitrate_kbps, buffer_events, rebuffer_ratio,
		watch_seconds, ad_breaks, ad_total_seconds,
		event_type, ip_address, isp, country, region, city
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer closeQuietly(stmt)

	for i := range events {
		ev := &events[i]
		if _, err := stmt.ExecContext(ctx,
			ev.LogID.String(), ev.Channel, ev.EventTime, ev.SlotStartTime, ev.ProgrammeID, ev.CustomerID,
			string(ev.DeviceType), ev.OSName, ev.ConnectionType,
			ev.BitrateKbps, ev.BufferEvents, ev.RebufferRatio,
			ev.WatchSeconds, ev.AdBreaks, ev.AdTotalSeconds,
			string(ev.EventType), ev.IPAddress, ev.ISP, ev.Country, ev.Region, ev.City,
		); err != nil {
			return fmt.Errorf("failed to insert event %s: %w", ev.LogID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit event batch: %w", err)
	}
	return nil
}

// IdentifiedEvents streams events that carry a customer id, ordered by event
// time then log id, for the per-customer rollup.
func (db *DB) IdentifiedEvents(ctx context.Context) ([]models.ViewingEvent, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
	SELECT log_id, channel, event_time, slot_start_time, programme_id, customer_id,
	       device_type, os_name, connection_type,
	       bitrate_kbps, buffer_events, rebuffer_ratio,
	       watch_seconds, ad_breaks, ad_total_seconds,
	       event_type, ip_address, isp, country, region, city
	FROM viewing_events
	WHERE customer_id IS NOT NULL
	ORDER BY event_time, log_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query identified events: %w", err)
	}
	defer closeQuietly(rows)

	var events []models.ViewingEvent
	for rows.Next() {
		var ev models.ViewingEvent
		var logID, deviceType, eventType string
		if err := rows.Scan(
			&logID, &ev.Channel, &ev.EventTime, &ev.SlotStartTime, &ev.ProgrammeID, &ev.CustomerID,
			&deviceType, &ev.OSName, &ev.ConnectionType,
			&ev.BitrateKbps, &ev.BufferEvents, &ev.RebufferRatio,
			&ev.WatchSeconds, &ev.AdBreaks, &ev.AdTotalSeconds,
			&eventType, &ev.IPAddress, &ev.ISP, &ev.Country, &ev.Region, &ev.City,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		id, err := uuid.Parse(logID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse log id %q: %w", logID, err)
		}
		ev.LogID = id
		ev.DeviceType = models.DeviceType(deviceType)
		ev.EventType = models.EventType(eventType)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// CountViewingEvents returns the size of the event log.
func (db *DB) CountViewingEvents(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return db.tableCount(ctx, "viewing_events")
}
