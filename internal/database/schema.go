// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createSchema creates all tables and indexes. Every column is defined in
// the initial CREATE TABLE so the schema has a single source of truth; the
// derived tables are rebuilt wholesale on each refresh rather than migrated.
func (db *DB) createSchema() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range schemaQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

var schemaQueries = []string{
	// Synthetic CRM population. Written once per generation run, immutable
	// afterwards.
	`CREATE TABLE IF NOT EXISTS customers (
		customer_id TEXT PRIMARY KEY,
		email TEXT,
		phone TEXT,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		gender TEXT NOT NULL,
		profession TEXT NOT NULL,
		date_joined TIMESTAMP NOT NULL,
		subscription_level TEXT NOT NULL,
		overlap_type TEXT NOT NULL
	)`,

	// External reference identity set. Read-only: loaded in bulk, never
	// updated by any component.
	`CREATE TABLE IF NOT EXISTS reference_identities (
		email TEXT NOT NULL,
		phone TEXT NOT NULL,
		full_name TEXT NOT NULL
	)`,

	// Append-only viewership event log.
	`CREATE TABLE IF NOT EXISTS viewing_events (
		log_id UUID PRIMARY KEY,
		channel TEXT NOT NULL,
		event_time TIMESTAMP NOT NULL,
		slot_start_time TIMESTAMP NOT NULL,
		programme_id TEXT NOT NULL,
		customer_id TEXT,
		device_type TEXT NOT NULL,
		os_name TEXT NOT NULL,
		connection_type TEXT NOT NULL,
		bitrate_kbps INTEGER NOT NULL,
		buffer_events INTEGER NOT NULL,
		rebuffer_ratio DOUBLE NOT NULL,
		watch_seconds INTEGER NOT NULL,
		ad_breaks INTEGER NOT NULL,
		ad_total_seconds INTEGER NOT NULL,
		event_type TEXT NOT NULL,
		ip_address TEXT NOT NULL,
		isp TEXT NOT NULL,
		country TEXT NOT NULL,
		region TEXT NOT NULL,
		city TEXT NOT NULL
	)`,

	// CUSTOMER_360: one row per customer record, replaced wholesale on each
	// analytics refresh.
	`CREATE TABLE IF NOT EXISTS customer_360 (
		customer_id TEXT PRIMARY KEY,
		email TEXT,
		phone TEXT,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		gender TEXT NOT NULL,
		profession TEXT NOT NULL,
		date_joined TIMESTAMP NOT NULL,
		subscription_level TEXT NOT NULL,
		overlap_type TEXT NOT NULL,
		total_events INTEGER NOT NULL,
		active_days INTEGER NOT NULL,
		unique_programmes INTEGER NOT NULL,
		total_watch_seconds BIGINT NOT NULL,
		total_watch_hours DOUBLE NOT NULL,
		total_ad_seconds BIGINT NOT NULL,
		preferred_device TEXT,
		preferred_connection TEXT,
		avg_bitrate_kbps DOUBLE NOT NULL,
		avg_buffer_events DOUBLE NOT NULL,
		avg_rebuffer_ratio DOUBLE NOT NULL,
		region TEXT,
		city TEXT,
		isp TEXT,
		first_viewing TIMESTAMP,
		last_viewing TIMESTAMP,
		viewing_span_days INTEGER NOT NULL,
		engagement_score DOUBLE NOT NULL,
		estimated_clv DOUBLE NOT NULL,
		viewer_segment TEXT NOT NULL,
		activity_status TEXT NOT NULL
	)`,

	// Derived analytics tables, rebuilt from viewing_events on refresh.
	`CREATE TABLE IF NOT EXISTS programme_analytics (
		programme_id TEXT NOT NULL,
		programme_date DATE NOT NULL,
		programme_hour INTEGER NOT NULL,
		total_events INTEGER NOT NULL,
		unique_viewers INTEGER NOT NULL,
		total_watch_hours DOUBLE NOT NULL,
		avg_watch_seconds DOUBLE NOT NULL,
		completion_rate DOUBLE NOT NULL,
		top_region TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS peak_times_analytics (
		viewing_date DATE NOT NULL,
		viewing_hour INTEGER NOT NULL,
		day_name TEXT NOT NULL,
		total_events INTEGER NOT NULL,
		unique_viewers INTEGER NOT NULL,
		total_watch_hours DOUBLE NOT NULL,
		avg_bitrate_kbps DOUBLE NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS device_analytics (
		device_type TEXT NOT NULL,
		os_name TEXT NOT NULL,
		connection_type TEXT NOT NULL,
		total_events INTEGER NOT NULL,
		unique_users INTEGER NOT NULL,
		avg_bitrate_kbps DOUBLE NOT NULL,
		avg_buffer_events DOUBLE NOT NULL,
		avg_rebuffer_ratio DOUBLE NOT NULL,
		avg_watch_seconds DOUBLE NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS daily_summary (
		summary_date DATE NOT NULL,
		total_events INTEGER NOT NULL,
		unique_viewers INTEGER NOT NULL,
		total_watch_hours DOUBLE NOT NULL,
		total_ad_minutes DOUBLE NOT NULL,
		avg_bitrate_kbps DOUBLE NOT NULL,
		avg_buffer_events DOUBLE NOT NULL,
		avg_rebuffer_ratio DOUBLE NOT NULL,
		identified_viewer_rate DOUBLE NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_events_customer ON viewing_events(customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_time ON viewing_events(event_time)`,
	`CREATE INDEX IF NOT EXISTS idx_events_programme ON viewing_events(programme_id)`,
	`CREATE INDEX IF NOT EXISTS idx_c360_engagement ON customer_360(engagement_score)`,
}
