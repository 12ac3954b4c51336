// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType is the playback action an event records.
type EventType string

// Playback event types emitted by the player.
const (
	EventPlayStart EventType = "play_start"
	EventPlay      EventType = "play"
	EventPause     EventType = "pause"
	EventSeek      EventType = "seek"
	EventPlayEnd   EventType = "play_end"
)

// DeviceType is the client device category reported with an event.
type DeviceType string

// Known device categories.
const (
	DeviceSmartTV DeviceType = "SmartTV"
	DeviceMobile  DeviceType = "Mobile"
	DeviceWeb     DeviceType = "Web"
	DeviceTablet  DeviceType = "Tablet"
)

// ViewingEvent is one row of the append-only viewership event log: a single
// playback/engagement observation. Events are never mutated after ingestion.
//
// CustomerID is nil for unidentified viewers (roughly 70% of traffic by
// default); customer-level rollups filter those out, while programme, peak
// and device aggregates include them.
type ViewingEvent struct {
	LogID          uuid.UUID  `json:"log_id"`
	Channel        string     `json:"channel"`
	EventTime      time.Time  `json:"event_time"`
	SlotStartTime  time.Time  `json:"slot_start_time"`
	ProgrammeID    string     `json:"programme_id"`
	CustomerID     *string    `json:"customer_id,omitempty"`
	DeviceType     DeviceType `json:"device_type"`
	OSName         string     `json:"os_name"`
	ConnectionType string     `json:"connection_type"`
	BitrateKbps    int        `json:"bitrate_kbps"`
	BufferEvents   int        `json:"buffer_events"`
	RebufferRatio  float64    `json:"rebuffer_ratio"`
	WatchSeconds   int        `json:"watch_seconds"`
	AdBreaks       int        `json:"ad_breaks"`
	AdTotalSeconds int        `json:"ad_total_seconds"`
	EventType      EventType  `json:"event_type"`
	IPAddress      string     `json:"ip_address"`
	ISP            string     `json:"isp"`
	Country        string     `json:"country"`
	Region         string     `json:"region"`
	City           string     `json:"city"`
}

// CustomerViewingSummary is the per-customer rollup produced by the viewing
// aggregator: one row per identified customer with any events.
//
// PreferredDevice and PreferredConnection are modes with a deterministic
// tie-break (lexicographically smallest among maximal counts). LastRegion,
// LastCity and LastISP come from the latest event by timestamp, ties broken
// by log id, so re-aggregation over the same event set is byte-identical.
type CustomerViewingSummary struct {
	CustomerID          string    `json:"customer_id"`
	TotalEvents         int       `json:"total_events"`
	ActiveDays          int       `json:"active_days"`
	UniqueProgrammes    int       `json:"unique_programmes"`
	TotalWatchSeconds   int64     `json:"total_watch_seconds"`
	AvgWatchSeconds     float64   `json:"avg_watch_seconds"`
	TotalAdSeconds      int64     `json:"total_ad_seconds"`
	PreferredDevice     string    `json:"preferred_device"`
	PreferredConnection string    `json:"preferred_connection"`
	AvgBitrateKbps      float64   `json:"avg_bitrate_kbps"`
	AvgBufferEvents     float64   `json:"avg_buffer_events"`
	AvgRebufferRatio    float64   `json:"avg_rebuffer_ratio"`
	LastRegion          string    `json:"last_region"`
	LastCity            string    `json:"last_city"`
	LastISP             string    `json:"last_isp"`
	FirstViewing        time.Time `json:"first_viewing"`
	LastViewing         time.Time `json:"last_viewing"`
	ViewingSpanDays     int       `json:"viewing_span_days"`
}
