// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package models

import (
	"time"
)

// ViewerSegment buckets customers by viewing intensity, derived from total
// watch hours. SegmentNoActivity is assigned by the profile composer to
// customers with no viewing summary at all; the scorer itself never sees a
// zero-activity customer.
type ViewerSegment string

// Viewer segments ordered by intensity.
const (
	SegmentNoActivity ViewerSegment = "No Activity"
	SegmentMinimal    ViewerSegment = "Minimal Viewer"
	SegmentLight      ViewerSegment = "Light Viewer"
	SegmentRegular    ViewerSegment = "Regular Viewer"
	SegmentHeavy      ViewerSegment = "Heavy Viewer"
)

// ActivityStatus is the recency-based state of a customer's engagement,
// derived from the last viewing timestamp relative to the composition time.
type ActivityStatus string

// Activity statuses: nil last viewing -> Never Active; <=7 days -> Active;
// <=30 days -> Recently Active; otherwise Inactive.
const (
	ActivityNever    ActivityStatus = "Never Active"
	ActivityActive   ActivityStatus = "Active"
	ActivityRecent   ActivityStatus = "Recently Active"
	ActivityInactive ActivityStatus = "Inactive"
)

// CustomerProfile is one CUSTOMER_360 row: a CustomerRecord left-joined with
// its viewing summary and engagement scores. Exactly one profile exists per
// customer record; viewing-side fields default to zero values when the
// customer has no events. Profiles are recomputed wholesale on each
// aggregation run, never updated in place.
type CustomerProfile struct {
	CustomerRecord

	TotalEvents         int        `json:"total_events"`
	ActiveDays          int        `json:"active_days"`
	UniqueProgrammes    int        `json:"unique_programmes"`
	TotalWatchSeconds   int64      `json:"total_watch_seconds"`
	TotalWatchHours     float64    `json:"total_watch_hours"`
	TotalAdSeconds      int64      `json:"total_ad_seconds"`
	PreferredDevice     string     `json:"preferred_device,omitempty"`
	PreferredConnection string     `json:"preferred_connection,omitempty"`
	AvgBitrateKbps      float64    `json:"avg_bitrate_kbps"`
	AvgBufferEvents     float64    `json:"avg_buffer_events"`
	AvgRebufferRatio    float64    `json:"avg_rebuffer_ratio"`
	Region              string     `json:"region,omitempty"`
	City                string     `json:"city,omitempty"`
	ISP                 string     `json:"isp,omitempty"`
	FirstViewing        *time.Time `json:"first_viewing,omitempty"`
	LastViewing         *time.Time `json:"last_viewing,omitempty"`
	ViewingSpanDays     int        `json:"viewing_span_days"`

	EngagementScore float64        `json:"engagement_score"`
	EstimatedCLV    float64        `json:"estimated_clv"`
	ViewerSegment   ViewerSegment  `json:"viewer_segment"`
	ActivityStatus  ActivityStatus `json:"activity_status"`
}

// ProgrammeSummary aggregates events by programme slot (programme id, date,
// hour). CompletionRate is the share of play_end events; TopRegion is the
// region with the most events in the slot (lexicographic tie-break).
type ProgrammeSummary struct {
	ProgrammeID     string    `json:"programme_id"`
	ProgrammeDate   time.Time `json:"programme_date"`
	ProgrammeHour   int       `json:"programme_hour"`
	TotalEvents     int       `json:"total_events"`
	UniqueViewers   int       `json:"unique_viewers"`
	TotalWatchHours float64   `json:"total_watch_hours"`
	AvgWatchSeconds float64   `json:"avg_watch_seconds"`
	CompletionRate  float64   `json:"completion_rate"`
	TopRegion       string    `json:"top_region"`
}

// TimeBucketSummary aggregates events by (date, hour, weekday) for peak-time
// analysis. Weekday follows time.Weekday naming.
type TimeBucketSummary struct {
	ViewingDate     time.Time `json:"viewing_date"`
	ViewingHour     int       `json:"viewing_hour"`
	DayName         string    `json:"day_name"`
	TotalEvents     int       `json:"total_events"`
	UniqueViewers   int       `json:"unique_viewers"`
	TotalWatchHours float64   `json:"total_watch_hours"`
	AvgBitrateKbps  float64   `json:"avg_bitrate_kbps"`
}

// DeviceSummary aggregates events by (device type, OS, connection type) with
// streaming quality averages.
type DeviceSummary struct {
	DeviceType       string  `json:"device_type"`
	OSName           string  `json:"os_name"`
	ConnectionType   string  `json:"connection_type"`
	TotalEvents      int     `json:"total_events"`
	UniqueUsers      int     `json:"unique_users"`
	AvgBitrateKbps   float64 `json:"avg_bitrate_kbps"`
	AvgBufferEvents  float64 `json:"avg_buffer_events"`
	AvgRebufferRatio float64 `json:"avg_rebuffer_ratio"`
	AvgWatchSeconds  float64 `json:"avg_watch_seconds"`
}

// DailySummary is the per-date platform rollup backing the overview
// dashboard. IdentifiedViewerRate is the share of events carrying a
// customer id.
type DailySummary struct {
	SummaryDate          time.Time `json:"summary_date"`
	TotalEvents          int       `json:"total_events"`
	UniqueViewers        int       `json:"unique_viewers"`
	TotalWatchHours      float64   `json:"total_watch_hours"`
	TotalAdMinutes       float64   `json:"total_ad_minutes"`
	AvgBitrateKbps       float64   `json:"avg_bitrate_kbps"`
	AvgBufferEvents      float64   `json:"avg_buffer_events"`
	AvgRebufferRatio     float64   `json:"avg_rebuffer_ratio"`
	IdentifiedViewerRate float64   `json:"identified_viewer_rate"`
}

// PeakHour is one row of the PEAK_HOURS reporting view: average unique
// viewers for an (hour, weekday) cell over the reporting window.
type PeakHour struct {
	ViewingHour      int     `json:"viewing_hour"`
	DayName          string  `json:"day_name"`
	AvgUniqueViewers float64 `json:"avg_unique_viewers"`
	AvgWatchHours    float64 `json:"avg_watch_hours"`
}

// RefreshResult reports the outcome of a full analytics refresh run.
type RefreshResult struct {
	Customers     int           `json:"customers"`
	Profiles      int           `json:"profiles"`
	Programmes    int           `json:"programmes"`
	TimeBuckets   int           `json:"time_buckets"`
	DeviceGroups  int           `json:"device_groups"`
	DailyRows     int           `json:"daily_rows"`
	Duration      time.Duration `json:"-"`
	DurationHuman string        `json:"duration"`
}
