// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package database

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/audiencegrid/audiencegrid/internal/models"
)

// seedAnalyticsEvents loads a fixed log: three events in one programme slot
// (two viewers, one play_end) and one event in another slot a day later.
func seedAnalyticsEvents(t *testing.T, db *DB) {
	t.Helper()

	slotA := time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC)  // Monday
	slotB := time.Date(2026, 3, 10, 21, 0, 0, 0, time.UTC) // Tuesday

	a1 := testEvent("SF1-0000000001", slotA.Add(2*time.Minute))
	a1.EventType = models.EventPlayEnd
	a1.Region = "Bretagne"
	a2 := testEvent("SF1-0000000002", slotA.Add(5*time.Minute))
	a2.Region = "Bretagne"
	a3 := testEvent("", slotA.Add(9*time.Minute))
	a3.Region = "Occitanie"
	a3.IPAddress = "82.1.2.3"
	b1 := testEvent("SF1-0000000001", slotB.Add(time.Minute))
	b1.DeviceType = models.DeviceMobile
	b1.OSName = "Android"
	b1.ConnectionType = "4g"

	events := []models.ViewingEvent{a1, a2, a3, b1}
	for i := range events {
		events[i].LogID = uuid.New()
	}
	if err := db.InsertViewingEvents(context.Background(), events, 100, false); err != nil {
		t.Fatalf("InsertViewingEvents: %v", err)
	}
}

func TestRefreshProgrammeAnalytics(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedAnalyticsEvents(t, db)

	n, err := db.RefreshProgrammeAnalytics(ctx)
	if err != nil {
		t.Fatalf("RefreshProgrammeAnalytics: %v", err)
	}
	if n != 2 {
		t.Errorf("rows = %d, want 2 programme slots", n)
	}

	top, err := db.TopProgrammes(ctx, 10, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("TopProgrammes: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("len = %d, want 2", len(top))
	}

	busiest := top[0]
	if busiest.ProgrammeID != "TF1-20260309-2000" {
		t.Errorf("busiest programme = %s", busiest.ProgrammeID)
	}
	if busiest.TotalEvents != 3 || busiest.UniqueViewers != 3 {
		t.Errorf("events/viewers = %d/%d, want 3/3", busiest.TotalEvents, busiest.UniqueViewers)
	}
	if math.Abs(busiest.CompletionRate-1.0/3.0) > 1e-9 {
		t.Errorf("CompletionRate = %v, want 1/3", busiest.CompletionRate)
	}
	if busiest.TopRegion != "Bretagne" {
		t.Errorf("TopRegion = %s, want Bretagne", busiest.TopRegion)
	}
	if busiest.ProgrammeHour != 20 {
		t.Errorf("ProgrammeHour = %d, want 20", busiest.ProgrammeHour)
	}
}

func TestTopProgrammesWindowFilter(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedAnalyticsEvents(t, db)

	if _, err := db.RefreshProgrammeAnalytics(ctx); err != nil {
		t.Fatalf("RefreshProgrammeAnalytics: %v", err)
	}

	// Cutoff after the first slot's date keeps only the second.
	top, err := db.TopProgrammes(ctx, 10, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("TopProgrammes: %v", err)
	}
	if len(top) != 1 || top[0].ProgrammeID != "TF1-20260310-2100" {
		t.Errorf("windowed result = %+v", top)
	}
}

func TestRefreshPeakTimesAndPeakHours(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedAnalyticsEvents(t, db)

	n, err := db.RefreshPeakTimesAnalytics(ctx)
	if err != nil {
		t.Fatalf("RefreshPeakTimesAnalytics: %v", err)
	}
	if n != 2 {
		t.Errorf("rows = %d, want 2 hour buckets", n)
	}

	peaks, err := db.PeakHours(ctx, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("PeakHours: %v", err)
	}
	if len(peaks) != 2 {
		t.Fatalf("len = %d, want 2", len(peaks))
	}
	if peaks[0].ViewingHour != 20 || peaks[0].DayName != "Monday" {
		t.Errorf("busiest cell = %d/%s, want 20/Monday", peaks[0].ViewingHour, peaks[0].DayName)
	}
	if peaks[0].AvgUniqueViewers != 3 {
		t.Errorf("AvgUniqueViewers = %v, want 3", peaks[0].AvgUniqueViewers)
	}
}

func TestRefreshDeviceAnalytics(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedAnalyticsEvents(t, db)

	n, err := db.RefreshDeviceAnalytics(ctx)
	if err != nil {
		t.Fatalf("RefreshDeviceAnalytics: %v", err)
	}
	if n != 2 {
		t.Errorf("rows = %d, want 2 device groups", n)
	}

	devices, err := db.DeviceSummaries(ctx)
	if err != nil {
		t.Fatalf("DeviceSummaries: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("len = %d, want 2", len(devices))
	}
	if devices[0].DeviceType != "SmartTV" || devices[0].TotalEvents != 3 {
		t.Errorf("busiest group = %+v", devices[0])
	}
	if devices[1].DeviceType != "Mobile" || devices[1].ConnectionType != "4g" {
		t.Errorf("second group = %+v", devices[1])
	}
}

func TestRefreshDailySummary(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedAnalyticsEvents(t, db)

	n, err := db.RefreshDailySummary(ctx)
	if err != nil {
		t.Fatalf("RefreshDailySummary: %v", err)
	}
	if n != 2 {
		t.Errorf("rows = %d, want 2 dates", n)
	}

	days, err := db.DailySummaries(ctx,
		time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DailySummaries: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("len = %d, want 2", len(days))
	}

	monday := days[0]
	if monday.TotalEvents != 3 || monday.UniqueViewers != 3 {
		t.Errorf("monday events/viewers = %d/%d, want 3/3", monday.TotalEvents, monday.UniqueViewers)
	}
	// Two of three Monday events are identified.
	if math.Abs(monday.IdentifiedViewerRate-2.0/3.0) > 1e-9 {
		t.Errorf("IdentifiedViewerRate = %v, want 2/3", monday.IdentifiedViewerRate)
	}
	if math.Abs(monday.TotalWatchHours-0.5) > 1e-9 {
		t.Errorf("TotalWatchHours = %v, want 0.5", monday.TotalWatchHours)
	}
	if math.Abs(monday.TotalAdMinutes-4.5) > 1e-9 {
		t.Errorf("TotalAdMinutes = %v, want 4.5", monday.TotalAdMinutes)
	}
}

func TestDailySummariesRangeFilter(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedAnalyticsEvents(t, db)

	if _, err := db.RefreshDailySummary(ctx); err != nil {
		t.Fatalf("RefreshDailySummary: %v", err)
	}

	days, err := db.DailySummaries(ctx,
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DailySummaries: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("len = %d, want 1", len(days))
	}
	if days[0].SummaryDate.Format("2006-01-02") != "2026-03-10" {
		t.Errorf("SummaryDate = %v", days[0].SummaryDate)
	}
}

func TestRefreshOnEmptyLog(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for name, refresh := range map[string]func(context.Context) (int64, error){
		"programmes": db.RefreshProgrammeAnalytics,
		"peaks":      db.RefreshPeakTimesAnalytics,
		"devices":    db.RefreshDeviceAnalytics,
		"daily":      db.RefreshDailySummary,
	} {
		n, err := refresh(ctx)
		if err != nil {
			t.Errorf("%s refresh on empty log: %v", name, err)
		}
		if n != 0 {
			t.Errorf("%s refresh produced %d rows from empty log", name, n)
		}
	}
}
