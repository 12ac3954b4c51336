// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package aggregate

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/audiencegrid/audiencegrid/internal/models"
)

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("parse uuid: %v", err)
	}
	return id
}

func event(t *testing.T, customerID string, at time.Time, mutate func(*models.ViewingEvent)) models.ViewingEvent {
	t.Helper()
	ev := models.ViewingEvent{
		LogID:          uuid.New(),
		Channel:        "TF1",
		EventTime:      at,
		SlotStartTime:  at.Truncate(30 * time.Minute),
		ProgrammeID:    "TF1-" + at.Format("20060102-1504"),
		DeviceType:     models.DeviceSmartTV,
		OSName:         "Tizen",
		ConnectionType: "fiber",
		BitrateKbps:    4000,
		WatchSeconds:   600,
		EventType:      models.EventPlay,
		ISP:            "Orange",
		Country:        "France",
		Region:         "Île-de-France",
		City:           "Paris",
	}
	if customerID != "" {
		ev.CustomerID = &customerID
	}
	if mutate != nil {
		mutate(&ev)
	}
	return ev
}

func TestRollupWorkedExample(t *testing.T) {
	base := time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC)
	events := []models.ViewingEvent{
		event(t, "SF1-0000000001", base, func(ev *models.ViewingEvent) {
			ev.WatchSeconds = 1200
			ev.AdTotalSeconds = 90
			ev.BitrateKbps = 3000
			ev.BufferEvents = 2
			ev.RebufferRatio = 0.04
		}),
		event(t, "SF1-0000000001", base.Add(26*time.Hour), func(ev *models.ViewingEvent) {
			ev.WatchSeconds = 600
			ev.AdTotalSeconds = 30
			ev.BitrateKbps = 5000
			ev.BufferEvents = 0
			ev.RebufferRatio = 0.0
			ev.DeviceType = models.DeviceMobile
			ev.ConnectionType = "4g"
			ev.Region = "Bretagne"
			ev.City = "Rennes"
			ev.ISP = "Free"
		}),
		event(t, "", base, nil), // unidentified, must be skipped
	}

	got, err := Rollup(context.Background(), events, 2)
	if err != nil {
		t.Fatalf("Rollup: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}

	s := got[0]
	if s.CustomerID != "SF1-0000000001" {
		t.Errorf("CustomerID = %s", s.CustomerID)
	}
	if s.TotalEvents != 2 || s.ActiveDays != 2 || s.UniqueProgrammes != 2 {
		t.Errorf("counts = %d/%d/%d, want 2/2/2", s.TotalEvents, s.ActiveDays, s.UniqueProgrammes)
	}
	if s.TotalWatchSeconds != 1800 || s.AvgWatchSeconds != 900 {
		t.Errorf("watch = %d/%v, want 1800/900", s.TotalWatchSeconds, s.AvgWatchSeconds)
	}
	if s.TotalAdSeconds != 120 {
		t.Errorf("TotalAdSeconds = %d, want 120", s.TotalAdSeconds)
	}
	if s.AvgBitrateKbps != 4000 || s.AvgBufferEvents != 1 {
		t.Errorf("avg bitrate/buffer = %v/%v, want 4000/1", s.AvgBitrateKbps, s.AvgBufferEvents)
	}
	if math.Abs(s.AvgRebufferRatio-0.02) > 1e-9 {
		t.Errorf("AvgRebufferRatio = %v, want 0.02", s.AvgRebufferRatio)
	}
	// The 26h-later event is the latest, so the location fields follow it.
	if s.LastRegion != "Bretagne" || s.LastCity != "Rennes" || s.LastISP != "Free" {
		t.Errorf("latest location = %s/%s/%s", s.LastRegion, s.LastCity, s.LastISP)
	}
	if !s.FirstViewing.Equal(base) || !s.LastViewing.Equal(base.Add(26*time.Hour)) {
		t.Errorf("first/last = %v/%v", s.FirstViewing, s.LastViewing)
	}
	if s.ViewingSpanDays != 2 {
		t.Errorf("ViewingSpanDays = %d, want 2", s.ViewingSpanDays)
	}
}

func TestRollupModeTieBreak(t *testing.T) {
	at := time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC)
	events := []models.ViewingEvent{
		event(t, "SF1-0000000001", at, func(ev *models.ViewingEvent) {
			ev.DeviceType = models.DeviceWeb
			ev.ConnectionType = "wifi"
		}),
		event(t, "SF1-0000000001", at.Add(time.Hour), func(ev *models.ViewingEvent) {
			ev.DeviceType = models.DeviceMobile
			ev.ConnectionType = "4g"
		}),
	}

	got, err := Rollup(context.Background(), events, 1)
	if err != nil {
		t.Fatalf("Rollup: %v", err)
	}
	// 1-1 ties resolve to the lexicographically smallest value.
	if got[0].PreferredDevice != "Mobile" {
		t.Errorf("PreferredDevice = %s, want Mobile", got[0].PreferredDevice)
	}
	if got[0].PreferredConnection != "4g" {
		t.Errorf("PreferredConnection = %s, want 4g", got[0].PreferredConnection)
	}
}

func TestRollupLatestTimestampTieBreak(t *testing.T) {
	at := time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC)
	lo := mustUUID(t, "00000000-0000-0000-0000-000000000001")
	hi := mustUUID(t, "ffffffff-0000-0000-0000-000000000001")

	build := func(order [2]uuid.UUID) models.CustomerViewingSummary {
		events := []models.ViewingEvent{
			event(t, "SF1-0000000001", at, func(ev *models.ViewingEvent) {
				ev.LogID = order[0]
				if order[0] == hi {
					ev.City = "Lyon"
				} else {
					ev.City = "Nantes"
				}
			}),
			event(t, "SF1-0000000001", at, func(ev *models.ViewingEvent) {
				ev.LogID = order[1]
				if order[1] == hi {
					ev.City = "Lyon"
				} else {
					ev.City = "Nantes"
				}
			}),
		}
		got, err := Rollup(context.Background(), events, 1)
		if err != nil {
			t.Fatalf("Rollup: %v", err)
		}
		return got[0]
	}

	// Identical timestamps: the greater log id wins regardless of input
	// order.
	if s := build([2]uuid.UUID{lo, hi}); s.LastCity != "Lyon" {
		t.Errorf("LastCity = %s, want Lyon", s.LastCity)
	}
	if s := build([2]uuid.UUID{hi, lo}); s.LastCity != "Lyon" {
		t.Errorf("LastCity (reversed input) = %s, want Lyon", s.LastCity)
	}
}

func TestRollupSingleEventSpanIsOneDay(t *testing.T) {
	events := []models.ViewingEvent{
		event(t, "SF1-0000000001", time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC), nil),
	}
	got, err := Rollup(context.Background(), events, 1)
	if err != nil {
		t.Fatalf("Rollup: %v", err)
	}
	if got[0].ViewingSpanDays != 1 {
		t.Errorf("ViewingSpanDays = %d, want 1", got[0].ViewingSpanDays)
	}
}

func TestRollupDeterministicAcrossWorkerCounts(t *testing.T) {
	base := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	var events []models.ViewingEvent
	for i := 0; i < 500; i++ {
		id := fmt.Sprintf("SF1-%010d", i%37)
		events = append(events, event(t, id, base.Add(time.Duration(i)*17*time.Minute), func(ev *models.ViewingEvent) {
			ev.WatchSeconds = 60 + i%600
			ev.BitrateKbps = 800 + i*7%5700
			ev.LogID = mustUUID(t, fmt.Sprintf("%08x-0000-0000-0000-000000000000", i))
		}))
	}

	one, err := Rollup(context.Background(), events, 1)
	if err != nil {
		t.Fatalf("Rollup(1): %v", err)
	}
	eight, err := Rollup(context.Background(), events, 8)
	if err != nil {
		t.Fatalf("Rollup(8): %v", err)
	}
	again, err := Rollup(context.Background(), events, 8)
	if err != nil {
		t.Fatalf("Rollup(8) rerun: %v", err)
	}

	if !reflect.DeepEqual(one, eight) {
		t.Error("worker count changed the rollup output")
	}
	if !reflect.DeepEqual(eight, again) {
		t.Error("re-aggregation over identical input diverged")
	}
}

func TestRollupEmptyInput(t *testing.T) {
	got, err := Rollup(context.Background(), nil, 4)
	if err != nil {
		t.Fatalf("Rollup: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestRollupCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := make([]models.ViewingEvent, 10000)
	id := "SF1-0000000001"
	for i := range events {
		events[i] = event(t, id, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), nil)
	}
	if _, err := Rollup(ctx, events, 2); err == nil {
		t.Error("expected context error")
	}
}
