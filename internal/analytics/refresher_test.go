// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/audiencegrid/audiencegrid/internal/models"
)

type fakeStore struct {
	customers []models.CustomerRecord
	events    []models.ViewingEvent

	replaced    []models.CustomerProfile
	eventErr    error
	refreshErrs map[string]error
}

func (f *fakeStore) Customers(_ context.Context) ([]models.CustomerRecord, error) {
	return f.customers, nil
}

func (f *fakeStore) IdentifiedEvents(_ context.Context) ([]models.ViewingEvent, error) {
	return f.events, f.eventErr
}

func (f *fakeStore) ReplaceCustomerProfiles(_ context.Context, profiles []models.CustomerProfile) error {
	f.replaced = profiles
	return nil
}

func (f *fakeStore) RefreshProgrammeAnalytics(_ context.Context) (int64, error) {
	return 2, f.refreshErrs["programmes"]
}

func (f *fakeStore) RefreshPeakTimesAnalytics(_ context.Context) (int64, error) {
	return 3, f.refreshErrs["peaks"]
}

func (f *fakeStore) RefreshDeviceAnalytics(_ context.Context) (int64, error) {
	return 4, f.refreshErrs["devices"]
}

func (f *fakeStore) RefreshDailySummary(_ context.Context) (int64, error) {
	return 5, f.refreshErrs["daily"]
}

func testRecord(id string) models.CustomerRecord {
	return models.CustomerRecord{
		CustomerID:        id,
		FirstName:         "Claire",
		LastName:          "Moreau",
		Gender:            "F",
		Profession:        "Enseignante",
		DateJoined:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		SubscriptionLevel: models.SubscriptionBasic,
		OverlapType:       models.OverlapNone,
	}
}

func testEvent(customerID string, at time.Time) models.ViewingEvent {
	id := customerID
	return models.ViewingEvent{
		LogID:          uuid.New(),
		Channel:        "TF1",
		EventTime:      at,
		SlotStartTime:  at.Truncate(30 * time.Minute),
		ProgrammeID:    "TF1-20260309-2000",
		CustomerID:     &id,
		DeviceType:     models.DeviceSmartTV,
		OSName:         "Tizen",
		ConnectionType: "fiber",
		BitrateKbps:    4000,
		WatchSeconds:   600,
		AdBreaks:       3,
		AdTotalSeconds: 90,
		EventType:      models.EventPlay,
		IPAddress:      "82.10.20.30",
		ISP:            "Free",
		Country:        "France",
		Region:         "Bretagne",
		City:           "Rennes",
	}
}

func TestRefreshComposesAndReplacesProfiles(t *testing.T) {
	now := time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		customers: []models.CustomerRecord{
			testRecord("SF1-0000000001"),
			testRecord("SF1-0000000002"),
		},
		events: []models.ViewingEvent{
			testEvent("SF1-0000000001", now.Add(-24*time.Hour)),
			testEvent("SF1-0000000001", now.Add(-2*time.Hour)),
		},
	}

	r := NewRefresher(store, 2)
	r.now = func() time.Time { return now }

	result, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if result.Customers != 2 || result.Profiles != 2 {
		t.Errorf("counts = %d customers, %d profiles, want 2, 2", result.Customers, result.Profiles)
	}
	if result.Programmes != 2 || result.TimeBuckets != 3 || result.DeviceGroups != 4 || result.DailyRows != 5 {
		t.Errorf("reduction counts = %+v, want 2/3/4/5", result)
	}
	if result.DurationHuman == "" {
		t.Error("DurationHuman not set")
	}

	if len(store.replaced) != 2 {
		t.Fatalf("replaced %d profiles, want 2", len(store.replaced))
	}
	active := store.replaced[0]
	if active.CustomerID != "SF1-0000000001" {
		t.Fatalf("first profile = %s, want SF1-0000000001", active.CustomerID)
	}
	if active.TotalWatchSeconds != 1200 {
		t.Errorf("TotalWatchSeconds = %d, want 1200", active.TotalWatchSeconds)
	}
	if active.ActivityStatus != models.ActivityActive {
		t.Errorf("ActivityStatus = %s, want %s", active.ActivityStatus, models.ActivityActive)
	}
	idle := store.replaced[1]
	if idle.ActivityStatus != models.ActivityNever {
		t.Errorf("idle ActivityStatus = %s, want %s", idle.ActivityStatus, models.ActivityNever)
	}
}

func TestRefreshRunsOnRefreshHookOnSuccess(t *testing.T) {
	store := &fakeStore{customers: []models.CustomerRecord{testRecord("SF1-0000000001")}}
	r := NewRefresher(store, 1)

	fired := 0
	r.OnRefresh(func() { fired++ })

	if _, err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if fired != 1 {
		t.Errorf("hook fired %d times, want 1", fired)
	}
}

func TestRefreshPropagatesStorageErrors(t *testing.T) {
	wantErr := errors.New("disk on fire")
	store := &fakeStore{eventErr: wantErr}

	fired := false
	r := NewRefresher(store, 1)
	r.OnRefresh(func() { fired = true })

	if _, err := r.Refresh(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("Refresh error = %v, want wrapped %v", err, wantErr)
	}
	if fired {
		t.Error("hook fired on failed refresh")
	}
}

func TestRefreshPropagatesReductionErrors(t *testing.T) {
	wantErr := errors.New("no such table")
	store := &fakeStore{refreshErrs: map[string]error{"daily": wantErr}}

	r := NewRefresher(store, 1)
	if _, err := r.Refresh(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("Refresh error = %v, want wrapped %v", err, wantErr)
	}
}
