// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

// Package analytics orchestrates the full refresh pipeline: per-customer
// rollup, profile composition, and the SQL-side reductions, in one pass over
// the stored data.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/audiencegrid/audiencegrid/internal/aggregate"
	"github.com/audiencegrid/audiencegrid/internal/logging"
	"github.com/audiencegrid/audiencegrid/internal/metrics"
	"github.com/audiencegrid/audiencegrid/internal/models"
	"github.com/audiencegrid/audiencegrid/internal/profile"
)

// Storage is the slice of the database layer the refresher needs.
// *database.DB satisfies it.
type Storage interface {
	Customers(ctx context.Context) ([]models.CustomerRecord, error)
	IdentifiedEvents(ctx context.Context) ([]models.ViewingEvent, error)
	ReplaceCustomerProfiles(ctx context.Context, profiles []models.CustomerProfile) error
	RefreshProgrammeAnalytics(ctx context.Context) (int64, error)
	RefreshPeakTimesAnalytics(ctx context.Context) (int64, error)
	RefreshDeviceAnalytics(ctx context.Context) (int64, error)
	RefreshDailySummary(ctx context.Context) (int64, error)
}

// Refresher recomputes every derived output from the stored CRM population
// and event log. Refresh runs are idempotent: the same stored data always
// produces the same derived tables.
type Refresher struct {
	store   Storage
	workers int

	// onRefresh, when set, runs after a successful refresh. The API layer
	// hooks cache invalidation in here.
	onRefresh func()

	now func() time.Time
}

// NewRefresher creates a Refresher using the given rollup worker count.
func NewRefresher(store Storage, workers int) *Refresher {
	return &Refresher{
		store:   store,
		workers: workers,
		now:     time.Now,
	}
}

// OnRefresh registers a hook invoked after each successful refresh.
func (r *Refresher) OnRefresh(fn func()) {
	r.onRefresh = fn
}

// Refresh runs the full pipeline: stream identified events, roll them up
// per customer, compose CUSTOMER_360, replace it wholesale, then rebuild
// the programme, peak-time, device and daily reductions in SQL.
func (r *Refresher) Refresh(ctx context.Context) (*models.RefreshResult, error) {
	start := r.now()
	result, err := r.refresh(ctx)
	elapsed := time.Since(start)

	profiles := 0
	if result != nil {
		profiles = result.Profiles
	}
	metrics.RecordRefresh(profiles, elapsed, err)
	if err != nil {
		logging.Error().Err(err).Dur("elapsed", elapsed).Msg("Analytics refresh failed")
		return nil, err
	}

	result.Duration = elapsed
	result.DurationHuman = elapsed.Round(time.Millisecond).String()
	logging.Info().
		Int("customers", result.Customers).
		Int("profiles", result.Profiles).
		Int("programmes", result.Programmes).
		Dur("elapsed", elapsed).
		Msg("Analytics refresh complete")

	if r.onRefresh != nil {
		r.onRefresh()
	}
	return result, nil
}

func (r *Refresher) refresh(ctx context.Context) (*models.RefreshResult, error) {
	customers, err := r.store.Customers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}

	events, err := r.store.IdentifiedEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load identified events: %w", err)
	}

	summaries, err := aggregate.Rollup(ctx, events, r.workers)
	if err != nil {
		return nil, fmt.Errorf("per-customer rollup: %w", err)
	}

	profiles, err := profile.Compose(customers, summaries, r.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("compose profiles: %w", err)
	}

	if err := r.store.ReplaceCustomerProfiles(ctx, profiles); err != nil {
		return nil, fmt.Errorf("replace customer_360: %w", err)
	}

	programmes, err := r.store.RefreshProgrammeAnalytics(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh programme analytics: %w", err)
	}
	buckets, err := r.store.RefreshPeakTimesAnalytics(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh peak times: %w", err)
	}
	devices, err := r.store.RefreshDeviceAnalytics(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh device analytics: %w", err)
	}
	daily, err := r.store.RefreshDailySummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh daily summary: %w", err)
	}

	return &models.RefreshResult{
		Customers:    len(customers),
		Profiles:     len(profiles),
		Programmes:   int(programmes),
		TimeBuckets:  int(buckets),
		DeviceGroups: int(devices),
		DailyRows:    int(daily),
	}, nil
}
