// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package services

import (
	"context"
	"time"

	"github.com/audiencegrid/audiencegrid/internal/logging"
	"github.com/audiencegrid/audiencegrid/internal/models"
)

// Refresher is the slice of the analytics layer the scheduler drives.
// *analytics.Refresher satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) (*models.RefreshResult, error)
}

// RefreshService runs the analytics refresh on a fixed interval. A failed
// run is logged and the schedule continues; the service itself only exits
// when its context is canceled, so supervisor restarts stay reserved for
// panics.
type RefreshService struct {
	refresher Refresher
	interval  time.Duration
	onStartup bool
	name      string
}

// NewRefreshService creates a periodic refresh scheduler. interval must be
// positive; onStartup additionally runs one refresh immediately after the
// service starts.
func NewRefreshService(refresher Refresher, interval time.Duration, onStartup bool) *RefreshService {
	return &RefreshService{
		refresher: refresher,
		interval:  interval,
		onStartup: onStartup,
		name:      "analytics-refresh",
	}
}

// Serve implements suture.Service.
func (s *RefreshService) Serve(ctx context.Context) error {
	if s.onStartup {
		s.run(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *RefreshService) run(ctx context.Context) {
	if _, err := s.refresher.Refresh(ctx); err != nil && ctx.Err() == nil {
		logging.Error().Err(err).Msg("Scheduled analytics refresh failed")
	}
}

// String implements fmt.Stringer for suture logging.
func (s *RefreshService) String() string {
	return s.name
}
