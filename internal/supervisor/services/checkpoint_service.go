// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package services

import (
	"context"
	"time"

	"github.com/audiencegrid/audiencegrid/internal/logging"
)

// Checkpointer flushes the database WAL to the main file. *database.DB
// satisfies it.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// CheckpointService periodically checkpoints the DuckDB WAL so a crash loses
// at most one interval of unflushed writes and the WAL file stays bounded.
type CheckpointService struct {
	db       Checkpointer
	interval time.Duration
	name     string
}

// NewCheckpointService creates a periodic checkpoint service. A non-positive
// interval defaults to 15 minutes.
func NewCheckpointService(db Checkpointer, interval time.Duration) *CheckpointService {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &CheckpointService{
		db:       db,
		interval: interval,
		name:     "db-checkpoint",
	}
}

// Serve implements suture.Service.
func (s *CheckpointService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.db.Checkpoint(ctx); err != nil && ctx.Err() == nil {
				logging.Warn().Err(err).Msg("Database checkpoint failed")
			}
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (s *CheckpointService) String() string {
	return s.name
}
