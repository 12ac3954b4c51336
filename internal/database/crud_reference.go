// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package database

import (
	"context"
	"fmt"

	"github.com/audiencegrid/audiencegrid/internal/logging"
	"github.com/audiencegrid/audiencegrid/internal/models"
)

// InsertReferenceIdentities bulk-loads the external reference identity set.
// The table is otherwise read-only; overwrite semantics match
// InsertCustomers.
func (db *DB) InsertReferenceIdentities(ctx context.Context, identities []models.ExternalIdentity, overwrite bool) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	existing, err := db.tableCount(ctx, "reference_identities")
	if err != nil {
		return err
	}
	if existing > 0 && !overwrite {
		return fmt.Errorf("%w: reference_identities table has %d rows and overwrite is false", ErrAlreadyExists, existing)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if overwrite {
		if _, err := tx.ExecContext(ctx, "DELETE FROM reference_identities"); err != nil {
			return fmt.Errorf("failed to clear reference identities: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO reference_identities (email, phone, full_name) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare reference insert: %w", err)
	}
	defer closeQuietly(stmt)

	for i := range identities {
		ref := &identities[i]
		if _, err := stmt.ExecContext(ctx, ref.Email, ref.Phone, ref.FullName); err != nil {
			return fmt.Errorf("failed to insert reference identity: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reference load: %w", err)
	}

	logging.Info().Int("rows", len(identities)).Msg("Reference identity set loaded")
	return nil
}

// ReferenceIdentities returns the full reference identity set.
func (db *DB) ReferenceIdentities(ctx context.Context) ([]models.ExternalIdentity, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		"SELECT email, phone, full_name FROM reference_identities")
	if err != nil {
		return nil, fmt.Errorf("failed to query reference identities: %w", err)
	}
	defer closeQuietly(rows)

	var identities []models.ExternalIdentity
	for rows.Next() {
		var ref models.ExternalIdentity
		if err := rows.Scan(&ref.Email, &ref.Phone, &ref.FullName); err != nil {
			return nil, fmt.Errorf("failed to scan reference identity: %w", err)
		}
		identities = append(identities, ref)
	}
	return identities, rows.Err()
}
