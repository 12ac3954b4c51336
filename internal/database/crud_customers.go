// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/audiencegrid/audiencegrid/internal/logging"
	"github.com/audiencegrid/audiencegrid/internal/models"
)

// InsertCustomers bulk-loads a generated CRM population in a single
// transaction. With overwrite false and a non-empty customers table, the
// load is refused with ErrAlreadyExists; with overwrite true the existing
// population is replaced atomically.
func (db *DB) InsertCustomers(ctx context.Context, records []models.CustomerRecord, overwrite bool) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	existing, err := db.tableCount(ctx, "customers")
	if err != nil {
		return err
	}
	if existing > 0 && !overwrite {
		return fmt.Errorf("%w: customers table has %d rows and overwrite is false", ErrAlreadyExists, existing)
	}

	start := time.Now()
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if overwrite {
		if _, err := tx.ExecContext(ctx, "DELETE FROM customers"); err != nil {
			return fmt.Errorf("failed to clear customers: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO customers (
		customer_id, email, phone, first_name, last_name,
		gender, profession, date_joined, subscription_level, overlap_type
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare customer insert: %w", err)
	}
	defer closeQuietly(stmt)

	for i := range records {
		rec := &records[i]
		if _, err := stmt.ExecContext(ctx,
			rec.CustomerID, rec.Email, rec.Phone, rec.FirstName, rec.LastName,
			rec.Gender, rec.Profession, rec.DateJoined, string(rec.SubscriptionLevel), string(rec.OverlapType),
		); err != nil {
			return fmt.Errorf("failed to insert customer %s: %w", rec.CustomerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit customer load: %w", err)
	}

	logging.Info().
		Int("rows", len(records)).
		Bool("overwrite", overwrite).
		Dur("elapsed", time.Since(start)).
		Msg("Customer population loaded")
	return nil
}

// Customers returns the full CRM population ordered by customer id.
func (db *DB) Customers(ctx context.Context) ([]models.CustomerRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
	SELECT customer_id, email, phone, first_name, last_name,
	       gender, profession, date_joined, subscription_level, overlap_type
	FROM customers
	ORDER BY customer_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer closeQuietly(rows)

	var records []models.CustomerRecord
	for rows.Next() {
		var rec models.CustomerRecord
		var level, overlap string
		if err := rows.Scan(
			&rec.CustomerID, &rec.Email, &rec.Phone, &rec.FirstName, &rec.LastName,
			&rec.Gender, &rec.Profession, &rec.DateJoined, &level, &overlap,
		); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		rec.SubscriptionLevel = models.SubscriptionLevel(level)
		rec.OverlapType = models.OverlapType(overlap)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CustomerIDs returns all base customer ids (duplicate-tranche rows
// excluded) for event attachment.
func (db *DB) CustomerIDs(ctx context.Context) ([]string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
	SELECT customer_id FROM customers
	WHERE overlap_type != 'DUPLICATE'
	ORDER BY customer_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customer ids: %w", err)
	}
	defer closeQuietly(rows)

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan customer id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountCustomers returns the size of the stored population.
func (db *DB) CountCustomers(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return db.tableCount(ctx, "customers")
}

// OverlapBreakdown counts stored customers per overlap classification.
func (db *DB) OverlapBreakdown(ctx context.Context) (map[models.OverlapType]int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
	SELECT overlap_type, COUNT(*)
	FROM customers
	GROUP BY overlap_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlap breakdown: %w", err)
	}
	defer closeQuietly(rows)

	breakdown := make(map[models.OverlapType]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("failed to scan overlap breakdown: %w", err)
		}
		breakdown[models.OverlapType(typ)] = n
	}
	return breakdown, rows.Err()
}
