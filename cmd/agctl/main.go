// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

// Package main implements agctl, the AudienceGrid offline control tool.
//
// agctl seeds a DuckDB database file with a synthetic CRM population and
// viewing log and runs the analytics refresh without requiring a running
// server:
//
//	agctl -db audiencegrid.db seed -rows 100000 -weeks 4
//	agctl -db audiencegrid.db refresh
//	agctl -db audiencegrid.db stats
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/audiencegrid/audiencegrid/internal/analytics"
	"github.com/audiencegrid/audiencegrid/internal/config"
	"github.com/audiencegrid/audiencegrid/internal/crm"
	"github.com/audiencegrid/audiencegrid/internal/database"
	"github.com/audiencegrid/audiencegrid/internal/logging"
	"github.com/audiencegrid/audiencegrid/internal/models"
	"github.com/audiencegrid/audiencegrid/internal/viewing"
)

func main() {
	dbPath := flag.String("db", "audiencegrid.db", "path to the DuckDB database file")
	logLevel := flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	flag.Usage = usage
	flag.Parse()

	logging.Init(logging.Config{Level: *logLevel, Format: "console"})

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fatalf("load configuration: %v", err)
	}
	cfg.Database.Path = *dbPath

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		fatalf("open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "close database: %v\n", err)
		}
	}()

	switch flag.Arg(0) {
	case "seed":
		err = runSeed(ctx, db, cfg, flag.Args()[1:])
	case "refresh":
		err = runRefresh(ctx, db, cfg)
	case "stats":
		err = runStats(ctx, db)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", flag.Arg(0))
		usage()
		os.Exit(2)
	}
	if err != nil {
		fatalf("%v", err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `agctl - AudienceGrid offline control tool

Usage:
  agctl [-db PATH] [-log-level LEVEL] COMMAND [flags]

Commands:
  seed      generate reference identities, CRM population, and viewing log
  refresh   recompute customer profiles and derived analytics tables
  stats     print row counts and the identity overlap breakdown

Seed flags:
  -rows N         CRM population size (default from config)
  -reference N    external reference identity count (default 2x rows)
  -weeks N        weeks of viewing history to synthesize (default 1)
  -overlap F      fraction of customers matching the reference set
  -seed N         deterministic RNG seed (0 uses the clock)
  -overwrite      replace existing data instead of refusing
`)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "agctl: "+format+"\n", args...)
	os.Exit(1)
}

// runSeed executes the full generation pipeline: reference identities, CRM
// population classified against them, then a viewing log for the stored
// customers, one synthesized week at a time.
func runSeed(ctx context.Context, db *database.DB, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	rows := fs.Int("rows", cfg.Generator.TargetRows, "CRM population size")
	refCount := fs.Int("reference", 0, "reference identity count (0 = 2x rows)")
	weeks := fs.Int("weeks", 1, "weeks of viewing history")
	overlap := fs.Float64("overlap", cfg.Generator.OverlapFraction, "overlap fraction")
	seed := fs.Int64("seed", cfg.Generator.Seed, "RNG seed")
	overwrite := fs.Bool("overwrite", false, "replace existing data")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *refCount <= 0 {
		*refCount = *rows * 2
	}
	if *weeks < 1 {
		return fmt.Errorf("weeks must be at least 1, got %d", *weeks)
	}

	fmt.Printf("Seeding %s: %d customers, %d reference identities, %d week(s) of viewing\n",
		cfg.Database.Path, *rows, *refCount, *weeks)

	identities := crm.SynthesizeReferenceIdentities(*refCount, *seed)
	if err := db.InsertReferenceIdentities(ctx, identities, *overwrite); err != nil {
		return fmt.Errorf("insert reference identities: %w", err)
	}

	genCfg := cfg.Generator
	genCfg.OverlapFraction = *overlap
	genCfg.Seed = *seed
	generator := crm.NewGenerator(genCfg, crm.NewCounterSequence(0))
	records, err := generator.Generate(*rows, crm.NewReferenceIndex(identities))
	if err != nil {
		return fmt.Errorf("generate CRM population: %w", err)
	}
	if err := db.InsertCustomers(ctx, records, *overwrite); err != nil {
		return fmt.Errorf("insert customers: %w", err)
	}
	stats := crm.Stats(records)
	fmt.Printf("CRM population stored: %d rows, %d matched (%.1f%%)\n",
		stats.Total, stats.Matched, stats.Ratio*100)

	customerIDs, err := db.CustomerIDs(ctx)
	if err != nil {
		return fmt.Errorf("load customer IDs: %w", err)
	}

	viewCfg := cfg.Viewing
	viewCfg.Seed = *seed
	synth := viewing.NewSynthesizer(viewCfg, customerIDs)

	// One synthesized week per iteration, newest week last.
	bar := progressbar.Default(int64(*weeks))
	now := time.Now().UTC()
	var events []models.ViewingEvent
	for w := *weeks - 1; w >= 0; w-- {
		weekEnd := now.AddDate(0, 0, -7*w)
		events = append(events, synth.Generate(weekEnd)...)
		_ = bar.Add(1)
	}
	if err := db.InsertViewingEvents(ctx, events, viewCfg.BatchSize, *overwrite); err != nil {
		return fmt.Errorf("insert viewing events: %w", err)
	}
	fmt.Printf("Viewing log stored: %d events across %d customer(s)\n", len(events), len(customerIDs))

	return runRefresh(ctx, db, cfg)
}

// runRefresh recomputes customer profiles and the derived analytics tables.
func runRefresh(ctx context.Context, db *database.DB, cfg *config.Config) error {
	refresher := analytics.NewRefresher(db, cfg.Analytics.Workers)
	result, err := refresher.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("analytics refresh: %w", err)
	}
	fmt.Printf("Refresh complete in %s: %d profiles, %d programmes, %d time buckets, %d device groups, %d daily rows\n",
		result.DurationHuman, result.Profiles, result.Programmes,
		result.TimeBuckets, result.DeviceGroups, result.DailyRows)
	return nil
}

// runStats prints row counts and the identity overlap breakdown.
func runStats(ctx context.Context, db *database.DB) error {
	customers, err := db.CountCustomers(ctx)
	if err != nil {
		return fmt.Errorf("count customers: %w", err)
	}
	events, err := db.CountViewingEvents(ctx)
	if err != nil {
		return fmt.Errorf("count viewing events: %w", err)
	}
	profiles, err := db.CountCustomerProfiles(ctx)
	if err != nil {
		return fmt.Errorf("count profiles: %w", err)
	}
	breakdown, err := db.OverlapBreakdown(ctx)
	if err != nil {
		return fmt.Errorf("overlap breakdown: %w", err)
	}

	fmt.Printf("Customers:      %d\n", customers)
	fmt.Printf("Viewing events: %d\n", events)
	fmt.Printf("Profiles:       %d\n", profiles)
	fmt.Println("Overlap breakdown:")
	var total, matched int
	for _, ot := range []models.OverlapType{
		models.OverlapTriple, models.OverlapEmail, models.OverlapPhone,
		models.OverlapName, models.OverlapNone, models.OverlapDuplicate,
	} {
		n := breakdown[ot]
		total += n
		if ot.Matched() {
			matched += n
		}
		fmt.Printf("  %-10s %d\n", string(ot), n)
	}
	if total > 0 {
		fmt.Printf("Matched ratio:  %.1f%%\n", float64(matched)/float64(total)*100)
	}
	return nil
}
