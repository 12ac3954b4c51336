// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package crm

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/audiencegrid/audiencegrid/internal/config"
	"github.com/audiencegrid/audiencegrid/internal/models"
)

func testGeneratorConfig() config.GeneratorConfig {
	return config.GeneratorConfig{
		TargetRows:        100,
		OverlapFraction:   0.25,
		TripleWeight:      8,
		EmailWeight:       10,
		PhoneWeight:       7,
		NameWeight:        0,
		EmailMissingRate:  0.15,
		PhoneMissingRate:  0.20,
		DuplicateFraction: 0.10,
		JoinDateRangeDays: 3650,
		Seed:              42,
	}
}

// distinctRefs builds a reference set no generated value can accidentally
// match: emails on a reserved domain, 11-digit phones (generated phones
// normalize to 10 digits), names outside the generator pools.
func distinctRefs(n int) *ReferenceIndex {
	identities := make([]models.ExternalIdentity, n)
	for i := range identities {
		identities[i] = models.ExternalIdentity{
			Email:    fmt.Sprintf("ref%d@audience.invalid", i),
			Phone:    fmt.Sprintf("+33 9 00 00 %02d %02d", i/100, i%100),
			FullName: fmt.Sprintf("Refprenom%d Refnom%d", i, i),
		}
	}
	return NewReferenceIndex(identities)
}

func TestGenerateRejectsNonPositiveCount(t *testing.T) {
	g := NewGenerator(testGeneratorConfig(), NewCounterSequence(0))
	for _, n := range []int{0, -1} {
		if _, err := g.Generate(n, nil); !errors.Is(err, ErrInvalidRowCount) {
			t.Errorf("Generate(%d) error = %v, want ErrInvalidRowCount", n, err)
		}
	}
}

func TestGenerateCountsAndUniqueness(t *testing.T) {
	g := NewGenerator(testGeneratorConfig(), NewCounterSequence(0))
	records, err := g.Generate(100, distinctRefs(500))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(records) != 100 {
		t.Fatalf("len(records) = %d, want 100", len(records))
	}

	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if seen[rec.CustomerID] {
			t.Errorf("duplicate customer id %s", rec.CustomerID)
		}
		seen[rec.CustomerID] = true
		if !rec.SubscriptionLevel.Valid() {
			t.Errorf("%s: invalid subscription level %q", rec.CustomerID, rec.SubscriptionLevel)
		}
	}
}

func TestGenerateOverlapDistribution(t *testing.T) {
	g := NewGenerator(testGeneratorConfig(), NewCounterSequence(0))
	records, err := g.Generate(100, distinctRefs(500))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	stats := Stats(records)

	// 100 rows, 25% overlap at weights 8:10:7:0 and a 10% duplicate
	// tranche. The reference set is unmatchable by accident, so the class
	// counts are exact.
	want := map[models.OverlapType]int{
		models.OverlapTriple:    8,
		models.OverlapEmail:     10,
		models.OverlapPhone:     7,
		models.OverlapNone:      65,
		models.OverlapDuplicate: 10,
	}
	for typ, n := range want {
		if stats.ByType[typ] != n {
			t.Errorf("ByType[%s] = %d, want %d", typ, stats.ByType[typ], n)
		}
	}
	if stats.Matched != 25 {
		t.Errorf("Matched = %d, want 25", stats.Matched)
	}
}

func TestGenerateOverlapProtectedFields(t *testing.T) {
	cfg := testGeneratorConfig()
	cfg.EmailMissingRate = 1.0 // null every unprotected email
	cfg.PhoneMissingRate = 1.0

	g := NewGenerator(cfg, NewCounterSequence(0))
	records, err := g.Generate(100, distinctRefs(500))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, rec := range records {
		switch rec.OverlapType {
		case models.OverlapTriple:
			if rec.Email == nil || rec.Phone == nil {
				t.Errorf("%s: TRIPLE row lost a protected field", rec.CustomerID)
			}
		case models.OverlapEmail:
			if rec.Email == nil {
				t.Errorf("%s: EMAIL row lost its email", rec.CustomerID)
			}
		case models.OverlapPhone:
			if rec.Phone == nil {
				t.Errorf("%s: PHONE row lost its phone", rec.CustomerID)
			}
		case models.OverlapNone:
			if rec.Email != nil || rec.Phone != nil {
				t.Errorf("%s: unprotected field survived full missingness", rec.CustomerID)
			}
		}
	}
}

func TestGenerateDuplicates(t *testing.T) {
	g := NewGenerator(testGeneratorConfig(), NewCounterSequence(0))
	records, err := g.Generate(100, distinctRefs(500))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	base := make(map[string]bool)
	for _, rec := range records {
		if rec.OverlapType != models.OverlapDuplicate {
			base[rec.CustomerID] = true
		}
	}

	dups := 0
	for _, rec := range records {
		if rec.OverlapType != models.OverlapDuplicate {
			continue
		}
		dups++
		origID, ok := strings.CutSuffix(rec.CustomerID, "_DUP")
		if !ok {
			t.Errorf("duplicate id %s lacks _DUP suffix", rec.CustomerID)
			continue
		}
		if !base[origID] {
			t.Errorf("duplicate %s has no base record", rec.CustomerID)
		}
	}
	if dups != 10 {
		t.Errorf("duplicate count = %d, want 10", dups)
	}
}

func TestGenerateWithoutReferenceSet(t *testing.T) {
	g := NewGenerator(testGeneratorConfig(), NewCounterSequence(0))
	records, err := g.Generate(50, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, rec := range records {
		if rec.OverlapType.Matched() {
			t.Errorf("%s: overlap %s with no reference set", rec.CustomerID, rec.OverlapType)
		}
	}
}

func TestGenerateReproducible(t *testing.T) {
	refs := distinctRefs(500)
	a, err := NewGenerator(testGeneratorConfig(), NewCounterSequence(0)).Generate(100, refs)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := NewGenerator(testGeneratorConfig(), NewCounterSequence(0)).Generate(100, refs)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for i := range a {
		if a[i].CustomerID != b[i].CustomerID || a[i].OverlapType != b[i].OverlapType {
			t.Fatalf("row %d diverged between identically seeded runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSequenceContinuation(t *testing.T) {
	seq := NewCounterSequence(100)
	if got := seq.Next(); got != 101 {
		t.Errorf("Next() = %d, want 101", got)
	}
	if got := seq.Next(); got != 102 {
		t.Errorf("Next() = %d, want 102", got)
	}
}
