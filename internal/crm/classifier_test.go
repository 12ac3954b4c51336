// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package crm

import (
	"math"
	"testing"

	"github.com/audiencegrid/audiencegrid/internal/models"
)

func strPtr(s string) *string { return &s }

func testRefs() *ReferenceIndex {
	return NewReferenceIndex([]models.ExternalIdentity{
		{Email: "marie.dubois@orange.fr", Phone: "06 11 22 33 44", FullName: "Marie Dubois"},
		{Email: "jean.martin@free.fr", Phone: "07 55 66 77 88", FullName: "Jean Martin"},
		{Email: "sophie.bernard@sfr.fr", Phone: "06 99 88 77 66", FullName: "Sophie Bernard"},
	})
}

func TestClassify(t *testing.T) {
	ix := testRefs()

	tests := []struct {
		name string
		rec  models.CustomerRecord
		want models.OverlapType
	}{
		{
			name: "no match",
			rec: models.CustomerRecord{
				Email:     strPtr("nobody@example.com"),
				Phone:     strPtr("01 00 00 00 00"),
				FirstName: "Luc",
				LastName:  "Petit",
			},
			want: models.OverlapNone,
		},
		{
			name: "email only",
			rec: models.CustomerRecord{
				Email:     strPtr("marie.dubois@orange.fr"),
				Phone:     strPtr("01 00 00 00 00"),
				FirstName: "Luc",
				LastName:  "Petit",
			},
			want: models.OverlapEmail,
		},
		{
			name: "phone only",
			rec: models.CustomerRecord{
				Email:     strPtr("nobody@example.com"),
				Phone:     strPtr("07 55 66 77 88"),
				FirstName: "Luc",
				LastName:  "Petit",
			},
			want: models.OverlapPhone,
		},
		{
			name: "name only",
			rec: models.CustomerRecord{
				Email:     strPtr("nobody@example.com"),
				FirstName: "Sophie",
				LastName:  "Bernard",
			},
			want: models.OverlapName,
		},
		{
			name: "email and phone of same reference",
			rec: models.CustomerRecord{
				Email:     strPtr("marie.dubois@orange.fr"),
				Phone:     strPtr("06 11 22 33 44"),
				FirstName: "Luc",
				LastName:  "Petit",
			},
			want: models.OverlapTriple,
		},
		{
			name: "phone and name of same reference",
			rec: models.CustomerRecord{
				Phone:     strPtr("06 99 88 77 66"),
				FirstName: "Sophie",
				LastName:  "Bernard",
			},
			want: models.OverlapTriple,
		},
		{
			name: "email and name of different references takes email priority",
			rec: models.CustomerRecord{
				Email:     strPtr("marie.dubois@orange.fr"),
				FirstName: "Jean",
				LastName:  "Martin",
			},
			want: models.OverlapEmail,
		},
		{
			name: "phone and name of different references takes phone priority",
			rec: models.CustomerRecord{
				Phone:     strPtr("06 11 22 33 44"),
				FirstName: "Jean",
				LastName:  "Martin",
			},
			want: models.OverlapPhone,
		},
		{
			name: "nil email and phone still matches name",
			rec: models.CustomerRecord{
				FirstName: "Marie",
				LastName:  "Dubois",
			},
			want: models.OverlapName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ix.Classify(&tt.rec); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassifyNormalization(t *testing.T) {
	ix := testRefs()

	// Case, diacritics and phone punctuation must not defeat a match.
	rec := models.CustomerRecord{
		Email:     strPtr("  MARIE.DUBOIS@Orange.FR "),
		Phone:     strPtr("+33 (0)6-11-22-33-44"),
		FirstName: "MARÍE",
		LastName:  "Dúbois",
	}
	if got := ix.Classify(&rec); got != models.OverlapTriple {
		t.Errorf("Classify() = %s, want TRIPLE", got)
	}

	// The phone normalizer keeps digits only, so "+33 (0)6..." gains a
	// country prefix and no longer equals "06...". Verify the bare form.
	bare := models.CustomerRecord{Phone: strPtr("0611223344"), FirstName: "X", LastName: "Y"}
	if got := ix.Classify(&bare); got != models.OverlapPhone {
		t.Errorf("Classify(bare phone) = %s, want PHONE", got)
	}
}

func TestReferenceIndexFirstWins(t *testing.T) {
	ix := NewReferenceIndex([]models.ExternalIdentity{
		{Email: "shared@example.com", Phone: "06 00 00 00 01", FullName: "First Owner"},
		{Email: "shared@example.com", Phone: "06 00 00 00 02", FullName: "Second Owner"},
	})

	// Email and phone resolve to the first identity, so both fields point at
	// the same reference and the record is TRIPLE, not EMAIL.
	rec := models.CustomerRecord{
		Email: strPtr("shared@example.com"),
		Phone: strPtr("06 00 00 00 01"),
	}
	if got := ix.Classify(&rec); got != models.OverlapTriple {
		t.Errorf("Classify() = %s, want TRIPLE", got)
	}
}

func TestStats(t *testing.T) {
	records := []models.CustomerRecord{
		{OverlapType: models.OverlapNone},
		{OverlapType: models.OverlapEmail},
		{OverlapType: models.OverlapTriple},
		{OverlapType: models.OverlapDuplicate},
	}

	stats := Stats(records)
	if stats.Total != 4 {
		t.Errorf("Total = %d, want 4", stats.Total)
	}
	if stats.Matched != 2 {
		t.Errorf("Matched = %d, want 2 (duplicates do not count as overlap)", stats.Matched)
	}
	if stats.Ratio != 0.5 {
		t.Errorf("Ratio = %v, want 0.5", stats.Ratio)
	}
	if stats.ByType[models.OverlapDuplicate] != 1 {
		t.Errorf("ByType[DUPLICATE] = %d, want 1", stats.ByType[models.OverlapDuplicate])
	}
}

func TestStatsEmptyPopulation(t *testing.T) {
	stats := Stats(nil)
	if stats.Total != 0 || stats.Matched != 0 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if !math.IsNaN(stats.Ratio) {
		t.Errorf("Ratio = %v, want NaN for empty population", stats.Ratio)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		fn   func(string) string
		in   string
		want string
	}{
		{NormalizeEmail, "  User@Example.COM ", "user@example.com"},
		{NormalizeEmail, "", ""},
		{NormalizePhone, "+33 (0)6-11-22-33-44", "330611223344"},
		{NormalizePhone, "06 11 22 33 44", "0611223344"},
		{NormalizeName, "  Marie   DUBOIS ", "marie dubois"},
		{NormalizeName, "Hélène Müller", "helene muller"},
	}
	for _, tt := range tests {
		if got := tt.fn(tt.in); got != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
