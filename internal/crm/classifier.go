// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package crm

import (
	"math"

	"github.com/audiencegrid/audiencegrid/internal/models"
)

// ReferenceIndex indexes the external reference identity set for O(1)
// field matching. The reference set is read-only; the index is built once
// and shared.
//
// When several reference identities normalize to the same key (duplicate
// emails in the reference CRM, say), the first one wins. Matching only needs
// identity equality, not completeness, so this is sufficient.
type ReferenceIndex struct {
	identities []models.ExternalIdentity
	byEmail    map[string]int
	byPhone    map[string]int
	byName     map[string]int
}

// NewReferenceIndex builds a ReferenceIndex over the given identities.
// Blank fields are not indexed.
func NewReferenceIndex(identities []models.ExternalIdentity) *ReferenceIndex {
	ix := &ReferenceIndex{
		identities: identities,
		byEmail:    make(map[string]int, len(identities)),
		byPhone:    make(map[string]int, len(identities)),
		byName:     make(map[string]int, len(identities)),
	}
	for i, ref := range identities {
		if key := NormalizeEmail(ref.Email); key != "" {
			if _, ok := ix.byEmail[key]; !ok {
				ix.byEmail[key] = i
			}
		}
		if key := NormalizePhone(ref.Phone); key != "" {
			if _, ok := ix.byPhone[key]; !ok {
				ix.byPhone[key] = i
			}
		}
		if key := NormalizeName(ref.FullName); key != "" {
			if _, ok := ix.byName[key]; !ok {
				ix.byName[key] = i
			}
		}
	}
	return ix
}

// Size returns the number of indexed reference identities.
func (ix *ReferenceIndex) Size() int {
	return len(ix.identities)
}

// Identity returns the reference identity at the given index.
func (ix *ReferenceIndex) Identity(i int) models.ExternalIdentity {
	return ix.identities[i]
}

// Classify determines the overlap classification of a customer record
// against the reference set.
//
// Each of email, phone and full name is looked up independently. If two or
// more fields match the same reference identity the record is TRIPLE. If
// exactly one field matches, the record gets that field's tag. If multiple
// fields match but against different reference identities, field priority
// resolves the tag: EMAIL > PHONE > NAME. No match is NONE.
func (ix *ReferenceIndex) Classify(rec *models.CustomerRecord) models.OverlapType {
	const noMatch = -1

	emailRef, phoneRef, nameRef := noMatch, noMatch, noMatch
	if rec.Email != nil {
		if i, ok := ix.byEmail[NormalizeEmail(*rec.Email)]; ok {
			emailRef = i
		}
	}
	if rec.Phone != nil {
		if i, ok := ix.byPhone[NormalizePhone(*rec.Phone)]; ok {
			phoneRef = i
		}
	}
	if i, ok := ix.byName[NormalizeName(rec.FullName())]; ok {
		nameRef = i
	}

	matched := 0
	for _, ref := range [3]int{emailRef, phoneRef, nameRef} {
		if ref != noMatch {
			matched++
		}
	}

	switch {
	case matched == 0:
		return models.OverlapNone
	case matched >= 2 && sameReference(emailRef, phoneRef, nameRef):
		return models.OverlapTriple
	case emailRef != noMatch:
		return models.OverlapEmail
	case phoneRef != noMatch:
		return models.OverlapPhone
	default:
		return models.OverlapName
	}
}

// sameReference reports whether at least two of the matched fields point at
// the same reference identity.
func sameReference(emailRef, phoneRef, nameRef int) bool {
	if emailRef != -1 && emailRef == phoneRef {
		return true
	}
	if emailRef != -1 && emailRef == nameRef {
		return true
	}
	if phoneRef != -1 && phoneRef == nameRef {
		return true
	}
	return false
}

// Stats computes population-level overlap statistics. The ratio is
// matched/total; an empty population yields NaN rather than a panic, and
// downstream consumers treat NaN as "undefined".
func Stats(records []models.CustomerRecord) models.OverlapStats {
	stats := models.OverlapStats{
		Total:  len(records),
		ByType: make(map[models.OverlapType]int),
	}
	for i := range records {
		t := records[i].OverlapType
		stats.ByType[t]++
		if t.Matched() {
			stats.Matched++
		}
	}
	if stats.Total == 0 {
		stats.Ratio = math.NaN()
	} else {
		stats.Ratio = float64(stats.Matched) / float64(stats.Total)
	}
	return stats
}
