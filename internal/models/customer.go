// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

// Package models defines data structures used throughout the AudienceGrid application.
// These models represent synthetic CRM records, viewing events, derived analytics
// results, and API responses.
package models

import (
	"time"
)

// SubscriptionLevel is the paid tier of a customer account.
type SubscriptionLevel string

// Subscription tiers, lowest to highest.
const (
	SubscriptionFree     SubscriptionLevel = "FREE"
	SubscriptionBasic    SubscriptionLevel = "BASIC"
	SubscriptionStandard SubscriptionLevel = "STANDARD"
	SubscriptionPremium  SubscriptionLevel = "PREMIUM"
)

// SubscriptionLevels lists all valid tiers in ascending price order.
var SubscriptionLevels = []SubscriptionLevel{
	SubscriptionFree,
	SubscriptionBasic,
	SubscriptionStandard,
	SubscriptionPremium,
}

// Valid reports whether the tier is one of the known subscription levels.
func (s SubscriptionLevel) Valid() bool {
	switch s {
	case SubscriptionFree, SubscriptionBasic, SubscriptionStandard, SubscriptionPremium:
		return true
	}
	return false
}

// OverlapType classifies which identity fields of a generated customer record
// coincide with an entry of the external reference identity set.
type OverlapType string

// Overlap classifications. OverlapTriple means at least two of the three
// identity fields matched the same reference identity. OverlapDuplicate tags
// the mutated duplicate tranche produced by the generator; duplicates are
// derived from non-overlapping base rows and never count toward the overlap
// ratio.
const (
	OverlapNone      OverlapType = "NONE"
	OverlapEmail     OverlapType = "EMAIL"
	OverlapPhone     OverlapType = "PHONE"
	OverlapName      OverlapType = "NAME"
	OverlapTriple    OverlapType = "TRIPLE"
	OverlapDuplicate OverlapType = "DUPLICATE"
)

// Matched reports whether the classification counts as an overlap with the
// reference set.
func (o OverlapType) Matched() bool {
	switch o {
	case OverlapEmail, OverlapPhone, OverlapName, OverlapTriple:
		return true
	}
	return false
}

// CustomerRecord is one synthetic CRM row. Records are created exactly once
// by the identity generator and are immutable afterwards; CustomerID is
// unique across the full generated set.
//
// Email and Phone are pointers because the generator nulls a controlled
// fraction of them outside the overlap-protected sets (15% of emails, 20% of
// phones by default), mirroring real CRM messiness.
type CustomerRecord struct {
	CustomerID        string            `json:"customer_id"`
	Email             *string           `json:"email,omitempty"`
	Phone             *string           `json:"phone,omitempty"`
	FirstName         string            `json:"first_name"`
	LastName          string            `json:"last_name"`
	Gender            string            `json:"gender"`
	Profession        string            `json:"profession"`
	DateJoined        time.Time         `json:"date_joined"`
	SubscriptionLevel SubscriptionLevel `json:"subscription_level"`
	OverlapType       OverlapType       `json:"overlap_type"`
}

// FullName returns "First Last" as used for name matching.
func (c *CustomerRecord) FullName() string {
	return c.FirstName + " " + c.LastName
}

// ExternalIdentity is one row of the read-only reference identity set the
// classifier matches against. The reference set is owned outside this system
// and is never mutated here.
type ExternalIdentity struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	FullName string `json:"full_name"`
}

// OverlapStats summarises the overlap classification of a generated
// population. Ratio is matched/total and is NaN for an empty population.
type OverlapStats struct {
	Total   int                 `json:"total"`
	Matched int                 `json:"matched"`
	Ratio   float64             `json:"ratio"`
	ByType  map[OverlapType]int `json:"by_type"`
}
