// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

// Package viewing synthesises the append-only viewership event log: one week
// of half-hour programme slots with prime-time-heavy sampling, plausible
// device/network distributions and French ISP-correlated IP ranges.
package viewing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/audiencegrid/audiencegrid/internal/config"
	"github.com/audiencegrid/audiencegrid/internal/models"
)

// slotsPerWeek is 7 days of half-hour slots.
const slotsPerWeek = 336

// baselinePerSlot is the unweighted event count per slot at multiplier 1.
const baselinePerSlot = 100

// Synthesizer generates viewing events. Not safe for concurrent use; create
// one per generation run.
type Synthesizer struct {
	cfg         config.ViewingConfig
	customerIDs []string
	rng         *rand.Rand
}

// NewSynthesizer creates a Synthesizer. customerIDs is the pool events
// attach to; an empty pool produces fully unidentified traffic. A zero
// cfg.Seed derives the PRNG seed from the clock.
func NewSynthesizer(cfg config.ViewingConfig, customerIDs []string) *Synthesizer {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Synthesizer{
		cfg:         cfg,
		customerIDs: customerIDs,
		rng:         rand.New(rand.NewSource(seed)), //nolint:gosec // synthetic data, not crypto
	}
}

// Generate produces one week of events for the half-hour slots ending at
// weekEnd. Slot volumes follow the time-of-day weighting with a weekend
// boost; the attach fraction decides how many events carry a customer id.
func (s *Synthesizer) Generate(weekEnd time.Time) []models.ViewingEvent {
	mult := s.cfg.SampleMultiplier
	if mult < 1 {
		mult = 1
	}
	attach := s.cfg.AttachCustomerPct
	if attach < 0 {
		attach = 0
	}
	if attach > 1 {
		attach = 1
	}
	if len(s.customerIDs) == 0 {
		attach = 0
	}

	weekStart := weekEnd.UTC().Truncate(30 * time.Minute).Add(-slotsPerWeek * 30 * time.Minute)

	var events []models.ViewingEvent
	for slot := 0; slot < slotsPerWeek; slot++ {
		slotStart := weekStart.Add(time.Duration(slot) * 30 * time.Minute)
		n := int(float64(baselinePerSlot)*slotWeight(slotStart)) * mult
		for i := 0; i < n; i++ {
			events = append(events, s.event(slotStart, attach))
		}
	}
	return events
}

// slotWeight scales slot volume by time of day, with evening prime time the
// clear peak, plus a weekend boost.
func slotWeight(slotStart time.Time) float64 {
	var w float64
	switch h := slotStart.Hour(); {
	case h < 6:
		w = 0.15
	case h < 9:
		w = 0.6
	case h < 12:
		w = 0.5
	case h < 14:
		w = 0.8
	case h < 18:
		w = 0.5
	case h < 20:
		w = 1.2
	case h < 23:
		w = 2.0
	default:
		w = 0.6
	}
	if d := slotStart.Weekday(); d == time.Saturday || d == time.Sunday {
		w *= 1.2
	}
	return w
}

func (s *Synthesizer) event(slotStart time.Time, attach float64) models.ViewingEvent {
	watch := 30 + s.rng.Intn(1771) // 30..1800 seconds
	adBreaks := watch / 180
	provider := s.pickISP()
	location := geoPool[s.rng.Intn(len(geoPool))]
	device := pickWeighted(s.rng, devicePool)
	osNames := osByDevice[device]

	ev := models.ViewingEvent{
		LogID:          uuid.New(),
		Channel:        channels[s.rng.Intn(len(channels))],
		EventTime:      slotStart.Add(time.Duration(s.rng.Intn(30*60)) * time.Second),
		SlotStartTime:  slotStart,
		ProgrammeID:    fmt.Sprintf("TF1-%s", slotStart.Format("20060102-1504")),
		DeviceType:     models.DeviceType(device),
		OSName:         osNames[s.rng.Intn(len(osNames))],
		ConnectionType: pickWeighted(s.rng, connectionPool),
		BitrateKbps:    800 + s.rng.Intn(5701), // 800..6500 kbps
		BufferEvents:   s.rng.Intn(6),
		RebufferRatio:  s.rng.Float64() * 0.08,
		WatchSeconds:   watch,
		AdBreaks:       adBreaks,
		AdTotalSeconds: adBreaks * 30,
		EventType:      models.EventType(pickWeighted(s.rng, eventTypePool)),
		IPAddress: fmt.Sprintf("%d.%d.%d.%d",
			provider.firstOctet, s.rng.Intn(256), s.rng.Intn(256), 1+s.rng.Intn(254)),
		ISP:     provider.name,
		Country: "France",
		Region:  location.region,
		City:    location.city,
	}
	if s.rng.Float64() < attach {
		id := s.customerIDs[s.rng.Intn(len(s.customerIDs))]
		ev.CustomerID = &id
	}
	return ev
}

func (s *Synthesizer) pickISP() isp {
	total := 0
	for _, p := range ispPool {
		total += p.weight
	}
	r := s.rng.Intn(total)
	for _, p := range ispPool {
		if r < p.weight {
			return p
		}
		r -= p.weight
	}
	return ispPool[0]
}

func pickWeighted(rng *rand.Rand, pool []weightedString) string {
	total := 0
	for _, e := range pool {
		total += e.weight
	}
	r := rng.Intn(total)
	for _, e := range pool {
		if r < e.weight {
			return e.value
		}
		r -= e.weight
	}
	return pool[0].value
}
