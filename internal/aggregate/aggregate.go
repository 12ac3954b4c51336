// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

// Package aggregate computes the per-customer viewing rollup as a pure
// partitioned reduction over the immutable event log. Events are sharded by
// customer id hash across a worker pool; each customer's events land in
// exactly one shard, so the final combine is a plain union with no
// cross-shard conflicts. The programme, peak-hour, device and daily
// aggregates live in internal/database as SQL reductions instead.
package aggregate

import (
	"context"
	"hash/fnv"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/audiencegrid/audiencegrid/internal/models"
)

// accumulator carries the running reduction state for one customer.
type accumulator struct {
	customerID string

	totalEvents  int
	days         map[string]struct{}
	programmes   map[string]struct{}
	watchSeconds int64
	adSeconds    int64

	deviceCounts map[string]int
	connCounts   map[string]int

	bitrateSum  int64
	bufferSum   int64
	rebufferSum float64

	first time.Time
	last  time.Time

	// Latest event by (timestamp, log id); carries the location fields.
	latestTime   time.Time
	latestLogID  string
	latestRegion string
	latestCity   string
	latestISP    string
}

func newAccumulator(customerID string) *accumulator {
	return &accumulator{
		customerID:   customerID,
		days:         make(map[string]struct{}),
		programmes:   make(map[string]struct{}),
		deviceCounts: make(map[string]int),
		connCounts:   make(map[string]int),
	}
}

func (a *accumulator) add(ev *models.ViewingEvent) {
	a.totalEvents++
	a.days[ev.EventTime.UTC().Format("2006-01-02")] = struct{}{}
	if ev.ProgrammeID != "" {
		a.programmes[ev.ProgrammeID] = struct{}{}
	}
	a.watchSeconds += int64(ev.WatchSeconds)
	a.adSeconds += int64(ev.AdTotalSeconds)
	a.deviceCounts[string(ev.DeviceType)]++
	a.connCounts[ev.ConnectionType]++
	a.bitrateSum += int64(ev.BitrateKbps)
	a.bufferSum += int64(ev.BufferEvents)
	a.rebufferSum += ev.RebufferRatio

	if a.first.IsZero() || ev.EventTime.Before(a.first) {
		a.first = ev.EventTime
	}
	if ev.EventTime.After(a.last) {
		a.last = ev.EventTime
	}
	if laterEvent(ev.EventTime, ev.LogID.String(), a.latestTime, a.latestLogID) {
		a.latestTime = ev.EventTime
		a.latestLogID = ev.LogID.String()
		a.latestRegion = ev.Region
		a.latestCity = ev.City
		a.latestISP = ev.ISP
	}
}

// laterEvent reports whether event (t, id) supersedes the current latest
// (curT, curID). Equal timestamps fall back to comparing log ids, greater id
// winning, so the latest-value fields are independent of input order.
func laterEvent(t time.Time, id string, curT time.Time, curID string) bool {
	if curID == "" {
		return true
	}
	if !t.Equal(curT) {
		return t.After(curT)
	}
	return id > curID
}

func (a *accumulator) summary() models.CustomerViewingSummary {
	n := float64(a.totalEvents)
	return models.CustomerViewingSummary{
		CustomerID:          a.customerID,
		TotalEvents:         a.totalEvents,
		ActiveDays:          len(a.days),
		UniqueProgrammes:    len(a.programmes),
		TotalWatchSeconds:   a.watchSeconds,
		AvgWatchSeconds:     float64(a.watchSeconds) / n,
		TotalAdSeconds:      a.adSeconds,
		PreferredDevice:     mode(a.deviceCounts),
		PreferredConnection: mode(a.connCounts),
		AvgBitrateKbps:      float64(a.bitrateSum) / n,
		AvgBufferEvents:     float64(a.bufferSum) / n,
		AvgRebufferRatio:    a.rebufferSum / n,
		LastRegion:          a.latestRegion,
		LastCity:            a.latestCity,
		LastISP:             a.latestISP,
		FirstViewing:        a.first,
		LastViewing:         a.last,
		ViewingSpanDays:     spanDays(a.first, a.last),
	}
}

// mode returns the most frequent key; among keys sharing the maximal count
// the lexicographically smallest wins, so the result does not depend on map
// iteration order.
func mode(counts map[string]int) string {
	best, bestCount := "", -1
	for k, c := range counts {
		if c > bestCount || (c == bestCount && k < best) {
			best, bestCount = k, c
		}
	}
	return best
}

// spanDays is the inclusive calendar-day span between two timestamps, never
// less than 1 when events exist.
func spanDays(first, last time.Time) int {
	f := first.UTC().Truncate(24 * time.Hour)
	l := last.UTC().Truncate(24 * time.Hour)
	return int(l.Sub(f).Hours()/24) + 1
}

// Rollup reduces the event log into one CustomerViewingSummary per
// identified customer, using up to workers goroutines. Events without a
// customer id are skipped. The output is sorted by customer id and is
// identical across runs and worker counts for the same input.
func Rollup(ctx context.Context, events []models.ViewingEvent, workers int) ([]models.CustomerViewingSummary, error) {
	if workers < 1 {
		workers = 1
	}

	shards := make([]map[string]*accumulator, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		shards[w] = make(map[string]*accumulator)
		g.Go(func() error {
			acc := shards[w]
			for i := range events {
				if i%4096 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				ev := &events[i]
				if ev.CustomerID == nil {
					continue
				}
				id := *ev.CustomerID
				if int(shardFor(id))%workers != w {
					continue
				}
				a, ok := acc[id]
				if !ok {
					a = newAccumulator(id)
					acc[id] = a
				}
				a.add(ev)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []models.CustomerViewingSummary
	for _, shard := range shards {
		for _, a := range shard {
			out = append(out, a.summary())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out, nil
}

func shardFor(customerID string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(customerID))
	return h.Sum32()
}
