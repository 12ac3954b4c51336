// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

// Package crm implements synthetic CRM generation with controlled identity
// overlap against an external reference set, and the overlap classifier that
// tags each generated record.
package crm

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"github.com/audiencegrid/audiencegrid/internal/config"
	"github.com/audiencegrid/audiencegrid/internal/models"
)

// ErrInvalidRowCount rejects non-positive generation targets.
var ErrInvalidRowCount = errors.New("target row count must be positive")

// Sequence allocates unique customer row numbers. A single Sequence owns the
// id space for a generated population, so synthesis can be parallelized
// without identifier collisions.
type Sequence interface {
	Next() int64
}

type counterSequence struct {
	n atomic.Int64
}

// NewCounterSequence returns a Sequence whose first Next() call yields
// start+1. Pass the current maximum row number to continue an existing
// population without collisions.
func NewCounterSequence(start int64) Sequence {
	s := &counterSequence{}
	s.n.Store(start)
	return s
}

func (s *counterSequence) Next() int64 {
	return s.n.Add(1)
}

// Generator synthesizes CustomerRecord populations. It owns no storage; the
// caller persists the returned slice. A Generator is not safe for concurrent
// use because it holds a single PRNG stream; create one per generation run.
type Generator struct {
	cfg config.GeneratorConfig
	seq Sequence
	rng *rand.Rand
	now time.Time
}

// NewGenerator creates a Generator with the given configuration and
// identifier sequence. A zero cfg.Seed derives the PRNG seed from the clock;
// a non-zero seed makes the population reproducible.
func NewGenerator(cfg config.GeneratorConfig, seq Sequence) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		cfg: cfg,
		seq: seq,
		rng: rand.New(rand.NewSource(seed)), //nolint:gosec // synthetic data, not crypto
		now: time.Now().UTC(),
	}
}

// overlapPlan fixes how many earmarked rows go to each overlap class.
type overlapPlan struct {
	triple, email, phone, name int
}

func (p overlapPlan) total() int {
	return p.triple + p.email + p.phone + p.name
}

// planOverlap distributes the overlap target across classes proportionally
// to the configured weights, giving the remainder to the phone class (the
// smallest default weight) so the counts sum exactly.
func planOverlap(cfg config.GeneratorConfig, target int) overlapPlan {
	sum := cfg.TripleWeight + cfg.EmailWeight + cfg.PhoneWeight + cfg.NameWeight
	if target <= 0 || sum <= 0 {
		return overlapPlan{}
	}
	p := overlapPlan{
		triple: int(float64(target)*float64(cfg.TripleWeight)/float64(sum) + 0.5),
		email:  int(float64(target)*float64(cfg.EmailWeight)/float64(sum) + 0.5),
		name:   int(float64(target)*float64(cfg.NameWeight)/float64(sum) + 0.5),
	}
	p.phone = target - p.triple - p.email - p.name
	if p.phone < 0 {
		p.phone = 0
	}
	return p
}

// Generate produces exactly n CustomerRecord values with unique identifiers.
//
// A configured fraction of the base rows is earmarked to overlap the
// reference set on one or more identity fields; the final overlap tag on
// every record comes from classifying the synthesized fields against refs,
// so the tag is consistent with what actually matches (including accidental
// matches among non-earmarked rows). A further configured fraction of the
// target is emitted as mutated duplicates of non-overlapping base rows,
// id-suffixed "_DUP" and tagged DUPLICATE, without changing the total count.
//
// Returns ErrInvalidRowCount when n <= 0. The refs index may be nil or
// empty, in which case no overlap is produced.
func (g *Generator) Generate(n int, refs *ReferenceIndex) ([]models.CustomerRecord, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRowCount, n)
	}

	dupCount := int(float64(n)*g.cfg.DuplicateFraction + 0.5)
	baseCount := n - dupCount

	overlapTarget := int(float64(n)*g.cfg.OverlapFraction + 0.5)
	if refs == nil || refs.Size() == 0 {
		overlapTarget = 0
	}
	// Duplicates never count toward overlap, so all overlap lands on the
	// base tranche.
	if overlapTarget > baseCount {
		overlapTarget = baseCount
	}
	plan := planOverlap(g.cfg, overlapTarget)

	records := make([]models.CustomerRecord, 0, n)
	for i := 0; i < baseCount; i++ {
		class := classForPosition(plan, i)
		rec := g.synthesize(class, refs)
		if refs != nil && refs.Size() > 0 {
			rec.OverlapType = refs.Classify(&rec)
		}
		records = append(records, rec)
	}

	records = g.appendDuplicates(records, dupCount)
	return records, nil
}

// classForPosition maps a base-row ordinal to its earmarked class by the
// plan's thresholds: the first rows are TRIPLE, then EMAIL, PHONE, NAME,
// then NONE.
func classForPosition(p overlapPlan, i int) models.OverlapType {
	switch {
	case i < p.triple:
		return models.OverlapTriple
	case i < p.triple+p.email:
		return models.OverlapEmail
	case i < p.triple+p.email+p.phone:
		return models.OverlapPhone
	case i < p.total():
		return models.OverlapName
	default:
		return models.OverlapNone
	}
}

// synthesize builds one customer record with the given earmarked class.
func (g *Generator) synthesize(class models.OverlapType, refs *ReferenceIndex) models.CustomerRecord {
	rowID := g.seq.Next()

	firstName := firstNames[rowID%int64(len(firstNames))]
	lastName := lastNames[rowID%int64(len(lastNames))]
	email := fmt.Sprintf("%s.%s@%s",
		asciiFoldLower(firstName), asciiFoldLower(lastName),
		emailDomains[rowID%int64(len(emailDomains))])
	phone := g.randomPhone(rowID)

	var ref models.ExternalIdentity
	if class.Matched() {
		ref = refs.Identity(g.rng.Intn(refs.Size()))
	}
	switch class {
	case models.OverlapTriple:
		email, phone = ref.Email, ref.Phone
		firstName, lastName = splitFullName(ref.FullName, firstName, lastName)
	case models.OverlapEmail:
		email = ref.Email
	case models.OverlapPhone:
		phone = ref.Phone
	case models.OverlapName:
		firstName, lastName = splitFullName(ref.FullName, firstName, lastName)
	}

	joinRange := g.cfg.JoinDateRangeDays
	if joinRange <= 0 {
		joinRange = 1
	}
	rec := models.CustomerRecord{
		CustomerID:        fmt.Sprintf("SF1-%010d", rowID),
		FirstName:         firstName,
		LastName:          lastName,
		Gender:            gender(rowID),
		Profession:        professions[rowID%int64(len(professions))],
		DateJoined:        g.now.AddDate(0, 0, -g.rng.Intn(joinRange)).Truncate(24 * time.Hour),
		SubscriptionLevel: models.SubscriptionLevels[rowID%int64(len(models.SubscriptionLevels))],
		OverlapType:       class,
	}

	// Missingness applies only outside the overlap-protected fields: an
	// earmarked email/phone must survive so the classifier can match it.
	emailProtected := class == models.OverlapTriple || class == models.OverlapEmail
	phoneProtected := class == models.OverlapTriple || class == models.OverlapPhone
	if emailProtected || g.rng.Float64() >= g.cfg.EmailMissingRate {
		rec.Email = &email
	}
	if phoneProtected || g.rng.Float64() >= g.cfg.PhoneMissingRate {
		rec.Phone = &phone
	}

	return rec
}

// appendDuplicates clones count non-overlapping base records as mutated
// "_DUP" rows. When fewer NONE records exist than requested (extreme overlap
// fractions), the shortfall is drawn from the full base tranche so the total
// row count stays exact.
func (g *Generator) appendDuplicates(records []models.CustomerRecord, count int) []models.CustomerRecord {
	if count == 0 {
		return records
	}

	pool := make([]int, 0, len(records))
	for i := range records {
		if records[i].OverlapType == models.OverlapNone {
			pool = append(pool, i)
		}
	}
	if len(pool) < count {
		pool = pool[:0]
		for i := range records {
			pool = append(pool, i)
		}
	}
	g.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	for _, idx := range pool[:count] {
		dup := records[idx]
		dup.CustomerID += "_DUP"
		dup.OverlapType = models.OverlapDuplicate
		if dup.Email != nil && g.rng.Float64() < 0.5 {
			dup.Email = ptr(mutateEmail(*dup.Email, g.rng))
		}
		if dup.Phone != nil && g.rng.Float64() < 0.5 {
			dup.Phone = ptr(mutatePhone(*dup.Phone, g.rng))
		}
		records = append(records, dup)
	}
	return records
}

// randomPhone produces a French-style mobile/landline number
// "0X NN NN NN NN" with X in 1..6.
func (g *Generator) randomPhone(rowID int64) string {
	return fmt.Sprintf("0%d %02d %02d %02d %02d",
		1+rowID%6,
		10+g.rng.Intn(90), 10+g.rng.Intn(90), 10+g.rng.Intn(90), 10+g.rng.Intn(90))
}

func gender(rowID int64) string {
	if rowID%2 == 0 {
		return "Male"
	}
	return "Female"
}

// splitFullName splits a reference full name into first/last, falling back
// to the generated names when the reference name has no separable parts.
func splitFullName(full, fallbackFirst, fallbackLast string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) < 2 {
		return fallbackFirst, fallbackLast
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// mutateEmail inserts a random digit before the '@', mirroring typo-style
// duplicate records in real CRMs.
func mutateEmail(email string, rng *rand.Rand) string {
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return email
	}
	return fmt.Sprintf("%s%d%s", email[:at], rng.Intn(10), email[at:])
}

// mutatePhone replaces the final digit.
func mutatePhone(phone string, rng *rand.Rand) string {
	if phone == "" {
		return phone
	}
	return fmt.Sprintf("%s%d", phone[:len(phone)-1], rng.Intn(10))
}

func ptr(s string) *string {
	return &s
}
