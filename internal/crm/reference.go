// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package crm

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/audiencegrid/audiencegrid/internal/models"
)

// SynthesizeReferenceIdentities builds a demo external identity set. The
// reference table is normally loaded from outside the system; this exists so
// agctl can stand up a self-contained environment for the generator's
// overlap earmarking to match against. Seed 0 seeds from the clock.
func SynthesizeReferenceIdentities(n int, seed int64) []models.ExternalIdentity {
	if n <= 0 {
		return nil
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	identities := make([]models.ExternalIdentity, 0, n)
	for i := 0; i < n; i++ {
		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]
		domain := emailDomains[rng.Intn(len(emailDomains))]

		// The numeric suffix keeps emails unique across a small name pool.
		email := fmt.Sprintf("%s.%s%d@%s",
			asciiFoldLower(first), asciiFoldLower(last), i, domain)
		phone := fmt.Sprintf("0%d%08d", 6+rng.Intn(2), rng.Intn(100_000_000))

		identities = append(identities, models.ExternalIdentity{
			Email:    email,
			Phone:    phone,
			FullName: first + " " + last,
		})
	}
	return identities
}
