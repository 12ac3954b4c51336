// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package crm

// Value pools for synthetic CRM fields. The pools are French-flavoured to
// match the reference population the generated records overlap with.

var firstNames = []string{
	"Jean", "Marie", "Pierre", "Sophie", "Michel",
	"Catherine", "Philippe", "Nathalie", "Alain", "Isabelle",
	"François", "Sylvie", "Bernard", "Martine", "Patrick",
	"Christine", "Daniel", "Françoise", "Thierry", "Monique",
}

var lastNames = []string{
	"Martin", "Bernard", "Dubois", "Thomas", "Robert",
	"Petit", "Richard", "Durand", "Leroy", "Moreau",
	"Simon", "Laurent", "Lefebvre", "Michel", "Garcia",
	"David", "Bertrand", "Roux", "Vincent", "Fournier",
	"Morel", "Girard", "Andre", "Lefevre", "Mercier",
}

var emailDomains = []string{
	"gmail.com", "orange.fr", "free.fr", "wanadoo.fr", "sfr.fr", "laposte.net",
}

var professions = []string{
	"Engineer", "Teacher", "Student", "Nurse",
	"Sales", "Artist", "Manager", "Consultant",
}
