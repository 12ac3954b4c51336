// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package crm

import (
	"strings"
	"unicode"
)

// Field normalizers used for match indexing. Matching is exact over the
// normalized forms; the same normalizer must be applied to both sides of a
// comparison.

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizePhone strips everything but digits, so "06 12 34 56 78" and
// "0612345678" index identically.
func NormalizePhone(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeName lowercases, strips diacritics and collapses runs of
// whitespace to a single space, so "François  Martin" and "francois martin"
// index identically.
func NormalizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(foldDiacritic(unicode.ToLower(r)))
	}
	return b.String()
}

// asciiFoldLower lowercases and folds accented letters, used when deriving
// email local parts from name pools.
func asciiFoldLower(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		b.WriteRune(foldDiacritic(r))
	}
	return b.String()
}

// foldDiacritic maps the accented letters appearing in the name pools to
// their ASCII base letter. Letters outside the table pass through.
func foldDiacritic(r rune) rune {
	switch r {
	case 'à', 'â', 'ä':
		return 'a'
	case 'ç':
		return 'c'
	case 'é', 'è', 'ê', 'ë':
		return 'e'
	case 'î', 'ï':
		return 'i'
	case 'ô', 'ö':
		return 'o'
	case 'ù', 'û', 'ü':
		return 'u'
	}
	return r
}
