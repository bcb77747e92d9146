// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paperdex pipeline.
package types

import "strings"

// PaperRecord is one row of the working dataset. The seven named fields are
// the stable output contract; Extra preserves any additional input columns
// verbatim, keyed by header name.
type PaperRecord struct {
	// Title is the paper title, the primary matching key.
	Title string `json:"title" yaml:"title"`

	// Authors is the semicolon-joined author display names. Opaque to
	// matching logic.
	Authors string `json:"authors" yaml:"authors"`

	// Conference is the venue abbreviation (e.g. "ISCA").
	Conference string `json:"conference" yaml:"conference"`

	// Year is the raw year cell. May be empty or unparsable; use YearInt.
	Year string `json:"year" yaml:"year"`

	// Abstract is the enriched abstract. Empty means not yet enriched or
	// confirmed absent; downstream code never distinguishes the two.
	Abstract string `json:"abstract" yaml:"abstract"`

	// CitationCount is the enriched citation count, always >= 0.
	CitationCount int `json:"citationCount" yaml:"citationCount"`

	// Affiliations is the serialized per-author affiliation string.
	Affiliations string `json:"affiliations" yaml:"affiliations"`

	// Extra holds input columns outside the output contract, keyed by
	// header name. Preserved verbatim on output.
	Extra map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// YearInt parses the year cell. An empty or unparsable cell returns 0.
func (r PaperRecord) YearInt() int {
	y := strings.TrimSpace(r.Year)
	if y == "" {
		return 0
	}
	n := 0
	for _, c := range y {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// NoAffiliations is the marker rendered for an author whose affiliation
// lookup succeeded but returned an empty list. Part of the serialized wire
// contract; do not translate.
const NoAffiliations = "(无)"

// AffiliationEntry holds one author's affiliation lookup outcome. Entries
// with Fetched=false contribute only the author name to the serialized
// string, which lets the enricher bound API cost while still recording all
// co-author names.
type AffiliationEntry struct {
	// Name is the author display name.
	Name string `json:"name" yaml:"name"`

	// Affiliations lists institution strings in API order.
	Affiliations []string `json:"affiliations" yaml:"affiliations"`

	// Fetched reports whether a dedicated affiliation lookup was made.
	Fetched bool `json:"fetched" yaml:"fetched"`
}

// String renders a single entry: "Name: aff1; aff2", "Name: (无)" when the
// lookup returned nothing, or the bare name when no lookup was made.
func (e AffiliationEntry) String() string {
	if !e.Fetched {
		return e.Name
	}
	if len(e.Affiliations) == 0 {
		return e.Name + ": " + NoAffiliations
	}
	return e.Name + ": " + strings.Join(e.Affiliations, "; ")
}

// JoinAffiliations serializes entries into the affiliations column format.
// The result is identical no matter how many times a record is re-enriched.
func JoinAffiliations(entries []AffiliationEntry) string {
	if len(entries) == 0 {
		return ""
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.String()
	}
	return strings.Join(parts, " | ")
}
