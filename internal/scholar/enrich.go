// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"context"

	"github.com/qwei/paperdex/pkg/types"
)

// Enrichment holds the fields merged back into a paper record.
type Enrichment struct {
	Abstract      string
	CitationCount int
	Affiliations  string
}

// Found reports whether the lookup yielded any signal worth keeping.
func (e Enrichment) Found() bool {
	return e.Abstract != "" || e.CitationCount > 0
}

// Enrich runs the full match-then-fetch sequence for one paper: search for
// the best title match, fetch its details, and optionally look up
// affiliations for the leading co-authors. Every step is rate-governed.
// A zero Enrichment means no acceptable match or no data; the only error
// is a context error.
func (c *Client) Enrich(ctx context.Context, title string, year int) (Enrichment, error) {
	paperID, err := c.FindBestMatch(ctx, title, year)
	if err != nil || paperID == "" {
		return Enrichment{}, err
	}

	detail, err := c.PaperDetails(ctx, paperID)
	if err != nil || detail == nil {
		return Enrichment{}, err
	}

	out := Enrichment{
		Abstract:      detail.Abstract,
		CitationCount: detail.CitationCount,
	}

	if c.FetchAffiliations && len(detail.Authors) > 0 {
		entries, err := c.authorEntries(ctx, detail.Authors)
		if err != nil {
			return Enrichment{}, err
		}
		out.Affiliations = types.JoinAffiliations(entries)
	}
	return out, nil
}

// authorEntries looks up affiliations for the first n authors and records
// the rest name-only. Authors without a resolved ID count against the cap
// but cost no API call.
func (c *Client) authorEntries(ctx context.Context, authors []Author) ([]types.AffiliationEntry, error) {
	fetchCount := len(authors)
	if c.MaxAffiliationAuthors > 0 && c.MaxAffiliationAuthors < fetchCount {
		fetchCount = c.MaxAffiliationAuthors
	}

	entries := make([]types.AffiliationEntry, 0, len(authors))
	for i, a := range authors {
		entry := types.AffiliationEntry{Name: a.Name}
		if i < fetchCount {
			entry.Fetched = true
			if a.AuthorID != "" {
				affs, err := c.AuthorAffiliations(ctx, a.AuthorID)
				if err != nil {
					return nil, err
				}
				entry.Affiliations = affs
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
