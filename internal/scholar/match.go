// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxQueryRunes bounds the search query length. The search endpoint
// degrades or errors on overlong queries.
const maxQueryRunes = 200

// Candidate is one entry of the search endpoint's ranked result list.
type Candidate struct {
	PaperID string `json:"paperId"`
	Title   string `json:"title"`
}

type searchResponse struct {
	Total int         `json:"total"`
	Data  []Candidate `json:"data"`
}

// sanitizeQuery strips trailing punctuation and truncates to maxQueryRunes.
func sanitizeQuery(title string) string {
	q := strings.TrimRight(strings.TrimSpace(title), ".,;:!?")
	runes := []rune(q)
	if len(runes) > maxQueryRunes {
		q = string(runes[:maxQueryRunes])
	}
	return q
}

// FindBestMatch searches for the paper by title and returns the best
// candidate's ID, or "" when no acceptable match exists. The year is
// accepted for interface symmetry but not sent: the search endpoint
// rejects some year filter combinations with HTTP 400.
//
// A "" result is not an error; API failures and rate limiting surface the
// same way and are logged. The returned error is only a context error.
func (c *Client) FindBestMatch(ctx context.Context, title string, year int) (string, error) {
	_ = year

	q := sanitizeQuery(title)
	if q == "" {
		return "", nil
	}

	params := url.Values{
		"query":  {q},
		"limit":  {strconv.Itoa(searchLimit)},
		"fields": {"title"},
	}
	reqURL := apiBase + "/paper/search?" + params.Encode()

	var sr searchResponse
	ok, err := c.get(ctx, reqURL, &sr)
	if err != nil || !ok {
		return "", err
	}

	best, found := selectCandidate(title, sr.Data, c.DisableFallback)
	if !found {
		return "", nil
	}
	return best.PaperID, nil
}

// selectCandidate applies the match policy, in priority order: a
// case-insensitive exact title match wins outright; otherwise the
// candidate whose title is a substring of the query (or vice versa) with
// the highest normalized overlap ratio wins, first seen keeping ties;
// otherwise the first-ranked candidate is used unless the fallback is
// disabled. An empty candidate list means no match.
func selectCandidate(title string, candidates []Candidate, disableFallback bool) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	want := strings.ToLower(strings.TrimSpace(title))

	var best Candidate
	bestScore := 0.0
	for _, cand := range candidates {
		got := strings.ToLower(strings.TrimSpace(cand.Title))
		if got == want {
			return cand, true
		}
		if strings.Contains(got, want) || strings.Contains(want, got) {
			score := overlapRatio(want, got)
			if score > bestScore {
				bestScore = score
				best = cand
			}
		}
	}
	if bestScore > 0 {
		return best, true
	}

	// No title agreed; trust the endpoint's own relevance ranking unless
	// the caller opted out of that gamble.
	if disableFallback {
		return Candidate{}, false
	}
	return candidates[0], true
}

// overlapRatio is min(a,b)/max(a,b) of the two titles' character counts.
// Characters, not bytes, so multibyte titles are not overweighted.
func overlapRatio(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}
	if la > lb {
		la, lb = lb, la
	}
	return float64(la) / float64(lb)
}
