// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scholar is a rate-governed client for the Semantic Scholar Graph
// API: paper search, paper details, and author affiliations.
package scholar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/qwei/paperdex/internal/ratelimit"
	"github.com/qwei/paperdex/pkg/types"
)

// apiBase is the Semantic Scholar Graph API root. Declared as a var so
// tests can substitute an httptest server.
var apiBase = "https://api.semanticscholar.org/graph/v1"

// rateLimitCooldown is how long the client sleeps after an HTTP 429 before
// reporting "no result". There is no automatic retry: whether to try the
// record again is the caller's decision. Tests shorten this.
var rateLimitCooldown = 5 * time.Second

const (
	searchLimit  = 10
	detailFields = "abstract,citationCount,title,authors,year"
	authorFields = "affiliations"
)

// Client calls the Semantic Scholar API. Every request of any kind passes
// through the shared Governor first, so the process never exceeds the
// single-requester rate limit.
type Client struct {
	HTTP     *http.Client
	APIKey   string
	Governor *ratelimit.Governor
	Log      io.Writer

	// UserAgent is sent with every request.
	UserAgent string

	// DisableFallback turns off selecting the first search result when no
	// candidate title matches.
	DisableFallback bool

	// FetchAffiliations enables per-author affiliation lookups.
	FetchAffiliations bool

	// MaxAffiliationAuthors caps affiliation lookups to the first n
	// authors. 0 means all.
	MaxAffiliationAuthors int
}

// NewClient builds a Client from the enrichment config. The Log writer
// receives progress and warning lines; io.Discard silences them.
func NewClient(cfg types.EnrichConfig, log io.Writer) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = io.Discard
	}
	return &Client{
		HTTP:                  &http.Client{Timeout: timeout},
		APIKey:                cfg.APIKey,
		Governor:              ratelimit.New(cfg.MinInterval),
		Log:                   log,
		UserAgent:             cfg.UserAgent,
		DisableFallback:       cfg.DisableFallback,
		FetchAffiliations:     cfg.FetchAffiliations,
		MaxAffiliationAuthors: cfg.MaxAffiliationAuthors,
	}
}

// PaperDetail is the detail-endpoint response for one paper.
type PaperDetail struct {
	PaperID       string   `json:"paperId"`
	Title         string   `json:"title"`
	Abstract      string   `json:"abstract"`
	CitationCount int      `json:"citationCount"`
	Year          int      `json:"year"`
	Authors       []Author `json:"authors"`
}

// Author is one entry of a paper's ordered author list. AuthorID may be
// empty when the API has no resolved entity for the name.
type Author struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

// get issues one rate-governed GET and decodes the JSON body into out.
// A nil return with ok=false means the call yielded no usable data
// (non-2xx, rate limit after cooldown, network failure, bad JSON); those
// are local failures, never fatal. The only error returned is a context
// error, whether it surfaces in the governor wait, mid-request, or during
// the cooldown.
func (c *Client) get(ctx context.Context, reqURL string, out any) (ok bool, err error) {
	if err := c.Governor.Wait(ctx); err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		fmt.Fprintf(c.Log, "  warning: building request: %v\n", err)
		return false, nil
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		// Cancellation mid-request must terminate the run, not count as
		// a lookup failure.
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		fmt.Fprintf(c.Log, "  warning: request failed: %v\n", err)
		return false, nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body)
		fmt.Fprintf(c.Log, "  rate limited, cooling down %v\n", rateLimitCooldown)
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(rateLimitCooldown):
		}
		return false, nil
	case resp.StatusCode != http.StatusOK:
		fmt.Fprintf(c.Log, "  warning: API returned HTTP %d\n", resp.StatusCode)
		return false, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		fmt.Fprintf(c.Log, "  warning: parsing response: %v\n", err)
		return false, nil
	}
	return true, nil
}

// PaperDetails fetches abstract, citation count, title, authors, and year
// for a resolved paper ID. An absent abstract decodes to the empty string
// and an absent citation count to 0, so callers never branch on null.
func (c *Client) PaperDetails(ctx context.Context, paperID string) (*PaperDetail, error) {
	params := url.Values{"fields": {detailFields}}
	reqURL := apiBase + "/paper/" + url.PathEscape(paperID) + "?" + params.Encode()

	var detail PaperDetail
	ok, err := c.get(ctx, reqURL, &detail)
	if err != nil || !ok {
		return nil, err
	}
	if detail.CitationCount < 0 {
		detail.CitationCount = 0
	}
	return &detail, nil
}

// AuthorAffiliations fetches the ordered affiliation strings for one
// author. Failures of any kind yield an empty list; an affiliation lookup
// never aborts the paper's enrichment.
func (c *Client) AuthorAffiliations(ctx context.Context, authorID string) ([]string, error) {
	params := url.Values{"fields": {authorFields}}
	reqURL := apiBase + "/author/" + url.PathEscape(authorID) + "?" + params.Encode()

	var out struct {
		Affiliations []string `json:"affiliations"`
	}
	ok, err := c.get(ctx, reqURL, &out)
	if err != nil || !ok {
		return nil, err
	}
	return out.Affiliations, nil
}
