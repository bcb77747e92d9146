// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download locates paper PDFs on venue sites and fetches them.
package download

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// paperLinkHints are the keywords a listing-page link must carry, in its
// href or its text, to be considered a paper detail link. Site-structure
// heuristics live here and nowhere else.
var paperLinkHints = []string{"presentation", "paper", "view", "detail", "abstract"}

// CandidateLinks extracts probable paper-detail links from a rendered
// listing page, in document order, deduplicated. Relative hrefs are
// resolved against pageURL.
func CandidateLinks(html, pageURL string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	base, _ := url.Parse(pageURL)

	var links []string
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		abs := resolveHref(base, href)
		if abs == "" || seen[abs] {
			return
		}
		text := strings.ToLower(strings.TrimSpace(a.Text()))
		if hasHint(strings.ToLower(abs)) || hasHint(text) {
			seen[abs] = true
			links = append(links, abs)
		}
	})
	return links
}

func hasHint(s string) bool {
	for _, hint := range paperLinkHints {
		if strings.Contains(s, hint) {
			return true
		}
	}
	return false
}

// SkipWelcomeAddress drops the first listing item. Venue programs open
// with a welcome address whose page has no paper PDF. With one or zero
// links there is nothing safe to drop.
func SkipWelcomeAddress(links []string) []string {
	if len(links) > 1 {
		return links[1:]
	}
	return links
}

// FindPDFLink returns the first PDF hyperlink in a rendered paper page,
// resolved against pageURL, or "" when none is present.
func FindPDFLink(html, pageURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	base, _ := url.Parse(pageURL)

	found := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if !strings.HasSuffix(strings.ToLower(strings.TrimSpace(href)), ".pdf") {
			return true
		}
		if abs := resolveHref(base, href); abs != "" {
			found = abs
			return false
		}
		return true
	})
	return found
}

// resolveHref makes href absolute against base. Protocol-relative and
// path-relative links resolve; javascript:, mailto:, and fragment links
// yield "".
func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	switch ref.Scheme {
	case "", "http", "https":
	default:
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	return ref.String()
}
