// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"strings"
	"testing"
)

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain", "Attention Is All You Need", "Attention Is All You Need"},
		{"trailing punctuation", "Attention Is All You Need.", "Attention Is All You Need"},
		{"stacked punctuation", "Really?!", "Really"},
		{"surrounding space", "  spaced out  ", "spaced out"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeQuery(tt.title); got != tt.want {
				t.Errorf("sanitizeQuery(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestSanitizeQueryTruncates(t *testing.T) {
	long := strings.Repeat("标题x", 100) // 300 runes
	got := sanitizeQuery(long)
	if n := len([]rune(got)); n != maxQueryRunes {
		t.Errorf("truncated length = %d runes, want %d", n, maxQueryRunes)
	}
}

func TestSelectCandidateExactBeatsOrder(t *testing.T) {
	// The exact match wins even when it is not first in the list.
	cands := []Candidate{
		{PaperID: "p1", Title: "Foo Bar Baz"},
		{PaperID: "p2", Title: "Foo Bar"},
	}
	got, ok := selectCandidate("Foo Bar", cands, false)
	if !ok || got.PaperID != "p2" {
		t.Errorf("selectCandidate = (%+v, %v), want exact match p2", got, ok)
	}
}

func TestSelectCandidateExactIsCaseInsensitive(t *testing.T) {
	cands := []Candidate{{PaperID: "p1", Title: "FOO bar"}}
	got, ok := selectCandidate("foo BAR", cands, false)
	if !ok || got.PaperID != "p1" {
		t.Errorf("selectCandidate = (%+v, %v), want p1", got, ok)
	}
}

func TestSelectCandidateSubstringOverlap(t *testing.T) {
	// Both candidates contain the query as a substring; the one with the
	// higher min/max length ratio wins.
	cands := []Candidate{
		{PaperID: "long", Title: "Foo Bar: A Comprehensive Survey of Everything"},
		{PaperID: "close", Title: "Foo Bar Baz"},
	}
	got, ok := selectCandidate("Foo Bar", cands, false)
	if !ok || got.PaperID != "close" {
		t.Errorf("selectCandidate = (%+v, %v), want close", got, ok)
	}
}

func TestSelectCandidateSubstringTieKeepsFirst(t *testing.T) {
	cands := []Candidate{
		{PaperID: "a", Title: "Foo Bar One"},
		{PaperID: "b", Title: "One Foo Bar"},
	}
	got, ok := selectCandidate("Foo Bar", cands, false)
	if !ok || got.PaperID != "a" {
		t.Errorf("selectCandidate = (%+v, %v), want first-seen a", got, ok)
	}
}

func TestSelectCandidateFallback(t *testing.T) {
	cands := []Candidate{
		{PaperID: "first", Title: "Something Else Entirely"},
		{PaperID: "second", Title: "Also Unrelated"},
	}

	got, ok := selectCandidate("Foo Bar", cands, false)
	if !ok || got.PaperID != "first" {
		t.Errorf("fallback enabled: selectCandidate = (%+v, %v), want first", got, ok)
	}

	if _, ok := selectCandidate("Foo Bar", cands, true); ok {
		t.Error("fallback disabled: selectCandidate matched, want no match")
	}
}

func TestSelectCandidateEmptyList(t *testing.T) {
	if _, ok := selectCandidate("anything", nil, false); ok {
		t.Error("selectCandidate on empty list matched, want no match")
	}
}

func TestSelectCandidateOverlapCountsCharacters(t *testing.T) {
	// The 3-character query prefixes both candidates. The CJK title is 9
	// characters but 21 bytes, the ASCII one 15 characters and 15 bytes.
	// Character scoring ranks the CJK title higher (3/9 vs 3/15); byte
	// scoring would invert that (3/21 vs 3/15).
	cands := []Candidate{
		{PaperID: "ascii", Title: "GAN in Practice"},
		{PaperID: "cjk", Title: "GAN综述研究进展"},
	}
	got, ok := selectCandidate("GAN", cands, false)
	if !ok || got.PaperID != "cjk" {
		t.Errorf("selectCandidate = (%+v, %v), want cjk", got, ok)
	}
}

func TestOverlapRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"Foo Bar", "Foo Bar Baz", 7.0 / 11.0},
		{"Foo Bar Baz", "Foo Bar", 7.0 / 11.0},
		{"equal", "equal", 1.0},
		{"", "other", 0},
		{"深度学习", "深度学习综述", 4.0 / 6.0},
	}
	for _, tt := range tests {
		if got := overlapRatio(tt.a, tt.b); got != tt.want {
			t.Errorf("overlapRatio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
