package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paperdex/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// EnrichConfig holds settings for the enrichment stage.
type EnrichConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the Semantic Scholar API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MinInterval is the minimum gap between consecutive API call starts,
	// shared across search, paper-detail, and author-detail requests
	// (default 1.1s: the documented 1 req/s limit plus headroom).
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval"`

	// FetchAffiliations controls whether per-author affiliation lookups
	// are made. Each lookup is one extra rate-governed API call.
	FetchAffiliations bool `json:"fetch_affiliations" yaml:"fetch_affiliations"`

	// MaxAffiliationAuthors caps how many leading co-authors get a
	// dedicated affiliation lookup. 0 means all authors.
	MaxAffiliationAuthors int `json:"max_affiliation_authors" yaml:"max_affiliation_authors"`

	// StartFrom is the row offset to resume from.
	StartFrom int `json:"start_from" yaml:"start_from"`

	// MaxRecords caps how many rows are processed this run. 0 means all.
	MaxRecords int `json:"max_records" yaml:"max_records"`

	// SkipExistingAbstract copies rows with a non-empty abstract through
	// unchanged, without re-evaluating affiliations.
	SkipExistingAbstract bool `json:"skip_existing_abstract" yaml:"skip_existing_abstract"`

	// DisableFallback turns off the use of the first search result when
	// no candidate title matches. The fallback can attach an unrelated
	// paper's data under ambiguous titles.
	DisableFallback bool `json:"disable_fallback" yaml:"disable_fallback"`

	// CheckpointEvery is the number of rows between checkpoint flushes
	// (default 50).
	CheckpointEvery int `json:"checkpoint_every" yaml:"checkpoint_every"`
}

// HarvestConfig holds settings for the catalog harvest stage.
type HarvestConfig struct {
	HTTPConfig `yaml:",inline"`

	// ConferencesFile is the YAML file listing venues to harvest.
	ConferencesFile string `json:"conferences_file" yaml:"conferences_file"`
}

// DownloadConfig holds settings for the PDF download stage.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline"`

	// Dir is the directory PDFs are written to.
	Dir string `json:"dir" yaml:"dir"`

	// MaxPapers caps how many papers are downloaded per venue. 0 means all.
	MaxPapers int `json:"max_papers" yaml:"max_papers"`

	// DelayMin and DelayMax bound the random delay between page visits.
	DelayMin time.Duration `json:"delay_min" yaml:"delay_min"`
	DelayMax time.Duration `json:"delay_max" yaml:"delay_max"`

	// Headless controls whether the browser runs without a window.
	Headless bool `json:"headless" yaml:"headless"`
}
