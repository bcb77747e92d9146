// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich orchestrates the record-by-record enrichment of a paper
// dataset, with checkpoint/resume across process restarts.
package enrich

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/qwei/paperdex/internal/dataset"
	"github.com/qwei/paperdex/internal/scholar"
	"github.com/qwei/paperdex/pkg/types"
)

// defaultCheckpointEvery is the flush cadence in processed rows.
const defaultCheckpointEvery = 50

// Enricher resolves one paper and fetches its detail fields. Implemented
// by *scholar.Client; tests supply stubs.
type Enricher interface {
	Enrich(ctx context.Context, title string, year int) (scholar.Enrichment, error)
}

// Stats are the running counters for one engine run. When resuming,
// Success and Failed are seeded from the prefix before StartFrom so the
// numbers stay meaningful across runs.
type Stats struct {
	Success int
	Failed  int
	Skipped int
}

// Runner drives the enrichment loop over a dataset. It owns the dataset
// for the duration of a run; there is no concurrent mutator because the
// rate-limited design is strictly sequential.
type Runner struct {
	Enricher Enricher
	Cfg      types.EnrichConfig

	// Out receives one progress line per record.
	Out io.Writer
}

// Run enriches rows [StartFrom, StartFrom+MaxRecords) of ds, flushing to
// outputPath every CheckpointEvery rows, after the final row, and on every
// exit path including cancellation. Failure is per-record: nothing a
// single record does can abort the run.
func (r *Runner) Run(ctx context.Context, ds *dataset.Dataset, outputPath string) (stats Stats, err error) {
	out := r.Out
	if out == nil {
		out = io.Discard
	}

	total := len(ds.Records)
	start := r.Cfg.StartFrom
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if r.Cfg.MaxRecords > 0 && start+r.Cfg.MaxRecords < end {
		end = start + r.Cfg.MaxRecords
	}
	every := r.Cfg.CheckpointEvery
	if every <= 0 {
		every = defaultCheckpointEvery
	}

	// Seed counters from the already-processed prefix.
	for _, rec := range ds.Records[:start] {
		if r.sufficientlyEnriched(rec) {
			stats.Success++
		} else {
			stats.Failed++
		}
	}

	flush := func() error { return dataset.Store(outputPath, ds) }

	// A panic above the record boundary still gets one last flush before
	// the process dies with the original panic value.
	defer func() {
		if p := recover(); p != nil {
			flush()
			panic(p)
		}
	}()

	for idx := start; idx < end; idx++ {
		if ctx.Err() != nil {
			fmt.Fprintf(out, "\ninterrupted, saving progress...\n")
			if ferr := flush(); ferr != nil {
				return stats, ferr
			}
			return stats, ctx.Err()
		}

		rec := &ds.Records[idx]
		title := strings.TrimSpace(rec.Title)

		if r.Cfg.SkipExistingAbstract && strings.TrimSpace(rec.Abstract) != "" {
			fmt.Fprintf(out, "[%d/%d] skipped (has abstract): %s\n", idx+1, total, shortTitle(title))
			stats.Skipped++
			continue
		}
		if r.sufficientlyEnriched(*rec) {
			fmt.Fprintf(out, "[%d/%d] skipped (already enriched): %s\n", idx+1, total, shortTitle(title))
			stats.Skipped++
			continue
		}

		fmt.Fprintf(out, "[%d/%d] processing: %s\n", idx+1, total, shortTitle(title))

		enriched, recErr := r.processRecord(ctx, rec, title)
		if recErr != nil {
			// Cancellation surfaced mid-record; save and stop.
			if ferr := flush(); ferr != nil {
				return stats, ferr
			}
			return stats, recErr
		}
		if enriched {
			stats.Success++
			fmt.Fprintf(out, "  enriched: citations %d, abstract %d chars\n",
				rec.CitationCount, len(rec.Abstract))
		} else {
			stats.Failed++
			fmt.Fprintf(out, "  no match found\n")
		}

		if (idx+1)%every == 0 {
			if ferr := flush(); ferr != nil {
				return stats, ferr
			}
			fmt.Fprintf(out, "\n  [checkpoint] saved (success %d, failed %d, skipped %d)\n\n",
				stats.Success, stats.Failed, stats.Skipped)
		}
		if (idx+1)%100 == 0 {
			fmt.Fprintf(out, "\nprogress: %d/%d rows, success %d, failed %d\n\n",
				idx+1, end, stats.Success, stats.Failed)
		}
	}

	if ferr := flush(); ferr != nil {
		return stats, ferr
	}
	return stats, nil
}

// processRecord runs the match-then-fetch sequence for one record and
// merges the result. Any panic inside the sequence is recovered here,
// counted as a failure. Only a context error propagates.
func (r *Runner) processRecord(ctx context.Context, rec *types.PaperRecord, title string) (enriched bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			resetEnrichment(rec)
			enriched = false
			err = nil
			if out := r.Out; out != nil {
				fmt.Fprintf(out, "  error: %v\n", p)
			}
		}
	}()

	result, err := r.Enricher.Enrich(ctx, title, rec.YearInt())
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		resetEnrichment(rec)
		if out := r.Out; out != nil {
			fmt.Fprintf(out, "  error: %v\n", err)
		}
		return false, nil
	}

	if !result.Found() {
		// Clear stale partial data rather than leaving the row
		// inconsistent.
		resetEnrichment(rec)
		return false, nil
	}

	rec.Abstract = result.Abstract
	rec.CitationCount = result.CitationCount
	rec.Affiliations = result.Affiliations
	return true, nil
}

// sufficientlyEnriched reports whether a record can be skipped without an
// API call: it has an abstract or citations, and affiliations when those
// are being fetched. This predicate is what makes re-runs idempotent.
func (r *Runner) sufficientlyEnriched(rec types.PaperRecord) bool {
	hasData := strings.TrimSpace(rec.Abstract) != "" || rec.CitationCount > 0
	if !hasData {
		return false
	}
	if r.Cfg.FetchAffiliations && rec.Affiliations == "" {
		return false
	}
	return true
}

func resetEnrichment(rec *types.PaperRecord) {
	rec.Abstract = ""
	rec.CitationCount = 0
	rec.Affiliations = ""
}

func shortTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= 60 {
		return title
	}
	return string(runes[:60]) + "..."
}
