// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/qwei/paperdex/internal/dataset"
	"github.com/qwei/paperdex/internal/enrich"
	"github.com/qwei/paperdex/internal/ratelimit"
	"github.com/qwei/paperdex/internal/scholar"
	"github.com/qwei/paperdex/internal/secrets"
	"github.com/qwei/paperdex/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "paperdex/0.1"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fill in abstracts, citation counts, and affiliations from Semantic Scholar",
	Long: `Enrich reads a paper CSV, looks each title up on the Semantic Scholar API,
and writes the rows back out with abstract, citation count, and optionally
author affiliations filled in. Rows that already carry that data are
skipped, so re-running on partial output resumes instead of repeating work.

The output file is checkpointed during the run and flushed on interrupt,
so a stopped run loses at most the rows since the last checkpoint. Resume
with the same command against the previous output, or jump ahead with
--start-from.`,
	RunE: runEnrich,
}

func init() {
	enrichCmd.Flags().String("input", "", "input CSV file (required)")
	enrichCmd.Flags().String("output", "", "output CSV file (required)")
	enrichCmd.Flags().String("api-key", "", "Semantic Scholar API key (default: .secrets/semantic-scholar-api-key)")
	enrichCmd.Flags().Int("start-from", 0, "row offset to resume from")
	enrichCmd.Flags().Int("max-records", 0, "maximum rows to process this run (0 = all)")
	enrichCmd.Flags().Bool("affiliations", false, "fetch per-author affiliations (one extra API call per author)")
	enrichCmd.Flags().Int("max-affiliation-authors", 0, "cap affiliation lookups to the first N authors (0 = all)")
	enrichCmd.Flags().Bool("skip-existing-abstract", false, "pass rows with a non-empty abstract through untouched")
	enrichCmd.Flags().Bool("no-fallback", false, "never use the first search result when no title matches")
	enrichCmd.Flags().Duration("min-interval", 0, "minimum gap between API calls (default 1.1s)")
	enrichCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")

	_ = enrichCmd.MarkFlagRequired("input")
	_ = enrichCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	apiKey, _ := cmd.Flags().GetString("api-key")
	startFrom, _ := cmd.Flags().GetInt("start-from")
	maxRecords, _ := cmd.Flags().GetInt("max-records")
	affiliations, _ := cmd.Flags().GetBool("affiliations")
	maxAffAuthors, _ := cmd.Flags().GetInt("max-affiliation-authors")
	skipExisting, _ := cmd.Flags().GetBool("skip-existing-abstract")
	noFallback, _ := cmd.Flags().GetBool("no-fallback")
	minInterval, _ := cmd.Flags().GetDuration("min-interval")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	if minInterval == 0 {
		minInterval = ratelimit.DefaultMinInterval
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}

	cfg := types.EnrichConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		APIKey:                secretDefault(secrets.SemanticScholarKey, apiKey),
		MinInterval:           minInterval,
		FetchAffiliations:     affiliations,
		MaxAffiliationAuthors: maxAffAuthors,
		StartFrom:             startFrom,
		MaxRecords:            maxRecords,
		SkipExistingAbstract:  skipExisting,
		DisableFallback:       noFallback,
	}

	ds, err := dataset.Load(input)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Loaded %d records from %s\n", len(ds.Records), input)
	if cfg.APIKey == "" {
		fmt.Fprintln(os.Stdout, "No API key configured; using the shared public rate limit")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := &enrich.Runner{
		Enricher: scholar.NewClient(cfg, os.Stdout),
		Cfg:      cfg,
		Out:      os.Stdout,
	}

	stats, err := runner.Run(ctx, ds, output)
	interrupted := errors.Is(err, context.Canceled)
	if err != nil && !interrupted {
		return err
	}

	fmt.Fprintf(os.Stdout, "\nSuccess: %d  Failed: %d  Skipped: %d\n", stats.Success, stats.Failed, stats.Skipped)
	fmt.Fprintf(os.Stdout, "Output written to %s\n", output)
	if interrupted {
		fmt.Fprintln(os.Stdout, "Interrupted; progress saved, re-run to resume")
	}
	return nil
}
