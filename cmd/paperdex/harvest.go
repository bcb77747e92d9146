// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/qwei/paperdex/internal/dataset"
	"github.com/qwei/paperdex/internal/harvest"
	"github.com/qwei/paperdex/pkg/types"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Pull venue paper listings from DBLP into a CSV",
	Long: `Harvest reads a conferences YAML file, fetches each venue's paper listing
from the DBLP export API, and writes the combined records to a CSV with
empty abstract, citation, and affiliation columns ready for enrichment.`,
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().String("conferences", "conferences.yaml", "YAML file listing venues to harvest")
	harvestCmd.Flags().String("output", "papers.csv", "output CSV file")
	harvestCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")

	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	confFile, _ := cmd.Flags().GetString("conferences")
	output, _ := cmd.Flags().GetString("output")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}

	cfg := types.HarvestConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		ConferencesFile: confFile,
	}

	confs, err := harvest.LoadConferences(confFile)
	if err != nil {
		return err
	}
	if len(confs) == 0 {
		return fmt.Errorf("no venues listed in %s", confFile)
	}

	client := &http.Client{Timeout: cfg.Timeout}
	ds := &dataset.Dataset{}
	failed := 0

	for _, conf := range confs {
		fmt.Fprintf(os.Stdout, "Harvesting %s %d...\n", conf.Name, conf.Year)
		records, err := harvest.FetchListing(cmd.Context(), client, conf, cfg)
		if err != nil {
			fmt.Fprintf(os.Stdout, "  failed: %v\n", err)
			failed++
			continue
		}
		fmt.Fprintf(os.Stdout, "  %d papers\n", len(records))
		ds.Records = append(ds.Records, records...)

		// Be polite to the catalog between venues.
		time.Sleep(time.Second)
	}

	if err := dataset.Store(output, ds); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Wrote %d records to %s\n", len(ds.Records), output)
	if failed > 0 {
		return fmt.Errorf("%d venue(s) failed harvesting", failed)
	}
	return nil
}
