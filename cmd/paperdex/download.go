// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/qwei/paperdex/internal/download"
	"github.com/qwei/paperdex/internal/harvest"
	"github.com/qwei/paperdex/pkg/types"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Fetch paper PDFs from venue proceedings pages",
	Long: `Download renders each venue's proceedings page in a headless browser,
discovers per-paper links, and saves each paper's PDF under the output
directory. PDFs that already exist are skipped, so interrupted runs can
be restarted without re-downloading.`,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().String("conferences", "conferences.yaml", "YAML file listing venues to download")
	downloadCmd.Flags().String("dir", "downloads", "directory to save PDFs under")
	downloadCmd.Flags().Int("max-papers", 0, "maximum papers per venue (0 = all)")
	downloadCmd.Flags().Duration("delay-min", 2*time.Second, "minimum delay between page visits")
	downloadCmd.Flags().Duration("delay-max", 5*time.Second, "maximum delay between page visits")
	downloadCmd.Flags().Bool("headless", true, "run the browser without a window")
	downloadCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	confFile, _ := cmd.Flags().GetString("conferences")
	dir, _ := cmd.Flags().GetString("dir")
	maxPapers, _ := cmd.Flags().GetInt("max-papers")
	delayMin, _ := cmd.Flags().GetDuration("delay-min")
	delayMax, _ := cmd.Flags().GetDuration("delay-max")
	headless, _ := cmd.Flags().GetBool("headless")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}

	cfg := types.DownloadConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		Dir:       dir,
		MaxPapers: maxPapers,
		DelayMin:  delayMin,
		DelayMax:  delayMax,
		Headless:  headless,
	}

	confs, err := harvest.LoadConferences(confFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating download directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	browser := download.NewChromeBrowser(cfg.Headless)
	defer browser.Close()

	d := &download.Downloader{
		Client:  &http.Client{Timeout: cfg.Timeout},
		Browser: browser,
		Cfg:     cfg,
		Log:     os.Stdout,
	}

	total := 0
	failed := 0
	for _, conf := range confs {
		n, err := d.Venue(ctx, conf)
		total += n
		if err != nil {
			if ctx.Err() != nil {
				fmt.Fprintf(os.Stdout, "Interrupted after %d PDFs\n", total)
				return nil
			}
			fmt.Fprintf(os.Stdout, "venue %s failed: %v\n", conf.Name, err)
			failed++
		}
	}

	fmt.Fprintf(os.Stdout, "Downloaded %d PDFs to %s\n", total, dir)
	if failed > 0 {
		return fmt.Errorf("%d venue(s) failed", failed)
	}
	return nil
}
