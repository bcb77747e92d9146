// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/qwei/paperdex/internal/harvest"
	"github.com/qwei/paperdex/internal/httputil"
	"github.com/qwei/paperdex/pkg/types"
)

// minPDFSize rejects download results too small to be a real PDF; error
// pages served with a 200 are common on venue sites.
const minPDFSize = 1000

var (
	illegalFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	repeatedUnderscores  = regexp.MustCompile(`_+`)
	pageTitleSuffix      = regexp.MustCompile(`\s*[-|].*$`)
)

// Downloader fetches paper PDFs for harvested venues.
type Downloader struct {
	Client  *http.Client
	Browser Browser
	Cfg     types.DownloadConfig
	Log     io.Writer
}

// Venue processes one venue: render its listing page, discover candidate
// paper links, skip the welcome address, and download each paper's PDF.
// Returns the number of PDFs downloaded. Per-paper failures are logged
// and do not abort the venue.
func (d *Downloader) Venue(ctx context.Context, conf harvest.Conference) (int, error) {
	out := d.log()
	fmt.Fprintf(out, "venue: %s (%d)\n", conf.Name, conf.Year)

	html, _, err := d.Browser.Render(ctx, conf.URL)
	if err != nil {
		return 0, fmt.Errorf("rendering venue page: %w", err)
	}

	links := SkipWelcomeAddress(CandidateLinks(html, conf.URL))
	if len(links) == 0 {
		fmt.Fprintf(out, "  no paper links found\n")
		return 0, nil
	}
	if d.Cfg.MaxPapers > 0 && len(links) > d.Cfg.MaxPapers {
		links = links[:d.Cfg.MaxPapers]
	}
	fmt.Fprintf(out, "  %d paper links\n", len(links))

	downloaded := 0
	for i, link := range links {
		if ctx.Err() != nil {
			return downloaded, ctx.Err()
		}
		fmt.Fprintf(out, "  [%d/%d] %s\n", i+1, len(links), link)
		if err := d.paperPage(ctx, link, conf); err != nil {
			fmt.Fprintf(out, "    failed: %v\n", err)
			continue
		}
		downloaded++
		if err := d.delay(ctx); err != nil {
			return downloaded, err
		}
	}
	return downloaded, nil
}

// paperPage renders one paper detail page, locates its PDF link, and
// fetches the file.
func (d *Downloader) paperPage(ctx context.Context, pageURL string, conf harvest.Conference) error {
	html, title, err := d.Browser.Render(ctx, pageURL)
	if err != nil {
		return fmt.Errorf("rendering paper page: %w", err)
	}

	pdfURL := FindPDFLink(html, pageURL)
	if pdfURL == "" {
		return fmt.Errorf("no PDF link on page")
	}

	name := PaperFilename(conf.Name, conf.Year, PageTitle(title, pageURL))
	path := filepath.Join(d.Cfg.Dir, name)
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(d.log(), "    exists, skipping: %s\n", name)
		return nil
	}
	return d.fetchPDF(ctx, pdfURL, path)
}

// fetchPDF downloads a PDF to path via a temp file so an interrupted
// transfer never leaves a partial file under the final name.
func (d *Downloader) fetchPDF(ctx context.Context, pdfURL, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating download dir: %w", err)
	}

	req, err := httputil.NewGet(ctx, pdfURL, d.Cfg.UserAgent)
	if err != nil {
		return fmt.Errorf("building PDF request: %w", err)
	}
	resp, err := httputil.DoWithRetry(ctx, d.Client, req, 0)
	if err != nil {
		return fmt.Errorf("fetching PDF: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("PDF fetch returned HTTP %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(strings.ToLower(ct), "pdf") &&
		!strings.HasSuffix(strings.ToLower(pdfURL), ".pdf") {
		fmt.Fprintf(d.log(), "    warning: content type %q\n", ct)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".pdf-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing PDF: %w", err)
	}
	if n < minPDFSize {
		return fmt.Errorf("downloaded file is %d bytes, too small to be a PDF", n)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("moving PDF into place: %w", err)
	}
	return nil
}

// delay sleeps a random duration between the configured bounds, to avoid
// hammering venue sites.
func (d *Downloader) delay(ctx context.Context) error {
	lo, hi := d.Cfg.DelayMin, d.Cfg.DelayMax
	if hi <= lo {
		return nil
	}
	wait := lo + time.Duration(rand.Int64N(int64(hi-lo)))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

func (d *Downloader) log() io.Writer {
	if d.Log != nil {
		return d.Log
	}
	return io.Discard
}

// PageTitle cleans a browser page title for use as a filename stem,
// dropping the " - Site Name" style suffix. When the title is empty the
// last URL path segment stands in.
func PageTitle(title, pageURL string) string {
	title = strings.TrimSpace(pageTitleSuffix.ReplaceAllString(title, ""))
	if title != "" {
		return title
	}
	if u, err := url.Parse(pageURL); err == nil {
		segs := strings.Split(strings.Trim(u.Path, "/"), "/")
		if last := segs[len(segs)-1]; last != "" {
			if dec, err := url.PathUnescape(last); err == nil {
				return dec
			}
			return last
		}
	}
	return "untitled"
}

// PaperFilename builds "<conf>_<year>_<sanitized title>.pdf".
func PaperFilename(conf string, year int, title string) string {
	return fmt.Sprintf("%s_%d_%s.pdf", conf, year, SanitizeFilename(title))
}

// SanitizeFilename replaces spaces and filesystem-hostile characters
// with underscores, collapses runs, and bounds the length.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	name = illegalFilenameChars.ReplaceAllString(name, "_")
	name = repeatedUnderscores.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if len(name) > 200 {
		name = name[:200]
	}
	return name
}
