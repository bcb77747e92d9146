// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harvest collects paper metadata from the DBLP catalog's JSON
// export API and produces the working dataset rows.
package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/qwei/paperdex/internal/httputil"
	"github.com/qwei/paperdex/pkg/types"
)

// exportAPIBase is the DBLP publication search API. Declared as a var so
// tests can substitute an httptest server.
var exportAPIBase = "https://dblp.org/search/publ/api"

// confPagePattern extracts the venue key and page from a DBLP table-of-
// contents URL like https://dblp.org/db/conf/isca/isca2023.html.
var confPagePattern = regexp.MustCompile(`/conf/([^/]+)/([^/]+)\.html`)

// Conference is one venue entry of the conferences YAML file.
type Conference struct {
	Name string `yaml:"name"`
	Year int    `yaml:"year"`
	URL  string `yaml:"url"`
}

// LoadConferences reads the venue list from a YAML file.
func LoadConferences(path string) ([]Conference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading conferences file: %w", err)
	}
	var confs []Conference
	if err := yaml.Unmarshal(data, &confs); err != nil {
		return nil, fmt.Errorf("parsing conferences file: %w", err)
	}
	return confs, nil
}

// ExportURL turns a DBLP venue page URL into the JSON export API URL.
// Table-of-contents pages become a toc query; DBLP search URLs pass their
// own query through.
func ExportURL(venueURL string) (string, error) {
	if m := confPagePattern.FindStringSubmatch(venueURL); m != nil {
		query := fmt.Sprintf("toc:db/conf/%s/%s.bht:", m[1], m[2])
		return exportAPIBase + "?q=" + url.QueryEscape(query) + "&h=1000&format=json", nil
	}

	if u, err := url.Parse(venueURL); err == nil && strings.Contains(u.Path, "search") {
		if q := u.Query().Get("q"); q != "" {
			return exportAPIBase + "?q=" + url.QueryEscape(q) + "&h=1000&format=json", nil
		}
	}

	return "", fmt.Errorf("cannot derive export URL from %q", venueURL)
}

// FetchListing downloads and parses the paper listing for one venue.
func FetchListing(ctx context.Context, client *http.Client, conf Conference, cfg types.HarvestConfig) ([]types.PaperRecord, error) {
	exportURL, err := ExportURL(conf.URL)
	if err != nil {
		return nil, err
	}

	req, err := httputil.NewGet(ctx, exportURL, cfg.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("building export request: %w", err)
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("fetching export for %s: %w", conf.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("export API returned HTTP %d for %s", resp.StatusCode, conf.Name)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading export body: %w", err)
	}
	return ParseListing(data, conf.Name, conf.Year)
}

// ParseListing extracts paper rows from a DBLP export document. The
// export format is loose: a single hit arrives as an object instead of a
// one-element array, titles arrive as plain strings or as {"text": ...}
// objects, and the author list has the same two shapes. Rows without a
// title are dropped.
func ParseListing(data []byte, conference string, year int) ([]types.PaperRecord, error) {
	var doc exportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing export JSON: %w", err)
	}

	yearCell := ""
	if year > 0 {
		yearCell = strconv.Itoa(year)
	}

	var records []types.PaperRecord
	for _, hit := range doc.Result.Hits.Hit {
		title := strings.TrimSpace(string(hit.Info.Title))
		if title == "" {
			continue
		}

		var names []string
		for _, a := range hit.Info.Authors.Author {
			if name := strings.TrimSpace(string(a)); name != "" {
				names = append(names, name)
			}
		}

		records = append(records, types.PaperRecord{
			Title:      title,
			Authors:    strings.Join(names, "; "),
			Conference: conference,
			Year:       yearCell,
		})
	}
	return records, nil
}

type exportDocument struct {
	Result struct {
		Hits struct {
			Hit hitList `json:"hit"`
		} `json:"hits"`
	} `json:"result"`
}

type hitList []hit

type hit struct {
	Info struct {
		Title   flexText `json:"title"`
		Authors struct {
			Author flexTextList `json:"author"`
		} `json:"authors"`
	} `json:"info"`
}

// UnmarshalJSON accepts either a single hit object or an array of hits.
func (l *hitList) UnmarshalJSON(data []byte) error {
	var many []hit
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one hit
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = hitList{one}
	return nil
}

// flexText accepts either a JSON string or an object carrying a "text"
// field, both of which DBLP emits for titles and author names.
type flexText string

func (t *flexText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = flexText(s)
		return nil
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*t = flexText(obj.Text)
	return nil
}

// flexTextList accepts a single flexText or an array of them.
type flexTextList []flexText

func (l *flexTextList) UnmarshalJSON(data []byte) error {
	var many []flexText
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one flexText
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = flexTextList{one}
	return nil
}
