// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qwei/paperdex/pkg/types"
)

func TestExportURLFromTOCPage(t *testing.T) {
	got, err := ExportURL("https://dblp.org/db/conf/isca/isca2023.html")
	if err != nil {
		t.Fatalf("ExportURL: %v", err)
	}

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parsing result: %v", err)
	}
	q := u.Query()
	if want := "toc:db/conf/isca/isca2023.bht:"; q.Get("q") != want {
		t.Errorf("q = %q, want %q", q.Get("q"), want)
	}
	if q.Get("h") != "1000" || q.Get("format") != "json" {
		t.Errorf("h/format params wrong in %q", got)
	}
}

func TestExportURLFromSearchPage(t *testing.T) {
	got, err := ExportURL("https://dblp.org/search?q=mlsys+2023")
	if err != nil {
		t.Fatalf("ExportURL: %v", err)
	}
	u, _ := url.Parse(got)
	if q := u.Query().Get("q"); q != "mlsys 2023" {
		t.Errorf("q = %q, want passthrough of the search query", q)
	}
}

func TestExportURLUnrecognized(t *testing.T) {
	if _, err := ExportURL("https://example.com/venue"); err == nil {
		t.Error("ExportURL accepted an unrecognized URL")
	}
}

const exportFixture = `{
  "result": {
    "hits": {
      "hit": [
        {"info": {"title": "Welcome Address.",
                  "authors": {"author": {"@pid": "x/Y", "text": "General Chair"}}}},
        {"info": {"title": "A Real Paper.",
                  "authors": {"author": [
                    {"@pid": "a/A", "text": "Alice Au"},
                    {"@pid": "b/B", "text": "Bob Bu"}]}}},
        {"info": {"title": {"text": "Object Title Paper."},
                  "authors": {"author": "Solo Author"}}},
        {"info": {"title": "", "authors": {"author": []}}}
      ]
    }
  }
}`

func TestParseListing(t *testing.T) {
	records, err := ParseListing([]byte(exportFixture), "ISCA", 2023)
	if err != nil {
		t.Fatalf("ParseListing: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3 (untitled row dropped)", len(records))
	}

	r := records[1]
	if r.Title != "A Real Paper." {
		t.Errorf("title = %q", r.Title)
	}
	if r.Authors != "Alice Au; Bob Bu" {
		t.Errorf("authors = %q, want semicolon-joined", r.Authors)
	}
	if r.Conference != "ISCA" || r.Year != "2023" {
		t.Errorf("conference/year = %q/%q", r.Conference, r.Year)
	}

	if records[2].Title != "Object Title Paper." || records[2].Authors != "Solo Author" {
		t.Errorf("object-shaped fields parsed wrong: %+v", records[2])
	}
}

func TestParseListingSingleHitObject(t *testing.T) {
	doc := `{"result":{"hits":{"hit":
		{"info":{"title":"Only Paper.","authors":{"author":"One Author"}}}}}}`
	records, err := ParseListing([]byte(doc), "HPCA", 2022)
	if err != nil {
		t.Fatalf("ParseListing: %v", err)
	}
	if len(records) != 1 || records[0].Title != "Only Paper." {
		t.Errorf("records = %+v, want single hit tolerated", records)
	}
}

func TestParseListingMalformed(t *testing.T) {
	if _, err := ParseListing([]byte("<html>not json</html>"), "X", 2020); err == nil {
		t.Error("ParseListing accepted non-JSON input")
	}
}

func TestFetchListing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("format"); got != "json" {
			t.Errorf("format param = %q, want json", got)
		}
		fmt.Fprint(w, exportFixture)
	}))
	defer ts.Close()

	old := exportAPIBase
	exportAPIBase = ts.URL
	defer func() { exportAPIBase = old }()

	conf := Conference{Name: "ISCA", Year: 2023, URL: "https://dblp.org/db/conf/isca/isca2023.html"}
	records, err := FetchListing(context.Background(), ts.Client(), conf, types.HarvestConfig{})
	if err != nil {
		t.Fatalf("FetchListing: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}
}

func TestLoadConferences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conferences.yaml")
	content := strings.Join([]string{
		`- name: ISCA`,
		`  year: 2023`,
		`  url: https://dblp.org/db/conf/isca/isca2023.html`,
		`- name: MLSys`,
		`  year: 2024`,
		`  url: https://dblp.org/search?q=mlsys+2024`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	confs, err := LoadConferences(path)
	if err != nil {
		t.Fatalf("LoadConferences: %v", err)
	}
	if len(confs) != 2 || confs[0].Name != "ISCA" || confs[1].Year != 2024 {
		t.Errorf("conferences = %+v", confs)
	}
}
