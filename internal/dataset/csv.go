// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset reads and writes the working CSV of paper records.
package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/qwei/paperdex/pkg/types"
)

// Columns is the fixed output column order. Extra input columns are
// appended after these in their original header order.
var Columns = []string{"title", "authors", "conference", "year", "abstract", "citationCount", "affiliations"}

const bom = "\uFEFF"

// Dataset is the full in-memory working set plus the extra input columns
// that ride along outside the output contract.
type Dataset struct {
	Records []types.PaperRecord

	// ExtraColumns preserves the order of input columns not in Columns.
	ExtraColumns []string
}

// Load reads a CSV file into a Dataset. The file may start with a UTF-8
// byte-order mark. The header must include at least the title, authors,
// conference, and year columns; enrichment columns default when absent.
// Citation cells are coerced on entry so every in-memory record satisfies
// the non-negative integer invariant.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	// Strip the BOM before the CSV parser sees it, so a quoted first
	// header field is still recognized.
	if lead, err := br.Peek(len(bom)); err == nil && string(lead) == bom {
		br.Discard(len(bom))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	idx := make(map[string]int, len(header))
	var extras []string
	known := make(map[string]bool, len(Columns))
	for _, c := range Columns {
		known[c] = true
	}
	for i, col := range header {
		name := strings.TrimSpace(col)
		if _, dup := idx[name]; dup {
			continue
		}
		idx[name] = i
		if !known[name] {
			extras = append(extras, name)
		}
	}
	for _, required := range []string{"title", "authors", "conference", "year"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []types.PaperRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(records)+2, err)
		}

		rec := types.PaperRecord{
			Title:         cell(row, "title"),
			Authors:       cell(row, "authors"),
			Conference:    cell(row, "conference"),
			Year:          cell(row, "year"),
			Abstract:      cell(row, "abstract"),
			CitationCount: CoerceCount(cell(row, "citationCount")),
			Affiliations:  cell(row, "affiliations"),
		}
		if len(extras) > 0 {
			rec.Extra = make(map[string]string, len(extras))
			for _, name := range extras {
				rec.Extra[name] = cell(row, name)
			}
		}
		records = append(records, rec)
	}

	return &Dataset{Records: records, ExtraColumns: extras}, nil
}

// Store writes the dataset with a UTF-8 BOM and the contract header. The
// file is written next to the target and renamed into place so an
// interrupted flush never leaves a half-written output.
func Store(path string, ds *Dataset) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".dataset-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := bufio.NewWriter(tmp)
	if _, err := w.WriteString(bom); err != nil {
		tmp.Close()
		return fmt.Errorf("writing BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	header := append(append([]string{}, Columns...), ds.ExtraColumns...)
	if err := cw.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("writing header: %w", err)
	}

	for _, rec := range ds.Records {
		row := []string{
			rec.Title,
			rec.Authors,
			rec.Conference,
			rec.Year,
			rec.Abstract,
			strconv.Itoa(rec.CitationCount),
			rec.Affiliations,
		}
		for _, name := range ds.ExtraColumns {
			row = append(row, rec.Extra[name])
		}
		if err := cw.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing rows: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// CoerceCount turns a citation cell into a non-negative integer. Blank,
// non-numeric, and negative inputs all coerce to 0; coercion never fails.
func CoerceCount(cell string) int {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0
	}
	n, err := strconv.Atoi(cell)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
