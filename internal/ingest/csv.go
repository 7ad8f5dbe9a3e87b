// Package ingest reads the per-channel raw marketing files into tables. Each
// reader validates required columns and applies lenient type coercion; the
// core transform stages re-coerce, so values that fail here pass through
// as-is.
package ingest

import (
	"encoding/csv"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/martech-cli/internal/table"
)

// readCSVTable reads a CSV file into a table of string cells. An empty file
// yields an empty, columnless table.
func readCSVTable(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if eris.Is(err, fs.ErrNotExist) {
			return nil, eris.Wrapf(err, "ingest: file not found %s", path)
		}
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read csv %s", path)
	}
	if len(records) == 0 {
		return table.New(), nil
	}

	header := make([]string, len(records[0]))
	for i, col := range records[0] {
		header[i] = strings.TrimSpace(col)
	}

	t := table.New(header...)
	for _, row := range records[1:] {
		vals := make([]any, len(header))
		for i := range header {
			if i < len(row) {
				vals[i] = strings.TrimSpace(row[i])
			}
		}
		if err := t.AppendRow(vals...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// requireCols verifies that a table carries every required column.
func requireCols(t *table.Table, source string, cols []string) error {
	var missing []string
	for _, col := range cols {
		if !t.HasCol(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return eris.Errorf("ingest: %s is missing required columns: %s", source, strings.Join(missing, ", "))
	}
	return nil
}

// coerceNumeric parses string cells of the named columns to float64 where
// possible. Unparseable values are left as-is for the type enforcer to flag.
func coerceNumeric(t *table.Table, cols ...string) {
	for _, col := range cols {
		if !t.HasCol(col) {
			continue
		}
		for i := 0; i < t.NumRows(); i++ {
			s, ok := t.Get(i, col).(string)
			if !ok {
				continue
			}
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				t.Set(i, col, f)
			}
		}
	}
}

// ingestDateLayouts are the formats accepted during lenient date coercion.
var ingestDateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

// coerceDates parses string cells of a date column to time.Time where
// possible.
func coerceDates(t *table.Table, col string) {
	if !t.HasCol(col) {
		return
	}
	for i := 0; i < t.NumRows(); i++ {
		s, ok := t.Get(i, col).(string)
		if !ok {
			continue
		}
		for _, layout := range ingestDateLayouts {
			if ts, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
				t.Set(i, col, ts.UTC())
				break
			}
		}
	}
}
