package sink

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/martech-cli/internal/table"
)

// CSVSink writes the fact table to a single CSV file, overwriting any
// previous snapshot.
type CSVSink struct {
	path string
}

// NewCSVSink creates a CSV sink targeting the given file path.
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

func (s *CSVSink) Close() error { return nil }

// Write writes the header and all rows. A zero-row table still produces a
// file carrying the full header.
func (s *CSVSink) Write(ctx context.Context, t *table.Table) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "sink: create dir %s", dir)
		}
	}

	f, err := os.Create(s.path)
	if err != nil {
		return eris.Wrapf(err, "sink: create %s", s.path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Cols()); err != nil {
		return eris.Wrap(err, "sink: write header")
	}

	for i := 0; i < t.NumRows(); i++ {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "sink: cancelled")
		}
		row := t.Row(i)
		record := make([]string, len(row))
		for j, v := range row {
			record[j] = formatCell(v)
		}
		if err := w.Write(record); err != nil {
			return eris.Wrapf(err, "sink: write row %d", i)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "sink: flush")
	}
	return eris.Wrap(f.Sync(), "sink: sync")
}
