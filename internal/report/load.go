package report

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/martech-cli/internal/table"
)

// LoadFromSQLite reads a persisted fact table back out of SQLite.
func LoadFromSQLite(dsn, tableName string) (*table.Table, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "report: open sqlite")
	}
	defer db.Close()

	rows, err := db.Query(fmt.Sprintf(`SELECT * FROM %q`, tableName))
	if err != nil {
		return nil, eris.Wrapf(err, "report: query %s", tableName)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, eris.Wrap(err, "report: read columns")
	}

	t := table.New(cols...)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, eris.Wrap(err, "report: scan row")
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		if err := t.AppendRow(vals...); err != nil {
			return nil, eris.Wrap(err, "report: append row")
		}
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "report: iterate rows")
	}
	return t, nil
}

// LoadFromCSV reads a persisted fact table back out of a CSV snapshot,
// restoring numeric and date cells from their text rendering.
func LoadFromCSV(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "report: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "report: parse %s", path)
	}
	if len(records) == 0 {
		return table.New(), nil
	}

	t := table.New(records[0]...)
	for _, record := range records[1:] {
		row := make([]any, len(record))
		for i, s := range record {
			row[i] = parseCSVCell(s)
		}
		if err := t.AppendRow(row...); err != nil {
			return nil, eris.Wrapf(err, "report: append row from %s", path)
		}
	}
	return t, nil
}

func parseCSVCell(s string) any {
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if ts, err := time.Parse("2006-01-02", s); err == nil {
		return ts
	}
	return s
}
