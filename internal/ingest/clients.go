package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/martech-cli/internal/model"
	"github.com/sells-group/martech-cli/internal/table"
)

// Clients reads the client roster. Both .csv and .xlsx rosters are accepted;
// the format is chosen by file extension. signup_date values are parsed to
// dates where possible, null otherwise.
func Clients(path string) (*table.Table, error) {
	var clients []model.Client
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		clients, err = clientsFromXLSX(path)
	default:
		clients, err = clientsFromCSV(path)
	}
	if err != nil {
		return nil, err
	}

	t := table.New(model.ClientColumns...)
	for _, c := range clients {
		var signup any
		if ts, ok := parseSignupDate(c.SignupDate); ok {
			signup = ts
		}
		if err := t.AppendRow(c.ClientID, c.Name, c.Industry, c.AccountManager, signup); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func clientsFromCSV(path string) ([]model.Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", path)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var clients []model.Client
	if err := csvutil.Unmarshal(data, &clients); err != nil {
		return nil, eris.Wrapf(err, "ingest: parse clients csv %s", path)
	}
	return clients, nil
}

func clientsFromXLSX(path string) ([]model.Client, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("ingest: xlsx %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, nil
	}

	colIdx := make(map[string]int, len(sheet.Rows[0].Cells))
	for i, cell := range sheet.Rows[0].Cells {
		colIdx[strings.TrimSpace(strings.ToLower(cell.String()))] = i
	}
	for _, col := range model.ClientColumns {
		if _, ok := colIdx[col]; !ok {
			return nil, eris.Errorf("ingest: clients xlsx is missing required column %q", col)
		}
	}

	cellAt := func(row *xlsx.Row, col string) string {
		idx := colIdx[col]
		if idx >= len(row.Cells) {
			return ""
		}
		return strings.TrimSpace(row.Cells[idx].String())
	}

	var clients []model.Client
	for _, row := range sheet.Rows[1:] {
		c := model.Client{
			ClientID:       cellAt(row, "client_id"),
			Name:           cellAt(row, "name"),
			Industry:       cellAt(row, "industry"),
			AccountManager: cellAt(row, "account_manager"),
			SignupDate:     cellAt(row, "signup_date"),
		}
		if c.ClientID == "" {
			continue
		}
		clients = append(clients, c)
	}
	return clients, nil
}

func parseSignupDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range ingestDateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
