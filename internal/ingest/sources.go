package ingest

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/martech-cli/internal/table"
)

// GoogleAds reads the paid-search activity CSV.
func GoogleAds(path string) (*table.Table, error) {
	t, err := readCSVTable(path)
	if err != nil {
		return nil, err
	}
	if t.NumRows() == 0 && t.NumCols() == 0 {
		return t, nil
	}
	required := []string{"campaign_id", "client_id", "date", "clicks", "impressions", "cost_usd", "device_type", "geo"}
	if err := requireCols(t, "google_ads", required); err != nil {
		return nil, err
	}
	coerceDates(t, "date")
	coerceNumeric(t, "clicks", "impressions", "cost_usd")
	return t, nil
}

// EmailCampaigns reads the email-send activity CSV.
func EmailCampaigns(path string) (*table.Table, error) {
	t, err := readCSVTable(path)
	if err != nil {
		return nil, err
	}
	if t.NumRows() == 0 && t.NumCols() == 0 {
		return t, nil
	}
	required := []string{"email_id", "client_id", "date", "emails_sent", "open_rate", "click_rate", "subject_line"}
	if err := requireCols(t, "email_campaigns", required); err != nil {
		return nil, err
	}
	coerceDates(t, "date")
	coerceNumeric(t, "emails_sent", "open_rate", "click_rate")
	return t, nil
}

// WebTraffic reads the organic web sessions CSV.
func WebTraffic(path string) (*table.Table, error) {
	t, err := readCSVTable(path)
	if err != nil {
		return nil, err
	}
	if t.NumRows() == 0 && t.NumCols() == 0 {
		return t, nil
	}
	required := []string{"client_id", "date", "pageviews", "sessions", "bounce_rate", "avg_session_duration"}
	if err := requireCols(t, "web_traffic", required); err != nil {
		return nil, err
	}
	coerceDates(t, "date")
	coerceNumeric(t, "pageviews", "sessions", "bounce_rate")
	return t, nil
}

// Revenue reads the ledgered revenue CSV.
func Revenue(path string) (*table.Table, error) {
	t, err := readCSVTable(path)
	if err != nil {
		return nil, err
	}
	if t.NumRows() == 0 && t.NumCols() == 0 {
		return t, nil
	}
	required := []string{"client_id", "date", "channel", "attributed_revenue"}
	if err := requireCols(t, "revenue", required); err != nil {
		return nil, err
	}
	coerceDates(t, "date")
	coerceNumeric(t, "attributed_revenue")
	return t, nil
}

// fbRequiredCols are the columns a facebook_ads record must carry. The
// source uses its own native names; the standardizer renames them.
var fbRequiredCols = []string{"fb_campaign_id", "client", "date", "clicks", "reach", "spend", "platform", "geo"}

// FacebookAds reads the paid-social activity JSON (an array of objects).
func FacebookAds(path string) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", path)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "ingest: parse facebook_ads json %s", path)
	}
	if len(records) == 0 {
		return table.New(), nil
	}

	// Column set is the union of keys across records, required columns first.
	seen := make(map[string]bool, len(fbRequiredCols))
	cols := make([]string, 0, len(fbRequiredCols))
	for _, c := range fbRequiredCols {
		cols = append(cols, c)
		seen[c] = true
	}
	var extras []string
	for _, rec := range records {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				extras = append(extras, k)
			}
		}
	}
	sort.Strings(extras)
	cols = append(cols, extras...)

	t := table.New(cols...)
	for _, rec := range records {
		vals := make([]any, len(cols))
		for i, c := range cols {
			vals[i] = rec[c]
		}
		if err := t.AppendRow(vals...); err != nil {
			return nil, err
		}
	}

	for _, c := range fbRequiredCols {
		hasAny := false
		for i := 0; i < t.NumRows(); i++ {
			if t.Get(i, c) != nil {
				hasAny = true
				break
			}
		}
		if !hasAny {
			return nil, eris.Errorf("ingest: facebook_ads is missing required column %q", c)
		}
	}

	coerceDates(t, "date")
	coerceNumeric(t, "clicks", "reach", "spend")
	return t, nil
}
