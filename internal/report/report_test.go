package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/martech-cli/internal/table"
	"github.com/sells-group/martech-cli/internal/transform"
)

func reportFixture(t *testing.T) *table.Table {
	t.Helper()
	tb := table.New("client_id", "date", "platform", "campaign_id", "clicks", "impressions", "spend_usd",
		"total_interactions", transform.AttributedRevenueCol)
	day1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, tb.AppendRow("C101", day1, "google_ads", "G1", int64(50), int64(1000), 25.0, int64(50), 500.0))
	require.NoError(t, tb.AppendRow("C101", day1, "google_ads", "G1", int64(30), int64(500), 15.0, int64(30), 0.0))
	require.NoError(t, tb.AppendRow("C102", day2, "facebook_ads", "FB1", int64(20), int64(400), 44.0, int64(20), 22.0))
	require.NoError(t, tb.AppendRow("C101", day1, "web_traffic", "Unknown", int64(0), int64(0), 0.0, int64(100), 80.0))
	return tb
}

func readReport(t *testing.T, dir, name string) [][]string {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestGenerator_DailyClientSpend(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewGenerator(dir).Generate(reportFixture(t)))

	records := readReport(t, dir, "daily_client_spend_report.csv")
	require.Len(t, records, 3)
	assert.Equal(t, []string{"date", "client_id", "spend_usd"}, records[0])
	assert.Equal(t, []string{"2025-01-01", "C101", "40"}, records[1])
	assert.Equal(t, []string{"2025-01-02", "C102", "44"}, records[2])
}

func TestGenerator_ClicksByPlatform(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewGenerator(dir).Generate(reportFixture(t)))

	records := readReport(t, dir, "total_clicks_by_platform_report.csv")
	require.Len(t, records, 4)
	assert.Equal(t, []string{"facebook_ads", "20"}, records[1])
	assert.Equal(t, []string{"google_ads", "80"}, records[2])
	assert.Equal(t, []string{"web_traffic", "0"}, records[3])
}

func TestGenerator_CTRTrendsFiltersAdPlatforms(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewGenerator(dir).Generate(reportFixture(t)))

	records := readReport(t, dir, "ctr_trends_report.csv")
	require.Len(t, records, 3)
	// Day one: google only (web traffic excluded), 80 clicks / 1500 impressions.
	assert.Equal(t, "2025-01-01", records[1][0])
	assert.Equal(t, "80", records[1][1])
	assert.Equal(t, "1500", records[1][2])
	// Day two: facebook, 20/400 = 5%.
	assert.Equal(t, "5", records[2][3])
}

func TestGenerator_CampaignSummary(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewGenerator(dir).Generate(reportFixture(t)))

	records := readReport(t, dir, "campaign_summary_report.csv")
	require.Len(t, records, 4)
	assert.Equal(t, []string{"client_id", "campaign_id", "total_spend", "total_clicks", "total_impressions"}, records[0])
	assert.Equal(t, []string{"C101", "G1", "40", "80", "1500"}, records[1])
}

func TestGenerator_MissingColumnsSkipsReport(t *testing.T) {
	dir := t.TempDir()
	bare := table.New("client_id")
	require.NoError(t, bare.AppendRow("C1"))

	require.NoError(t, NewGenerator(dir).Generate(bare))

	_, err := os.Stat(filepath.Join(dir, "daily_client_spend_report.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerator_Lift(t *testing.T) {
	dir := t.TempDir()
	rows, err := NewGenerator(dir).Lift(reportFixture(t))
	require.NoError(t, err)

	require.Len(t, rows, 3)
	// A touchpoint is one fact row, so revenue per touchpoint sorts
	// google 500/2=250, web 80/1=80, facebook 22/1=22.
	assert.Equal(t, "google_ads", rows[0].Platform)
	assert.Equal(t, int64(2), rows[0].TotalTouchpoints)
	assert.InDelta(t, 250.0, rows[0].RevenuePerTouch, 1e-9)
	assert.Equal(t, "web_traffic", rows[1].Platform)
	assert.Equal(t, "facebook_ads", rows[2].Platform)

	// ROI: (500-40)/40*100 = 1150%.
	assert.InDelta(t, 1150.0, rows[0].AttributedROIPct, 1e-9)
	// Zero spend keeps ROI at zero instead of dividing by zero.
	assert.Equal(t, 0.0, rows[1].AttributedROIPct)

	_, err = os.Stat(filepath.Join(dir, "cross_channel_lift_report.csv"))
	assert.NoError(t, err)
}

func TestGenerator_LiftCountsRowsNotInteractions(t *testing.T) {
	tb := table.New("platform", "total_interactions", "spend_usd", "clicks", "impressions",
		transform.AttributedRevenueCol)
	require.NoError(t, tb.AppendRow("google_ads", int64(10), 1.0, int64(5), int64(50), 60.0))
	require.NoError(t, tb.AppendRow("google_ads", int64(10), 1.0, int64(5), int64(50), 40.0))

	rows, err := NewGenerator(t.TempDir()).Lift(tb)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	// Two rows, not twenty interactions.
	assert.Equal(t, int64(2), rows[0].TotalTouchpoints)
	assert.InDelta(t, 50.0, rows[0].RevenuePerTouch, 1e-9)
}

func TestGenerator_LiftWithoutAttributionColumns(t *testing.T) {
	bare := table.New("platform")
	require.NoError(t, bare.AppendRow("google_ads"))

	rows, err := NewGenerator(t.TempDir()).Lift(bare)
	require.NoError(t, err)
	assert.Nil(t, rows)
}
