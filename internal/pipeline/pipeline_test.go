package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/martech-cli/internal/ingest"
	"github.com/sells-group/martech-cli/internal/model"
	"github.com/sells-group/martech-cli/internal/report"
	"github.com/sells-group/martech-cli/internal/sink"
	"github.com/sells-group/martech-cli/internal/store"
	"github.com/sells-group/martech-cli/internal/table"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// fixtureSources writes a small but complete raw dataset and returns its paths.
func fixtureSources(t *testing.T) ingest.Paths {
	t.Helper()
	dir := t.TempDir()
	return ingest.Paths{
		GoogleAds: writeFixture(t, dir, "google_ads.csv",
			"campaign_id,client_id,date,clicks,impressions,cost_usd,device_type,geo\n"+
				"G1,C101,2025-01-01,50,1000,25.00,mobile,US\n"),
		FacebookAds: writeFixture(t, dir, "facebook_ads.json",
			`[{"fb_campaign_id":"FB1","client":"C102","date":"2025-01-01","clicks":20,"reach":400,"spend":44.0,"platform":"Instagram","geo":"CA"}]`),
		EmailCampaigns: writeFixture(t, dir, "email_campaigns.csv",
			"email_id,client_id,date,emails_sent,open_rate,click_rate,subject_line\n"+
				"E1,C101,2025-01-01,1000,0.40,0.10,Big Sale\n"),
		WebTraffic: writeFixture(t, dir, "web_traffic.csv",
			"client_id,date,pageviews,sessions,bounce_rate,avg_session_duration\n"+
				"C999,2025-01-01,300,150,0.25,00:03:00\n"),
		Clients: writeFixture(t, dir, "clients.csv",
			"client_id,name,industry,account_manager,signup_date\n"+
				"C101,Summit Group,Tech,Jordan Avery,2023-06-01\n"+
				"C102,Harbor Labs,Retail,Casey Morgan,2022-01-15\n"),
		Revenue: writeFixture(t, dir, "revenue.csv",
			"client_id,date,channel,attributed_revenue\n"+
				"C101,2025-01-01,google_ads,500.00\n"+
				"C102,2025-01-01,facebook,22.00\n"),
	}
}

func newTestPipeline(t *testing.T, opts Options) (*Pipeline, store.Store, string) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	outCSV := filepath.Join(t.TempDir(), "facts.csv")
	sk := sink.NewCSVSink(outCSV)
	return New(opts, st, sk), st, outCSV
}

func TestPipeline_FullRun(t *testing.T) {
	reportDir := t.TempDir()
	p, st, outCSV := newTestPipeline(t, Options{
		Sources:   fixtureSources(t),
		ReportDir: reportDir,
	})

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, res.Rows)
	assert.NotEmpty(t, res.RunID)

	run, err := st.GetRun(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.Equal(t, int64(4), run.Rows)

	// The sink snapshot is readable and attributed.
	fact, err := report.LoadFromCSV(outCSV)
	require.NoError(t, err)
	require.Equal(t, 4, fact.NumRows())
	assert.True(t, fact.HasCol("attributed_revenue_from_source_usd"))
	assert.True(t, fact.HasCol("ctr"))
	assert.True(t, fact.HasCol("name"))

	var googleRevenue, fbRevenue float64
	for i := 0; i < fact.NumRows(); i++ {
		platform, _ := fact.Get(i, "platform").(string)
		rev, _ := table.AsFloat(fact.Get(i, "attributed_revenue_from_source_usd"))
		switch platform {
		case "google_ads":
			googleRevenue = rev
		case "facebook_ads":
			fbRevenue = rev
		}
	}
	assert.Equal(t, 500.0, googleRevenue)
	assert.Equal(t, 22.0, fbRevenue)

	// Lift rows come back on the result when a report dir is set.
	assert.NotEmpty(t, res.Lift)
	_, err = os.Stat(filepath.Join(reportDir, "cross_channel_lift_report.csv"))
	assert.NoError(t, err)
}

func TestPipeline_UnmatchedClientGetsUnknown(t *testing.T) {
	p, _, outCSV := newTestPipeline(t, Options{Sources: fixtureSources(t)})

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	fact, err := report.LoadFromCSV(outCSV)
	require.NoError(t, err)

	found := false
	for i := 0; i < fact.NumRows(); i++ {
		if id, _ := fact.Get(i, "client_id").(string); id == "C999" {
			found = true
			assert.Equal(t, "Unknown", fact.Get(i, "name"))
		}
	}
	assert.True(t, found)
}

func TestPipeline_MissingClientsFailsRun(t *testing.T) {
	sources := fixtureSources(t)
	sources.Clients = filepath.Join(t.TempDir(), "missing.csv")

	p, st, _ := newTestPipeline(t, Options{Sources: sources})

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client dimension")

	runs, err := st.ListRuns(context.Background(), store.RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Contains(t, runs[0].Error, "client dimension")
}

func TestPipeline_MissingLedgerDegradesToZero(t *testing.T) {
	sources := fixtureSources(t)
	sources.Revenue = filepath.Join(t.TempDir(), "missing.csv")

	p, _, outCSV := newTestPipeline(t, Options{Sources: sources})

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Rows)

	fact, err := report.LoadFromCSV(outCSV)
	require.NoError(t, err)
	require.True(t, fact.HasCol("attributed_revenue_from_source_usd"))
	for i := 0; i < fact.NumRows(); i++ {
		rev, _ := table.AsFloat(fact.Get(i, "attributed_revenue_from_source_usd"))
		assert.Equal(t, 0.0, rev)
	}
}

func TestPipeline_RecordsStages(t *testing.T) {
	p, st, _ := newTestPipeline(t, Options{Sources: fixtureSources(t)})

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	// Sanity: the run log has the run and it completed.
	run, err := st.GetRun(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
}
