package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/martech-cli/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGoogleAds_ReadsAndCoerces(t *testing.T) {
	path := writeFile(t, "google_ads.csv",
		"campaign_id,client_id,date,clicks,impressions,cost_usd,device_type,geo\n"+
			"G1,C101,2025-01-01,10,100,5.25,mobile,US\n"+
			"G2,C102,2025-01-02,bad,200,7.00,desktop,CA\n")

	out, err := GoogleAds(path)
	require.NoError(t, err)

	require.Equal(t, 2, out.NumRows())
	assert.Equal(t, 10.0, out.Get(0, "clicks"))
	assert.Equal(t, 5.25, out.Get(0, "cost_usd"))
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), out.Get(0, "date"))
	// Unparseable values are left as strings for the enforcer.
	assert.Equal(t, "bad", out.Get(1, "clicks"))
}

func TestGoogleAds_MissingColumnIsError(t *testing.T) {
	path := writeFile(t, "google_ads.csv", "campaign_id,client_id\nG1,C101\n")

	_, err := GoogleAds(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
}

func TestGoogleAds_EmptyFile(t *testing.T) {
	path := writeFile(t, "google_ads.csv", "")

	out, err := GoogleAds(path)
	require.NoError(t, err)
	assert.Equal(t, 0, out.NumRows())
}

func TestGoogleAds_FileNotFound(t *testing.T) {
	_, err := GoogleAds(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestFacebookAds_ReadsJSON(t *testing.T) {
	path := writeFile(t, "facebook_ads.json", `[
		{"fb_campaign_id":"FB1","client":"C101","date":"2025-01-01","clicks":30,"reach":600,"spend":27.5,"platform":"Instagram","geo":"US"},
		{"fb_campaign_id":"FB2","client":"C102","date":"2025-01-02","clicks":12,"reach":240,"spend":10.1,"platform":"Facebook","geo":"CA","extra":"x"}
	]`)

	out, err := FacebookAds(path)
	require.NoError(t, err)

	require.Equal(t, 2, out.NumRows())
	assert.Equal(t, "C101", out.Get(0, "client"))
	assert.Equal(t, 30.0, out.Get(0, "clicks"))
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), out.Get(1, "date"))
	// Extra keys survive as trailing columns.
	assert.True(t, out.HasCol("extra"))
	assert.Nil(t, out.Get(0, "extra"))
}

func TestFacebookAds_MissingRequiredKey(t *testing.T) {
	path := writeFile(t, "facebook_ads.json", `[{"fb_campaign_id":"FB1","client":"C101","date":"2025-01-01","clicks":1,"reach":2,"spend":3.0,"platform":"Facebook"}]`)

	_, err := FacebookAds(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geo")
}

func TestFacebookAds_InvalidJSON(t *testing.T) {
	path := writeFile(t, "facebook_ads.json", `{"not":"an array"}`)

	_, err := FacebookAds(path)
	assert.Error(t, err)
}

func TestRevenue_Reads(t *testing.T) {
	path := writeFile(t, "revenue.csv",
		"client_id,date,channel,attributed_revenue\nC101,2025-01-01,google_ads,150.50\n")

	out, err := Revenue(path)
	require.NoError(t, err)
	assert.Equal(t, 150.5, out.Get(0, "attributed_revenue"))
	assert.Equal(t, "google_ads", out.Get(0, "channel"))
}

func TestClients_CSV(t *testing.T) {
	path := writeFile(t, "clients.csv",
		"client_id,name,industry,account_manager,signup_date\n"+
			"C101,Summit Group,Tech,Jordan Avery,2023-06-01\n"+
			"C102,Harbor Labs,Retail,Casey Morgan,not-a-date\n")

	out, err := Clients(path)
	require.NoError(t, err)

	require.Equal(t, 2, out.NumRows())
	assert.Equal(t, model.ClientColumns, out.Cols())
	assert.Equal(t, "Summit Group", out.Get(0, "name"))
	assert.Equal(t, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), out.Get(0, "signup_date"))
	assert.Nil(t, out.Get(1, "signup_date"))
}

func TestLoadAll_DegradesOnMissingSources(t *testing.T) {
	dir := t.TempDir()
	clientsPath := filepath.Join(dir, "clients.csv")
	require.NoError(t, os.WriteFile(clientsPath,
		[]byte("client_id,name,industry,account_manager,signup_date\nC101,Summit Group,Tech,Jordan Avery,2023-06-01\n"), 0o644))

	tables, err := LoadAll(context.Background(), Paths{
		GoogleAds:      filepath.Join(dir, "missing.csv"),
		FacebookAds:    filepath.Join(dir, "missing.json"),
		EmailCampaigns: filepath.Join(dir, "missing.csv"),
		WebTraffic:     filepath.Join(dir, "missing.csv"),
		Clients:        clientsPath,
		Revenue:        filepath.Join(dir, "missing.csv"),
	})
	require.NoError(t, err)

	assert.Len(t, tables, 1)
	assert.Contains(t, tables, model.SourceClients)
}
