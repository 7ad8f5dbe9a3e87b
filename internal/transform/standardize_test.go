package transform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/martech-cli/internal/table"
)

func TestStandardizer_GoogleAds(t *testing.T) {
	in := table.New("campaign_id", "client_id", "date", "clicks", "impressions", "cost_usd", "device_type", "geo")
	require.NoError(t, in.AppendRow("G1", "C101", "2025-01-01", "10", "100", "5.25", "mobile", "US"))

	out := NewStandardizer(nil).Apply(in, "google_ads")

	assert.True(t, out.HasCol("spend_usd"))
	assert.False(t, out.HasCol("cost_usd"))
	assert.Equal(t, "5.25", out.Get(0, "spend_usd"))
	assert.Equal(t, "google_ads", out.Get(0, "platform"))
}

func TestStandardizer_FacebookRenames(t *testing.T) {
	in := table.New("fb_campaign_id", "client", "date", "clicks", "reach", "spend", "platform", "geo")
	require.NoError(t, in.AppendRow("FB1", "C102", "2025-01-01", int64(5), int64(200), 9.5, "Instagram", "CA"))

	out := NewStandardizer(nil).Apply(in, "facebook_ads")

	assert.Equal(t, "C102", out.Get(0, "client_id"))
	assert.Equal(t, int64(200), out.Get(0, "impressions"))
	assert.Equal(t, 9.5, out.Get(0, "spend_usd"))
	// The source's own "platform" field becomes platform_detail; the channel
	// tag takes the platform column.
	assert.Equal(t, "Instagram", out.Get(0, "platform_detail"))
	assert.Equal(t, "facebook_ads", out.Get(0, "platform"))
}

func TestStandardizer_DropsUnmappedColumns(t *testing.T) {
	in := table.New("campaign_id", "client_id", "date", "clicks", "impressions", "cost_usd", "device_type", "geo", "internal_note")
	require.NoError(t, in.AppendRow("G1", "C101", "2025-01-01", "1", "2", "3", "mobile", "US", "drop me"))

	out := NewStandardizer(nil).Apply(in, "google_ads")
	assert.False(t, out.HasCol("internal_note"))
}

func TestStandardizer_UnknownChannelPassesThrough(t *testing.T) {
	in := table.New("whatever")
	require.NoError(t, in.AppendRow("v"))

	out := NewStandardizer(nil).Apply(in, "tiktok_ads")

	assert.True(t, out.HasCol("whatever"))
	assert.Equal(t, "tiktok_ads", out.Get(0, "platform"))
	assert.Equal(t, 1, out.NumRows())
}

func TestLoadMappings_OverridesOneChannel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.yaml")
	yaml := `google_ads:
  - from: gid
    to: campaign_id
  - from: acct
    to: client_id
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	m, err := LoadMappings(path)
	require.NoError(t, err)

	assert.Len(t, m["google_ads"], 2)
	assert.Equal(t, "gid", m["google_ads"][0].From)
	// Untouched channels keep their defaults.
	assert.Equal(t, DefaultMappings()["facebook_ads"], m["facebook_ads"])
}

func TestLoadMappings_MissingFile(t *testing.T) {
	_, err := LoadMappings(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
