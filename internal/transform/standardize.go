// Package transform implements the core of the marketing pipeline: column
// standardization, type enforcement, multi-source combination, the client
// join, metric derivation, and revenue attribution. Every stage takes tables
// and returns new tables; nothing is mutated in place.
package transform

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/martech-cli/internal/table"
)

// ColumnRename maps one source column onto its standardized name.
type ColumnRename struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Mappings holds the per-channel column renames. Order is significant: it
// fixes the column order of standardized tables.
type Mappings map[string][]ColumnRename

// DefaultMappings returns the built-in per-channel column mappings.
func DefaultMappings() Mappings {
	return Mappings{
		"google_ads": {
			{"campaign_id", "campaign_id"},
			{"client_id", "client_id"},
			{"date", "date"},
			{"clicks", "clicks"},
			{"impressions", "impressions"},
			{"cost_usd", "spend_usd"},
			{"device_type", "device_type"},
			{"geo", "geo"},
		},
		"facebook_ads": {
			{"fb_campaign_id", "campaign_id"},
			{"client", "client_id"},
			{"date", "date"},
			{"clicks", "clicks"},
			{"reach", "impressions"},
			{"spend", "spend_usd"},
			{"platform", "platform_detail"},
			{"geo", "geo"},
		},
		"email_campaigns": {
			{"email_id", "campaign_id"},
			{"client_id", "client_id"},
			{"date", "date"},
			{"emails_sent", "emails_sent"},
			{"open_rate", "open_rate"},
			{"click_rate", "click_rate"},
			{"subject_line", "subject_line"},
		},
		"web_traffic": {
			{"client_id", "client_id"},
			{"date", "date"},
			{"pageviews", "pageviews"},
			{"sessions", "sessions"},
			{"bounce_rate", "bounce_rate"},
			{"avg_session_duration", "avg_session_duration_str"},
		},
		"revenue": {
			{"client_id", "client_id"},
			{"date", "date"},
			{"channel", "channel"},
			{"attributed_revenue", "attributed_revenue_usd"},
		},
	}
}

// LoadMappings reads per-channel column mappings from a YAML file. Channels
// present in the file replace the defaults; the rest keep theirs.
func LoadMappings(path string) (Mappings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "standardize: read mappings file")
	}

	var overrides Mappings
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, eris.Wrap(err, "standardize: parse mappings file")
	}

	m := DefaultMappings()
	for channel, renames := range overrides {
		m[channel] = renames
	}
	return m, nil
}

// Standardizer renames each source's native columns onto the shared
// fact-table schema and tags rows with their originating channel.
type Standardizer struct {
	mappings Mappings
}

// NewStandardizer creates a Standardizer. A nil mappings argument uses the
// built-in defaults.
func NewStandardizer(m Mappings) *Standardizer {
	if m == nil {
		m = DefaultMappings()
	}
	return &Standardizer{mappings: m}
}

// Apply returns a table whose columns are exactly the channel's target
// mapping plus a platform column set to the channel name. Columns outside
// the mapping are dropped. An unknown channel is non-fatal: the table passes
// through unmodified except for the platform tag.
func (s *Standardizer) Apply(t *table.Table, channel string) *table.Table {
	out := t.Clone()

	renames, ok := s.mappings[channel]
	if !ok {
		zap.L().Warn("standardize: no column mapping for channel, passing through",
			zap.String("channel", channel))
		out.AddCol("platform", channel)
		return out
	}

	for _, r := range renames {
		if out.HasCol(r.From) {
			_ = out.Rename(r.From, r.To)
		}
	}
	out.AddCol("platform", channel)

	want := make([]string, 0, len(renames)+1)
	for _, r := range renames {
		want = append(want, r.To)
	}
	want = append(want, "platform")
	return out.Select(want...)
}
