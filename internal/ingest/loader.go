package ingest

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/martech-cli/internal/model"
	"github.com/sells-group/martech-cli/internal/table"
)

// Paths holds the raw file location for each source.
type Paths struct {
	GoogleAds      string `yaml:"google_ads" mapstructure:"google_ads"`
	FacebookAds    string `yaml:"facebook_ads" mapstructure:"facebook_ads"`
	EmailCampaigns string `yaml:"email_campaigns" mapstructure:"email_campaigns"`
	WebTraffic     string `yaml:"web_traffic" mapstructure:"web_traffic"`
	Clients        string `yaml:"clients" mapstructure:"clients"`
	Revenue        string `yaml:"revenue" mapstructure:"revenue"`
}

// LoadAll reads all six sources concurrently. A source that is missing or
// malformed is logged and omitted from the result (degraded, not fatal);
// whether an absent source aborts the run is the transform stages' call.
func LoadAll(ctx context.Context, paths Paths) (map[string]*table.Table, error) {
	readers := []struct {
		name string
		path string
		read func(string) (*table.Table, error)
	}{
		{model.PlatformGoogleAds, paths.GoogleAds, GoogleAds},
		{model.PlatformFacebookAds, paths.FacebookAds, FacebookAds},
		{model.PlatformEmail, paths.EmailCampaigns, EmailCampaigns},
		{model.PlatformWebTraffic, paths.WebTraffic, WebTraffic},
		{model.SourceClients, paths.Clients, Clients},
		{model.SourceRevenue, paths.Revenue, Revenue},
	}

	var mu sync.Mutex
	tables := make(map[string]*table.Table, len(readers))

	g, _ := errgroup.WithContext(ctx)
	for _, r := range readers {
		g.Go(func() error {
			t, err := r.read(r.path)
			if err != nil {
				zap.L().Warn("ingest: source unavailable",
					zap.String("source", r.name),
					zap.String("path", r.path),
					zap.Error(err),
				)
				return nil // degrade, don't abort the batch
			}
			zap.L().Info("ingest: source loaded",
				zap.String("source", r.name),
				zap.Int("rows", t.NumRows()),
			)
			mu.Lock()
			tables[r.name] = t
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}
