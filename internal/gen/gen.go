// Package gen produces synthetic raw channel exports for local development
// and demos. Output is deterministic for a given seed.
package gen

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/martech-cli/internal/model"
)

// Config controls the size and shape of a generated dataset.
type Config struct {
	OutDir  string
	Clients int
	Days    int
	Start   time.Time
	Seed    int64
}

// Generator writes one full set of raw source files.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// New creates a Generator for the given config.
func New(cfg Config) *Generator {
	if cfg.Clients <= 0 {
		cfg.Clients = 10
	}
	if cfg.Days <= 0 {
		cfg.Days = 90
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

var industries = []string{
	"Tech", "Retail", "Finance", "Healthcare", "Hospitality", "SaaS",
	"E-commerce", "Manufacturing", "Education", "Marketing", "Consulting",
}

var geos = []string{"US", "CA", "UK", "DE", "FR", "AU", "NZ", "IE", "ES", "IT"}

var deviceTypes = []string{"mobile", "desktop", "tablet"}

var fbPlacements = []string{"Facebook", "Instagram", "Audience Network", "Messenger"}

var companyWords = []string{
	"Summit", "Harbor", "Cascade", "Beacon", "Orchard", "Granite",
	"Meridian", "Lakeside", "Pinnacle", "Foundry", "Atlas", "Juniper",
}

var companySuffixes = []string{"Group", "Labs", "Partners", "Media", "Systems", "Co"}

var managerNames = []string{
	"Jordan Avery", "Casey Morgan", "Riley Bennett", "Drew Sullivan",
	"Quinn Harper", "Avery Collins", "Reese Walker", "Sawyer Brooks",
}

var subjectWords = []string{
	"Spring Sale", "Weekly Digest", "New Arrivals", "Flash Deal",
	"Product Update", "Insider Tips", "Member Perks", "Last Chance",
}

type googleAdsRow struct {
	CampaignID  string  `csv:"campaign_id"`
	ClientID    string  `csv:"client_id"`
	Date        string  `csv:"date"`
	Clicks      int     `csv:"clicks"`
	Impressions int     `csv:"impressions"`
	CostUSD     float64 `csv:"cost_usd"`
	DeviceType  string  `csv:"device_type"`
	Geo         string  `csv:"geo"`
}

type emailRow struct {
	EmailID     string  `csv:"email_id"`
	ClientID    string  `csv:"client_id"`
	Date        string  `csv:"date"`
	EmailsSent  int     `csv:"emails_sent"`
	OpenRate    float64 `csv:"open_rate"`
	ClickRate   float64 `csv:"click_rate"`
	SubjectLine string  `csv:"subject_line"`
}

type webRow struct {
	ClientID        string  `csv:"client_id"`
	Date            string  `csv:"date"`
	Pageviews       int     `csv:"pageviews"`
	Sessions        int     `csv:"sessions"`
	BounceRate      float64 `csv:"bounce_rate"`
	SessionDuration string  `csv:"avg_session_duration"`
}

type revenueRow struct {
	ClientID   string  `csv:"client_id"`
	Date       string  `csv:"date"`
	Channel    string  `csv:"channel"`
	RevenueUSD float64 `csv:"attributed_revenue"`
}

// Generate writes clients.csv, google_ads.csv, facebook_ads.json,
// email_campaigns.csv, web_traffic.csv and revenue.csv into OutDir.
func (g *Generator) Generate() error {
	if err := os.MkdirAll(g.cfg.OutDir, 0o755); err != nil {
		return eris.Wrapf(err, "gen: create dir %s", g.cfg.OutDir)
	}

	clients := g.makeClients()
	if err := writeCSV(filepath.Join(g.cfg.OutDir, "clients.csv"), clients); err != nil {
		return err
	}

	var (
		google   []googleAdsRow
		facebook []map[string]any
		email    []emailRow
		web      []webRow
		revenue  []revenueRow
	)

	for day := 0; day < g.cfg.Days; day++ {
		date := g.cfg.Start.AddDate(0, 0, day).Format("2006-01-02")
		for _, c := range clients {
			if g.rng.Float64() >= 0.7 {
				continue
			}

			gaClicks, fbClicks, emailClicks, sessions := 0, 0, 0, 0

			if g.rng.Float64() < 0.85 {
				row := googleAdsRow{
					CampaignID: fmt.Sprintf("G%05d", 10000+g.rng.Intn(90000)),
					ClientID:   c.ClientID,
					Date:       date,
					Clicks:     20 + g.rng.Intn(980),
					DeviceType: pick(g.rng, deviceTypes),
					Geo:        pick(g.rng, geos),
				}
				row.Impressions = row.Clicks * (12 + g.rng.Intn(58))
				row.CostUSD = round2(float64(row.Clicks) * (0.6 + g.rng.Float64()*2.4))
				google = append(google, row)
				gaClicks += row.Clicks
			}

			if g.rng.Float64() < 0.75 {
				clicks := 30 + g.rng.Intn(770)
				facebook = append(facebook, map[string]any{
					"fb_campaign_id": fmt.Sprintf("FB%05d", 10000+g.rng.Intn(90000)),
					"client":         c.ClientID,
					"date":           date,
					"clicks":         clicks,
					"reach":          clicks * (20 + g.rng.Intn(60)),
					"spend":          round2(float64(clicks) * (0.9 + g.rng.Float64()*2.6)),
					"platform":       pick(g.rng, fbPlacements),
					"geo":            pick(g.rng, geos),
				})
				fbClicks += clicks
			}

			if g.rng.Float64() < 0.6 {
				row := emailRow{
					EmailID:     fmt.Sprintf("E%05d", 10000+g.rng.Intn(90000)),
					ClientID:    c.ClientID,
					Date:        date,
					EmailsSent:  10000 + g.rng.Intn(40000),
					SubjectLine: pick(g.rng, subjectWords),
				}
				row.OpenRate = round2(0.20 + g.rng.Float64()*0.30)
				row.ClickRate = round2(0.05 + g.rng.Float64()*(row.OpenRate*0.5))
				email = append(email, row)
				emailClicks += int(float64(row.EmailsSent) * row.ClickRate)
			}

			if g.rng.Float64() < 0.98 {
				row := webRow{
					ClientID:   c.ClientID,
					Date:       date,
					Sessions:   1000 + g.rng.Intn(9000),
					BounceRate: round2(0.10 + g.rng.Float64()*0.40),
				}
				row.Pageviews = int(float64(row.Sessions) * (1.3 + g.rng.Float64()*2.2))
				secs := 120 + g.rng.Intn(480)
				row.SessionDuration = fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
				web = append(web, row)
				sessions += row.Sessions
			}

			channelRevenue := []struct {
				channel string
				amount  float64
			}{
				{"google_ads", float64(gaClicks) * (4 + g.rng.Float64()*14)},
				{"facebook", float64(fbClicks) * (5 + g.rng.Float64()*17)},
				{"email", float64(emailClicks) * (10 + g.rng.Float64()*30)},
				{"organic", float64(sessions) * (1 + g.rng.Float64()*5)},
			}
			for _, cr := range channelRevenue {
				channel, amount := cr.channel, cr.amount
				if amount > 0 {
					revenue = append(revenue, revenueRow{
						ClientID:   c.ClientID,
						Date:       date,
						Channel:    channel,
						RevenueUSD: round2(amount * (0.85 + g.rng.Float64()*0.30)),
					})
				}
			}
		}
	}

	if err := writeCSV(filepath.Join(g.cfg.OutDir, "google_ads.csv"), google); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(g.cfg.OutDir, "facebook_ads.json"), facebook); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(g.cfg.OutDir, "email_campaigns.csv"), email); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(g.cfg.OutDir, "web_traffic.csv"), web); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(g.cfg.OutDir, "revenue.csv"), revenue); err != nil {
		return err
	}

	zap.L().Info("gen: dataset written",
		zap.String("dir", g.cfg.OutDir),
		zap.Int("clients", len(clients)),
		zap.Int("google_ads_rows", len(google)),
		zap.Int("facebook_ads_rows", len(facebook)),
		zap.Int("email_rows", len(email)),
		zap.Int("web_rows", len(web)),
		zap.Int("revenue_rows", len(revenue)),
	)
	return nil
}

func (g *Generator) makeClients() []model.Client {
	clients := make([]model.Client, g.cfg.Clients)
	for i := range clients {
		signup := g.cfg.Start.AddDate(0, 0, -(60 + g.rng.Intn(365*4-60)))
		clients[i] = model.Client{
			ClientID:       fmt.Sprintf("C%d", 101+i),
			Name:           pick(g.rng, companyWords) + " " + pick(g.rng, companySuffixes),
			Industry:       pick(g.rng, industries),
			AccountManager: pick(g.rng, managerNames),
			SignupDate:     signup.Format("2006-01-02"),
		}
	}
	return clients
}

func writeCSV(path string, rows any) error {
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrapf(err, "gen: marshal %s", filepath.Base(path))
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "gen: write %s", path)
}

func writeJSON(path string, rows []map[string]any) error {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "gen: marshal %s", filepath.Base(path))
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "gen: write %s", path)
}

func pick(rng *rand.Rand, opts []string) string {
	return opts[rng.Intn(len(opts))]
}

func round2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}
