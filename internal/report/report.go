// Package report derives dashboard-facing summary reports and the
// cross-channel lift analysis from the attributed fact table.
package report

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/martech-cli/internal/table"
)

// Generator writes summary report CSVs into an output directory.
type Generator struct {
	outDir string
}

// NewGenerator creates a Generator writing into outDir.
func NewGenerator(outDir string) *Generator {
	return &Generator{outDir: outDir}
}

// Generate writes all summary reports. A report whose required columns are
// missing is skipped with a warning; the others still run.
func (g *Generator) Generate(t *table.Table) error {
	if err := os.MkdirAll(g.outDir, 0o755); err != nil {
		return eris.Wrapf(err, "report: create dir %s", g.outDir)
	}

	if err := g.dailyClientSpend(t); err != nil {
		return err
	}
	if err := g.clicksByPlatform(t); err != nil {
		return err
	}
	if err := g.ctrTrends(t); err != nil {
		return err
	}
	return g.campaignSummary(t)
}

// DailySpendRow is one (date, client) spend aggregate.
type DailySpendRow struct {
	Date     string  `csv:"date"`
	ClientID string  `csv:"client_id"`
	SpendUSD float64 `csv:"spend_usd"`
}

func (g *Generator) dailyClientSpend(t *table.Table) error {
	if !t.HasCol("spend_usd") || !t.HasCol("client_id") || !t.HasCol("date") {
		zap.L().Warn("report: skipping daily client spend, missing required columns")
		return nil
	}

	type key struct{ date, client string }
	agg := make(map[key]float64)
	for i := 0; i < t.NumRows(); i++ {
		k := key{date: cellDate(t.Get(i, "date")), client: cellString(t.Get(i, "client_id"))}
		spend, _ := table.AsFloat(t.Get(i, "spend_usd"))
		agg[k] += spend
	}

	rows := make([]DailySpendRow, 0, len(agg))
	for k, spend := range agg {
		rows = append(rows, DailySpendRow{Date: k.date, ClientID: k.client, SpendUSD: spend})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].ClientID < rows[j].ClientID
	})
	return g.writeCSV("daily_client_spend_report.csv", rows)
}

// PlatformClicksRow is one per-platform click total.
type PlatformClicksRow struct {
	Platform string `csv:"platform"`
	Clicks   int64  `csv:"clicks"`
}

func (g *Generator) clicksByPlatform(t *table.Table) error {
	if !t.HasCol("clicks") || !t.HasCol("platform") {
		zap.L().Warn("report: skipping clicks by platform, missing required columns")
		return nil
	}

	agg := make(map[string]int64)
	for i := 0; i < t.NumRows(); i++ {
		clicks, _ := table.AsFloat(t.Get(i, "clicks"))
		agg[cellString(t.Get(i, "platform"))] += int64(clicks)
	}

	rows := make([]PlatformClicksRow, 0, len(agg))
	for platform, clicks := range agg {
		rows = append(rows, PlatformClicksRow{Platform: platform, Clicks: clicks})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Platform < rows[j].Platform })
	return g.writeCSV("total_clicks_by_platform_report.csv", rows)
}

// CTRTrendRow is one day's aggregate ad performance.
type CTRTrendRow struct {
	Date             string  `csv:"date"`
	TotalClicks      int64   `csv:"total_clicks"`
	TotalImpressions int64   `csv:"total_impressions"`
	DailyCTR         float64 `csv:"daily_ctr"`
}

// ctrTrends aggregates daily CTR over the ad platforms only; email and web
// rows have no impressions to rate against.
func (g *Generator) ctrTrends(t *table.Table) error {
	if !t.HasCol("clicks") || !t.HasCol("impressions") || !t.HasCol("date") {
		zap.L().Warn("report: skipping ctr trends, missing required columns")
		return nil
	}

	type counts struct{ clicks, impressions int64 }
	agg := make(map[string]counts)
	for i := 0; i < t.NumRows(); i++ {
		platform := cellString(t.Get(i, "platform"))
		if platform != "google_ads" && platform != "facebook_ads" {
			continue
		}
		d := cellDate(t.Get(i, "date"))
		clicks, _ := table.AsFloat(t.Get(i, "clicks"))
		impressions, _ := table.AsFloat(t.Get(i, "impressions"))
		c := agg[d]
		c.clicks += int64(clicks)
		c.impressions += int64(impressions)
		agg[d] = c
	}
	if len(agg) == 0 {
		zap.L().Warn("report: no ad-platform rows for ctr trends")
		return nil
	}

	rows := make([]CTRTrendRow, 0, len(agg))
	for d, c := range agg {
		row := CTRTrendRow{Date: d, TotalClicks: c.clicks, TotalImpressions: c.impressions}
		if c.impressions > 0 {
			row.DailyCTR = float64(c.clicks) / float64(c.impressions) * 100
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return g.writeCSV("ctr_trends_report.csv", rows)
}

// CampaignSummaryRow is one (client, campaign) performance aggregate.
type CampaignSummaryRow struct {
	ClientID         string  `csv:"client_id"`
	CampaignID       string  `csv:"campaign_id"`
	TotalSpend       float64 `csv:"total_spend"`
	TotalClicks      int64   `csv:"total_clicks"`
	TotalImpressions int64   `csv:"total_impressions"`
}

func (g *Generator) campaignSummary(t *table.Table) error {
	if !t.HasCol("client_id") || !t.HasCol("campaign_id") || !t.HasCol("spend_usd") {
		zap.L().Warn("report: skipping campaign summary, missing required columns")
		return nil
	}

	type key struct{ client, campaign string }
	agg := make(map[key]*CampaignSummaryRow)
	var order []key
	for i := 0; i < t.NumRows(); i++ {
		k := key{client: cellString(t.Get(i, "client_id")), campaign: cellString(t.Get(i, "campaign_id"))}
		row, ok := agg[k]
		if !ok {
			row = &CampaignSummaryRow{ClientID: k.client, CampaignID: k.campaign}
			agg[k] = row
			order = append(order, k)
		}
		spend, _ := table.AsFloat(t.Get(i, "spend_usd"))
		clicks, _ := table.AsFloat(t.Get(i, "clicks"))
		impressions, _ := table.AsFloat(t.Get(i, "impressions"))
		row.TotalSpend += spend
		row.TotalClicks += int64(clicks)
		row.TotalImpressions += int64(impressions)
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].client != order[j].client {
			return order[i].client < order[j].client
		}
		return order[i].campaign < order[j].campaign
	})
	rows := make([]CampaignSummaryRow, 0, len(order))
	for _, k := range order {
		rows = append(rows, *agg[k])
	}
	return g.writeCSV("campaign_summary_report.csv", rows)
}

func (g *Generator) writeCSV(name string, rows any) error {
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrapf(err, "report: marshal %s", name)
	}
	path := filepath.Join(g.outDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "report: write %s", name)
	}
	zap.L().Info("report: generated", zap.String("path", path))
	return nil
}

func cellString(v any) string {
	if s, ok := table.AsString(v); ok {
		return s
	}
	return ""
}

func cellDate(v any) string {
	if ts, ok := table.AsTime(v); ok {
		return ts.Format("2006-01-02")
	}
	if s, ok := table.AsString(v); ok {
		return s
	}
	return ""
}
