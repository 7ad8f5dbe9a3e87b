package report

import (
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/martech-cli/internal/table"
	"github.com/sells-group/martech-cli/internal/transform"
)

// LiftRow is one platform's attribution performance aggregate.
type LiftRow struct {
	Platform          string  `csv:"platform"`
	AttributedRevenue float64 `csv:"total_attributed_revenue_usd"`
	TotalSpend        float64 `csv:"total_spend_usd"`
	TotalClicks       int64   `csv:"total_clicks"`
	TotalImpressions  int64   `csv:"total_impressions"`
	TotalTouchpoints  int64   `csv:"total_touchpoints"`
	RevenuePerTouch   float64 `csv:"revenue_per_touchpoint"`
	AttributedROIPct  float64 `csv:"attributed_roi_pct"`
}

// Lift compares attributed revenue against spend and touchpoints per
// platform and writes the cross-channel lift report. Rows come back sorted
// by revenue per touchpoint, best channel first.
func (g *Generator) Lift(t *table.Table) ([]LiftRow, error) {
	if !t.HasCol(transform.AttributedRevenueCol) || !t.HasCol("platform") {
		zap.L().Warn("report: skipping lift analysis, missing attribution columns")
		return nil, nil
	}

	agg := make(map[string]*LiftRow)
	for i := 0; i < t.NumRows(); i++ {
		platform := cellString(t.Get(i, "platform"))
		row, ok := agg[platform]
		if !ok {
			row = &LiftRow{Platform: platform}
			agg[platform] = row
		}
		rev, _ := table.AsFloat(t.Get(i, transform.AttributedRevenueCol))
		spend, _ := table.AsFloat(t.Get(i, "spend_usd"))
		clicks, _ := table.AsFloat(t.Get(i, "clicks"))
		impressions, _ := table.AsFloat(t.Get(i, "impressions"))
		row.AttributedRevenue += rev
		row.TotalSpend += spend
		row.TotalClicks += int64(clicks)
		row.TotalImpressions += int64(impressions)
		// A touchpoint is one fact row: one channel touching one client on
		// one day.
		row.TotalTouchpoints++
	}

	rows := make([]LiftRow, 0, len(agg))
	for _, row := range agg {
		if row.TotalTouchpoints > 0 {
			row.RevenuePerTouch = row.AttributedRevenue / float64(row.TotalTouchpoints)
		}
		if row.TotalSpend > 0 {
			row.AttributedROIPct = (row.AttributedRevenue - row.TotalSpend) / row.TotalSpend * 100
		}
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].RevenuePerTouch != rows[j].RevenuePerTouch {
			return rows[i].RevenuePerTouch > rows[j].RevenuePerTouch
		}
		return rows[i].Platform < rows[j].Platform
	})

	if err := g.writeCSV("cross_channel_lift_report.csv", rows); err != nil {
		return nil, err
	}
	return rows, nil
}
