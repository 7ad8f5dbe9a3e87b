package transform

import (
	"encoding/json"
	"math"

	"github.com/sells-group/martech-cli/internal/table"
)

// metricInputCols must exist and be numeric before any metric is derived.
var metricInputCols = []string{"clicks", "impressions", "spend_usd", "emails_sent", "sessions"}

// Calculator derives per-row performance metrics. It is idempotent: applying
// it to an already metric-bearing table recomputes every derived column.
type Calculator struct{}

// NewCalculator creates a Calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Apply returns the table with ctr, cpc_usd, cpm_usd, and total_interactions
// derived for every row, and the rate columns guaranteed to exist. Division
// by zero and non-finite results are normalized to 0.0 rather than
// propagated.
func (c *Calculator) Apply(t *table.Table) *table.Table {
	out := t.Clone()
	ensureNumeric(out, metricInputCols)

	out.AddCol("ctr", 0.0)
	out.AddCol("cpc_usd", 0.0)
	out.AddCol("cpm_usd", 0.0)

	for i := 0; i < out.NumRows(); i++ {
		clicks, _ := table.AsFloat(out.Get(i, "clicks"))
		impressions, _ := table.AsFloat(out.Get(i, "impressions"))
		spend, _ := table.AsFloat(out.Get(i, "spend_usd"))

		if impressions > 0 {
			out.Set(i, "ctr", finiteOrZero(clicks/impressions*100))
			out.Set(i, "cpm_usd", finiteOrZero(spend/impressions*1000))
		}
		if clicks > 0 {
			out.Set(i, "cpc_usd", finiteOrZero(spend/clicks))
		}
	}

	for _, rate := range []string{"open_rate", "click_rate", "bounce_rate"} {
		if !out.HasCol(rate) {
			out.AddCol(rate, 0.0)
		}
	}

	out.AddCol("total_interactions", int64(0))
	for i := 0; i < out.NumRows(); i++ {
		clicks, _ := table.AsFloat(out.Get(i, "clicks"))
		emails, _ := table.AsFloat(out.Get(i, "emails_sent"))
		sessions, _ := table.AsFloat(out.Get(i, "sessions"))
		total := clicks + emails + sessions
		if n, ok := table.AsInt(total); ok {
			out.Set(i, "total_interactions", n)
		} else {
			out.Set(i, "total_interactions", total)
		}
	}
	return out
}

// MetricSummary holds the column-wise arithmetic means of the derived
// metrics. Every field is NaN when the input table is empty.
type MetricSummary struct {
	AvgCTR               float64 `json:"avg_ctr"`
	AvgCPCUSD            float64 `json:"avg_cpc_usd"`
	AvgCPMUSD            float64 `json:"avg_cpm_usd"`
	AvgOpenRate          float64 `json:"avg_open_rate"`
	AvgClickRate         float64 `json:"avg_click_rate"`
	AvgBounceRate        float64 `json:"avg_bounce_rate"`
	AvgTotalInteractions float64 `json:"avg_total_interactions"`
}

// MarshalJSON renders NaN means (undefined on empty input) as null, which
// encoding/json otherwise rejects.
func (s MetricSummary) MarshalJSON() ([]byte, error) {
	nullable := func(f float64) *float64 {
		if math.IsNaN(f) {
			return nil
		}
		return &f
	}
	return json.Marshal(struct {
		AvgCTR               *float64 `json:"avg_ctr"`
		AvgCPCUSD            *float64 `json:"avg_cpc_usd"`
		AvgCPMUSD            *float64 `json:"avg_cpm_usd"`
		AvgOpenRate          *float64 `json:"avg_open_rate"`
		AvgClickRate         *float64 `json:"avg_click_rate"`
		AvgBounceRate        *float64 `json:"avg_bounce_rate"`
		AvgTotalInteractions *float64 `json:"avg_total_interactions"`
	}{
		nullable(s.AvgCTR), nullable(s.AvgCPCUSD), nullable(s.AvgCPMUSD),
		nullable(s.AvgOpenRate), nullable(s.AvgClickRate),
		nullable(s.AvgBounceRate), nullable(s.AvgTotalInteractions),
	})
}

// Summarize computes the mean of each derived metric column over the table.
func (c *Calculator) Summarize(t *table.Table) MetricSummary {
	return MetricSummary{
		AvgCTR:               columnMean(t, "ctr"),
		AvgCPCUSD:            columnMean(t, "cpc_usd"),
		AvgCPMUSD:            columnMean(t, "cpm_usd"),
		AvgOpenRate:          columnMean(t, "open_rate"),
		AvgClickRate:         columnMean(t, "click_rate"),
		AvgBounceRate:        columnMean(t, "bounce_rate"),
		AvgTotalInteractions: columnMean(t, "total_interactions"),
	}
}

// ensureNumeric adds any missing input column filled with 0 and replaces
// non-numeric or null cells with 0.
func ensureNumeric(t *table.Table, cols []string) {
	for _, col := range cols {
		if !t.HasCol(col) {
			t.AddCol(col, int64(0))
			continue
		}
		for i := 0; i < t.NumRows(); i++ {
			if _, ok := table.AsFloat(t.Get(i, col)); !ok {
				t.Set(i, col, int64(0))
			}
		}
	}
}

// columnMean averages the numeric cells of a column, skipping nulls. An
// empty column yields NaN, matching an undefined mean.
func columnMean(t *table.Table, col string) float64 {
	var sum float64
	var n int
	for i := 0; i < t.NumRows(); i++ {
		if f, ok := table.AsFloat(t.Get(i, col)); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

func finiteOrZero(f float64) float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0.0
	}
	return f
}
