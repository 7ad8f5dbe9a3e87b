package transform

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/martech-cli/internal/table"
)

// Attribution output columns.
const (
	AttributedRevenueCol = "attributed_revenue_from_source_usd"
	AttributedModelCol   = "attributed_revenue_model_usd"
)

// defaultChannelMap translates fact-table platform names into the revenue
// ledger's channel vocabulary.
func defaultChannelMap() map[string]string {
	return map[string]string{
		"google_ads":      "google_ads",
		"facebook_ads":    "facebook",
		"email_campaigns": "email",
		"web_traffic":     "organic",
	}
}

// Engine reconciles ledgered revenue onto the fact table by exact
// (client, day, channel) match. It translates vocabularies and joins; it
// does not infer or redistribute revenue, which is why the model column is
// a zero placeholder.
type Engine struct {
	channelMap map[string]string
}

// NewEngine creates an attribution Engine with the built-in platform-to-
// channel translation table.
func NewEngine() *Engine {
	return &Engine{channelMap: defaultChannelMap()}
}

// revenueKey identifies one aggregated ledger bucket.
type revenueKey struct {
	client  string
	date    time.Time
	channel string
}

// Apply left-merges aggregated ledger revenue onto the fact table. An absent
// or empty ledger, or a ledger missing its revenue column, degrades to
// zero-filled placeholder columns rather than failing the pipeline.
func (e *Engine) Apply(fact, ledger *table.Table) *table.Table {
	log := zap.L()
	out := fact.Clone()

	if ledger == nil || ledger.NumRows() == 0 {
		log.Warn("attribution: no revenue data available, adding placeholder columns")
		addPlaceholders(out)
		return out
	}
	if !ledger.HasCol("attributed_revenue_usd") {
		log.Error("attribution: ledger is missing attributed_revenue_usd column, skipping attribution")
		addPlaceholders(out)
		return out
	}

	// Aggregate ledger rows by (client, day, channel); multiple entries per
	// key are cumulative revenue.
	agg := make(map[revenueKey]float64)
	for i := 0; i < ledger.NumRows(); i++ {
		d, ok := parseDate(ledger.Get(i, "date"))
		if !ok {
			// Invalid dates never match; they are not an error.
			continue
		}
		k := revenueKey{
			client:  keyString(ledger.Get(i, "client_id")),
			date:    d,
			channel: keyString(ledger.Get(i, "channel")),
		}
		// AsFloat rejects NaN, so nulled-out ledger amounts contribute 0.
		amt, ok := table.AsFloat(ledger.Get(i, "attributed_revenue_usd"))
		if !ok {
			if f, sok := parseNumeric(ledger.Get(i, "attributed_revenue_usd")); sok && !math.IsNaN(f) {
				amt = f
			} else {
				amt = 0.0
			}
		}
		agg[k] += amt
	}

	out.AddCol(AttributedRevenueCol, 0.0)
	out.AddCol(AttributedModelCol, 0.0)

	matched := 0
	for i := 0; i < out.NumRows(); i++ {
		platform := keyString(out.Get(i, "platform"))
		channel, ok := e.channelMap[platform]
		if !ok {
			continue
		}
		d, ok := parseDate(out.Get(i, "date"))
		if !ok {
			continue
		}
		k := revenueKey{client: keyString(out.Get(i, "client_id")), date: d, channel: channel}
		if amt, ok := agg[k]; ok {
			out.Set(i, AttributedRevenueCol, amt)
			matched++
		}
	}

	log.Info("attribution: ledger revenue merged",
		zap.Int("ledger_buckets", len(agg)),
		zap.Int("matched_rows", matched),
	)
	return out
}

// addPlaceholders ensures both attribution columns exist, zero-filled.
func addPlaceholders(t *table.Table) {
	if !t.HasCol(AttributedRevenueCol) {
		t.AddCol(AttributedRevenueCol, 0.0)
	}
	if !t.HasCol(AttributedModelCol) {
		t.AddCol(AttributedModelCol, 0.0)
	}
}
