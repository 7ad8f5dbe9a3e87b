// Package sink writes the attributed fact table to its destination with
// full-table overwrite semantics: each run replaces the previous snapshot.
package sink

import (
	"context"
	"strconv"
	"time"

	"github.com/sells-group/martech-cli/internal/table"
)

// Sink persists one attributed fact table, replacing any prior snapshot.
type Sink interface {
	Write(ctx context.Context, t *table.Table) error
	Close() error
}

// intCols get an integer column affinity in relational sinks.
var intCols = map[string]bool{
	"clicks":                       true,
	"impressions":                  true,
	"emails_sent":                  true,
	"pageviews":                    true,
	"sessions":                     true,
	"avg_session_duration_seconds": true,
	"total_interactions":           true,
}

// floatCols get a floating-point column affinity in relational sinks.
var floatCols = map[string]bool{
	"spend_usd":                          true,
	"open_rate":                          true,
	"click_rate":                         true,
	"bounce_rate":                        true,
	"ctr":                                true,
	"cpc_usd":                            true,
	"cpm_usd":                            true,
	"attributed_revenue_from_source_usd": true,
	"attributed_revenue_model_usd":       true,
}

// dateCols hold calendar dates.
var dateCols = map[string]bool{
	"date":        true,
	"signup_date": true,
}

// formatCell renders a cell for text-based sinks. Nulls render empty.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format("2006-01-02")
	default:
		return ""
	}
}
