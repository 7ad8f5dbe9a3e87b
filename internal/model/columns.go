// Package model defines the shared vocabulary of the marketing pipeline:
// platform names, the canonical fact-table schema, and per-column semantic
// types used by the type enforcer.
package model

// Platform names tag each fact row with its originating marketing channel.
const (
	PlatformGoogleAds   = "google_ads"
	PlatformFacebookAds = "facebook_ads"
	PlatformEmail       = "email_campaigns"
	PlatformWebTraffic  = "web_traffic"
)

// Non-fact source names used as cleaning-stage keys.
const (
	SourceRevenue = "revenue"
	SourceClients = "clients"
)

// FactPlatforms lists the four channels that contribute fact rows.
var FactPlatforms = []string{
	PlatformGoogleAds,
	PlatformFacebookAds,
	PlatformEmail,
	PlatformWebTraffic,
}

// FactColumns is the canonical fact-table supercolumn set, in order. Every
// fact row exposes all of these; columns irrelevant to a row's channel hold
// the type's default.
var FactColumns = []string{
	"client_id",
	"date",
	"platform",
	"campaign_id",
	"device_type",
	"geo",
	"clicks",
	"impressions",
	"spend_usd",
	"emails_sent",
	"open_rate",
	"click_rate",
	"subject_line",
	"pageviews",
	"sessions",
	"bounce_rate",
	"avg_session_duration_seconds",
	"platform_detail",
}

// ClientColumns is the client-dimension schema. client_id is the join key.
var ClientColumns = []string{"client_id", "name", "industry", "account_manager", "signup_date"}

// MetricColumns are added by the metric calculator.
var MetricColumns = []string{"ctr", "cpc_usd", "cpm_usd", "total_interactions"}

// AttributionColumns are added by the attribution engine.
var AttributionColumns = []string{"attributed_revenue_from_source_usd", "attributed_revenue_model_usd"}

// Kind is the semantic type of a column.
type Kind int

const (
	KindString Kind = iota
	KindDate
	KindInt
	KindFloat
)

// ColumnKinds maps standardized column names to their semantic types. Columns
// absent from this map are left untouched by the type enforcer.
var ColumnKinds = map[string]Kind{
	"client_id":              KindString,
	"date":                   KindDate,
	"clicks":                 KindInt,
	"impressions":            KindInt,
	"spend_usd":              KindFloat,
	"emails_sent":            KindInt,
	"open_rate":              KindFloat,
	"click_rate":             KindFloat,
	"pageviews":              KindInt,
	"sessions":               KindInt,
	"bounce_rate":            KindFloat,
	"attributed_revenue_usd": KindFloat,
}

// CountColumns are the integer count columns whose nulls are filled to 0 and
// cast to integer after coercion.
var CountColumns = map[string]bool{
	"clicks":      true,
	"impressions": true,
	"emails_sent": true,
	"pageviews":   true,
	"sessions":    true,
}

// NumericFillColumns are filled null→0 by the fact combiner, then collapsed
// to integer when every value is integral.
var NumericFillColumns = []string{
	"clicks", "impressions", "spend_usd", "emails_sent",
	"pageviews", "sessions", "avg_session_duration_seconds",
}

// RateFillColumns are filled null→0.0 and forced to float by the combiner.
var RateFillColumns = []string{"open_rate", "click_rate", "bounce_rate"}

// TextFillColumns are filled null→"Unknown" by the combiner.
var TextFillColumns = []string{"campaign_id", "device_type", "geo", "subject_line", "platform_detail"}
