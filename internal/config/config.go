package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Sources  SourcesConfig  `yaml:"sources" mapstructure:"sources"`
	Mappings MappingsConfig `yaml:"mappings" mapstructure:"mappings"`
	Sink     SinkConfig     `yaml:"sink" mapstructure:"sink"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Report   ReportConfig   `yaml:"report" mapstructure:"report"`
	Gen      GenConfig      `yaml:"gen" mapstructure:"gen"`
	Watch    WatchConfig    `yaml:"watch" mapstructure:"watch"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// SourcesConfig holds the raw source file paths, one per channel.
type SourcesConfig struct {
	GoogleAds      string `yaml:"google_ads" mapstructure:"google_ads"`
	FacebookAds    string `yaml:"facebook_ads" mapstructure:"facebook_ads"`
	EmailCampaigns string `yaml:"email_campaigns" mapstructure:"email_campaigns"`
	WebTraffic     string `yaml:"web_traffic" mapstructure:"web_traffic"`
	Revenue        string `yaml:"revenue" mapstructure:"revenue"`
	Clients        string `yaml:"clients" mapstructure:"clients"`
}

// MappingsConfig points at an optional column-mapping override file.
type MappingsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// SinkConfig configures where the attributed fact table lands.
type SinkConfig struct {
	Format      string `yaml:"format" mapstructure:"format"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
	Table       string `yaml:"table" mapstructure:"table"`
}

// StoreConfig configures the run-log database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ReportConfig configures report output.
type ReportConfig struct {
	OutDir string `yaml:"out_dir" mapstructure:"out_dir"`
}

// GenConfig configures the synthetic data generator.
type GenConfig struct {
	OutDir  string `yaml:"out_dir" mapstructure:"out_dir"`
	Clients int    `yaml:"clients" mapstructure:"clients"`
	Days    int    `yaml:"days" mapstructure:"days"`
	Start   string `yaml:"start" mapstructure:"start"`
	Seed    int64  `yaml:"seed" mapstructure:"seed"`
}

// WatchConfig configures the source-directory watcher.
type WatchConfig struct {
	Dir           string `yaml:"dir" mapstructure:"dir"`
	DebounceSecs  int    `yaml:"debounce_secs" mapstructure:"debounce_secs"`
	MaxRunsPerMin int    `yaml:"max_runs_per_min" mapstructure:"max_runs_per_min"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MARTECH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sources.google_ads", "data/raw/google_ads.csv")
	v.SetDefault("sources.facebook_ads", "data/raw/facebook_ads.json")
	v.SetDefault("sources.email_campaigns", "data/raw/email_campaigns.csv")
	v.SetDefault("sources.web_traffic", "data/raw/web_traffic.csv")
	v.SetDefault("sources.revenue", "data/raw/revenue.csv")
	v.SetDefault("sources.clients", "data/raw/clients.csv")
	v.SetDefault("sink.format", "sqlite")
	v.SetDefault("sink.path", "data/processed/marketing.db")
	v.SetDefault("sink.table", "campaign_facts")
	v.SetDefault("store.path", "data/processed/runs.db")
	v.SetDefault("report.out_dir", "data/reports")
	v.SetDefault("gen.out_dir", "data/raw")
	v.SetDefault("gen.clients", 10)
	v.SetDefault("gen.days", 90)
	v.SetDefault("gen.start", "2024-12-01")
	v.SetDefault("watch.dir", "data/raw")
	v.SetDefault("watch.debounce_secs", 5)
	v.SetDefault("watch.max_runs_per_min", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
