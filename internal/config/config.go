package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Ingest IngestConfig `yaml:"ingest" mapstructure:"ingest"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Report ReportConfig `yaml:"report" mapstructure:"report"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// IngestConfig configures how cost reports are located and read.
type IngestConfig struct {
	Anchor     string `yaml:"anchor" mapstructure:"anchor"`
	ScanLimit  int    `yaml:"scan_limit" mapstructure:"scan_limit"`
	LayoutFile string `yaml:"layout_file" mapstructure:"layout_file"`
	Encoding   string `yaml:"encoding" mapstructure:"encoding"`
	Sheet      string `yaml:"sheet" mapstructure:"sheet"`
}

// FetchConfig configures remote source downloads.
type FetchConfig struct {
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
	TempDir     string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// Timeout returns the per-request timeout.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSecs) * time.Second
}

// ReportConfig configures aggregation and export.
type ReportConfig struct {
	Year        int    `yaml:"year" mapstructure:"year"`
	TopK        int    `yaml:"top_k" mapstructure:"top_k"`
	HighlightK  int    `yaml:"highlight_k" mapstructure:"highlight_k"`
	ChangeGroup string `yaml:"change_group" mapstructure:"change_group"`
	ChangeFrom  int    `yaml:"change_from" mapstructure:"change_from"`
	ChangeTo    int    `yaml:"change_to" mapstructure:"change_to"`
	OutDir      string `yaml:"out_dir" mapstructure:"out_dir"`
	XLSX        bool   `yaml:"xlsx" mapstructure:"xlsx"`
	Locale      string `yaml:"locale" mapstructure:"locale"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("AFFORD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "affordability.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("ingest.anchor", "Area of Residence")
	v.SetDefault("ingest.scan_limit", 60)
	v.SetDefault("ingest.layout_file", "")
	v.SetDefault("ingest.encoding", "utf-8")
	v.SetDefault("ingest.sheet", "")
	v.SetDefault("fetch.user_agent", "affordability-cli/1.0")
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.temp_dir", "")
	v.SetDefault("report.year", 2024)
	v.SetDefault("report.top_k", 5)
	v.SetDefault("report.highlight_k", 3)
	v.SetDefault("report.change_group", "65plus")
	v.SetDefault("report.change_from", 2021)
	v.SetDefault("report.change_to", 2024)
	v.SetDefault("report.out_dir", "power-bi-exports")
	v.SetDefault("report.xlsx", false)
	v.SetDefault("report.locale", "en-US")

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

// Validate checks the settings a command mode depends on. Modes: "ingest",
// "store", "report".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "ingest":
		if strings.TrimSpace(c.Ingest.Anchor) == "" && c.Ingest.LayoutFile == "" {
			errs = append(errs, "ingest.anchor is required")
		}
		if c.Ingest.ScanLimit <= 0 {
			errs = append(errs, "ingest.scan_limit must be > 0")
		}
	case "store":
		switch strings.ToLower(c.Store.Driver) {
		case "", "sqlite", "sqlite3", "postgres", "postgresql", "pgx":
		default:
			errs = append(errs, "store.driver must be sqlite or postgres")
		}
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	case "report":
		if c.Report.TopK < 0 {
			errs = append(errs, "report.top_k must be >= 0")
		}
		if c.Report.HighlightK < 0 {
			errs = append(errs, "report.highlight_k must be >= 0")
		}
		if c.Report.ChangeFrom >= c.Report.ChangeTo {
			errs = append(errs, "report.change_from must be before report.change_to")
		}
		if c.Report.OutDir == "" {
			errs = append(errs, "report.out_dir is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
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
