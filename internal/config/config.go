package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/l-stahlhut/meme-crawler/internal/logging"
)

// AppName names the config file, the env prefix and the XDG directory.
const AppName = "memecrawl"

// Config holds all application configuration
type Config struct {
	// Crawl configuration
	Crawl CrawlConfig `mapstructure:"crawl"`

	// Output configuration
	Output OutputConfig `mapstructure:"output"`

	// HTTP client configuration
	HTTP HTTPConfig `mapstructure:"http"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlConfig bounds the pages to fetch
type CrawlConfig struct {
	Source    string `mapstructure:"source"`
	FirstPage int    `mapstructure:"first_page"`
	LastPage  int    `mapstructure:"last_page"`
	Delay     int    `mapstructure:"delay"` // seconds
}

// OutputConfig selects the outputs
type OutputConfig struct {
	JSON        bool   `mapstructure:"json"`
	CSV         bool   `mapstructure:"csv"`
	Markdown    bool   `mapstructure:"markdown"`
	SQLite      bool   `mapstructure:"sqlite"`
	SaveImages  bool   `mapstructure:"save_images"`
	Dir         string `mapstructure:"dir"`
	ImageScheme string `mapstructure:"image_scheme"`
}

// HTTPConfig holds client settings
type HTTPConfig struct {
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

// Format is the single file format written for a run.
type Format string

const (
	FormatNone     Format = ""
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatSQLite   Format = "sqlite"
)

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"source":       "crawl.source",
	"first-page":   "crawl.first_page",
	"last-page":    "crawl.last_page",
	"delay":        "crawl.delay",
	"json":         "output.json",
	"csv":          "output.csv",
	"markdown":     "output.markdown",
	"sqlite":       "output.sqlite",
	"save-images":  "output.save_images",
	"out-dir":      "output.dir",
	"user-agent":   "http.user_agent",
	"timeout":      "http.timeout",
	"log-level":    "logging.level",
	"log-format":   "logging.format",
	"image-scheme": "output.image_scheme",
}

// Load reads configuration from defaults, an optional config file, the
// environment (MEMECRAWL_ prefix, e.g. MEMECRAWL_CRAWL_LAST_PAGE) and the
// flags that were set, in increasing priority.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigName(AppName)
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, AppName))
	}

	setDefaults(v)

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error, we'll use defaults and env
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("crawl.source", "")
	v.SetDefault("crawl.first_page", 1)
	v.SetDefault("crawl.last_page", 0)
	v.SetDefault("crawl.delay", 2)

	v.SetDefault("output.json", false)
	v.SetDefault("output.csv", false)
	v.SetDefault("output.markdown", false)
	v.SetDefault("output.sqlite", false)
	v.SetDefault("output.save_images", false)
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.image_scheme", "https")

	v.SetDefault("http.user_agent", "Mozilla/5.0 (compatible; memecrawl/1.0)")
	v.SetDefault("http.timeout", "0s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", logging.FormatText)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Crawl.Source == "" {
		return fmt.Errorf("crawl.source is required")
	}
	u, err := url.Parse(c.Crawl.Source)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("crawl.source %q is not an absolute URL", c.Crawl.Source)
	}
	if c.Crawl.FirstPage < 1 {
		return fmt.Errorf("crawl.first_page must be at least 1")
	}
	if c.Crawl.LastPage < c.Crawl.FirstPage {
		return fmt.Errorf("crawl.last_page (%d) must be set and not before first_page (%d)", c.Crawl.LastPage, c.Crawl.FirstPage)
	}
	if c.Crawl.Delay < 0 {
		return fmt.Errorf("crawl.delay must not be negative")
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative")
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("logging.format must be %q or %q", logging.FormatText, logging.FormatJSON)
	}
	return nil
}

// DelayDuration returns the pause between pages.
func (c *Config) DelayDuration() time.Duration {
	return time.Duration(c.Crawl.Delay) * time.Second
}

// OutputFormat picks the one file format to write. JSON wins over CSV,
// CSV over Markdown, Markdown over SQLite. FormatNone means the memes are
// printed to the console instead.
func (c *Config) OutputFormat() Format {
	switch {
	case c.Output.JSON:
		return FormatJSON
	case c.Output.CSV:
		return FormatCSV
	case c.Output.Markdown:
		return FormatMarkdown
	case c.Output.SQLite:
		return FormatSQLite
	default:
		return FormatNone
	}
}
