// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/interautonomy/content-sync/internal/content"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Store   StoreConfig   `mapstructure:"store"`
	Content ContentConfig `mapstructure:"content"`
	Input   InputConfig   `mapstructure:"input"`
	Scrape  ScrapeConfig  `mapstructure:"scrape"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Ops     OpsConfig     `mapstructure:"ops"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// StoreConfig controls access to the relational store.
type StoreConfig struct {
	// Provider selects the backend: "postgres" or "memory".
	Provider           string `mapstructure:"provider"`
	DSN                string `mapstructure:"dsn"`
	MaxConns           int32  `mapstructure:"max_conns"`
	MinConns           int32  `mapstructure:"min_conns"`
	MaxConnLifetimeMin int    `mapstructure:"max_conn_lifetime_minutes"`
}

// MaxConnLifetime converts the lifetime knob into a duration.
func (c StoreConfig) MaxConnLifetime() time.Duration {
	return time.Duration(c.MaxConnLifetimeMin) * time.Minute
}

// ContentConfig carries the run-level content defaults.
type ContentConfig struct {
	// DefaultStatus is applied to every synced tag and item: draft | published.
	DefaultStatus string `mapstructure:"default_status"`
	// PublishedAt optionally fixes the publish-date stamp (YYYY-MM-DD).
	PublishedAt string `mapstructure:"published_at"`
	// Languages lists the site languages to scrape.
	Languages []string `mapstructure:"languages"`
}

// InputConfig locates the scraped record files consumed by the sync command.
type InputConfig struct {
	Dir            string `mapstructure:"dir"`
	TagsFile       string `mapstructure:"tags_file"`
	ItemsFile      string `mapstructure:"items_file"`
	ParagraphsFile string `mapstructure:"paragraphs_file"`
}

// ScrapeConfig governs the page fetch pipeline.
type ScrapeConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	// DelaySeconds is the courtesy pause between consecutive fetches.
	DelaySeconds int `mapstructure:"delay_seconds"`
	// Limit caps how many catalog entries are processed; 0 means all.
	Limit int `mapstructure:"limit"`
}

// Timeout converts the fetch timeout knob into a duration.
func (c ScrapeConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Delay converts the courtesy pause knob into a duration.
func (c ScrapeConfig) Delay() time.Duration {
	return time.Duration(c.DelaySeconds) * time.Second
}

// ArchiveConfig controls local snapshots of fetched pages.
type ArchiveConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// OpsConfig controls the background health/metrics listener.
type OpsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CONTENTSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.provider", "postgres")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("store.max_conn_lifetime_minutes", 30)
	v.SetDefault("content.default_status", "draft")
	v.SetDefault("content.languages", content.Languages)
	v.SetDefault("input.dir", "data")
	v.SetDefault("input.tags_file", "tags.json")
	v.SetDefault("input.items_file", "items.json")
	v.SetDefault("input.paragraphs_file", "paragraphs.json")
	v.SetDefault("scrape.base_url", "https://interautonomy.org")
	v.SetDefault("scrape.user_agent", "content-sync-bot/0.1")
	v.SetDefault("scrape.timeout_seconds", 15)
	v.SetDefault("scrape.delay_seconds", 1)
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.dir", "archive")
	v.SetDefault("ops.enabled", false)
	v.SetDefault("ops.port", 9090)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits. A failure here
// aborts the run before any store access happens.
func (c Config) Validate() error {
	switch c.Store.Provider {
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required when store.provider is postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown store provider: %s", c.Store.Provider)
	}
	switch content.Status(c.Content.DefaultStatus) {
	case content.StatusDraft, content.StatusPublished:
	default:
		return fmt.Errorf("content.default_status must be draft or published")
	}
	if c.Content.PublishedAt != "" {
		if _, err := content.ParseDate(c.Content.PublishedAt); err != nil {
			return fmt.Errorf("content.published_at: %w", err)
		}
	}
	if c.Scrape.TimeoutSeconds <= 0 {
		return fmt.Errorf("scrape.timeout_seconds must be > 0")
	}
	if c.Ops.Enabled && c.Ops.Port <= 0 {
		return fmt.Errorf("ops.port must be > 0 when ops is enabled")
	}
	if c.Archive.Enabled && c.Archive.Dir == "" {
		return fmt.Errorf("archive.dir is required when archive is enabled")
	}
	return nil
}
