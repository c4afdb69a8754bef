// File: internal/config/config.go
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// DefaultBaseDir is the conventional location for everything gosapweb
// persists: the browser profile, the submission journal, and (optionally) the
// config file itself.
const DefaultBaseDir = "~/.gosapweb"

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Locator LocatorConfig `mapstructure:"locator" yaml:"locator"`
	Portal  PortalConfig  `mapstructure:"portal" yaml:"portal"`
	Journal JournalConfig `mapstructure:"journal" yaml:"journal"`
}

// LoggerConfig controls the zap logger setup.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig holds settings for the controlled Chrome instance.
type BrowserConfig struct {
	// ProfileDir is the persistent user-data directory holding the
	// authenticated institutional session. Created by `gosapweb profile setup`.
	ProfileDir        string        `mapstructure:"profile_dir" yaml:"profile_dir"`
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	PostLoadWait      time.Duration `mapstructure:"post_load_wait" yaml:"post_load_wait"`
	Args              []string      `mapstructure:"args" yaml:"args"`
}

// LocatorConfig tunes element discovery and the fill-verify loop.
type LocatorConfig struct {
	// PollInterval is the fixed interval between element presence probes.
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	// FindTimeout bounds how long a single element may take to appear.
	FindTimeout time.Duration `mapstructure:"find_timeout" yaml:"find_timeout"`
	// VerifyRetries is how many times a field fill is re-attempted when the
	// read-back value does not match what was typed.
	VerifyRetries int `mapstructure:"verify_retries" yaml:"verify_retries"`
	// UploadTimeout bounds how long a single receipt upload may take to be
	// acknowledged by the portal.
	UploadTimeout time.Duration `mapstructure:"upload_timeout" yaml:"upload_timeout"`
}

// PortalConfig carries the SAPweb entry URLs. These are stable, but the portal
// is externally owned, so they stay configurable.
type PortalConfig struct {
	ReimbursementEntryURL string `mapstructure:"reimbursement_entry_url" yaml:"reimbursement_entry_url"`
	SearchEntryURL        string `mapstructure:"search_entry_url" yaml:"search_entry_url"`
	CertificateURL        string `mapstructure:"certificate_url" yaml:"certificate_url"`
}

// JournalConfig controls the local submission journal.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "gosapweb")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	v.SetDefault("browser.profile_dir", filepath.Join(DefaultBaseDir, "profile"))
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.navigation_timeout", "90s")
	v.SetDefault("browser.post_load_wait", "1500ms")

	v.SetDefault("locator.poll_interval", "250ms")
	v.SetDefault("locator.find_timeout", "15s")
	v.SetDefault("locator.verify_retries", 3)
	v.SetDefault("locator.upload_timeout", "60s")

	v.SetDefault("portal.reimbursement_entry_url",
		"https://insidemit-apps.mit.edu/apps/rfp/SelectPayeeReimbursementEntry.action?sapSystemId=PS1")
	v.SetDefault("portal.search_entry_url",
		"https://insidemit-apps.mit.edu/apps/rfp/SearchEntry.action?sapSystemId=PS1")
	v.SetDefault("portal.certificate_url", "https://ca.mit.edu/")

	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", filepath.Join(DefaultBaseDir, "journal.db"))
}

// Load reads the configuration from the given file (or the default search
// paths when empty), applies defaults and environment overrides, and returns
// a validated Config with home-relative paths expanded.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		base, err := homedir.Expand(DefaultBaseDir)
		if err == nil {
			v.AddConfigPath(base)
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("GOSAPWEB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults and env vars.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewDefaultConfig returns a Config populated purely from defaults.
// Used by tests and by code paths that must not depend on the filesystem.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("default config does not unmarshal: %v", err))
	}
	return &cfg
}

// expandPaths resolves "~" in the configured filesystem locations.
func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Browser.ProfileDir, &c.Journal.Path, &c.Logger.LogFile} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("cannot expand path %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate rejects configurations that would make the automation misbehave in
// ways that are hard to diagnose at runtime.
func (c *Config) Validate() error {
	if c.Browser.ProfileDir == "" {
		return fmt.Errorf("browser.profile_dir must not be empty")
	}
	if c.Locator.PollInterval <= 0 {
		return fmt.Errorf("locator.poll_interval must be positive, got %s", c.Locator.PollInterval)
	}
	if c.Locator.FindTimeout < c.Locator.PollInterval {
		return fmt.Errorf("locator.find_timeout (%s) must be at least one poll interval (%s)",
			c.Locator.FindTimeout, c.Locator.PollInterval)
	}
	if c.Locator.VerifyRetries < 1 {
		return fmt.Errorf("locator.verify_retries must be at least 1, got %d", c.Locator.VerifyRetries)
	}
	if c.Locator.UploadTimeout <= 0 {
		return fmt.Errorf("locator.upload_timeout must be positive, got %s", c.Locator.UploadTimeout)
	}
	if c.Browser.NavigationTimeout <= 0 {
		return fmt.Errorf("browser.navigation_timeout must be positive, got %s", c.Browser.NavigationTimeout)
	}
	if c.Portal.ReimbursementEntryURL == "" || c.Portal.SearchEntryURL == "" {
		return fmt.Errorf("portal entry URLs must not be empty")
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("journal.path must not be empty when the journal is enabled")
	}
	return nil
}
