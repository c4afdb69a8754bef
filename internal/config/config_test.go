package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 250*time.Millisecond, cfg.Locator.PollInterval)
	assert.Equal(t, 15*time.Second, cfg.Locator.FindTimeout)
	assert.Equal(t, 3, cfg.Locator.VerifyRetries)
	assert.Contains(t, cfg.Portal.ReimbursementEntryURL, "SelectPayeeReimbursementEntry")
	assert.True(t, cfg.Journal.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := `
browser:
  profile_dir: ` + filepath.Join(dir, "profile") + `
  headless: false
  navigation_timeout: 30s
locator:
  poll_interval: 100ms
  find_timeout: 5s
journal:
  enabled: false
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 30*time.Second, cfg.Browser.NavigationTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Locator.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.Locator.FindTimeout)
	assert.False(t, cfg.Journal.Enabled)
	// Unset sections keep their defaults.
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestExpandPaths(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Browser.ProfileDir = "~/profile-here"
	require.NoError(t, cfg.expandPaths())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "profile-here"), cfg.Browser.ProfileDir)
}

func TestValidate(t *testing.T) {
	mutations := map[string]func(*Config){
		"empty profile dir":    func(c *Config) { c.Browser.ProfileDir = "" },
		"zero poll interval":   func(c *Config) { c.Locator.PollInterval = 0 },
		"timeout below poll":   func(c *Config) { c.Locator.FindTimeout = c.Locator.PollInterval / 2 },
		"zero verify retries":  func(c *Config) { c.Locator.VerifyRetries = 0 },
		"zero upload timeout":  func(c *Config) { c.Locator.UploadTimeout = 0 },
		"zero nav timeout":     func(c *Config) { c.Browser.NavigationTimeout = 0 },
		"empty entry url":      func(c *Config) { c.Portal.ReimbursementEntryURL = "" },
		"journal without path": func(c *Config) { c.Journal.Path = "" },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			require.NoError(t, cfg.Validate(), "default config must be valid")
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
