package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/m3rciful/avatarbot/bot/avatar"
	coreconfig "github.com/m3rciful/avatarbot/core/config"
	coredatabase "github.com/m3rciful/avatarbot/core/database"
)

const (
	defaultAPIBaseURL   = "https://api.dicebear.com/9.x"
	defaultStyle        = "avataaars"
	defaultSessionTTL   = 30 * time.Minute
	defaultFetchTimeout = 30
)

// StyleCommandConfig declares one style command in the catalog.
type StyleCommandConfig struct {
	Command string `yaml:"command"`
	Style   string `yaml:"style"`
	Label   string `yaml:"label"`
}

// AvatarConfig configures the avatar API client and the style catalog.
type AvatarConfig struct {
	APIBaseURL          string               `yaml:"api_base_url" envconfig:"AVATAR_API_BASE_URL"`
	DefaultStyle        string               `yaml:"default_style" envconfig:"AVATAR_DEFAULT_STYLE"`
	FetchTimeoutSeconds int                  `yaml:"fetch_timeout_seconds" envconfig:"AVATAR_FETCH_TIMEOUT_SECONDS"`
	Commands            []StyleCommandConfig `yaml:"commands"`
}

// WizardConfig configures the session store.
type WizardConfig struct {
	// SessionTTL is a duration string ("30m"); "0" disables expiry of
	// abandoned wizards. Empty selects the default.
	SessionTTL string `yaml:"session_ttl" envconfig:"WIZARD_SESSION_TTL"`

	sessionTTL time.Duration
}

// TTL returns the parsed session time-to-live.
func (w WizardConfig) TTL() time.Duration {
	return w.sessionTTL
}

// DatabaseConfig toggles the optional request-history storage.
type DatabaseConfig struct {
	Enabled             bool `yaml:"enabled" envconfig:"DB_ENABLED"`
	coredatabase.Config `yaml:",inline"`
}

// Config is the full bot configuration: the shared core sections plus the
// avatar-specific ones.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Avatar   AvatarConfig   `yaml:"avatar"`
	Wizard   WizardConfig   `yaml:"wizard"`
	Database DatabaseConfig `yaml:"database"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// CatalogEntries renders the configured style commands, falling back to the
// built-in catalog when none are configured.
func (c *Config) CatalogEntries() []avatar.Entry {
	if len(c.Avatar.Commands) == 0 {
		return avatar.DefaultEntries()
	}
	entries := make([]avatar.Entry, 0, len(c.Avatar.Commands))
	for _, cmd := range c.Avatar.Commands {
		entries = append(entries, avatar.Entry{
			Command: cmd.Command,
			Style:   cmd.Style,
			Label:   cmd.Label,
		})
	}
	return entries
}

// FetchTimeout returns the avatar API timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Avatar.FetchTimeoutSeconds) * time.Second
}

// Load reads the bot configuration from a YAML file with environment
// variable overrides.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the configuration and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	if strings.TrimSpace(cfg.Avatar.APIBaseURL) == "" {
		cfg.Avatar.APIBaseURL = defaultAPIBaseURL
	}
	if strings.TrimSpace(cfg.Avatar.DefaultStyle) == "" {
		cfg.Avatar.DefaultStyle = defaultStyle
	}
	if cfg.Avatar.FetchTimeoutSeconds < 0 {
		return fmt.Errorf("avatar.fetch_timeout_seconds must be >= 0")
	}
	if cfg.Avatar.FetchTimeoutSeconds == 0 {
		cfg.Avatar.FetchTimeoutSeconds = defaultFetchTimeout
	}
	for i, cmd := range cfg.Avatar.Commands {
		if strings.TrimSpace(cmd.Command) == "" || strings.TrimSpace(cmd.Style) == "" {
			return fmt.Errorf("avatar.commands[%d]: command and style are required", i)
		}
		if !strings.HasPrefix(cmd.Command, "/") {
			return fmt.Errorf("avatar.commands[%d]: command %q must start with '/'", i, cmd.Command)
		}
	}

	ttlSpec := strings.TrimSpace(cfg.Wizard.SessionTTL)
	switch ttlSpec {
	case "":
		cfg.Wizard.sessionTTL = defaultSessionTTL
	case "0":
		cfg.Wizard.sessionTTL = 0
	default:
		ttl, err := time.ParseDuration(ttlSpec)
		if err != nil {
			return fmt.Errorf("invalid wizard.session_ttl %q: %w", ttlSpec, err)
		}
		if ttl < 0 {
			return fmt.Errorf("wizard.session_ttl must be >= 0")
		}
		cfg.Wizard.sessionTTL = ttl
	}

	if cfg.Database.Enabled {
		if strings.TrimSpace(cfg.Database.Host) == "" || strings.TrimSpace(cfg.Database.Name) == "" {
			return fmt.Errorf("database.host and database.name are required when database.enabled")
		}
	}
	return nil
}
