package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Resource ResourceConfig    `yaml:"resource"`
	History  HistoryConfig     `yaml:"history"`
	Auth     AuthConfig        `yaml:"auth"`
	Privacy  PrivacyConfig     `yaml:"privacy"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Resource.Validate(); err != nil {
		return err
	}
	if err := c.History.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ResourceConfig holds the paths to the persisted resources.
type ResourceConfig struct {
	// Datastore is the bookmark collection file.
	Datastore string `yaml:"datastore"`
	// PageCache is the rendered-page cache directory, invalidated on
	// every save. Empty disables invalidation.
	PageCache string `yaml:"page_cache"`
}

// Validate validates the resource configuration.
func (c *ResourceConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Datastore, validation.Required),
	)
}

// HistoryConfig holds the audit log configuration.
type HistoryConfig struct {
	Path string `yaml:"path"`
	// RetentionDays prunes events older than this many days on startup.
	// 0 keeps everything.
	RetentionDays int `yaml:"retention_days"`
}

// Retention converts the configured retention to a duration.
func (c *HistoryConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// Validate validates the history configuration.
func (c *HistoryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.RetentionDays, validation.Min(0)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how ownership is established:
//   - "disabled" (default): every caller is the owner, suitable for a
//     single-user local setup.
//   - "token": Bearer-token callers are the owner, everyone else gets
//     anonymous public read access; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when token authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// PrivacyConfig holds visibility-related options.
type PrivacyConfig struct {
	// HidePublicLinks makes the whole collection invisible to non-owners.
	HidePublicLinks bool `yaml:"hide_public_links"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Resource: ResourceConfig{
			Datastore: "./data/datastore.gz",
			PageCache: "./data/pagecache",
		},
		History: HistoryConfig{
			Path:          "./data/history.db",
			RetentionDays: 0,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
