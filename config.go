package fbsr

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	// DefaultAPIVersion is the Graph API version used when none is configured.
	DefaultAPIVersion = "v21.0"

	defaultName          = "default"
	defaultGraphEndpoint = "https://graph.facebook.com"
	defaultHTTPTimeout   = 10 * time.Second
)

// RegistryConfig describes all applications a Registry should serve.
type RegistryConfig struct {
	Applications []ApplicationConfig
}

// ApplicationConfig contains the settings of a single platform application.
type ApplicationConfig struct {
	Name          string        `env:"NAME"`
	ID            int64         `env:"ID"`
	Secret        string        `env:"SECRET"`
	Version       string        `env:"VERSION"`
	Permissions   []string      `env:"PERMISSIONS" envSeparator:","`
	GraphEndpoint string        `env:"GRAPH_ENDPOINT"`
	HTTPTimeout   time.Duration `env:"HTTP_TIMEOUT"`
}

// LoadApplicationConfig reads an application configuration from environment
// variables named <prefix>ID, <prefix>SECRET and so on, then applies defaults.
func LoadApplicationConfig(prefix string) (ApplicationConfig, error) {
	var cfg ApplicationConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: prefix}); err != nil {
		return ApplicationConfig{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return ApplicationConfig{}, err
	}
	return cfg, nil
}

// String never includes the secret.
func (c ApplicationConfig) String() string {
	return fmt.Sprintf("ApplicationConfig[name:%q, id:%d, version:%s, permissions:%v]", c.Name, c.ID, c.Version, c.Permissions)
}

// normalize sets default values for optional fields.
func (c *ApplicationConfig) normalize() {
	if c.Name == "" {
		c.Name = defaultName
	}
	c.Version = normalizeVersion(c.Version)
	if c.GraphEndpoint == "" {
		c.GraphEndpoint = defaultGraphEndpoint
	}
	c.GraphEndpoint = strings.TrimRight(c.GraphEndpoint, "/")
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = defaultHTTPTimeout
	}
	c.Permissions = compact(c.Permissions)
}

// validate ensures the application configuration is usable.
func (c ApplicationConfig) validate() error {
	switch {
	case c.ID == 0:
		return errors.New("application id is required")
	case c.Secret == "":
		return errors.New("application secret is required")
	}
	return nil
}

// applicationIndex returns the configs mapped by application name.
func (c RegistryConfig) applicationIndex() (map[string]ApplicationConfig, error) {
	if len(c.Applications) == 0 {
		return nil, errors.New("at least one application must be configured")
	}
	index := make(map[string]ApplicationConfig, len(c.Applications))
	for _, app := range c.Applications {
		clone := app
		clone.Permissions = append([]string(nil), app.Permissions...)
		clone.normalize()
		if err := clone.validate(); err != nil {
			return nil, fmt.Errorf("application %q: %w", clone.Name, err)
		}
		if _, exists := index[clone.Name]; exists {
			return nil, fmt.Errorf("duplicate application name %q", clone.Name)
		}
		index[clone.Name] = clone
	}
	return index, nil
}

// normalizeVersion accepts "21.0" as well as "v21.0".
func normalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return DefaultAPIVersion
	}
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

func compact(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
