package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-daas/pkg/schema"
	"github.com/goliatone/go-daas/pkg/session"
)

// FileName is the default configuration file looked up in the working
// directory.
const FileName = "daas.yaml"

// Environment overrides.
const (
	EnvEndpoint = "DAAS_ENDPOINT"
	EnvToken    = "DAAS_TOKEN"
)

// Duration decodes YAML strings such as "2s" or "750ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config holds CLI configuration.
type Config struct {
	// Endpoint is the document service base URL. Empty means the local
	// directory store rooted at TemplatesDir.
	Endpoint     string   `yaml:"endpoint,omitempty"`
	Token        string   `yaml:"token,omitempty"`
	Timeout      Duration `yaml:"timeout,omitempty"`
	TemplatesDir string   `yaml:"templates_dir,omitempty"`
	OutputDir    string   `yaml:"output_dir,omitempty"`
	SettleWindow Duration `yaml:"settle_window,omitempty"`
	BlockClass   string   `yaml:"schema_block_class,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Timeout:      Duration(30 * time.Second),
		TemplatesDir: ".",
		OutputDir:    "dist",
		SettleWindow: Duration(session.DefaultSettleWindow),
		BlockClass:   schema.DefaultBlockClass,
	}
}

// Load reads path on top of Default and applies environment overrides. A
// missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvEndpoint)); v != "" {
		c.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvToken)); v != "" {
		c.Token = v
	}
}

// Validate checks the values that have no sensible fallback.
func (c Config) Validate() error {
	if c.Timeout < 0 {
		return errors.New("config: timeout must not be negative")
	}
	if c.SettleWindow < 0 {
		return errors.New("config: settle_window must not be negative")
	}
	if c.Endpoint != "" && !strings.HasPrefix(c.Endpoint, "http://") && !strings.HasPrefix(c.Endpoint, "https://") {
		return fmt.Errorf("config: endpoint %q must be an http(s) URL", c.Endpoint)
	}
	return nil
}

// Save writes the configuration with owner-only permissions since it may
// hold a token.
func (c Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("config: create dir: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
