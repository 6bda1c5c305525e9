package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file used when no --config flag is given.
const DefaultPath = "power1.json"

// Secret backends understood by the tool.
const (
	BackendSecretService = "secret-service"
	BackendSQLite        = "sqlite"
	BackendNone          = "none"
)

// Config captures the Home Assistant endpoint plus optional knobs for TLS,
// timeouts and the secret backend. It is loaded once per run.
type Config struct {
	Host           string        `mapstructure:"host" json:"host"`
	Port           int           `mapstructure:"port" json:"port"`
	TimeoutSeconds int           `mapstructure:"timeout_seconds" json:"timeout_seconds"`
	TLS            TLSConfig     `mapstructure:"tls" json:"tls"`
	Secrets        SecretsConfig `mapstructure:"secrets" json:"secrets"`
}

// TLSConfig tunes certificate verification for self-signed installs.
type TLSConfig struct {
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify" json:"insecure_skip_verify"`
	CAFile             string `mapstructure:"ca_file" json:"ca_file"`
}

// SecretsConfig selects where the bearer token is looked up.
type SecretsConfig struct {
	Backend string `mapstructure:"backend" json:"backend"`
	Path    string `mapstructure:"path" json:"path"`
	KeyEnv  string `mapstructure:"key_env" json:"key_env"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		Secrets: SecretsConfig{
			Backend: BackendSecretService,
			KeyEnv:  "HATOOL_SECRET_KEY",
		},
	}
}

// Timeout returns the HTTP timeout, zero meaning none.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate ensures required fields are present and sane.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return errors.New("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must be >= 0")
	}
	switch c.Secrets.Backend {
	case BackendSecretService, BackendNone:
	case BackendSQLite:
		if strings.TrimSpace(c.Secrets.Path) == "" {
			return errors.New("secrets.path is required for the sqlite backend")
		}
		if strings.TrimSpace(c.Secrets.KeyEnv) == "" {
			return errors.New("secrets.key_env is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("secrets.backend %q is not supported", c.Secrets.Backend)
	}
	return nil
}

// LoadFile reads a JSON config file (YAML when the extension is .yaml or
// .yml) and returns the validated configuration.
func LoadFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	input := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &input); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(raw, &input); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg, err := Load(input)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Load decodes arbitrary input (struct, map, cfg struct) using cfgx helpers.
// When cfgx.Build yields a zero value we fall back to a JSON round-trip
// decoder so map inputs still populate the struct.
func Load(input any) (Config, error) {
	cfg, err := cfgx.Build[Config](input)
	if err != nil {
		return Config{}, err
	}

	if isZero(cfg) {
		if err := decodeFallback(input, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg = cfg.withDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) withDefaults() Config {
	defaults := Defaults()

	if c.Secrets.Backend == "" {
		c.Secrets.Backend = defaults.Secrets.Backend
	}
	if c.Secrets.KeyEnv == "" {
		c.Secrets.KeyEnv = defaults.Secrets.KeyEnv
	}
	return c
}

func isZero(cfg Config) bool {
	return reflect.DeepEqual(cfg, Config{})
}

func decodeFallback(input any, cfg *Config) error {
	switch v := input.(type) {
	case nil:
		return nil
	case Config:
		*cfg = v
		return nil
	case *Config:
		if v != nil {
			*cfg = *v
		}
		return nil
	case map[string]any:
		return decodeMap(v, cfg)
	default:
		return fmt.Errorf("unsupported config input type: %T", input)
	}
}

func decodeMap(input map[string]any, cfg *Config) error {
	if input == nil {
		return nil
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, cfg)
}
