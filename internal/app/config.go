package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/raysh454/promptlab/internal/catalog"
	"github.com/raysh454/promptlab/internal/loader"
	"github.com/raysh454/promptlab/internal/server"
	"github.com/raysh454/promptlab/internal/webclient"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PROMPTLAB_"

// Config is the runtime configuration shared by the loader, the TUI and the
// catalog server.
type Config struct {
	LogLevel string `yaml:"log_level"`

	// Mode is the initially selected mode.
	Mode string `yaml:"mode"`

	// Modes are the choices offered by mode selectors.
	Modes []string `yaml:"modes"`

	Loader    loader.Config    `yaml:"loader"`
	WebClient webclient.Config `yaml:"webclient"`
	Server    server.Config    `yaml:"server"`
	Catalog   catalog.Config   `yaml:"catalog"`
}

// DefaultConfig returns a Config for a local setup: the API
// on localhost:8000 and the story_001 problem.
func DefaultConfig() *Config {
	srv := server.DefaultConfig()
	return &Config{
		LogLevel: "info",
		Mode:     "guided",
		Modes:    []string{"guided", "evaluation"},
		Loader: loader.Config{
			BaseURL:   loader.DefaultBaseURL,
			ProblemID: loader.DefaultProblemID,
		},
		WebClient: webclient.Config{
			Client:    webclient.ClientNetHTTP,
			IdleAfter: 500 * time.Millisecond,
		},
		Server: srv,
		Catalog: catalog.Config{
			Driver: catalog.DriverMemory,
		},
	}
}

// LoadConfig builds a Config from defaults, the optional YAML file at path
// (with ${VAR} expansion) and PROMPTLAB_* environment overrides, in that
// order, and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays PROMPTLAB_* variables read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("LOG_LEVEL", &c.LogLevel)
	str("MODE", &c.Mode)
	str("BASE_URL", &c.Loader.BaseURL)
	str("PROBLEM_ID", &c.Loader.ProblemID)
	str("ADDR", &c.Server.ListenAddr)
	str("CATALOG_DSN", &c.Catalog.DSN)

	if v, ok := lookup(EnvPrefix + "MODES"); ok && strings.TrimSpace(v) != "" {
		c.Modes = splitList(v)
	}
	if v, ok := lookup(EnvPrefix + "BACKEND"); ok && strings.TrimSpace(v) != "" {
		c.WebClient.Client = webclient.Client(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvPrefix + "CATALOG_DRIVER"); ok && strings.TrimSpace(v) != "" {
		c.Catalog.Driver = catalog.Driver(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvPrefix + "TIMEOUT"); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse %sTIMEOUT: %w", EnvPrefix, err)
		}
		c.WebClient.Timeout = d
	}
	if v, ok := lookup(EnvPrefix + "FAIL_ON_STATUS"); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse %sFAIL_ON_STATUS: %w", EnvPrefix, err)
		}
		c.Loader.FailOnStatus = b
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if len(c.Modes) == 0 {
		return errors.New("at least one mode must be configured")
	}
	if _, err := loader.ProblemURL(c.Loader.BaseURL, c.Loader.ProblemID, c.Mode); err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	if c.WebClient.Timeout < 0 {
		return fmt.Errorf("webclient: negative timeout %s", c.WebClient.Timeout)
	}
	if strings.TrimSpace(c.Server.ListenAddr) == "" {
		return errors.New("server: listen address is required")
	}
	switch catalog.Driver(strings.ToLower(string(c.Catalog.Driver))) {
	case "", catalog.DriverMemory:
	case catalog.DriverSQLite:
		if c.Catalog.DSN == "" {
			return errors.New("catalog: sqlite driver requires a dsn")
		}
	default:
		return fmt.Errorf("catalog: unknown driver %q", c.Catalog.Driver)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
