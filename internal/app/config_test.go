package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/raysh454/promptlab/internal/catalog"
	"github.com/raysh454/promptlab/internal/webclient"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "promptlab.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Loader.BaseURL != "http://localhost:8000" || cfg.Loader.ProblemID != "story_001" {
		t.Errorf("unexpected loader defaults: %+v", cfg.Loader)
	}
	if cfg.WebClient.Client != webclient.ClientNetHTTP {
		t.Errorf("expected nethttp backend, got %q", cfg.WebClient.Client)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
mode: evaluation
modes: [guided, evaluation, free]
loader:
  base_url: http://${PROMPTLAB_TEST_HOST}:9000
  problem_id: story_002
  fail_on_status: true
webclient:
  client: chromedp
  timeout: 3s
server:
  listen_addr: ":9000"
catalog:
  driver: sqlite
  dsn: /tmp/problems.db
`)
	t.Setenv("PROMPTLAB_TEST_HOST", "api.local")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Loader.BaseURL != "http://api.local:9000" {
		t.Errorf("env expansion failed: %q", cfg.Loader.BaseURL)
	}
	if cfg.Loader.ProblemID != "story_002" || !cfg.Loader.FailOnStatus {
		t.Errorf("unexpected loader config: %+v", cfg.Loader)
	}
	if cfg.Mode != "evaluation" || len(cfg.Modes) != 3 || cfg.LogLevel != "debug" {
		t.Errorf("unexpected top-level config: %+v", cfg)
	}
	if cfg.WebClient.Client != webclient.ClientChromedp || cfg.WebClient.Timeout != 3*time.Second {
		t.Errorf("unexpected webclient config: %+v", cfg.WebClient)
	}
	if cfg.Server.ListenAddr != ":9000" {
		t.Errorf("unexpected listen addr %q", cfg.Server.ListenAddr)
	}
	if cfg.Catalog.Driver != catalog.DriverSQLite || cfg.Catalog.DSN != "/tmp/problems.db" {
		t.Errorf("unexpected catalog config: %+v", cfg.Catalog)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read config file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "modes: [unterminated\n")

	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestApplyEnv_Overrides(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()

	err := cfg.ApplyEnv(lookupFrom(map[string]string{
		"PROMPTLAB_BASE_URL":       "http://example.test",
		"PROMPTLAB_MODE":           " evaluation ",
		"PROMPTLAB_MODES":          "guided, evaluation,,",
		"PROMPTLAB_BACKEND":        "chromedp",
		"PROMPTLAB_TIMEOUT":        "750ms",
		"PROMPTLAB_FAIL_ON_STATUS": "true",
		"PROMPTLAB_CATALOG_DRIVER": "sqlite",
		"PROMPTLAB_CATALOG_DSN":    "x.db",
		"PROMPTLAB_ADDR":           ":8081",
		"PROMPTLAB_LOG_LEVEL":      "",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}

	if cfg.Loader.BaseURL != "http://example.test" || cfg.Mode != "evaluation" {
		t.Errorf("unexpected overrides: %+v", cfg)
	}
	if strings.Join(cfg.Modes, "|") != "guided|evaluation" {
		t.Errorf("unexpected modes %v", cfg.Modes)
	}
	if cfg.WebClient.Client != webclient.ClientChromedp || cfg.WebClient.Timeout != 750*time.Millisecond {
		t.Errorf("unexpected webclient %+v", cfg.WebClient)
	}
	if !cfg.Loader.FailOnStatus || cfg.Server.ListenAddr != ":8081" {
		t.Errorf("unexpected loader/server %+v %+v", cfg.Loader, cfg.Server)
	}
	if cfg.Catalog.Driver != catalog.DriverSQLite || cfg.Catalog.DSN != "x.db" {
		t.Errorf("unexpected catalog %+v", cfg.Catalog)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("blank variable should not override, got %q", cfg.LogLevel)
	}
}

func TestApplyEnv_BadValues(t *testing.T) {
	t.Parallel()
	for name, env := range map[string]map[string]string{
		"timeout": {"PROMPTLAB_TIMEOUT": "soon"},
		"bool":    {"PROMPTLAB_FAIL_ON_STATUS": "maybe"},
	} {
		if err := DefaultConfig().ApplyEnv(lookupFrom(env)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()
	cases := map[string]func(*Config){
		"relative base url": func(c *Config) { c.Loader.BaseURL = "localhost:8000" },
		"no modes":          func(c *Config) { c.Modes = nil },
		"negative timeout":  func(c *Config) { c.WebClient.Timeout = -time.Second },
		"no listen addr":    func(c *Config) { c.Server.ListenAddr = " " },
		"sqlite no dsn":     func(c *Config) { c.Catalog.Driver = catalog.DriverSQLite },
		"unknown driver":    func(c *Config) { c.Catalog.Driver = "postgres" },
	}
	for name, mutate := range cases {
		cfg := DefaultConfig()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}
