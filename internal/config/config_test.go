package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != defaultBaseURL {
		t.Fatalf("BaseURL = %q, want %q", cfg.API.BaseURL, defaultBaseURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Fatalf("Timeout = %v, want 10s", cfg.API.Timeout)
	}
	if !cfg.Breaker.Enabled || cfg.Breaker.MaxFailures != 5 {
		t.Fatalf("Breaker = %+v, want enabled with 5 failures", cfg.Breaker)
	}

	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.Log.File != wantLog {
		t.Fatalf("Log.File = %q, want %q", cfg.Log.File, wantLog)
	}
	if cfg.Metrics.Addr != "" {
		t.Fatalf("Metrics.Addr = %q, want empty", cfg.Metrics.Addr)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
[api]
base_url = "  https://shop.example.com  "
timeout = "3s"

[breaker]
enabled = false
max_failures = 2
open_timeout = "1m"

[refresh]
interval = "0s"

[log]
level = " DEBUG "
format = "console"
file = "~/logs/backoffice.log"

[metrics]
addr = ":9090"

[photos]
warn_bytes = 1024
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != "https://shop.example.com" {
		t.Fatalf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Fatalf("Timeout = %v, want 3s", cfg.API.Timeout)
	}
	if cfg.Breaker.Enabled || cfg.Breaker.MaxFailures != 2 || cfg.Breaker.OpenTimeout != time.Minute {
		t.Fatalf("Breaker = %+v", cfg.Breaker)
	}
	if cfg.Refresh.Interval != 0 {
		t.Fatalf("Refresh.Interval = %v, want 0", cfg.Refresh.Interval)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "console" {
		t.Fatalf("Log = %+v", cfg.Log)
	}
	if cfg.Log.File != filepath.Join(home, "logs", "backoffice.log") {
		t.Fatalf("Log.File = %q, want it under HOME %q", cfg.Log.File, home)
	}
	if cfg.Metrics.Addr != ":9090" {
		t.Fatalf("Metrics.Addr = %q", cfg.Metrics.Addr)
	}
	if cfg.Photos.WarnBytes != 1024 {
		t.Fatalf("WarnBytes = %d", cfg.Photos.WarnBytes)
	}
	if cfg.Devserver.AdminUsername != "admin" {
		t.Fatalf("AdminUsername = %q, want default", cfg.Devserver.AdminUsername)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := writeConfig(t, `
[api]
base_url = "   "

[log]
level = ""
file = ""
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != defaultBaseURL {
		t.Fatalf("BaseURL = %q, want %q", cfg.API.BaseURL, defaultBaseURL)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("Log.Level = %q, want info", cfg.Log.Level)
	}
	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.Log.File != wantLog {
		t.Fatalf("Log.File = %q, want %q", cfg.Log.File, wantLog)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BACKOFFICE_API_URL", "http://10.0.0.5:9999")
	t.Setenv("BACKOFFICE_BREAKER_MAX_FAILURES", "7")
	t.Setenv("BACKOFFICE_REFRESH_INTERVAL", "45s")
	t.Setenv("BACKOFFICE_ADMIN_PASSWORD", "s3cret")
	t.Setenv("BACKOFFICE_UNRELATED", "ignored")

	path := writeConfig(t, `
[api]
base_url = "http://file.example.com"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != "http://10.0.0.5:9999" {
		t.Fatalf("BaseURL = %q, want env value", cfg.API.BaseURL)
	}
	if cfg.Breaker.MaxFailures != 7 {
		t.Fatalf("MaxFailures = %d, want 7", cfg.Breaker.MaxFailures)
	}
	if cfg.Refresh.Interval != 45*time.Second {
		t.Fatalf("Refresh.Interval = %v, want 45s", cfg.Refresh.Interval)
	}
	if cfg.Devserver.AdminPassword != "s3cret" {
		t.Fatalf("AdminPassword = %q", cfg.Devserver.AdminPassword)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := writeConfig(t, `base_url = [`)
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_InvalidValuesFail(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, `
[log]
format = "xml"

[photos]
warn_bytes = -1
`)
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want validation error")
	}
	for _, want := range []string{"invalid config", "Format", "WarnBytes"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("Load error = %q, want it to mention %q", err.Error(), want)
		}
	}
}

func TestEnvKey(t *testing.T) {
	cases := map[string]string{
		"BACKOFFICE_API_URL":   "api.base_url",
		"BACKOFFICE_LOG_LEVEL": "log.level",
		"BACKOFFICE_NOPE":      "",
		"HOME":                 "",
	}
	for in, want := range cases {
		if got := envKey(in); got != want {
			t.Fatalf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParserRoundTrip(t *testing.T) {
	p := Parser()
	m, err := p.Unmarshal([]byte("[api]\nbase_url = \"http://x\"\n"))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	api, ok := m["api"].(map[string]interface{})
	if !ok || api["base_url"] != "http://x" {
		t.Fatalf("Unmarshal = %#v", m)
	}
	if _, err := p.Marshal(m); err != nil {
		t.Fatalf("Marshal: %v", err)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

func TestDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got := DefaultPath()
	if got != filepath.Join(home, ".config", "backoffice", "config.toml") {
		t.Fatalf("DefaultPath = %q", got)
	}
}
