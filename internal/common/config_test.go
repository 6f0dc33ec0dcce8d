package common

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port default = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Quota.DefaultLimit != 5 {
		t.Errorf("Quota.DefaultLimit default = %d, want 5", cfg.Quota.DefaultLimit)
	}
	if cfg.Clients.Gemini.Temperature != 0.7 {
		t.Errorf("Gemini.Temperature default = %v, want 0.7", cfg.Clients.Gemini.Temperature)
	}
	if cfg.Clients.Gemini.MaxOutputTokens != 2000 {
		t.Errorf("Gemini.MaxOutputTokens default = %d, want 2000", cfg.Clients.Gemini.MaxOutputTokens)
	}
}

func TestConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("SONAGI_PORT", "9090")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
}

func TestConfig_QuotaEnvOverride(t *testing.T) {
	t.Setenv("SONAGI_QUOTA_BACKEND", "redis")
	t.Setenv("SONAGI_QUOTA_DEFAULT_LIMIT", "12")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Quota.Backend != "redis" {
		t.Errorf("Quota.Backend = %q, want redis", cfg.Quota.Backend)
	}
	if cfg.Quota.DefaultLimit != 12 {
		t.Errorf("Quota.DefaultLimit = %d, want 12", cfg.Quota.DefaultLimit)
	}
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sonagi.toml")
	content := `
environment = "production"

[server]
port = 7000

[storage]
backend = "memory"

[clients.gemini]
model = "gemini-test"
timeout = "10s"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SONAGI_PORT", "7100")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("expected production environment")
	}
	if cfg.Server.Port != 7100 {
		t.Errorf("env should win over file: port = %d", cfg.Server.Port)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("Storage.Backend = %q, want memory", cfg.Storage.Backend)
	}
	if cfg.Clients.Gemini.Model != "gemini-test" {
		t.Errorf("Gemini.Model = %q", cfg.Clients.Gemini.Model)
	}
	if cfg.Clients.Gemini.GetTimeout() != 10*time.Second {
		t.Errorf("Gemini timeout = %v, want 10s", cfg.Clients.Gemini.GetTimeout())
	}
	// untouched sections keep defaults
	if cfg.Quota.DefaultLimit != 5 {
		t.Errorf("Quota.DefaultLimit = %d, want 5", cfg.Quota.DefaultLimit)
	}
}

func TestLoadConfig_MissingFileSkipped(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should be skipped: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected defaults, got port %d", cfg.Server.Port)
	}
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[server\nport = "), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestGeminiConfig_DurationFallbacks(t *testing.T) {
	c := GeminiConfig{Timeout: "soon", BreakerTimeout: ""}
	if c.GetTimeout() != 45*time.Second {
		t.Errorf("GetTimeout fallback = %v", c.GetTimeout())
	}
	if c.GetBreakerTimeout() != 60*time.Second {
		t.Errorf("GetBreakerTimeout fallback = %v", c.GetBreakerTimeout())
	}
}

func TestQuotaConfig_GetLocation(t *testing.T) {
	c := QuotaConfig{PeriodLocation: "Not/AZone"}
	if c.GetLocation() != time.UTC {
		t.Error("invalid zone should fall back to UTC")
	}
}

type stubKV struct {
	values map[string]string
}

func (s *stubKV) GetSystemKV(_ context.Context, key string) (string, error) {
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

func TestResolveAPIKey_Priority(t *testing.T) {
	ctx := context.Background()
	store := &stubKV{values: map[string]string{"gemini_api_key": "from-store"}}

	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("SONAGI_GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	got, err := ResolveAPIKey(ctx, store, "gemini_api_key", "from-config")
	if err != nil || got != "from-store" {
		t.Errorf("store should beat config: got %q, %v", got, err)
	}

	t.Setenv("GEMINI_API_KEY", "from-env")
	got, _ = ResolveAPIKey(ctx, store, "gemini_api_key", "from-config")
	if got != "from-env" {
		t.Errorf("env should win: got %q", got)
	}

	t.Setenv("GEMINI_API_KEY", "")
	got, _ = ResolveAPIKey(ctx, nil, "gemini_api_key", "from-config")
	if got != "from-config" {
		t.Errorf("fallback expected: got %q", got)
	}

	if _, err := ResolveAPIKey(ctx, nil, "gemini_api_key", ""); err == nil {
		t.Error("expected error when key is nowhere")
	}
}
