package infra

import (
	"testing"
	"time"
)

func clearVeoEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"VEO_API_KEY", "GEMINI_API_KEY", "API_KEY", "DATABASE_URL", "CREDENTIAL_SOURCE",
		"VIDEO_PROVIDER", "POLL_INITIAL_INTERVAL_SECONDS", "POLL_MAX_INTERVAL_SECONDS",
		"POLL_MULTIPLIER", "POLL_JITTER", "POLL_TIMEOUT_SECONDS", "POLL_MAX_ATTEMPTS",
		"CORS_ALLOWED_ORIGINS", "MAX_UPLOAD_MB",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearVeoEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.VeoModel != "veo-3.1-fast-generate-preview" {
		t.Fatalf("VeoModel = %q", cfg.VeoModel)
	}
	if cfg.VeoResolution != "720p" {
		t.Fatalf("VeoResolution = %q", cfg.VeoResolution)
	}
	if cfg.Poll.InitialInterval != 5*time.Second {
		t.Fatalf("Poll.InitialInterval = %s, want 5s", cfg.Poll.InitialInterval)
	}
	if cfg.Poll.Timeout != 10*time.Minute {
		t.Fatalf("Poll.Timeout = %s, want 10m", cfg.Poll.Timeout)
	}
	if cfg.CredentialSource != CredentialSourceEnv {
		t.Fatalf("CredentialSource = %q", cfg.CredentialSource)
	}
	if cfg.MaxUploadBytes != 20<<20 {
		t.Fatalf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:5173" {
		t.Fatalf("CORSAllowedOrigins = %#v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadConfigAPIKeyFallbackOrder(t *testing.T) {
	clearVeoEnv(t)
	t.Setenv("API_KEY", "from-api-key")
	t.Setenv("GEMINI_API_KEY", "from-gemini")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.VeoAPIKey != "from-gemini" {
		t.Fatalf("VeoAPIKey = %q, want from-gemini", cfg.VeoAPIKey)
	}

	t.Setenv("VEO_API_KEY", "from-veo")
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.VeoAPIKey != "from-veo" {
		t.Fatalf("VeoAPIKey = %q, want from-veo", cfg.VeoAPIKey)
	}
}

func TestLoadConfigStoreRequiresDatabase(t *testing.T) {
	clearVeoEnv(t)
	t.Setenv("CREDENTIAL_SOURCE", "store")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}

	t.Setenv("DATABASE_URL", "postgres://example")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.CredentialSource != CredentialSourceStore {
		t.Fatalf("CredentialSource = %q", cfg.CredentialSource)
	}
}

func TestLoadConfigRejectsUnknownValues(t *testing.T) {
	clearVeoEnv(t)
	t.Setenv("VIDEO_PROVIDER", "sora")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unknown VIDEO_PROVIDER")
	}

	clearVeoEnv(t)
	t.Setenv("POLL_JITTER", "1.5")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for out of range POLL_JITTER")
	}
}

func TestLoadConfigNormalizesPolling(t *testing.T) {
	clearVeoEnv(t)
	t.Setenv("POLL_INITIAL_INTERVAL_SECONDS", "10")
	t.Setenv("POLL_MAX_INTERVAL_SECONDS", "2")
	t.Setenv("POLL_MULTIPLIER", "0.5")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Poll.MaxInterval != 10*time.Second {
		t.Fatalf("Poll.MaxInterval = %s, want 10s", cfg.Poll.MaxInterval)
	}
	if cfg.Poll.Multiplier != 1 {
		t.Fatalf("Poll.Multiplier = %v, want 1", cfg.Poll.Multiplier)
	}
}
