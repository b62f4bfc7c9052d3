package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	CredentialSourceEnv   = "env"
	CredentialSourceStore = "store"

	VideoProviderVeo       = "veo"
	VideoProviderSynthetic = "synthetic"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv               string
	Port                 string
	DatabaseURL          string
	GeoIPDBPath          string
	DefaultLocale        string
	CORSAllowedOrigins   []string
	CredentialSource     string
	VeoAPIKey            string
	VeoBaseURL           string
	VeoModel             string
	VeoResolution        string
	VideoProvider        string
	Poll                 PollConfig
	MaxUploadBytes       int64
	HTTPReadTimeout      time.Duration
	HTTPWriteTimeout     time.Duration
	HTTPIdleTimeout      time.Duration
	RateLimitPerMin      int
	StateRateLimitPerMin int
}

// PollConfig bounds how long and how often a remote job is polled.
// Multiplier 1, Jitter 0 and Timeout 0 give a fixed, unbounded interval.
type PollConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	Jitter          float64
	Timeout         time.Duration
	MaxAttempts     int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:      getEnv("DEFAULT_LOCALE", "en"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		CredentialSource:   strings.ToLower(getEnv("CREDENTIAL_SOURCE", CredentialSourceEnv)),
		VeoAPIKey:          firstEnv("VEO_API_KEY", "GEMINI_API_KEY", "API_KEY"),
		VeoBaseURL:         getEnv("VEO_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		VeoModel:           getEnv("VEO_MODEL", "veo-3.1-fast-generate-preview"),
		VeoResolution:      getEnv("VEO_RESOLUTION", "720p"),
		VideoProvider:      strings.ToLower(getEnv("VIDEO_PROVIDER", VideoProviderVeo)),
		Poll: PollConfig{
			InitialInterval: time.Second * time.Duration(getEnvInt("POLL_INITIAL_INTERVAL_SECONDS", 5)),
			MaxInterval:     time.Second * time.Duration(getEnvInt("POLL_MAX_INTERVAL_SECONDS", 30)),
			Multiplier:      getEnvFloat("POLL_MULTIPLIER", 1.5),
			Jitter:          getEnvFloat("POLL_JITTER", 0.2),
			Timeout:         time.Second * time.Duration(getEnvInt("POLL_TIMEOUT_SECONDS", 600)),
			MaxAttempts:     getEnvInt("POLL_MAX_ATTEMPTS", 0),
		},
		MaxUploadBytes:       int64(getEnvInt("MAX_UPLOAD_MB", 20)) << 20,
		HTTPReadTimeout:      time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout:     time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:      time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:      getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		StateRateLimitPerMin: getEnvInt("STATE_RATE_LIMIT_PER_MINUTE", 240),
	}

	switch cfg.CredentialSource {
	case CredentialSourceEnv:
	case CredentialSourceStore:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when CREDENTIAL_SOURCE=store")
		}
	default:
		return nil, fmt.Errorf("unsupported CREDENTIAL_SOURCE %q", cfg.CredentialSource)
	}

	switch cfg.VideoProvider {
	case VideoProviderVeo, VideoProviderSynthetic:
	default:
		return nil, fmt.Errorf("unsupported VIDEO_PROVIDER %q", cfg.VideoProvider)
	}

	if cfg.Poll.InitialInterval <= 0 {
		return nil, fmt.Errorf("POLL_INITIAL_INTERVAL_SECONDS must be positive")
	}
	if cfg.Poll.MaxInterval < cfg.Poll.InitialInterval {
		cfg.Poll.MaxInterval = cfg.Poll.InitialInterval
	}
	if cfg.Poll.Multiplier < 1 {
		cfg.Poll.Multiplier = 1
	}
	if cfg.Poll.Jitter < 0 || cfg.Poll.Jitter >= 1 {
		return nil, fmt.Errorf("POLL_JITTER must be in [0, 1)")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
