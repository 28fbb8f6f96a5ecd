package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env              string
	LogLevel         string
	Port             uint16
	CountryTablePath string  // Empty uses the embedded table
	ServiceFeeRate   float64 // Fraction of the cart subtotal, 0..1
	MetricsNamespace string
	CORS             CORSConfig
	NATS             NATSConfig
	HTTP             HTTPConfig
	Sessions         SessionConfig
}

type CORSConfig struct {
	AllowedOrigins []string
}

// NATSConfig controls event publishing. An empty URL disables it.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

type HTTPConfig struct {
	MaxBodyBytes     int64
	CheckoutRPS      float64 // Per-client checkout rate limit
	CheckoutBurst    int
	RequestTimeoutMS int
}

// SessionConfig controls how long idle booking sessions are kept.
type SessionConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

func NewConfig() (*Config, error) {
	// Try to load .env from current directory, then walk up to find it (max 2 levels)
	err := godotenv.Load()
	if err != nil {
		dir, _ := os.Getwd()
		found := false
		for i := 0; i < 2; i++ {
			dir = filepath.Join(dir, "..")
			if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
				found = true
				break
			}
		}
		if !found {
			slog.Default().Warn("Warning: .env file not found, using environment variables and defaults")
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	return loadConfig(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", 3000)
	v.SetDefault("COUNTRY_TABLE_PATH", "")
	v.SetDefault("SERVICE_FEE_RATE", 0.06)
	v.SetDefault("METRICS_NAMESPACE", "shippor")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("NATS_URL", "")
	v.SetDefault("NATS_SUBJECT_PREFIX", "shippor")
	v.SetDefault("MAX_BODY_BYTES", 1<<20)
	v.SetDefault("CHECKOUT_RPS", 1.0)
	v.SetDefault("CHECKOUT_BURST", 5)
	v.SetDefault("REQUEST_TIMEOUT_MS", 30000)
	v.SetDefault("SESSION_IDLE_TTL", "30m")
	v.SetDefault("SESSION_SWEEP_INTERVAL", "1m")
}

// loadConfig reads and validates the configuration from v.
func loadConfig(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	port := v.GetInt("PORT")
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", port)
	}

	cfg := &Config{
		Env:              v.GetString("ENV"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		Port:             uint16(port),
		CountryTablePath: v.GetString("COUNTRY_TABLE_PATH"),
		ServiceFeeRate:   v.GetFloat64("SERVICE_FEE_RATE"),
		MetricsNamespace: v.GetString("METRICS_NAMESPACE"),
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		NATS: NATSConfig{
			URL:           v.GetString("NATS_URL"),
			SubjectPrefix: v.GetString("NATS_SUBJECT_PREFIX"),
		},
		HTTP: HTTPConfig{
			MaxBodyBytes:     v.GetInt64("MAX_BODY_BYTES"),
			CheckoutRPS:      v.GetFloat64("CHECKOUT_RPS"),
			CheckoutBurst:    v.GetInt("CHECKOUT_BURST"),
			RequestTimeoutMS: v.GetInt("REQUEST_TIMEOUT_MS"),
		},
		Sessions: SessionConfig{
			IdleTTL:       v.GetDuration("SESSION_IDLE_TTL"),
			SweepInterval: v.GetDuration("SESSION_SWEEP_INTERVAL"),
		},
	}

	// Validate env
	validEnv := cfg.Env == "dev" || cfg.Env == "prod"
	if !validEnv {
		slog.Default().Warn("Invalid environment. Using default: prod", slog.String("env", cfg.Env))
		cfg.Env = "prod"
	}

	// Validate log level
	if _, ok := ParseLevel(cfg.LogLevel); !ok {
		slog.Default().Warn("Invalid log level. Using default: info", slog.String("value", cfg.LogLevel))
		cfg.LogLevel = "info"
	}

	if cfg.ServiceFeeRate < 0 || cfg.ServiceFeeRate > 1 {
		return nil, fmt.Errorf("SERVICE_FEE_RATE must be between 0 and 1, got %v", cfg.ServiceFeeRate)
	}

	if cfg.HTTP.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("MAX_BODY_BYTES must be positive")
	}

	if cfg.Sessions.IdleTTL <= 0 || cfg.Sessions.SweepInterval <= 0 {
		return nil, fmt.Errorf("SESSION_IDLE_TTL and SESSION_SWEEP_INTERVAL must be positive durations")
	}

	return cfg, nil
}

// splitList parses a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
