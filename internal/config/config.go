package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	JWTSecret     string `mapstructure:"JWT_SECRET"`
	JWTIssuer     string `mapstructure:"JWT_ISSUER"`
	AuthJWKSURL   string `mapstructure:"AUTH_JWKS_URL"`
	TokenTTLHours int    `mapstructure:"TOKEN_TTL_HOURS"`

	PredictURL            string `mapstructure:"PREDICT_URL"`
	PredictTimeoutSeconds int    `mapstructure:"PREDICT_TIMEOUT_SECONDS"`

	AIEndpoint string `mapstructure:"AI_ENDPOINT"`
	AIModel    string `mapstructure:"AI_MODEL"`
	AIAPIKey   string `mapstructure:"AI_API_KEY"`

	StorageBackend      string `mapstructure:"STORAGE_BACKEND"`
	ReportsBucket       string `mapstructure:"REPORTS_BUCKET"`
	ReportsPrefix       string `mapstructure:"REPORTS_PREFIX"`
	ReportURLTTLSeconds int    `mapstructure:"REPORT_URL_TTL_SECONDS"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("TOKEN_TTL_HOURS", 12)
	v.SetDefault("PREDICT_TIMEOUT_SECONDS", 30)
	v.SetDefault("AI_MODEL", "claude-3-haiku-20240307")
	v.SetDefault("STORAGE_BACKEND", "memory")
	v.SetDefault("REPORTS_PREFIX", "reports/")
	v.SetDefault("REPORT_URL_TTL_SECONDS", 3600)
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"CORS_ORIGINS", "JWT_SECRET", "JWT_ISSUER", "AUTH_JWKS_URL",
		"TOKEN_TTL_HOURS", "PREDICT_URL", "PREDICT_TIMEOUT_SECONDS",
		"AI_ENDPOINT", "AI_MODEL", "AI_API_KEY", "STORAGE_BACKEND",
		"REPORTS_BUCKET", "REPORTS_PREFIX", "REPORT_URL_TTL_SECONDS",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	} {
		v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.IsDev() {
		log.Println("WARNING: server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active, all requests get admin access.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run with. Outside
// development mode a session signing secret (or an external JWKS URL) is
// required so real authentication is enforced.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if !c.IsDev() && c.JWTSecret == "" && c.AuthJWKSURL == "" {
		return fmt.Errorf("JWT_SECRET or AUTH_JWKS_URL must be set when ENV is not development")
	}
	switch c.StorageBackend {
	case "memory":
	case "s3":
		if c.ReportsBucket == "" {
			return fmt.Errorf("REPORTS_BUCKET is required when STORAGE_BACKEND is \"s3\"")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be \"memory\" or \"s3\", got %q", c.StorageBackend)
	}
	if c.TokenTTLHours <= 0 {
		return fmt.Errorf("TOKEN_TTL_HOURS must be positive")
	}
	return nil
}
