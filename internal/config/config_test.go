package config

import "testing"

func validConfig() *Config {
	return &Config{
		Env:            "production",
		DatabaseURL:    "postgres://localhost:5432/portal",
		JWTSecret:      "test-secret-not-for-production",
		TokenTTLHours:  12,
		StorageBackend: "memory",
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
}

func TestValidate_ProductionNeedsAuth(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = ""
	cfg.AuthJWKSURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when no signing secret or JWKS URL is configured outside development")
	}

	cfg.AuthJWKSURL = "https://auth.example/.well-known/jwks.json"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("a JWKS URL alone should satisfy auth config: %v", err)
	}
}

func TestValidate_DevWithoutSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "development"
	cfg.JWTSecret = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("development mode should not require a secret: %v", err)
	}
}

func TestValidate_S3NeedsBucket(t *testing.T) {
	cfg := validConfig()
	cfg.StorageBackend = "s3"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for s3 backend without a bucket")
	}
	cfg.ReportsBucket = "portal-reports"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownBackend(t *testing.T) {
	cfg := validConfig()
	cfg.StorageBackend = "nfs"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown storage backend")
	}
}

func TestValidate_TokenTTL(t *testing.T) {
	cfg := validConfig()
	cfg.TokenTTLHours = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive token TTL")
	}
}
