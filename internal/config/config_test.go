package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/clinic_test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("port = %s, want 8000", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Error("default env should be development")
	}
	if cfg.JWTSecret == "" {
		t.Error("development fallback secret should be set")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"dev with fallback secret", Config{Env: "development", JWTSecret: "development-secret"}, false},
		{"production without secret", Config{Env: "production", CookieSecure: true}, true},
		{"production with fallback secret", Config{Env: "production", JWTSecret: "development-secret", CookieSecure: true}, true},
		{"production ok", Config{Env: "production", JWTSecret: "s3cret", CookieSecure: true}, false},
		{"production insecure cookie", Config{Env: "production", JWTSecret: "s3cret", CookieSecure: false}, true},
		{"half stripe config", Config{Env: "development", JWTSecret: "x", StripeSecretKey: "sk_test"}, true},
		{"full stripe config", Config{Env: "development", JWTSecret: "x", StripeSecretKey: "sk_test", StripeWebhookSecret: "whsec"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
