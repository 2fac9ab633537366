package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoad_RequiresDataFile(t *testing.T) {
	t.Setenv("DATA_FILE", "")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error when DATA_FILE is missing")
	}
}

func TestLoadWithoutDataFile_ReadsDotEnv(t *testing.T) {
	t.Setenv("DATA_FILE", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ENV=test\nLOG_LEVEL=debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadWithoutDataFile(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Env != "test" || cfg.LogLevel != "debug" {
		t.Errorf("expected .env values, got ENV=%q LOG_LEVEL=%q", cfg.Env, cfg.LogLevel)
	}
	if cfg.DataFile != "" {
		t.Errorf("expected no data file, got %q", cfg.DataFile)
	}
}

func TestLoad_WithDataFile(t *testing.T) {
	t.Setenv("DATA_FILE", "/tmp/patients.txt")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DataFile != "/tmp/patients.txt" {
		t.Errorf("expected DATA_FILE to be set, got %s", cfg.DataFile)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.RateLimitBurst != 200 {
		t.Errorf("expected default burst 200, got %d", cfg.RateLimitBurst)
	}
	if cfg.UploadLimit != "10M" {
		t.Errorf("expected default upload limit 10M, got %s", cfg.UploadLimit)
	}
}

func TestLoad_SplitsCORSOrigins(t *testing.T) {
	t.Setenv("DATA_FILE", "patients.txt")
	t.Setenv("CORS_ORIGINS", "http://a.example,http://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.example" {
		t.Errorf("expected two origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoadWithFlags_FileFlagOverridesEnv(t *testing.T) {
	t.Setenv("DATA_FILE", "env.txt")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("file", "", "")
	if err := fs.Parse([]string{"--file", "flag.txt"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := LoadWithFlags(fs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DataFile != "flag.txt" {
		t.Errorf("expected flag.txt, got %s", cfg.DataFile)
	}
}

func TestLoadWithFlags_UnchangedFlagKeepsEnv(t *testing.T) {
	t.Setenv("DATA_FILE", "env.txt")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("file", "", "")

	cfg, err := LoadWithFlags(fs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DataFile != "env.txt" {
		t.Errorf("expected env.txt, got %s", cfg.DataFile)
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}

	c.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
}

func TestConfig_ResolvedAuthMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"explicit", Config{Env: "development", AuthMode: "jwt"}, "jwt"},
		{"dev default", Config{Env: "development"}, "development"},
		{"production default", Config{Env: "production"}, "jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ResolvedAuthMode(); got != tt.want {
				t.Errorf("ResolvedAuthMode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Env:            "production",
			AuthSigningKey: strings.Repeat("k", 32),
			RateLimitRPS:   10,
			RateLimitBurst: 20,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"jwks only", func(c *Config) { c.AuthSigningKey = ""; c.AuthJWKSURL = "https://idp/jwks" }, ""},
		{"no key material", func(c *Config) { c.AuthSigningKey = "" }, "AUTH_SIGNING_KEY or AUTH_JWKS_URL"},
		{"short key", func(c *Config) { c.AuthSigningKey = "short" }, "at least 32 bytes"},
		{"dev auth in production", func(c *Config) { c.AuthMode = "development" }, "not allowed"},
		{"unknown mode", func(c *Config) { c.AuthMode = "magic" }, "AUTH_MODE must be"},
		{"zero rate", func(c *Config) { c.RateLimitRPS = 0 }, "RATE_LIMIT_RPS"},
		{"tls without cert", func(c *Config) { c.TLSEnabled = true; c.TLSKeyFile = "k.pem" }, "TLS_CERT_FILE"},
		{"tls without key", func(c *Config) { c.TLSEnabled = true; c.TLSCertFile = "c.pem" }, "TLS_KEY_FILE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
