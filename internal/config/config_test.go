package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

var ctx = context.Background()

func TestServerDefaults(t *testing.T) {
	cfg, err := loadServer(ctx, envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8080" || cfg.Store != StoreMemory || cfg.DataFile != "data.json" || cfg.Telemetry {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestServerBackendValidation(t *testing.T) {
	if _, err := loadServer(ctx, envconfig.MapLookuper(map[string]string{
		"COMPTES_STORE": "postgres",
	})); err == nil {
		t.Fatal("postgres without DATABASE_URL must fail")
	}
	cfg, err := loadServer(ctx, envconfig.MapLookuper(map[string]string{
		"COMPTES_STORE": "postgres",
		"DATABASE_URL":  "postgres://u:p@localhost:5432/comptes",
	}))
	if err != nil || cfg.DatabaseURL == "" {
		t.Fatalf("cfg=%+v err=%v", cfg, err)
	}
	if _, err := loadServer(ctx, envconfig.MapLookuper(map[string]string{
		"COMPTES_STORE": "redis",
	})); err == nil {
		t.Fatal("unknown store must fail")
	}
}

func TestClientConfig(t *testing.T) {
	cfg, err := loadClient(ctx, envconfig.MapLookuper(map[string]string{
		"COMPTES_FORMAT":  "xml",
		"COMPTES_TIMEOUT": "3s",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Timeout != 3*time.Second || cfg.BaseURL != "http://localhost:8080" || cfg.Lang != "fr" {
		t.Fatalf("cfg=%+v", cfg)
	}
	if _, err := loadClient(ctx, envconfig.MapLookuper(map[string]string{
		"COMPTES_FORMAT": "yaml",
	})); err == nil {
		t.Fatal("unknown format must fail")
	}
}

func TestLoadDotEnv(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing file must be ignored: %v", err)
	}
	p := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(p, []byte("COMPTES_TEST_DOTENV=ok\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COMPTES_TEST_DOTENV", "")
	os.Unsetenv("COMPTES_TEST_DOTENV")
	if err := LoadDotEnv(p); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("COMPTES_TEST_DOTENV"); got != "ok" {
		t.Fatalf("COMPTES_TEST_DOTENV=%q", got)
	}
}
