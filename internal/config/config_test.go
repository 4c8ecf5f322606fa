package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"copytrader/internal/config"
)

func writeSectionFiles(t *testing.T, dir string) (riskPath, advisorPath, venuePath string) {
	t.Helper()

	riskPath = filepath.Join(dir, "risk.yaml")
	riskYAML := "" +
		"max_daily_loss: 500\n" +
		"max_total_exposure: 5000\n" +
		"max_single_trade: 250\n" +
		"max_slippage_pct: 0.02\n"
	if err := os.WriteFile(riskPath, []byte(riskYAML), 0o600); err != nil {
		t.Fatalf("write risk.yaml: %v", err)
	}

	advisorPath = filepath.Join(dir, "advisor.yaml")
	advisorYAML := "" +
		"base_url: ${ADVISOR_BASE_URL}\n" +
		"api_key: ${ADVISOR_API_KEY}\n" +
		"model: gpt-test\n" +
		"timeout: 5s\n"
	if err := os.WriteFile(advisorPath, []byte(advisorYAML), 0o600); err != nil {
		t.Fatalf("write advisor.yaml: %v", err)
	}

	venuePath = filepath.Join(dir, "venue.yaml")
	venueYAML := "" +
		"primary:\n" +
		"  base_url: https://clob.example\n" +
		"  data_api_url: https://data.example\n" +
		"  timeout: 10s\n" +
		"secondary:\n" +
		"  base_url: https://secondary.example\n" +
		"  timeout: 10s\n"
	if err := os.WriteFile(venuePath, []byte(venueYAML), 0o600); err != nil {
		t.Fatalf("write venue.yaml: %v", err)
	}
	return riskPath, advisorPath, venuePath
}

func TestLoad_HydratesSectionsAndExpandsEnv(t *testing.T) {
	dir := t.TempDir()
	riskPath, advisorPath, venuePath := writeSectionFiles(t, dir)

	t.Setenv("ADVISOR_BASE_URL", "https://advisor.example/api")
	t.Setenv("ADVISOR_API_KEY", "test-key")

	mainYAML := "" +
		"Name: copytrader\n" +
		"Host: 127.0.0.1\n" +
		"Port: 0\n" +
		"Env: test\n" +
		"Postgres:\n  DataSource: \"\"\n" +
		"Risk:\n  File: " + riskPath + "\n" +
		"Advisor:\n  File: " + advisorPath + "\n" +
		"Venue:\n  File: " + venuePath + "\n"

	mainPath := filepath.Join(dir, "copytrader.yaml")
	if err := os.WriteFile(mainPath, []byte(mainYAML), 0o600); err != nil {
		t.Fatalf("write main config: %v", err)
	}

	cfg, err := config.Load(mainPath)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}

	if cfg.Risk.Value == nil {
		t.Fatal("risk section not hydrated")
	}
	if got := cfg.Risk.Value.MaxDailyLoss; got != 500 {
		t.Fatalf("risk.max_daily_loss = %v, want 500", got)
	}

	if cfg.Advisor.Value == nil {
		t.Fatal("advisor section not hydrated")
	}
	if got := cfg.Advisor.Value.APIKey; got != "test-key" {
		t.Fatalf("advisor.api_key not env-expanded, got %q", got)
	}
	if got := cfg.Advisor.Value.BaseURL; got != "https://advisor.example/api" {
		t.Fatalf("advisor.base_url not env-expanded, got %q", got)
	}

	if cfg.Venue.Value == nil {
		t.Fatal("venue section not hydrated")
	}
	if got := cfg.Venue.Value.Primary.BaseURL; got != "https://clob.example" {
		t.Fatalf("venue.primary.base_url = %q", got)
	}

	if cfg.MainPath() != mainPath {
		t.Fatalf("MainPath() = %q, want %q", cfg.MainPath(), mainPath)
	}
	if cfg.BaseDir() != dir {
		t.Fatalf("BaseDir() = %q, want %q", cfg.BaseDir(), dir)
	}
}

func TestLoad_RejectsInvalidEnv(t *testing.T) {
	dir := t.TempDir()
	mainYAML := "" +
		"Name: copytrader\n" +
		"Host: 127.0.0.1\n" +
		"Port: 0\n" +
		"Env: staging\n"
	mainPath := filepath.Join(dir, "copytrader.yaml")
	if err := os.WriteFile(mainPath, []byte(mainYAML), 0o600); err != nil {
		t.Fatalf("write main config: %v", err)
	}

	if _, err := config.Load(mainPath); err == nil {
		t.Fatal("expected Load to reject env=staging")
	}
}

func TestConfig_ArbitrageDefaults(t *testing.T) {
	dir := t.TempDir()
	arbPath := filepath.Join(dir, "arbitrage.yaml")
	if err := os.WriteFile(arbPath, []byte("min_spread: 0.05\n"), 0o600); err != nil {
		t.Fatalf("write arbitrage.yaml: %v", err)
	}

	mainYAML := "" +
		"Name: copytrader\n" +
		"Host: 127.0.0.1\n" +
		"Port: 0\n" +
		"Env: test\n" +
		"Arbitrage:\n  File: " + arbPath + "\n"
	mainPath := filepath.Join(dir, "copytrader.yaml")
	if err := os.WriteFile(mainPath, []byte(mainYAML), 0o600); err != nil {
		t.Fatalf("write main config: %v", err)
	}

	cfg, err := config.Load(mainPath)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if cfg.Arbitrage.Value == nil {
		t.Fatal("arbitrage section not hydrated")
	}
	if got := cfg.Arbitrage.Value.MinSpread; got != 0.05 {
		t.Fatalf("arbitrage.min_spread = %v, want 0.05 (explicit override)", got)
	}
	if got := cfg.Arbitrage.Value.PollInterval; got != 15*time.Second {
		t.Fatalf("arbitrage.poll_interval default not applied, got %v", got)
	}
}
