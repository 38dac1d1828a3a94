package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %s, want 8080", cfg.HTTPPort)
	}
	if cfg.ChainID != 11155111 {
		t.Errorf("ChainID = %d, want 11155111", cfg.ChainID)
	}
	if cfg.NativeSymbol != "ETH" || cfg.TokenSymbol != "USDC" {
		t.Errorf("symbols = %s/%s", cfg.NativeSymbol, cfg.TokenSymbol)
	}
	if cfg.ReconcileInterval != 10*time.Second {
		t.Errorf("ReconcileInterval = %s, want 10s", cfg.ReconcileInterval)
	}
	if cfg.ReconcileMaxPendingAge != 24*time.Hour {
		t.Errorf("ReconcileMaxPendingAge = %s, want 24h", cfg.ReconcileMaxPendingAge)
	}
	if cfg.GasPriceMargin != "1.2" {
		t.Errorf("GasPriceMargin = %s, want 1.2", cfg.GasPriceMargin)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CHAIN_ID", "1")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RECONCILE_INTERVAL", "5s")
	t.Setenv("MNEMONIC", "test test test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPPort != "9090" {
		t.Errorf("HTTPPort = %s, want 9090", cfg.HTTPPort)
	}
	if cfg.ChainID != 1 {
		t.Errorf("ChainID = %d, want 1", cfg.ChainID)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if cfg.ReconcileInterval != 5*time.Second {
		t.Errorf("ReconcileInterval = %s, want 5s", cfg.ReconcileInterval)
	}
	if cfg.Mnemonic != "test test test" {
		t.Errorf("Mnemonic = %q", cfg.Mnemonic)
	}
}
