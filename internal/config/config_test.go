package config

import (
	"testing"
	"time"
)

func TestLoad_DefaultsAndNormalization(t *testing.T) {
	t.Setenv("BLOXS_API_BASE", "https://example.bloxs.nl/api")
	t.Setenv("BLOXS_USER", "user")
	t.Setenv("BLOXS_PASS", "secret")
	t.Setenv("BLOXS_HTTP_TIMEOUT", "")
	t.Setenv("BLOXS_LEDGER_CODE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBase != "https://example.bloxs.nl/api/" {
		t.Errorf("expected trailing slash on base, got %q", cfg.APIBase)
	}
	if cfg.LedgerCode != "8000" {
		t.Errorf("expected default ledger code 8000, got %q", cfg.LedgerCode)
	}
	if cfg.HTTPTimeout != 0 {
		t.Errorf("expected no timeout by default, got %s", cfg.HTTPTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestLoad_ParsesTypedValues(t *testing.T) {
	t.Setenv("BLOXS_HTTP_TIMEOUT", "45s")
	t.Setenv("BLOXS_STRICT_REFERENCES", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPTimeout != 45*time.Second {
		t.Errorf("expected 45s, got %s", cfg.HTTPTimeout)
	}
	if !cfg.StrictReferences {
		t.Error("expected strict references to be enabled")
	}
}

func TestLoad_RejectsBadDuration(t *testing.T) {
	t.Setenv("BLOXS_HTTP_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid duration, got nil")
	}
}

func TestValidate_ReportsMissingKeys(t *testing.T) {
	cfg := &Config{APIBase: "https://x/"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	want := "missing required configuration: BLOXS_USER, BLOXS_PASS"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}
