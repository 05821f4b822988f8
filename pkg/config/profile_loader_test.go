package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleProfile = `
name: European Union
code: eu
retention:
  idempotency_days: 30
  evidence_years: 7
  published_rows_days: 14
limits:
  commands_per_second: 10
  burst: 20
evidence:
  bucket: portarium-evidence-eu
  default_lock_mode: COMPLIANCE
`

func writeProfile(t *testing.T, code, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "profile_"+code+".yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return dir
}

func TestLoadProfile(t *testing.T) {
	dir := writeProfile(t, "eu", sampleProfile)

	p, err := LoadProfile(dir, "EU")
	if err != nil {
		t.Fatalf("LoadProfile(eu): %v", err)
	}
	if p.Name != "European Union" {
		t.Errorf("expected name 'European Union', got %q", p.Name)
	}
	if p.Retention.EvidenceYears != 7 {
		t.Errorf("expected 7 evidence years, got %d", p.Retention.EvidenceYears)
	}
	if p.Evidence.DefaultLockMode != "COMPLIANCE" {
		t.Errorf("expected COMPLIANCE lock mode, got %q", p.Evidence.DefaultLockMode)
	}
}

func TestLoadProfile_CodeDefaultsFromFilename(t *testing.T) {
	dir := writeProfile(t, "us", "name: United States\n")

	p, err := LoadProfile(dir, "us")
	if err != nil {
		t.Fatalf("LoadProfile(us): %v", err)
	}
	if p.Code != "us" {
		t.Errorf("expected code 'us', got %q", p.Code)
	}
}

func TestLoadProfile_Missing(t *testing.T) {
	if _, err := LoadProfile(t.TempDir(), "zz"); err == nil {
		t.Fatal("expected error for missing profile")
	}
}

func TestProfileApply(t *testing.T) {
	dir := writeProfile(t, "eu", sampleProfile)
	p, err := LoadProfile(dir, "eu")
	if err != nil {
		t.Fatalf("LoadProfile(eu): %v", err)
	}

	cfg := &Config{RateLimitPerSecond: 25, RateLimitBurst: 50, EvidenceBucket: "portarium-evidence"}
	p.Apply(cfg)

	if cfg.RateLimitPerSecond != 10 {
		t.Errorf("expected 10 commands/s, got %v", cfg.RateLimitPerSecond)
	}
	if cfg.RateLimitBurst != 20 {
		t.Errorf("expected burst 20, got %d", cfg.RateLimitBurst)
	}
	if cfg.EvidenceBucket != "portarium-evidence-eu" {
		t.Errorf("expected eu bucket, got %q", cfg.EvidenceBucket)
	}
}

func TestProfileApply_ZeroValuesKeepDefaults(t *testing.T) {
	p := &DeploymentProfile{}
	cfg := &Config{RateLimitPerSecond: 25, RateLimitBurst: 50, EvidenceBucket: "portarium-evidence"}
	p.Apply(cfg)

	if cfg.RateLimitPerSecond != 25 || cfg.RateLimitBurst != 50 || cfg.EvidenceBucket != "portarium-evidence" {
		t.Error("zero-valued profile must not override configured defaults")
	}
}
