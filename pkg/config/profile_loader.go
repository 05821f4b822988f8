package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DeploymentProfile is a per-installation YAML profile layered over the
// environment configuration. Operators use it for the settings that vary
// by jurisdiction or customer tier rather than by process.
type DeploymentProfile struct {
	Name      string          `yaml:"name" json:"name"`
	Code      string          `yaml:"code" json:"code"`
	Retention RetentionConfig `yaml:"retention" json:"retention"`
	Limits    LimitsConfig    `yaml:"limits" json:"limits"`
	Evidence  EvidenceConfig  `yaml:"evidence" json:"evidence"`
}

// RetentionConfig defines data retention policy for the installation.
type RetentionConfig struct {
	IdempotencyDays   int `yaml:"idempotency_days" json:"idempotency_days"`
	EvidenceYears     int `yaml:"evidence_years" json:"evidence_years"`
	PublishedRowsDays int `yaml:"published_rows_days" json:"published_rows_days"`
}

// LimitsConfig overrides the default per-tenant command rate limits.
type LimitsConfig struct {
	CommandsPerSecond float64 `yaml:"commands_per_second" json:"commands_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`
}

// EvidenceConfig selects the payload-store lock behaviour.
type EvidenceConfig struct {
	Bucket          string `yaml:"bucket" json:"bucket"`
	DefaultLockMode string `yaml:"default_lock_mode" json:"default_lock_mode"` // "GOVERNANCE" | "COMPLIANCE"
}

// LoadProfile loads a deployment profile YAML by code. It searches the
// profiles directory for profile_<code>.yaml.
func LoadProfile(profilesDir, code string) (*DeploymentProfile, error) {
	code = strings.ToLower(code)
	path := filepath.Join(profilesDir, fmt.Sprintf("profile_%s.yaml", code))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", code, err)
	}

	var profile DeploymentProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse profile %q: %w", code, err)
	}

	if profile.Code == "" {
		profile.Code = code
	}

	return &profile, nil
}

// Apply overlays the profile's non-zero settings onto cfg.
func (p *DeploymentProfile) Apply(cfg *Config) {
	if p.Limits.CommandsPerSecond > 0 {
		cfg.RateLimitPerSecond = p.Limits.CommandsPerSecond
	}
	if p.Limits.Burst > 0 {
		cfg.RateLimitBurst = p.Limits.Burst
	}
	if p.Evidence.Bucket != "" {
		cfg.EvidenceBucket = p.Evidence.Bucket
	}
}
