// Package config builds deployment-profile Configs for the CORD engine —
// the operator-facing layer above pkg/cord's environment-derived Config,
// offering a couple of named postures (default, high security) instead of
// requiring every caller to hand-tune thresholds.
package config

import (
	"os"
	"strconv"

	"github.com/openclaw-ai/cord/pkg/cord"
)

// Profile is a named deployment posture.
type Profile struct {
	cord.Config
	BlockThreshold   float64
	ContainThreshold float64
}

// NewDefaultConfig returns the engine's baseline posture: environment-
// derived paths, stock thresholds from pkg/cord's policy table.
func NewDefaultConfig() *Profile {
	return &Profile{
		Config:           cord.NewConfigFromEnv(),
		BlockThreshold:   cord.Thresholds["block"],
		ContainThreshold: cord.Thresholds["contain"],
	}
}

// NewHighSecurityConfig returns a stricter posture for high-risk
// deployments: block and contain both trigger at a lower composite score
// than the default, and log redaction is forced to full regardless of the
// environment.
func NewHighSecurityConfig() *Profile {
	cfg := NewDefaultConfig()
	cfg.BlockThreshold = cord.Thresholds["block"] * 0.6
	cfg.ContainThreshold = cord.Thresholds["contain"] * 0.6
	cfg.Redaction = cord.RedactionFull
	return cfg
}

// Apply writes the profile's thresholds into the package-level policy
// override, so Decide (in pkg/cord) picks them up for the remainder of the
// process.
func (p *Profile) Apply() {
	cord.ApplyPolicyConfig(cord.PolicyConfig{
		Thresholds: map[string]float64{
			"block":   p.BlockThreshold,
			"contain": p.ContainThreshold,
		},
	})
}

// GetEnvInt reads an integer environment variable, falling back to
// fallback when unset or unparseable.
func GetEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// clampInt restricts val to [min, max].
func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
