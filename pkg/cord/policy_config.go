package cord

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// PolicyConfig is the on-disk override for the hardcoded dimension weights
// and decision thresholds in policy.go. Operators who need a stricter (or
// looser) posture than the defaults edit this file rather than the binary.
type PolicyConfig struct {
	Weights    map[string]float64 `yaml:"weights"`
	Thresholds map[string]float64 `yaml:"thresholds"`
}

var (
	policyConfig   *PolicyConfig
	policyConfigMu sync.RWMutex
)

// LoadPolicyConfig loads weight/threshold overrides from
// <configDir>/policy.yaml. A missing file is not an error — this is the
// path taken by every deployment that hasn't opted into custom tuning, so
// it returns nil and leaves the hardcoded defaults from policy.go in
// effect.
func LoadPolicyConfig(configDir string) error {
	path := filepath.Join(configDir, "policy.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read policy config: %w", err)
	}

	var cfg PolicyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse policy config: %w", err)
	}

	policyConfigMu.Lock()
	policyConfig = &cfg
	policyConfigMu.Unlock()

	log.Printf("[cord] loaded policy config from %s (%d weight overrides, %d threshold overrides)",
		path, len(cfg.Weights), len(cfg.Thresholds))
	return nil
}

// ResetPolicyConfig clears any loaded override, reverting to the hardcoded
// defaults. Used by tests to avoid cross-test state leakage.
func ResetPolicyConfig() {
	policyConfigMu.Lock()
	policyConfig = nil
	policyConfigMu.Unlock()
}

// ApplyPolicyConfig installs cfg as the active override, the programmatic
// equivalent of LoadPolicyConfig for callers (such as pkg/config's named
// deployment profiles) that build overrides in memory instead of on disk.
func ApplyPolicyConfig(cfg PolicyConfig) {
	policyConfigMu.Lock()
	policyConfig = &cfg
	policyConfigMu.Unlock()
}

// EffectiveWeights returns Weights merged with any loaded override (the
// override wins per key; keys it doesn't mention keep their hardcoded
// value).
func EffectiveWeights() map[string]float64 {
	policyConfigMu.RLock()
	defer policyConfigMu.RUnlock()

	if policyConfig == nil || len(policyConfig.Weights) == 0 {
		return Weights
	}
	merged := make(map[string]float64, len(Weights)+len(policyConfig.Weights))
	for k, v := range Weights {
		merged[k] = v
	}
	for k, v := range policyConfig.Weights {
		merged[k] = v
	}
	return merged
}

// EffectiveThresholds returns Thresholds merged with any loaded override.
func EffectiveThresholds() map[string]float64 {
	policyConfigMu.RLock()
	defer policyConfigMu.RUnlock()

	if policyConfig == nil || len(policyConfig.Thresholds) == 0 {
		return Thresholds
	}
	merged := make(map[string]float64, len(Thresholds)+len(policyConfig.Thresholds))
	for k, v := range Thresholds {
		merged[k] = v
	}
	for k, v := range policyConfig.Thresholds {
		merged[k] = v
	}
	return merged
}
