package cord

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPolicyConfig_MissingFileIsNotAnError(t *testing.T) {
	defer ResetPolicyConfig()
	if err := LoadPolicyConfig(t.TempDir()); err != nil {
		t.Errorf("expected no error for a missing policy.yaml, got %v", err)
	}
	if got := EffectiveWeights()["moral_check"]; got != Weights["moral_check"] {
		t.Errorf("expected hardcoded default to remain in effect, got %f", got)
	}
}

func TestLoadPolicyConfig_OverridesMergeWithDefaults(t *testing.T) {
	defer ResetPolicyConfig()
	dir := t.TempDir()
	yaml := "weights:\n  moral_check: 9\nthresholds:\n  contain: 3\n"
	if err := os.WriteFile(filepath.Join(dir, "policy.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LoadPolicyConfig(dir); err != nil {
		t.Fatalf("LoadPolicyConfig failed: %v", err)
	}

	weights := EffectiveWeights()
	if weights["moral_check"] != 9 {
		t.Errorf("expected overridden moral_check weight 9, got %f", weights["moral_check"])
	}
	if weights["security_check"] != Weights["security_check"] {
		t.Errorf("expected un-overridden weight to keep its default, got %f", weights["security_check"])
	}

	thresholds := EffectiveThresholds()
	if thresholds["contain"] != 3 {
		t.Errorf("expected overridden contain threshold 3, got %f", thresholds["contain"])
	}
	if thresholds["block"] != Thresholds["block"] {
		t.Errorf("expected un-overridden threshold to keep its default, got %f", thresholds["block"])
	}
}

func TestResetPolicyConfig_RevertsToDefaults(t *testing.T) {
	ApplyPolicyConfig(PolicyConfig{Weights: map[string]float64{"moral_check": 1}})
	ResetPolicyConfig()
	if got := EffectiveWeights()["moral_check"]; got != Weights["moral_check"] {
		t.Errorf("expected ResetPolicyConfig to clear the override, got %f", got)
	}
}

func TestApplyPolicyConfig_ProgrammaticOverride(t *testing.T) {
	defer ResetPolicyConfig()
	ApplyPolicyConfig(PolicyConfig{Thresholds: map[string]float64{"block": 4.2}})
	if got := EffectiveThresholds()["block"]; got != 4.2 {
		t.Errorf("expected programmatic override to take effect, got %f", got)
	}
}
