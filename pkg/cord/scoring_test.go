package cord

import (
	"strings"
	"testing"
)

func TestComputeCompositeScore_WeightsApplied(t *testing.T) {
	results := []CheckResult{
		{Dimension: "moral_check", Score: 1.0},
		{Dimension: "tool_risk", Score: 2.0},
	}
	got := ComputeCompositeScore(results)
	want := 1.0*Weights["moral_check"] + 2.0*Weights["tool_risk"]
	if got != want {
		t.Errorf("ComputeCompositeScore = %f, want %f", got, want)
	}
}

func TestComputeCompositeScore_UnknownDimensionDefaultsToWeightOne(t *testing.T) {
	results := []CheckResult{{Dimension: "not_a_real_dimension", Score: 3.0}}
	if got := ComputeCompositeScore(results); got != 3.0 {
		t.Errorf("expected default weight 1, got composite %f", got)
	}
}

func TestDetectAnomaly_Amplification(t *testing.T) {
	tests := []struct {
		name    string
		results []CheckResult
		want    float64
	}{
		{"none elevated", []CheckResult{{Score: 1}, {Score: 1}}, 0},
		{"two elevated", []CheckResult{{Score: 2}, {Score: 2}, {Score: 0}}, 1.0},
		{"three elevated", []CheckResult{{Score: 2}, {Score: 3}, {Score: 2}}, 2.0},
		{"four elevated", []CheckResult{{Score: 2}, {Score: 2}, {Score: 2}, {Score: 2}}, 3.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectAnomaly(tt.results); got != tt.want {
				t.Errorf("DetectAnomaly() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestHasHardBlock(t *testing.T) {
	if HasHardBlock([]CheckResult{{Score: 1}}) {
		t.Error("expected no hard block")
	}
	if !HasHardBlock([]CheckResult{{HardBlock: true}}) {
		t.Error("expected hard block")
	}
}

func TestDecide_BoundaryValues(t *testing.T) {
	tests := []struct {
		score float64
		want  Decision
	}{
		{4.99, Allow},
		{5.00, Contain},
		{6.99, Contain},
		{7.00, Block},
	}
	for _, tt := range tests {
		if got := Decide(tt.score, false); got != tt.want {
			t.Errorf("Decide(%.2f, false) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestDecide_HardBlockWins(t *testing.T) {
	if got := Decide(0, true); got != Block {
		t.Errorf("Decide(0, true) = %s, want BLOCK", got)
	}
}

func TestCollectReasons_OnlyFromScoredResults(t *testing.T) {
	results := []CheckResult{
		{Score: 0, Reasons: []string{"should not appear"}},
		{Score: 1, Reasons: []string{"should appear"}},
		{HardBlock: true, Reasons: []string{"hard block reason"}},
	}
	reasons := CollectReasons(results)
	if len(reasons) != 2 {
		t.Fatalf("expected 2 reasons, got %d: %v", len(reasons), reasons)
	}
}

func TestCollectViolations_Deduplicates(t *testing.T) {
	results := []CheckResult{
		{Article: "Article II", Score: 1},
		{Article: "Article II", Score: 1},
		{Article: "Article VII", HardBlock: true},
	}
	violations := CollectViolations(results)
	if len(violations) != 2 {
		t.Fatalf("expected 2 unique violations, got %d: %v", len(violations), violations)
	}
}

func TestSuggestAlternatives_AllowHasNone(t *testing.T) {
	if alts := SuggestAlternatives(NewProposal(""), nil, Allow); alts != nil {
		t.Errorf("expected no alternatives for ALLOW, got %v", alts)
	}
}

func TestSuggestAlternatives_FallsBackWhenNothingMatches(t *testing.T) {
	alts := SuggestAlternatives(NewProposal(""), []CheckResult{{Dimension: "tool_risk", Score: 1}}, Contain)
	if len(alts) == 0 {
		t.Error("expected a fallback alternative suggestion")
	}
}

func TestSuggestAlternatives_IrreversibleReasonSuggestsDryRun(t *testing.T) {
	results := []CheckResult{{Dimension: "security_check", Score: 2, Reasons: []string{"irreversible action without safety indicators"}}}
	alts := SuggestAlternatives(NewProposal("delete the archive"), results, Contain)
	found := false
	for _, a := range alts {
		if strings.Contains(a, "--dry-run") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a dry-run suggestion, got %v", alts)
	}
}

func TestSuggestAlternatives_ScopeReasonSuggestsIntentLockUpdate(t *testing.T) {
	results := []CheckResult{{Dimension: "scope_check", Score: 2, Reasons: []string{`target path "/etc/passwd" outside authorized scope`}}}
	alts := SuggestAlternatives(NewProposal("read a file"), results, Contain)
	found := false
	for _, a := range alts {
		if strings.Contains(a, "intent lock") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an intent-lock suggestion, got %v", alts)
	}
}

func TestSuggestAlternatives_DeleteTextSuggestsStaging(t *testing.T) {
	results := []CheckResult{{Dimension: "consequence_analysis", Score: 2, Reasons: []string{"high-impact action without consequence analysis"}}}
	alts := SuggestAlternatives(NewProposal("delete the production table"), results, Contain)
	found := false
	for _, a := range alts {
		if strings.Contains(a, "staging/trash") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a staging/trash suggestion, got %v", alts)
	}
}
