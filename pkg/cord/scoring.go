package cord

import "strings"

// ComputeCompositeScore sums each result's score times its dimension weight.
// A dimension absent from Weights defaults to weight 1.
func ComputeCompositeScore(results []CheckResult) float64 {
	weights := EffectiveWeights()
	var total float64
	for _, r := range results {
		w, ok := weights[r.Dimension]
		if !ok {
			w = 1
		}
		total += r.Score * w
	}
	return total
}

// DetectAnomaly amplifies the composite score when multiple independent
// dimensions fire at once — a single elevated dimension is routine, several
// firing together is a correlated signal the weighted sum alone understates.
func DetectAnomaly(results []CheckResult) float64 {
	high := 0
	for _, r := range results {
		if r.Score >= 2 {
			high++
		}
	}
	switch {
	case high >= 4:
		return 3.0
	case high == 3:
		return 2.0
	case high == 2:
		return 1.0
	default:
		return 0
	}
}

// HasHardBlock reports whether any result demands an unconditional BLOCK.
func HasHardBlock(results []CheckResult) bool {
	for _, r := range results {
		if r.HardBlock {
			return true
		}
	}
	return false
}

// Decide maps a composite score and hard-block signal to a Decision.
// Hard block always wins. Otherwise the score is checked against block,
// then challenge, then contain, in that order — since challenge and block
// share the same default threshold, CHALLENGE is only reachable when the
// two thresholds are reconfigured apart.
func Decide(score float64, hardBlock bool) Decision {
	if hardBlock {
		return Block
	}
	thresholds := EffectiveThresholds()
	if score >= thresholds["block"] {
		return Block
	}
	if score >= thresholds["challenge"] {
		return Challenge
	}
	if score >= thresholds["contain"] {
		return Contain
	}
	return Allow
}

// CollectReasons gathers every reason from results that scored or hard
// blocked, preserving catalogue order.
func CollectReasons(results []CheckResult) []string {
	var reasons []string
	for _, r := range results {
		if r.Score > 0 || r.HardBlock {
			reasons = append(reasons, r.Reasons...)
		}
	}
	return reasons
}

// CollectViolations gathers the unique set of article labels from results
// that scored or hard blocked, in first-seen order.
func CollectViolations(results []CheckResult) []string {
	seen := map[string]bool{}
	var violations []string
	for _, r := range results {
		if r.Article == "" || !(r.Score > 0 || r.HardBlock) {
			continue
		}
		if !seen[r.Article] {
			seen[r.Article] = true
			violations = append(violations, r.Article)
		}
	}
	return violations
}

// BuildRiskProfile maps each non-clean dimension to its raw score, for the
// verdict's diagnostic risk_profile field.
func BuildRiskProfile(results []CheckResult) map[string]float64 {
	profile := map[string]float64{}
	for _, r := range results {
		if !r.Clean() {
			profile[r.Dimension] = r.Score
		}
	}
	return profile
}

// SuggestAlternatives proposes lower-risk rewordings of a blocked or
// contained proposal, scanning collected reasons and the proposal text
// itself for a handful of substrings rather than keying off which
// dimension fired — a reason can mention "irreversible" regardless of
// which check raised it.
func SuggestAlternatives(p Proposal, results []CheckResult, decision Decision) []string {
	if decision == Allow {
		return nil
	}
	reasons := CollectReasons(results)

	var alts []string
	for _, r := range reasons {
		if strings.Contains(r, "irreversi") {
			alts = append(alts, "Run with --dry-run or --preview first to assess impact")
			break
		}
	}
	for _, r := range reasons {
		if strings.Contains(r, "exfil") {
			alts = append(alts, "Review data before sending — minimize what leaves the system")
			break
		}
	}
	for _, r := range reasons {
		if strings.Contains(strings.ToLower(r), "financial") {
			alts = append(alts, "Perform a structured ROI analysis before committing funds")
			break
		}
	}
	for _, r := range reasons {
		if strings.Contains(strings.ToLower(r), "scope") {
			alts = append(alts, "Update intent lock to expand scope if this action is intentional")
			break
		}
	}
	lowerProposal := strings.ToLower(p.Text)
	for _, verb := range []string{"rm -rf", "delete", "wipe", "purge"} {
		if strings.Contains(lowerProposal, verb) {
			alts = append(alts, "Use a staging/trash approach instead of permanent deletion")
			break
		}
	}
	if len(alts) == 0 {
		alts = append(alts, "No specific alternative needed — action appears within bounds")
	}
	return alts
}
