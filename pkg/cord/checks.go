package cord

import (
	"fmt"
	"strings"
)

// Check is a callable dimension evaluator: given a normalized proposal it
// returns one CheckResult. The catalogue order in AllChecks is the order
// checks run in and the order their reasons surface in, so it is fixed.
type Check func(p Proposal) CheckResult

// AllChecks is the full dimension catalogue, run in this order by
// RunAllChecks and by Evaluate.
var AllChecks = []Check{
	checkPrimeDirective,
	checkMoralConstraints,
	checkTruthIntegrity,
	checkConsequenceAnalysis,
	checkSustainability,
	checkFinancialRisk,
	checkSecurity,
	checkDrift,
	checkEvaluationFramework,
	checkTemperament,
	checkIdentity,
	checkPromptInjection,
	checkPIILeakage,
	checkToolRisk,
}

// RunAllChecks evaluates every dimension check against p in catalogue order.
func RunAllChecks(p Proposal) []CheckResult {
	results := make([]CheckResult, 0, len(AllChecks))
	for _, check := range AllChecks {
		results = append(results, check(p))
	}
	return results
}

func lowerText(p Proposal) string {
	return strings.ToLower(p.Text + " " + p.RawInput)
}

func hasGrant(grants []string, want string) bool {
	for _, g := range grants {
		if g == want {
			return true
		}
	}
	return false
}

// grantContainsAny reports whether any grant string contains (substring,
// case-insensitive) one of the given markers — used for privilege-escalation
// detection, where grants look like "admin:write" or "sudo".
func grantContainsAny(grants []string, markers ...string) bool {
	for _, g := range grants {
		lg := strings.ToLower(g)
		for _, m := range markers {
			if strings.Contains(lg, m) {
				return true
			}
		}
	}
	return false
}

// contextBool reads a boolean flag off p.Context, defaulting to false for
// any missing or non-bool value.
func contextBool(p Proposal, key string) bool {
	v, ok := p.Context[key].(bool)
	return ok && v
}

// contextFloat reads a numeric flag off p.Context, accepting any of Go's
// common JSON-decoded numeric shapes and defaulting to 0 otherwise.
func contextFloat(p Proposal, key string) float64 {
	switch v := p.Context[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// allowlistHintPresent reports whether text contains any AllowlistKeywords
// match on a word boundary — plain substring containment would let
// "checklist" or "enlist" falsely suppress irreversibility scoring.
func allowlistHintPresent(text string) bool {
	return AllowlistKeywordsPattern.MatchString(text)
}

// checkPrimeDirective flags proposals that bypass review on their way to a
// decision — reviewless action is a standing long_term_alignment risk,
// compounding with the short-term-shortcut phrasings it's often paired with.
func checkPrimeDirective(p Proposal) CheckResult {
	r := CheckResult{Dimension: "long_term_alignment", Article: "Article I"}
	text := lowerText(p)
	for _, ph := range shortTermSignals {
		if strings.Contains(text, ph) {
			r.Score += 1.0
			r.Reasons = append(r.Reasons, fmt.Sprintf("short-term signal: %q", ph))
		}
	}
	if contextBool(p, "bypasses_review") {
		r.Score += 1.5
		r.Reasons = append(r.Reasons, "proposal bypasses review")
	}
	if r.Score > 3.0 {
		r.Score = 3.0
	}
	return r
}

var shortTermSignals = []string{
	"quick fix", "hack around", "skip test", "ignore warning",
	"temporary workaround", "just ship it", "no time to",
	"deal with later", "tech debt", "shortcut",
}

// checkMoralConstraints is a hard-block dimension: fraud, coercion,
// impersonation, and behavioral extortion are never permitted regardless
// of composite score.
func checkMoralConstraints(p Proposal) CheckResult {
	r := CheckResult{Dimension: "moral_check", Article: "Article II"}
	text := lowerText(p)
	if MoralBlockPattern.MatchString(text) {
		r.Score = 5.0
		r.HardBlock = true
		r.Reasons = append(r.Reasons, "matched moral-constraint violation pattern")
	}
	return r
}

// checkTruthIntegrity penalizes language that asks the agent to misrepresent
// its own output, capability, or provenance, plus unverified data context.
func checkTruthIntegrity(p Proposal) CheckResult {
	r := CheckResult{Dimension: "truth_check", Article: "Article III"}
	text := lowerText(p)
	for _, ph := range fabricationSignals {
		if strings.Contains(text, ph) {
			r.Score += 2.0
			r.Reasons = append(r.Reasons, fmt.Sprintf("fabrication signal: %q", ph))
		}
	}
	if contextBool(p, "unverified_data") {
		r.Score += 1.0
		r.Reasons = append(r.Reasons, "proposal relies on unverified data")
	}
	if r.Score > 3.0 {
		r.Score = 3.0
	}
	return r
}

var fabricationSignals = []string{
	"make up", "invent data", "fake results", "fabricate",
	"hallucinate", "pretend", "assume without",
}

// checkConsequenceAnalysis scores high-impact actions that skip a declared
// consequence analysis or rollback plan.
func checkConsequenceAnalysis(p Proposal) CheckResult {
	r := CheckResult{Dimension: "consequence_analysis", Article: "Article IV"}
	text := lowerText(p)
	isHighImpact := HighImpactVerbsPattern.MatchString(text)
	hasAnalysis := contextBool(p, "consequence_analysis_done")
	if isHighImpact && !hasAnalysis {
		r.Score += 2.0
		r.Reasons = append(r.Reasons, "high-impact action without consequence analysis")
	}
	if isHighImpact && contextBool(p, "no_rollback_plan") {
		r.Score += 1.0
		r.Reasons = append(r.Reasons, "high-impact action without rollback plan")
	}
	if r.Score > 3.0 {
		r.Score = 3.0
	}
	return r
}

// checkSustainability flags proposals that exceed declared capacity or carry
// burnout risk for the humans operating the system.
func checkSustainability(p Proposal) CheckResult {
	r := CheckResult{Dimension: "sustainability_check", Article: "Article V"}
	if contextBool(p, "exceeds_capacity") {
		r.Score += 2.0
		r.Reasons = append(r.Reasons, "proposal exceeds declared capacity")
	}
	if contextBool(p, "burnout_risk") {
		r.Score += 1.5
		r.Reasons = append(r.Reasons, "proposal carries burnout risk")
	}
	if r.Score > 3.0 {
		r.Score = 3.0
	}
	return r
}

// checkFinancialRisk flags speculative financial language and unevaluated,
// impulsive spending above zero.
func checkFinancialRisk(p Proposal) CheckResult {
	r := CheckResult{Dimension: "financial_risk", Article: "Article VI"}
	text := lowerText(p)
	if FinancialRiskPattern.MatchString(text) {
		r.Score += 2.0
		r.Reasons = append(r.Reasons, "speculative or high-exposure financial language")
	}
	amount := contextFloat(p, "financial_amount")
	if amount > 0 {
		if !contextBool(p, "roi_evaluated") {
			r.Score += 1.5
			r.Reasons = append(r.Reasons, "financial commitment without ROI evaluation")
		}
		if contextBool(p, "impulsive") {
			r.Score += 2.0
			r.Reasons = append(r.Reasons, "impulsive financial decision")
		}
	}
	if r.Score > 4.0 {
		r.Score = 4.0
	}
	return r
}

// checkSecurity is a hard-block dimension at score >= 4: injection, data
// exfiltration, secrets-access, privilege escalation, and irreversible
// actions taken without any safety indicator.
func checkSecurity(p Proposal) CheckResult {
	r := CheckResult{Dimension: "security_check", Article: "Article VII"}
	text := lowerText(p)
	var hits []string
	for name, pat := range SecurityPatterns {
		if pat.MatchString(text) {
			hits = append(hits, name)
		}
	}
	if len(hits) > 0 {
		switch {
		case len(hits) >= 3:
			r.Score = 5.0
		case len(hits) == 2:
			r.Score = 4.0
		default:
			r.Score = 3.0
		}
		r.Reasons = append(r.Reasons, fmt.Sprintf("security pattern(s) matched: %s", strings.Join(hits, ", ")))
	}

	dangerous := HighImpactVerbsPattern.MatchString(text)
	elevated := grantContainsAny(p.Grants, "admin", "sudo", "root", "write:system")
	switch {
	case dangerous && elevated:
		r.Score += 2.0
		r.Reasons = append(r.Reasons, "privilege escalation risk")
	case dangerous:
		r.Score += 1.0
		r.Reasons = append(r.Reasons, "high-impact verb detected")
	}

	if dangerous && !allowlistHintPresent(text) {
		r.Score += 2.0
		r.Reasons = append(r.Reasons, "irreversible action without safety indicators")
	}

	if r.Score > 5.0 {
		r.Score = 5.0
	}
	r.HardBlock = r.Score >= 4.0
	return r
}

// checkDrift is a hard-block dimension: language asking the agent to
// abandon, bypass, or permanently alter its own safety constraints ends the
// check on the first match rather than accumulating across signals.
func checkDrift(p Proposal) CheckResult {
	r := CheckResult{Dimension: "drift_check", Article: "Article VIII"}
	text := lowerText(p)
	for _, ph := range driftSignals {
		if strings.Contains(text, ph) {
			r.Score = 3.0
			r.HardBlock = true
			r.Reasons = append(r.Reasons, fmt.Sprintf("drift signal: %q", ph))
			return r
		}
	}
	return r
}

var driftSignals = []string{
	"override constitution", "override protocols", "ignore rules",
	"bypass policy", "disable safety", "turn off checks",
	"skip validation", "modify core values", "change the rules",
}

// checkEvaluationFramework flags significant actions — by verb, declared
// impact, or financial size — taken without a declared risk assessment,
// alternatives analysis, or stated consequences. An ROI evaluation counts
// as satisfying all three.
func checkEvaluationFramework(p Proposal) CheckResult {
	r := CheckResult{Dimension: "evaluation_framework", Article: "Article IX"}
	text := lowerText(p)
	financialSignificant := contextFloat(p, "financial_amount") >= 100
	isSignificant := HighImpactVerbsPattern.MatchString(text) ||
		contextBool(p, "significant_impact") || financialSignificant
	if !isSignificant {
		return r
	}
	roiDone := contextBool(p, "roi_evaluated")
	riskAssessmentDone := contextBool(p, "risk_assessment_done") || roiDone
	alternativeConsidered := contextBool(p, "alternative_considered") || roiDone
	consequencesStated := contextBool(p, "consequences_stated") || roiDone

	if !riskAssessmentDone {
		r.Score += 1.0
		r.Reasons = append(r.Reasons, "significant action without risk assessment")
	}
	if !alternativeConsidered {
		r.Score += 0.5
		r.Reasons = append(r.Reasons, "significant action without alternatives considered")
	}
	if !consequencesStated {
		r.Score += 0.5
		r.Reasons = append(r.Reasons, "significant action without stated consequences")
	}
	if r.Score > 3.0 {
		r.Score = 3.0
	}
	return r
}

// checkTemperament flags emotional escalation directed at getting the agent
// to act under pressure rather than calm deliberation.
func checkTemperament(p Proposal) CheckResult {
	r := CheckResult{Dimension: "temperament_check", Article: "Article X"}
	text := lowerText(p)
	for _, signal := range escalationSignals {
		if strings.Contains(text, signal) {
			r.Score += 1.0
			r.Reasons = append(r.Reasons, fmt.Sprintf("emotional escalation detected: %q", signal))
		}
	}
	if r.Score > 2.0 {
		r.Score = 2.0
	}
	return r
}

var escalationSignals = []string{
	"threaten", "ultimatum", "demand immediate", "or else",
	"final warning", "last chance",
}

// checkIdentity flags requests to impersonate a human or misrepresent the
// agent's own nature.
func checkIdentity(p Proposal) CheckResult {
	r := CheckResult{Dimension: "identity_check", Article: "Article XI"}
	text := lowerText(p)
	if m := IdentityViolationPattern.FindString(text); m != "" {
		r.Score = 3.0
		r.Reasons = append(r.Reasons, fmt.Sprintf("identity violation phrasing matched: %q", m))
	}
	return r
}

// checkPromptInjection is a hard-block dimension at score >= 4: hostile
// override imperatives hidden in untrusted text (raw_input especially). For
// externally-sourced proposals that clear the hard patterns, a softer
// signal looks for a pile-up of imperative override verbs.
func checkPromptInjection(p Proposal) CheckResult {
	r := CheckResult{Dimension: "prompt_injection", Article: "Article XII"}
	text := lowerText(p)
	if PromptInjectionPattern.MatchString(text) {
		matches := PromptInjectionPattern.FindAllString(text, -1)
		switch {
		case len(matches) >= 2:
			r.Score = 5.0
		default:
			r.Score = 4.0
		}
		r.HardBlock = true
		r.Reasons = append(r.Reasons, "prompt injection / override imperative matched")
		return r
	}

	if p.Source == SourceExternal {
		hits := 0
		for _, verb := range imperativeOverrideVerbs {
			if strings.Contains(text, verb) {
				hits++
			}
		}
		if hits >= 2 {
			r.Score = 1.5
			r.Reasons = append(r.Reasons, "multiple imperative override verbs in externally-sourced text")
		}
	}
	return r
}

var imperativeOverrideVerbs = []string{
	"ignore", "forget", "disregard", "override", "instead", "now do",
}

// checkPIILeakage scores proposals that expose personally-identifiable
// information, either by literal value (ssn, card, email, phone, ip) or by
// field-name reference, scaled up when the action ships the data outbound.
func checkPIILeakage(p Proposal) CheckResult {
	r := CheckResult{Dimension: "pii_leakage", Article: "Article XIII"}
	text := lowerText(p)
	var found []string
	for _, name := range piiPatternOrder {
		if PIIPatterns[name].MatchString(text) {
			weight := 2.0
			if name == "email" {
				weight = 1.0
			}
			r.Score += weight
			found = append(found, name)
		}
	}
	if PIIFieldNames.MatchString(text) {
		r.Score += 1.5
		found = append(found, "pii_field_names")
	}
	if r.Score > 5.0 {
		r.Score = 5.0
	}
	if r.Score == 0 {
		return r
	}

	outbound := p.ActionType == ActionNetwork || p.ActionType == ActionCommunication || p.ActionType == ActionFileOp
	if outbound {
		r.Score *= 1.5
		if r.Score > 5.0 {
			r.Score = 5.0
		}
	}

	var reasonList []string
	for _, name := range found {
		if name != "pii_field_names" {
			reasonList = append(reasonList, name)
		}
	}
	if len(reasonList) > 0 {
		r.Reasons = append(r.Reasons, fmt.Sprintf("PII surface matched: %s", strings.Join(reasonList, ", ")))
	}
	if outbound {
		r.Reasons = append(r.Reasons, "PII exposed via outbound action")
	}
	return r
}

// checkToolRisk assigns the baseline risk score for the proposal's declared
// tool, from ToolRiskTiers, plus a compound addend when an exec tool is run
// with a raw shell grant.
func checkToolRisk(p Proposal) CheckResult {
	r := CheckResult{Dimension: "tool_risk", Article: "Article XIV"}
	if p.ToolName == "" {
		return r
	}
	key := strings.ToLower(p.ToolName)
	tierScore, ok := ToolRiskTiers[key]
	if !ok {
		tierScore = 0.5
	}
	if tierScore > 0 {
		r.Score = tierScore
		r.Reasons = append(r.Reasons, fmt.Sprintf("tool risk tier for %q: %.1f", key, tierScore))
	}
	if key == "exec" && hasGrant(p.Grants, "shell") {
		r.Score += 1.0
		r.Reasons = append(r.Reasons, "exec tool granted raw shell access")
	}
	if r.Score > 4.0 {
		r.Score = 4.0
	}
	return r
}
