package cord

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config bundles the engine's environment-derived settings. Per the design
// note that a Config should be assembled once per process rather than read
// piecemeal from the environment inside the pipeline, NewConfigFromEnv is
// the single call site that touches os.Getenv.
type Config struct {
	RepoRoot  string
	LockPath  string
	LogPath   string
	Redaction RedactionLevel
	Now       func() time.Time
}

// NewConfigFromEnv builds a Config from CORD_LOCK_PATH, CORD_LOG_PATH, and
// CORD_LOG_REDACTION, defaulting to DefaultLockPath, "cord-audit.log", and
// "pii" respectively.
func NewConfigFromEnv() Config {
	cfg := Config{
		RepoRoot:  envOr("CORD_REPO_ROOT", "."),
		LockPath:  envOr("CORD_LOCK_PATH", DefaultLockPath),
		LogPath:   envOr("CORD_LOG_PATH", "cord-audit.log"),
		Redaction: RedactionLevel(envOr("CORD_LOG_REDACTION", string(RedactionPII))),
		Now:       time.Now,
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// roundScore rounds a composite score to 2 decimal places for display and
// audit-log storage. Decide() always runs on the unrounded value.
func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "to": true, "and": true, "or": true,
	"in": true, "on": true, "at": true, "for": true, "of": true, "is": true,
	"it": true, "do": true,
}

// synonymGroups lets the intent-matcher treat related verbs/nouns as
// aligned even when the exact word differs between session_intent and the
// proposal text.
var synonymGroups = [][]string{
	{"update", "edit", "modify", "change", "tweak", "revise", "fix", "patch", "write"},
	{"publish", "push", "deploy", "release", "ship", "upload"},
	{"site", "website", "page", "frontend", "webpage"},
	{"api", "endpoint", "service", "backend"},
	{"build", "compile", "bundle", "package"},
	{"delete", "remove", "drop", "purge", "clean", "wipe", "rm"},
}

var synonymIndex = buildSynonymIndex()

func buildSynonymIndex() map[string]map[string]bool {
	idx := make(map[string]map[string]bool)
	for _, group := range synonymGroups {
		set := make(map[string]bool, len(group))
		for _, w := range group {
			set[w] = true
		}
		for _, w := range group {
			idx[w] = set
		}
	}
	return idx
}

var wordPattern = regexp.MustCompile(`[a-z0-9]+`)

func tokenize(text string) map[string]bool {
	tokens := map[string]bool{}
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if stopwords[w] {
			continue
		}
		tokens[w] = true
	}
	return tokens
}

// expandTokens adds every synonym-group member for any token already
// present, so "edit the homepage" aligns with a session_intent of "update
// the site" without either text using the other's exact words.
func expandTokens(tokens map[string]bool) map[string]bool {
	out := make(map[string]bool, len(tokens))
	for t := range tokens {
		out[t] = true
		if set, ok := synonymIndex[t]; ok {
			for syn := range set {
				out[syn] = true
			}
		}
	}
	return out
}

func intentsAlign(sessionIntent, text string) bool {
	if sessionIntent == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(sessionIntent), strings.TrimSpace(text)) {
		return true
	}
	sessionTokens := expandTokens(tokenize(sessionIntent))
	textTokens := tokenize(text)
	for t := range textTokens {
		if sessionTokens[t] {
			return true
		}
	}
	return false
}

// ClassifyActionType infers an ActionType from proposal text when the
// caller didn't already supply a concrete one, checking ActionTypeHints in
// a fixed order so classification is deterministic.
func ClassifyActionType(p Proposal) ActionType {
	if p.ActionType != "" && p.ActionType != ActionUnknown {
		return p.ActionType
	}
	text := p.Text + " " + p.RawInput
	for _, at := range actionTypeOrder {
		if ActionTypeHints[at].MatchString(text) {
			return at
		}
	}
	return ActionUnknown
}

func authenticate(lock *IntentLock) CheckResult {
	r := CheckResult{Dimension: "authentication"}
	if lock == nil {
		r.Score = 2.0
		r.Reasons = append(r.Reasons, "no intent lock present for this session")
	}
	return r
}

// scopeCheck evaluates target_path / network_target / (for command and
// system actions) grants[0]-as-command against the lock's Scope,
// accumulating score for each disallowed dimension and hard-blocking once
// the total reaches 4.0.
func scopeCheck(p Proposal, lock *IntentLock) CheckResult {
	r := CheckResult{Dimension: "scope_check"}
	if lock == nil {
		return r
	}
	scope := lock.Scope

	if p.TargetPath != "" && !scope.IsPathAllowed(p.TargetPath) {
		r.Score += 2.0
		r.Reasons = append(r.Reasons, fmt.Sprintf("target path %q outside authorized scope", p.TargetPath))
	}
	if p.NetworkTarget != "" && !scope.IsNetworkAllowed(p.NetworkTarget) {
		r.Score += 2.0
		r.Reasons = append(r.Reasons, fmt.Sprintf("network target %q outside authorized scope", p.NetworkTarget))
	}
	if p.ActionType == ActionCommand || p.ActionType == ActionSystem {
		cmd := ""
		if len(p.Grants) > 0 {
			cmd = p.Grants[0]
		}
		if cmd != "" && !scope.IsCommandAllowed(cmd) {
			r.Score += 2.0
			r.Reasons = append(r.Reasons, fmt.Sprintf("command %q outside authorized scope", cmd))
		}
	}
	if r.Score >= 4.0 {
		r.HardBlock = true
	}
	return r
}

func intentMatchCheck(p Proposal) CheckResult {
	r := CheckResult{Dimension: "intent_drift"}
	if intentsAlign(p.SessionIntent, p.Text) {
		return r
	}
	if semanticallyAligned(p.SessionIntent, p.Text) {
		return r
	}
	r.Score = 1.5
	r.Reasons = append(r.Reasons, "proposal text does not align with declared session intent")
	return r
}

func rateLimitCheck(cfg Config, now time.Time) CheckResult {
	r := CheckResult{Dimension: "rate_anomaly"}
	entries, err := ReadLog(cfg.LogPath)
	if err != nil || len(entries) == 0 {
		return r
	}
	exceeded, _, rate := CheckRateLimit(entries, now, 60, 40)
	score, hardBlock := RateLimitScore(exceeded, rate)
	r.Score = score
	r.HardBlock = hardBlock
	if score > 0 {
		r.Reasons = append(r.Reasons, fmt.Sprintf("elevated submission rate: %.1f/min", rate))
	}
	return r
}

// Evaluate runs the full pipeline for one proposal: normalize, classify,
// authenticate, scope-check, intent-match, rate-limit, run every dimension
// check, score, decide, and append to the audit log. It never returns an
// error for a policy rejection — BLOCK is a normal Verdict, not a Go error;
// the only failures surfaced are I/O failures writing the audit log.
func Evaluate(p Proposal, cfg Config) (Verdict, error) {
	p.normalizeFields()
	p.Text, p.RawInput = NormalizeProposalText(p.Text, p.RawInput)
	p.ActionType = ClassifyActionType(p)

	lock := LoadIntentLock(cfg.LockPath)
	now := time.Now()
	if cfg.Now != nil {
		now = cfg.Now()
	}

	results := []CheckResult{
		authenticate(lock),
		scopeCheck(p, lock),
		intentMatchCheck(p),
		rateLimitCheck(cfg, now),
	}
	results = append(results, RunAllChecks(p)...)

	score := ComputeCompositeScore(results) + DetectAnomaly(results)
	hardBlock := HasHardBlock(results)
	decision := Decide(score, hardBlock) // decide on the raw, unrounded score

	roundedScore := roundScore(score)
	riskProfile := BuildRiskProfile(results)
	reasons := CollectReasons(results)
	violations := CollectViolations(results)

	verdict := Verdict{
		Decision:          decision,
		Score:             roundedScore,
		RiskProfile:       riskProfile,
		Reasons:           reasons,
		Alternatives:      SuggestAlternatives(p, results, decision),
		ArticleViolations: violations,
	}

	payload := map[string]any{
		"text":           p.Text,
		"action_type":    string(p.ActionType),
		"tool_name":      p.ToolName,
		"target_path":    p.TargetPath,
		"network_target": p.NetworkTarget,
		"session_intent": p.SessionIntent,
		"correlation_id": uuid.NewString(),
		"risk_profile":   riskProfile,
		"reasons":        reasons,
		"violations":     violations,
	}
	entry, err := AppendLog(cfg.LogPath, decision, roundedScore, payload, cfg.Redaction, now)
	if err != nil {
		return verdict, err
	}
	verdict.LogID = entry.EntryHash
	return verdict, nil
}
