// Package cord implements the CORD policy decision engine: a guard rail
// that sits between an autonomous agent and the external world, evaluating
// proposed actions against a fixed catalogue of risk dimensions before they
// execute.
package cord

// Decision is a CORD verdict outcome.
type Decision string

const (
	// Allow indicates the proposal may proceed without restriction.
	Allow Decision = "ALLOW"
	// Challenge indicates the proposal requires principal confirmation.
	// Reachable only under reconfigured thresholds; see Decide().
	Challenge Decision = "CHALLENGE"
	// Contain indicates the proposal may proceed but is flagged for review.
	Contain Decision = "CONTAIN"
	// Block indicates the proposal must not proceed.
	Block Decision = "BLOCK"
)

// String returns the string representation of a Decision.
func (d Decision) String() string {
	return string(d)
}

// IsBlocked returns true if the decision is BLOCK.
func (d Decision) IsBlocked() bool {
	return d == Block
}

// ActionType categorizes a proposed action.
type ActionType string

const (
	ActionCommand       ActionType = "command"
	ActionFileOp        ActionType = "file_op"
	ActionNetwork       ActionType = "network"
	ActionFinancial     ActionType = "financial"
	ActionCommunication ActionType = "communication"
	ActionSystem        ActionType = "system"
	ActionQuery         ActionType = "query"
	ActionUnknown       ActionType = "unknown"
)

// SourceTag is the provenance label on a Proposal's raw input.
type SourceTag string

const (
	SourceAgent      SourceTag = "agent"
	SourceExternal   SourceTag = "external"
	SourceUser       SourceTag = "user"
	SourceToolResult SourceTag = "tool_result"
)

// Proposal is the unit of evaluation submitted to the engine.
type Proposal struct {
	Text          string            `json:"text"`
	ActionType    ActionType        `json:"action_type"`
	TargetPath    string            `json:"target_path,omitempty"`
	NetworkTarget string            `json:"network_target,omitempty"`
	Grants        []string          `json:"grants,omitempty"`
	SessionIntent string            `json:"session_intent,omitempty"`
	Context       map[string]any    `json:"context,omitempty"`
	ToolName      string            `json:"tool_name,omitempty"`
	Source        SourceTag         `json:"source,omitempty"`
	RawInput      string            `json:"raw_input,omitempty"`
}

// NewProposal returns a Proposal with every field coerced to its safe
// default, mirroring the zero-value contract in spec: a missing value
// always produces an empty string or empty collection, never nil panics
// downstream.
func NewProposal(text string) Proposal {
	return Proposal{
		Text:       text,
		ActionType: ActionUnknown,
		Grants:     []string{},
		Context:    map[string]any{},
		Source:     SourceAgent,
	}
}

// normalizeFields coerces nil slices/maps and empty action types/sources
// to their defaults. Called once, at the top of the pipeline, so every
// downstream check can assume non-nil collections.
func (p *Proposal) normalizeFields() {
	if p.Grants == nil {
		p.Grants = []string{}
	}
	if p.Context == nil {
		p.Context = map[string]any{}
	}
	if p.ActionType == "" {
		p.ActionType = ActionUnknown
	}
	if p.Source == "" {
		p.Source = SourceAgent
	}
}

// CheckResult is the output of one dimension check.
type CheckResult struct {
	Dimension  string   `json:"dimension"`
	Article    string   `json:"article"`
	Score      float64  `json:"score"`
	Reasons    []string `json:"reasons,omitempty"`
	HardBlock  bool     `json:"hard_block"`
}

// Clean reports whether the result carries no score and no hard block.
func (r CheckResult) Clean() bool {
	return r.Score == 0 && !r.HardBlock
}

// Verdict is the engine's final output for one evaluation.
type Verdict struct {
	Decision          Decision           `json:"decision"`
	Score             float64            `json:"score"`
	RiskProfile       map[string]float64 `json:"risk_profile,omitempty"`
	Reasons           []string           `json:"reasons,omitempty"`
	Alternatives      []string           `json:"alternatives,omitempty"`
	ArticleViolations []string           `json:"article_violations,omitempty"`
	LogID             string             `json:"log_id,omitempty"`
}
