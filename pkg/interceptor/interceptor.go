// Package interceptor wraps tool-call sites with CORD evaluation: build a
// Proposal from the call's arguments, evaluate it, and either let the call
// through, raise a challenge for confirmation, or block it outright.
package interceptor

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/openclaw-ai/cord/pkg/cord"
)

// ToolFunc is the shape of a guardable tool call: positional args plus a
// keyword bag, returning a result or an error.
type ToolFunc func(args []any, kwargs map[string]any) (any, error)

// ToolBlocked is raised when a guarded call is evaluated to BLOCK.
type ToolBlocked struct {
	Tool    string
	Verdict cord.Verdict
}

func (e *ToolBlocked) Error() string {
	return fmt.Sprintf("cord: tool %q blocked (score %.2f): %s", e.Tool, e.Verdict.Score, strings.Join(e.Verdict.Reasons, "; "))
}

// ToolChallenged is raised when a guarded call is evaluated to CHALLENGE.
type ToolChallenged struct {
	Tool    string
	Verdict cord.Verdict
}

func (e *ToolChallenged) Error() string {
	return fmt.Sprintf("cord: tool %q requires confirmation (score %.2f): %s", e.Tool, e.Verdict.Score, strings.Join(e.Verdict.Reasons, "; "))
}

// ChallengeHandler decides, for one challenged call, whether the principal
// approved it. Returning false stops the call, which is not run, with a
// ToolChallenged error.
type ChallengeHandler func(tool string, verdict cord.Verdict) bool

// Options configures a Guard/GuardRegistry/Enforcer.
type Options struct {
	Config           cord.Config
	SessionIntent    string
	ChallengeHandler ChallengeHandler
}

var urlScheme = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*://`)

func looksLikePath(s string) bool {
	if s == "" || urlScheme.MatchString(s) {
		return false
	}
	return strings.HasPrefix(s, "/") || strings.HasPrefix(s, "~/") ||
		strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../")
}

var toolActionType = map[string]cord.ActionType{
	"exec": cord.ActionCommand, "shell": cord.ActionCommand, "command": cord.ActionCommand, "bash": cord.ActionCommand, "subprocess": cord.ActionCommand,
	"write": cord.ActionFileOp, "edit": cord.ActionFileOp, "create": cord.ActionFileOp, "delete": cord.ActionFileOp, "move": cord.ActionFileOp, "copy": cord.ActionFileOp,
	"network": cord.ActionNetwork, "browser": cord.ActionNetwork, "fetch": cord.ActionNetwork, "request": cord.ActionNetwork, "http": cord.ActionNetwork,
	"read": cord.ActionQuery, "query": cord.ActionQuery, "search": cord.ActionQuery, "list": cord.ActionQuery, "get": cord.ActionQuery,
	"message": cord.ActionCommunication, "send": cord.ActionCommunication, "email": cord.ActionCommunication, "post": cord.ActionCommunication, "publish": cord.ActionCommunication,
}

func stringKwarg(kwargs map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := kwargs[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

func summarizeArgs(args []any, kwargs map[string]any) string {
	s := fmt.Sprintf("%v %v", args, kwargs)
	if len(s) > 80 {
		return s[:80]
	}
	return s
}

// BuildProposal constructs the Proposal for one tool call, applying the
// family-specific extraction rule for toolName (falling back to a generic
// raw_input capture when the tool isn't recognized).
func BuildProposal(toolName string, args []any, kwargs map[string]any, sessionIntent string) cord.Proposal {
	p := cord.NewProposal(summarizeArgs(args, kwargs))
	p.ToolName = toolName
	p.SessionIntent = sessionIntent
	p.Source = cord.SourceAgent

	lower := strings.ToLower(toolName)
	at, known := toolActionType[lower]
	if known {
		p.ActionType = at
	}

	switch {
	case known && at == cord.ActionCommand:
		p.Grants = append(p.Grants, "shell")
	case known && at == cord.ActionFileOp:
		if path := stringKwarg(kwargs, "path", "target_path", "file", "filename"); looksLikePath(path) {
			p.TargetPath = path
		}
		p.RawInput = stringKwarg(kwargs, "content", "data", "body", "text")
	case known && at == cord.ActionNetwork:
		candidate := stringKwarg(kwargs, "url", "host", "endpoint", "target")
		if u, err := url.Parse(candidate); err == nil && u.Host != "" {
			p.NetworkTarget = u.Host
		} else {
			p.NetworkTarget = candidate
		}
	case known && at == cord.ActionQuery:
		if path := stringKwarg(kwargs, "path", "target_path"); looksLikePath(path) {
			p.TargetPath = path
		}
	case known && at == cord.ActionCommunication:
		p.RawInput = stringKwarg(kwargs, "body", "content", "message", "text")
	default:
		p.RawInput = stringKwarg(kwargs, "raw_input", "input", "body", "content", "data", "payload")
	}

	return p
}

// Guard wraps fn so every call is evaluated by CORD before it runs.
func Guard(toolName string, fn ToolFunc, opts Options) ToolFunc {
	return func(args []any, kwargs map[string]any) (any, error) {
		p := BuildProposal(toolName, args, kwargs, opts.SessionIntent)
		verdict, err := cord.Evaluate(p, opts.Config)
		if err != nil {
			return nil, err
		}
		switch verdict.Decision {
		case cord.Block:
			return nil, &ToolBlocked{Tool: toolName, Verdict: verdict}
		case cord.Challenge:
			if opts.ChallengeHandler == nil || !opts.ChallengeHandler(toolName, verdict) {
				return nil, &ToolChallenged{Tool: toolName, Verdict: verdict}
			}
		}
		return fn(args, kwargs)
	}
}

// GuardRegistry wraps every tool in tools with Guard, returning a new map.
func GuardRegistry(tools map[string]ToolFunc, opts Options) map[string]ToolFunc {
	guarded := make(map[string]ToolFunc, len(tools))
	for name, fn := range tools {
		guarded[name] = Guard(name, fn, opts)
	}
	return guarded
}

// Enforcer tracks verdicts across a batch of guarded calls, the Go
// equivalent of the reference implementation's context-manager scoped
// enforcer: construct one, call Call repeatedly, inspect its counters when
// done.
type Enforcer struct {
	Opts             Options
	Verdicts         []cord.Verdict
	BlockedCount     int
	AllowedCount     int
	ChallengedCount  int
}

// NewEnforcer returns an Enforcer configured with opts.
func NewEnforcer(opts Options) *Enforcer {
	return &Enforcer{Opts: opts}
}

// Call evaluates and, if permitted, invokes fn for toolName.
func (e *Enforcer) Call(toolName string, fn ToolFunc, args []any, kwargs map[string]any) (any, error) {
	verdict, err := e.EvaluateOnly(toolName, args, kwargs)
	if err != nil {
		return nil, err
	}
	switch verdict.Decision {
	case cord.Block:
		return nil, &ToolBlocked{Tool: toolName, Verdict: verdict}
	case cord.Challenge:
		if e.Opts.ChallengeHandler == nil || !e.Opts.ChallengeHandler(toolName, verdict) {
			return nil, &ToolChallenged{Tool: toolName, Verdict: verdict}
		}
	}
	return fn(args, kwargs)
}

// EvaluateOnly evaluates a proposed call without invoking it, recording the
// verdict in the enforcer's counters either way.
func (e *Enforcer) EvaluateOnly(toolName string, args []any, kwargs map[string]any) (cord.Verdict, error) {
	p := BuildProposal(toolName, args, kwargs, e.Opts.SessionIntent)
	verdict, err := cord.Evaluate(p, e.Opts.Config)
	if err != nil {
		return verdict, err
	}
	e.Verdicts = append(e.Verdicts, verdict)
	switch verdict.Decision {
	case cord.Block:
		e.BlockedCount++
	case cord.Challenge:
		e.ChallengedCount++
	default:
		e.AllowedCount++
	}
	return verdict, nil
}

// LastVerdict returns the most recent verdict, or the zero Verdict if none
// have been recorded yet.
func (e *Enforcer) LastVerdict() cord.Verdict {
	if len(e.Verdicts) == 0 {
		return cord.Verdict{}
	}
	return e.Verdicts[len(e.Verdicts)-1]
}

// TotalEvaluations returns how many calls this enforcer has evaluated.
func (e *Enforcer) TotalEvaluations() int {
	return len(e.Verdicts)
}
