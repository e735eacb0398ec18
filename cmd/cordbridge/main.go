// Command cordbridge evaluates one proposal read as JSON from stdin and
// writes the resulting verdict as JSON to stdout. It exists so that
// non-Go agent runtimes can shell out to the engine instead of linking
// against pkg/cord directly; it carries no logic of its own beyond
// decoding, evaluating, and encoding.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/openclaw-ai/cord/pkg/cord"
)

type bridgeRequest struct {
	Text          string            `json:"text"`
	ActionType    string            `json:"action_type"`
	TargetPath    string            `json:"target_path"`
	NetworkTarget string            `json:"network_target"`
	Grants        []string          `json:"grants"`
	SessionIntent string            `json:"session_intent"`
	ToolName      string            `json:"tool_name"`
	RawInput      string            `json:"raw_input"`
	RepoRoot      string            `json:"repo_root"`
	LockPath      string            `json:"lock_path"`
	LogPath       string            `json:"log_path"`
}

type bridgeError struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func main() {
	flag.Parse()

	var req bridgeRequest
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		fail(fmt.Sprintf("invalid JSON on stdin: %v", err))
	}
	if req.Text == "" {
		fail("missing required field: text")
	}

	proposal := cord.NewProposal(req.Text)
	if req.ActionType != "" {
		proposal.ActionType = cord.ActionType(req.ActionType)
	}
	proposal.TargetPath = req.TargetPath
	proposal.NetworkTarget = req.NetworkTarget
	proposal.Grants = req.Grants
	proposal.SessionIntent = req.SessionIntent
	proposal.ToolName = req.ToolName
	proposal.RawInput = req.RawInput

	cfg := cord.NewConfigFromEnv()
	if req.RepoRoot != "" {
		cfg.RepoRoot = req.RepoRoot
	}
	if req.LockPath != "" {
		cfg.LockPath = req.LockPath
	}
	if req.LogPath != "" {
		cfg.LogPath = req.LogPath
	}

	verdict, err := cord.Evaluate(proposal, cfg)
	if err != nil {
		fail(err.Error())
	}

	if err := json.NewEncoder(os.Stdout).Encode(verdict); err != nil {
		fail(err.Error())
	}
}

func fail(message string) {
	json.NewEncoder(os.Stdout).Encode(bridgeError{Error: true, Message: message})
	os.Exit(1)
}
