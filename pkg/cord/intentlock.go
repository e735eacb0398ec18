package cord

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultLockPath is used when CORD_LOCK_PATH is unset.
const DefaultLockPath = ".cord/intent.lock"

// Scope bounds what an IntentLock session may do: a path prefix, an
// allowed set of network hosts, and an allowed set of commands.
type Scope struct {
	RepoRoot           string   `json:"repo_root"`
	AllowPaths         []string `json:"allow_paths"`
	AllowNetworkTargets []string `json:"allow_network_targets"`
	AllowCommands      []string `json:"allow_commands"`
}

// IsPathAllowed reports whether target falls under RepoRoot and under at
// least one AllowPaths entry. An empty AllowPaths denies every non-empty
// target — there is no implicit "allow everything under the repo" default.
func (s Scope) IsPathAllowed(target string) bool {
	if target == "" {
		return true
	}
	if s.RepoRoot != "" {
		rel, err := filepath.Rel(s.RepoRoot, target)
		if err != nil || strings.HasPrefix(rel, "..") {
			return false
		}
	}
	if len(s.AllowPaths) == 0 {
		return false
	}
	for _, allowed := range s.AllowPaths {
		rel, err := filepath.Rel(allowed, target)
		if err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

// IsNetworkAllowed reports whether target contains one of
// AllowNetworkTargets as a substring; the whole target string is searched,
// no host is parsed out of it. This is deliberately naive — a
// preserved design decision, not a bug — see DESIGN.md.
func (s Scope) IsNetworkAllowed(target string) bool {
	if target == "" {
		return true
	}
	for _, host := range s.AllowNetworkTargets {
		if host != "" && strings.Contains(target, host) {
			return true
		}
	}
	return false
}

// IsCommandAllowed reports whether target matches one of AllowCommands as a
// case-insensitive regex. An empty target is trivially allowed; an empty
// AllowCommands list denies everything.
func (s Scope) IsCommandAllowed(target string) bool {
	if target == "" {
		return true
	}
	if len(s.AllowCommands) == 0 {
		return false
	}
	for _, pattern := range s.AllowCommands {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			continue
		}
		if re.MatchString(target) {
			return true
		}
	}
	return false
}

// IntentLock binds a session to a Scope, a passphrase, and a declared
// intent, persisted to disk so later proposals in the same session can be
// checked against what the principal actually authorized.
type IntentLock struct {
	UserID         string `json:"user_id"`
	Scope          Scope  `json:"scope"`
	PassphraseHash string `json:"passphrase_hash"`
	SessionIntent  string `json:"session_intent"`
	CreatedAt      string `json:"created_at"`
}

// rawIntentLock tolerates both snake_case and camelCase keys on read, since
// the lock file may also be written by non-Go callers.
type rawIntentLock struct {
	UserID         string          `json:"user_id"`
	UserID2        string          `json:"userId"`
	Scope          json.RawMessage `json:"scope"`
	PassphraseHash string          `json:"passphrase_hash"`
	PassphraseHash2 string         `json:"passphraseHash"`
	SessionIntent  string          `json:"session_intent"`
	SessionIntent2 string          `json:"sessionIntent"`
	CreatedAt      string          `json:"created_at"`
	CreatedAt2     string          `json:"createdAt"`
}

type rawScope struct {
	RepoRoot               string   `json:"repo_root"`
	RepoRoot2              string   `json:"repoRoot"`
	AllowPaths             []string `json:"allow_paths"`
	AllowPaths2            []string `json:"allowPaths"`
	AllowNetworkTargets    []string `json:"allow_network_targets"`
	AllowNetworkTargets2   []string `json:"allowNetworkTargets"`
	AllowCommands          []string `json:"allow_commands"`
	AllowCommands2         []string `json:"allowCommands"`
}

func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func coalesceSlice(a, b []string) []string {
	if len(a) > 0 {
		return a
	}
	return b
}

// HashPassphrase returns the persisted form of a plaintext passphrase.
// Plaintext is never written to disk.
func HashPassphrase(passphrase string) string {
	sum := sha256.Sum256([]byte(passphrase))
	return hex.EncodeToString(sum[:])
}

// SetIntentLock validates userID, repoRoot, passphrase, and sessionIntent
// are all non-empty, then writes the lock atomically (write to a temp file
// in the same directory, then rename) so a concurrent reader never observes
// a half-written lock file.
func SetIntentLock(path string, userID string, scope Scope, passphrase, sessionIntent, createdAt string) error {
	if userID == "" || scope.RepoRoot == "" || passphrase == "" || sessionIntent == "" {
		return errIntentLockRequiredField
	}
	lock := IntentLock{
		UserID:         userID,
		Scope:          scope,
		PassphraseHash: HashPassphrase(passphrase),
		SessionIntent:  sessionIntent,
		CreatedAt:      createdAt,
	}
	data, err := json.MarshalIndent(lock, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp, err := os.CreateTemp(dir, ".intent-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// LoadIntentLock reads and parses the lock file at path. Any failure —
// missing file, malformed JSON, missing required keys — returns nil:
// absence of a usable lock is not an error condition for callers, it is the
// unauthenticated state the pipeline already handles explicitly.
func LoadIntentLock(path string) *IntentLock {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var raw rawIntentLock
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	var rs rawScope
	if len(raw.Scope) > 0 {
		_ = json.Unmarshal(raw.Scope, &rs)
	}
	lock := &IntentLock{
		UserID: coalesce(raw.UserID, raw.UserID2),
		Scope: Scope{
			RepoRoot:            coalesce(rs.RepoRoot, rs.RepoRoot2),
			AllowPaths:          coalesceSlice(rs.AllowPaths, rs.AllowPaths2),
			AllowNetworkTargets: coalesceSlice(rs.AllowNetworkTargets, rs.AllowNetworkTargets2),
			AllowCommands:       coalesceSlice(rs.AllowCommands, rs.AllowCommands2),
		},
		PassphraseHash: coalesce(raw.PassphraseHash, raw.PassphraseHash2),
		SessionIntent:  coalesce(raw.SessionIntent, raw.SessionIntent2),
		CreatedAt:      coalesce(raw.CreatedAt, raw.CreatedAt2),
	}
	if lock.UserID == "" || lock.Scope.RepoRoot == "" || lock.PassphraseHash == "" || lock.SessionIntent == "" {
		return nil
	}
	return lock
}

// VerifyPassphrase reports whether passphrase hashes to the lock's stored hash.
func (l *IntentLock) VerifyPassphrase(passphrase string) bool {
	if l == nil {
		return false
	}
	return l.PassphraseHash == HashPassphrase(passphrase)
}

type intentLockError string

func (e intentLockError) Error() string { return string(e) }

const errIntentLockRequiredField = intentLockError("user_id, repo_root, passphrase, and session_intent are all required to set an intent lock")
