// Package session persists the signed-in state of the terminal client
// between runs: the bearer token and the account it belongs to.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"homeboard/internal/model"
)

const fileName = "session.json"

type State struct {
	Token string      `json:"token"`
	User  *model.User `json:"user,omitempty"`
}

// Manager reads and writes the session file under the client state dir.
type Manager struct {
	path string
}

func NewManager(stateDir string) *Manager {
	return &Manager{path: filepath.Join(stateDir, fileName)}
}

// Load returns the stored session, or an empty state when none exists.
// A missing or unreadable file is the signed-out state, not an error.
func (m *Manager) Load() State {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return State{}
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}
	}
	return s
}

// Save writes the session with owner-only permissions; the token is a
// credential.
func (m *Manager) Save(s State) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the stored session. Called when the server rejects the
// credential so the next run starts at sign-in.
func (m *Manager) Clear() error {
	err := os.Remove(m.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
