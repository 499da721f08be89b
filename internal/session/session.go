package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ListState is what one list remembers between runs: its filter, the
// focused cell and the scroll offset.
type ListState struct {
	Search      string `json:"search,omitempty"`
	Family      string `json:"family,omitempty"`
	ProducerID  string `json:"producer_id,omitempty"`
	ShopID      string `json:"shop_id,omitempty"`
	MissingOnly bool   `json:"missing_only,omitempty"`

	FocusID    string `json:"focus_id,omitempty"`
	FocusField string `json:"focus_field,omitempty"`
	ScrollTop  int    `json:"scroll_top"`
}

// Session stores the UI state of the inventory lists
type Session struct {
	Lists      map[string]ListState `json:"lists"`
	ActiveList string               `json:"active_list,omitempty"`
	LastSaved  time.Time            `json:"last_saved"`
}

// Manager handles session persistence
type Manager struct {
	mu      sync.RWMutex
	session Session
	path    string
	dirty   bool
}

// Open loads the session at path. A missing file starts a fresh session;
// a corrupt one also starts fresh and is reported.
func Open(path string) (*Manager, error) {
	m := &Manager{
		session: Session{Lists: make(map[string]ListState)},
		path:    path,
	}
	return m, m.load()
}

// DefaultPath returns the session file next to the inventory snapshot.
func DefaultPath() (string, error) {
	dir := os.Getenv("QSTOCK_STATE_HOME")
	if dir == "" {
		stateDir := os.Getenv("XDG_STATE_HOME")
		if stateDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			stateDir = filepath.Join(home, ".local", "state")
		}
		dir = filepath.Join(stateDir, "qstock")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return fmt.Errorf("decode %s: %w", m.path, err)
	}
	if session.Lists == nil {
		session.Lists = make(map[string]ListState)
	}
	m.session = session
	return nil
}

// Save persists the session to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dirty || m.path == "" {
		return nil
	}

	m.session.LastSaved = time.Now()
	data, err := json.MarshalIndent(m.session, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return err
	}

	m.dirty = false
	return nil
}

// ForceSave saves even if not dirty
func (m *Manager) ForceSave() error {
	m.mu.Lock()
	m.dirty = true
	m.mu.Unlock()
	return m.Save()
}

func (m *Manager) List(name string) (ListState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.session.Lists[name]
	return state, ok
}

func (m *Manager) SetList(name string, state ListState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session.Lists[name] == state {
		return
	}
	m.session.Lists[name] = state
	m.dirty = true
}

func (m *Manager) ActiveList() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.ActiveList
}

func (m *Manager) SetActiveList(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session.ActiveList == name {
		return
	}
	m.session.ActiveList = name
	m.dirty = true
}
