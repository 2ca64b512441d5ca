// Package session tracks the authenticated owner whose document the task store
// may read or mutate.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Provider supplies the current owner and announces changes to it.
type Provider interface {
	// CurrentOwnerID returns the signed-in owner, or false when signed out.
	CurrentOwnerID() (string, bool)

	// OnOwnerChanged registers fn to receive the new owner id ("" on sign-out).
	// The returned function removes the subscription.
	OnOwnerChanged(fn func(ownerID string)) (unsubscribe func())
}

// record is the on-disk form of a session.
type record struct {
	OwnerID  string    `json:"owner_id"`
	SignedIn time.Time `json:"signed_in"`
}

// Manager is a Provider whose owner is set by SignIn and SignOut.
// When created with Open, the owner is persisted to a file with mode 0600.
type Manager struct {
	mu     sync.Mutex
	path   string
	owner  string
	subs   map[int]func(string)
	nextID int
}

// NewManager returns an in-memory Manager. An empty ownerID starts signed out.
func NewManager(ownerID string) *Manager {
	return &Manager{
		owner: strings.TrimSpace(ownerID),
		subs:  make(map[int]func(string)),
	}
}

// Open returns a Manager backed by the session file at path.
// A missing file means signed out.
func Open(path string) (*Manager, error) {
	m := NewManager("")
	m.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("invalid session file: %w", err)
	}
	m.owner = strings.TrimSpace(rec.OwnerID)
	return m, nil
}

// CurrentOwnerID implements Provider.
func (m *Manager) CurrentOwnerID() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owner, m.owner != ""
}

// OnOwnerChanged implements Provider.
func (m *Manager) OnOwnerChanged(fn func(ownerID string)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.subs[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// SignIn makes ownerID the current owner.
func (m *Manager) SignIn(ownerID string) error {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return errors.New("owner id required")
	}
	if m.path != "" {
		data, err := json.MarshalIndent(record{OwnerID: ownerID, SignedIn: time.Now().UTC()}, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(m.path, data, 0600); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
	}
	m.set(ownerID)
	return nil
}

// SignOut clears the current owner. Signing out twice is not an error.
func (m *Manager) SignOut() error {
	if m.path != "" {
		if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove session: %w", err)
		}
	}
	m.set("")
	return nil
}

// set stores the owner and notifies subscribers outside the lock.
func (m *Manager) set(ownerID string) {
	m.mu.Lock()
	if m.owner == ownerID {
		m.mu.Unlock()
		return
	}
	m.owner = ownerID
	subs := make([]func(string), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(ownerID)
	}
}
