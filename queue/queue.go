// Package queue holds the ordered list of viewers waiting for help.
// All mutation goes through Manager; the raw list is never exposed.
package queue

import (
	"errors"
	"sync"
)

var (
	// ErrAlreadyQueued is returned by Join when the login is already waiting.
	ErrAlreadyQueued = errors.New("already queued")
	// ErrEmpty is returned by Next when nobody is waiting.
	ErrEmpty = errors.New("queue is empty")
)

// Role determines where a participant is inserted.
type Role int

const (
	// RoleDefault participants are appended in strict FIFO order.
	RoleDefault Role = iota
	// RolePriority participants (subs, VIPs, mods) jump ahead of default
	// entries but queue FIFO among themselves.
	RolePriority
)

func (r Role) String() string {
	if r == RolePriority {
		return "priority"
	}
	return "default"
}

// Participant is a single queue entry.
type Participant struct {
	Login string
	Role  Role
}

// Manager owns the queue. Safe for concurrent use; every operation takes a
// single consistent view under the mutex and never blocks on I/O.
type Manager struct {
	mu      sync.Mutex
	entries []Participant
}

// NewManager returns an empty queue.
func NewManager() *Manager {
	return &Manager{}
}

// Join inserts login according to its role. Default entries append at the
// tail; priority entries insert after the last priority entry and before the
// first default entry, so priority users queue FIFO among themselves without
// reordering anyone already fast-tracked.
// Returns ErrAlreadyQueued if login is present, regardless of role.
func (m *Manager) Join(login string, role Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.entries {
		if p.Login == login {
			return ErrAlreadyQueued
		}
	}
	if role == RolePriority {
		at := 0
		for at < len(m.entries) && m.entries[at].Role == RolePriority {
			at++
		}
		m.entries = append(m.entries, Participant{})
		copy(m.entries[at+1:], m.entries[at:])
		m.entries[at] = Participant{Login: login, Role: role}
		return nil
	}
	m.entries = append(m.entries, Participant{Login: login, Role: role})
	return nil
}

// Snapshot returns the current ordering of logins. The result is a copy
// taken under the lock, so it cannot tear against concurrent joins.
func (m *Manager) Snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, p := range m.entries {
		out[i] = p.Login
	}
	return out
}

// Entries returns a copy of the queue including roles, in service order.
func (m *Manager) Entries() []Participant {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Participant, len(m.entries))
	copy(out, m.entries)
	return out
}

// Leave removes login from the queue. Reports whether it was present.
func (m *Manager) Leave(login string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.entries {
		if p.Login == login {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Next dequeues the participant at the front.
func (m *Manager) Next() (Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		return Participant{}, ErrEmpty
	}
	p := m.entries[0]
	m.entries = m.entries[1:]
	return p, nil
}

// Position returns the 1-based position of login, or 0 if not queued.
func (m *Manager) Position(login string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.entries {
		if p.Login == login {
			return i + 1
		}
	}
	return 0
}

// Len returns the number of waiting participants.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
