// Package lock guarantees that at most one drag is in flight at a time.
package lock

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/dropzone/internal/invariant"
)

var (
	// ErrAlreadyClaimed is returned by Claim while another sensor holds the lock.
	ErrAlreadyClaimed = errors.New("drag lock is already claimed")
	// ErrNotClaimed is returned by Release when nothing holds the lock.
	ErrNotClaimed = errors.New("drag lock is not claimed")
)

// Lock is the token handed to the sensor that won the claim.
type Lock struct {
	owner   string
	abandon func()
}

// Owner names the sensor that claimed the lock.
func (l *Lock) Owner() string { return l.owner }

// Manager hands out the single drag lock.
type Manager struct {
	mu      sync.Mutex
	current *Lock
	logger  *zap.Logger
}

func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger.With(zap.String("component", "lock"))}
}

// Claim takes the lock for owner. abandon is invoked if the lock is later
// taken away by TryAbandon; it may be nil.
func (m *Manager) Claim(owner string, abandon func()) (*Lock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		return nil, invariant.Wrap("lock.Claim", ErrAlreadyClaimed, "%s cannot claim while %s holds the lock", owner, m.current.owner)
	}
	if abandon == nil {
		abandon = func() {}
	}
	m.current = &Lock{owner: owner, abandon: abandon}
	m.logger.Debug("Lock claimed.", zap.String("owner", owner))
	return m.current, nil
}

// Release frees the lock.
func (m *Manager) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return invariant.Wrap("lock.Release", ErrNotClaimed, "nothing to release")
	}
	m.logger.Debug("Lock released.", zap.String("owner", m.current.owner))
	m.current = nil
	return nil
}

// ReleaseIfActive frees the lock only when l still holds it. It reports
// whether anything was released.
func (m *Manager) ReleaseIfActive(l *Lock) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l == nil || m.current != l {
		return false
	}
	m.current = nil
	return true
}

func (m *Manager) IsClaimed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

// IsActive reports whether l is the lock currently held.
func (m *Manager) IsActive(l *Lock) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return l != nil && m.current == l
}

// TryAbandon takes the lock away from its holder and runs its abandon
// callback. The lock is already free while the callback runs.
func (m *Manager) TryAbandon() bool {
	m.mu.Lock()
	held := m.current
	m.current = nil
	m.mu.Unlock()

	if held == nil {
		return false
	}
	m.logger.Info("Abandoning drag lock.", zap.String("owner", held.owner))
	held.abandon()
	return true
}
