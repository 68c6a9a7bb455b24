package limiter

import (
	"context"
	"sync"
	"time"
)

type attempt struct {
	fails        int
	last         time.Time
	blockedUntil time.Time
}

// Memory is an in-process limiter with the same window/lockout rules as PG.
type Memory struct {
	mu       sync.Mutex
	byUser   map[string]*attempt
	window   time.Duration
	maxFails int
	blockFor time.Duration
	now      func() time.Time
}

// NewMemory constructs an in-process limiter.
func NewMemory(window time.Duration, maxFails int, blockFor time.Duration) *Memory {
	return &Memory{
		byUser:   map[string]*attempt{},
		window:   window,
		maxFails: maxFails,
		blockFor: blockFor,
		now:      time.Now,
	}
}

// Allow reports whether login is currently allowed.
func (m *Memory) Allow(_ context.Context, username string) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byUser[username]
	if !ok {
		return true, 0, nil
	}
	if now := m.now(); a.blockedUntil.After(now) {
		return false, a.blockedUntil.Sub(now), nil
	}
	return true, 0, nil
}

// Success forgets previous failures.
func (m *Memory) Success(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byUser, username)
	return nil
}

// Failure records a failed attempt and blocks once maxFails is reached within window.
func (m *Memory) Failure(_ context.Context, username string) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	a, ok := m.byUser[username]
	if !ok || now.Sub(a.last) > m.window {
		a = &attempt{}
		m.byUser[username] = a
	}
	a.fails++
	a.last = now
	if a.fails < m.maxFails {
		return false, 0, nil
	}
	a.blockedUntil = now.Add(m.blockFor)
	return true, m.blockFor, nil
}
