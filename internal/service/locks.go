package service

import (
	"sync"

	"github.com/gofrs/uuid/v5"
)

// vaultLocks hands out one exclusive mutex per vault id.
// Entries are refcounted and dropped when the last holder releases them.
type vaultLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*refMutex
}

type refMutex struct {
	mu   sync.Mutex
	refs int
}

func newVaultLocks() *vaultLocks {
	return &vaultLocks{locks: map[uuid.UUID]*refMutex{}}
}

// Lock blocks until the vault is exclusively held and returns the release func.
func (l *vaultLocks) Lock(id uuid.UUID) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &refMutex{}
		l.locks[id] = m
	}
	m.refs++
	l.mu.Unlock()

	m.mu.Lock()
	return func() {
		m.mu.Unlock()
		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *vaultLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
