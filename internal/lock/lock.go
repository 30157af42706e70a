// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lock provides named reader/writer locks guarding ontology store
// mutations: one global lock plus one lock per ontology path.
//
// Lock order is always global then path, so holders of a path lock never
// wait on the global lock while holding a path lock.
package lock

import "sync"

// Unlock releases a lock obtained from a Manager.
type Unlock func()

type entry struct {
	mu   sync.RWMutex
	refs int
}

// Manager hands out global and per-path reader/writer locks. Per-path locks
// are created on first use and dropped once no holder or waiter remains.
type Manager struct {
	global sync.RWMutex

	mu    sync.Mutex
	paths map[string]*entry
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{paths: make(map[string]*entry)}
}

func (m *Manager) acquire(path string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.paths[path]
	if !ok {
		e = &entry{}
		m.paths[path] = e
	}
	e.refs++
	return e
}

func (m *Manager) release(path string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.paths, path)
	}
}

// ReadLock takes the global lock for reading and the path lock for reading.
func (m *Manager) ReadLock(path string) Unlock {
	m.global.RLock()
	e := m.acquire(path)
	e.mu.RLock()
	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.RUnlock()
			m.release(path, e)
			m.global.RUnlock()
		})
	}
}

// WriteLock takes the global lock for reading and the path lock for writing.
func (m *Manager) WriteLock(path string) Unlock {
	m.global.RLock()
	e := m.acquire(path)
	e.mu.Lock()
	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			m.release(path, e)
			m.global.RUnlock()
		})
	}
}

// GlobalWrite takes the global lock for writing, excluding every path
// lock holder.
func (m *Manager) GlobalWrite() Unlock {
	m.global.Lock()
	var once sync.Once
	return func() {
		once.Do(m.global.Unlock)
	}
}

// GlobalRead takes the global lock for reading only.
func (m *Manager) GlobalRead() Unlock {
	m.global.RLock()
	var once sync.Once
	return func() {
		once.Do(m.global.RUnlock)
	}
}

// Paths returns the number of live per-path locks.
func (m *Manager) Paths() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.paths)
}
