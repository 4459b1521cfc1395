// Package secrets stores credential material as namespaced key/secret pairs.
// The session layer only depends on the Store contract; backends include the
// OS keychain, a locked JSON file, and an in-memory map for tests.
package secrets

import "sync"

// Store is a namespaced key - secret mapping. The namespace isolates
// environments (sandbox vs live) so their credentials never collide.
type Store interface {
	// Put stores value under namespace/key, overwriting any previous value.
	Put(namespace, key, value string) error

	// Get retrieves the value for namespace/key. The boolean reports whether
	// the key was present; absence is not an error.
	Get(namespace, key string) (string, bool, error)

	// Del removes namespace/key. Deleting a missing key succeeds silently.
	Del(namespace, key string) error
}

// Memstore is an in-memory Store, safe for concurrent use.
type Memstore struct {
	mu   sync.Mutex
	data map[string]map[string]string
}

// NewMemstore creates an empty in-memory store.
func NewMemstore() *Memstore {
	return &Memstore{data: make(map[string]map[string]string)}
}

// Put stores value under namespace/key.
func (m *Memstore) Put(namespace, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.data[namespace]
	if !ok {
		ns = make(map[string]string)
		m.data[namespace] = ns
	}
	ns[key] = value
	return nil
}

// Get retrieves the value for namespace/key.
func (m *Memstore) Get(namespace, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.data[namespace]
	if !ok {
		return "", false, nil
	}
	v, ok := ns[key]
	return v, ok, nil
}

// Del removes namespace/key.
func (m *Memstore) Del(namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ns, ok := m.data[namespace]; ok {
		delete(ns, key)
	}
	return nil
}
