package kv

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Store used by tests and local development. It honors
// per-key TTLs against an injectable clock so expiry behavior is testable.
type Memory struct {
	mu    sync.Mutex
	data  map[string]memoryEntry
	Clock func() time.Time
}

type memoryEntry struct {
	value    string
	deadline time.Time // zero = no expiration
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		data:  make(map[string]memoryEntry),
		Clock: time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.data[key]
	if !ok {
		return "", false, nil
	}
	if !e.deadline.IsZero() && !m.Clock().Before(e.deadline) {
		delete(m.data, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Put(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{value: value}
	if ttl > 0 {
		e.deadline = m.Clock().Add(ttl)
	}
	m.data[key] = e
	return nil
}

func (m *Memory) ListPrefix(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.Clock()
	var keys []string
	for k, e := range m.data {
		if !e.deadline.IsZero() && !now.Before(e.deadline) {
			delete(m.data, k)
			continue
		}
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) Health(context.Context) error {
	return nil
}

// Len reports the number of live keys. Test helper.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.Clock()
	n := 0
	for _, e := range m.data {
		if e.deadline.IsZero() || now.Before(e.deadline) {
			n++
		}
	}
	return n
}
