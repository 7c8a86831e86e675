// Package kv defines the durable key-value collaborator the habit state is
// persisted through.
package kv

import (
	"context"
	"sync"
)

// Store is a string key-value store. Get reports ok=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: map[string]string{}}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
	return nil
}

func (m *Memory) Close() error {
	return nil
}

var _ Store = (*Memory)(nil)

// MemoryProfiles hands out one Memory per profile name.
type MemoryProfiles struct {
	mu       sync.Mutex
	profiles map[string]*Memory
}

func NewMemoryProfiles() *MemoryProfiles {
	return &MemoryProfiles{profiles: map[string]*Memory{}}
}

func (p *MemoryProfiles) Profile(name string) Store {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, ok := p.profiles[name]
	if !ok {
		m = NewMemory()
		p.profiles[name] = m
	}
	return m
}

func (p *MemoryProfiles) Close() error {
	return nil
}
