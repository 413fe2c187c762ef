package gpenv

import (
	"context"
	"sync"
)

// Memory is an in-process Store used by tests in place of the gp tool.
type Memory struct {
	mu     sync.Mutex
	values map[string]string

	SetCalls   []string
	UnsetCalls []string
}

func NewMemory(values map[string]string) *Memory {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Memory{values: copied}
}

func (m *Memory) Read(_ context.Context) (Env, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	env := make(Env, len(m.values))
	for k, v := range m.values {
		env[k] = v
	}
	return env, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.SetCalls = append(m.SetCalls, key+"="+value)
	return nil
}

func (m *Memory) Unset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	m.UnsetCalls = append(m.UnsetCalls, key)
	return nil
}

// Get returns the current value of key, for test assertions.
func (m *Memory) Get(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}
