package store

import (
	"context"
	"errors"
	"maps"
	"sync"
)

// ErrReadOnly is returned by Set inside View.
var ErrReadOnly = errors.New("read-only transaction")

// Memory is an in-process KV. Nothing survives a restart.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Update(_ context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	staged := &memTx{data: maps.Clone(m.data)}
	if err := fn(staged); err != nil {
		return err
	}
	m.data = staged.data
	return nil
}

func (m *Memory) View(_ context.Context, fn func(tx Tx) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return fn(&memTx{data: m.data, readOnly: true})
}

func (m *Memory) Close() error { return nil }

type memTx struct {
	data     map[string]string
	readOnly bool
}

func (t *memTx) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := t.data[key]
	return v, ok, nil
}

func (t *memTx) Set(_ context.Context, key, value string) error {
	if t.readOnly {
		return ErrReadOnly
	}
	t.data[key] = value
	return nil
}
