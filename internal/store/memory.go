package store

import (
	"encoding/json"
	"fmt"
)

// MemoryStore is an in-process Store used by tests and throwaway sessions.
// Values still go through an encode/decode cycle so it behaves like the
// durable stores.
type MemoryStore struct {
	data []byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(out interface{}) error {
	if m.data == nil {
		return ErrNotFound
	}
	if err := json.Unmarshal(m.data, out); err != nil {
		return fmt.Errorf("failed to decode garage state: %w", err)
	}
	return nil
}

func (m *MemoryStore) Save(value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode garage state: %w", err)
	}
	m.data = data
	return nil
}
