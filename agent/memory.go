package agent

import (
	"slices"

	"github.com/casualjim/rook/internal/registry"
)

// Memory is an agent's private scratch space: a concurrent string-keyed map
// used to buffer state between events. It is not persisted and not shared
// between agents; anything that must survive the process belongs in a real
// store owned by the caller.
type Memory struct {
	values registry.Registry[any]
}

func NewMemory() *Memory {
	return &Memory{values: registry.New[any]()}
}

// Put stores value under key, replacing any previous value.
func (m *Memory) Put(key string, value any) {
	m.values.Add(key, value)
}

// Get returns the value stored under key.
func (m *Memory) Get(key string) (any, bool) {
	return m.values.Get(key)
}

// Del removes key. Deleting a missing key is a no-op.
func (m *Memory) Del(key string) {
	m.values.Del(key)
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	return m.values.Len()
}

// Keys returns all keys in sorted order. With uuidx.Key identifiers the sort
// order is creation order.
func (m *Memory) Keys() []string {
	keys := make([]string, 0, m.values.Len())
	m.values.ForEach(func(key string, _ any) bool {
		keys = append(keys, key)
		return true
	})
	slices.Sort(keys)
	return keys
}
