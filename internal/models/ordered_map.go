package models

// OrderedMap is a string-keyed map that preserves first-insertion order of
// its keys. Writing an existing key overwrites the value but keeps the key's
// original position (last write wins, like a Python dict).
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

// NewOrderedMap creates an empty [OrderedMap].
func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{values: make(map[string]V)}
}

// Set stores a value under key, appending the key on first insertion.
func (m *OrderedMap[V]) Set(key string, value V) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in first-insertion order.
func (m *OrderedMap[V]) Keys() []string {
	return m.keys
}

// Len returns the number of stored keys.
func (m *OrderedMap[V]) Len() int {
	return len(m.keys)
}
