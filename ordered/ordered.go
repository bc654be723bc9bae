// Package ordered provides collections remembering the order of first insertion.
package ordered

// Map is a map iterating its entries in the order keys were first inserted.
//
// Putting an existing key replaces its value but keeps its position.
type Map[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// NewMap creates a new empty map
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{values: make(map[K]V)}
}

// Put sets the value of a key
func (m *Map[K, V]) Put(key K, value V) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value of a key
func (m *Map[K, V]) Get(key K) (value V, found bool) {
	value, found = m.values[key]
	return value, found
}

// Contains checks if a key exists in the map
func (m *Map[K, V]) Contains(key K) bool {
	_, exists := m.values[key]
	return exists
}

// Len returns the number of entries
func (m *Map[K, V]) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order
func (m *Map[K, V]) Keys() []K {
	result := make([]K, len(m.keys))
	copy(result, m.keys)
	return result
}

// Values returns the values in insertion order of their keys
func (m *Map[K, V]) Values() []V {
	result := make([]V, 0, len(m.keys))
	for _, key := range m.keys {
		result = append(result, m.values[key])
	}
	return result
}

// Set represents a set iterating its values in insertion order
type Set[T comparable] struct {
	inner *Map[T, struct{}]
}

// NewSet creates a new set with the given values
func NewSet[T comparable](values ...T) *Set[T] {
	s := &Set[T]{inner: NewMap[T, struct{}]()}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add adds a value to the set
func (s *Set[T]) Add(value T) {
	s.inner.Put(value, struct{}{})
}

// Contains checks if a value exists in the set
func (s *Set[T]) Contains(value T) bool {
	return s.inner.Contains(value)
}

// Len returns the number of elements in the set
func (s *Set[T]) Len() int {
	return s.inner.Len()
}

// Values returns all values in insertion order
func (s *Set[T]) Values() []T {
	return s.inner.Keys()
}
