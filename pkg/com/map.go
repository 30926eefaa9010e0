package com

import (
	"errors"
	"sync"
)

// Map defines a concurrent-safe map structure.
// Keys are not ordered.
type Map[K comparable, V any] struct {
	m  map[K]V
	mu sync.Mutex
}

var ErrNotFound = errors.New("not found")

func NewMap[K comparable, V any]() *Map[K, V] { return &Map[K, V]{m: make(map[K]V, 10)} }

func (m *Map[_, _]) Len() int          { m.mu.Lock(); defer m.mu.Unlock(); return len(m.m) }
func (m *Map[K, V]) Put(key K, v V)    { m.mu.Lock(); m.m[key] = v; m.mu.Unlock() }
func (m *Map[K, _]) RemoveByKey(key K) { m.mu.Lock(); delete(m.m, key); m.mu.Unlock() }

// Find returns the value stored under the key,
// returns ErrNotFound otherwise.
func (m *Map[K, V]) Find(key K) (v V, err error) {
	var empty K
	if key == empty {
		return v, ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.m[key]; ok {
		return c, nil
	}
	return v, ErrNotFound
}

// Pop removes and returns the value under the key.
func (m *Map[K, V]) Pop(key K) (v V, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok = m.m[key]
	if ok {
		delete(m.m, key)
	}
	return
}

// GetOrPut returns the existing value for the key or stores
// a new one made with the fn function. The bool result is true
// if the value was created.
// fn is called under the map lock.
func (m *Map[K, V]) GetOrPut(key K, fn func() V) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.m[key]; ok {
		return v, false
	}
	v := fn()
	m.m[key] = v
	return v, true
}

// RemoveIf deletes the key only when the predicate returns true.
// The predicate is called under the map lock, so it should not
// call the map back.
func (m *Map[K, V]) RemoveIf(key K, fn func(v V) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.m[key]
	if !ok || !fn(v) {
		return false
	}
	delete(m.m, key)
	return true
}

// ForEach processes every element with the provided callback function.
func (m *Map[K, V]) ForEach(fn func(v V)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.m {
		fn(w)
	}
}

// Values returns a copy of all the values.
func (m *Map[_, V]) Values() []V {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]V, 0, len(m.m))
	for _, v := range m.m {
		out = append(out, v)
	}
	return out
}
