// Package registry maps stable string identifiers to values and back.
// Registries are passed explicitly to whoever needs them.
package registry

import (
	"errors"
	"fmt"
)

var ErrDuplicate = errors.New("registry: duplicate name")

// Intn is the random source used by Random. *rand.Rand satisfies it.
type Intn interface {
	Intn(n int) int
}

// Registry holds values of T under unique names. Numeric ids follow
// registration order and are stable for a given data set.
type Registry[T comparable] struct {
	kind   string
	byName map[string]T
	names  map[T]string
	order  []T
}

func New[T comparable](kind string) *Registry[T] {
	return &Registry[T]{
		kind:   kind,
		byName: make(map[string]T),
		names:  make(map[T]string),
	}
}

// Register adds v under name. Names and values must both be unique.
func (r *Registry[T]) Register(name string, v T) error {
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("%s %q: %w", r.kind, name, ErrDuplicate)
	}
	if prev, ok := r.names[v]; ok {
		return fmt.Errorf("%s %q already registered as %q: %w", r.kind, name, prev, ErrDuplicate)
	}
	r.byName[name] = v
	r.names[v] = name
	r.order = append(r.order, v)
	return nil
}

func (r *Registry[T]) Get(name string) (T, bool) {
	v, ok := r.byName[name]
	return v, ok
}

// Name is the reverse lookup of Get.
func (r *Registry[T]) Name(v T) (string, bool) {
	n, ok := r.names[v]
	return n, ok
}

// ID returns the registration index of v, or -1.
func (r *Registry[T]) ID(v T) int {
	for i, e := range r.order {
		if e == v {
			return i
		}
	}
	return -1
}

func (r *Registry[T]) ByID(id int) (T, bool) {
	var zero T
	if id < 0 || id >= len(r.order) {
		return zero, false
	}
	return r.order[id], true
}

// Random picks any registered value. ok is false when the registry is empty.
func (r *Registry[T]) Random(rng Intn) (T, bool) {
	var zero T
	if len(r.order) == 0 {
		return zero, false
	}
	return r.order[rng.Intn(len(r.order))], true
}

// Names lists names in registration order.
func (r *Registry[T]) Names() []string {
	out := make([]string, 0, len(r.order))
	for _, v := range r.order {
		out = append(out, r.names[v])
	}
	return out
}

func (r *Registry[T]) Len() int {
	return len(r.order)
}
