package event

import (
	"reflect"
	"sync"
)

type queued struct {
	key reflect.Type
	ev  any
}

// Bus is a double-buffered event bus. Events emitted during tick N are
// delivered during tick N+1, in the order they were emitted.
type Bus struct {
	mu       sync.Mutex // guards handlers only; emit and dispatch run on the game loop
	front    []queued
	back     []queued
	pending  map[reflect.Type]int
	handlers map[reflect.Type][]func(any)
}

func NewBus() *Bus {
	return &Bus{
		front:    make([]queued, 0, 64),
		back:     make([]queued, 0, 64),
		pending:  make(map[reflect.Type]int),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

// Emit queues ev for the next tick.
func Emit[T any](b *Bus, ev T) {
	key := reflect.TypeOf((*T)(nil)).Elem()
	b.back = append(b.back, queued{key: key, ev: ev})
	b.pending[key]++
}

// Subscribe registers fn for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[key] = append(b.handlers[key], func(ev any) { fn(ev.(T)) })
}

// Pending reports how many events of type T wait for the next tick.
func Pending[T any](b *Bus) int {
	return b.pending[reflect.TypeOf((*T)(nil)).Elem()]
}

// SwapBuffers makes this tick's emits deliverable and starts a fresh back
// buffer. Called once at tick start.
func (b *Bus) SwapBuffers() {
	clear(b.front)
	b.front, b.back = b.back, b.front[:0]
	clear(b.pending)
}

// DispatchAll delivers the front buffer. Handlers may emit; those events
// land in the back buffer and wait a tick.
func (b *Bus) DispatchAll() int {
	b.mu.Lock()
	handlers := b.handlers
	b.mu.Unlock()
	n := 0
	for _, q := range b.front {
		for _, h := range handlers[q.key] {
			h(q.ev)
			n++
		}
	}
	b.front = b.front[:0]
	return n
}
