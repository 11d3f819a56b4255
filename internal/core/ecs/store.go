package ecs

// dropper is what the World needs from a store to clear a destroyed id.
type dropper interface {
	Delete(id EntityID)
}

// Store maps entity ids to component pointers of one type.
type Store[T any] struct {
	data map[EntityID]*T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{data: make(map[EntityID]*T, 64)}
}

func (s *Store[T]) Put(id EntityID, c *T) { s.data[id] = c }

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *Store[T]) Delete(id EntityID) { delete(s.data, id) }

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Len() int { return len(s.data) }

// Each visits every component. fn may delete the current entry.
func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for id, c := range s.data {
		fn(id, c)
	}
}

// Take removes and returns the component for id.
func (s *Store[T]) Take(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	if ok {
		delete(s.data, id)
	}
	return c, ok
}
