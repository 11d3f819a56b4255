package ecs

// World owns the id pool and the stores attached to it. Ids released
// during a tick stay allocated until Flush so systems later in the same
// tick can still tell a just-removed entity from a recycled slot.
type World struct {
	pool   *Pool
	stores []dropper
	queue  []EntityID
	queued map[EntityID]struct{}
}

func NewWorld() *World {
	return &World{
		pool:   NewPool(),
		queue:  make([]EntityID, 0, 64),
		queued: make(map[EntityID]struct{}, 64),
	}
}

// Attach registers a store to be cleared on Flush.
func (w *World) Attach(stores ...dropper) {
	w.stores = append(w.stores, stores...)
}

func (w *World) Spawn(kind Kind) EntityID { return w.pool.Create(kind) }

func (w *World) Alive(id EntityID) bool { return w.pool.Alive(id) }

func (w *World) KindOf(id EntityID) (Kind, bool) { return w.pool.KindOf(id) }

// Count returns the live ids of kind, including ones awaiting Flush.
func (w *World) Count(kind Kind) int { return w.pool.Count(kind) }

// Release queues id for the next Flush. Releasing twice is harmless.
func (w *World) Release(id EntityID) {
	if _, dup := w.queued[id]; dup || !w.pool.Alive(id) {
		return
	}
	w.queued[id] = struct{}{}
	w.queue = append(w.queue, id)
}

// Pending returns how many ids wait for Flush.
func (w *World) Pending() int { return len(w.queue) }

// Flush clears released ids from every store and frees them. It returns
// how many were freed.
func (w *World) Flush() int {
	n := 0
	for _, id := range w.queue {
		for _, s := range w.stores {
			s.Delete(id)
		}
		if w.pool.Destroy(id) {
			n++
		}
		delete(w.queued, id)
	}
	w.queue = w.queue[:0]
	return n
}
