package ecs

import "testing"

func TestPoolNeverHandsOutZero(t *testing.T) {
	p := NewPool()
	id := p.Create(KindPlayer)
	if id.IsZero() {
		t.Fatal("first entity must not be the zero id")
	}
	if !p.Alive(id) {
		t.Fatal("fresh entity should be alive")
	}
	if p.Alive(0) {
		t.Fatal("zero id must never be alive")
	}
}

func TestPoolGenerations(t *testing.T) {
	p := NewPool()
	a := p.Create(KindMob)
	p.Destroy(a)
	if p.Alive(a) {
		t.Fatal("destroyed entity still alive")
	}
	b := p.Create(KindDanmaku)
	if b.Index() != a.Index() {
		t.Fatalf("index not reused: %d vs %d", b.Index(), a.Index())
	}
	if b.Generation() != a.Generation()+1 {
		t.Fatalf("generation = %d, want %d", b.Generation(), a.Generation()+1)
	}
	// Stale destroy must not hit the new occupant.
	if p.Destroy(a) {
		t.Fatal("stale destroy reported success")
	}
	if k, ok := p.KindOf(b); !ok || k != KindDanmaku {
		t.Fatalf("kind = %v %v", k, ok)
	}
	if _, ok := p.KindOf(a); ok {
		t.Fatal("stale id still has a kind")
	}
}

func TestPoolCountsByKind(t *testing.T) {
	p := NewPool()
	p.Create(KindPlayer)
	m := p.Create(KindMob)
	p.Create(KindMob)
	if p.Count(KindMob) != 2 || p.Count(KindPlayer) != 1 {
		t.Fatalf("counts = %d/%d", p.Count(KindMob), p.Count(KindPlayer))
	}
	p.Destroy(m)
	if p.Count(KindMob) != 1 {
		t.Fatalf("mob count after destroy = %d", p.Count(KindMob))
	}
}

func TestWorldFlushClearsStores(t *testing.T) {
	w := NewWorld()
	names := NewStore[string]()
	w.Attach(names)

	id := w.Spawn(KindPlayer)
	n := "reimu"
	names.Put(id, &n)
	w.Release(id)
	w.Release(id)
	if !names.Has(id) || !w.Alive(id) {
		t.Fatal("entity cleared before flush")
	}
	if w.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", w.Pending())
	}
	if got := w.Flush(); got != 1 {
		t.Fatalf("flushed %d, want 1", got)
	}
	if names.Has(id) || w.Alive(id) {
		t.Fatal("entity survived flush")
	}
}

func TestStoreTake(t *testing.T) {
	s := NewStore[int]()
	v := 7
	s.Put(3, &v)
	got, ok := s.Take(3)
	if !ok || *got != 7 || s.Len() != 0 {
		t.Fatal("take did not remove the component")
	}
	if _, ok := s.Take(3); ok {
		t.Fatal("second take found a component")
	}
}
