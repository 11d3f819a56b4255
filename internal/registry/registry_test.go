package registry

import (
	"errors"
	"math/rand"
	"testing"
)

type card struct{ level int }

func TestRegisterAndLookup(t *testing.T) {
	r := New[*card]("spellcard")
	a, b := &card{1}, &card{2}
	if err := r.Register("core:a", a); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("core:b", b); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("core:a", &card{3}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate name: got %v", err)
	}
	if err := r.Register("core:c", a); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate value: got %v", err)
	}

	if v, ok := r.Get("core:b"); !ok || v != b {
		t.Fatal("Get core:b")
	}
	if _, ok := r.Get("core:missing"); ok {
		t.Fatal("missing name resolved")
	}
	if n, ok := r.Name(a); !ok || n != "core:a" {
		t.Fatalf("Name(a) = %q", n)
	}
	if r.ID(b) != 1 || r.ID(&card{}) != -1 {
		t.Fatal("ID mismatch")
	}
	if v, ok := r.ByID(0); !ok || v != a {
		t.Fatal("ByID(0)")
	}
	if _, ok := r.ByID(5); ok {
		t.Fatal("ByID out of range")
	}
	if got := r.Names(); len(got) != 2 || got[0] != "core:a" || got[1] != "core:b" {
		t.Fatalf("Names = %v", got)
	}
}

func TestRandomSeeded(t *testing.T) {
	r := New[*card]("spellcard")
	if _, ok := r.Random(rand.New(rand.NewSource(1))); ok {
		t.Fatal("empty registry returned a value")
	}
	for i := 0; i < 5; i++ {
		if err := r.Register(string(rune('a'+i)), &card{i}); err != nil {
			t.Fatal(err)
		}
	}
	x, _ := r.Random(rand.New(rand.NewSource(99)))
	y, _ := r.Random(rand.New(rand.NewSource(99)))
	if x != y {
		t.Fatal("same seed picked different values")
	}
}
