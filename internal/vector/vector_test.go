package vector

import (
	"math"
	"math/rand"
	"testing"
)

const eps = 1e-9

func TestWrapDegrees(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{180, 180},
		{-180, 180},
		{190, -170},
		{-190, 170},
		{720, 0},
		{540, 180},
		{-361, -1},
	}
	for _, tt := range tests {
		if got := WrapDegrees(tt.in); math.Abs(got-tt.want) > eps {
			t.Errorf("WrapDegrees(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFromSphericalConvention(t *testing.T) {
	tests := []struct {
		yaw, pitch float64
		want       Vector3
	}{
		{0, 0, Vector3{0, 0, 1}},
		{90, 0, Vector3{-1, 0, 0}},
		{-90, 0, Vector3{1, 0, 0}},
		{180, 0, Vector3{0, 0, -1}},
		{0, 90, Vector3{0, -1, 0}},
		{0, -90, Vector3{0, 1, 0}},
	}
	for _, tt := range tests {
		got := FromSpherical(tt.yaw, tt.pitch)
		if !got.ApproxEqual(tt.want, 1e-9) {
			t.Errorf("FromSpherical(%v, %v) = %+v, want %+v", tt.yaw, tt.pitch, got, tt.want)
		}
	}
}

func TestYawPitchRoundTrip(t *testing.T) {
	for yaw := -170.0; yaw <= 180; yaw += 35 {
		for pitch := -80.0; pitch <= 80; pitch += 20 {
			v := FromSpherical(yaw, pitch)
			if d := math.Abs(AngleDiff(v.Yaw(), yaw)); d > 1e-6 {
				t.Fatalf("yaw %v pitch %v: got yaw %v", yaw, pitch, v.Yaw())
			}
			if d := math.Abs(v.Pitch() - pitch); d > 1e-6 {
				t.Fatalf("yaw %v pitch %v: got pitch %v", yaw, pitch, v.Pitch())
			}
		}
	}
}

func TestQuatMatchesSpherical(t *testing.T) {
	for _, c := range [][2]float64{{0, 0}, {45, 10}, {-120, -30}, {179, 60}} {
		q := FromEuler(c[0], c[1], 0)
		got := q.Rotate(Forward)
		want := FromSpherical(c[0], c[1])
		if !got.ApproxEqual(want, 1e-9) {
			t.Errorf("FromEuler(%v, %v) forward = %+v, want %+v", c[0], c[1], got, want)
		}
	}
}

func TestQuatAxisAngle(t *testing.T) {
	got := FromAxisAngle(Up, 90).Rotate(Forward)
	if !got.ApproxEqual(Vector3{1, 0, 0}, 1e-9) {
		t.Fatalf("90 about up: got %+v", got)
	}
	q := FromAxisAngle(Vector3{1, 1, 0}, 73)
	v := Vector3{0.3, -2, 5}
	back := q.Conjugate().Rotate(q.Rotate(v))
	if !back.ApproxEqual(v, 1e-9) {
		t.Fatalf("conjugate did not undo rotation: %+v", back)
	}
	if l := q.Rotate(v).Length(); math.Abs(l-v.Length()) > 1e-9 {
		t.Fatalf("rotation changed length: %v", l)
	}
}

func TestAngleLimitRandomStaysInCone(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	base := FromSpherical(30, 10)
	for i := 0; i < 200; i++ {
		v := AngleLimitRandom(base, 7.5, rng)
		if d := math.Abs(AngleDiff(v.Yaw(), 30)); d > 7.5+1e-9 {
			t.Fatalf("yaw drift %v", d)
		}
		if d := math.Abs(v.Pitch() - 10); d > 7.5+1e-9 {
			t.Fatalf("pitch drift %v", d)
		}
	}
}

type point struct {
	name string
	pos  Vector3
}

func (p point) Position() Vector3 { return p.pos }

type pointSet []point

func (s pointSet) EntitiesWithin(box AABB, pred func(point) bool) []point {
	var out []point
	for _, p := range s {
		if box.Contains(p.pos) && (pred == nil || pred(p)) {
			out = append(out, p)
		}
	}
	return out
}

func TestLookedAt(t *testing.T) {
	s := pointSet{
		{"far", Vector3{0, 0, 20}},
		{"near", Vector3{0.2, 0, 5}},
		{"off", Vector3{4, 0, 4}},
		{"behind", Vector3{0, 0, -3}},
	}
	got, ok := LookedAt[point](s, Zero, Forward, 32, nil)
	if !ok || got.name != "near" {
		t.Fatalf("got %v %v, want near", got.name, ok)
	}

	got, ok = LookedAt[point](s, Zero, Forward, 32, func(p point) bool { return p.name != "near" })
	if !ok || got.name != "far" {
		t.Fatalf("filtered: got %v %v, want far", got.name, ok)
	}

	if _, ok := LookedAt[point](s, Zero, Vector3{1, 0, 0}, 32, nil); ok {
		t.Fatal("nothing lies along +X")
	}
}

func TestNearest(t *testing.T) {
	s := pointSet{
		{"a", Vector3{3, 0, 0}},
		{"b", Vector3{1, 1, 0}},
		{"c", Vector3{10, 0, 0}},
	}
	got, ok := Nearest[point](s, Zero, 5, nil)
	if !ok || got.name != "b" {
		t.Fatalf("got %v, want b", got.name)
	}
	if _, ok := Nearest[point](s, Vector3{50, 0, 0}, 5, nil); ok {
		t.Fatal("expected no entity in range")
	}
}
