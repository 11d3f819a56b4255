package vector

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max Vector3
}

// BoxAround returns a cube of half-size r centred on p.
func BoxAround(p Vector3, r float64) AABB {
	d := Vector3{r, r, r}
	return AABB{Min: p.Sub(d), Max: p.Add(d)}
}

func (b AABB) Expand(r float64) AABB {
	d := Vector3{r, r, r}
	return AABB{Min: b.Min.Sub(d), Max: b.Max.Add(d)}
}

func (b AABB) Contains(p Vector3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Locatable is anything with a world position.
type Locatable interface {
	Position() Vector3
}

// Spatial answers box queries. Implemented by the world state.
type Spatial[E Locatable] interface {
	EntitiesWithin(box AABB, pred func(E) bool) []E
}

// lookTolerance is how far (in blocks) an entity may sit off the view ray
// and still count as looked at.
const lookTolerance = 0.75

// LookedAt returns the nearest entity along the ray from eye towards look,
// within maxDist and matching pred.
func LookedAt[E Locatable](s Spatial[E], eye, look Vector3, maxDist float64, pred func(E) bool) (E, bool) {
	var best E
	found := false
	bestT := maxDist
	dir := look.Normalize()
	if dir == Zero {
		return best, false
	}
	for _, e := range s.EntitiesWithin(BoxAround(eye, maxDist), pred) {
		to := e.Position().Sub(eye)
		t := to.Dot(dir)
		if t < 0 || t > maxDist {
			continue
		}
		if to.Sub(dir.Multiply(t)).Length() > lookTolerance {
			continue
		}
		if !found || t < bestT {
			best, bestT, found = e, t, true
		}
	}
	return best, found
}

// Nearest returns the closest entity to p within radius matching pred.
func Nearest[E Locatable](s Spatial[E], p Vector3, radius float64, pred func(E) bool) (E, bool) {
	var best E
	found := false
	bestD := radius * radius
	for _, e := range s.EntitiesWithin(BoxAround(p, radius), pred) {
		d := e.Position().DistanceSquared(p)
		if d > radius*radius {
			continue
		}
		if !found || d < bestD {
			best, bestD, found = e, d, true
		}
	}
	return best, found
}

// AngleToEntity returns the unit direction from a to b.
func AngleToEntity(a, b Locatable) Vector3 {
	return b.Position().Sub(a.Position()).Normalize()
}
