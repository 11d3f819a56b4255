package world

import (
	"math"

	"github.com/danmakucore/server/internal/core/ecs"
	"github.com/danmakucore/server/internal/vector"
)

// AOIGrid buckets players into square x/z cells so "who is near this
// point" only scans the cells a radius touches. Height is ignored.
// Accessed only from the game loop goroutine, no locks.

const cellSize = 16.0

type cellKey struct {
	cx int32
	cz int32
}

func toCellCoord(v float64) int32 {
	return int32(math.Floor(v / cellSize))
}

// AOIGrid tracks which player entities are in which cells.
type AOIGrid struct {
	cells map[cellKey]map[ecs.EntityID]struct{}
}

func NewAOIGrid() *AOIGrid {
	return &AOIGrid{
		cells: make(map[cellKey]map[ecs.EntityID]struct{}),
	}
}

func (g *AOIGrid) key(p vector.Vector3) cellKey {
	return cellKey{cx: toCellCoord(p.X), cz: toCellCoord(p.Z)}
}

// Add places an entity into the grid.
func (g *AOIGrid) Add(id ecs.EntityID, p vector.Vector3) {
	k := g.key(p)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[ecs.EntityID]struct{})
		g.cells[k] = cell
	}
	cell[id] = struct{}{}
}

// Remove takes an entity out of the grid.
func (g *AOIGrid) Remove(id ecs.EntityID, p vector.Vector3) {
	k := g.key(p)
	cell := g.cells[k]
	if cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// Move updates an entity's cell when its position changes.
func (g *AOIGrid) Move(id ecs.EntityID, from, to vector.Vector3) {
	if g.key(from) == g.key(to) {
		return
	}
	g.Remove(id, from)
	g.Add(id, to)
}

// NearbyInto appends every entity in the cells overlapping the square of
// half-size radius around p to buf. Callers do the exact distance check.
func (g *AOIGrid) NearbyInto(p vector.Vector3, radius float64, buf []ecs.EntityID) []ecs.EntityID {
	buf = buf[:0]
	minX, maxX := toCellCoord(p.X-radius), toCellCoord(p.X+radius)
	minZ, maxZ := toCellCoord(p.Z-radius), toCellCoord(p.Z+radius)
	for cx := minX; cx <= maxX; cx++ {
		for cz := minZ; cz <= maxZ; cz++ {
			for id := range g.cells[cellKey{cx, cz}] {
				buf = append(buf, id)
			}
		}
	}
	return buf
}
