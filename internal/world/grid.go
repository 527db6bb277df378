package world

import (
	"math"
	"slices"

	"github.com/udisondev/skirmish/internal/model"
)

// CellSize is the edge of one broadphase cell in world units.
const CellSize = 8

// cell is a grid coordinate.
type cell struct {
	cx, cy int32
}

// CoordToCell converts a world position to its cell coordinate.
func CoordToCell(p model.Vec2) (cx, cy int32) {
	cx = int32(math.Floor(float64(p.X) / CellSize))
	cy = int32(math.Floor(float64(p.Y) / CellSize))
	return cx, cy
}

// Grid buckets actors by cell for collision broadphase.
// Rebuilt from scratch each collision pass; actors move every tick, so
// incremental updates buy nothing.
type Grid struct {
	cells map[cell][]model.EntityID
}

// BuildGrid indexes every live actor of w.
func BuildGrid(w *World) *Grid {
	g := &Grid{cells: make(map[cell][]model.EntityID)}
	for _, a := range w.Actors() {
		if a.dying {
			continue
		}
		// actor may straddle cells: index every cell its circle touches
		minX, minY := CoordToCell(a.Position.Sub(model.V2(a.Radius, a.Radius)))
		maxX, maxY := CoordToCell(a.Position.Add(model.V2(a.Radius, a.Radius)))
		for cx := minX; cx <= maxX; cx++ {
			for cy := minY; cy <= maxY; cy++ {
				k := cell{cx, cy}
				g.cells[k] = append(g.cells[k], a.ID)
			}
		}
	}
	return g
}

// Near returns actors indexed in any cell touched by the circle at p,
// deduplicated and in ascending ID order. Candidates only: callers still
// run the exact overlap test.
func (g *Grid) Near(p model.Vec2, radius float32) []model.EntityID {
	minX, minY := CoordToCell(p.Sub(model.V2(radius, radius)))
	maxX, maxY := CoordToCell(p.Add(model.V2(radius, radius)))

	var out []model.EntityID
	for cx := minX; cx <= maxX; cx++ {
		for cy := minY; cy <= maxY; cy++ {
			out = append(out, g.cells[cell{cx, cy}]...)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// CellCount returns the number of non-empty cells.
func (g *Grid) CellCount() int {
	return len(g.cells)
}
