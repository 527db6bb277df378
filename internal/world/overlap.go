package world

import "github.com/udisondev/skirmish/internal/model"

// Overlapper answers the physics collaborator's pairwise query.
type Overlapper interface {
	IsOverlapping(a, b model.EntityID) bool
}

// CircleOverlap treats every entity as a circle of its radius.
// Stand-in for the physics engine in the server binary and tests.
type CircleOverlap struct {
	World *World
}

// IsOverlapping reports whether the circles of a and b intersect.
func (c CircleOverlap) IsOverlapping(a, b model.EntityID) bool {
	pa, ra, ok := c.circle(a)
	if !ok {
		return false
	}
	pb, rb, ok := c.circle(b)
	if !ok {
		return false
	}
	r := ra + rb
	return pa.DistanceSquared(pb) <= r*r
}

func (c CircleOverlap) circle(id model.EntityID) (model.Vec2, float32, bool) {
	if a, ok := c.World.actors[id]; ok {
		return a.Position, a.Radius, true
	}
	if o, ok := c.World.objects[id]; ok {
		return o.Position, o.Radius, true
	}
	return model.Vec2{}, 0, false
}
