package world

import (
	"sync/atomic"

	"github.com/udisondev/skirmish/internal/model"
)

// ID ranges (convention):
//
//	0x00000000 - 0x0FFFFFFF: Reserved (0 = invalid)
//	0x10000000 - 0x1FFFFFFF: Actors
//	0x20000000 - 0x6FFFFFFF: Ability objects and other spawned objects
//	0x70000000 - 0x7FFFFFFF: Client-predicted objects (never authoritative)
const (
	ActorIDBase     model.EntityID = 0x10000000
	ObjectIDBase    model.EntityID = 0x20000000
	PredictedIDBase model.EntityID = 0x70000000
)

// IDGenerator hands out unique entity IDs per range.
// Thread-safe via atomic increment, so ids can be reserved from a
// network goroutine before the tick applies the spawn.
type IDGenerator struct {
	nextActorID     atomic.Uint32
	nextObjectID    atomic.Uint32
	nextPredictedID atomic.Uint32
}

// NewIDGenerator creates a generator starting at the base of each range.
func NewIDGenerator() *IDGenerator {
	gen := &IDGenerator{}
	gen.nextActorID.Store(uint32(ActorIDBase))
	gen.nextObjectID.Store(uint32(ObjectIDBase))
	gen.nextPredictedID.Store(uint32(PredictedIDBase))
	return gen
}

// NextActorID returns the next actor ID.
func (g *IDGenerator) NextActorID() model.EntityID {
	return model.EntityID(g.nextActorID.Add(1))
}

// NextObjectID returns the next spawned-object ID.
func (g *IDGenerator) NextObjectID() model.EntityID {
	return model.EntityID(g.nextObjectID.Add(1))
}

// NextPredictedID returns the next client-predicted ID.
func (g *IDGenerator) NextPredictedID() model.EntityID {
	return model.EntityID(g.nextPredictedID.Add(1))
}

// IsActorID reports whether id lies in the actor range.
func IsActorID(id model.EntityID) bool {
	return id >= ActorIDBase && id < ObjectIDBase
}

// IsPredictedID reports whether id was minted by a predicting client.
func IsPredictedID(id model.EntityID) bool {
	return id >= PredictedIDBase && id < PredictedIDBase+0x10000000
}
