package effect

import "github.com/udisondev/skirmish/internal/model"

// Participant is one actor taking part in a dispatched moment.
// Ctx is nil when the actor no longer exists.
type Participant struct {
	ID       model.EntityID
	Ctx      *Context
	Position model.Vec2
}

// Present reports whether the participant refers to a live actor context.
func (p Participant) Present() bool {
	return p.ID.Valid() && p.Ctx != nil
}

// Scope bundles the actors and location of a dispatched moment.
// Self owns the triggers being scanned.
type Scope struct {
	Self     Participant
	Other    Participant
	Location model.Vec2
}

func (s Scope) pick(w WhichActor) Participant {
	if w == Other {
		return s.Other
	}
	return s.Self
}

// SpawnRequest asks the world to create an object at the end of the tick.
// Direction is only set for cast abilities; the object moves along it
// at Spec.Speed.
type SpawnRequest struct {
	Spec      SpawnSpec
	Position  model.Vec2
	Direction model.Vec2
	Owner     model.EntityID
}

// Commands is the side channel effects use to change the world.
// Neither call takes effect synchronously: damage is resolved by the
// next trampoline iteration, spawns at the tick flush.
type Commands interface {
	EnqueueDamage(instigator, victim model.EntityID, amount float32)
	Spawn(req SpawnRequest) model.EntityID
}
