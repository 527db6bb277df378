package world

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/udisondev/skirmish/internal/game/effect"
	"github.com/udisondev/skirmish/internal/model"
)

var (
	// ErrMissingActor is returned when an actor ID does not resolve.
	ErrMissingActor = errors.New("actor not found")
	// ErrAliasedPair is returned when a two-actor operation names one actor twice.
	ErrAliasedPair = errors.New("instigator and victim are the same actor")
)

// Actor is an entity with damageable state. It owns exactly one actor context.
type Actor struct {
	ID       model.EntityID
	Name     string
	Position model.Vec2
	Velocity model.Vec2
	Radius   float32
	Ctx      *effect.Context

	invulnerable float32 // seconds left
	dying        bool
}

// Dying reports whether the actor was flagged dead and awaits the sweep.
func (a *Actor) Dying() bool { return a.dying }

// AbilityObject is a spawned object (bullet, swing, explosion) with a
// non-owning link back to the actor that created it.
// Child is zero for objects that are not ability children.
type AbilityObject struct {
	ID       model.EntityID
	Owner    model.EntityID
	Child    model.ChildType
	Object   string
	Position model.Vec2
	Velocity model.Vec2
	Radius   float32
	Lifetime float32 // seconds left, 0 = until destroyed
	Damage   *model.DamageComponent

	dead bool
}

// Dead reports whether the object was flagged for destruction.
func (o *AbilityObject) Dead() bool { return o.dead }

// World is the arena of actors and ability objects keyed by stable IDs.
//
// Not thread-safe: owned by the simulation tick. Spawns and despawns
// requested mid-tick are buffered and applied by Flush.
type World struct {
	ids     *IDGenerator
	actors  map[model.EntityID]*Actor
	objects map[model.EntityID]*AbilityObject

	dyingActors []model.EntityID
	deadObjects []model.EntityID

	pendingSpawns   []*AbilityObject
	pendingDespawns []model.EntityID
	spawnObserver   func(obj *AbilityObject)
	despawnObserver func(id model.EntityID)
}

// New creates an empty world.
func New() *World {
	return &World{
		ids:     NewIDGenerator(),
		actors:  make(map[model.EntityID]*Actor),
		objects: make(map[model.EntityID]*AbilityObject),
	}
}

// IDs returns the world's ID generator.
func (w *World) IDs() *IDGenerator {
	return w.ids
}

// SetSpawnObserver sets the callback invoked for every object created by Flush.
// This is how the surrounding object-creation system (replication,
// rendering) learns about spawns.
func (w *World) SetSpawnObserver(fn func(obj *AbilityObject)) {
	w.spawnObserver = fn
}

// SetDespawnObserver sets the callback invoked for every entity removed by Flush.
func (w *World) SetDespawnObserver(fn func(id model.EntityID)) {
	w.despawnObserver = fn
}

// AddActor creates an actor immediately. ctx may be nil for an empty context.
// Host-level creation only; effects spawn through the command buffer.
func (w *World) AddActor(name string, pos model.Vec2, radius float32, ctx *effect.Context) *Actor {
	if ctx == nil {
		ctx = effect.NewContext()
	}
	a := &Actor{
		ID:       w.ids.NextActorID(),
		Name:     name,
		Position: pos,
		Radius:   radius,
		Ctx:      ctx,
	}
	w.actors[a.ID] = a
	slog.Debug("actor added", "actor", a.ID, "name", name)
	return a
}

// Actor returns the actor by ID, including actors flagged dying this tick.
func (w *World) Actor(id model.EntityID) (*Actor, bool) {
	a, ok := w.actors[id]
	return a, ok
}

// Context returns the actor context of id.
func (w *World) Context(id model.EntityID) (*effect.Context, bool) {
	a, ok := w.actors[id]
	if !ok {
		return nil, false
	}
	return a.Ctx, true
}

// Alive reports whether id exists and was not flagged dying.
func (w *World) Alive(id model.EntityID) bool {
	a, ok := w.actors[id]
	return ok && !a.dying
}

// Pair fetches two distinct actors for a cross-actor operation.
// Naming the same actor twice is an error: callers must take the
// single-actor path instead.
func (w *World) Pair(a, b model.EntityID) (*Actor, *Actor, error) {
	if a == b {
		return nil, nil, fmt.Errorf("pair %s: %w", a, ErrAliasedPair)
	}
	first, ok := w.actors[a]
	if !ok {
		return nil, nil, fmt.Errorf("pair %s: %w", a, ErrMissingActor)
	}
	second, ok := w.actors[b]
	if !ok {
		return nil, nil, fmt.Errorf("pair %s: %w", b, ErrMissingActor)
	}
	return first, second, nil
}

// Participant builds the dispatch view of id. Missing actors yield a
// participant with only the ID set.
func (w *World) Participant(id model.EntityID) effect.Participant {
	a, ok := w.actors[id]
	if !ok {
		return effect.Participant{ID: id}
	}
	return effect.Participant{ID: id, Ctx: a.Ctx, Position: a.Position}
}

// Position returns the position of an actor or object.
func (w *World) Position(id model.EntityID) (model.Vec2, bool) {
	if a, ok := w.actors[id]; ok {
		return a.Position, true
	}
	if o, ok := w.objects[id]; ok {
		return o.Position, true
	}
	return model.Vec2{}, false
}

// Actors returns all actors in ascending ID order.
func (w *World) Actors() []*Actor {
	out := make([]*Actor, 0, len(w.actors))
	for _, a := range w.actors {
		out = append(out, a)
	}
	slices.SortFunc(out, func(x, y *Actor) int { return cmpID(x.ID, y.ID) })
	return out
}

// ActorCount returns the number of actors, dying ones included.
func (w *World) ActorCount() int {
	return len(w.actors)
}

// MarkDying flags an actor dead for this tick's sweep.
// Returns true only the first time.
func (w *World) MarkDying(id model.EntityID) bool {
	a, ok := w.actors[id]
	if !ok || a.dying {
		return false
	}
	a.dying = true
	w.dyingActors = append(w.dyingActors, id)
	return true
}

// TakeDying returns actors flagged since the last call, in flag order.
func (w *World) TakeDying() []model.EntityID {
	out := w.dyingActors
	w.dyingActors = nil
	return out
}

// Invulnerable reports whether the actor ignores hits right now.
func (w *World) Invulnerable(id model.EntityID) bool {
	a, ok := w.actors[id]
	return ok && a.invulnerable > 0
}

// GrantInvulnerability makes the actor ignore hits for seconds.
// A longer remaining window is kept.
func (w *World) GrantInvulnerability(id model.EntityID, seconds float32) {
	if a, ok := w.actors[id]; ok {
		a.invulnerable = max(a.invulnerable, seconds)
	}
}

// ApplyImpulse adds v to the actor's velocity.
func (w *World) ApplyImpulse(id model.EntityID, v model.Vec2) {
	if a, ok := w.actors[id]; ok {
		a.Velocity = a.Velocity.Add(v)
	}
}

// Object returns an ability object by ID.
func (w *World) Object(id model.EntityID) (*AbilityObject, bool) {
	o, ok := w.objects[id]
	return o, ok
}

// Objects returns all live objects in ascending ID order.
func (w *World) Objects() []*AbilityObject {
	out := make([]*AbilityObject, 0, len(w.objects))
	for _, o := range w.objects {
		out = append(out, o)
	}
	slices.SortFunc(out, func(x, y *AbilityObject) int { return cmpID(x.ID, y.ID) })
	return out
}

// ObjectCount returns the number of objects.
func (w *World) ObjectCount() int {
	return len(w.objects)
}

// MarkObjectDead flags an object for the sweep. Returns true the first time.
func (w *World) MarkObjectDead(id model.EntityID) bool {
	o, ok := w.objects[id]
	if !ok || o.dead {
		return false
	}
	o.dead = true
	w.deadObjects = append(w.deadObjects, id)
	return true
}

// TakeDeadObjects returns objects flagged since the last call, in flag order.
func (w *World) TakeDeadObjects() []model.EntityID {
	out := w.deadObjects
	w.deadObjects = nil
	return out
}

// Advance moves entities, counts down timers and expires objects whose
// lifetime ran out.
func (w *World) Advance(dt float32) {
	for _, a := range w.Actors() {
		a.Position = a.Position.Add(a.Velocity.Scale(dt))
		if a.invulnerable > 0 {
			a.invulnerable = max(a.invulnerable-dt, 0)
		}
	}
	for _, o := range w.Objects() {
		o.Position = o.Position.Add(o.Velocity.Scale(dt))
		if o.Lifetime > 0 {
			o.Lifetime -= dt
			if o.Lifetime <= 0 {
				w.MarkObjectDead(o.ID)
			}
		}
	}
}

func cmpID(a, b model.EntityID) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
