package world

import (
	"log/slog"
	"slices"

	"github.com/udisondev/skirmish/internal/game/effect"
	"github.com/udisondev/skirmish/internal/model"
)

// Spawn reserves an ID for req and queues the object for the next Flush.
// The ID is valid immediately so callers can link to it; the object is
// not visible to lookups until flushed.
func (w *World) Spawn(req effect.SpawnRequest) model.EntityID {
	return w.SpawnWithID(w.ids.NextObjectID(), req)
}

// SpawnWithID queues req under an ID reserved by the caller.
func (w *World) SpawnWithID(id model.EntityID, req effect.SpawnRequest) model.EntityID {
	spec := req.Spec
	obj := &AbilityObject{
		ID:       id,
		Owner:    req.Owner,
		Child:    spec.Child,
		Object:   spec.Object,
		Position: req.Position,
		Velocity: req.Direction.Normalize().Scale(spec.Speed),
		Radius:   spec.Radius,
		Lifetime: spec.Lifetime,
		Damage:   spec.DamageComponent(),
	}
	w.pendingSpawns = append(w.pendingSpawns, obj)
	return id
}

// Despawn queues removal of an actor or object for the next Flush.
// Removing an actor destroys its context.
func (w *World) Despawn(id model.EntityID) {
	w.pendingDespawns = append(w.pendingDespawns, id)
}

// DiscardOwned removes every object owner holds, live or still queued for
// spawn. The objects stop colliding at once, leave in the next Flush and are
// never reported to the sweep, so no OnAbilityEnd fires for them.
// Returns how many objects were discarded.
func (w *World) DiscardOwned(owner model.EntityID) int {
	var ids []model.EntityID
	for _, o := range w.Objects() {
		if o.Owner == owner {
			o.dead = true
			ids = append(ids, o.ID)
		}
	}
	for _, o := range w.pendingSpawns {
		if o.Owner == owner {
			o.dead = true
			ids = append(ids, o.ID)
		}
	}
	if len(ids) == 0 {
		return 0
	}
	w.deadObjects = slices.DeleteFunc(w.deadObjects, func(id model.EntityID) bool {
		return slices.Contains(ids, id)
	})
	w.pendingDespawns = append(w.pendingDespawns, ids...)
	return len(ids)
}

// PendingCommands returns the number of queued spawns and despawns.
func (w *World) PendingCommands() int {
	return len(w.pendingSpawns) + len(w.pendingDespawns)
}

// Flush applies queued spawns, then queued despawns.
// Returns how many entities were created and removed.
func (w *World) Flush() (spawned, despawned int) {
	spawns := w.pendingSpawns
	w.pendingSpawns = nil
	for _, obj := range spawns {
		w.objects[obj.ID] = obj
		spawned++
		if w.spawnObserver != nil {
			w.spawnObserver(obj)
		}
	}

	despawns := w.pendingDespawns
	w.pendingDespawns = nil
	for _, id := range despawns {
		if _, ok := w.actors[id]; ok {
			delete(w.actors, id)
		} else if _, ok := w.objects[id]; ok {
			delete(w.objects, id)
		} else {
			slog.Debug("despawn: entity already gone", "entity", id)
			continue
		}
		despawned++
		if w.despawnObserver != nil {
			w.despawnObserver(id)
		}
	}
	return spawned, despawned
}
