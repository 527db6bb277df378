package combat

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/skirmish/internal/game/effect"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/world"
)

// ErrCasterUnavailable is returned when a dead or missing actor tries to cast.
var ErrCasterUnavailable = errors.New("caster unavailable")

// HitResult содержит результат одного попадания для наблюдения в тестах.
type HitResult struct {
	Object    model.EntityID
	Owner     model.EntityID
	Victim    model.EntityID
	Child     model.ChildType
	Amount    float32
	Knockback model.Vec2
	Location  model.Vec2
}

// Bridge turns ability casts and physical overlaps into trigger dispatches
// and damage events.
type Bridge struct {
	world   *world.World
	overlap world.Overlapper
	cmds    effect.Commands

	// invulnerability granted to a victim after a hit, seconds
	invulnerability float32

	// hitObserver: callback для наблюдения за попаданиями (nil в production).
	hitObserver func(HitResult)
}

// NewBridge creates a bridge. cmds is normally the tick's Resolver.
func NewBridge(w *world.World, overlap world.Overlapper, cmds effect.Commands, invulnerability float32) *Bridge {
	return &Bridge{
		world:           w,
		overlap:         overlap,
		cmds:            cmds,
		invulnerability: invulnerability,
	}
}

// SetHitObserver sets callback for observing hits.
func (b *Bridge) SetHitObserver(fn func(HitResult)) {
	b.hitObserver = fn
}

// Cast fires on_ability_cast on the caster and requests the ability object.
// The returned id is reserved immediately; the object appears at the next flush.
func (b *Bridge) Cast(owner model.EntityID, spec effect.SpawnSpec, direction model.Vec2) (model.EntityID, error) {
	a, ok := b.world.Actor(owner)
	if !ok || a.Dying() {
		return model.InvalidEntity, fmt.Errorf("casting %s from %s: %w", spec.Object, owner, ErrCasterUnavailable)
	}

	if spec.Child.Valid() {
		effect.DispatchActor(effect.OnAbilityCast, spec.Child, effect.Scope{
			Self:     b.world.Participant(owner),
			Location: a.Position,
		}, b.cmds)
	}

	id := b.cmds.Spawn(effect.SpawnRequest{
		Spec:      spec,
		Position:  a.Position,
		Direction: direction,
		Owner:     owner,
	})
	slog.Debug("ability cast", "owner", owner, "object", spec.Object, "id", id)
	return id, nil
}

// Collide scans damage-bearing objects against actors in ascending id
// order and applies every new hit. Returns the number of hits.
func (b *Bridge) Collide() int {
	grid := world.BuildGrid(b.world)
	hits := 0
	for _, obj := range b.world.Objects() {
		if obj.Damage == nil || obj.Dead() {
			continue
		}
		for _, victim := range grid.Near(obj.Position, obj.Radius) {
			if victim == obj.Owner {
				continue
			}
			if !b.overlap.IsOverlapping(obj.ID, victim) {
				continue
			}
			if b.hit(obj, victim) {
				hits++
			}
			if obj.Dead() || !obj.Damage.CanHit() {
				break
			}
		}
	}
	return hits
}

// hit applies one overlap between obj and victim.
func (b *Bridge) hit(obj *world.AbilityObject, victim model.EntityID) bool {
	if b.world.Invulnerable(victim) {
		return false
	}
	dmg := obj.Damage
	if !dmg.CanHit() {
		return false
	}
	a, ok := b.world.Actor(victim)
	if !ok {
		return false
	}

	push := dmg.Knockback.Compute(obj.Position, a.Position)
	if !push.IsZero() {
		b.world.ApplyImpulse(victim, push)
	}
	if b.invulnerability > 0 {
		b.world.GrantInvulnerability(victim, b.invulnerability)
	}
	dmg.MarkHit()

	b.cmds.EnqueueDamage(obj.Owner, victim, dmg.Amount)

	// on_ability_hit is independent of the damage pipeline
	if obj.Child.Valid() {
		effect.DispatchHit(obj.Child, effect.Scope{
			Self:     b.world.Participant(obj.Owner),
			Other:    b.world.Participant(victim),
			Location: obj.Position,
		}, b.cmds)
	}

	if dmg.DestroyOnDamage {
		b.world.MarkObjectDead(obj.ID)
	}

	if b.hitObserver != nil {
		b.hitObserver(HitResult{
			Object:    obj.ID,
			Owner:     obj.Owner,
			Victim:    victim,
			Child:     obj.Child,
			Amount:    dmg.Amount,
			Knockback: push,
			Location:  obj.Position,
		})
	}
	return true
}
