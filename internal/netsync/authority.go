package netsync

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/udisondev/skirmish/internal/data"
	"github.com/udisondev/skirmish/internal/game/effect"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/world"
)

var (
	// ErrMalformedRequest is returned for requests that do not match
	// anything currently offered to the client.
	ErrMalformedRequest = errors.New("malformed request")
	// ErrOnCooldown is returned when an ability is cast again too early.
	ErrOnCooldown = errors.New("ability on cooldown")
)

// IDMapper is the network layer's id-mapping primitive.
type IDMapper interface {
	MapID(m IDMapping)
}

// Caster spawns ability objects (combat.Bridge).
type Caster interface {
	Cast(owner model.EntityID, spec effect.SpawnSpec, direction model.Vec2) (model.EntityID, error)
}

// Catalog lists abilities an actor may use (loadout.Manager).
type Catalog interface {
	Ability(actor model.EntityID, name string) (data.AbilitySpec, error)
}

type cooldownKey struct {
	actor   model.EntityID
	ability string
}

// Authority validates ability requests and runs them on the
// authoritative side. Owned by the simulation tick.
type Authority struct {
	caster  Caster
	catalog Catalog

	now   float64 // seconds since start
	ready map[cooldownKey]float64
}

// NewAuthority creates an authority.
func NewAuthority(caster Caster, catalog Catalog) *Authority {
	return &Authority{
		caster:  caster,
		catalog: catalog,
		ready:   make(map[cooldownKey]float64),
	}
}

// Advance moves the cooldown clock forward.
func (a *Authority) Advance(dt float32) {
	a.now += float64(dt)
}

// Handle validates req for the session's actor, casts the ability and
// maps predicted ids. A rejected request changes nothing.
func (a *Authority) Handle(owner model.EntityID, req AbilityRequest, mapper IDMapper) (model.EntityID, error) {
	if err := a.validate(owner, req); err != nil {
		return model.InvalidEntity, err
	}

	spec, err := a.catalog.Ability(owner, req.Ability)
	if err != nil {
		return model.InvalidEntity, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}

	key := cooldownKey{actor: owner, ability: req.Ability}
	if readyAt, ok := a.ready[key]; ok && a.now < readyAt {
		return model.InvalidEntity, fmt.Errorf("%s %q: %w", owner, req.Ability, ErrOnCooldown)
	}

	id, err := a.caster.Cast(owner, spec.Spawn, req.Direction)
	if err != nil {
		return model.InvalidEntity, err
	}
	if spec.Cooldown > 0 {
		a.ready[key] = a.now + float64(spec.Cooldown)
	}

	for _, predicted := range req.PredictedIDs {
		mapper.MapID(IDMapping{Seq: req.Seq, Predicted: predicted, Authoritative: id})
	}
	slog.Debug("ability request accepted", "actor", owner, "ability", req.Ability, "object", id)
	return id, nil
}

// Forget drops cooldown state of a removed actor.
func (a *Authority) Forget(actor model.EntityID) {
	for key := range a.ready {
		if key.actor == actor {
			delete(a.ready, key)
		}
	}
}

func (a *Authority) validate(owner model.EntityID, req AbilityRequest) error {
	switch {
	case !owner.Valid():
		return fmt.Errorf("%w: session has no actor", ErrMalformedRequest)
	case req.Actor != owner:
		return fmt.Errorf("%w: actor %s is not %s", ErrMalformedRequest, req.Actor, owner)
	case req.Ability == "":
		return fmt.Errorf("%w: empty ability", ErrMalformedRequest)
	case !finite(req.Direction):
		return fmt.Errorf("%w: direction not finite", ErrMalformedRequest)
	case len(req.PredictedIDs) > 1:
		return fmt.Errorf("%w: %d predicted ids for one object", ErrMalformedRequest, len(req.PredictedIDs))
	}
	for _, id := range req.PredictedIDs {
		if !world.IsPredictedID(id) {
			return fmt.Errorf("%w: %s is not a predicted id", ErrMalformedRequest, id)
		}
	}
	return nil
}

func finite(v model.Vec2) bool {
	x, y := float64(v.X), float64(v.Y)
	return !math.IsNaN(x) && !math.IsInf(x, 0) && !math.IsNaN(y) && !math.IsInf(y, 0)
}
