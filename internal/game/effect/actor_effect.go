package effect

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/skirmish/internal/model"
)

// ActorEffectKind enumerates effects that act directly on an actor.
type ActorEffectKind uint8

const (
	ActorInflictStatus ActorEffectKind = iota + 1
	ActorSpawn
	ActorAffectHealth
)

var actorEffectNames = []string{"", "inflict_status", "spawn", "affect_health"}

func (k ActorEffectKind) String() string { return model.NameOf(actorEffectNames, int(k)) }

func (k ActorEffectKind) MarshalText() ([]byte, error) {
	return model.EncodeName(actorEffectNames, int(k), "actor effect")
}

func (k *ActorEffectKind) UnmarshalText(text []byte) error {
	v, err := model.DecodeName(actorEffectNames, text, "actor effect")
	if err != nil {
		return err
	}
	*k = ActorEffectKind(v)
	return nil
}

// ActorEffect inflicts a status, spawns an object or changes health.
// Only the fields of Kind are meaningful. Status and Spawn are shared
// between copies and must not be mutated after construction.
//
// Amount is a health delta: positive heals, negative damages.
type ActorEffect struct {
	Kind   ActorEffectKind     `json:"kind" yaml:"kind"`
	Status *model.StatusEffect `json:"status,omitempty" yaml:"status,omitempty"`
	Spawn  *SpawnSpec          `json:"spawn,omitempty" yaml:"spawn,omitempty"`
	At     SpawnLocation       `json:"at,omitempty" yaml:"at,omitempty"`
	Amount float32             `json:"amount,omitempty" yaml:"amount,omitempty"`
}

// InflictStatus returns an effect adding se to the target's status effects.
func InflictStatus(se model.StatusEffect) ActorEffect {
	return ActorEffect{Kind: ActorInflictStatus, Status: &se}
}

// Spawn returns an effect requesting spec at loc.
func Spawn(spec SpawnSpec, loc SpawnLocation) ActorEffect {
	return ActorEffect{Kind: ActorSpawn, Spawn: &spec, At: loc}
}

// AffectHealth returns an effect changing the target's health by delta.
func AffectHealth(delta float32) ActorEffect {
	return ActorEffect{Kind: ActorAffectHealth, Amount: delta}
}

var errMissingPayload = errors.New("missing payload")

// Validate checks that the fields required by Kind are present.
func (e ActorEffect) Validate() error {
	switch e.Kind {
	case ActorInflictStatus:
		if e.Status == nil {
			return fmt.Errorf("inflict_status: %w", errMissingPayload)
		}
		if err := e.Status.Validate(); err != nil {
			return fmt.Errorf("inflict_status: %w", err)
		}
	case ActorSpawn:
		if e.Spawn == nil || e.Spawn.Object == "" {
			return fmt.Errorf("spawn: %w", errMissingPayload)
		}
	case ActorAffectHealth:
	default:
		return fmt.Errorf("unknown actor effect kind %d", e.Kind)
	}
	return nil
}

// Apply runs the effect for owner against target. at is the event location.
func (e ActorEffect) Apply(owner, target Participant, at model.Vec2, cmds Commands) {
	switch e.Kind {
	case ActorInflictStatus:
		if !target.Present() {
			slog.Warn("inflict status: target missing", "owner", owner.ID, "target", target.ID)
			return
		}
		target.Ctx.AddStatusEffect(*e.Status)
	case ActorSpawn:
		pos := at
		switch e.At {
		case AtOwner:
			pos = owner.Position
		case AtTarget:
			pos = target.Position
		}
		cmds.Spawn(SpawnRequest{Spec: *e.Spawn, Position: pos, Owner: owner.ID})
	case ActorAffectHealth:
		if !target.ID.Valid() {
			slog.Warn("affect health: target missing", "owner", owner.ID)
			return
		}
		cmds.EnqueueDamage(owner.ID, target.ID, -e.Amount)
	default:
		slog.Warn("unknown actor effect", "kind", e.Kind, "owner", owner.ID)
	}
}

// Describe returns a human-readable summary. Pure.
func (e ActorEffect) Describe() string {
	switch e.Kind {
	case ActorInflictStatus:
		if e.Status == nil {
			return "Inflict nothing"
		}
		return "Inflict " + e.Status.String()
	case ActorSpawn:
		if e.Spawn == nil {
			return "Spawn nothing"
		}
		return "Spawn " + e.Spawn.String() + " at " + e.At.String()
	case ActorAffectHealth:
		if e.Amount >= 0 {
			return "Heal " + num(e.Amount)
		}
		return "Deal " + num(-e.Amount) + " damage"
	default:
		return "Unknown effect"
	}
}
