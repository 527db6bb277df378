package effect

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/skirmish/internal/model"
)

// ViewingKind enumerates damage-viewing effects.
type ViewingKind uint8

const (
	ViewSpawnObjectAt ViewingKind = iota + 1
	ViewEveryXDamage
	ViewEveryXHealed
	ViewKindRegular
)

var viewingNames = []string{"", "spawn_object_at", "every_x_damage", "every_x_healed", "regular"}

func (k ViewingKind) String() string { return model.NameOf(viewingNames, int(k)) }

func (k ViewingKind) MarshalText() ([]byte, error) {
	return model.EncodeName(viewingNames, int(k), "damage-viewing effect")
}

func (k *ViewingKind) UnmarshalText(text []byte) error {
	v, err := model.DecodeName(viewingNames, text, "damage-viewing effect")
	if err != nil {
		return err
	}
	*k = ViewingKind(v)
	return nil
}

// DamageViewingEffect observes the final damage amount without changing it.
//
// The every_x variants keep Accumulated across invocations; the value lives
// in the trigger stored in the owning actor context.
type DamageViewingEffect struct {
	Kind        ViewingKind  `json:"kind" yaml:"kind"`
	Which       WhichActor   `json:"which,omitempty" yaml:"which,omitempty"`
	Spawn       *SpawnSpec   `json:"spawn,omitempty" yaml:"spawn,omitempty"`
	Threshold   float32      `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Accumulated float32      `json:"accumulated,omitempty" yaml:"accumulated,omitempty"`
	Inner       *ActorEffect `json:"inner,omitempty" yaml:"inner,omitempty"`
}

// SpawnObjectAt returns an effect spawning spec at the chosen actor.
func SpawnObjectAt(spec SpawnSpec, which WhichActor) DamageViewingEffect {
	return DamageViewingEffect{Kind: ViewSpawnObjectAt, Spawn: &spec, Which: which}
}

// EveryXDamage fires inner on which once per threshold damage observed.
func EveryXDamage(threshold float32, which WhichActor, inner ActorEffect) DamageViewingEffect {
	return DamageViewingEffect{Kind: ViewEveryXDamage, Threshold: threshold, Which: which, Inner: &inner}
}

// EveryXHealed fires inner on which once per threshold healing observed.
func EveryXHealed(threshold float32, which WhichActor, inner ActorEffect) DamageViewingEffect {
	return DamageViewingEffect{Kind: ViewEveryXHealed, Threshold: threshold, Which: which, Inner: &inner}
}

// ViewRegular fires inner on which every time damage is observed.
func ViewRegular(inner ActorEffect, which WhichActor) DamageViewingEffect {
	return DamageViewingEffect{Kind: ViewKindRegular, Which: which, Inner: &inner}
}

func (e DamageViewingEffect) Validate() error {
	switch e.Kind {
	case ViewSpawnObjectAt:
		if e.Spawn == nil || e.Spawn.Object == "" {
			return fmt.Errorf("spawn_object_at: %w", errMissingPayload)
		}
		return nil
	case ViewEveryXDamage, ViewEveryXHealed:
		if e.Threshold <= 0 {
			return fmt.Errorf("%s: threshold must be positive, got %v", e.Kind, e.Threshold)
		}
		if e.Accumulated < 0 {
			return fmt.Errorf("%s: negative accumulator %v", e.Kind, e.Accumulated)
		}
	case ViewKindRegular:
	default:
		return fmt.Errorf("unknown damage-viewing effect kind %d", e.Kind)
	}
	if e.Inner == nil {
		return fmt.Errorf("%s: %w", e.Kind, errMissingPayload)
	}
	if err := e.Inner.Validate(); err != nil {
		return fmt.Errorf("%s: %w", e.Kind, err)
	}
	return nil
}

// Observe runs the effect for the final amount. The amount is read-only;
// only Accumulated may change.
func (e *DamageViewingEffect) Observe(amount float32, s Scope, cmds Commands) {
	switch e.Kind {
	case ViewSpawnObjectAt:
		at := s.pick(e.Which)
		cmds.Spawn(SpawnRequest{Spec: *e.Spawn, Position: at.Position, Owner: s.Self.ID})
	case ViewEveryXDamage:
		e.accumulate(max(amount, 0), s, cmds)
	case ViewEveryXHealed:
		e.accumulate(max(-amount, 0), s, cmds)
	case ViewKindRegular:
		e.Inner.Apply(s.Self, s.pick(e.Which), s.Location, cmds)
	default:
		slog.Warn("unknown damage-viewing effect", "kind", e.Kind, "owner", s.Self.ID)
	}
}

// accumulate adds portion and fires Inner once per full threshold.
func (e *DamageViewingEffect) accumulate(portion float32, s Scope, cmds Commands) {
	if e.Threshold <= 0 {
		slog.Warn("every-x effect without positive threshold", "kind", e.Kind, "owner", s.Self.ID)
		return
	}
	e.Accumulated += portion
	target := s.pick(e.Which)
	for e.Accumulated >= e.Threshold {
		e.Accumulated -= e.Threshold
		e.Inner.Apply(s.Self, target, s.Location, cmds)
	}
}

func (e DamageViewingEffect) Describe() string {
	inner := "nothing"
	if e.Inner != nil {
		inner = e.Inner.Describe()
	}
	switch e.Kind {
	case ViewSpawnObjectAt:
		if e.Spawn == nil {
			return "Spawn nothing"
		}
		return "Spawn " + e.Spawn.String() + " at " + e.Which.String()
	case ViewEveryXDamage:
		return "Every " + num(e.Threshold) + " damage: " + inner + " on " + e.Which.String()
	case ViewEveryXHealed:
		return "Every " + num(e.Threshold) + " healed: " + inner + " on " + e.Which.String()
	case ViewKindRegular:
		return inner + " on " + e.Which.String()
	default:
		return "Unknown damage view"
	}
}
