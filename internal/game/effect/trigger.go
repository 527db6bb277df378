package effect

import (
	"errors"
	"fmt"

	"github.com/udisondev/skirmish/internal/model"
)

// TriggerKind binds a game moment to an effect family.
type TriggerKind uint8

const (
	OnKill TriggerKind = iota + 1
	OnDeath
	Periodically
	OnDoDamage
	OnDamageDone
	OnReceiveDamage
	OnDamageReceived
	OnAbilityCast
	OnAbilityHit
	OnAbilityEnd
)

var triggerNames = []string{
	"",
	"on_kill",
	"on_death",
	"periodically",
	"on_do_damage",
	"on_damage_done",
	"on_receive_damage",
	"on_damage_received",
	"on_ability_cast",
	"on_ability_hit",
	"on_ability_end",
}

func (k TriggerKind) String() string { return model.NameOf(triggerNames, int(k)) }

func (k TriggerKind) MarshalText() ([]byte, error) {
	return model.EncodeName(triggerNames, int(k), "trigger")
}

func (k *TriggerKind) UnmarshalText(text []byte) error {
	v, err := model.DecodeName(triggerNames, text, "trigger")
	if err != nil {
		return err
	}
	*k = TriggerKind(v)
	return nil
}

// Family is the effect payload family a trigger slot accepts.
type Family uint8

const (
	FamilyActor Family = iota + 1
	FamilyChanging
	FamilyViewing
	FamilyWrapped
)

// Family returns the payload family required by k.
func (k TriggerKind) Family() Family {
	switch k {
	case Periodically, OnAbilityCast, OnAbilityEnd:
		return FamilyActor
	case OnDoDamage, OnReceiveDamage:
		return FamilyChanging
	case OnDamageDone, OnDamageReceived:
		return FamilyViewing
	case OnKill, OnDeath, OnAbilityHit:
		return FamilyWrapped
	default:
		return 0
	}
}

func (k TriggerKind) keyedByAbility() bool {
	return k == OnAbilityCast || k == OnAbilityHit || k == OnAbilityEnd
}

var (
	// ErrFamilyMismatch is returned when a trigger carries a payload of the wrong family.
	ErrFamilyMismatch = errors.New("payload family does not match trigger")
	// ErrInvalidTrigger is returned for malformed trigger parameters.
	ErrInvalidTrigger = errors.New("invalid trigger")
)

// Trigger is a live rule bound to an actor context.
// Only the payload of Kind.Family() is meaningful.
// Values are copied freely: the dispatcher snapshots them by value and
// writes runtime state back by ID.
type Trigger struct {
	ID       uint64
	Kind     TriggerKind
	Period   float32
	Ability  model.ChildType
	Actor    ActorEffect
	Changing DamageChangingEffect
	Viewing  DamageViewingEffect
	Wrapped  WrappedEffect

	elapsed float32 // periodically: time since the last firing
}

// OnKillTrigger fires on the killer when its last damage killed an actor.
func OnKillTrigger(e WrappedEffect) Trigger {
	return Trigger{Kind: OnKill, Wrapped: e}
}

// OnDeathTrigger fires on the dying actor.
func OnDeathTrigger(e WrappedEffect) Trigger {
	return Trigger{Kind: OnDeath, Wrapped: e}
}

// PeriodicallyTrigger fires e on the owner every period seconds.
func PeriodicallyTrigger(period float32, e ActorEffect) Trigger {
	return Trigger{Kind: Periodically, Period: period, Actor: e}
}

// OnDoDamageTrigger changes damage the owner deals.
func OnDoDamageTrigger(e DamageChangingEffect) Trigger {
	return Trigger{Kind: OnDoDamage, Changing: e}
}

// OnReceiveDamageTrigger changes damage the owner receives.
func OnReceiveDamageTrigger(e DamageChangingEffect) Trigger {
	return Trigger{Kind: OnReceiveDamage, Changing: e}
}

// OnDamageDoneTrigger observes damage the owner dealt.
func OnDamageDoneTrigger(e DamageViewingEffect) Trigger {
	return Trigger{Kind: OnDamageDone, Viewing: e}
}

// OnDamageReceivedTrigger observes damage the owner received.
func OnDamageReceivedTrigger(e DamageViewingEffect) Trigger {
	return Trigger{Kind: OnDamageReceived, Viewing: e}
}

// OnAbilityCastTrigger fires when the owner casts an ability of kind ability.
func OnAbilityCastTrigger(ability model.ChildType, e ActorEffect) Trigger {
	return Trigger{Kind: OnAbilityCast, Ability: ability, Actor: e}
}

// OnAbilityHitTrigger fires when an ability object of the owner hits an actor.
func OnAbilityHitTrigger(ability model.ChildType, e WrappedEffect) Trigger {
	return Trigger{Kind: OnAbilityHit, Ability: ability, Wrapped: e}
}

// OnAbilityEndTrigger fires when an ability object of the owner is destroyed.
func OnAbilityEndTrigger(ability model.ChildType, e ActorEffect) Trigger {
	return Trigger{Kind: OnAbilityEnd, Ability: ability, Actor: e}
}

// Validate checks trigger parameters and the payload of its family.
func (t Trigger) Validate() error {
	if t.Kind.Family() == 0 {
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidTrigger, t.Kind)
	}
	if t.Kind == Periodically && t.Period <= 0 {
		return fmt.Errorf("%w: %s period must be positive, got %v", ErrInvalidTrigger, t.Kind, t.Period)
	}
	if t.Kind.keyedByAbility() && !t.Ability.Valid() {
		return fmt.Errorf("%w: %s needs an ability, got %d", ErrInvalidTrigger, t.Kind, t.Ability)
	}

	var err error
	switch t.Kind.Family() {
	case FamilyActor:
		err = t.Actor.Validate()
	case FamilyChanging:
		err = t.Changing.Validate()
	case FamilyViewing:
		err = t.Viewing.Validate()
	case FamilyWrapped:
		err = t.Wrapped.Validate()
	}
	if err != nil {
		return fmt.Errorf("%s: %w", t.Kind, err)
	}
	return nil
}

// matches reports whether t is selected by kind and, for ability
// triggers, by ability.
func (t *Trigger) matches(kind TriggerKind, ability model.ChildType) bool {
	if t.Kind != kind {
		return false
	}
	if kind.keyedByAbility() {
		return t.Ability == ability
	}
	return true
}

// Describe returns a human-readable summary for UI and tooling. Pure.
func (t Trigger) Describe() string {
	var payload string
	switch t.Kind.Family() {
	case FamilyActor:
		payload = t.Actor.Describe()
	case FamilyChanging:
		payload = t.Changing.Describe()
	case FamilyViewing:
		payload = t.Viewing.Describe()
	case FamilyWrapped:
		payload = t.Wrapped.Describe()
	default:
		return "Unknown trigger"
	}

	switch t.Kind {
	case OnKill:
		return "On kill: " + payload
	case OnDeath:
		return "On death: " + payload
	case Periodically:
		return "Every " + num(t.Period) + "s: " + payload
	case OnDoDamage:
		return "When dealing damage: " + payload
	case OnDamageDone:
		return "After dealing damage: " + payload
	case OnReceiveDamage:
		return "When receiving damage: " + payload
	case OnDamageReceived:
		return "After receiving damage: " + payload
	case OnAbilityCast:
		return "On " + t.Ability.String() + " cast: " + payload
	case OnAbilityHit:
		return "On " + t.Ability.String() + " hit: " + payload
	default:
		return "On " + t.Ability.String() + " end: " + payload
	}
}

// TriggerDef is the storage form of a trigger (rule-set assets, database,
// wire). Exactly the payload matching Kind must be set.
type TriggerDef struct {
	Kind     TriggerKind           `json:"kind" yaml:"kind"`
	Period   float32               `json:"period,omitempty" yaml:"period,omitempty"`
	Ability  model.ChildType       `json:"ability,omitempty" yaml:"ability,omitempty"`
	Actor    *ActorEffect          `json:"actor,omitempty" yaml:"actor,omitempty"`
	Changing *DamageChangingEffect `json:"changing,omitempty" yaml:"changing,omitempty"`
	Viewing  *DamageViewingEffect  `json:"viewing,omitempty" yaml:"viewing,omitempty"`
	Wrapped  *WrappedEffect        `json:"wrapped,omitempty" yaml:"wrapped,omitempty"`
}

// Instantiate converts the storage form into a live trigger.
// The payload must match the slot's family; any other payload is an error.
func (d TriggerDef) Instantiate() (Trigger, error) {
	t := Trigger{Kind: d.Kind, Period: d.Period, Ability: d.Ability}

	family := d.Kind.Family()
	set := map[Family]bool{
		FamilyActor:    d.Actor != nil,
		FamilyChanging: d.Changing != nil,
		FamilyViewing:  d.Viewing != nil,
		FamilyWrapped:  d.Wrapped != nil,
	}
	for f, present := range set {
		if present && f != family {
			return Trigger{}, fmt.Errorf("%s: %w", d.Kind, ErrFamilyMismatch)
		}
	}
	if family != 0 && !set[family] {
		return Trigger{}, fmt.Errorf("%s: %w", d.Kind, errMissingPayload)
	}

	switch family {
	case FamilyActor:
		t.Actor = *d.Actor
	case FamilyChanging:
		t.Changing = *d.Changing
	case FamilyViewing:
		t.Viewing = *d.Viewing
	case FamilyWrapped:
		t.Wrapped = *d.Wrapped
	}

	if err := t.Validate(); err != nil {
		return Trigger{}, err
	}
	return t, nil
}

// Def returns the storage form of t. Runtime state other than the
// every-x accumulator is not carried.
func (t Trigger) Def() TriggerDef {
	d := TriggerDef{Kind: t.Kind, Period: t.Period, Ability: t.Ability}
	switch t.Kind.Family() {
	case FamilyActor:
		e := t.Actor
		d.Actor = &e
	case FamilyChanging:
		e := t.Changing
		d.Changing = &e
	case FamilyViewing:
		e := t.Viewing
		d.Viewing = &e
	case FamilyWrapped:
		e := t.Wrapped
		d.Wrapped = &e
	}
	return d
}

// InstantiateAll converts a list of definitions, failing on the first bad one.
func InstantiateAll(defs []TriggerDef) ([]Trigger, error) {
	out := make([]Trigger, 0, len(defs))
	for i, d := range defs {
		t, err := d.Instantiate()
		if err != nil {
			return nil, fmt.Errorf("trigger %d: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}
