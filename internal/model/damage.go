package model

import "strconv"

// DamageEvent asks the resolver to change the victim's health.
// Negative amounts heal. Seq is assigned at enqueue time and fixes the
// processing order inside a resolution pass.
type DamageEvent struct {
	Seq        uint64
	Instigator EntityID
	Victim     EntityID
	Amount     float32
}

// IsSelf reports whether the instigator damages itself.
func (e DamageEvent) IsSelf() bool {
	return e.Instigator == e.Victim
}

// IsHeal reports whether the event restores health.
func (e DamageEvent) IsHeal() bool {
	return e.Amount < 0
}

// KnockbackKind selects how a hit pushes its victim.
type KnockbackKind uint8

const (
	KnockbackNone KnockbackKind = iota
	KnockbackImpulse
	KnockbackRepulsion
	KnockbackAttraction
	KnockbackRepulsionFromSelf
)

var knockbackNames = []string{"none", "impulse", "repulsion", "attraction", "repulsion_from_self"}

func (k KnockbackKind) String() string { return NameOf(knockbackNames, int(k)) }

func (k KnockbackKind) MarshalText() ([]byte, error) {
	return EncodeName(knockbackNames, int(k), "knockback")
}

func (k *KnockbackKind) UnmarshalText(text []byte) error {
	v, err := DecodeName(knockbackNames, text, "knockback")
	if err != nil {
		return err
	}
	*k = KnockbackKind(v)
	return nil
}

// Knockback describes the push applied to a victim on hit.
//
//   - impulse: fixed Vector
//   - repulsion / attraction: away from / toward Point, scaled by Strength
//   - repulsion_from_self: away from the hitting object's position
type Knockback struct {
	Kind     KnockbackKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Vector   Vec2          `json:"vector,omitempty" yaml:"vector,omitempty"`
	Point    Vec2          `json:"point,omitempty" yaml:"point,omitempty"`
	Strength float32       `json:"strength,omitempty" yaml:"strength,omitempty"`
}

// Compute returns the push for a victim at victimPos hit by an object at objectPos.
func (k Knockback) Compute(objectPos, victimPos Vec2) Vec2 {
	switch k.Kind {
	case KnockbackImpulse:
		return k.Vector
	case KnockbackRepulsion:
		return victimPos.Sub(k.Point).Normalize().Scale(k.Strength)
	case KnockbackAttraction:
		return k.Point.Sub(victimPos).Normalize().Scale(k.Strength)
	case KnockbackRepulsionFromSelf:
		return victimPos.Sub(objectPos).Normalize().Scale(k.Strength)
	default:
		return Vec2{}
	}
}

func (k Knockback) String() string {
	strength := strconv.FormatFloat(float64(k.Strength), 'f', 1, 32)
	switch k.Kind {
	case KnockbackImpulse:
		return "impulse (" + strconv.FormatFloat(float64(k.Vector.X), 'f', 1, 32) + ", " +
			strconv.FormatFloat(float64(k.Vector.Y), 'f', 1, 32) + ")"
	case KnockbackRepulsion, KnockbackAttraction, KnockbackRepulsionFromSelf:
		return k.Kind.String() + " " + strength
	default:
		return "none"
	}
}

// DamageComponent is carried by ability objects (bullets, swings, explosions), not actors.
type DamageComponent struct {
	Amount          float32
	DestroyOnDamage bool
	DealDamageOnce  bool
	Knockback       Knockback
	DidDamage       bool // latch for single-use objects
}

// CanHit reports whether the object may still deal damage.
func (d *DamageComponent) CanHit() bool {
	return !(d.DealDamageOnce && d.DidDamage)
}

// MarkHit latches DidDamage for single-use objects.
func (d *DamageComponent) MarkHit() {
	if d.DealDamageOnce {
		d.DidDamage = true
	}
}
