package effect

import (
	"strconv"

	"github.com/udisondev/skirmish/internal/model"
)

// WhichActor picks the participant an effect acts on.
// Self is the trigger owner; Other is the counterpart of the moment
// (victim or instigator, kill victim, killer, hit actor).
type WhichActor uint8

const (
	Self WhichActor = iota
	Other
)

var whichNames = []string{"self", "other"}

func (w WhichActor) String() string { return model.NameOf(whichNames, int(w)) }

func (w WhichActor) MarshalText() ([]byte, error) {
	return model.EncodeName(whichNames, int(w), "actor selector")
}

func (w *WhichActor) UnmarshalText(text []byte) error {
	v, err := model.DecodeName(whichNames, text, "actor selector")
	if err != nil {
		return err
	}
	*w = WhichActor(v)
	return nil
}

// SpawnLocation picks where a spawned object appears.
type SpawnLocation uint8

const (
	AtOwner  SpawnLocation = iota // trigger owner position
	AtTarget                      // position of the actor the effect acts on
	AtEvent                       // where the moment happened (hit point, death position)
)

var spawnLocationNames = []string{"owner", "target", "event"}

func (l SpawnLocation) String() string { return model.NameOf(spawnLocationNames, int(l)) }

func (l SpawnLocation) MarshalText() ([]byte, error) {
	return model.EncodeName(spawnLocationNames, int(l), "spawn location")
}

func (l *SpawnLocation) UnmarshalText(text []byte) error {
	v, err := model.DecodeName(spawnLocationNames, text, "spawn location")
	if err != nil {
		return err
	}
	*l = SpawnLocation(v)
	return nil
}

// SpawnSpec describes an object an effect asks the world to create.
// A non-zero Child links the object back to its owner as an ability child.
type SpawnSpec struct {
	Object          string          `json:"object" yaml:"object"`
	Child           model.ChildType `json:"child,omitempty" yaml:"child,omitempty"`
	Damage          float32         `json:"damage,omitempty" yaml:"damage,omitempty"`
	Radius          float32         `json:"radius,omitempty" yaml:"radius,omitempty"`
	Lifetime        float32         `json:"lifetime,omitempty" yaml:"lifetime,omitempty"`
	Speed           float32         `json:"speed,omitempty" yaml:"speed,omitempty"`
	SingleUse       bool            `json:"single_use,omitempty" yaml:"single_use,omitempty"`
	DestroyOnDamage bool            `json:"destroy_on_damage,omitempty" yaml:"destroy_on_damage,omitempty"`
	Knockback       model.Knockback `json:"knockback,omitempty" yaml:"knockback,omitempty"`
}

func (s SpawnSpec) String() string {
	out := s.Object
	if s.Damage != 0 {
		out += " (" + num(s.Damage) + " damage)"
	}
	return out
}

// DamageComponent builds the damage component for the spawned object.
// Returns nil when the object deals no damage.
func (s SpawnSpec) DamageComponent() *model.DamageComponent {
	if s.Damage == 0 {
		return nil
	}
	return &model.DamageComponent{
		Amount:          s.Damage,
		DestroyOnDamage: s.DestroyOnDamage,
		DealDamageOnce:  s.SingleUse,
		Knockback:       s.Knockback,
	}
}

// num formats a number for descriptions: shortest exact representation.
func num(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}
