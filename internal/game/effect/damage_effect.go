package effect

import (
	"fmt"

	"github.com/udisondev/skirmish/internal/model"
)

// ChangingKind enumerates damage-changing effects.
type ChangingKind uint8

const (
	ChangeMultiply ChangingKind = iota + 1
	ChangeAdd
)

var changingNames = []string{"", "multiply_damage", "add_damage"}

func (k ChangingKind) String() string { return model.NameOf(changingNames, int(k)) }

func (k ChangingKind) MarshalText() ([]byte, error) {
	return model.EncodeName(changingNames, int(k), "damage-changing effect")
}

func (k *ChangingKind) UnmarshalText(text []byte) error {
	v, err := model.DecodeName(changingNames, text, "damage-changing effect")
	if err != nil {
		return err
	}
	*k = ChangingKind(v)
	return nil
}

// DamageChangingEffect transforms the damage amount in flight.
type DamageChangingEffect struct {
	Kind  ChangingKind `json:"kind" yaml:"kind"`
	Value float32      `json:"value" yaml:"value"`
}

// MultiplyDamage returns an effect scaling damage by factor.
func MultiplyDamage(factor float32) DamageChangingEffect {
	return DamageChangingEffect{Kind: ChangeMultiply, Value: factor}
}

// AddDamage returns an effect adding amount to damage.
func AddDamage(amount float32) DamageChangingEffect {
	return DamageChangingEffect{Kind: ChangeAdd, Value: amount}
}

func (e DamageChangingEffect) Validate() error {
	switch e.Kind {
	case ChangeMultiply, ChangeAdd:
		return nil
	default:
		return fmt.Errorf("unknown damage-changing effect kind %d", e.Kind)
	}
}

// Process returns the new damage amount.
func (e DamageChangingEffect) Process(amount float32) float32 {
	switch e.Kind {
	case ChangeMultiply:
		return amount * e.Value
	case ChangeAdd:
		return amount + e.Value
	default:
		return amount
	}
}

func (e DamageChangingEffect) Describe() string {
	switch e.Kind {
	case ChangeMultiply:
		return "Multiply damage by " + num(e.Value)
	case ChangeAdd:
		if e.Value < 0 {
			return "Reduce damage by " + num(-e.Value)
		}
		return "Add " + num(e.Value) + " damage"
	default:
		return "Unknown damage change"
	}
}
