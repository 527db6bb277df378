package model

import (
	"fmt"
	"math"
	"strconv"
)

// ModificationKind defines how a status effect changes a stat.
type ModificationKind uint8

const (
	ModMultiply ModificationKind = iota + 1 // value × factor
	ModAdd                                  // value + amount
	ModExponent                             // value ^ power
)

var modificationNames = []string{"", "multiply", "add", "exponent"}

func (k ModificationKind) String() string { return NameOf(modificationNames, int(k)) }

func (k ModificationKind) MarshalText() ([]byte, error) {
	return EncodeName(modificationNames, int(k), "modification")
}

func (k *ModificationKind) UnmarshalText(text []byte) error {
	v, err := DecodeName(modificationNames, text, "modification")
	if err != nil {
		return err
	}
	*k = ModificationKind(v)
	return nil
}

// Modification is a single stat change carried by a status effect.
type Modification struct {
	Kind  ModificationKind `json:"kind" yaml:"kind"`
	Value float32          `json:"value" yaml:"value"`
}

// Apply returns v changed by the modification.
func (m Modification) Apply(v float32) float32 {
	switch m.Kind {
	case ModMultiply:
		return v * m.Value
	case ModAdd:
		return v + m.Value
	case ModExponent:
		return float32(math.Pow(float64(v), float64(m.Value)))
	default:
		return v
	}
}

func (m Modification) String() string {
	value := strconv.FormatFloat(float64(m.Value), 'f', 2, 32)
	switch m.Kind {
	case ModMultiply:
		return "x" + value
	case ModAdd:
		if m.Value >= 0 {
			return "+" + value
		}
		return value
	case ModExponent:
		return "^" + value
	default:
		return "?" + value
	}
}

// StatusEffect is a standing modifier on one stat of an actor.
// Timeout is in seconds; zero means the effect never expires.
type StatusEffect struct {
	Timeout      float32      `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Stat         Stat         `json:"stat" yaml:"stat"`
	Modification Modification `json:"modification" yaml:"modification"`
}

// Permanent reports whether the effect has no timeout.
func (s StatusEffect) Permanent() bool {
	return s.Timeout <= 0
}

// Tick lowers the remaining timeout by dt seconds.
// Returns true while the effect is still active.
func (s *StatusEffect) Tick(dt float32) bool {
	if s.Permanent() {
		return true
	}
	s.Timeout -= dt
	return s.Timeout > 0
}

// Validate checks that the effect names a known stat and modification.
func (s StatusEffect) Validate() error {
	if !s.Stat.Valid() {
		return fmt.Errorf("status effect: invalid stat %d", s.Stat)
	}
	switch s.Modification.Kind {
	case ModMultiply, ModAdd, ModExponent:
	default:
		return fmt.Errorf("status effect: invalid modification %d", s.Modification.Kind)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("status effect: negative timeout %v", s.Timeout)
	}
	return nil
}

func (s StatusEffect) String() string {
	out := s.Stat.String() + " " + s.Modification.String()
	if !s.Permanent() {
		out += " for " + strconv.FormatFloat(float64(s.Timeout), 'f', 1, 32) + "s"
	}
	return out
}
