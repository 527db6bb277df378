package model

import (
	"slices"
)

// Stat names a numeric attribute of an actor.
type Stat uint8

const (
	StatHealth Stat = iota + 1
	StatMaxHealth
	StatArmor
	StatDamage
	StatMovementSpeed
	StatCooldownRate
	StatAttackSpeed
	StatProjectileSpeed
	StatRegeneration
)

var statNames = []string{
	"",
	"health",
	"max_health",
	"armor",
	"damage",
	"movement_speed",
	"cooldown_rate",
	"attack_speed",
	"projectile_speed",
	"regeneration",
}

func (s Stat) String() string { return NameOf(statNames, int(s)) }

// Valid reports whether s is a known stat.
func (s Stat) Valid() bool {
	return s > 0 && int(s) < len(statNames)
}

func (s Stat) MarshalText() ([]byte, error) { return EncodeName(statNames, int(s), "stat") }

func (s *Stat) UnmarshalText(text []byte) error {
	v, err := DecodeName(statNames, text, "stat")
	if err != nil {
		return err
	}
	*s = Stat(v)
	return nil
}

// Stats maps stats to values. Keys are unique; a stat does not exist
// until it has been written.
type Stats map[Stat]float32

// Get returns the value of stat and whether it has been written.
func (s Stats) Get(stat Stat) (float32, bool) {
	v, ok := s[stat]
	return v, ok
}

// Set writes stat, creating it if needed.
func (s Stats) Set(stat Stat, v float32) {
	s[stat] = v
}

// Add changes an existing stat by delta and returns the new value.
// Returns false if stat was never written.
func (s Stats) Add(stat Stat, delta float32) (float32, bool) {
	v, ok := s[stat]
	if !ok {
		return 0, false
	}
	v += delta
	s[stat] = v
	return v, true
}

// Clear removes every stat.
func (s Stats) Clear() {
	clear(s)
}

// Clone returns an independent copy.
func (s Stats) Clone() Stats {
	out := make(Stats, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Keys returns the written stats in ascending order.
func (s Stats) Keys() []Stat {
	keys := make([]Stat, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
