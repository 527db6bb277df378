package data

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/skirmish/internal/game/effect"
	"github.com/udisondev/skirmish/internal/model"
)

// ErrInvalidRuleSet is returned when an asset fails validation.
var ErrInvalidRuleSet = errors.New("invalid rule set")

// StatEntry is one base stat of a rule set.
type StatEntry struct {
	Stat  model.Stat `json:"stat" yaml:"stat"`
	Value float32    `json:"value" yaml:"value"`
}

// AbilitySpec is one ability a class offers: the object it spawns.
type AbilitySpec struct {
	Name     string           `json:"name" yaml:"name"`
	Spawn    effect.SpawnSpec `json:"spawn" yaml:"spawn"`
	Cooldown float32          `json:"cooldown,omitempty" yaml:"cooldown,omitempty"`
}

// RuleSet is a named class asset: base stats, triggers and abilities.
// Loaded by name from a Store; copied verbatim into an actor context on
// class assignment.
type RuleSet struct {
	Name        string              `json:"name" yaml:"name" jsonschema:"required,pattern=^[a-z0-9_]+$,description=Class name and store key"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Stats       []StatEntry         `json:"stats,omitempty" yaml:"stats,omitempty"`
	Triggers    []effect.TriggerDef `json:"triggers,omitempty" yaml:"triggers,omitempty"`
	Abilities   []AbilitySpec       `json:"abilities,omitempty" yaml:"abilities,omitempty"`
}

// ParseRuleSet decodes a YAML asset and validates it.
// An empty name in the document is filled from name.
func ParseRuleSet(name string, raw []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(raw, &rs); err != nil {
		return nil, fmt.Errorf("decoding rule set %q: %w", name, err)
	}
	if rs.Name == "" {
		rs.Name = name
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// Validate checks every stat, trigger and ability of the asset.
func (r *RuleSet) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidRuleSet)
	}
	for i, s := range r.Stats {
		if !s.Stat.Valid() {
			return fmt.Errorf("%w: %s: stat %d unknown", ErrInvalidRuleSet, r.Name, i)
		}
	}
	if _, err := effect.InstantiateAll(r.Triggers); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidRuleSet, r.Name, err)
	}
	seen := make(map[string]bool, len(r.Abilities))
	for _, a := range r.Abilities {
		if a.Name == "" || seen[a.Name] {
			return fmt.Errorf("%w: %s: ability name %q empty or duplicated", ErrInvalidRuleSet, r.Name, a.Name)
		}
		seen[a.Name] = true
		if a.Spawn.Object == "" {
			return fmt.Errorf("%w: %s: ability %q spawns nothing", ErrInvalidRuleSet, r.Name, a.Name)
		}
	}
	return nil
}

// BaseStats returns the stat entries as a fresh map. Later entries win.
func (r *RuleSet) BaseStats() model.Stats {
	out := make(model.Stats, len(r.Stats))
	for _, s := range r.Stats {
		out[s.Stat] = s.Value
	}
	return out
}

// NewTriggers instantiates the asset's triggers in authored order.
// Each call returns independent triggers with fresh runtime state.
func (r *RuleSet) NewTriggers() ([]effect.Trigger, error) {
	return effect.InstantiateAll(r.Triggers)
}

// Ability looks up an ability by name.
func (r *RuleSet) Ability(name string) (AbilitySpec, bool) {
	for _, a := range r.Abilities {
		if a.Name == name {
			return a, true
		}
	}
	return AbilitySpec{}, false
}
