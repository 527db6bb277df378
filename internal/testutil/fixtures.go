package testutil

import (
	"github.com/udisondev/skirmish/internal/data"
	"github.com/udisondev/skirmish/internal/game/effect"
	"github.com/udisondev/skirmish/internal/model"
)

// RuleSetFixture строит небольшой rule set для тестов.
// Каждый вызов возвращает независимую копию.
func RuleSetFixture(name string, health float32, triggers ...effect.Trigger) *data.RuleSet {
	rs := &data.RuleSet{
		Name:        name,
		Description: "fixture " + name,
		Stats: []data.StatEntry{
			{Stat: model.StatHealth, Value: health},
			{Stat: model.StatMaxHealth, Value: health},
		},
		Abilities: []data.AbilitySpec{{
			Name: "poke",
			Spawn: effect.SpawnSpec{
				Object:    name + "_poke",
				Child:     model.ChildMelee,
				Damage:    5,
				Radius:    1,
				Lifetime:  0.1,
				SingleUse: true,
			},
		}},
	}
	for _, t := range triggers {
		rs.Triggers = append(rs.Triggers, t.Def())
	}
	return rs
}
