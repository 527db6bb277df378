package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/udisondev/skirmish/internal/model"
)

func TestDescribe(t *testing.T) {
	slow := model.StatusEffect{
		Timeout:      1.5,
		Stat:         model.StatMovementSpeed,
		Modification: model.Modification{Kind: model.ModMultiply, Value: 0.5},
	}

	tests := []struct {
		name    string
		trigger Trigger
		want    string
	}{
		{
			name:    "add damage",
			trigger: OnDoDamageTrigger(AddDamage(5)),
			want:    "When dealing damage: Add 5 damage",
		},
		{
			name:    "reduce damage",
			trigger: OnReceiveDamageTrigger(AddDamage(-2.5)),
			want:    "When receiving damage: Reduce damage by 2.5",
		},
		{
			name:    "multiply damage",
			trigger: OnReceiveDamageTrigger(MultiplyDamage(0.75)),
			want:    "When receiving damage: Multiply damage by 0.75",
		},
		{
			name:    "every x damage",
			trigger: OnDamageDoneTrigger(EveryXDamage(50, Self, AffectHealth(10))),
			want:    "After dealing damage: Every 50 damage: Heal 10 on self",
		},
		{
			name:    "every x healed",
			trigger: OnDamageReceivedTrigger(EveryXHealed(20, Other, AffectHealth(-4))),
			want:    "After receiving damage: Every 20 healed: Deal 4 damage on other",
		},
		{
			name:    "inflict status on kill",
			trigger: OnKillTrigger(Regular(InflictStatus(slow), Other)),
			want:    "On kill: Inflict movement_speed x0.50 for 1.5s on other",
		},
		{
			name:    "periodic",
			trigger: PeriodicallyTrigger(3, AffectHealth(1)),
			want:    "Every 3s: Heal 1",
		},
		{
			name:    "ability hit spawn",
			trigger: OnAbilityHitTrigger(model.ChildProjectile, Regular(Spawn(SpawnSpec{Object: "explosion", Damage: 20}, AtEvent), Self)),
			want:    "On projectile hit: Spawn explosion (20 damage) at event on self",
		},
		{
			name:    "ability end",
			trigger: OnAbilityEndTrigger(model.ChildGrenade, Spawn(SpawnSpec{Object: "smoke"}, AtOwner)),
			want:    "On grenade end: Spawn smoke at owner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.trigger.Describe())
		})
	}
}

func TestDescribe_Pure(t *testing.T) {
	trig := OnDamageDoneTrigger(EveryXDamage(50, Other, InflictStatus(model.StatusEffect{
		Timeout:      2,
		Stat:         model.StatArmor,
		Modification: model.Modification{Kind: model.ModAdd, Value: -3},
	})))
	trig.Viewing.Accumulated = 17
	before := trig

	first := trig.Describe()
	second := trig.Describe()

	assert.Equal(t, first, second)
	assert.Equal(t, before, trig, "describe must not mutate the trigger")

	// Identical parameters built separately describe identically.
	twin := OnDamageDoneTrigger(EveryXDamage(50, Other, InflictStatus(model.StatusEffect{
		Timeout:      2,
		Stat:         model.StatArmor,
		Modification: model.Modification{Kind: model.ModAdd, Value: -3},
	})))
	assert.Equal(t, first, twin.Describe())
}
