package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/skirmish/internal/model"
)

func TestChangeDamage_Order(t *testing.T) {
	tests := []struct {
		name    string
		effects []DamageChangingEffect
		base    float32
		want    float32
	}{
		{
			name:    "additions sum in order",
			effects: []DamageChangingEffect{AddDamage(5), AddDamage(3), AddDamage(-2)},
			base:    10,
			want:    16,
		},
		{
			name:    "multiplications take the product",
			effects: []DamageChangingEffect{MultiplyDamage(2), MultiplyDamage(1.5), MultiplyDamage(0.5)},
			base:    10,
			want:    15,
		},
		{
			name:    "add then multiply",
			effects: []DamageChangingEffect{AddDamage(5), MultiplyDamage(2)},
			base:    10,
			want:    30,
		},
		{
			name:    "multiply then add",
			effects: []DamageChangingEffect{MultiplyDamage(2), AddDamage(5)},
			base:    10,
			want:    25,
		},
		{
			name: "no triggers keeps the amount",
			base: 7,
			want: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewContext()
			for _, e := range tt.effects {
				ctx.AddTrigger(OnDoDamageTrigger(e))
			}
			// Receive-side triggers must not be picked up by the do-damage pass.
			ctx.AddTrigger(OnReceiveDamageTrigger(MultiplyDamage(100)))

			got := ChangeDamage(ctx, OnDoDamage, tt.base)
			assert.InDelta(t, tt.want, got, 1e-5)
		})
	}
}

func TestChangeDamage_NilContext(t *testing.T) {
	assert.Equal(t, float32(12), ChangeDamage(nil, OnReceiveDamage, 12))
}

func TestViewDamage_EveryXDamage(t *testing.T) {
	const owner model.EntityID = 0x10000001
	ctx := NewContext()
	id := ctx.AddTrigger(OnDamageDoneTrigger(EveryXDamage(50, Self, AffectHealth(10))))

	rec := &recorder{}
	fired := ViewDamage(OnDamageDone, 120, selfScope(owner, ctx), rec)
	require.Equal(t, 1, fired)

	// 120 = 50 + 50 + 20
	assert.Len(t, rec.damage, 2, "inner effect should fire twice")
	for _, ev := range rec.damage {
		assert.Equal(t, owner, ev.Victim)
		assert.Equal(t, float32(-10), ev.Amount, "affect_health(+10) heals")
	}

	live, ok := ctx.Trigger(id)
	require.True(t, ok)
	assert.InDelta(t, 20, live.Viewing.Accumulated, 1e-5)

	// Remainder carries over into the next invocation.
	ViewDamage(OnDamageDone, 30, selfScope(owner, ctx), rec)
	assert.Len(t, rec.damage, 3)
	live, _ = ctx.Trigger(id)
	assert.InDelta(t, 0, live.Viewing.Accumulated, 1e-5)
}

func TestViewDamage_EveryXHealedIgnoresDamage(t *testing.T) {
	const owner model.EntityID = 0x10000001
	ctx := NewContext()
	id := ctx.AddTrigger(OnDamageReceivedTrigger(EveryXHealed(25, Self, AffectHealth(-1))))

	rec := &recorder{}
	ViewDamage(OnDamageReceived, 40, selfScope(owner, ctx), rec)
	assert.Empty(t, rec.damage, "positive damage must not count as healing")

	ViewDamage(OnDamageReceived, -60, selfScope(owner, ctx), rec)
	assert.Len(t, rec.damage, 2)

	live, _ := ctx.Trigger(id)
	assert.InDelta(t, 10, live.Viewing.Accumulated, 1e-5)
}

func TestViewDamage_OtherTarget(t *testing.T) {
	const (
		attacker model.EntityID = 0x10000001
		victim   model.EntityID = 0x10000002
	)
	attackerCtx := NewContext()
	victimCtx := NewContext()
	attackerCtx.AddTrigger(OnDamageDoneTrigger(ViewRegular(InflictStatus(model.StatusEffect{
		Timeout:      2,
		Stat:         model.StatMovementSpeed,
		Modification: model.Modification{Kind: model.ModMultiply, Value: 0.5},
	}), Other)))

	s := Scope{
		Self:  Participant{ID: attacker, Ctx: attackerCtx},
		Other: Participant{ID: victim, Ctx: victimCtx},
	}
	ViewDamage(OnDamageDone, 10, s, &recorder{})

	assert.Empty(t, attackerCtx.StatusEffects())
	require.Len(t, victimCtx.StatusEffects(), 1)
	assert.Equal(t, model.StatMovementSpeed, victimCtx.StatusEffects()[0].Stat)
}

func TestDispatch_SnapshotSurvivesListMutation(t *testing.T) {
	const owner model.EntityID = 0x10000001
	ctx := NewContext()
	first := ctx.AddTrigger(OnAbilityCastTrigger(model.ChildProjectile, Spawn(SpawnSpec{Object: "flash"}, AtOwner)))
	ctx.AddTrigger(OnAbilityCastTrigger(model.ChildProjectile, Spawn(SpawnSpec{Object: "smoke"}, AtOwner)))
	ctx.AddTrigger(OnAbilityCastTrigger(model.ChildMelee, Spawn(SpawnSpec{Object: "swing"}, AtOwner)))

	rec := &recorder{}
	rec.onSpawn = func(SpawnRequest) {
		// Effects may rewrite the list being scanned.
		ctx.RemoveTrigger(first)
		ctx.AddTrigger(OnAbilityCastTrigger(model.ChildProjectile, Spawn(SpawnSpec{Object: "late"}, AtOwner)))
	}

	fired := DispatchActor(OnAbilityCast, model.ChildProjectile, selfScope(owner, ctx), rec)
	assert.Equal(t, 2, fired)
	require.Len(t, rec.spawns, 2)
	assert.Equal(t, "flash", rec.spawns[0].Spec.Object)
	assert.Equal(t, "smoke", rec.spawns[1].Spec.Object)
	assert.Equal(t, 4, ctx.TriggerCount())
}

func TestDispatch_MissingOwner(t *testing.T) {
	rec := &recorder{}
	assert.Equal(t, 0, DispatchActor(OnAbilityEnd, model.ChildGrenade, Scope{}, rec))
	assert.Equal(t, 0, DispatchKill(Scope{}, rec))
	assert.Equal(t, 0, ViewDamage(OnDamageDone, 5, Scope{}, rec))
}

func TestDispatchDeath_WithoutKiller(t *testing.T) {
	const dying model.EntityID = 0x10000005
	ctx := NewContext()
	ctx.AddTrigger(OnDeathTrigger(Regular(Spawn(SpawnSpec{Object: "gravestone"}, AtEvent), Self)))
	ctx.AddTrigger(OnDeathTrigger(Regular(AffectHealth(-50), Other)))

	rec := &recorder{}
	s := Scope{Self: Participant{ID: dying, Ctx: ctx}, Location: model.V2(3, 4)}
	fired := DispatchDeath(s, rec)

	assert.Equal(t, 2, fired)
	require.Len(t, rec.spawns, 1)
	assert.Equal(t, model.V2(3, 4), rec.spawns[0].Position)
	assert.Empty(t, rec.damage, "no killer, nothing to damage")
}

func TestDispatchHit_MatchesAbility(t *testing.T) {
	const (
		owner model.EntityID = 0x10000001
		hit   model.EntityID = 0x10000002
	)
	ctx := NewContext()
	ctx.AddTrigger(OnAbilityHitTrigger(model.ChildProjectile,
		Regular(Spawn(SpawnSpec{Object: "explosion", Child: model.ChildExplosion, Damage: 20}, AtEvent), Other)))
	ctx.AddTrigger(OnAbilityHitTrigger(model.ChildMelee, Regular(AffectHealth(5), Self)))

	rec := &recorder{}
	s := Scope{
		Self:     Participant{ID: owner, Ctx: ctx},
		Other:    Participant{ID: hit, Position: model.V2(10, 0)},
		Location: model.V2(9, 0),
	}
	assert.Equal(t, 1, DispatchHit(model.ChildProjectile, s, rec))
	require.Len(t, rec.spawns, 1)
	assert.Equal(t, model.V2(9, 0), rec.spawns[0].Position)
	assert.Equal(t, owner, rec.spawns[0].Owner)
	assert.Empty(t, rec.damage)
}

func TestTickPeriodic(t *testing.T) {
	const owner model.EntityID = 0x10000001
	ctx := NewContext()
	ctx.AddTrigger(PeriodicallyTrigger(1, AffectHealth(2)))

	rec := &recorder{}
	assert.Equal(t, 2, TickPeriodic(2.5, selfScope(owner, ctx), rec))
	assert.Equal(t, 0, TickPeriodic(0.25, selfScope(owner, ctx), rec))
	assert.Equal(t, 1, TickPeriodic(0.25, selfScope(owner, ctx), rec))
	assert.Len(t, rec.damage, 3)
}
