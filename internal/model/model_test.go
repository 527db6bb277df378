package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestStats_AddRequiresExistingStat(t *testing.T) {
	s := Stats{}
	_, ok := s.Add(StatHealth, -5)
	assert.False(t, ok, "unwritten stat does not exist")

	s.Set(StatHealth, 50)
	v, ok := s.Add(StatHealth, -5)
	require.True(t, ok)
	assert.Equal(t, float32(45), v)

	c := s.Clone()
	c.Set(StatHealth, 1)
	assert.Equal(t, float32(45), s[StatHealth])

	s.Set(StatArmor, 3)
	assert.Equal(t, []Stat{StatHealth, StatArmor}, s.Keys())
	s.Clear()
	assert.Empty(t, s)
}

func TestModification_Apply(t *testing.T) {
	tests := []struct {
		mod  Modification
		in   float32
		want float32
	}{
		{Modification{Kind: ModMultiply, Value: 1.5}, 4, 6},
		{Modification{Kind: ModAdd, Value: -2}, 4, 2},
		{Modification{Kind: ModExponent, Value: 2}, 3, 9},
		{Modification{}, 7, 7},
	}
	for _, tt := range tests {
		t.Run(tt.mod.String(), func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.mod.Apply(tt.in), 1e-5)
		})
	}
}

func TestStatusEffect_Tick(t *testing.T) {
	se := StatusEffect{Timeout: 1, Stat: StatArmor, Modification: Modification{Kind: ModAdd, Value: 1}}
	assert.True(t, se.Tick(0.5))
	assert.False(t, se.Tick(0.5))

	permanent := StatusEffect{Stat: StatArmor, Modification: Modification{Kind: ModAdd, Value: 1}}
	assert.True(t, permanent.Tick(100))
	assert.NoError(t, permanent.Validate())

	assert.Error(t, StatusEffect{Stat: 200, Modification: Modification{Kind: ModAdd}}.Validate())
	assert.Error(t, StatusEffect{Stat: StatArmor}.Validate())
}

func assertVec(t *testing.T, want, got Vec2) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-4)
	assert.InDelta(t, want.Y, got.Y, 1e-4)
}

func TestKnockback_Compute(t *testing.T) {
	obj, victim := V2(0, 0), V2(3, 4)

	assert.Equal(t, V2(1, 2), Knockback{Kind: KnockbackImpulse, Vector: V2(1, 2)}.Compute(obj, victim))
	assertVec(t, V2(6, 8), Knockback{Kind: KnockbackRepulsionFromSelf, Strength: 10}.Compute(obj, victim))
	assertVec(t, V2(-6, -8), Knockback{Kind: KnockbackAttraction, Point: obj, Strength: 10}.Compute(obj, victim))
	assert.Equal(t, Vec2{}, Knockback{}.Compute(obj, victim))
	assert.Equal(t, Vec2{}, Knockback{Kind: KnockbackRepulsionFromSelf, Strength: 5}.Compute(obj, obj),
		"coincident positions give no direction")
}

func TestDamageComponent_SingleUse(t *testing.T) {
	d := &DamageComponent{Amount: 10, DealDamageOnce: true}
	assert.True(t, d.CanHit())
	d.MarkHit()
	assert.False(t, d.CanHit())

	multi := &DamageComponent{Amount: 10}
	multi.MarkHit()
	assert.True(t, multi.CanHit())
}

func TestEnumText(t *testing.T) {
	var doc struct {
		Child ChildType     `yaml:"child"`
		Stat  Stat          `yaml:"stat"`
		Push  KnockbackKind `yaml:"push"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("child: Grenade\nstat: max_health\npush: repulsion\n"), &doc))
	assert.Equal(t, ChildGrenade, doc.Child)
	assert.Equal(t, StatMaxHealth, doc.Stat)
	assert.Equal(t, KnockbackRepulsion, doc.Push)

	err := yaml.Unmarshal([]byte("child: laser\n"), &doc)
	assert.ErrorContains(t, err, "unknown child type")

	_, err = ChildType(0).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "unknown(42)", Stat(42).String())
}

func TestDamageEvent(t *testing.T) {
	ev := DamageEvent{Instigator: 1, Victim: 1, Amount: -3}
	assert.True(t, ev.IsSelf())
	assert.True(t, ev.IsHeal())
	assert.Equal(t, "#0000002a", EntityID(42).String())
	assert.False(t, InvalidEntity.Valid())
}
