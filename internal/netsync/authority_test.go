package netsync

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/skirmish/internal/data"
	"github.com/udisondev/skirmish/internal/game/effect"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/world"
)

const owner model.EntityID = world.ActorIDBase + 1

type fakeCaster struct {
	next  model.EntityID
	casts []effect.SpawnSpec
	err   error
}

func (c *fakeCaster) Cast(_ model.EntityID, spec effect.SpawnSpec, _ model.Vec2) (model.EntityID, error) {
	if c.err != nil {
		return model.InvalidEntity, c.err
	}
	c.next++
	c.casts = append(c.casts, spec)
	return world.ObjectIDBase + c.next, nil
}

type fakeCatalog map[string]data.AbilitySpec

func (c fakeCatalog) Ability(_ model.EntityID, name string) (data.AbilitySpec, error) {
	spec, ok := c[name]
	if !ok {
		return data.AbilitySpec{}, errors.New("unknown ability")
	}
	return spec, nil
}

type recordingMapper []IDMapping

func (m *recordingMapper) MapID(mapping IDMapping) { *m = append(*m, mapping) }

func newAuthority() (*Authority, *fakeCaster) {
	caster := &fakeCaster{}
	catalog := fakeCatalog{
		"shoot": {Name: "shoot", Spawn: effect.SpawnSpec{Object: "bullet", Damage: 15}},
		"throw": {Name: "throw", Spawn: effect.SpawnSpec{Object: "grenade"}, Cooldown: 1},
	}
	return NewAuthority(caster, catalog), caster
}

func TestAuthority_MapsPredictedID(t *testing.T) {
	a, caster := newAuthority()
	var mapper recordingMapper

	predicted := world.PredictedIDBase + 7
	id, err := a.Handle(owner, AbilityRequest{
		Seq:          3,
		Actor:        owner,
		Ability:      "shoot",
		Direction:    model.V2(1, 0),
		PredictedIDs: []model.EntityID{predicted},
	}, &mapper)
	require.NoError(t, err)

	require.Len(t, caster.casts, 1)
	assert.Equal(t, "bullet", caster.casts[0].Object)
	assert.Equal(t, []IDMapping{{Seq: 3, Predicted: predicted, Authoritative: id}}, []IDMapping(mapper))
}

func TestAuthority_RejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		sess model.EntityID
		req  AbilityRequest
	}{
		{"no actor bound", model.InvalidEntity, AbilityRequest{Actor: owner, Ability: "shoot"}},
		{"foreign actor", owner, AbilityRequest{Actor: owner + 1, Ability: "shoot"}},
		{"empty ability", owner, AbilityRequest{Actor: owner}},
		{"unknown ability", owner, AbilityRequest{Actor: owner, Ability: "fly"}},
		{"nan direction", owner, AbilityRequest{Actor: owner, Ability: "shoot", Direction: model.V2(float32(math.NaN()), 0)}},
		{"authoritative id as predicted", owner, AbilityRequest{Actor: owner, Ability: "shoot", PredictedIDs: []model.EntityID{world.ObjectIDBase + 1}}},
		{"too many predicted", owner, AbilityRequest{Actor: owner, Ability: "shoot", PredictedIDs: []model.EntityID{world.PredictedIDBase + 1, world.PredictedIDBase + 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, caster := newAuthority()
			var mapper recordingMapper

			_, err := a.Handle(tt.sess, tt.req, &mapper)
			require.ErrorIs(t, err, ErrMalformedRequest)
			assert.Empty(t, caster.casts, "rejected request must not cast")
			assert.Empty(t, mapper)
		})
	}
}

func TestAuthority_Cooldown(t *testing.T) {
	a, caster := newAuthority()
	var mapper recordingMapper
	req := AbilityRequest{Actor: owner, Ability: "throw", Direction: model.V2(0, 1)}

	_, err := a.Handle(owner, req, &mapper)
	require.NoError(t, err)

	a.Advance(0.5)
	_, err = a.Handle(owner, req, &mapper)
	require.ErrorIs(t, err, ErrOnCooldown)

	a.Advance(0.5)
	_, err = a.Handle(owner, req, &mapper)
	require.NoError(t, err)
	assert.Len(t, caster.casts, 2)

	a.Forget(owner)
	_, err = a.Handle(owner, req, &mapper)
	require.NoError(t, err, "forgotten actor starts without cooldowns")
}

func TestAuthority_CastFailureKeepsCooldownFree(t *testing.T) {
	a, caster := newAuthority()
	caster.err = errors.New("caster gone")
	var mapper recordingMapper
	req := AbilityRequest{Actor: owner, Ability: "throw", PredictedIDs: []model.EntityID{world.PredictedIDBase + 1}}

	_, err := a.Handle(owner, req, &mapper)
	require.Error(t, err)
	assert.Empty(t, mapper)

	caster.err = nil
	_, err = a.Handle(owner, req, &mapper)
	require.NoError(t, err)
}
