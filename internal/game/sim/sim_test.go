package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/skirmish/internal/data"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/netsync"
	"github.com/udisondev/skirmish/internal/testutil"
	"github.com/udisondev/skirmish/internal/world"
)

const dt = float32(1) / 30

type fakeClient struct {
	name     string
	actor    model.EntityID
	class    string
	binds    int
	rejects  []error
	mappings []netsync.IDMapping
	closed   bool
}

func (c *fakeClient) Player() string             { return c.name }
func (c *fakeClient) Actor() model.EntityID      { return c.actor }
func (c *fakeClient) Closed() bool               { return c.closed }
func (c *fakeClient) MapID(m netsync.IDMapping)  { c.mappings = append(c.mappings, m) }
func (c *fakeClient) Reject(_ uint64, err error) { c.rejects = append(c.rejects, err) }
func (c *fakeClient) Bind(a model.EntityID, class string) {
	c.actor, c.class = a, class
	c.binds++
}

type memory struct {
	classes map[string]string
	sets    []string
}

func (m *memory) Get(_ context.Context, player string) (string, bool, error) {
	class, ok := m.classes[player]
	return class, ok, nil
}

func (m *memory) Set(_ context.Context, player, class string) error {
	m.sets = append(m.sets, player+"="+class)
	return nil
}

func newSim(t *testing.T, store data.Store) (*Sim, chan netsync.Inbound) {
	t.Helper()
	if store == nil {
		store = data.NewDirStore(data.DefaultRuleSets())
	}
	inbox := make(chan netsync.Inbound, 16)
	return New(DefaultConfig(), store, inbox), inbox
}

func join(t *testing.T, s *Sim, inbox chan netsync.Inbound, name string) *fakeClient {
	t.Helper()
	c := &fakeClient{name: name}
	inbox <- netsync.Inbound{Kind: netsync.InboundJoin, Session: c, Player: name}
	s.Tick(context.Background(), dt)
	require.True(t, c.actor.Valid(), "%s must be bound after the join tick", name)
	return c
}

func ticks(s *Sim, n int) TickReport {
	var rep TickReport
	for range n {
		rep = s.Tick(context.Background(), dt)
	}
	return rep
}

func health(t *testing.T, s *Sim, id model.EntityID) float32 {
	t.Helper()
	a, ok := s.World().Actor(id)
	require.True(t, ok)
	h, _ := a.Ctx.Stat(model.StatHealth)
	return h
}

func place(t *testing.T, s *Sim, id model.EntityID, pos model.Vec2) {
	t.Helper()
	a, ok := s.World().Actor(id)
	require.True(t, ok)
	a.Position = pos
}

func shoot(c *fakeClient, seq uint64) netsync.Inbound {
	return cast(c, "shoot", seq)
}

func cast(c *fakeClient, ability string, seq uint64) netsync.Inbound {
	return netsync.Inbound{
		Kind:    netsync.InboundAbility,
		Session: c,
		Ability: netsync.AbilityRequest{
			Seq:          seq,
			Actor:        c.actor,
			Ability:      ability,
			Direction:    model.V2(1, 0),
			PredictedIDs: []model.EntityID{world.PredictedIDBase + model.EntityID(seq)},
		},
	}
}

func TestTick_JoinBindsDefaultClass(t *testing.T) {
	s, inbox := newSim(t, nil)
	c := join(t, s, inbox, "alice")

	assert.Equal(t, "gunner", c.class)
	class, ok := s.Loadout().Class(c.actor)
	require.True(t, ok)
	assert.Equal(t, "gunner", class)
	assert.Equal(t, float32(100), health(t, s, c.actor))

	got, ok := s.Client(c.actor)
	require.True(t, ok)
	assert.Same(t, c, got)
}

func TestTick_ShotHitsAndMapsID(t *testing.T) {
	s, inbox := newSim(t, nil)
	a := join(t, s, inbox, "alice")
	b := join(t, s, inbox, "bob")
	place(t, s, a.actor, model.V2(0, 0))
	place(t, s, b.actor, model.V2(1, 0))

	inbox <- shoot(a, 1)
	rep := ticks(s, 1)
	assert.Equal(t, 1, rep.Requests)
	assert.Zero(t, rep.Rejected)
	assert.Equal(t, 1, rep.Spawned)
	require.Len(t, a.mappings, 1)
	assert.Equal(t, world.PredictedIDBase+1, a.mappings[0].Predicted)

	bullet, ok := s.World().Object(a.mappings[0].Authoritative)
	require.True(t, ok)
	assert.Equal(t, a.actor, bullet.Owner)

	// the bullet covers one unit per tick: out of reach now, on top of bob next tick
	rep = ticks(s, 1)
	assert.Zero(t, rep.Hits)
	rep = ticks(s, 1)
	assert.Equal(t, 1, rep.Hits)
	assert.Equal(t, float32(90), health(t, s, b.actor))
	assert.Zero(t, s.World().ObjectCount(), "bullet destroyed on damage")
}

func TestTick_KillCreditAndRespawn(t *testing.T) {
	s, inbox := newSim(t, nil)
	a := join(t, s, inbox, "alice")
	b := join(t, s, inbox, "bob")
	place(t, s, a.actor, model.V2(0, 0))
	place(t, s, b.actor, model.V2(1, 0))

	victim, ok := s.World().Actor(b.actor)
	require.True(t, ok)
	victim.Ctx.SetStat(model.StatHealth, 5)
	dead := b.actor

	inbox <- shoot(a, 1)
	rep := ticks(s, 3)
	assert.Equal(t, 1, rep.Sweep.Deaths)
	assert.Equal(t, 1, rep.Sweep.Kills)
	assert.False(t, s.World().Alive(dead))

	killer, ok := s.World().Actor(a.actor)
	require.True(t, ok)
	assert.Len(t, killer.Ctx.StatusEffects(), 1, "on_kill speed boost")

	ticks(s, 1)
	assert.Equal(t, 2, b.binds)
	assert.NotEqual(t, dead, b.actor)
	assert.Equal(t, "gunner", b.class)
	assert.Equal(t, float32(100), health(t, s, b.actor))
}

func TestHandle_RejectsUnknownAbility(t *testing.T) {
	s, inbox := newSim(t, nil)
	c := join(t, s, inbox, "alice")

	in := shoot(c, 1)
	in.Ability.Ability = "swing"
	inbox <- in
	rep := ticks(s, 1)

	assert.Equal(t, 1, rep.Rejected)
	require.Len(t, c.rejects, 1)
	assert.ErrorIs(t, c.rejects[0], netsync.ErrMalformedRequest)
	assert.Empty(t, c.mappings)
	assert.Zero(t, s.World().ObjectCount())
}

func TestHandle_SetClassAndMemory(t *testing.T) {
	s, inbox := newSim(t, nil)
	mem := &memory{classes: map[string]string{"alice": "brawler"}}
	s.SetClassMemory(mem)

	c := join(t, s, inbox, "alice")
	assert.Equal(t, "brawler", c.class)
	assert.Equal(t, float32(180), health(t, s, c.actor))

	inbox <- netsync.Inbound{Kind: netsync.InboundSetClass, Session: c, Class: "bomber"}
	ticks(s, 1)

	class, _ := s.Loadout().Class(c.actor)
	assert.Equal(t, "bomber", class)
	assert.Equal(t, []string{"alice=brawler", "alice=bomber"}, mem.sets)

	inbox <- netsync.Inbound{Kind: netsync.InboundSetClass, Session: c, Class: "wizard"}
	rep := ticks(s, 1)
	assert.Equal(t, 1, rep.Rejected)
	require.Len(t, c.rejects, 1)
	assert.ErrorIs(t, c.rejects[0], netsync.ErrMalformedRequest)
	assert.ErrorIs(t, c.rejects[0], data.ErrNotFound)

	class, _ = s.Loadout().Class(c.actor)
	assert.Equal(t, "bomber", class, "rejected swap keeps the current class")
	_, ok := s.Loadout().Pending(c.actor)
	assert.False(t, ok)
	assert.Zero(t, ticks(s, 1).Retried)
	assert.Equal(t, []string{"alice=brawler", "alice=bomber"}, mem.sets)
}

func TestJoin_RememberedClassDeleted(t *testing.T) {
	s, inbox := newSim(t, nil)
	mem := &memory{classes: map[string]string{"bob": "ghost"}}
	s.SetClassMemory(mem)

	c := join(t, s, inbox, "bob")
	assert.Equal(t, DefaultConfig().DefaultClass, c.class)
	assert.Empty(t, c.rejects)

	class, _ := s.Loadout().Class(c.actor)
	assert.Equal(t, DefaultConfig().DefaultClass, class)
	_, ok := s.Loadout().Pending(c.actor)
	assert.False(t, ok)
	assert.Equal(t, float32(100), health(t, s, c.actor))
	assert.Equal(t, []string{"bob=" + DefaultConfig().DefaultClass}, mem.sets)
}

func TestTick_PendingClassRetried(t *testing.T) {
	store := testutil.NewMemoryStore(testutil.RuleSetFixture("gunner", 50))
	store.Fail("gunner", errors.New("asset server down"))
	s, inbox := newSim(t, store)

	c := join(t, s, inbox, "alice")
	pending, ok := s.Loadout().Pending(c.actor)
	require.True(t, ok)
	assert.Equal(t, "gunner", pending)

	rep := ticks(s, 1)
	assert.Zero(t, rep.Retried)

	store.Fail("gunner", nil)
	rep = ticks(s, 1)
	assert.Equal(t, 1, rep.Retried)
	assert.Equal(t, float32(50), health(t, s, c.actor))
}

func TestLeave_NoDeathNoRespawn(t *testing.T) {
	s, inbox := newSim(t, nil)
	c := join(t, s, inbox, "alice")

	c.closed = true
	inbox <- netsync.Inbound{Kind: netsync.InboundLeave, Session: c}
	rep := ticks(s, 1)

	assert.Zero(t, rep.Sweep.Deaths)
	assert.Equal(t, 1, rep.Despawned)
	assert.Zero(t, s.World().ActorCount())
	ticks(s, 1)
	assert.Equal(t, 1, c.binds)
}

func TestTick_PeriodicHeal(t *testing.T) {
	s, inbox := newSim(t, nil)
	s.SetClassMemory(&memory{classes: map[string]string{"bob": "brawler"}})
	c := join(t, s, inbox, "bob")

	a, ok := s.World().Actor(c.actor)
	require.True(t, ok)
	a.Ctx.SetStat(model.StatHealth, 100)

	rep := s.Tick(context.Background(), 1)
	assert.Equal(t, 1, rep.Periodic)
	assert.Equal(t, float32(102), health(t, s, c.actor))
}

func TestTick_IdleBrawlerNeverLosesHealth(t *testing.T) {
	s, inbox := newSim(t, nil)
	s.SetClassMemory(&memory{classes: map[string]string{"bob": "brawler"}})
	c := join(t, s, inbox, "bob")

	a, ok := s.World().Actor(c.actor)
	require.True(t, ok)
	a.Ctx.SetStat(model.StatHealth, 50)

	prev := health(t, s, c.actor)
	for range 90 {
		s.Tick(context.Background(), 1)
		h := health(t, s, c.actor)
		require.GreaterOrEqual(t, h, prev)
		prev = h
	}
	assert.Equal(t, float32(180), prev)
	assert.Equal(t, 1, c.binds)
}

func TestHandle_SetClassDiscardsOldObjects(t *testing.T) {
	s, inbox := newSim(t, nil)
	s.SetClassMemory(&memory{classes: map[string]string{"bob": "bomber"}})
	c := join(t, s, inbox, "bob")

	inbox <- cast(c, "throw", 1)
	rep := ticks(s, 1)
	require.Zero(t, rep.Rejected)
	require.Equal(t, 1, s.World().ObjectCount(), "grenade in flight")

	inbox <- netsync.Inbound{Kind: netsync.InboundSetClass, Session: c, Class: "gunner"}
	rep = ticks(s, 1)
	assert.Zero(t, rep.Sweep.Ended, "grenade of the old class must not end through the sweep")
	assert.Equal(t, 1, rep.Despawned)
	assert.Zero(t, s.World().ObjectCount())

	ended := 0
	for range 60 {
		ended += ticks(s, 1).Sweep.Ended
	}
	assert.Zero(t, ended)
	assert.Zero(t, s.World().ObjectCount(), "no explosion spawned")
}
