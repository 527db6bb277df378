package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/skirmish/internal/data"
	"github.com/udisondev/skirmish/internal/game/combat"
	"github.com/udisondev/skirmish/internal/game/effect"
	"github.com/udisondev/skirmish/internal/game/loadout"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/netsync"
	"github.com/udisondev/skirmish/internal/world"
)

// ClassMemory remembers the last class of a player between sessions
// (db.ClassRepository).
type ClassMemory interface {
	Get(ctx context.Context, player string) (string, bool, error)
	Set(ctx context.Context, player, class string) error
}

// Config holds tick parameters.
type Config struct {
	CascadeCap      int
	Invulnerability float32 // seconds after a hit
	DefaultClass    string
	ActorRadius     float32
	Friction        float32 // fraction of actor velocity lost per second
}

// DefaultConfig returns the settings used by the server.
func DefaultConfig() Config {
	return Config{
		CascadeCap:      combat.DefaultMaxIterations,
		Invulnerability: 0.1,
		DefaultClass:    "gunner",
		ActorRadius:     0.5,
		Friction:        4,
	}
}

// TickReport summarizes one tick.
type TickReport struct {
	Tick      uint64
	Requests  int
	Rejected  int
	Retried   int
	Periodic  int
	Hits      int
	Cascade   combat.Report // hits and periodic effects
	Sweep     combat.SweepReport
	Aftermath combat.Report // effects of kills, deaths and ability ends
	Spawned   int
	Despawned int
}

type respawn struct {
	client netsync.Client
	class  string
}

// Sim owns the world and runs the tick. Everything here runs on one
// goroutine; connections talk to it only through the inbox.
type Sim struct {
	cfg       Config
	world     *world.World
	resolver  *combat.Resolver
	sweeper   *combat.Sweeper
	bridge    *combat.Bridge
	loadout   *loadout.Manager
	authority *netsync.Authority
	memory    ClassMemory
	inbox     <-chan netsync.Inbound

	clients  map[model.EntityID]netsync.Client
	respawns []respawn
	joined   int
	tick     uint64

	// ctx of the running tick, used by the class observer
	ctx context.Context
}

// New wires a simulation over store. inbox may be nil when requests are
// fed directly through Handle.
func New(cfg Config, store data.Store, inbox <-chan netsync.Inbound) *Sim {
	w := world.New()
	resolver := combat.NewResolver(w, cfg.CascadeCap)
	bridge := combat.NewBridge(w, world.CircleOverlap{World: w}, resolver, cfg.Invulnerability)
	manager := loadout.NewManager(w, store, resolver)

	s := &Sim{
		cfg:       cfg,
		world:     w,
		resolver:  resolver,
		sweeper:   combat.NewSweeper(w, resolver),
		bridge:    bridge,
		loadout:   manager,
		authority: netsync.NewAuthority(bridge, manager),
		inbox:     inbox,
		clients:   make(map[model.EntityID]netsync.Client),
		ctx:       context.Background(),
	}

	w.SetSpawnObserver(func(o *world.AbilityObject) {
		slog.Debug("object spawned", "id", o.ID, "owner", o.Owner, "object", o.Object)
	})
	w.SetDespawnObserver(s.onDespawn)
	s.loadout.SetAssignObserver(s.onClassAssigned)
	resolver.SetObserver(func(r combat.Resolved) {
		if r.Killed {
			slog.Info("actor killed", "victim", r.Event.Victim, "instigator", r.Event.Instigator)
		}
	})
	bridge.SetHitObserver(func(h combat.HitResult) {
		slog.Debug("hit", "object", h.Object, "owner", h.Owner, "victim", h.Victim, "amount", h.Amount)
	})
	return s
}

// SetClassMemory enables persistence of player classes.
func (s *Sim) SetClassMemory(m ClassMemory) {
	s.memory = m
}

func (s *Sim) World() *world.World        { return s.world }
func (s *Sim) Loadout() *loadout.Manager  { return s.loadout }
func (s *Sim) Resolver() *combat.Resolver { return s.resolver }

// Client returns the connection controlling actor.
func (s *Sim) Client(actor model.EntityID) (netsync.Client, bool) {
	c, ok := s.clients[actor]
	return c, ok
}

// Run ticks every interval until ctx is cancelled.
func (s *Sim) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	dt := float32(interval.Seconds())
	slog.Info("simulation started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation stopped", "ticks", s.tick)
			return nil
		case <-ticker.C:
			rep := s.Tick(ctx, dt)
			if rep.Cascade.Overflow || rep.Aftermath.Overflow {
				slog.Warn("cascade cap hit", "tick", rep.Tick,
					"dropped", rep.Cascade.Dropped+rep.Aftermath.Dropped)
			}
		}
	}
}

// Tick advances the simulation by dt seconds:
// requests, pending classes, status and periodic effects, collisions,
// damage resolution, the death sweep and its cascade, movement, and
// finally the deferred spawn/despawn flush.
func (s *Sim) Tick(ctx context.Context, dt float32) TickReport {
	s.ctx = ctx
	s.tick++
	rep := TickReport{Tick: s.tick}

	rep.Requests, rep.Rejected = s.drain(ctx)
	s.respawnDead(ctx)
	rep.Retried = s.loadout.RetryPending(ctx)

	rep.Periodic = s.tickActors(dt)
	rep.Hits = s.bridge.Collide()
	rep.Cascade = s.resolver.Run()
	rep.Sweep = s.sweeper.Sweep()
	rep.Aftermath = s.resolver.Run()

	s.world.Advance(dt)
	s.damp(dt)
	s.authority.Advance(dt)
	rep.Spawned, rep.Despawned = s.world.Flush()
	return rep
}

func (s *Sim) drain(ctx context.Context) (requests, rejected int) {
	if s.inbox == nil {
		return 0, 0
	}
	for {
		select {
		case in := <-s.inbox:
			requests++
			if err := s.Handle(ctx, in); err != nil {
				rejected++
			}
		default:
			return requests, rejected
		}
	}
}

// Handle applies one client request. A rejected request changes nothing
// and the client is told why.
func (s *Sim) Handle(ctx context.Context, in netsync.Inbound) error {
	c := in.Session
	switch in.Kind {
	case netsync.InboundJoin:
		if _, err := s.Join(ctx, c); err != nil {
			c.Reject(0, err)
			return err
		}
	case netsync.InboundLeave:
		s.Leave(c)
	case netsync.InboundAbility:
		if _, err := s.authority.Handle(c.Actor(), in.Ability, c); err != nil {
			slog.Warn("ability request rejected", "player", c.Player(), "ability", in.Ability.Ability, "error", err)
			c.Reject(in.Ability.Seq, err)
			return err
		}
	case netsync.InboundSetClass:
		err := s.loadout.SetClass(ctx, c.Actor(), in.Class)
		if errors.Is(err, data.ErrNotFound) {
			err = fmt.Errorf("%w: %w", netsync.ErrMalformedRequest, err)
		}
		if err != nil && !errors.Is(err, loadout.ErrPending) {
			slog.Warn("class request rejected", "player", c.Player(), "class", in.Class, "error", err)
			c.Reject(0, err)
			return err
		}
	default:
		return fmt.Errorf("%w: inbound kind %d", netsync.ErrMalformedRequest, in.Kind)
	}
	return nil
}

// Join creates an actor for c with the player's remembered class, or the
// default one. A remembered class that no longer exists falls back to the
// default.
func (s *Sim) Join(ctx context.Context, c netsync.Client) (model.EntityID, error) {
	class := s.cfg.DefaultClass
	if s.memory != nil {
		stored, ok, err := s.memory.Get(ctx, c.Player())
		switch {
		case err != nil:
			slog.Warn("class memory unavailable", "player", c.Player(), "error", err)
		case ok:
			class = stored
		}
	}
	return s.spawn(ctx, c, class)
}

func (s *Sim) spawn(ctx context.Context, c netsync.Client, class string) (model.EntityID, error) {
	a := s.world.AddActor(c.Player(), spawnPoint(s.joined), s.cfg.ActorRadius, nil)
	s.joined++
	s.clients[a.ID] = c

	err := s.loadout.SetClass(ctx, a.ID, class)
	if errors.Is(err, data.ErrNotFound) && class != s.cfg.DefaultClass {
		// remembered class was removed from the store
		slog.Warn("class unknown, using default", "player", c.Player(), "class", class, "default", s.cfg.DefaultClass)
		class = s.cfg.DefaultClass
		err = s.loadout.SetClass(ctx, a.ID, class)
	}
	if err != nil && !errors.Is(err, loadout.ErrPending) {
		delete(s.clients, a.ID)
		s.world.Despawn(a.ID)
		return model.InvalidEntity, fmt.Errorf("joining %q as %q: %w", c.Player(), class, err)
	}
	c.Bind(a.ID, class)
	slog.Info("player joined", "player", c.Player(), "actor", a.ID, "class", class)
	return a.ID, nil
}

// Leave removes the client's actor without firing death triggers.
func (s *Sim) Leave(c netsync.Client) {
	actor := c.Actor()
	if owner, ok := s.clients[actor]; !ok || owner != c {
		return
	}
	delete(s.clients, actor)
	s.world.Despawn(actor)
	slog.Info("player left", "player", c.Player(), "actor", actor)
}

func (s *Sim) respawnDead(ctx context.Context) {
	if len(s.respawns) == 0 {
		return
	}
	queue := s.respawns
	s.respawns = nil
	for _, r := range queue {
		if r.client.Closed() {
			continue
		}
		if _, err := s.spawn(ctx, r.client, r.class); err != nil {
			slog.Error("respawn failed", "player", r.client.Player(), "error", err)
		}
	}
}

// tickActors counts down status effects and fires periodic triggers.
func (s *Sim) tickActors(dt float32) int {
	fired := 0
	for _, a := range s.world.Actors() {
		if a.Dying() {
			continue
		}
		a.Ctx.TickStatusEffects(dt)
		self := s.world.Participant(a.ID)
		fired += effect.TickPeriodic(dt, effect.Scope{Self: self, Other: self, Location: a.Position}, s.resolver)
	}
	return fired
}

// damp decays knockback velocity.
func (s *Sim) damp(dt float32) {
	keep := max(1-s.cfg.Friction*dt, 0)
	for _, a := range s.world.Actors() {
		a.Velocity = a.Velocity.Scale(keep)
	}
}

func (s *Sim) onDespawn(id model.EntityID) {
	if !world.IsActorID(id) {
		return
	}
	class, _ := s.loadout.Class(id)
	s.loadout.Forget(id)
	s.authority.Forget(id)

	c, ok := s.clients[id]
	if !ok {
		return
	}
	delete(s.clients, id)
	if class == "" {
		class = s.cfg.DefaultClass
	}
	s.respawns = append(s.respawns, respawn{client: c, class: class})
}

func (s *Sim) onClassAssigned(actor model.EntityID, class string) {
	if s.memory == nil {
		return
	}
	c, ok := s.clients[actor]
	if !ok {
		return
	}
	if err := s.memory.Set(s.ctx, c.Player(), class); err != nil {
		slog.Warn("remembering class failed", "player", c.Player(), "class", class, "error", err)
	}
}

// spawnPoint places joining actors on a grid, eight per row.
func spawnPoint(n int) model.Vec2 {
	const spacing = 6
	return model.V2(float32(n%8)*spacing, float32(n/8)*spacing)
}
