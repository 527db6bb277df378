package combat

import (
	"log/slog"

	"github.com/udisondev/skirmish/internal/game/effect"
	"github.com/udisondev/skirmish/internal/world"
)

// SweepReport counts what one sweep fired.
type SweepReport struct {
	Ended  int // ability objects that fired on_ability_end
	Deaths int
	Kills  int
}

// Sweeper runs the kill/death sweep once per tick, after resolution.
// Running it once over the flagged set (instead of per event) is what
// keeps OnKill and OnDeath to one firing per death.
type Sweeper struct {
	world *world.World
	cmds  effect.Commands
}

// NewSweeper creates a sweeper. Effects fired by the sweep emit through cmds,
// normally the tick's Resolver, so their damage resolves in a second pass.
func NewSweeper(w *world.World, cmds effect.Commands) *Sweeper {
	return &Sweeper{world: w, cmds: cmds}
}

// Sweep processes objects and actors flagged dead since the last sweep
// and queues their despawn.
func (s *Sweeper) Sweep() SweepReport {
	var rep SweepReport

	for _, id := range s.world.TakeDeadObjects() {
		obj, ok := s.world.Object(id)
		if !ok {
			continue
		}
		if obj.Child.Valid() && s.world.Alive(obj.Owner) {
			effect.DispatchActor(effect.OnAbilityEnd, obj.Child, effect.Scope{
				Self:     s.world.Participant(obj.Owner),
				Location: obj.Position,
			}, s.cmds)
			rep.Ended++
		}
		s.world.Despawn(id)
	}

	for _, id := range s.world.TakeDying() {
		a, ok := s.world.Actor(id)
		if !ok {
			slog.Warn("sweep: dying actor missing", "actor", id)
			continue
		}

		victim := s.world.Participant(id)
		killer, hasKiller := a.Ctx.LastDamageSource()
		// a killer that died this tick (or itself) gets no credit
		if hasKiller && s.world.Alive(killer) {
			instigator := s.world.Participant(killer)
			effect.DispatchKill(effect.Scope{Self: instigator, Other: victim, Location: a.Position}, s.cmds)
			effect.DispatchDeath(effect.Scope{Self: victim, Other: instigator, Location: a.Position}, s.cmds)
			rep.Kills++
		} else {
			effect.DispatchDeath(effect.Scope{Self: victim, Location: a.Position}, s.cmds)
		}
		rep.Deaths++

		slog.Debug("actor died", "actor", id, "name", a.Name, "killer", killer)
		s.world.Despawn(id)
	}

	return rep
}
