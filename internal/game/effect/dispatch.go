package effect

import (
	"log/slog"

	"github.com/udisondev/skirmish/internal/model"
)

// snapshot returns value copies of the triggers selected by kind and ability,
// in list order. Effects may mutate the live list while the copies run.
func (c *Context) snapshot(kind TriggerKind, ability model.ChildType) []Trigger {
	var out []Trigger
	for i := range c.triggers {
		if c.triggers[i].matches(kind, ability) {
			out = append(out, c.triggers[i])
		}
	}
	return out
}

// commit writes runtime state of fired copies back into the live list.
// Triggers removed during the pass are skipped.
func (c *Context) commit(fired []Trigger) {
	for i := range fired {
		j := c.indexOf(fired[i].ID)
		if j < 0 {
			continue
		}
		c.triggers[j].Viewing.Accumulated = fired[i].Viewing.Accumulated
		c.triggers[j].elapsed = fired[i].elapsed
	}
}

// DispatchActor fires the actor-effect triggers of kind on s.Self
// (periodically, on_ability_cast, on_ability_end). Returns the number fired.
func DispatchActor(kind TriggerKind, ability model.ChildType, s Scope, cmds Commands) int {
	if !s.Self.Present() {
		slog.Warn("dispatch: owner missing", "trigger", kind, "owner", s.Self.ID)
		return 0
	}
	fired := s.Self.Ctx.snapshot(kind, ability)
	for i := range fired {
		fired[i].Actor.Apply(s.Self, s.Self, s.Location, cmds)
	}
	return len(fired)
}

// DispatchKill fires on_kill on the killer s.Self; s.Other is the victim.
func DispatchKill(s Scope, cmds Commands) int {
	return dispatchWrapped(OnKill, 0, s, cmds)
}

// DispatchDeath fires on_death on the dying actor s.Self; s.Other is the
// killer and may be absent.
func DispatchDeath(s Scope, cmds Commands) int {
	return dispatchWrapped(OnDeath, 0, s, cmds)
}

// DispatchHit fires on_ability_hit for ability on the owner s.Self;
// s.Other is the actor that was hit.
func DispatchHit(ability model.ChildType, s Scope, cmds Commands) int {
	return dispatchWrapped(OnAbilityHit, ability, s, cmds)
}

func dispatchWrapped(kind TriggerKind, ability model.ChildType, s Scope, cmds Commands) int {
	if !s.Self.Present() {
		slog.Warn("dispatch: owner missing", "trigger", kind, "owner", s.Self.ID)
		return 0
	}
	fired := s.Self.Ctx.snapshot(kind, ability)
	for i := range fired {
		fired[i].Wrapped.Apply(s, cmds)
	}
	return len(fired)
}

// ChangeDamage threads amount through the damage-changing triggers of kind
// (on_do_damage or on_receive_damage) in list order.
func ChangeDamage(ctx *Context, kind TriggerKind, amount float32) float32 {
	if ctx == nil {
		return amount
	}
	for _, t := range ctx.snapshot(kind, 0) {
		amount = t.Changing.Process(amount)
	}
	return amount
}

// ViewDamage shows the final amount to the damage-viewing triggers of kind
// (on_damage_done or on_damage_received) on s.Self. Accumulator state is
// written back to the live triggers.
func ViewDamage(kind TriggerKind, amount float32, s Scope, cmds Commands) int {
	if !s.Self.Present() {
		slog.Warn("dispatch: owner missing", "trigger", kind, "owner", s.Self.ID)
		return 0
	}
	fired := s.Self.Ctx.snapshot(kind, 0)
	for i := range fired {
		fired[i].Viewing.Observe(amount, s, cmds)
	}
	s.Self.Ctx.commit(fired)
	return len(fired)
}

// TickPeriodic advances periodic triggers on s.Self by dt seconds and fires
// each once per elapsed period. Returns the number of firings.
func TickPeriodic(dt float32, s Scope, cmds Commands) int {
	if !s.Self.Present() {
		slog.Warn("dispatch: owner missing", "trigger", Periodically, "owner", s.Self.ID)
		return 0
	}
	snap := s.Self.Ctx.snapshot(Periodically, 0)
	n := 0
	for i := range snap {
		t := &snap[i]
		if t.Period <= 0 {
			continue
		}
		t.elapsed += dt
		for t.elapsed >= t.Period {
			t.elapsed -= t.Period
			t.Actor.Apply(s.Self, s.Self, s.Location, cmds)
			n++
		}
	}
	s.Self.Ctx.commit(snap)
	return n
}
