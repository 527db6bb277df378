package combat

import (
	"log/slog"

	"github.com/udisondev/skirmish/internal/game/effect"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/world"
)

// DefaultMaxIterations bounds the trampoline when no cap is configured.
const DefaultMaxIterations = 10

// Report summarises one Run of the resolver.
type Report struct {
	Iterations int  // batches processed
	Processed  int  // events resolved
	Dropped    int  // events discarded on overflow
	Overflow   bool // cap reached with events still queued
}

// Resolved is the outcome of one damage event, for observers.
type Resolved struct {
	Event  model.DamageEvent
	Final  float32 // amount after damage-changing triggers
	Health float32 // victim health after the change, if tracked
	Killed bool    // this event flagged the victim dying
}

// Resolver runs damage events through the four-stage pipeline.
//
// Events raised while resolving are not handled inline: they go into the
// back buffer and are processed as the next batch. Buffers alternate until
// empty or until maxIterations batches have run.
//
// Resolver also implements effect.Commands, so every effect invoked by the
// pipeline feeds new events straight back into it.
type Resolver struct {
	world         *world.World
	maxIterations int

	front []model.DamageEvent // batch being resolved
	back  []model.DamageEvent // events raised for the next batch
	seq   uint64

	// observer: callback для наблюдения за результатами (nil в production).
	observer func(Resolved)
}

var _ effect.Commands = (*Resolver)(nil)

// NewResolver creates a resolver over w. maxIterations <= 0 selects
// DefaultMaxIterations.
func NewResolver(w *world.World, maxIterations int) *Resolver {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Resolver{
		world:         w,
		maxIterations: maxIterations,
	}
}

// SetObserver sets a callback invoked after every resolved event.
func (r *Resolver) SetObserver(fn func(Resolved)) {
	r.observer = fn
}

// MaxIterations returns the trampoline cap.
func (r *Resolver) MaxIterations() int {
	return r.maxIterations
}

// EnqueueDamage queues an event for the next batch and stamps its sequence number.
func (r *Resolver) EnqueueDamage(instigator, victim model.EntityID, amount float32) {
	r.seq++
	r.back = append(r.back, model.DamageEvent{
		Seq:        r.seq,
		Instigator: instigator,
		Victim:     victim,
		Amount:     amount,
	})
}

// Spawn forwards to the world command buffer.
func (r *Resolver) Spawn(req effect.SpawnRequest) model.EntityID {
	return r.world.Spawn(req)
}

// Pending returns the number of queued events.
func (r *Resolver) Pending() int {
	return len(r.back)
}

// Run resolves queued events batch by batch until none remain.
// Hitting the cap is an authoring defect, not a runtime failure: the rest
// of the queue is dropped and the game continues.
func (r *Resolver) Run() Report {
	var rep Report
	for len(r.back) > 0 {
		if rep.Iterations >= r.maxIterations {
			rep.Overflow = true
			rep.Dropped = len(r.back)
			slog.Error("damage cascade exceeded iteration cap",
				"cap", r.maxIterations,
				"dropped", rep.Dropped,
				"first_seq", r.back[0].Seq)
			r.back = r.back[:0]
			break
		}

		r.front, r.back = r.back, r.front[:0]
		rep.Iterations++

		// enqueue order == seq order, so the batch is already sorted
		for _, ev := range r.front {
			r.resolve(ev)
			rep.Processed++
		}
	}
	r.front = r.front[:0]
	return rep
}

func (r *Resolver) resolve(ev model.DamageEvent) {
	if ev.IsSelf() {
		r.resolveSelf(ev)
		return
	}
	r.resolveCross(ev)
}

// resolveSelf touches a single context for all four stages.
func (r *Resolver) resolveSelf(ev model.DamageEvent) {
	a, ok := r.world.Actor(ev.Victim)
	if !ok {
		slog.Warn("damage: actor missing", "actor", ev.Victim, "seq", ev.Seq)
		return
	}

	amount := effect.ChangeDamage(a.Ctx, effect.OnDoDamage, ev.Amount)
	amount = effect.ChangeDamage(a.Ctx, effect.OnReceiveDamage, amount)
	health, killed := r.applyHealth(a, amount)

	self := r.world.Participant(a.ID)
	s := effect.Scope{Self: self, Other: self, Location: a.Position}
	effect.ViewDamage(effect.OnDamageDone, amount, s, r)
	effect.ViewDamage(effect.OnDamageReceived, amount, s, r)

	a.Ctx.SetLastDamageSource(a.ID)
	r.notify(ev, amount, health, killed)
}

// resolveCross reads instigator triggers for the dealing stages and
// victim triggers for the receiving stages.
func (r *Resolver) resolveCross(ev model.DamageEvent) {
	inst, vic, err := r.world.Pair(ev.Instigator, ev.Victim)
	if err != nil {
		slog.Warn("damage: skipping event", "seq", ev.Seq, "error", err)
		return
	}

	amount := effect.ChangeDamage(inst.Ctx, effect.OnDoDamage, ev.Amount)
	amount = effect.ChangeDamage(vic.Ctx, effect.OnReceiveDamage, amount)
	health, killed := r.applyHealth(vic, amount)

	instP := r.world.Participant(inst.ID)
	vicP := r.world.Participant(vic.ID)
	effect.ViewDamage(effect.OnDamageDone, amount,
		effect.Scope{Self: instP, Other: vicP, Location: vic.Position}, r)
	effect.ViewDamage(effect.OnDamageReceived, amount,
		effect.Scope{Self: vicP, Other: instP, Location: vic.Position}, r)

	vic.Ctx.SetLastDamageSource(inst.ID)
	r.notify(ev, amount, health, killed)
}

// applyHealth subtracts amount from the victim's health, clamped to
// MaxHealth when that stat is set. Actors without Health are not damageable.
func (r *Resolver) applyHealth(a *world.Actor, amount float32) (health float32, killed bool) {
	health, ok := a.Ctx.Stat(model.StatHealth)
	if !ok {
		slog.Debug("damage: actor has no health", "actor", a.ID)
		return 0, false
	}

	health -= amount
	if maxHealth, ok := a.Ctx.Stat(model.StatMaxHealth); ok && health > maxHealth {
		health = maxHealth
	}
	a.Ctx.SetStat(model.StatHealth, health)

	if health <= 0 {
		killed = r.world.MarkDying(a.ID)
	}
	return health, killed
}

func (r *Resolver) notify(ev model.DamageEvent, final, health float32, killed bool) {
	if r.observer != nil {
		r.observer(Resolved{Event: ev, Final: final, Health: health, Killed: killed})
	}
}
