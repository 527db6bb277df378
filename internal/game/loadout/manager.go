package loadout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/udisondev/skirmish/internal/data"
	"github.com/udisondev/skirmish/internal/game/effect"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/world"
)

// ErrPending is returned when the class asset could not be resolved yet.
// The assignment is kept and retried by RetryPending.
var ErrPending = errors.New("class assignment pending")

// ErrUnknownAbility is returned when an actor's class does not offer an ability.
var ErrUnknownAbility = errors.New("ability not offered by class")

// Manager swaps actor classes. A swap is a full replacement: stats and
// triggers of the previous class never survive it.
//
// Not thread-safe: owned by the simulation tick.
type Manager struct {
	world *world.World
	store data.Store
	cmds  effect.Commands
	hooks map[string]Hooks

	classes map[model.EntityID]*data.RuleSet
	pending map[model.EntityID]string

	// assignObserver: callback после успешной смены класса (nil = нет).
	assignObserver func(actor model.EntityID, class string)
}

// NewManager creates a manager. cmds receives whatever the hooks emit.
func NewManager(w *world.World, store data.Store, cmds effect.Commands) *Manager {
	return &Manager{
		world:   w,
		store:   store,
		cmds:    cmds,
		hooks:   maps.Clone(hookRegistry),
		classes: make(map[model.EntityID]*data.RuleSet),
		pending: make(map[model.EntityID]string),
	}
}

// SetHooks overrides the hooks of one class for this manager.
func (m *Manager) SetHooks(class string, h Hooks) {
	m.hooks[class] = h
}

// SetAssignObserver sets the callback invoked after every completed swap.
func (m *Manager) SetAssignObserver(fn func(actor model.EntityID, class string)) {
	m.assignObserver = fn
}

// SetClass replaces the actor's class.
//
// The asset is resolved first; if that fails nothing changes, the request
// stays pending and ErrPending is returned. An unknown class is never
// pending: data.ErrNotFound is returned as is. Otherwise: teardown of the
// old class, clear stats and triggers, copy the new asset, setup of the new class.
func (m *Manager) SetClass(ctx context.Context, actor model.EntityID, class string) error {
	a, ok := m.world.Actor(actor)
	if !ok {
		delete(m.pending, actor)
		return fmt.Errorf("setting class of %s: %w", actor, world.ErrMissingActor)
	}

	rs, err := m.store.Load(ctx, class)
	if errors.Is(err, data.ErrNotFound) {
		if m.pending[actor] == class {
			delete(m.pending, actor)
		}
		return fmt.Errorf("setting class of %s: %w", actor, err)
	}
	if err != nil {
		if prev, waiting := m.pending[actor]; !waiting || prev != class {
			slog.Error("class asset unavailable, assignment pending",
				"actor", actor, "class", class, "error", err)
		}
		m.pending[actor] = class
		return fmt.Errorf("%w: %s: %w", ErrPending, class, err)
	}

	triggers, err := rs.NewTriggers()
	if err != nil {
		// invalid asset: retrying will not help
		delete(m.pending, actor)
		return fmt.Errorf("setting class of %s: %w", actor, err)
	}

	if prev, ok := m.classes[actor]; ok {
		if h := m.hooks[prev.Name]; h.Teardown != nil {
			h.Teardown(m.hookContext(a))
		}
	}

	a.Ctx.ClearStats()
	a.Ctx.ClearTriggers()
	for stat, v := range rs.BaseStats() {
		a.Ctx.SetStat(stat, v)
	}
	for _, t := range triggers {
		a.Ctx.AddTrigger(t)
	}
	m.classes[actor] = rs
	delete(m.pending, actor)

	if h := m.hooks[rs.Name]; h.Setup != nil {
		h.Setup(m.hookContext(a))
	}

	slog.Info("class assigned", "actor", actor, "class", rs.Name,
		"stats", len(rs.Stats), "triggers", len(triggers))
	if m.assignObserver != nil {
		m.assignObserver(actor, rs.Name)
	}
	return nil
}

// RetryPending re-attempts pending assignments. Returns how many completed.
// Polled once per tick.
func (m *Manager) RetryPending(ctx context.Context) int {
	if len(m.pending) == 0 {
		return 0
	}
	done := 0
	for _, actor := range slices.Sorted(maps.Keys(m.pending)) {
		if err := m.SetClass(ctx, actor, m.pending[actor]); err == nil {
			done++
		}
	}
	return done
}

// Pending returns the class an actor is waiting for.
func (m *Manager) Pending(actor model.EntityID) (string, bool) {
	class, ok := m.pending[actor]
	return class, ok
}

// Class returns the actor's current class name.
func (m *Manager) Class(actor model.EntityID) (string, bool) {
	rs, ok := m.classes[actor]
	if !ok {
		return "", false
	}
	return rs.Name, true
}

// Ability looks up an ability offered by the actor's current class.
func (m *Manager) Ability(actor model.EntityID, name string) (data.AbilitySpec, error) {
	rs, ok := m.classes[actor]
	if !ok {
		return data.AbilitySpec{}, fmt.Errorf("%s has no class: %w", actor, ErrUnknownAbility)
	}
	spec, ok := rs.Ability(name)
	if !ok {
		return data.AbilitySpec{}, fmt.Errorf("%s (%s) ability %q: %w", actor, rs.Name, name, ErrUnknownAbility)
	}
	return spec, nil
}

// Forget drops everything known about a removed actor.
func (m *Manager) Forget(actor model.EntityID) {
	delete(m.classes, actor)
	delete(m.pending, actor)
}

func (m *Manager) hookContext(a *world.Actor) HookContext {
	return HookContext{Actor: a, World: m.world, Cmds: m.cmds}
}
