package loadout

import (
	"log/slog"

	"github.com/udisondev/skirmish/internal/game/effect"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/world"
)

// HookContext is what a class hook may touch.
type HookContext struct {
	Actor *world.Actor
	World *world.World
	Cmds  effect.Commands
}

// Hook runs on class setup or teardown. Hooks run synchronously inside
// the tick; they need no locking.
type Hook func(hc HookContext)

// Hooks holds the optional setup and teardown of one class.
type Hooks struct {
	Setup    Hook
	Teardown Hook
}

// hookRegistry maps class name → hooks.
// Populated by init(); managers copy it on construction.
var hookRegistry = map[string]Hooks{}

// RegisterHooks registers hooks for a class by name.
// Call from init(); later registrations replace earlier ones.
func RegisterHooks(class string, h Hooks) {
	hookRegistry[class] = h
}

// RefillHealth sets Health to MaxHealth. Used as a setup hook.
func RefillHealth(hc HookContext) {
	if maxHealth, ok := hc.Actor.Ctx.Stat(model.StatMaxHealth); ok {
		hc.Actor.Ctx.SetStat(model.StatHealth, maxHealth)
	}
}

// DespawnOwnedObjects removes every ability object the actor owns,
// including spawns still queued this tick. Used as a teardown hook.
// The objects bypass the sweep: by the time it runs the actor carries the
// new class's triggers, and OnAbilityEnd of an old-class object must not
// fire them.
func DespawnOwnedObjects(hc HookContext) {
	if n := hc.World.DiscardOwned(hc.Actor.ID); n > 0 {
		slog.Debug("class teardown: discarded owned objects", "actor", hc.Actor.ID, "count", n)
	}
}

func init() {
	standard := Hooks{Setup: RefillHealth, Teardown: DespawnOwnedObjects}
	RegisterHooks("gunner", standard)
	RegisterHooks("bomber", standard)
	RegisterHooks("brawler", Hooks{Setup: RefillHealth})
}
