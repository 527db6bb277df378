package combat

import (
	"github.com/udisondev/skirmish/internal/game/effect"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/world"
)

// arena bundles a world with the collaborators of one tick.
type arena struct {
	world    *world.World
	resolver *Resolver
	sweeper  *Sweeper
	bridge   *Bridge
}

func newArena() *arena {
	w := world.New()
	r := NewResolver(w, DefaultMaxIterations)
	return &arena{
		world:    w,
		resolver: r,
		sweeper:  NewSweeper(w, r),
		bridge:   NewBridge(w, world.CircleOverlap{World: w}, r, 0),
	}
}

// addActor creates an actor with the given health and triggers.
func (a *arena) addActor(name string, health float32, triggers ...effect.Trigger) *world.Actor {
	ctx := effect.NewContextWith(model.Stats{model.StatHealth: health}, triggers...)
	return a.world.AddActor(name, model.Vec2{}, 0.5, ctx)
}

func health(a *world.Actor) float32 {
	h, _ := a.Ctx.Stat(model.StatHealth)
	return h
}

func statusMarker() effect.ActorEffect {
	return effect.InflictStatus(model.StatusEffect{
		Stat:         model.StatArmor,
		Modification: model.Modification{Kind: model.ModAdd, Value: 1},
	})
}
