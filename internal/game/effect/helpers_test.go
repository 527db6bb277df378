package effect

import "github.com/udisondev/skirmish/internal/model"

// recorder is a Commands fake capturing everything effects emit.
type recorder struct {
	damage  []model.DamageEvent
	spawns  []SpawnRequest
	onSpawn func(SpawnRequest)
	nextID  model.EntityID
}

func (r *recorder) EnqueueDamage(instigator, victim model.EntityID, amount float32) {
	r.damage = append(r.damage, model.DamageEvent{
		Seq:        uint64(len(r.damage) + 1),
		Instigator: instigator,
		Victim:     victim,
		Amount:     amount,
	})
}

func (r *recorder) Spawn(req SpawnRequest) model.EntityID {
	r.spawns = append(r.spawns, req)
	if r.onSpawn != nil {
		r.onSpawn(req)
	}
	r.nextID++
	return 0x20000000 + r.nextID
}

func selfScope(id model.EntityID, ctx *Context) Scope {
	return Scope{Self: Participant{ID: id, Ctx: ctx}}
}
