package effect

import (
	"github.com/udisondev/skirmish/internal/model"
)

// Context is the per-actor rule state: ordered triggers, active status
// effects, stats and the last actor that damaged it.
//
// Not thread-safe: a context is only touched from the simulation tick.
type Context struct {
	triggers      []Trigger
	statusEffects []model.StatusEffect
	stats         model.Stats

	lastSource    model.EntityID
	hasLastSource bool

	nextTriggerID uint64
}

// NewContext creates an empty actor context.
func NewContext() *Context {
	return &Context{
		triggers:      make([]Trigger, 0, 8),
		statusEffects: make([]model.StatusEffect, 0, 4),
		stats:         make(model.Stats, 4),
	}
}

// NewContextWith creates a context with the given base stats and triggers.
func NewContextWith(stats model.Stats, triggers ...Trigger) *Context {
	c := NewContext()
	for k, v := range stats {
		c.stats[k] = v
	}
	for _, t := range triggers {
		c.AddTrigger(t)
	}
	return c
}

// AddTrigger appends t to the end of the trigger list and returns its ID.
// List order is the authored priority.
func (c *Context) AddTrigger(t Trigger) uint64 {
	c.nextTriggerID++
	t.ID = c.nextTriggerID
	c.triggers = append(c.triggers, t)
	return t.ID
}

// RemoveTrigger removes the trigger with the given ID.
// Returns false if no such trigger exists.
func (c *Context) RemoveTrigger(id uint64) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.triggers = append(c.triggers[:i], c.triggers[i+1:]...)
	return true
}

// Trigger returns a copy of the trigger with the given ID.
func (c *Context) Trigger(id uint64) (Trigger, bool) {
	i := c.indexOf(id)
	if i < 0 {
		return Trigger{}, false
	}
	return c.triggers[i], true
}

// Triggers returns a copy of the trigger list.
func (c *Context) Triggers() []Trigger {
	out := make([]Trigger, len(c.triggers))
	copy(out, c.triggers)
	return out
}

// TriggerCount returns the number of triggers.
func (c *Context) TriggerCount() int {
	return len(c.triggers)
}

// ClearTriggers removes every trigger.
func (c *Context) ClearTriggers() {
	c.triggers = c.triggers[:0]
}

func (c *Context) indexOf(id uint64) int {
	for i := range c.triggers {
		if c.triggers[i].ID == id {
			return i
		}
	}
	return -1
}

// Stats returns the live stat map.
func (c *Context) Stats() model.Stats {
	return c.stats
}

// Stat returns the base value of stat.
func (c *Context) Stat(stat model.Stat) (float32, bool) {
	return c.stats.Get(stat)
}

// SetStat writes the base value of stat.
func (c *Context) SetStat(stat model.Stat, v float32) {
	c.stats.Set(stat, v)
}

// ClearStats removes every stat.
func (c *Context) ClearStats() {
	c.stats.Clear()
}

// EffectiveStat folds the base value through active status effects in
// list order. Returns false if the stat was never written.
func (c *Context) EffectiveStat(stat model.Stat) (float32, bool) {
	v, ok := c.stats.Get(stat)
	if !ok {
		return 0, false
	}
	for _, se := range c.statusEffects {
		if se.Stat == stat {
			v = se.Modification.Apply(v)
		}
	}
	return v, true
}

// AddStatusEffect appends a standing modifier.
func (c *Context) AddStatusEffect(se model.StatusEffect) {
	c.statusEffects = append(c.statusEffects, se)
}

// StatusEffects returns a copy of the active status effects.
func (c *Context) StatusEffects() []model.StatusEffect {
	out := make([]model.StatusEffect, len(c.statusEffects))
	copy(out, c.statusEffects)
	return out
}

// TickStatusEffects lowers timeouts by dt seconds and drops expired effects.
// Returns the number of effects removed.
func (c *Context) TickStatusEffects(dt float32) int {
	n := 0
	for _, se := range c.statusEffects {
		if se.Tick(dt) {
			c.statusEffects[n] = se
			n++
		}
	}
	removed := len(c.statusEffects) - n
	c.statusEffects = c.statusEffects[:n]
	return removed
}

// LastDamageSource returns the actor that last damaged this one.
func (c *Context) LastDamageSource() (model.EntityID, bool) {
	return c.lastSource, c.hasLastSource
}

// SetLastDamageSource records the actor that last damaged this one.
func (c *Context) SetLastDamageSource(id model.EntityID) {
	c.lastSource = id
	c.hasLastSource = true
}
