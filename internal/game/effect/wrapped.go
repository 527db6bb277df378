package effect

import (
	"fmt"
	"log/slog"
)

// WrappedEffect is the payload of kill, death and ability-hit triggers:
// a regular actor effect applied to the owner or the counterpart.
type WrappedEffect struct {
	Which WhichActor   `json:"which,omitempty" yaml:"which,omitempty"`
	Inner *ActorEffect `json:"inner" yaml:"inner"`
}

// Regular wraps inner for a kill, death or ability-hit trigger.
func Regular(inner ActorEffect, which WhichActor) WrappedEffect {
	return WrappedEffect{Which: which, Inner: &inner}
}

func (e WrappedEffect) Validate() error {
	if e.Inner == nil {
		return errMissingPayload
	}
	return e.Inner.Validate()
}

// Apply runs the inner effect. Skips with a warning when the selected
// actor is absent (e.g. a death with no killer).
func (e WrappedEffect) Apply(s Scope, cmds Commands) {
	target := s.pick(e.Which)
	if !target.ID.Valid() {
		slog.Warn("wrapped effect: selected actor missing", "owner", s.Self.ID, "which", e.Which)
		return
	}
	e.Inner.Apply(s.Self, target, s.Location, cmds)
}

func (e WrappedEffect) Describe() string {
	if e.Inner == nil {
		return "Nothing"
	}
	return fmt.Sprintf("%s on %s", e.Inner.Describe(), e.Which)
}
