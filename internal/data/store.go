package data

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no rule set has the requested name.
var ErrNotFound = errors.New("rule set not found")

// Store resolves rule-set assets by name.
// Implementations may block (disk, database); callers pass a context.
type Store interface {
	Load(ctx context.Context, name string) (*RuleSet, error)
}
