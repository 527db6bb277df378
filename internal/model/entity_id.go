package model

import "fmt"

// EntityID identifies an actor or an ability object in the world arena.
// IDs are stable for the lifetime of the entity and never reused.
type EntityID uint32

// InvalidEntity is never assigned to a live entity.
const InvalidEntity EntityID = 0

// Valid reports whether id can refer to a live entity.
func (id EntityID) Valid() bool {
	return id != InvalidEntity
}

func (id EntityID) String() string {
	return fmt.Sprintf("#%08x", uint32(id))
}
