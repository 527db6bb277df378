package model

// ChildType is the category of an ability-spawned object.
// Used to match ability triggers and route ability-end callbacks.
type ChildType uint8

const (
	ChildMelee ChildType = iota + 1
	ChildProjectile
	ChildMissile
	ChildGrenade
	ChildExplosion
	ChildActor
)

var childTypeNames = []string{"", "melee", "projectile", "missile", "grenade", "explosion", "child_actor"}

// ChildTypes lists every valid ChildType in declaration order.
var ChildTypes = []ChildType{ChildMelee, ChildProjectile, ChildMissile, ChildGrenade, ChildExplosion, ChildActor}

func (c ChildType) String() string { return NameOf(childTypeNames, int(c)) }

func (c ChildType) Valid() bool {
	return c > 0 && int(c) < len(childTypeNames)
}

func (c ChildType) MarshalText() ([]byte, error) {
	return EncodeName(childTypeNames, int(c), "child type")
}

func (c *ChildType) UnmarshalText(text []byte) error {
	v, err := DecodeName(childTypeNames, text, "child type")
	if err != nil {
		return err
	}
	*c = ChildType(v)
	return nil
}
