package actorstate

import "github.com/tma02/duckyhost/internal/identity"

// NoZoneOwner is the sentinel zone_owner value for an actor with no
// owning zone actor.
const NoZoneOwner int64 = -1

// Actor is the authoritative record for one addressable world entity.
type Actor struct {
	ID        int64
	CreatorID identity.Identity
	ActorType ActorType
	Zone      string
	ZoneOwner int64
	Position  Vector3
	Rotation  Vector3
}

// Vector3 mirrors variant.Vector3 without importing the wire codec
// package from the world-state layer — actors store plain floats, the
// wire shape is a packets-layer concern.
type Vector3 struct {
	X, Y, Z float64
}
