package spawn

import (
	"time"

	"github.com/tma02/duckyhost/internal/actorstate"
)

// physicsFrame is the game's native tick unit; the lifetime table in
// original_source/src/game/spawn.rs expresses durations as a frame
// count over 60.
const physicsFrame = time.Second / 60

// lifetimes maps a host-spawned ActorType to how long an instance
// lives before automatic expiry. Types absent from this map live
// forever (AmbientBird). Read-only after init, per spec.md §9's note
// that static per-type tables should be immutable after
// initialization.
var lifetimes = map[actorstate.ActorType]time.Duration{
	actorstate.Raincloud:      32500 * physicsFrame,
	actorstate.FishSpawn:      4800 * physicsFrame,
	actorstate.FishSpawnAlien: 14400 * physicsFrame,
	actorstate.MetalSpawn:     10000 * physicsFrame,
	actorstate.VoidPortal:     36000 * physicsFrame,
}

// countLimits caps the number of simultaneously-alive game spawns of
// each type.
var countLimits = map[actorstate.ActorType]int{
	actorstate.Raincloud:      2,
	actorstate.FishSpawn:      16,
	actorstate.FishSpawnAlien: 4,
	actorstate.MetalSpawn:     8,
	actorstate.VoidPortal:     1,
	actorstate.AmbientBird:    9,
}

func lifetimeOf(t actorstate.ActorType) (time.Duration, bool) {
	d, ok := lifetimes[t]
	return d, ok
}

func capOf(t actorstate.ActorType) (int, bool) {
	c, ok := countLimits[t]
	return c, ok
}
