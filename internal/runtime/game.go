// Package runtime bundles the per-lobby collaborators (host state, the
// actor registry, the spawn manager, and the peer-sync manager) into
// one aggregate so packet handlers can take a single argument instead
// of four.
package runtime

import (
	"github.com/tma02/duckyhost/internal/actorstate"
	"github.com/tma02/duckyhost/internal/hostserver"
	"github.com/tma02/duckyhost/internal/peersync"
	"github.com/tma02/duckyhost/internal/spawn"
)

// Game is the wiring point every packet handler and tick step operates
// against.
type Game struct {
	Host    *hostserver.State
	Actors  *actorstate.Manager
	Spawner *spawn.Manager
	Peers   *peersync.Manager
}

// New bundles the given collaborators into a Game.
func New(host *hostserver.State, actors *actorstate.Manager, spawner *spawn.Manager, peers *peersync.Manager) *Game {
	return &Game{Host: host, Actors: actors, Spawner: spawner, Peers: peers}
}
