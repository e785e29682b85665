package actorstate

import (
	"fmt"
	"sync"

	"github.com/tma02/duckyhost/internal/channel"
	"github.com/tma02/duckyhost/internal/identity"
	"github.com/tma02/duckyhost/internal/variant"
)

// MaxActorsPerPlayer bounds the total actor count a single creator may
// own, enforced by user_can_create and checked as a testable property
// after any sequence of spawns.
const MaxActorsPerPlayer = 32

// Manager is the canonical, mutex-guarded actor registry. Mutation is
// expected to happen only on the tick thread (spec.md §5); the mutex
// exists for the same reason the teacher guards its player/entity maps
// — belt and braces against the one cross-thread caller.
type Manager struct {
	mu sync.RWMutex

	actorsByID              map[int64]*Actor
	actorIDsByCreator       map[identity.Identity]map[int64]struct{}
	playerActorIDByCreator  map[identity.Identity]int64
	sink                    channel.Sink
}

// NewManager builds an empty registry. sink receives the broadcasts
// SpawnHostActor/DespawnHostActor are required to emit.
func NewManager(sink channel.Sink) *Manager {
	return &Manager{
		actorsByID:             make(map[int64]*Actor),
		actorIDsByCreator:      make(map[identity.Identity]map[int64]struct{}),
		playerActorIDByCreator: make(map[identity.Identity]int64),
		sink:                   sink,
	}
}

// Insert adds an actor to the registry and its secondary indexes. It
// does not check quotas or broadcast — callers that need those do so
// explicitly (UserCanCreate, SpawnHostActor).
func (m *Manager) Insert(a *Actor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertLocked(a)
}

func (m *Manager) insertLocked(a *Actor) {
	m.actorsByID[a.ID] = a
	set, ok := m.actorIDsByCreator[a.CreatorID]
	if !ok {
		set = make(map[int64]struct{})
		m.actorIDsByCreator[a.CreatorID] = set
	}
	set[a.ID] = struct{}{}
	if a.ActorType == Player {
		m.playerActorIDByCreator[a.CreatorID] = a.ID
	}
}

// Remove deletes an actor from the registry and its secondary indexes.
func (m *Manager) Remove(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(id)
}

func (m *Manager) removeLocked(id int64) {
	a, ok := m.actorsByID[id]
	if !ok {
		return
	}
	delete(m.actorsByID, id)
	if set, ok := m.actorIDsByCreator[a.CreatorID]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(m.actorIDsByCreator, a.CreatorID)
		}
	}
	if a.ActorType == Player {
		if pid, ok := m.playerActorIDByCreator[a.CreatorID]; ok && pid == id {
			delete(m.playerActorIDByCreator, a.CreatorID)
		}
	}
}

// Get returns the actor with the given id, if any.
func (m *Manager) Get(id int64) (Actor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.actorsByID[id]
	if !ok {
		return Actor{}, false
	}
	return *a, true
}

// Mutate applies fn to the actor with the given id while holding the
// write lock, the equivalent of the spec's get_mut. Returns false if
// no such actor exists.
func (m *Manager) Mutate(id int64, fn func(a *Actor)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.actorsByID[id]
	if !ok {
		return false
	}
	fn(a)
	return true
}

// PlayerOf returns the single Player actor owned by creator, if any.
func (m *Manager) PlayerOf(creator identity.Identity) (Actor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.playerActorIDByCreator[creator]
	if !ok {
		return Actor{}, false
	}
	return *m.actorsByID[id], true
}

// ByCreator lists every actor owned by creator.
func (m *Manager) ByCreator(creator identity.Identity) []Actor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set := m.actorIDsByCreator[creator]
	out := make([]Actor, 0, len(set))
	for id := range set {
		out = append(out, *m.actorsByID[id])
	}
	return out
}

// ByType lists every actor of the given type.
func (m *Manager) ByType(t ActorType) []Actor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Actor
	for _, a := range m.actorsByID {
		if a.ActorType == t {
			out = append(out, *a)
		}
	}
	return out
}

// ByZone lists every actor currently in the named zone.
func (m *Manager) ByZone(zone string) []Actor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Actor
	for _, a := range m.actorsByID {
		if a.Zone == zone {
			out = append(out, *a)
		}
	}
	return out
}

// countByCreatorLocked returns the current owned-actor count for
// creator. Caller must hold at least the read lock.
func (m *Manager) countByCreatorLocked(creator identity.Identity) int {
	return len(m.actorIDsByCreator[creator])
}

// UserCanCreate evaluates the admission rules of spec.md §4.3 in
// order: a creator may have at most one Player actor, host-only types
// require isHost, and everything else is capped at MaxActorsPerPlayer.
func (m *Manager) UserCanCreate(creator identity.Identity, isHost bool, t ActorType) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if t == Player {
		_, hasPlayer := m.playerActorIDByCreator[creator]
		return !hasPlayer
	}
	if t.IsHostOnly() {
		return isHost
	}
	return m.countByCreatorLocked(creator) < MaxActorsPerPlayer
}

// RemoveAllByCreator removes every actor owned by creator, e.g. on
// lobby departure. It snapshots the id set before mutating so the
// primary map and indexes stay consistent throughout.
func (m *Manager) RemoveAllByCreator(creator identity.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := m.actorIDsByCreator[creator]
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	for _, id := range ids {
		m.removeLocked(id)
	}
}

// SetZone updates an actor's zone metadata in place and returns the
// updated actor. Returns false if the actor doesn't exist.
func (m *Manager) SetZone(id int64, zone string, zoneOwner int64) (Actor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.actorsByID[id]
	if !ok {
		return Actor{}, false
	}
	a.Zone = zone
	a.ZoneOwner = zoneOwner
	return *a, true
}

// SetHostActorZone updates a host-owned actor's zone and broadcasts the
// change as a set_actor_zone packet, the host-initiated counterpart to
// the peer-initiated actor_action("_set_zone") sub-handler. Returns
// false if the actor doesn't exist.
func (m *Manager) SetHostActorZone(id int64, zone string, zoneOwner int64) bool {
	a, ok := m.SetZone(id, zone, zoneOwner)
	if !ok {
		return false
	}
	m.broadcastSetActorZone(a)
	return true
}

func (m *Manager) broadcastSetActorZone(a Actor) {
	dict := variant.NewDictBuilder().
		Set("type", variant.NewString("set_actor_zone")).
		Set("actor_id", variant.NewInt(a.ID)).
		Set("zone", variant.NewString(a.Zone)).
		Set("zone_owner", variant.NewInt(a.ZoneOwner)).
		Build()
	m.enqueue(dict, channel.TargetAll(), channel.GameState, channel.Reliable)
}

// SpawnHostActor inserts a host-owned actor and broadcasts it. The
// second broadcast (actor_update) is required: a just-instanced actor
// otherwise renders at world origin on peers until its first
// position update.
func (m *Manager) SpawnHostActor(a *Actor) bool {
	m.mu.Lock()
	m.insertLocked(a)
	snapshot := *a
	m.mu.Unlock()

	m.broadcastInstanceActor(snapshot)
	m.broadcastActorUpdate(snapshot)
	return true
}

// DespawnHostActor broadcasts a queue_free action for id, then removes
// it locally.
func (m *Manager) DespawnHostActor(id int64) bool {
	m.mu.RLock()
	_, ok := m.actorsByID[id]
	m.mu.RUnlock()
	if !ok {
		return false
	}

	m.broadcastQueueFree(id)

	m.mu.Lock()
	m.removeLocked(id)
	m.mu.Unlock()
	return true
}

// SyncAllOwnedBy sends an instance_actor + actor_update pair for every
// actor owned by host to target — used to bring a newly-joined peer up
// to date (new_player_join handler).
func (m *Manager) SyncAllOwnedBy(host identity.Identity, target identity.Identity) {
	for _, a := range m.ByCreator(host) {
		m.sendInstanceActor(a, channel.TargetIdentity(target))
		m.sendActorUpdate(a, channel.TargetIdentity(target))
	}
}

func (m *Manager) broadcastInstanceActor(a Actor) {
	m.sendInstanceActor(a, channel.TargetAll())
}

func (m *Manager) broadcastActorUpdate(a Actor) {
	m.sendActorUpdate(a, channel.TargetAll())
}

func (m *Manager) sendInstanceActor(a Actor, target channel.Target) {
	params := variant.NewDictBuilder().
		Set("actor_id", variant.NewInt(a.ID)).
		Set("actor_type", variant.NewString(a.ActorType.String())).
		Set("creator_id", variant.NewInt(int64(a.CreatorID))).
		Set("zone", variant.NewString(a.Zone)).
		Set("zone_owner", variant.NewInt(a.ZoneOwner)).
		Set("at", variant.NewVector3(a.Position.X, a.Position.Y, a.Position.Z)).
		Set("rot", variant.NewVector3(a.Rotation.X, a.Rotation.Y, a.Rotation.Z)).
		Build()
	dict := variant.NewDictBuilder().
		Set("type", variant.NewString("instance_actor")).
		Set("params", params).
		Build()
	m.enqueue(dict, target, channel.GameState, channel.Reliable)
}

func (m *Manager) sendActorUpdate(a Actor, target channel.Target) {
	dict := variant.NewDictBuilder().
		Set("type", variant.NewString("actor_update")).
		Set("actor_id", variant.NewInt(a.ID)).
		Set("pos", variant.NewVector3(a.Position.X, a.Position.Y, a.Position.Z)).
		Set("rot", variant.NewVector3(a.Rotation.X, a.Rotation.Y, a.Rotation.Z)).
		Build()
	m.enqueue(dict, target, channel.ActorUpdate, channel.Reliable)
}

func (m *Manager) broadcastQueueFree(id int64) {
	dict := variant.NewDictBuilder().
		Set("type", variant.NewString("actor_action")).
		Set("actor_id", variant.NewInt(id)).
		Set("action", variant.NewString("queue_free")).
		Set("params", variant.NewArray()).
		Build()
	m.enqueue(dict, channel.TargetAll(), channel.ActorAction, channel.Reliable)
}

func (m *Manager) enqueue(dict variant.Value, target channel.Target, ch channel.Channel, rel channel.Reliability) {
	if m.sink == nil {
		return
	}
	data, err := variant.Encode(dict)
	if err != nil {
		// Encode is pure/total over constructible values; a failure here
		// means a caller built an unsupported Value, which is a bug in
		// this package, not a runtime condition to recover from.
		panic(fmt.Sprintf("actorstate: failed to encode outgoing packet: %v", err))
	}
	m.sink.Enqueue(channel.OutgoingRequest{
		Data:        data,
		Target:      target,
		Channel:     ch,
		Reliability: rel,
	})
}
