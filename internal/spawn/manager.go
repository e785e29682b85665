// Package spawn drives timed and probabilistic creation of host-owned
// environmental actors: fish spawns, rainclouds, metal spawns, ambient
// birds, and the rare void portal, plus their expiry.
package spawn

import (
	"math/rand"
	"sync"
	"time"

	"github.com/tma02/duckyhost/internal/actorstate"
	"github.com/tma02/duckyhost/internal/identity"
)

const (
	hostSpawnInterval    = 10 * time.Second
	ambientSpawnInterval = 10 * time.Second
	metalSpawnInterval   = 20 * time.Second
	defaultAlienCooldown = 16
)

// Manager owns the host's environmental-actor spawn policy. It never
// talks to the wire directly; every creation/removal goes through
// actorstate.Manager, which owns broadcasting.
type Manager struct {
	mu sync.Mutex

	actors *actorstate.Manager
	host   identity.Identity
	rng    *rand.Rand

	gameSpawns    map[actorstate.ActorType][]int64
	userSpawns    map[actorstate.ActorType][]int64
	spawnTimeouts map[int64]time.Time
	spawnPoints   map[string][]actorstate.Vector3

	nextHostSpawn    time.Time
	nextAmbientSpawn time.Time
	nextMetalSpawn   time.Time
	alienCooldown    uint64
	rainChance       float64
}

// NewManager builds a SpawnManager. spawnPoints is normally the result
// of LoadSpawnPoints; rng may be shared with other randomized
// subsystems or nil to get a time-seeded default.
func NewManager(actors *actorstate.Manager, host identity.Identity, spawnPoints map[string][]actorstate.Vector3, rng *rand.Rand) *Manager {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := time.Now()
	return &Manager{
		actors:           actors,
		host:             host,
		rng:              rng,
		gameSpawns:       make(map[actorstate.ActorType][]int64),
		userSpawns:       make(map[actorstate.ActorType][]int64),
		spawnTimeouts:    make(map[int64]time.Time),
		spawnPoints:      spawnPoints,
		nextHostSpawn:    now.Add(hostSpawnInterval),
		nextAmbientSpawn: now.Add(ambientSpawnInterval),
		nextMetalSpawn:   now.Add(metalSpawnInterval),
		alienCooldown:    defaultAlienCooldown,
		rainChance:       rng.Float64() * 0.2,
	}
}

// OnReady seeds the world with the starting complement of metal spawns.
func (m *Manager) OnReady() {
	for i := 0; i < 4; i++ {
		m.spawnMetal()
	}
}

// OnUpdate runs one tick of timed spawn/expiry maintenance.
func (m *Manager) OnUpdate(now time.Time) {
	m.mu.Lock()
	dueHost := !now.Before(m.nextHostSpawn)
	if dueHost {
		m.nextHostSpawn = now.Add(hostSpawnInterval)
	}
	dueAmbient := !now.Before(m.nextAmbientSpawn)
	if dueAmbient {
		m.nextAmbientSpawn = now.Add(ambientSpawnInterval)
	}
	dueMetal := !now.Before(m.nextMetalSpawn)
	if dueMetal {
		m.nextMetalSpawn = now.Add(metalSpawnInterval)
	}
	m.mu.Unlock()

	if dueHost {
		m.rollRandomGameActor()
	}
	if dueAmbient {
		m.spawnAmbientBirds()
	}
	if dueMetal {
		m.spawnMetal()
	}
	m.despawnExpired(now)
}

func (m *Manager) despawnExpired(now time.Time) {
	m.mu.Lock()
	var expired []int64
	for id, deadline := range m.spawnTimeouts {
		if now.After(deadline) {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		m.despawn(id)
	}
}

func (m *Manager) despawn(id int64) {
	m.mu.Lock()
	for t, ids := range m.gameSpawns {
		m.gameSpawns[t] = removeID(ids, id)
	}
	for t, ids := range m.userSpawns {
		m.userSpawns[t] = removeID(ids, id)
	}
	delete(m.spawnTimeouts, id)
	m.mu.Unlock()

	m.actors.DespawnHostActor(id)
}

func removeID(ids []int64, id int64) []int64 {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

// rollRandomGameActor reproduces the hosted game's probabilistic
// actor-roll behavior: see spec.md §4.4.
func (m *Manager) rollRandomGameActor() {
	m.mu.Lock()
	chosen := actorstate.Unknown
	if m.rng.Int63()%2 == 0 {
		chosen = actorstate.FishSpawn
	}

	if m.alienCooldown > 0 {
		m.alienCooldown--
	}
	if m.rng.Float64() < 0.01 && m.rng.Float64() < 0.4 &&
		len(m.actors.ByType(actorstate.FishSpawnAlien)) == 0 && m.alienCooldown == 0 {
		chosen = actorstate.FishSpawnAlien
		m.alienCooldown = defaultAlienCooldown
	}

	if m.rng.Float64() < m.rainChance && m.rng.Float64() < 0.12 {
		chosen = actorstate.Raincloud
		m.rainChance = 0
	} else if m.rng.Float64() < 0.75 {
		m.rainChance += 0.001
	}

	if m.rng.Float64() < 0.01 && m.rng.Float64() < 0.25 {
		chosen = actorstate.VoidPortal
	}
	m.mu.Unlock()

	switch chosen {
	case actorstate.FishSpawn:
		m.spawnFish()
	case actorstate.FishSpawnAlien:
		m.spawnFishAlien()
	case actorstate.Raincloud:
		m.spawnGameRaincloud()
	case actorstate.VoidPortal:
		m.spawnVoidPortal()
	}
}

func (m *Manager) randomSpawnPoint(group string) (actorstate.Vector3, bool) {
	points := m.spawnPoints[group]
	if len(points) == 0 {
		return actorstate.Vector3{}, false
	}
	return points[m.rng.Intn(len(points))], true
}

func (m *Manager) jitter(v actorstate.Vector3, radius float64) actorstate.Vector3 {
	v.X += (m.rng.Float64()*2 - 1) * radius
	v.Z += (m.rng.Float64()*2 - 1) * radius
	return v
}

func (m *Manager) canSpawnGame(t actorstate.ActorType) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	limit, hasCap := capOf(t)
	if !hasCap {
		return true
	}
	return len(m.gameSpawns[t]) < limit
}

func (m *Manager) newActorID() int64 {
	for {
		id := m.rng.Int63n(1 << 31)
		if _, exists := m.actors.Get(id); !exists {
			return id
		}
	}
}

// spawnGameActor inserts and broadcasts a host-owned actor, then
// records it under its own type (not the Raincloud-keying bug present
// in the original source — see spec.md §9).
func (m *Manager) spawnGameActor(a *actorstate.Actor) {
	m.actors.SpawnHostActor(a)

	m.mu.Lock()
	m.gameSpawns[a.ActorType] = append(m.gameSpawns[a.ActorType], a.ID)
	if lifetime, ok := lifetimeOf(a.ActorType); ok {
		m.spawnTimeouts[a.ID] = time.Now().Add(lifetime)
	}
	m.mu.Unlock()
}

func (m *Manager) spawnUserActor(a *actorstate.Actor) {
	m.actors.SpawnHostActor(a)

	m.mu.Lock()
	m.userSpawns[a.ActorType] = append(m.userSpawns[a.ActorType], a.ID)
	if lifetime, ok := lifetimeOf(a.ActorType); ok {
		m.spawnTimeouts[a.ID] = time.Now().Add(lifetime)
	}
	m.mu.Unlock()
}

func (m *Manager) spawnGameRaincloud() {
	if !m.canSpawnGame(actorstate.Raincloud) {
		return
	}
	pos := actorstate.Vector3{
		X: -100 + m.rng.Float64()*250,
		Y: 42,
		Z: -150 + m.rng.Float64()*250,
	}
	m.spawnGameActor(&actorstate.Actor{
		ID:        m.newActorID(),
		CreatorID: m.host,
		ActorType: actorstate.Raincloud,
		Zone:      "main_zone",
		ZoneOwner: actorstate.NoZoneOwner,
		Position:  pos,
	})
}

func (m *Manager) spawnMetal() {
	if !m.canSpawnGame(actorstate.MetalSpawn) {
		return
	}
	group := "trash_point"
	if m.rng.Float64() < 0.15 {
		group = "shoreline_point"
	}
	pos, ok := m.randomSpawnPoint(group)
	if !ok {
		return
	}
	pos = m.jitter(pos, 0.5)
	m.spawnGameActor(&actorstate.Actor{
		ID:        m.newActorID(),
		CreatorID: m.host,
		ActorType: actorstate.MetalSpawn,
		Zone:      "main_zone",
		ZoneOwner: actorstate.NoZoneOwner,
		Position:  pos,
	})
}

func (m *Manager) spawnFish() {
	if !m.canSpawnGame(actorstate.FishSpawn) {
		return
	}
	pos, ok := m.randomSpawnPoint("fish_spawn")
	if !ok {
		return
	}
	m.spawnGameActor(&actorstate.Actor{
		ID:        m.newActorID(),
		CreatorID: m.host,
		ActorType: actorstate.FishSpawn,
		Zone:      "main_zone",
		ZoneOwner: actorstate.NoZoneOwner,
		Position:  pos,
	})
}

func (m *Manager) spawnFishAlien() {
	if !m.canSpawnGame(actorstate.FishSpawnAlien) {
		return
	}
	pos, ok := m.randomSpawnPoint("fish_spawn")
	if !ok {
		return
	}
	m.spawnGameActor(&actorstate.Actor{
		ID:        m.newActorID(),
		CreatorID: m.host,
		ActorType: actorstate.FishSpawnAlien,
		Zone:      "main_zone",
		ZoneOwner: actorstate.NoZoneOwner,
		Position:  pos,
	})
}

func (m *Manager) spawnVoidPortal() {
	if !m.canSpawnGame(actorstate.VoidPortal) {
		return
	}
	pos, ok := m.randomSpawnPoint("hidden_spot")
	if !ok {
		return
	}
	pos = m.jitter(pos, 0.5)
	m.spawnGameActor(&actorstate.Actor{
		ID:        m.newActorID(),
		CreatorID: m.host,
		ActorType: actorstate.VoidPortal,
		Zone:      "main_zone",
		ZoneOwner: actorstate.NoZoneOwner,
		Position:  pos,
	})
}

func (m *Manager) spawnAmbientBirds() {
	if !m.canSpawnGame(actorstate.AmbientBird) {
		return
	}
	count := int(m.rng.Int63()%3) + 1
	for i := 0; i < count; i++ {
		if !m.canSpawnGame(actorstate.AmbientBird) {
			return
		}
		pos, ok := m.randomSpawnPoint("trash_point")
		if !ok {
			return
		}
		pos = m.jitter(pos, 2.5)
		m.spawnGameActor(&actorstate.Actor{
			ID:        m.newActorID(),
			CreatorID: m.host,
			ActorType: actorstate.AmbientBird,
			Zone:      "main_zone",
			ZoneOwner: actorstate.NoZoneOwner,
			Position:  pos,
		})
	}
}

// CanSpawnUserActor reports whether a user-commanded spawn of t is
// currently admissible. Only Raincloud is user-spawnable, and only
// while no user-spawned Raincloud is alive.
func (m *Manager) CanSpawnUserActor(t actorstate.ActorType) bool {
	if t != actorstate.Raincloud {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.userSpawns[actorstate.Raincloud]) == 0
}

// SpawnUserRaincloud creates a user-commanded Raincloud at position in
// zone, using the same lifetime table as game spawns so the user slot
// clears naturally on expiry.
func (m *Manager) SpawnUserRaincloud(zone string, position actorstate.Vector3) {
	m.spawnUserActor(&actorstate.Actor{
		ID:        m.newActorID(),
		CreatorID: m.host,
		ActorType: actorstate.Raincloud,
		Zone:      zone,
		ZoneOwner: actorstate.NoZoneOwner,
		Position:  position,
	})
}

// NextUserSpawnDeadline returns the despawn deadline for the current
// user-spawned Raincloud, if one is alive.
func (m *Manager) NextUserSpawnDeadline() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.userSpawns[actorstate.Raincloud]
	if len(ids) == 0 {
		return time.Time{}, false
	}
	deadline, ok := m.spawnTimeouts[ids[0]]
	return deadline, ok
}

// GameSpawnCount returns the number of currently-alive game spawns of
// type t, for tests and metrics.
func (m *Manager) GameSpawnCount(t actorstate.ActorType) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.gameSpawns[t])
}
