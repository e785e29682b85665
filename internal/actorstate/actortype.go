package actorstate

import "fmt"

// ActorType is the closed set of world-entity kinds the client knows
// how to render. Unknown is the zero value and covers any string the
// wire sends that this host doesn't recognize.
type ActorType int

const (
	Unknown ActorType = iota
	Player
	FishSpawn
	FishSpawnAlien
	Raincloud
	RaincloudTiny
	AquaFish
	MetalSpawn
	AmbientBird
	VoidPortal
	Picnic
	Canvas
	Bush
	Rock
	FishTrap
	FishTrapOcean
	IslandTiny
	IslandMed
	IslandBig
	Boombox
	Well
	Campfire
	Chair
	Table
	TherapistChair
	Toilet
	Whoopie
	Beer
	Greenscreen
	PortableBait
)

var actorTypeNames = map[ActorType]string{
	Unknown:        "Unknown",
	Player:         "Player",
	FishSpawn:      "FishSpawn",
	FishSpawnAlien: "FishSpawnAlien",
	Raincloud:      "Raincloud",
	RaincloudTiny:  "RaincloudTiny",
	AquaFish:       "AquaFish",
	MetalSpawn:     "MetalSpawn",
	AmbientBird:    "AmbientBird",
	VoidPortal:     "VoidPortal",
	Picnic:         "Picnic",
	Canvas:         "Canvas",
	Bush:           "Bush",
	Rock:           "Rock",
	FishTrap:       "FishTrap",
	FishTrapOcean:  "FishTrapOcean",
	IslandTiny:     "IslandTiny",
	IslandMed:      "IslandMed",
	IslandBig:      "IslandBig",
	Boombox:        "Boombox",
	Well:           "Well",
	Campfire:       "Campfire",
	Chair:          "Chair",
	Table:          "Table",
	TherapistChair: "TherapistChair",
	Toilet:         "Toilet",
	Whoopie:        "Whoopie",
	Beer:           "Beer",
	Greenscreen:    "Greenscreen",
	PortableBait:   "PortableBait",
}

var namesToActorType = func() map[string]ActorType {
	m := make(map[string]ActorType, len(actorTypeNames))
	for t, name := range actorTypeNames {
		m[name] = t
	}
	return m
}()

func (t ActorType) String() string {
	if name, ok := actorTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ActorType(%d)", int(t))
}

// ParseActorType resolves a wire type name to an ActorType, defaulting
// to Unknown for anything unrecognized rather than erroring — per
// spec.md this is schema-valid but semantically a no-op for handlers
// that special-case Unknown.
func ParseActorType(name string) ActorType {
	if t, ok := namesToActorType[name]; ok {
		return t
	}
	return Unknown
}

// hostOnlyTypes may only be instantiated by a host-flagged creator.
var hostOnlyTypes = map[ActorType]bool{
	FishSpawn:      true,
	FishSpawnAlien: true,
	Raincloud:      true,
	MetalSpawn:     true,
	AmbientBird:    true,
	VoidPortal:     true,
}

// IsHostOnly reports whether t may only be instantiated by the host.
func (t ActorType) IsHostOnly() bool {
	return hostOnlyTypes[t]
}
