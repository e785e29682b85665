package spawn

import (
	"encoding/json"
	"os"

	"github.com/tma02/duckyhost/internal/actorstate"
)

type pointJSON struct {
	X, Y, Z float64
}

// LoadSpawnPoints reads the group_name -> []Vector3 resource from
// path. A missing or unreadable file is not an error: spawns simply
// skip when a group lookup fails, per spec.md §6.
func LoadSpawnPoints(path string) map[string][]actorstate.Vector3 {
	raw, err := os.ReadFile(path)
	if err != nil {
		return map[string][]actorstate.Vector3{}
	}

	var parsed map[string][]pointJSON
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return map[string][]actorstate.Vector3{}
	}

	out := make(map[string][]actorstate.Vector3, len(parsed))
	for group, points := range parsed {
		vecs := make([]actorstate.Vector3, 0, len(points))
		for _, p := range points {
			vecs = append(vecs, actorstate.Vector3{X: p.X, Y: p.Y, Z: p.Z})
		}
		out[group] = vecs
	}
	return out
}
