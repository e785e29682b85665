package packets

import (
	"github.com/tma02/duckyhost/internal/identity"
	"github.com/tma02/duckyhost/internal/runtime"
	"github.com/tma02/duckyhost/internal/variant"
)

// noopActorActions are accepted and silently discarded, kept only to
// suppress handler-miss logging for actions this host never needs to
// apply itself.
var noopActorActions = map[string]bool{
	"_change_id":        true,
	"_play_particle":    true,
	"_play_sfx":         true,
	"_update_held_item": true,
	"_update_cosmetics": true,
}

// actor_action {actor_id:Int, action:String, params:Array} — small
// closed sub-dispatch: _wipe_actor (host despawns the targeted actor
// iff host-owned), _set_zone (update zone metadata iff sender owns the
// actor), and a handful of no-ops kept only to suppress handler-miss
// logging.
func (h *Handlers) handleActorAction(game *runtime.Game, from identity.Identity, root variant.Value) {
	if !ValidateFields(root.Dict, map[string]variant.Tag{
		"actor_id": variant.TagInt,
		"action":   variant.TagString,
		"params":   variant.TagArray,
	}) {
		h.debugf("dropping actor_action: bad schema", "from", from)
		return
	}
	actorIDVal, _ := root.Dict.Get("actor_id")
	actionVal, _ := root.Dict.Get("action")
	paramsVal, _ := root.Dict.Get("params")

	switch actionVal.Str {
	case "_wipe_actor":
		h.handleWipeActor(game, from, actorIDVal.Int)
	case "_set_zone":
		h.handleSetZone(game, from, actorIDVal.Int, paramsVal.Array)
	default:
		if !noopActorActions[actionVal.Str] {
			h.debugf("unrecognized actor_action", "from", from, "action", actionVal.Str)
		}
	}
}

func (h *Handlers) handleWipeActor(game *runtime.Game, from identity.Identity, actorID int64) {
	actor, ok := game.Actors.Get(actorID)
	if !ok {
		return
	}
	if actor.CreatorID != h.host {
		h.debugf("dropping _wipe_actor: not host-owned", "from", from, "actor_id", actorID)
		return
	}
	game.Actors.DespawnHostActor(actorID)
}

func (h *Handlers) handleSetZone(game *runtime.Game, from identity.Identity, actorID int64, params []variant.Value) {
	actor, ok := game.Actors.Get(actorID)
	if !ok {
		return
	}
	if actor.CreatorID != from {
		h.debugf("dropping _set_zone: sender does not own actor", "from", from, "actor_id", actorID)
		return
	}
	if len(params) < 2 || params[0].Tag != variant.TagString || params[1].Tag != variant.TagInt {
		h.debugf("dropping _set_zone: bad params", "from", from, "actor_id", actorID)
		return
	}
	game.Actors.SetZone(actorID, params[0].Str, params[1].Int)
}
