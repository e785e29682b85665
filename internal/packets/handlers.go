package packets

import (
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/tma02/duckyhost/internal/actorstate"
	"github.com/tma02/duckyhost/internal/channel"
	"github.com/tma02/duckyhost/internal/command"
	"github.com/tma02/duckyhost/internal/identity"
	"github.com/tma02/duckyhost/internal/runtime"
	"github.com/tma02/duckyhost/internal/variant"
	"github.com/tma02/duckyhost/internal/wire"
)

// Handlers bundles the fixed handler set with the host identity and
// command registry each handler needs but that the wire.Handler
// signature itself doesn't carry.
type Handlers struct {
	host     identity.Identity
	commands *command.Registry
	log      *zap.SugaredLogger
}

// NewHandlers builds the handler set. host is this process's own
// identity (used to tell host-owned actors apart from peer-owned
// ones); commands is the chat command registry the message handler
// dispatches into.
func NewHandlers(host identity.Identity, commands *command.Registry, log *zap.SugaredLogger) *Handlers {
	return &Handlers{host: host, commands: commands, log: log}
}

// RegisterAll wires every handler into router under its wire "type".
func (h *Handlers) RegisterAll(router *wire.Router) {
	router.Register("handshake", h.handleHandshake)
	router.Register("new_player_join", h.handleNewPlayerJoin)
	router.Register("request_actors", h.handleRequestActors)
	router.Register("actor_request_send", h.handleActorRequestSend)
	router.Register("instance_actor", h.handleInstanceActor)
	router.Register("actor_update", h.handleActorUpdate)
	router.Register("actor_action", h.handleActorAction)
	router.Register("actor_animation_update", h.handleActorAnimationUpdate)
	router.Register("request_ping", h.handleRequestPing)
	router.Register("message", h.handleMessage)
}

func (h *Handlers) debugf(msg string, kv ...interface{}) {
	if h.log != nil {
		h.log.Debugw(msg, kv...)
	}
}

// handshake {user_id: String} — record arrival.
func (h *Handlers) handleHandshake(game *runtime.Game, from identity.Identity, root variant.Value) {
	if !ValidateFields(root.Dict, map[string]variant.Tag{"user_id": variant.TagString}) {
		h.debugf("dropping handshake: bad schema", "from", from)
		return
	}
	game.Host.AddUser(from)
	game.Host.SendHandshake(from)
}

// new_player_join — host replies with a message packet containing the
// motd and syncs its owned actors to the new peer.
func (h *Handlers) handleNewPlayerJoin(game *runtime.Game, from identity.Identity, _ variant.Value) {
	game.Host.SendChat(from, game.Host.Config().MOTD)
	game.Actors.SyncAllOwnedBy(h.host, from)
}

// request_actors — host replies with actor_request_send carrying a
// thin {id, owner, type} array of every actor the host owns.
func (h *Handlers) handleRequestActors(game *runtime.Game, from identity.Identity, _ variant.Value) {
	owned := game.Actors.ByCreator(h.host)
	items := make([]variant.Value, 0, len(owned))
	for _, a := range owned {
		items = append(items, variant.NewDictBuilder().
			Set("id", variant.NewInt(a.ID)).
			Set("type", variant.NewString(a.ActorType.String())).
			Set("owner", variant.NewInt(int64(a.CreatorID))).
			Build())
	}
	dict := variant.NewDictBuilder().
		Set("type", variant.NewString("actor_request_send")).
		Set("list", variant.NewArray(items...)).
		Build()
	sendTo(game, from, dict, channel.GameState, channel.Reliable)
}

// actor_request_send {list: Array[{id:Int, type:String, owner:Int}]} —
// insert each as a peer-owned actor under the sender's identity,
// subject to quota.
func (h *Handlers) handleActorRequestSend(game *runtime.Game, from identity.Identity, root variant.Value) {
	listVal, ok := root.Dict.Get("list")
	if !ok || listVal.Tag != variant.TagArray {
		h.debugf("dropping actor_request_send: missing list", "from", from)
		return
	}
	for _, item := range listVal.Array {
		if item.Tag != variant.TagDictionary {
			continue
		}
		if !ValidateFields(item.Dict, map[string]variant.Tag{
			"id":    variant.TagInt,
			"type":  variant.TagString,
			"owner": variant.TagInt,
		}) {
			h.debugf("dropping actor_request_send entry: bad schema", "from", from)
			continue
		}
		idVal, _ := item.Dict.Get("id")
		typeVal, _ := item.Dict.Get("type")

		actorType := actorstate.ParseActorType(typeVal.Str)
		if !game.Actors.UserCanCreate(from, false, actorType) {
			h.debugf("blocked actor_request_send insert", "from", from, "actor_type", actorType.String())
			continue
		}
		game.Actors.Insert(&actorstate.Actor{
			ID:        idVal.Int,
			CreatorID: from,
			ActorType: actorType,
			Zone:      "",
			ZoneOwner: actorstate.NoZoneOwner,
		})
	}
}

// instance_actor {params: {actor_id, actor_type, creator_id, zone,
// zone_owner, at, rot}} — validate schema; reject if the sender is
// over quota for that type or the type is host-only; otherwise insert
// under the sender.
func (h *Handlers) handleInstanceActor(game *runtime.Game, from identity.Identity, root variant.Value) {
	paramsVal, ok := root.Dict.Get("params")
	if !ok || paramsVal.Tag != variant.TagDictionary {
		h.debugf("dropping instance_actor: missing params", "from", from)
		return
	}
	params := paramsVal.Dict
	if !ValidateFields(params, map[string]variant.Tag{
		"actor_id":   variant.TagInt,
		"actor_type": variant.TagString,
		"zone":       variant.TagString,
		"zone_owner": variant.TagInt,
		"at":         variant.TagVector3,
		"rot":        variant.TagVector3,
	}) {
		h.debugf("dropping instance_actor: bad schema", "from", from)
		return
	}
	actorIDVal, _ := params.Get("actor_id")
	actorTypeVal, _ := params.Get("actor_type")
	zoneVal, _ := params.Get("zone")
	zoneOwnerVal, _ := params.Get("zone_owner")
	atVal, _ := params.Get("at")
	rotVal, _ := params.Get("rot")

	actorType := actorstate.ParseActorType(actorTypeVal.Str)
	if !game.Actors.UserCanCreate(from, false, actorType) {
		h.debugf("blocked instance_actor insert", "from", from, "actor_type", actorType.String())
		return
	}

	game.Actors.Insert(&actorstate.Actor{
		ID:        actorIDVal.Int,
		CreatorID: from,
		ActorType: actorType,
		Zone:      zoneVal.Str,
		ZoneOwner: zoneOwnerVal.Int,
		Position:  actorstate.Vector3{X: atVal.Vector3.X, Y: atVal.Vector3.Y, Z: atVal.Vector3.Z},
		Rotation:  actorstate.Vector3{X: rotVal.Vector3.X, Y: rotVal.Vector3.Y, Z: rotVal.Vector3.Z},
	})
}

// actor_update {actor_id:Int, pos:Vector3, rot:Vector3} — reject when
// the local record's creator ≠ sender; when no local record exists,
// mark the sender in the peer-sync manager; otherwise apply position
// and rotation in place.
func (h *Handlers) handleActorUpdate(game *runtime.Game, from identity.Identity, root variant.Value) {
	if !ValidateFields(root.Dict, map[string]variant.Tag{
		"actor_id": variant.TagInt,
		"pos":      variant.TagVector3,
		"rot":      variant.TagVector3,
	}) {
		h.debugf("dropping actor_update: bad schema", "from", from)
		return
	}
	actorIDVal, _ := root.Dict.Get("actor_id")
	posVal, _ := root.Dict.Get("pos")
	rotVal, _ := root.Dict.Get("rot")

	actor, ok := game.Actors.Get(actorIDVal.Int)
	if !ok {
		game.Peers.AddPeerNeedsUpdate(from)
		return
	}
	if actor.CreatorID != from {
		h.debugf("dropping actor_update: sender does not own actor", "from", from, "actor_id", actorIDVal.Int)
		return
	}
	game.Actors.Mutate(actorIDVal.Int, func(a *actorstate.Actor) {
		a.Position = actorstate.Vector3{X: posVal.Vector3.X, Y: posVal.Vector3.Y, Z: posVal.Vector3.Z}
		a.Rotation = actorstate.Vector3{X: rotVal.Vector3.X, Y: rotVal.Vector3.Y, Z: rotVal.Vector3.Z}
	})
}

// actor_animation_update — no-op, absorbed to avoid log spam.
func (h *Handlers) handleActorAnimationUpdate(_ *runtime.Game, _ identity.Identity, _ variant.Value) {}

// request_ping — reply on Unreliable with send_ping {time, from}.
func (h *Handlers) handleRequestPing(game *runtime.Game, from identity.Identity, _ variant.Value) {
	nowSeconds := float64(time.Now().UnixNano()) / float64(time.Second)
	dict := variant.NewDictBuilder().
		Set("type", variant.NewString("send_ping")).
		Set("time", variant.NewString(strconv.FormatFloat(nowSeconds, 'f', -1, 64))).
		Set("from", variant.NewString(h.host.String())).
		Build()
	sendTo(game, from, dict, channel.GameState, channel.Unreliable)
}

// message {message: String} — invoke the chat/command pipeline.
func (h *Handlers) handleMessage(game *runtime.Game, from identity.Identity, root variant.Value) {
	if !ValidateFields(root.Dict, map[string]variant.Tag{"message": variant.TagString}) {
		return
	}
	messageVal, _ := root.Dict.Get("message")

	name, args, ok := command.ParseChatMessage(messageVal.Str)
	if !ok {
		return
	}
	handler, ok := h.commands.Resolve(name)
	if !ok {
		return
	}
	handler(game, from == h.host, command.Context{Sender: from, Name: name, Args: args})
}

func sendTo(game *runtime.Game, to identity.Identity, dict variant.Value, ch channel.Channel, rel channel.Reliability) {
	data, err := variant.Encode(dict)
	if err != nil {
		return
	}
	game.Host.Enqueue(channel.OutgoingRequest{
		Data:        data,
		Target:      channel.TargetIdentity(to),
		Channel:     ch,
		Reliability: rel,
	})
}
