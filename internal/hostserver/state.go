// Package hostserver holds the top-level state a dedicated lobby host
// needs outside of any one actor or spawn concern: who's in the lobby,
// who's banned, and how to reach them.
package hostserver

import (
	"sync"

	"go.uber.org/zap"

	"github.com/tma02/duckyhost/internal/channel"
	"github.com/tma02/duckyhost/internal/config"
	"github.com/tma02/duckyhost/internal/identity"
	"github.com/tma02/duckyhost/internal/variant"
)

// State is the host's own bookkeeping: lobby membership, the ban list,
// and the config/motd this lobby was started with. It does not own the
// actor registry, spawn manager, or peer-sync manager — those are
// separate collaborators a Game aggregate wires together.
type State struct {
	mu sync.RWMutex

	host      identity.Identity
	lobbyID   string
	lobbySet  bool
	banList   map[uint64]struct{}
	users     map[identity.Identity]struct{}
	cfg       config.Config

	sink channel.Sink
	log  *zap.SugaredLogger
}

// New builds host state for the given identity and configuration. sink
// receives every packet SendChat/Broadcast/etc. produce.
func New(host identity.Identity, cfg config.Config, sink channel.Sink, log *zap.SugaredLogger) *State {
	banList := make(map[uint64]struct{}, len(cfg.BanList))
	for _, id := range cfg.BanList {
		banList[id] = struct{}{}
	}
	return &State{
		host:    host,
		banList: banList,
		users:   make(map[identity.Identity]struct{}),
		cfg:     cfg,
		sink:    sink,
		log:     log,
	}
}

// HostIdentity returns this process's own platform identity.
func (s *State) HostIdentity() identity.Identity {
	return s.host
}

// SetLobbyID records the lobby id assigned once the platform SDK
// finishes creating the lobby.
func (s *State) SetLobbyID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lobbyID = id
	s.lobbySet = true
}

// LobbyID returns the assigned lobby id, if any.
func (s *State) LobbyID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lobbyID, s.lobbySet
}

// Ban adds an identity to the ban list.
func (s *State) Ban(id identity.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banList[uint64(id)] = struct{}{}
}

// Banned reports whether id is on the ban list.
func (s *State) Banned(id identity.Identity) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.banList[uint64(id)]
	return ok
}

// BanList returns every banned raw identity, for lobby metadata's
// banned_players field.
func (s *State) BanList() []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]uint64, 0, len(s.banList))
	for id := range s.banList {
		out = append(out, id)
	}
	return out
}

// AddUser records id as a lobby member.
func (s *State) AddUser(id identity.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = struct{}{}
}

// RemoveUser forgets id as a lobby member.
func (s *State) RemoveUser(id identity.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// Users lists the current lobby membership.
func (s *State) Users() []identity.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]identity.Identity, 0, len(s.users))
	for id := range s.users {
		out = append(out, id)
	}
	return out
}

// Config returns the lobby's configuration.
func (s *State) Config() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// SendChat sends a chat message packet to a single identity, matching
// the field set the peer client expects beyond the bare message text:
// a fixed white color, non-local, and an origin position/zone, since
// these fields are rendered even though this host has no in-world
// speaker position of its own.
func (s *State) SendChat(to identity.Identity, message string) {
	dict := variant.NewDictBuilder().
		Set("type", variant.NewString("message")).
		Set("message", variant.NewString(message)).
		Set("color", variant.NewString("ffffff")).
		Set("local", variant.NewBool(false)).
		Set("position", variant.NewVector3(0, 0, 0)).
		Set("zone", variant.NewString("")).
		Set("zone_owner", variant.NewInt(-1)).
		Build()
	s.enqueue(dict, channel.TargetIdentity(to), channel.GameState, channel.Reliable)
}

// BroadcastChat sends a chat message to every lobby member.
func (s *State) BroadcastChat(message string) {
	dict := variant.NewDictBuilder().
		Set("type", variant.NewString("message")).
		Set("message", variant.NewString(message)).
		Set("color", variant.NewString("ffffff")).
		Set("local", variant.NewBool(false)).
		Set("position", variant.NewVector3(0, 0, 0)).
		Set("zone", variant.NewString("")).
		Set("zone_owner", variant.NewInt(-1)).
		Build()
	s.enqueue(dict, channel.TargetAll(), channel.GameState, channel.Reliable)
}

// SendHandshake acknowledges a successful peer connection by
// broadcasting the connecting identity to the lobby.
func (s *State) SendHandshake(id identity.Identity) {
	dict := variant.NewDictBuilder().
		Set("type", variant.NewString("handshake")).
		Set("user_id", variant.NewString(id.String())).
		Build()
	s.enqueue(dict, channel.TargetAll(), channel.GameState, channel.Reliable)
}

// BroadcastUserJoinedWeblobby announces a browser-initiated join
// acceptance to every lobby member.
func (s *State) BroadcastUserJoinedWeblobby(id identity.Identity) {
	dict := variant.NewDictBuilder().
		Set("type", variant.NewString("user_joined_weblobby")).
		Set("user_id", variant.NewString(id.String())).
		Build()
	s.enqueue(dict, channel.TargetAll(), channel.GameState, channel.Reliable)
}

// SendForceDisconnect tells every peer to mark id as jailed, preventing
// it from reconnecting to other lobby members.
func (s *State) SendForceDisconnect(id identity.Identity) {
	dict := variant.NewDictBuilder().
		Set("type", variant.NewString("force_disconnect_player")).
		Set("user_id", variant.NewString(id.String())).
		Build()
	s.enqueue(dict, channel.TargetAll(), channel.GameState, channel.Reliable)
}

// Enqueue forwards a pre-built outgoing request to the underlying
// sink, implementing channel.Sink so other packages (the packet
// handler set, the spawn/actor/peersync managers) can all share this
// state's outbound queue without each holding their own reference.
func (s *State) Enqueue(req channel.OutgoingRequest) {
	if s.sink == nil {
		return
	}
	s.sink.Enqueue(req)
}

func (s *State) enqueue(dict variant.Value, target channel.Target, ch channel.Channel, rel channel.Reliability) {
	if s.sink == nil {
		return
	}
	data, err := variant.Encode(dict)
	if err != nil {
		if s.log != nil {
			s.log.Errorw("failed to encode outgoing packet", "error", err)
		}
		return
	}
	s.sink.Enqueue(channel.OutgoingRequest{
		Data:        data,
		Target:      target,
		Channel:     ch,
		Reliability: rel,
	})
}
