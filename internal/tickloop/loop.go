// Package tickloop implements the single-threaded cooperative loop
// that drains every platform callback source, dispatches inbound
// packets, runs spawn/peer maintenance, and dispatches the outbound
// queue, all on one goroutine.
package tickloop

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tma02/duckyhost/internal/channel"
	"github.com/tma02/duckyhost/internal/identity"
	"github.com/tma02/duckyhost/internal/runtime"
	"github.com/tma02/duckyhost/internal/wire"

	"github.com/tma02/duckyhost/internal/platform"
)

// TickInterval is the fixed loop period: 16 Hz, TICK_MS ≈ 62ms.
const TickInterval = time.Second * 62 / 1000

// LobbyMetadataRefreshInterval is how often lobby metadata is re-pushed.
const LobbyMetadataRefreshInterval = 20 * time.Second

// Magic chat-control strings the weblobby join protocol recognizes.
const weblobbyJoinRequest = "$weblobby_join_request"

// Loop owns every platform-facing poll and the outbound queue drain.
// All mutation of Game state happens on the goroutine that calls Run.
type Loop struct {
	game   *runtime.Game
	router *wire.Router
	lobby  platform.Lobby
	ch     platform.Channel
	clock  platform.Clock
	queue  *OutboundQueue
	log    *zap.SugaredLogger

	nextMetadataRefresh time.Time
}

// New builds a tick loop. queue must be the same OutboundQueue handed
// to hostserver.New and to the actor and peersync managers as their
// channel.Sink — it is the one shared object every producer may
// enqueue onto without a lock.
func New(game *runtime.Game, router *wire.Router, lobby platform.Lobby, ch platform.Channel, clock platform.Clock, queue *OutboundQueue, log *zap.SugaredLogger) *Loop {
	return &Loop{
		game:   game,
		router: router,
		lobby:  lobby,
		ch:     ch,
		clock:  clock,
		queue:  queue,
		log:    log,
	}
}

// Start requests lobby creation. A failure here is fatal per spec.md
// §7's platform error class: the process has nothing to serve without
// a lobby.
func (l *Loop) Start(ctx context.Context, maxPlayers uint32) error {
	if err := l.lobby.CreateLobby(ctx, maxPlayers); err != nil {
		return fmt.Errorf("tickloop: create lobby: %w", err)
	}
	return nil
}

// Run drives the loop until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.RunOnce(ctx, l.clock.Now())
		}
	}
}

// RunOnce executes exactly one iteration of the 10-step loop.
func (l *Loop) RunOnce(ctx context.Context, now time.Time) {
	l.drainLobbyCreated(ctx, now)
	l.drainMembershipEvents()
	l.drainChatMessages()
	l.drainSessionRequests()
	l.drainOutbound()
	l.maybeRefreshMetadata(ctx, now)
	l.lobby.Pump()
	l.drainInboundChannels()
	l.game.Spawner.OnUpdate(now)
	l.game.Peers.OnUpdate(now)
}

// 1. Drain the create_lobby channel; on any new id, store it and push
// lobby metadata.
func (l *Loop) drainLobbyCreated(ctx context.Context, now time.Time) {
	for {
		id, ok := l.lobby.PollLobbyCreated()
		if !ok {
			return
		}
		l.game.Host.SetLobbyID(id)
		l.pushMetadata(ctx, now)
	}
}

// 2. Drain membership changes; on leave-class events remove the user
// and their actors, on a banned join broadcast force_disconnect_player.
func (l *Loop) drainMembershipEvents() {
	for {
		evt, ok := l.lobby.PollMembershipEvent()
		if !ok {
			return
		}
		if evt.Kind.IsLeave() {
			l.game.Host.RemoveUser(evt.Identity)
			l.game.Actors.RemoveAllByCreator(evt.Identity)
			continue
		}
		if l.game.Host.Banned(evt.Identity) {
			l.game.Host.SendForceDisconnect(evt.Identity)
			continue
		}
		l.game.Host.AddUser(evt.Identity)
	}
}

// 3. Drain lobby_chat_msg; handle the weblobby join-request protocol.
func (l *Loop) drainChatMessages() {
	for {
		from, message, ok := l.lobby.PollChatMessage()
		if !ok {
			return
		}
		if message != weblobbyJoinRequest {
			continue
		}
		l.handleWeblobbyJoinRequest(from)
	}
}

// handleWeblobbyJoinRequest answers a browser-initiated join request
// sent over the lobby chat channel rather than a P2P session request:
// deny outright if banned, deny as full once at capacity, otherwise
// admit the user and announce them to the weblobby.
func (l *Loop) handleWeblobbyJoinRequest(from identity.Identity) {
	u := from.String()
	if l.game.Host.Banned(from) {
		_ = l.lobby.SendChatMessage("$weblobby_request_denied_deny-" + u)
		return
	}
	cfg := l.game.Host.Config()
	if uint32(len(l.game.Host.Users())) >= cfg.MaxPlayers {
		_ = l.lobby.SendChatMessage("$weblobby_request_denied_full-" + u)
		return
	}
	l.game.Host.AddUser(from)
	_ = l.lobby.SendChatMessage("$weblobby_request_accepted-" + u)
	l.game.Host.BroadcastUserJoinedWeblobby(from)
}

// 4. Drain session requests; accept non-banned identities, record them
// as users and reply with a handshake packet, reject banned ones.
func (l *Loop) drainSessionRequests() {
	for {
		id, ok := l.lobby.PollSessionRequest()
		if !ok {
			return
		}
		if l.game.Host.Banned(id) {
			if err := l.lobby.RejectSession(id); err != nil && l.log != nil {
				l.log.Warnw("reject session failed", "identity", id, "error", err)
			}
			continue
		}
		if err := l.lobby.AcceptSession(id); err != nil {
			if l.log != nil {
				l.log.Warnw("accept session failed", "identity", id, "error", err)
			}
			continue
		}
		// The handshake is a TargetAll broadcast over Users(), so the
		// requester must be a user for the reply to reach it.
		l.game.Host.AddUser(id)
		l.game.Host.SendHandshake(id)
	}
}

// 5. Drain outbound packet queue and dispatch via the send path.
func (l *Loop) drainOutbound() {
	pending := l.queue.Drain()
	if len(pending) == 0 {
		return
	}
	members := l.game.Host.Users()
	host := l.game.Host.HostIdentity()
	for _, req := range pending {
		if err := wire.Send(l.ch, req, members, host); err != nil && l.log != nil {
			l.log.Debugw("dropping outbound packet: send failed", "error", err)
		}
	}
}

// 6. Refresh lobby metadata on its own ~20s cadence.
func (l *Loop) maybeRefreshMetadata(ctx context.Context, now time.Time) {
	if now.Before(l.nextMetadataRefresh) {
		return
	}
	l.nextMetadataRefresh = now.Add(LobbyMetadataRefreshInterval)
	l.pushMetadata(ctx, now)
	_ = l.lobby.SendChatMessage("^^duckyy_heartbeat")
}

func (l *Loop) pushMetadata(ctx context.Context, now time.Time) {
	lobbyID, ok := l.game.Host.LobbyID()
	if !ok {
		return
	}
	if err := l.lobby.SetLobbyJoinable(ctx, lobbyID, true); err != nil && l.log != nil {
		l.log.Warnw("set lobby joinable failed", "error", err)
	}
	cfg := l.game.Host.Config()
	meta := BuildLobbyMetadata(cfg, l.game.Host.BanList(), len(l.game.Host.Users()), now)
	if err := l.lobby.SetLobbyMetadata(ctx, lobbyID, meta); err != nil && l.log != nil {
		l.log.Warnw("set lobby metadata failed", "error", err)
	}
}

// 8. For each of the 7 channels, repeatedly fetch up to one inbound
// message until empty.
func (l *Loop) drainInboundChannels() {
	for c := channel.ActorUpdate; c <= channel.Speech; c++ {
		for {
			from, data, ok := l.ch.PollChannel(int(c))
			if !ok {
				break
			}
			l.router.HandleInbound(l.game, from, data)
		}
	}
}
