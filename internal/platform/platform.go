// Package platform captures the one seam this module never implements
// itself: the lobby SDK. A dedicated host process talks to some
// networking platform (Steam, or an equivalent) that owns identity,
// lobby membership, session negotiation, and raw P2P channel delivery;
// this package describes that boundary as small interfaces so the rest
// of the module can be driven and tested without one.
package platform

import (
	"context"
	"time"

	"github.com/tma02/duckyhost/internal/identity"
)

// LobbyMetadata is the set of key/value pairs a dedicated host
// publishes so the platform's lobby browser can list it.
type LobbyMetadata map[string]string

// MembershipKind classifies a lobby membership change. Every kind but
// Joined is a "leave-class" event per spec.md's tick-loop step 2.
type MembershipKind int

const (
	MemberJoined MembershipKind = iota
	MemberLeft
	MemberKicked
	MemberBanned
	MemberDisconnected
)

// IsLeave reports whether k should trigger departure cleanup.
func (k MembershipKind) IsLeave() bool { return k != MemberJoined }

// MembershipEvent is one lobby join/leave/kick/ban/disconnect
// notification drained from the platform each tick.
type MembershipEvent struct {
	Identity identity.Identity
	Kind     MembershipKind
}

// Lobby is the boundary for creating and maintaining a lobby session,
// and for the platform's own chat-based weblobby join protocol.
type Lobby interface {
	// CreateLobby asynchronously requests a lobby capped at maxPlayers.
	// Completion is observed via PollLobbyCreated.
	CreateLobby(ctx context.Context, maxPlayers uint32) error
	// PollLobbyCreated drains one pending lobby-created notification.
	PollLobbyCreated() (lobbyID string, ok bool)
	// SetLobbyMetadata overwrites the lobby's published metadata.
	SetLobbyMetadata(ctx context.Context, lobbyID string, meta LobbyMetadata) error
	// SetLobbyJoinable flips the lobby's joinable flag, a distinct SDK
	// call from SetLobbyMetadata.
	SetLobbyJoinable(ctx context.Context, lobbyID string, joinable bool) error
	// PollMembershipEvent drains one pending membership change.
	PollMembershipEvent() (MembershipEvent, bool)
	// PollChatMessage drains one pending lobby chat message, the
	// platform's own control channel (not the game's message packets).
	PollChatMessage() (from identity.Identity, message string, ok bool)
	// SendChatMessage replies on the lobby chat control channel.
	SendChatMessage(message string) error
	// PollSessionRequest drains one pending P2P session request.
	PollSessionRequest() (identity.Identity, bool)
	// AcceptSession admits a pending session request.
	AcceptSession(id identity.Identity) error
	// RejectSession refuses a pending session request.
	RejectSession(id identity.Identity) error
	// Pump runs the platform SDK's own callback dispatch once.
	Pump()
}

// Channel is the boundary for raw packet delivery. channelID and
// reliable are the platform's own integers; callers translate from
// this module's channel.Channel/channel.Reliability. There is no
// native broadcast primitive — the platform only ever delivers to one
// peer at a time, so "send to everyone but the host" is application
// logic built on repeated SendTo calls (see wire.Send).
type Channel interface {
	// SendTo delivers data to a single peer on the given channel.
	SendTo(to identity.Identity, data []byte, channelID int, reliable int) error
	// PollChannel drains one inbound packet queued on channelID, if
	// any. ok is false when nothing is waiting on that channel.
	PollChannel(channelID int) (from identity.Identity, data []byte, ok bool)
}

// Clock abstracts wall-clock reads so the tick loop can be driven
// deterministically in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }
