// Package channel defines the fixed logical channels the platform
// messaging layer multiplexes over, and the outbound-packet-request
// value every producer (handlers, managers, the tick loop) enqueues
// instead of talking to the platform directly.
package channel

import "github.com/tma02/duckyhost/internal/identity"

// Channel is one of the 7 logical streams, each with its own
// reliability semantics, carried by the platform.
type Channel int

const (
	ActorUpdate Channel = iota
	ActorAction
	GameState
	Chalk
	Guitar
	ActorAnimation
	Speech
)

var channelNames = [...]string{
	"ActorUpdate", "ActorAction", "GameState", "Chalk", "Guitar", "ActorAnimation", "Speech",
}

func (c Channel) String() string {
	if int(c) >= 0 && int(c) < len(channelNames) {
		return channelNames[c]
	}
	return "Channel(unknown)"
}

// Reliability mirrors the platform's send-flag classes.
type Reliability int

const (
	Reliable Reliability = iota
	Unreliable
	UnreliableNoDelay
)

// Target picks who an outbound packet is addressed to.
type Target struct {
	// All, when true, means broadcast to every lobby member except the
	// host. When false, SteamID names a single recipient.
	All     bool
	SteamID identity.Identity
}

// TargetAll addresses every lobby member but the host.
func TargetAll() Target { return Target{All: true} }

// TargetIdentity addresses a single recipient.
func TargetIdentity(id identity.Identity) Target { return Target{SteamID: id} }

// OutgoingRequest is a fully-encoded packet awaiting send on the tick
// thread's outbound drain. Any code path may enqueue one without
// acquiring a lock — the channel itself is the synchronization point.
type OutgoingRequest struct {
	Data        []byte
	Target      Target
	Channel     Channel
	Reliability Reliability
}

// Sink is the minimal producer-side contract: enqueue a request for
// the tick loop to drain and send. Implemented by hostserver.State so
// any manager can be handed a Sink without importing hostserver.
type Sink interface {
	Enqueue(req OutgoingRequest)
}
