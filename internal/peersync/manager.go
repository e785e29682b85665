// Package peersync tracks peers whose actor_update for an unknown
// actor needs a backfill request, and rate-limits those requests so a
// flood of updates for the same missing actor doesn't turn into a
// flood of request_actors packets.
package peersync

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tma02/duckyhost/internal/channel"
	"github.com/tma02/duckyhost/internal/identity"
	"github.com/tma02/duckyhost/internal/variant"
)

// minRequestInterval is the floor between drains of the pending set,
// per spec.md's "no more frequently than once per ≥5s" testable
// property.
const minRequestInterval = 5 * time.Second

// Manager collects identities that sent actor_update for an actor this
// host doesn't know about, and periodically asks each of them to
// resend their actor list.
type Manager struct {
	mu      sync.Mutex
	pending map[identity.Identity]struct{}
	limiter *rate.Limiter
	sink    channel.Sink
	host    identity.Identity
}

// NewManager builds a peer-sync manager. sink receives the
// request_actors packets this manager emits; host is the identity
// reported in the user_id field of each request (the dedicated host
// has no actor list of its own to desync, but peers expect the field).
func NewManager(sink channel.Sink, host identity.Identity) *Manager {
	return &Manager{
		pending: make(map[identity.Identity]struct{}),
		// One token every minRequestInterval, burst of 1: the drain
		// pattern already de-duplicates within a window, the limiter
		// is the hard floor on top of that.
		limiter: rate.NewLimiter(rate.Every(minRequestInterval), 1),
		sink:    sink,
		host:    host,
	}
}

// AddPeerNeedsUpdate marks id as needing a request_actors backfill on
// the next eligible drain.
func (m *Manager) AddPeerNeedsUpdate(id identity.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[id] = struct{}{}
}

// OnUpdate drains the pending set and sends each identity a
// request_actors packet, but only if the rate limiter allows it this
// tick. Identities added after a drain starts are picked up on the
// next eligible drain.
func (m *Manager) OnUpdate(now time.Time) {
	if !m.limiter.AllowN(now, 1) {
		return
	}

	m.mu.Lock()
	pending := m.pending
	m.pending = make(map[identity.Identity]struct{})
	m.mu.Unlock()

	for id := range pending {
		m.sendRequestActors(id)
	}
}

func (m *Manager) sendRequestActors(id identity.Identity) {
	if m.sink == nil {
		return
	}
	dict := variant.NewDictBuilder().
		Set("type", variant.NewString("request_actors")).
		Set("user_id", variant.NewString(m.host.String())).
		Build()
	data, err := variant.Encode(dict)
	if err != nil {
		return
	}
	m.sink.Enqueue(channel.OutgoingRequest{
		Data:        data,
		Target:      channel.TargetIdentity(id),
		Channel:     channel.GameState,
		Reliability: channel.Reliable,
	})
}
