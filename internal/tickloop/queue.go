package tickloop

import (
	"sync"

	"github.com/tma02/duckyhost/internal/channel"
)

// OutboundQueue is the single shared object spec.md's concurrency
// model allows: any producer (a packet handler, a manager broadcast)
// may enqueue a send without acquiring a lock of its own, and the tick
// thread is the only consumer.
type OutboundQueue struct {
	mu      sync.Mutex
	pending []channel.OutgoingRequest
}

// NewOutboundQueue builds an empty queue.
func NewOutboundQueue() *OutboundQueue {
	return &OutboundQueue{}
}

// Enqueue implements channel.Sink.
func (q *OutboundQueue) Enqueue(req channel.OutgoingRequest) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, req)
}

// Drain returns and clears every pending request, in enqueue order.
func (q *OutboundQueue) Drain() []channel.OutgoingRequest {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = nil
	return out
}
