// Package wire implements packet framing: gzip compression over the
// tagged variant codec, the "type" field dispatch the client keys
// every packet by, and the send path that turns an outgoing request
// into a platform delivery call.
package wire

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/tma02/duckyhost/internal/channel"
	"github.com/tma02/duckyhost/internal/identity"
	"github.com/tma02/duckyhost/internal/platform"
	"github.com/tma02/duckyhost/internal/runtime"
	"github.com/tma02/duckyhost/internal/variant"
)

// Compress gzip-compresses data, the framing every packet carries on
// the wire.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return nil, fmt.Errorf("wire: new gzip writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("wire: gzip write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("wire: gzip close: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("wire: new gzip reader: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("wire: gzip read: %w", err)
	}
	return out, nil
}

// Handler processes one decoded inbound packet. All handlers share
// this signature regardless of message type, mirroring the fixed
// dispatch surface spec.md §1 describes.
type Handler func(game *runtime.Game, from identity.Identity, root variant.Value)

// Router resolves the "type" field of an inbound packet's top-level
// dictionary to a registered Handler. The send path for outgoing
// requests is the package-level Send.
type Router struct {
	handlers map[string]Handler
	log      *zap.SugaredLogger
}

// NewRouter builds an empty router. log receives decode/dispatch
// failures; it may be nil in tests.
func NewRouter(log *zap.SugaredLogger) *Router {
	return &Router{handlers: make(map[string]Handler), log: log}
}

// Register adds or replaces the handler for the given "type" value.
func (r *Router) Register(msgType string, h Handler) {
	r.handlers[msgType] = h
}

// Resolve returns the registered handler for root's "type" field, if
// any exists and the field is present and well-typed.
func (r *Router) Resolve(root variant.Value) (Handler, bool) {
	if root.Tag != variant.TagDictionary {
		return nil, false
	}
	typeVal, ok := root.Dict.Get("type")
	if !ok || typeVal.Tag != variant.TagString {
		return nil, false
	}
	h, ok := r.handlers[typeVal.Str]
	return h, ok
}

// HandleInbound decompresses, decodes, and dispatches one raw packet
// received from from. Decode and dispatch failures are logged and
// otherwise ignored, per spec.md §7: a malformed packet from one peer
// must never take down the host.
func (r *Router) HandleInbound(game *runtime.Game, from identity.Identity, compressed []byte) {
	raw, err := Decompress(compressed)
	if err != nil {
		if r.log != nil {
			r.log.Debugw("dropping packet: decompress failed", "from", from, "error", err)
		}
		return
	}
	root, err := variant.Decode(raw)
	if err != nil {
		if r.log != nil {
			r.log.Debugw("dropping packet: decode failed", "from", from, "error", err)
		}
		return
	}
	h, ok := r.Resolve(root)
	if !ok {
		if r.log != nil {
			r.log.Debugw("dropping packet: no handler for type", "from", from)
		}
		return
	}
	h(game, from, root)
}

// Send compresses req's payload and hands it to ch for delivery,
// translating this module's Channel/Reliability/Target values into the
// platform's own integer vocabulary. The platform has no native
// broadcast primitive, so a Target.All request is expanded here into
// one SendTo per current lobby member, skipping host — the same
// membership-snapshot loop original_source's on_send_packet runs for
// its P2pPacketTarget::All arm. Per-recipient send failures are all
// attempted (best effort); the first error encountered is returned.
func Send(ch platform.Channel, req channel.OutgoingRequest, members []identity.Identity, host identity.Identity) error {
	compressed, err := Compress(req.Data)
	if err != nil {
		return err
	}
	channelID := int(req.Channel)
	reliable := int(req.Reliability)
	if !req.Target.All {
		return ch.SendTo(req.Target.SteamID, compressed, channelID, reliable)
	}
	var firstErr error
	for _, member := range members {
		if member == host {
			continue
		}
		if err := ch.SendTo(member, compressed, channelID, reliable); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
