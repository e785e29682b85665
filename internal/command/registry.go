// Package command implements the chat-triggered command registry: a
// message beginning with "!" is split into a command name and
// arguments and dispatched to a registered handler.
package command

import (
	"strings"

	"github.com/tma02/duckyhost/internal/identity"
	"github.com/tma02/duckyhost/internal/runtime"
)

// Context carries the per-invocation details a handler needs.
type Context struct {
	Sender identity.Identity
	Name   string
	Args   []string
}

// Handler runs a single command. isHost reports whether Sender is the
// dedicated host's own identity, the same elevation check actor
// creation uses.
type Handler func(game *runtime.Game, isHost bool, ctx Context)

// Registry maps command names to handlers, built once at startup and
// never mutated concurrently with lookups.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds or replaces the handler for name.
func (r *Registry) Register(name string, h Handler) {
	r.handlers[name] = h
}

// Resolve returns the handler registered for name, if any.
func (r *Registry) Resolve(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// ParseChatMessage splits a chat message into a command name and its
// arguments if it begins with "!"; ok is false for ordinary chat.
func ParseChatMessage(message string) (name string, args []string, ok bool) {
	stripped := strings.TrimSpace(message)
	if !strings.HasPrefix(stripped, "!") {
		return "", nil, false
	}
	fields := strings.Fields(stripped)
	if len(fields) == 0 {
		return "", nil, false
	}
	name = strings.TrimPrefix(fields[0], "!")
	if name == "" {
		return "", nil, false
	}
	return name, fields[1:], true
}

// NewDefaultRegistry builds the registry with the built-in commands
// wired in.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("help", handleHelp)
	r.Register("commands", handleHelp)
	r.Register("rain", handleRain)
	return r
}
