package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tma02/duckyhost/internal/actorstate"
	"github.com/tma02/duckyhost/internal/channel"
	"github.com/tma02/duckyhost/internal/config"
	"github.com/tma02/duckyhost/internal/hostserver"
	"github.com/tma02/duckyhost/internal/identity"
	"github.com/tma02/duckyhost/internal/peersync"
	"github.com/tma02/duckyhost/internal/runtime"
	"github.com/tma02/duckyhost/internal/spawn"
)

type recordingSink struct {
	sent []channel.OutgoingRequest
}

func (r *recordingSink) Enqueue(req channel.OutgoingRequest) {
	r.sent = append(r.sent, req)
}

func newTestGame(sink channel.Sink) *runtime.Game {
	host := hostserver.New(identity.Identity(1), config.Default(), sink, nil)
	actors := actorstate.NewManager(sink)
	points := map[string][]actorstate.Vector3{
		"trash_point":     {{X: 1, Y: 2, Z: 3}},
		"shoreline_point": {{X: 4, Y: 5, Z: 6}},
		"fish_spawn":      {{X: 7, Y: 8, Z: 9}},
		"hidden_spot":     {{X: 10, Y: 11, Z: 12}},
	}
	spawner := spawn.NewManager(actors, identity.Identity(1), points, nil)
	peers := peersync.NewManager(sink, identity.Identity(1))
	return runtime.New(host, actors, spawner, peers)
}

func TestParseChatMessage(t *testing.T) {
	name, args, ok := ParseChatMessage("!rain now please")
	require.True(t, ok)
	require.Equal(t, "rain", name)
	require.Equal(t, []string{"now", "please"}, args)

	_, _, ok = ParseChatMessage("hello there")
	require.False(t, ok)

	_, _, ok = ParseChatMessage("!")
	require.False(t, ok)
}

func TestHandleHelp(t *testing.T) {
	sink := &recordingSink{}
	game := newTestGame(sink)
	r := NewDefaultRegistry()
	h, ok := r.Resolve("help")
	require.True(t, ok)
	h(game, false, Context{Sender: identity.Identity(5)})
	require.Len(t, sink.sent, 1)
}

func TestHandleRainRequiresPlayerActor(t *testing.T) {
	sink := &recordingSink{}
	game := newTestGame(sink)
	r := NewDefaultRegistry()
	h, ok := r.Resolve("rain")
	require.True(t, ok)
	h(game, false, Context{Sender: identity.Identity(5)})
	require.Len(t, sink.sent, 1)
}

func TestHandleRainSpawnsWhenPlayerExists(t *testing.T) {
	sink := &recordingSink{}
	game := newTestGame(sink)
	sender := identity.Identity(5)
	game.Actors.Insert(&actorstate.Actor{
		ID:        1,
		CreatorID: sender,
		ActorType: actorstate.Player,
		Position:  actorstate.Vector3{X: 10, Y: 0, Z: 10},
	})

	r := NewDefaultRegistry()
	h, _ := r.Resolve("rain")
	h(game, false, Context{Sender: sender})

	clouds := game.Actors.ByType(actorstate.Raincloud)
	require.Len(t, clouds, 1)
	require.Equal(t, 42.0, clouds[0].Position.Y)
}

func TestFormatTimeoutFromNow(t *testing.T) {
	require.Equal(t, "0s", formatTimeoutFromNow(time.Now()))
	require.Equal(t, "1m 30s", formatTimeoutFromNow(time.Now().Add(90*time.Second+500*time.Millisecond)))
}
