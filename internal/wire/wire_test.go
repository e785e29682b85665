package wire

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tma02/duckyhost/internal/channel"
	"github.com/tma02/duckyhost/internal/identity"
	"github.com/tma02/duckyhost/internal/platform"
	"github.com/tma02/duckyhost/internal/runtime"
	"github.com/tma02/duckyhost/internal/variant"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	dict := variant.NewDictBuilder().Set("type", variant.NewString("request_ping")).Build()
	data, err := variant.Encode(dict)
	require.NoError(t, err)

	compressed, err := Compress(data)
	require.NoError(t, err)
	require.NotEqual(t, data, compressed)

	decompressed, err := Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}

func TestDecompressGarbageErrors(t *testing.T) {
	_, err := Decompress([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestRouterResolveAndDispatch(t *testing.T) {
	r := NewRouter(nil)
	var gotFrom identity.Identity
	var gotType string
	r.Register("request_ping", func(game *runtime.Game, from identity.Identity, root variant.Value) {
		gotFrom = from
		typeVal, _ := root.Dict.Get("type")
		gotType = typeVal.Str
	})

	dict := variant.NewDictBuilder().Set("type", variant.NewString("request_ping")).Build()
	data, err := variant.Encode(dict)
	require.NoError(t, err)
	compressed, err := Compress(data)
	require.NoError(t, err)

	r.HandleInbound(nil, identity.Identity(42), compressed)
	require.Equal(t, identity.Identity(42), gotFrom)
	require.Equal(t, "request_ping", gotType)
}

func TestRouterResolveUnknownTypeIsNoop(t *testing.T) {
	r := NewRouter(nil)
	dict := variant.NewDictBuilder().Set("type", variant.NewString("unknown_thing")).Build()
	data, err := variant.Encode(dict)
	require.NoError(t, err)
	compressed, err := Compress(data)
	require.NoError(t, err)

	require.NotPanics(t, func() {
		r.HandleInbound(nil, identity.Identity(1), compressed)
	})
}

func TestSendBroadcastVsDirect(t *testing.T) {
	fake := platform.NewFake()
	host := identity.Identity(1)
	members := []identity.Identity{host, identity.Identity(2), identity.Identity(3)}

	err := Send(fake, channel.OutgoingRequest{
		Data:        []byte("hello"),
		Target:      channel.TargetAll(),
		Channel:     channel.GameState,
		Reliability: channel.Reliable,
	}, members, host)
	require.NoError(t, err)

	err = Send(fake, channel.OutgoingRequest{
		Data:        []byte("hi"),
		Target:      channel.TargetIdentity(identity.Identity(7)),
		Channel:     channel.ActorUpdate,
		Reliability: channel.Unreliable,
	}, members, host)
	require.NoError(t, err)

	out := fake.Outbox()
	require.Len(t, out, 3)

	var broadcastRecipients []identity.Identity
	for _, d := range out[:2] {
		broadcastRecipients = append(broadcastRecipients, d.To)
		require.Equal(t, int(channel.GameState), d.ChannelID)
	}
	require.ElementsMatch(t, []identity.Identity{2, 3}, broadcastRecipients)
	require.NotContains(t, broadcastRecipients, host)

	require.Equal(t, identity.Identity(7), out[2].To)
	require.Equal(t, int(channel.ActorUpdate), out[2].ChannelID)
}

func TestSendDirectIgnoresMembers(t *testing.T) {
	fake := platform.NewFake()

	err := Send(fake, channel.OutgoingRequest{
		Data:        []byte("hi"),
		Target:      channel.TargetIdentity(identity.Identity(7)),
		Channel:     channel.ActorUpdate,
		Reliability: channel.Unreliable,
	}, nil, identity.Identity(1))
	require.NoError(t, err)

	out := fake.Outbox()
	require.Len(t, out, 1)
	require.Equal(t, identity.Identity(7), out[0].To)
}
