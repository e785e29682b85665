package tickloop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tma02/duckyhost/internal/actorstate"
	"github.com/tma02/duckyhost/internal/channel"
	"github.com/tma02/duckyhost/internal/config"
	"github.com/tma02/duckyhost/internal/hostserver"
	"github.com/tma02/duckyhost/internal/identity"
	"github.com/tma02/duckyhost/internal/peersync"
	"github.com/tma02/duckyhost/internal/platform"
	"github.com/tma02/duckyhost/internal/runtime"
	"github.com/tma02/duckyhost/internal/spawn"
	"github.com/tma02/duckyhost/internal/variant"
	"github.com/tma02/duckyhost/internal/wire"
)

const testHost = identity.Identity(1)

func newTestLoop(t *testing.T, cfg config.Config) (*Loop, *OutboundQueue, *platform.Fake) {
	t.Helper()
	queue := NewOutboundQueue()
	host := hostserver.New(testHost, cfg, queue, zap.NewNop().Sugar())
	actors := actorstate.NewManager(queue)
	spawner := spawn.NewManager(actors, testHost, map[string][]actorstate.Vector3{}, nil)
	peers := peersync.NewManager(queue, testHost)
	game := runtime.New(host, actors, spawner, peers)

	router := wire.NewRouter(zap.NewNop().Sugar())
	fake := platform.NewFake()
	loop := New(game, router, fake, fake, platform.SystemClock{}, queue, zap.NewNop().Sugar())
	return loop, queue, fake
}

func TestLobbyCreatedPushesMetadata(t *testing.T) {
	cfg := config.Default()
	loop, _, fake := newTestLoop(t, cfg)
	fake.InjectLobbyCreated("LOBBY-1")

	loop.RunOnce(context.Background(), time.Now())

	id, ok := loop.game.Host.LobbyID()
	require.True(t, ok)
	require.Equal(t, "LOBBY-1", id)
	require.Equal(t, cfg.Name, fake.Metadata()["lobby_name"])
}

func TestMembershipLeaveRemovesUserAndActors(t *testing.T) {
	loop, _, fake := newTestLoop(t, config.Default())
	peer := identity.Identity(42)
	loop.game.Host.AddUser(peer)
	loop.game.Actors.Insert(&actorstate.Actor{ID: 1, CreatorID: peer, ActorType: actorstate.Player})

	fake.InjectMembershipEvent(platform.MembershipEvent{Identity: peer, Kind: platform.MemberLeft})
	loop.RunOnce(context.Background(), time.Now())

	require.NotContains(t, loop.game.Host.Users(), peer)
	_, ok := loop.game.Actors.Get(1)
	require.False(t, ok)
}

func TestMembershipBannedJoinForcesDisconnect(t *testing.T) {
	loop, _, fake := newTestLoop(t, config.Default())
	banned := identity.Identity(7)
	bystander := identity.Identity(50)
	loop.game.Host.Ban(banned)
	loop.game.Host.AddUser(bystander)

	fake.InjectMembershipEvent(platform.MembershipEvent{Identity: banned, Kind: platform.MemberJoined})
	loop.RunOnce(context.Background(), time.Now())

	found := false
	for _, d := range fake.Outbox() {
		if d.To == bystander {
			found = true
		}
		require.NotEqual(t, testHost, d.To)
	}
	require.True(t, found)
	require.NotContains(t, loop.game.Host.Users(), banned)
}

func TestSessionRequestAcceptedSendsHandshake(t *testing.T) {
	loop, _, fake := newTestLoop(t, config.Default())
	peer := identity.Identity(5)

	fake.InjectSessionRequest(peer)
	loop.RunOnce(context.Background(), time.Now())

	require.True(t, fake.Accepted(peer))
	outbox := fake.Outbox()
	require.NotEmpty(t, outbox)
}

func TestSessionRequestBannedIsRejected(t *testing.T) {
	loop, _, fake := newTestLoop(t, config.Default())
	peer := identity.Identity(6)
	loop.game.Host.Ban(peer)

	fake.InjectSessionRequest(peer)
	loop.RunOnce(context.Background(), time.Now())

	require.True(t, fake.Rejected(peer))
	require.False(t, fake.Accepted(peer))
}

func TestWeblobbyJoinRequestDeniedWhenBanned(t *testing.T) {
	loop, _, fake := newTestLoop(t, config.Default())
	peer := identity.Identity(9)
	loop.game.Host.Ban(peer)

	fake.InjectChatMessage(peer, weblobbyJoinRequest)
	loop.RunOnce(context.Background(), time.Now())

	msgs := fake.SentChatMessages()
	require.Contains(t, msgs, "$weblobby_request_denied_deny-9")
}

func TestWeblobbyJoinRequestDeniedWhenFull(t *testing.T) {
	cfg := config.Default()
	cfg.MaxPlayers = 1
	loop, _, fake := newTestLoop(t, cfg)
	loop.game.Host.AddUser(identity.Identity(100))
	peer := identity.Identity(10)

	fake.InjectChatMessage(peer, weblobbyJoinRequest)
	loop.RunOnce(context.Background(), time.Now())

	msgs := fake.SentChatMessages()
	require.Contains(t, msgs, "$weblobby_request_denied_full-10")
}

func TestWeblobbyJoinRequestAccepted(t *testing.T) {
	loop, _, fake := newTestLoop(t, config.Default())
	peer := identity.Identity(11)

	fake.InjectChatMessage(peer, weblobbyJoinRequest)
	loop.RunOnce(context.Background(), time.Now())

	msgs := fake.SentChatMessages()
	require.Contains(t, msgs, "$weblobby_request_accepted-11")
	require.Contains(t, loop.game.Host.Users(), peer)

	found := false
	for _, d := range fake.Outbox() {
		if d.To == peer {
			found = true
		}
	}
	require.True(t, found)
}

func TestOutboundQueueDrainsThroughSend(t *testing.T) {
	loop, queue, fake := newTestLoop(t, config.Default())
	peer := identity.Identity(20)
	loop.game.Host.AddUser(peer)
	dict := variant.NewDictBuilder().Set("type", variant.NewString("message")).Build()
	data, err := variant.Encode(dict)
	require.NoError(t, err)
	queue.Enqueue(channel.OutgoingRequest{
		Data:        data,
		Target:      channel.TargetAll(),
		Channel:     channel.GameState,
		Reliability: channel.Reliable,
	})

	loop.RunOnce(context.Background(), time.Now())

	outbox := fake.Outbox()
	require.Len(t, outbox, 1)
	require.Equal(t, peer, outbox[0].To)
}

func TestInboundChannelsDispatchToRouter(t *testing.T) {
	loop, _, fake := newTestLoop(t, config.Default())
	called := false
	loop.router.Register("ping_test", func(game *runtime.Game, from identity.Identity, root variant.Value) {
		called = true
	})
	dict := variant.NewDictBuilder().Set("type", variant.NewString("ping_test")).Build()
	data, err := variant.Encode(dict)
	require.NoError(t, err)
	compressed, err := wire.Compress(data)
	require.NoError(t, err)

	fake.InjectChannelPacket(int(channel.GameState), identity.Identity(3), compressed)
	loop.RunOnce(context.Background(), time.Now())

	require.True(t, called)
}

func TestMetadataRefreshCadence(t *testing.T) {
	loop, _, fake := newTestLoop(t, config.Default())
	fake.InjectLobbyCreated("LOBBY-2")
	start := time.Now()
	loop.RunOnce(context.Background(), start)
	require.NotEmpty(t, fake.SentChatMessages())

	before := len(fake.SentChatMessages())
	loop.RunOnce(context.Background(), start.Add(time.Second))
	require.Len(t, fake.SentChatMessages(), before)

	loop.RunOnce(context.Background(), start.Add(LobbyMetadataRefreshInterval+time.Second))
	require.Greater(t, len(fake.SentChatMessages()), before)
}
