package actorstate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tma02/duckyhost/internal/channel"
	"github.com/tma02/duckyhost/internal/identity"
)

type fakeSink struct {
	sent []channel.OutgoingRequest
}

func (f *fakeSink) Enqueue(req channel.OutgoingRequest) {
	f.sent = append(f.sent, req)
}

func TestUserCanCreatePlayerSingleton(t *testing.T) {
	m := NewManager(&fakeSink{})
	creator := identity.Identity(1)

	require.True(t, m.UserCanCreate(creator, false, Player))
	m.Insert(&Actor{ID: 1, CreatorID: creator, ActorType: Player})
	require.False(t, m.UserCanCreate(creator, false, Player))
}

func TestUserCanCreateHostOnlyGate(t *testing.T) {
	m := NewManager(&fakeSink{})
	creator := identity.Identity(2)

	require.False(t, m.UserCanCreate(creator, false, FishSpawn))
	require.True(t, m.UserCanCreate(creator, true, FishSpawn))
}

func TestUserCanCreateQuota(t *testing.T) {
	m := NewManager(&fakeSink{})
	creator := identity.Identity(3)

	for i := int64(0); i < MaxActorsPerPlayer; i++ {
		require.True(t, m.UserCanCreate(creator, false, Rock), "iteration %d", i)
		m.Insert(&Actor{ID: i + 1, CreatorID: creator, ActorType: Rock})
	}
	require.False(t, m.UserCanCreate(creator, false, Rock))
	require.Len(t, m.ByCreator(creator), MaxActorsPerPlayer)
}

func TestIndexConsistencyAfterRemoveAll(t *testing.T) {
	m := NewManager(&fakeSink{})
	creator := identity.Identity(4)
	for i := int64(0); i < 5; i++ {
		m.Insert(&Actor{ID: i + 1, CreatorID: creator, ActorType: Rock})
	}
	m.RemoveAllByCreator(creator)

	require.Empty(t, m.ByCreator(creator))
	for i := int64(0); i < 5; i++ {
		_, ok := m.Get(i + 1)
		require.False(t, ok)
	}
}

func TestSpawnHostActorBroadcastsInstanceThenUpdate(t *testing.T) {
	sink := &fakeSink{}
	m := NewManager(sink)
	a := &Actor{ID: 10, CreatorID: identity.Identity(0), ActorType: MetalSpawn}

	require.True(t, m.SpawnHostActor(a))
	require.Len(t, sink.sent, 2)
	require.Equal(t, channel.GameState, sink.sent[0].Channel)
	require.Equal(t, channel.ActorUpdate, sink.sent[1].Channel)
	for _, req := range sink.sent {
		require.True(t, req.Target.All)
		require.Equal(t, channel.Reliable, req.Reliability)
	}

	got, ok := m.Get(10)
	require.True(t, ok)
	require.Equal(t, MetalSpawn, got.ActorType)
}

func TestDespawnHostActorBroadcastsQueueFree(t *testing.T) {
	sink := &fakeSink{}
	m := NewManager(sink)
	m.Insert(&Actor{ID: 20, ActorType: Rock})

	require.True(t, m.DespawnHostActor(20))
	require.Len(t, sink.sent, 1)
	require.Equal(t, channel.ActorAction, sink.sent[0].Channel)

	_, ok := m.Get(20)
	require.False(t, ok)
}

func TestDespawnUnknownActorReturnsFalse(t *testing.T) {
	m := NewManager(&fakeSink{})
	require.False(t, m.DespawnHostActor(999))
}

func TestSetZoneUpdatesMetadata(t *testing.T) {
	m := NewManager(&fakeSink{})
	m.Insert(&Actor{ID: 1, Zone: "main_zone", ZoneOwner: NoZoneOwner})

	got, ok := m.SetZone(1, "dock_zone", 5)
	require.True(t, ok)
	require.Equal(t, "dock_zone", got.Zone)
	require.Equal(t, int64(5), got.ZoneOwner)
}
