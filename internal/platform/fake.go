package platform

import (
	"context"
	"sync"

	"github.com/tma02/duckyhost/internal/identity"
)

// Fake is an in-memory Lobby+Channel implementation used by tests that
// need a platform collaborator without a real SDK. Every Poll* method
// drains from a queue test code fills with the Inject* helpers.
type Fake struct {
	mu sync.Mutex

	metadata LobbyMetadata
	joinable bool

	lobbyCreated     []string
	membershipEvents []MembershipEvent
	chatMessages     []fakeChatMessage
	sessionRequests  []identity.Identity
	accepted         map[identity.Identity]bool
	rejected         map[identity.Identity]bool
	sentChatMessages []string

	outbox  []FakeDelivery
	channel map[int][]FakeDelivery
}

type fakeChatMessage struct {
	from    identity.Identity
	message string
}

// FakeDelivery records one SendTo call.
type FakeDelivery struct {
	To        identity.Identity
	Data      []byte
	ChannelID int
	Reliable  int
}

// NewFake builds an empty fake platform.
func NewFake() *Fake {
	return &Fake{
		accepted: make(map[identity.Identity]bool),
		rejected: make(map[identity.Identity]bool),
		channel:  make(map[int][]FakeDelivery),
	}
}

func (f *Fake) CreateLobby(_ context.Context, _ uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lobbyCreated = append(f.lobbyCreated, "FAKE-LOBBY")
	return nil
}

func (f *Fake) PollLobbyCreated() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.lobbyCreated) == 0 {
		return "", false
	}
	id := f.lobbyCreated[0]
	f.lobbyCreated = f.lobbyCreated[1:]
	return id, true
}

func (f *Fake) SetLobbyMetadata(_ context.Context, _ string, meta LobbyMetadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metadata = meta
	return nil
}

func (f *Fake) SetLobbyJoinable(_ context.Context, _ string, joinable bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joinable = joinable
	return nil
}

func (f *Fake) PollMembershipEvent() (MembershipEvent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.membershipEvents) == 0 {
		return MembershipEvent{}, false
	}
	e := f.membershipEvents[0]
	f.membershipEvents = f.membershipEvents[1:]
	return e, true
}

func (f *Fake) PollChatMessage() (identity.Identity, string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.chatMessages) == 0 {
		return 0, "", false
	}
	m := f.chatMessages[0]
	f.chatMessages = f.chatMessages[1:]
	return m.from, m.message, true
}

func (f *Fake) SendChatMessage(message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sentChatMessages = append(f.sentChatMessages, message)
	return nil
}

func (f *Fake) PollSessionRequest() (identity.Identity, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sessionRequests) == 0 {
		return 0, false
	}
	id := f.sessionRequests[0]
	f.sessionRequests = f.sessionRequests[1:]
	return id, true
}

func (f *Fake) AcceptSession(id identity.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accepted[id] = true
	return nil
}

func (f *Fake) RejectSession(id identity.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected[id] = true
	return nil
}

func (f *Fake) Pump() {}

func (f *Fake) SendTo(to identity.Identity, data []byte, channelID int, reliable int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outbox = append(f.outbox, FakeDelivery{To: to, Data: data, ChannelID: channelID, Reliable: reliable})
	return nil
}

func (f *Fake) PollChannel(channelID int) (identity.Identity, []byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	queue := f.channel[channelID]
	if len(queue) == 0 {
		return 0, nil, false
	}
	d := queue[0]
	f.channel[channelID] = queue[1:]
	return d.To, d.Data, true
}

// --- test setup helpers ---

// InjectLobbyCreated queues a lobby-created notification.
func (f *Fake) InjectLobbyCreated(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lobbyCreated = append(f.lobbyCreated, id)
}

// InjectMembershipEvent queues a membership change.
func (f *Fake) InjectMembershipEvent(e MembershipEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.membershipEvents = append(f.membershipEvents, e)
}

// InjectChatMessage queues a lobby-chat control message.
func (f *Fake) InjectChatMessage(from identity.Identity, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chatMessages = append(f.chatMessages, fakeChatMessage{from: from, message: message})
}

// InjectSessionRequest queues a pending P2P session request.
func (f *Fake) InjectSessionRequest(id identity.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionRequests = append(f.sessionRequests, id)
}

// InjectChannelPacket queues an inbound packet on the given channel.
func (f *Fake) InjectChannelPacket(channelID int, from identity.Identity, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channel[channelID] = append(f.channel[channelID], FakeDelivery{To: from, Data: data})
}

// Outbox returns every SendTo call recorded so far.
func (f *Fake) Outbox() []FakeDelivery {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeDelivery, len(f.outbox))
	copy(out, f.outbox)
	return out
}

// Metadata returns the most recently set lobby metadata.
func (f *Fake) Metadata() LobbyMetadata {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.metadata
}

// Joinable returns the most recently set joinable flag.
func (f *Fake) Joinable() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.joinable
}

// Accepted reports whether id's session request was accepted.
func (f *Fake) Accepted(id identity.Identity) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accepted[id]
}

// Rejected reports whether id's session request was rejected.
func (f *Fake) Rejected(id identity.Identity) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rejected[id]
}

// SentChatMessages returns every lobby-chat control reply sent.
func (f *Fake) SentChatMessages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sentChatMessages))
	copy(out, f.sentChatMessages)
	return out
}
