package events_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainbattle-platform/brainbattle-clan/internal/domain"
	"github.com/brainbattle-platform/brainbattle-clan/internal/events"
)

// fakeResolver records resolver calls and simulates idempotent conversation
// state keyed by clan.
type fakeResolver struct {
	mu          sync.Mutex
	dmCalls     int
	clans       map[string]*domain.Conversation
	joined      map[string][]string
	deactivated map[string][]string
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		clans:       make(map[string]*domain.Conversation),
		joined:      make(map[string][]string),
		deactivated: make(map[string][]string),
	}
}

func (f *fakeResolver) EnsureDM(_ context.Context, userAID, userBID string) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dmCalls++
	return &domain.Conversation{ID: "dm-" + userAID + "-" + userBID, Kind: domain.ConversationDM}, nil
}

func (f *fakeResolver) EnsureClan(_ context.Context, clanID, leaderID string) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.clans[clanID]
	if !ok {
		conv = &domain.Conversation{ID: "clan-conv-" + clanID, Kind: domain.ConversationClan}
		f.clans[clanID] = conv
	}
	if leaderID != "" {
		f.joined[clanID] = append(f.joined[clanID], leaderID)
	}
	return conv, nil
}

func (f *fakeResolver) JoinClanMember(_ context.Context, clanID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clans[clanID]; !ok {
		f.clans[clanID] = &domain.Conversation{ID: "clan-conv-" + clanID, Kind: domain.ConversationClan}
	}
	f.joined[clanID] = append(f.joined[clanID], userID)
	return nil
}

func (f *fakeResolver) RemoveClanMember(_ context.Context, clanID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deactivated[clanID] = append(f.deactivated[clanID], userID)
	return nil
}

func (f *fakeResolver) snapshot() (int, map[string][]string, map[string][]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	joined := make(map[string][]string, len(f.joined))
	for k, v := range f.joined {
		joined[k] = append([]string(nil), v...)
	}
	deactivated := make(map[string][]string, len(f.deactivated))
	for k, v := range f.deactivated {
		deactivated[k] = append([]string(nil), v...)
	}
	return f.dmCalls, joined, deactivated
}

// fakeNotifier absorbs duplicates by (user, event) key the way the real
// unique index does.
type fakeNotifier struct {
	mu      sync.Mutex
	seen    map[string]bool
	created []string // "<user>:<type>"
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{seen: make(map[string]bool)}
}

func (f *fakeNotifier) CreateOnce(_ context.Context, userID string, typ domain.NotificationType, eventID string, _ interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := userID + "|" + eventID
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	f.created = append(f.created, userID+":"+string(typ))
	return true, nil
}

func (f *fakeNotifier) list() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.created...)
}

type fakeBlocks struct{ blocked bool }

func (f *fakeBlocks) AnyBlocked(context.Context, string, string) (bool, error) {
	return f.blocked, nil
}

// fakeMembership answers clan standing checks; nil active means everyone is
// an active member.
type fakeMembership struct {
	mu     sync.Mutex
	active map[string]bool // "<clan>|<user>"
	calls  []string
}

func (f *fakeMembership) ClanMemberActive(_ context.Context, clanID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, clanID+"|"+userID)
	if f.active == nil {
		return true, nil
	}
	return f.active[clanID+"|"+userID], nil
}

func (f *fakeMembership) set(active map[string]bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = active
}

func (f *fakeMembership) checked() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakePusher struct {
	mu     sync.Mutex
	pushes []string // "<user>:<event>"
}

func (f *fakePusher) ToUser(_ context.Context, userID, event string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, userID+":"+event)
	return nil
}

func (f *fakePusher) list() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.pushes...)
}

type fakePresence struct{ online map[string]bool }

func (f *fakePresence) IsOnline(_ context.Context, userID string) (bool, error) {
	return f.online[userID], nil
}

// reactorFixture wires a reactor with fakes into a started consumer on an
// in-memory bus.
type reactorFixture struct {
	bus        *memoryBus
	consumer   *events.Consumer
	resolver   *fakeResolver
	notifier   *fakeNotifier
	membership *fakeMembership
	pusher     *fakePusher

	mu        sync.Mutex
	delivered int
}

func newReactorFixture(t *testing.T, blocked bool, online map[string]bool) *reactorFixture {
	t.Helper()
	if online == nil {
		online = map[string]bool{}
	}
	fx := &reactorFixture{
		bus:        newMemoryBus(),
		resolver:   newFakeResolver(),
		notifier:   newFakeNotifier(),
		membership: &fakeMembership{},
		pusher:     &fakePusher{},
	}
	reactor := events.NewCoreEventReactor(fx.resolver, fx.notifier, &fakeBlocks{blocked: blocked}, fx.membership, fx.pusher, &fakePresence{online: online})

	fx.consumer = events.NewConsumer(fx.bus, "test.events")
	reactor.Register(fx.consumer)
	// The sentinel handler tracks delivery progress so tests can await the
	// consumer having processed everything published before the sentinel.
	fx.consumer.Handle("test.sentinel", func(context.Context, *domain.Event) error {
		fx.mu.Lock()
		fx.delivered++
		fx.mu.Unlock()
		return nil
	})
	require.NoError(t, fx.consumer.Start(context.Background()))
	t.Cleanup(fx.consumer.Stop)
	return fx
}

// deliver publishes the exact envelope (id preserved) on the event channel.
func (fx *reactorFixture) deliver(t *testing.T, evt *domain.Event) {
	t.Helper()
	if evt.TS.IsZero() {
		evt.TS = time.Now().UTC()
	}
	if evt.Source == "" {
		evt.Source = domain.EventSourceCore
	}
	envelope, err := json.Marshal(evt)
	require.NoError(t, err)
	require.NoError(t, fx.bus.Publish(context.Background(), "test.events", envelope))
}

// sync publishes a sentinel and waits until the consumer has drained the
// channel up to and including it.
func (fx *reactorFixture) sync(t *testing.T) {
	t.Helper()
	fx.mu.Lock()
	target := fx.delivered + 1
	fx.mu.Unlock()
	fx.deliver(t, &domain.Event{ID: "sentinel", Type: "test.sentinel", Data: []byte("{}")})
	waitFor(t, func() bool {
		fx.mu.Lock()
		defer fx.mu.Unlock()
		return fx.delivered >= target
	})
}

func mutualEvent(id string) *domain.Event {
	return &domain.Event{
		ID:   id,
		Type: domain.EventFollowMutual,
		Data: []byte(`{"userAId":"alice","userBId":"bob","by":"bob"}`),
	}
}

func TestReactor_MutualFollow_CreatesDMAndNotifiesBothSides(t *testing.T) {
	fx := newReactorFixture(t, false, map[string]bool{"alice": true})

	fx.deliver(t, mutualEvent("evt-1"))
	fx.sync(t)

	dmCalls, _, _ := fx.resolver.snapshot()
	assert.Equal(t, 1, dmCalls)
	assert.ElementsMatch(t, []string{"alice:MUTUAL_FOLLOW", "bob:MUTUAL_FOLLOW"}, fx.notifier.list())
	// Only alice is online, so only she gets the live dm.ready push.
	assert.Equal(t, []string{"alice:dm.ready"}, fx.pusher.list())
}

func TestReactor_MutualFollow_DuplicateDeliveryAbsorbed(t *testing.T) {
	fx := newReactorFixture(t, false, nil)

	fx.deliver(t, mutualEvent("evt-dup"))
	fx.deliver(t, mutualEvent("evt-dup"))
	fx.sync(t)

	// EnsureDM runs per delivery (it is idempotent), but each side's
	// notification exists exactly once.
	dmCalls, _, _ := fx.resolver.snapshot()
	assert.Equal(t, 2, dmCalls)
	assert.Len(t, fx.notifier.list(), 2, "one notification per side, not per delivery")
}

func TestReactor_MutualFollow_BlockedPairSkipsEverything(t *testing.T) {
	fx := newReactorFixture(t, true, nil)

	fx.deliver(t, mutualEvent("evt-blocked"))
	fx.sync(t)

	dmCalls, _, _ := fx.resolver.snapshot()
	assert.Zero(t, dmCalls)
	assert.Empty(t, fx.notifier.list())
	assert.Empty(t, fx.pusher.list())
}

func TestReactor_ClanMemberJoined_BeforeClanCreated(t *testing.T) {
	fx := newReactorFixture(t, false, nil)

	// Out-of-order arrival: joined lands before created.
	fx.deliver(t, &domain.Event{
		ID:   "evt-join",
		Type: domain.EventClanMemberJoined,
		Data: []byte(`{"clanId":"clan-1","userId":"charlie"}`),
	})
	fx.deliver(t, &domain.Event{
		ID:   "evt-create",
		Type: domain.EventClanCreated,
		Data: []byte(`{"clanId":"clan-1","leaderId":"leader-1"}`),
	})
	fx.sync(t)

	_, joined, _ := fx.resolver.snapshot()
	assert.ElementsMatch(t, []string{"charlie", "leader-1"}, joined["clan-1"])
	assert.Contains(t, fx.membership.checked(), "clan-1|charlie")
}

func TestReactor_ClanMemberJoined_StaleJoinAfterBanIsSkipped(t *testing.T) {
	fx := newReactorFixture(t, false, nil)
	// Core says mallory no longer stands in clan-3; a late-delivered join
	// must not reactivate the row.
	fx.membership.set(map[string]bool{})

	fx.deliver(t, &domain.Event{
		ID:   "evt-stale-join",
		Type: domain.EventClanMemberJoined,
		Data: []byte(`{"clanId":"clan-3","userId":"mallory"}`),
	})
	fx.sync(t)

	_, joined, _ := fx.resolver.snapshot()
	assert.Empty(t, joined["clan-3"])
	assert.Equal(t, []string{"clan-3|mallory"}, fx.membership.checked())
}

func TestReactor_ClanMemberBanned_DeactivatesMembership(t *testing.T) {
	fx := newReactorFixture(t, false, nil)

	fx.deliver(t, &domain.Event{
		ID:   "evt-ban",
		Type: domain.EventClanMemberBanned,
		Data: []byte(`{"clanId":"clan-2","userId":"mallory","by":"leader-1"}`),
	})
	fx.sync(t)

	_, _, deactivated := fx.resolver.snapshot()
	assert.Equal(t, []string{"mallory"}, deactivated["clan-2"])
}

func TestReactor_FollowCreated_NotifiesFollowee(t *testing.T) {
	fx := newReactorFixture(t, false, nil)

	fx.deliver(t, &domain.Event{
		ID:   "evt-follow",
		Type: domain.EventFollowCreated,
		Data: []byte(`{"followerId":"alice","followeeId":"bob"}`),
	})
	fx.sync(t)

	assert.Equal(t, []string{"bob:FOLLOW_CREATED"}, fx.notifier.list())
}
