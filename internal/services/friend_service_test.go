package services

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Arlan-Askar/Messenger_Hub/internal/domain"
	"github.com/Arlan-Askar/Messenger_Hub/internal/models"
	"github.com/Arlan-Askar/Messenger_Hub/internal/repository/memory"
	"github.com/Arlan-Askar/Messenger_Hub/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.InitLogger()
	os.Exit(m.Run())
}

type emittedEvent struct {
	UserID  string
	Event   string
	Payload interface{}
}

// recordingNotifier captures emitted events and lets tests control which
// users count as connected.
type recordingNotifier struct {
	mu        sync.Mutex
	connected map[string]bool
	events    []emittedEvent
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{connected: make(map[string]bool)}
}

func (n *recordingNotifier) Emit(userID, event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, emittedEvent{UserID: userID, Event: event, Payload: payload})
}

func (n *recordingNotifier) Connected(userID string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.connected[userID]
}

func (n *recordingNotifier) setConnected(userID string, connected bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.connected[userID] = connected
}

func (n *recordingNotifier) eventsFor(userID, event string) []emittedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()

	var out []emittedEvent
	for _, e := range n.events {
		if e.UserID == userID && e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

type friendFixture struct {
	users   *memory.Users
	service *FriendService
	notify  *recordingNotifier
	alice   *models.User
	bob     *models.User
}

func newFriendFixture(t *testing.T) *friendFixture {
	t.Helper()

	users := memory.NewUsers()
	notify := newRecordingNotifier()
	service := NewFriendService(users, memory.NewFriendRecords(), memory.NewFriendRequests(), notify)

	alice, err := users.CreateUser(context.Background(), &models.User{Email: "alice@example.com", Name: "Alice"})
	require.NoError(t, err)
	bob, err := users.CreateUser(context.Background(), &models.User{Email: "bob@example.com", Name: "Bob"})
	require.NoError(t, err)

	return &friendFixture{users: users, service: service, notify: notify, alice: alice, bob: bob}
}

func TestFriendRequestFullHandshake(t *testing.T) {
	f := newFriendFixture(t)
	ctx := context.Background()

	request, err := f.service.SendFriendRequest(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, request.Status)
	assert.Equal(t, "Alice", request.FromName)

	// The sender sees a pending record immediately; the receiver sees nothing
	// until approval, only the incoming request.
	aliceFriends, err := f.service.Friends(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, aliceFriends, 1)
	assert.Equal(t, models.FriendStatusPending, aliceFriends[0].Status)

	bobFriends, err := f.service.Friends(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobFriends)

	incoming, err := f.service.IncomingRequests(ctx, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, request.ID, incoming[0].ID)

	outgoing, err := f.service.OutgoingRequests(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)

	require.NoError(t, f.service.ApproveFriendRequest(ctx, request.ID, f.bob.ID))

	// Both sides now hold accepted records.
	for _, tc := range []struct {
		owner, peer, peerName string
	}{
		{f.alice.ID, f.bob.ID, "Bob"},
		{f.bob.ID, f.alice.ID, "Alice"},
	} {
		friends, err := f.service.Friends(ctx, tc.owner)
		require.NoError(t, err)
		require.Len(t, friends, 1)
		assert.Equal(t, tc.peer, friends[0].PeerID)
		assert.Equal(t, tc.peerName, friends[0].Name)
		assert.Equal(t, models.FriendStatusAccepted, friends[0].Status)
	}

	assert.Len(t, f.notify.eventsFor(f.bob.ID, models.EventFriendRequest), 1)
	assert.Len(t, f.notify.eventsFor(f.alice.ID, models.EventFriendApproved), 1)
	assert.Len(t, f.notify.eventsFor(f.bob.ID, models.EventFriendApproved), 1)
}

func TestSendFriendRequestRejectsDuplicates(t *testing.T) {
	f := newFriendFixture(t)
	ctx := context.Background()

	_, err := f.service.SendFriendRequest(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)

	// Same direction.
	_, err = f.service.SendFriendRequest(ctx, f.alice.ID, f.bob.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Opposite direction while still pending.
	_, err = f.service.SendFriendRequest(ctx, f.bob.ID, f.alice.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSendFriendRequestAfterAcceptedConflicts(t *testing.T) {
	f := newFriendFixture(t)
	ctx := context.Background()

	request, err := f.service.SendFriendRequest(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	require.NoError(t, f.service.ApproveFriendRequest(ctx, request.ID, f.bob.ID))

	_, err = f.service.SendFriendRequest(ctx, f.alice.ID, f.bob.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSendFriendRequestValidation(t *testing.T) {
	f := newFriendFixture(t)
	ctx := context.Background()

	_, err := f.service.SendFriendRequest(ctx, f.alice.ID, f.alice.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.service.SendFriendRequest(ctx, f.alice.ID, "missing-user")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApproveFriendRequestGuards(t *testing.T) {
	f := newFriendFixture(t)
	ctx := context.Background()

	request, err := f.service.SendFriendRequest(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)

	err = f.service.ApproveFriendRequest(ctx, "missing-request", f.bob.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Only the recipient may approve.
	err = f.service.ApproveFriendRequest(ctx, request.ID, f.alice.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	require.NoError(t, f.service.ApproveFriendRequest(ctx, request.ID, f.bob.ID))

	// Approving twice fails on the status check, it does not crash.
	err = f.service.ApproveFriendRequest(ctx, request.ID, f.bob.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDeclineFriendRequest(t *testing.T) {
	f := newFriendFixture(t)
	ctx := context.Background()

	request, err := f.service.SendFriendRequest(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)

	err = f.service.DeclineFriendRequest(ctx, request.ID, f.alice.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	require.NoError(t, f.service.DeclineFriendRequest(ctx, request.ID, f.bob.ID))

	// Rejection is terminal and clears the sender's pending projection.
	err = f.service.ApproveFriendRequest(ctx, request.ID, f.bob.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	aliceFriends, err := f.service.Friends(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Empty(t, aliceFriends)

	// The pair can start over.
	_, err = f.service.SendFriendRequest(ctx, f.bob.ID, f.alice.ID)
	assert.NoError(t, err)

	assert.Len(t, f.notify.eventsFor(f.alice.ID, models.EventFriendDeclined), 1)
}

func TestPurgeSettledRequests(t *testing.T) {
	f := newFriendFixture(t)
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	f.service.Now = func() time.Time { return base }

	request, err := f.service.SendFriendRequest(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	require.NoError(t, f.service.ApproveFriendRequest(ctx, request.ID, f.bob.ID))

	carol, err := f.users.CreateUser(ctx, &models.User{Email: "carol@example.com", Name: "Carol"})
	require.NoError(t, err)
	pending, err := f.service.SendFriendRequest(ctx, f.alice.ID, carol.ID)
	require.NoError(t, err)

	// Sweep from 40 days later with a 30 day retention.
	f.service.Now = func() time.Time { return base.Add(40 * 24 * time.Hour) }
	purged, err := f.service.PurgeSettledRequests(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	// The pending request survived.
	outgoing, err := f.service.OutgoingRequests(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.Equal(t, pending.ID, outgoing[0].ID)
}
