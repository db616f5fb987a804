package client

import (
	"context"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/Arlan-Askar/Messenger_Hub/internal/handlers"
	"github.com/Arlan-Askar/Messenger_Hub/internal/models"
	"github.com/Arlan-Askar/Messenger_Hub/internal/realtime"
	"github.com/Arlan-Askar/Messenger_Hub/internal/repository/memory"
	"github.com/Arlan-Askar/Messenger_Hub/internal/services"
	"github.com/Arlan-Askar/Messenger_Hub/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "transport-test-secret"

func TestMain(m *testing.M) {
	logger.InitLogger()
	os.Exit(m.Run())
}

// newTestServer stands up the full HTTP and websocket surface over memory
// stores, exactly as main wires it.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	users := memory.NewUsers()
	records := memory.NewFriendRecords()
	requests := memory.NewFriendRequests()
	messages := memory.NewMessages()

	registry := realtime.NewRegistry()
	dispatcher := realtime.NewDispatcher(registry)

	userService := services.NewUserService(users)
	friendService := services.NewFriendService(users, records, requests, dispatcher)
	messageService := services.NewMessageService(messages, records, dispatcher)

	router := handlers.NewRouter(
		handlers.NewUserHandler(userService, testJWTSecret),
		handlers.NewFriendHandler(friendService),
		handlers.NewMessageHandler(messageService),
		handlers.NewChatHandler(messageService, registry, testJWTSecret),
		testJWTSecret,
	)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func registerUser(t *testing.T, baseURL, email, name string) (models.PublicUser, *APIClient) {
	t.Helper()

	api := NewAPIClient(baseURL, "")
	user, token, err := api.Register(email, "s3cret-pass", name)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	api.Token = token
	return user, api
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, 5*time.Second, 25*time.Millisecond, msg)
}

// normalize pins every timestamp to UTC so DeepEqual compares instants, not
// the location pointers JSON decoding happened to produce.
func normalize(snap Snapshot) Snapshot {
	for i := range snap.Friends {
		snap.Friends[i].LastMessageTime = snap.Friends[i].LastMessageTime.UTC()
	}
	for i := range snap.Requests {
		snap.Requests[i].CreatedAt = snap.Requests[i].CreatedAt.UTC()
	}
	for _, msgs := range snap.Messages {
		for i := range msgs {
			msgs[i].Timestamp = msgs[i].Timestamp.UTC()
		}
	}
	return snap
}

// TestPushAndPollConverge runs one user on both transport strategies at once
// and drives a full scenario: friend handshake, sends, a revocation, a
// one-sided delete and a read. Both caches must settle on the same snapshot.
func TestPushAndPollConverge(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()

	alice, aliceAPI := registerUser(t, server.URL, "alice@example.com", "Alice")
	bob, bobAPI := registerUser(t, server.URL, "bob@example.com", "Bob")

	alicePush := NewPushTransport(aliceAPI, alice.ID)
	require.NoError(t, alicePush.Connect(ctx))
	defer alicePush.Close()

	bobPush := NewPushTransport(bobAPI, bob.ID)
	require.NoError(t, bobPush.Connect(ctx))
	defer bobPush.Close()

	bobPoll := NewPollTransport(bobAPI, bob.ID, 25*time.Millisecond, 40*time.Millisecond)
	require.NoError(t, bobPoll.Connect(ctx))
	defer bobPoll.Close()

	// Handshake. Bob learns of the request over his push channel; the poll
	// cache picks it up on its next sweep.
	require.NoError(t, alicePush.SendFriendRequest(bob.ID))

	var requestID string
	eventually(t, func() bool {
		snap := bobPush.State().Snapshot()
		if len(snap.Requests) != 1 {
			return false
		}
		requestID = snap.Requests[0].ID
		return true
	}, "friend request never reached bob's push cache")

	require.NoError(t, bobPush.ApproveFriendRequest(requestID))

	eventually(t, func() bool {
		snap := alicePush.State().Snapshot()
		return len(snap.Friends) == 1 && snap.Friends[0].Status == models.FriendStatusAccepted
	}, "approval never reached alice")

	require.NoError(t, alicePush.OpenConversation(bob.ID))
	require.NoError(t, bobPush.OpenConversation(alice.ID))
	require.NoError(t, bobPoll.OpenConversation(alice.ID))

	for _, content := range []string{"first", "second", "third"} {
		require.NoError(t, alicePush.SendMessage(bob.ID, content))
	}

	// The message_sent acks carry the authoritative ids.
	var msgs []models.Message
	eventually(t, func() bool {
		msgs = alicePush.State().Snapshot().Messages[bob.ID]
		return len(msgs) == 3
	}, "send acks never reached alice")

	require.NoError(t, alicePush.RevokeMessage(bob.ID, msgs[1].ID))
	require.NoError(t, bobPush.DeleteMessage(alice.ID, msgs[0].ID))
	require.NoError(t, bobPush.MarkRead(alice.ID))

	eventually(t, func() bool {
		push := normalize(bobPush.State().Snapshot())
		poll := normalize(bobPoll.State().Snapshot())
		return reflect.DeepEqual(push, poll)
	}, "push and poll caches never converged")

	// Bob's settled view: the deleted message is gone for him only, the
	// revoked one is an empty tombstone, and nothing is unread.
	snap := bobPush.State().Snapshot()
	require.Len(t, snap.Friends, 1)
	assert.Equal(t, alice.ID, snap.Friends[0].PeerID)
	assert.Equal(t, 0, snap.Friends[0].UnreadCount)
	assert.Empty(t, snap.Requests)

	conv := snap.Messages[alice.ID]
	require.Len(t, conv, 2)
	assert.True(t, conv[0].IsRevoked)
	assert.Empty(t, conv[0].Content)
	assert.Equal(t, "third", conv[1].Content)

	// Alice still sees all three, with the middle one tombstoned.
	aliceConv := alicePush.State().Snapshot().Messages[bob.ID]
	require.Len(t, aliceConv, 3)
	assert.Equal(t, "first", aliceConv[0].Content)
	assert.True(t, aliceConv[1].IsRevoked)
	assert.Equal(t, "third", aliceConv[2].Content)
}

// TestPollTransportAloneConverges repeats the core scenario without any push
// channel: the receiver is offline as far as the server is concerned, so the
// unread counter grows and only an explicit read clears it.
func TestPollTransportAloneConverges(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()

	alice, aliceAPI := registerUser(t, server.URL, "alice@example.com", "Alice")
	bob, bobAPI := registerUser(t, server.URL, "bob@example.com", "Bob")

	alicePoll := NewPollTransport(aliceAPI, alice.ID, 25*time.Millisecond, 40*time.Millisecond)
	require.NoError(t, alicePoll.Connect(ctx))
	defer alicePoll.Close()

	bobPoll := NewPollTransport(bobAPI, bob.ID, 25*time.Millisecond, 40*time.Millisecond)
	require.NoError(t, bobPoll.Connect(ctx))
	defer bobPoll.Close()

	require.NoError(t, alicePoll.SendFriendRequest(bob.ID))

	var requestID string
	eventually(t, func() bool {
		snap := bobPoll.State().Snapshot()
		if len(snap.Requests) != 1 {
			return false
		}
		requestID = snap.Requests[0].ID
		return true
	}, "friend request never reached bob's poll cache")

	require.NoError(t, bobPoll.ApproveFriendRequest(requestID))

	eventually(t, func() bool {
		snap := alicePoll.State().Snapshot()
		return len(snap.Friends) == 1 && snap.Friends[0].Status == models.FriendStatusAccepted
	}, "approval never reached alice's poll cache")

	require.NoError(t, alicePoll.OpenConversation(bob.ID))
	require.NoError(t, bobPoll.OpenConversation(alice.ID))

	for _, content := range []string{"first", "second"} {
		require.NoError(t, alicePoll.SendMessage(bob.ID, content))
	}

	// No push channel: every message counts as unread until Bob reads.
	eventually(t, func() bool {
		snap := bobPoll.State().Snapshot()
		return len(snap.Messages[alice.ID]) == 2 && len(snap.Friends) == 1 && snap.Friends[0].UnreadCount == 2
	}, "messages never reached bob's poll cache")

	require.NoError(t, bobPoll.MarkRead(alice.ID))
	eventually(t, func() bool {
		snap := bobPoll.State().Snapshot()
		return snap.Friends[0].UnreadCount == 0
	}, "read never stuck")

	// The optimistic echoes on alice's side were replaced by server records.
	for _, msg := range alicePoll.State().Snapshot().Messages[bob.ID] {
		assert.NotContains(t, msg.ID, "temp-")
	}
}

// TestPushRejectsMessagesToNonFriends proves the relationship gate holds on
// the websocket path: the engine refuses and only the sender hears about it.
func TestPushRejectsMessagesToNonFriends(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()

	alice, aliceAPI := registerUser(t, server.URL, "alice@example.com", "Alice")
	bob, _ := registerUser(t, server.URL, "bob@example.com", "Bob")

	alicePush := NewPushTransport(aliceAPI, alice.ID)
	require.NoError(t, alicePush.Connect(ctx))
	defer alicePush.Close()

	require.NoError(t, alicePush.OpenConversation(bob.ID))
	require.NoError(t, alicePush.SendMessage(bob.ID, "should bounce"))

	// No ack arrives and no message is ever committed.
	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, alicePush.State().Snapshot().Messages[bob.ID])

	msgs, err := aliceAPI.Messages(bob.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
