package client

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Arlan-Askar/Messenger_Hub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(t *testing.T, event string, payload interface{}) models.Envelope {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return models.Envelope{Event: event, Data: data}
}

func TestApplyEnvelopeNewMessageIdempotent(t *testing.T) {
	state := NewState("bob")
	msg := models.Message{
		ID:         "m1",
		SenderID:   "alice",
		ReceiverID: "bob",
		Content:    "hello",
		Timestamp:  time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	// A redelivered event must not duplicate the message.
	state.ApplyEnvelope(envelope(t, models.EventNewMessage, msg))
	state.ApplyEnvelope(envelope(t, models.EventNewMessage, msg))

	snap := state.Snapshot()
	require.Len(t, snap.Messages["alice"], 1)
	assert.Equal(t, "hello", snap.Messages["alice"][0].Content)
}

func TestApplyMessageKeysConversationByPeer(t *testing.T) {
	state := NewState("bob")

	// Inbound: peer is the sender. Outbound echo: peer is the receiver.
	state.ApplyMessage(models.Message{ID: "in", SenderID: "alice", ReceiverID: "bob"})
	state.ApplyMessage(models.Message{ID: "out", SenderID: "bob", ReceiverID: "alice"})

	snap := state.Snapshot()
	assert.Len(t, snap.Messages["alice"], 2)
}

func TestApplyMessageKeepsOrdering(t *testing.T) {
	state := NewState("bob")
	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	// Arrival order does not matter; the snapshot is (timestamp, id) sorted.
	state.ApplyMessage(models.Message{ID: "m2", SenderID: "alice", ReceiverID: "bob", Timestamp: at.Add(time.Second)})
	state.ApplyMessage(models.Message{ID: "m1", SenderID: "alice", ReceiverID: "bob", Timestamp: at})

	snap := state.Snapshot()
	require.Len(t, snap.Messages["alice"], 2)
	assert.Equal(t, "m1", snap.Messages["alice"][0].ID)
	assert.Equal(t, "m2", snap.Messages["alice"][1].ID)
}

func TestOptimisticEchoReplaceAndRollback(t *testing.T) {
	state := NewState("alice")
	temp := models.Message{ID: "temp-1", SenderID: "alice", ReceiverID: "bob", Content: "hi"}
	state.ApplyMessage(temp)

	// Server acknowledged: the temp echo is swapped for the real message.
	state.ReplaceMessage("bob", "temp-1", models.Message{ID: "m1", SenderID: "alice", ReceiverID: "bob", Content: "hi"})
	snap := state.Snapshot()
	require.Len(t, snap.Messages["bob"], 1)
	assert.Equal(t, "m1", snap.Messages["bob"][0].ID)

	// Send failed: the echo is rolled back.
	state.ApplyMessage(models.Message{ID: "temp-2", SenderID: "alice", ReceiverID: "bob", Content: "lost"})
	state.RemoveMessage("bob", "temp-2")
	assert.Len(t, state.Snapshot().Messages["bob"], 1)
}

func TestApplyEnvelopeRevokeAndDelete(t *testing.T) {
	state := NewState("bob")
	state.ApplyMessage(models.Message{ID: "m1", SenderID: "alice", ReceiverID: "bob", Content: "first"})
	state.ApplyMessage(models.Message{ID: "m2", SenderID: "alice", ReceiverID: "bob", Content: "second"})

	state.ApplyEnvelope(envelope(t, models.EventMessageRevoked, models.MessageRef{MessageID: "m1", FriendID: "alice"}))
	state.ApplyEnvelope(envelope(t, models.EventMessageDeleted, models.MessageRef{MessageID: "m2", FriendID: "alice"}))

	snap := state.Snapshot()
	require.Len(t, snap.Messages["alice"], 1)
	assert.Equal(t, "m1", snap.Messages["alice"][0].ID)
	assert.True(t, snap.Messages["alice"][0].IsRevoked)
	assert.Empty(t, snap.Messages["alice"][0].Content)
}

func TestApplyEnvelopeFriendLifecycle(t *testing.T) {
	state := NewState("bob")

	req := models.FriendRequest{ID: "r1", FromUserID: "alice", FromName: "Alice", ToUserID: "bob", Status: models.RequestStatusPending}
	state.ApplyEnvelope(envelope(t, models.EventFriendRequest, req))
	require.Len(t, state.Snapshot().Requests, 1)

	state.ApplyEnvelope(envelope(t, models.EventFriendApproved, models.FriendApproval{FriendID: "alice", FriendName: "Alice"}))
	snap := state.Snapshot()
	require.Len(t, snap.Friends, 1)
	assert.Equal(t, models.FriendStatusAccepted, snap.Friends[0].Status)
	assert.Equal(t, "Alice", snap.Friends[0].Name)

	state.ApplyEnvelope(envelope(t, models.EventFriendDeclined, models.FriendDecline{RequestID: "r2", FriendID: "alice"}))
	assert.Empty(t, state.Snapshot().Friends)
}

func TestApplyFriendUpdateMergesOnlySetFields(t *testing.T) {
	state := NewState("bob")
	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	state.UpsertFriend(models.FriendRecord{
		PeerID:          "alice",
		Name:            "Alice",
		Status:          models.FriendStatusAccepted,
		LastMessage:     "old",
		LastMessageTime: at,
		UnreadCount:     2,
	})

	preview := "new"
	state.ApplyFriendUpdate(models.FriendUpdate{FriendID: "alice", LastMessage: &preview})

	snap := state.Snapshot()
	require.Len(t, snap.Friends, 1)
	assert.Equal(t, "new", snap.Friends[0].LastMessage)
	assert.Equal(t, at, snap.Friends[0].LastMessageTime)
	assert.Equal(t, 2, snap.Friends[0].UnreadCount)

	// Updates for unknown peers are dropped, not materialized.
	state.ApplyFriendUpdate(models.FriendUpdate{FriendID: "stranger", LastMessage: &preview})
	assert.Len(t, state.Snapshot().Friends, 1)
}

func TestApplyEnvelopeReadUpdate(t *testing.T) {
	state := NewState("bob")
	state.UpsertFriend(models.FriendRecord{PeerID: "alice", Name: "Alice", Status: models.FriendStatusAccepted, UnreadCount: 5})

	state.ApplyEnvelope(envelope(t, models.EventReadUpdated, models.ReadUpdate{FriendID: "alice", UnreadCount: 0}))

	assert.Equal(t, 0, state.Snapshot().Friends[0].UnreadCount)
}

func TestSetMessagesDiscardsTempEchoes(t *testing.T) {
	state := NewState("alice")
	state.ApplyMessage(models.Message{ID: "temp-1", SenderID: "alice", ReceiverID: "bob", Content: "pending"})

	state.SetMessages("bob", []models.Message{{ID: "m1", SenderID: "alice", ReceiverID: "bob", Content: "pending"}})

	snap := state.Snapshot()
	require.Len(t, snap.Messages["bob"], 1)
	assert.Equal(t, "m1", snap.Messages["bob"][0].ID)
}
