package models

import (
	"encoding/json"
	"time"
)

// Push-channel event names. The same names are used server→client over the
// persistent channel and mirrored by the client-side reconciler.
const (
	EventNewMessage     = "new_message"
	EventMessageSent    = "message_sent"
	EventMessageRevoked = "message_revoked"
	EventMessageDeleted = "message_deleted"
	EventReadUpdated    = "read_updated"
	EventFriendRequest  = "friend_request"
	EventFriendApproved = "friend_approved"
	EventFriendDeclined = "friend_declined"
	EventFriendUpdated  = "friend_updated"
	EventError          = "error"

	// client→server commands
	EventSendMessage   = "send_message"
	EventRevokeMessage = "revoke_message"
	EventDeleteMessage = "delete_message"
	EventMarkRead      = "mark_read"
)

// Envelope frames every event on the push channel.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type MessageRef struct {
	MessageID string `json:"messageId"`
	FriendID  string `json:"friendId"`
}

type ReadUpdate struct {
	FriendID    string `json:"friendId"`
	UnreadCount int    `json:"unreadCount"`
}

type FriendApproval struct {
	FriendID   string `json:"friendId"`
	FriendName string `json:"friendName"`
}

type FriendDecline struct {
	RequestID string `json:"requestId"`
	FriendID  string `json:"friendId"`
}

// FriendUpdate carries the denormalized preview deltas. Nil fields mean
// "unchanged" so the client merges instead of overwriting.
type FriendUpdate struct {
	FriendID        string     `json:"friendId"`
	LastMessage     *string    `json:"lastMessage,omitempty"`
	LastMessageTime *time.Time `json:"lastMessageTime,omitempty"`
	UnreadCount     *int       `json:"unreadCount,omitempty"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

// Inbound command payloads.
type SendMessageCommand struct {
	FriendID string `json:"friendId"`
	Content  string `json:"content"`
	SenderID string `json:"senderId,omitempty"`
}

type MessageCommand struct {
	MessageID string `json:"messageId"`
	FriendID  string `json:"friendId"`
}

type MarkReadCommand struct {
	FriendID string `json:"friendId"`
}
