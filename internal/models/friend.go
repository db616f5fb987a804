package models

import "time"

const (
	FriendStatusPending  = "pending"
	FriendStatusAccepted = "accepted"

	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
)

// FriendRecord is one user's private view of a relationship with a peer.
// There is one record per (owner, peer) direction; each side owns its own
// denormalized preview and unread counter.
type FriendRecord struct {
	OwnerID         string    `bson:"owner_id" json:"-"`
	PeerID          string    `bson:"peer_id" json:"id"`
	Name            string    `bson:"name" json:"name"`
	Status          string    `bson:"status" json:"status"`
	LastMessage     string    `bson:"last_message,omitempty" json:"lastMessage,omitempty"`
	LastMessageTime time.Time `bson:"last_message_time,omitempty" json:"lastMessageTime,omitempty"`
	UnreadCount     int       `bson:"unread_count" json:"unreadCount"`
}

// FriendRequest is the shared proposal object. At most one pending request may
// exist for an unordered user pair, checked in both directions.
type FriendRequest struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	FromUserID string    `bson:"from_user_id" json:"fromUserId"`
	FromName   string    `bson:"from_name" json:"fromName"`
	ToUserID   string    `bson:"to_user_id" json:"toUserId"`
	ToName     string    `bson:"to_name" json:"toName"`
	Status     string    `bson:"status" json:"status"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}
