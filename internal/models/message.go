package models

import (
	"sort"
	"time"
)

// Message is one entry in a two-party conversation log. Revocation clears the
// content but keeps the record as a tombstone; deletion only hides the record
// from the viewer that asked.
type Message struct {
	ID              string    `bson:"_id,omitempty" json:"id"`
	ConversationKey string    `bson:"conversation_key" json:"conversationKey"`
	SenderID        string    `bson:"sender_id" json:"senderId"`
	ReceiverID      string    `bson:"receiver_id" json:"receiverId"`
	Content         string    `bson:"content" json:"content"`
	Timestamp       time.Time `bson:"timestamp" json:"timestamp"`
	IsRevoked       bool      `bson:"is_revoked" json:"isRevoked"`
	DeletedFor      []string  `bson:"deleted_for,omitempty" json:"-"`
}

// VisibleTo reports whether the message is part of userID's view of the log.
func (m *Message) VisibleTo(userID string) bool {
	for _, id := range m.DeletedFor {
		if id == userID {
			return false
		}
	}
	return true
}

// ConversationKey derives the canonical identifier of a two-party log: the
// participant ids sorted and joined, so both directions address the same log.
func ConversationKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "_" + b
}

// SortMessages orders a conversation by (timestamp, id), the id breaking ties
// deterministically.
func SortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].Timestamp.Equal(msgs[j].Timestamp) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
}
