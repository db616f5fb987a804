// Package client implements the two interchangeable transport strategies a
// chat client can run on: a persistent push channel and periodic polling.
// Both drive the same State reconciler and must converge on identical
// observable state for the same server contents.
package client

import "context"

// Transport is the strategy interface. Implementations differ only in how
// state reaches the client; commands and cache semantics are identical.
type Transport interface {
	// Connect performs the initial load and starts the strategy's delivery
	// mechanism (socket read loop or poll tickers).
	Connect(ctx context.Context) error

	// OpenConversation loads a conversation and makes it the one kept fresh.
	OpenConversation(friendID string) error

	SendMessage(friendID, content string) error
	RevokeMessage(friendID, messageID string) error
	DeleteMessage(friendID, messageID string) error
	MarkRead(friendID string) error

	SendFriendRequest(toUserID string) error
	ApproveFriendRequest(requestID string) error
	DeclineFriendRequest(requestID string) error

	State() *State
	Close() error
}

var (
	_ Transport = (*PushTransport)(nil)
	_ Transport = (*PollTransport)(nil)
)
