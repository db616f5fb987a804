package client

import (
	"context"
	"sync"
	"time"

	"github.com/Arlan-Askar/Messenger_Hub/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PollTransport has no persistent channel: it re-fetches the friend list on
// one cadence and the open conversation on a faster one, replacing the cache
// wholesale. Correct but bandwidth-heavy, for environments without websockets.
type PollTransport struct {
	api    *APIClient
	userID string
	state  *State

	messagesInterval time.Duration
	friendsInterval  time.Duration

	mu       sync.Mutex
	openConv string

	cancel context.CancelFunc
	done   chan struct{}
}

func NewPollTransport(api *APIClient, userID string, messagesInterval, friendsInterval time.Duration) *PollTransport {
	return &PollTransport{
		api:              api,
		userID:           userID,
		state:            NewState(userID),
		messagesInterval: messagesInterval,
		friendsInterval:  friendsInterval,
		done:             make(chan struct{}),
	}
}

// Connect performs the initial load and starts the poll loop.
func (t *PollTransport) Connect(ctx context.Context) error {
	if err := t.refreshFriends(); err != nil {
		return err
	}
	if err := t.refreshRequests(); err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	go t.loop(loopCtx)
	return nil
}

func (t *PollTransport) loop(ctx context.Context) {
	defer close(t.done)

	messagesTicker := time.NewTicker(t.messagesInterval)
	friendsTicker := time.NewTicker(t.friendsInterval)
	defer messagesTicker.Stop()
	defer friendsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-messagesTicker.C:
			t.mu.Lock()
			friendID := t.openConv
			t.mu.Unlock()
			if friendID == "" {
				continue
			}
			if err := t.refreshMessages(friendID); err != nil {
				logrus.Warnf("Poll: failed to refresh messages: %v", err)
			}
			if err := t.refreshFriends(); err != nil {
				logrus.Warnf("Poll: failed to refresh friends: %v", err)
			}

		case <-friendsTicker.C:
			if err := t.refreshFriends(); err != nil {
				logrus.Warnf("Poll: failed to refresh friends: %v", err)
			}
			if err := t.refreshRequests(); err != nil {
				logrus.Warnf("Poll: failed to refresh requests: %v", err)
			}
		}
	}
}

// OpenConversation switches the fast-cadence refresh to this conversation and
// loads it immediately.
func (t *PollTransport) OpenConversation(friendID string) error {
	t.mu.Lock()
	t.openConv = friendID
	t.mu.Unlock()
	return t.refreshMessages(friendID)
}

// SendMessage appends an optimistic echo under a temporary id, then submits
// over the fetch API. On success the echo is swapped for the authoritative
// record; on failure it is rolled back and committed state stays untouched.
func (t *PollTransport) SendMessage(friendID, content string) error {
	temp := models.Message{
		ID:         "temp-" + uuid.NewString(),
		SenderID:   t.userID,
		ReceiverID: friendID,
		Content:    content,
		Timestamp:  time.Now(),
	}
	t.state.applyMessageTo(friendID, temp)

	msg, err := t.api.SendMessage(friendID, content)
	if err != nil {
		t.state.RemoveMessage(friendID, temp.ID)
		return err
	}

	t.state.ReplaceMessage(friendID, temp.ID, *msg)
	return nil
}

func (t *PollTransport) RevokeMessage(friendID, messageID string) error {
	if err := t.api.RevokeMessage(friendID, messageID); err != nil {
		return err
	}
	t.state.ApplyRevoke(friendID, messageID)
	return nil
}

func (t *PollTransport) DeleteMessage(friendID, messageID string) error {
	if err := t.api.DeleteMessage(friendID, messageID); err != nil {
		return err
	}
	t.state.RemoveMessage(friendID, messageID)
	return nil
}

func (t *PollTransport) MarkRead(friendID string) error {
	if err := t.api.MarkRead(friendID); err != nil {
		return err
	}
	t.state.ApplyRead(friendID, 0)
	return nil
}

func (t *PollTransport) SendFriendRequest(toUserID string) error {
	if _, err := t.api.SendFriendRequest(toUserID); err != nil {
		return err
	}
	return t.refreshFriends()
}

func (t *PollTransport) ApproveFriendRequest(requestID string) error {
	if err := t.api.ApproveFriendRequest(requestID); err != nil {
		return err
	}
	t.state.RemoveRequest(requestID)
	return t.refreshFriends()
}

func (t *PollTransport) DeclineFriendRequest(requestID string) error {
	if err := t.api.DeclineFriendRequest(requestID); err != nil {
		return err
	}
	t.state.RemoveRequest(requestID)
	return nil
}

func (t *PollTransport) refreshFriends() error {
	friends, err := t.api.Friends()
	if err != nil {
		return err
	}
	t.state.SetFriends(friends)
	return nil
}

func (t *PollTransport) refreshRequests() error {
	requests, err := t.api.IncomingRequests()
	if err != nil {
		return err
	}
	t.state.SetRequests(requests)
	return nil
}

func (t *PollTransport) refreshMessages(friendID string) error {
	msgs, err := t.api.Messages(friendID)
	if err != nil {
		return err
	}
	t.state.SetMessages(friendID, msgs)
	return nil
}

func (t *PollTransport) State() *State {
	return t.state
}

// Close stops the poll loop.
func (t *PollTransport) Close() error {
	if t.cancel != nil {
		t.cancel()
		<-t.done
	}
	return nil
}
