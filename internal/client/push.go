package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/Arlan-Askar/Messenger_Hub/internal/models"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// PushTransport keeps one persistent websocket open and applies every event
// the server pushes. Message commands travel over the socket; friend-request
// commands use the fetch API like the initial load does.
type PushTransport struct {
	api    *APIClient
	userID string
	state  *State

	mu   sync.Mutex // guards conn writes
	conn *websocket.Conn
	done chan struct{}
}

func NewPushTransport(api *APIClient, userID string) *PushTransport {
	return &PushTransport{
		api:    api,
		userID: userID,
		state:  NewState(userID),
		done:   make(chan struct{}),
	}
}

// Connect loads the friend and request lists, then opens the push channel.
// Registering on the server replaces any prior channel for this user.
func (t *PushTransport) Connect(ctx context.Context) error {
	if err := t.refreshFriends(); err != nil {
		return err
	}
	if err := t.refreshRequests(); err != nil {
		return err
	}

	wsURL := httpToWS(t.api.BaseURL) + "/ws?token=" + t.api.Token
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to open push channel: %v", err)
	}
	t.conn = conn

	go t.readLoop()
	return nil
}

func httpToWS(url string) string {
	if strings.HasPrefix(url, "https://") {
		return "wss://" + strings.TrimPrefix(url, "https://")
	}
	return "ws://" + strings.TrimPrefix(url, "http://")
}

func (t *PushTransport) readLoop() {
	defer close(t.done)
	for {
		var envelope models.Envelope
		if err := t.conn.ReadJSON(&envelope); err != nil {
			return
		}
		t.state.ApplyEnvelope(envelope)
	}
}

func (t *PushTransport) send(event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.WriteJSON(models.Envelope{Event: event, Data: data})
}

// OpenConversation loads the conversation once; subsequent updates arrive as
// push events.
func (t *PushTransport) OpenConversation(friendID string) error {
	msgs, err := t.api.Messages(friendID)
	if err != nil {
		return err
	}
	t.state.SetMessages(friendID, msgs)
	return nil
}

// SendMessage goes over the socket. No optimistic echo: the server's
// message_sent ack carries the authoritative record and the reconciler
// upserts it by id.
func (t *PushTransport) SendMessage(friendID, content string) error {
	return t.send(models.EventSendMessage, models.SendMessageCommand{
		FriendID: friendID,
		Content:  content,
	})
}

func (t *PushTransport) RevokeMessage(friendID, messageID string) error {
	return t.send(models.EventRevokeMessage, models.MessageCommand{
		MessageID: messageID,
		FriendID:  friendID,
	})
}

func (t *PushTransport) DeleteMessage(friendID, messageID string) error {
	return t.send(models.EventDeleteMessage, models.MessageCommand{
		MessageID: messageID,
		FriendID:  friendID,
	})
}

func (t *PushTransport) MarkRead(friendID string) error {
	return t.send(models.EventMarkRead, models.MarkReadCommand{FriendID: friendID})
}

// SendFriendRequest uses the fetch API; the sender's pending record shows up
// in the next friends refresh.
func (t *PushTransport) SendFriendRequest(toUserID string) error {
	if _, err := t.api.SendFriendRequest(toUserID); err != nil {
		return err
	}
	return t.refreshFriends()
}

func (t *PushTransport) ApproveFriendRequest(requestID string) error {
	if err := t.api.ApproveFriendRequest(requestID); err != nil {
		return err
	}
	t.state.RemoveRequest(requestID)
	return t.refreshFriends()
}

func (t *PushTransport) DeclineFriendRequest(requestID string) error {
	if err := t.api.DeclineFriendRequest(requestID); err != nil {
		return err
	}
	t.state.RemoveRequest(requestID)
	return nil
}

func (t *PushTransport) refreshFriends() error {
	friends, err := t.api.Friends()
	if err != nil {
		return err
	}
	t.state.SetFriends(friends)
	return nil
}

func (t *PushTransport) refreshRequests() error {
	requests, err := t.api.IncomingRequests()
	if err != nil {
		return err
	}
	t.state.SetRequests(requests)
	return nil
}

func (t *PushTransport) State() *State {
	return t.state
}

// Close tears down the channel. Disconnecting is the only cancellation
// primitive; in-flight commands are not retried.
func (t *PushTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	select {
	case <-t.done:
	default:
		logrus.Debug("Push channel closed before read loop drained")
	}
	return err
}
