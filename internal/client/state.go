package client

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/Arlan-Askar/Messenger_Hub/internal/models"
	"github.com/sirupsen/logrus"
)

// State is the client-side cache both transports reconcile into. Every write
// is an id-based upsert, never a blind append, so replays and duplicate events
// are harmless.
type State struct {
	mu       sync.RWMutex
	userID   string
	friends  map[string]models.FriendRecord  // keyed by peer id
	requests map[string]models.FriendRequest // keyed by request id
	messages map[string][]models.Message     // keyed by peer id
}

func NewState(userID string) *State {
	return &State{
		userID:   userID,
		friends:  make(map[string]models.FriendRecord),
		requests: make(map[string]models.FriendRequest),
		messages: make(map[string][]models.Message),
	}
}

// Snapshot is a deep, canonically ordered copy of the cache, comparable
// across transports.
type Snapshot struct {
	Friends  []models.FriendRecord
	Requests []models.FriendRequest
	Messages map[string][]models.Message
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Messages: make(map[string][]models.Message)}
	for _, f := range s.friends {
		snap.Friends = append(snap.Friends, f)
	}
	sort.Slice(snap.Friends, func(i, j int) bool { return snap.Friends[i].PeerID < snap.Friends[j].PeerID })

	for _, r := range s.requests {
		snap.Requests = append(snap.Requests, r)
	}
	sort.Slice(snap.Requests, func(i, j int) bool { return snap.Requests[i].ID < snap.Requests[j].ID })

	for peerID, msgs := range s.messages {
		copied := append([]models.Message(nil), msgs...)
		models.SortMessages(copied)
		snap.Messages[peerID] = copied
	}
	return snap
}

// SetFriends replaces the friend list wholesale (poll refetch, initial load).
func (s *State) SetFriends(friends []models.FriendRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.friends = make(map[string]models.FriendRecord, len(friends))
	for _, f := range friends {
		s.friends[f.PeerID] = f
	}
}

// UpsertFriend merges a single record into the cache.
func (s *State) UpsertFriend(rec models.FriendRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friends[rec.PeerID] = rec
}

// RemoveFriend drops the peer's record (declined request).
func (s *State) RemoveFriend(peerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.friends, peerID)
}

// ApplyFriendUpdate merges the preview deltas; nil fields stay untouched.
func (s *State) ApplyFriendUpdate(update models.FriendUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.friends[update.FriendID]
	if !ok {
		return
	}
	if update.LastMessage != nil {
		rec.LastMessage = *update.LastMessage
	}
	if update.LastMessageTime != nil {
		rec.LastMessageTime = *update.LastMessageTime
	}
	if update.UnreadCount != nil {
		rec.UnreadCount = *update.UnreadCount
	}
	s.friends[update.FriendID] = rec
}

// SetRequests replaces the pending-request list wholesale.
func (s *State) SetRequests(requests []models.FriendRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = make(map[string]models.FriendRequest, len(requests))
	for _, r := range requests {
		s.requests[r.ID] = r
	}
}

// AddRequest upserts one pending request by id.
func (s *State) AddRequest(req models.FriendRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = req
}

// RemoveRequest drops a request after it was handled.
func (s *State) RemoveRequest(requestID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.requests, requestID)
}

// SetMessages replaces one conversation wholesale. Any optimistic temp echoes
// are discarded; the snapshot is authoritative.
func (s *State) SetMessages(peerID string, msgs []models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := append([]models.Message(nil), msgs...)
	models.SortMessages(copied)
	s.messages[peerID] = copied
}

// ApplyMessage upserts a message into its peer's conversation. Applying the
// same message twice leaves the cache unchanged.
func (s *State) ApplyMessage(msg models.Message) {
	peerID := msg.SenderID
	if peerID == s.userID {
		peerID = msg.ReceiverID
	}
	s.applyMessageTo(peerID, msg)
}

func (s *State) applyMessageTo(peerID string, msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.messages[peerID]
	for i := range msgs {
		if msgs[i].ID == msg.ID {
			msgs[i] = msg
			return
		}
	}
	msgs = append(msgs, msg)
	models.SortMessages(msgs)
	s.messages[peerID] = msgs
}

// ReplaceMessage swaps an optimistic temp echo for the server's message.
func (s *State) ReplaceMessage(peerID, oldID string, msg models.Message) {
	s.RemoveMessage(peerID, oldID)
	s.applyMessageTo(peerID, msg)
}

// RemoveMessage drops a message from the peer's conversation.
func (s *State) RemoveMessage(peerID, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.messages[peerID]
	for i := range msgs {
		if msgs[i].ID == messageID {
			s.messages[peerID] = append(msgs[:i], msgs[i+1:]...)
			return
		}
	}
}

// ApplyRevoke tombstones the message in place.
func (s *State) ApplyRevoke(peerID, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.messages[peerID]
	for i := range msgs {
		if msgs[i].ID == messageID {
			msgs[i].IsRevoked = true
			msgs[i].Content = ""
			return
		}
	}
}

// ApplyRead zeroes the peer's unread counter.
func (s *State) ApplyRead(peerID string, unread int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.friends[peerID]
	if !ok {
		return
	}
	rec.UnreadCount = unread
	s.friends[peerID] = rec
}

// ApplyEnvelope routes one push-channel event into the cache. This is the
// single reconciliation path for push mode; poll mode converges on the same
// state through wholesale refetch.
func (s *State) ApplyEnvelope(envelope models.Envelope) {
	switch envelope.Event {
	case models.EventNewMessage, models.EventMessageSent:
		var msg models.Message
		if unmarshal(envelope.Data, &msg) {
			s.ApplyMessage(msg)
		}

	case models.EventMessageRevoked:
		var ref models.MessageRef
		if unmarshal(envelope.Data, &ref) {
			s.ApplyRevoke(ref.FriendID, ref.MessageID)
		}

	case models.EventMessageDeleted:
		var ref models.MessageRef
		if unmarshal(envelope.Data, &ref) {
			s.RemoveMessage(ref.FriendID, ref.MessageID)
		}

	case models.EventReadUpdated:
		var update models.ReadUpdate
		if unmarshal(envelope.Data, &update) {
			s.ApplyRead(update.FriendID, update.UnreadCount)
		}

	case models.EventFriendRequest:
		var req models.FriendRequest
		if unmarshal(envelope.Data, &req) {
			s.AddRequest(req)
		}

	case models.EventFriendApproved:
		var approval models.FriendApproval
		if unmarshal(envelope.Data, &approval) {
			// OwnerID stays empty: fetched records never carry it over JSON,
			// and the cache is per-user anyway.
			s.UpsertFriend(models.FriendRecord{
				PeerID: approval.FriendID,
				Name:   approval.FriendName,
				Status: models.FriendStatusAccepted,
			})
		}

	case models.EventFriendDeclined:
		var decline models.FriendDecline
		if unmarshal(envelope.Data, &decline) {
			s.RemoveFriend(decline.FriendID)
		}

	case models.EventFriendUpdated:
		var update models.FriendUpdate
		if unmarshal(envelope.Data, &update) {
			s.ApplyFriendUpdate(update)
		}

	case models.EventError:
		var evt models.ErrorEvent
		if unmarshal(envelope.Data, &evt) {
			logrus.Warnf("Server reported error: %s", evt.Message)
		}
	}
}

func unmarshal(data json.RawMessage, v interface{}) bool {
	if err := json.Unmarshal(data, v); err != nil {
		logrus.Warnf("Failed to decode event payload: %v", err)
		return false
	}
	return true
}
