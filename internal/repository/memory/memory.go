// Package memory provides process-local implementations of the store
// interfaces. It backs the test suite and the server's -mem mode; the Mongo
// repositories are the durable equivalents.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Arlan-Askar/Messenger_Hub/internal/domain"
	"github.com/Arlan-Askar/Messenger_Hub/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Users struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewUsers() *Users {
	return &Users{users: make(map[string]models.User)}
}

func (s *Users) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = primitive.NewObjectID().Hex()
	user.CreatedAt = time.Now()
	s.users[user.ID] = *user
	return user, nil
}

func (s *Users) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Users) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	user := u
	return &user, nil
}

func (s *Users) SearchUsers(ctx context.Context, query, excludeID string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	var results []models.User
	for _, u := range s.users {
		if u.ID == excludeID {
			continue
		}
		if strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Email), q) {
			results = append(results, u)
		}
	}
	return results, nil
}

type FriendRecords struct {
	mu      sync.RWMutex
	records map[string]models.FriendRecord // key: ownerID|peerID
}

func NewFriendRecords() *FriendRecords {
	return &FriendRecords{records: make(map[string]models.FriendRecord)}
}

func recordKey(ownerID, peerID string) string {
	return ownerID + "|" + peerID
}

func (s *FriendRecords) Upsert(ctx context.Context, rec *models.FriendRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[recordKey(rec.OwnerID, rec.PeerID)] = *rec
	return nil
}

func (s *FriendRecords) Get(ctx context.Context, ownerID, peerID string) (*models.FriendRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[recordKey(ownerID, peerID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := rec
	return &out, nil
}

func (s *FriendRecords) List(ctx context.Context, ownerID string) ([]models.FriendRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []models.FriendRecord
	for _, rec := range s.records {
		if rec.OwnerID == ownerID {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (s *FriendRecords) Delete(ctx context.Context, ownerID, peerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, recordKey(ownerID, peerID))
	return nil
}

type FriendRequests struct {
	mu       sync.RWMutex
	requests map[string]models.FriendRequest
}

func NewFriendRequests() *FriendRequests {
	return &FriendRequests{requests: make(map[string]models.FriendRequest)}
}

func (s *FriendRequests) Create(ctx context.Context, req *models.FriendRequest) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req.ID = primitive.NewObjectID().Hex()
	s.requests[req.ID] = *req
	return req, nil
}

func (s *FriendRequests) GetByID(ctx context.Context, id string) (*models.FriendRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := req
	return &out, nil
}

func (s *FriendRequests) PendingBetween(ctx context.Context, a, b string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, req := range s.requests {
		if req.Status != models.RequestStatusPending {
			continue
		}
		if (req.FromUserID == a && req.ToUserID == b) || (req.FromUserID == b && req.ToUserID == a) {
			return true, nil
		}
	}
	return false, nil
}

func (s *FriendRequests) ListIncoming(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return s.listPending(func(req models.FriendRequest) bool { return req.ToUserID == userID })
}

func (s *FriendRequests) ListOutgoing(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return s.listPending(func(req models.FriendRequest) bool { return req.FromUserID == userID })
}

func (s *FriendRequests) listPending(match func(models.FriendRequest) bool) ([]models.FriendRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var requests []models.FriendRequest
	for _, req := range s.requests {
		if req.Status == models.RequestStatusPending && match(req) {
			requests = append(requests, req)
		}
	}
	return requests, nil
}

func (s *FriendRequests) UpdateStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return domain.ErrNotFound
	}
	req.Status = status
	s.requests[id] = req
	return nil
}

func (s *FriendRequests) PurgeSettled(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int64
	for id, req := range s.requests {
		if req.Status != models.RequestStatusPending && req.CreatedAt.Before(before) {
			delete(s.requests, id)
			purged++
		}
	}
	return purged, nil
}

type Messages struct {
	mu       sync.RWMutex
	messages map[string]models.Message
}

func NewMessages() *Messages {
	return &Messages{messages: make(map[string]models.Message)}
}

func (s *Messages) Append(ctx context.Context, msg *models.Message) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = primitive.NewObjectID().Hex()
	s.messages[msg.ID] = *msg
	return msg, nil
}

func (s *Messages) GetByID(ctx context.Context, id string) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.messages[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := msg
	return &out, nil
}

func (s *Messages) Conversation(ctx context.Context, key string) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var messages []models.Message
	for _, msg := range s.messages {
		if msg.ConversationKey == key {
			messages = append(messages, msg)
		}
	}
	models.SortMessages(messages)
	return messages, nil
}

func (s *Messages) MarkRevoked(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[id]
	if !ok {
		return domain.ErrNotFound
	}
	msg.IsRevoked = true
	msg.Content = ""
	s.messages[id] = msg
	return nil
}

func (s *Messages) HideFor(ctx context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[id]
	if !ok {
		return domain.ErrNotFound
	}
	if msg.VisibleTo(userID) {
		msg.DeletedFor = append(append([]string(nil), msg.DeletedFor...), userID)
		s.messages[id] = msg
	}
	return nil
}
