package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Arlan-Askar/Messenger_Hub/internal/domain"
	"github.com/Arlan-Askar/Messenger_Hub/internal/models"
	"github.com/Arlan-Askar/Messenger_Hub/pkg/logger"
)

// RevokeWindow is how long after sending a message its sender may still
// tombstone it, measured against the store's timestamp.
const RevokeWindow = 2 * time.Minute

// MessageStore persists the authoritative conversation logs.
type MessageStore interface {
	Append(ctx context.Context, msg *models.Message) (*models.Message, error)
	GetByID(ctx context.Context, id string) (*models.Message, error)
	Conversation(ctx context.Context, key string) ([]models.Message, error)
	MarkRevoked(ctx context.Context, id string) error
	HideFor(ctx context.Context, id, userID string) error
}

// MessageService enforces send/revoke/delete/read preconditions and keeps the
// denormalized FriendRecord previews in step with the log.
type MessageService struct {
	messages MessageStore
	records  FriendRecordStore
	notify   Notifier

	// Now is the authoritative clock; message timestamps and the revocation
	// window never trust a client clock.
	Now func() time.Time

	// Concurrent sends into the same conversation race on the projection
	// read-modify-write, so writes are serialized per conversation key.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewMessageService(messages MessageStore, records FriendRecordStore, notify Notifier) *MessageService {
	return &MessageService{
		messages: messages,
		records:  records,
		notify:   notify,
		Now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *MessageService) conversationLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

// SendMessage appends a message to the conversation log and updates both
// participants' previews. The receiver's unread counter grows only while the
// receiver has no push channel; a connected receiver gets the message
// immediately and resets the counter via MarkRead.
func (s *MessageService) SendMessage(ctx context.Context, senderID, receiverID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message content is empty", domain.ErrValidation)
	}

	senderRec, err := s.records.Get(ctx, senderID, receiverID)
	if err != nil || senderRec.Status != models.FriendStatusAccepted {
		return nil, fmt.Errorf("%w: users are not friends", domain.ErrUnauthorized)
	}

	key := models.ConversationKey(senderID, receiverID)
	lock := s.conversationLock(key)
	lock.Lock()
	defer lock.Unlock()

	now := s.Now()
	msg := &models.Message{
		ConversationKey: key,
		SenderID:        senderID,
		ReceiverID:      receiverID,
		Content:         content,
		Timestamp:       now,
	}
	msg, err = s.messages.Append(ctx, msg)
	if err != nil {
		return nil, err
	}

	senderRec.LastMessage = content
	senderRec.LastMessageTime = now
	if err := s.records.Upsert(ctx, senderRec); err != nil {
		return nil, err
	}

	receiverRec, err := s.records.Get(ctx, receiverID, senderID)
	if err != nil {
		return nil, fmt.Errorf("%w: receiver has no record of the sender", domain.ErrUnauthorized)
	}
	receiverRec.LastMessage = content
	receiverRec.LastMessageTime = now
	if !s.notify.Connected(receiverID) {
		receiverRec.UnreadCount++
	}
	if err := s.records.Upsert(ctx, receiverRec); err != nil {
		return nil, err
	}

	s.notify.Emit(receiverID, models.EventNewMessage, msg)
	s.notify.Emit(receiverID, models.EventFriendUpdated, models.FriendUpdate{
		FriendID:        senderID,
		LastMessage:     &content,
		LastMessageTime: &now,
		UnreadCount:     &receiverRec.UnreadCount,
	})

	s.notify.Emit(senderID, models.EventMessageSent, msg)
	s.notify.Emit(senderID, models.EventFriendUpdated, models.FriendUpdate{
		FriendID:        receiverID,
		LastMessage:     &content,
		LastMessageTime: &now,
	})

	return msg, nil
}

// RevokeMessage tombstones a message: only the sender, only within the
// revocation window, and only once. The record survives with empty content.
func (s *MessageService) RevokeMessage(ctx context.Context, messageID, actorID string) error {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("%w: message not found", domain.ErrNotFound)
	}
	if msg.SenderID != actorID {
		return fmt.Errorf("%w: only the sender can revoke a message", domain.ErrUnauthorized)
	}
	if msg.IsRevoked {
		return fmt.Errorf("%w: message already revoked", domain.ErrConflict)
	}
	if s.Now().Sub(msg.Timestamp) > RevokeWindow {
		return fmt.Errorf("%w: revocation window has expired", domain.ErrConflict)
	}

	if err := s.messages.MarkRevoked(ctx, messageID); err != nil {
		return err
	}

	peerID := msg.ReceiverID
	if peerID == actorID {
		peerID = msg.SenderID
	}
	s.notify.Emit(actorID, models.EventMessageRevoked, models.MessageRef{MessageID: messageID, FriendID: peerID})
	s.notify.Emit(peerID, models.EventMessageRevoked, models.MessageRef{MessageID: messageID, FriendID: actorID})

	logger.Log.Infof("User %s revoked message %s", actorID, messageID)
	return nil
}

// DeleteMessage hides a message from the actor's view only. The counterpart
// keeps its copy and the shared log stays intact.
func (s *MessageService) DeleteMessage(ctx context.Context, messageID, actorID string) error {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil || !msg.VisibleTo(actorID) {
		return fmt.Errorf("%w: message not found", domain.ErrNotFound)
	}
	if msg.SenderID != actorID && msg.ReceiverID != actorID {
		return fmt.Errorf("%w: message belongs to another conversation", domain.ErrUnauthorized)
	}

	if err := s.messages.HideFor(ctx, messageID, actorID); err != nil {
		return err
	}

	peerID := msg.ReceiverID
	if peerID == actorID {
		peerID = msg.SenderID
	}

	// The actor's preview is re-derived from what remains visible to them.
	if err := s.refreshPreview(ctx, actorID, peerID, msg.ConversationKey); err != nil {
		return err
	}

	s.notify.Emit(actorID, models.EventMessageDeleted, models.MessageRef{MessageID: messageID, FriendID: peerID})
	return nil
}

func (s *MessageService) refreshPreview(ctx context.Context, ownerID, peerID, key string) error {
	rec, err := s.records.Get(ctx, ownerID, peerID)
	if err != nil {
		return nil
	}

	msgs, err := s.messages.Conversation(ctx, key)
	if err != nil {
		return err
	}

	rec.LastMessage = ""
	rec.LastMessageTime = time.Time{}
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].VisibleTo(ownerID) {
			rec.LastMessage = msgs[i].Content
			rec.LastMessageTime = msgs[i].Timestamp
			break
		}
	}
	return s.records.Upsert(ctx, rec)
}

// MarkRead zeroes the (user, peer) unread counter. The update is pushed back
// to the user's own channel only, for multi-device consistency.
func (s *MessageService) MarkRead(ctx context.Context, userID, peerID string) error {
	rec, err := s.records.Get(ctx, userID, peerID)
	if err != nil {
		return fmt.Errorf("%w: no friend record for peer", domain.ErrNotFound)
	}

	rec.UnreadCount = 0
	if err := s.records.Upsert(ctx, rec); err != nil {
		return err
	}

	s.notify.Emit(userID, models.EventReadUpdated, models.ReadUpdate{FriendID: peerID, UnreadCount: 0})
	return nil
}

// Conversation returns the messages visible to userID for the (user, peer)
// log, ordered by (timestamp, id).
func (s *MessageService) Conversation(ctx context.Context, userID, peerID string) ([]models.Message, error) {
	msgs, err := s.messages.Conversation(ctx, models.ConversationKey(userID, peerID))
	if err != nil {
		return nil, err
	}

	visible := make([]models.Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.VisibleTo(userID) {
			visible = append(visible, msg)
		}
	}
	models.SortMessages(visible)
	return visible, nil
}
