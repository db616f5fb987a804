package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Arlan-Askar/Messenger_Hub/internal/domain"
	"github.com/Arlan-Askar/Messenger_Hub/internal/models"
	"github.com/Arlan-Askar/Messenger_Hub/pkg/logger"
)

// FriendRecordStore persists each user's directional relationship projection.
type FriendRecordStore interface {
	Upsert(ctx context.Context, rec *models.FriendRecord) error
	Get(ctx context.Context, ownerID, peerID string) (*models.FriendRecord, error)
	List(ctx context.Context, ownerID string) ([]models.FriendRecord, error)
	Delete(ctx context.Context, ownerID, peerID string) error
}

// FriendRequestStore persists the shared friend-request documents.
type FriendRequestStore interface {
	Create(ctx context.Context, req *models.FriendRequest) (*models.FriendRequest, error)
	GetByID(ctx context.Context, id string) (*models.FriendRequest, error)
	PendingBetween(ctx context.Context, a, b string) (bool, error)
	ListIncoming(ctx context.Context, userID string) ([]models.FriendRequest, error)
	ListOutgoing(ctx context.Context, userID string) ([]models.FriendRequest, error)
	UpdateStatus(ctx context.Context, id, status string) error
	PurgeSettled(ctx context.Context, before time.Time) (int64, error)
}

// FriendService enforces the friend-request state machine and owns the
// FriendRecord projections it fans out into.
type FriendService struct {
	users    UserStore
	records  FriendRecordStore
	requests FriendRequestStore
	notify   Notifier

	// Now is the authoritative clock; swapped out in tests.
	Now func() time.Time
}

func NewFriendService(users UserStore, records FriendRecordStore, requests FriendRequestStore, notify Notifier) *FriendService {
	return &FriendService{
		users:    users,
		records:  records,
		requests: requests,
		notify:   notify,
		Now:      time.Now,
	}
}

// SendFriendRequest creates a pending request from one user to another.
// The sender immediately sees a pending FriendRecord; the receiver only learns
// of the request through the incoming-requests query or the push event.
func (s *FriendService) SendFriendRequest(ctx context.Context, fromID, toID string) (*models.FriendRequest, error) {
	if fromID == toID {
		return nil, fmt.Errorf("%w: cannot send a friend request to yourself", domain.ErrValidation)
	}

	toUser, err := s.users.GetUserByID(ctx, toID)
	if err != nil {
		return nil, fmt.Errorf("%w: user does not exist", domain.ErrNotFound)
	}
	fromUser, err := s.users.GetUserByID(ctx, fromID)
	if err != nil {
		return nil, fmt.Errorf("%w: user does not exist", domain.ErrNotFound)
	}

	if rec, err := s.records.Get(ctx, fromID, toID); err == nil && rec.Status == models.FriendStatusAccepted {
		return nil, fmt.Errorf("%w: already friends", domain.ErrConflict)
	}

	pending, err := s.requests.PendingBetween(ctx, fromID, toID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, fmt.Errorf("%w: a request between these users is already pending", domain.ErrConflict)
	}

	request := &models.FriendRequest{
		FromUserID: fromID,
		FromName:   fromUser.Name,
		ToUserID:   toID,
		ToName:     toUser.Name,
		Status:     models.RequestStatusPending,
		CreatedAt:  s.Now(),
	}
	request, err = s.requests.Create(ctx, request)
	if err != nil {
		return nil, err
	}

	// The sender's side shows the peer as awaiting approval right away.
	err = s.records.Upsert(ctx, &models.FriendRecord{
		OwnerID: fromID,
		PeerID:  toID,
		Name:    toUser.Name,
		Status:  models.FriendStatusPending,
	})
	if err != nil {
		return nil, err
	}

	s.notify.Emit(toID, models.EventFriendRequest, request)

	logger.Log.Infof("User %s sent a friend request to %s", fromID, toID)
	return request, nil
}

// ApproveFriendRequest accepts a pending request and fans it out into
// accepted FriendRecords on both sides. Approving twice fails on the status
// check rather than corrupting state.
func (s *FriendService) ApproveFriendRequest(ctx context.Context, requestID, approverID string) error {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("%w: friend request not found", domain.ErrNotFound)
	}
	if request.ToUserID != approverID {
		return fmt.Errorf("%w: only the recipient can approve a request", domain.ErrUnauthorized)
	}
	if request.Status != models.RequestStatusPending {
		return fmt.Errorf("%w: request already handled", domain.ErrConflict)
	}

	if err := s.requests.UpdateStatus(ctx, requestID, models.RequestStatusAccepted); err != nil {
		return err
	}

	// Sender's side transitions pending -> accepted, keeping any preview.
	senderRec := &models.FriendRecord{
		OwnerID: request.FromUserID,
		PeerID:  request.ToUserID,
		Name:    request.ToName,
		Status:  models.FriendStatusAccepted,
	}
	if existing, err := s.records.Get(ctx, request.FromUserID, request.ToUserID); err == nil {
		senderRec.LastMessage = existing.LastMessage
		senderRec.LastMessageTime = existing.LastMessageTime
		senderRec.UnreadCount = existing.UnreadCount
	}
	if err := s.records.Upsert(ctx, senderRec); err != nil {
		return err
	}

	// Receiver's side is created now: approval is the first time the receiver
	// gains a projection of the relationship.
	err = s.records.Upsert(ctx, &models.FriendRecord{
		OwnerID: request.ToUserID,
		PeerID:  request.FromUserID,
		Name:    request.FromName,
		Status:  models.FriendStatusAccepted,
	})
	if err != nil {
		return err
	}

	s.notify.Emit(request.FromUserID, models.EventFriendApproved, models.FriendApproval{
		FriendID:   request.ToUserID,
		FriendName: request.ToName,
	})
	s.notify.Emit(request.ToUserID, models.EventFriendApproved, models.FriendApproval{
		FriendID:   request.FromUserID,
		FriendName: request.FromName,
	})

	logger.Log.Infof("User %s approved friend request %s", approverID, requestID)
	return nil
}

// DeclineFriendRequest rejects a pending request. Rejection is terminal; the
// sender's pending projection is removed so the pair can start over later.
func (s *FriendService) DeclineFriendRequest(ctx context.Context, requestID, approverID string) error {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("%w: friend request not found", domain.ErrNotFound)
	}
	if request.ToUserID != approverID {
		return fmt.Errorf("%w: only the recipient can decline a request", domain.ErrUnauthorized)
	}
	if request.Status != models.RequestStatusPending {
		return fmt.Errorf("%w: request already handled", domain.ErrConflict)
	}

	if err := s.requests.UpdateStatus(ctx, requestID, models.RequestStatusRejected); err != nil {
		return err
	}
	if err := s.records.Delete(ctx, request.FromUserID, request.ToUserID); err != nil {
		return err
	}

	s.notify.Emit(request.FromUserID, models.EventFriendDeclined, models.FriendDecline{
		RequestID: request.ID,
		FriendID:  request.ToUserID,
	})

	logger.Log.Infof("User %s declined friend request %s", approverID, requestID)
	return nil
}

// IncomingRequests lists pending requests addressed to the user.
func (s *FriendService) IncomingRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return s.requests.ListIncoming(ctx, userID)
}

// OutgoingRequests lists pending requests the user has sent.
func (s *FriendService) OutgoingRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return s.requests.ListOutgoing(ctx, userID)
}

// Friends returns the user's relationship projections, pending and accepted.
func (s *FriendService) Friends(ctx context.Context, userID string) ([]models.FriendRecord, error) {
	return s.records.List(ctx, userID)
}

// PurgeSettledRequests removes accepted and rejected requests older than age.
func (s *FriendService) PurgeSettledRequests(ctx context.Context, age time.Duration) (int64, error) {
	return s.requests.PurgeSettled(ctx, s.Now().Add(-age))
}
