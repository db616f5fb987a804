package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Arlan-Askar/Messenger_Hub/internal/domain"
	"github.com/Arlan-Askar/Messenger_Hub/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FriendRequestRepository stores the shared friend-request documents.
type FriendRequestRepository struct {
	collection *mongo.Collection
}

func NewFriendRequestRepository(db *mongo.Database) *FriendRequestRepository {
	return &FriendRequestRepository{
		collection: db.Collection("friend_requests"),
	}
}

// Create inserts a new request.
func (r *FriendRequestRepository) Create(ctx context.Context, req *models.FriendRequest) (*models.FriendRequest, error) {
	req.ID = primitive.NewObjectID().Hex()

	if _, err := r.collection.InsertOne(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create friend request: %v", err)
	}
	return req, nil
}

// GetByID fetches a single request.
func (r *FriendRequestRepository) GetByID(ctx context.Context, id string) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find friend request: %v", err)
	}
	return &req, nil
}

// PendingBetween reports whether a pending request exists for the unordered
// (a, b) pair, in either direction.
func (r *FriendRequestRepository) PendingBetween(ctx context.Context, a, b string) (bool, error) {
	filter := bson.M{
		"status": models.RequestStatusPending,
		"$or": []bson.M{
			{"from_user_id": a, "to_user_id": b},
			{"from_user_id": b, "to_user_id": a},
		},
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to count pending requests: %v", err)
	}
	return count > 0, nil
}

// ListIncoming returns pending requests addressed to the user.
func (r *FriendRequestRepository) ListIncoming(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return r.listPending(ctx, bson.M{"to_user_id": userID, "status": models.RequestStatusPending})
}

// ListOutgoing returns pending requests the user has sent.
func (r *FriendRequestRepository) ListOutgoing(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return r.listPending(ctx, bson.M{"from_user_id": userID, "status": models.RequestStatusPending})
}

func (r *FriendRequestRepository) listPending(ctx context.Context, filter bson.M) ([]models.FriendRequest, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find friend requests: %v", err)
	}
	defer cursor.Close(ctx)

	var requests []models.FriendRequest
	for cursor.Next(ctx) {
		var req models.FriendRequest
		if err := cursor.Decode(&req); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// UpdateStatus transitions a request to the given status.
func (r *FriendRequestRepository) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update request status: %v", err)
	}
	return nil
}

// PurgeSettled removes accepted and rejected requests created before the
// cutoff. Pending requests are never purged.
func (r *FriendRequestRepository) PurgeSettled(ctx context.Context, before time.Time) (int64, error) {
	filter := bson.M{
		"status":     bson.M{"$ne": models.RequestStatusPending},
		"created_at": bson.M{"$lt": before},
	}

	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to purge settled requests: %v", err)
	}

	if result.DeletedCount > 0 {
		logrus.WithField("count", result.DeletedCount).Info("Purged settled friend requests")
	}
	return result.DeletedCount, nil
}
