package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Arlan-Askar/Messenger_Hub/internal/domain"
	"github.com/Arlan-Askar/Messenger_Hub/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FriendRecordRepository stores each user's directional view of a
// relationship, one document per (owner, peer) pair.
type FriendRecordRepository struct {
	collection *mongo.Collection
}

func NewFriendRecordRepository(db *mongo.Database) *FriendRecordRepository {
	return &FriendRecordRepository{
		collection: db.Collection("friend_records"),
	}
}

// Upsert writes the full projection for (owner, peer).
func (r *FriendRecordRepository) Upsert(ctx context.Context, rec *models.FriendRecord) error {
	filter := bson.M{"owner_id": rec.OwnerID, "peer_id": rec.PeerID}
	update := bson.M{"$set": rec}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert friend record: %v", err)
	}
	return nil
}

// Get fetches the (owner, peer) projection.
func (r *FriendRecordRepository) Get(ctx context.Context, ownerID, peerID string) (*models.FriendRecord, error) {
	var rec models.FriendRecord
	err := r.collection.FindOne(ctx, bson.M{"owner_id": ownerID, "peer_id": peerID}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find friend record: %v", err)
	}
	return &rec, nil
}

// List returns all of the owner's friend records.
func (r *FriendRecordRepository) List(ctx context.Context, ownerID string) ([]models.FriendRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("failed to list friend records: %v", err)
	}
	defer cursor.Close(ctx)

	var records []models.FriendRecord
	for cursor.Next(ctx) {
		var rec models.FriendRecord
		if err := cursor.Decode(&rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Delete removes the (owner, peer) projection. Used when a pending request is
// declined.
func (r *FriendRecordRepository) Delete(ctx context.Context, ownerID, peerID string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"owner_id": ownerID, "peer_id": peerID}); err != nil {
		return fmt.Errorf("failed to delete friend record: %v", err)
	}
	return nil
}
