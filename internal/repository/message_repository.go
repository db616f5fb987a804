package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Arlan-Askar/Messenger_Hub/internal/domain"
	"github.com/Arlan-Askar/Messenger_Hub/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository stores the authoritative conversation logs.
type MessageRepository struct {
	collection *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{collection: db.Collection("messages")}
}

// Append inserts a message into its conversation log.
func (r *MessageRepository) Append(ctx context.Context, msg *models.Message) (*models.Message, error) {
	msg.ID = primitive.NewObjectID().Hex()

	if _, err := r.collection.InsertOne(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to append message: %v", err)
	}
	return msg, nil
}

// GetByID fetches a single message.
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	var msg models.Message
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find message: %v", err)
	}
	return &msg, nil
}

// Conversation returns the full log for a conversation key ordered by
// (timestamp, id).
func (r *MessageRepository) Conversation(ctx context.Context, key string) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"conversation_key": key}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find messages: %v", err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	for cursor.Next(ctx) {
		var msg models.Message
		if err := cursor.Decode(&msg); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// MarkRevoked tombstones a message: content cleared, record preserved.
func (r *MessageRepository) MarkRevoked(ctx context.Context, id string) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_revoked": true, "content": ""}},
	)
	if err != nil {
		return fmt.Errorf("failed to revoke message: %v", err)
	}
	return nil
}

// HideFor removes the message from one viewer's view without touching the
// counterpart's copy.
func (r *MessageRepository) HideFor(ctx context.Context, id, userID string) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$addToSet": bson.M{"deleted_for": userID}},
	)
	if err != nil {
		return fmt.Errorf("failed to hide message: %v", err)
	}
	return nil
}
