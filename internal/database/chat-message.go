package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pebosi/zammad/entity"
)

// SaveChatMessage inserts one message line. Messages are immutable; there
// is no update path.
func (m *MongoDB) SaveChatMessage(ctx context.Context, msg *entity.ChatMessage) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(chatMessagesCollection)

	result, err := collection.InsertOne(ctx, msg)
	if err != nil {
		return fmt.Errorf("mongodb insert chat message: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		msg.ID = oid
	}
	return nil
}

// ListChatMessages returns a session's messages in creation order.
func (m *MongoDB) ListChatMessages(ctx context.Context, sessionID string) ([]entity.ChatMessage, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(chatMessagesCollection)

	filter := bson.D{{Key: "session_id", Value: sessionID}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find chat messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []entity.ChatMessage
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("mongodb decode chat messages: %w", err)
	}

	return messages, nil
}
