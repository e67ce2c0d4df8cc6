package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const chatEnabledSetting = "chat"

// IsChatEnabled reads the chat feature flag. A missing setting row means
// the feature is off.
func (m *MongoDB) IsChatEnabled(ctx context.Context) (bool, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return false, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(settingsCollection)

	var setting struct {
		Name  string `bson:"name"`
		Value bool   `bson:"value"`
	}
	err = collection.FindOne(ctx, bson.D{{Key: "name", Value: chatEnabledSetting}}).Decode(&setting)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("mongodb find setting: %w", err)
	}

	return setting.Value, nil
}

// SetChatEnabled toggles the chat feature flag.
func (m *MongoDB) SetChatEnabled(ctx context.Context, enabled bool) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(settingsCollection)

	filter := bson.D{{Key: "name", Value: chatEnabledSetting}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: chatEnabledSetting},
		{Key: "value", Value: enabled},
	}}}
	opts := options.Update().SetUpsert(true)

	_, err = collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("mongodb set setting: %w", err)
	}
	return nil
}
