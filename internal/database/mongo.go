package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pebosi/zammad/internal/config"
	"github.com/pebosi/zammad/internal/lib/sl"
)

const (
	chatAgentsCollection   = "chat-agents"
	chatSessionsCollection = "chat-sessions"
	chatMessagesCollection = "chat-messages"
	settingsCollection     = "settings"
	apiKeysCollection      = "api-keys"
)

type MongoDB struct {
	clientOptions *options.ClientOptions
	database      string
	log           *slog.Logger
}

func NewMongoClient(conf *config.Config, logger *slog.Logger) (*MongoDB, error) {
	if !conf.Mongo.Enabled {
		return nil, nil
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	client := &MongoDB{
		clientOptions: clientOptions,
		database:      conf.Mongo.Database,
		log:           logger.With(sl.Module("mongodb")),
	}
	return client, nil
}

func (m *MongoDB) connect(ctx context.Context) (*mongo.Client, error) {
	connection, err := mongo.Connect(ctx, m.clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect error: %w", err)
	}
	return connection, nil
}

func (m *MongoDB) disconnect(ctx context.Context, connection *mongo.Client) {
	_ = connection.Disconnect(ctx)
}

// CheckApiKey resolves an API key to its username.
func (m *MongoDB) CheckApiKey(ctx context.Context, key string) (string, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return "", err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(apiKeysCollection)
	filter := bson.D{{Key: "key", Value: key}}

	var result struct {
		Username string `bson:"username"`
		Key      string `bson:"key"`
	}
	err = collection.FindOne(ctx, filter).Decode(&result)
	if err != nil {
		return "", err
	}

	if result.Username == "" {
		return "", fmt.Errorf("api key not found")
	}

	return result.Username, nil
}

func (m *MongoDB) getKeyByUsername(ctx context.Context, username string) (string, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return "", err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(apiKeysCollection)
	filter := bson.D{{Key: "username", Value: username}}

	var result struct {
		Key string `bson:"key"`
	}
	err = collection.FindOne(ctx, filter).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil
		}
		return "", fmt.Errorf("mongodb find error: %w", err)
	}

	return result.Key, nil
}

// GenerateApiKey returns the existing key for username, creating one on
// first use.
func (m *MongoDB) GenerateApiKey(ctx context.Context, username string) (string, error) {
	k, err := m.getKeyByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("failed to get existing API key: %w", err)
	}
	if k != "" {
		return k, nil
	}

	connection, err := m.connect(ctx)
	if err != nil {
		return "", err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(apiKeysCollection)
	key := uuid.NewString()

	doc := bson.D{
		{Key: "username", Value: username},
		{Key: "key", Value: key},
	}

	_, err = collection.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("mongodb insert error: %w", err)
	}

	return key, nil
}
