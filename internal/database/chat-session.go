package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pebosi/zammad/entity"
)

// CreateSession inserts a new session document.
func (m *MongoDB) CreateSession(ctx context.Context, session *entity.ChatSession) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(chatSessionsCollection)

	_, err = collection.InsertOne(ctx, session)
	if err != nil {
		return fmt.Errorf("mongodb insert session: %w", err)
	}
	return nil
}

// GetSession returns the session, or nil if it does not exist.
func (m *MongoDB) GetSession(ctx context.Context, sessionID string) (*entity.ChatSession, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(chatSessionsCollection)

	var session entity.ChatSession
	err = collection.FindOne(ctx, bson.D{{Key: "session_id", Value: sessionID}}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongodb find session: %w", err)
	}

	return &session, nil
}

// AddParticipant appends clientID to the participant set via $addToSet,
// so concurrent additions to the same session cannot lose an update and
// duplicates are impossible. Returns the updated set, or nil if the
// session does not exist.
func (m *MongoDB) AddParticipant(ctx context.Context, sessionID, clientID string) ([]string, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(chatSessionsCollection)

	filter := bson.D{{Key: "session_id", Value: sessionID}}
	update := bson.D{{Key: "$addToSet", Value: bson.D{{Key: "participants", Value: clientID}}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var session entity.ChatSession
	err = collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongodb add participant: %w", err)
	}

	return session.Participants, nil
}

// RemoveParticipant pulls clientID from the participant set. Removing a
// client that is not registered is a no-op.
func (m *MongoDB) RemoveParticipant(ctx context.Context, sessionID, clientID string) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(chatSessionsCollection)

	filter := bson.D{{Key: "session_id", Value: sessionID}}
	update := bson.D{{Key: "$pull", Value: bson.D{{Key: "participants", Value: clientID}}}}

	_, err = collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongodb remove participant: %w", err)
	}
	return nil
}

// UpdateSessionState moves the session from one state to another. The
// filter includes the expected prior state, so a concurrent transition
// makes this a no-op reported through the matched flag.
func (m *MongoDB) UpdateSessionState(ctx context.Context, sessionID, from, to string) (bool, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return false, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(chatSessionsCollection)

	filter := bson.D{
		{Key: "session_id", Value: sessionID},
		{Key: "state", Value: from},
	}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "state", Value: to}}}}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("mongodb update session state: %w", err)
	}
	return result.MatchedCount == 1, nil
}

// AssignAgent sets the owning agent of a session.
func (m *MongoDB) AssignAgent(ctx context.Context, sessionID, agentID string) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(chatSessionsCollection)

	filter := bson.D{{Key: "session_id", Value: sessionID}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "agent_id", Value: agentID}}}}

	_, err = collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongodb assign agent: %w", err)
	}
	return nil
}

// CountSessions counts sessions whose state is in states, optionally
// restricted to one owning agent.
func (m *MongoDB) CountSessions(ctx context.Context, states []string, agentID string) (int, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return 0, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(chatSessionsCollection)

	filter := bson.D{{Key: "state", Value: bson.D{{Key: "$in", Value: states}}}}
	if agentID != "" {
		filter = append(filter, bson.E{Key: "agent_id", Value: agentID})
	}

	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("mongodb count sessions: %w", err)
	}
	return int(count), nil
}

// ListSessionsByAgent returns the agent's sessions in the given states,
// oldest first.
func (m *MongoDB) ListSessionsByAgent(ctx context.Context, agentID string, states []string) ([]entity.ChatSession, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(chatSessionsCollection)

	filter := bson.D{
		{Key: "agent_id", Value: agentID},
		{Key: "state", Value: bson.D{{Key: "$in", Value: states}}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []entity.ChatSession
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("mongodb decode sessions: %w", err)
	}

	return sessions, nil
}

// EnsureChatIndexes creates the indexes the chat queries depend on.
func (m *MongoDB) EnsureChatIndexes(ctx context.Context) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	db := connection.Database(m.database)

	_, err = db.Collection(chatAgentsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "agent_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongodb create agent index: %w", err)
	}

	_, err = db.Collection(chatSessionsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "session_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongodb create session index: %w", err)
	}

	_, err = db.Collection(chatMessagesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "session_id", Value: 1},
			{Key: "created_at", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("mongodb create message index: %w", err)
	}

	return nil
}
