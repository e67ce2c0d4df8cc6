package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pebosi/zammad/entity"
)

// UpsertAgent writes the presence record keyed by agent_id. There is
// never more than one record per agent.
func (m *MongoDB) UpsertAgent(ctx context.Context, agent *entity.ChatAgent) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(chatAgentsCollection)

	filter := bson.D{{Key: "agent_id", Value: agent.AgentID}}
	update := bson.D{{Key: "$set", Value: agent}}
	opts := options.Update().SetUpsert(true)

	_, err = collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("mongodb upsert agent: %w", err)
	}
	return nil
}

// GetAgent returns the presence record, or nil if the agent has never
// registered.
func (m *MongoDB) GetAgent(ctx context.Context, agentID string) (*entity.ChatAgent, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(chatAgentsCollection)

	var agent entity.ChatAgent
	err = collection.FindOne(ctx, bson.D{{Key: "agent_id", Value: agentID}}).Decode(&agent)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongodb find agent: %w", err)
	}

	return &agent, nil
}

// ListActiveAgents returns agents with active=true whose heartbeat is
// newer than since.
func (m *MongoDB) ListActiveAgents(ctx context.Context, since time.Time) ([]entity.ChatAgent, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(chatAgentsCollection)

	filter := bson.D{
		{Key: "active", Value: true},
		{Key: "updated_at", Value: bson.D{{Key: "$gt", Value: since}}},
	}

	cursor, err := collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("mongodb find active agents: %w", err)
	}
	defer cursor.Close(ctx)

	var agents []entity.ChatAgent
	if err = cursor.All(ctx, &agents); err != nil {
		return nil, fmt.Errorf("mongodb decode agents: %w", err)
	}

	return agents, nil
}
