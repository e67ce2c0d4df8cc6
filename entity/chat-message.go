package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatMessage is a single line within a chat session. Messages are
// immutable once created; ordering is creation order.
type ChatMessage struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	SessionID string             `json:"session_id" bson:"session_id"`
	SenderID  string             `json:"sender_id" bson:"sender_id"`
	Body      string             `json:"body" bson:"body"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
