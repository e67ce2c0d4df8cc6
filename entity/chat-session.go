package entity

import "time"

// Chat session lifecycle states. Transitions only move forward:
// waiting -> running -> closed.
const (
	SessionStateWaiting = "waiting"
	SessionStateRunning = "running"
	SessionStateClosed  = "closed"
)

// ChatSession is one live chat conversation. Participants is an ordered
// set of client connection ids; membership is unique and insertion order
// is preserved. AgentID is empty while the session sits in the queue.
type ChatSession struct {
	SessionID    string                 `json:"session_id" bson:"session_id"`
	AgentID      string                 `json:"agent_id,omitempty" bson:"agent_id,omitempty"`
	State        string                 `json:"state" bson:"state"`
	Participants []string               `json:"participants" bson:"participants"`
	Preferences  map[string]interface{} `json:"preferences,omitempty" bson:"preferences,omitempty"`
	CreatedAt    time.Time              `json:"created_at" bson:"created_at"`
}

// HasParticipant reports whether clientID is already registered.
func (s *ChatSession) HasParticipant(clientID string) bool {
	for _, id := range s.Participants {
		if id == clientID {
			return true
		}
	}
	return false
}
