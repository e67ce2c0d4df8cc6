package entity

import "time"

// ChatAgent represents one agent's live-chat readiness. There is at most
// one record per agent id; heartbeats upsert it, nothing deletes it. An
// agent whose heartbeat falls outside the presence window is treated as
// absent regardless of the active flag.
type ChatAgent struct {
	AgentID    string    `json:"agent_id" bson:"agent_id"`
	Active     bool      `json:"active" bson:"active"`
	Concurrent int       `json:"concurrent" bson:"concurrent"` // max simultaneous chats
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"` // last heartbeat
}
