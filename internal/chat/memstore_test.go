package chat_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/pebosi/zammad/entity"
)

// memStore is an in-memory stand-in for the persistence collaborator,
// implementing the chat store interfaces with mutex-guarded maps.
type memStore struct {
	mu          sync.RWMutex
	agents      map[string]entity.ChatAgent
	sessions    map[string]*entity.ChatSession
	messages    map[string][]entity.ChatMessage
	chatEnabled bool
	failAll     bool
}

var errStoreDown = errors.New("store down")

func newMemStore() *memStore {
	return &memStore{
		agents:   make(map[string]entity.ChatAgent),
		sessions: make(map[string]*entity.ChatSession),
		messages: make(map[string][]entity.ChatMessage),
	}
}

func (s *memStore) UpsertAgent(_ context.Context, agent *entity.ChatAgent) error {
	if s.failAll {
		return errStoreDown
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[agent.AgentID] = *agent
	return nil
}

func (s *memStore) GetAgent(_ context.Context, agentID string) (*entity.ChatAgent, error) {
	if s.failAll {
		return nil, errStoreDown
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	agent, ok := s.agents[agentID]
	if !ok {
		return nil, nil
	}
	copied := agent
	return &copied, nil
}

func (s *memStore) ListActiveAgents(_ context.Context, since time.Time) ([]entity.ChatAgent, error) {
	if s.failAll {
		return nil, errStoreDown
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var agents []entity.ChatAgent
	for _, agent := range s.agents {
		if agent.Active && agent.UpdatedAt.After(since) {
			agents = append(agents, agent)
		}
	}
	return agents, nil
}

func (s *memStore) CreateSession(_ context.Context, session *entity.ChatSession) error {
	if s.failAll {
		return errStoreDown
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	copied.Participants = append([]string(nil), session.Participants...)
	s.sessions[session.SessionID] = &copied
	return nil
}

func (s *memStore) GetSession(_ context.Context, sessionID string) (*entity.ChatSession, error) {
	if s.failAll {
		return nil, errStoreDown
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	copied := *session
	copied.Participants = append([]string(nil), session.Participants...)
	return &copied, nil
}

func (s *memStore) AddParticipant(_ context.Context, sessionID, clientID string) ([]string, error) {
	if s.failAll {
		return nil, errStoreDown
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	for _, id := range session.Participants {
		if id == clientID {
			return append([]string(nil), session.Participants...), nil
		}
	}
	session.Participants = append(session.Participants, clientID)
	return append([]string(nil), session.Participants...), nil
}

func (s *memStore) RemoveParticipant(_ context.Context, sessionID, clientID string) error {
	if s.failAll {
		return errStoreDown
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	for i, id := range session.Participants {
		if id == clientID {
			session.Participants = append(session.Participants[:i], session.Participants[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *memStore) UpdateSessionState(_ context.Context, sessionID, from, to string) (bool, error) {
	if s.failAll {
		return false, errStoreDown
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok || session.State != from {
		return false, nil
	}
	session.State = to
	return true, nil
}

func (s *memStore) AssignAgent(_ context.Context, sessionID, agentID string) error {
	if s.failAll {
		return errStoreDown
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		session.AgentID = agentID
	}
	return nil
}

func (s *memStore) CountSessions(_ context.Context, states []string, agentID string) (int, error) {
	if s.failAll {
		return 0, errStoreDown
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, session := range s.sessions {
		if agentID != "" && session.AgentID != agentID {
			continue
		}
		for _, state := range states {
			if session.State == state {
				count++
				break
			}
		}
	}
	return count, nil
}

func (s *memStore) ListSessionsByAgent(_ context.Context, agentID string, states []string) ([]entity.ChatSession, error) {
	if s.failAll {
		return nil, errStoreDown
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sessions []entity.ChatSession
	for _, session := range s.sessions {
		if session.AgentID != agentID {
			continue
		}
		for _, state := range states {
			if session.State == state {
				copied := *session
				copied.Participants = append([]string(nil), session.Participants...)
				sessions = append(sessions, copied)
				break
			}
		}
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (s *memStore) SaveChatMessage(_ context.Context, msg *entity.ChatMessage) error {
	if s.failAll {
		return errStoreDown
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], *msg)
	return nil
}

func (s *memStore) ListChatMessages(_ context.Context, sessionID string) ([]entity.ChatMessage, error) {
	if s.failAll {
		return nil, errStoreDown
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.ChatMessage(nil), s.messages[sessionID]...), nil
}

func (s *memStore) IsChatEnabled(_ context.Context) (bool, error) {
	if s.failAll {
		return false, errStoreDown
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chatEnabled, nil
}

// putAgent seeds a presence record directly, bypassing the registry.
func (s *memStore) putAgent(agentID string, active bool, capacity int, heartbeat time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[agentID] = entity.ChatAgent{
		AgentID:    agentID,
		Active:     active,
		Concurrent: capacity,
		CreatedAt:  heartbeat,
		UpdatedAt:  heartbeat,
	}
}

// putSession seeds a session record directly, bypassing the manager.
func (s *memStore) putSession(sessionID, agentID, state string, createdAt time.Time, participants ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = &entity.ChatSession{
		SessionID:    sessionID,
		AgentID:      agentID,
		State:        state,
		Participants: participants,
		CreatedAt:    createdAt,
	}
}

// fakeTransport records deliveries per client and can be told to fail
// for specific clients.
type fakeTransport struct {
	mu        sync.Mutex
	delivered map[string][][]byte
	failFor   map[string]bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		delivered: make(map[string][][]byte),
		failFor:   make(map[string]bool),
	}
}

func (t *fakeTransport) Deliver(clientID string, payload []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failFor[clientID] {
		return errors.New("connection gone")
	}
	t.delivered[clientID] = append(t.delivered[clientID], payload)
	return nil
}

func (t *fakeTransport) deliveries(clientID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.delivered[clientID])
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
