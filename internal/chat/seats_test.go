package chat_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pebosi/zammad/entity"
	"github.com/pebosi/zammad/internal/chat"
)

func newAccountant(store *memStore) *chat.Accountant {
	registry := chat.NewRegistry(store, testLogger())
	return chat.NewAccountant(registry, store)
}

func TestTotalSeatsSumsOnlyAgentsInWindow(t *testing.T) {
	store := newMemStore()
	seats := newAccountant(store)
	ctx := context.Background()
	now := time.Now()

	store.putAgent("a", true, 2, now)
	store.putAgent("b", true, 3, now)
	store.putAgent("stale", true, 5, now.Add(-10*time.Minute))
	store.putAgent("inactive", false, 7, now)

	total, err := seats.TotalSeats(ctx, 2*time.Minute)
	if err != nil {
		t.Fatalf("TotalSeats err: %v", err)
	}
	if total != 5 {
		t.Fatalf("unexpected total: got %d want 5", total)
	}
}

func TestActiveChatCountIncludesWaitingAndRunning(t *testing.T) {
	store := newMemStore()
	seats := newAccountant(store)
	ctx := context.Background()
	now := time.Now()

	store.putSession("s1", "", entity.SessionStateWaiting, now)
	store.putSession("s2", "a", entity.SessionStateRunning, now)
	store.putSession("s3", "a", entity.SessionStateClosed, now)

	count, err := seats.ActiveChatCount(ctx)
	if err != nil {
		t.Fatalf("ActiveChatCount err: %v", err)
	}
	if count != 2 {
		t.Fatalf("unexpected count: got %d want 2", count)
	}

	forAgent, err := seats.ActiveChatCountForAgent(ctx, "a")
	if err != nil {
		t.Fatalf("ActiveChatCountForAgent err: %v", err)
	}
	if forAgent != 1 {
		t.Fatalf("unexpected per-agent count: got %d want 1", forAgent)
	}
}

func TestAvailableSeatsCanGoNegative(t *testing.T) {
	store := newMemStore()
	seats := newAccountant(store)
	ctx := context.Background()
	now := time.Now()

	store.putAgent("a", true, 2, now)
	store.putSession("s1", "a", entity.SessionStateRunning, now)
	store.putSession("s2", "a", entity.SessionStateRunning, now)
	store.putSession("s3", "", entity.SessionStateWaiting, now)

	available, err := seats.AvailableSeats(ctx, 2*time.Minute)
	if err != nil {
		t.Fatalf("AvailableSeats err: %v", err)
	}
	if available != -1 {
		t.Fatalf("unexpected available seats: got %d want -1", available)
	}
}

func TestAgentAvailableSeats(t *testing.T) {
	store := newMemStore()
	seats := newAccountant(store)
	ctx := context.Background()
	now := time.Now()

	store.putAgent("a", true, 2, now)
	store.putSession("s1", "a", entity.SessionStateRunning, now)

	available, err := seats.AgentAvailableSeats(ctx, "a")
	if err != nil {
		t.Fatalf("AgentAvailableSeats err: %v", err)
	}
	if available != 1 {
		t.Fatalf("unexpected agent seats: got %d want 1", available)
	}
}

func TestAgentAvailableSeatsUnknownAgent(t *testing.T) {
	store := newMemStore()
	seats := newAccountant(store)

	if _, err := seats.AgentAvailableSeats(context.Background(), "ghost"); !errors.Is(err, chat.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
