package chat_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pebosi/zammad/internal/chat"
)

func TestSetPresenceCreatesRecord(t *testing.T) {
	store := newMemStore()
	registry := chat.NewRegistry(store, testLogger())
	ctx := context.Background()

	agent, err := registry.SetPresence(ctx, "agent-1", true, 3)
	if err != nil {
		t.Fatalf("SetPresence err: %v", err)
	}
	if !agent.Active || agent.Concurrent != 3 {
		t.Fatalf("unexpected record: %+v", agent)
	}
}

func TestSetPresenceDoesNotTouchCapacity(t *testing.T) {
	store := newMemStore()
	registry := chat.NewRegistry(store, testLogger())
	ctx := context.Background()

	if _, err := registry.SetPresence(ctx, "agent-1", true, 3); err != nil {
		t.Fatalf("SetPresence err: %v", err)
	}
	agent, err := registry.SetPresence(ctx, "agent-1", false, 99)
	if err != nil {
		t.Fatalf("SetPresence err: %v", err)
	}
	if agent.Concurrent != 3 {
		t.Fatalf("bare presence toggle changed capacity: got %d want 3", agent.Concurrent)
	}
	if agent.Active {
		t.Fatal("active flag not updated")
	}
}

func TestCreateOrUpdateChangesCapacity(t *testing.T) {
	store := newMemStore()
	registry := chat.NewRegistry(store, testLogger())
	ctx := context.Background()

	if _, err := registry.SetPresence(ctx, "agent-1", true, 3); err != nil {
		t.Fatalf("SetPresence err: %v", err)
	}
	agent, err := registry.CreateOrUpdate(ctx, "agent-1", true, 5)
	if err != nil {
		t.Fatalf("CreateOrUpdate err: %v", err)
	}
	if agent.Concurrent != 5 {
		t.Fatalf("capacity not updated: got %d want 5", agent.Concurrent)
	}
}

func TestPresenceUpsertedNotDuplicated(t *testing.T) {
	store := newMemStore()
	registry := chat.NewRegistry(store, testLogger())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := registry.SetPresence(ctx, "agent-1", true, 2); err != nil {
			t.Fatalf("SetPresence err: %v", err)
		}
	}

	agents, err := registry.ListActive(ctx, time.Minute)
	if err != nil {
		t.Fatalf("ListActive err: %v", err)
	}
	if len(agents) != 1 {
		t.Fatalf("expected a single record, got %d", len(agents))
	}
}

func TestGetPresenceNotFoundIsDistinctFromInactive(t *testing.T) {
	store := newMemStore()
	registry := chat.NewRegistry(store, testLogger())
	ctx := context.Background()

	if _, err := registry.GetPresence(ctx, "ghost"); !errors.Is(err, chat.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := registry.SetPresence(ctx, "agent-1", false, 1); err != nil {
		t.Fatalf("SetPresence err: %v", err)
	}
	active, err := registry.GetPresence(ctx, "agent-1")
	if err != nil {
		t.Fatalf("GetPresence err: %v", err)
	}
	if active {
		t.Fatal("expected active=false")
	}
}

func TestListActiveWindow(t *testing.T) {
	store := newMemStore()
	registry := chat.NewRegistry(store, testLogger())
	ctx := context.Background()
	now := time.Now()

	store.putAgent("fresh", true, 2, now)
	store.putAgent("stale", true, 5, now.Add(-3*time.Minute))
	store.putAgent("inactive", false, 4, now)

	agents, err := registry.ListActive(ctx, 2*time.Minute)
	if err != nil {
		t.Fatalf("ListActive err: %v", err)
	}
	if len(agents) != 1 || agents[0].AgentID != "fresh" {
		t.Fatalf("unexpected active set: %+v", agents)
	}
}

func TestListActiveDefaultWindow(t *testing.T) {
	store := newMemStore()
	registry := chat.NewRegistry(store, testLogger())
	ctx := context.Background()
	now := time.Now()

	store.putAgent("recent", true, 1, now.Add(-time.Minute))
	store.putAgent("old", true, 1, now.Add(-150*time.Second))

	// zero window falls back to the 2-minute default
	agents, err := registry.ListActive(ctx, 0)
	if err != nil {
		t.Fatalf("ListActive err: %v", err)
	}
	if len(agents) != 1 || agents[0].AgentID != "recent" {
		t.Fatalf("unexpected active set: %+v", agents)
	}
}
