package chat_test

import (
	"context"
	"testing"
	"time"

	"github.com/pebosi/zammad/entity"
	"github.com/pebosi/zammad/internal/chat"
)

func newOracle(store *memStore) *chat.Oracle {
	registry := chat.NewRegistry(store, testLogger())
	seats := chat.NewAccountant(registry, store)
	return chat.NewOracle(store, registry, seats, 2*time.Minute)
}

func TestSystemStateDisabledWinsOverEverything(t *testing.T) {
	store := newMemStore()
	store.chatEnabled = false
	store.putAgent("a", true, 10, time.Now())
	oracle := newOracle(store)

	state, err := oracle.SystemState(context.Background())
	if err != nil {
		t.Fatalf("SystemState err: %v", err)
	}
	if state.State != chat.StateDisabled {
		t.Fatalf("unexpected state: got %s want %s", state.State, chat.StateDisabled)
	}
}

func TestSystemStateOfflineWithoutRecentHeartbeat(t *testing.T) {
	store := newMemStore()
	store.chatEnabled = true
	// capacity exists but the heartbeat is too old: indistinguishable
	// from no agent at all
	store.putAgent("a", true, 10, time.Now().Add(-5*time.Minute))
	oracle := newOracle(store)

	state, err := oracle.SystemState(context.Background())
	if err != nil {
		t.Fatalf("SystemState err: %v", err)
	}
	if state.State != chat.StateOffline {
		t.Fatalf("unexpected state: got %s want %s", state.State, chat.StateOffline)
	}
}

func TestSystemStateOnline(t *testing.T) {
	store := newMemStore()
	store.chatEnabled = true
	store.putAgent("a", true, 2, time.Now())
	store.putSession("s1", "a", entity.SessionStateRunning, time.Now())
	oracle := newOracle(store)

	state, err := oracle.SystemState(context.Background())
	if err != nil {
		t.Fatalf("SystemState err: %v", err)
	}
	if state.State != chat.StateOnline {
		t.Fatalf("unexpected state: got %s want %s", state.State, chat.StateOnline)
	}
}

func TestSystemStateNoSeatsAtFullCapacity(t *testing.T) {
	store := newMemStore()
	store.chatEnabled = true
	now := time.Now()
	store.putAgent("a", true, 2, now)
	store.putSession("s1", "a", entity.SessionStateRunning, now)
	store.putSession("s2", "a", entity.SessionStateRunning, now)
	oracle := newOracle(store)

	state, err := oracle.SystemState(context.Background())
	if err != nil {
		t.Fatalf("SystemState err: %v", err)
	}
	if state.State != chat.StateNoSeats {
		t.Fatalf("unexpected state: got %s want %s", state.State, chat.StateNoSeats)
	}
	if state.Queue != 0 {
		t.Fatalf("unexpected queue: got %d want 0", state.Queue)
	}
}

func TestSystemStateNoSeatsWhenOverCommitted(t *testing.T) {
	store := newMemStore()
	store.chatEnabled = true
	now := time.Now()
	store.putAgent("a", true, 1, now)
	store.putSession("s1", "a", entity.SessionStateRunning, now)
	store.putSession("s2", "", entity.SessionStateWaiting, now)
	oracle := newOracle(store)

	// available seats are negative here; that must still read as
	// no_seats_available with the queue clamped to zero, never online
	state, err := oracle.SystemState(context.Background())
	if err != nil {
		t.Fatalf("SystemState err: %v", err)
	}
	if state.State != chat.StateNoSeats {
		t.Fatalf("unexpected state: got %s want %s", state.State, chat.StateNoSeats)
	}
	if state.Queue != 0 {
		t.Fatalf("queue not clamped: got %d want 0", state.Queue)
	}
}

func TestSystemStatePropagatesStoreFailure(t *testing.T) {
	store := newMemStore()
	store.failAll = true
	oracle := newOracle(store)

	if _, err := oracle.SystemState(context.Background()); err == nil {
		t.Fatal("expected error from failing store")
	}
}
