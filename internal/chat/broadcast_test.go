package chat_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pebosi/zammad/entity"
	"github.com/pebosi/zammad/internal/chat"
)

func TestBroadcastExcludesSender(t *testing.T) {
	store := newMemStore()
	transport := newFakeTransport()
	manager := newManager(store)
	router := chat.NewRouter(manager, transport, testLogger())
	ctx := context.Background()

	store.putSession("s1", "a", entity.SessionStateRunning, time.Now(), "sender", "c2", "c3")

	if err := router.Broadcast(ctx, "s1", []byte("hello"), "sender"); err != nil {
		t.Fatalf("Broadcast err: %v", err)
	}

	if transport.deliveries("sender") != 0 {
		t.Fatal("sender received its own message")
	}
	if transport.deliveries("c2") != 1 || transport.deliveries("c3") != 1 {
		t.Fatalf("expected one delivery each: c2=%d c3=%d",
			transport.deliveries("c2"), transport.deliveries("c3"))
	}
}

func TestBroadcastPartialFailureStillDeliversToOthers(t *testing.T) {
	store := newMemStore()
	transport := newFakeTransport()
	manager := newManager(store)
	router := chat.NewRouter(manager, transport, testLogger())
	ctx := context.Background()

	store.putSession("s1", "a", entity.SessionStateRunning, time.Now(), "sender", "gone", "c3")
	transport.failFor["gone"] = true

	err := router.Broadcast(ctx, "s1", []byte("hello"), "sender")

	var partial *chat.PartialFailureError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialFailureError, got %v", err)
	}
	if len(partial.Failed) != 1 || partial.Failed[0] != "gone" {
		t.Fatalf("unexpected failed set: %v", partial.Failed)
	}
	if transport.deliveries("c3") != 1 {
		t.Fatal("failure for one participant aborted delivery to the others")
	}
}

func TestBroadcastUnknownSession(t *testing.T) {
	store := newMemStore()
	transport := newFakeTransport()
	manager := newManager(store)
	router := chat.NewRouter(manager, transport, testLogger())

	if err := router.Broadcast(context.Background(), "missing", []byte("x"), ""); !errors.Is(err, chat.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
