package wizard

import (
	"sync"
	"testing"
	"time"
)

func TestStoreStartOverwrites(t *testing.T) {
	store := NewStore(0)

	h := store.Acquire(1)
	sess := h.Start()
	sess.Style = "bottts"
	sess.Stage = StageAwaitingFormat
	h.Release()

	h = store.Acquire(1)
	if got := h.Session(); got == nil || got.Style != "bottts" {
		t.Fatalf("session = %+v, want preserved style", got)
	}
	fresh := h.Start()
	if fresh.Style != "" || fresh.Stage != StageNone {
		t.Fatalf("Start did not reset: %+v", fresh)
	}
	h.Release()
}

func TestStorePeekDoesNotCreate(t *testing.T) {
	store := NewStore(0)

	if _, ok := store.Peek(7); ok {
		t.Fatal("Peek reported a session for an unknown chat")
	}
	if store.Len() != 0 {
		t.Fatalf("Peek created a slot, len = %d", store.Len())
	}
}

func TestStoreDiscardRemovesSlot(t *testing.T) {
	store := NewStore(0)

	h := store.Acquire(3)
	h.Start()
	h.Release()

	h = store.Acquire(3)
	h.Discard()
	h.Release()

	if _, ok := store.Peek(3); ok {
		t.Fatal("discarded session still visible")
	}
	if store.Len() != 0 {
		t.Fatalf("empty slot retained, len = %d", store.Len())
	}
}

func TestStorePerChatExclusion(t *testing.T) {
	store := NewStore(0)
	const chatID = int64(9)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := store.Acquire(chatID)
			sess := h.Session()
			if sess == nil {
				sess = h.Start()
			}
			// Unsynchronized read-modify-write; exclusive handles make it safe.
			sess.Seed = sess.Seed + "x"
			h.Release()
		}()
	}
	wg.Wait()

	sess, ok := store.Peek(chatID)
	if !ok || len(sess.Seed) != 50 {
		t.Fatalf("seed length = %d, want 50", len(sess.Seed))
	}
}

func TestSweepDropsIdleSessions(t *testing.T) {
	store := NewStore(time.Minute)

	h := store.Acquire(5)
	h.Start()
	h.Release()

	if removed := store.sweep(time.Now()); removed != 0 {
		t.Fatalf("fresh session swept, removed = %d", removed)
	}
	if removed := store.sweep(time.Now().Add(2 * time.Minute)); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, ok := store.Peek(5); ok {
		t.Fatal("expired session still visible")
	}
}

func TestSweepSkipsHeldSlots(t *testing.T) {
	store := NewStore(time.Minute)

	h := store.Acquire(6)
	h.Start()

	if removed := store.sweep(time.Now().Add(time.Hour)); removed != 0 {
		t.Fatalf("held slot swept, removed = %d", removed)
	}
	h.Release()

	if removed := store.sweep(time.Now().Add(time.Hour)); removed != 1 {
		t.Fatalf("removed = %d, want 1 after release", removed)
	}
}

func TestAcquireAfterSweepStartsFresh(t *testing.T) {
	store := NewStore(time.Minute)

	h := store.Acquire(8)
	h.Start().Style = "bottts"
	h.Release()

	store.sweep(time.Now().Add(time.Hour))

	h = store.Acquire(8)
	defer h.Release()
	if h.Session() != nil {
		t.Fatal("expected no session after expiry")
	}
}
