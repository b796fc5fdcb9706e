package session

import (
	"testing"
	"time"
)

func TestGetSeedsSystemPrompt(t *testing.T) {
	store := NewInMemoryStore("you are a bot")

	history := store.Get("s1")
	if len(history) != 1 {
		t.Fatalf("fresh session has %d messages", len(history))
	}
	if history[0].Role != "system" || history[0].Content != "you are a bot" {
		t.Fatalf("seed message = %+v", history[0])
	}
}

func TestAppendAndReplace(t *testing.T) {
	store := NewInMemoryStore("sys")
	store.Append("s1", "user", "hello")
	store.Append("s1", "assistant", "hi")
	store.Append("s1", "user", "") // dropped

	history := store.Get("s1")
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}

	store.Replace("s1", history[:1])
	if got := store.Get("s1"); len(got) != 1 {
		t.Fatalf("after replace, history length = %d", len(got))
	}
}

func TestGetReturnsCopy(t *testing.T) {
	store := NewInMemoryStore("sys")
	store.Append("s1", "user", "hello")

	history := store.Get("s1")
	history[0].Content = "mutated"

	if store.Get("s1")[0].Content != "sys" {
		t.Fatal("caller mutation leaked into the store")
	}
}

func TestResetIsIdempotent(t *testing.T) {
	store := NewInMemoryStore("sys")

	store.Reset("ghost")
	store.Reset("ghost")

	store.Append("s1", "user", "hello")
	store.Reset("s1")
	store.Reset("s1")

	history := store.Get("s1")
	if len(history) != 1 || history[0].Role != "system" {
		t.Fatalf("reset session not reseeded: %+v", history)
	}
}

func TestPrune(t *testing.T) {
	store := NewInMemoryStore("sys")
	store.Append("old", "user", "hello")
	store.Append("fresh", "user", "hello")

	store.mu.Lock()
	store.sessions["old"].lastSeen = time.Now().Add(-2 * time.Hour)
	store.mu.Unlock()

	if removed := store.Prune(time.Hour); removed != 1 {
		t.Fatalf("Prune removed %d sessions, want 1", removed)
	}
	if store.Len() != 1 {
		t.Fatalf("store has %d sessions after prune", store.Len())
	}
}
