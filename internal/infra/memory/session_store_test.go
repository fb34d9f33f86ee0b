package memory

import (
	"testing"

	"assessment-engine/internal/app"
	"assessment-engine/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()
	session := app.NewSession("s-1", domain.SessionConfig{Level: "L1", TotalTimeMinutes: 1}, nil)

	store.Put(session)
	got, ok := store.Get("s-1")
	if !ok || got != session {
		t.Fatalf("expected session present")
	}

	store.MarkFinished(session, domain.Result{SessionID: "s-1"})
	if _, ok := store.Get("s-1"); !ok {
		t.Fatalf("expected finished session still readable")
	}

	store.Delete("s-1")
	if _, ok := store.Get("s-1"); ok {
		t.Fatalf("expected session removed")
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}
