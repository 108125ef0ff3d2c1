package docstore

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_SetGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.Set(ctx, "profiles", "p1", map[string]any{"name": "Alice", "age": 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc, err := store.Get(ctx, "profiles", "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Fields["name"] != "Alice" {
		t.Fatalf("unexpected fields: %v", doc.Fields)
	}

	_, err = store.Get(ctx, "profiles", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.Set(ctx, "profiles", "p1", map[string]any{"name": "Alice"})

	doc, _ := store.Get(ctx, "profiles", "p1")
	doc.Fields["name"] = "Mallory"

	again, _ := store.Get(ctx, "profiles", "p1")
	if again.Fields["name"] != "Alice" {
		t.Fatal("mutating a returned document must not affect the store")
	}
}

func TestMemoryStore_Update_NestedPathCreatesMaps(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.Set(ctx, "chats", "c1", map[string]any{"name": "group"})

	err := store.Update(ctx, "chats", "c1", []Update{
		SetField(2, "unreadCount", "user-1"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	docs, err := store.Query(ctx, "chats", Eq("unreadCount.user-1", 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected nested update to be queryable, got %d docs", len(docs))
	}
}

func TestMemoryStore_Update_MissingDoc(t *testing.T) {
	store := NewMemoryStore()

	err := store.Update(context.Background(), "chats", "missing", []Update{SetField("x", "name")})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_Update_InvalidPath(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.Set(ctx, "chats", "c1", map[string]any{})

	err := store.Update(ctx, "chats", "c1", []Update{SetField("x", "a.b")})
	if err == nil {
		t.Fatal("expected error for dotted segment")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.Set(ctx, "profiles", "p1", map[string]any{"name": "Alice"})

	if err := store.Delete(ctx, "profiles", "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Get(ctx, "profiles", "p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, "profiles", "p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestMemoryStore_Query_Filters(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.Set(ctx, "requests", "r1", map[string]any{"toUserId": "u1", "status": "pending"})
	_ = store.Set(ctx, "requests", "r2", map[string]any{"toUserId": "u1", "status": "accepted"})
	_ = store.Set(ctx, "requests", "r3", map[string]any{"toUserId": "u2", "status": "pending"})

	docs, err := store.Query(ctx, "requests", Eq("toUserId", "u1"), Eq("status", "pending"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "r1" {
		t.Fatalf("unexpected result: %+v", docs)
	}

	docs, _ = store.Query(ctx, "requests", In("toUserId", []string{"u1", "u2"}), Eq("status", "pending"))
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(docs))
	}

	docs, _ = store.Query(ctx, "empty")
	if len(docs) != 0 {
		t.Fatalf("expected no docs for unknown collection, got %d", len(docs))
	}
}

func TestMemoryStore_Subscribe(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var changes []Change
	sub, err := store.Subscribe(ctx, "chats", []Filter{Eq("memberKeys.u1", true)}, func(c Change) {
		changes = append(changes, c)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Matching write is delivered.
	_ = store.Set(ctx, "chats", "c1", map[string]any{"memberKeys": map[string]any{"u1": true}})
	// Non-matching write is filtered out.
	_ = store.Set(ctx, "chats", "c2", map[string]any{"memberKeys": map[string]any{"u2": true}})
	// Update of the matching doc is delivered as a modification.
	_ = store.Update(ctx, "chats", "c1", []Update{SetField("hello", "lastMessage")})

	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}
	if changes[0].Kind != ChangeAdded || changes[0].Doc.ID != "c1" {
		t.Fatalf("unexpected first change: %+v", changes[0])
	}
	if changes[1].Kind != ChangeModified {
		t.Fatalf("unexpected second change: %+v", changes[1])
	}

	// After Close the handler must never fire again.
	if err := sub.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = store.Update(ctx, "chats", "c1", []Update{SetField("bye", "lastMessage")})
	if len(changes) != 2 {
		t.Fatalf("expected no changes after close, got %d", len(changes))
	}
}

func TestMemoryStore_Batch_StopsAtFirstFailure(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.Batch(ctx, []Write{
		{Op: WriteSet, Collection: "friends", ID: "a:b", Fields: map[string]any{"ownerId": "a"}},
		{Op: WriteUpdate, Collection: "friends", ID: "missing", Updates: []Update{SetField("x", "nickname")}},
		{Op: WriteSet, Collection: "friends", ID: "b:a", Fields: map[string]any{"ownerId": "b"}},
	})
	if err == nil {
		t.Fatal("expected batch error")
	}

	// The first write stuck, the one after the failure never ran.
	if _, err := store.Get(ctx, "friends", "a:b"); err != nil {
		t.Fatalf("expected first write applied, got %v", err)
	}
	if _, err := store.Get(ctx, "friends", "b:a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected third write skipped, got %v", err)
	}
}
