package conversations

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/aschepis/backscratcher/companion/migrations"
)

func openTestStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := migrations.RunMigrations(db, zerolog.Nop()); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	return NewStore(db), db
}

func mustExec(t *testing.T, db *sql.DB, query sq.Sqlizer) {
	t.Helper()
	queryStr, args, err := query.ToSql()
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	if _, err := db.Exec(queryStr, args...); err != nil {
		t.Fatalf("exec %s: %v", queryStr, err)
	}
}

func TestThreadExists(t *testing.T) {
	store, db := openTestStore(t)
	mustExec(t, db, sq.Insert("threads").Columns("id", "name", "created_at").Values("t1", "Chat", 0))

	ctx := context.Background()
	exists, err := store.ThreadExists(ctx, "t1")
	if err != nil || !exists {
		t.Errorf("Expected thread t1 to exist, got %v, %v", exists, err)
	}
	exists, err = store.ThreadExists(ctx, "t2")
	if err != nil || exists {
		t.Errorf("Expected thread t2 not to exist, got %v, %v", exists, err)
	}
}

func TestRecentMessages(t *testing.T) {
	store, db := openTestStore(t)
	hilda := uuid.New()

	mustExec(t, db, sq.Insert("threads").Columns("id", "name", "created_at").Values("t1", "Chat", 0).Values("other", nil, 0))
	mustExec(t, db, sq.Insert("users").Columns("id", "name").Values(hilda.String(), "Hilda"))
	mustExec(t, db, sq.Insert("messages").
		Columns("id", "thread_id", "user_id", "content", "created_at").
		Values("m1", "t1", hilda.String(), "hi", 100).
		Values("m2", "t1", uuid.Nil.String(), "hello Hilda", 200).
		Values("m3", "t1", nil, "Hilda joined", 300).
		Values("m4", "other", hilda.String(), "elsewhere", 400))

	items, err := store.RecentMessages(context.Background(), "t1", 0)
	if err != nil {
		t.Fatalf("RecentMessages returned error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}

	if !items[0].IsEvent() || items[0].Content != "Hilda joined" || items[0].UserName != "" {
		t.Errorf("Expected newest item to be the event, got %+v", items[0])
	}
	if !items[1].IsOwnMessage() || items[1].UserName != "companion" {
		t.Errorf("Expected companion message second, got %+v", items[1])
	}
	if items[2].IsOwnMessage() || items[2].IsEvent() || items[2].UserName != "Hilda" {
		t.Errorf("Expected Hilda's message last, got %+v", items[2])
	}
	if !items[2].CreatedAt.Equal(time.Unix(100, 0)) {
		t.Errorf("Unexpected created_at %v", items[2].CreatedAt)
	}

	limited, err := store.RecentMessages(context.Background(), "t1", 2)
	if err != nil {
		t.Fatalf("RecentMessages returned error: %v", err)
	}
	if len(limited) != 2 || limited[1].Content != "hello Hilda" {
		t.Errorf("Expected the 2 newest items, got %+v", limited)
	}
}

func TestRecentMessagesInvalidUserID(t *testing.T) {
	store, db := openTestStore(t)
	mustExec(t, db, sq.Insert("threads").Columns("id", "name", "created_at").Values("t1", "Chat", 0))
	mustExec(t, db, sq.Insert("users").Columns("id", "name").Values("not-a-uuid", "Broken"))
	mustExec(t, db, sq.Insert("messages").
		Columns("id", "thread_id", "user_id", "content", "created_at").
		Values("m1", "t1", "not-a-uuid", "hi", 100))

	if _, err := store.RecentMessages(context.Background(), "t1", 0); err == nil {
		t.Error("Expected error for invalid user id")
	}
}
