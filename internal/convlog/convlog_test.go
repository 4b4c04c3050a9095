package convlog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	dir := t.TempDir()
	l, err := Open(filepath.Join(dir, "conversations.db"))
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	l := newTestLog(t)

	first, err := l.Record(ctx, Turn{SessionID: "s1", User: "안녕", Reply: "안녕 Abu!"})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if first.ID == "" {
		t.Error("expected non-empty ID")
	}
	if first.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
	time.Sleep(2 * time.Millisecond)
	l.Record(ctx, Turn{SessionID: "s1", User: "second", Reply: "ok"})

	turns, err := l.List(ctx, ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].User != "second" {
		t.Errorf("expected newest first, got %q", turns[0].User)
	}
	if turns[1].Reply != "안녕 Abu!" {
		t.Errorf("unexpected reply %q", turns[1].Reply)
	}
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	l := newTestLog(t)

	l.now = func() time.Time { return time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC) }
	l.Record(ctx, Turn{SessionID: "a", User: "1", Reply: "1"})
	l.now = func() time.Time { return time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC) }
	l.Record(ctx, Turn{SessionID: "b", User: "2", Reply: "2"})
	l.Record(ctx, Turn{SessionID: "b", User: "3", Reply: "3"})

	bySession, _ := l.List(ctx, ListParams{SessionID: "b"})
	if len(bySession) != 2 {
		t.Errorf("expected 2 turns for session b, got %d", len(bySession))
	}

	byDay, _ := l.List(ctx, ListParams{Day: "2025-01-01"})
	if len(byDay) != 1 || byDay[0].User != "1" {
		t.Errorf("expected one turn on 2025-01-01, got %+v", byDay)
	}

	limited, _ := l.List(ctx, ListParams{Limit: 1})
	if len(limited) != 1 {
		t.Errorf("expected limit 1, got %d", len(limited))
	}
}

func TestDays(t *testing.T) {
	ctx := context.Background()
	l := newTestLog(t)

	l.now = func() time.Time { return time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC) }
	l.Record(ctx, Turn{SessionID: "s", User: "x", Reply: "y"})
	l.now = func() time.Time { return time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC) }
	l.Record(ctx, Turn{SessionID: "s", User: "x", Reply: "y"})
	l.Record(ctx, Turn{SessionID: "s", User: "x", Reply: "y"})

	days, err := l.Days(ctx)
	if err != nil {
		t.Fatalf("days: %v", err)
	}
	if len(days) != 2 || days[0].Day != "2025-02-03" || days[0].Count != 2 {
		t.Errorf("unexpected days %+v", days)
	}
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "conversations.db")
	l, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	l.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}

func TestListRejectsBadTimestamp(t *testing.T) {
	ctx := context.Background()
	l := newTestLog(t)

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO turns (id, session_id, user_text, reply, day, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		"01BADTURN", "s1", "hi", "hello", "2025-01-01", "not a time")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := l.List(ctx, ListParams{}); err == nil {
		t.Error("expected an error for an unparseable created_at")
	}
}
