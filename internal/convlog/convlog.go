// Package convlog records conversation turns in a SQLite database.
package convlog

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// Turn is one user line and the agent's reply.
type Turn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	User      string    `json:"user"`
	Reply     string    `json:"reply"`
	CreatedAt time.Time `json:"created_at"`
}

// ListParams holds parameters for listing turns.
type ListParams struct {
	SessionID string
	Day       string // YYYY-MM-DD, UTC
	Limit     int
}

// DayCount is the number of turns recorded on a day.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// Log is a SQLite-backed conversation log.
type Log struct {
	db *sql.DB

	mu      sync.Mutex // guards entropy
	entropy io.Reader
	now     func() time.Time
}

// Open opens or creates a conversation log at the given path.
func Open(dbPath string) (*Log, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	l := &Log{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		now:     time.Now,
	}

	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return l, nil
}

func (l *Log) newID(t time.Time) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), l.entropy).String()
}

func (l *Log) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS turns (
		id          TEXT PRIMARY KEY,
		session_id  TEXT NOT NULL,
		user_text   TEXT NOT NULL,
		reply       TEXT NOT NULL,
		day         TEXT NOT NULL,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id);
	CREATE INDEX IF NOT EXISTS idx_turns_day ON turns(day);
	CREATE INDEX IF NOT EXISTS idx_turns_created ON turns(created_at DESC);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Record stores a turn. ID and CreatedAt are assigned here.
func (l *Log) Record(ctx context.Context, t Turn) (*Turn, error) {
	now := l.now().UTC()
	t.ID = l.newID(now)
	t.CreatedAt = now.Truncate(time.Second)

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO turns (id, session_id, user_text, reply, day, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.SessionID, t.User, t.Reply, now.Format(time.DateOnly), now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert turn: %w", err)
	}
	return &t, nil
}

// List returns turns newest first.
func (l *Log) List(ctx context.Context, p ListParams) ([]Turn, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"1 = 1"}
	var args []interface{}
	if p.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, p.SessionID)
	}
	if p.Day != "" {
		where = append(where, "day = ?")
		args = append(args, p.Day)
	}

	query := fmt.Sprintf(`
		SELECT id, session_id, user_text, reply, created_at
		FROM turns WHERE %s
		ORDER BY id DESC
		LIMIT ?`, strings.Join(where, " AND "))
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		var createdAt string
		if err := rows.Scan(&t.ID, &t.SessionID, &t.User, &t.Reply, &createdAt); err != nil {
			return nil, err
		}
		created, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("turn %s: parse created_at: %w", t.ID, err)
		}
		t.CreatedAt = created
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// Days returns the number of turns per day, newest day first.
func (l *Log) Days(ctx context.Context) ([]DayCount, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT day, COUNT(*) FROM turns GROUP BY day ORDER BY day DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []DayCount
	for rows.Next() {
		var d DayCount
		if err := rows.Scan(&d.Day, &d.Count); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// Close closes the log.
func (l *Log) Close() error {
	return l.db.Close()
}
