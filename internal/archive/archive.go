// Package archive moves approved tasks out of the live JSON document
// into a sqlite database next to it. The live graph stays small and
// fast to load; completed history remains queryable.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/taskloom/taskloom/internal/task"
)

// DefaultFileName is the archive database inside a project directory.
const DefaultFileName = "archive.db"

const schema = `
CREATE TABLE IF NOT EXISTS archived_tasks (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	status       TEXT NOT NULL,
	priority     TEXT NOT NULL,
	completed_at TEXT,
	archived_at  TEXT NOT NULL,
	payload      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_archived_at ON archived_tasks(archived_at);
`

// Archive is a handle on the project's archive database.
type Archive struct {
	db *sql.DB
}

// Record is one archived task row. Payload holds the full task as
// JSON; the remaining columns exist for listing without decoding.
type Record struct {
	ID          string
	Title       string
	Status      task.Status
	Priority    task.Priority
	CompletedAt *time.Time
	ArchivedAt  time.Time
}

// Open opens (creating if needed) the archive database at path.
func Open(ctx context.Context, path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init archive %s: %w", path, err)
	}
	return &Archive{db: db}, nil
}

// Close releases the database handle.
func (a *Archive) Close() error { return a.db.Close() }

// Store inserts tasks into the archive. An id already present is
// overwritten; archiving is idempotent per task.
func (a *Archive) Store(ctx context.Context, tasks []*task.Task) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO archived_tasks
			(id, title, status, priority, completed_at, archived_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, t := range tasks {
		payload, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("archive %s: %w", t.ID, err)
		}
		var completed any
		if t.CompletedAt != nil {
			completed = t.CompletedAt.UTC().Format(time.RFC3339)
		}
		if _, err := stmt.ExecContext(ctx, t.ID, t.Title, string(t.Status), string(t.Priority), completed, now, string(payload)); err != nil {
			return fmt.Errorf("archive %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

// List returns archive rows newest-first, without decoding payloads.
// limit <= 0 means no limit.
func (a *Archive) List(ctx context.Context, limit int) ([]Record, error) {
	q := `SELECT id, title, status, priority, completed_at, archived_at
	      FROM archived_tasks ORDER BY archived_at DESC, id`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := a.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("archive list: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var status, priority, archivedAt string
		var completedAt sql.NullString
		if err := rows.Scan(&r.ID, &r.Title, &status, &priority, &completedAt, &archivedAt); err != nil {
			return nil, fmt.Errorf("archive list: %w", err)
		}
		r.Status = task.Status(status)
		r.Priority = task.Priority(priority)
		if ts, err := time.Parse(time.RFC3339, archivedAt); err == nil {
			r.ArchivedAt = ts
		}
		if completedAt.Valid {
			if ts, err := time.Parse(time.RFC3339, completedAt.String); err == nil {
				r.CompletedAt = &ts
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get decodes the full archived task for id.
func (a *Archive) Get(ctx context.Context, id string) (*task.Task, error) {
	var payload string
	err := a.db.QueryRowContext(ctx,
		`SELECT payload FROM archived_tasks WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("archive: task %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("archive get %s: %w", id, err)
	}
	var t task.Task
	if err := json.Unmarshal([]byte(payload), &t); err != nil {
		return nil, fmt.Errorf("archive get %s: %w", id, err)
	}
	return &t, nil
}
