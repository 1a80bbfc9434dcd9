// Package db provides the SQLite ticket cache for notionqueue.
//
// Every successful sync mirrors the full normalized ticket set here so
// stats and listings can be answered offline. The remote store stays the
// system of record; the cache is rebuilt wholesale on each sync.
package db

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/daviddao/notionqueue/internal/types"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection for cache operations.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens (or creates) a ticket cache at the given path.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec(Schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &DB{conn: conn, path: dbPath}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.conn != nil {
		return d.conn.Close()
	}
	return nil
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

// GenID generates a random 16-character hex ID.
func GenID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// FindProjectRoot walks up from dir looking for a .git directory.
func FindProjectRoot(dir string) string {
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// --- Ticket operations ---

// ReplaceTickets makes the cache hold exactly ts, in order, and records
// a sync run. It runs in a single transaction.
func (d *DB) ReplaceTickets(ts []types.Ticket, queued int, syncedAt string) (err error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec("DELETE FROM tickets"); err != nil {
		return fmt.Errorf("clear tickets: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO tickets
			(id, position, title, summary, status, area, app, type, priority,
			 blocked_by, blocks, branch, commit_sha, feature, link, resolved_at,
			 assignees, created_time, last_edited_time, eligible, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET position = excluded.position`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range ts {
		eligible := 0
		if t.Eligible {
			eligible = 1
		}
		if _, err = stmt.Exec(
			t.ID, i, t.Title, nullStr(t.Summary), t.Status, nullStr(t.Area), nullStr(t.App),
			nullStr(t.Type), nullStr(t.Priority), encodeIDs(t.BlockedBy), encodeIDs(t.Blocks),
			nullStr(t.Branch), nullStr(t.Commit), nullStr(t.Feature), nullStr(t.Link),
			nullStr(t.ResolvedAt), encodeIDs(t.Assignees), nullStr(t.CreatedTime),
			nullStr(t.LastEditedTime), eligible, syncedAt,
		); err != nil {
			return fmt.Errorf("insert ticket %s: %w", t.ID, err)
		}
	}

	if _, err = tx.Exec(
		"INSERT INTO sync_runs (id, synced_at, fetched, queued) VALUES (?, ?, ?, ?)",
		GenID(), syncedAt, len(ts), queued,
	); err != nil {
		return fmt.Errorf("record sync run: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Query narrows Tickets. Empty fields match everything.
type Query struct {
	Status string
	App    string
	Area   string
	Limit  int
}

// Tickets returns cached tickets in the order of the last sync.
func (d *DB) Tickets(q Query) ([]types.Ticket, error) {
	query := `
		SELECT id, title, summary, status, area, app, type, priority,
		       blocked_by, blocks, branch, commit_sha, feature, link, resolved_at,
		       assignees, created_time, last_edited_time, eligible
		FROM tickets`

	var conditions []string
	args := []any{}

	if q.Status != "" {
		conditions = append(conditions, `status = ?`)
		args = append(args, q.Status)
	}
	if q.App != "" {
		conditions = append(conditions, `app = ?`)
		args = append(args, q.App)
	}
	if q.Area != "" {
		conditions = append(conditions, `area = ?`)
		args = append(args, q.Area)
	}

	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY position ASC`
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows *sql.Rows) ([]types.Ticket, error) {
	var result []types.Ticket
	for rows.Next() {
		var t types.Ticket
		var summary, area, app, typ, priority, branch, commit, feature, link, resolved, created, edited sql.NullString
		var blockedBy, blocks, assignees string
		var eligible int
		if err := rows.Scan(
			&t.ID, &t.Title, &summary, &t.Status, &area, &app, &typ, &priority,
			&blockedBy, &blocks, &branch, &commit, &feature, &link, &resolved,
			&assignees, &created, &edited, &eligible,
		); err != nil {
			return nil, err
		}
		t.Summary = summary.String
		t.Area = area.String
		t.App = app.String
		t.Type = typ.String
		t.Priority = priority.String
		t.Branch = branch.String
		t.Commit = commit.String
		t.Feature = feature.String
		t.Link = link.String
		t.ResolvedAt = resolved.String
		t.CreatedTime = created.String
		t.LastEditedTime = edited.String
		t.BlockedBy = decodeIDs(blockedBy)
		t.Blocks = decodeIDs(blocks)
		t.Assignees = decodeIDs(assignees)
		t.Eligible = eligible == 1
		result = append(result, t)
	}
	return result, rows.Err()
}

// TicketCount returns the number of cached tickets.
func (d *DB) TicketCount() int {
	var n int
	d.conn.QueryRow("SELECT COUNT(*) FROM tickets").Scan(&n)
	return n
}

// CountByStatus returns ticket counts grouped by status.
func (d *DB) CountByStatus() (map[string]int, error) {
	return d.countBy("status")
}

// CountByPriority returns ticket counts grouped by priority. Tickets
// without one are counted under the lowest priority.
func (d *DB) CountByPriority() (map[string]int, error) {
	return d.countBy("COALESCE(priority, '" + types.PriorityLowest + "')")
}

func (d *DB) countBy(expr string) (map[string]int, error) {
	rows, err := d.conn.Query("SELECT " + expr + ", COUNT(*) FROM tickets GROUP BY 1")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

// LastSync returns the timestamp of the most recent sync run, or "".
func (d *DB) LastSync() string {
	var t sql.NullString
	d.conn.QueryRow("SELECT MAX(synced_at) FROM sync_runs").Scan(&t)
	if t.Valid {
		return t.String
	}
	return ""
}

// SyncRunCount returns the number of recorded sync runs.
func (d *DB) SyncRunCount() int {
	var n int
	d.conn.QueryRow("SELECT COUNT(*) FROM sync_runs").Scan(&n)
	return n
}

// --- Helpers ---

// nullStr returns nil for empty strings (SQL NULL), otherwise the string.
func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func encodeIDs(ids []string) string {
	if len(ids) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(ids)
	return string(b)
}

func decodeIDs(s string) []string {
	ids := []string{}
	json.Unmarshal([]byte(s), &ids)
	if ids == nil {
		return []string{}
	}
	return ids
}
