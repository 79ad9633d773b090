/*
Package sqlite provides the SQLite-backed persistence layer.

PURPOSE:
  Stores two things, both outside the allocation engine itself:
  - distributions: saved allocation snapshots, one opaque JSON payload per
    saved week. The payload is written and read back verbatim; the store
    never interprets it.
  - employees: a registry of previously-seen employees with their latest
    role and resolved multiplier, keyed by name with most-recent-write-wins
    semantics. Purely informational; it never feeds back into allocation.

KEY TABLES:
  distributions:  id (UUID), week_date, total_tips, total_hours, payload
  employees:      name (PK), role, multiplier, last_seen

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  the writer. A sync.RWMutex serializes access on top of that.

USAGE:
  store, err := sqlite.New("./tips.db")   // ":memory:" for tests
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store implements distribution and employee persistence using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Saved allocation snapshots. The payload column is opaque JSON.
	CREATE TABLE IF NOT EXISTS distributions (
		id TEXT PRIMARY KEY,
		week_date TEXT NOT NULL,
		total_tips REAL NOT NULL,
		total_hours REAL NOT NULL,
		payload TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_distributions_created_at
		ON distributions(created_at DESC);

	-- Known-employee registry. Name is the natural key; the latest save
	-- wins for role and multiplier.
	CREATE TABLE IF NOT EXISTS employees (
		name TEXT PRIMARY KEY,
		role TEXT,
		multiplier REAL NOT NULL,
		last_seen TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_last_seen
		ON employees(last_seen DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DISTRIBUTIONS
// =============================================================================

// DistributionRecord is a stored allocation snapshot.
type DistributionRecord struct {
	ID         string
	WeekDate   time.Time
	TotalTips  float64
	TotalHours float64
	Payload    json.RawMessage
	CreatedAt  time.Time
}

// SaveDistribution persists a snapshot. Zero WeekDate/CreatedAt default to
// the current time.
func (s *Store) SaveDistribution(ctx context.Context, rec DistributionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if rec.WeekDate.IsZero() {
		rec.WeekDate = now
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO distributions (id, week_date, total_tips, total_hours, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.WeekDate.UTC().Format(time.RFC3339),
		rec.TotalTips,
		rec.TotalHours,
		string(rec.Payload),
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// ListDistributions returns saved snapshots, newest first.
func (s *Store) ListDistributions(ctx context.Context, limit int) ([]DistributionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, week_date, total_tips, total_hours, payload, created_at
		FROM distributions
		ORDER BY created_at DESC, id
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []DistributionRecord
	for rows.Next() {
		var rec DistributionRecord
		var weekDate, payload, createdAt string
		if err := rows.Scan(&rec.ID, &weekDate, &rec.TotalTips, &rec.TotalHours, &payload, &createdAt); err != nil {
			return nil, err
		}
		rec.WeekDate, _ = time.Parse(time.RFC3339, weekDate)
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		rec.Payload = json.RawMessage(payload)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteDistribution removes a snapshot. Returns false when no record
// with that id exists.
func (s *Store) DeleteDistribution(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM distributions WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// =============================================================================
// EMPLOYEE REGISTRY
// =============================================================================

// EmployeeRecord is a known employee with the role and resolved multiplier
// from their most recent save.
type EmployeeRecord struct {
	Name       string
	Role       string
	Multiplier float64
	LastSeen   time.Time
}

// UpsertEmployee inserts or refreshes a registry entry. The latest write
// wins for role and multiplier. Zero LastSeen defaults to now.
func (s *Store) UpsertEmployee(ctx context.Context, rec EmployeeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.LastSeen.IsZero() {
		rec.LastSeen = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (name, role, multiplier, last_seen)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			role = excluded.role,
			multiplier = excluded.multiplier,
			last_seen = excluded.last_seen`,
		rec.Name,
		nullString(rec.Role),
		rec.Multiplier,
		rec.LastSeen.UTC().Format(time.RFC3339),
	)
	return err
}

// ListEmployees returns known employees, most recently seen first.
func (s *Store) ListEmployees(ctx context.Context, limit int) ([]EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, role, multiplier, last_seen
		FROM employees
		ORDER BY last_seen DESC, name
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []EmployeeRecord
	for rows.Next() {
		var rec EmployeeRecord
		var role sql.NullString
		var lastSeen string
		if err := rows.Scan(&rec.Name, &role, &rec.Multiplier, &lastSeen); err != nil {
			return nil, err
		}
		rec.Role = role.String
		rec.LastSeen, _ = time.Parse(time.RFC3339, lastSeen)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Reset clears all data. Used by tests.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"distributions", "employees"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
