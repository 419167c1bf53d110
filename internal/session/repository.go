package session

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"fairway/internal/logging"
	"fairway/internal/types"

	_ "modernc.org/sqlite"
)

// PersistedSession is the durable slice of session state.
type PersistedSession struct {
	ID                 string
	RoundID            string
	Hole               int
	LastShot           string
	LastRecommendation string
}

// Repository persists conversational history. The engine only depends on
// these three operations plus History for rehydration; shot/pattern storage
// belongs to a different subsystem and is not reachable from here.
type Repository interface {
	GetSession(id string) (PersistedSession, error)
	SaveSession(s PersistedSession) error
	AddTurn(sessionID string, turnNumber int, turn Turn) error
	History(sessionID string, limit int) ([]Turn, error)
}

// SQLiteRepository implements Repository on a local sqlite database.
type SQLiteRepository struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteRepository opens (and migrates) the database at path.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session db: %w", err)
	}

	r := &SQLiteRepository{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Get(logging.CategorySession).Info("session repository opened at %s", path)
	return r, nil
}

func (r *SQLiteRepository) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			round_id TEXT NOT NULL DEFAULT '',
			hole INTEGER NOT NULL DEFAULT 0,
			last_shot TEXT NOT NULL DEFAULT '',
			last_recommendation TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS session_turns (
			session_id TEXT NOT NULL,
			turn_number INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			intent TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (session_id, turn_number)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_session_turns_session
			ON session_turns(session_id, turn_number)`,
	}
	for _, stmt := range schema {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// GetSession loads persisted state. A missing session returns a zero value
// with the requested id, not an error.
func (r *SQLiteRepository) GetSession(id string) (PersistedSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := PersistedSession{ID: id}
	err := r.db.QueryRow(
		`SELECT round_id, hole, last_shot, last_recommendation FROM sessions WHERE id = ?`, id,
	).Scan(&s.RoundID, &s.Hole, &s.LastShot, &s.LastRecommendation)
	if err == sql.ErrNoRows {
		return s, nil
	}
	return s, err
}

// SaveSession upserts session state.
func (r *SQLiteRepository) SaveSession(s PersistedSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, round_id, hole, last_shot, last_recommendation, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			round_id = excluded.round_id,
			hole = excluded.hole,
			last_shot = excluded.last_shot,
			last_recommendation = excluded.last_recommendation,
			updated_at = excluded.updated_at`,
		s.ID, s.RoundID, s.Hole, s.LastShot, s.LastRecommendation, time.Now().UTC(),
	)
	return err
}

// AddTurn records a turn. INSERT OR IGNORE keeps replays idempotent.
func (r *SQLiteRepository) AddTurn(sessionID string, turnNumber int, turn Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(
		`INSERT OR IGNORE INTO session_turns (session_id, turn_number, role, content, intent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, turnNumber, string(turn.Role), turn.Content, string(turn.Intent), turn.Timestamp.UTC(),
	)
	return err
}

// History returns the most recent turns, oldest first.
func (r *SQLiteRepository) History(sessionID string, limit int) ([]Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = DefaultHistoryCapacity
	}

	rows, err := r.db.Query(
		`SELECT role, content, intent, created_at FROM session_turns
		 WHERE session_id = ?
		 ORDER BY turn_number DESC
		 LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		var role, intent string
		if err := rows.Scan(&role, &t.Content, &intent, &t.Timestamp); err != nil {
			return nil, err
		}
		t.Role = Role(role)
		t.Intent = types.Intent(intent)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into oldest-first order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
