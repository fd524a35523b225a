// Package sqlite archives finished games and match scores in an embedded
// SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yourusername/bgrules/internal/storage/sqlite/migrations"
	"github.com/yourusername/bgrules/pkg/match"
)

const timeFormat = time.RFC3339Nano

// ErrNotFound is returned when a session has no archived data.
var ErrNotFound = errors.New("not found")

// Store is a SQLite-backed game archive.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (creating if needed) the archive at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// runMigrations executes every embedded .sql file in name order. The
// schema uses IF NOT EXISTS so reruns are harmless.
func (s *Store) runMigrations() error {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		content, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.sqlDB.Exec(string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

// SaveGame stores or replaces one game of a session.
func (s *Store) SaveGame(ctx context.Context, sessionID string, rec match.GameRecord) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	actions, err := json.Marshal(rec.Actions)
	if err != nil {
		return fmt.Errorf("encode actions: %w", err)
	}
	var result sql.NullString
	if rec.Result != nil {
		b, err := json.Marshal(rec.Result)
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		result = sql.NullString{String: string(b), Valid: true}
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO games (session_id, number, white_score, black_score, crawford, actions, result, saved_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (session_id, number) DO UPDATE SET
    white_score = excluded.white_score,
    black_score = excluded.black_score,
    crawford    = excluded.crawford,
    actions     = excluded.actions,
    result      = excluded.result,
    saved_at    = excluded.saved_at`,
		sessionID, rec.Number, rec.Score[0], rec.Score[1], boolInt(rec.Crawford),
		string(actions), result, time.Now().UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("save game %s/%d: %w", sessionID, rec.Number, err)
	}
	return nil
}

// Games returns a session's games in order.
func (s *Store) Games(ctx context.Context, sessionID string) ([]match.GameRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT number, white_score, black_score, crawford, actions, result
FROM games WHERE session_id = ? ORDER BY number`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var out []match.GameRecord
	for rows.Next() {
		var (
			rec      match.GameRecord
			crawford int
			actions  string
			result   sql.NullString
		)
		if err := rows.Scan(&rec.Number, &rec.Score[0], &rec.Score[1], &crawford, &actions, &result); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		rec.Crawford = crawford != 0
		if err := json.Unmarshal([]byte(actions), &rec.Actions); err != nil {
			return nil, fmt.Errorf("decode actions of game %d: %w", rec.Number, err)
		}
		if result.Valid {
			rec.Result = new(match.Result)
			if err := json.Unmarshal([]byte(result.String), rec.Result); err != nil {
				return nil, fmt.Errorf("decode result of game %d: %w", rec.Number, err)
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// SaveMatch stores the latest match score of a session.
func (s *Store) SaveMatch(ctx context.Context, sessionID string, state match.State) error {
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode match: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO matches (session_id, state, saved_at) VALUES (?, ?, ?)
ON CONFLICT (session_id) DO UPDATE SET state = excluded.state, saved_at = excluded.saved_at`,
		sessionID, string(b), time.Now().UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("save match %s: %w", sessionID, err)
	}
	return nil
}

// Match loads a session's match score.
func (s *Store) Match(ctx context.Context, sessionID string) (match.State, error) {
	var raw string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT state FROM matches WHERE session_id = ?`, sessionID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return match.State{}, ErrNotFound
	}
	if err != nil {
		return match.State{}, fmt.Errorf("load match %s: %w", sessionID, err)
	}
	var state match.State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return match.State{}, fmt.Errorf("decode match %s: %w", sessionID, err)
	}
	return state, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
