// Package storage provides SQLite-based persistence for scores, replays
// and online match results. Uses the pure-Go modernc.org/sqlite driver
// to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// ScoreEntry is a single finished-game record.
type ScoreEntry struct {
	ID        int64
	Preset    string
	Score     int
	Lines     int
	Level     int
	CreatedAt time.Time
}

// ReplayEntry is a stored replay. Data holds the serialized replay JSON.
type ReplayEntry struct {
	ID        int64
	Preset    string
	Seed      uint32
	Score     int
	Lines     int
	Data      []byte
	CreatedAt time.Time
}

// MatchResult is the outcome of an online versus match.
type MatchResult struct {
	ID             int64
	MatchID        string
	Preset         string
	Player1Session string
	Player2Session string
	Score1         int
	Score2         int
	Lines1         int
	Lines2         int
	WinnerSession  string // Empty if draw or disconnect
	EndReason      string // "completed", "disconnect", "cancelled"
	Duration       int    // Duration in seconds
	CreatedAt      time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			preset TEXT NOT NULL,
			score INTEGER NOT NULL,
			lines INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_preset ON scores(preset);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(preset, score DESC);

		CREATE TABLE IF NOT EXISTS replays (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			preset TEXT NOT NULL,
			seed INTEGER NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			lines INTEGER NOT NULL DEFAULT 0,
			data BLOB NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_replays_preset ON replays(preset, created_at DESC);

		CREATE TABLE IF NOT EXISTS online_matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			preset TEXT NOT NULL,
			player1_session TEXT NOT NULL,
			player2_session TEXT NOT NULL,
			score1 INTEGER NOT NULL DEFAULT 0,
			score2 INTEGER NOT NULL DEFAULT 0,
			lines1 INTEGER NOT NULL DEFAULT 0,
			lines2 INTEGER NOT NULL DEFAULT 0,
			winner_session TEXT,
			end_reason TEXT NOT NULL,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_online_matches_player1 ON online_matches(player1_session);
		CREATE INDEX IF NOT EXISTS idx_online_matches_player2 ON online_matches(player2_session);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// parseTimestamp handles the driver returning DATETIME columns as either
// time.Time or a string.
func parseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// SaveScore records a finished game. Returns the inserted record's ID.
func (s *Store) SaveScore(preset string, score, lines, level int) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO scores (preset, score, lines, level) VALUES (?, ?, ?, ?)",
		preset, score, lines, level,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// TopScores retrieves the top N scores for the given preset,
// ordered by score descending.
func (s *Store) TopScores(preset string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, preset, score, lines, level, created_at
		 FROM scores
		 WHERE preset = ?
		 ORDER BY score DESC
		 LIMIT ?`,
		preset, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.Preset, &e.Score, &e.Lines, &e.Level, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTimestamp(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// HighScore returns the highest score recorded for the preset,
// or 0 if no scores exist.
func (s *Store) HighScore(preset string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM scores WHERE preset = ?",
		preset,
	).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}
	if !score.Valid {
		return 0, nil
	}
	return int(score.Int64), nil
}

// ClearScores deletes all scores for the given preset.
func (s *Store) ClearScores(preset string) error {
	if _, err := s.db.Exec("DELETE FROM scores WHERE preset = ?", preset); err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// SaveReplay stores a serialized replay. Returns the inserted record's ID.
func (s *Store) SaveReplay(preset string, seed uint32, score, lines int, data []byte) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO replays (preset, seed, score, lines, data) VALUES (?, ?, ?, ?, ?)",
		preset, seed, score, lines, data,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save replay: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// Replay retrieves a stored replay by ID. Returns nil if not found.
func (s *Store) Replay(id int64) (*ReplayEntry, error) {
	var e ReplayEntry
	var createdAt any
	err := s.db.QueryRow(
		`SELECT id, preset, seed, score, lines, data, created_at
		 FROM replays WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.Preset, &e.Seed, &e.Score, &e.Lines, &e.Data, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query replay: %w", err)
	}
	e.CreatedAt = parseTimestamp(createdAt)
	return &e, nil
}

// RecentReplays lists the most recent replays, without the data blob.
func (s *Store) RecentReplays(limit int) ([]ReplayEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, preset, seed, score, lines, created_at
		 FROM replays
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query replays: %w", err)
	}
	defer rows.Close()

	var entries []ReplayEntry
	for rows.Next() {
		var e ReplayEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.Preset, &e.Seed, &e.Score, &e.Lines, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTimestamp(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// SaveMatch records the result of an online match. Returns the inserted ID.
func (s *Store) SaveMatch(result MatchResult) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO online_matches
		 (match_id, preset, player1_session, player2_session,
		  score1, score2, lines1, lines2, winner_session, end_reason, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.MatchID,
		result.Preset,
		result.Player1Session,
		result.Player2Session,
		result.Score1,
		result.Score2,
		result.Lines1,
		result.Lines2,
		result.WinnerSession,
		result.EndReason,
		result.Duration,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save match: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// MatchByID retrieves an online match by its match ID. Returns nil if not found.
func (s *Store) MatchByID(matchID string) (*MatchResult, error) {
	var result MatchResult
	var createdAt any
	var winnerSession sql.NullString

	err := s.db.QueryRow(
		`SELECT id, match_id, preset, player1_session, player2_session,
		        score1, score2, lines1, lines2, winner_session, end_reason, duration_secs, created_at
		 FROM online_matches
		 WHERE match_id = ?`,
		matchID,
	).Scan(
		&result.ID,
		&result.MatchID,
		&result.Preset,
		&result.Player1Session,
		&result.Player2Session,
		&result.Score1,
		&result.Score2,
		&result.Lines1,
		&result.Lines2,
		&winnerSession,
		&result.EndReason,
		&result.Duration,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match: %w", err)
	}

	if winnerSession.Valid {
		result.WinnerSession = winnerSession.String
	}
	result.CreatedAt = parseTimestamp(createdAt)
	return &result, nil
}

// PlayerMatchHistory retrieves match history for a specific session.
func (s *Store) PlayerMatchHistory(sessionID string, limit int) ([]MatchResult, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, match_id, preset, player1_session, player2_session,
		        score1, score2, lines1, lines2, winner_session, end_reason, duration_secs, created_at
		 FROM online_matches
		 WHERE player1_session = ? OR player2_session = ?
		 ORDER BY created_at DESC
		 LIMIT ?`,
		sessionID, sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query player matches: %w", err)
	}
	defer rows.Close()

	var results []MatchResult
	for rows.Next() {
		var result MatchResult
		var createdAt any
		var winnerSession sql.NullString

		if err := rows.Scan(
			&result.ID,
			&result.MatchID,
			&result.Preset,
			&result.Player1Session,
			&result.Player2Session,
			&result.Score1,
			&result.Score2,
			&result.Lines1,
			&result.Lines2,
			&winnerSession,
			&result.EndReason,
			&result.Duration,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}

		if winnerSession.Valid {
			result.WinnerSession = winnerSession.String
		}
		result.CreatedAt = parseTimestamp(createdAt)
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return results, nil
}
