package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const createHandsTableSQL = `
CREATE TABLE IF NOT EXISTS hands (
	hand_id TEXT PRIMARY KEY,
	game_id TEXT NOT NULL,
	hand_number INTEGER NOT NULL,
	played_at TIMESTAMP NOT NULL,
	result TEXT NOT NULL,   -- JSON hand result
	actions TEXT NOT NULL,  -- JSON array of action records
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_hands_game ON hands(game_id, hand_number)`

// SQLiteStore persists hand history to a SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) a SQLite-backed store at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if _, err := db.Exec(createHandsTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveHand(ctx context.Context, hand CompletedHand) error {
	resultJSON, err := json.Marshal(hand.Result)
	if err != nil {
		return fmt.Errorf("marshaling hand result: %w", err)
	}
	actionsJSON, err := json.Marshal(hand.Actions)
	if err != nil {
		return fmt.Errorf("marshaling hand actions: %w", err)
	}

	// Replaying the same hand id is a no-op, which keeps retries idempotent.
	query := `
		INSERT INTO hands (hand_id, game_id, hand_number, played_at, result, actions)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(hand_id) DO NOTHING`
	_, err = s.db.ExecContext(ctx, query,
		hand.HandID, hand.GameID, hand.HandNumber, hand.PlayedAt, resultJSON, actionsJSON)
	return err
}

func (s *SQLiteStore) Hands(ctx context.Context, gameID string, limit int) ([]CompletedHand, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT hand_id, game_id, hand_number, played_at, result, actions
		FROM hands WHERE game_id = ?
		ORDER BY hand_number DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, gameID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hands []CompletedHand
	for rows.Next() {
		var hand CompletedHand
		var resultJSON, actionsJSON []byte
		if err := rows.Scan(&hand.HandID, &hand.GameID, &hand.HandNumber,
			&hand.PlayedAt, &resultJSON, &actionsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(resultJSON, &hand.Result); err != nil {
			return nil, fmt.Errorf("unmarshaling result for hand %s: %w", hand.HandID, err)
		}
		if err := json.Unmarshal(actionsJSON, &hand.Actions); err != nil {
			return nil, fmt.Errorf("unmarshaling actions for hand %s: %w", hand.HandID, err)
		}
		hands = append(hands, hand)
	}
	return hands, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
