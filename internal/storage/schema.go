package storage

import "time"

// GameRecord represents a row in the games table. StateJSON is the game's
// JSON encoding and is the source of truth on reload; FEN and Turn are kept
// for queries and the admin CLI.
type GameRecord struct {
	GameID    string    `db:"game_id" json:"gameId"`
	Name      string    `db:"name" json:"name,omitempty"`
	WhiteName string    `db:"white_name" json:"whiteName,omitempty"`
	BlackName string    `db:"black_name" json:"blackName,omitempty"`
	StateJSON string    `db:"state_json" json:"state"`
	FEN       string    `db:"fen" json:"fen"`
	Turn      string    `db:"turn" json:"turn"` // "w" or "b"
	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at_utc" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at_utc" json:"updatedAt"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS games (
	game_id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	white_name TEXT NOT NULL DEFAULT '',
	black_name TEXT NOT NULL DEFAULT '',
	state_json TEXT NOT NULL,
	fen TEXT NOT NULL,
	turn TEXT NOT NULL CHECK(turn IN ('w', 'b')),
	version INTEGER NOT NULL DEFAULT 0,
	created_at_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_games_updated ON games(updated_at_utc);
`
