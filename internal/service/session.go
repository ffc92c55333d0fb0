package service

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"chessrules/internal/board"
	"chessrules/internal/core"
	"chessrules/internal/game"
	"chessrules/internal/storage"
)

// session is one live game plus its bookkeeping. Every field except id is
// guarded by mu.
type session struct {
	mu sync.Mutex

	id        string
	name      string
	white     string
	black     string
	game      *game.Game
	version   int
	lastMove  *board.Move
	lastBy    core.Color
	createdAt time.Time
	updatedAt time.Time
	deleted   bool
}

// Snapshot is a consistent copy of a game's state taken under its lock
type Snapshot struct {
	GameID     string
	Name       string
	White      string
	Black      string
	Board      *board.Board
	Turn       core.Color
	FEN        string
	State      core.State
	Version    int
	LastMove   *board.Move
	LastMoveBy core.Color
}

// Summary is one row of the game listing
type Summary struct {
	GameID    string
	Name      string
	White     string
	Black     string
	FEN       string
	Turn      string
	Version   int
	UpdatedAt time.Time
}

func (sess *session) summary() Summary {
	return Summary{
		GameID:    sess.id,
		Name:      sess.name,
		White:     sess.white,
		Black:     sess.black,
		FEN:       sess.game.FEN(),
		Turn:      sess.game.Turn().String(),
		Version:   sess.version,
		UpdatedAt: sess.updatedAt,
	}
}

func summaryFromRecord(record storage.GameRecord) Summary {
	return Summary{
		GameID:    record.GameID,
		Name:      record.Name,
		White:     record.WhiteName,
		Black:     record.BlackName,
		FEN:       record.FEN,
		Turn:      record.Turn,
		Version:   record.Version,
		UpdatedAt: record.UpdatedAt,
	}
}

// Status is the check/checkmate/stalemate verdict for one color
type Status struct {
	Color     core.Color
	Check     bool
	Checkmate bool
	Stalemate bool
}

func (sess *session) snapshot() Snapshot {
	snap := Snapshot{
		GameID:     sess.id,
		Name:       sess.name,
		White:      sess.white,
		Black:      sess.black,
		Board:      sess.game.Board(),
		Turn:       sess.game.Turn(),
		FEN:        sess.game.FEN(),
		State:      sess.game.State(),
		Version:    sess.version,
		LastMoveBy: sess.lastBy,
	}
	if sess.lastMove != nil {
		m := *sess.lastMove
		snap.LastMove = &m
	}
	return snap
}

func (sess *session) record() (storage.GameRecord, error) {
	state, err := json.Marshal(sess.game)
	if err != nil {
		return storage.GameRecord{}, err
	}
	return storage.GameRecord{
		GameID:    sess.id,
		Name:      sess.name,
		WhiteName: sess.white,
		BlackName: sess.black,
		StateJSON: string(state),
		FEN:       sess.game.FEN(),
		Turn:      sess.game.Turn().String(),
		Version:   sess.version,
		CreatedAt: sess.createdAt,
		UpdatedAt: sess.updatedAt,
	}, nil
}

// sessionFromRecord rehydrates a stored game, refusing boards the engine
// cannot evaluate
func sessionFromRecord(record *storage.GameRecord) (*session, error) {
	g := &game.Game{}
	if err := json.Unmarshal([]byte(record.StateJSON), g); err != nil {
		return nil, fmt.Errorf("decode stored game %s: %w", record.GameID, err)
	}
	if err := game.ValidateKings(g.Board()); err != nil {
		return nil, fmt.Errorf("%w: stored game %s: %v", ErrInvalidBoard, record.GameID, err)
	}

	return &session{
		id:        record.GameID,
		name:      record.Name,
		white:     record.WhiteName,
		black:     record.BlackName,
		game:      g,
		version:   record.Version,
		createdAt: record.CreatedAt,
		updatedAt: record.UpdatedAt,
	}, nil
}
