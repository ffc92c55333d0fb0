package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"chessrules/internal/board"
	"chessrules/internal/core"
	"chessrules/internal/game"
)

// CreateOptions describes a new game. An empty FEN means the standard start.
type CreateOptions struct {
	Name  string
	White string
	Black string
	FEN   string
}

// CreateGame registers a new game and returns its initial state
func (s *Service) CreateGame(ctx context.Context, opts CreateOptions) (Snapshot, error) {
	g := game.New()
	if opts.FEN != "" {
		parsed, err := game.FromFEN(opts.FEN)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidBoard, err)
		}
		if err := game.ValidateKings(parsed.Board()); err != nil {
			return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidBoard, err)
		}
		g = parsed
	}

	now := time.Now().UTC()
	sess := &session{
		name:      opts.Name,
		white:     opts.White,
		black:     opts.Black,
		game:      g,
		createdAt: now,
		updatedAt: now,
	}

	s.mu.Lock()
	sess.id = s.generateGameID()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.persist(ctx, sess)
	s.log.Info().Str("game_id", sess.id).Str("fen", g.FEN()).Msg("game created")

	return sess.snapshot(), nil
}

// GetGame returns the current state of a game
func (s *Service) GetGame(ctx context.Context, gameID string) (Snapshot, error) {
	var snap Snapshot
	err := s.withSession(ctx, gameID, func(sess *session) error {
		snap = sess.snapshot()
		return nil
	})
	return snap, err
}

// ListGames returns every live game plus any stored game not yet loaded,
// most recently updated first
func (s *Service) ListGames(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	live := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		live = append(live, sess)
	}
	s.mu.RUnlock()

	list := make([]Summary, 0, len(live))
	for _, sess := range live {
		sess.mu.Lock()
		if !sess.deleted {
			list = append(list, sess.summary())
		}
		sess.mu.Unlock()
	}

	if s.store != nil {
		records, err := s.store.ListGames(ctx)
		if err != nil {
			return nil, fmt.Errorf("list stored games: %w", err)
		}

		s.mu.RLock()
		for _, record := range records {
			// Live sessions are newer than their records
			if _, ok := s.sessions[record.GameID]; ok || s.tombstoned(record.GameID) {
				continue
			}
			list = append(list, summaryFromRecord(record))
		}
		s.mu.RUnlock()
	}

	slices.SortFunc(list, func(a, b Summary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.GameID, b.GameID)
	})
	return list, nil
}

// JoinGame seats name as the player of color. An occupied seat is refused
// with ErrSeatTaken, even for the same name.
func (s *Service) JoinGame(ctx context.Context, gameID string, color core.Color, name string) (Snapshot, error) {
	if !color.Valid() {
		return Snapshot{}, core.ErrInvalidColor
	}

	var snap Snapshot
	err := s.withSession(ctx, gameID, func(sess *session) error {
		seat := &sess.white
		if color == core.ColorBlack {
			seat = &sess.black
		}
		if *seat != "" {
			return fmt.Errorf("%w: %s is played by %s", ErrSeatTaken, color.Name(), *seat)
		}

		*seat = name
		s.changed(ctx, sess)
		snap = sess.snapshot()
		s.log.Info().Str("game_id", gameID).Str("color", color.String()).Str("player", name).Msg("player joined")
		return nil
	})
	return snap, err
}

// LegalMoves lists the legal moves of the piece on pos
func (s *Service) LegalMoves(ctx context.Context, gameID string, pos board.Position) ([]board.Move, error) {
	var moves []board.Move
	err := s.withSession(ctx, gameID, func(sess *session) error {
		moves = sess.game.LegalMoves(pos)
		return nil
	})
	return moves, err
}

// MakeMove applies a move for the side to move. Rejections wrap
// game.ErrInvalidMove and leave the game untouched.
func (s *Service) MakeMove(ctx context.Context, gameID string, m board.Move) (Snapshot, error) {
	var snap Snapshot
	err := s.withSession(ctx, gameID, func(sess *session) error {
		mover := sess.game.Turn()
		if err := sess.game.ApplyMove(m); err != nil {
			return err
		}

		sess.lastMove = &m
		sess.lastBy = mover
		s.changed(ctx, sess)

		snap = sess.snapshot()
		s.log.Debug().
			Str("game_id", gameID).
			Str("move", m.String()).
			Str("state", snap.State.String()).
			Int("version", snap.Version).
			Msg("move applied")
		return nil
	})
	return snap, err
}

// Status evaluates check, checkmate and stalemate for color
func (s *Service) Status(ctx context.Context, gameID string, color core.Color) (Status, error) {
	if !color.Valid() {
		return Status{}, core.ErrInvalidColor
	}

	var st Status
	err := s.withSession(ctx, gameID, func(sess *session) error {
		st = Status{
			Color:     color,
			Check:     sess.game.IsInCheck(color),
			Checkmate: sess.game.IsInCheckmate(color),
			Stalemate: sess.game.IsInStalemate(color),
		}
		return nil
	})
	return st, err
}

// GetBoard returns a copy of the game's board
func (s *Service) GetBoard(ctx context.Context, gameID string) (*board.Board, error) {
	var b *board.Board
	err := s.withSession(ctx, gameID, func(sess *session) error {
		b = sess.game.Board()
		return nil
	})
	return b, err
}

// SetBoard replaces the whole board. The side to move is kept.
func (s *Service) SetBoard(ctx context.Context, gameID string, b *board.Board) (Snapshot, error) {
	if err := game.ValidateKings(b); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidBoard, err)
	}

	var snap Snapshot
	err := s.withSession(ctx, gameID, func(sess *session) error {
		sess.game.SetBoard(b)
		sess.lastMove = nil
		s.changed(ctx, sess)
		snap = sess.snapshot()
		return nil
	})
	return snap, err
}

// GetTurn returns the side to move
func (s *Service) GetTurn(ctx context.Context, gameID string) (core.Color, error) {
	var turn core.Color
	err := s.withSession(ctx, gameID, func(sess *session) error {
		turn = sess.game.Turn()
		return nil
	})
	return turn, err
}

// SetTurn overrides the side to move
func (s *Service) SetTurn(ctx context.Context, gameID string, color core.Color) (Snapshot, error) {
	if !color.Valid() {
		return Snapshot{}, core.ErrInvalidColor
	}

	var snap Snapshot
	err := s.withSession(ctx, gameID, func(sess *session) error {
		if err := sess.game.SetTurn(color); err != nil {
			return err
		}
		s.changed(ctx, sess)
		snap = sess.snapshot()
		return nil
	})
	return snap, err
}

// DeleteGame removes a game from memory and storage and wakes its waiters
func (s *Service) DeleteGame(ctx context.Context, gameID string) error {
	err := s.withSession(ctx, gameID, func(sess *session) error {
		sess.deleted = true

		s.mu.Lock()
		delete(s.sessions, gameID)
		if s.store != nil {
			s.bury(gameID)
		}
		s.mu.Unlock()

		if s.store != nil {
			if err := s.store.DeleteGame(ctx, gameID); err != nil {
				s.log.Warn().Err(err).Str("game_id", gameID).Msg("failed to delete stored game")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.waiter.RemoveGame(gameID)
	s.log.Info().Str("game_id", gameID).Msg("game deleted")
	return nil
}
