// Package service owns the live games. Each game sits behind its own mutex so
// that moves on one game never interleave, while different games proceed in
// parallel. A configured Store receives the serialized game after every
// change and is consulted when a game is not in memory.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"chessrules/internal/storage"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrInvalidBoard = errors.New("invalid board")
	ErrSeatTaken    = errors.New("seat already taken")
)

// tombstoneTTL bounds how long a deleted ID is shielded from rehydration.
// It comfortably outlasts the store's async write queue.
const tombstoneTTL = time.Minute

// Store persists serialized games. Both the SQLite and the Redis store
// satisfy it.
type Store interface {
	SaveGame(ctx context.Context, record storage.GameRecord) error
	LoadGame(ctx context.Context, gameID string) (*storage.GameRecord, error)
	DeleteGame(ctx context.Context, gameID string) error
	ListGames(ctx context.Context) ([]storage.GameRecord, error)
	IsHealthy() bool
	Close() error
}

// Service is a state manager for chess games with optional persistence
type Service struct {
	sessions map[string]*session
	deleted  map[string]time.Time // IDs whose async storage delete may still be queued
	mu       sync.RWMutex
	store    Store // nil if persistence disabled
	waiter   *WaitRegistry
	log      zerolog.Logger

	tombstoneTTL time.Duration
}

// New creates a service. Pass a nil store to keep games in memory only.
func New(store Store, log zerolog.Logger) *Service {
	return &Service{
		sessions: make(map[string]*session),
		deleted:  make(map[string]time.Time),
		store:    store,
		waiter:   NewWaitRegistry(),
		log:      log.With().Str("component", "service").Logger(),

		tombstoneTTL: tombstoneTTL,
	}
}

// generateGameID returns a UUID not used by any live game. Caller holds s.mu.
func (s *Service) generateGameID() string {
	for {
		id := uuid.New().String()
		if _, exists := s.sessions[id]; !exists {
			return id
		}
	}
}

// lookup finds a live session, rehydrating it from the store if needed
func (s *Service) lookup(ctx context.Context, gameID string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[gameID]
	gone := s.tombstoned(gameID)
	s.mu.RUnlock()
	if ok {
		return sess, nil
	}

	if s.store == nil || gone {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	record, err := s.store.LoadGame(ctx, gameID)
	if errors.Is(err, storage.ErrGameNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	if err != nil {
		return nil, err
	}

	loaded, err := sessionFromRecord(record)
	if err != nil {
		s.log.Error().Err(err).Str("game_id", gameID).Msg("stored game is unreadable")
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another request may have rehydrated or deleted it meanwhile
	if existing, ok := s.sessions[gameID]; ok {
		return existing, nil
	}
	if s.tombstoned(gameID) {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	s.sessions[gameID] = loaded
	s.log.Info().Str("game_id", gameID).Int("version", loaded.version).Msg("game restored from storage")
	return loaded, nil
}

// tombstoned reports whether gameID was deleted recently. Caller holds s.mu.
func (s *Service) tombstoned(gameID string) bool {
	at, ok := s.deleted[gameID]
	return ok && time.Since(at) < s.tombstoneTTL
}

// bury records a tombstone for gameID and drops expired ones. Caller holds
// s.mu for writing.
func (s *Service) bury(gameID string) {
	now := time.Now()
	for id, at := range s.deleted {
		if now.Sub(at) >= s.tombstoneTTL {
			delete(s.deleted, id)
		}
	}
	s.deleted[gameID] = now
}

// withSession runs fn while holding the game's lock
func (s *Service) withSession(ctx context.Context, gameID string, fn func(*session) error) error {
	sess, err := s.lookup(ctx, gameID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.deleted {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return fn(sess)
}

// persist writes the session to the store. Storage failures are logged and
// never fail the request. Caller holds sess.mu.
func (s *Service) persist(ctx context.Context, sess *session) {
	if s.store == nil {
		return
	}
	record, err := sess.record()
	if err != nil {
		s.log.Error().Err(err).Str("game_id", sess.id).Msg("failed to encode game")
		return
	}
	if err := s.store.SaveGame(ctx, record); err != nil {
		s.log.Warn().Err(err).Str("game_id", sess.id).Msg("failed to persist game")
	}
}

// changed bumps the version, persists and wakes waiters. Caller holds sess.mu.
func (s *Service) changed(ctx context.Context, sess *session) {
	sess.version++
	sess.updatedAt = time.Now().UTC()
	s.persist(ctx, sess)
	s.waiter.NotifyGame(sess.id, sess.version)
}

// RegisterWait parks the caller until the game passes version. A game that
// is already past version, or no longer exists, wakes the caller at once.
func (s *Service) RegisterWait(ctx context.Context, gameID string, version int) <-chan struct{} {
	notify := s.waiter.RegisterWait(ctx, gameID, version)

	// Registered first, so a change landing after this check still finds
	// the waiter in NotifyGame
	s.mu.RLock()
	sess, ok := s.sessions[gameID]
	s.mu.RUnlock()
	if !ok {
		s.waiter.RemoveGame(gameID)
		return notify
	}

	sess.mu.Lock()
	current, deleted := sess.version, sess.deleted
	sess.mu.Unlock()

	switch {
	case deleted:
		s.waiter.RemoveGame(gameID)
	case current != version:
		s.waiter.NotifyGame(gameID, current)
	}
	return notify
}

// Waiting reports how many long-poll clients are parked on a game
func (s *Service) Waiting(gameID string) int {
	return s.waiter.Waiting(gameID)
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// StopWaiting releases every long-poll and stream client. Later waits
// return at once.
func (s *Service) StopWaiting(timeout time.Duration) error {
	return s.waiter.Shutdown(timeout)
}

// Done is closed once StopWaiting or Shutdown has begun
func (s *Service) Done() <-chan struct{} {
	return s.waiter.shutdown
}

// Shutdown releases long-poll waiters, then closes storage
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error
	if err := s.StopWaiting(timeout); err != nil {
		errs = append(errs, err)
	}

	s.mu.Lock()
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	return errors.Join(errs...)
}
