// Package redisstore keeps game records in Redis as JSON values under
// "game:<id>" keys.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"chessrules/internal/storage"
)

const (
	keyPrefix   = "game:"
	pingTimeout = time.Second
	scanCount   = 100
)

type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Dial connects to addr and verifies the server answers.
func Dial(ctx context.Context, addr string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", addr, err)
	}
	return New(client), nil
}

func (s *Store) SaveGame(ctx context.Context, record storage.GameRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+record.GameID, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}
	return nil
}

func (s *Store) LoadGame(ctx context.Context, gameID string) (*storage.GameRecord, error) {
	data, err := s.client.Get(ctx, keyPrefix+gameID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game %s: %w", gameID, err)
	}

	var record storage.GameRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}
	return &record, nil
}

func (s *Store) DeleteGame(ctx context.Context, gameID string) error {
	if err := s.client.Del(ctx, keyPrefix+gameID).Err(); err != nil {
		return fmt.Errorf("failed to delete game %s: %w", gameID, err)
	}
	return nil
}

// ListGames walks the keyspace with SCAN and fetches each batch with MGET.
// Keys deleted between the two calls are skipped. Newest update first.
func (s *Store) ListGames(ctx context.Context) ([]storage.GameRecord, error) {
	var records []storage.GameRecord
	seen := make(map[string]struct{}) // SCAN may return a key more than once

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, keyPrefix+"*", scanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan games: %w", err)
		}

		if len(keys) > 0 {
			values, err := s.client.MGet(ctx, keys...).Result()
			if err != nil {
				return nil, fmt.Errorf("failed to fetch games: %w", err)
			}
			for i, v := range values {
				data, ok := v.(string)
				if !ok {
					continue
				}
				if _, dup := seen[keys[i]]; dup {
					continue
				}
				seen[keys[i]] = struct{}{}
				var record storage.GameRecord
				if err := json.Unmarshal([]byte(data), &record); err != nil {
					return nil, fmt.Errorf("failed to unmarshal %s: %w", keys[i], err)
				}
				records = append(records, record)
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	slices.SortFunc(records, func(a, b storage.GameRecord) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.GameID, b.GameID)
	})
	return records, nil
}

func (s *Store) IsHealthy() bool {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return s.client.Ping(ctx).Err() == nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
