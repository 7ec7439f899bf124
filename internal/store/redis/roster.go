package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/MrSnakeDoc/mcboard/internal/domain"
	"github.com/MrSnakeDoc/mcboard/internal/store"
	"github.com/redis/go-redis/v9"
)

// Store keeps one JSON array of player names per server in Redis.
//
// Every server has its own key, so saves for different servers never touch
// each other's data. Rosters are stored without TTL.
type Store struct {
	client *redis.Client
}

var _ store.RosterStore = (*Store)(nil)

// NewStore creates a new Redis roster store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Backend implements store.RosterStore
func (s *Store) Backend() string {
	return "redis"
}

// Load retrieves a server's roster, or an empty roster if none was saved
func (s *Store) Load(ctx context.Context, server string) (*domain.Roster, error) {
	data, err := s.client.Get(ctx, RosterKey(server)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.EmptyRoster(), nil
		}
		return nil, fmt.Errorf("failed to get roster: %w", err)
	}

	roster := domain.EmptyRoster()
	if err := json.Unmarshal(data, roster); err != nil {
		return nil, fmt.Errorf("%w: key %s: %v", store.ErrCorrupt, RosterKey(server), err)
	}
	return roster, nil
}

// Save stores a server's roster and registers the server name
func (s *Store) Save(ctx context.Context, server string, roster *domain.Roster) error {
	data, err := json.Marshal(roster.OrEmpty())
	if err != nil {
		return fmt.Errorf("failed to marshal roster: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, RosterKey(server), data, 0)
		pipe.SAdd(ctx, AllRostersKey(), server)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save roster: %w", err)
	}
	return nil
}

// Delete removes a server's roster
func (s *Store) Delete(ctx context.Context, server string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, RosterKey(server))
		pipe.SRem(ctx, AllRostersKey(), server)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete roster: %w", err)
	}
	return nil
}

// Servers lists all server names with a persisted roster
func (s *Store) Servers(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, AllRostersKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get roster names: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Ping checks the Redis connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
