package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// wireMarker is the stored JSON form; lastUpdated is Unix milliseconds.
type wireMarker struct {
	EvaluationID int64 `json:"evaluationId"`
	LastUpdated  int64 `json:"lastUpdated"`
}

// RedisMarkerStore keeps markers in Redis with a TTL.
type RedisMarkerStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NewRedisMarkerStore returns a store writing keys prefix+userID with the given TTL.
func NewRedisMarkerStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisMarkerStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisMarkerStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisMarkerStore) key(userID int64) string {
	return s.prefix + strconv.FormatInt(userID, 10)
}

// Get returns the user's marker.
func (s *RedisMarkerStore) Get(ctx context.Context, userID int64) (*Marker, error) {
	raw, err := s.rdb.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get marker: %w", err)
	}
	var w wireMarker
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode marker: %w", err)
	}
	return &Marker{EvaluationID: w.EvaluationID, LastUpdated: time.UnixMilli(w.LastUpdated)}, nil
}

// Set writes the user's marker.
func (s *RedisMarkerStore) Set(ctx context.Context, userID int64, m Marker) error {
	raw, err := json.Marshal(wireMarker{EvaluationID: m.EvaluationID, LastUpdated: m.LastUpdated.UnixMilli()})
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key(userID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set marker: %w", err)
	}
	return nil
}
