package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix matches the key scheme of the original web client, which
// filed each day under "attendance-<date>". Keeping it means a redis dump
// imported from that client's storage reads back unchanged.
const redisKeyPrefix = "attendance-"

// RedisStore persists each day's records as a single JSON array under one
// key. Read-modify-write on Append is safe because the marker serializes
// writers; a multi-process deployment would need a WATCH/MULTI loop here.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store over an existing redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(date string) string {
	return redisKeyPrefix + date
}

// RecordsFor reads and decodes the day's array. A missing key is an empty
// day, not an error.
func (s *RedisStore) RecordsFor(ctx context.Context, date string) ([]Record, error) {
	raw, err := s.client.Get(ctx, redisKey(date)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	var recs []Record
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, fmt.Errorf("%w: corrupt day %q: %v", ErrStoreUnavailable, date, err)
	}
	return recs, nil
}

// Append rewrites the day's array with rec added at the end.
func (s *RedisStore) Append(ctx context.Context, date string, rec Record) error {
	recs, err := s.RecordsFor(ctx, date)
	if err != nil {
		return err
	}
	recs = append(recs, rec)
	raw, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKey(date), raw, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
