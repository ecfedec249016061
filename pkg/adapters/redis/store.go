// Package redis implements the turn audit store on Redis: one JSON value
// per record plus a per-bot ZSET index scored by timestamp, so Recent is a
// single reverse range. Records expire with the configured TTL.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/espalier-dev/espalier/pkg/ports"
)

// Store implements ports.TurnStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the store.
type Option func(*Store)

// WithTTL sets the expiration for turn records.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// New creates a Redis turn store from connection parameters.
func New(address, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a Redis turn store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: "espalier:turn:",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) recordKey(id string) string {
	return s.prefix + id
}

func (s *Store) indexKey(bot string) string {
	return s.prefix + "index:" + bot
}

// Append stores the record and indexes it under its bot.
func (s *Store) Append(ctx context.Context, rec ports.TurnRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal turn record: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.recordKey(rec.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(rec.Bot), backend.Z{
		Score:  float64(rec.At.UnixNano()),
		Member: rec.ID,
	})
	if s.ttl > 0 {
		pipe.Expire(ctx, s.indexKey(rec.Bot), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append turn record: %w", err)
	}
	return nil
}

// Recent returns up to n of the latest records for a bot, newest first.
// Index entries whose record has already expired are skipped.
func (s *Store) Recent(ctx context.Context, bot string, n int) ([]ports.TurnRecord, error) {
	if n <= 0 {
		n = 50
	}
	ids, err := s.client.ZRevRange(ctx, s.indexKey(bot), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read turn index: %w", err)
	}

	out := make([]ports.TurnRecord, 0, len(ids))
	for _, id := range ids {
		val, err := s.client.Get(ctx, s.recordKey(id)).Result()
		if err == backend.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read turn record %s: %w", id, err)
		}
		var rec ports.TurnRecord
		if err := json.Unmarshal([]byte(val), &rec); err != nil {
			return nil, fmt.Errorf("decode turn record %s: %w", id, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
