// Package redis — хранилище состояния терминалов в Redis (общее для нескольких инстансов сервиса).
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	rd "github.com/redis/go-redis/v9"
)

// StateStore — ключи хранятся как строки; ttl > 0 продлевается при каждой записи.
type StateStore struct {
	rdb rd.Cmdable
	ttl time.Duration
}

func NewStateStore(rdb rd.Cmdable, ttl time.Duration) *StateStore {
	return &StateStore{rdb: rdb, ttl: ttl}
}

// NewClient — клиент Redis с проверкой соединения.
func NewClient(ctx context.Context, addr, password string, db int) (*rd.Client, error) {
	client := rd.NewClient(&rd.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (s *StateStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, rd.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *StateStore) Set(ctx context.Context, key string, value []byte) error {
	// ttl == 0 — без истечения
	return s.rdb.Set(ctx, key, value, s.ttl).Err()
}

func (s *StateStore) Remove(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
