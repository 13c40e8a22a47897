package org

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SelectionStore persists the current-entity choice per session key so a
// reload restores the same scope.
type SelectionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSelectionStore wires the store to redis.
func NewSelectionStore(rdb *redis.Client, ttl time.Duration) *SelectionStore {
	return &SelectionStore{rdb: rdb, ttl: ttl}
}

func selectionKey(sessionKey string) string {
	return fmt.Sprintf("org:selection:%s", sessionKey)
}

// Save records the selection for the session.
func (s *SelectionStore) Save(ctx context.Context, sessionKey, entityID string) error {
	return s.rdb.Set(ctx, selectionKey(sessionKey), entityID, s.ttl).Err()
}

// Load returns the saved selection, or empty when none exists.
func (s *SelectionStore) Load(ctx context.Context, sessionKey string) (string, error) {
	val, err := s.rdb.Get(ctx, selectionKey(sessionKey)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Clear drops the saved selection.
func (s *SelectionStore) Clear(ctx context.Context, sessionKey string) error {
	return s.rdb.Del(ctx, selectionKey(sessionKey)).Err()
}
