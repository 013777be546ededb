package caching

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"traders/internal/models"
)

// DraftStore keeps one draft order per session.
//
// Get returns (nil, nil) when the session has no draft.
type DraftStore interface {
	Get(ctx context.Context, sessionID string) (*models.DraftOrder, error)
	Set(ctx context.Context, sessionID string, draft *models.DraftOrder) error
	Clear(ctx context.Context, sessionID string) error
}

func draftKey(sessionID string) string {
	return keyPrefix + "draft:" + sessionID
}

type redisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDraftStore stores drafts as JSON; every write refreshes the ttl.
func NewRedisDraftStore(client *redis.Client, ttl time.Duration) DraftStore {
	return &redisDraftStore{client: client, ttl: ttl}
}

func (s *redisDraftStore) Get(ctx context.Context, sessionID string) (*models.DraftOrder, error) {
	data, err := s.client.Get(ctx, draftKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var draft models.DraftOrder
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, err
	}
	if draft.Lines == nil {
		draft.Lines = []models.DraftLine{}
	}
	return &draft, nil
}

func (s *redisDraftStore) Set(ctx context.Context, sessionID string, draft *models.DraftOrder) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, draftKey(sessionID), data, s.ttl).Err()
}

func (s *redisDraftStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, draftKey(sessionID)).Err()
}
