package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/social-services/internal/domain"
)

// NotificationStore keeps per-recipient notification inboxes, newest first.
type NotificationStore interface {
	Push(ctx context.Context, n domain.Notification) error
	List(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error)
	Clear(ctx context.Context, recipientID string) error
}

type redisNotificationStore struct {
	client *redis.Client
	limit  int
	ttl    time.Duration
}

// NewRedisNotificationStore stores inboxes as capped Redis lists.
func NewRedisNotificationStore(client *redis.Client, limit int, ttl time.Duration) NotificationStore {
	if limit <= 0 {
		limit = 100
	}
	return &redisNotificationStore{client: client, limit: limit, ttl: ttl}
}

func inboxKey(recipientID string) string {
	return "notifications:" + recipientID
}

func (s *redisNotificationStore) Push(ctx context.Context, n domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	key := inboxKey(n.RecipientID)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, int64(s.limit-1))
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *redisNotificationStore) List(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > s.limit {
		limit = s.limit
	}
	raw, err := s.client.LRange(ctx, inboxKey(recipientID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	result := make([]domain.Notification, 0, len(raw))
	for _, item := range raw {
		var n domain.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			continue
		}
		result = append(result, n)
	}
	return result, nil
}

func (s *redisNotificationStore) Clear(ctx context.Context, recipientID string) error {
	return s.client.Del(ctx, inboxKey(recipientID)).Err()
}
