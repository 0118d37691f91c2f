package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"skillswap/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	codeKeyPrefix         = "auth:code:"
	rateLimitKeyPrefix    = "auth:ratelimit:"
	revokedKeyPrefix      = "auth:revoked:"
	subscriptionKeyPrefix = "telegram:subscription:"
)

// IncrCodeRequests counts a code request for phone inside window and returns the new count.
func (s *Service) IncrCodeRequests(ctx context.Context, phone string, window time.Duration) (int64, error) {
	key := rateLimitKeyPrefix + phone
	n, err := s.Redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := s.Redis.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// DecrCodeRequests gives back one request slot.
func (s *Service) DecrCodeRequests(ctx context.Context, phone string) error {
	return s.Redis.Decr(ctx, rateLimitKeyPrefix+phone).Err()
}

func (s *Service) SaveCode(ctx context.Context, phone, code string, ttl time.Duration) error {
	return s.Redis.Set(ctx, codeKeyPrefix+phone, code, ttl).Err()
}

// GetCode returns the pending code for phone, or "" when there is none.
func (s *Service) GetCode(ctx context.Context, phone string) (string, error) {
	code, err := s.Redis.Get(ctx, codeKeyPrefix+phone).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return code, err
}

func (s *Service) DeleteCode(ctx context.Context, phone string) error {
	return s.Redis.Del(ctx, codeKeyPrefix+phone).Err()
}

// RevokeToken blacklists a refresh token id until it would expire anyway.
func (s *Service) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.Redis.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

func (s *Service) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.Redis.Exists(ctx, revokedKeyPrefix+jti).Result()
	return n > 0, err
}

// SaveTelegramSubscription stores sub with a sliding TTL.
func (s *Service) SaveTelegramSubscription(ctx context.Context, sub models.TelegramSubscription, ttl time.Duration) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("encode subscription: %w", err)
	}
	return s.Redis.Set(ctx, subscriptionKeyPrefix+sub.UserID, data, ttl).Err()
}

// GetTelegramSubscription returns nil when the user is not subscribed.
func (s *Service) GetTelegramSubscription(ctx context.Context, userID string) (*models.TelegramSubscription, error) {
	data, err := s.Redis.Get(ctx, subscriptionKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sub models.TelegramSubscription
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, fmt.Errorf("decode subscription: %w", err)
	}
	return &sub, nil
}

func (s *Service) DeleteTelegramSubscription(ctx context.Context, userID string) error {
	return s.Redis.Del(ctx, subscriptionKeyPrefix+userID).Err()
}

// ListTelegramSubscriptions scans all stored subscriptions.
func (s *Service) ListTelegramSubscriptions(ctx context.Context) ([]models.TelegramSubscription, error) {
	var subs []models.TelegramSubscription
	iter := s.Redis.Scan(ctx, 0, subscriptionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := s.Redis.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue // ключ встиг протухнути
		}
		if err != nil {
			return nil, err
		}
		var sub models.TelegramSubscription
		if err := json.Unmarshal(data, &sub); err != nil {
			continue
		}
		subs = append(subs, sub)
	}
	return subs, iter.Err()
}
