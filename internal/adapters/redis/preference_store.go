package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/codexfoods/opsboard/internal/domain/access"
)

// Key layout for persisted per-user selections. Plain string values,
// absent when unset, removed together on sign-out.
const (
	activeUnitKeyPrefix = "pref:active_unit:"
	adminViewKeyPrefix  = "pref:admin_view:"
)

// PreferenceStore persists the active unit and admin view per user in Redis.
// It is the server-side analog of the browser-local storage keys the web
// client used for the same selections: values survive sessions and reloads
// and are only cleared on sign-out.
type PreferenceStore struct {
	client redis.UniversalClient
}

// NewPreferenceStore creates a Redis-backed preference store.
func NewPreferenceStore(client redis.UniversalClient) *PreferenceStore {
	return &PreferenceStore{client: client}
}

func (s *PreferenceStore) ActiveUnit(ctx context.Context, userID string) (string, error) {
	return s.get(ctx, activeUnitKeyPrefix+userID)
}

func (s *PreferenceStore) SetActiveUnit(ctx context.Context, userID, unitID string) error {
	return s.set(ctx, activeUnitKeyPrefix+userID, unitID)
}

func (s *PreferenceStore) AdminView(ctx context.Context, userID string) (access.AdminView, error) {
	raw, err := s.get(ctx, adminViewKeyPrefix+userID)
	if err != nil {
		return "", err
	}
	// Tolerate corrupted values: an unparseable view reads as unset.
	return access.ParseAdminView(raw), nil
}

func (s *PreferenceStore) SetAdminView(ctx context.Context, userID string, view access.AdminView) error {
	return s.set(ctx, adminViewKeyPrefix+userID, string(view))
}

// Clear removes all persisted preferences for the user.
func (s *PreferenceStore) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	return s.client.Del(ctx, activeUnitKeyPrefix+userID, adminViewKeyPrefix+userID).Err()
}

func (s *PreferenceStore) get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return val, nil
}

func (s *PreferenceStore) set(ctx context.Context, key, value string) error {
	if value == "" {
		return s.client.Del(ctx, key).Err()
	}
	return s.client.Set(ctx, key, value, 0).Err()
}
