// Package redis implements the session store on a Redis key-value backend.
// Records are stored as JSON under session.KeyPrefix + <session id> with the
// TTL set atomically by SET ... EX, so a value without an expiry is never
// observable.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/frahmantamala/admin-management/internal/session"
)

type Store struct {
	client      *redis.Client
	ttl         time.Duration
	callTimeout time.Duration
	logger      *slog.Logger
}

func NewStore(client *redis.Client, ttl, callTimeout time.Duration, logger *slog.Logger) *Store {
	if callTimeout <= 0 {
		callTimeout = 2 * time.Second
	}
	return &Store{
		client:      client,
		ttl:         ttl,
		callTimeout: callTimeout,
		logger:      logger,
	}
}

// TTL is the full session lifetime applied on every Put.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

func (s *Store) key(sessionID string) string {
	return session.KeyPrefix + sessionID
}

// Put stamps a fresh expiry window onto the record and writes it with the
// store-level TTL. Concurrent writers for the same id are last-writer-wins.
func (s *Store) Put(ctx context.Context, user *session.LoginUser) error {
	user.Touch(time.Now(), s.ttl)

	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", user.Token, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key(user.Token), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("write session %s: %w", user.Token, err)
	}
	return nil
}

// Get returns (nil, nil) when the id does not resolve, which covers both
// deleted sessions and TTL eviction. A corrupt record is treated as a miss
// after deleting the key.
func (s *Store) Get(ctx context.Context, sessionID string) (*session.LoginUser, error) {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", sessionID, err)
	}

	var user session.LoginUser
	if err := json.Unmarshal(raw, &user); err != nil {
		s.logger.Warn("dropping corrupt session record", "session_id", sessionID, "error", err)
		s.client.Del(context.WithoutCancel(ctx), s.key(sessionID))
		return nil, nil
	}
	return &user, nil
}

// Delete is idempotent; removing an absent key is not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

// Scan walks all live session ids. Used by the administrative permission
// broadcast, so it favors SCAN over KEYS to avoid blocking the server.
func (s *Store) Scan(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*s.callTimeout)
	defer cancel()

	var ids []string
	iter := s.client.Scan(ctx, 0, session.KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, iter.Val()[len(session.KeyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	return ids, nil
}

// RefreshPermissions rewrites the permission sets of every live session
// belonging to one of the given users. Best effort: individual failures are
// logged and the walk continues, because the next natural session refresh
// self-heals.
func (s *Store) RefreshPermissions(ctx context.Context, userIDs []int64, resolve func(ctx context.Context, userID int64) ([]string, error)) {
	affected := make(map[int64]bool, len(userIDs))
	for _, id := range userIDs {
		affected[id] = true
	}

	ids, err := s.Scan(ctx)
	if err != nil {
		s.logger.Error("permission broadcast: session scan failed", "error", err)
		return
	}

	for _, id := range ids {
		user, err := s.Get(ctx, id)
		if err != nil || user == nil {
			continue
		}
		if !affected[user.UserID] {
			continue
		}

		perms, err := resolve(ctx, user.UserID)
		if err != nil {
			s.logger.Error("permission broadcast: resolve failed", "user_id", user.UserID, "error", err)
			continue
		}

		user.Permissions = perms
		if err := s.Put(ctx, user); err != nil {
			s.logger.Error("permission broadcast: rewrite failed", "session_id", id, "error", err)
		}
	}
}
