package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/auth/domain"
	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

// RedisSessionStore shares sessions between instances through Redis.
//
// Key format:
//
//	session:<session id>         JSON encoded session, TTL = idle timeout
//	user_sessions:<user id>      set of session ids
//
// Redis expires idle sessions on its own; every Touch resets the TTL.
type RedisSessionStore struct {
	client      redis.UniversalClient
	idleTimeout time.Duration
	prefix      string
}

// NewRedisSessionStore creates a RedisSessionStore. Keys are namespaced with prefix.
func NewRedisSessionStore(client redis.UniversalClient, idleTimeout time.Duration, prefix string) *RedisSessionStore {
	return &RedisSessionStore{client: client, idleTimeout: idleTimeout, prefix: prefix}
}

// Create stores session and indexes it under its user.
func (s *RedisSessionStore) Create(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode session")
	}

	created, err := s.client.SetNX(ctx, s.sessionKey(session.ID), data, s.idleTimeout).Result()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrPersistence, err.Error())
	}
	if !created {
		return apperrors.Wrap(apperrors.ErrConflict, "session id already exists")
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, s.userKey(session.UserID), session.ID.String())
		pipe.Expire(ctx, s.userKey(session.UserID), s.idleTimeout)
		return nil
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrPersistence, err.Error())
	}
	return nil
}

// Get loads the session with id.
func (s *RedisSessionStore) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	data, err := s.client.Get(ctx, s.sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err.Error())
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode session")
	}
	return &session, nil
}

// Touch rewrites session and resets its TTL. A session that already expired is not revived.
func (s *RedisSessionStore) Touch(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode session")
	}

	updated, err := s.client.SetXX(ctx, s.sessionKey(session.ID), data, s.idleTimeout).Result()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrPersistence, err.Error())
	}
	if !updated {
		return domain.ErrSessionNotFound
	}
	if err := s.client.Expire(ctx, s.userKey(session.UserID), s.idleTimeout).Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrPersistence, err.Error())
	}
	return nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *RedisSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	session, err := s.Get(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.sessionKey(id))
		pipe.SRem(ctx, s.userKey(session.UserID), id.String())
		return nil
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrPersistence, err.Error())
	}
	return nil
}

// DeleteByUser removes every live session of userID and returns how many were removed.
func (s *RedisSessionStore) DeleteByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrPersistence, err.Error())
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, s.prefix+"session:"+id)
	}

	var deleted *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, keys...)
		pipe.Del(ctx, s.userKey(userID))
		return nil
	})
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrPersistence, err.Error())
	}
	return int(deleted.Val()), nil
}

// DeleteExpired drops index entries pointing at sessions Redis already expired and
// removes sessions whose token expired before their idle TTL. It returns the number of
// sessions removed from the index.
func (s *RedisSessionStore) DeleteExpired(ctx context.Context, now time.Time, _ time.Duration) (int, error) {
	removed := 0
	iter := s.client.Scan(ctx, 0, s.prefix+"user_sessions:*", 100).Iterator()
	for iter.Next(ctx) {
		userKey := iter.Val()
		ids, err := s.client.SMembers(ctx, userKey).Result()
		if err != nil {
			return removed, apperrors.Wrap(apperrors.ErrPersistence, err.Error())
		}

		for _, raw := range ids {
			id, err := uuid.Parse(raw)
			if err != nil {
				_ = s.client.SRem(ctx, userKey, raw).Err()
				continue
			}

			session, err := s.Get(ctx, id)
			switch {
			case errors.Is(err, domain.ErrSessionNotFound):
			case err != nil:
				return removed, err
			case !now.Before(session.ExpiresAt):
				if err := s.client.Del(ctx, s.sessionKey(id)).Err(); err != nil {
					return removed, apperrors.Wrap(apperrors.ErrPersistence, err.Error())
				}
			default:
				continue
			}

			if err := s.client.SRem(ctx, userKey, raw).Err(); err != nil {
				return removed, apperrors.Wrap(apperrors.ErrPersistence, err.Error())
			}
			removed++
		}
	}
	if err := iter.Err(); err != nil {
		return removed, apperrors.Wrap(apperrors.ErrPersistence, err.Error())
	}
	return removed, nil
}

func (s *RedisSessionStore) sessionKey(id uuid.UUID) string {
	return s.prefix + "session:" + id.String()
}

func (s *RedisSessionStore) userKey(userID uuid.UUID) string {
	return s.prefix + "user_sessions:" + userID.String()
}
