package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis.
//
// Keys:
//
//	oauth_code:<code>          -> user id (TTL = code ttl)
//	refresh_token:<hash>       -> user id (TTL = refresh ttl, 0 = none)
//	user_tokens:<user>         -> set of refresh token hashes
//	revoked:<user>             -> unix seconds of the last revocation
type RedisStore struct {
	rdb        *redis.Client
	refreshTTL time.Duration
}

// NewRedisStore creates a Store on rdb. refreshTTL bounds the life of
// refresh tokens; zero keeps them until the user is revoked.
func NewRedisStore(rdb *redis.Client, refreshTTL time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, refreshTTL: refreshTTL}
}

func codeKey(code string) string { return "oauth_code:" + code }
func refreshKey(hash string) string { return "refresh_token:" + hash }
func userTokensKey(user string) string { return "user_tokens:" + user }
func revokedKey(user string) string { return "revoked:" + user }

func (s *RedisStore) SaveCode(ctx context.Context, code, userID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, codeKey(code), userID, ttl).Err()
}

func (s *RedisStore) ConsumeCode(ctx context.Context, code string) (string, error) {
	userID, err := s.rdb.GetDel(ctx, codeKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrInvalidCode
	}
	if err != nil {
		return "", fmt.Errorf("consume code: %w", err)
	}
	return userID, nil
}

func (s *RedisStore) SaveRefreshToken(ctx context.Context, hash, userID string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, refreshKey(hash), userID, s.refreshTTL)
		pipe.SAdd(ctx, userTokensKey(userID), hash)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

func (s *RedisStore) LookupRefreshToken(ctx context.Context, hash string) (string, error) {
	userID, err := s.rdb.Get(ctx, refreshKey(hash)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", fmt.Errorf("lookup refresh token: %w", err)
	}
	return userID, nil
}

func (s *RedisStore) RevokeUser(ctx context.Context, userID string, at time.Time) error {
	hashes, err := s.rdb.SMembers(ctx, userTokensKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("list refresh tokens: %w", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, hash := range hashes {
			pipe.Del(ctx, refreshKey(hash))
		}
		pipe.Del(ctx, userTokensKey(userID))
		pipe.Set(ctx, revokedKey(userID), at.UnixNano(), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("revoke user: %w", err)
	}
	return nil
}

func (s *RedisStore) RevokedAt(ctx context.Context, userID string) (time.Time, bool, error) {
	nsec, err := s.rdb.Get(ctx, revokedKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("get revocation: %w", err)
	}
	return time.Unix(0, nsec), true, nil
}
