package repository

import (
	"context"
	"time"

	"hireflow/internal/infrastructure/cache"
	"hireflow/internal/usecase/otp"
)

// RedisSessionStore keeps OTP sessions in Redis under a TTL key, so expired
// sessions disappear on their own instead of accumulating. The strict cache
// accessors are used: the OTP flow must not silently lose a session write.
type RedisSessionStore struct {
	cache *cache.Redis
	ttl   time.Duration
}

func NewRedisSessionStore(c *cache.Redis, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisSessionStore{cache: c, ttl: ttl}
}

func (s *RedisSessionStore) key(address, purpose string) string {
	return "otp:session:" + otp.SessionKey(address, purpose)
}

func (s *RedisSessionStore) Get(ctx context.Context, address, purpose string) (otp.Session, bool, error) {
	var sess otp.Session
	ok, err := s.cache.GetJSONStrict(ctx, s.key(address, purpose), &sess)
	if err != nil {
		return otp.Session{}, false, err
	}
	return sess, ok, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, sess otp.Session) error {
	// The key expires a little after the session itself; the service treats
	// ExpiresAt as authoritative either way.
	ttl := s.ttl + time.Minute
	return s.cache.SetJSONStrict(ctx, s.key(sess.Address, sess.Purpose), sess, ttl)
}

func (s *RedisSessionStore) Delete(ctx context.Context, address, purpose string) error {
	return s.cache.DeleteStrict(ctx, s.key(address, purpose))
}
