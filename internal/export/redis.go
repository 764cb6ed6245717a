package export

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"link-analytics/internal/model"
)

const redisKeyPrefix = "link-analytics:export:"

// RedisStore implements ArtifactStore on Redis. Expiry is enforced by the
// server-side TTL, so SweepExpired has nothing to do.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Put stores the JSON-encoded artifact with a server-side TTL.
func (s *RedisStore) Put(ctx context.Context, key string, artifact model.ExportArtifact, ttl time.Duration) error {
	artifact.ExpiresAt = time.Now().UTC().Add(ttl)
	payload, err := json.Marshal(artifact)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKeyPrefix+key, payload, ttl).Err()
}

// Get returns the artifact under key, or ErrArtifactNotFound once the TTL
// has elapsed.
func (s *RedisStore) Get(ctx context.Context, key string) (model.ExportArtifact, error) {
	payload, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.ExportArtifact{}, ErrArtifactNotFound
	}
	if err != nil {
		return model.ExportArtifact{}, err
	}
	var artifact model.ExportArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return model.ExportArtifact{}, err
	}
	return artifact, nil
}

// SweepExpired is a no-op: Redis evicts expired keys itself.
func (s *RedisStore) SweepExpired(context.Context) (int, error) {
	return 0, nil
}
