package cache

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ZaguanLabs/cliptl"
)

// lookupScript bumps used_count and returns target_text atomically.
// A missing key returns false, which the client reports as redis.Nil.
var lookupScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return false
end
redis.call('HINCRBY', KEYS[1], 'used_count', 1)
return redis.call('HGET', KEYS[1], 'target_text')
`)

// RedisStore is a Redis-backed Backend. Each record is a hash; a sorted set
// indexes hashes by creation time for history browsing.
type RedisStore struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
	now       func() time.Time
}

// RedisConfig holds configuration for the Redis store.
type RedisConfig struct {
	URL       string // Redis connection URL (e.g., "redis://localhost:6379")
	TTL       int    // TTL in seconds (0 = no expiration)
	KeyPrefix string // Prefix for all keys (default: "cliptl:")
}

// NewRedisStore connects to Redis with the given configuration.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, &cliptl.CacheError{Message: "parsing redis url", Cause: err}
	}

	client := redis.NewClient(opts)

	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, &cliptl.CacheError{Message: "connecting to redis", Cause: err, Retryable: true}
	}

	return NewRedisStoreFromClient(client, cfg.TTL, cfg.KeyPrefix), nil
}

// NewRedisStoreFromClient creates a RedisStore from an existing Redis client.
func NewRedisStoreFromClient(client *redis.Client, ttlSeconds int, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "cliptl:"
	}

	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0
	}

	return &RedisStore{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
		now:       time.Now,
	}
}

func (s *RedisStore) recordKey(hash string) string {
	return s.keyPrefix + "tm:" + hash
}

func (s *RedisStore) indexKey() string {
	return s.keyPrefix + "tm:index"
}

// Lookup returns the translation for hash and increments its used count.
func (s *RedisStore) Lookup(ctx context.Context, hash string) (string, error) {
	val, err := lookupScript.Run(ctx, s.client, []string{s.recordKey(hash)}).Text()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Upsert replaces the record for rec.Hash and indexes it.
func (s *RedisStore) Upsert(ctx context.Context, rec cliptl.TranslationRecord) error {
	if rec.UsedCount < 1 {
		rec.UsedCount = 1
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	created := rec.CreatedAt.UnixMilli()
	key := s.recordKey(rec.Hash)

	if err := s.client.HSet(ctx, key,
		"source_text", rec.SourceText,
		"target_text", rec.TargetText,
		"source_lang", rec.SourceLang,
		"target_lang", rec.TargetLang,
		"provider", rec.ProviderID,
		"created_at", created,
		"used_count", rec.UsedCount,
	).Err(); err != nil {
		return err
	}

	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return err
		}
	}

	return s.client.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(created), Member: rec.Hash}).Err()
}

// Record returns the stored record for hash.
func (s *RedisStore) Record(ctx context.Context, hash string) (*cliptl.TranslationRecord, error) {
	fields, err := s.client.HGetAll(ctx, s.recordKey(hash)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrMiss
	}
	rec := recordFromHash(hash, fields)
	return &rec, nil
}

func recordFromHash(hash string, fields map[string]string) cliptl.TranslationRecord {
	created, _ := strconv.ParseInt(fields["created_at"], 10, 64)
	used, _ := strconv.ParseInt(fields["used_count"], 10, 64)
	return cliptl.TranslationRecord{
		Hash:       hash,
		SourceText: fields["source_text"],
		TargetText: fields["target_text"],
		SourceLang: fields["source_lang"],
		TargetLang: fields["target_lang"],
		ProviderID: fields["provider"],
		CreatedAt:  time.UnixMilli(created).UTC(),
		UsedCount:  used,
	}
}

// Recent returns records newest first. Expired records left in the index are skipped.
func (s *RedisStore) Recent(ctx context.Context, limit int) ([]cliptl.TranslationRecord, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	hashes, err := s.client.ZRevRange(ctx, s.indexKey(), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	out := make([]cliptl.TranslationRecord, 0, len(hashes))
	for _, h := range hashes {
		rec, err := s.Record(ctx, h)
		if errors.Is(err, ErrMiss) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

// Search scans the history for records containing query, case-insensitively.
func (s *RedisStore) Search(ctx context.Context, query string, limit int) ([]cliptl.TranslationRecord, error) {
	all, err := s.Recent(ctx, 0)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	var out []cliptl.TranslationRecord
	for _, rec := range all {
		if strings.Contains(strings.ToLower(rec.SourceText), q) || strings.Contains(strings.ToLower(rec.TargetText), q) {
			out = append(out, rec)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// Clear deletes every indexed record and the index itself.
func (s *RedisStore) Clear(ctx context.Context) error {
	hashes, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(hashes)+1)
	for _, h := range hashes {
		keys = append(keys, s.recordKey(h))
	}
	keys = append(keys, s.indexKey())
	return s.client.Del(ctx, keys...).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping tests the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

var _ Backend = (*RedisStore)(nil)
