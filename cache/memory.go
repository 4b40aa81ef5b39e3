package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ZaguanLabs/cliptl"
)

// InMemoryStore is a thread-safe Backend kept in process memory, with TTL support.
type InMemoryStore struct {
	records map[string]cliptl.TranslationRecord
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryStore creates a new in-memory store with the specified TTL.
// If ttlSeconds is 0 or negative, records never expire.
func NewInMemoryStore(ttlSeconds int) *InMemoryStore {
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0 // No expiration
	}
	return &InMemoryStore{
		records: make(map[string]cliptl.TranslationRecord),
		ttl:     ttl,
		now:     time.Now,
	}
}

// expired must be called with the lock held.
func (s *InMemoryStore) expired(rec cliptl.TranslationRecord) bool {
	return s.ttl > 0 && s.now().Sub(rec.CreatedAt) > s.ttl
}

// Lookup returns the translation for hash and bumps its used count.
func (s *InMemoryStore) Lookup(_ context.Context, hash string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[hash]
	if !ok {
		return "", ErrMiss
	}
	if s.expired(rec) {
		delete(s.records, hash)
		return "", ErrMiss
	}

	rec.UsedCount++
	s.records[hash] = rec
	return rec.TargetText, nil
}

// Upsert stores rec, replacing any previous record with the same hash.
func (s *InMemoryStore) Upsert(_ context.Context, rec cliptl.TranslationRecord) error {
	if rec.UsedCount < 1 {
		rec.UsedCount = 1
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Hash] = rec
	return nil
}

// Record returns the stored record for hash.
func (s *InMemoryStore) Record(_ context.Context, hash string) (*cliptl.TranslationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[hash]
	if !ok || s.expired(rec) {
		return nil, ErrMiss
	}
	return &rec, nil
}

// Recent returns live records, newest first.
func (s *InMemoryStore) Recent(_ context.Context, limit int) ([]cliptl.TranslationRecord, error) {
	return s.collect(limit, func(cliptl.TranslationRecord) bool { return true }), nil
}

// Search returns live records containing query, case-insensitively.
func (s *InMemoryStore) Search(_ context.Context, query string, limit int) ([]cliptl.TranslationRecord, error) {
	q := strings.ToLower(query)
	return s.collect(limit, func(rec cliptl.TranslationRecord) bool {
		return strings.Contains(strings.ToLower(rec.SourceText), q) ||
			strings.Contains(strings.ToLower(rec.TargetText), q)
	}), nil
}

func (s *InMemoryStore) collect(limit int, keep func(cliptl.TranslationRecord) bool) []cliptl.TranslationRecord {
	s.mu.Lock()
	out := make([]cliptl.TranslationRecord, 0, len(s.records))
	for _, rec := range s.records {
		if s.expired(rec) || !keep(rec) {
			continue
		}
		out = append(out, rec)
	}
	s.mu.Unlock()

	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Clear removes all records.
func (s *InMemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]cliptl.TranslationRecord)
	return nil
}

// Len returns the number of records (including expired ones).
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Close is a no-op.
func (s *InMemoryStore) Close() error {
	return nil
}

func sortNewestFirst(recs []cliptl.TranslationRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return recs[i].Hash < recs[j].Hash
	})
}

var _ Backend = (*InMemoryStore)(nil)
