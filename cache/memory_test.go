package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ZaguanLabs/cliptl"
)

func testRecord(text, target string, created time.Time) cliptl.TranslationRecord {
	return cliptl.TranslationRecord{
		Hash:       cliptl.HashRecord(text, "en", "es"),
		SourceText: text,
		TargetText: target,
		SourceLang: "en",
		TargetLang: "es",
		ProviderID: "mock",
		CreatedAt:  created,
		UsedCount:  1,
	}
}

func TestInMemoryStore_LookupUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(3600)

	rec := testRecord("Hello", "Hola", time.Now())
	if err := s.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	val, err := s.Lookup(ctx, rec.Hash)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if val != "Hola" {
		t.Errorf("Lookup returned %q, want %q", val, "Hola")
	}

	// Missing key
	if _, err := s.Lookup(ctx, "nonexistent"); err != ErrMiss {
		t.Errorf("Lookup of missing hash returned %v, want ErrMiss", err)
	}
}

func TestInMemoryStore_LookupCountsUse(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(0)

	rec := testRecord("Hello", "Hola", time.Now())
	s.Upsert(ctx, rec)

	for i := 0; i < 3; i++ {
		if _, err := s.Lookup(ctx, rec.Hash); err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
	}

	got, err := s.Record(ctx, rec.Hash)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if got.UsedCount != 4 {
		t.Errorf("UsedCount = %d, want 4", got.UsedCount)
	}
}

func TestInMemoryStore_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(0)

	first := testRecord("Hello", "Hola", time.Now())
	s.Upsert(ctx, first)
	s.Lookup(ctx, first.Hash)

	second := testRecord("Hello", "Buenas", time.Now())
	s.Upsert(ctx, second)

	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	got, _ := s.Record(ctx, first.Hash)
	if got.TargetText != "Buenas" {
		t.Errorf("TargetText = %q, want %q", got.TargetText, "Buenas")
	}
	if got.UsedCount != 1 {
		t.Errorf("UsedCount = %d, want 1 after replace", got.UsedCount)
	}
}

func TestInMemoryStore_UpsertDefaults(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(0)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	rec := testRecord("Hello", "Hola", time.Time{})
	rec.UsedCount = 0
	s.Upsert(ctx, rec)

	got, _ := s.Record(ctx, rec.Hash)
	if got.UsedCount != 1 {
		t.Errorf("UsedCount = %d, want 1", got.UsedCount)
	}
	if !got.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, fixed)
	}
}

func TestInMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(60)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	rec := testRecord("Hello", "Hola", now)
	s.Upsert(ctx, rec)

	if _, err := s.Lookup(ctx, rec.Hash); err != nil {
		t.Fatalf("record should be live: %v", err)
	}

	now = now.Add(61 * time.Second)

	if _, err := s.Lookup(ctx, rec.Hash); err != ErrMiss {
		t.Errorf("expired lookup returned %v, want ErrMiss", err)
	}
	if s.Len() != 0 {
		t.Errorf("expired record should be removed on lookup, Len = %d", s.Len())
	}
}

func TestInMemoryStore_NoExpiration(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(0)
	now := time.Now()
	s.now = func() time.Time { return now }

	rec := testRecord("Hello", "Hola", now)
	s.Upsert(ctx, rec)
	now = now.Add(365 * 24 * time.Hour)

	if _, err := s.Lookup(ctx, rec.Hash); err != nil {
		t.Errorf("record without TTL should never expire: %v", err)
	}
}

func TestInMemoryStore_RecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(0)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	s.Upsert(ctx, testRecord("one", "uno", base))
	s.Upsert(ctx, testRecord("three", "tres", base.Add(2*time.Minute)))
	s.Upsert(ctx, testRecord("two", "dos", base.Add(time.Minute)))

	recs, err := s.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	want := []string{"three", "two", "one"}
	if len(recs) != len(want) {
		t.Fatalf("Recent returned %d records, want %d", len(recs), len(want))
	}
	for i, w := range want {
		if recs[i].SourceText != w {
			t.Errorf("recs[%d] = %q, want %q", i, recs[i].SourceText, w)
		}
	}

	limited, _ := s.Recent(ctx, 2)
	if len(limited) != 2 {
		t.Errorf("Recent(2) returned %d records", len(limited))
	}
}

func TestInMemoryStore_Search(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(0)
	base := time.Now()

	s.Upsert(ctx, testRecord("Hello world", "Hola mundo", base))
	s.Upsert(ctx, testRecord("Good night", "Buenas noches", base.Add(time.Second)))

	recs, _ := s.Search(ctx, "WORLD", 0)
	if len(recs) != 1 || recs[0].SourceText != "Hello world" {
		t.Errorf("Search by source = %+v", recs)
	}

	recs, _ = s.Search(ctx, "noches", 0)
	if len(recs) != 1 || recs[0].SourceText != "Good night" {
		t.Errorf("Search by target = %+v", recs)
	}

	recs, _ = s.Search(ctx, "zzz", 0)
	if len(recs) != 0 {
		t.Errorf("Search for absent text returned %d records", len(recs))
	}
}

func TestInMemoryStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(0)

	s.Upsert(ctx, testRecord("one", "uno", time.Now()))
	s.Upsert(ctx, testRecord("two", "dos", time.Now()))

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len after Clear = %d", s.Len())
	}
}

func TestInMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(3600)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			s.Upsert(ctx, testRecord(fmt.Sprintf("text%d", n), "value", time.Now()))
		}(i)
		go func(n int) {
			defer wg.Done()
			s.Lookup(ctx, cliptl.HashRecord(fmt.Sprintf("text%d", n), "en", "es"))
		}(i)
	}

	wg.Wait()

	if s.Len() != 100 {
		t.Errorf("Len = %d, want 100", s.Len())
	}
}
