// Package cache provides the translation memory and its storage backends.
package cache

import (
	"context"

	"github.com/ZaguanLabs/cliptl"
)

// Error is a constant error type for cache sentinels.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrMiss is returned by backends when no record matches a hash.
	ErrMiss Error = "translation memory miss"
	// ErrUnavailable is returned by history queries on a disabled memory.
	ErrUnavailable Error = "translation memory unavailable"
)

// Backend stores translation records keyed by cliptl.HashRecord.
type Backend interface {
	// Lookup returns the translation for hash and increments its used count
	// in the same operation. Returns ErrMiss if absent.
	Lookup(ctx context.Context, hash string) (string, error)

	// Upsert stores rec, replacing any record with the same hash.
	Upsert(ctx context.Context, rec cliptl.TranslationRecord) error

	// Record returns the full record for hash without touching its used count.
	Record(ctx context.Context, hash string) (*cliptl.TranslationRecord, error)

	// Recent returns records newest first. limit <= 0 means all.
	Recent(ctx context.Context, limit int) ([]cliptl.TranslationRecord, error)

	// Search returns records whose source or target text contains query.
	Search(ctx context.Context, query string, limit int) ([]cliptl.TranslationRecord, error)

	// Clear deletes every record.
	Clear(ctx context.Context) error

	Close() error
}

// LanguageStore is implemented by backends that persist the language table.
type LanguageStore interface {
	Languages(ctx context.Context) ([]cliptl.LanguageEntry, error)
}
