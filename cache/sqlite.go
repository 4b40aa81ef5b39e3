package cache

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // SQLite driver for database/sql

	"github.com/ZaguanLabs/cliptl"
)

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its configuration in package globals.
var migrateMu sync.Mutex

var recordColumns = []string{
	"hash",
	"source_text",
	"target_text",
	"source_lang",
	"target_lang",
	"provider",
	"created_at",
	"used_count",
}

// recordRow is the on-disk shape of a TranslationRecord.
type recordRow struct {
	Hash       string `db:"hash"`
	SourceText string `db:"source_text"`
	TargetText string `db:"target_text"`
	SourceLang string `db:"source_lang"`
	TargetLang string `db:"target_lang"`
	Provider   string `db:"provider"`
	CreatedAt  int64  `db:"created_at"` // unix milliseconds
	UsedCount  int64  `db:"used_count"`
}

func (r recordRow) record() cliptl.TranslationRecord {
	return cliptl.TranslationRecord{
		Hash:       r.Hash,
		SourceText: r.SourceText,
		TargetText: r.TargetText,
		SourceLang: r.SourceLang,
		TargetLang: r.TargetLang,
		ProviderID: r.Provider,
		CreatedAt:  time.UnixMilli(r.CreatedAt).UTC(),
		UsedCount:  r.UsedCount,
	}
}

// SQLiteStore is the persistent Backend. The database file and schema are
// created on first open.
type SQLiteStore struct {
	db *sqlx.DB
	sq sq.StatementBuilderType
}

// OpenSQLite opens (creating if needed) the translation memory at path.
// A locked database is retried briefly before giving up.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, &cliptl.CacheError{Message: "creating database directory", Cause: err}
		}
	}

	db, err := cliptl.Retry(ctx, cliptl.DefaultBackoff(), func(ctx context.Context) (*sqlx.DB, error) {
		return openSQLite(ctx, path)
	})
	if err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db, sq: sq.StatementBuilder}, nil
}

func openSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	raw, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, sqliteError("opening database", err)
	}
	// WAL allows concurrent readers next to the single writer
	raw.SetMaxOpenConns(4)

	if err := raw.PingContext(ctx); err != nil {
		_ = raw.Close()
		return nil, sqliteError("pinging database", err)
	}

	if err := migrate(ctx, raw); err != nil {
		_ = raw.Close()
		return nil, sqliteError("running migrations", err)
	}

	// modernc registers as "sqlite"; sqlx knows its bind style as "sqlite3"
	return sqlx.NewDb(raw, "sqlite3"), nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}
	return goose.UpContext(ctx, db, "migrations")
}

// sqliteError marks busy/locked failures as retryable.
func sqliteError(msg string, err error) error {
	text := strings.ToLower(err.Error())
	busy := strings.Contains(text, "database is locked") || strings.Contains(text, "sqlite_busy")
	return &cliptl.CacheError{Message: msg, Cause: err, Retryable: busy}
}

// Lookup returns the translation for hash and increments used_count in one statement.
func (s *SQLiteStore) Lookup(ctx context.Context, hash string) (string, error) {
	q := s.sq.Update("translations").
		Set("used_count", sq.Expr("used_count + 1")).
		Where(sq.Eq{"hash": hash}).
		Suffix("RETURNING target_text")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return "", err
	}

	var target string
	if err := s.db.QueryRowxContext(ctx, sqlStr, args...).Scan(&target); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrMiss
		}
		return "", sqliteError("lookup", err)
	}
	return target, nil
}

// Upsert stores rec, replacing the previous record for its hash.
func (s *SQLiteStore) Upsert(ctx context.Context, rec cliptl.TranslationRecord) error {
	if rec.UsedCount < 1 {
		rec.UsedCount = 1
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	q := s.sq.Insert("translations").
		Options("OR REPLACE").
		Columns(recordColumns...).
		Values(
			rec.Hash,
			rec.SourceText,
			rec.TargetText,
			rec.SourceLang,
			rec.TargetLang,
			rec.ProviderID,
			rec.CreatedAt.UnixMilli(),
			rec.UsedCount,
		)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return sqliteError("upsert", err)
	}
	return nil
}

// Record returns the stored record for hash.
func (s *SQLiteStore) Record(ctx context.Context, hash string) (*cliptl.TranslationRecord, error) {
	sqlStr, args, err := s.sq.Select(recordColumns...).
		From("translations").
		Where(sq.Eq{"hash": hash}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row recordRow
	if err := s.db.GetContext(ctx, &row, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMiss
		}
		return nil, sqliteError("reading record", err)
	}
	rec := row.record()
	return &rec, nil
}

// Recent returns records newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]cliptl.TranslationRecord, error) {
	return s.list(ctx, nil, limit)
}

// Search returns records whose source or target text contains query.
func (s *SQLiteStore) Search(ctx context.Context, query string, limit int) ([]cliptl.TranslationRecord, error) {
	pattern := "%" + likeEscaper.Replace(query) + "%"
	return s.list(ctx, sq.Or{
		sq.Expr(`source_text LIKE ? ESCAPE '\'`, pattern),
		sq.Expr(`target_text LIKE ? ESCAPE '\'`, pattern),
	}, limit)
}

// likeEscaper makes LIKE wildcards in a search query match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (s *SQLiteStore) list(ctx context.Context, where sq.Sqlizer, limit int) ([]cliptl.TranslationRecord, error) {
	q := s.sq.Select(recordColumns...).
		From("translations").
		OrderBy("created_at DESC", "id DESC")
	if where != nil {
		q = q.Where(where)
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []recordRow
	if err := s.db.SelectContext(ctx, &rows, sqlStr, args...); err != nil {
		return nil, sqliteError("listing records", err)
	}

	out := make([]cliptl.TranslationRecord, len(rows))
	for i, r := range rows {
		out[i] = r.record()
	}
	return out, nil
}

// Clear deletes all records. The language table is kept.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	sqlStr, args, err := s.sq.Delete("translations").ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return sqliteError("clearing records", err)
	}
	return nil
}

// Languages returns the language table ordered by display name.
func (s *SQLiteStore) Languages(ctx context.Context) ([]cliptl.LanguageEntry, error) {
	sqlStr, args, err := s.sq.Select("code", "name", "native_name", "enabled", "rtl").
		From("language_config").
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, err
	}

	var entries []cliptl.LanguageEntry
	if err := s.db.SelectContext(ctx, &entries, sqlStr, args...); err != nil {
		return nil, sqliteError("reading languages", err)
	}
	return entries, nil
}

// SetLanguageEnabled toggles a language in the table.
func (s *SQLiteStore) SetLanguageEnabled(ctx context.Context, code string, enabled bool) error {
	sqlStr, args, err := s.sq.Update("language_config").
		Set("enabled", enabled).
		Where(sq.Eq{"code": cliptl.NormalizeLang(code)}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return sqliteError("updating language", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("unknown language %q", code)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var (
	_ Backend       = (*SQLiteStore)(nil)
	_ LanguageStore = (*SQLiteStore)(nil)
)
