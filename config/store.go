package config

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ZaguanLabs/cliptl"
)

// Store holds the current configuration. Readers take an immutable snapshot;
// writers go through Update, which validates before publishing.
type Store struct {
	mu  sync.Mutex // serialises writers
	cur atomic.Pointer[Config]
}

// NewStore creates a Store holding cfg.
func NewStore(cfg Config) *Store {
	s := &Store{}
	s.cur.Store(&cfg)
	return s
}

// Snapshot returns a copy of the current configuration.
func (s *Store) Snapshot() Config {
	return *s.cur.Load()
}

// Update applies fn to a copy of the configuration and publishes it if it
// still validates. The published configuration is returned.
func (s *Store) Update(fn func(*Config) error) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := *s.cur.Load()
	if err := fn(&next); err != nil {
		return *s.cur.Load(), err
	}
	next.Normalize()
	if err := Validate(next); err != nil {
		return *s.cur.Load(), err
	}
	s.cur.Store(&next)
	return next, nil
}

// SetProvider makes name the active provider.
func (s *Store) SetProvider(name string) error {
	_, err := s.Update(func(c *Config) error {
		c.Provider = name
		return nil
	})
	return err
}

// SelectTarget sets the target language to langs[index] and returns its code.
func (s *Store) SelectTarget(index int, langs []cliptl.LanguageEntry) (string, error) {
	if index < 0 || index >= len(langs) {
		return "", fmt.Errorf("language index %d out of range (0-%d)", index, len(langs)-1)
	}
	code := langs[index].Code
	_, err := s.Update(func(c *Config) error {
		c.TargetLang = code
		return nil
	})
	if err != nil {
		return "", err
	}
	return cliptl.NormalizeLang(code), nil
}

// SwapLanguages exchanges source and target. It is refused while the source
// is detected automatically.
func (s *Store) SwapLanguages() (Config, error) {
	return s.Update(func(c *Config) error {
		if c.SourceLang == cliptl.AutoLang {
			return fmt.Errorf("cannot swap languages while source is %q", cliptl.AutoLang)
		}
		c.SourceLang, c.TargetLang = c.TargetLang, c.SourceLang
		return nil
	})
}

// SetAutoTranslate toggles passive clipboard translation.
func (s *Store) SetAutoTranslate(on bool) {
	// Toggling a bool cannot invalidate the configuration.
	_, _ = s.Update(func(c *Config) error {
		c.AutoTranslate = on
		return nil
	})
}
