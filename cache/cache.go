// Package cache persists CPI series and FX rates on disk between runs.
//
// Layout of the cache directory:
//
//	cpi_US.json    one CPI series per country
//	cpi_DE.json
//	fx_cache.json  every FX rate, keyed by "date:base:target"
//
// Files are small, human readable JSON. Reads never fail: a missing or
// corrupt file is reported as absent and gets rewritten by the next fetch.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/etnz/realreturn"
	"github.com/etnz/realreturn/date"
)

const fxFilename = "fx_cache.json"

var (
	_ realreturn.CpiStore = (*Store)(nil)
	_ realreturn.FxStore  = (*Store)(nil)
)

// Store is a file based cache rooted in a directory.
//
// The directory is only created on the first write.
type Store struct {
	dir  string
	fxMu sync.Mutex // serializes read-merge-write cycles of the FX file
}

// New returns a Store rooted in dir.
func New(dir string) *Store { return &Store{dir: dir} }

// DefaultDir returns the default cache directory, ~/.realreturn/cache.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate the cache directory: %w", err)
	}
	return filepath.Join(home, ".realreturn", "cache"), nil
}

// Dir returns the cache directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) cpiPath(country string) string {
	return filepath.Join(s.dir, "cpi_"+country+".json")
}

// GetCpi returns the cached CPI entry of country, if any.
func (s *Store) GetCpi(country string) (*realreturn.CpiEntry, bool) {
	file := s.cpiPath(country)
	content, err := os.ReadFile(file)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("file", file).Msg("cache read failed, ignored")
		}
		return nil, false
	}
	var entry realreturn.CpiEntry
	if err := json.Unmarshal(content, &entry); err != nil {
		log.Warn().Err(err).Str("file", file).Msg("corrupt cache entry ignored")
		return nil, false
	}
	if entry.Country == "" || entry.Series == nil {
		log.Warn().Str("file", file).Msg("incomplete cache entry ignored")
		return nil, false
	}
	return &entry, true
}

// PutCpi stores entry, replacing any previous entry for the same country.
func (s *Store) PutCpi(entry realreturn.CpiEntry) error {
	content, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode CPI cache entry for %s: %w", entry.Country, err)
	}
	return s.write(s.cpiPath(entry.Country), content)
}

// IsStale reports whether entry is due for a refresh at now.
func (s *Store) IsStale(entry realreturn.CpiEntry, now time.Time) bool { return entry.Stale(now) }

func fxKey(day date.Date, base, target string) string {
	return day.String() + ":" + base + ":" + target
}

// loadFx reads the whole FX file. Any failure reads as an empty store.
func (s *Store) loadFx() map[string]float64 {
	file := filepath.Join(s.dir, fxFilename)
	store := make(map[string]float64)
	content, err := os.ReadFile(file)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("file", file).Msg("cache read failed, ignored")
		}
		return store
	}
	if err := json.Unmarshal(content, &store); err != nil {
		log.Warn().Err(err).Str("file", file).Msg("corrupt FX cache ignored")
		return make(map[string]float64)
	}
	return store
}

// GetFx returns the cached rate of target per unit of base on day.
func (s *Store) GetFx(day date.Date, base, target string) (float64, bool) {
	rate, ok := s.loadFx()[fxKey(day, base, target)]
	return rate, ok
}

// PutFxBatch merges rates of each target per unit of base on day into the FX file.
// Rates for other dates, bases or targets are kept.
func (s *Store) PutFxBatch(day date.Date, base string, rates map[string]float64) error {
	s.fxMu.Lock()
	defer s.fxMu.Unlock()

	store := s.loadFx()
	for target, rate := range rates {
		if target == base {
			continue // always 1, never stored
		}
		store[fxKey(day, base, target)] = rate
	}
	content, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode FX cache: %w", err)
	}
	return s.write(filepath.Join(s.dir, fxFilename), content)
}

// write replaces file content atomically, creating the cache directory if needed.
func (s *Store) write(file string, content []byte) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("cannot create cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("cannot write cache file %q: %w", file, err)
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("cannot write cache file %q: %w", file, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cannot write cache file %q: %w", file, err)
	}
	if err := os.Rename(tmp.Name(), file); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cannot write cache file %q: %w", file, err)
	}
	return nil
}

// Entry describes a file in the cache directory.
type Entry struct {
	Name     string
	Path     string
	Size     int64
	Modified time.Time // UTC
}

// List returns the cache files sorted by name. A missing directory lists nothing.
func (s *Store) List() ([]Entry, error) {
	files, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot list cache directory: %w", err)
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() || strings.HasPrefix(f.Name(), ".tmp-") {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue // removed in the meantime
		}
		entries = append(entries, Entry{
			Name:     f.Name(),
			Path:     filepath.Join(s.dir, f.Name()),
			Size:     info.Size(),
			Modified: info.ModTime().UTC(),
		})
	}
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	return entries, nil
}

// Clear removes every file in the cache directory and returns how many were removed.
func (s *Store) Clear() (int, error) {
	files, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cannot list cache directory: %w", err)
	}
	count := 0
	var errs error
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, f.Name())); err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		count++
	}
	return count, errs
}
