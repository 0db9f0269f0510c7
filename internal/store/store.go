// Package store is the durable cache behind the aggregator: the last
// fetched place snapshot, the current dish of the day and a translation
// memory, all in one sqlite file that survives restarts.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/trojalunch/internal/menu"
)

// ErrNoSnapshot is returned on a cold start, before the first successful
// refresh has persisted anything.
var ErrNoSnapshot = errors.New("no snapshot stored")

// PlaceState is one place's most recent fetch outcome.
type PlaceState struct {
	Name  string      `json:"name"`
	TabID string      `json:"tab_id"`
	URL   string      `json:"url"`
	Menus []menu.Menu `json:"menus"`
}

// Snapshot is the whole persisted record: the place list and the timestamp
// of the refresh that produced it. The two are always written together.
type Snapshot struct {
	Places     []PlaceState `json:"places"`
	LastUpdate time.Time    `json:"last_update"`
}

type DishOfTheDay struct {
	Place       string    `json:"place"`
	Dish        string    `json:"dish"`
	GeneratedAt time.Time `json:"generated_at"`
}

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshot (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		places TEXT NOT NULL,
		last_update TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS dish_of_the_day (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		place TEXT NOT NULL,
		dish TEXT NOT NULL,
		generated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS translation_memory (
		id TEXT PRIMARY KEY,
		source_text TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		translated_text TEXT NOT NULL,
		service_used TEXT,
		usage_count INTEGER DEFAULT 1,
		last_used TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_text, source_lang, target_lang)
	);

	CREATE INDEX IF NOT EXISTS idx_memory_lookup ON translation_memory(source_text, source_lang, target_lang);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveSnapshot overwrites the persisted place list and last-update timestamp
// in a single transaction, so a reader sees either the old pair or the new
// pair and never a mix.
func (s *Store) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	places, err := json.Marshal(snap.Places)
	if err != nil {
		return fmt.Errorf("failed to encode places: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO snapshot (id, places, last_update) VALUES (1, ?, ?)`,
		string(places), snap.LastUpdate)
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	return tx.Commit()
}

func (s *Store) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	var placesJSON string
	var lastUpdate time.Time

	err := s.db.QueryRowContext(ctx,
		`SELECT places, last_update FROM snapshot WHERE id = 1`).Scan(&placesJSON, &lastUpdate)
	if err == sql.ErrNoRows {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	snap := &Snapshot{LastUpdate: lastUpdate}
	if err := json.Unmarshal([]byte(placesJSON), &snap.Places); err != nil {
		return nil, fmt.Errorf("failed to decode places: %w", err)
	}
	return snap, nil
}

func (s *Store) SaveDishOfTheDay(ctx context.Context, d *DishOfTheDay) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO dish_of_the_day (id, place, dish, generated_at) VALUES (1, ?, ?, ?)`,
		d.Place, d.Dish, d.GeneratedAt)
	return err
}

func (s *Store) DishOfTheDay(ctx context.Context) (*DishOfTheDay, bool, error) {
	var d DishOfTheDay
	err := s.db.QueryRowContext(ctx,
		`SELECT place, dish, generated_at FROM dish_of_the_day WHERE id = 1`).
		Scan(&d.Place, &d.Dish, &d.GeneratedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &d, true, nil
}

func (s *Store) GetCachedTranslation(ctx context.Context, text, sourceLang, targetLang string) (string, bool, error) {
	var translated string

	err := s.db.QueryRowContext(ctx,
		`SELECT translated_text FROM translation_memory WHERE source_text = ? AND source_lang = ? AND target_lang = ?`,
		normalizeText(text), sourceLang, targetLang).Scan(&translated)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE translation_memory SET usage_count = usage_count + 1, last_used = ? WHERE source_text = ? AND source_lang = ? AND target_lang = ?`,
		time.Now(), normalizeText(text), sourceLang, targetLang)

	return translated, true, err
}

func (s *Store) SaveTranslation(ctx context.Context, text, sourceLang, targetLang, translated, service string) error {
	id := fmt.Sprintf("tm_%d", time.Now().UnixNano())
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO translation_memory (id, source_text, source_lang, target_lang, translated_text, service_used, usage_count, last_used, created_at) VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		id, normalizeText(text), sourceLang, targetLang, translated, service, time.Now(), time.Now())
	return err
}

// CacheStats summarises the persisted state.
type CacheStats struct {
	HasSnapshot   bool
	LastUpdate    time.Time
	Places        int
	Menus         int
	MemoryEntries int
	MemoryUsage   int
}

func (s *Store) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(usage_count), 0)
		FROM translation_memory`).Scan(&stats.MemoryEntries, &stats.MemoryUsage)
	if err != nil {
		return nil, err
	}

	snap, err := s.LoadSnapshot(ctx)
	if errors.Is(err, ErrNoSnapshot) {
		return stats, nil
	}
	if err != nil {
		return nil, err
	}

	stats.HasSnapshot = true
	stats.LastUpdate = snap.LastUpdate
	stats.Places = len(snap.Places)
	for _, p := range snap.Places {
		stats.Menus += len(p.Menus)
	}
	return stats, nil
}

// Clear drops all persisted state: snapshot, dish of the day and the
// translation memory. The next refresh starts cold.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"snapshot", "dish_of_the_day", "translation_memory"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	return tx.Commit()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText trims whitespace and applies Unicode NFC normalization
// for consistent cache key comparison.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
