// Package rates fetches and caches currency exchange rates. Rates come
// from a Frankfurter-compatible endpoint (European Central Bank data,
// EUR base), persist in SQLite across runs, and refresh after a 24-hour
// TTL with a 5-minute backoff between failed attempts. Readers are
// served stale rates while a refresh is in flight or failing.
package rates

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/FocuswithJustin/DataLens/core/cache"
	"github.com/FocuswithJustin/DataLens/core/sqlite"
	"github.com/FocuswithJustin/DataLens/internal/logging"
)

const (
	// DefaultURL serves ECB reference rates with EUR base.
	DefaultURL = "https://api.frankfurter.app/latest"

	ttl          = 24 * time.Hour
	retryBackoff = 5 * time.Minute
	fetchTimeout = 10 * time.Second

	pairCacheSize = 256
)

// snapshot is one immutable set of rates relative to the base currency.
type snapshot struct {
	base      string
	fetchedAt time.Time
	rates     map[string]float64
}

func (s *snapshot) expired(now time.Time) bool {
	return now.Sub(s.fetchedAt) > ttl
}

// Store is a persistent exchange-rate source. It implements the
// currency provider's RateSource.
type Store struct {
	db     *sql.DB
	client *http.Client
	url    string
	now    func() time.Time

	mu          sync.Mutex
	mem         *snapshot
	lastAttempt time.Time
	refreshing  bool

	// pairs memoizes resolved (from, to) factors per snapshot.
	pairs *cache.LRU[string, float64]
}

// Options configures a Store. The zero value uses the public endpoint
// and a default HTTP client.
type Options struct {
	URL    string
	Client *http.Client
	Now    func() time.Time
}

// New creates a store over an open database, creating the schema when
// missing.
func New(db *sql.DB, opts Options) (*Store, error) {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: fetchTimeout}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Store{
		db:     db,
		client: opts.Client,
		url:    opts.URL,
		now:    opts.Now,
		pairs:  cache.New[string, float64](cache.Config{MaxSize: pairCacheSize, TTL: ttl}),
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("rates schema: %w", err)
	}
	s.mem = s.loadStored()
	return s, nil
}

// Open opens (or creates) a rate database at path.
func Open(path string, opts Options) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rate store: %w", err)
	}
	s, err := New(db, opts)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Convert implements currency.RateSource: amount moves from -> base ->
// to. A false return means rates are unavailable for the pair.
func (s *Store) Convert(ctx context.Context, amount float64, from, to string) (float64, bool) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)

	pairKey := from + "/" + to
	if factor, ok := s.pairs.Get(pairKey); ok {
		return amount * factor, true
	}

	snap := s.current(ctx)
	if snap == nil {
		return 0, false
	}
	fromRate, ok := snap.rates[from]
	if !ok || fromRate == 0 {
		return 0, false
	}
	toRate, ok := snap.rates[to]
	if !ok {
		return 0, false
	}

	factor := toRate / fromRate
	s.pairs.Put(pairKey, factor)
	return amount * factor, true
}

// FetchedAt reports when the current rates were obtained; zero when no
// rates are available yet.
func (s *Store) FetchedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mem == nil {
		return time.Time{}
	}
	return s.mem.fetchedAt
}

// current returns the freshest snapshot it can get without blocking on
// another caller's refresh. At most one goroutine fetches at a time;
// everyone else reads whatever is cached, stale included.
func (s *Store) current(ctx context.Context) *snapshot {
	s.mu.Lock()
	now := s.now()
	if s.mem != nil && !s.mem.expired(now) {
		defer s.mu.Unlock()
		return s.mem
	}
	if s.refreshing || now.Sub(s.lastAttempt) < retryBackoff {
		defer s.mu.Unlock()
		return s.mem
	}
	s.refreshing = true
	s.lastAttempt = now
	s.mu.Unlock()

	fresh, err := s.fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshing = false
	if err != nil {
		logging.Warn("exchange rate refresh failed", "url", s.url, "error", err)
		return s.mem
	}
	s.mem = fresh
	s.pairs.Clear()
	if err := s.persist(fresh); err != nil {
		logging.Warn("exchange rate persist failed", "error", err)
	}
	return s.mem
}

// frankfurterResponse is the upstream payload shape.
type frankfurterResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

func (s *Store) fetch(ctx context.Context) (*snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var payload frankfurterResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode rates: %w", err)
	}
	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("empty rate table")
	}

	rates := make(map[string]float64, len(payload.Rates)+1)
	for code, rate := range payload.Rates {
		rates[strings.ToUpper(code)] = rate
	}
	// The base currency is implied upstream; add it explicitly.
	base := strings.ToUpper(payload.Base)
	if base == "" {
		base = "EUR"
	}
	rates[base] = 1.0

	return &snapshot{base: base, fetchedAt: s.now(), rates: rates}, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS exchange_rates (
			code TEXT PRIMARY KEY,
			rate REAL NOT NULL
		);
		CREATE TABLE IF NOT EXISTS exchange_rates_meta (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			base TEXT NOT NULL,
			fetched_at TEXT NOT NULL
		);
	`)
	return err
}

// loadStored reads the persisted snapshot; nil when absent or invalid.
func (s *Store) loadStored() *snapshot {
	var base, fetchedAt string
	err := s.db.QueryRow(`SELECT base, fetched_at FROM exchange_rates_meta WHERE id = 1`).
		Scan(&base, &fetchedAt)
	if err != nil {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return nil
	}

	rows, err := s.db.Query(`SELECT code, rate FROM exchange_rates`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	rates := make(map[string]float64)
	for rows.Next() {
		var code string
		var rate float64
		if err := rows.Scan(&code, &rate); err != nil {
			return nil
		}
		rates[code] = rate
	}
	if rows.Err() != nil || len(rates) == 0 {
		return nil
	}
	return &snapshot{base: base, fetchedAt: ts, rates: rates}
}

func (s *Store) persist(snap *snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM exchange_rates`); err != nil {
		return err
	}
	for code, rate := range snap.rates {
		if _, err := tx.Exec(`INSERT INTO exchange_rates (code, rate) VALUES (?, ?)`, code, rate); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`
		INSERT INTO exchange_rates_meta (id, base, fetched_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET base = excluded.base, fetched_at = excluded.fetched_at`,
		snap.base, snap.fetchedAt.UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return tx.Commit()
}
