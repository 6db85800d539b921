package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"depscope/internal/model"

	"golang.org/x/sync/singleflight"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store is the process-wide resolution cache. Entries are keyed by
// (manager id, definition file path, content hash) so any content change is
// a miss. A singleflight group guarantees at most one concurrent resolution
// per key; late requests for the same key await the in-flight one.
type Store struct {
	db    *sql.DB
	group singleflight.Group
}

// Stats summarizes the cache content.
type Stats struct {
	Entries      int
	PayloadBytes int64
	PerManager   map[string]int
}

// NewStore opens (or creates) the cache database at path and applies the
// schema.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate cache database: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS resolutions (
		manager TEXT NOT NULL,
		path TEXT NOT NULL,
		hash TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (manager, path, hash)
	);
	`
	_, err := s.db.Exec(query)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// HashContent returns the hex SHA-256 of a definition file's content.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get looks up a cached result.
func (s *Store) Get(manager, path, hash string) (model.FileResult, bool, error) {
	var payload string
	err := s.db.QueryRow(
		`SELECT payload FROM resolutions WHERE manager = ? AND path = ? AND hash = ?`,
		manager, path, hash,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return model.FileResult{}, false, nil
	}
	if err != nil {
		return model.FileResult{}, false, err
	}

	var result model.FileResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return model.FileResult{}, false, fmt.Errorf("failed to decode cached result: %w", err)
	}
	return result, true, nil
}

// Put stores a result, replacing any previous entry for the key.
func (s *Store) Put(manager, path, hash string, result model.FileResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO resolutions (manager, path, hash, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		manager, path, hash, string(payload), time.Now().UTC(),
	)
	return err
}

// Resolve returns the cached result for the key or runs resolve to produce
// it. Concurrent calls for the same key share one resolution. The second
// return reports whether the result came from the cache.
func (s *Store) Resolve(manager, path, hash string, resolve func() (model.FileResult, error)) (model.FileResult, bool, error) {
	type outcome struct {
		result model.FileResult
		hit    bool
	}

	key := manager + "\x1f" + path + "\x1f" + hash
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		if cached, ok, err := s.Get(manager, path, hash); err == nil && ok {
			return outcome{result: cached, hit: true}, nil
		} else if err != nil {
			slog.Debug("cache lookup failed, resolving directly", "manager", manager, "path", path, "error", err)
		}

		result, err := resolve()
		if err != nil {
			return nil, err
		}
		if err := s.Put(manager, path, hash, result); err != nil {
			slog.Debug("failed to store cache entry", "manager", manager, "path", path, "error", err)
		}
		return outcome{result: result}, nil
	})
	if err != nil {
		return model.FileResult{}, false, err
	}
	o := v.(outcome)
	return o.result, o.hit, nil
}

// Stats reports entry counts and the stored payload volume.
func (s *Store) Stats() (Stats, error) {
	stats := Stats{PerManager: make(map[string]int)}

	err := s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(LENGTH(payload)), 0) FROM resolutions`).
		Scan(&stats.Entries, &stats.PayloadBytes)
	if err != nil {
		return stats, err
	}

	rows, err := s.db.Query(`SELECT manager, COUNT(*) FROM resolutions GROUP BY manager`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var manager string
		var count int
		if err := rows.Scan(&manager, &count); err != nil {
			return stats, err
		}
		stats.PerManager[manager] = count
	}
	return stats, rows.Err()
}

// Clear removes every cache entry.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM resolutions`)
	return err
}
