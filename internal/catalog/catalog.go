// Package catalog maintains the local video library in SQLite: filesystem
// scans, ffprobe metadata and the lookup snapshot used by source resolution.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"streambot/internal/media"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".webm": true,
	".avi":  true,
	".mov":  true,
	".m4v":  true,
}

var seriesRegex = regexp.MustCompile(`(?i)^(.*?)[. _-]+s(\d{1,2})[. _-]?e(\d{1,3})`)

// Entry is one catalogued video file.
type Entry struct {
	Name     string
	Path     string
	Title    string
	Size     int64
	Duration float64
	Width    int
	Height   int
	Series   string
	Season   int
	Episode  int
}

// Catalog is safe for concurrent use. Lookups are served from an in-memory
// snapshot rebuilt on every refresh; SQLite is the durable copy so metadata
// probing survives restarts.
type Catalog struct {
	db     *sql.DB
	dir    string
	prober *Prober

	mu    sync.RWMutex
	cache map[string]media.CatalogEntry
}

// Open creates or opens the catalog database and loads the lookup cache.
// A nil prober skips media metadata collection.
func Open(dbPath, videosDir string, prober *Prober) (*Catalog, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening catalog db: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS videos (
		name     TEXT PRIMARY KEY,
		path     TEXT NOT NULL,
		title    TEXT NOT NULL,
		size     INTEGER NOT NULL DEFAULT 0,
		duration REAL NOT NULL DEFAULT 0,
		width    INTEGER NOT NULL DEFAULT 0,
		height   INTEGER NOT NULL DEFAULT 0,
		series   TEXT NOT NULL DEFAULT '',
		season   INTEGER NOT NULL DEFAULT 0,
		episode  INTEGER NOT NULL DEFAULT 0
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}

	c := &Catalog{
		db:     db,
		dir:    videosDir,
		prober: prober,
		cache:  make(map[string]media.CatalogEntry),
	}
	if err := c.reloadCache(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

// Snapshot returns a copy of the name -> entry lookup table.
func (c *Catalog) Snapshot() map[string]media.CatalogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]media.CatalogEntry, len(c.cache))
	for k, v := range c.cache {
		out[k] = v
	}
	return out
}

// Refresh walks the videos directory, upserts what it finds, drops rows for
// files that no longer exist, and rebuilds the lookup cache. New files are
// probed for duration and resolution.
func (c *Catalog) Refresh(ctx context.Context) (int, error) {
	seen := make(map[string]bool)

	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !videoExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		name := media.NormalizeName(base)
		seen[name] = true

		if c.unchanged(name, path, info.Size()) {
			return nil
		}

		entry := Entry{
			Name:  name,
			Path:  path,
			Title: base,
			Size:  info.Size(),
		}
		entry.Series, entry.Season, entry.Episode = parseSeries(base)

		if c.prober != nil {
			if meta, err := c.prober.Probe(ctx, path); err != nil {
				log.Warn().Err(err).Str("path", path).Msg("probing video metadata")
			} else {
				entry.Duration = meta.Duration
				entry.Width = meta.Width
				entry.Height = meta.Height
			}
		}

		return c.upsert(entry)
	})
	if err != nil {
		return 0, fmt.Errorf("scanning videos dir: %w", err)
	}

	if err := c.prune(seen); err != nil {
		return 0, err
	}
	if err := c.reloadCache(); err != nil {
		return 0, err
	}

	log.Info().Int("videos", len(seen)).Str("dir", c.dir).Msg("catalog refreshed")
	return len(seen), nil
}

// Search returns entries whose name contains the term, case-insensitive.
func (c *Catalog) Search(term string, limit int) ([]Entry, error) {
	pattern := "%" + strings.ToLower(media.NormalizeName(term)) + "%"
	rows, err := c.db.Query(
		`SELECT name, path, title, size, duration, width, height, series, season, episode
		 FROM videos WHERE lower(name) LIKE ? ORDER BY name LIMIT ?`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("searching catalog: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// All returns every entry ordered by name.
func (c *Catalog) All() ([]Entry, error) {
	rows, err := c.db.Query(
		`SELECT name, path, title, size, duration, width, height, series, season, episode
		 FROM videos ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing catalog: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (c *Catalog) unchanged(name, path string, size int64) bool {
	var gotPath string
	var gotSize int64
	err := c.db.QueryRow(`SELECT path, size FROM videos WHERE name = ?`, name).Scan(&gotPath, &gotSize)
	return err == nil && gotPath == path && gotSize == size
}

func (c *Catalog) upsert(e Entry) error {
	_, err := c.db.Exec(
		`INSERT INTO videos (name, path, title, size, duration, width, height, series, season, episode)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   path = excluded.path, title = excluded.title, size = excluded.size,
		   duration = excluded.duration, width = excluded.width, height = excluded.height,
		   series = excluded.series, season = excluded.season, episode = excluded.episode`,
		e.Name, e.Path, e.Title, e.Size, e.Duration, e.Width, e.Height, e.Series, e.Season, e.Episode)
	if err != nil {
		return fmt.Errorf("upserting %s: %w", e.Name, err)
	}
	return nil
}

func (c *Catalog) prune(seen map[string]bool) error {
	rows, err := c.db.Query(`SELECT name FROM videos`)
	if err != nil {
		return fmt.Errorf("pruning catalog: %w", err)
	}
	var stale []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		if !seen[name] {
			stale = append(stale, name)
		}
	}
	rows.Close()

	for _, name := range stale {
		if _, err := c.db.Exec(`DELETE FROM videos WHERE name = ?`, name); err != nil {
			return fmt.Errorf("pruning %s: %w", name, err)
		}
	}
	return nil
}

func (c *Catalog) reloadCache() error {
	entries, err := c.All()
	if err != nil {
		return err
	}
	cache := make(map[string]media.CatalogEntry, len(entries))
	for _, e := range entries {
		cache[e.Name] = media.CatalogEntry{Path: e.Path, Title: e.Title}
	}
	c.mu.Lock()
	c.cache = cache
	c.mu.Unlock()
	return nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Path, &e.Title, &e.Size, &e.Duration,
			&e.Width, &e.Height, &e.Series, &e.Season, &e.Episode); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// parseSeries extracts "Show Name", season and episode from names like
// "Show.Name.S01E04.1080p". Non-episodic names return empty values.
func parseSeries(base string) (string, int, int) {
	m := seriesRegex.FindStringSubmatch(base)
	if m == nil {
		return "", 0, 0
	}
	series := strings.TrimSpace(strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(m[1]))
	season, _ := strconv.Atoi(m[2])
	episode, _ := strconv.Atoi(m[3])
	return series, season, episode
}
