package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func newTestCatalog(t *testing.T) (*Catalog, string) {
	t.Helper()
	dir := t.TempDir()
	videos := filepath.Join(dir, "videos")
	if err := os.MkdirAll(videos, 0o755); err != nil {
		t.Fatal(err)
	}
	c, err := Open(filepath.Join(dir, "catalog.db"), videos, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c, videos
}

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("fake video bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRefreshPicksUpVideos(t *testing.T) {
	c, videos := newTestCatalog(t)

	moviePath := touch(t, videos, "Big Movie.mkv")
	touch(t, videos, "notes.txt")

	n, err := c.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("refresh count = %d, want 1", n)
	}

	snap := c.Snapshot()
	entry, ok := snap["Big_Movie"]
	if !ok {
		t.Fatalf("snapshot missing normalized key, got %v", snap)
	}
	if entry.Path != moviePath {
		t.Errorf("entry path = %q, want %q", entry.Path, moviePath)
	}
	if entry.Title != "Big Movie" {
		t.Errorf("entry title = %q, want %q", entry.Title, "Big Movie")
	}
}

func TestRefreshPrunesDeletedFiles(t *testing.T) {
	c, videos := newTestCatalog(t)

	path := touch(t, videos, "gone.mp4")
	if _, err := c.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Snapshot()["gone"]; !ok {
		t.Fatal("entry missing after first refresh")
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Snapshot()["gone"]; ok {
		t.Error("deleted file still in snapshot")
	}
}

func TestRefreshWalksSubdirectories(t *testing.T) {
	c, videos := newTestCatalog(t)

	sub := filepath.Join(videos, "series")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, sub, "Show.Name.S02E05.mkv")

	if _, err := c.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	entries, err := c.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Series != "Show Name" || e.Season != 2 || e.Episode != 5 {
		t.Errorf("series parse = (%q, %d, %d), want (Show Name, 2, 5)", e.Series, e.Season, e.Episode)
	}
}

func TestSearch(t *testing.T) {
	c, videos := newTestCatalog(t)

	touch(t, videos, "Alien Encounter.mkv")
	touch(t, videos, "Deep Sea.mp4")
	if _, err := c.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	hits, err := c.Search("alien", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Name != "Alien_Encounter" {
		t.Errorf("search hits = %v, want Alien_Encounter only", hits)
	}

	none, err := c.Search("zebra", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("search for missing term returned %v", none)
	}
}

func TestParseSeries(t *testing.T) {
	tests := []struct {
		base    string
		series  string
		season  int
		episode int
	}{
		{"Show.Name.S01E04.1080p", "Show Name", 1, 4},
		{"Show Name s03e12", "Show Name", 3, 12},
		{"Show_Name-S10E100", "Show Name", 10, 100},
		{"Just A Movie", "", 0, 0},
		{"Seaside Documentary", "", 0, 0},
	}

	for _, tt := range tests {
		series, season, episode := parseSeries(tt.base)
		if series != tt.series || season != tt.season || episode != tt.episode {
			t.Errorf("parseSeries(%q) = (%q, %d, %d), want (%q, %d, %d)",
				tt.base, series, season, episode, tt.series, tt.season, tt.episode)
		}
	}
}
