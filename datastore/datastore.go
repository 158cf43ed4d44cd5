// Package datastore is a small JSON-file key/value store with periodic
// autosave and atomic writes. It backs the bot settings that must survive
// restarts without pulling in a database.
package datastore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const autoSaveInterval = 10 * time.Second

type DataStore struct {
	mu    sync.RWMutex
	data  map[string]any
	file  string
	dirty bool

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New opens or creates the store file and starts the autosave loop.
func New(filePath string) (*DataStore, error) {
	if filePath == "" {
		return nil, fmt.Errorf("datastore file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("creating datastore directory: %w", err)
	}

	ds := &DataStore{
		data: make(map[string]any),
		file: filePath,
		stop: make(chan struct{}),
	}
	if err := ds.load(); err != nil {
		return nil, err
	}

	ds.wg.Add(1)
	go ds.autoSave()
	return ds, nil
}

func (ds *DataStore) Add(key string, value any) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.data[key] = value
	ds.dirty = true
}

func (ds *DataStore) Get(key string) (any, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	v, ok := ds.data[key]
	return v, ok
}

func (ds *DataStore) Delete(key string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.data, key)
	ds.dirty = true
}

// SaveToFile flushes to disk regardless of the dirty flag.
func (ds *DataStore) SaveToFile() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.save()
}

// Close stops the autosave loop and writes a final snapshot.
func (ds *DataStore) Close() error {
	ds.stopOnce.Do(func() { close(ds.stop) })
	ds.wg.Wait()
	return ds.SaveToFile()
}

func (ds *DataStore) autoSave() {
	defer ds.wg.Done()
	ticker := time.NewTicker(autoSaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ds.stop:
			return
		case <-ticker.C:
			ds.mu.Lock()
			if ds.dirty {
				if err := ds.save(); err != nil {
					log.Warn().Err(err).Str("file", ds.file).Msg("datastore autosave failed")
				}
			}
			ds.mu.Unlock()
		}
	}
}

// save writes the snapshot via a temp file and rename so a crash mid-write
// never truncates the store. Caller holds the write lock.
func (ds *DataStore) save() error {
	payload, err := json.MarshalIndent(ds.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling datastore: %w", err)
	}

	tmp := ds.file + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("writing datastore temp file: %w", err)
	}
	if err := os.Rename(tmp, ds.file); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing datastore file: %w", err)
	}
	ds.dirty = false
	return nil
}

func (ds *DataStore) load() error {
	raw, err := os.ReadFile(ds.file)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading datastore file: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &ds.data); err != nil {
		return fmt.Errorf("parsing datastore file: %w", err)
	}
	return nil
}
