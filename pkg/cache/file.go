package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const fileExt = ".json"

// FileCache keeps one JSON file per entry under a directory, fanned out
// into subdirectories by the first byte of the key hash. Writes go through a
// temp file and a rename, so concurrent readers never see a partial entry.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache opens a cache rooted at dir, creating it if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// Dir returns the cache root.
func (c *FileCache) Dir() string { return c.dir }

type fileEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func (e fileEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Get returns the entry for key. Corrupt, expired and hash-colliding files
// are misses; the first two are removed on the way.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}

	var e fileEntry
	if json.Unmarshal(raw, &e) != nil || e.expired(c.now()) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if e.Key != key {
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set writes data under key. A ttl of 0 never expires.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	e := fileEntry{Key: key, Data: data}
	if ttl > 0 {
		e.ExpiresAt = c.now().Add(ttl)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes key; a missing key is fine.
func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Stats counts entry files and their size on disk.
func (c *FileCache) Stats() (entries int, bytes int64, err error) {
	err = c.walk(func(_ string, info fs.FileInfo) error {
		entries++
		bytes += info.Size()
		return nil
	})
	return entries, bytes, err
}

// Prune removes expired and unreadable entries and reports how many went.
func (c *FileCache) Prune(ctx context.Context) (int, error) {
	now, removed := c.now(), 0
	err := c.walk(func(path string, _ fs.FileInfo) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var e fileEntry
		if json.Unmarshal(raw, &e) == nil && !e.expired(now) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		removed++
		return nil
	})
	return removed, err
}

// Clear empties the cache root but keeps the directory.
func (c *FileCache) Clear(ctx context.Context) error {
	items, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.RemoveAll(filepath.Join(c.dir, item.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (c *FileCache) Close() error { return nil }

func (c *FileCache) walk(fn func(path string, info fs.FileInfo) error) error {
	return filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != fileExt {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return fn(path, info)
	})
}

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+fileExt)
}

var _ Cache = (*FileCache)(nil)
