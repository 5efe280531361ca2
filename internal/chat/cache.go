package chat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// CacheFileName is the file, inside the client data directory, that holds the
// private chat ids.
const CacheFileName = "private_chat_ids.json"

// FileCache is a PairCache persisted as a single JSON object. The file is read
// once when the cache is opened and rewritten on every Put. Entries never
// expire.
type FileCache struct {
	path string

	mu  sync.RWMutex
	ids map[string]int64
}

func OpenFileCache(path string) (*FileCache, error) {
	c := &FileCache{path: path, ids: make(map[string]int64)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading private chat cache: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return c, nil
	}

	if err := json.Unmarshal(data, &c.ids); err != nil {
		return nil, fmt.Errorf("decoding private chat cache %s: %w", path, err)
	}
	if c.ids == nil {
		c.ids = make(map[string]int64)
	}
	return c, nil
}

func (c *FileCache) Get(key string) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.ids[key]
	return id, ok
}

func (c *FileCache) Put(key string, chatID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ids[key] = chatID
	data, err := json.Marshal(c.ids)
	if err != nil {
		return fmt.Errorf("encoding private chat cache: %w", err)
	}
	return writeFileAtomic(c.path, data)
}

func (c *FileCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ids)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".private_chat_ids-*")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing cache: %w", err)
	}
	return nil
}
