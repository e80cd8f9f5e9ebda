package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// File stores one gzip-compressed JSON document per user under a data
// directory. Every Set rewrites the user's whole document through a temp
// file and rename, so partially written files never replace good ones.
type File struct {
	dir string
	mu  sync.Mutex
}

// NewFile creates the store rooted at dir, creating it if needed.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, fmt.Errorf("file prefs: dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file prefs: create dir: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) userPath(userID string) string {
	return filepath.Join(f.dir, userID+".json.gz")
}

// Get returns the stored value and whether the key was present.
func (f *File) Get(ctx context.Context, userID, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.readDoc(userID)
	if err != nil {
		return nil, false, err
	}
	value, ok := doc[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(value), true, nil
}

// Set stores the value, overwriting any previous entry. Values must be valid
// JSON so the user document stays a JSON object.
func (f *File) Set(ctx context.Context, userID, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("file prefs: value for %q is not valid JSON", key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.readDoc(userID)
	if err != nil {
		return err
	}
	doc[key] = json.RawMessage(value)
	return f.writeDoc(userID, doc)
}

// Delete removes the entry if present.
func (f *File) Delete(ctx context.Context, userID, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.readDoc(userID)
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return f.writeDoc(userID, doc)
}

// Close is a no-op for the file driver.
func (f *File) Close() error {
	return nil
}

func (f *File) readDoc(userID string) (map[string]json.RawMessage, error) {
	file, err := os.Open(f.userPath(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]json.RawMessage), nil
		}
		return nil, fmt.Errorf("file prefs: open: %w", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("file prefs: gzip: %w", err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("file prefs: read: %w", err)
	}

	doc := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("file prefs: decode %s: %w", userID, err)
	}
	return doc, nil
}

func (f *File) writeDoc(userID string, doc map[string]json.RawMessage) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("file prefs: encode: %w", err)
	}

	path := f.userPath(userID)
	tmp := path + ".tmp"

	file, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("file prefs: create tmp: %w", err)
	}

	gz := gzip.NewWriter(file)
	if _, err := gz.Write(data); err != nil {
		gz.Close()
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("file prefs: write: %w", err)
	}
	if err := gz.Close(); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("file prefs: flush: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("file prefs: close: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("file prefs: rename: %w", err)
	}
	return nil
}
