package panel

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"hls-restream-panel/internal/platform/fsutil"
)

// StoreConfig locates the configuration document on disk.
type StoreConfig struct {
	// Path is the canonical document path.
	Path string
	// TempSuffix names the sibling file used for atomic replacement.
	// Defaults to fsutil.DefaultTempSuffix.
	TempSuffix string
}

// Store is the durable JSON-backed list of stream records.
// All reads and writes of the document pass through it and are serialized by
// its lock; every write replaces the document atomically.
type Store struct {
	mu  sync.Mutex
	cfg StoreConfig
}

// NewStore returns a Store for the given config. The backing file is created
// lazily on first access.
func NewStore(cfg StoreConfig) *Store {
	if cfg.TempSuffix == "" {
		cfg.TempSuffix = fsutil.DefaultTempSuffix
	}
	return &Store{cfg: cfg}
}

// Path returns the canonical document path.
func (s *Store) Path() string {
	return s.cfg.Path
}

// Load returns the current list of records. If the document does not exist it
// is initialised with an empty list first. The returned slice is never nil.
func (s *Store) Load() ([]StreamRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Save replaces the whole document with {"streams": records}.
func (s *Store) Save(records []StreamRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(records)
}

// Update loads the records, applies fn and saves its result, all under the
// store lock so concurrent read-modify-write cycles cannot interleave.
// If fn returns an error nothing is written.
func (s *Store) Update(fn func(records []StreamRecord) ([]StreamRecord, error)) ([]StreamRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	next, err := fn(records)
	if err != nil {
		return nil, err
	}
	if err := s.saveLocked(next); err != nil {
		return nil, err
	}
	if next == nil {
		next = []StreamRecord{}
	}
	return next, nil
}

// Raw returns the document bytes exactly as stored.
func (s *Store) Raw() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLocked(); err != nil {
		return nil, err
	}
	return os.ReadFile(s.cfg.Path)
}

func (s *Store) loadLocked() ([]StreamRecord, error) {
	if err := s.ensureLocked(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptStore, s.cfg.Path, err)
	}
	if doc.Streams == nil {
		doc.Streams = []StreamRecord{}
	}
	return doc.Streams, nil
}

func (s *Store) saveLocked(records []StreamRecord) error {
	if records == nil {
		records = []StreamRecord{}
	}
	data, err := encodeDocument(Document{Streams: records})
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if err := fsutil.WriteFileAtomic(s.cfg.Path, s.cfg.TempSuffix, data, 0o644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

// ensureLocked creates the document with an empty list if it does not exist.
func (s *Store) ensureLocked() error {
	_, err := os.Stat(s.cfg.Path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat store: %w", err)
	}
	return s.saveLocked(nil)
}

// encodeDocument renders the document with 4-space indentation and without
// HTML escaping so URLs stay readable in the file.
func encodeDocument(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
