// Package store persists result documents, one write per document name.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Store accepts named result documents.
type Store interface {
	Put(name string, doc any) error
	Close() error
}

// SessionDir creates <root>/session_<timestamp> and returns its id and path.
func SessionDir(root string, now time.Time) (string, string, error) {
	sid := "session_" + now.Format("20060102-150405")
	dir := filepath.Join(root, sid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	return sid, dir, nil
}

// Discarder is implemented by stores that can drop everything a failed run wrote.
type Discarder interface {
	Discard() error
}

// FileStore writes each document to <dir>/<name>.<format>.
type FileStore struct {
	dir    string
	format string
}

func NewFileStore(dir, format string) (*FileStore, error) {
	switch format {
	case "json", "yaml":
	default:
		return nil, fmt.Errorf("store: unsupported format %q", format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir, format: format}, nil
}

// Path is where a document of the given name is written.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name+"."+s.format)
}

func (s *FileStore) Put(name string, doc any) error {
	if s.format == "yaml" {
		return writeYAML(s.Path(name), doc)
	}
	return writeJSON(s.Path(name), doc)
}

func (s *FileStore) Close() error { return nil }

// Discard removes the store directory and its documents.
func (s *FileStore) Discard() error { return os.RemoveAll(s.dir) }

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}

func writeYAML(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(4)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Multi writes every document to all of its stores.
type Multi []Store

func (m Multi) Put(name string, doc any) error {
	for _, s := range m {
		if err := s.Put(name, doc); err != nil {
			return fmt.Errorf("store %s: %w", name, err)
		}
	}
	return nil
}

func (m Multi) Discard() error {
	var errs []error
	for _, s := range m {
		if d, ok := s.(Discarder); ok {
			errs = append(errs, d.Discard())
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
