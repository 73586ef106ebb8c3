package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/asr-bias/ordered"
)

func sampleDoc() *ordered.Map[*ordered.Map[float64]] {
	doc := ordered.New[*ordered.Map[float64]]()
	doc.GetOrInit("Whisper", ordered.New[float64]).Set("old", 0.25)
	doc.GetOrInit("NoAug", ordered.New[float64]).Set("young", 0.5)
	return doc
}

func TestSessionDir(t *testing.T) {
	root := t.TempDir()
	sid, dir, err := SessionDir(root, time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "session_20240506-070809", sid)
	assert.DirExists(t, dir)
	assert.Equal(t, filepath.Join(root, sid), dir)
}

func TestFileStoreJSON(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), "json")
	require.NoError(t, err)
	require.NoError(t, s.Put("weighted_performance_bias", sampleDoc()))

	b, err := os.ReadFile(s.Path("weighted_performance_bias"))
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"Whisper\": {\n        \"old\": 0.25\n    },\n    \"NoAug\": {\n        \"young\": 0.5\n    }\n}\n", string(b))
}

func TestFileStoreYAML(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), "yaml")
	require.NoError(t, err)
	require.NoError(t, s.Put("wpb", sampleDoc()))

	b, err := os.ReadFile(s.Path("wpb"))
	require.NoError(t, err)
	assert.Equal(t, "Whisper:\n    old: 0.25\nNoAug:\n    young: 0.5\n", string(b))
}

func TestFileStoreRejectsFormat(t *testing.T) {
	_, err := NewFileStore(t.TempDir(), "xml")
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "results.db"), "run-1")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put("wpb", sampleDoc()))
	require.NoError(t, s.Put("manifest", map[string]string{"run_id": "run-1"}))
	require.NoError(t, s.Put("wpb", map[string]int{"replaced": 1}))

	body, err := s.Get("run-1", "wpb")
	require.NoError(t, err)
	var got map[string]int
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, map[string]int{"replaced": 1}, got)

	names, err := s.Names("run-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"manifest", "wpb"}, names)

	_, err = s.Get("run-2", "wpb")
	assert.Error(t, err)
}

type failingStore struct{ closed bool }

func (f *failingStore) Put(string, any) error { return errors.New("disk full") }
func (f *failingStore) Close() error          { f.closed = true; return nil }

func TestMulti(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), "json")
	require.NoError(t, err)
	bad := &failingStore{}

	m := Multi{fs, bad}
	err = m.Put("wpb", sampleDoc())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.FileExists(t, fs.Path("wpb"))

	require.NoError(t, m.Close())
	assert.True(t, bad.closed)
}

func TestMultiDiscard(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "session_x")
	fs, err := NewFileStore(dir, "json")
	require.NoError(t, err)
	db, err := NewSQLiteStore(filepath.Join(t.TempDir(), "results.db"), "run-1")
	require.NoError(t, err)
	defer db.Close()

	m := Multi{fs, db, &failingStore{}}
	require.Error(t, m.Put("wpb", sampleDoc()))
	require.FileExists(t, fs.Path("wpb"))

	require.NoError(t, m.Discard())
	assert.NoDirExists(t, dir)
	names, err := db.Names("run-1")
	require.NoError(t, err)
	assert.Empty(t, names)
}
