package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/roach88/ctrlgen/internal/ir"
)

func TestJSONStoreDocumentFormat(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "records.json")
	s := NewJSONStore(path, nil)

	rec := record("Sig", "2024-01-01 00:00:00", "20240101_000000_000001")
	rec.Values[0].Name = "Ä<b>"
	rec.Values[0].Instructions = []string{"add"}
	require.NoError(t, s.Append(ctx, rec))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasPrefix(text, "[\n  {\n    \"name\": \"Sig\",\n    \"encoding_type\": \"Binary\","), text)
	assert.Contains(t, text, "Ä")
	assert.Contains(t, text, "\"values\": {\n      ")

	var raw []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Len(t, raw[0], 7)
}

func TestJSONStorePreservesFileOrder(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "records.json")
	s := NewJSONStore(path, nil)

	require.NoError(t, s.Append(ctx, record("New", "2025-01-01 00:00:00", "new")))
	require.NoError(t, s.Append(ctx, record("Old", "2024-01-01 00:00:00", "old")))

	var onDisk []ir.ControlSignal
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, []string{"new", "old"}, ids(onDisk))
}

func TestJSONStoreEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))

	recs, err := NewJSONStore(path, nil).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestJSONStoreCorruptDocument(t *testing.T) {
	tests := map[string]string{
		"not json":       "{{{",
		"object":         `{"name": "x"}`,
		"missing fields": `[{"name": "x"}]`,
		"unknown field":  `[{"name":"X","encoding_type":"OneHot","width":0,"values":{},"created_at":"","instructions":[],"signal_id":"1","extra":1}]`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "records.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			core, logs := observer.New(zap.WarnLevel)
			s := NewJSONStore(path, zap.New(core))

			recs, err := s.List(ctx)
			assert.ErrorIs(t, err, ErrCorruptStore)
			assert.NotNil(t, recs)
			assert.Empty(t, recs)
			assert.Equal(t, 1, logs.Len())

			err = s.Append(ctx, record("A", "2024-01-01 00:00:00", "a"))
			assert.ErrorIs(t, err, ErrCorruptStore)

			_, err = s.Delete(ctx, "a")
			assert.ErrorIs(t, err, ErrCorruptStore)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, content, string(data))
		})
	}
}

func TestJSONStoreReadFailureListsEmpty(t *testing.T) {
	ctx := context.Background()
	// A directory at the document path fails the read for any user.
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.Mkdir(path, 0o755))

	core, logs := observer.New(zap.WarnLevel)
	s := NewJSONStore(path, zap.New(core))

	recs, err := s.List(ctx)
	assert.ErrorIs(t, err, ErrReadFailed)
	assert.True(t, Degraded(err))
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
	assert.Equal(t, 1, logs.Len())

	err = s.Append(ctx, record("A", "2024-01-01 00:00:00", "a"))
	assert.ErrorIs(t, err, ErrReadFailed)

	_, err = s.Delete(ctx, "a")
	assert.ErrorIs(t, err, ErrReadFailed)
}

func TestDegraded(t *testing.T) {
	assert.True(t, Degraded(ErrCorruptStore))
	assert.True(t, Degraded(fmt.Errorf("list: %w", ErrReadFailed)))
	assert.False(t, Degraded(ErrNotFound))
	assert.False(t, Degraded(nil))
}

func TestJSONStoreDeleteMissingDoesNotCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	removed, err := NewJSONStore(path, nil).Delete(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestJSONStorePermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced")
	}
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { os.Chmod(dir, 0o755) })

	s := NewJSONStore(filepath.Join(dir, "records.json"), nil)
	err := s.Append(context.Background(), record("A", "2024-01-01 00:00:00", "a"))
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestJSONStoreCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewJSONStore(filepath.Join(t.TempDir(), "records.json"), nil)
	_, err := s.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Append(ctx, record("A", "2024-01-01 00:00:00", "a")), context.Canceled)
}
