package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/roach88/ctrlgen/internal/ir"
)

// JSONStore keeps records as one indented JSON array in a single file.
// Every change rewrites the whole document through a temporary file and a
// rename, so readers never observe a half-written array.
type JSONStore struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewJSONStore returns a store backed by the document at path. The file is
// created on first write.
func NewJSONStore(path string, logger *zap.Logger) *JSONStore {
	return &JSONStore{path: path, logger: nopIfNil(logger)}
}

// Path returns the document location.
func (s *JSONStore) Path() string {
	return s.path
}

func (s *JSONStore) List(ctx context.Context) ([]ir.ControlSignal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load()
	if err != nil {
		if Degraded(err) {
			s.logger.Warn("record store unreadable, treating as empty",
				zap.String("path", s.path), zap.Error(err))
			return []ir.ControlSignal{}, err
		}
		return nil, err
	}
	sortRecords(recs)
	return recs, nil
}

func (s *JSONStore) Append(ctx context.Context, rec ir.ControlSignal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load()
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	recs = append(recs, rec)
	if err := s.save(recs); err != nil {
		return err
	}
	s.logger.Debug("record appended",
		zap.String("signal_id", rec.SignalID),
		zap.String("name", rec.Name),
		zap.Int("records", len(recs)))
	return nil
}

func (s *JSONStore) Delete(ctx context.Context, signalID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load()
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}

	kept := recs[:0]
	for _, rec := range recs {
		if rec.SignalID != signalID {
			kept = append(kept, rec)
		}
	}
	removed := len(recs) - len(kept)
	if removed == 0 {
		return false, nil
	}
	if err := s.save(kept); err != nil {
		return false, err
	}
	s.logger.Debug("record deleted",
		zap.String("signal_id", signalID),
		zap.Int("removed", removed))
	return true, nil
}

func (s *JSONStore) Close() error {
	return nil
}

// load reads the document in file order.
func (s *JSONStore) load() ([]ir.ControlSignal, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []ir.ControlSignal{}, nil
		}
		if errors.Is(err, os.ErrPermission) {
			return nil, fmt.Errorf("%w: read %s: %w: %w", ErrReadFailed, s.path, ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("%w: read %s: %w", ErrReadFailed, s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []ir.ControlSignal{}, nil
	}

	var recs []ir.ControlSignal
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptStore, s.path, err)
	}
	if recs == nil {
		recs = []ir.ControlSignal{}
	}
	return recs, nil
}

func (s *JSONStore) save(recs []ir.ControlSignal) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(recs); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return classifyWriteError("create "+dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".records-*")
	if err != nil {
		return classifyWriteError("write "+s.path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return classifyWriteError("write "+s.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return classifyWriteError("write "+s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return classifyWriteError("write "+s.path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return classifyWriteError("write "+s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return classifyWriteError("write "+s.path, err)
	}
	return nil
}
