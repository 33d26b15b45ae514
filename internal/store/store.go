package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/roach88/ctrlgen/internal/ir"
)

var (
	ErrCorruptStore     = errors.New("record store is corrupt")
	ErrReadFailed       = errors.New("record store could not be read")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("record not found")
	ErrUnknownDriver    = errors.New("unknown store driver")
)

// Driver names accepted by Open.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Store is the durable collection of committed signals.
type Store interface {
	// List returns all records, newest first.
	List(ctx context.Context) ([]ir.ControlSignal, error)
	// Append adds one record.
	Append(ctx context.Context, rec ir.ControlSignal) error
	// Delete removes every record with signalID and reports whether any was removed.
	Delete(ctx context.Context, signalID string) (bool, error)
	Close() error
}

// Degraded reports whether err came from a List that fell back to an empty
// result: the store exists but could not be read or decoded.
func Degraded(err error) bool {
	return errors.Is(err, ErrCorruptStore) || errors.Is(err, ErrReadFailed)
}

// Open returns the backend named by driver, storing at path.
func Open(driver, path string, logger *zap.Logger) (Store, error) {
	switch driver {
	case DriverJSON, "":
		return NewJSONStore(path, logger), nil
	case DriverSQLite:
		return OpenSQLite(path, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// Find returns the record with signalID.
func Find(ctx context.Context, s Store, signalID string) (ir.ControlSignal, error) {
	recs, err := s.List(ctx)
	if err != nil {
		return ir.ControlSignal{}, err
	}
	for _, rec := range recs {
		if rec.SignalID == signalID {
			return rec, nil
		}
	}
	return ir.ControlSignal{}, fmt.Errorf("%w: %s", ErrNotFound, signalID)
}

// sortRecords orders recs newest first. Unparseable created_at values go
// last; ties break on signal_id descending.
func sortRecords(recs []ir.ControlSignal) {
	type key struct {
		t  int64
		ok bool
	}
	keys := make(map[string]key, len(recs))
	keyOf := func(r ir.ControlSignal) key {
		if k, hit := keys[r.CreatedAt]; hit {
			return k
		}
		t, ok := r.CreatedTime()
		k := key{ok: ok}
		if ok {
			k.t = t.Unix()
		}
		keys[r.CreatedAt] = k
		return k
	}

	sort.SliceStable(recs, func(i, j int) bool {
		a, b := keyOf(recs[i]), keyOf(recs[j])
		if a.ok != b.ok {
			return a.ok
		}
		if a.ok && a.t != b.t {
			return a.t > b.t
		}
		return recs[i].SignalID > recs[j].SignalID
	})
}

// classifyWriteError marks filesystem permission failures.
func classifyWriteError(op string, err error) error {
	if errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%s: %w: %w", op, ErrPermissionDenied, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
