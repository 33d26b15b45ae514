package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/roach88/ctrlgen/internal/ir"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - signals table
const currentSchemaVersion = 1

// SQLiteStore keeps one row per record in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSQLite creates or opens the database at path and applies pragmas and
// the schema. It is safe to call on an existing database.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, classifyWriteError("failed to connect to database", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db, logger: nopIfNil(logger)}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) List(ctx context.Context) ([]ir.ControlSignal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record FROM signals ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	recs := []ir.ControlSignal{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("list records: %w", err)
		}
		var rec ir.ControlSignal
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			err = fmt.Errorf("%w: %w", ErrCorruptStore, err)
			s.logger.Warn("record store unreadable, treating as empty", zap.Error(err))
			return []ir.ControlSignal{}, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	sortRecords(recs)
	return recs, nil
}

func (s *SQLiteStore) Append(ctx context.Context, rec ir.ControlSignal) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO signals
		(signal_id, name, encoding_type, width, created_at, record)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		rec.SignalID,
		rec.Name,
		rec.EncodingType.String(),
		rec.Width,
		rec.CreatedAt,
		string(doc),
	)
	if err != nil {
		return classifyDBError("append record", err)
	}

	s.logger.Debug("record appended",
		zap.String("signal_id", rec.SignalID),
		zap.String("name", rec.Name))
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, signalID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM signals WHERE signal_id = ?`, signalID)
	if err != nil {
		return false, classifyDBError("delete record", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	if n > 0 {
		s.logger.Debug("record deleted",
			zap.String("signal_id", signalID),
			zap.Int64("removed", n))
	}
	return n > 0, nil
}

// classifyDBError maps read-only database failures to ErrPermissionDenied.
func classifyDBError(op string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) &&
		(sqliteErr.Code == sqlite3.ErrReadonly || sqliteErr.Code == sqlite3.ErrPerm || sqliteErr.Code == sqlite3.ErrCantOpen) {
		return fmt.Errorf("%s: %w: %w", op, ErrPermissionDenied, err)
	}
	return classifyWriteError(op, err)
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and records the schema
// version. A database written by a newer schema is rejected.
func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
func (s *SQLiteStore) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
