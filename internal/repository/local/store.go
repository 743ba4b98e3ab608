// Package local is the on-device backend: a SQLite key-value table where each
// collection is stored as one JSON blob.
package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/and161185/sleep-keeper/internal/crypto/blobcrypto"
	"github.com/and161185/sleep-keeper/internal/errs"
	"github.com/and161185/sleep-keeper/internal/migrate"
)

// Reserved keys used by sealing.
const (
	saltKey  = "blobcrypto/salt"  // stored plain
	checkKey = "blobcrypto/check" // sealed checkValue
)

var checkValue = []byte("sleep-keeper")

// ErrWrongPassphrase is returned by EnableSealing when the passphrase does not
// open the values already sealed in the database.
var ErrWrongPassphrase = errors.New("local store: wrong passphrase")

// Sealer encrypts stored values. The kv key is passed as associated data so a
// blob cannot be moved to another key.
type Sealer interface {
	Seal(plaintext, aad []byte) ([]byte, error)
	Open(blob, aad []byte) ([]byte, error)
}

// Store is a transactional key-value store over the kv table.
type Store struct {
	db     *sql.DB
	sealer Sealer
	now    func() time.Time
}

// Open opens (or creates) the database at path and runs migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	if err := migrate.SQLite(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory(ctx context.Context) (*Store, error) {
	return Open(ctx, ":memory:")
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetSealer enables sealing of values written from now on and requires it
// for values read.
func (s *Store) SetSealer(sl Sealer) {
	s.sealer = sl
}

// EnableSealing derives a key from passphrase and the per-database salt and
// installs the resulting sealer. The first call on a database creates the salt
// and seals every value already stored in plain form. Later calls verify the
// passphrase and fail with ErrWrongPassphrase on mismatch.
func (s *Store) EnableSealing(ctx context.Context, passphrase string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	fresh := false
	salt, err := s.raw(ctx, tx, saltKey)
	if errors.Is(err, errs.ErrNotFound) {
		if salt, err = blobcrypto.Rand(blobcrypto.SaltLen); err != nil {
			return err
		}
		err = s.rawPut(ctx, tx, saltKey, salt)
		fresh = true
	}
	if err != nil {
		return err
	}
	sl, err := blobcrypto.NewFromPassphrase(passphrase, salt)
	if err != nil {
		return err
	}

	if fresh {
		if err = s.resealAll(ctx, tx, sl); err != nil {
			return fmt.Errorf("seal existing values: %w", err)
		}
	}
	check, err := s.raw(ctx, tx, checkKey)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		if check, err = sl.Seal(checkValue, []byte(checkKey)); err != nil {
			return err
		}
		if err = s.rawPut(ctx, tx, checkKey, check); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if _, err = sl.Open(check, []byte(checkKey)); err != nil {
			return ErrWrongPassphrase
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	s.SetSealer(sl)
	return nil
}

// resealAll seals every plain value in place.
func (s *Store) resealAll(ctx context.Context, tx *sql.Tx, sl Sealer) error {
	rows, err := tx.QueryContext(ctx, `SELECT key, value FROM kv WHERE key <> ?`, saltKey)
	if err != nil {
		return err
	}
	type kv struct {
		key   string
		value []byte
	}
	var plain []kv
	for rows.Next() {
		var r kv
		if err := rows.Scan(&r.key, &r.value); err != nil {
			rows.Close()
			return err
		}
		plain = append(plain, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, r := range plain {
		sealed, err := sl.Seal(r.value, []byte(r.key))
		if err != nil {
			return err
		}
		if err := s.rawPut(ctx, tx, r.key, sealed); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the value stored under key or errs.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.raw(ctx, s.db, key)
	if err != nil {
		return nil, err
	}
	return s.open(key, v)
}

// Put stores value under key, replacing any previous value.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	v, err := s.seal(key, value)
	if err != nil {
		return err
	}
	return s.rawPut(ctx, s.db, key, v)
}

// Delete removes key. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

// Update reads key, passes the current value (nil if absent) to fn and writes
// fn's result in the same transaction. A nil result deletes the key. An error
// from fn aborts the transaction and is returned unchanged.
func (s *Store) Update(ctx context.Context, key string, fn func(cur []byte) ([]byte, error)) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	cur, err := s.raw(ctx, tx, key)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		cur = nil
	case err != nil:
		return err
	default:
		if cur, err = s.open(key, cur); err != nil {
			return err
		}
	}

	next, err := fn(cur)
	if err != nil {
		return err
	}

	if next == nil {
		if _, err = tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
			return err
		}
	} else {
		var sealed []byte
		if sealed, err = s.seal(key, next); err != nil {
			return err
		}
		if err = s.rawPut(ctx, tx, key, sealed); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) raw(ctx context.Context, q querier, key string) ([]byte, error) {
	var v []byte
	err := q.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	return v, err
}

func (s *Store) rawPut(ctx context.Context, q querier, key string, value []byte) error {
	const stmt = `
INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := q.ExecContext(ctx, stmt, key, value, s.now().UTC().Format(time.RFC3339Nano))
	return err
}

func (s *Store) seal(key string, v []byte) ([]byte, error) {
	if s.sealer == nil {
		return v, nil
	}
	return s.sealer.Seal(v, []byte(key))
}

func (s *Store) open(key string, v []byte) ([]byte, error) {
	if s.sealer == nil {
		return v, nil
	}
	out, err := s.sealer.Open(v, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("open sealed value %q (wrong passphrase or value written unsealed): %w", key, err)
	}
	return out, nil
}
