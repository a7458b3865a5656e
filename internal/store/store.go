// Package store handles SQLite persistence of curated quiz pools.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/suuji/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

var (
	// ErrPoolNotFound is returned when a named pool does not exist.
	ErrPoolNotFound = errors.New("pool not found")
	// ErrInvalidName is returned for blank pool names.
	ErrInvalidName = errors.New("pool name cannot be empty")
)

// Store wraps SQLite access for pool data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS pools (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS pool_values (
			pool_id INTEGER NOT NULL,
			value INTEGER NOT NULL,
			PRIMARY KEY (pool_id, value)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_pool_values_pool ON pool_values(pool_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}

// EnsurePool creates the pool if needed and returns its id.
func (s *Store) EnsurePool(ctx context.Context, name string) (int64, error) {
	name, err := normalizeName(name)
	if err != nil {
		return 0, err
	}
	return ensurePool(ctx, s.db, name)
}

func ensurePool(ctx context.Context, q querier, name string) (int64, error) {
	if _, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO pools (name, created_at) VALUES (?, ?)`,
		name, time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return 0, err
	}
	return poolID(ctx, q, name)
}

func poolID(ctx context.Context, q querier, name string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM pools WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrPoolNotFound, name)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// AddValues inserts values into the named pool, creating it if needed. It returns
// how many values were new.
func (s *Store) AddValues(ctx context.Context, name string, values []int) (added int, err error) {
	name, err = normalizeName(name)
	if err != nil {
		return 0, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	id, err := ensurePool(ctx, tx, name)
	if err != nil {
		return 0, err
	}
	added, err = execEach(ctx, tx, `INSERT OR IGNORE INTO pool_values (pool_id, value) VALUES (?, ?)`, id, values)
	if err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// RemoveValues deletes values from the named pool and returns how many were present.
func (s *Store) RemoveValues(ctx context.Context, name string, values []int) (removed int, err error) {
	name, err = normalizeName(name)
	if err != nil {
		return 0, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	id, err := poolID(ctx, tx, name)
	if err != nil {
		return 0, err
	}
	removed, err = execEach(ctx, tx, `DELETE FROM pool_values WHERE pool_id = ? AND value = ?`, id, values)
	if err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return removed, nil
}

func execEach(ctx context.Context, tx *sql.Tx, query string, poolID int64, values []int) (int, error) {
	if len(values) == 0 {
		return 0, nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	total := 0
	for _, v := range values {
		res, err := stmt.ExecContext(ctx, poolID, v)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		total += int(n)
	}
	return total, nil
}

// ListValues returns the values of the named pool in ascending order.
func (s *Store) ListValues(ctx context.Context, name string) ([]int, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	id, err := poolID(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT value FROM pool_values WHERE pool_id = ? ORDER BY value ASC`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	values := []int{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

// LoadPool returns the named pool with its values.
func (s *Store) LoadPool(ctx context.Context, name string) (model.Pool, error) {
	values, err := s.ListValues(ctx, name)
	if err != nil {
		return model.Pool{}, err
	}
	return model.Pool{Name: strings.TrimSpace(name), Values: values}, nil
}

// ListPools returns every pool with its value count, ordered by name.
func (s *Store) ListPools(ctx context.Context) ([]model.PoolSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT p.name, COUNT(v.value)
		FROM pools p
		LEFT JOIN pool_values v ON v.pool_id = p.id
		GROUP BY p.id
		ORDER BY p.name ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var pools []model.PoolSummary
	for rows.Next() {
		var p model.PoolSummary
		if err := rows.Scan(&p.Name, &p.Count); err != nil {
			return nil, err
		}
		pools = append(pools, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pools, nil
}

// DeletePool removes the named pool and its values.
func (s *Store) DeletePool(ctx context.Context, name string) (err error) {
	name, err = normalizeName(name)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	id, err := poolID(ctx, tx, name)
	if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM pool_values WHERE pool_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM pools WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// SeedDefault fills the named pool with values when it is missing or empty. It
// reports whether anything was written.
func (s *Store) SeedDefault(ctx context.Context, name string, values []int) (bool, error) {
	existing, err := s.ListValues(ctx, name)
	if err != nil && !errors.Is(err, ErrPoolNotFound) {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	if _, err := s.AddValues(ctx, name, values); err != nil {
		return false, err
	}
	return true, nil
}
