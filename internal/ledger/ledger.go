// Package ledger records converted documents in a sqlite database so that
// unchanged sources can be skipped on the next run.
package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"lukechampine.com/blake3"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

var ErrNotFound = errors.New("no ledger record")

// Record is the outcome of converting one source file.
type Record struct {
	Source      string
	Hash        string
	Output      string
	Success     bool
	Errors      int
	Warnings    int
	ConvertedAt time.Time
}

// Ledger wraps the sqlite connection. Writes are serialized.
type Ledger struct {
	conn *sql.DB
	mu   sync.Mutex
	path string
}

// Hash returns the hex blake3 digest of a source file's bytes.
func Hash(raw []byte) string {
	sum := blake3.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Open opens or creates the ledger at path.
func Open(path string) (*Ledger, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	conn.SetMaxOpenConns(1)
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Ledger{conn: conn, path: path}, nil
}

func (l *Ledger) Path() string { return l.path }

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.conn.Close()
}

// Lookup returns the record of a source path.
func (l *Ledger) Lookup(ctx context.Context, source string) (Record, error) {
	var (
		r       Record
		success int
		at      int64
	)
	err := l.conn.QueryRowContext(ctx,
		`SELECT source, hash, output, success, errors, warnings, converted_at
		 FROM conversions WHERE source = ?`, source,
	).Scan(&r.Source, &r.Hash, &r.Output, &success, &r.Errors, &r.Warnings, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("querying record: %w", err)
	}
	r.Success = success != 0
	r.ConvertedAt = time.UnixMilli(at)
	return r, nil
}

// Fresh reports whether source was already converted successfully from
// bytes with the given hash.
func (l *Ledger) Fresh(ctx context.Context, source, hash string) (bool, error) {
	r, err := l.Lookup(ctx, source)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return r.Success && r.Hash == hash, nil
}

// Put inserts or replaces the record of r.Source. A zero ConvertedAt is
// stamped with the current time.
func (l *Ledger) Put(ctx context.Context, r Record) error {
	if r.ConvertedAt.IsZero() {
		r.ConvertedAt = time.Now()
	}
	success := 0
	if r.Success {
		success = 1
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.conn.ExecContext(ctx,
		`INSERT INTO conversions (source, hash, output, success, errors, warnings, converted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source) DO UPDATE SET
		   hash = excluded.hash, output = excluded.output, success = excluded.success,
		   errors = excluded.errors, warnings = excluded.warnings,
		   converted_at = excluded.converted_at`,
		r.Source, r.Hash, r.Output, success, r.Errors, r.Warnings, r.ConvertedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("storing record for %s: %w", r.Source, err)
	}
	return nil
}

// Count returns the number of stored records.
func (l *Ledger) Count(ctx context.Context) (int, error) {
	var n int
	if err := l.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}
