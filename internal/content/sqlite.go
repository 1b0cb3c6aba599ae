package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"ProjectKiosk/internal/dialogue"
)

// SQLiteStore keeps scenario documents in a SQLite database so content can
// be updated without rebuilding the kiosk.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the content database and runs migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("content: mkdir %s: %w", filepath.Dir(path), err)
	}
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("content: open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("content: migrate: %w", err)
	}
	return s, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return err
	}
	var version int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version); err != nil {
		return err
	}

	if version < 1 {
		if _, err := s.db.Exec(`
			CREATE TABLE IF NOT EXISTS scenarios (
				id         TEXT PRIMARY KEY,
				format     TEXT NOT NULL,
				body       BLOB NOT NULL,
				updated_at TEXT NOT NULL DEFAULT (datetime('now'))
			);
		`); err != nil {
			return err
		}
		if _, err := s.db.Exec(`INSERT INTO schema_version (version) VALUES (1)`); err != nil {
			return err
		}
	}
	return nil
}

// Put validates and stores a document, replacing any previous version.
func (s *SQLiteStore) Put(ctx context.Context, id string, format Format, body []byte) error {
	rec, err := Decode(id, format, body)
	if err != nil {
		return err
	}
	if _, err := rec.Normalize(); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scenarios (id, format, body, updated_at) VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET format = excluded.format, body = excluded.body, updated_at = excluded.updated_at`,
		id, string(format), body)
	if err != nil {
		return fmt.Errorf("content: put %s: %w", id, err)
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, id string) (*dialogue.Scenario, error) {
	var (
		format string
		body   []byte
	)
	err := s.db.QueryRowContext(ctx, `SELECT format, body FROM scenarios WHERE id = ?`, id).Scan(&format, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("content: load %s: %w", id, err)
	}
	rec, err := Decode(id, Format(format), body)
	if err != nil {
		return nil, err
	}
	return rec.Normalize()
}

// Delete removes a document. Deleting a missing id is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ?`, id)
	return err
}

// IDs lists stored scenario ids, sorted.
func (s *SQLiteStore) IDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM scenarios ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Import copies every document of src into the database. Documents that fail
// validation are skipped and reported in the returned error list.
func (s *SQLiteStore) Import(ctx context.Context, src *FileStore) (int, []error) {
	ids, err := src.IDs()
	if err != nil {
		return 0, []error{err}
	}
	var (
		n    int
		errs []error
	)
	for _, id := range ids {
		name, data, err := src.read(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		format, err := FormatFor(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := s.Put(ctx, id, format, data); err != nil {
			errs = append(errs, err)
			continue
		}
		n++
	}
	log.Printf("[content] imported %d of %d scenarios", n, len(ids))
	return n, errs
}
