package repo

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/BuzzLyutic/task-dashboard/internal/model"
)

// SQLiteDB is an embedded document database shared by all owners on one host.
type SQLiteDB struct {
	db *sql.DB
}

func OpenSQLite(dbPath string) (*SQLiteDB, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteDB{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteDB) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteDB) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS documents (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	handle TEXT NOT NULL UNIQUE,
	owner TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	due_date TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	priority TEXT NOT NULL DEFAULT 'medium',
	category TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS documents_owner_seq_idx ON documents (owner, seq);`
	_, err := s.db.Exec(ddl)
	return err
}

// Factory returns stores bound to each owner on this database.
func (s *SQLiteDB) Factory() Factory {
	return func(owner string) DocumentStore {
		return s.Store(owner)
	}
}

func (s *SQLiteDB) Store(owner string) *SQLiteStore {
	return &SQLiteStore{db: s.db, owner: owner}
}

type SQLiteStore struct {
	db    *sql.DB
	owner string
}

var _ DocumentStore = (*SQLiteStore)(nil)

func (s *SQLiteStore) ListAll(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT handle, title, description, due_date, status, priority, category
FROM documents WHERE owner = ? ORDER BY seq;`, s.owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var (
			d                          Document
			status, priority, category string
		)
		if err := rows.Scan(&d.Handle, &d.Record.Title, &d.Record.Description, &d.Record.DueDate,
			&status, &priority, &category); err != nil {
			return nil, err
		}
		d.Record.Status = model.Status(status)
		d.Record.Priority = model.Priority(priority)
		d.Record.Category = model.Category(category)
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *SQLiteStore) Create(ctx context.Context, r model.Record) (string, error) {
	handle := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `INSERT INTO documents
(handle, owner, title, description, due_date, status, priority, category, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		handle, s.owner, r.Title, r.Description, r.DueDate,
		string(r.Status), string(r.Priority), string(r.Category), now, now)
	if err != nil {
		return "", err
	}
	return handle, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, handle string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE handle = ? AND owner = ?;`, handle, s.owner)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *SQLiteStore) Update(ctx context.Context, handle string, f model.Fields) error {
	if f.IsEmpty() {
		return nil
	}
	sets, args := updateColumns(f, func(int) string { return "?" }, 1)
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(time.RFC3339), handle, s.owner)

	res, err := s.db.ExecContext(ctx,
		"UPDATE documents SET "+strings.Join(sets, ", ")+" WHERE handle = ? AND owner = ?;", args...)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrorNotFound
	}
	return nil
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
