package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/task-dashboard/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
)

// PostgresStore keeps one owner's documents in the documents table.
type PostgresStore struct {
	pool  *pgxpool.Pool
	owner string
}

var _ DocumentStore = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool, owner string) *PostgresStore {
	return &PostgresStore{
		pool:  pool,
		owner: owner,
	}
}

// PostgresFactory returns a Factory sharing one connection pool between owners.
func PostgresFactory(pool *pgxpool.Pool) Factory {
	return func(owner string) DocumentStore {
		return NewPostgresStore(pool, owner)
	}
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]Document, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT handle::text, title, description, due_date, status, priority, category
		FROM documents
		WHERE owner = $1
		ORDER BY seq
	`, s.owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.Handle, &d.Record.Title, &d.Record.Description, &d.Record.DueDate,
			&d.Record.Status, &d.Record.Priority, &d.Record.Category); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) Create(ctx context.Context, r model.Record) (string, error) {
	handle := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (handle, owner, title, description, due_date, status, priority, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, handle, s.owner, r.Title, r.Description, r.DueDate, string(r.Status), string(r.Priority), string(r.Category))
	if err != nil {
		return "", s.mapError(err)
	}
	return handle.String(), nil
}

func (s *PostgresStore) Delete(ctx context.Context, handle string) error {
	id, err := uuid.Parse(handle)
	if err != nil {
		return ErrorNotFound
	}
	cmd, err := s.pool.Exec(ctx, "DELETE FROM documents WHERE handle = $1 AND owner = $2", id, s.owner)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, handle string, f model.Fields) error {
	id, err := uuid.Parse(handle)
	if err != nil {
		return ErrorNotFound
	}
	if f.IsEmpty() {
		return nil
	}

	sets, args := updateColumns(f, func(n int) string { return fmt.Sprintf("$%d", n) }, 3)
	query := "UPDATE documents SET " + strings.Join(sets, ", ") +
		", updated_at = now() WHERE handle = $1 AND owner = $2"

	cmd, err := s.pool.Exec(ctx, query, append([]any{id, s.owner}, args...)...)
	if err != nil {
		return s.mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

// updateColumns builds "col = <placeholder>" pairs for the non-nil fields.
// Placeholders are numbered from first.
func updateColumns(f model.Fields, placeholder func(int) string, first int) ([]string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		sets = append(sets, col+" = "+placeholder(first+len(args)))
		args = append(args, v)
	}
	if f.Title != nil {
		add("title", *f.Title)
	}
	if f.Description != nil {
		add("description", *f.Description)
	}
	if f.DueDate != nil {
		add("due_date", *f.DueDate)
	}
	if f.Status != nil {
		add("status", string(*f.Status))
	}
	if f.Priority != nil {
		add("priority", string(*f.Priority))
	}
	if f.Category != nil {
		add("category", string(*f.Category))
	}
	return sets, args
}

func (s *PostgresStore) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrorNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // unique_violation
			return ErrorConflict
		}
	}
	return err
}
