// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/BuzzLyutic/task-dashboard/internal/model"
)

const (
	MigrateUp   = "up"
	MigrateDown = "down"
)

// MigrationsDir is the repository's migrations directory.
func MigrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	return filepath.Join(projectRoot, "migrations")
}

// SetupTestDB starts a disposable PostgreSQL and migrates it up.
// The test is skipped when -short is set or no container runtime is available.
func SetupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	cleanup := func() {
		pool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate container: %v", err)
		}
	}

	if err := pool.Ping(ctx); err != nil {
		cleanup()
		t.Fatalf("Failed to ping database: %v", err)
	}
	if err := Migrate(ctx, pool, MigrateUp); err != nil {
		cleanup()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return pool, cleanup
}

// Migrate runs every *.up.sql file in name order, or every *.down.sql file in
// reverse order.
func Migrate(ctx context.Context, pool *pgxpool.Pool, direction string) error {
	if direction != MigrateUp && direction != MigrateDown {
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	files, err := filepath.Glob(filepath.Join(MigrationsDir(), "*."+direction+".sql"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s migrations in %s", direction, MigrationsDir())
	}
	slices.Sort(files)
	if direction == MigrateDown {
		slices.Reverse(files)
	}

	for _, f := range files {
		sql, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(f), err)
		}
	}
	return nil
}

// SeedDocuments inserts records for owner directly, bypassing any store, and
// returns their handles in insertion order.
func SeedDocuments(t *testing.T, pool *pgxpool.Pool, owner string, records ...model.Record) []string {
	t.Helper()

	handles := make([]string, 0, len(records))
	for _, r := range records {
		h := uuid.New()
		_, err := pool.Exec(context.Background(), `
			INSERT INTO documents (handle, owner, title, description, due_date, status, priority, category)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			h, owner, r.Title, r.Description, r.DueDate, string(r.Status), string(r.Priority), string(r.Category))
		if err != nil {
			t.Fatalf("Failed to seed document %q: %v", r.Title, err)
		}
		handles = append(handles, h.String())
	}
	return handles
}

// TruncateTables empties the documents table between subtests.
func TruncateTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), "TRUNCATE documents RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}
