package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/task-dashboard/internal/model"
)

var envKeys = []string{
	"TASKDASH_CONFIG", "PORT", "STORE_DRIVER", "DATABASE_URL", "SQLITE_PATH",
	"TASK_LIFECYCLE", "WORKER_COUNT", "SHUTDOWN_TIMEOUT", "SESSION_IDLE",
}

// cleanEnv clears every variable Load reads and moves into an empty directory
func cleanEnv(t *testing.T) string {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "taskdash.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := cleanEnv(t)
	writeFile(t, dir, `
port = "9090"
driver = "sqlite"
sqlite_path = "/var/lib/taskdash/tasks.db"
worker_count = 8
lifecycle = "two-state"
shutdown_timeout = "3s"
session_idle = "5m"
`)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.Driver)
	assert.Equal(t, "/var/lib/taskdash/tasks.db", cfg.SQLitePath)
	assert.Equal(t, 8, cfg.WorkerCount)
	assert.Equal(t, model.LifecycleTwoState, cfg.Lifecycle)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout.Duration)
	assert.Equal(t, 5*time.Minute, cfg.SessionIdle.Duration)

	t.Setenv("PORT", "7070")
	t.Setenv("WORKER_COUNT", "2")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("SESSION_IDLE", "0s")

	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, 2, cfg.WorkerCount)
	assert.Equal(t, DriverMemory, cfg.Driver)
	assert.Zero(t, cfg.SessionIdle.Duration)
	assert.Equal(t, model.LifecycleTwoState, cfg.Lifecycle)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	dir := cleanEnv(t)
	t.Setenv("TASKDASH_CONFIG", filepath.Join(dir, "missing.toml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"STORE_DRIVER": "mongo"}},
		{name: "unknown lifecycle", env: map[string]string{"TASK_LIFECYCLE": "kanban"}},
		{name: "bad worker count", env: map[string]string{"WORKER_COUNT": "many"}},
		{name: "zero workers", env: map[string]string{"WORKER_COUNT": "0"}},
		{name: "bad timeout", env: map[string]string{"SHUTDOWN_TIMEOUT": "soon"}},
		{name: "negative session idle", env: map[string]string{"SESSION_IDLE": "-1m"}},
		{name: "malformed file", file: `port = `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := cleanEnv(t)
			if tt.file != "" {
				writeFile(t, dir, tt.file)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
