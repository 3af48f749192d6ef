package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialects(t *testing.T) {
	tests := []struct {
		name       string
		dialect    Dialect
		driver     string
		subdir     string
		upsertHint string
	}{
		{name: "sqlite", dialect: NewSQLiteDialect(), driver: "sqlite3", subdir: "sqlite", upsertHint: "ON CONFLICT(state_key)"},
		{name: "postgres", dialect: NewPostgresDialect(), driver: "postgres", subdir: "postgres", upsertHint: "ON CONFLICT (state_key)"},
		{name: "mysql", dialect: NewMySQLDialect(), driver: "mysql", subdir: "mysql", upsertHint: "ON DUPLICATE KEY UPDATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.driver, tt.dialect.DriverName())
			assert.Equal(t, tt.subdir, tt.dialect.MigrationsSubdir())
			assert.Contains(t, tt.dialect.UpsertStateQuery(), tt.upsertHint)
			assert.Contains(t, tt.dialect.CreateMigrationsTableQuery(), "migrations")
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := DialectConfig{Path: "./alfabeta.db", URL: "postgres://localhost/alfabeta"}

	assert.Equal(t, "./alfabeta.db", NewSQLiteDialect().DSN(cfg))
	assert.Equal(t, cfg.URL, NewPostgresDialect().DSN(cfg))
	assert.Equal(t, cfg.URL, NewMySQLDialect().DSN(cfg))
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT state_value FROM game_state WHERE state_key = ?",
			expected: "SELECT state_value FROM game_state WHERE state_key = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT state_value FROM game_state WHERE state_key = ?",
			expected: "SELECT state_value FROM game_state WHERE state_key = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO game_state (state_key, state_value) VALUES (?, ?)",
			expected: "INSERT INTO game_state (state_key, state_value) VALUES ($1, $2)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "DELETE FROM game_state WHERE state_key = ?",
			expected: "DELETE FROM game_state WHERE state_key = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.dialect.RewriteQuery(tt.query))
		})
	}
}

func TestPostgresUpsertRewritesPlaceholders(t *testing.T) {
	d := NewPostgresDialect()
	q := d.RewriteQuery(d.UpsertStateQuery())

	assert.True(t, strings.Contains(q, "$1") && strings.Contains(q, "$2"))
	assert.NotContains(t, q, "?")
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		in      string
		driver  string
		wantErr bool
	}{
		{in: "", driver: "sqlite3"},
		{in: "sqlite", driver: "sqlite3"},
		{in: "PostgreSQL", driver: "postgres"},
		{in: "mysql", driver: "mysql"},
		{in: "oracle", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := DialectFor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.driver, d.DriverName())
		})
	}
}
