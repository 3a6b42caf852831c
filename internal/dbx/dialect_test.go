package dbx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDialect_Rebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		in      string
		want    string
	}{
		{"sqlite untouched", SQLite, "SELECT 1 FROM users WHERE email = ?", "SELECT 1 FROM users WHERE email = ?"},
		{"postgres numbered", Postgres, "INSERT INTO t(a,b,c) VALUES (?,?,?)", "INSERT INTO t(a,b,c) VALUES ($1,$2,$3)"},
		{"quoted question mark kept", Postgres, "SELECT '?' , col FROM t WHERE x = ?", "SELECT '?' , col FROM t WHERE x = $1"},
		{"no placeholders", Postgres, "SELECT now()", "SELECT now()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dialect.Rebind(tt.in))
		})
	}
}

func TestDialect_Names(t *testing.T) {
	assert.Equal(t, "pgx", Postgres.GooseDialect())
	assert.Equal(t, "pgx", Postgres.DriverName())
	assert.Equal(t, "sqlite3", SQLite.GooseDialect())
	assert.Equal(t, "sqlite", SQLite.DriverName())
}
