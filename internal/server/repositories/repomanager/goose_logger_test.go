package repomanager

import (
	"bytes"
	"context"
	"testing"

	"github.com/dmitrijs2005/smartq/internal/dbx"
	"github.com/dmitrijs2005/smartq/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations_LogsThroughAppLogger(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer

	db, err := Open(ctx, dbx.SQLite, "")
	require.NoError(t, err)
	defer db.Close()

	m := NewSQLRepositoryManager(dbx.SQLite, logging.NewJSONLogger(&buf, "info"))
	require.NoError(t, m.RunMigrations(ctx, db))

	out := buf.String()
	assert.Contains(t, out, "00001_create_users.sql")
	assert.Contains(t, out, `"module":"migrations"`)
}

func TestGooseLogger(t *testing.T) {
	var buf bytes.Buffer
	g := gooseLogger{log: logging.NewJSONLogger(&buf, "info")}

	g.Printf("OK   %s\n", "x.sql")
	assert.Contains(t, buf.String(), `"msg":"OK   x.sql"`)
	assert.Contains(t, buf.String(), `"level":"INFO"`)

	buf.Reset()
	code := -1
	old := osExit
	osExit = func(c int) { code = c }
	t.Cleanup(func() { osExit = old })

	g.Fatalf("boom %d", 1)
	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), `"msg":"boom 1"`)
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}
