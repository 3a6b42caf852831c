// Package repomanager vends repository implementations bound to a database
// handle and runs schema migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/smartq/internal/dbx"
	"github.com/dmitrijs2005/smartq/internal/logging"
	"github.com/dmitrijs2005/smartq/internal/server/migrations"
	"github.com/dmitrijs2005/smartq/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

// SQLRepositoryManager vends database/sql backed repositories for one dialect.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
	logger  logging.Logger
}

// NewSQLRepositoryManager constructs a RepositoryManager for dialect.
// Migration output goes to l (nil discards it).
func NewSQLRepositoryManager(dialect dbx.Dialect, l logging.Logger) *SQLRepositoryManager {
	if l == nil {
		l = logging.Nop{}
	}
	return &SQLRepositoryManager{dialect: dialect, logger: l.With("module", "migrations")}
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db, m.dialect)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations to db.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(gooseLogger{log: m.logger})
	if err := goose.SetDialect(m.dialect.GooseDialect()); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}
