package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/smartq/internal/common"
	"github.com/dmitrijs2005/smartq/internal/dbx"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Open connects to the database for dialect and checks the connection.
// An empty SQLite DSN opens a private in-memory database that lives as long
// as the returned handle.
func Open(ctx context.Context, dialect dbx.Dialect, dsn string) (*sql.DB, error) {
	if dialect == dbx.SQLite && dsn == "" {
		name, err := common.MakeRandHexString(8)
		if err != nil {
			return nil, err
		}
		dsn = "file:smartq-" + name + "?mode=memory&cache=shared"
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	// SQLite allows one writer; a single connection keeps transactions
	// from failing with SQLITE_BUSY. Keeping it idle also keeps an
	// in-memory database alive.
	if dialect == dbx.SQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	return db, nil
}
