package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/smartq/internal/common"
	"github.com/dmitrijs2005/smartq/internal/dbx"
	"github.com/dmitrijs2005/smartq/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLRepository implements Repository over database/sql. The same queries
// run on PostgreSQL (pgx) and SQLite; placeholders are rebound per dialect.
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	query := r.dialect.Rebind(
		`INSERT INTO users (id, email, username, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.UserName, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if field, ok := uniqueViolation(err); ok {
			return nil, common.ConflictError{Field: field}
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := r.dialect.Rebind(
		`SELECT id, email, username, password_hash, created_at FROM users
		 WHERE email = ?`)

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.Email, &user.UserName, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, email)
}

func (r *SQLRepository) ExistsByUserName(ctx context.Context, userName string) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(*) FROM users WHERE username = ?`, userName)
}

func (r *SQLRepository) exists(ctx context.Context, query string, arg string) (bool, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), arg).Scan(&n); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *SQLRepository) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	query := r.dialect.Rebind(`UPDATE users SET password_hash = ? WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query, hash, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// uniqueViolation recognises unique-constraint failures from either driver
// and names the offending column ("email" or "username") when it can.
func uniqueViolation(err error) (string, bool) {
	var detail string

	var pgErr *pgconn.PgError
	var liteErr *sqlite.Error
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == "23505":
		detail = pgErr.ConstraintName + " " + pgErr.Detail
	case errors.As(err, &liteErr) && isSQLiteUnique(liteErr):
		detail = liteErr.Error()
	default:
		return "", false
	}

	detail = strings.ToLower(detail)
	switch {
	case strings.Contains(detail, "email"):
		return "email", true
	case strings.Contains(detail, "username"):
		return "username", true
	default:
		return "", true
	}
}

func isSQLiteUnique(e *sqlite.Error) bool {
	if e.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	// extended result codes may be off; fall back to the primary code
	return e.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(e.Error(), "UNIQUE")
}
