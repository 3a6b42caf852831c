package users

import (
	"context"

	"github.com/dmitrijs2005/smartq/internal/server/models"
)

// Repository persists account identities.
//
// GetUserByEmail returns common.ErrorNotFound when no account matches.
// Create returns a common.ConflictError when email or username is taken.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUserName(ctx context.Context, userName string) (bool, error)
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
}
