package users

import (
	"context"

	"github.com/dmitrijs2005/authdir/internal/server/models"
)

// Repository is the durable, authoritative credential store.
type Repository interface {
	// Create inserts user and sets its ID. A username collision yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByLogin returns common.ErrorNotFound when no such user exists.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}
