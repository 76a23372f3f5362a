// Package users declares and implements the server-side user repository.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

type Repository interface {
	// Create inserts user. user.ID must already be set.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByLogin returns common.ErrorNotFound for unknown names.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}
