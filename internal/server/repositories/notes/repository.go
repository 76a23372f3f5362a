// Package notes stores encrypted notes in PostgreSQL.
package notes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

type Repository interface {
	// Create inserts an empty note owned by owner and returns its id.
	Create(ctx context.Context, owner string, now time.Time) (uint64, error)
	CountOwned(ctx context.Context, owner string) (int, error)
	// Get and GetForUpdate return common.ErrorNotFound for unknown ids.
	// GetForUpdate locks the row until the surrounding transaction ends.
	Get(ctx context.Context, id uint64) (*models.Note, error)
	GetForUpdate(ctx context.Context, id uint64) (*models.Note, error)
	Update(ctx context.Context, id uint64, data, encryptedText string, now time.Time) error
	SetLocked(ctx context.Context, id uint64, locked bool) error
	Delete(ctx context.Context, id uint64) error
	// ListVisible returns the notes identity owns or holds a grant for that
	// is effective at now, directly or through everyone, ordered by id.
	ListVisible(ctx context.Context, identity string, now time.Time) ([]*models.Note, error)
}
