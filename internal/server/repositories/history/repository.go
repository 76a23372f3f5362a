// Package history stores the append-only audit trail of notes.
package history

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

type Repository interface {
	Append(ctx context.Context, e *models.HistoryEntry) error
	// List returns the entries of a note in insertion order.
	List(ctx context.Context, noteID uint64) ([]models.HistoryEntry, error)
	// Exists reports whether user already has an entry with action on the note.
	Exists(ctx context.Context, noteID uint64, action, user string) (bool, error)
}
