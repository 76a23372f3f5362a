// Package rules stores the per-note access grants.
package rules

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

type Repository interface {
	// List returns the rules of a note ordered by principal.
	List(ctx context.Context, noteID uint64) ([]models.Rule, error)
	// Find returns common.ErrorNotFound when principal holds no rule.
	Find(ctx context.Context, noteID uint64, principal string) (*models.Rule, error)
	// Upsert replaces the effective time of an existing rule and keeps its
	// read flag.
	Upsert(ctx context.Context, rule *models.Rule) error
	// Delete reports whether a rule was removed.
	Delete(ctx context.Context, noteID uint64, principal string) (bool, error)
	Count(ctx context.Context, noteID uint64) (int, error)
	MarkRead(ctx context.Context, noteID uint64, principal string) error
}
