package rules

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (models.Rule, error) {
	var (
		r    models.Rule
		when sql.NullTime
	)
	if err := row.Scan(&r.NoteID, &r.Principal, &when, &r.WasRead); err != nil {
		return r, err
	}
	if when.Valid {
		t := when.Time
		r.When = &t
	}
	return r, nil
}

func (r *PostgresRepository) List(ctx context.Context, noteID uint64) ([]models.Rule, error) {
	query := `
		SELECT note_id, principal, effective_at, was_read
		FROM note_rules
		WHERE note_id = $1
		ORDER BY principal
	`
	rows, err := r.db.QueryContext(ctx, query, noteID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Find(ctx context.Context, noteID uint64, principal string) (*models.Rule, error) {
	query := `
		SELECT note_id, principal, effective_at, was_read
		FROM note_rules
		WHERE note_id = $1 AND principal = $2
	`
	rule, err := scanRule(r.db.QueryRowContext(ctx, query, noteID, principal))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &rule, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, rule *models.Rule) error {
	query := `
		INSERT INTO note_rules (note_id, principal, effective_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (note_id, principal) DO UPDATE SET effective_at = EXCLUDED.effective_at
	`
	if _, err := r.db.ExecContext(ctx, query, rule.NoteID, rule.Principal, rule.When); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, noteID uint64, principal string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM note_rules WHERE note_id = $1 AND principal = $2`, noteID, principal)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) Count(ctx context.Context, noteID uint64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM note_rules WHERE note_id = $1`, noteID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) MarkRead(ctx context.Context, noteID uint64, principal string) error {
	query := `UPDATE note_rules SET was_read = TRUE WHERE note_id = $1 AND principal = $2`
	if _, err := r.db.ExecContext(ctx, query, noteID, principal); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
