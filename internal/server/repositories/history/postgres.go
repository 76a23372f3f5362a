package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, e *models.HistoryEntry) error {
	labels := e.Labels
	if labels == nil {
		labels = []string{}
	}
	encoded, err := json.Marshal(labels)
	if err != nil {
		return fmt.Errorf("encode labels: %w", err)
	}

	query := `
		INSERT INTO note_history (note_id, action, username, rule_identity, rule_when, labels, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7)
	`
	if _, err := r.db.ExecContext(ctx, query,
		e.NoteID, e.Action, e.User, e.RuleIdentity, e.RuleWhen, string(encoded), e.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, noteID uint64) ([]models.HistoryEntry, error) {
	query := `
		SELECT note_id, action, username, rule_identity, rule_when, labels, created_at
		FROM note_history
		WHERE note_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, noteID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.HistoryEntry
	for rows.Next() {
		var (
			e        models.HistoryEntry
			identity sql.NullString
			when     sql.NullTime
			labels   []byte
		)
		if err := rows.Scan(&e.NoteID, &e.Action, &e.User, &identity, &when, &labels, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if identity.Valid {
			e.RuleIdentity = &identity.String
		}
		if when.Valid {
			t := when.Time
			e.RuleWhen = &t
		}
		e.Labels = []string{}
		if len(labels) > 0 {
			if err := json.Unmarshal(labels, &e.Labels); err != nil {
				return nil, fmt.Errorf("decode labels of note %d: %w", noteID, err)
			}
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, noteID uint64, action, user string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM note_history
			WHERE note_id = $1 AND action = $2 AND username = $3
		)
	`
	var ok bool
	if err := r.db.QueryRowContext(ctx, query, noteID, action, user).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}
