package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

const noteColumns = `id, owner, data, encrypted_text, locked, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*models.Note, error) {
	n := &models.Note{}
	if err := row.Scan(&n.ID, &n.Owner, &n.Data, &n.EncryptedText, &n.Locked, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *PostgresRepository) Create(ctx context.Context, owner string, now time.Time) (uint64, error) {
	query := `
		INSERT INTO notes (owner, created_at, updated_at)
		VALUES ($1, $2, $2)
		RETURNING id
	`
	var id uint64
	if err := r.db.QueryRowContext(ctx, query, owner, now).Scan(&id); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) CountOwned(ctx context.Context, owner string) (int, error) {
	query := `SELECT count(*) FROM notes WHERE owner = $1`

	var n int
	if err := r.db.QueryRowContext(ctx, query, owner).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) get(ctx context.Context, query string, id uint64) (*models.Note, error) {
	n, err := scanNote(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uint64) (*models.Note, error) {
	return r.get(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id uint64) (*models.Note, error) {
	return r.get(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1 FOR UPDATE`, id)
}

// exec runs a single-row statement and maps zero affected rows to
// common.ErrorNotFound.
func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
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

func (r *PostgresRepository) Update(ctx context.Context, id uint64, data, encryptedText string, now time.Time) error {
	query := `
		UPDATE notes SET data = $2, encrypted_text = $3, updated_at = $4
		WHERE id = $1
	`
	return r.exec(ctx, query, id, data, encryptedText, now)
}

func (r *PostgresRepository) SetLocked(ctx context.Context, id uint64, locked bool) error {
	return r.exec(ctx, `UPDATE notes SET locked = $2 WHERE id = $1`, id, locked)
}

func (r *PostgresRepository) Delete(ctx context.Context, id uint64) error {
	return r.exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
}

func (r *PostgresRepository) ListVisible(ctx context.Context, identity string, now time.Time) ([]*models.Note, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM notes n
		WHERE n.owner = $1
		   OR EXISTS (
		        SELECT 1 FROM note_rules r
		        WHERE r.note_id = n.id
		          AND r.principal IN ($1, $2)
		          AND (r.effective_at IS NULL OR r.effective_at <= $3)
		      )
		ORDER BY n.id
	`
	rows, err := r.db.QueryContext(ctx, query, identity, common.Everyone, now)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
