// AngelaMos | 2026
// repository.go

package qr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wegtu/wegtu-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, code *Code) error
	GetByHash(ctx context.Context, hashID string) (*Code, error)
	Consume(ctx context.Context, hashID, userID string) (bool, error)
	List(ctx context.Context, page, pageSize int) ([]Code, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const codeColumns = `
	id, hash_id, xp_value, is_used, used_by_user_id, used_at, created_at`

func (r *repository) Create(ctx context.Context, code *Code) error {
	query := `
		INSERT INTO qr_codes (id, hash_id, xp_value)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := r.db.GetContext(ctx, code, query, code.ID, code.HashID, code.XPValue)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create qr code: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create qr code: %w", err)
	}

	return nil
}

func (r *repository) GetByHash(
	ctx context.Context,
	hashID string,
) (*Code, error) {
	query := `
		SELECT ` + codeColumns + `
		FROM qr_codes
		WHERE hash_id = $1`

	var code Code
	err := r.db.GetContext(ctx, &code, query, hashID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get qr code: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get qr code: %w", err)
	}

	return &code, nil
}

// Consume marks the code used if and only if it is still unused.
// Returns false when another redemption got there first, so two
// concurrent scans of the same code settle on exactly one winner.
func (r *repository) Consume(
	ctx context.Context,
	hashID, userID string,
) (bool, error) {
	query := `
		UPDATE qr_codes
		SET is_used = true, used_by_user_id = $2, used_at = NOW()
		WHERE hash_id = $1 AND is_used = false`

	result, err := r.db.ExecContext(ctx, query, hashID, userID)
	if err != nil {
		return false, fmt.Errorf("consume qr code: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("consume qr code: %w", err)
	}

	return rows > 0, nil
}

func (r *repository) List(
	ctx context.Context,
	page, pageSize int,
) ([]Code, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM qr_codes`); err != nil {
		return nil, 0, fmt.Errorf("count qr codes: %w", err)
	}

	query := `
		SELECT ` + codeColumns + `
		FROM qr_codes
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	codes := []Code{}
	err := r.db.SelectContext(ctx, &codes, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list qr codes: %w", err)
	}

	return codes, total, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
