// AngelaMos | 2026
// repository.go

package design

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wegtu/wegtu-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, d *Design) error
	GetByID(ctx context.Context, id string) (*Design, error)
	List(ctx context.Context, params ListDesignsParams) ([]Design, int, error)
	Delete(ctx context.Context, id string) error

	CreateCheckRequest(ctx context.Context, cr *CheckRequest) error
	GetCheckRequest(ctx context.Context, id string) (*CheckRequest, error)
	ListCheckRequestsForApprover(
		ctx context.Context,
		approverID string,
		status CheckStatus,
	) ([]CheckRequest, error)
	ListCheckRequestsForRequester(
		ctx context.Context,
		requesterID string,
	) ([]CheckRequest, error)
	ResolveCheckRequest(
		ctx context.Context,
		id string,
		to CheckStatus,
	) (bool, error)

	IsSelectable(ctx context.Context, designID, userID string) (bool, error)
	ListSelectable(ctx context.Context, userID string) ([]Design, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const designColumns = `
	id, title, description, image_path, category, user_id,
	created_at, updated_at`

func (r *repository) Create(ctx context.Context, d *Design) error {
	query := `
		INSERT INTO designs (id, title, description, image_path, category, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, d, query,
		d.ID,
		d.Title,
		d.Description,
		d.ImagePath,
		d.Category,
		d.UserID,
	)
	if err != nil {
		return fmt.Errorf("create design: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Design, error) {
	query := `
		SELECT ` + designColumns + `
		FROM designs
		WHERE id = $1`

	var d Design
	err := r.db.GetContext(ctx, &d, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get design: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get design: %w", err)
	}

	return &d, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListDesignsParams,
) ([]Design, int, error) {
	where := "WHERE 1=1"
	args := []any{}

	if params.Category != "" {
		args = append(args, params.Category)
		where += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if params.UserID != "" {
		args = append(args, params.UserID)
		where += fmt.Sprintf(" AND user_id = $%d", len(args))
	}

	countQuery := "SELECT COUNT(*) FROM designs " + where

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count designs: %w", err)
	}

	args = append(args, params.PageSize, params.Offset())
	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM designs
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		designColumns, where, len(args)-1, len(args))

	designs := []Design{}
	if err := r.db.SelectContext(ctx, &designs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list designs: %w", err)
	}

	return designs, total, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM designs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete design: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete design: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete design: %w", core.ErrNotFound)
	}

	return nil
}

const checkRequestColumns = `
	id, requester_id, approver_id, status, created_at, updated_at`

func (r *repository) CreateCheckRequest(
	ctx context.Context,
	cr *CheckRequest,
) error {
	query := `
		INSERT INTO design_check_requests (id, requester_id, approver_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, cr, query,
		cr.ID,
		cr.RequesterID,
		cr.ApproverID,
		cr.Status,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create check request: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create check request: %w", err)
	}

	return nil
}

func (r *repository) GetCheckRequest(
	ctx context.Context,
	id string,
) (*CheckRequest, error) {
	query := `
		SELECT ` + checkRequestColumns + `
		FROM design_check_requests
		WHERE id = $1`

	var cr CheckRequest
	err := r.db.GetContext(ctx, &cr, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get check request: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get check request: %w", err)
	}

	return &cr, nil
}

func (r *repository) ListCheckRequestsForApprover(
	ctx context.Context,
	approverID string,
	status CheckStatus,
) ([]CheckRequest, error) {
	query := `
		SELECT ` + checkRequestColumns + `
		FROM design_check_requests
		WHERE approver_id = $1`
	args := []any{approverID}

	if status != "" {
		args = append(args, status)
		query += " AND status = $2"
	}
	query += " ORDER BY created_at DESC"

	requests := []CheckRequest{}
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("list check requests: %w", err)
	}

	return requests, nil
}

func (r *repository) ListCheckRequestsForRequester(
	ctx context.Context,
	requesterID string,
) ([]CheckRequest, error) {
	query := `
		SELECT ` + checkRequestColumns + `
		FROM design_check_requests
		WHERE requester_id = $1
		ORDER BY created_at DESC`

	requests := []CheckRequest{}
	if err := r.db.SelectContext(ctx, &requests, query, requesterID); err != nil {
		return nil, fmt.Errorf("list check requests: %w", err)
	}

	return requests, nil
}

// ResolveCheckRequest flips a pending request to approved or rejected.
// Returns false when the request was already resolved, so two approvers
// racing on the same request settle on exactly one outcome.
func (r *repository) ResolveCheckRequest(
	ctx context.Context,
	id string,
	to CheckStatus,
) (bool, error) {
	query := `
		UPDATE design_check_requests
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, id, to, CheckPending)
	if err != nil {
		return false, fmt.Errorf("resolve check request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("resolve check request: %w", err)
	}

	return rows > 0, nil
}

func (r *repository) IsSelectable(
	ctx context.Context,
	designID, userID string,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM designs d
			WHERE d.id = $1
			  AND (
				d.user_id = $2
				OR d.user_id IN (
					SELECT requester_id
					FROM design_check_requests
					WHERE approver_id = $2 AND status = 'approved'
				)
			  )
		)`

	var ok bool
	if err := r.db.GetContext(ctx, &ok, query, designID, userID); err != nil {
		return false, fmt.Errorf("check design selectable: %w", err)
	}

	return ok, nil
}

func (r *repository) ListSelectable(
	ctx context.Context,
	userID string,
) ([]Design, error) {
	query := `
		SELECT ` + designColumns + `
		FROM designs
		WHERE user_id = $1
		   OR user_id IN (
			SELECT requester_id
			FROM design_check_requests
			WHERE approver_id = $1 AND status = 'approved'
		   )
		ORDER BY created_at DESC`

	designs := []Design{}
	if err := r.db.SelectContext(ctx, &designs, query, userID); err != nil {
		return nil, fmt.Errorf("list selectable designs: %w", err)
	}

	return designs, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
