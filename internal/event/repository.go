// AngelaMos | 2026
// repository.go

package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wegtu/wegtu-backend/internal/core"
)

type Repository interface {
	CreateEvent(ctx context.Context, e *Event) error
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListEvents(ctx context.Context, params ListEventsParams) ([]Event, int, error)
	DeleteEvent(ctx context.Context, id string) error

	InsertTicket(ctx context.Context, t *Ticket) error
	ListTicketsForUser(ctx context.Context, userID string) ([]Ticket, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const eventColumns = `
	id, title, description, location, event_date, ticket_xp_reward,
	is_active, created_by_user_id, created_at, updated_at`

func (r *repository) CreateEvent(ctx context.Context, e *Event) error {
	query := `
		INSERT INTO events (id, title, description, location, event_date,
			ticket_xp_reward, is_active, created_by_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, e, query,
		e.ID,
		e.Title,
		e.Description,
		e.Location,
		e.EventDate,
		e.TicketXPReward,
		e.IsActive,
		e.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	return nil
}

func (r *repository) GetEvent(ctx context.Context, id string) (*Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1`

	var e Event
	err := r.db.GetContext(ctx, &e, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get event: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	return &e, nil
}

func (r *repository) ListEvents(
	ctx context.Context,
	params ListEventsParams,
) ([]Event, int, error) {
	where := ""
	if params.ActiveOnly {
		where = "WHERE is_active = true"
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM events " + where
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM events
		%s
		ORDER BY event_date ASC
		LIMIT $1 OFFSET $2`, eventColumns, where)

	events := []Event{}
	err := r.db.SelectContext(
		ctx,
		&events,
		listQuery,
		params.PageSize,
		params.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	return events, total, nil
}

func (r *repository) DeleteEvent(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete event: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) InsertTicket(ctx context.Context, t *Ticket) error {
	query := `
		INSERT INTO event_tickets (id, event_id, user_id, ticket_number)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.GetContext(ctx, t, query,
		t.ID,
		t.EventID,
		t.UserID,
		t.TicketNumber,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("insert ticket: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("insert ticket: %w", err)
	}

	return nil
}

func (r *repository) ListTicketsForUser(
	ctx context.Context,
	userID string,
) ([]Ticket, error) {
	query := `
		SELECT id, event_id, user_id, ticket_number, created_at
		FROM event_tickets
		WHERE user_id = $1
		ORDER BY created_at DESC`

	tickets := []Ticket{}
	if err := r.db.SelectContext(ctx, &tickets, query, userID); err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	return tickets, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
