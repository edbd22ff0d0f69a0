// AngelaMos | 2026
// repository.go

package poll

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wegtu/wegtu-backend/internal/core"
)

type Repository interface {
	CreatePoll(ctx context.Context, p *Poll) error
	GetPoll(ctx context.Context, id string) (*Poll, error)
	ListPolls(ctx context.Context, params ListPollsParams) ([]Poll, int, error)
	DeletePoll(ctx context.Context, id string) error

	AddOption(ctx context.Context, o *Option) error
	GetOption(ctx context.Context, id string) (*Option, error)
	ListOptions(ctx context.Context, pollID string) ([]Option, error)

	HasVoted(ctx context.Context, userID, pollID string) (bool, error)
	InsertVote(ctx context.Context, v *Vote) error
	Results(ctx context.Context, pollID string) ([]OptionResult, error)

	InsertComment(ctx context.Context, c *Comment) error
	ListComments(
		ctx context.Context,
		pollID string,
		page, pageSize int,
	) ([]Comment, int, error)

	Feed(ctx context.Context, params FeedParams) ([]FeedItem, int, error)
	TicketedEvents(
		ctx context.Context,
		userID string,
		eventIDs []string,
	) (map[string]bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const pollColumns = `
	id, title, description, is_active, created_by_user_id,
	created_at, updated_at`

func (r *repository) CreatePoll(ctx context.Context, p *Poll) error {
	query := `
		INSERT INTO polls (id, title, description, is_active, created_by_user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, p, query,
		p.ID,
		p.Title,
		p.Description,
		p.IsActive,
		p.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create poll: %w", err)
	}

	return nil
}

func (r *repository) GetPoll(ctx context.Context, id string) (*Poll, error) {
	query := `
		SELECT ` + pollColumns + `
		FROM polls
		WHERE id = $1`

	var p Poll
	err := r.db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get poll: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get poll: %w", err)
	}

	return &p, nil
}

func (r *repository) ListPolls(
	ctx context.Context,
	params ListPollsParams,
) ([]Poll, int, error) {
	where := ""
	if params.ActiveOnly {
		where = "WHERE is_active = true"
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM polls " + where
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, fmt.Errorf("count polls: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM polls
		%s
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, pollColumns, where)

	polls := []Poll{}
	err := r.db.SelectContext(
		ctx,
		&polls,
		listQuery,
		params.PageSize,
		params.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list polls: %w", err)
	}

	return polls, total, nil
}

// DeletePoll removes the poll and, via cascade, its options, votes and
// comments.
func (r *repository) DeletePoll(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM polls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete poll: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete poll: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete poll: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) AddOption(ctx context.Context, o *Option) error {
	query := `
		INSERT INTO poll_options (id, poll_id, design_id)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := r.db.GetContext(ctx, o, query, o.ID, o.PollID, o.DesignID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("add option: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("add option: %w", err)
	}

	return nil
}

const optionColumns = `
	po.id, po.poll_id, po.design_id,
	d.title AS design_title, d.image_path AS design_image_path,
	po.created_at`

func (r *repository) GetOption(ctx context.Context, id string) (*Option, error) {
	query := `
		SELECT ` + optionColumns + `
		FROM poll_options po
		JOIN designs d ON d.id = po.design_id
		WHERE po.id = $1`

	var o Option
	err := r.db.GetContext(ctx, &o, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get option: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get option: %w", err)
	}

	return &o, nil
}

func (r *repository) ListOptions(
	ctx context.Context,
	pollID string,
) ([]Option, error) {
	query := `
		SELECT ` + optionColumns + `
		FROM poll_options po
		JOIN designs d ON d.id = po.design_id
		WHERE po.poll_id = $1
		ORDER BY po.created_at ASC`

	options := []Option{}
	if err := r.db.SelectContext(ctx, &options, query, pollID); err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}

	return options, nil
}

func (r *repository) HasVoted(
	ctx context.Context,
	userID, pollID string,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM votes WHERE user_id = $1 AND poll_id = $2
		)`

	var voted bool
	if err := r.db.GetContext(ctx, &voted, query, userID, pollID); err != nil {
		return false, fmt.Errorf("check vote: %w", err)
	}

	return voted, nil
}

func (r *repository) InsertVote(ctx context.Context, v *Vote) error {
	query := `
		INSERT INTO votes (id, user_id, poll_id, poll_option_id, weight)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.GetContext(ctx, v, query,
		v.ID,
		v.UserID,
		v.PollID,
		v.OptionID,
		v.Weight,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("insert vote: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("insert vote: %w", err)
	}

	return nil
}

// Results tallies on demand. Ranking is by weighted total; the raw
// ballot count rides along for display.
func (r *repository) Results(
	ctx context.Context,
	pollID string,
) ([]OptionResult, error) {
	query := `
		SELECT
			po.id AS option_id,
			po.design_id,
			COALESCE(SUM(v.weight), 0) AS total_weight,
			COUNT(v.id) AS vote_count
		FROM poll_options po
		LEFT JOIN votes v ON v.poll_option_id = po.id
		WHERE po.poll_id = $1
		GROUP BY po.id, po.design_id
		ORDER BY total_weight DESC, po.created_at ASC`

	results := []OptionResult{}
	if err := r.db.SelectContext(ctx, &results, query, pollID); err != nil {
		return nil, fmt.Errorf("tally poll: %w", err)
	}

	return results, nil
}

func (r *repository) InsertComment(ctx context.Context, c *Comment) error {
	query := `
		INSERT INTO comments (id, body, user_id, poll_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.GetContext(ctx, c, query, c.ID, c.Body, c.UserID, c.PollID)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}

func (r *repository) ListComments(
	ctx context.Context,
	pollID string,
	page, pageSize int,
) ([]Comment, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM comments WHERE poll_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, pollID); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	query := `
		SELECT c.id, c.body, c.user_id, u.username, c.poll_id, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.poll_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3`

	comments := []Comment{}
	err := r.db.SelectContext(
		ctx,
		&comments,
		query,
		pollID,
		pageSize,
		(page-1)*pageSize,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}

	return comments, total, nil
}

const feedPollsQuery = `
	SELECT
		CASE WHEN EXISTS (
			SELECT 1 FROM poll_options po WHERE po.poll_id = p.id
		) THEN 'poll' ELSE 'forum' END AS kind,
		p.id, p.title, p.description,
		NULL::text AS location, NULL::timestamptz AS event_date,
		p.created_at
	FROM polls p
	WHERE p.is_active = true`

const feedEventsQuery = `
	SELECT
		'event' AS kind,
		e.id, e.title, e.description,
		e.location, e.event_date,
		e.created_at
	FROM events e
	WHERE e.is_active = true`

// Feed merges active polls, forum posts and events into one stream,
// newest first. A poll with no options is classified as a forum post.
func (r *repository) Feed(
	ctx context.Context,
	params FeedParams,
) ([]FeedItem, int, error) {
	var source string
	switch params.Filter {
	case FeedFilterAll:
		source = feedPollsQuery + "\n\tUNION ALL\n" + feedEventsQuery
	case FeedFilterPolls:
		source = feedPollsQuery + `
	AND EXISTS (SELECT 1 FROM poll_options po WHERE po.poll_id = p.id)`
	case FeedFilterForum:
		source = feedPollsQuery + `
	AND NOT EXISTS (SELECT 1 FROM poll_options po WHERE po.poll_id = p.id)`
	case FeedFilterEvents:
		source = feedEventsQuery
	default:
		return nil, 0, fmt.Errorf("feed: %w", core.ErrInvalidInput)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM (" + source + ") AS feed"
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, fmt.Errorf("count feed: %w", err)
	}

	query := "SELECT * FROM (" + source + `) AS feed
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	items := []FeedItem{}
	err := r.db.SelectContext(
		ctx,
		&items,
		query,
		params.PageSize,
		params.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list feed: %w", err)
	}

	return items, total, nil
}

// TicketedEvents reports which of the given events the user holds a
// ticket for.
func (r *repository) TicketedEvents(
	ctx context.Context,
	userID string,
	eventIDs []string,
) (map[string]bool, error) {
	ticketed := make(map[string]bool, len(eventIDs))
	if userID == "" || len(eventIDs) == 0 {
		return ticketed, nil
	}

	query := `
		SELECT event_id
		FROM event_tickets
		WHERE user_id = $1 AND event_id = ANY($2)`

	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, userID, eventIDs); err != nil {
		return nil, fmt.Errorf("ticketed events: %w", err)
	}

	for _, id := range ids {
		ticketed[id] = true
	}

	return ticketed, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
