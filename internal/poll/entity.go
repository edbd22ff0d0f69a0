// AngelaMos | 2026
// entity.go

package poll

import (
	"time"
)

// Poll is a community vote over design options. A poll with no options
// attached serves as a plain forum post: it shows in the feed and takes
// comments but cannot be voted on.
type Poll struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	IsActive    bool      `db:"is_active"`
	CreatedBy   string    `db:"created_by_user_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type Option struct {
	ID              string    `db:"id"`
	PollID          string    `db:"poll_id"`
	DesignID        string    `db:"design_id"`
	DesignTitle     string    `db:"design_title"`
	DesignImagePath string    `db:"design_image_path"`
	CreatedAt       time.Time `db:"created_at"`
}

// Vote records one member's ballot. Weight is snapshotted from the
// voter's tier at cast time and never recomputed, so later promotions
// do not rewrite history.
type Vote struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	PollID    string    `db:"poll_id"`
	OptionID  string    `db:"poll_option_id"`
	Weight    int       `db:"weight"`
	CreatedAt time.Time `db:"created_at"`
}

type Comment struct {
	ID        string    `db:"id"`
	Body      string    `db:"body"`
	UserID    string    `db:"user_id"`
	Username  string    `db:"username"`
	PollID    string    `db:"poll_id"`
	CreatedAt time.Time `db:"created_at"`
}

// OptionResult is one row of a poll tally: the weighted total decides
// the ranking, the raw count is shown alongside it.
type OptionResult struct {
	OptionID    string `db:"option_id"`
	DesignID    string `db:"design_id"`
	TotalWeight int    `db:"total_weight"`
	VoteCount   int    `db:"vote_count"`
}
