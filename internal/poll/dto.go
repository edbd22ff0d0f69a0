// AngelaMos | 2026
// dto.go

package poll

import (
	"time"
)

type CreatePollRequest struct {
	Title       string `json:"title"       validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type AddOptionRequest struct {
	DesignID string `json:"design_id" validate:"required,uuid"`
}

type CastVoteRequest struct {
	OptionID string `json:"option_id" validate:"required,uuid"`
}

type AddCommentRequest struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}

type OptionResponse struct {
	ID              string `json:"id"`
	DesignID        string `json:"design_id"`
	DesignTitle     string `json:"design_title"`
	DesignImagePath string `json:"design_image_path"`
}

type PollResponse struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	IsActive    bool             `json:"is_active"`
	IsForumPost bool             `json:"is_forum_post"`
	CreatedBy   string           `json:"created_by"`
	CreatedAt   time.Time        `json:"created_at"`
	Options     []OptionResponse `json:"options"`
}

func ToPollResponse(p *Poll, options []Option) PollResponse {
	opts := make([]OptionResponse, 0, len(options))
	for _, o := range options {
		opts = append(opts, OptionResponse{
			ID:              o.ID,
			DesignID:        o.DesignID,
			DesignTitle:     o.DesignTitle,
			DesignImagePath: o.DesignImagePath,
		})
	}

	return PollResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		IsActive:    p.IsActive,
		IsForumPost: len(options) == 0,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		Options:     opts,
	}
}

type VoteResponse struct {
	ID       string `json:"id"`
	PollID   string `json:"poll_id"`
	OptionID string `json:"option_id"`
	Weight   int    `json:"weight"`
	XP       int    `json:"xp"`
	Tier     int    `json:"tier"`
	Promoted bool   `json:"promoted"`
}

type OptionResultResponse struct {
	OptionID    string `json:"option_id"`
	DesignID    string `json:"design_id"`
	TotalWeight int    `json:"total_weight"`
	VoteCount   int    `json:"vote_count"`
}

type ResultsResponse struct {
	PollID  string                 `json:"poll_id"`
	Results []OptionResultResponse `json:"results"`
}

func ToResultsResponse(pollID string, results []OptionResult) ResultsResponse {
	out := make([]OptionResultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, OptionResultResponse{
			OptionID:    r.OptionID,
			DesignID:    r.DesignID,
			TotalWeight: r.TotalWeight,
			VoteCount:   r.VoteCount,
		})
	}

	return ResultsResponse{PollID: pollID, Results: out}
}

type CommentResponse struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	XP        int       `json:"xp,omitempty"`
	Tier      int       `json:"tier,omitempty"`
	Promoted  bool      `json:"promoted,omitempty"`
}

type ListPollsParams struct {
	Page       int
	PageSize   int
	ActiveOnly bool
}

func (p *ListPollsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 50 {
		p.PageSize = 20
	}
}

func (p *ListPollsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Feed filters mirror the community landing page tabs.
const (
	FeedFilterAll    = "all"
	FeedFilterPolls  = "polls"
	FeedFilterForum  = "forum"
	FeedFilterEvents = "events"
)

type FeedParams struct {
	Page     int
	PageSize int
	Filter   string
}

func (p *FeedParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 50 {
		p.PageSize = 5
	}
	if p.Filter == "" {
		p.Filter = FeedFilterAll
	}
}

func (p *FeedParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type FeedItem struct {
	Kind        string     `db:"kind"        json:"kind"`
	ID          string     `db:"id"          json:"id"`
	Title       string     `db:"title"       json:"title"`
	Description string     `db:"description" json:"description"`
	Location    *string    `db:"location"    json:"location,omitempty"`
	EventDate   *time.Time `db:"event_date"  json:"event_date,omitempty"`
	CreatedAt   time.Time  `db:"created_at"  json:"created_at"`

	// Set for event items when the feed is requested by an
	// authenticated viewer.
	HasTicket *bool `db:"-" json:"has_ticket,omitempty"`
}
