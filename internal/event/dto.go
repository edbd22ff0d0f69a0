// AngelaMos | 2026
// dto.go

package event

import (
	"time"
)

type CreateEventRequest struct {
	Title          string    `json:"title"            validate:"required,min=1,max=200"`
	Description    string    `json:"description"      validate:"max=2000"`
	Location       string    `json:"location"         validate:"required,max=300"`
	EventDate      time.Time `json:"event_date"       validate:"required"`
	TicketXPReward int       `json:"ticket_xp_reward" validate:"omitempty,min=1,max=1000"`
}

type EventResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	EventDate      time.Time `json:"event_date"`
	TicketXPReward int       `json:"ticket_xp_reward"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

func ToEventResponse(e *Event) EventResponse {
	return EventResponse{
		ID:             e.ID,
		Title:          e.Title,
		Description:    e.Description,
		Location:       e.Location,
		EventDate:      e.EventDate,
		TicketXPReward: e.TicketXPReward,
		IsActive:       e.IsActive,
		CreatedAt:      e.CreatedAt,
	}
}

func ToEventResponses(events []Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for i := range events {
		out = append(out, ToEventResponse(&events[i]))
	}
	return out
}

type TicketResponse struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	TicketNumber string    `json:"ticket_number"`
	CreatedAt    time.Time `json:"created_at"`
	XPAwarded    int       `json:"xp_awarded,omitempty"`
	XP           int       `json:"xp,omitempty"`
	Tier         int       `json:"tier,omitempty"`
	Promoted     bool      `json:"promoted,omitempty"`
}

func ToTicketResponses(tickets []Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, TicketResponse{
			ID:           t.ID,
			EventID:      t.EventID,
			TicketNumber: t.TicketNumber,
			CreatedAt:    t.CreatedAt,
		})
	}
	return out
}

type ListEventsParams struct {
	Page       int
	PageSize   int
	ActiveOnly bool
}

func (p *ListEventsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 50 {
		p.PageSize = 20
	}
}

func (p *ListEventsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}
