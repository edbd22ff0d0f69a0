// AngelaMos | 2026
// entity.go

package event

import (
	"time"
)

type Event struct {
	ID             string    `db:"id"`
	Title          string    `db:"title"`
	Description    string    `db:"description"`
	Location       string    `db:"location"`
	EventDate      time.Time `db:"event_date"`
	TicketXPReward int       `db:"ticket_xp_reward"`
	IsActive       bool      `db:"is_active"`
	CreatedBy      string    `db:"created_by_user_id"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Ticket is a member's admission to an event. One ticket per member
// per event, enforced by the database.
type Ticket struct {
	ID           string    `db:"id"`
	EventID      string    `db:"event_id"`
	UserID       string    `db:"user_id"`
	TicketNumber string    `db:"ticket_number"`
	CreatedAt    time.Time `db:"created_at"`
}

const DefaultTicketXPReward = 20
