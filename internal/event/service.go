// AngelaMos | 2026
// service.go

package event

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/wegtu/wegtu-backend/internal/core"
	"github.com/wegtu/wegtu-backend/internal/progression"
	"github.com/wegtu/wegtu-backend/internal/user"
)

var (
	ErrDuplicateTicket = errors.New("already holding a ticket for this event")
	ErrEventClosed     = errors.New("event is not active")
)

type UserStore interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
	AddXP(ctx context.Context, id string, amount int) (tier, xp int, err error)
	PromoteTier(ctx context.Context, id string, from, to int) (bool, error)
}

type Service struct {
	run   core.TxRunner
	repo  Repository
	users UserStore

	repoTx  func(core.DBTX) Repository
	usersTx func(core.DBTX) UserStore
}

func NewService(db *sqlx.DB) *Service {
	return newService(
		core.NewTxRunner(db),
		NewRepository(db),
		user.NewRepository(db),
		func(tx core.DBTX) Repository { return NewRepository(tx) },
		func(tx core.DBTX) UserStore { return user.NewRepository(tx) },
	)
}

func newService(
	run core.TxRunner,
	repo Repository,
	users UserStore,
	repoTx func(core.DBTX) Repository,
	usersTx func(core.DBTX) UserStore,
) *Service {
	return &Service{
		run:     run,
		repo:    repo,
		users:   users,
		repoTx:  repoTx,
		usersTx: usersTx,
	}
}

func (s *Service) CreateEvent(
	ctx context.Context,
	creatorID string,
	req CreateEventRequest,
) (*Event, error) {
	u, err := s.users.GetByID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := progression.CapCreateEvent.Check(u.Tier, u.IsAdmin); err != nil {
		return nil, err
	}

	reward := req.TicketXPReward
	if reward <= 0 {
		reward = DefaultTicketXPReward
	}

	e := &Event{
		ID:             uuid.New().String(),
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		EventDate:      req.EventDate,
		TicketXPReward: reward,
		IsActive:       true,
		CreatedBy:      creatorID,
	}

	if err := s.repo.CreateEvent(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

func (s *Service) GetEvent(ctx context.Context, id string) (*Event, error) {
	return s.repo.GetEvent(ctx, id)
}

func (s *Service) ListEvents(
	ctx context.Context,
	params ListEventsParams,
) ([]Event, int, error) {
	params.Normalize()
	return s.repo.ListEvents(ctx, params)
}

func (s *Service) DeleteEvent(ctx context.Context, eventID, actorID string) error {
	u, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	if err := progression.CapDeleteContent.Check(u.Tier, u.IsAdmin); err != nil {
		return err
	}

	return s.repo.DeleteEvent(ctx, eventID)
}

// BuyTicket issues one admission ticket and credits the event's XP
// reward in the same transaction. The unique index on (user_id,
// event_id) settles races: concurrent purchases yield exactly one
// ticket.
func (s *Service) BuyTicket(
	ctx context.Context,
	userID, eventID string,
) (*Ticket, *progression.Award, error) {
	var (
		ticket *Ticket
		award  *progression.Award
	)

	err := s.run(ctx, func(tx core.DBTX) error {
		repo := s.repoTx(tx)
		users := s.usersTx(tx)

		e, err := repo.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if !e.IsActive {
			return ErrEventClosed
		}

		t := &Ticket{
			ID:           uuid.New().String(),
			EventID:      eventID,
			UserID:       userID,
			TicketNumber: ticketNumber(eventID, userID),
		}
		if err := repo.InsertTicket(ctx, t); err != nil {
			if errors.Is(err, core.ErrDuplicateKey) {
				return ErrDuplicateTicket
			}
			return err
		}

		a, err := progression.AwardXP(ctx, users, userID, e.TicketXPReward)
		if err != nil {
			return err
		}

		ticket = t
		award = a
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return ticket, award, nil
}

func (s *Service) MyTickets(ctx context.Context, userID string) ([]Ticket, error) {
	return s.repo.ListTicketsForUser(ctx, userID)
}

// ticketNumber builds a human-readable admission code from prefixes of
// the event and user IDs plus a short random suffix.
func ticketNumber(eventID, userID string) string {
	return fmt.Sprintf(
		"TKT-%s-%s-%d",
		shortID(eventID),
		shortID(userID),
		1000+rand.IntN(9000),
	)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
