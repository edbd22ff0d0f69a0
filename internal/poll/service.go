// AngelaMos | 2026
// service.go

package poll

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/wegtu/wegtu-backend/internal/core"
	"github.com/wegtu/wegtu-backend/internal/design"
	"github.com/wegtu/wegtu-backend/internal/progression"
	"github.com/wegtu/wegtu-backend/internal/user"
)

var (
	ErrDuplicateVote       = errors.New("already voted in this poll")
	ErrPollClosed          = errors.New("poll is not active")
	ErrOptionNotInPoll     = errors.New("option does not belong to this poll")
	ErrNotPollCreator      = errors.New("only the poll creator can manage options")
	ErrDesignNotSelectable = errors.New("design is not selectable for this creator")
)

// UserStore is the slice of user storage the poll engine needs: fresh
// tier reads for capability checks and vote weights, plus the XP hooks
// the award engine drives.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
	AddXP(ctx context.Context, id string, amount int) (tier, xp int, err error)
	PromoteTier(ctx context.Context, id string, from, to int) (bool, error)
}

type DesignStore interface {
	IsSelectable(ctx context.Context, designID, userID string) (bool, error)
}

// Service coordinates polls, votes and comments. Anything that credits
// XP runs inside one transaction, so the vote or comment row and the
// award commit or roll back together.
type Service struct {
	run   core.TxRunner
	repo  Repository
	users UserStore

	repoTx    func(core.DBTX) Repository
	usersTx   func(core.DBTX) UserStore
	designsTx func(core.DBTX) DesignStore
}

func NewService(db *sqlx.DB) *Service {
	return newService(
		core.NewTxRunner(db),
		NewRepository(db),
		user.NewRepository(db),
		func(tx core.DBTX) Repository { return NewRepository(tx) },
		func(tx core.DBTX) UserStore { return user.NewRepository(tx) },
		func(tx core.DBTX) DesignStore { return design.NewRepository(tx) },
	)
}

func newService(
	run core.TxRunner,
	repo Repository,
	users UserStore,
	repoTx func(core.DBTX) Repository,
	usersTx func(core.DBTX) UserStore,
	designsTx func(core.DBTX) DesignStore,
) *Service {
	return &Service{
		run:       run,
		repo:      repo,
		users:     users,
		repoTx:    repoTx,
		usersTx:   usersTx,
		designsTx: designsTx,
	}
}

func (s *Service) CreatePoll(
	ctx context.Context,
	creatorID string,
	req CreatePollRequest,
) (*Poll, error) {
	u, err := s.users.GetByID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := progression.CapCreatePoll.Check(u.Tier, u.IsAdmin); err != nil {
		return nil, err
	}

	p := &Poll{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		IsActive:    true,
		CreatedBy:   creatorID,
	}

	if err := s.repo.CreatePoll(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// AddOption attaches a design to a poll. Only the poll creator may do
// this, the design must be selectable by them, and each design appears
// at most once per poll.
func (s *Service) AddOption(
	ctx context.Context,
	pollID, actorID, designID string,
) (*Option, error) {
	var added *Option

	err := s.run(ctx, func(tx core.DBTX) error {
		repo := s.repoTx(tx)

		u, err := s.usersTx(tx).GetByID(ctx, actorID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if err := progression.CapManagePollItems.Check(u.Tier, u.IsAdmin); err != nil {
			return err
		}

		p, err := repo.GetPoll(ctx, pollID)
		if err != nil {
			return err
		}
		if p.CreatedBy != actorID {
			return ErrNotPollCreator
		}
		if !p.IsActive {
			return ErrPollClosed
		}

		selectable, err := s.designsTx(tx).IsSelectable(ctx, designID, actorID)
		if err != nil {
			return err
		}
		if !selectable {
			return ErrDesignNotSelectable
		}

		o := &Option{
			ID:       uuid.New().String(),
			PollID:   pollID,
			DesignID: designID,
		}
		if err := repo.AddOption(ctx, o); err != nil {
			return err
		}

		added = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	return added, nil
}

// CastVote records a ballot and credits the voter's XP in the same
// transaction. Weight is snapshotted from the voter's tier at cast
// time. The unique index on (user_id, poll_id) settles races: two
// concurrent casts yield exactly one vote.
func (s *Service) CastVote(
	ctx context.Context,
	userID, pollID, optionID string,
) (*Vote, *progression.Award, error) {
	var (
		vote  *Vote
		award *progression.Award
	)

	err := s.run(ctx, func(tx core.DBTX) error {
		repo := s.repoTx(tx)
		users := s.usersTx(tx)

		u, err := users.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if err := progression.CapVote.Check(u.Tier, u.IsAdmin); err != nil {
			return err
		}

		p, err := repo.GetPoll(ctx, pollID)
		if err != nil {
			return err
		}
		if !p.IsActive {
			return ErrPollClosed
		}

		voted, err := repo.HasVoted(ctx, userID, pollID)
		if err != nil {
			return err
		}
		if voted {
			return ErrDuplicateVote
		}

		o, err := repo.GetOption(ctx, optionID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return ErrOptionNotInPoll
			}
			return err
		}
		if o.PollID != pollID {
			return ErrOptionNotInPoll
		}

		v := &Vote{
			ID:       uuid.New().String(),
			UserID:   userID,
			PollID:   pollID,
			OptionID: optionID,
			Weight:   progression.VoteWeight(u.Tier),
		}
		if err := repo.InsertVote(ctx, v); err != nil {
			if errors.Is(err, core.ErrDuplicateKey) {
				return ErrDuplicateVote
			}
			return err
		}

		a, err := progression.AwardXP(ctx, users, userID, progression.XPVoteCast)
		if err != nil {
			return err
		}

		vote = v
		award = a
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return vote, award, nil
}

// AddComment posts a comment and credits the author's XP in the same
// transaction.
func (s *Service) AddComment(
	ctx context.Context,
	userID, pollID, body string,
) (*Comment, *progression.Award, error) {
	var (
		comment *Comment
		award   *progression.Award
	)

	err := s.run(ctx, func(tx core.DBTX) error {
		repo := s.repoTx(tx)
		users := s.usersTx(tx)

		// Commenting needs authentication only; any tier may post
		// and earn the XP credit.
		u, err := users.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}

		p, err := repo.GetPoll(ctx, pollID)
		if err != nil {
			return err
		}
		if !p.IsActive {
			return ErrPollClosed
		}

		c := &Comment{
			ID:       uuid.New().String(),
			Body:     body,
			UserID:   userID,
			Username: u.Username,
			PollID:   pollID,
		}
		if err := repo.InsertComment(ctx, c); err != nil {
			return err
		}

		a, err := progression.AwardXP(ctx, users, userID, progression.XPComment)
		if err != nil {
			return err
		}

		comment = c
		award = a
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return comment, award, nil
}

func (s *Service) GetPoll(
	ctx context.Context,
	id string,
) (*Poll, []Option, error) {
	p, err := s.repo.GetPoll(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	options, err := s.repo.ListOptions(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return p, options, nil
}

func (s *Service) OptionsFor(
	ctx context.Context,
	pollID string,
) ([]Option, error) {
	return s.repo.ListOptions(ctx, pollID)
}

func (s *Service) ListPolls(
	ctx context.Context,
	params ListPollsParams,
) ([]Poll, int, error) {
	params.Normalize()
	return s.repo.ListPolls(ctx, params)
}

func (s *Service) Results(
	ctx context.Context,
	pollID string,
) ([]OptionResult, error) {
	if _, err := s.repo.GetPoll(ctx, pollID); err != nil {
		return nil, err
	}
	return s.repo.Results(ctx, pollID)
}

func (s *Service) ListComments(
	ctx context.Context,
	pollID string,
	page, pageSize int,
) ([]Comment, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 50 {
		pageSize = 20
	}

	if _, err := s.repo.GetPoll(ctx, pollID); err != nil {
		return nil, 0, err
	}

	return s.repo.ListComments(ctx, pollID, page, pageSize)
}

// DeletePoll is admin-only, matching the moderation rules of the rest
// of the platform.
func (s *Service) DeletePoll(ctx context.Context, pollID, actorID string) error {
	u, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	if err := progression.CapDeleteContent.Check(u.Tier, u.IsAdmin); err != nil {
		return err
	}

	return s.repo.DeletePoll(ctx, pollID)
}

// Feed merges polls, forum posts and events; event items are annotated
// with has_ticket when a viewer is known.
func (s *Service) Feed(
	ctx context.Context,
	viewerID string,
	params FeedParams,
) ([]FeedItem, int, error) {
	params.Normalize()

	items, total, err := s.repo.Feed(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	if viewerID != "" {
		eventIDs := []string{}
		for _, item := range items {
			if item.Kind == "event" {
				eventIDs = append(eventIDs, item.ID)
			}
		}

		ticketed, err := s.repo.TicketedEvents(ctx, viewerID, eventIDs)
		if err != nil {
			return nil, 0, err
		}

		for i := range items {
			if items[i].Kind == "event" {
				has := ticketed[items[i].ID]
				items[i].HasTicket = &has
			}
		}
	}

	return items, total, nil
}
