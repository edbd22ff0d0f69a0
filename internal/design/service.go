// AngelaMos | 2026
// service.go

package design

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/wegtu/wegtu-backend/internal/core"
	"github.com/wegtu/wegtu-backend/internal/progression"
	"github.com/wegtu/wegtu-backend/internal/user"
)

var (
	ErrSelfCheck       = errors.New("cannot request a design check from yourself")
	ErrAlreadyResolved = errors.New("check request already resolved")
)

// UserStore is the slice of the user service the design workflows need.
// Capability checks always read the member's current tier from storage,
// never from token claims.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
}

type Service struct {
	repo  Repository
	users UserStore
}

func NewService(repo Repository, users UserStore) *Service {
	return &Service{repo: repo, users: users}
}

func (s *Service) CreateDesign(
	ctx context.Context,
	userID string,
	req CreateDesignRequest,
) (*Design, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := progression.CapUploadDesign.Check(u.Tier, u.IsAdmin); err != nil {
		return nil, err
	}

	d := &Design{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		ImagePath:   req.ImagePath,
		Category:    Category(req.Category),
		UserID:      userID,
	}

	if !d.Category.Valid() {
		return nil, fmt.Errorf("create design: %w", core.ErrInvalidInput)
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	return d, nil
}

func (s *Service) GetDesign(ctx context.Context, id string) (*Design, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListDesigns(
	ctx context.Context,
	params ListDesignsParams,
) ([]Design, int, error) {
	params.Normalize()
	if params.Category != "" && !Category(params.Category).Valid() {
		return nil, 0, fmt.Errorf("list designs: %w", core.ErrInvalidInput)
	}
	return s.repo.List(ctx, params)
}

// DeleteDesign removes a design. Owners may delete their own work;
// anything else requires an admin.
func (s *Service) DeleteDesign(
	ctx context.Context,
	designID, actorID string,
) error {
	d, err := s.repo.GetByID(ctx, designID)
	if err != nil {
		return err
	}

	if d.UserID != actorID {
		actor, err := s.users.GetUser(ctx, actorID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if err := progression.CapDeleteContent.Check(actor.Tier, actor.IsAdmin); err != nil {
			return err
		}
	}

	return s.repo.Delete(ctx, designID)
}

func (s *Service) RequestCheck(
	ctx context.Context,
	requesterID, approverID string,
) (*CheckRequest, error) {
	if requesterID == approverID {
		return nil, ErrSelfCheck
	}

	requester, err := s.users.GetUser(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("load requester: %w", err)
	}
	if err := progression.CapUploadDesign.Check(requester.Tier, requester.IsAdmin); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUser(ctx, approverID); err != nil {
		return nil, fmt.Errorf("load approver: %w", err)
	}

	cr := &CheckRequest{
		ID:          uuid.New().String(),
		RequesterID: requesterID,
		ApproverID:  approverID,
		Status:      CheckPending,
	}

	if err := s.repo.CreateCheckRequest(ctx, cr); err != nil {
		return nil, err
	}

	return cr, nil
}

func (s *Service) IncomingChecks(
	ctx context.Context,
	approverID string,
	status string,
) ([]CheckRequest, error) {
	st := CheckStatus(status)
	if status != "" &&
		st != CheckPending && st != CheckApproved && st != CheckRejected {
		return nil, fmt.Errorf("list checks: %w", core.ErrInvalidInput)
	}
	return s.repo.ListCheckRequestsForApprover(ctx, approverID, st)
}

func (s *Service) OutgoingChecks(
	ctx context.Context,
	requesterID string,
) ([]CheckRequest, error) {
	return s.repo.ListCheckRequestsForRequester(ctx, requesterID)
}

func (s *Service) ResolveCheck(
	ctx context.Context,
	requestID, approverID string,
	approve bool,
) (*CheckRequest, error) {
	cr, err := s.repo.GetCheckRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if cr.ApproverID != approverID {
		return nil, fmt.Errorf("resolve check: %w", core.ErrForbidden)
	}

	to := CheckRejected
	if approve {
		to = CheckApproved
	}

	resolved, err := s.repo.ResolveCheckRequest(ctx, requestID, to)
	if err != nil {
		return nil, err
	}
	if !resolved {
		return nil, ErrAlreadyResolved
	}

	cr.Status = to
	return cr, nil
}

// SelectableDesigns lists designs a poll creator may attach as options:
// their own plus those of requesters whose check they approved.
func (s *Service) SelectableDesigns(
	ctx context.Context,
	userID string,
) ([]Design, error) {
	return s.repo.ListSelectable(ctx, userID)
}

func (s *Service) IsSelectable(
	ctx context.Context,
	designID, userID string,
) (bool, error) {
	return s.repo.IsSelectable(ctx, designID, userID)
}
