// AngelaMos | 2026
// service_test.go

package design

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wegtu/wegtu-backend/internal/core"
	"github.com/wegtu/wegtu-backend/internal/user"
)

type fakeRepo struct {
	designs  map[string]*Design
	requests map[string]*CheckRequest
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		designs:  map[string]*Design{},
		requests: map[string]*CheckRequest{},
	}
}

func (f *fakeRepo) Create(_ context.Context, d *Design) error {
	f.designs[d.ID] = d
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Design, error) {
	d, ok := f.designs[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeRepo) List(
	_ context.Context,
	params ListDesignsParams,
) ([]Design, int, error) {
	out := []Design{}
	for _, d := range f.designs {
		if params.Category != "" && string(d.Category) != params.Category {
			continue
		}
		if params.UserID != "" && d.UserID != params.UserID {
			continue
		}
		out = append(out, *d)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.designs[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.designs, id)
	return nil
}

func (f *fakeRepo) CreateCheckRequest(_ context.Context, cr *CheckRequest) error {
	for _, existing := range f.requests {
		if existing.RequesterID == cr.RequesterID &&
			existing.ApproverID == cr.ApproverID &&
			existing.Status == CheckPending {
			return core.ErrDuplicateKey
		}
	}
	f.requests[cr.ID] = cr
	return nil
}

func (f *fakeRepo) GetCheckRequest(
	_ context.Context,
	id string,
) (*CheckRequest, error) {
	cr, ok := f.requests[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *cr
	return &cp, nil
}

func (f *fakeRepo) ListCheckRequestsForApprover(
	_ context.Context,
	approverID string,
	status CheckStatus,
) ([]CheckRequest, error) {
	out := []CheckRequest{}
	for _, cr := range f.requests {
		if cr.ApproverID != approverID {
			continue
		}
		if status != "" && cr.Status != status {
			continue
		}
		out = append(out, *cr)
	}
	return out, nil
}

func (f *fakeRepo) ListCheckRequestsForRequester(
	_ context.Context,
	requesterID string,
) ([]CheckRequest, error) {
	out := []CheckRequest{}
	for _, cr := range f.requests {
		if cr.RequesterID == requesterID {
			out = append(out, *cr)
		}
	}
	return out, nil
}

func (f *fakeRepo) ResolveCheckRequest(
	_ context.Context,
	id string,
	to CheckStatus,
) (bool, error) {
	cr, ok := f.requests[id]
	if !ok || cr.Status != CheckPending {
		return false, nil
	}
	cr.Status = to
	return true, nil
}

func (f *fakeRepo) IsSelectable(
	_ context.Context,
	designID, userID string,
) (bool, error) {
	d, ok := f.designs[designID]
	if !ok {
		return false, nil
	}
	if d.UserID == userID {
		return true, nil
	}
	for _, cr := range f.requests {
		if cr.ApproverID == userID &&
			cr.RequesterID == d.UserID &&
			cr.Status == CheckApproved {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) ListSelectable(
	ctx context.Context,
	userID string,
) ([]Design, error) {
	out := []Design{}
	for id, d := range f.designs {
		ok, _ := f.IsSelectable(ctx, id, userID)
		if ok {
			out = append(out, *d)
		}
	}
	return out, nil
}

type fakeUsers struct {
	users map[string]*user.User
}

func (f *fakeUsers) GetUser(_ context.Context, id string) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func member(tier int, isAdmin bool) *user.User {
	return &user.User{
		ID:      uuid.New().String(),
		Tier:    tier,
		IsAdmin: isAdmin,
	}
}

func testService(repo *fakeRepo, members ...*user.User) *Service {
	users := &fakeUsers{users: map[string]*user.User{}}
	for _, m := range members {
		users.users[m.ID] = m
	}
	return NewService(repo, users)
}

func TestCreateDesign(t *testing.T) {
	ctx := context.Background()

	req := CreateDesignRequest{
		Title:     "breaker jacket",
		ImagePath: "uploads/breaker.png",
		Category:  "hoodie",
	}

	t.Run("requires tier 2", func(t *testing.T) {
		creator := member(1, false)
		svc := testService(newFakeRepo(), creator)

		_, err := svc.CreateDesign(ctx, creator.ID, req)
		assert.True(t, errors.Is(err, core.ErrInsufficientTier))
	})

	t.Run("tier 2 uploads", func(t *testing.T) {
		creator := member(2, false)
		svc := testService(newFakeRepo(), creator)

		d, err := svc.CreateDesign(ctx, creator.ID, req)
		require.NoError(t, err)

		assert.Equal(t, creator.ID, d.UserID)
		assert.Equal(t, CategoryHoodie, d.Category)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		creator := member(2, false)
		svc := testService(newFakeRepo(), creator)

		bad := req
		bad.Category = "sneaker"

		_, err := svc.CreateDesign(ctx, creator.ID, bad)
		assert.True(t, errors.Is(err, core.ErrInvalidInput))
	})
}

func TestDeleteDesign(t *testing.T) {
	ctx := context.Background()

	seed := func(repo *fakeRepo, ownerID string) *Design {
		d := &Design{
			ID:       uuid.New().String(),
			Title:    "tee",
			Category: CategoryTShirt,
			UserID:   ownerID,
		}
		repo.designs[d.ID] = d
		return d
	}

	t.Run("owner deletes their own", func(t *testing.T) {
		repo := newFakeRepo()
		owner := member(2, false)
		d := seed(repo, owner.ID)

		svc := testService(repo, owner)
		require.NoError(t, svc.DeleteDesign(ctx, d.ID, owner.ID))
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		repo := newFakeRepo()
		owner := member(2, false)
		stranger := member(3, false)
		d := seed(repo, owner.ID)

		svc := testService(repo, owner, stranger)

		err := svc.DeleteDesign(ctx, d.ID, stranger.ID)
		assert.True(t, errors.Is(err, core.ErrForbidden))
	})

	t.Run("admin moderates", func(t *testing.T) {
		repo := newFakeRepo()
		owner := member(2, false)
		admin := member(0, true)
		d := seed(repo, owner.ID)

		svc := testService(repo, owner, admin)
		require.NoError(t, svc.DeleteDesign(ctx, d.ID, admin.ID))
	})
}

func TestCheckRequests(t *testing.T) {
	ctx := context.Background()

	t.Run("cannot request from yourself", func(t *testing.T) {
		requester := member(2, false)
		svc := testService(newFakeRepo(), requester)

		_, err := svc.RequestCheck(ctx, requester.ID, requester.ID)
		assert.ErrorIs(t, err, ErrSelfCheck)
	})

	t.Run("requester needs tier 2", func(t *testing.T) {
		requester := member(1, false)
		approver := member(3, false)
		svc := testService(newFakeRepo(), requester, approver)

		_, err := svc.RequestCheck(ctx, requester.ID, approver.ID)
		assert.True(t, errors.Is(err, core.ErrInsufficientTier))
	})

	t.Run("only the approver resolves", func(t *testing.T) {
		repo := newFakeRepo()
		requester := member(2, false)
		approver := member(3, false)
		stranger := member(3, false)
		svc := testService(repo, requester, approver, stranger)

		cr, err := svc.RequestCheck(ctx, requester.ID, approver.ID)
		require.NoError(t, err)

		_, err = svc.ResolveCheck(ctx, cr.ID, stranger.ID, true)
		assert.True(t, errors.Is(err, core.ErrForbidden))

		resolved, err := svc.ResolveCheck(ctx, cr.ID, approver.ID, true)
		require.NoError(t, err)
		assert.Equal(t, CheckApproved, resolved.Status)
	})

	t.Run("resolving twice fails", func(t *testing.T) {
		repo := newFakeRepo()
		requester := member(2, false)
		approver := member(3, false)
		svc := testService(repo, requester, approver)

		cr, err := svc.RequestCheck(ctx, requester.ID, approver.ID)
		require.NoError(t, err)

		_, err = svc.ResolveCheck(ctx, cr.ID, approver.ID, false)
		require.NoError(t, err)

		_, err = svc.ResolveCheck(ctx, cr.ID, approver.ID, true)
		assert.ErrorIs(t, err, ErrAlreadyResolved)
	})
}

func TestSelectableDesigns(t *testing.T) {
	ctx := context.Background()

	repo := newFakeRepo()
	creator := member(3, false)
	approved := member(2, false)
	unapproved := member(2, false)
	svc := testService(repo, creator, approved, unapproved)

	own := &Design{ID: uuid.New().String(), UserID: creator.ID, Category: CategoryOther}
	fromApproved := &Design{ID: uuid.New().String(), UserID: approved.ID, Category: CategoryOther}
	fromUnapproved := &Design{ID: uuid.New().String(), UserID: unapproved.ID, Category: CategoryOther}
	repo.designs[own.ID] = own
	repo.designs[fromApproved.ID] = fromApproved
	repo.designs[fromUnapproved.ID] = fromUnapproved

	cr, err := svc.RequestCheck(ctx, approved.ID, creator.ID)
	require.NoError(t, err)
	_, err = svc.ResolveCheck(ctx, cr.ID, creator.ID, true)
	require.NoError(t, err)

	designs, err := svc.SelectableDesigns(ctx, creator.ID)
	require.NoError(t, err)
	require.Len(t, designs, 2)

	ids := map[string]bool{}
	for _, d := range designs {
		ids[d.ID] = true
	}
	assert.True(t, ids[own.ID])
	assert.True(t, ids[fromApproved.ID])
	assert.False(t, ids[fromUnapproved.ID])

	ok, err := svc.IsSelectable(ctx, fromUnapproved.ID, creator.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
