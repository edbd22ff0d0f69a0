// AngelaMos | 2026
// service_test.go

package qr

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wegtu/wegtu-backend/internal/core"
	"github.com/wegtu/wegtu-backend/internal/user"
)

type fakeRepo struct {
	mu    sync.Mutex
	codes map[string]*Code // keyed by hash_id
}

func newFakeRepo(codes ...*Code) *fakeRepo {
	f := &fakeRepo{codes: map[string]*Code{}}
	for _, c := range codes {
		f.codes[c.HashID] = c
	}
	return f
}

func (f *fakeRepo) Create(_ context.Context, code *Code) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.codes[code.HashID]; ok {
		return core.ErrDuplicateKey
	}
	f.codes[code.HashID] = code
	return nil
}

func (f *fakeRepo) GetByHash(_ context.Context, hashID string) (*Code, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.codes[hashID]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) Consume(
	_ context.Context,
	hashID, userID string,
) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.codes[hashID]
	if !ok || c.IsUsed {
		return false, nil
	}
	c.IsUsed = true
	c.UsedByUserID = &userID
	return true, nil
}

func (f *fakeRepo) List(_ context.Context, _, _ int) ([]Code, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Code, 0, len(f.codes))
	for _, c := range f.codes {
		out = append(out, *c)
	}
	return out, len(out), nil
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*user.User
}

func newFakeUsers(users ...*user.User) *fakeUsers {
	f := &fakeUsers{users: map[string]*user.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) ActivateTier(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.Tier != 0 {
		return false, nil
	}
	u.Tier = 1
	return true, nil
}

func (f *fakeUsers) AddXP(
	_ context.Context,
	id string,
	amount int,
) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return 0, 0, core.ErrNotFound
	}
	u.XP += amount
	return u.Tier, u.XP, nil
}

func (f *fakeUsers) PromoteTier(
	_ context.Context,
	id string,
	from, to int,
) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.Tier != from {
		return false, nil
	}
	u.Tier = to
	return true, nil
}

func testService(repo *fakeRepo, users *fakeUsers) *Service {
	return newService(
		func(_ context.Context, fn func(tx core.DBTX) error) error {
			return fn(nil)
		},
		repo,
		func(core.DBTX) Repository { return repo },
		func(core.DBTX) UserStore { return users },
	)
}

func freshCode(xpValue int) *Code {
	return &Code{
		ID:      uuid.New().String(),
		HashID:  uuid.New().String(),
		XPValue: xpValue,
	}
}

func TestRedeem(t *testing.T) {
	ctx := context.Background()

	t.Run("first redemption activates a tier 0 member", func(t *testing.T) {
		code := freshCode(10)
		repo := newFakeRepo(code)
		member := &user.User{ID: uuid.New().String(), Tier: 0, XP: 0}
		users := newFakeUsers(member)

		svc := testService(repo, users)

		resp, err := svc.Redeem(ctx, member.ID, code.HashID)
		require.NoError(t, err)

		assert.True(t, resp.Activated)
		assert.Equal(t, 1, resp.Tier)
		assert.Equal(t, 10, resp.XP)
		assert.Equal(t, 10, resp.XPAwarded)
	})

	t.Run("active member just earns the xp", func(t *testing.T) {
		code := freshCode(25)
		repo := newFakeRepo(code)
		member := &user.User{ID: uuid.New().String(), Tier: 2, XP: 200}
		users := newFakeUsers(member)

		svc := testService(repo, users)

		resp, err := svc.Redeem(ctx, member.ID, code.HashID)
		require.NoError(t, err)

		assert.False(t, resp.Activated)
		assert.Equal(t, 2, resp.Tier)
		assert.Equal(t, 225, resp.XP)
	})

	t.Run("used code cannot be redeemed again", func(t *testing.T) {
		code := freshCode(10)
		repo := newFakeRepo(code)
		first := &user.User{ID: uuid.New().String(), Tier: 1}
		second := &user.User{ID: uuid.New().String(), Tier: 1}
		users := newFakeUsers(first, second)

		svc := testService(repo, users)

		_, err := svc.Redeem(ctx, first.ID, code.HashID)
		require.NoError(t, err)

		_, err = svc.Redeem(ctx, second.ID, code.HashID)
		assert.ErrorIs(t, err, ErrAlreadyUsed)

		// the loser earned nothing
		u, err := users.GetByID(ctx, second.ID)
		require.NoError(t, err)
		assert.Zero(t, u.XP)
	})

	t.Run("unknown code", func(t *testing.T) {
		repo := newFakeRepo()
		member := &user.User{ID: uuid.New().String(), Tier: 1}
		users := newFakeUsers(member)

		svc := testService(repo, users)

		_, err := svc.Redeem(ctx, member.ID, "nope")
		assert.True(t, errors.Is(err, core.ErrNotFound))
	})

	t.Run("high-value code activates then promotes in one redemption", func(t *testing.T) {
		// Activation happens before the XP credit, so a tier 0 member
		// redeeming a code worth a whole threshold lands on tier 2,
		// not tier 1.
		code := freshCode(100)
		repo := newFakeRepo(code)
		member := &user.User{ID: uuid.New().String(), Tier: 0, XP: 0}
		users := newFakeUsers(member)

		svc := testService(repo, users)

		resp, err := svc.Redeem(ctx, member.ID, code.HashID)
		require.NoError(t, err)

		assert.True(t, resp.Activated)
		assert.True(t, resp.Promoted)
		assert.Equal(t, 2, resp.Tier)
		assert.Equal(t, 100, resp.XP)
	})

	t.Run("redemption crossing a threshold promotes", func(t *testing.T) {
		code := freshCode(50)
		repo := newFakeRepo(code)
		member := &user.User{ID: uuid.New().String(), Tier: 1, XP: 60}
		users := newFakeUsers(member)

		svc := testService(repo, users)

		resp, err := svc.Redeem(ctx, member.ID, code.HashID)
		require.NoError(t, err)

		assert.True(t, resp.Promoted)
		assert.Equal(t, 2, resp.Tier)
	})
}

func TestRedeemConcurrent(t *testing.T) {
	code := freshCode(10)
	repo := newFakeRepo(code)

	const workers = 20

	members := make([]*user.User, workers)
	allUsers := make([]*user.User, 0, workers)
	for i := range members {
		members[i] = &user.User{ID: uuid.New().String(), Tier: 1}
		allUsers = append(allUsers, members[i])
	}
	users := newFakeUsers(allUsers...)

	svc := testService(repo, users)

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(m *user.User) {
			defer wg.Done()
			_, err := svc.Redeem(context.Background(), m.ID, code.HashID)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ErrAlreadyUsed):
				conflicts.Add(1)
			}
		}(members[i])
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(workers-1), conflicts.Load())
}

func TestGenerateBatch(t *testing.T) {
	ctx := context.Background()

	repo := newFakeRepo()
	svc := testService(repo, newFakeUsers())

	codes, err := svc.GenerateBatch(ctx, 5, 0)
	require.NoError(t, err)
	require.Len(t, codes, 5)

	seen := map[string]bool{}
	for _, c := range codes {
		assert.Equal(t, DefaultXPValue, c.XPValue)
		assert.False(t, seen[c.HashID])
		seen[c.HashID] = true
	}
}
