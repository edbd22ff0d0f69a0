// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wegtu/wegtu-backend/internal/core"
)

type fakeRepo struct {
	mu    sync.Mutex
	users map[string]*User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]*User)}
}

func (f *fakeRepo) Create(_ context.Context, u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}

	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok || u.IsDeleted() {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == email && !u.IsDeleted() {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
}

func (f *fakeRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Username == username && !u.IsDeleted() {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
}

func (f *fakeRepo) UpdateProfile(_ context.Context, id, bio, profileImage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("update profile: %w", core.ErrNotFound)
	}
	u.Bio = bio
	u.ProfileImage = profileImage
	return nil
}

func (f *fakeRepo) AddXP(_ context.Context, id string, amount int) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return 0, 0, fmt.Errorf("add xp: %w", core.ErrNotFound)
	}
	u.XP += amount
	return u.Tier, u.XP, nil
}

func (f *fakeRepo) PromoteTier(_ context.Context, id string, from, to int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return false, fmt.Errorf("promote tier: %w", core.ErrNotFound)
	}
	if u.Tier != from {
		return false, nil
	}
	u.Tier = to
	return true, nil
}

func (f *fakeRepo) ActivateTier(_ context.Context, id string) (bool, error) {
	return f.PromoteTier(context.Background(), id, 0, 1)
}

func (f *fakeRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeRepo) IncrementTokenVersion(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("increment token version: %w", core.ErrNotFound)
	}
	u.TokenVersion++
	return nil
}

func (f *fakeRepo) SoftDelete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("soft delete: %w", core.ErrNotFound)
	}
	now := time.Now()
	u.DeletedAt = &now
	return nil
}

func (f *fakeRepo) List(_ context.Context, params ListUsersParams) ([]User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []User
	for _, u := range f.users {
		if u.IsDeleted() {
			continue
		}
		if params.Tier != nil && u.Tier != *params.Tier {
			continue
		}
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Stats(_ context.Context, _ string) (*ProfileStats, error) {
	return &ProfileStats{}, nil
}

func seedUser(t *testing.T, repo *fakeRepo, tier int, isAdmin bool) *User {
	t.Helper()

	u := &User{
		ID:           uuid.New().String(),
		Username:     "member-" + uuid.New().String()[:8],
		Email:        uuid.New().String()[:8] + "@wegtu.test",
		PasswordHash: "hash",
		ProfileImage: DefaultProfileImage,
		Tier:         tier,
		IsAdmin:      isAdmin,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo)

	t.Run("new members start at tier zero", func(t *testing.T) {
		info, err := svc.Create(ctx, "ada", "Ada@Wegtu.Test", "hash")
		require.NoError(t, err)

		assert.Equal(t, 0, info.Tier)
		assert.Equal(t, 0, info.XP)
		assert.False(t, info.IsAdmin)
		assert.Equal(t, "ada@wegtu.test", info.Email, "email stored lowercased")
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, "ada", "other@wegtu.test", "hash")
		assert.ErrorIs(t, err, core.ErrDuplicateKey)
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo)

	bio := "hello"

	t.Run("tier zero cannot edit", func(t *testing.T) {
		u := seedUser(t, repo, 0, false)

		_, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileRequest{Bio: &bio})
		assert.ErrorIs(t, err, core.ErrInsufficientTier)
	})

	t.Run("activated member edits bio", func(t *testing.T) {
		u := seedUser(t, repo, 1, false)

		updated, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileRequest{Bio: &bio})
		require.NoError(t, err)
		assert.Equal(t, "hello", updated.Bio)
		assert.Equal(t, DefaultProfileImage, updated.ProfileImage,
			"untouched fields keep their values")
	})

	t.Run("gate reads stored tier, not claims", func(t *testing.T) {
		u := seedUser(t, repo, 1, false)
		repo.mu.Lock()
		repo.users[u.ID].Tier = 0
		repo.mu.Unlock()

		_, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileRequest{Bio: &bio})
		assert.ErrorIs(t, err, core.ErrInsufficientTier)
	})

	t.Run("missing user id", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, "", UpdateProfileRequest{Bio: &bio})
		assert.ErrorIs(t, err, core.ErrUnauthorized)
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("members delete themselves", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo)
		u := seedUser(t, repo, 1, false)

		require.NoError(t, svc.DeleteUser(ctx, u.ID, u.ID))

		_, err := svc.GetUser(ctx, u.ID)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("non-admin cannot delete others", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo)
		attacker := seedUser(t, repo, 3, false)
		victim := seedUser(t, repo, 1, false)

		err := svc.DeleteUser(ctx, attacker.ID, victim.ID)
		assert.ErrorIs(t, err, core.ErrForbidden)
	})

	t.Run("admin deletes a member", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo)
		admin := seedUser(t, repo, 0, true)
		member := seedUser(t, repo, 2, false)

		require.NoError(t, svc.DeleteUser(ctx, admin.ID, member.ID))
	})

	t.Run("admins cannot delete admins", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo)
		admin := seedUser(t, repo, 0, true)
		other := seedUser(t, repo, 0, true)

		err := svc.DeleteUser(ctx, admin.ID, other.ID)
		assert.ErrorIs(t, err, core.ErrForbidden)
	})
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo)

	t.Run("requires authentication", func(t *testing.T) {
		_, err := svc.GetProfile(ctx, "")
		assert.ErrorIs(t, err, core.ErrUnauthorized)
	})

	t.Run("returns user with stats", func(t *testing.T) {
		u := seedUser(t, repo, 2, false)

		profile, err := svc.GetProfile(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.ID, profile.User.ID)
		assert.Equal(t, 2, profile.User.Tier)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.GetProfile(ctx, uuid.New().String())
		assert.True(t, errors.Is(err, core.ErrNotFound))
	})
}
