// AngelaMos | 2026
// award_test.go

package progression

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wegtu/wegtu-backend/internal/core"
)

type fakeUserStore struct {
	tier int
	xp   int

	promoteCalls int
	failPromote  bool
}

func (f *fakeUserStore) AddXP(
	_ context.Context,
	_ string,
	amount int,
) (int, int, error) {
	f.xp += amount
	return f.tier, f.xp, nil
}

func (f *fakeUserStore) PromoteTier(
	_ context.Context,
	_ string,
	from, to int,
) (bool, error) {
	f.promoteCalls++
	if f.failPromote {
		return false, nil
	}
	if f.tier != from {
		return false, nil
	}
	f.tier = to
	return true, nil
}

func TestAwardXP(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		store := &fakeUserStore{tier: 1}

		_, err := AwardXP(ctx, store, "u1", 0)
		assert.True(t, errors.Is(err, core.ErrInvalidInput))

		_, err = AwardXP(ctx, store, "u1", -5)
		assert.True(t, errors.Is(err, core.ErrInvalidInput))
	})

	t.Run("credits without promotion below threshold", func(t *testing.T) {
		store := &fakeUserStore{tier: 1, xp: 10}

		award, err := AwardXP(ctx, store, "u1", XPVoteCast)
		require.NoError(t, err)

		assert.Equal(t, 15, award.XP)
		assert.Equal(t, 1, award.Tier)
		assert.False(t, award.Promoted)
		assert.Zero(t, store.promoteCalls)
	})

	t.Run("promotes when the award crosses the threshold", func(t *testing.T) {
		store := &fakeUserStore{tier: 1, xp: Tier2Threshold - 2}

		award, err := AwardXP(ctx, store, "u1", XPComment)
		require.NoError(t, err)

		assert.Equal(t, Tier2Threshold, award.XP)
		assert.Equal(t, 2, award.Tier)
		assert.True(t, award.Promoted)
	})

	t.Run("applies one promotion step even past both thresholds", func(t *testing.T) {
		store := &fakeUserStore{tier: 1, xp: 0}

		award, err := AwardXP(ctx, store, "u1", Tier3Threshold+100)
		require.NoError(t, err)

		assert.Equal(t, 2, award.Tier)
		assert.True(t, award.Promoted)
		assert.Equal(t, 1, store.promoteCalls)
	})

	t.Run("losing the promotion race is not an error", func(t *testing.T) {
		store := &fakeUserStore{tier: 1, xp: Tier2Threshold, failPromote: true}

		award, err := AwardXP(ctx, store, "u1", XPVoteCast)
		require.NoError(t, err)

		assert.False(t, award.Promoted)
		assert.Equal(t, 1, award.Tier)
	})

	t.Run("tier 0 accrues xp without promotion", func(t *testing.T) {
		store := &fakeUserStore{tier: 0}

		award, err := AwardXP(ctx, store, "u1", 500)
		require.NoError(t, err)

		assert.Equal(t, 0, award.Tier)
		assert.False(t, award.Promoted)
		assert.Zero(t, store.promoteCalls)
	})
}
