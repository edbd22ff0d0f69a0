// AngelaMos | 2026
// policy_test.go

package progression

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wegtu/wegtu-backend/internal/core"
)

func TestVoteWeight(t *testing.T) {
	tests := []struct {
		name   string
		tier   int
		weight int
	}{
		{"tier 0 has no vote", 0, 0},
		{"tier 1 counts once", 1, 1},
		{"tier 2 counts three times", 2, 3},
		{"tier 3 counts five times", 3, 5},
		{"out of range tier is inert", 7, 0},
		{"negative tier is inert", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.weight, VoteWeight(tt.tier))
		})
	}
}

func TestNextTier(t *testing.T) {
	tests := []struct {
		name string
		tier int
		xp   int
		want int
	}{
		{"tier 0 never promotes on xp", 0, 1000, 0},
		{"tier 1 below threshold stays", 1, 99, 1},
		{"tier 1 at threshold promotes", 1, Tier2Threshold, 2},
		{"tier 2 below threshold stays", 2, 499, 2},
		{"tier 2 at threshold promotes", 2, Tier3Threshold, 3},
		{"tier 3 is the ceiling", 3, 100000, 3},
		{"one step even when both thresholds cleared", 1, 600, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextTier(tt.tier, tt.xp))
		})
	}
}

func TestCapabilityCheck(t *testing.T) {
	t.Run("tier gate passes at required tier", func(t *testing.T) {
		assert.NoError(t, CapVote.Check(1, false))
		assert.NoError(t, CapUploadDesign.Check(2, false))
		assert.NoError(t, CapCreatePoll.Check(3, false))
	})

	t.Run("tier gate fails below required tier", func(t *testing.T) {
		err := CapVote.Check(0, false)
		assert.True(t, errors.Is(err, core.ErrInsufficientTier))

		err = CapCreatePoll.Check(2, false)
		assert.True(t, errors.Is(err, core.ErrInsufficientTier))
	})

	t.Run("admin gate ignores tier", func(t *testing.T) {
		assert.NoError(t, CapCreateEvent.Check(0, true))

		err := CapCreateEvent.Check(3, false)
		assert.True(t, errors.Is(err, core.ErrForbidden))
	})

	t.Run("admin flag does not bypass tier gates", func(t *testing.T) {
		err := CapCreatePoll.Check(0, true)
		assert.True(t, errors.Is(err, core.ErrInsufficientTier))
	})
}
