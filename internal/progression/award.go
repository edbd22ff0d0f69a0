// AngelaMos | 2026
// award.go

package progression

import (
	"context"
	"fmt"

	"github.com/wegtu/wegtu-backend/internal/core"
)

// UserStore is the slice of user storage the award engine needs.
// AddXP must be an atomic in-place increment and PromoteTier a
// compare-and-set keyed on the current tier, so concurrent awards
// neither lose XP nor skip or double-apply a promotion step.
type UserStore interface {
	AddXP(ctx context.Context, userID string, amount int) (tier, xp int, err error)
	PromoteTier(ctx context.Context, userID string, from, to int) (bool, error)
}

// Award is the outcome of one XP credit.
type Award struct {
	UserID   string
	Amount   int
	XP       int
	Tier     int
	Promoted bool
}

// AwardXP credits amount to the user and runs one promotion check.
// Callers run it inside the same transaction as the action that earned
// the XP, so the vote/comment/redeem/ticket row and the credit commit
// or fail together.
func AwardXP(
	ctx context.Context,
	store UserStore,
	userID string,
	amount int,
) (*Award, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("award xp: amount must be positive: %w", core.ErrInvalidInput)
	}

	tier, xp, err := store.AddXP(ctx, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("award xp: %w", err)
	}

	award := &Award{
		UserID: userID,
		Amount: amount,
		XP:     xp,
		Tier:   tier,
	}

	next := NextTier(tier, xp)
	if next == tier {
		return award, nil
	}

	promoted, err := store.PromoteTier(ctx, userID, tier, next)
	if err != nil {
		return nil, fmt.Errorf("award xp: promote tier: %w", err)
	}

	// A losing CAS means a concurrent award already applied this step.
	if promoted {
		award.Tier = next
		award.Promoted = true
	}

	return award, nil
}
