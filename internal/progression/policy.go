// AngelaMos | 2026
// policy.go

package progression

import (
	"fmt"

	"github.com/wegtu/wegtu-backend/internal/core"
)

// Tiers run 0 through 3. Tier 0 members have registered but not yet
// activated their account by redeeming a QR code; activation is the
// only path from 0 to 1. Tiers 2 and 3 are reached by XP thresholds.
const (
	TierMin = 0
	TierMax = 3

	Tier2Threshold = 100
	Tier3Threshold = 500
)

// XP earned per action. QR codes and event tickets carry their own
// reward values.
const (
	XPVoteCast = 5
	XPComment  = 2
)

// VoteWeight returns the tally weight of a vote cast at the given
// tier. Tier 0 has no voting rights.
func VoteWeight(tier int) int {
	switch tier {
	case 1:
		return 1
	case 2:
		return 3
	case 3:
		return 5
	default:
		return 0
	}
}

// NextTier returns the tier a member holds after one promotion check.
// At most one step is applied per check, even when xp clears both
// thresholds at once; the next qualifying award applies the following
// step. Promotion into tier 1 never happens here.
func NextTier(tier, xp int) int {
	switch {
	case tier == 1 && xp >= Tier2Threshold:
		return 2
	case tier == 2 && xp >= Tier3Threshold:
		return 3
	default:
		return tier
	}
}

// Capability describes a gated action: the minimum tier required, or
// admin status when RequiresAdmin is set (admin gates ignore tier).
// All tier gating in the API goes through Capability.Check so the
// rules live in one place.
type Capability struct {
	Name          string
	RequiredTier  int
	RequiresAdmin bool
}

var (
	CapVote            = Capability{Name: "vote", RequiredTier: 1}
	CapEditProfile     = Capability{Name: "edit_profile", RequiredTier: 1}
	CapUploadDesign    = Capability{Name: "upload_design", RequiredTier: 2}
	CapCreatePoll      = Capability{Name: "create_poll", RequiredTier: 3}
	CapManagePollItems = Capability{Name: "manage_poll_items", RequiredTier: 3}
	CapCreateEvent     = Capability{Name: "create_event", RequiresAdmin: true}
	CapDeleteContent   = Capability{Name: "delete_content", RequiresAdmin: true}
)

func (c Capability) Check(tier int, isAdmin bool) error {
	if c.RequiresAdmin {
		if !isAdmin {
			return fmt.Errorf("%s: %w", c.Name, core.ErrForbidden)
		}
		return nil
	}

	if tier < c.RequiredTier {
		return fmt.Errorf("%s: %w", c.Name, core.ErrInsufficientTier)
	}

	return nil
}
