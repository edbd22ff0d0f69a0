// AngelaMos | 2026
// entity.go

package qr

import (
	"time"
)

// Code is a printed QR voucher. Each code is single-use: redeeming it
// credits its XP value and, for a tier 0 member, activates the account
// into tier 1.
type Code struct {
	ID           string     `db:"id"`
	HashID       string     `db:"hash_id"`
	XPValue      int        `db:"xp_value"`
	IsUsed       bool       `db:"is_used"`
	UsedByUserID *string    `db:"used_by_user_id"`
	UsedAt       *time.Time `db:"used_at"`
	CreatedAt    time.Time  `db:"created_at"`
}

const DefaultXPValue = 10
