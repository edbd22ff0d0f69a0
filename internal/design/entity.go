// AngelaMos | 2026
// entity.go

package design

import (
	"time"
)

type Category string

const (
	CategoryTShirt    Category = "tshirt"
	CategoryHoodie    Category = "hoodie"
	CategoryPants     Category = "pants"
	CategoryDress     Category = "dress"
	CategoryAccessory Category = "accessory"
	CategoryOther     Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryTShirt, CategoryHoodie, CategoryPants,
		CategoryDress, CategoryAccessory, CategoryOther:
		return true
	}
	return false
}

type Design struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	ImagePath   string    `db:"image_path"`
	Category    Category  `db:"category"`
	UserID      string    `db:"user_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type CheckStatus string

const (
	CheckPending  CheckStatus = "pending"
	CheckApproved CheckStatus = "approved"
	CheckRejected CheckStatus = "rejected"
)

// CheckRequest is a requester asking another member to vouch for their
// designs. Once approved, the approver may pick the requester's designs
// when assembling poll options.
type CheckRequest struct {
	ID          string      `db:"id"`
	RequesterID string      `db:"requester_id"`
	ApproverID  string      `db:"approver_id"`
	Status      CheckStatus `db:"status"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}
