// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID           string     `db:"id"`
	Username     string     `db:"username"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Bio          string     `db:"bio"`
	ProfileImage string     `db:"profile_image"`
	Tier         int        `db:"tier"`
	XP           int        `db:"xp"`
	IsAdmin      bool       `db:"is_admin"`
	TokenVersion int        `db:"token_version"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

const DefaultProfileImage = "default.jpg"
