// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type UpdateProfileRequest struct {
	Bio          *string `json:"bio,omitempty"           validate:"omitempty,max=500"`
	ProfileImage *string `json:"profile_image,omitempty" validate:"omitempty,max=120"`
}

type UserResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Bio          string    `json:"bio,omitempty"`
	ProfileImage string    `json:"profile_image"`
	Tier         int       `json:"tier"`
	XP           int       `json:"xp"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ProfileStats struct {
	DesignCount  int `db:"design_count"  json:"design_count"`
	VoteCount    int `db:"vote_count"    json:"vote_count"`
	CommentCount int `db:"comment_count" json:"comment_count"`
}

type ProfileResponse struct {
	User  UserResponse `json:"user"`
	Stats ProfileStats `json:"stats"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Tier     *int   `json:"tier,omitempty"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Bio:          u.Bio,
		ProfileImage: u.ProfileImage,
		Tier:         u.Tier,
		XP:           u.XP,
		IsAdmin:      u.IsAdmin,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToUserResponse(&u))
	}
	return responses
}
