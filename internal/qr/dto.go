// AngelaMos | 2026
// dto.go

package qr

import (
	"time"
)

// PeekResponse is what an unauthenticated scan of a QR code sees:
// whether the code is still live and what it is worth, without
// consuming it.
type PeekResponse struct {
	HashID  string `json:"hash_id"`
	XPValue int    `json:"xp_value"`
	IsUsed  bool   `json:"is_used"`
}

type RedeemResponse struct {
	HashID    string `json:"hash_id"`
	XPAwarded int    `json:"xp_awarded"`
	XP        int    `json:"xp"`
	Tier      int    `json:"tier"`
	Activated bool   `json:"activated"`
	Promoted  bool   `json:"promoted"`
}

type GenerateBatchRequest struct {
	Count   int `json:"count"    validate:"required,min=1,max=500"`
	XPValue int `json:"xp_value" validate:"omitempty,min=1,max=1000"`
}

type CodeResponse struct {
	ID           string     `json:"id"`
	HashID       string     `json:"hash_id"`
	XPValue      int        `json:"xp_value"`
	IsUsed       bool       `json:"is_used"`
	UsedByUserID *string    `json:"used_by_user_id,omitempty"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func ToCodeResponse(c *Code) CodeResponse {
	return CodeResponse{
		ID:           c.ID,
		HashID:       c.HashID,
		XPValue:      c.XPValue,
		IsUsed:       c.IsUsed,
		UsedByUserID: c.UsedByUserID,
		UsedAt:       c.UsedAt,
		CreatedAt:    c.CreatedAt,
	}
}

func ToCodeResponses(codes []Code) []CodeResponse {
	out := make([]CodeResponse, 0, len(codes))
	for i := range codes {
		out = append(out, ToCodeResponse(&codes[i]))
	}
	return out
}
