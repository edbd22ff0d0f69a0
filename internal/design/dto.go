// AngelaMos | 2026
// dto.go

package design

import (
	"time"
)

type CreateDesignRequest struct {
	Title       string `json:"title"       validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
	ImagePath   string `json:"image_path"  validate:"required,max=500"`
	Category    string `json:"category"    validate:"required,oneof=tshirt hoodie pants dress accessory other"`
}

type DesignResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImagePath   string    `json:"image_path"`
	Category    string    `json:"category"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToDesignResponse(d *Design) DesignResponse {
	return DesignResponse{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		ImagePath:   d.ImagePath,
		Category:    string(d.Category),
		UserID:      d.UserID,
		CreatedAt:   d.CreatedAt,
	}
}

func ToDesignResponses(designs []Design) []DesignResponse {
	out := make([]DesignResponse, 0, len(designs))
	for i := range designs {
		out = append(out, ToDesignResponse(&designs[i]))
	}
	return out
}

type ListDesignsParams struct {
	Page     int
	PageSize int
	Category string
	UserID   string
}

func (p *ListDesignsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 100 {
		p.PageSize = 20
	}
}

func (p *ListDesignsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type CreateCheckRequest struct {
	ApproverID string `json:"approver_id" validate:"required,uuid"`
}

type CheckRequestResponse struct {
	ID          string    `json:"id"`
	RequesterID string    `json:"requester_id"`
	ApproverID  string    `json:"approver_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToCheckRequestResponse(cr *CheckRequest) CheckRequestResponse {
	return CheckRequestResponse{
		ID:          cr.ID,
		RequesterID: cr.RequesterID,
		ApproverID:  cr.ApproverID,
		Status:      string(cr.Status),
		CreatedAt:   cr.CreatedAt,
		UpdatedAt:   cr.UpdatedAt,
	}
}

func ToCheckRequestResponses(requests []CheckRequest) []CheckRequestResponse {
	out := make([]CheckRequestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, ToCheckRequestResponse(&requests[i]))
	}
	return out
}
