package dto

import (
	"time"

	"github.com/spec-kit/vacation-manager/internal/domain"
)

// CreateRequestPayload captures creation/edit fields. Dates use YYYY-MM-DD.
type CreateRequestPayload struct {
	StartDate string             `json:"start_date" form:"start_date"`
	EndDate   string             `json:"end_date" form:"end_date"`
	Type      domain.RequestType `json:"type" form:"type"`
	HalfDay   bool               `json:"half_day" form:"half_day"`
}

// RequestResponse is the wire shape of a vacation request.
type RequestResponse struct {
	ID            int64              `json:"id"`
	RequesterID   string             `json:"requester_id"`
	ApproverID    *string            `json:"approver_id,omitempty"`
	StartDate     string             `json:"start_date"`
	EndDate       string             `json:"end_date"`
	CreationDate  time.Time          `json:"creation_date"`
	Type          domain.RequestType `json:"type"`
	HalfDay       bool               `json:"half_day"`
	Approved      bool               `json:"approved"`
	HasAttachment bool               `json:"has_attachment"`
}

// FromRequest maps the domain record to its response shape.
func FromRequest(req *domain.VacationRequest) RequestResponse {
	return RequestResponse{
		ID:            req.ID,
		RequesterID:   req.RequesterID,
		ApproverID:    req.ApproverID,
		StartDate:     req.StartDate.Format("2006-01-02"),
		EndDate:       req.EndDate.Format("2006-01-02"),
		CreationDate:  req.CreationDate,
		Type:          req.Type,
		HalfDay:       req.HalfDay,
		Approved:      req.Approved,
		HasAttachment: req.AttachmentPath != nil,
	}
}
