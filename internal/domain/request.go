package domain

import "time"

// RequestType enumerates vacation request kinds.
type RequestType string

const (
	RequestTypePaid   RequestType = "PAID"
	RequestTypeUnpaid RequestType = "UNPAID"
	RequestTypeSick   RequestType = "SICK"
)

// KnownRequestType reports whether the value is a defined request type.
func KnownRequestType(t RequestType) bool {
	switch t {
	case RequestTypePaid, RequestTypeUnpaid, RequestTypeSick:
		return true
	}
	return false
}

// VacationRequest is the aggregate for vacation requests.
//
// RequesterTeamID carries the requester's team at read time (joined by the
// repository) so authorization decisions work on plain data. ApproverID is set
// exactly once, on approval; there is no transition back to unapproved.
type VacationRequest struct {
	ID              int64
	RequesterID     string
	RequesterTeamID *int64
	ApproverID      *string
	StartDate       time.Time
	EndDate         time.Time
	CreationDate    time.Time
	Type            RequestType
	HalfDay         bool
	Approved        bool
	AttachmentPath  *string
}
