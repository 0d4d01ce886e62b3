package authz

import (
	"github.com/spec-kit/vacation-manager/internal/domain"
)

// Reason explains why an eligibility decision was denied.
type Reason string

const (
	ReasonSelfApproval  Reason = "SELF_APPROVAL"
	ReasonLocked        Reason = "LOCKED"
	ReasonNotAuthorized Reason = "NOT_AUTHORIZED"
)

// Decision is the outcome of an eligibility check. Reason is empty when
// Eligible is true.
type Decision struct {
	Eligible bool
	Reason   Reason
}

func allow() Decision {
	return Decision{Eligible: true}
}

func deny(reason Reason) Decision {
	return Decision{Reason: reason}
}

// Predicate filters vacation requests by viewer visibility.
type Predicate func(domain.VacationRequest) bool

// VisibilityScope returns the predicate describing which requests the viewer
// may see. CEO sees everything, a team leader sees the led team's requests,
// everyone else sees only their own. Date and approval-state refinements are
// orthogonal filters applied by the caller, not part of the scope.
func VisibilityScope(viewer domain.Actor) Predicate {
	switch {
	case viewer.Roles.Has(domain.RoleCEO):
		return func(domain.VacationRequest) bool { return true }
	case viewer.LedTeamID != nil:
		led := *viewer.LedTeamID
		return func(r domain.VacationRequest) bool {
			return r.RequesterTeamID != nil && *r.RequesterTeamID == led
		}
	default:
		return func(r domain.VacationRequest) bool {
			return r.RequesterID == viewer.ID
		}
	}
}

// ApprovalQueueScope narrows VisibilityScope for the approval queue: a viewer
// never sees their own requests in their own queue, regardless of role.
func ApprovalQueueScope(viewer domain.Actor) Predicate {
	scope := VisibilityScope(viewer)
	return func(r domain.VacationRequest) bool {
		return r.RequesterID != viewer.ID && scope(r)
	}
}

// ApprovalEligible decides whether the viewer may approve the request. The
// self-approval check is absolute and precedes every role check, including CEO.
func ApprovalEligible(viewer domain.Actor, req domain.VacationRequest) Decision {
	if req.RequesterID == viewer.ID {
		return deny(ReasonSelfApproval)
	}
	if viewer.Roles.Has(domain.RoleCEO) {
		return allow()
	}
	if viewer.LedTeamID != nil && req.RequesterTeamID != nil && *req.RequesterTeamID == *viewer.LedTeamID {
		return allow()
	}
	return deny(ReasonNotAuthorized)
}

// ApplyApproval returns a copy of the request marked approved by the viewer,
// when eligible. Approval is a one-way transition; nothing reverts it.
func ApplyApproval(viewer domain.Actor, req domain.VacationRequest) (domain.VacationRequest, Decision) {
	decision := ApprovalEligible(viewer, req)
	if !decision.Eligible {
		return req, decision
	}
	approverID := viewer.ID
	req.Approved = true
	req.ApproverID = &approverID
	return req, decision
}

// EditEligible decides whether the actor may edit the request. Only the
// original requester may ever edit, and only while the request is unapproved.
func EditEligible(actor domain.Actor, req domain.VacationRequest) Decision {
	if actor.ID != req.RequesterID {
		return deny(ReasonNotAuthorized)
	}
	if req.Approved {
		return deny(ReasonLocked)
	}
	return allow()
}

// DeleteEligible decides whether the actor may delete the request. Managers
// may delete any request regardless of ownership or approval state; the
// requester may delete their own request only while unapproved, unless they
// also hold a managerial role.
func DeleteEligible(actor domain.Actor, req domain.VacationRequest) Decision {
	if actor.ID == req.RequesterID {
		if req.Approved && !actor.Roles.IsManager() {
			return deny(ReasonLocked)
		}
		return allow()
	}
	if actor.Roles.IsManager() {
		return allow()
	}
	return deny(ReasonNotAuthorized)
}
