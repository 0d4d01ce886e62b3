package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/vacation-manager/internal/authz"
	"github.com/spec-kit/vacation-manager/internal/domain"
	"github.com/spec-kit/vacation-manager/internal/events"
	"github.com/spec-kit/vacation-manager/internal/repository"
	"github.com/spec-kit/vacation-manager/internal/storage"
	apperrors "github.com/spec-kit/vacation-manager/pkg/util"
)

// ApprovalStatus filters the approval queue by approval state.
type ApprovalStatus string

const (
	ApprovalStatusAll      ApprovalStatus = "ALL"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusPending  ApprovalStatus = "PENDING"
)

// RequestService orchestrates the vacation request lifecycle. Every
// visibility and eligibility decision is delegated to the authz package; this
// service only sequences collaborators.
type RequestService struct {
	requests   repository.RequestRepository
	blobs      storage.BlobStore
	dispatcher events.Dispatcher
}

// RequestDependencies bundles collaborators for the request service.
type RequestDependencies struct {
	RequestRepo repository.RequestRepository
	Blobs       storage.BlobStore
	Dispatcher  events.Dispatcher
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	return &RequestService{
		requests:   deps.RequestRepo,
		blobs:      deps.Blobs,
		dispatcher: deps.Dispatcher,
	}
}

// RequestInput describes creation/edit payload.
type RequestInput struct {
	StartDate time.Time
	EndDate   time.Time
	Type      domain.RequestType
	HalfDay   bool
	SickNote  *SickNoteInput
}

// SickNoteInput carries an uploaded sick-note document.
type SickNoteInput struct {
	FileName string
	Content  io.Reader
}

// ListFilter narrows the personal request list.
type ListFilter struct {
	CreatedFrom *time.Time
	Limit       int
	Offset      int
}

// QueueFilter narrows the approval queue.
type QueueFilter struct {
	Status      ApprovalStatus
	CreatedFrom *time.Time
	Limit       int
	Offset      int
}

// List returns the actor's own requests, newest first.
func (s *RequestService) List(ctx context.Context, actor domain.Actor, filter ListFilter) ([]domain.VacationRequest, error) {
	repoFilter := repository.RequestFilter{
		RequesterID: &actor.ID,
		CreatedFrom: filter.CreatedFrom,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	return s.requests.ListWithFilter(ctx, repoFilter)
}

// ApprovalQueue returns the requests the viewer may act upon. The viewer's
// own requests never appear, regardless of role.
func (s *RequestService) ApprovalQueue(ctx context.Context, viewer domain.Actor, filter QueueFilter) ([]domain.VacationRequest, error) {
	repoFilter := repository.RequestFilter{
		CreatedFrom: filter.CreatedFrom,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	switch filter.Status {
	case ApprovalStatusApproved:
		approved := true
		repoFilter.Approved = &approved
	case ApprovalStatusPending:
		pending := false
		repoFilter.Approved = &pending
	}

	switch {
	case viewer.Roles.Has(domain.RoleCEO):
		// unrestricted candidate set
	case viewer.LedTeamID != nil:
		repoFilter.RequesterTeamID = viewer.LedTeamID
	default:
		return nil, apperrors.NewForbidden("not assigned as a team leader")
	}

	candidates, err := s.requests.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	scope := authz.ApprovalQueueScope(viewer)
	queue := make([]domain.VacationRequest, 0, len(candidates))
	for _, req := range candidates {
		if scope(req) {
			queue = append(queue, req)
		}
	}
	return queue, nil
}

// Get fetches a single request the actor is allowed to see. A requester
// always sees their own request; otherwise the visibility scope decides.
func (s *RequestService) Get(ctx context.Context, actor domain.Actor, id int64) (*domain.VacationRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != actor.ID && !authz.VisibilityScope(actor)(*req) {
		return nil, apperrors.NewForbiddenReason("not allowed to view this request", string(authz.ReasonNotAuthorized))
	}
	return req, nil
}

// Create validates and stores a new request for the actor.
func (s *RequestService) Create(ctx context.Context, actor domain.Actor, input RequestInput) (*domain.VacationRequest, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	req := domain.VacationRequest{
		RequesterID:     actor.ID,
		RequesterTeamID: actor.TeamID,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		Type:            input.Type,
		HalfDay:         input.HalfDay,
	}
	req = authz.NormalizeForType(req)

	if req.Type == domain.RequestTypeSick && input.SickNote != nil {
		key, err := s.blobs.Save(ctx, input.SickNote.FileName, input.SickNote.Content)
		if err != nil {
			return nil, err
		}
		req.AttachmentPath = &key
	}

	if err := s.requests.Create(ctx, &req); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventRequestCreated,
		RequestID: req.ID,
		ActorID:   actor.ID,
		Payload: events.RequestCreatedPayload{
			RequesterID: req.RequesterID,
			Type:        req.Type,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			HalfDay:     req.HalfDay,
		},
	})
	return &req, nil
}

// Edit updates an unapproved request on behalf of its requester.
func (s *RequestService) Edit(ctx context.Context, actor domain.Actor, id int64, input RequestInput) (*domain.VacationRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if decision := authz.EditEligible(actor, *req); !decision.Eligible {
		return nil, forbiddenFromDecision("not allowed to edit this request", decision)
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	oldAttachment := req.AttachmentPath
	req.StartDate = input.StartDate
	req.EndDate = input.EndDate
	req.Type = input.Type
	req.HalfDay = input.HalfDay
	*req = authz.NormalizeForType(*req)

	if req.Type == domain.RequestTypeSick && input.SickNote != nil {
		key, err := s.blobs.Save(ctx, input.SickNote.FileName, input.SickNote.Content)
		if err != nil {
			return nil, err
		}
		req.AttachmentPath = &key
	}

	if err := s.requests.Update(ctx, req); err != nil {
		if errors.Is(err, repository.ErrApprovedConflict) {
			return nil, apperrors.NewConflict("request was approved concurrently; reload and retry", nil)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("vacation request", nil)
		}
		return nil, err
	}

	// replace the sick note only after the guarded write succeeded
	if oldAttachment != nil && (req.AttachmentPath == nil || *req.AttachmentPath != *oldAttachment) {
		_ = s.blobs.Delete(ctx, *oldAttachment)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventRequestUpdated,
		RequestID: req.ID,
		ActorID:   actor.ID,
		Payload: events.RequestUpdatedPayload{
			Type:      req.Type,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			HalfDay:   req.HalfDay,
		},
	})
	return req, nil
}

// Approve marks the request approved by the viewer. The store serializes
// concurrent approvals; the loser of the race gets a conflict.
func (s *RequestService) Approve(ctx context.Context, viewer domain.Actor, id int64) (*domain.VacationRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if decision := authz.ApprovalEligible(viewer, *req); !decision.Eligible {
		return nil, forbiddenFromDecision("not allowed to approve this request", decision)
	}

	approved, err := s.requests.Approve(ctx, id, viewer.ID)
	if err != nil {
		if errors.Is(err, repository.ErrApprovedConflict) {
			return nil, apperrors.NewConflict("request already approved", nil)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("vacation request", nil)
		}
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventRequestApproved,
		RequestID: approved.ID,
		ActorID:   viewer.ID,
		Payload: events.RequestApprovedPayload{
			RequesterID: approved.RequesterID,
			ApproverID:  viewer.ID,
		},
	})
	return approved, nil
}

// Delete removes a request and its attachment.
func (s *RequestService) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	req, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if decision := authz.DeleteEligible(actor, *req); !decision.Eligible {
		return forbiddenFromDecision("not allowed to delete this request", decision)
	}

	if err := s.requests.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("vacation request", nil)
		}
		return err
	}
	if req.AttachmentPath != nil {
		_ = s.blobs.Delete(ctx, *req.AttachmentPath)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventRequestDeleted,
		RequestID: req.ID,
		ActorID:   actor.ID,
		Payload: events.RequestDeletedPayload{
			RequesterID: req.RequesterID,
			Approved:    req.Approved,
		},
	})
	return nil
}

// OpenSickNote streams the attachment for the requester or a manager.
func (s *RequestService) OpenSickNote(ctx context.Context, actor domain.Actor, id int64) (io.ReadCloser, string, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if req.AttachmentPath == nil {
		return nil, "", apperrors.NewNotFound("sick note", nil)
	}
	if req.RequesterID != actor.ID && !actor.IsManager() {
		return nil, "", apperrors.NewForbiddenReason("not allowed to download this attachment", string(authz.ReasonNotAuthorized))
	}

	reader, err := s.blobs.Open(ctx, *req.AttachmentPath)
	if err != nil {
		return nil, "", apperrors.NewNotFound("sick note", nil)
	}
	return reader, storage.OriginalFileName(*req.AttachmentPath), nil
}

// load resolves an id, reporting NotFound before any eligibility decision.
func (s *RequestService) load(ctx context.Context, id int64) (*domain.VacationRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("vacation request", nil)
		}
		return nil, err
	}
	return req, nil
}

func validateInput(input RequestInput) error {
	if !domain.KnownRequestType(input.Type) {
		return apperrors.NewValidationError("unknown request type", map[string]any{"type": input.Type})
	}
	if !authz.ValidDateRange(input.StartDate, input.EndDate) {
		return apperrors.NewValidationError("start date must not be after end date", map[string]any{
			"start_date": input.StartDate,
			"end_date":   input.EndDate,
		})
	}
	return nil
}

func forbiddenFromDecision(message string, decision authz.Decision) error {
	return apperrors.NewForbiddenReason(message, string(decision.Reason))
}

func (s *RequestService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
