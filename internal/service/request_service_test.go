package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/vacation-manager/internal/domain"
	"github.com/spec-kit/vacation-manager/internal/repository"
	apperrors "github.com/spec-kit/vacation-manager/pkg/util"
)

type fakeRequestRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]domain.VacationRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{nextID: 1, byID: map[int64]domain.VacationRequest{}}
}

func (r *fakeRequestRepo) Create(_ context.Context, req *domain.VacationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.ID = r.nextID
	r.nextID++
	if req.CreationDate.IsZero() {
		req.CreationDate = time.Now()
	}
	r.byID[req.ID] = *req
	return nil
}

func (r *fakeRequestRepo) Update(_ context.Context, req *domain.VacationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[req.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Approved {
		return repository.ErrApprovedConflict
	}
	r.byID[req.ID] = *req
	return nil
}

func (r *fakeRequestRepo) Approve(_ context.Context, id int64, approverID string) (*domain.VacationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if stored.Approved {
		return nil, repository.ErrApprovedConflict
	}
	stored.Approved = true
	stored.ApproverID = &approverID
	r.byID[id] = stored
	out := stored
	return &out, nil
}

func (r *fakeRequestRepo) GetByID(_ context.Context, id int64) (*domain.VacationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := stored
	return &out, nil
}

func (r *fakeRequestRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeRequestRepo) ListWithFilter(_ context.Context, filter repository.RequestFilter) ([]domain.VacationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.VacationRequest, 0, len(r.byID))
	for _, req := range r.byID {
		if filter.RequesterID != nil && req.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.RequesterTeamID != nil {
			if req.RequesterTeamID == nil || *req.RequesterTeamID != *filter.RequesterTeamID {
				continue
			}
		}
		if filter.Approved != nil && req.Approved != *filter.Approved {
			continue
		}
		if filter.CreatedFrom != nil && req.CreationDate.Before(*filter.CreatedFrom) {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

type fakeBlobStore struct {
	mu    sync.Mutex
	seq   int
	blobs map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: map[string][]byte{}}
}

func (s *fakeBlobStore) Save(_ context.Context, fileName string, content io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	s.seq++
	key := strconv.Itoa(s.seq) + "_" + fileName
	s.blobs[key] = data
	return key, nil
}

func (s *fakeBlobStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, errors.New("missing blob")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeBlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func teamRef(id int64) *int64 { return &id }

func developer(id string, teamID *int64) domain.Actor {
	return domain.Actor{ID: id, Roles: domain.RoleSet{domain.RoleDeveloper}, TeamID: teamID}
}

func teamLead(id string, teamID, ledTeamID *int64) domain.Actor {
	return domain.Actor{ID: id, Roles: domain.RoleSet{domain.RoleTeamLead}, TeamID: teamID, LedTeamID: ledTeamID}
}

func ceo(id string) domain.Actor {
	return domain.Actor{ID: id, Roles: domain.RoleSet{domain.RoleCEO}}
}

func paidInput() RequestInput {
	return RequestInput{
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
		Type:      domain.RequestTypePaid,
	}
}

func newTestService() (*RequestService, *fakeRequestRepo, *fakeBlobStore) {
	repo := newFakeRequestRepo()
	blobs := newFakeBlobStore()
	svc := NewRequestService(RequestDependencies{RequestRepo: repo, Blobs: blobs})
	return svc, repo, blobs
}

func domainErr(t *testing.T, err error) *apperrors.DomainError {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var de *apperrors.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected DomainError, got %T: %v", err, err)
	}
	return de
}

func TestCreateStartsUnapproved(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	dev := developer("dev-1", teamRef(1))

	req, err := svc.Create(context.Background(), dev, paidInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if req.Approved {
		t.Error("new request must start unapproved")
	}
	if req.ApproverID != nil {
		t.Error("new request must have no approver")
	}
	if req.RequesterTeamID == nil || *req.RequesterTeamID != 1 {
		t.Errorf("requester team not captured: %v", req.RequesterTeamID)
	}
}

func TestCreateRejectsReversedDates(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	input := paidInput()
	input.StartDate, input.EndDate = input.EndDate, input.StartDate

	_, err := svc.Create(context.Background(), developer("dev-1", nil), input)
	if de := domainErr(t, err); de.Code != "VALIDATION_FAILED" {
		t.Errorf("code = %s, want VALIDATION_FAILED", de.Code)
	}
}

func TestCreateRejectsUnknownType(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	input := paidInput()
	input.Type = "SABBATICAL"

	_, err := svc.Create(context.Background(), developer("dev-1", nil), input)
	if de := domainErr(t, err); de.Code != "VALIDATION_FAILED" {
		t.Errorf("code = %s, want VALIDATION_FAILED", de.Code)
	}
}

func TestCreateSickClearsHalfDay(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	input := paidInput()
	input.Type = domain.RequestTypeSick
	input.HalfDay = true

	req, err := svc.Create(context.Background(), developer("dev-1", nil), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if req.HalfDay {
		t.Error("sick requests must not be half-day")
	}
}

func TestCreateSickStoresAttachment(t *testing.T) {
	t.Parallel()
	svc, _, blobs := newTestService()
	input := paidInput()
	input.Type = domain.RequestTypeSick
	input.SickNote = &SickNoteInput{FileName: "note.pdf", Content: bytes.NewReader([]byte("doctor says rest"))}

	req, err := svc.Create(context.Background(), developer("dev-1", nil), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if req.AttachmentPath == nil {
		t.Fatal("sick note not stored")
	}
	if _, ok := blobs.blobs[*req.AttachmentPath]; !ok {
		t.Error("blob missing from store")
	}
}

func TestApproveByTeamLead(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	dev := developer("dev-1", teamRef(7))
	lead := teamLead("lead-1", nil, teamRef(7))

	req, err := svc.Create(context.Background(), dev, paidInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	approved, err := svc.Approve(context.Background(), lead, req.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !approved.Approved {
		t.Error("request not marked approved")
	}
	if approved.ApproverID == nil || *approved.ApproverID != lead.ID {
		t.Errorf("approver = %v, want %s", approved.ApproverID, lead.ID)
	}
}

func TestApproveOutsideLedTeamForbidden(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	dev := developer("dev-1", teamRef(7))
	otherLead := teamLead("lead-2", nil, teamRef(8))

	req, err := svc.Create(context.Background(), dev, paidInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Approve(context.Background(), otherLead, req.ID)
	de := domainErr(t, err)
	if de.Code != "FORBIDDEN" {
		t.Fatalf("code = %s, want FORBIDDEN", de.Code)
	}
	if de.Details["reason"] != "NOT_AUTHORIZED" {
		t.Errorf("reason = %v, want NOT_AUTHORIZED", de.Details["reason"])
	}
}

func TestSelfApprovalDeniedEvenForCEO(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	boss := ceo("ceo-1")

	req, err := svc.Create(context.Background(), boss, paidInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Approve(context.Background(), boss, req.ID)
	de := domainErr(t, err)
	if de.Code != "FORBIDDEN" {
		t.Fatalf("code = %s, want FORBIDDEN", de.Code)
	}
	if de.Details["reason"] != "SELF_APPROVAL" {
		t.Errorf("reason = %v, want SELF_APPROVAL", de.Details["reason"])
	}
}

func TestApproveTwiceConflicts(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	dev := developer("dev-1", teamRef(7))
	lead := teamLead("lead-1", nil, teamRef(7))
	boss := ceo("ceo-1")

	req, err := svc.Create(context.Background(), dev, paidInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Approve(context.Background(), lead, req.ID); err != nil {
		t.Fatalf("first approve: %v", err)
	}

	_, err = svc.Approve(context.Background(), boss, req.ID)
	if de := domainErr(t, err); de.Code != "CONFLICT" {
		t.Errorf("code = %s, want CONFLICT", de.Code)
	}
}

func TestApproveMissingRequestNotFound(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()

	_, err := svc.Approve(context.Background(), ceo("ceo-1"), 404)
	if de := domainErr(t, err); de.Code != "NOT_FOUND" {
		t.Errorf("code = %s, want NOT_FOUND", de.Code)
	}
}

func TestEditLockedAfterApproval(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	dev := developer("dev-1", teamRef(7))
	lead := teamLead("lead-1", nil, teamRef(7))

	req, err := svc.Create(context.Background(), dev, paidInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Approve(context.Background(), lead, req.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	_, err = svc.Edit(context.Background(), dev, req.ID, paidInput())
	de := domainErr(t, err)
	if de.Code != "FORBIDDEN" {
		t.Fatalf("code = %s, want FORBIDDEN", de.Code)
	}
	if de.Details["reason"] != "LOCKED" {
		t.Errorf("reason = %v, want LOCKED", de.Details["reason"])
	}
}

func TestEditByNonRequesterForbidden(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	dev := developer("dev-1", teamRef(7))

	req, err := svc.Create(context.Background(), dev, paidInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Edit(context.Background(), ceo("ceo-1"), req.ID, paidInput())
	de := domainErr(t, err)
	if de.Code != "FORBIDDEN" {
		t.Fatalf("code = %s, want FORBIDDEN", de.Code)
	}
	if de.Details["reason"] != "NOT_AUTHORIZED" {
		t.Errorf("reason = %v, want NOT_AUTHORIZED", de.Details["reason"])
	}
}

func TestEditValidatesAfterEligibility(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	dev := developer("dev-1", teamRef(7))

	req, err := svc.Create(context.Background(), dev, paidInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	bad := paidInput()
	bad.StartDate, bad.EndDate = bad.EndDate, bad.StartDate
	_, err = svc.Edit(context.Background(), dev, req.ID, bad)
	if de := domainErr(t, err); de.Code != "VALIDATION_FAILED" {
		t.Errorf("code = %s, want VALIDATION_FAILED", de.Code)
	}
}

func TestEditSwitchingAwayFromSickDropsAttachment(t *testing.T) {
	t.Parallel()
	svc, repo, blobs := newTestService()
	dev := developer("dev-1", teamRef(7))

	input := paidInput()
	input.Type = domain.RequestTypeSick
	input.SickNote = &SickNoteInput{FileName: "note.pdf", Content: bytes.NewReader([]byte("x"))}
	req, err := svc.Create(context.Background(), dev, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	key := *req.AttachmentPath

	if _, err := svc.Edit(context.Background(), dev, req.ID, paidInput()); err != nil {
		t.Fatalf("edit: %v", err)
	}

	stored, err := repo.GetByID(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.AttachmentPath != nil {
		t.Error("attachment path should be cleared after type change")
	}
	if _, ok := blobs.blobs[key]; ok {
		t.Error("old sick note should be deleted")
	}
}

func TestDeleteOwnPendingRequest(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newTestService()
	dev := developer("dev-1", teamRef(7))

	req, err := svc.Create(context.Background(), dev, paidInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(context.Background(), dev, req.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), req.ID); !errors.Is(err, pgx.ErrNoRows) {
		t.Error("request should be gone")
	}
}

func TestDeleteOwnApprovedRequestLockedForDeveloper(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	dev := developer("dev-1", teamRef(7))
	lead := teamLead("lead-1", nil, teamRef(7))

	req, err := svc.Create(context.Background(), dev, paidInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Approve(context.Background(), lead, req.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	err = svc.Delete(context.Background(), dev, req.ID)
	de := domainErr(t, err)
	if de.Details["reason"] != "LOCKED" {
		t.Errorf("reason = %v, want LOCKED", de.Details["reason"])
	}
}

func TestManagerDeletesAnyRequest(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newTestService()
	dev := developer("dev-1", teamRef(7))
	lead := teamLead("lead-1", nil, teamRef(7))

	req, err := svc.Create(context.Background(), dev, paidInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Approve(context.Background(), lead, req.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if err := svc.Delete(context.Background(), ceo("ceo-1"), req.ID); err != nil {
		t.Fatalf("manager delete: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), req.ID); !errors.Is(err, pgx.ErrNoRows) {
		t.Error("request should be gone")
	}
}

func TestDeleteByStrangerDeveloperForbidden(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	dev := developer("dev-1", teamRef(7))
	stranger := developer("dev-2", teamRef(7))

	req, err := svc.Create(context.Background(), dev, paidInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = svc.Delete(context.Background(), stranger, req.ID)
	de := domainErr(t, err)
	if de.Details["reason"] != "NOT_AUTHORIZED" {
		t.Errorf("reason = %v, want NOT_AUTHORIZED", de.Details["reason"])
	}
}

func TestApprovalQueueExcludesOwnRequests(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	team := teamRef(7)
	dev := developer("dev-1", team)
	lead := teamLead("lead-1", team, team)

	if _, err := svc.Create(context.Background(), dev, paidInput()); err != nil {
		t.Fatalf("create dev: %v", err)
	}
	if _, err := svc.Create(context.Background(), lead, paidInput()); err != nil {
		t.Fatalf("create lead: %v", err)
	}

	queue, err := svc.ApprovalQueue(context.Background(), lead, QueueFilter{})
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if len(queue) != 1 {
		t.Fatalf("queue size = %d, want 1", len(queue))
	}
	if queue[0].RequesterID != dev.ID {
		t.Errorf("queue contains %s, want %s", queue[0].RequesterID, dev.ID)
	}
}

func TestApprovalQueueForbiddenForNonLeader(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()

	_, err := svc.ApprovalQueue(context.Background(), developer("dev-1", teamRef(7)), QueueFilter{})
	if de := domainErr(t, err); de.Code != "FORBIDDEN" {
		t.Errorf("code = %s, want FORBIDDEN", de.Code)
	}
}

func TestApprovalQueueCEOSeesAllTeamsButNotOwn(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	boss := ceo("ceo-1")

	if _, err := svc.Create(context.Background(), developer("dev-1", teamRef(1)), paidInput()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(context.Background(), developer("dev-2", teamRef(2)), paidInput()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(context.Background(), boss, paidInput()); err != nil {
		t.Fatalf("create: %v", err)
	}

	queue, err := svc.ApprovalQueue(context.Background(), boss, QueueFilter{})
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if len(queue) != 2 {
		t.Fatalf("queue size = %d, want 2", len(queue))
	}
	for _, req := range queue {
		if req.RequesterID == boss.ID {
			t.Error("queue must not contain the viewer's own request")
		}
	}
}

func TestGetVisibilityForStrangerForbidden(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	dev := developer("dev-1", teamRef(7))

	req, err := svc.Create(context.Background(), dev, paidInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Get(context.Background(), developer("dev-2", teamRef(8)), req.ID)
	if de := domainErr(t, err); de.Code != "FORBIDDEN" {
		t.Errorf("code = %s, want FORBIDDEN", de.Code)
	}
}

func TestGetNotFoundBeforeEligibility(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()

	_, err := svc.Get(context.Background(), developer("dev-1", nil), 9999)
	if de := domainErr(t, err); de.Code != "NOT_FOUND" {
		t.Errorf("code = %s, want NOT_FOUND", de.Code)
	}
}

func TestOpenSickNoteByRequesterAndManager(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	dev := developer("dev-1", teamRef(7))

	input := paidInput()
	input.Type = domain.RequestTypeSick
	input.SickNote = &SickNoteInput{FileName: "note.pdf", Content: bytes.NewReader([]byte("content"))}
	req, err := svc.Create(context.Background(), dev, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	reader, name, err := svc.OpenSickNote(context.Background(), dev, req.ID)
	if err != nil {
		t.Fatalf("requester open: %v", err)
	}
	reader.Close()
	if name != "note.pdf" {
		t.Errorf("file name = %s, want note.pdf", name)
	}

	reader, _, err = svc.OpenSickNote(context.Background(), ceo("ceo-1"), req.ID)
	if err != nil {
		t.Fatalf("manager open: %v", err)
	}
	reader.Close()

	if _, _, err := svc.OpenSickNote(context.Background(), developer("dev-2", teamRef(7)), req.ID); err == nil {
		t.Error("stranger developer should not download the sick note")
	}
}
