package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/vacation-manager/internal/domain"
)

// ErrApprovedConflict signals that a guarded write lost the race against an
// approval: the row exists but is no longer unapproved. Callers surface it as
// a conflict requiring reload, never as an authorization failure.
var ErrApprovedConflict = errors.New("request already approved")

// RequestFilter captures query parameters for vacation requests.
type RequestFilter struct {
	RequesterID     *string
	RequesterTeamID *int64
	Approved        *bool
	CreatedFrom     *time.Time
	Limit           int
	Offset          int
}

// RequestRepository encapsulates vacation request persistence.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.VacationRequest) error
	Update(ctx context.Context, req *domain.VacationRequest) error
	Approve(ctx context.Context, id int64, approverID string) (*domain.VacationRequest, error)
	GetByID(ctx context.Context, id int64) (*domain.VacationRequest, error)
	Delete(ctx context.Context, id int64) error
	ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.VacationRequest, error)
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

const requestColumns = `r.id, r.requester_id, u.team_id, r.approver_id, r.start_date, r.end_date,
       r.creation_date, r.request_type, r.half_day, r.approved, r.attachment_path`

func (r *requestRepository) Create(ctx context.Context, req *domain.VacationRequest) error {
	const query = `
        INSERT INTO vacation_requests (requester_id, start_date, end_date, request_type, half_day, approved, attachment_path)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, creation_date`
	return r.pool.QueryRow(ctx, query,
		req.RequesterID,
		req.StartDate,
		req.EndDate,
		req.Type,
		req.HalfDay,
		req.Approved,
		req.AttachmentPath,
	).Scan(&req.ID, &req.CreationDate)
}

// Update persists requester-editable fields. The write is guarded on
// approved=FALSE so an edit racing an approval fails with ErrApprovedConflict
// instead of silently clobbering an approved request.
func (r *requestRepository) Update(ctx context.Context, req *domain.VacationRequest) error {
	const query = `
        UPDATE vacation_requests
        SET start_date=$1, end_date=$2, request_type=$3, half_day=$4, attachment_path=$5
        WHERE id=$6 AND approved=FALSE`
	cmd, err := r.pool.Exec(ctx, query,
		req.StartDate,
		req.EndDate,
		req.Type,
		req.HalfDay,
		req.AttachmentPath,
		req.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.missingOrApproved(ctx, req.ID)
	}
	return nil
}

// Approve flips the one-way approval transition. The guard on approved=FALSE
// makes two concurrent approvals impossible: the second one observes zero
// affected rows and reports ErrApprovedConflict.
func (r *requestRepository) Approve(ctx context.Context, id int64, approverID string) (*domain.VacationRequest, error) {
	query := fmt.Sprintf(`
        UPDATE vacation_requests r
        SET approved=TRUE, approver_id=$1
        FROM users u
        WHERE r.id=$2 AND r.approved=FALSE AND u.id=r.requester_id
        RETURNING %s`, requestColumns)
	req, err := r.scanSingle(r.pool.QueryRow(ctx, query, approverID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.missingOrApproved(ctx, id)
		}
		return nil, err
	}
	return req, nil
}

func (r *requestRepository) missingOrApproved(ctx context.Context, id int64) error {
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM vacation_requests WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrApprovedConflict
	}
	return pgx.ErrNoRows
}

func (r *requestRepository) GetByID(ctx context.Context, id int64) (*domain.VacationRequest, error) {
	query := fmt.Sprintf(`
        SELECT %s
        FROM vacation_requests r
        JOIN users u ON u.id = r.requester_id
        WHERE r.id=$1`, requestColumns)
	return r.scanSingle(r.pool.QueryRow(ctx, query, id))
}

func (r *requestRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM vacation_requests WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *requestRepository) ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.VacationRequest, error) {
	base := fmt.Sprintf(`SELECT %s
             FROM vacation_requests r
             JOIN users u ON u.id = r.requester_id`, requestColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("r.requester_id=$%d", len(args)))
	}
	if filter.RequesterTeamID != nil {
		args = append(args, *filter.RequesterTeamID)
		clauses = append(clauses, fmt.Sprintf("u.team_id=$%d", len(args)))
	}
	if filter.Approved != nil {
		args = append(args, *filter.Approved)
		clauses = append(clauses, fmt.Sprintf("r.approved=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("r.creation_date >= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY r.creation_date DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (r *requestRepository) scanSingle(row pgx.Row) (*domain.VacationRequest, error) {
	var req domain.VacationRequest
	if err := row.Scan(
		&req.ID,
		&req.RequesterID,
		&req.RequesterTeamID,
		&req.ApproverID,
		&req.StartDate,
		&req.EndDate,
		&req.CreationDate,
		&req.Type,
		&req.HalfDay,
		&req.Approved,
		&req.AttachmentPath,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

func scanRequests(rows pgx.Rows) ([]domain.VacationRequest, error) {
	var result []domain.VacationRequest
	for rows.Next() {
		var req domain.VacationRequest
		if err := rows.Scan(
			&req.ID,
			&req.RequesterID,
			&req.RequesterTeamID,
			&req.ApproverID,
			&req.StartDate,
			&req.EndDate,
			&req.CreationDate,
			&req.Type,
			&req.HalfDay,
			&req.Approved,
			&req.AttachmentPath,
		); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}
