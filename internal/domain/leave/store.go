package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"snd/internal/platform/db"
)

var ErrNotFound = errors.New("leave not found")

type Store struct {
	DB db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{DB: q}
}

const leaveColumns = `
	id, employee_id, leave_type, start_date, end_date, days,
	requested_end_date, requested_days, reason, status,
	approved_by, approved_at, rejected_by, rejected_at, rejection_reason,
	return_date, returned_by, return_reason, created_at`

func scanLeave(row pgx.Row) (Leave, error) {
	var lv Leave
	err := row.Scan(
		&lv.ID, &lv.EmployeeID, &lv.LeaveType, &lv.StartDate, &lv.EndDate, &lv.Days,
		&lv.RequestedEndDate, &lv.RequestedDays, &lv.Reason, &lv.Status,
		&lv.ApprovedBy, &lv.ApprovedAt, &lv.RejectedBy, &lv.RejectedAt, &lv.RejectionReason,
		&lv.ReturnDate, &lv.ReturnedBy, &lv.ReturnReason, &lv.CreatedAt,
	)
	return lv, err
}

func (s *Store) Get(ctx context.Context, id string) (Leave, error) {
	query := `SELECT ` + leaveColumns + ` FROM employee_leaves WHERE id = $1`

	lv, err := scanLeave(s.DB.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Leave{}, ErrNotFound
	}
	if err != nil {
		return Leave{}, fmt.Errorf("get leave: %w", err)
	}

	return lv, nil
}

func (s *Store) Create(ctx context.Context, input CreateInput, days int) (string, error) {
	// end_date/days and requested_end_date/requested_days start out equal;
	// only a return overwrites the former pair.
	query := `
		INSERT INTO employee_leaves (
			employee_id, leave_type, start_date, end_date, days,
			requested_end_date, requested_days, reason, status
		)
		VALUES ($1, $2, $3, $4, $5, $4, $5, $6, $7)
		RETURNING id`

	var id string
	err := s.DB.QueryRow(ctx, query,
		input.EmployeeID, input.LeaveType, input.StartDate, input.EndDate, days,
		input.Reason, StatusPending,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create leave: %w", err)
	}

	return id, nil
}

func (s *Store) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	base := ` FROM employee_leaves WHERE 1=1`
	args := []any{}
	argN := 1

	if filter.EmployeeID != "" {
		base += fmt.Sprintf(" AND employee_id = $%d", argN)
		args = append(args, filter.EmployeeID)
		argN++
	}
	if filter.Status != "" {
		base += fmt.Sprintf(" AND status = $%d", argN)
		args = append(args, filter.Status)
		argN++
	}

	var total int
	if err := s.DB.QueryRow(ctx, `SELECT COUNT(*)`+base, args...).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("count leaves: %w", err)
	}

	query := `SELECT ` + leaveColumns + base +
		fmt.Sprintf(" ORDER BY start_date DESC, created_at DESC LIMIT $%d OFFSET $%d", argN, argN+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("list leaves: %w", err)
	}
	defer rows.Close()

	result := ListResult{Total: total, Leaves: []Leave{}}
	for rows.Next() {
		lv, err := scanLeave(rows)
		if err != nil {
			return ListResult{}, fmt.Errorf("scan leave: %w", err)
		}
		result.Leaves = append(result.Leaves, lv)
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, fmt.Errorf("list leaves: %w", err)
	}

	return result, nil
}

func (s *Store) ApproveIf(ctx context.Context, id, approverID string, at time.Time) (bool, error) {
	query := `
		UPDATE employee_leaves
		SET status = $1, approved_by = $2, approved_at = $3
		WHERE id = $4 AND status = $5`

	tag, err := s.DB.Exec(ctx, query, StatusApproved, approverID, at, id, StatusPending)
	if err != nil {
		return false, fmt.Errorf("approve leave: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (s *Store) RejectIf(ctx context.Context, id, rejectedBy, reason string, at time.Time) (bool, error) {
	query := `
		UPDATE employee_leaves
		SET status = $1, rejected_by = $2, rejected_at = $3, rejection_reason = $4
		WHERE id = $5 AND status = $6`

	tag, err := s.DB.Exec(ctx, query, StatusRejected, rejectedBy, at, reason, id, StatusPending)
	if err != nil {
		return false, fmt.Errorf("reject leave: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (s *Store) ReturnIf(ctx context.Context, input ReturnInput, actualDays int) (bool, error) {
	query := `
		UPDATE employee_leaves
		SET status = $1,
		    end_date = $2,
		    days = $3,
		    return_date = $2,
		    returned_by = $4,
		    return_reason = $5
		WHERE id = $6 AND status = $7`

	tag, err := s.DB.Exec(ctx, query,
		StatusReturned, input.ReturnDate, actualDays,
		input.ReturnedBy, input.Reason, input.LeaveID, StatusApproved,
	)
	if err != nil {
		return false, fmt.Errorf("return leave: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
