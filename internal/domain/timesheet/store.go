package timesheet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"snd/internal/platform/db"
)

var ErrNotFound = errors.New("timesheet not found")

type Store struct {
	DB db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{DB: q}
}

const timesheetColumns = `
	id, employee_id, assignment_id, date, hours_worked, overtime_hours, status, notes,
	submitted_at,
	foreman_approval_by, foreman_approval_at, foreman_approval_notes,
	incharge_approval_by, incharge_approval_at, incharge_approval_notes,
	checking_approval_by, checking_approval_at, checking_approval_notes,
	manager_approval_by, manager_approval_at, manager_approval_notes,
	rejected_by, rejected_at, rejection_reason, rejection_stage,
	created_at`

func scanTimesheet(row pgx.Row) (Timesheet, error) {
	var ts Timesheet
	err := row.Scan(
		&ts.ID, &ts.EmployeeID, &ts.AssignmentID, &ts.Date, &ts.HoursWorked, &ts.OvertimeHours, &ts.Status, &ts.Notes,
		&ts.SubmittedAt,
		&ts.ForemanApprovalBy, &ts.ForemanApprovalAt, &ts.ForemanApprovalNotes,
		&ts.InchargeApprovalBy, &ts.InchargeApprovalAt, &ts.InchargeApprovalNotes,
		&ts.CheckingApprovalBy, &ts.CheckingApprovalAt, &ts.CheckingApprovalNotes,
		&ts.ManagerApprovalBy, &ts.ManagerApprovalAt, &ts.ManagerApprovalNotes,
		&ts.RejectedBy, &ts.RejectedAt, &ts.RejectionReason, &ts.RejectionStage,
		&ts.CreatedAt,
	)
	return ts, err
}

func (s *Store) Get(ctx context.Context, id string) (Timesheet, error) {
	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE id = $1`

	ts, err := scanTimesheet(s.DB.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Timesheet{}, ErrNotFound
	}
	if err != nil {
		return Timesheet{}, fmt.Errorf("get timesheet: %w", err)
	}

	return ts, nil
}

func (s *Store) Create(ctx context.Context, input CreateInput) (string, error) {
	query := `
		INSERT INTO timesheets (employee_id, assignment_id, date, hours_worked, overtime_hours, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	var id string
	err := s.DB.QueryRow(ctx, query,
		input.EmployeeID, input.AssignmentID, input.Date, input.HoursWorked, input.OvertimeHours,
		StatusDraft, input.Notes,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create timesheet: %w", err)
	}

	return id, nil
}

func (s *Store) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	base := ` FROM timesheets WHERE 1=1`
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
	if filter.From != nil {
		base += fmt.Sprintf(" AND date >= $%d", argN)
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		base += fmt.Sprintf(" AND date <= $%d", argN)
		args = append(args, *filter.To)
		argN++
	}

	var total int
	if err := s.DB.QueryRow(ctx, `SELECT COUNT(*)`+base, args...).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("count timesheets: %w", err)
	}

	query := `SELECT ` + timesheetColumns + base +
		fmt.Sprintf(" ORDER BY date DESC, created_at DESC LIMIT $%d OFFSET $%d", argN, argN+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("list timesheets: %w", err)
	}
	defer rows.Close()

	result := ListResult{Total: total, Timesheets: []Timesheet{}}
	for rows.Next() {
		ts, err := scanTimesheet(rows)
		if err != nil {
			return ListResult{}, fmt.Errorf("scan timesheet: %w", err)
		}
		result.Timesheets = append(result.Timesheets, ts)
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, fmt.Errorf("list timesheets: %w", err)
	}

	return result, nil
}

func (s *Store) SubmitIf(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `UPDATE timesheets SET status = $1, submitted_at = $2 WHERE id = $3 AND status = $4`

	tag, err := s.DB.Exec(ctx, query, StatusSubmitted, at, id, StatusDraft)
	if err != nil {
		return false, fmt.Errorf("submit timesheet: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (s *Store) ApproveStage(ctx context.Context, id string, stage Stage, from, to Status, approverID, notes string, at time.Time) (bool, error) {
	// Stage names come from the fixed Stages list, never from request
	// input, so interpolating the column prefix is safe.
	query := fmt.Sprintf(`
		UPDATE timesheets
		SET status = $1,
		    %[1]s_approval_by = $2,
		    %[1]s_approval_at = $3,
		    %[1]s_approval_notes = $4
		WHERE id = $5 AND status = $6`, stage)

	tag, err := s.DB.Exec(ctx, query, to, approverID, at, notes, id, from)
	if err != nil {
		return false, fmt.Errorf("approve timesheet at %s: %w", stage, err)
	}

	return tag.RowsAffected() > 0, nil
}

func (s *Store) RejectIfActive(ctx context.Context, id, rejectedBy, reason string, at time.Time) (bool, error) {
	// rejection_stage captures the status the row held at the moment of
	// rejection; Postgres evaluates the right-hand side against the old row.
	query := `
		UPDATE timesheets
		SET rejection_stage = status,
		    status = $1,
		    rejected_by = $2,
		    rejected_at = $3,
		    rejection_reason = $4
		WHERE id = $5 AND status NOT IN ($6, $7)`

	tag, err := s.DB.Exec(ctx, query,
		StatusRejected, rejectedBy, at, reason, id,
		StatusManagerApproved, StatusRejected,
	)
	if err != nil {
		return false, fmt.Errorf("reject timesheet: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (s *Store) UpdateHours(ctx context.Context, id string, hoursWorked, overtimeHours float64, note string) (bool, error) {
	query := `
		UPDATE timesheets
		SET hours_worked = $1,
		    overtime_hours = $2,
		    notes = CASE WHEN notes = '' THEN $3 ELSE notes || E'\n' || $3 END
		WHERE id = $4`

	tag, err := s.DB.Exec(ctx, query, hoursWorked, overtimeHours, note, id)
	if err != nil {
		return false, fmt.Errorf("update timesheet hours: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
