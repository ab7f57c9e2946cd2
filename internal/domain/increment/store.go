package increment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"snd/internal/platform/db"
)

var ErrNotFound = errors.New("salary increment not found")

type Store struct {
	DB db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{DB: q}
}

const incrementColumns = `
	id, employee_id,
	current_base_salary, current_food_allowance, current_housing_allowance, current_transport_allowance,
	new_base_salary, new_food_allowance, new_housing_allowance, new_transport_allowance,
	reason, effective_date, status, requested_by,
	approved_by, approved_at, rejected_by, rejected_at, rejection_reason,
	applied_by, applied_at, created_at`

func scanIncrement(row pgx.Row) (Increment, error) {
	var inc Increment
	err := row.Scan(
		&inc.ID, &inc.EmployeeID,
		&inc.CurrentBaseSalary, &inc.CurrentFoodAllowance, &inc.CurrentHousingAllowance, &inc.CurrentTransportAllowance,
		&inc.NewBaseSalary, &inc.NewFoodAllowance, &inc.NewHousingAllowance, &inc.NewTransportAllowance,
		&inc.Reason, &inc.EffectiveDate, &inc.Status, &inc.RequestedBy,
		&inc.ApprovedBy, &inc.ApprovedAt, &inc.RejectedBy, &inc.RejectedAt, &inc.RejectionReason,
		&inc.AppliedBy, &inc.AppliedAt, &inc.CreatedAt,
	)
	return inc, err
}

func (s *Store) Get(ctx context.Context, id string) (Increment, error) {
	query := `SELECT ` + incrementColumns + ` FROM salary_increments WHERE id = $1`

	inc, err := scanIncrement(s.DB.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Increment{}, ErrNotFound
	}
	if err != nil {
		return Increment{}, fmt.Errorf("get salary increment: %w", err)
	}

	return inc, nil
}

func (s *Store) Create(ctx context.Context, input CreateInput) (string, error) {
	// The current_* snapshot comes from the employee row inside the insert,
	// so a concurrent salary change cannot produce a stale snapshot.
	query := `
		INSERT INTO salary_increments (
			employee_id,
			current_base_salary, current_food_allowance, current_housing_allowance, current_transport_allowance,
			new_base_salary, new_food_allowance, new_housing_allowance, new_transport_allowance,
			reason, effective_date, status, requested_by
		)
		SELECT e.id,
		       e.basic_salary, e.food_allowance, e.housing_allowance, e.transport_allowance,
		       $2, $3, $4, $5,
		       $6, $7, $8, $9
		FROM employees e
		WHERE e.id = $1
		RETURNING id`

	var id string
	err := s.DB.QueryRow(ctx, query,
		input.EmployeeID,
		input.NewBaseSalary, input.NewFoodAllowance, input.NewHousingAllowance, input.NewTransportAllowance,
		input.Reason, input.EffectiveDate, StatusPending, input.RequestedBy,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("create salary increment: %w", err)
	}

	return id, nil
}

func (s *Store) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	base := ` FROM salary_increments WHERE 1=1`
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
		return ListResult{}, fmt.Errorf("count salary increments: %w", err)
	}

	query := `SELECT ` + incrementColumns + base +
		fmt.Sprintf(" ORDER BY effective_date DESC, created_at DESC LIMIT $%d OFFSET $%d", argN, argN+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("list salary increments: %w", err)
	}
	defer rows.Close()

	result := ListResult{Total: total, Increments: []Increment{}}
	for rows.Next() {
		inc, err := scanIncrement(rows)
		if err != nil {
			return ListResult{}, fmt.Errorf("scan salary increment: %w", err)
		}
		result.Increments = append(result.Increments, inc)
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, fmt.Errorf("list salary increments: %w", err)
	}

	return result, nil
}

func (s *Store) ApproveIf(ctx context.Context, id, approverID string, at time.Time) (bool, error) {
	query := `
		UPDATE salary_increments
		SET status = $1, approved_by = $2, approved_at = $3
		WHERE id = $4 AND status = $5`

	tag, err := s.DB.Exec(ctx, query, StatusApproved, approverID, at, id, StatusPending)
	if err != nil {
		return false, fmt.Errorf("approve salary increment: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (s *Store) RejectIf(ctx context.Context, id, rejectedBy, reason string, at time.Time) (bool, error) {
	query := `
		UPDATE salary_increments
		SET status = $1, rejected_by = $2, rejected_at = $3, rejection_reason = $4
		WHERE id = $5 AND status = $6`

	tag, err := s.DB.Exec(ctx, query, StatusRejected, rejectedBy, at, reason, id, StatusPending)
	if err != nil {
		return false, fmt.Errorf("reject salary increment: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (s *Store) ApplyIf(ctx context.Context, id, appliedBy string, at time.Time) (bool, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("apply salary increment: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	flip := `
		UPDATE salary_increments
		SET status = $1, applied_by = $2, applied_at = $3
		WHERE id = $4 AND status = $5`

	tag, err := tx.Exec(ctx, flip, StatusApplied, appliedBy, at, id, StatusApproved)
	if err != nil {
		return false, fmt.Errorf("apply salary increment: flip status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	copySalary := `
		UPDATE employees e
		SET basic_salary = i.new_base_salary,
		    food_allowance = i.new_food_allowance,
		    housing_allowance = i.new_housing_allowance,
		    transport_allowance = i.new_transport_allowance
		FROM salary_increments i
		WHERE i.id = $1 AND e.id = i.employee_id`

	tag, err = tx.Exec(ctx, copySalary, id)
	if err != nil {
		return false, fmt.Errorf("apply salary increment: update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, fmt.Errorf("apply salary increment: employee row missing")
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("apply salary increment: commit: %w", err)
	}

	return true, nil
}
