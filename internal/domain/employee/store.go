package employee

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"snd/internal/platform/db"
)

var ErrNotFound = errors.New("employee not found")

type Store struct {
	DB db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{DB: q}
}

const employeeColumns = `
	id, file_number, first_name, last_name, email, user_id,
	designation, department,
	basic_salary, food_allowance, housing_allowance, transport_allowance,
	is_active, created_at`

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(
		&e.ID, &e.FileNumber, &e.FirstName, &e.LastName, &e.Email, &e.UserID,
		&e.Designation, &e.Department,
		&e.BasicSalary, &e.FoodAllowance, &e.HousingAllowance, &e.TransportAllowance,
		&e.Active, &e.CreatedAt,
	)
	return e, err
}

func (s *Store) Get(ctx context.Context, id string) (Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	e, err := scanEmployee(s.DB.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	if err != nil {
		return Employee{}, fmt.Errorf("get employee: %w", err)
	}

	return e, nil
}

func (s *Store) Create(ctx context.Context, input CreateInput) (string, error) {
	query := `
		INSERT INTO employees (
			file_number, first_name, last_name, email, designation, department,
			basic_salary, food_allowance, housing_allowance, transport_allowance, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, true)
		RETURNING id`

	var id string
	err := s.DB.QueryRow(ctx, query,
		input.FileNumber, input.FirstName, input.LastName, input.Email,
		input.Designation, input.Department,
		input.BasicSalary, input.FoodAllowance, input.HousingAllowance, input.TransportAllowance,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create employee: %w", err)
	}

	return id, nil
}

func (s *Store) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	base := ` FROM employees WHERE 1=1`
	args := []any{}
	argN := 1

	if filter.Department != "" {
		base += fmt.Sprintf(" AND department = $%d", argN)
		args = append(args, filter.Department)
		argN++
	}
	if filter.Active != nil {
		base += fmt.Sprintf(" AND is_active = $%d", argN)
		args = append(args, *filter.Active)
		argN++
	}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR file_number ILIKE $%d)", argN, argN, argN)
		args = append(args, "%"+filter.Search+"%")
		argN++
	}

	var total int
	if err := s.DB.QueryRow(ctx, `SELECT COUNT(*)`+base, args...).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("count employees: %w", err)
	}

	query := `SELECT ` + employeeColumns + base +
		fmt.Sprintf(" ORDER BY file_number LIMIT $%d OFFSET $%d", argN, argN+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	result := ListResult{Total: total, Employees: []Employee{}}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return ListResult{}, fmt.Errorf("scan employee: %w", err)
		}
		result.Employees = append(result.Employees, e)
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, fmt.Errorf("list employees: %w", err)
	}

	return result, nil
}
