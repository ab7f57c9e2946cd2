package employee

import (
	"context"
	"errors"

	"snd/internal/apperr"
)

type StoreAPI interface {
	Get(ctx context.Context, id string) (Employee, error)
	Create(ctx context.Context, input CreateInput) (string, error)
	List(ctx context.Context, filter ListFilter) (ListResult, error)
}

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

func (s *Service) Get(ctx context.Context, id string) (Employee, error) {
	if id == "" {
		return Employee{}, apperr.New(apperr.Validation, "employee id is required")
	}

	e, err := s.Store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Employee{}, apperr.Wrap(apperr.NotFound, "employee not found", err)
	}
	if err != nil {
		return Employee{}, apperr.Wrap(apperr.Internal, "load employee", err)
	}

	return e, nil
}

func (s *Service) Create(ctx context.Context, input CreateInput) (Employee, error) {
	if input.FileNumber == "" {
		return Employee{}, apperr.New(apperr.Validation, "file number is required")
	}
	if input.FirstName == "" || input.LastName == "" {
		return Employee{}, apperr.New(apperr.Validation, "first and last name are required")
	}
	if input.BasicSalary < 0 || input.FoodAllowance < 0 || input.HousingAllowance < 0 || input.TransportAllowance < 0 {
		return Employee{}, apperr.New(apperr.Validation, "compensation must not be negative")
	}

	id, err := s.Store.Create(ctx, input)
	if err != nil {
		return Employee{}, apperr.Wrap(apperr.Internal, "create employee", err)
	}

	return s.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	result, err := s.Store.List(ctx, filter)
	if err != nil {
		return ListResult{}, apperr.Wrap(apperr.Internal, "list employees", err)
	}

	return result, nil
}
