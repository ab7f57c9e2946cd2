package increment

import (
	"context"
	"errors"
	"time"

	"snd/internal/apperr"
	"snd/internal/requestctx"
)

type AuditAPI interface {
	Record(ctx context.Context, actorID, action, entityType, entityID, requestID string, before, after any) error
}

type Service struct {
	Store StoreAPI
	Audit AuditAPI

	// Now is swapped out in tests.
	Now func() time.Time
}

func NewService(store StoreAPI, audit AuditAPI) *Service {
	return &Service{Store: store, Audit: audit, Now: time.Now}
}

func (s *Service) Get(ctx context.Context, id string) (Increment, error) {
	if id == "" {
		return Increment{}, apperr.New(apperr.Validation, "increment id is required")
	}

	inc, err := s.Store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Increment{}, apperr.Wrap(apperr.NotFound, "salary increment not found", err)
	}
	if err != nil {
		return Increment{}, apperr.Wrap(apperr.Internal, "load salary increment", err)
	}

	return inc, nil
}

func (s *Service) Create(ctx context.Context, input CreateInput) (Increment, error) {
	if input.EmployeeID == "" {
		return Increment{}, apperr.New(apperr.Validation, "employee id is required")
	}
	if input.EffectiveDate.IsZero() {
		return Increment{}, apperr.New(apperr.Validation, "effective date is required")
	}
	if input.NewBaseSalary <= 0 {
		return Increment{}, apperr.New(apperr.Validation, "new base salary must be positive")
	}
	if input.NewFoodAllowance < 0 || input.NewHousingAllowance < 0 || input.NewTransportAllowance < 0 {
		return Increment{}, apperr.New(apperr.Validation, "allowances must not be negative")
	}
	if input.Reason == "" {
		return Increment{}, apperr.New(apperr.Validation, "increment reason is required")
	}

	id, err := s.Store.Create(ctx, input)
	if errors.Is(err, ErrNotFound) {
		return Increment{}, apperr.Wrap(apperr.NotFound, "employee not found", err)
	}
	if err != nil {
		return Increment{}, apperr.Wrap(apperr.Internal, "create salary increment", err)
	}

	inc, err := s.Get(ctx, id)
	if err != nil {
		return Increment{}, err
	}
	s.record(ctx, input.RequestedBy, "increment.create", id, nil, inc)

	return inc, nil
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
		return ListResult{}, apperr.Wrap(apperr.Internal, "list salary increments", err)
	}

	return result, nil
}

// Approve accepts a pending increment. A retroactive effective date is
// allowed; the date only gates Apply.
func (s *Service) Approve(ctx context.Context, id, approverID string) (Increment, error) {
	if id == "" {
		return Increment{}, apperr.New(apperr.Validation, "increment id is required")
	}
	if approverID == "" {
		return Increment{}, apperr.New(apperr.Validation, "approver id is required")
	}

	ok, err := s.Store.ApproveIf(ctx, id, approverID, s.Now())
	if err != nil {
		return Increment{}, apperr.Wrap(apperr.Internal, "approve salary increment", err)
	}
	if !ok {
		return Increment{}, s.classifyMiss(ctx, id, StatusPending)
	}

	inc, err := s.Get(ctx, id)
	if err != nil {
		return Increment{}, err
	}
	s.record(ctx, approverID, "increment.approve", id, StatusPending, StatusApproved)

	return inc, nil
}

func (s *Service) Reject(ctx context.Context, id, rejectedBy, reason string) (Increment, error) {
	if id == "" {
		return Increment{}, apperr.New(apperr.Validation, "increment id is required")
	}
	if reason == "" {
		return Increment{}, apperr.New(apperr.Validation, "rejection reason is required")
	}

	ok, err := s.Store.RejectIf(ctx, id, rejectedBy, reason, s.Now())
	if err != nil {
		return Increment{}, apperr.Wrap(apperr.Internal, "reject salary increment", err)
	}
	if !ok {
		return Increment{}, s.classifyMiss(ctx, id, StatusPending)
	}

	inc, err := s.Get(ctx, id)
	if err != nil {
		return Increment{}, err
	}
	s.record(ctx, rejectedBy, "increment.reject", id, StatusPending, StatusRejected)

	return inc, nil
}

// Apply copies the approved compensation onto the employee. The status flip
// and the employee update ride the same transaction, so a second Apply can
// never double-raise the salary.
func (s *Service) Apply(ctx context.Context, id, appliedBy string) (Increment, error) {
	if id == "" {
		return Increment{}, apperr.New(apperr.Validation, "increment id is required")
	}

	inc, err := s.Get(ctx, id)
	if err != nil {
		return Increment{}, err
	}
	if inc.Status != StatusApproved {
		return Increment{}, apperr.Newf(apperr.Precondition,
			"salary increment is %s, not approved", inc.Status)
	}
	if today := dateOnly(s.Now()); dateOnly(inc.EffectiveDate).After(today) {
		return Increment{}, apperr.New(apperr.Precondition, "cannot apply before effective date")
	}

	ok, err := s.Store.ApplyIf(ctx, id, appliedBy, s.Now())
	if err != nil {
		return Increment{}, apperr.Wrap(apperr.Internal, "apply salary increment", err)
	}
	if !ok {
		// The precondition held a moment ago, so another writer raced us.
		return Increment{}, s.classifyMiss(ctx, id, StatusApproved)
	}

	applied, err := s.Get(ctx, id)
	if err != nil {
		return Increment{}, err
	}
	s.record(ctx, appliedBy, "increment.apply", id,
		map[string]float64{"baseSalary": inc.CurrentBaseSalary, "total": inc.TotalCurrent()},
		map[string]float64{"baseSalary": inc.NewBaseSalary, "total": inc.TotalNew()})

	return applied, nil
}

func (s *Service) classifyMiss(ctx context.Context, id string, required Status) error {
	inc, err := s.Store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return apperr.New(apperr.NotFound, "salary increment not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "load salary increment", err)
	}
	if inc.Status == required {
		return apperr.New(apperr.Conflict, "salary increment was modified concurrently")
	}
	return apperr.Newf(apperr.Precondition,
		"salary increment is %s, not %s", inc.Status, required)
}

func (s *Service) record(ctx context.Context, actorID, action, entityID string, before, after any) {
	if s.Audit == nil {
		return
	}
	_ = s.Audit.Record(ctx, actorID, action, "salary_increment", entityID,
		requestctx.GetRequestID(ctx), before, after)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
