package leave

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

func (s *Service) Get(ctx context.Context, id string) (Leave, error) {
	if id == "" {
		return Leave{}, apperr.New(apperr.Validation, "leave id is required")
	}

	lv, err := s.Store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Leave{}, apperr.Wrap(apperr.NotFound, "leave not found", err)
	}
	if err != nil {
		return Leave{}, apperr.Wrap(apperr.Internal, "load leave", err)
	}

	return lv, nil
}

func (s *Service) Create(ctx context.Context, input CreateInput) (Leave, error) {
	if input.EmployeeID == "" {
		return Leave{}, apperr.New(apperr.Validation, "employee id is required")
	}
	if input.LeaveType == "" {
		return Leave{}, apperr.New(apperr.Validation, "leave type is required")
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return Leave{}, apperr.New(apperr.Validation, "start and end dates are required")
	}

	days, err := CalculateDays(input.StartDate, input.EndDate)
	if err != nil {
		return Leave{}, apperr.Wrap(apperr.Validation, "invalid leave range", err)
	}

	id, err := s.Store.Create(ctx, input, days)
	if err != nil {
		return Leave{}, apperr.Wrap(apperr.Internal, "create leave", err)
	}

	lv, err := s.Get(ctx, id)
	if err != nil {
		return Leave{}, err
	}
	s.record(ctx, input.EmployeeID, "leave.create", id, nil, lv)

	return lv, nil
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
		return ListResult{}, apperr.Wrap(apperr.Internal, "list leaves", err)
	}

	return result, nil
}

func (s *Service) Approve(ctx context.Context, id, approverID string) (Leave, error) {
	if id == "" {
		return Leave{}, apperr.New(apperr.Validation, "leave id is required")
	}

	ok, err := s.Store.ApproveIf(ctx, id, approverID, s.Now())
	if err != nil {
		return Leave{}, apperr.Wrap(apperr.Internal, "approve leave", err)
	}
	if !ok {
		return Leave{}, s.classifyMiss(ctx, id, StatusPending)
	}

	lv, err := s.Get(ctx, id)
	if err != nil {
		return Leave{}, err
	}
	s.record(ctx, approverID, "leave.approve", id, StatusPending, StatusApproved)

	return lv, nil
}

func (s *Service) Reject(ctx context.Context, id, rejectedBy, reason string) (Leave, error) {
	if id == "" {
		return Leave{}, apperr.New(apperr.Validation, "leave id is required")
	}
	if reason == "" {
		return Leave{}, apperr.New(apperr.Validation, "rejection reason is required")
	}

	ok, err := s.Store.RejectIf(ctx, id, rejectedBy, reason, s.Now())
	if err != nil {
		return Leave{}, apperr.Wrap(apperr.Internal, "reject leave", err)
	}
	if !ok {
		return Leave{}, s.classifyMiss(ctx, id, StatusPending)
	}

	lv, err := s.Get(ctx, id)
	if err != nil {
		return Leave{}, err
	}
	s.record(ctx, rejectedBy, "leave.reject", id, StatusPending, StatusRejected)

	return lv, nil
}

// Return closes an approved leave on the actual return date. The leave's
// end_date and days are recalculated from the real dates; the originally
// requested values stay on the record for comparison.
func (s *Service) Return(ctx context.Context, input ReturnInput) (Leave, error) {
	if input.LeaveID == "" {
		return Leave{}, apperr.New(apperr.Validation, "leave id is required")
	}
	if input.ReturnDate.IsZero() {
		return Leave{}, apperr.New(apperr.Validation, "return date is required")
	}

	before, err := s.Get(ctx, input.LeaveID)
	if err != nil {
		return Leave{}, err
	}
	if before.Status != StatusApproved {
		return Leave{}, apperr.Newf(apperr.Precondition,
			"leave is %s, not approved", before.Status)
	}
	if truncateDate(input.ReturnDate).Before(truncateDate(before.StartDate)) {
		return Leave{}, apperr.New(apperr.Precondition, "return date is before the leave start date")
	}

	actualDays, err := ActualDaysTaken(before.StartDate, input.ReturnDate)
	if err != nil {
		return Leave{}, apperr.Wrap(apperr.Validation, "invalid return date", err)
	}

	ok, err := s.Store.ReturnIf(ctx, input, actualDays)
	if err != nil {
		return Leave{}, apperr.Wrap(apperr.Internal, "return leave", err)
	}
	if !ok {
		return Leave{}, s.classifyMiss(ctx, input.LeaveID, StatusApproved)
	}

	lv, err := s.Get(ctx, input.LeaveID)
	if err != nil {
		return Leave{}, err
	}
	s.record(ctx, input.ReturnedBy, "leave.return", input.LeaveID,
		map[string]any{"endDate": before.EndDate, "days": before.Days},
		map[string]any{"endDate": lv.EndDate, "days": lv.Days})

	return lv, nil
}

func (s *Service) classifyMiss(ctx context.Context, id string, required Status) error {
	lv, err := s.Store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return apperr.New(apperr.NotFound, "leave not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "load leave", err)
	}
	if lv.Status == required {
		return apperr.New(apperr.Conflict, "leave was modified concurrently")
	}
	return apperr.Newf(apperr.Precondition, "leave is %s, not %s", lv.Status, required)
}

func (s *Service) record(ctx context.Context, actorID, action, entityID string, before, after any) {
	if s.Audit == nil {
		return
	}
	_ = s.Audit.Record(ctx, actorID, action, "leave", entityID,
		requestctx.GetRequestID(ctx), before, after)
}
