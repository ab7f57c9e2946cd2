package timesheet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"snd/internal/apperr"
	"snd/internal/requestctx"
)

// AuditAPI records mutations for the audit trail. A nil recorder disables
// auditing, which the tests rely on.
type AuditAPI interface {
	Record(ctx context.Context, actorID, action, entityType, entityID, requestID string, before, after any) error
}

type Service struct {
	Store StoreAPI
	Audit AuditAPI

	// LockApprovedHours rejects hour edits once the first approval has
	// been granted. Off by default; enabled via TIMESHEET_LOCK_APPROVED_HOURS.
	LockApprovedHours bool

	// Now is swapped out in tests.
	Now func() time.Time
}

func NewService(store StoreAPI, audit AuditAPI, lockApprovedHours bool) *Service {
	return &Service{
		Store:             store,
		Audit:             audit,
		LockApprovedHours: lockApprovedHours,
		Now:               time.Now,
	}
}

func (s *Service) Get(ctx context.Context, id string) (Timesheet, error) {
	if id == "" {
		return Timesheet{}, apperr.New(apperr.Validation, "timesheet id is required")
	}

	ts, err := s.Store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Timesheet{}, apperr.Wrap(apperr.NotFound, "timesheet not found", err)
	}
	if err != nil {
		return Timesheet{}, apperr.Wrap(apperr.Internal, "load timesheet", err)
	}

	return ts, nil
}

func (s *Service) Create(ctx context.Context, input CreateInput) (Timesheet, error) {
	if input.EmployeeID == "" {
		return Timesheet{}, apperr.New(apperr.Validation, "employee id is required")
	}
	if input.Date.IsZero() {
		return Timesheet{}, apperr.New(apperr.Validation, "timesheet date is required")
	}
	if err := validateHours(input.HoursWorked, input.OvertimeHours); err != nil {
		return Timesheet{}, err
	}

	id, err := s.Store.Create(ctx, input)
	if err != nil {
		return Timesheet{}, apperr.Wrap(apperr.Internal, "create timesheet", err)
	}

	ts, err := s.Get(ctx, id)
	if err != nil {
		return Timesheet{}, err
	}
	s.record(ctx, input.EmployeeID, "timesheet.create", id, nil, ts)

	return ts, nil
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
		return ListResult{}, apperr.Wrap(apperr.Internal, "list timesheets", err)
	}

	return result, nil
}

// Submit moves a draft timesheet into the approval pipeline.
func (s *Service) Submit(ctx context.Context, id, actorID string) (Timesheet, error) {
	if id == "" {
		return Timesheet{}, apperr.New(apperr.Validation, "timesheet id is required")
	}

	ok, err := s.Store.SubmitIf(ctx, id, s.Now())
	if err != nil {
		return Timesheet{}, apperr.Wrap(apperr.Internal, "submit timesheet", err)
	}
	if !ok {
		return Timesheet{}, s.classifyMiss(ctx, id, StatusDraft)
	}

	ts, err := s.Get(ctx, id)
	if err != nil {
		return Timesheet{}, err
	}
	s.record(ctx, actorID, "timesheet.submit", id, StatusDraft, ts.Status)

	return ts, nil
}

// ApproveAtStage grants the given stage's approval. The status transition and
// the stage stamp are applied in one conditional update, so two approvers
// racing for the same stage cannot both win.
func (s *Service) ApproveAtStage(ctx context.Context, id string, stage Stage, approverID, notes string) (Timesheet, error) {
	if id == "" {
		return Timesheet{}, apperr.New(apperr.Validation, "timesheet id is required")
	}
	if approverID == "" {
		return Timesheet{}, apperr.New(apperr.Validation, "approver id is required")
	}

	from, to, err := StageTransition(stage)
	if err != nil {
		return Timesheet{}, apperr.Wrap(apperr.Validation, "invalid approval stage", err)
	}

	ok, err := s.Store.ApproveStage(ctx, id, stage, from, to, approverID, notes, s.Now())
	if err != nil {
		return Timesheet{}, apperr.Wrap(apperr.Internal, "approve timesheet", err)
	}
	if !ok {
		return Timesheet{}, s.classifyMiss(ctx, id, from)
	}

	ts, err := s.Get(ctx, id)
	if err != nil {
		return Timesheet{}, err
	}
	s.record(ctx, approverID, "timesheet.approve."+string(stage), id, from, to)

	return ts, nil
}

// Reject moves any non-terminal timesheet to the rejected sink, recording who
// rejected it, when, why, and at which pipeline stage.
func (s *Service) Reject(ctx context.Context, id, rejectedBy, reason string) (Timesheet, error) {
	if id == "" {
		return Timesheet{}, apperr.New(apperr.Validation, "timesheet id is required")
	}
	if reason == "" {
		return Timesheet{}, apperr.New(apperr.Validation, "rejection reason is required")
	}

	ok, err := s.Store.RejectIfActive(ctx, id, rejectedBy, reason, s.Now())
	if err != nil {
		return Timesheet{}, apperr.Wrap(apperr.Internal, "reject timesheet", err)
	}
	if !ok {
		ts, getErr := s.Store.Get(ctx, id)
		if errors.Is(getErr, ErrNotFound) {
			return Timesheet{}, apperr.New(apperr.NotFound, "timesheet not found")
		}
		if getErr != nil {
			return Timesheet{}, apperr.Wrap(apperr.Internal, "load timesheet", getErr)
		}
		return Timesheet{}, apperr.Newf(apperr.Precondition,
			"cannot reject timesheet in status %s", ts.Status)
	}

	ts, err := s.Get(ctx, id)
	if err != nil {
		return Timesheet{}, err
	}
	s.record(ctx, rejectedBy, "timesheet.reject", id, ts.RejectionStage, StatusRejected)

	return ts, nil
}

// UpdateHours overwrites the recorded hours. By default edits are allowed in
// any status, matching how corrections land in practice; with
// LockApprovedHours set, edits are refused once any stage has signed off.
func (s *Service) UpdateHours(ctx context.Context, id, actorID string, hoursWorked, overtimeHours float64) (Timesheet, error) {
	if id == "" {
		return Timesheet{}, apperr.New(apperr.Validation, "timesheet id is required")
	}
	if err := validateHours(hoursWorked, overtimeHours); err != nil {
		return Timesheet{}, err
	}

	before, err := s.Get(ctx, id)
	if err != nil {
		return Timesheet{}, err
	}
	if s.LockApprovedHours && before.Status != StatusDraft && before.Status != StatusSubmitted {
		return Timesheet{}, apperr.Newf(apperr.Precondition,
			"hours are locked once approval has started (status %s)", before.Status)
	}

	note := fmt.Sprintf("[%s] hours changed %.2f/%.2f -> %.2f/%.2f by %s",
		s.Now().Format("2006-01-02"),
		before.HoursWorked, before.OvertimeHours, hoursWorked, overtimeHours, actorID)

	ok, err := s.Store.UpdateHours(ctx, id, hoursWorked, overtimeHours, note)
	if err != nil {
		return Timesheet{}, apperr.Wrap(apperr.Internal, "update timesheet hours", err)
	}
	if !ok {
		return Timesheet{}, apperr.New(apperr.NotFound, "timesheet not found")
	}

	after, err := s.Get(ctx, id)
	if err != nil {
		return Timesheet{}, err
	}
	s.record(ctx, actorID, "timesheet.update_hours", id,
		map[string]float64{"hoursWorked": before.HoursWorked, "overtimeHours": before.OvertimeHours},
		map[string]float64{"hoursWorked": hoursWorked, "overtimeHours": overtimeHours})

	return after, nil
}

// BulkApprove approves each timesheet at the given stage independently. One
// failure never aborts the batch; every item gets its own verdict.
func (s *Service) BulkApprove(ctx context.Context, ids []string, stage Stage, approverID, notes string) ([]BulkItemResult, error) {
	if len(ids) == 0 {
		return nil, apperr.New(apperr.Validation, "at least one timesheet id is required")
	}
	if _, _, err := StageTransition(stage); err != nil {
		return nil, apperr.Wrap(apperr.Validation, "invalid approval stage", err)
	}

	results := make([]BulkItemResult, 0, len(ids))
	for _, id := range ids {
		ts, err := s.ApproveAtStage(ctx, id, stage, approverID, notes)
		if err != nil {
			results = append(results, BulkItemResult{ID: id, OK: false, Error: apperr.ReasonOf(err)})
			continue
		}
		results = append(results, BulkItemResult{ID: id, OK: true, Status: ts.Status})
	}

	return results, nil
}

// classifyMiss turns a failed conditional update into the right error: the
// row is missing, already past the required state, or simply not there yet.
func (s *Service) classifyMiss(ctx context.Context, id string, required Status) error {
	ts, err := s.Store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return apperr.New(apperr.NotFound, "timesheet not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "load timesheet", err)
	}
	if ts.Status == required {
		// The row was in the right state on re-read, so a concurrent
		// writer won the conditional update.
		return apperr.New(apperr.Conflict, "timesheet was modified concurrently")
	}
	return apperr.Newf(apperr.Precondition,
		"timesheet is %s, expected %s", ts.Status, required)
}

func (s *Service) record(ctx context.Context, actorID, action, entityID string, before, after any) {
	if s.Audit == nil {
		return
	}
	_ = s.Audit.Record(ctx, actorID, action, "timesheet", entityID,
		requestctx.GetRequestID(ctx), before, after)
}

func validateHours(hoursWorked, overtimeHours float64) error {
	if hoursWorked < 0 || hoursWorked > 24 {
		return apperr.New(apperr.Validation, "hours worked must be between 0 and 24")
	}
	if overtimeHours < 0 || overtimeHours > 12 {
		return apperr.New(apperr.Validation, "overtime hours must be between 0 and 12")
	}
	return nil
}
