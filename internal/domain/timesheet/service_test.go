package timesheet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"snd/internal/apperr"
)

type fakeStore struct {
	rows   map[string]*Timesheet
	nextID int
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string]*Timesheet{}}
}

func (f *fakeStore) add(status Status) string {
	f.nextID++
	id := fmt.Sprintf("ts-%d", f.nextID)
	f.rows[id] = &Timesheet{
		ID:          id,
		EmployeeID:  "emp-1",
		Date:        time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		HoursWorked: 8,
		Status:      status,
	}
	return id
}

func (f *fakeStore) Get(_ context.Context, id string) (Timesheet, error) {
	if f.err != nil {
		return Timesheet{}, f.err
	}
	ts, ok := f.rows[id]
	if !ok {
		return Timesheet{}, ErrNotFound
	}
	return *ts, nil
}

func (f *fakeStore) Create(_ context.Context, input CreateInput) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.nextID++
	id := fmt.Sprintf("ts-%d", f.nextID)
	f.rows[id] = &Timesheet{
		ID:            id,
		EmployeeID:    input.EmployeeID,
		AssignmentID:  input.AssignmentID,
		Date:          input.Date,
		HoursWorked:   input.HoursWorked,
		OvertimeHours: input.OvertimeHours,
		Status:        StatusDraft,
		Notes:         input.Notes,
	}
	return id, nil
}

func (f *fakeStore) List(_ context.Context, filter ListFilter) (ListResult, error) {
	if f.err != nil {
		return ListResult{}, f.err
	}
	result := ListResult{Timesheets: []Timesheet{}}
	for _, ts := range f.rows {
		if filter.Status != "" && ts.Status != filter.Status {
			continue
		}
		if filter.EmployeeID != "" && ts.EmployeeID != filter.EmployeeID {
			continue
		}
		result.Timesheets = append(result.Timesheets, *ts)
	}
	result.Total = len(result.Timesheets)
	return result, nil
}

func (f *fakeStore) SubmitIf(_ context.Context, id string, at time.Time) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	ts, ok := f.rows[id]
	if !ok || ts.Status != StatusDraft {
		return false, nil
	}
	ts.Status = StatusSubmitted
	ts.SubmittedAt = &at
	return true, nil
}

func (f *fakeStore) ApproveStage(_ context.Context, id string, stage Stage, from, to Status, approverID, notes string, at time.Time) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	ts, ok := f.rows[id]
	if !ok || ts.Status != from {
		return false, nil
	}
	ts.Status = to
	by, n, when := approverID, notes, at
	switch stage {
	case StageForeman:
		ts.ForemanApprovalBy, ts.ForemanApprovalNotes, ts.ForemanApprovalAt = &by, &n, &when
	case StageIncharge:
		ts.InchargeApprovalBy, ts.InchargeApprovalNotes, ts.InchargeApprovalAt = &by, &n, &when
	case StageChecking:
		ts.CheckingApprovalBy, ts.CheckingApprovalNotes, ts.CheckingApprovalAt = &by, &n, &when
	case StageManager:
		ts.ManagerApprovalBy, ts.ManagerApprovalNotes, ts.ManagerApprovalAt = &by, &n, &when
	}
	return true, nil
}

func (f *fakeStore) RejectIfActive(_ context.Context, id, rejectedBy, reason string, at time.Time) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	ts, ok := f.rows[id]
	if !ok || ts.Status == StatusManagerApproved || ts.Status == StatusRejected {
		return false, nil
	}
	stage := string(ts.Status)
	ts.RejectionStage = &stage
	ts.Status = StatusRejected
	by, why, when := rejectedBy, reason, at
	ts.RejectedBy, ts.RejectionReason, ts.RejectedAt = &by, &why, &when
	return true, nil
}

func (f *fakeStore) UpdateHours(_ context.Context, id string, hoursWorked, overtimeHours float64, note string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	ts, ok := f.rows[id]
	if !ok {
		return false, nil
	}
	ts.HoursWorked = hoursWorked
	ts.OvertimeHours = overtimeHours
	if ts.Notes == "" {
		ts.Notes = note
	} else {
		ts.Notes += "\n" + note
	}
	return true, nil
}

func newTestService(store *fakeStore) *Service {
	svc := NewService(store, nil, false)
	base := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	tick := 0
	svc.Now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return svc
}

func TestApproveAtStageHappyPath(t *testing.T) {
	store := newFakeStore()
	id := store.add(StatusSubmitted)
	svc := newTestService(store)

	ts, err := svc.ApproveAtStage(context.Background(), id, StageForeman, "user-foreman", "looks good")
	if err != nil {
		t.Fatalf("ApproveAtStage returned error: %v", err)
	}
	if ts.Status != StatusForemanApproved {
		t.Fatalf("status = %s, want %s", ts.Status, StatusForemanApproved)
	}
	if ts.ForemanApprovalBy == nil || *ts.ForemanApprovalBy != "user-foreman" {
		t.Fatalf("foreman approval by not stamped: %v", ts.ForemanApprovalBy)
	}
	if ts.ForemanApprovalAt == nil {
		t.Fatal("foreman approval timestamp not stamped")
	}
	if ts.ForemanApprovalNotes == nil || *ts.ForemanApprovalNotes != "looks good" {
		t.Fatalf("foreman approval notes not stamped: %v", ts.ForemanApprovalNotes)
	}
}

func TestApproveOutOfOrderFailsWithoutMutating(t *testing.T) {
	store := newFakeStore()
	id := store.add(StatusSubmitted)
	svc := newTestService(store)

	_, err := svc.ApproveAtStage(context.Background(), id, StageManager, "user-manager", "")
	if !apperr.IsKind(err, apperr.Precondition) {
		t.Fatalf("error kind = %v, want Precondition (%v)", apperr.KindOf(err), err)
	}
	if !strings.Contains(apperr.ReasonOf(err), string(StatusSubmitted)) {
		t.Fatalf("reason %q should name the current status", apperr.ReasonOf(err))
	}

	ts, _ := store.Get(context.Background(), id)
	if ts.Status != StatusSubmitted {
		t.Fatalf("status mutated to %s on failed approval", ts.Status)
	}
	if ts.ManagerApprovalBy != nil || ts.ManagerApprovalAt != nil {
		t.Fatal("manager stamp set on failed approval")
	}
}

func TestFullPipelineStampsAreMonotonic(t *testing.T) {
	store := newFakeStore()
	id := store.add(StatusSubmitted)
	svc := newTestService(store)

	for _, stage := range Stages {
		if _, err := svc.ApproveAtStage(context.Background(), id, stage, "user-"+string(stage), ""); err != nil {
			t.Fatalf("approve at %s: %v", stage, err)
		}
	}

	ts, _ := store.Get(context.Background(), id)
	if ts.Status != StatusManagerApproved {
		t.Fatalf("status = %s after full pipeline, want %s", ts.Status, StatusManagerApproved)
	}
	stamps := []*time.Time{
		ts.ForemanApprovalAt, ts.InchargeApprovalAt, ts.CheckingApprovalAt, ts.ManagerApprovalAt,
	}
	for i, at := range stamps {
		if at == nil {
			t.Fatalf("stage %s missing approval timestamp", Stages[i])
		}
		if i > 0 && !stamps[i-1].Before(*at) {
			t.Fatalf("stage %s approved at %v, not after %s at %v",
				Stages[i], at, Stages[i-1], stamps[i-1])
		}
	}
}

func TestApproveMissingTimesheet(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.ApproveAtStage(context.Background(), "nope", StageForeman, "user-foreman", "")
	if !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("error kind = %v, want NotFound", apperr.KindOf(err))
	}
}

func TestApproveStorageFailure(t *testing.T) {
	store := newFakeStore()
	id := store.add(StatusSubmitted)
	store.err = errors.New("connection reset")
	svc := newTestService(store)

	_, err := svc.ApproveAtStage(context.Background(), id, StageForeman, "user-foreman", "")
	if !apperr.IsKind(err, apperr.Internal) {
		t.Fatalf("error kind = %v, want Internal", apperr.KindOf(err))
	}
}

func TestRejectRecordsStage(t *testing.T) {
	store := newFakeStore()
	id := store.add(StatusInchargeApproved)
	svc := newTestService(store)

	ts, err := svc.Reject(context.Background(), id, "user-checking", "hours do not match the gate log")
	if err != nil {
		t.Fatalf("Reject returned error: %v", err)
	}
	if ts.Status != StatusRejected {
		t.Fatalf("status = %s, want %s", ts.Status, StatusRejected)
	}
	if ts.RejectionStage == nil || *ts.RejectionStage != string(StatusInchargeApproved) {
		t.Fatalf("rejection stage = %v, want %s", ts.RejectionStage, StatusInchargeApproved)
	}
	if ts.RejectedBy == nil || *ts.RejectedBy != "user-checking" {
		t.Fatalf("rejected by = %v", ts.RejectedBy)
	}
	if ts.RejectionReason == nil || *ts.RejectionReason == "" {
		t.Fatal("rejection reason not recorded")
	}
}

func TestRejectedIsTerminal(t *testing.T) {
	store := newFakeStore()
	id := store.add(StatusRejected)
	svc := newTestService(store)

	if _, err := svc.Reject(context.Background(), id, "user-manager", "again"); !apperr.IsKind(err, apperr.Precondition) {
		t.Fatalf("re-reject error kind = %v, want Precondition", apperr.KindOf(err))
	}
	if _, err := svc.ApproveAtStage(context.Background(), id, StageForeman, "user-foreman", ""); !apperr.IsKind(err, apperr.Precondition) {
		t.Fatalf("approve-after-reject error kind = %v, want Precondition", apperr.KindOf(err))
	}
}

func TestRejectFullyApprovedFails(t *testing.T) {
	store := newFakeStore()
	id := store.add(StatusManagerApproved)
	svc := newTestService(store)

	_, err := svc.Reject(context.Background(), id, "user-manager", "changed my mind")
	if !apperr.IsKind(err, apperr.Precondition) {
		t.Fatalf("error kind = %v, want Precondition", apperr.KindOf(err))
	}
}

func TestRejectRequiresReason(t *testing.T) {
	store := newFakeStore()
	id := store.add(StatusSubmitted)
	svc := newTestService(store)

	_, err := svc.Reject(context.Background(), id, "user-foreman", "")
	if !apperr.IsKind(err, apperr.Validation) {
		t.Fatalf("error kind = %v, want Validation", apperr.KindOf(err))
	}
}

func TestSubmitDraftOnly(t *testing.T) {
	store := newFakeStore()
	draft := store.add(StatusDraft)
	submitted := store.add(StatusSubmitted)
	svc := newTestService(store)

	ts, err := svc.Submit(context.Background(), draft, "emp-1")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if ts.Status != StatusSubmitted {
		t.Fatalf("status = %s, want %s", ts.Status, StatusSubmitted)
	}
	if ts.SubmittedAt == nil || ts.SubmittedAt.IsZero() {
		t.Fatal("SubmittedAt was not stamped on submit")
	}

	if _, err := svc.Submit(context.Background(), submitted, "emp-1"); !apperr.IsKind(err, apperr.Precondition) {
		t.Fatalf("re-submit error kind = %v, want Precondition", apperr.KindOf(err))
	}
}

func TestUpdateHoursValidation(t *testing.T) {
	store := newFakeStore()
	id := store.add(StatusDraft)
	svc := newTestService(store)

	cases := []struct {
		name     string
		hours    float64
		overtime float64
	}{
		{"negative hours", -1, 0},
		{"too many hours", 25, 0},
		{"negative overtime", 8, -0.5},
		{"too much overtime", 8, 13},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UpdateHours(context.Background(), id, "emp-1", tc.hours, tc.overtime)
			if !apperr.IsKind(err, apperr.Validation) {
				t.Fatalf("error kind = %v, want Validation", apperr.KindOf(err))
			}
		})
	}

	ts, err := svc.UpdateHours(context.Background(), id, "emp-1", 9.5, 1.5)
	if err != nil {
		t.Fatalf("UpdateHours returned error: %v", err)
	}
	if ts.HoursWorked != 9.5 || ts.OvertimeHours != 1.5 {
		t.Fatalf("hours = %v/%v, want 9.5/1.5", ts.HoursWorked, ts.OvertimeHours)
	}
	if !strings.Contains(ts.Notes, "8.00/0.00 -> 9.50/1.50") {
		t.Fatalf("change note not appended, notes = %q", ts.Notes)
	}
}

func TestUpdateHoursLockPolicy(t *testing.T) {
	store := newFakeStore()
	id := store.add(StatusForemanApproved)

	svc := newTestService(store)
	if _, err := svc.UpdateHours(context.Background(), id, "emp-1", 7, 0); err != nil {
		t.Fatalf("edit with lock disabled should succeed: %v", err)
	}

	svc.LockApprovedHours = true
	if _, err := svc.UpdateHours(context.Background(), id, "emp-1", 6, 0); !apperr.IsKind(err, apperr.Precondition) {
		t.Fatalf("edit with lock enabled: kind = %v, want Precondition", apperr.KindOf(err))
	}
}

func TestUpdateHoursTerminalStates(t *testing.T) {
	store := newFakeStore()
	approved := store.add(StatusManagerApproved)
	rejected := store.add(StatusRejected)
	svc := newTestService(store)

	// With the lock disabled (the default) corrections land in any status,
	// terminal ones included.
	ts, err := svc.UpdateHours(context.Background(), approved, "emp-1", 7.5, 0)
	if err != nil {
		t.Fatalf("edit on manager_approved with lock disabled: %v", err)
	}
	if ts.HoursWorked != 7.5 {
		t.Fatalf("hours = %v, want 7.5", ts.HoursWorked)
	}
	if _, err := svc.UpdateHours(context.Background(), rejected, "emp-1", 6, 0); err != nil {
		t.Fatalf("edit on rejected with lock disabled: %v", err)
	}

	svc.LockApprovedHours = true
	if _, err := svc.UpdateHours(context.Background(), approved, "emp-1", 8, 0); !apperr.IsKind(err, apperr.Precondition) {
		t.Fatalf("locked edit on manager_approved: kind = %v, want Precondition", apperr.KindOf(err))
	}
	if _, err := svc.UpdateHours(context.Background(), rejected, "emp-1", 8, 0); !apperr.IsKind(err, apperr.Precondition) {
		t.Fatalf("locked edit on rejected: kind = %v, want Precondition", apperr.KindOf(err))
	}
}

func TestBulkApproveIsolatesFailures(t *testing.T) {
	store := newFakeStore()
	ok1 := store.add(StatusSubmitted)
	wrong := store.add(StatusCheckingApproved)
	ok2 := store.add(StatusSubmitted)
	svc := newTestService(store)

	results, err := svc.BulkApprove(context.Background(), []string{ok1, wrong, "missing", ok2}, StageForeman, "user-foreman", "")
	if err != nil {
		t.Fatalf("BulkApprove returned error: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}

	if !results[0].OK || results[0].Status != StatusForemanApproved {
		t.Fatalf("first item: %+v", results[0])
	}
	if results[1].OK || results[1].Error == "" {
		t.Fatalf("wrong-state item should fail with a reason: %+v", results[1])
	}
	if results[2].OK {
		t.Fatalf("missing item should fail: %+v", results[2])
	}
	if !results[3].OK {
		t.Fatalf("last item should still be approved after earlier failures: %+v", results[3])
	}

	ts, _ := store.Get(context.Background(), ok2)
	if ts.Status != StatusForemanApproved {
		t.Fatalf("last item status = %s, want %s", ts.Status, StatusForemanApproved)
	}
}

func TestCreateValidatesInput(t *testing.T) {
	svc := newTestService(newFakeStore())

	if _, err := svc.Create(context.Background(), CreateInput{Date: time.Now(), HoursWorked: 8}); !apperr.IsKind(err, apperr.Validation) {
		t.Fatalf("missing employee: kind = %v, want Validation", apperr.KindOf(err))
	}
	if _, err := svc.Create(context.Background(), CreateInput{EmployeeID: "emp-1", HoursWorked: 8}); !apperr.IsKind(err, apperr.Validation) {
		t.Fatalf("missing date: kind = %v, want Validation", apperr.KindOf(err))
	}
	if _, err := svc.Create(context.Background(), CreateInput{EmployeeID: "emp-1", Date: time.Now(), HoursWorked: 30}); !apperr.IsKind(err, apperr.Validation) {
		t.Fatalf("bad hours: kind = %v, want Validation", apperr.KindOf(err))
	}

	ts, err := svc.Create(context.Background(), CreateInput{EmployeeID: "emp-1", Date: time.Now(), HoursWorked: 8})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if ts.Status != StatusDraft {
		t.Fatalf("new timesheet status = %s, want %s", ts.Status, StatusDraft)
	}
}
