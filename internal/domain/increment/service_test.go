package increment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"snd/internal/apperr"
)

type fakeEmployee struct {
	BasicSalary        float64
	FoodAllowance      float64
	HousingAllowance   float64
	TransportAllowance float64
}

type fakeStore struct {
	rows      map[string]*Increment
	employees map[string]*fakeEmployee
	nextID    int
	err       error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows: map[string]*Increment{},
		employees: map[string]*fakeEmployee{
			"emp-1": {BasicSalary: 3000, FoodAllowance: 300, HousingAllowance: 800, TransportAllowance: 200},
		},
	}
}

func (f *fakeStore) add(status Status, effective time.Time) string {
	f.nextID++
	id := fmt.Sprintf("inc-%d", f.nextID)
	emp := f.employees["emp-1"]
	f.rows[id] = &Increment{
		ID:                        id,
		EmployeeID:                "emp-1",
		CurrentBaseSalary:         emp.BasicSalary,
		CurrentFoodAllowance:      emp.FoodAllowance,
		CurrentHousingAllowance:   emp.HousingAllowance,
		CurrentTransportAllowance: emp.TransportAllowance,
		NewBaseSalary:             3500,
		NewFoodAllowance:          350,
		NewHousingAllowance:       900,
		NewTransportAllowance:     250,
		Reason:                    "annual review",
		EffectiveDate:             effective,
		Status:                    status,
		RequestedBy:               "user-hr",
	}
	return id
}

func (f *fakeStore) Get(_ context.Context, id string) (Increment, error) {
	if f.err != nil {
		return Increment{}, f.err
	}
	inc, ok := f.rows[id]
	if !ok {
		return Increment{}, ErrNotFound
	}
	return *inc, nil
}

func (f *fakeStore) Create(_ context.Context, input CreateInput) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	emp, ok := f.employees[input.EmployeeID]
	if !ok {
		return "", ErrNotFound
	}
	f.nextID++
	id := fmt.Sprintf("inc-%d", f.nextID)
	f.rows[id] = &Increment{
		ID:                        id,
		EmployeeID:                input.EmployeeID,
		CurrentBaseSalary:         emp.BasicSalary,
		CurrentFoodAllowance:      emp.FoodAllowance,
		CurrentHousingAllowance:   emp.HousingAllowance,
		CurrentTransportAllowance: emp.TransportAllowance,
		NewBaseSalary:             input.NewBaseSalary,
		NewFoodAllowance:          input.NewFoodAllowance,
		NewHousingAllowance:       input.NewHousingAllowance,
		NewTransportAllowance:     input.NewTransportAllowance,
		Reason:                    input.Reason,
		EffectiveDate:             input.EffectiveDate,
		Status:                    StatusPending,
		RequestedBy:               input.RequestedBy,
	}
	return id, nil
}

func (f *fakeStore) List(_ context.Context, filter ListFilter) (ListResult, error) {
	if f.err != nil {
		return ListResult{}, f.err
	}
	result := ListResult{Increments: []Increment{}}
	for _, inc := range f.rows {
		if filter.Status != "" && inc.Status != filter.Status {
			continue
		}
		if filter.EmployeeID != "" && inc.EmployeeID != filter.EmployeeID {
			continue
		}
		result.Increments = append(result.Increments, *inc)
	}
	result.Total = len(result.Increments)
	return result, nil
}

func (f *fakeStore) ApproveIf(_ context.Context, id, approverID string, at time.Time) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	inc, ok := f.rows[id]
	if !ok || inc.Status != StatusPending {
		return false, nil
	}
	inc.Status = StatusApproved
	by, when := approverID, at
	inc.ApprovedBy, inc.ApprovedAt = &by, &when
	return true, nil
}

func (f *fakeStore) RejectIf(_ context.Context, id, rejectedBy, reason string, at time.Time) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	inc, ok := f.rows[id]
	if !ok || inc.Status != StatusPending {
		return false, nil
	}
	inc.Status = StatusRejected
	by, why, when := rejectedBy, reason, at
	inc.RejectedBy, inc.RejectionReason, inc.RejectedAt = &by, &why, &when
	return true, nil
}

func (f *fakeStore) ApplyIf(_ context.Context, id, appliedBy string, at time.Time) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	inc, ok := f.rows[id]
	if !ok || inc.Status != StatusApproved {
		return false, nil
	}
	inc.Status = StatusApplied
	by, when := appliedBy, at
	inc.AppliedBy, inc.AppliedAt = &by, &when
	emp := f.employees[inc.EmployeeID]
	emp.BasicSalary = inc.NewBaseSalary
	emp.FoodAllowance = inc.NewFoodAllowance
	emp.HousingAllowance = inc.NewHousingAllowance
	emp.TransportAllowance = inc.NewTransportAllowance
	return true, nil
}

var testToday = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func newTestService(store *fakeStore) *Service {
	svc := NewService(store, nil)
	svc.Now = func() time.Time { return testToday }
	return svc
}

func TestApplyCopiesCompensationOntoEmployee(t *testing.T) {
	store := newFakeStore()
	id := store.add(StatusApproved, testToday.AddDate(0, 0, -1))
	svc := newTestService(store)

	inc, err := svc.Apply(context.Background(), id, "user-admin")
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if inc.Status != StatusApplied {
		t.Fatalf("status = %s, want %s", inc.Status, StatusApplied)
	}
	if inc.AppliedBy == nil || *inc.AppliedBy != "user-admin" {
		t.Fatalf("applied by = %v", inc.AppliedBy)
	}

	emp := store.employees["emp-1"]
	if emp.BasicSalary != 3500 || emp.FoodAllowance != 350 || emp.HousingAllowance != 900 || emp.TransportAllowance != 250 {
		t.Fatalf("employee compensation not copied: %+v", emp)
	}
}

func TestApplyTwiceOnlyRaisesOnce(t *testing.T) {
	store := newFakeStore()
	id := store.add(StatusApproved, testToday.AddDate(0, 0, -1))
	svc := newTestService(store)

	if _, err := svc.Apply(context.Background(), id, "user-admin"); err != nil {
		t.Fatalf("first Apply: %v", err)
	}

	_, err := svc.Apply(context.Background(), id, "user-admin")
	if !apperr.IsKind(err, apperr.Precondition) {
		t.Fatalf("second Apply kind = %v, want Precondition (%v)", apperr.KindOf(err), err)
	}
	if !strings.Contains(apperr.ReasonOf(err), "not approved") {
		t.Fatalf("second Apply reason = %q", apperr.ReasonOf(err))
	}

	if salary := store.employees["emp-1"].BasicSalary; salary != 3500 {
		t.Fatalf("salary = %v after double apply, want 3500", salary)
	}
}

func TestApplyBeforeEffectiveDateFails(t *testing.T) {
	store := newFakeStore()
	id := store.add(StatusApproved, testToday.AddDate(0, 0, 7))
	svc := newTestService(store)

	_, err := svc.Apply(context.Background(), id, "user-admin")
	if !apperr.IsKind(err, apperr.Precondition) {
		t.Fatalf("error kind = %v, want Precondition", apperr.KindOf(err))
	}
	if got := apperr.ReasonOf(err); got != "cannot apply before effective date" {
		t.Fatalf("reason = %q", got)
	}
	if salary := store.employees["emp-1"].BasicSalary; salary != 3000 {
		t.Fatalf("salary mutated to %v on failed apply", salary)
	}
}

func TestApplyOnEffectiveDateSucceeds(t *testing.T) {
	store := newFakeStore()
	id := store.add(StatusApproved, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	svc := newTestService(store)

	if _, err := svc.Apply(context.Background(), id, "user-admin"); err != nil {
		t.Fatalf("Apply on the effective date should succeed: %v", err)
	}
}

func TestApplyRequiresApproval(t *testing.T) {
	store := newFakeStore()
	pending := store.add(StatusPending, testToday.AddDate(0, 0, -1))
	rejected := store.add(StatusRejected, testToday.AddDate(0, 0, -1))
	svc := newTestService(store)

	for _, id := range []string{pending, rejected} {
		_, err := svc.Apply(context.Background(), id, "user-admin")
		if !apperr.IsKind(err, apperr.Precondition) {
			t.Fatalf("apply %s: kind = %v, want Precondition", id, apperr.KindOf(err))
		}
	}
}

func TestApproveRetroactiveEffectiveDate(t *testing.T) {
	store := newFakeStore()
	id := store.add(StatusPending, testToday.AddDate(0, -2, 0))
	svc := newTestService(store)

	inc, err := svc.Approve(context.Background(), id, "user-manager")
	if err != nil {
		t.Fatalf("Approve with a past effective date should succeed: %v", err)
	}
	if inc.Status != StatusApproved {
		t.Fatalf("status = %s, want %s", inc.Status, StatusApproved)
	}
	if inc.ApprovedBy == nil || *inc.ApprovedBy != "user-manager" {
		t.Fatalf("approved by = %v", inc.ApprovedBy)
	}
}

func TestApproveNonPendingFails(t *testing.T) {
	store := newFakeStore()
	approved := store.add(StatusApproved, testToday)
	applied := store.add(StatusApplied, testToday)
	svc := newTestService(store)

	for _, id := range []string{approved, applied} {
		_, err := svc.Approve(context.Background(), id, "user-manager")
		if !apperr.IsKind(err, apperr.Precondition) {
			t.Fatalf("approve %s: kind = %v, want Precondition", id, apperr.KindOf(err))
		}
	}
}

func TestRejectPendingOnly(t *testing.T) {
	store := newFakeStore()
	pending := store.add(StatusPending, testToday)
	approved := store.add(StatusApproved, testToday)
	svc := newTestService(store)

	inc, err := svc.Reject(context.Background(), pending, "user-manager", "budget freeze")
	if err != nil {
		t.Fatalf("Reject returned error: %v", err)
	}
	if inc.Status != StatusRejected || inc.RejectionReason == nil {
		t.Fatalf("rejection not recorded: %+v", inc)
	}

	if _, err := svc.Reject(context.Background(), approved, "user-manager", "too late"); !apperr.IsKind(err, apperr.Precondition) {
		t.Fatalf("reject approved: kind = %v, want Precondition", apperr.KindOf(err))
	}
}

func TestCreateSnapshotsCurrentCompensation(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	inc, err := svc.Create(context.Background(), CreateInput{
		EmployeeID:            "emp-1",
		NewBaseSalary:         4000,
		NewFoodAllowance:      400,
		NewHousingAllowance:   1000,
		NewTransportAllowance: 300,
		Reason:                "promotion",
		EffectiveDate:         testToday.AddDate(0, 1, 0),
		RequestedBy:           "user-hr",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if inc.Status != StatusPending {
		t.Fatalf("status = %s, want %s", inc.Status, StatusPending)
	}
	if inc.CurrentBaseSalary != 3000 || inc.CurrentHousingAllowance != 800 {
		t.Fatalf("current compensation not snapshotted: %+v", inc)
	}
	if inc.TotalNew() != 5700 {
		t.Fatalf("TotalNew = %v, want 5700", inc.TotalNew())
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newFakeStore())

	cases := []struct {
		name  string
		input CreateInput
	}{
		{"missing employee", CreateInput{NewBaseSalary: 4000, Reason: "x", EffectiveDate: testToday}},
		{"missing effective date", CreateInput{EmployeeID: "emp-1", NewBaseSalary: 4000, Reason: "x"}},
		{"zero base salary", CreateInput{EmployeeID: "emp-1", Reason: "x", EffectiveDate: testToday}},
		{"negative allowance", CreateInput{EmployeeID: "emp-1", NewBaseSalary: 4000, NewFoodAllowance: -1, Reason: "x", EffectiveDate: testToday}},
		{"missing reason", CreateInput{EmployeeID: "emp-1", NewBaseSalary: 4000, EffectiveDate: testToday}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.input); !apperr.IsKind(err, apperr.Validation) {
				t.Fatalf("kind = %v, want Validation", apperr.KindOf(err))
			}
		})
	}
}

func TestCreateUnknownEmployee(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.Create(context.Background(), CreateInput{
		EmployeeID: "emp-404", NewBaseSalary: 4000, Reason: "x", EffectiveDate: testToday,
	})
	if !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("kind = %v, want NotFound", apperr.KindOf(err))
	}
}

func TestStorageFailureIsInternal(t *testing.T) {
	store := newFakeStore()
	id := store.add(StatusApproved, testToday.AddDate(0, 0, -1))
	store.err = errors.New("connection reset")
	svc := newTestService(store)

	_, err := svc.Apply(context.Background(), id, "user-admin")
	if !apperr.IsKind(err, apperr.Internal) {
		t.Fatalf("kind = %v, want Internal", apperr.KindOf(err))
	}
}
