package timesheet

import (
	"context"
	"time"
)

type StoreAPI interface {
	Get(ctx context.Context, id string) (Timesheet, error)
	Create(ctx context.Context, input CreateInput) (string, error)
	List(ctx context.Context, filter ListFilter) (ListResult, error)

	// SubmitIf moves id from draft to submitted; false when the
	// conditional update matched no row.
	SubmitIf(ctx context.Context, id string, at time.Time) (bool, error)

	// ApproveStage atomically checks the current status against from and,
	// on match, sets it to to while stamping the stage's approver,
	// timestamp and notes in the same statement. A false return means
	// the timesheet was not in the required state (or does not exist).
	ApproveStage(ctx context.Context, id string, stage Stage, from, to Status, approverID, notes string, at time.Time) (bool, error)

	// RejectIfActive moves any non-terminal timesheet to rejected,
	// recording the stage it was rejected at.
	RejectIfActive(ctx context.Context, id, rejectedBy, reason string, at time.Time) (bool, error)

	// UpdateHours overwrites the hour fields and appends note to the
	// timesheet's running notes.
	UpdateHours(ctx context.Context, id string, hoursWorked, overtimeHours float64, note string) (bool, error)
}
