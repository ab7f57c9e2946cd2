package increment

import (
	"context"
	"time"
)

type StoreAPI interface {
	Get(ctx context.Context, id string) (Increment, error)

	// Create snapshots the employee's current compensation into the new row.
	Create(ctx context.Context, input CreateInput) (string, error)

	List(ctx context.Context, filter ListFilter) (ListResult, error)

	// ApproveIf moves id from pending to approved; false when the row was
	// not pending.
	ApproveIf(ctx context.Context, id, approverID string, at time.Time) (bool, error)

	// RejectIf moves id from pending to rejected.
	RejectIf(ctx context.Context, id, rejectedBy, reason string, at time.Time) (bool, error)

	// ApplyIf flips id from approved to applied and copies the new
	// compensation onto the employee, both in one transaction. False means
	// the row was not approved; the employee is untouched in that case.
	ApplyIf(ctx context.Context, id, appliedBy string, at time.Time) (bool, error)
}
