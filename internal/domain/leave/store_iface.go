package leave

import (
	"context"
	"time"
)

type StoreAPI interface {
	Get(ctx context.Context, id string) (Leave, error)
	Create(ctx context.Context, input CreateInput, days int) (string, error)
	List(ctx context.Context, filter ListFilter) (ListResult, error)

	// ApproveIf moves id from pending to approved.
	ApproveIf(ctx context.Context, id, approverID string, at time.Time) (bool, error)

	// RejectIf moves id from pending to rejected.
	RejectIf(ctx context.Context, id, rejectedBy, reason string, at time.Time) (bool, error)

	// ReturnIf closes an approved leave: it overwrites end_date and days
	// with the actual values, records who processed the return and why,
	// and sets the status to returned, all in one conditional update. The
	// requested_end_date and requested_days columns are left untouched.
	ReturnIf(ctx context.Context, input ReturnInput, actualDays int) (bool, error)
}
