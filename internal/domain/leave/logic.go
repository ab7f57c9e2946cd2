package leave

import (
	"errors"
	"time"
)

// CalculateDays returns the inclusive day count between start and end,
// ignoring the time-of-day components.
func CalculateDays(start, end time.Time) (int, error) {
	start, end = truncateDate(start), truncateDate(end)
	if end.Before(start) {
		return 0, errors.New("end date before start date")
	}
	return int(end.Sub(start).Hours()/24) + 1, nil
}

// ActualDaysTaken is the inclusive day count actually consumed when the
// employee returns on returnDate. Returning on the start date counts as one
// day taken.
func ActualDaysTaken(start, returnDate time.Time) (int, error) {
	return CalculateDays(start, returnDate)
}

// IsEarlyReturn reports whether the employee came back before the end date
// they originally requested.
func IsEarlyReturn(requestedEnd, returnDate time.Time) bool {
	return truncateDate(returnDate).Before(truncateDate(requestedEnd))
}

// IsExtended reports whether the employee came back after the end date they
// originally requested.
func IsExtended(requestedEnd, returnDate time.Time) bool {
	return truncateDate(returnDate).After(truncateDate(requestedEnd))
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
