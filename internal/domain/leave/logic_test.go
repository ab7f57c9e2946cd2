package leave

import (
	"testing"
	"time"
)

func TestCalculateDays(t *testing.T) {
	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	days, err := CalculateDays(start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 1 {
		t.Fatalf("expected 1 day, got %v", days)
	}

	end = time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)
	days, err = CalculateDays(start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 3 {
		t.Fatalf("expected 3 days, got %v", days)
	}
}

func TestCalculateDaysIgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2025, 1, 10, 23, 30, 0, 0, time.UTC)
	end := time.Date(2025, 1, 11, 0, 15, 0, 0, time.UTC)

	days, err := CalculateDays(start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 2 {
		t.Fatalf("expected 2 days, got %v", days)
	}
}

func TestCalculateDaysInvalid(t *testing.T) {
	start := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC)

	_, err := CalculateDays(start, end)
	if err == nil {
		t.Fatal("expected error for invalid range")
	}
}

func TestActualDaysTakenEarlyReturn(t *testing.T) {
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	requestedEnd := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	returned := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	days, err := ActualDaysTaken(start, returned)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 6 {
		t.Fatalf("expected 6 days taken, got %v", days)
	}
	if !IsEarlyReturn(requestedEnd, returned) {
		t.Fatal("return before the requested end should count as early")
	}
	if IsExtended(requestedEnd, returned) {
		t.Fatal("early return misreported as extended")
	}
}

func TestActualDaysTakenExtendedLeave(t *testing.T) {
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	requestedEnd := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	returned := time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC)

	days, err := ActualDaysTaken(start, returned)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 16 {
		t.Fatalf("expected 16 days taken, got %v", days)
	}
	if !IsExtended(requestedEnd, returned) {
		t.Fatal("return after the requested end should count as extended")
	}
	if IsEarlyReturn(requestedEnd, returned) {
		t.Fatal("extended leave misreported as early")
	}
}

func TestReturnOnRequestedEndDate(t *testing.T) {
	requestedEnd := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)

	if IsEarlyReturn(requestedEnd, requestedEnd) || IsExtended(requestedEnd, requestedEnd) {
		t.Fatal("returning on the requested end date is neither early nor extended")
	}
}

func TestReturnOnStartDateCountsOneDay(t *testing.T) {
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	days, err := ActualDaysTaken(start, start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 1 {
		t.Fatalf("expected 1 day taken, got %v", days)
	}
}
