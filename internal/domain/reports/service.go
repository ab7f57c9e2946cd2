package reports

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jung-kurt/gofpdf"

	"snd/internal/apperr"
	"snd/internal/domain/leave"
	"snd/internal/platform/db"
)

type Service struct {
	DB  db.Querier
	Dir string
}

func NewService(q db.Querier, dir string) *Service {
	if dir == "" {
		dir = "storage/reports"
	}
	return &Service{DB: q, Dir: dir}
}

// LeaveReportPDF renders a single leave record, requested versus actual, and
// returns the path of the generated file.
func (s *Service) LeaveReportPDF(ctx context.Context, leaveID string) (string, error) {
	if leaveID == "" {
		return "", apperr.New(apperr.Validation, "leave id is required")
	}

	var (
		firstName, lastName, fileNumber, leaveType string
		status                                     string
		startDate, endDate, requestedEnd           time.Time
		days, requestedDays                        int
		returnDate                                 *time.Time
		returnedBy, returnReason                   *string
	)
	err := s.DB.QueryRow(ctx, `
		SELECT e.first_name, e.last_name, e.file_number, l.leave_type, l.status,
		       l.start_date, l.end_date, l.requested_end_date,
		       l.days, l.requested_days,
		       l.return_date, l.returned_by, l.return_reason
		FROM employee_leaves l
		JOIN employees e ON e.id = l.employee_id
		WHERE l.id = $1`, leaveID).Scan(
		&firstName, &lastName, &fileNumber, &leaveType, &status,
		&startDate, &endDate, &requestedEnd,
		&days, &requestedDays,
		&returnDate, &returnedBy, &returnReason,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperr.New(apperr.NotFound, "leave not found")
	}
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "load leave report data", err)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", apperr.Wrap(apperr.Internal, "create reports directory", err)
	}
	filePath := filepath.Join(s.Dir, "leave-"+leaveID+".pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Leave Report")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s %s (%s)", firstName, lastName, fileNumber))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Leave type: %s", leaveType))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", status))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Requested: %s to %s (%d days)",
		startDate.Format("2006-01-02"), requestedEnd.Format("2006-01-02"), requestedDays))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Actual: %s to %s (%d days)",
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02"), days))

	if returnDate != nil {
		pdf.Ln(10)
		switch {
		case leave.IsEarlyReturn(requestedEnd, *returnDate):
			pdf.Cell(0, 8, fmt.Sprintf("Returned early on %s", returnDate.Format("2006-01-02")))
		case leave.IsExtended(requestedEnd, *returnDate):
			pdf.Cell(0, 8, fmt.Sprintf("Returned late on %s", returnDate.Format("2006-01-02")))
		default:
			pdf.Cell(0, 8, fmt.Sprintf("Returned as planned on %s", returnDate.Format("2006-01-02")))
		}
		if returnedBy != nil {
			pdf.Ln(7)
			pdf.Cell(0, 8, fmt.Sprintf("Processed by: %s", *returnedBy))
		}
		if returnReason != nil && *returnReason != "" {
			pdf.Ln(7)
			pdf.Cell(0, 8, fmt.Sprintf("Reason: %s", *returnReason))
		}
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", apperr.Wrap(apperr.Internal, "write leave report", err)
	}

	return filePath, nil
}
