package summary

import (
	"context"
	"fmt"
	"time"

	"face-attendance/internal/events"
	"face-attendance/internal/shared/apperror"
	summaryerrors "face-attendance/internal/summary/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultPageSize = 20

//go:generate mockgen -source=summary_service.go -destination=mock/summary_service_mock.go -package=mock
type Service interface {
	// Apply folds one event into its day. It reports false when the event
	// was already applied.
	Apply(ctx context.Context, event events.AttendanceRecordedEvent) (bool, error)
	List(ctx context.Context, req ListSummaryRequest) ([]SummaryResponse, int64, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("summary.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("summary.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Apply(ctx context.Context, event events.AttendanceRecordedEvent) (bool, error) {
	employeeID, err := uuid.Parse(event.EmployeeID)
	if err != nil {
		return false, summaryerrors.ErrInvalidEvent.WithCause(err)
	}
	day, err := time.Parse(dateLayout, event.AttendanceDate)
	if err != nil {
		return false, summaryerrors.ErrInvalidEvent.WithCause(err)
	}

	applied := false
	err = s.repo.Transaction(ctx, func(txRepo Repository) error {
		current, err := txRepo.FindForUpdate(ctx, event.EmployeeID, day)
		if err != nil {
			return err
		}

		next, ok, err := Fold(current, employeeID, day, event)
		if err != nil || !ok {
			return err
		}
		if err := txRepo.Upsert(ctx, next); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if !applied {
		s.logger.Debug("attendance event already applied",
			zap.String("attendance_id", event.AttendanceID),
			zap.Int("sequence", event.Sequence),
		)
	}
	return applied, nil
}

// Fold returns the summary after event, or ok=false when the event's
// sequence is not newer than what the summary already holds.
func Fold(current *DailySummary, employeeID uuid.UUID, day time.Time, event events.AttendanceRecordedEvent) (*DailySummary, bool, error) {
	next := DailySummary{EmployeeID: employeeID, AttendanceDate: day}
	if current != nil {
		if event.Sequence <= current.LastSequence {
			return nil, false, nil
		}
		next = *current
	}

	at := event.RecordedAt.UTC()
	switch event.Type {
	case "CHECK_IN":
		if next.FirstCheckIn == nil || at.Before(*next.FirstCheckIn) {
			next.FirstCheckIn = &at
			next.CheckInStatus = event.Status
		}
	case "CHECK_OUT":
		if next.LastCheckOut == nil || at.After(*next.LastCheckOut) {
			next.LastCheckOut = &at
		}
	default:
		return nil, false, summaryerrors.ErrInvalidEvent.WithCause(fmt.Errorf("unknown event type %q", event.Type))
	}

	if event.EmployeeName != "" {
		next.EmployeeName = event.EmployeeName
	}
	next.EventCount++
	next.LastSequence = event.Sequence
	return &next, true, nil
}

func (s *service) List(ctx context.Context, req ListSummaryRequest) ([]SummaryResponse, int64, error) {
	filter := ListFilter{EmployeeID: req.EmployeeID, Page: req.Page, PageSize: req.PageSize}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultPageSize
	}
	if req.Date != "" {
		d, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			return nil, 0, apperror.InvalidField("date")
		}
		filter.Date = &d
	}

	rows, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, apperror.ErrInternal.WithCause(err)
	}
	res := make([]SummaryResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, total, nil
}
