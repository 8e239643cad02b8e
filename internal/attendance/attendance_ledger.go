package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	attendanceerrors "face-attendance/internal/attendance/errors"
	"face-attendance/internal/events"
	"face-attendance/internal/messaging/kafka"
	"face-attendance/internal/shared/apperror"
	"face-attendance/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

type AppendCommand struct {
	EmployeeID   uuid.UUID
	EmployeeName string
	PersonName   string
	Confidence   float64
}

//go:generate mockgen -source=attendance_ledger.go -destination=mock/attendance_ledger_mock.go -package=mock
type Ledger interface {
	// Append decides the next event for the employee's current day and
	// writes it together with its outbox row.
	Append(ctx context.Context, cmd AppendCommand) (Attendance, error)
}

type ledger struct {
	repo   Repository
	outbox kafka.OutboxRepository
	policy Policy
	now    func() time.Time
	logger *zap.Logger
}

type LedgerOption func(*ledger)

// WithClock replaces time.Now as the source of recorded_at.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *ledger) { l.now = now }
}

func WithLedgerLogger(logger *zap.Logger) LedgerOption {
	return func(l *ledger) {
		if logger != nil {
			l.logger = logger.Named("attendance.ledger")
		}
	}
}

func NewLedger(repo Repository, outboxRepo kafka.OutboxRepository, policy Policy, opts ...LedgerOption) Ledger {
	l := &ledger{
		repo:   repo,
		outbox: outboxRepo,
		policy: policy,
		now:    time.Now,
		logger: zap.L().Named("attendance.ledger"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *ledger) Append(ctx context.Context, cmd AppendCommand) (Attendance, error) {
	log := contextutil.GetLogger(ctx, l.logger)
	employeeID := cmd.EmployeeID.String()

	var written Attendance
	err := l.repo.Transaction(ctx, func(txRepo Repository, tx *gorm.DB) error {
		day := l.policy.DayOf(l.now())
		if err := txRepo.LockEmployeeDay(ctx, employeeID, day); err != nil {
			return err
		}

		// the clock is read under the lock so recorded_at follows sequence
		at := l.now()
		if d := l.policy.DayOf(at); !d.Equal(day) {
			day = d
			if err := txRepo.LockEmployeeDay(ctx, employeeID, day); err != nil {
				return err
			}
		}

		last, err := txRepo.FindLatestOnDay(ctx, employeeID, day)
		if err != nil {
			return err
		}
		next, err := NextEventType(last, l.policy.Repeat)
		if err != nil {
			return err
		}

		sequence := 1
		if last != nil {
			sequence = last.Sequence + 1
		}

		row := Attendance{
			ID:             uuid.New(),
			EmployeeID:     cmd.EmployeeID,
			AttendanceDate: day,
			Sequence:       sequence,
			EventType:      next,
			Status:         l.policy.Classify(next, at),
			Confidence:     cmd.Confidence,
			PersonName:     cmd.PersonName,
			RecordedAt:     at.UTC(),
		}
		if err := txRepo.Create(ctx, &row); err != nil {
			return err
		}

		outboxEvent, err := buildRecordedEvent(ctx, row, cmd.EmployeeName)
		if err != nil {
			return err
		}
		if err := l.outbox.WithTx(tx).Create(ctx, outboxEvent); err != nil {
			return err
		}

		written = row
		return nil
	})
	if err != nil {
		mapped := mapLedgerError(err)
		log.Error("append attendance event failed",
			zap.String("employee_id", employeeID),
			zap.String("code", apperror.ToHTTP(mapped).Code),
			zap.Error(err),
		)
		return Attendance{}, mapped
	}

	log.Info("attendance event recorded",
		zap.String("attendance_id", written.ID.String()),
		zap.String("employee_id", employeeID),
		zap.String("event_type", string(written.EventType)),
		zap.String("status", string(written.Status)),
		zap.Int("sequence", written.Sequence),
	)
	return written, nil
}

func buildRecordedEvent(ctx context.Context, row Attendance, employeeName string) (kafka.OutboxEvent, error) {
	requestID := contextutil.GetRequestID(ctx)
	payload, err := json.Marshal(events.AttendanceRecordedEvent{
		EventType:      events.AttendanceRecordedEventType,
		RequestID:      requestID,
		AttendanceID:   row.ID.String(),
		EmployeeID:     row.EmployeeID.String(),
		EmployeeName:   employeeName,
		AttendanceDate: row.AttendanceDate.Format(dateLayout),
		Sequence:       row.Sequence,
		Type:           string(row.EventType),
		Status:         string(row.Status),
		Confidence:     row.Confidence,
		RecordedAt:     row.RecordedAt,
		OccurredAt:     row.RecordedAt,
	})
	if err != nil {
		return kafka.OutboxEvent{}, err
	}

	return kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     requestID,
		AggregateType: "attendance",
		AggregateID:   row.EmployeeID.String(),
		EventType:     events.AttendanceRecordedEventType,
		Topic:         events.AttendanceRecordedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}, nil
}

// mapLedgerError keeps domain errors, turns a sequence collision into a
// concurrency conflict and reports every other fault as a persistence failure.
func mapLedgerError(err error) error {
	if errors.Is(err, attendanceerrors.ErrDayComplete) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return attendanceerrors.ErrConcurrencyConflict.WithCause(err)
	}
	return attendanceerrors.ErrPersistenceFailure.WithCause(err)
}
