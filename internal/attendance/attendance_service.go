package attendance

import (
	"context"
	"errors"
	"net/http"
	"time"

	attendanceerrors "face-attendance/internal/attendance/errors"
	"face-attendance/internal/audit"
	"face-attendance/internal/employee"
	employeeerrors "face-attendance/internal/employee/errors"
	"face-attendance/internal/intake"
	"face-attendance/internal/recognition"
	"face-attendance/internal/shared/apperror"
	"face-attendance/internal/shared/contextutil"

	"go.uber.org/zap"
)

const (
	defaultPageSize     = 10
	defaultHistoryLimit = 20
	MaxExportRows       = 10000
)

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	// Record runs one captured image through recognition, identity
	// resolution and the ledger. A non-nil error is always an *AppError.
	Record(ctx context.Context, img intake.CapturedImage) (RecordResult, error)
	GetAll(ctx context.Context, req ListAttendanceRequest) ([]AttendanceResponse, int64, error)
	GetHistory(ctx context.Context, limit int) ([]AttendanceResponse, error)
	// Export returns every event matching req, ignoring paging. It refuses
	// ranges with more than MaxExportRows events.
	Export(ctx context.Context, req ListAttendanceRequest) ([]AttendanceResponse, error)
}

type ServiceDeps struct {
	Recognizer recognition.Recognizer
	Resolver   employee.Resolver
	Locker     Locker
	Ledger     Ledger
	Repo       Repository
	Policy     Policy
	Audit      audit.Logger
	// Clock picks the day of the lease key; defaults to time.Now.
	Clock func() time.Time
}

type service struct {
	recognizer recognition.Recognizer
	resolver   employee.Resolver
	locker     Locker
	ledger     Ledger
	repo       Repository
	policy     Policy
	audit      audit.Logger
	now        func() time.Time
	logger     *zap.Logger
}

func NewService(deps ServiceDeps, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	s := &service{
		recognizer: deps.Recognizer,
		resolver:   deps.Resolver,
		locker:     deps.Locker,
		ledger:     deps.Ledger,
		repo:       deps.Repo,
		policy:     deps.Policy,
		audit:      deps.Audit,
		now:        deps.Clock,
		logger:     l,
	}
	if s.audit == nil {
		s.audit = audit.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.locker == nil {
		s.locker = NewLocalLocker(3 * time.Second)
	}
	return s
}

func (s *service) Record(ctx context.Context, img intake.CapturedImage) (RecordResult, error) {
	start := time.Now()
	log := contextutil.GetLogger(ctx, s.logger)
	defer img.Release()

	log.Info("attendance record requested", zap.String("image", img.Describe()))

	out := s.recognizer.Recognize(ctx, recognition.Request{
		Data:     img.Data,
		MIMEType: img.MIMEType,
		Filename: img.Filename,
	})
	result := RecordResult{
		PersonName: out.PersonName,
		Confidence: out.Confidence,
		Convention: out.Convention,
	}

	switch out.Kind {
	case recognition.KindServiceUnavailable:
		return s.fail(result, start, attendanceerrors.ErrRecognitionUnavailable.WithCause(out.Cause))
	case recognition.KindNotRecognized:
		return s.fail(result, start, attendanceerrors.ErrNotRecognized.WithDetails(map[string]any{
			"confidence": out.Confidence,
		}))
	}

	res, err := s.resolver.Resolve(ctx, out.PersonName)
	if err != nil {
		if errors.Is(err, employeeerrors.ErrAmbiguousIdentity) {
			s.audit.Log(ctx, audit.Entry{
				Action:  audit.ActionAmbiguousIdentity,
				Message: "recognized name matches more than one employee",
				Meta: map[string]any{
					"person_name": out.PersonName,
					"confidence":  out.Confidence,
				},
			})
		}
		return s.fail(result, start, err)
	}
	if !res.Known {
		result.Outcome = OutcomeUnknownIdentity
		observeRecord(result.Outcome, start)
		log.Warn("recognized person has no employee record", zap.String("person_name", out.PersonName))
		return result, nil
	}

	emp := res.Employee
	result.Employee = &EmployeeSummary{
		ID:           emp.ID.String(),
		FullName:     emp.FullName,
		EmployeeCode: emp.EmployeeCode,
	}

	release, err := s.acquire(ctx, log, emp.ID.String())
	if err != nil {
		return s.fail(result, start, err)
	}
	defer release()

	row, err := s.ledger.Append(ctx, AppendCommand{
		EmployeeID:   emp.ID,
		EmployeeName: emp.FullName,
		PersonName:   out.PersonName,
		Confidence:   out.Confidence,
	})
	if err != nil {
		return s.fail(result, start, err)
	}

	row.Employee = &EmployeeRef{ID: emp.ID, FullName: emp.FullName}
	event := mapToResponse(row)
	result.Event = &event
	result.Outcome = OutcomeRecorded
	observeRecord(result.Outcome, start)
	return result, nil
}

// acquire takes the employee-day lease. A broken lock backend is not fatal:
// the ledger transaction still serializes writers on its own.
func (s *service) acquire(ctx context.Context, log *zap.Logger, employeeID string) (func(), error) {
	key := LockKey(employeeID, s.policy.DayOf(s.now()))
	waitStart := time.Now()
	release, err := s.locker.Acquire(ctx, key)
	leaseWait.Observe(time.Since(waitStart).Seconds())

	switch {
	case err == nil:
		return release, nil
	case errors.Is(err, ErrLockBusy), ctx.Err() != nil:
		log.Warn("employee-day lease not acquired", zap.String("key", key), zap.Error(err))
		return nil, attendanceerrors.ErrConcurrencyConflict.WithCause(err)
	default:
		log.Warn("lease backend unavailable, relying on database lock", zap.String("key", key), zap.Error(err))
		return func() {}, nil
	}
}

func (s *service) fail(result RecordResult, start time.Time, err error) (RecordResult, error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = attendanceerrors.ErrPersistenceFailure.WithCause(err)
		err = appErr
	}
	result.Outcome = Outcome(appErr.Code)
	observeRecord(result.Outcome, start)
	return result, err
}

func buildFilter(req ListAttendanceRequest) (ListFilter, error) {
	filter := ListFilter{
		EmployeeID: req.EmployeeID,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultPageSize
	}
	if req.StartDate != "" {
		d, err := time.Parse(dateLayout, req.StartDate)
		if err != nil {
			return filter, apperror.InvalidField("start_date")
		}
		filter.StartDate = &d
	}
	if req.EndDate != "" {
		d, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			return filter, apperror.InvalidField("end_date")
		}
		filter.EndDate = &d
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return filter, apperror.New(apperror.CodeInvalidInput, "end_date must not be before start_date", http.StatusBadRequest)
	}
	return filter, nil
}

func toResponses(rows []Attendance) []AttendanceResponse {
	res := make([]AttendanceResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res
}

func (s *service) GetAll(ctx context.Context, req ListAttendanceRequest) ([]AttendanceResponse, int64, error) {
	filter, err := buildFilter(req)
	if err != nil {
		return nil, 0, err
	}

	rows, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, apperror.ErrInternal.WithCause(err)
	}
	return toResponses(rows), total, nil
}

func (s *service) Export(ctx context.Context, req ListAttendanceRequest) ([]AttendanceResponse, error) {
	filter, err := buildFilter(req)
	if err != nil {
		return nil, err
	}
	filter.Page, filter.PageSize = 1, MaxExportRows

	rows, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, apperror.ErrInternal.WithCause(err)
	}
	if total > MaxExportRows {
		return nil, attendanceerrors.ErrExportTooLarge.WithDetails(map[string]any{"total": total, "max_rows": MaxExportRows})
	}
	return toResponses(rows), nil
}

func (s *service) GetHistory(ctx context.Context, limit int) ([]AttendanceResponse, error) {
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	rows, err := s.repo.FindRecent(ctx, limit)
	if err != nil {
		return nil, apperror.ErrInternal.WithCause(err)
	}
	res := make([]AttendanceResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, nil
}
