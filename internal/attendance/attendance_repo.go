package attendance

import (
	"context"
	"errors"
	"time"

	"face-attendance/internal/shared/scope"

	"gorm.io/gorm"
)

type ListFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	EmployeeID string
	Page       int
	PageSize   int
}

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// Transaction runs fn in one database transaction. fn gets a repository
	// bound to it plus the raw handle for other tx-aware repositories.
	Transaction(ctx context.Context, fn func(txRepo Repository, tx *gorm.DB) error) error
	LockEmployeeDay(ctx context.Context, employeeID string, day time.Time) error
	FindLatestOnDay(ctx context.Context, employeeID string, day time.Time) (*Attendance, error)
	Create(ctx context.Context, a *Attendance) error
	FindAll(ctx context.Context, filter ListFilter) ([]Attendance, int64, error)
	FindRecent(ctx context.Context, limit int) ([]Attendance, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Transaction(ctx context.Context, fn func(txRepo Repository, tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx), tx)
	})
}

// LockEmployeeDay takes a transaction-scoped advisory lock; it is released
// on commit or rollback.
func (r *repository) LockEmployeeDay(ctx context.Context, employeeID string, day time.Time) error {
	return r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(?))", employeeID+":"+day.Format(dateLayout)).
		Error
}

// FindLatestOnDay returns nil without error when the day has no events.
func (r *repository) FindLatestOnDay(ctx context.Context, employeeID string, day time.Time) (*Attendance, error) {
	var a Attendance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("attendance_date = ?", day.Format(dateLayout)).
		Order("sequence DESC").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) Create(ctx context.Context, a *Attendance) error {
	return r.db.WithContext(ctx).Omit("Employee").Create(a).Error
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Attendance, int64, error) {
	filtered := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&Attendance{}).
			Scopes(scope.DateRange(filter.StartDate, filter.EndDate), scope.Employee(filter.EmployeeID))
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []Attendance
	err := filtered().
		Scopes(scope.Paginate(filter.Page, filter.PageSize)).
		Preload("Employee").
		Order("attendance_date DESC, recorded_at DESC").
		Find(&rows).Error
	return rows, total, err
}

func (r *repository) FindRecent(ctx context.Context, limit int) ([]Attendance, error) {
	var rows []Attendance
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Order("recorded_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
