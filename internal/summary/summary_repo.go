package summary

import (
	"context"
	"errors"
	"time"

	"face-attendance/internal/shared/scope"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const dateLayout = "2006-01-02"

type ListFilter struct {
	Date       *time.Time
	EmployeeID string
	Page       int
	PageSize   int
}

//go:generate mockgen -source=summary_repo.go -destination=mock/summary_repo_mock.go -package=mock
type Repository interface {
	Transaction(ctx context.Context, fn func(txRepo Repository) error) error
	// FindForUpdate returns nil without error when there is no row yet.
	FindForUpdate(ctx context.Context, employeeID string, day time.Time) (*DailySummary, error)
	Upsert(ctx context.Context, s *DailySummary) error
	FindAll(ctx context.Context, filter ListFilter) ([]DailySummary, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Transaction(ctx context.Context, fn func(txRepo Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) FindForUpdate(ctx context.Context, employeeID string, day time.Time) (*DailySummary, error) {
	var s DailySummary
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("employee_id = ? AND attendance_date = ?", employeeID, day.Format(dateLayout)).
		Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) Upsert(ctx context.Context, s *DailySummary) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "employee_id"}, {Name: "attendance_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"employee_name", "first_check_in", "last_check_out", "check_in_status",
				"event_count", "last_sequence", "updated_at",
			}),
		}).
		Create(s).Error
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]DailySummary, int64, error) {
	filtered := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&DailySummary{}).
			Scopes(scope.OnDate(filter.Date), scope.Employee(filter.EmployeeID))
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []DailySummary
	err := filtered().
		Scopes(scope.Paginate(filter.Page, filter.PageSize)).
		Order("attendance_date DESC, employee_name ASC").
		Find(&rows).Error
	return rows, total, err
}
