package employee

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	FindByFullName(ctx context.Context, fullName string, limit int) ([]Employee, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// FindByFullName is an exact, case-sensitive match. limit caps the scan; the
// resolver only needs to know whether there is more than one row.
func (r *repository) FindByFullName(ctx context.Context, fullName string, limit int) ([]Employee, error) {
	var rows []Employee
	q := r.db.WithContext(ctx).
		Where("full_name = ?", fullName).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	return rows, err
}
