// Package scope holds reusable gorm scopes for the read side.
package scope

import (
	"time"

	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// Employee filters by employee_id; an empty id matches everyone.
func Employee(employeeID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if employeeID == "" {
			return db
		}
		return db.Where("employee_id = ?", employeeID)
	}
}

// DateRange filters attendance_date inclusively. Nil bounds are open.
func DateRange(from, to *time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if from != nil {
			db = db.Where("attendance_date >= ?", from.Format(dateLayout))
		}
		if to != nil {
			db = db.Where("attendance_date <= ?", to.Format(dateLayout))
		}
		return db
	}
}

func OnDate(day *time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if day == nil {
			return db
		}
		return db.Where("attendance_date = ?", day.Format(dateLayout))
	}
}

// Paginate is 1-based; callers normalize page and size beforehand.
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
