package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee is owned by the HR identity store; this service only reads it.
type Employee struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	FullName     string         `gorm:"column:full_name;type:varchar(150);not null;index" json:"full_name"`
	EmployeeCode string         `gorm:"column:employee_code;type:varchar(30);uniqueIndex" json:"employee_code"`
	Department   string         `gorm:"column:department;type:varchar(100)" json:"department"`
	Position     string         `gorm:"column:position;type:varchar(100)" json:"position"`
	CreatedAt    time.Time      `gorm:"column:created_at" json:"-"`
	UpdatedAt    time.Time      `gorm:"column:updated_at" json:"-"`
	DeletedAt    gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Employee) TableName() string {
	return "employees"
}
