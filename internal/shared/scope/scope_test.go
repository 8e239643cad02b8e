package scope_test

import (
	"testing"
	"time"

	"face-attendance/internal/shared/scope"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type row struct {
	ID string
}

func (row) TableName() string { return "attendance_events" }

func dryRun(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, _, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DryRun: true})
	assert.NoError(t, err)
	return db
}

func TestScopes(t *testing.T) {
	db := dryRun(t)
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		scopes []func(*gorm.DB) *gorm.DB
		want   string
	}{
		{
			name:   "open filters add nothing",
			scopes: []func(*gorm.DB) *gorm.DB{scope.Employee(""), scope.DateRange(nil, nil), scope.OnDate(nil)},
			want:   `SELECT * FROM "attendance_events"`,
		},
		{
			name:   "half open range",
			scopes: []func(*gorm.DB) *gorm.DB{scope.DateRange(&from, nil), scope.Employee("emp-1")},
			want:   `SELECT * FROM "attendance_events" WHERE attendance_date >= '2025-03-01' AND employee_id = 'emp-1'`,
		},
		{
			name:   "single day",
			scopes: []func(*gorm.DB) *gorm.DB{scope.OnDate(&day)},
			want:   `SELECT * FROM "attendance_events" WHERE attendance_date = '2025-03-14'`,
		},
		{
			name:   "page below one is clamped",
			scopes: []func(*gorm.DB) *gorm.DB{scope.Paginate(0, 20)},
			want:   `SELECT * FROM "attendance_events" LIMIT 20`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
				var rows []row
				return tx.Scopes(tt.scopes...).Find(&rows)
			})
			assert.Equal(t, tt.want, sql)
		})
	}
}
