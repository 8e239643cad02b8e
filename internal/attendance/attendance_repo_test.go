package attendance_test

import (
	"context"
	"testing"
	"time"

	"face-attendance/internal/attendance"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRepoTest(t *testing.T) (attendance.Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)

	return attendance.NewRepository(gormDB), mock
}

func TestRepository_LockEmployeeDay(t *testing.T) {
	repo, mock := setupRepoTest(t)
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtext\(\$1\)\)`).
		WithArgs("emp-1:2025-03-14").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.LockEmployeeDay(context.Background(), "emp-1", day)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindLatestOnDay(t *testing.T) {
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	employeeID := uuid.New()

	t.Run("no events yet", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		mock.ExpectQuery(`SELECT \* FROM "attendance_events" WHERE employee_id = \$1 AND attendance_date = \$2 ORDER BY sequence DESC`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		last, err := repo.FindLatestOnDay(context.Background(), employeeID.String(), day)

		assert.NoError(t, err)
		assert.Nil(t, last)
	})

	t.Run("latest event", func(t *testing.T) {
		repo, mock := setupRepoTest(t)
		id := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "attendance_events" WHERE employee_id = \$1 AND attendance_date = \$2 ORDER BY sequence DESC`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "employee_id", "sequence", "event_type", "status"}).
				AddRow(id.String(), employeeID.String(), 2, "CHECK_OUT", "NONE"))

		last, err := repo.FindLatestOnDay(context.Background(), employeeID.String(), day)

		assert.NoError(t, err)
		if assert.NotNil(t, last) {
			assert.Equal(t, 2, last.Sequence)
			assert.Equal(t, attendance.EventCheckOut, last.EventType)
		}
	})
}

func TestRepository_Transaction(t *testing.T) {
	repo, mock := setupRepoTest(t)
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Transaction(context.Background(), func(txRepo attendance.Repository, tx *gorm.DB) error {
		assert.NotNil(t, tx)
		return txRepo.LockEmployeeDay(context.Background(), "emp-1", day)
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindAll(t *testing.T) {
	repo, mock := setupRepoTest(t)
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "attendance_events" WHERE attendance_date >= \$1 AND attendance_date <= \$2 AND employee_id = \$3`).
		WithArgs("2025-03-01", "2025-03-31", "emp-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT \* FROM "attendance_events" WHERE attendance_date >= \$1 AND attendance_date <= \$2 AND employee_id = \$3 ORDER BY attendance_date DESC, recorded_at DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rows, total, err := repo.FindAll(context.Background(), attendance.ListFilter{
		StartDate:  &from,
		EndDate:    &to,
		EmployeeID: "emp-1",
		Page:       2,
		PageSize:   10,
	})

	assert.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, int64(3), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
