package employee_test

import (
	"context"
	"testing"

	"face-attendance/internal/employee"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRepoTest(t *testing.T) (employee.Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)

	return employee.NewRepository(gormDB), mock
}

func TestRepository_FindByFullName(t *testing.T) {
	repo, mock := setupRepoTest(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "employees" WHERE full_name = \$1 AND "employees"."deleted_at" IS NULL ORDER BY created_at ASC LIMIT .+`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "employee_code", "department"}).
			AddRow(id.String(), "Somchai", "EMP-0001", "Engineering"))

	rows, err := repo.FindByFullName(context.Background(), "Somchai", 2)

	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, id, rows[0].ID)
	assert.Equal(t, "Engineering", rows[0].Department)
	assert.NoError(t, mock.ExpectationsWereMet())
}
