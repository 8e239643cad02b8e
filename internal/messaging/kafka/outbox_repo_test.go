package kafka_test

import (
	"context"
	"testing"
	"time"

	"face-attendance/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupOutboxTest(t *testing.T) (kafka.OutboxRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)

	return kafka.NewOutboxRepository(gormDB), mock
}

func TestOutboxRepository_CreateDefaultsToPending(t *testing.T) {
	repo, mock := setupOutboxTest(t)

	mock.ExpectExec(`INSERT INTO outbox_events`).
		WithArgs("o-1", "req-1", "attendance", "emp-1", "attendance_recorded", "hr.attendance.recorded.v1", []byte(`{}`), kafka.OutboxStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), kafka.OutboxEvent{
		ID:            "o-1",
		RequestID:     "req-1",
		AggregateType: "attendance",
		AggregateID:   "emp-1",
		EventType:     "attendance_recorded",
		Topic:         "hr.attendance.recorded.v1",
		Payload:       []byte(`{}`),
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_CreateRejectsInvalid(t *testing.T) {
	repo, _ := setupOutboxTest(t)

	err := repo.Create(context.Background(), kafka.OutboxEvent{ID: "o-1"})

	assert.EqualError(t, err, "outbox topic is required")
}

func TestOutboxRepository_MarkFailed(t *testing.T) {
	repo, mock := setupOutboxTest(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "outbox_events" SET "last_error"=\$1,"next_retry_at"=NOW\(\) \+ LEAST\(retry_count \+ 1, 10\).*"retry_count"=retry_count \+ 1,"status"=CASE WHEN retry_count \+ 1 >= \$2 THEN \$3 ELSE \$4 END`).
		WithArgs("broker down", kafka.MaxOutboxRetries, kafka.OutboxStatusDead, kafka.OutboxStatusFailed, "o-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.MarkFailed(context.Background(), "o-1", "broker down"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_MarkSent(t *testing.T) {
	repo, mock := setupOutboxTest(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "outbox_events" SET "last_error"=NULL,"processed_at"=NOW\(\),"status"=\$1`).
		WithArgs(kafka.OutboxStatusSent, "o-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.MarkSent(context.Background(), "o-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_ListPending(t *testing.T) {
	repo, mock := setupOutboxTest(t)

	mock.ExpectQuery(`SELECT \* FROM "outbox_events" WHERE status IN \(\$1,\$2\) AND \(next_retry_at IS NULL OR next_retry_at <= NOW\(\)\) ORDER BY created_at ASC LIMIT`).
		WithArgs(kafka.OutboxStatusPending, kafka.OutboxStatusFailed, 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "aggregate_id", "topic", "status", "retry_count"}).
			AddRow("o-1", "emp-1", "hr.attendance.recorded.v1", kafka.OutboxStatusFailed, 2))

	events, err := repo.ListPending(context.Background(), 50)

	assert.NoError(t, err)
	if assert.Len(t, events, 1) {
		assert.Equal(t, "o-1", events[0].ID)
		assert.Equal(t, 2, events[0].RetryCount)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_PurgeSent(t *testing.T) {
	repo, mock := setupOutboxTest(t)
	cutoff := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "outbox_events" WHERE status = \$1 AND processed_at < \$2`).
		WithArgs(kafka.OutboxStatusSent, cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	n, err := repo.PurgeSent(context.Background(), cutoff)

	assert.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateOutboxEvent(t *testing.T) {
	valid := kafka.OutboxEvent{ID: "o-1", Topic: "t", Payload: []byte(`{}`), Status: kafka.OutboxStatusPending}
	assert.NoError(t, kafka.ValidateOutboxEvent(valid))

	valid.Status = "lost"
	assert.Error(t, kafka.ValidateOutboxEvent(valid))
}
