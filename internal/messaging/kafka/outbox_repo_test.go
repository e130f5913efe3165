package kafka_test

import (
	"context"
	"encoding/json"
	"testing"

	"hrms-lite/internal/messaging/kafka"
	"hrms-lite/internal/shared/dbtest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	ev, err := kafka.NewEvent("REQ-1", "employee", "0b7c6c1e-9d7e-4b8e-9f43-3f0b1a2c4d5e", "employee_created", "topic.v1",
		map[string]string{"employee_id": "EMP001"})
	require.NoError(t, err)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, kafka.OutboxStatusPending, ev.Status)
	assert.Equal(t, "REQ-1", ev.RequestID)

	var body map[string]string
	require.NoError(t, json.Unmarshal(ev.Payload, &body))
	assert.Equal(t, "EMP001", body["employee_id"])
}

func TestValidateOutboxEvent(t *testing.T) {
	valid := kafka.OutboxEvent{ID: "x", Topic: "t", Payload: []byte(`{}`), Status: kafka.OutboxStatusPending}
	assert.NoError(t, kafka.ValidateOutboxEvent(valid))

	noTopic := valid
	noTopic.Topic = ""
	assert.EqualError(t, kafka.ValidateOutboxEvent(noTopic), "outbox topic is required")

	badStatus := valid
	badStatus.Status = "unknown"
	assert.EqualError(t, kafka.ValidateOutboxEvent(badStatus), "invalid outbox status: unknown")
}

func TestOutboxRepository_CreateRejectsInvalid(t *testing.T) {
	db, _ := dbtest.NewMock(t)
	repo := kafka.NewOutboxRepository(db)

	err := repo.Create(context.Background(), kafka.OutboxEvent{ID: "x"})

	assert.Error(t, err)
}

func TestOutboxRepository_CreateInsideTx(t *testing.T) {
	db, mock := dbtest.NewMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "outbox_events"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ev, err := kafka.NewEvent("", "attendance", "0b7c6c1e-9d7e-4b8e-9f43-3f0b1a2c4d5e", "attendance_marked", "topic.v1", map[string]string{})
	require.NoError(t, err)

	tx := db.Begin()
	require.NoError(t, kafka.NewOutboxRepository(db).WithTx(tx).Create(context.Background(), ev))
	require.NoError(t, tx.Commit().Error)
}

func TestOutboxRepository_MarkSent(t *testing.T) {
	db, mock := dbtest.NewMock(t)

	mock.ExpectExec(`UPDATE outbox_events`).
		WithArgs(kafka.OutboxStatusSent, "evt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, kafka.NewOutboxRepository(db).MarkSent(context.Background(), "evt-1"))
}

func TestOutboxRepository_MarkFailed(t *testing.T) {
	db, mock := dbtest.NewMock(t)

	mock.ExpectExec(`UPDATE outbox_events`).
		WithArgs(kafka.OutboxStatusFailed, "broker down", "evt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, kafka.NewOutboxRepository(db).MarkFailed(context.Background(), "evt-1", "broker down"))
}

func TestOutboxRepository_ListPending(t *testing.T) {
	db, mock := dbtest.NewMock(t)

	rows := sqlmock.NewRows([]string{"id", "aggregate_type", "aggregate_id", "event_type", "topic", "payload", "status", "retry_count"}).
		AddRow("evt-1", "employee", "agg-1", "employee_created", "t", []byte(`{}`), kafka.OutboxStatusPending, 0)

	mock.ExpectQuery(`SELECT \* FROM "outbox_events" WHERE status IN \(\$1,\$2\) AND \(next_retry_at IS NULL OR next_retry_at <= NOW\(\)\) ORDER BY created_at ASC LIMIT \$3`).
		WithArgs(kafka.OutboxStatusPending, kafka.OutboxStatusFailed, 10).
		WillReturnRows(rows)

	events, err := kafka.NewOutboxRepository(db).ListPending(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "evt-1", events[0].ID)
}
