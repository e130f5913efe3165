package dashboard_test

import (
	"context"
	"testing"
	"time"

	"hrms-lite/internal/dashboard"
	"hrms-lite/internal/shared/dbtest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_CountByStatusOn(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := dashboard.NewRepository(db)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS count FROM "attendance" WHERE date = \$1 GROUP BY "?status"?`).
		WithArgs("2026-03-10").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("Present", 4))

	counts, err := repo.CountByStatusOn(context.Background(), time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, int64(4), counts[0].Count)
}

func TestRepository_RecentActivity_PreloadsEmployee(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := dashboard.NewRepository(db)
	ownerID := uuid.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "attendance" ORDER BY created_at DESC LIMIT \$1`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "employee_id", "date", "status", "created_at"}).
			AddRow(uuid.NewString(), ownerID.String(), day, "Present", day.Add(9*time.Hour)))
	mock.ExpectQuery(`SELECT \* FROM "employees" WHERE "employees"\."id" = \$1`).
		WithArgs(ownerID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "employee_id", "full_name", "department"}).
			AddRow(ownerID.String(), "EMP004", "Sam Rivera", "Sales"))

	rows, err := repo.RecentActivity(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Employee)
	assert.Equal(t, "EMP004", rows[0].Employee.EmployeeCode)
}

func TestRepository_CountEmployees(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := dashboard.NewRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "employees"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))

	n, err := repo.CountEmployees(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
}
