package attendance_test

import (
	"context"
	"testing"
	"time"

	"hrms-lite/internal/attendance"
	"hrms-lite/internal/shared/dbtest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var attendanceColumns = []string{"id", "employee_id", "date", "status", "created_at"}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRepository_ExistsForDate(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := attendance.NewRepository(db)
	employeeID := uuid.NewString()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "attendance" WHERE employee_id = \$1 AND date = \$2`).
		WithArgs(employeeID, "2026-03-09").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	dup, err := repo.ExistsForDate(context.Background(), employeeID, day(2026, 3, 9))

	require.NoError(t, err)
	assert.True(t, dup)
}

func TestRepository_EmployeeExists(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := attendance.NewRepository(db)
	employeeID := uuid.NewString()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "employees" WHERE id = \$1`).
		WithArgs(employeeID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err := repo.EmployeeExists(context.Background(), employeeID)

	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_FindByEmployee_InclusiveRange(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := attendance.NewRepository(db)
	employeeID := uuid.New()
	from, to := day(2026, 3, 1), day(2026, 3, 31)

	mock.ExpectQuery(`SELECT \* FROM "attendance" WHERE employee_id = \$1 AND date >= \$2 AND date <= \$3 ORDER BY date DESC, created_at DESC`).
		WithArgs(employeeID.String(), "2026-03-01", "2026-03-31").
		WillReturnRows(sqlmock.NewRows(attendanceColumns).
			AddRow(uuid.NewString(), employeeID.String(), day(2026, 3, 31), "Present", time.Now()).
			AddRow(uuid.NewString(), employeeID.String(), day(2026, 3, 1), "Absent", time.Now()))

	rows, err := repo.FindByEmployee(context.Background(), employeeID.String(), &from, &to)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, attendance.StatusPresent, rows[0].Status)
	assert.Equal(t, attendance.StatusAbsent, rows[1].Status)
	assert.Equal(t, employeeID, rows[1].EmployeeID)
}

func TestRepository_FindAll_DepartmentFilterJoinsEmployees(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := attendance.NewRepository(db)
	employeeID := uuid.New()
	from := day(2026, 3, 1)

	mock.ExpectQuery(`SELECT attendance\.\* FROM "attendance" JOIN employees ON employees\.id = attendance\.employee_id WHERE employees\.department IN \(\$1,\$2\) AND attendance\.date >= \$3 ORDER BY attendance\.date DESC, attendance\.created_at DESC`).
		WithArgs("Engineering", "HR", "2026-03-01").
		WillReturnRows(sqlmock.NewRows(attendanceColumns).
			AddRow(uuid.NewString(), employeeID.String(), day(2026, 3, 2), "Present", time.Now()))
	mock.ExpectQuery(`SELECT \* FROM "employees" WHERE "employees"\."id" = \$1`).
		WithArgs(employeeID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "employee_id", "full_name", "department"}).
			AddRow(employeeID.String(), "EMP001", "Alex Chen", "Engineering"))

	rows, err := repo.FindAll(context.Background(), attendance.AttendanceFilter{
		From:        &from,
		Departments: []string{"Engineering", "HR"},
	})

	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Employee)
	assert.Equal(t, "Alex Chen", rows[0].Employee.FullName)
}

func TestRepository_FindAll_NoFilter(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := attendance.NewRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "attendance" ORDER BY attendance\.date DESC, attendance\.created_at DESC`).
		WillReturnRows(sqlmock.NewRows(attendanceColumns))

	rows, err := repo.FindAll(context.Background(), attendance.AttendanceFilter{})

	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRepository_CountByStatus(t *testing.T) {
	db, mock := dbtest.NewMock(t)
	repo := attendance.NewRepository(db)
	employeeID := uuid.NewString()

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS count FROM "attendance" WHERE employee_id = \$1 GROUP BY "?status"?`).
		WithArgs(employeeID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("Present", 12).
			AddRow("Absent", 3))

	counts, err := repo.CountByStatus(context.Background(), employeeID, nil, nil)

	require.NoError(t, err)
	assert.ElementsMatch(t, []attendance.StatusCount{
		{Status: attendance.StatusPresent, Count: 12},
		{Status: attendance.StatusAbsent, Count: 3},
	}, counts)
}
