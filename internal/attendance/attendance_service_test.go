package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	attendanceerrors "hrms-lite/internal/attendance/errors"
	"hrms-lite/internal/events"
	"hrms-lite/internal/messaging/kafka"
	kafkaMock "hrms-lite/internal/messaging/kafka/mock"
	"hrms-lite/internal/shared/apperror"
	"hrms-lite/internal/shared/cache"
	"hrms-lite/internal/shared/cache/cachetest"
	"hrms-lite/internal/shared/clock"
	"hrms-lite/internal/shared/contextutil"
	"hrms-lite/internal/shared/dbtest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeRepo struct {
	createFn         func(ctx context.Context, a *Attendance) error
	employeeExistsFn func(ctx context.Context, employeeID string) (bool, error)
	existsForDateFn  func(ctx context.Context, employeeID string, date time.Time) (bool, error)
	findByEmployeeFn func(ctx context.Context, employeeID string, from, to *time.Time) ([]Attendance, error)
	findAllFn        func(ctx context.Context, filter AttendanceFilter) ([]Attendance, error)
	countByStatusFn  func(ctx context.Context, employeeID string, from, to *time.Time) ([]StatusCount, error)
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }
func (f *fakeRepo) Create(ctx context.Context, a *Attendance) error {
	return f.createFn(ctx, a)
}
func (f *fakeRepo) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	return f.employeeExistsFn(ctx, employeeID)
}
func (f *fakeRepo) ExistsForDate(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	return f.existsForDateFn(ctx, employeeID, date)
}
func (f *fakeRepo) FindByEmployee(ctx context.Context, employeeID string, from, to *time.Time) ([]Attendance, error) {
	return f.findByEmployeeFn(ctx, employeeID, from, to)
}
func (f *fakeRepo) FindAll(ctx context.Context, filter AttendanceFilter) ([]Attendance, error) {
	return f.findAllFn(ctx, filter)
}
func (f *fakeRepo) CountByStatus(ctx context.Context, employeeID string, from, to *time.Time) ([]StatusCount, error) {
	return f.countByStatusFn(ctx, employeeID, from, to)
}

var fixedNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func date(s string) time.Time {
	t, err := clock.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// happyRepo knows one employee and has no attendance yet.
func happyRepo(employeeID string) *fakeRepo {
	return &fakeRepo{
		employeeExistsFn: func(ctx context.Context, id string) (bool, error) { return id == employeeID, nil },
		existsForDateFn:  func(ctx context.Context, id string, d time.Time) (bool, error) { return false, nil },
		createFn:         func(ctx context.Context, a *Attendance) error { return nil },
	}
}

type markDeps struct {
	sql    sqlmock.Sqlmock
	redis  redismock.ClientMock
	outbox *kafkaMock.MockOutboxRepository
}

func newMarkService(t *testing.T, repo Repository) (Service, *markDeps) {
	t.Helper()
	db, sqlMock := dbtest.NewMock(t)
	rdb, redisMock := redismock.NewClientMock()
	outbox := kafkaMock.NewMockOutboxRepository(gomock.NewController(t))

	t.Cleanup(func() {
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	svc := NewServiceWithOutbox(db, repo, outbox, clock.Fixed(fixedNow), rdb, zap.NewNop())
	return svc, &markDeps{sql: sqlMock, redis: redisMock, outbox: outbox}
}

func TestService_Mark_Success(t *testing.T) {
	employeeID := uuid.NewString()
	ctx := contextutil.WithRequestID(context.Background(), "req-7")

	var saved Attendance
	repo := happyRepo(employeeID)
	repo.createFn = func(ctx context.Context, a *Attendance) error {
		saved = *a
		return nil
	}

	svc, deps := newMarkService(t, repo)
	dbtest.ExpectTx(deps.sql, true)
	deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
	deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, ev kafka.OutboxEvent) error {
			assert.Equal(t, events.EventAttendanceMarked, ev.EventType)
			assert.Equal(t, events.AttendanceMarkedTopic, ev.Topic)
			assert.Equal(t, "req-7", ev.RequestID)
			assert.Equal(t, saved.ID.String(), ev.AggregateID)
			return nil
		})
	cachetest.ExpectInvalidate(deps.redis, cache.DashboardStatsKey)

	resp, err := svc.Mark(ctx, MarkAttendanceRequest{EmployeeID: employeeID, Date: "2026-03-09", Status: "Present"})

	require.NoError(t, err)
	assert.Equal(t, employeeID, resp.EmployeeID)
	assert.Equal(t, "2026-03-09", resp.Date)
	assert.Equal(t, StatusPresent, resp.Status)
	assert.Equal(t, date("2026-03-09"), saved.Date)
}

func TestService_Mark_TodayIsAllowed(t *testing.T) {
	employeeID := uuid.NewString()
	svc, deps := newMarkService(t, happyRepo(employeeID))

	dbtest.ExpectTx(deps.sql, true)
	deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
	deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	cachetest.ExpectInvalidate(deps.redis, cache.DashboardStatsKey)

	resp, err := svc.Mark(context.Background(), MarkAttendanceRequest{EmployeeID: employeeID, Date: "2026-03-10", Status: "Absent"})

	require.NoError(t, err)
	assert.Equal(t, StatusAbsent, resp.Status)
}

func TestService_Mark_ValidationRunsBeforeStore(t *testing.T) {
	tests := []struct {
		name string
		req  MarkAttendanceRequest
	}{
		{"unknown status", MarkAttendanceRequest{EmployeeID: uuid.NewString(), Date: "2026-03-09", Status: "Late"}},
		{"lowercase status", MarkAttendanceRequest{EmployeeID: uuid.NewString(), Date: "2026-03-09", Status: "present"}},
		{"bad date", MarkAttendanceRequest{EmployeeID: uuid.NewString(), Date: "09/03/2026", Status: "Present"}},
		{"employee id not a uuid", MarkAttendanceRequest{EmployeeID: "EMP001", Date: "2026-03-09", Status: "Present"}},
		{"missing fields", MarkAttendanceRequest{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newMarkService(t, &fakeRepo{})

			_, err := svc.Mark(context.Background(), tt.req)

			assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "got %v", err)
		})
	}
}

func TestService_Mark_CheckOrder(t *testing.T) {
	t.Run("unknown employee wins over future date", func(t *testing.T) {
		svc, deps := newMarkService(t, happyRepo(uuid.NewString()))
		dbtest.ExpectTx(deps.sql, false)

		_, err := svc.Mark(context.Background(), MarkAttendanceRequest{EmployeeID: uuid.NewString(), Date: "2026-03-11", Status: "Present"})

		assert.ErrorIs(t, err, attendanceerrors.ErrEmployeeNotFound)
	})

	t.Run("future date wins over duplicate", func(t *testing.T) {
		employeeID := uuid.NewString()
		repo := happyRepo(employeeID)
		repo.existsForDateFn = func(ctx context.Context, id string, d time.Time) (bool, error) {
			t.Fatal("duplicate check must not run for a future date")
			return false, nil
		}
		svc, deps := newMarkService(t, repo)
		dbtest.ExpectTx(deps.sql, false)

		_, err := svc.Mark(context.Background(), MarkAttendanceRequest{EmployeeID: employeeID, Date: "2026-03-11", Status: "Present"})

		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidDate))
	})

	t.Run("duplicate is reported without inserting", func(t *testing.T) {
		employeeID := uuid.NewString()
		repo := happyRepo(employeeID)
		repo.existsForDateFn = func(ctx context.Context, id string, d time.Time) (bool, error) {
			assert.Equal(t, date("2026-03-01"), d)
			return true, nil
		}
		repo.createFn = func(ctx context.Context, a *Attendance) error {
			t.Fatal("create must not run for a duplicate")
			return nil
		}
		svc, deps := newMarkService(t, repo)
		dbtest.ExpectTx(deps.sql, false)

		_, err := svc.Mark(context.Background(), MarkAttendanceRequest{EmployeeID: employeeID, Date: "2026-03-01", Status: "Absent"})

		assert.True(t, apperror.HasCode(err, apperror.CodeDuplicateAttendance))
	})
}

func TestService_Mark_StoreConstraintViolations(t *testing.T) {
	tests := []struct {
		name     string
		storeErr error
		wantCode string
	}{
		{
			name:     "lost the unique race",
			storeErr: &pgconn.PgError{Code: "23505", ConstraintName: "uq_attendance_employee_date"},
			wantCode: apperror.CodeDuplicateAttendance,
		},
		{
			name:     "employee deleted concurrently",
			storeErr: &pgconn.PgError{Code: "23503", ConstraintName: "attendance_employee_id_fkey"},
			wantCode: apperror.CodeEmployeeNotFound,
		},
		{
			name:     "connection dropped",
			storeErr: errors.New("conn closed"),
			wantCode: apperror.CodeStore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			employeeID := uuid.NewString()
			repo := happyRepo(employeeID)
			repo.createFn = func(ctx context.Context, a *Attendance) error { return tt.storeErr }

			svc, deps := newMarkService(t, repo)
			dbtest.ExpectTx(deps.sql, false)

			_, err := svc.Mark(context.Background(), MarkAttendanceRequest{EmployeeID: employeeID, Date: "2026-03-09", Status: "Present"})

			assert.Equal(t, tt.wantCode, apperror.CodeOf(err))
		})
	}
}

func TestService_GetForEmployee(t *testing.T) {
	employeeID := uuid.NewString()
	from, to := date("2026-03-01"), date("2026-03-31")

	t.Run("passes bounds through and maps rows", func(t *testing.T) {
		repo := &fakeRepo{
			findByEmployeeFn: func(ctx context.Context, id string, f, tt *time.Time) ([]Attendance, error) {
				assert.Equal(t, employeeID, id)
				assert.Equal(t, from, *f)
				assert.Equal(t, to, *tt)
				return []Attendance{
					{ID: uuid.New(), EmployeeID: uuid.MustParse(employeeID), Date: date("2026-03-05"), Status: StatusPresent},
					{ID: uuid.New(), EmployeeID: uuid.MustParse(employeeID), Date: date("2026-03-04"), Status: StatusAbsent},
				}, nil
			},
		}
		svc := NewService(nil, repo, clock.Fixed(fixedNow), nil, zap.NewNop())

		got, err := svc.GetForEmployee(context.Background(), employeeID, &from, &to)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "2026-03-05", got[0].Date)
		assert.Equal(t, StatusAbsent, got[1].Status)
	})

	t.Run("unknown id is an empty history", func(t *testing.T) {
		svc := NewService(nil, &fakeRepo{}, clock.Fixed(fixedNow), nil, zap.NewNop())

		got, err := svc.GetForEmployee(context.Background(), "not-a-uuid", nil, nil)

		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("inverted range", func(t *testing.T) {
		svc := NewService(nil, &fakeRepo{}, clock.Fixed(fixedNow), nil, zap.NewNop())

		_, err := svc.GetForEmployee(context.Background(), employeeID, &to, &from)

		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidDateRange)
	})
}

func TestService_GetAll_ForwardsFilter(t *testing.T) {
	filter := AttendanceFilter{Departments: []string{"Engineering"}}
	repo := &fakeRepo{
		findAllFn: func(ctx context.Context, f AttendanceFilter) ([]Attendance, error) {
			assert.Equal(t, filter, f)
			return []Attendance{{
				ID:       uuid.New(),
				Date:     date("2026-03-09"),
				Status:   StatusPresent,
				Employee: &EmployeeRef{EmployeeCode: "EMP001", FullName: "Alex Chen", Department: "Engineering"},
			}}, nil
		},
	}
	svc := NewService(nil, repo, clock.Fixed(fixedNow), nil, zap.NewNop())

	got, err := svc.GetAll(context.Background(), filter)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Alex Chen", got[0].EmployeeName)
	assert.Equal(t, "Engineering", got[0].Department)
}

func TestService_GetAll_StoreFailure(t *testing.T) {
	repo := &fakeRepo{
		findAllFn: func(ctx context.Context, f AttendanceFilter) ([]Attendance, error) {
			return nil, errors.New("boom")
		},
	}
	svc := NewService(nil, repo, clock.Fixed(fixedNow), nil, zap.NewNop())

	_, err := svc.GetAll(context.Background(), AttendanceFilter{})

	assert.True(t, apperror.HasCode(err, apperror.CodeStore))
}

func TestService_IsDuplicate(t *testing.T) {
	employeeID := uuid.NewString()
	repo := &fakeRepo{
		existsForDateFn: func(ctx context.Context, id string, d time.Time) (bool, error) {
			return id == employeeID && d.Equal(date("2026-03-09")), nil
		},
	}
	svc := NewService(nil, repo, clock.Fixed(fixedNow), nil, zap.NewNop())

	dup, err := svc.IsDuplicate(context.Background(), employeeID, time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, dup)

	dup, err = svc.IsDuplicate(context.Background(), "nope", fixedNow)
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestService_Summary(t *testing.T) {
	employeeID := uuid.NewString()
	repo := &fakeRepo{
		countByStatusFn: func(ctx context.Context, id string, f, tt *time.Time) ([]StatusCount, error) {
			return []StatusCount{{Status: StatusPresent, Count: 9}, {Status: StatusAbsent, Count: 2}}, nil
		},
	}
	svc := NewService(nil, repo, clock.Fixed(fixedNow), nil, zap.NewNop())
	from := date("2026-03-01")

	got, err := svc.Summary(context.Background(), employeeID, &from, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(9), got.Present)
	assert.Equal(t, int64(2), got.Absent)
	assert.Equal(t, int64(11), got.Total)
	require.NotNil(t, got.FromDate)
	assert.Equal(t, "2026-03-01", *got.FromDate)
	assert.Nil(t, got.ToDate)
}

func TestService_Summary_TotalCountsEveryRow(t *testing.T) {
	repo := &fakeRepo{
		countByStatusFn: func(ctx context.Context, id string, f, tt *time.Time) ([]StatusCount, error) {
			return []StatusCount{
				{Status: StatusPresent, Count: 9},
				{Status: StatusAbsent, Count: 2},
				{Status: "Late", Count: 3},
			}, nil
		},
	}
	svc := NewService(nil, repo, clock.Fixed(fixedNow), nil, zap.NewNop())

	got, err := svc.Summary(context.Background(), uuid.NewString(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(9), got.Present)
	assert.Equal(t, int64(2), got.Absent)
	assert.Equal(t, int64(14), got.Total)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("Present")
	require.NoError(t, err)
	assert.Equal(t, StatusPresent, s)

	_, err = ParseStatus("Late")
	assert.ErrorIs(t, err, attendanceerrors.ErrInvalidStatus)
}
