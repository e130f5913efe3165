package attendance

import (
	"context"
	"time"

	attendanceerrors "hrms-lite/internal/attendance/errors"
	"hrms-lite/internal/events"
	"hrms-lite/internal/messaging/kafka"
	"hrms-lite/internal/shared/apperror"
	"hrms-lite/internal/shared/cache"
	"hrms-lite/internal/shared/clock"
	"hrms-lite/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	Mark(ctx context.Context, req MarkAttendanceRequest) (AttendanceResponse, error)
	GetForEmployee(ctx context.Context, employeeID string, from, to *time.Time) ([]AttendanceResponse, error)
	GetAll(ctx context.Context, filter AttendanceFilter) ([]AttendanceResponse, error)
	IsDuplicate(ctx context.Context, employeeID string, date time.Time) (bool, error)
	Summary(ctx context.Context, employeeID string, from, to *time.Time) (SummaryResponse, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	outbox kafka.OutboxRepository
	clock  clock.Clock
	rdb    *redis.Client
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, clk clock.Clock, rdb *redis.Client, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, clk, rdb, logger...)
}

func NewServiceWithOutbox(
	db *gorm.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	clk clock.Clock,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	if clk == nil {
		clk = clock.New(time.UTC)
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outboxRepo,
		clock:  clk,
		rdb:    rdb,
		logger: l,
	}
}

// Mark records one day of attendance. Checks run in a fixed order inside a
// single transaction: employee existence, future date, duplicate.
func (s *service) Mark(ctx context.Context, req MarkAttendanceRequest) (AttendanceResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("mark attendance requested",
		zap.String("request_id", rid),
		zap.String("employee_id", req.EmployeeID),
		zap.String("date", req.Date),
		zap.String("status", req.Status),
	)

	if err := apperror.Validate(req); err != nil {
		s.logger.Warn("mark attendance validation failed", zap.String("request_id", rid), zap.Error(err))
		return AttendanceResponse{}, err
	}

	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return AttendanceResponse{}, apperror.InvalidField("employee_id")
	}
	date, err := clock.ParseDate(req.Date)
	if err != nil {
		return AttendanceResponse{}, apperror.InvalidField("date")
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		return AttendanceResponse{}, err
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("mark attendance begin tx failed", zap.String("request_id", rid), zap.Error(tx.Error))
		return AttendanceResponse{}, apperror.Store(tx.Error)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	exists, err := qtx.EmployeeExists(ctx, req.EmployeeID)
	if err != nil {
		s.logger.Error("mark attendance employee lookup failed", zap.String("request_id", rid), zap.Error(err))
		return AttendanceResponse{}, mapRepositoryError(err)
	}
	if !exists {
		s.logger.Warn("mark attendance employee not found",
			zap.String("request_id", rid),
			zap.String("employee_id", req.EmployeeID),
		)
		return AttendanceResponse{}, attendanceerrors.ErrEmployeeNotFound
	}

	today := s.clock.Today()
	if date.After(today) {
		s.logger.Warn("mark attendance future date",
			zap.String("request_id", rid),
			zap.String("date", req.Date),
			zap.String("today", today.Format(clock.DateLayout)),
		)
		return AttendanceResponse{}, attendanceerrors.ErrFutureDate
	}

	dup, err := qtx.ExistsForDate(ctx, req.EmployeeID, date)
	if err != nil {
		s.logger.Error("mark attendance duplicate check failed", zap.String("request_id", rid), zap.Error(err))
		return AttendanceResponse{}, mapRepositoryError(err)
	}
	if dup {
		s.logger.Warn("mark attendance duplicate",
			zap.String("request_id", rid),
			zap.String("employee_id", req.EmployeeID),
			zap.String("date", req.Date),
		)
		return AttendanceResponse{}, attendanceerrors.ErrAttendanceAlreadyMarked
	}

	row := &Attendance{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		Date:       date,
		Status:     status,
		CreatedAt:  s.clock.Now().UTC(),
	}

	if err := qtx.Create(ctx, row); err != nil {
		mapped := mapRepositoryError(err)
		if apperror.HasCode(mapped, apperror.CodeStore) {
			s.logger.Error("mark attendance persist failed", zap.String("request_id", rid), zap.Error(err))
		} else {
			s.logger.Warn("mark attendance lost insert race", zap.String("request_id", rid), zap.Error(err))
		}
		return AttendanceResponse{}, mapped
	}

	if s.outbox != nil {
		event, err := kafka.NewEvent(rid, "attendance", row.ID.String(), events.EventAttendanceMarked, events.AttendanceMarkedTopic,
			events.AttendanceMarkedEvent{
				EventType:    events.EventAttendanceMarked,
				RequestID:    rid,
				AttendanceID: row.ID.String(),
				EmployeeID:   row.EmployeeID.String(),
				Date:         row.Date.Format(clock.DateLayout),
				Status:       row.Status.String(),
				OccurredAt:   row.CreatedAt,
			})
		if err != nil {
			s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
			return AttendanceResponse{}, apperror.Wrap(err, apperror.CodeInternalError, apperror.ErrInternal.Message)
		}
		if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
			s.logger.Error("mark attendance outbox persist failed", zap.String("request_id", rid), zap.Error(err))
			return AttendanceResponse{}, apperror.Store(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return AttendanceResponse{}, mapRepositoryError(err)
	}

	cache.Invalidate(ctx, s.rdb, s.logger, cache.DashboardStatsKey)

	s.logger.Info("mark attendance success",
		zap.String("request_id", rid),
		zap.String("attendance_id", row.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.String("date", req.Date),
		zap.String("status", row.Status.String()),
	)

	return mapToResponse(*row), nil
}

// GetForEmployee returns an employee's history, newest first. An unknown
// employee has no history, so the result is empty rather than an error.
func (s *service) GetForEmployee(ctx context.Context, employeeID string, from, to *time.Time) ([]AttendanceResponse, error) {
	s.logger.Debug("get attendance for employee requested", zap.String("employee_id", employeeID))

	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(employeeID); err != nil {
		return []AttendanceResponse{}, nil
	}

	rows, err := s.repo.FindByEmployee(ctx, employeeID, from, to)
	if err != nil {
		s.logger.Error("get attendance for employee failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(rows), nil
}

func (s *service) GetAll(ctx context.Context, filter AttendanceFilter) ([]AttendanceResponse, error) {
	s.logger.Debug("get all attendance requested",
		zap.String("employee_id", filter.EmployeeID),
		zap.Strings("departments", filter.Departments),
	)

	if err := checkRange(filter.From, filter.To); err != nil {
		return nil, err
	}
	if filter.EmployeeID != "" {
		if _, err := uuid.Parse(filter.EmployeeID); err != nil {
			return []AttendanceResponse{}, nil
		}
	}

	rows, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("get all attendance failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(rows), nil
}

func (s *service) IsDuplicate(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return false, nil
	}

	dup, err := s.repo.ExistsForDate(ctx, employeeID, clock.DateOf(date))
	if err != nil {
		s.logger.Error("attendance duplicate check failed", zap.String("employee_id", employeeID), zap.Error(err))
		return false, mapRepositoryError(err)
	}
	return dup, nil
}

func (s *service) Summary(ctx context.Context, employeeID string, from, to *time.Time) (SummaryResponse, error) {
	s.logger.Debug("attendance summary requested", zap.String("employee_id", employeeID))

	if err := checkRange(from, to); err != nil {
		return SummaryResponse{}, err
	}

	resp := SummaryResponse{
		EmployeeID: employeeID,
		FromDate:   formatDate(from),
		ToDate:     formatDate(to),
	}
	if _, err := uuid.Parse(employeeID); err != nil {
		return resp, nil
	}

	counts, err := s.repo.CountByStatus(ctx, employeeID, from, to)
	if err != nil {
		s.logger.Error("attendance summary failed", zap.String("employee_id", employeeID), zap.Error(err))
		return SummaryResponse{}, mapRepositoryError(err)
	}

	for _, c := range counts {
		switch c.Status {
		case StatusPresent:
			resp.Present += c.Count
		case StatusAbsent:
			resp.Absent += c.Count
		default:
			s.logger.Warn("attendance summary unknown status", zap.String("status", string(c.Status)))
		}
		resp.Total += c.Count
	}

	return resp, nil
}

func checkRange(from, to *time.Time) error {
	if from != nil && to != nil && from.After(*to) {
		return attendanceerrors.ErrInvalidDateRange
	}
	return nil
}
