package employee

import (
	"context"
	"strings"
	"time"

	employeeerrors "hrms-lite/internal/employee/errors"
	"hrms-lite/internal/events"
	"hrms-lite/internal/messaging/kafka"
	"hrms-lite/internal/shared/apperror"
	"hrms-lite/internal/shared/cache"
	"hrms-lite/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const departmentsCacheTTL = time.Hour

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]EmployeeResponse, error)
	ListDepartments(ctx context.Context) ([]string, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	outbox kafka.OutboxRepository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, rdb, logger...)
}

func NewServiceWithOutbox(
	db *gorm.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outboxRepo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("employee_code", req.EmployeeID),
		zap.String("department", req.Department),
	)

	if err := apperror.Validate(req); err != nil {
		s.logger.Warn("create employee validation failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("create employee begin tx failed", zap.String("request_id", rid), zap.Error(tx.Error))
		return EmployeeResponse{}, apperror.Store(tx.Error)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	taken, err := qtx.ExistsByEmployeeCode(ctx, req.EmployeeID)
	if err != nil {
		s.logger.Error("create employee lookup by code failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	if taken {
		s.logger.Warn("create employee duplicate employee id",
			zap.String("request_id", rid),
			zap.String("employee_code", req.EmployeeID),
		)
		return EmployeeResponse{}, employeeerrors.ErrEmployeeIDAlreadyExists
	}

	taken, err = qtx.ExistsByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Error("create employee lookup by email failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	if taken {
		s.logger.Warn("create employee duplicate email", zap.String("request_id", rid))
		return EmployeeResponse{}, employeeerrors.ErrEmailAlreadyExists
	}

	emp := &Employee{
		ID:           uuid.New(),
		EmployeeCode: req.EmployeeID,
		FullName:     req.FullName,
		Email:        req.Email,
		Department:   req.Department,
	}

	if err := qtx.Create(ctx, emp); err != nil {
		mapped := mapRepositoryError(err)
		if apperror.HasCode(mapped, apperror.CodeDuplicateEmployee) {
			s.logger.Warn("create employee lost insert race", zap.String("request_id", rid), zap.Error(err))
		} else {
			s.logger.Error("create employee persist failed", zap.String("request_id", rid), zap.Error(err))
		}
		return EmployeeResponse{}, mapped
	}

	if s.outbox != nil {
		event, err := kafka.NewEvent(rid, "employee", emp.ID.String(), events.EventEmployeeCreated, events.EmployeeLifecycleTopic,
			events.EmployeeCreatedEvent{
				EventType:    events.EventEmployeeCreated,
				RequestID:    rid,
				EmployeeID:   emp.ID.String(),
				EmployeeCode: emp.EmployeeCode,
				Department:   emp.Department,
				OccurredAt:   time.Now().UTC(),
			})
		if err != nil {
			s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
			return EmployeeResponse{}, apperror.Wrap(err, apperror.CodeInternalError, apperror.ErrInternal.Message)
		}
		if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
			s.logger.Error("create employee outbox persist failed",
				zap.String("request_id", rid),
				zap.String("employee_id", emp.ID.String()),
				zap.Error(err),
			)
			return EmployeeResponse{}, apperror.Store(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	cache.Invalidate(ctx, s.rdb, s.logger, cache.DirectoryKeys...)

	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", emp.ID.String()),
		zap.String("employee_code", emp.EmployeeCode),
	)

	return mapToResponse(*emp), nil
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	s.logger.Debug("get all employees requested", zap.String("request_id", contextutil.GetRequestID(ctx)))

	emps, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("get all employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(emps), nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	s.logger.Debug("get employee by id requested", zap.String("employee_id", id))

	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
	}

	emp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		mapped := mapRepositoryError(err)
		if !apperror.HasCode(mapped, apperror.CodeEmployeeNotFound) {
			s.logger.Error("get employee by id failed", zap.String("employee_id", id), zap.Error(err))
		}
		return EmployeeResponse{}, mapped
	}

	return mapToResponse(*emp), nil
}

// Delete removes the employee and every attendance row that references it
// in one transaction.
func (s *service) Delete(ctx context.Context, id string) error {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("delete employee requested",
		zap.String("request_id", rid),
		zap.String("employee_id", id),
	)

	if _, err := uuid.Parse(id); err != nil {
		return employeeerrors.ErrEmployeeNotFound
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("delete employee begin tx failed", zap.String("request_id", rid), zap.Error(tx.Error))
		return apperror.Store(tx.Error)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	emp, err := qtx.FindByID(ctx, id)
	if err != nil {
		mapped := mapRepositoryError(err)
		if apperror.HasCode(mapped, apperror.CodeEmployeeNotFound) {
			s.logger.Warn("delete employee not found", zap.String("request_id", rid), zap.String("employee_id", id))
		} else {
			s.logger.Error("delete employee lookup failed", zap.String("request_id", rid), zap.Error(err))
		}
		return mapped
	}

	removed, err := qtx.DeleteAttendance(ctx, id)
	if err != nil {
		s.logger.Error("delete employee attendance failed", zap.String("request_id", rid), zap.Error(err))
		return mapRepositoryError(err)
	}

	affected, err := qtx.Delete(ctx, id)
	if err != nil {
		s.logger.Error("delete employee failed", zap.String("request_id", rid), zap.Error(err))
		return mapRepositoryError(err)
	}
	if affected == 0 {
		s.logger.Warn("delete employee removed concurrently", zap.String("request_id", rid), zap.String("employee_id", id))
		return employeeerrors.ErrEmployeeNotFound
	}

	if s.outbox != nil {
		event, err := kafka.NewEvent(rid, "employee", id, events.EventEmployeeDeleted, events.EmployeeLifecycleTopic,
			events.EmployeeDeletedEvent{
				EventType:         events.EventEmployeeDeleted,
				RequestID:         rid,
				EmployeeID:        id,
				EmployeeCode:      emp.EmployeeCode,
				AttendanceRemoved: removed,
				OccurredAt:        time.Now().UTC(),
			})
		if err != nil {
			s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
			return apperror.Wrap(err, apperror.CodeInternalError, apperror.ErrInternal.Message)
		}
		if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
			s.logger.Error("delete employee outbox persist failed", zap.String("request_id", rid), zap.Error(err))
			return apperror.Store(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return mapRepositoryError(err)
	}

	cache.Invalidate(ctx, s.rdb, s.logger, cache.DirectoryKeys...)

	s.logger.Info("delete employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", id),
		zap.String("employee_code", emp.EmployeeCode),
		zap.Int64("attendance_removed", removed),
	)
	return nil
}

func (s *service) Search(ctx context.Context, query string) ([]EmployeeResponse, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return s.GetAll(ctx)
	}

	s.logger.Debug("search employees requested", zap.String("query", q))

	emps, err := s.repo.Search(ctx, q)
	if err != nil {
		s.logger.Error("search employees failed", zap.String("query", q), zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(emps), nil
}

func (s *service) ListDepartments(ctx context.Context) ([]string, error) {
	var cached []string
	if ok, err := cache.GetJSON(ctx, s.rdb, cache.DepartmentsKey, &cached); err != nil {
		s.logger.Warn("read departments cache failed", zap.Error(err))
	} else if ok {
		return cached, nil
	}

	// The fill outlives any single caller: every waiter shares its result.
	fillCtx := context.WithoutCancel(ctx)
	v, err, _ := s.sf.Do(cache.DepartmentsKey, func() (interface{}, error) {
		gen, genErr := cache.Generation(fillCtx, s.rdb, cache.DepartmentsKey)
		if genErr != nil {
			s.logger.Warn("read departments cache generation failed", zap.Error(genErr))
		}

		departments, err := s.repo.ListDepartments(fillCtx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}
		if departments == nil {
			departments = []string{}
		}

		if genErr == nil {
			if _, err := cache.SetJSONIfGeneration(fillCtx, s.rdb, cache.DepartmentsKey, gen, departments, departmentsCacheTTL); err != nil {
				s.logger.Warn("write departments cache failed", zap.Error(err))
			}
		}
		return departments, nil
	})
	if err != nil {
		s.logger.Error("list departments failed", zap.Error(err))
		return nil, err
	}

	return v.([]string), nil
}
