package dashboard

import (
	"context"
	"database/sql"
	"time"

	"hrms-lite/internal/attendance"
	"hrms-lite/internal/shared/apperror"
	"hrms-lite/internal/shared/cache"
	"hrms-lite/internal/shared/clock"
	"hrms-lite/internal/shared/contextutil"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const defaultStatsTTL = 30 * time.Second

//go:generate mockgen -source=dashboard_service.go -destination=mock/dashboard_service_mock.go -package=mock
type Service interface {
	GetStats(ctx context.Context) (StatsResponse, error)
}

type service struct {
	db       *gorm.DB
	repo     Repository
	clock    clock.Clock
	rdb      *redis.Client
	statsTTL time.Duration
	sf       *singleflight.Group
	logger   *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	clk clock.Clock,
	rdb *redis.Client,
	statsTTL time.Duration,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("dashboard.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("dashboard.service")
	}
	if clk == nil {
		clk = clock.New(time.UTC)
	}
	if statsTTL <= 0 {
		statsTTL = defaultStatsTTL
	}
	return &service{
		db:       db,
		repo:     repo,
		clock:    clk,
		rdb:      rdb,
		statsTTL: statsTTL,
		sf:       &singleflight.Group{},
		logger:   l,
	}
}

// GetStats serves the cached snapshot for today when there is one, and
// otherwise recomputes it inside one read-only transaction. Cache failures
// are logged and never fail the call.
func (s *service) GetStats(ctx context.Context) (StatsResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	today := s.clock.Today().Format(clock.DateLayout)
	s.logger.Debug("dashboard stats requested", zap.String("request_id", rid), zap.String("today", today))

	var cached cachedStats
	if ok, err := cache.GetJSON(ctx, s.rdb, cache.DashboardStatsKey, &cached); err != nil {
		s.logger.Warn("read dashboard cache failed", zap.String("request_id", rid), zap.Error(err))
	} else if ok && cached.Date == today {
		return cached.Stats, nil
	}

	// The fill outlives any single caller: every waiter shares its result.
	fillCtx := context.WithoutCancel(ctx)
	v, err, _ := s.sf.Do(cache.DashboardStatsKey+":"+today, func() (interface{}, error) {
		gen, genErr := cache.Generation(fillCtx, s.rdb, cache.DashboardStatsKey)
		if genErr != nil {
			s.logger.Warn("read dashboard cache generation failed", zap.String("request_id", rid), zap.Error(genErr))
		}

		stats, err := s.compute(fillCtx, today)
		if err != nil {
			return nil, err
		}

		if genErr == nil {
			s.storeSnapshot(fillCtx, rid, gen, cachedStats{Date: today, Stats: stats})
		}
		return stats, nil
	})
	if err != nil {
		s.logger.Error("dashboard stats failed", zap.String("request_id", rid), zap.Error(err))
		return StatsResponse{}, err
	}

	return v.(StatsResponse), nil
}

// storeSnapshot caches entry unless a mutation invalidated the stats after
// gen was read, in which case entry may predate that mutation.
func (s *service) storeSnapshot(ctx context.Context, rid string, gen int64, entry cachedStats) {
	written, err := cache.SetJSONIfGeneration(ctx, s.rdb, cache.DashboardStatsKey, gen, entry, s.statsTTL)
	switch {
	case err != nil:
		s.logger.Warn("write dashboard cache failed", zap.String("request_id", rid), zap.Error(err))
	case !written && s.rdb != nil:
		s.logger.Debug("dashboard snapshot superseded by a newer write", zap.String("request_id", rid), zap.Int64("generation", gen))
	}
}

func (s *service) compute(ctx context.Context, today string) (StatsResponse, error) {
	tx := s.db.WithContext(ctx).Begin(&sql.TxOptions{ReadOnly: true})
	if tx.Error != nil {
		return StatsResponse{}, apperror.Store(tx.Error)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	total, err := qtx.CountEmployees(ctx)
	if err != nil {
		return StatsResponse{}, apperror.Store(err)
	}

	date, err := clock.ParseDate(today)
	if err != nil {
		return StatsResponse{}, apperror.Wrap(err, apperror.CodeInternalError, apperror.ErrInternal.Message)
	}
	counts, err := qtx.CountByStatusOn(ctx, date)
	if err != nil {
		return StatsResponse{}, apperror.Store(err)
	}

	recent, err := qtx.RecentActivity(ctx, recentActivityLimit)
	if err != nil {
		return StatsResponse{}, apperror.Store(err)
	}

	if err := tx.Commit().Error; err != nil {
		return StatsResponse{}, apperror.Store(err)
	}

	stats := StatsResponse{
		TotalEmployees: total,
		RecentActivity: make([]ActivityItem, 0, len(recent)),
	}
	for _, c := range counts {
		switch c.Status {
		case attendance.StatusPresent:
			stats.TodayPresent += c.Count
		case attendance.StatusAbsent:
			stats.TodayAbsent += c.Count
		default:
			s.logger.Warn("dashboard unknown attendance status", zap.String("status", string(c.Status)))
		}
		stats.TodayTotal += c.Count
	}
	for _, a := range recent {
		stats.RecentActivity = append(stats.RecentActivity, toActivityItem(a))
	}

	return stats, nil
}

func toActivityItem(a attendance.Attendance) ActivityItem {
	item := ActivityItem{
		ID:                 a.ID.String(),
		EmployeeID:         a.EmployeeID.String(),
		EmployeeName:       unknownEmployeeName,
		EmployeeEmployeeID: "",
		Date:               a.Date.Format(clock.DateLayout),
		Status:             a.Status,
		CreatedAt:          a.CreatedAt,
	}
	if a.Employee != nil {
		item.EmployeeName = a.Employee.FullName
		item.EmployeeEmployeeID = a.Employee.EmployeeCode
	}
	return item
}
