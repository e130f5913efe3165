package consumer

import (
	"context"
	"encoding/json"
	"time"

	"hrms-lite/internal/dashboard"
	"hrms-lite/internal/events"
	"hrms-lite/internal/shared/contextutil"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const refreshAttempts = 3

// refreshBackoff is multiplied by the attempt number between retries.
var refreshBackoff = 500 * time.Millisecond

// DashboardTopics are the topics whose events change dashboard figures.
var DashboardTopics = []string{events.EmployeeLifecycleTopic, events.AttendanceMarkedTopic}

// MessageReader is the part of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type eventEnvelope struct {
	EventType string `json:"event_type"`
	RequestID string `json:"request_id"`
}

// ConsumeDashboardEvents refreshes the dashboard cache once per employee or
// attendance event, so the first read after a mutation is served warm.
// Undecodable or unknown messages are committed and skipped. A failed
// refresh is retried in place up to refreshAttempts times and then committed
// anyway: the group commits offsets, so any later commit would skip it too.
// Only a shutdown mid-retry leaves the message uncommitted.
func ConsumeDashboardEvents(
	ctx context.Context,
	reader MessageReader,
	dashboardService dashboard.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.dashboard_warmer")
	log.Info("dashboard warmer started", zap.Strings("topics", DashboardTopics))

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("dashboard warmer stopped")
				return
			}
			log.Error("fetch dashboard event failed", zap.Error(err))
			continue
		}

		if !handleDashboardEvent(ctx, msg, dashboardService, log) {
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit dashboard event failed",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

// handleDashboardEvent reports whether msg is done with and may be committed.
func handleDashboardEvent(ctx context.Context, msg kafkago.Message, svc dashboard.Service, log *zap.Logger) bool {
	var env eventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		log.Error("decode dashboard event failed",
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return true
	}

	switch env.EventType {
	case events.EventEmployeeCreated, events.EventEmployeeDeleted, events.EventAttendanceMarked:
	default:
		log.Warn("skipping unknown event type",
			zap.String("topic", msg.Topic),
			zap.String("event_type", env.EventType),
		)
		return true
	}

	ctx = contextutil.WithRequestID(ctx, env.RequestID)
	var stats dashboard.StatsResponse
	for attempt := 1; ; attempt++ {
		var err error
		stats, err = svc.GetStats(ctx)
		if err == nil {
			break
		}
		if attempt == refreshAttempts {
			log.Error("refresh dashboard stats failed, giving up",
				zap.String("event_type", env.EventType),
				zap.String("request_id", env.RequestID),
				zap.Int("attempts", attempt),
				zap.Error(err),
			)
			return true
		}
		log.Warn("refresh dashboard stats failed, retrying",
			zap.String("event_type", env.EventType),
			zap.String("request_id", env.RequestID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(refreshBackoff * time.Duration(attempt)):
		}
	}

	log.Info("dashboard stats refreshed",
		zap.String("event_type", env.EventType),
		zap.String("request_id", env.RequestID),
		zap.Int64("total_employees", stats.TotalEmployees),
		zap.Int64("today_total", stats.TodayTotal),
	)
	return true
}
