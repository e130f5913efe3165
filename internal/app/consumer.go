package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hrms-lite/internal/config"
	"hrms-lite/internal/messaging/kafka/consumer"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const dashboardWarmerGroup = "hrms-lite-dashboard-warmer"

// RunConsumer keeps the dashboard cache warm from domain events until
// SIGINT/SIGTERM.
func RunConsumer(cfg *config.Config, logger *zap.Logger) error {
	log := logger.Named("app.consumer")

	if len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka brokers are required (KAFKA_BROKERS)")
	}

	infra, err := Connect(cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	services := NewServices(cfg, infra.DB, infra.Redis, logger)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        dashboardWarmerGroup,
		GroupTopics:    consumer.DashboardTopics,
		CommitInterval: 0,
		StartOffset:    kafkago.LastOffset,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer.ConsumeDashboardEvents(ctx, reader, services.Dashboard, logger)

	log.Info("consumer shut down")
	return nil
}
