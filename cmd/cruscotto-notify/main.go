// Command cruscotto-notify publishes a chart refresh event, telling
// running servers to drop the chart's cached rows. Ingest jobs call it
// after loading new data; with no chart id every cached window is
// dropped.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"cruscotto/internal/amqp"
	"cruscotto/internal/config"
)

func main() {
	chartID := flag.String("chart", "", "chart id to refresh (empty refreshes all charts)")
	flag.Parse()

	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required to publish refresh events")
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := amqpClient.PublishChartRefresh(ctx, *chartID); err != nil {
		logger.Error("Failed to publish chart refresh", "error", err, "chart_id", *chartID)
		os.Exit(1)
	}

	logger.Info("Chart refresh published", "chart_id", *chartID, "exchange", cfg.AMQPExchange)
}
