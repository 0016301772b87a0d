package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-ops/internal/queue"
)

var consumeLogDir string

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Consume purchase_order.received events into the receiving log",
	RunE:  runConsume,
}

func init() {
	consumeCmd.Flags().StringVar(&consumeLogDir, "log-dir", "logs", "directory that holds receiving.log")
}

func runConsume(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := &queue.Consumer{URL: cfg.AMQPURL, LogDir: consumeLogDir, Log: log}
	log.Info("receiving consumer started", zap.String("queue", queue.ReceivedQueueName), zap.String("log_dir", consumeLogDir))
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("receiving consumer stopped")
	return nil
}
