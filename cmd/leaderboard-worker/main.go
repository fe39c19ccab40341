package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/wager-settlement-engine/internal/leaderboard/consumer"
	lrepo "github.com/radieske/wager-settlement-engine/internal/leaderboard/repo"
	"github.com/radieske/wager-settlement-engine/internal/shared/config"
	"github.com/radieske/wager-settlement-engine/internal/shared/db"
	skafka "github.com/radieske/wager-settlement-engine/internal/shared/kafka"
	"github.com/radieske/wager-settlement-engine/internal/shared/logger"
	"github.com/radieske/wager-settlement-engine/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	reader := skafka.NewReader(cfg.KafkaBrokers, cfg.TopicBetSettled, cfg.ConsumerGroup)
	defer reader.Close()

	board := lrepo.NewPostgres(pg)

	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "leaderboard_messages_consumed_total", Help: "liquidações consumidas"})
	applied := prometheus.NewCounter(prometheus.CounterOpts{Name: "leaderboard_applies_total", Help: "liquidações aplicadas ao placar"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "leaderboard_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, applied, errorsBy)

	proc := &consumer.Processor{
		Log:        log,
		Reader:     reader,
		Board:      board,
		OnConsumed: func() { consumed.Inc() },
		OnApplied:  func() { applied.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		return nil
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("leaderboard-worker started")
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("leaderboard-worker stopped")
}
