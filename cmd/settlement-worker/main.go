package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	kpub "github.com/radieske/wager-settlement-engine/internal/bet-service/producer"
	brepo "github.com/radieske/wager-settlement-engine/internal/bet-service/repo"
	"github.com/radieske/wager-settlement-engine/internal/engine/settlement"
	mrepo "github.com/radieske/wager-settlement-engine/internal/match-data/repo"
	"github.com/radieske/wager-settlement-engine/internal/settlement-worker/consumer"
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

	// Consumer de resultados + writers de saída (bet_settled e DLQ)
	reader := skafka.NewReader(cfg.KafkaBrokers, cfg.TopicMatchResults, cfg.ConsumerGroup)
	defer reader.Close()
	settledWriter := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer settledWriter.Close()
	dlqWriter := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchResultsDLQ)
	defer dlqWriter.Close()

	bets := brepo.NewPostgres(pg)
	matches := mrepo.NewPostgres(pg)
	notifier := kpub.NewKafkaPublisher(nil, settledWriter) // só bet_settled aqui
	engine := settlement.New(log, bets, matches, notifier)

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_messages_consumed_total", Help: "mensagens de resultado consumidas"})
	settled := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_runs_total", Help: "rodadas de liquidação concluídas"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, settled, errorsBy)

	proc := &consumer.Processor{
		Log:        log,
		Reader:     reader,
		Matches:    matches,
		Engine:     engine,
		DLQ:        dlqWriter,
		OnConsumed: func() { consumed.Inc() },
		OnSettled:  func() { settled.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Servidor HTTP para métricas e health check
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		return nil
	})

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("settlement-worker started")
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("settlement-worker stopped")
}
