package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	bhttp "github.com/radieske/wager-settlement-engine/internal/bet-service/http"
	betodds "github.com/radieske/wager-settlement-engine/internal/bet-service/odds"
	kpub "github.com/radieske/wager-settlement-engine/internal/bet-service/producer"
	"github.com/radieske/wager-settlement-engine/internal/bet-service/repo"
	"github.com/radieske/wager-settlement-engine/internal/engine/factory"
	mrepo "github.com/radieske/wager-settlement-engine/internal/match-data/repo"
	"github.com/radieske/wager-settlement-engine/internal/shared/cache"
	"github.com/radieske/wager-settlement-engine/internal/shared/config"
	"github.com/radieske/wager-settlement-engine/internal/shared/db"
	skafka "github.com/radieske/wager-settlement-engine/internal/shared/kafka"
	"github.com/radieske/wager-settlement-engine/internal/shared/logger"
	"github.com/radieske/wager-settlement-engine/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Redis (snapshot de cotações)
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writers (bet_placed e bet_settled — este último pros cancelamentos)
	placedWriter := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	defer placedWriter.Close()
	settledWriter := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer settledWriter.Close()

	// deps
	bets := repo.NewPostgres(pg)
	matches := mrepo.NewPostgres(pg)
	quotes := betodds.NewSource(rdb)
	publ := kpub.NewKafkaPublisher(placedWriter, settledWriter)
	fact := factory.New(matches, bets)

	// HTTP público
	api := bhttp.NewServer(log, bets, fact, quotes, matches, publ)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		return rdb.Ping(ctx).Err()
	})

	log.Info("bet-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
