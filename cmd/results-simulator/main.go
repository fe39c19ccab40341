package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	betodds "github.com/radieske/wager-settlement-engine/internal/bet-service/odds"
	"github.com/radieske/wager-settlement-engine/internal/engine/model"
	mrepo "github.com/radieske/wager-settlement-engine/internal/match-data/repo"
	"github.com/radieske/wager-settlement-engine/internal/shared/cache"
	"github.com/radieske/wager-settlement-engine/internal/shared/config"
	"github.com/radieske/wager-settlement-engine/internal/shared/db"
	skafka "github.com/radieske/wager-settlement-engine/internal/shared/kafka"
	"github.com/radieske/wager-settlement-engine/internal/shared/logger"
	"github.com/radieske/wager-settlement-engine/internal/shared/metrics"
	"github.com/radieske/wager-settlement-engine/pkg/contracts/events"
)

// Duplas fixas para gerar confrontos simulados
var teamPairs = [][2]string{
	{"Los Angeles Lakers", "Boston Celtics"},
	{"Golden State Warriors", "Miami Heat"},
	{"Milwaukee Bucks", "Phoenix Suns"},
	{"Denver Nuggets", "Dallas Mavericks"},
}

var (
	// Métricas Prometheus do simulador
	quotesPublished = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulator_quotes_published_total",
		Help: "cotações publicadas no snapshot",
	})
	resultsPublished = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulator_results_published_total",
		Help: "resultados de partida publicados",
	})
)

// simMatch é uma partida viva no catálogo do simulador
type simMatch struct {
	model.Match
	spreadLine float64
	totalLine  float64
}

// simulator faz as vezes dos colaboradores externos: provedor de
// partidas (Postgres), provedor de odds (snapshot Redis) e feed de
// resultados (Kafka)
type simulator struct {
	log     *zap.Logger
	matches *mrepo.Postgres
	quotes  *betodds.Source
	writer  *kafka.Writer
	source  string

	mu      sync.Mutex
	catalog map[string]*simMatch
}

// ensureUpcoming mantém sempre um confronto agendado por dupla de times
func (s *simulator) ensureUpcoming(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inPlay := make(map[string]bool)
	for _, m := range s.catalog {
		inPlay[m.HomeTeam] = true
	}

	for _, pair := range teamPairs {
		if inPlay[pair[0]] {
			continue
		}
		m := &simMatch{
			Match: model.Match{
				ID:        uuid.NewString(),
				HomeTeam:  pair[0],
				AwayTeam:  pair[1],
				StartTime: time.Now().UTC().Add(3 * time.Minute),
				Status:    model.MatchScheduled,
			},
			spreadLine: -(0.5 + float64(rand.Intn(16))), // -0.5 a -15.5 pro mandante
			totalLine:  200.5 + float64(rand.Intn(50)),
		}
		if err := s.matches.UpsertScheduled(ctx, m.Match); err != nil {
			s.log.Warn("match seed failed", zap.String("match_id", m.ID), zap.Error(err))
			continue
		}
		s.catalog[m.ID] = m
		s.log.Info("match scheduled",
			zap.String("match_id", m.ID),
			zap.String("matchup", m.AwayTeam+" @ "+m.HomeTeam),
		)
	}
}

// refreshQuotes republica cotações com um passeio aleatório leve
func (s *simulator) refreshQuotes(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.catalog {
		if m.Status != model.MatchScheduled {
			continue
		}

		home := -(110 + rand.Intn(120)) // mandante favorito
		away := 100 + rand.Intn(140)
		spread := m.spreadLine
		total := m.totalLine

		publish := func(market, selection string, q betodds.Quote) {
			if err := s.quotes.Publish(ctx, m.ID, market, selection, q); err != nil {
				s.log.Warn("quote publish failed", zap.String("match_id", m.ID), zap.Error(err))
				return
			}
			quotesPublished.Inc()
		}

		publish("MONEYLINE", "HOME", betodds.Quote{Odds: home})
		publish("MONEYLINE", "AWAY", betodds.Quote{Odds: away})
		publish("SPREAD", "HOME", betodds.Quote{Odds: -110, Line: &spread})
		awaySpread := -spread
		publish("SPREAD", "AWAY", betodds.Quote{Odds: -110, Line: &awaySpread})
		publish("TOTAL", "OVER", betodds.Quote{Odds: -110, Line: &total})
		publish("TOTAL", "UNDER", betodds.Quote{Odds: -110, Line: &total})
	}
}

// finishStarted encerra partidas que já "jogaram" e publica o resultado
func (s *simulator) finishStarted(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for id, m := range s.catalog {
		if m.Status != model.MatchScheduled || m.StartTime.After(now.Add(-2*time.Minute)) {
			continue
		}

		ev := events.MatchResult{
			MatchID:   m.ID,
			HomeTeam:  m.HomeTeam,
			AwayTeam:  m.AwayTeam,
			Status:    string(model.MatchCompleted),
			HomeScore: 90 + rand.Intn(40),
			AwayScore: 90 + rand.Intn(40),
			StartedAt: m.StartTime,
			EndedAt:   now,
			Source:    s.source,
		}
		// de vez em quando o jogo cai
		if rand.Intn(100) < 5 {
			ev.Status = string(model.MatchCancelled)
			ev.HomeScore, ev.AwayScore = 0, 0
		}

		buf, _ := json.Marshal(ev)
		if err := skafka.WriteJSON(ctx, s.writer, m.ID, buf); err != nil {
			s.log.Warn("result publish failed", zap.String("match_id", m.ID), zap.Error(err))
			continue
		}
		resultsPublished.Inc()
		delete(s.catalog, id)

		s.log.Info("match result published",
			zap.String("match_id", m.ID),
			zap.String("status", ev.Status),
			zap.Int("home", ev.HomeScore),
			zap.Int("away", ev.AwayScore),
		)
	}
}

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

	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	writer := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchResults)
	defer writer.Close()

	prometheus.MustRegister(quotesPublished, resultsPublished)

	sim := &simulator{
		log:     log,
		matches: mrepo.NewPostgres(pg),
		quotes:  betodds.NewSource(rdb),
		writer:  writer,
		source:  cfg.ServiceName,
		catalog: make(map[string]*simMatch),
	}

	ctx := context.Background()
	sim.ensureUpcoming(ctx)
	sim.refreshQuotes(ctx)

	c := cron.New(cron.WithSeconds())
	_, _ = c.AddFunc("*/15 * * * * *", func() { sim.refreshQuotes(ctx) })
	_, _ = c.AddFunc("0 * * * * *", func() { sim.ensureUpcoming(ctx) })
	_, _ = c.AddFunc("30 * * * * *", func() { sim.finishStarted(ctx) })
	c.Start()

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		return rdb.Ping(ctx).Err()
	})

	log.Info("results-simulator running", zap.String("metrics_port", cfg.MetricsPort))
	select {}
}
