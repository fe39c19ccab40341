package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/wager-settlement-engine/pkg/contracts/events"
)

// Scoreboard aplica uma liquidação aos agregados do usuário
type Scoreboard interface {
	Apply(ctx context.Context, e events.BetSettled) error
}

// Processor consome bet_settled e atualiza o leaderboard.
// Reprocessar o mesmo evento duas vezes infla contadores; o consumer
// group com commit de offset mantém isso raro e o placar é apenas
// informativo, então não há deduplicação aqui.
type Processor struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Board  Scoreboard

	OnConsumed func()
	OnApplied  func()
	OnError    func(string)
}

// Run inicia o loop principal de consumo
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		var ev events.BetSettled
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			continue
		}

		if err := p.Board.Apply(ctx, ev); err != nil {
			p.Log.Warn("leaderboard apply failed", zap.String("bet_id", ev.BetID), zap.Error(err))
			if p.OnError != nil {
				p.OnError("db_apply")
			}
			continue
		}
		if p.OnApplied != nil {
			p.OnApplied()
		}
	}
}
