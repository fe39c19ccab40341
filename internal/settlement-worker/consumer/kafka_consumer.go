package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/wager-settlement-engine/internal/engine/model"
	"github.com/radieske/wager-settlement-engine/internal/engine/settlement"
	skafka "github.com/radieske/wager-settlement-engine/internal/shared/kafka"
	"github.com/radieske/wager-settlement-engine/pkg/contracts/events"
)

// MatchSink persiste o desfecho da partida antes da liquidação
type MatchSink interface {
	UpsertResult(ctx context.Context, e events.MatchResult) error
}

// Processor consome eventos de resultado do Kafka, grava o desfecho e
// dispara o engine de liquidação. Payload inválido vai pra DLQ.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa.
type Processor struct {
	Log     *zap.Logger
	Reader  *kafka.Reader
	Matches MatchSink
	Engine  *settlement.Engine
	DLQ     *kafka.Writer

	OnConsumed func()       // métricas (counter++)
	OnSettled  func()       // métricas: rodada de liquidação concluída
	OnError    func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e processamento das mensagens Kafka
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
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

		var ev events.MatchResult
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.sendToDLQ(ctx, m, "decode: "+err.Error())
			if p.OnError != nil {
				p.OnError("decode")
			}
			continue
		}

		// só resultado terminal dispara liquidação
		status := model.MatchStatus(ev.Status)
		if !status.Resolved() {
			p.Log.Warn("ignoring non-terminal match status",
				zap.String("match_id", ev.MatchID),
				zap.String("status", ev.Status),
			)
			continue
		}

		// Grava o desfecho antes de liquidar; o engine lê daqui
		if err := p.Matches.UpsertResult(ctx, ev); err != nil {
			p.Log.Warn("match result upsert failed", zap.String("match_id", ev.MatchID), zap.Error(err))
			if p.OnError != nil {
				p.OnError("db_upsert")
			}
			continue
		}

		if err := p.Engine.SettleMatch(ctx, ev.MatchID); err != nil {
			p.Log.Warn("settlement run failed", zap.String("match_id", ev.MatchID), zap.Error(err))
			if p.OnError != nil {
				p.OnError("settle")
			}
			continue
		}
		if p.OnSettled != nil {
			p.OnSettled()
		}
	}
}

func (p *Processor) sendToDLQ(ctx context.Context, m kafka.Message, reason string) {
	p.Log.Warn("invalid message sent to dlq", zap.String("reason", reason))
	if p.DLQ == nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := skafka.WriteDLQ(wctx, p.DLQ, m.Key, m.Value, reason); err != nil {
		p.Log.Error("dlq write failed", zap.Error(err))
	}
}
