package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/wager-settlement-engine/internal/engine/model"
	"github.com/radieske/wager-settlement-engine/pkg/contracts/events"
)

// KafkaPublisher publica eventos de aposta nos tópicos bet_placed e
// bet_settled. Um writer por tópico, injetados pelo main.
type KafkaPublisher struct {
	PlacedWriter  *kafka.Writer
	SettledWriter *kafka.Writer
}

func NewKafkaPublisher(placed, settled *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{PlacedWriter: placed, SettledWriter: settled}
}

func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, b model.Bet) error {
	legs := make([]events.PlacedLeg, 0, len(b.Picks))
	for _, pk := range b.Picks {
		legs = append(legs, events.PlacedLeg{
			MatchID:   pk.MatchID,
			Market:    string(pk.Market),
			Selection: string(pk.Selection),
			Odds:      pk.Odds,
			Line:      pk.Line,
		})
	}

	e := events.BetPlaced{
		BetID:           b.ID,
		UserID:          b.UserID,
		Kind:            string(b.Kind),
		Stake:           b.Stake,
		PotentialPayout: b.PotentialPayout,
		Legs:            legs,
		TsUnixMs:        time.Now().UnixMilli(),
	}
	buf, _ := json.Marshal(e)
	return p.PlacedWriter.WriteMessages(ctx, kafka.Message{Key: []byte(b.ID), Value: buf})
}

// BetSettled satisfaz o Notifier do engine: uma mensagem por transição
// terminal, chaveada pelo id da aposta
func (p *KafkaPublisher) BetSettled(ctx context.Context, b model.Bet) error {
	settledAt := time.Now().UTC()
	if b.SettledAt != nil {
		settledAt = *b.SettledAt
	}

	e := events.BetSettled{
		BetID:        b.ID,
		UserID:       b.UserID,
		Kind:         string(b.Kind),
		Status:       string(b.Status),
		Stake:        b.Stake,
		ActualPayout: b.ActualPayout,
		LegCount:     len(b.Picks),
		SettledAt:    settledAt,
	}
	buf, _ := json.Marshal(e)
	return p.SettledWriter.WriteMessages(ctx, kafka.Message{Key: []byte(b.ID), Value: buf})
}
