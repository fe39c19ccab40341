package odds

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Quote é o snapshot corrente do provedor de odds para uma combinação
// (partida, mercado, seleção). A linha fica nil em moneyline.
type Quote struct {
	Odds int      `json:"odds"` // americana
	Line *float64 `json:"line,omitempty"`
}

// Source lê cotações do snapshot mantido no Redis pelo provedor externo
type Source struct {
	Rdb *redis.Client
}

func NewSource(r *redis.Client) *Source { return &Source{Rdb: r} }

// Chave "quote:{matchID}:{market}:{selection}" => JSON de Quote
func key(matchID, market, selection string) string {
	return fmt.Sprintf("quote:%s:%s:%s", matchID, market, selection)
}

// Current devolve a cotação corrente; redis.Nil quando não há cotação
func (s *Source) Current(ctx context.Context, matchID, market, selection string) (Quote, error) {
	val, err := s.Rdb.Get(ctx, key(matchID, market, selection)).Bytes()
	if err != nil {
		return Quote{}, err
	}

	var q Quote
	if err := json.Unmarshal(val, &q); err != nil {
		return Quote{}, fmt.Errorf("decode quote: %w", err)
	}
	return q, nil
}

// Publish grava a cotação corrente (usado pelo simulador local)
func (s *Source) Publish(ctx context.Context, matchID, market, selection string, q Quote) error {
	b, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return s.Rdb.Set(ctx, key(matchID, market, selection), b, 0).Err()
}
