package settlement

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/radieske/wager-settlement-engine/internal/engine/model"
	"github.com/radieske/wager-settlement-engine/internal/engine/odds"
	"github.com/radieske/wager-settlement-engine/internal/engine/outcome"
)

// BetStore é a visão do engine sobre a persistência de apostas.
// SettleIfPending faz a transição condicional (compare-and-swap no
// status): devolve false sem erro quando a aposta já saiu de PENDING.
type BetStore interface {
	PendingByMatch(ctx context.Context, matchID string) ([]model.Bet, error)
	SettleIfPending(ctx context.Context, betID string, status model.BetStatus, payout float64, results map[string]model.PickResult) (bool, error)
}

// MatchProvider fornece partidas por id (só leitura)
type MatchProvider interface {
	Match(ctx context.Context, matchID string) (model.Match, error)
}

// Notifier recebe exatamente uma notificação por transição terminal
type Notifier interface {
	BetSettled(ctx context.Context, b model.Bet) error
}

// Engine liquida apostas PENDING quando uma partida referenciada ganha
// desfecho. Não tem estado próprio; a única escrita é o CAS no store.
type Engine struct {
	log      *zap.Logger
	bets     BetStore
	matches  MatchProvider
	notifier Notifier
}

func New(log *zap.Logger, bets BetStore, matches MatchProvider, notifier Notifier) *Engine {
	return &Engine{log: log, bets: bets, matches: matches, notifier: notifier}
}

// SettleMatch processa todas as apostas pendentes que referenciam a
// partida recém-resolvida. Falha numa aposta não impede as demais.
func (e *Engine) SettleMatch(ctx context.Context, matchID string) error {
	bets, err := e.bets.PendingByMatch(ctx, matchID)
	if err != nil {
		return fmt.Errorf("load pending bets for match %s: %w", matchID, err)
	}

	for i := range bets {
		if err := e.settleBet(ctx, bets[i]); err != nil {
			e.log.Warn("bet settlement failed",
				zap.String("bet_id", bets[i].ID),
				zap.String("match_id", matchID),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (e *Engine) settleBet(ctx context.Context, bet model.Bet) error {
	// guarda de idempotência; o CAS abaixo cobre a corrida
	if bet.Status.Terminal() {
		return nil
	}

	matchCache := make(map[string]model.Match, len(bet.Picks))
	results := make(map[string]model.PickResult, len(bet.Picks))

	for _, pick := range bet.Picks {
		m, ok := matchCache[pick.MatchID]
		if !ok {
			var err error
			m, err = e.matches.Match(ctx, pick.MatchID)
			if err != nil {
				return fmt.Errorf("load match %s: %w", pick.MatchID, err)
			}
			matchCache[pick.MatchID] = m
		}

		res, err := outcome.Evaluate(pick, m)
		if errors.Is(err, model.ErrNotSettleable) {
			// alguma perna ainda em aberto: adia a aposta inteira até o
			// próximo resultado chegar
			e.log.Debug("bet deferred",
				zap.String("bet_id", bet.ID),
				zap.String("waiting_match", pick.MatchID),
			)
			return nil
		}
		if err != nil {
			return err
		}
		results[pick.ID] = res
	}

	status, payout, err := resolve(bet, results)
	if err != nil {
		return err
	}

	applied, err := e.bets.SettleIfPending(ctx, bet.ID, status, payout, results)
	if err != nil {
		return fmt.Errorf("settle bet %s: %w", bet.ID, err)
	}
	if !applied {
		// outra entrega chegou primeiro; no-op esperado, sem notificação
		return nil
	}

	bet.Status = status
	bet.ActualPayout = payout
	for i := range bet.Picks {
		bet.Picks[i].Result = results[bet.Picks[i].ID]
	}

	e.log.Info("bet settled",
		zap.String("bet_id", bet.ID),
		zap.String("status", string(status)),
		zap.Float64("payout", payout),
	)

	if err := e.notifier.BetSettled(ctx, bet); err != nil {
		return fmt.Errorf("notify settlement of bet %s: %w", bet.ID, err)
	}
	return nil
}

// resolve agrega os resultados das pernas:
//   - qualquer derrota perde tudo;
//   - só push/void devolve a stake;
//   - senão ganha, recalculando as odds combinadas apenas com as pernas
//     vencedoras (push/void sai do produto — convenção padrão de parlay).
//     Single vencedora paga o potencial travado na criação.
func resolve(bet model.Bet, results map[string]model.PickResult) (model.BetStatus, float64, error) {
	anyLost := false
	var winners []model.Pick

	for _, pick := range bet.Picks {
		switch results[pick.ID] {
		case model.PickLost:
			anyLost = true
		case model.PickWon:
			winners = append(winners, pick)
		}
	}

	if anyLost {
		return model.BetLost, 0, nil
	}
	if len(winners) == 0 {
		return model.BetPush, float64(bet.Stake), nil
	}

	if bet.Kind == model.KindSingle {
		return model.BetWon, bet.PotentialPayout, nil
	}

	decimals := make([]float64, 0, len(winners))
	for _, pick := range winners {
		d, err := odds.Decimal(pick.Odds)
		if err != nil {
			return "", 0, fmt.Errorf("locked odds of pick %s: %w", pick.ID, err)
		}
		decimals = append(decimals, d)
	}

	combined, err := odds.Combined(decimals)
	if err != nil {
		return "", 0, err
	}
	return model.BetWon, odds.Payout(bet.Stake, combined), nil
}
