package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/radieske/wager-settlement-engine/internal/engine/model"
	"github.com/radieske/wager-settlement-engine/internal/engine/odds"
)

// MatchProvider fornece dados mestre de partida (coleção externa, só leitura)
type MatchProvider interface {
	Match(ctx context.Context, matchID string) (model.Match, error)
}

// Store persiste a aposta recém-criada com suas pernas
type Store interface {
	CreateBet(ctx context.Context, b *model.Bet) error
}

// ProposedPick é a perna proposta pelo chamador, com a cotação obtida
// do provedor de odds no momento do pedido. Para SPREAD a Line vem
// cotada para o lado selecionado; a fábrica normaliza para o mandante.
type ProposedPick struct {
	MatchID   string
	Market    model.Market
	Selection model.Selection
	Odds      int
	Line      *float64
}

// Factory valida e constrói apostas no momento da criação.
// Não guarda estado próprio; tudo vai para o Store.
type Factory struct {
	matches MatchProvider
	store   Store
	now     func() time.Time
}

func New(matches MatchProvider, store Store) *Factory {
	return &Factory{matches: matches, store: store, now: time.Now}
}

// Place valida as pernas propostas e cria a aposta com odds travadas.
// Qualquer erro de validação é devolvido sem criar nada.
func (f *Factory) Place(ctx context.Context, userID string, stake int64, proposals []ProposedPick) (*model.Bet, error) {
	if stake <= 0 {
		return nil, fmt.Errorf("%w: %d", model.ErrInvalidStake, stake)
	}
	if len(proposals) == 0 {
		return nil, model.ErrNoPicks
	}

	now := f.now()
	seen := make(map[string]bool, len(proposals))
	picks := make([]model.Pick, 0, len(proposals))
	decimals := make([]float64, 0, len(proposals))

	for _, prop := range proposals {
		if err := validateShape(prop); err != nil {
			return nil, err
		}

		// magnitude mínima de 100 (convenção de odds americanas)
		decimal, err := odds.Decimal(prop.Odds)
		if err != nil {
			return nil, err
		}

		// uma perna por (partida, mercado) dentro da mesma aposta
		legKey := prop.MatchID + "|" + string(prop.Market)
		if seen[legKey] {
			return nil, fmt.Errorf("%w: match %s market %s", model.ErrDuplicateLeg, prop.MatchID, prop.Market)
		}
		seen[legKey] = true

		m, err := f.matches.Match(ctx, prop.MatchID)
		if err != nil {
			return nil, fmt.Errorf("load match %s: %w", prop.MatchID, err)
		}

		// apostas travam no início do jogo; nada de aposta ao vivo aqui
		if m.Status != model.MatchScheduled && m.Status != model.MatchLive {
			return nil, fmt.Errorf("%w: match %s status %s", model.ErrBetLocked, m.ID, m.Status)
		}
		if !m.StartTime.After(now) {
			return nil, fmt.Errorf("%w: match %s started at %s", model.ErrBetLocked, m.ID, m.StartTime.Format(time.RFC3339))
		}

		picks = append(picks, model.Pick{
			MatchID:   prop.MatchID,
			Market:    prop.Market,
			Selection: prop.Selection,
			Odds:      prop.Odds,
			Line:      normalizeLine(prop),
		})
		decimals = append(decimals, decimal)
	}

	combined, err := odds.Combined(decimals)
	if err != nil {
		return nil, err
	}

	kind := model.KindSingle
	if len(picks) > 1 {
		kind = model.KindParlay
	}

	bet := &model.Bet{
		UserID:          userID,
		Kind:            kind,
		Stake:           stake,
		PotentialPayout: odds.Payout(stake, combined),
		Status:          model.BetPending,
		Picks:           picks,
		PlacedAt:        now,
	}

	if err := f.store.CreateBet(ctx, bet); err != nil {
		return nil, fmt.Errorf("persist bet: %w", err)
	}

	return bet, nil
}

// validateShape confere se a combinação mercado/seleção/linha é uma das
// três formas suportadas
func validateShape(p ProposedPick) error {
	switch p.Market {
	case model.MarketMoneyline:
		if (p.Selection == model.SelectionHome || p.Selection == model.SelectionAway) && p.Line == nil {
			return nil
		}
	case model.MarketSpread:
		if (p.Selection == model.SelectionHome || p.Selection == model.SelectionAway) && p.Line != nil {
			return nil
		}
	case model.MarketTotal:
		if (p.Selection == model.SelectionOver || p.Selection == model.SelectionUnder) && p.Line != nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %s/%s", model.ErrUnsupportedMarket, p.Market, p.Selection)
}

// normalizeLine armazena a linha de spread sempre relativa ao mandante:
// cotação do visitante troca de sinal. Totais e moneyline passam direto.
func normalizeLine(p ProposedPick) *float64 {
	if p.Line == nil {
		return nil
	}
	line := *p.Line
	if p.Market == model.MarketSpread && p.Selection == model.SelectionAway {
		line = -line
	}
	return &line
}
