package outcome

import (
	"fmt"

	"github.com/radieske/wager-settlement-engine/internal/engine/model"
)

// Evaluate determina o resultado de uma perna contra o desfecho da partida.
// Função pura de (pick, placar final); partida cancelada vira VOID e
// partida sem desfecho devolve ErrNotSettleable para adiar a liquidação.
func Evaluate(p model.Pick, m model.Match) (model.PickResult, error) {
	if m.Status == model.MatchCancelled {
		return model.PickVoid, nil
	}
	if m.Status != model.MatchCompleted || m.HomeScore == nil || m.AwayScore == nil {
		return "", fmt.Errorf("%w: match %s", model.ErrNotSettleable, m.ID)
	}

	home := *m.HomeScore
	away := *m.AwayScore

	switch p.Market {
	case model.MarketMoneyline:
		return evalMoneyline(p.Selection, home, away), nil

	case model.MarketSpread:
		if p.Line == nil {
			return "", fmt.Errorf("%w: spread pick %s without line", model.ErrNotSettleable, p.ID)
		}
		return evalSpread(p.Selection, *p.Line, home, away), nil

	case model.MarketTotal:
		if p.Line == nil {
			return "", fmt.Errorf("%w: total pick %s without line", model.ErrNotSettleable, p.ID)
		}
		return evalTotal(p.Selection, *p.Line, home, away), nil
	}

	return "", fmt.Errorf("%w: %s", model.ErrUnsupportedMarket, p.Market)
}

// Empate exato é PUSH para os dois lados (política uniforme entre esportes)
func evalMoneyline(sel model.Selection, home, away int) model.PickResult {
	if home == away {
		return model.PickPush
	}

	winner := model.SelectionHome
	if away > home {
		winner = model.SelectionAway
	}
	if sel == winner {
		return model.PickWon
	}
	return model.PickLost
}

// A linha chega sempre relativa ao mandante (normalizada na criação),
// então a fórmula é uma só: ajustado = mandante + linha vs visitante
func evalSpread(sel model.Selection, line float64, home, away int) model.PickResult {
	adjusted := float64(home) + line
	visitor := float64(away)

	if adjusted == visitor {
		return model.PickPush
	}

	homeCovers := adjusted > visitor
	if (sel == model.SelectionHome && homeCovers) || (sel == model.SelectionAway && !homeCovers) {
		return model.PickWon
	}
	return model.PickLost
}

func evalTotal(sel model.Selection, line float64, home, away int) model.PickResult {
	total := float64(home + away)

	if total == line {
		return model.PickPush
	}

	over := total > line
	if (sel == model.SelectionOver && over) || (sel == model.SelectionUnder && !over) {
		return model.PickWon
	}
	return model.PickLost
}
