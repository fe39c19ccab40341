package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/radieske/wager-settlement-engine/pkg/contracts/events"
)

// Postgres mantém os agregados de desempenho por usuário, como projeção
// downstream dos eventos bet_settled. Nada aqui influencia o payout.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Apply incorpora uma liquidação ao placar do usuário.
// Usa lock pessimista na linha pra aguentar workers concorrentes.
func (p *Postgres) Apply(ctx context.Context, e events.BetSettled) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var (
		id         string
		totalBets  int64
		parlays    int64
		won        int64
		lost       int64
		pushed     int64
		wagered    int64
		totalWon   float64
		streak     int64
		bestStreak int64
		biggestWin float64
	)

	err = tx.QueryRowContext(ctx, `
		SELECT id,total_bets,total_parlays,bets_won,bets_lost,bets_pushed,
		       total_wagered,total_won,current_streak,best_win_streak,biggest_win
		FROM leaderboards WHERE user_id=$1 FOR UPDATE`, e.UserID).
		Scan(&id, &totalBets, &parlays, &won, &lost, &pushed,
			&wagered, &totalWon, &streak, &bestStreak, &biggestWin)
	if err == sql.ErrNoRows {
		id = uuid.NewString()
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO leaderboards
			  (id,user_id,total_bets,total_parlays,bets_won,bets_lost,bets_pushed,
			   total_wagered,total_won,net_profit,win_percentage,current_streak,best_win_streak,biggest_win)
			VALUES ($1,$2,0,0,0,0,0,0,0,0,0,0,0,0)`, id, e.UserID); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	totalBets++
	if e.Kind == "PARLAY" {
		parlays++
	}
	wagered += e.Stake
	totalWon += e.ActualPayout

	switch e.Status {
	case "WON":
		won++
		if streak >= 0 {
			streak++
		} else {
			streak = 1
		}
		if streak > bestStreak {
			bestStreak = streak
		}
		if e.ActualPayout > biggestWin {
			biggestWin = e.ActualPayout
		}
	case "LOST":
		lost++
		if streak <= 0 {
			streak--
		} else {
			streak = -1
		}
	case "PUSH", "CANCELLED":
		pushed++
	}

	winPct := 0.0
	if decided := won + lost; decided > 0 {
		winPct = float64(won) / float64(decided) * 100
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE leaderboards SET
		  total_bets=$2, total_parlays=$3, bets_won=$4, bets_lost=$5, bets_pushed=$6,
		  total_wagered=$7, total_won=$8, net_profit=$9, win_percentage=$10,
		  current_streak=$11, best_win_streak=$12, biggest_win=$13,
		  last_settled_at=$14
		WHERE id=$1`,
		id, totalBets, parlays, won, lost, pushed,
		wagered, totalWon, totalWon-float64(wagered), winPct,
		streak, bestStreak, biggestWin, e.SettledAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}
