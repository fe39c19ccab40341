package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/radieske/wager-settlement-engine/internal/engine/model"
)

// Postgres implementa a persistência de apostas e pernas.
// É o Store da fábrica e o BetStore do engine de liquidação.
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// CreateBet insere a aposta e suas pernas numa transação única,
// atribuindo ids. Os campos de odds/linha já chegam travados.
func (p *Postgres) CreateBet(ctx context.Context, b *model.Bet) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	b.ID = uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO bets (id,user_id,kind,stake,potential_payout,actual_payout,status,placed_at)
		VALUES ($1,$2,$3,$4,$5,0,$6,$7)`,
		b.ID, b.UserID, b.Kind, b.Stake, b.PotentialPayout, b.Status, b.PlacedAt,
	)
	if err != nil {
		return err
	}

	for i := range b.Picks {
		pk := &b.Picks[i]
		pk.ID = uuid.NewString()
		pk.BetID = b.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO bet_picks (id,bet_id,match_id,market,selection,odds,line)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			pk.ID, pk.BetID, pk.MatchID, pk.Market, pk.Selection, pk.Odds, pk.Line,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetBet carrega uma aposta com suas pernas
func (p *Postgres) GetBet(ctx context.Context, betID string) (model.Bet, error) {
	var b model.Bet
	err := p.db.QueryRowContext(ctx, `
		SELECT id,user_id,kind,stake,potential_payout,actual_payout,status,placed_at,settled_at
		FROM bets WHERE id=$1`, betID).
		Scan(&b.ID, &b.UserID, &b.Kind, &b.Stake, &b.PotentialPayout, &b.ActualPayout, &b.Status, &b.PlacedAt, &b.SettledAt)
	if err != nil {
		return model.Bet{}, err
	}

	picks, err := p.loadPicks(ctx, b.ID)
	if err != nil {
		return model.Bet{}, err
	}
	b.Picks = picks
	return b, nil
}

// PendingByMatch lista as apostas PENDING que têm alguma perna na partida
func (p *Postgres) PendingByMatch(ctx context.Context, matchID string) ([]model.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT DISTINCT b.id,b.user_id,b.kind,b.stake,b.potential_payout,b.actual_payout,b.status,b.placed_at,b.settled_at
		FROM bets b
		JOIN bet_picks pk ON pk.bet_id = b.id
		WHERE pk.match_id=$1 AND b.status='PENDING'
		ORDER BY b.id`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bets []model.Bet
	for rows.Next() {
		var b model.Bet
		if err := rows.Scan(&b.ID, &b.UserID, &b.Kind, &b.Stake, &b.PotentialPayout, &b.ActualPayout, &b.Status, &b.PlacedAt, &b.SettledAt); err != nil {
			return nil, err
		}
		bets = append(bets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range bets {
		picks, err := p.loadPicks(ctx, bets[i].ID)
		if err != nil {
			return nil, err
		}
		bets[i].Picks = picks
	}
	return bets, nil
}

func (p *Postgres) loadPicks(ctx context.Context, betID string) ([]model.Pick, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id,bet_id,match_id,market,selection,odds,line,COALESCE(result,'')
		FROM bet_picks WHERE bet_id=$1 ORDER BY id`, betID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var picks []model.Pick
	for rows.Next() {
		var pk model.Pick
		if err := rows.Scan(&pk.ID, &pk.BetID, &pk.MatchID, &pk.Market, &pk.Selection, &pk.Odds, &pk.Line, &pk.Result); err != nil {
			return nil, err
		}
		picks = append(picks, pk)
	}
	return picks, rows.Err()
}

// SettleIfPending faz a transição terminal condicionada a status='PENDING'
// (compare-and-swap). Se outra entrega chegou antes, devolve false sem
// erro e não toca nos resultados das pernas.
func (p *Postgres) SettleIfPending(ctx context.Context, betID string, status model.BetStatus, payout float64, results map[string]model.PickResult) (bool, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE bets SET status=$2, actual_payout=$3, settled_at=NOW()
		WHERE id=$1 AND status='PENDING'`,
		betID, status, payout,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil // já liquidada em outro lugar
	}

	for pickID, result := range results {
		if _, err := tx.ExecContext(ctx,
			`UPDATE bet_picks SET result=$2 WHERE id=$1`, pickID, result); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// CancelIfPending cancela uma aposta PENDING do usuário, devolvendo a
// stake. Mesma disciplina de CAS da liquidação; false = nada a fazer.
func (p *Postgres) CancelIfPending(ctx context.Context, betID, userID string) (bool, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE bets SET status='CANCELLED', actual_payout=stake, settled_at=NOW()
		WHERE id=$1 AND user_id=$2 AND status='PENDING'`,
		betID, userID,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE bet_picks SET result='VOID' WHERE bet_id=$1`, betID); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}
