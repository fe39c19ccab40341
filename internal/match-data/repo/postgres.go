package repo

import (
	"context"
	"database/sql"

	"github.com/radieske/wager-settlement-engine/internal/engine/model"
	"github.com/radieske/wager-settlement-engine/pkg/contracts/events"
)

// Postgres é a projeção local do provedor externo de partidas.
// O engine só lê daqui; a escrita acontece na ingestão de resultados.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Match carrega uma partida pelo id
func (p *Postgres) Match(ctx context.Context, matchID string) (model.Match, error) {
	var m model.Match
	err := p.db.QueryRowContext(ctx, `
		SELECT id,home_team,away_team,start_time,status,home_score,away_score
		FROM matches WHERE id=$1`, matchID).
		Scan(&m.ID, &m.HomeTeam, &m.AwayTeam, &m.StartTime, &m.Status, &m.HomeScore, &m.AwayScore)
	if err != nil {
		return model.Match{}, err
	}
	return m, nil
}

// UpsertScheduled registra (ou reagenda) uma partida futura.
// Usado pela carga do provedor externo e pelo simulador local.
func (p *Postgres) UpsertScheduled(ctx context.Context, m model.Match) error {
	const q = `
		INSERT INTO matches (id, home_team, away_team, start_time, status)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET
		  start_time = EXCLUDED.start_time,
		  status     = EXCLUDED.status
	`
	_, err := p.db.ExecContext(ctx, q, m.ID, m.HomeTeam, m.AwayTeam, m.StartTime, m.Status)
	return err
}

// UpsertResult grava o desfecho de uma partida vindo do evento de
// resultado. ON CONFLICT cobre reentregas e partidas ainda não vistas.
func (p *Postgres) UpsertResult(ctx context.Context, e events.MatchResult) error {
	const q = `
		INSERT INTO matches
		  (id, home_team, away_team, start_time, status, home_score, away_score, ended_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET
		  status     = EXCLUDED.status,
		  home_score = EXCLUDED.home_score,
		  away_score = EXCLUDED.away_score,
		  ended_at   = EXCLUDED.ended_at
	`
	_, err := p.db.ExecContext(ctx, q,
		e.MatchID, e.HomeTeam, e.AwayTeam, e.StartedAt, e.Status,
		e.HomeScore, e.AwayScore, e.EndedAt,
	)
	return err
}
