package events

import "time"

// Evento publicado no tópico "match_results" quando uma partida termina
// (ou é cancelada). Carrega o placar final e dispara a liquidação.
type MatchResult struct {
	MatchID   string    `json:"match_id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	Status    string    `json:"status"` // "COMPLETED" | "CANCELLED"
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Source    string    `json:"source"` // "results-simulator"
}
