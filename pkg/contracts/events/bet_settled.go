package events

import "time"

// Evento emitido exatamente uma vez por transição terminal de uma aposta.
// Consumido pelo leaderboard-worker (e por qualquer ledger externo).
type BetSettled struct {
	BetID        string    `json:"bet_id"`
	UserID       string    `json:"user_id"`
	Kind         string    `json:"kind"`   // "SINGLE" | "PARLAY"
	Status       string    `json:"status"` // "WON" | "LOST" | "PUSH" | "CANCELLED"
	Stake        int64     `json:"stake"`
	ActualPayout float64   `json:"actual_payout"`
	LegCount     int       `json:"leg_count"`
	SettledAt    time.Time `json:"settled_at"`
}
