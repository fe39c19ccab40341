package dto

import "time"

type PickResponse struct {
	ID        string   `json:"id"`
	MatchID   string   `json:"matchId"`
	Market    string   `json:"market"`
	Selection string   `json:"selection"`
	Odds      int      `json:"odds"`
	Line      *float64 `json:"line,omitempty"`
	Result    string   `json:"result,omitempty"`
}

type BetResponse struct {
	BetID           string         `json:"betId"`
	UserID          string         `json:"userId"`
	Kind            string         `json:"kind"`
	Stake           int64          `json:"stake"`
	PotentialPayout float64        `json:"potential_payout"`
	ActualPayout    float64        `json:"actual_payout"`
	Status          string         `json:"status"`
	PlacedAt        time.Time      `json:"placed_at"`
	SettledAt       *time.Time     `json:"settled_at,omitempty"`
	Picks           []PickResponse `json:"picks"`
}

type CancelBetResponse struct {
	BetID   string `json:"betId"`
	Status  string `json:"status"` // CANCELLED
	Refund  int64  `json:"refund"`
	Message string `json:"message,omitempty"`
}
