package dto

type PickRequest struct {
	MatchID   string `json:"matchId"`
	Market    string `json:"market"`    // "MONEYLINE" | "SPREAD" | "TOTAL"
	Selection string `json:"selection"` // "HOME" | "AWAY" | "OVER" | "UNDER"
	SeenOdds  *int   `json:"seen_odds,omitempty"` // odd que o cliente viu (opcional)
}

type PlaceBetRequest struct {
	UserID string        `json:"userId"`
	Stake  int64         `json:"stake"` // pontos
	Picks  []PickRequest `json:"picks"`
}
