package events

type PlacedLeg struct {
	MatchID   string   `json:"match_id"`
	Market    string   `json:"market"`    // "MONEYLINE" | "SPREAD" | "TOTAL"
	Selection string   `json:"selection"` // "HOME" | "AWAY" | "OVER" | "UNDER"
	Odds      int      `json:"odds"`      // americana, travada na criação
	Line      *float64 `json:"line,omitempty"`
}

type BetPlaced struct {
	BetID           string      `json:"bet_id"`
	UserID          string      `json:"user_id"`
	Kind            string      `json:"kind"` // "SINGLE" | "PARLAY"
	Stake           int64       `json:"stake"`
	PotentialPayout float64     `json:"potential_payout"`
	Legs            []PlacedLeg `json:"legs"`
	TsUnixMs        int64       `json:"ts_unix_ms"`
}
