package model

import "time"

type MatchStatus string

const (
	MatchScheduled MatchStatus = "SCHEDULED"
	MatchLive      MatchStatus = "LIVE"
	MatchCompleted MatchStatus = "COMPLETED"
	MatchCancelled MatchStatus = "CANCELLED"
)

// Resolved indica que a partida tem desfecho (terminou ou foi cancelada)
func (s MatchStatus) Resolved() bool {
	return s == MatchCompleted || s == MatchCancelled
}

// Match é dado mestre de partida, mantido pelo provedor externo.
// O engine só lê; placares ficam nil até o status virar COMPLETED.
type Match struct {
	ID        string
	HomeTeam  string
	AwayTeam  string
	StartTime time.Time
	Status    MatchStatus
	HomeScore *int
	AwayScore *int
}

type Market string

const (
	MarketMoneyline Market = "MONEYLINE"
	MarketSpread    Market = "SPREAD"
	MarketTotal     Market = "TOTAL"
)

type Selection string

const (
	SelectionHome  Selection = "HOME"
	SelectionAway  Selection = "AWAY"
	SelectionOver  Selection = "OVER"
	SelectionUnder Selection = "UNDER"
)

type PickResult string

const (
	PickWon  PickResult = "WON"
	PickLost PickResult = "LOST"
	PickPush PickResult = "PUSH"
	PickVoid PickResult = "VOID" // partida cancelada; conta como push no payout
)

// Pick é uma perna de uma aposta, imutável depois da criação.
// Para SPREAD a Line é armazenada sempre relativa ao mandante
// (normalizada na criação); para TOTAL é o limiar over/under;
// para MONEYLINE fica nil.
type Pick struct {
	ID        string
	BetID     string
	MatchID   string
	Market    Market
	Selection Selection
	Odds      int // americana, travada na criação
	Line      *float64
	Result    PickResult // vazio até a liquidação
}

type BetKind string

const (
	KindSingle BetKind = "SINGLE"
	KindParlay BetKind = "PARLAY"
)

type BetStatus string

const (
	BetPending   BetStatus = "PENDING"
	BetWon       BetStatus = "WON"
	BetLost      BetStatus = "LOST"
	BetPush      BetStatus = "PUSH"
	BetCancelled BetStatus = "CANCELLED"
)

// Terminal indica um estado final; apostas terminais nunca mudam de novo
func (s BetStatus) Terminal() bool {
	return s == BetWon || s == BetLost || s == BetPush || s == BetCancelled
}

type Bet struct {
	ID              string
	UserID          string
	Kind            BetKind
	Stake           int64 // pontos apostados
	PotentialPayout float64
	ActualPayout    float64
	Status          BetStatus
	Picks           []Pick
	PlacedAt        time.Time
	SettledAt       *time.Time
}
