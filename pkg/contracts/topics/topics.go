package topics

const (
	// Resultados de partidas (gatilho de liquidação)
	MatchResults = "match_results"

	// Apostas
	BetPlaced  = "bet_placed"
	BetSettled = "bet_settled"

	// DLQs
	MatchResultsDLQ = "match_results_dlq"
	BetSettledDLQ   = "bet_settled_dlq"
)
