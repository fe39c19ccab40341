package model

import "errors"

// Erros de validação na criação da aposta (devolvidos ao chamador)
var (
	ErrInvalidOdds       = errors.New("invalid american odds")
	ErrUnsupportedMarket = errors.New("unsupported market/selection")
	ErrDuplicateLeg      = errors.New("duplicate leg for match/market")
	ErrBetLocked         = errors.New("match already started")
	ErrInvalidStake      = errors.New("stake must be positive")
	ErrNoPicks           = errors.New("bet requires at least one pick")
)

// ErrNotSettleable não é falha: sinaliza que a partida ainda não tem
// desfecho e a liquidação deve ser adiada até o próximo gatilho
var ErrNotSettleable = errors.New("match not resolved yet")
