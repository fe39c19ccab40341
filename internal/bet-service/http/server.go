package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/wager-settlement-engine/internal/bet-service/dto"
	betodds "github.com/radieske/wager-settlement-engine/internal/bet-service/odds"
	"github.com/radieske/wager-settlement-engine/internal/bet-service/repo"
	"github.com/radieske/wager-settlement-engine/internal/engine/factory"
	"github.com/radieske/wager-settlement-engine/internal/engine/model"
)

type Server struct {
	log     *zap.Logger
	repo    *repo.Postgres
	factory *factory.Factory
	quotes  *betodds.Source
	matches factory.MatchProvider
	publ    interface {
		PublishBetPlaced(context.Context, model.Bet) error
		BetSettled(context.Context, model.Bet) error
	}
}

func NewServer(log *zap.Logger, r *repo.Postgres, f *factory.Factory, q *betodds.Source, m factory.MatchProvider, p interface {
	PublishBetPlaced(context.Context, model.Bet) error
	BetSettled(context.Context, model.Bet) error
}) *Server {
	return &Server{log: log, repo: r, factory: f, quotes: q, matches: m, publ: p}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/bets", s.placeBet) // POST
	mux.HandleFunc("/bets/", s.betByID) // GET/DELETE /bets/{id}
	return mux
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Stake <= 0 || len(req.Picks) == 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	// 1) Busca a cotação corrente de cada perna no snapshot do provedor
	proposals := make([]factory.ProposedPick, 0, len(req.Picks))
	for _, pk := range req.Picks {
		quote, err := s.quotes.Current(r.Context(), pk.MatchID, pk.Market, pk.Selection)
		if errors.Is(err, redis.Nil) {
			http.Error(w, "no quote for "+pk.MatchID+"/"+pk.Market+"/"+pk.Selection, http.StatusUnprocessableEntity)
			return
		}
		if err != nil {
			s.log.Error("quote lookup failed", zap.Error(err))
			http.Error(w, "odds source unavailable", http.StatusServiceUnavailable)
			return
		}

		// se o cliente mandou a odd que viu e ela se moveu, devolve 409
		// com a cotação corrente pra ele reconfirmar
		if pk.SeenOdds != nil && *pk.SeenOdds != quote.Odds {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error":        "odds changed",
				"matchId":      pk.MatchID,
				"current_odds": quote.Odds,
			})
			return
		}

		proposals = append(proposals, factory.ProposedPick{
			MatchID:   pk.MatchID,
			Market:    model.Market(pk.Market),
			Selection: model.Selection(pk.Selection),
			Odds:      quote.Odds,
			Line:      quote.Line,
		})
	}

	// 2) Fábrica valida, trava odds e persiste
	bet, err := s.factory.Place(r.Context(), req.UserID, req.Stake, proposals)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, model.ErrBetLocked) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	// 3) Publica bet_placed (falha aqui não desfaz a aposta)
	if err := s.publ.PublishBetPlaced(r.Context(), *bet); err != nil {
		s.log.Warn("bet_placed publish failed", zap.String("bet_id", bet.ID), zap.Error(err))
	}

	writeJSON(w, toBetResponse(*bet))
}

func (s *Server) betByID(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Path[len("/bets/"):]
	if id == "" {
		http.Error(w, "betId required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getBet(w, r, id)
	case http.MethodDelete:
		s.cancelBet(w, r, id)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) getBet(w http.ResponseWriter, r *http.Request, id string) {
	bet, err := s.repo.GetBet(r.Context(), id)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, toBetResponse(bet))
}

// cancelBet desfaz uma aposta PENDING do usuário enquanto nenhuma das
// partidas começou; a stake volta integral
func (s *Server) cancelBet(w http.ResponseWriter, r *http.Request, id string) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}

	bet, err := s.repo.GetBet(r.Context(), id)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if bet.UserID != userID {
		http.Error(w, "not your bet", http.StatusForbidden)
		return
	}
	if bet.Status != model.BetPending {
		http.Error(w, "bet already "+string(bet.Status), http.StatusConflict)
		return
	}

	now := time.Now().UTC()
	for _, pk := range bet.Picks {
		m, err := s.matches.Match(r.Context(), pk.MatchID)
		if err != nil {
			s.log.Error("match lookup failed", zap.String("match_id", pk.MatchID), zap.Error(err))
			http.Error(w, "match data unavailable", http.StatusServiceUnavailable)
			return
		}
		if !m.StartTime.After(now) {
			http.Error(w, "match "+m.ID+" already started", http.StatusConflict)
			return
		}
	}

	applied, err := s.repo.CancelIfPending(r.Context(), id, userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !applied {
		// corrida com a liquidação; quem chegou primeiro venceu
		http.Error(w, "bet no longer pending", http.StatusConflict)
		return
	}

	bet.Status = model.BetCancelled
	bet.ActualPayout = float64(bet.Stake)
	bet.SettledAt = &now
	for i := range bet.Picks {
		bet.Picks[i].Result = model.PickVoid
	}

	if err := s.publ.BetSettled(r.Context(), bet); err != nil {
		s.log.Warn("bet_settled publish failed", zap.String("bet_id", bet.ID), zap.Error(err))
	}

	writeJSON(w, dto.CancelBetResponse{
		BetID:  bet.ID,
		Status: string(model.BetCancelled),
		Refund: bet.Stake,
	})
}

func toBetResponse(b model.Bet) dto.BetResponse {
	picks := make([]dto.PickResponse, 0, len(b.Picks))
	for _, pk := range b.Picks {
		picks = append(picks, dto.PickResponse{
			ID:        pk.ID,
			MatchID:   pk.MatchID,
			Market:    string(pk.Market),
			Selection: string(pk.Selection),
			Odds:      pk.Odds,
			Line:      pk.Line,
			Result:    string(pk.Result),
		})
	}
	return dto.BetResponse{
		BetID:           b.ID,
		UserID:          b.UserID,
		Kind:            string(b.Kind),
		Stake:           b.Stake,
		PotentialPayout: b.PotentialPayout,
		ActualPayout:    b.ActualPayout,
		Status:          string(b.Status),
		PlacedAt:        b.PlacedAt,
		SettledAt:       b.SettledAt,
		Picks:           picks,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
