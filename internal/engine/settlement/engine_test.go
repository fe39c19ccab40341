package settlement

import (
	"context"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/wager-settlement-engine/internal/engine/model"
)

type fakeStore struct {
	pending  map[string][]model.Bet // matchID -> bets
	statuses map[string]model.BetStatus
	payouts  map[string]float64
	writes   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pending:  make(map[string][]model.Bet),
		statuses: make(map[string]model.BetStatus),
		payouts:  make(map[string]float64),
	}
}

func (f *fakeStore) PendingByMatch(_ context.Context, matchID string) ([]model.Bet, error) {
	var out []model.Bet
	for _, b := range f.pending[matchID] {
		if f.statuses[b.ID] == model.BetPending {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) SettleIfPending(_ context.Context, betID string, status model.BetStatus, payout float64, _ map[string]model.PickResult) (bool, error) {
	if f.statuses[betID] != model.BetPending {
		return false, nil
	}
	f.statuses[betID] = status
	f.payouts[betID] = payout
	f.writes++
	return true, nil
}

type fakeMatches struct{ matches map[string]model.Match }

func (f *fakeMatches) Match(_ context.Context, id string) (model.Match, error) {
	return f.matches[id], nil
}

type fakeNotifier struct{ settled []model.Bet }

func (f *fakeNotifier) BetSettled(_ context.Context, b model.Bet) error {
	f.settled = append(f.settled, b)
	return nil
}

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func completed(id string, home, away int) model.Match {
	return model.Match{ID: id, Status: model.MatchCompleted, HomeScore: intPtr(home), AwayScore: intPtr(away)}
}

type harness struct {
	engine   *Engine
	store    *fakeStore
	matches  *fakeMatches
	notifier *fakeNotifier
}

func newHarness(matches map[string]model.Match) *harness {
	store := newFakeStore()
	mp := &fakeMatches{matches: matches}
	n := &fakeNotifier{}
	return &harness{
		engine:   New(zap.NewNop(), store, mp, n),
		store:    store,
		matches:  mp,
		notifier: n,
	}
}

func (h *harness) addPending(b model.Bet) {
	h.store.statuses[b.ID] = model.BetPending
	for _, p := range b.Picks {
		h.store.pending[p.MatchID] = append(h.store.pending[p.MatchID], b)
	}
}

func singleBet(id string, stake int64, potential float64, pick model.Pick) model.Bet {
	pick.BetID = id
	return model.Bet{
		ID:              id,
		UserID:          "u1",
		Kind:            model.KindSingle,
		Stake:           stake,
		PotentialPayout: potential,
		Status:          model.BetPending,
		Picks:           []model.Pick{pick},
		PlacedAt:        time.Now(),
	}
}

func TestSingleMoneylineWin(t *testing.T) {
	h := newHarness(map[string]model.Match{"m1": completed("m1", 110, 105)})
	h.addPending(singleBet("b1", 10, 16.67, model.Pick{
		ID: "p1", MatchID: "m1", Market: model.MarketMoneyline, Selection: model.SelectionHome, Odds: -150,
	}))

	if err := h.engine.SettleMatch(context.Background(), "m1"); err != nil {
		t.Fatalf("SettleMatch: %v", err)
	}

	if got := h.store.statuses["b1"]; got != model.BetWon {
		t.Errorf("status = %s, want WON", got)
	}
	if got := h.store.payouts["b1"]; got != 16.67 {
		t.Errorf("payout = %v, want 16.67 (locked potential)", got)
	}
	if len(h.notifier.settled) != 1 {
		t.Errorf("notifications = %d, want 1", len(h.notifier.settled))
	}
}

func TestSinglePushReturnsStake(t *testing.T) {
	h := newHarness(map[string]model.Match{"m1": completed("m1", 108, 105)})
	h.addPending(singleBet("b1", 10, 19.09, model.Pick{
		ID: "p1", MatchID: "m1", Market: model.MarketSpread, Selection: model.SelectionHome, Odds: -110, Line: floatPtr(-3),
	}))

	if err := h.engine.SettleMatch(context.Background(), "m1"); err != nil {
		t.Fatalf("SettleMatch: %v", err)
	}

	if got := h.store.statuses["b1"]; got != model.BetPush {
		t.Errorf("status = %s, want PUSH", got)
	}
	if got := h.store.payouts["b1"]; got != 10 {
		t.Errorf("payout = %v, want stake back (10)", got)
	}
}

func threeLegParlay() model.Bet {
	return model.Bet{
		ID:              "b1",
		UserID:          "u1",
		Kind:            model.KindParlay,
		Stake:           10,
		PotentialPayout: 54.67,
		Status:          model.BetPending,
		Picks: []model.Pick{
			{ID: "p1", BetID: "b1", MatchID: "m1", Market: model.MarketSpread, Selection: model.SelectionHome, Odds: -110, Line: floatPtr(-3.5)},
			{ID: "p2", BetID: "b1", MatchID: "m2", Market: model.MarketMoneyline, Selection: model.SelectionHome, Odds: -200},
			{ID: "p3", BetID: "b1", MatchID: "m3", Market: model.MarketTotal, Selection: model.SelectionOver, Odds: -110, Line: floatPtr(230.5)},
		},
	}
}

func TestParlayAllLegsWin(t *testing.T) {
	h := newHarness(map[string]model.Match{
		"m1": completed("m1", 110, 105), // -3.5 cobre
		"m2": completed("m2", 115, 108), // mandante vence
		"m3": completed("m3", 120, 115), // total 235 > 230.5
	})
	h.addPending(threeLegParlay())

	if err := h.engine.SettleMatch(context.Background(), "m3"); err != nil {
		t.Fatalf("SettleMatch: %v", err)
	}

	if got := h.store.statuses["b1"]; got != model.BetWon {
		t.Errorf("status = %s, want WON", got)
	}
	if got := h.store.payouts["b1"]; math.Abs(got-54.67) > 0.01 {
		t.Errorf("payout = %v, want ≈54.67", got)
	}
}

func TestParlayDeferredUntilAllLegsResolved(t *testing.T) {
	h := newHarness(map[string]model.Match{
		"m1": completed("m1", 110, 105),
		"m2": {ID: "m2", Status: model.MatchLive},
		"m3": {ID: "m3", Status: model.MatchScheduled},
	})
	h.addPending(threeLegParlay())

	if err := h.engine.SettleMatch(context.Background(), "m1"); err != nil {
		t.Fatalf("SettleMatch: %v", err)
	}

	if got := h.store.statuses["b1"]; got != model.BetPending {
		t.Errorf("status = %s, want still PENDING (deferred)", got)
	}
	if h.store.writes != 0 {
		t.Errorf("writes = %d, want 0 while deferred", h.store.writes)
	}
	if len(h.notifier.settled) != 0 {
		t.Errorf("notifications = %d, want 0 while deferred", len(h.notifier.settled))
	}

	// chega o restante dos resultados e a aposta sai do limbo
	h.matches.matches["m2"] = completed("m2", 115, 108)
	h.matches.matches["m3"] = completed("m3", 120, 115)

	if err := h.engine.SettleMatch(context.Background(), "m3"); err != nil {
		t.Fatalf("SettleMatch: %v", err)
	}
	if got := h.store.statuses["b1"]; got != model.BetWon {
		t.Errorf("status after all legs = %s, want WON", got)
	}
}

func TestParlayAnyLossLosesAll(t *testing.T) {
	h := newHarness(map[string]model.Match{
		"m1": completed("m1", 110, 105),
		"m2": completed("m2", 100, 108), // visitante vence, perna perde
		"m3": completed("m3", 120, 115),
	})
	h.addPending(threeLegParlay())

	if err := h.engine.SettleMatch(context.Background(), "m2"); err != nil {
		t.Fatalf("SettleMatch: %v", err)
	}

	if got := h.store.statuses["b1"]; got != model.BetLost {
		t.Errorf("status = %s, want LOST", got)
	}
	if got := h.store.payouts["b1"]; got != 0 {
		t.Errorf("payout = %v, want 0", got)
	}
}

func twoLegParlay(stake int64) model.Bet {
	return model.Bet{
		ID:              "b1",
		UserID:          "u1",
		Kind:            model.KindParlay,
		Stake:           stake,
		PotentialPayout: 36.44,
		Status:          model.BetPending,
		Picks: []model.Pick{
			{ID: "p1", BetID: "b1", MatchID: "m1", Market: model.MarketSpread, Selection: model.SelectionHome, Odds: -110, Line: floatPtr(-3)},
			{ID: "p2", BetID: "b1", MatchID: "m2", Market: model.MarketMoneyline, Selection: model.SelectionHome, Odds: -150},
		},
	}
}

func TestParlayPushLegExcludedFromProduct(t *testing.T) {
	h := newHarness(map[string]model.Match{
		"m1": completed("m1", 108, 105), // 108-3 = 105: push
		"m2": completed("m2", 115, 108), // vence
	})
	h.addPending(twoLegParlay(10))

	if err := h.engine.SettleMatch(context.Background(), "m2"); err != nil {
		t.Fatalf("SettleMatch: %v", err)
	}

	if got := h.store.statuses["b1"]; got != model.BetWon {
		t.Errorf("status = %s, want WON", got)
	}
	// só a perna -150 entra no produto: 10 × 1.6667 = 16.67
	if got := h.store.payouts["b1"]; math.Abs(got-16.67) > 0.001 {
		t.Errorf("payout = %v, want 16.67 (push leg excluded)", got)
	}
}

func TestParlayAllPushReturnsStake(t *testing.T) {
	h := newHarness(map[string]model.Match{
		"m1": completed("m1", 108, 105), // push no spread -3
		"m2": completed("m2", 100, 100), // empate: push no moneyline
	})
	h.addPending(twoLegParlay(10))

	if err := h.engine.SettleMatch(context.Background(), "m2"); err != nil {
		t.Fatalf("SettleMatch: %v", err)
	}

	if got := h.store.statuses["b1"]; got != model.BetPush {
		t.Errorf("status = %s, want PUSH", got)
	}
	if got := h.store.payouts["b1"]; got != 10 {
		t.Errorf("payout = %v, want stake back (10)", got)
	}
}

func TestCancelledMatchVoidsLeg(t *testing.T) {
	h := newHarness(map[string]model.Match{
		"m1": {ID: "m1", Status: model.MatchCancelled},
		"m2": completed("m2", 115, 108),
	})
	h.addPending(twoLegParlay(10))

	if err := h.engine.SettleMatch(context.Background(), "m2"); err != nil {
		t.Fatalf("SettleMatch: %v", err)
	}

	// perna VOID sai do produto igual a push
	if got := h.store.statuses["b1"]; got != model.BetWon {
		t.Errorf("status = %s, want WON", got)
	}
	if got := h.store.payouts["b1"]; math.Abs(got-16.67) > 0.001 {
		t.Errorf("payout = %v, want 16.67 (void leg excluded)", got)
	}
}

func TestSettleIsIdempotent(t *testing.T) {
	h := newHarness(map[string]model.Match{"m1": completed("m1", 110, 105)})
	h.addPending(singleBet("b1", 10, 16.67, model.Pick{
		ID: "p1", MatchID: "m1", Market: model.MarketMoneyline, Selection: model.SelectionHome, Odds: -150,
	}))

	for i := 0; i < 3; i++ {
		if err := h.engine.SettleMatch(context.Background(), "m1"); err != nil {
			t.Fatalf("SettleMatch #%d: %v", i+1, err)
		}
	}

	if h.store.writes != 1 {
		t.Errorf("terminal writes = %d, want exactly 1", h.store.writes)
	}
	if len(h.notifier.settled) != 1 {
		t.Errorf("notifications = %d, want exactly 1", len(h.notifier.settled))
	}
	if got := h.store.payouts["b1"]; got != 16.67 {
		t.Errorf("payout changed on re-delivery: %v", got)
	}
}

func TestConcurrentCASLoserIsSilentNoop(t *testing.T) {
	h := newHarness(map[string]model.Match{"m1": completed("m1", 110, 105)})
	bet := singleBet("b1", 10, 16.67, model.Pick{
		ID: "p1", MatchID: "m1", Market: model.MarketMoneyline, Selection: model.SelectionHome, Odds: -150,
	})
	h.addPending(bet)

	// outra instância liquidou entre o load e o CAS: a cópia em mãos
	// ainda diz PENDING, mas o store recusa a escrita
	h.store.statuses["b1"] = model.BetWon

	if err := h.engine.settleBet(context.Background(), bet); err != nil {
		t.Fatalf("settleBet: %v", err)
	}
	if h.store.writes != 0 {
		t.Errorf("writes = %d, want 0", h.store.writes)
	}
	if len(h.notifier.settled) != 0 {
		t.Errorf("notifications = %d, want 0 when CAS loses", len(h.notifier.settled))
	}
}
