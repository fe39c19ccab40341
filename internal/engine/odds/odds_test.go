package odds

import (
	"errors"
	"math"
	"testing"

	"github.com/radieske/wager-settlement-engine/internal/engine/model"
)

func TestDecimal(t *testing.T) {
	tests := []struct {
		name     string
		american int
		expected float64
		delta    float64
	}{
		{"Even money +100", 100, 2.0, 0.0001},
		{"Even money -100", -100, 2.0, 0.0001},
		{"Underdog +150", 150, 2.5, 0.0001},
		{"Favorite -150", -150, 1.667, 0.001},
		{"Favorite -200", -200, 1.5, 0.0001},
		{"Standard -110", -110, 1.909, 0.001},
		{"Big underdog +300", 300, 4.0, 0.0001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decimal(tt.american)
			if err != nil {
				t.Fatalf("Decimal(%d) error: %v", tt.american, err)
			}
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("Decimal(%d) = %v, want %v", tt.american, got, tt.expected)
			}
			if got <= 1.0 {
				t.Errorf("Decimal(%d) = %v, want > 1", tt.american, got)
			}
		})
	}
}

func TestDecimalRejectsLowMagnitude(t *testing.T) {
	for _, american := range []int{0, 50, -50, 99, -99} {
		if _, err := Decimal(american); !errors.Is(err, model.ErrInvalidOdds) {
			t.Errorf("Decimal(%d) error = %v, want ErrInvalidOdds", american, err)
		}
	}
}

func TestCombined(t *testing.T) {
	legs := make([]float64, 0, 3)
	for _, american := range []int{-110, -200, -110} {
		d, err := Decimal(american)
		if err != nil {
			t.Fatalf("Decimal(%d): %v", american, err)
		}
		legs = append(legs, d)
	}

	combined, err := Combined(legs)
	if err != nil {
		t.Fatalf("Combined: %v", err)
	}
	if math.Abs(combined-5.467) > 0.01 {
		t.Errorf("Combined([-110,-200,-110]) = %v, want ≈5.467", combined)
	}

	if _, err := Combined(nil); err == nil {
		t.Error("Combined(nil) should fail")
	}
}

func TestPayout(t *testing.T) {
	tests := []struct {
		name     string
		stake    int64
		combined float64
		expected float64
	}{
		{"Single -150", 10, 1.6666666667, 16.67},
		{"3-leg parlay", 10, 5.4665289257, 54.67},
		{"Even odds", 25, 2.0, 50.00},
		{"Half rounds up", 10, 1.2345, 12.35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Payout(tt.stake, tt.combined); got != tt.expected {
				t.Errorf("Payout(%d, %v) = %v, want %v", tt.stake, tt.combined, got, tt.expected)
			}
		})
	}
}

func TestAmericanRoundTrip(t *testing.T) {
	for _, american := range []int{-200, -150, -110, 100, 150, 300} {
		d, err := Decimal(american)
		if err != nil {
			t.Fatalf("Decimal(%d): %v", american, err)
		}
		back, err := American(d)
		if err != nil {
			t.Fatalf("American(%v): %v", d, err)
		}
		if back != american {
			t.Errorf("round trip %d → %v → %d", american, d, back)
		}
	}
}

func TestImpliedProbability(t *testing.T) {
	p, err := ImpliedProbability(2.0)
	if err != nil {
		t.Fatalf("ImpliedProbability: %v", err)
	}
	if math.Abs(p-0.5) > 0.0001 {
		t.Errorf("ImpliedProbability(2.0) = %v, want 0.5", p)
	}

	if _, err := ImpliedProbability(0); err == nil {
		t.Error("ImpliedProbability(0) should fail")
	}
}
