package client

import (
	"testing"

	"github.com/betbot/gomm/clob/types"
)

func TestOrderAmountsBuy(t *testing.T) {
	maker, taker, err := orderAmounts(types.SideBuy, 0.46, 100, "0.01")
	if err != nil {
		t.Fatal(err)
	}
	// BUY spends collateral (maker) for shares (taker).
	if maker != "46000000" {
		t.Errorf("maker = %s, want 46000000", maker)
	}
	if taker != "100000000" {
		t.Errorf("taker = %s, want 100000000", taker)
	}
}

func TestOrderAmountsSell(t *testing.T) {
	maker, taker, err := orderAmounts(types.SideSell, 0.54, 100, "0.01")
	if err != nil {
		t.Fatal(err)
	}
	if maker != "100000000" {
		t.Errorf("maker = %s, want 100000000", maker)
	}
	if taker != "54000000" {
		t.Errorf("taker = %s, want 54000000", taker)
	}
}

func TestOrderAmountsTruncatesSize(t *testing.T) {
	// Selling 100.789 shares must never round up past the held balance.
	maker, _, err := orderAmounts(types.SideSell, 0.50, 100.789, "0.01")
	if err != nil {
		t.Fatal(err)
	}
	if maker != "100780000" {
		t.Errorf("maker = %s, want 100780000 (truncated to 100.78)", maker)
	}
}

func TestOrderAmountsFineTick(t *testing.T) {
	maker, taker, err := orderAmounts(types.SideBuy, 0.123, 50, "0.001")
	if err != nil {
		t.Fatal(err)
	}
	if maker != "6150000" || taker != "50000000" {
		t.Errorf("got %s / %s, want 6150000 / 50000000", maker, taker)
	}
}

func TestOrderAmountsErrors(t *testing.T) {
	tests := []struct {
		name  string
		side  types.Side
		price float64
		size  float64
		tick  string
	}{
		{"bad tick", types.SideBuy, 0.5, 100, "lots"},
		{"zero tick", types.SideBuy, 0.5, 100, "0"},
		{"price rounds to zero", types.SideBuy, 0.001, 100, "0.01"},
		{"size truncates to zero", types.SideSell, 0.5, 0.004, "0.01"},
		{"zero size", types.SideBuy, 0.5, 0, "0.01"},
		{"bad side", types.Side("HOLD"), 0.5, 100, "0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := orderAmounts(tt.side, tt.price, tt.size, tt.tick); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestPriceDecimals(t *testing.T) {
	tests := []struct {
		tick string
		want int32
	}{
		{"0.1", 1},
		{"0.01", 2},
		{"0.001", 3},
		{"0.0001", 4},
	}
	for _, tt := range tests {
		got, err := priceDecimals(tt.tick)
		if err != nil {
			t.Fatalf("priceDecimals(%q): %v", tt.tick, err)
		}
		if got != tt.want {
			t.Errorf("priceDecimals(%q) = %d, want %d", tt.tick, got, tt.want)
		}
	}
}

func TestRawToShares(t *testing.T) {
	got, err := rawToShares("100780000")
	if err != nil {
		t.Fatal(err)
	}
	if got != 100.78 {
		t.Errorf("rawToShares = %v, want 100.78", got)
	}

	got, err = rawToShares(" 0 ")
	if err != nil || got != 0 {
		t.Errorf("rawToShares(0) = %v, %v", got, err)
	}

	if _, err := rawToShares("nan?"); err == nil {
		t.Error("expected error for garbage balance")
	}
}
