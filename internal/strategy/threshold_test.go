package strategy

import (
	"testing"

	"github.com/shopspring/decimal"

	"pairsniper/internal/exchange"
	"pairsniper/internal/market"
	"pairsniper/internal/state"
)

func testConfig() state.Configuration {
	return state.Configuration{
		Pair:                    market.Pair{Base: "BTC", Quote: "USDT"},
		PriceChangeThresholdPct: decimal.NewFromInt(5),
		VolumeThreshold:         decimal.NewFromInt(10000),
		TradeAmountQuote:        decimal.NewFromInt(100),
	}
}

func testSnapshot(changePct, volume string) market.Snapshot {
	return market.Snapshot{
		Pair:           market.Pair{Base: "BTC", Quote: "USDT"},
		PriceUSD:       decimal.NewFromInt(50000),
		Volume:         decimal.RequireFromString(volume),
		PriceChangePct: decimal.RequireFromString(changePct),
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name      string
		changePct string
		volume    string
		fire      bool
	}{
		{name: "both above", changePct: "7", volume: "15000", fire: true},
		{name: "change below", changePct: "3", volume: "15000", fire: false},
		{name: "volume below", changePct: "7", volume: "5000", fire: false},
		{name: "both below", changePct: "3", volume: "5000", fire: false},
		{name: "change at boundary", changePct: "5", volume: "15000", fire: false},
		{name: "volume at boundary", changePct: "7", volume: "10000", fire: false},
		{name: "both at boundary", changePct: "5", volume: "10000", fire: false},
		{name: "barely above", changePct: "5.000001", volume: "10000.01", fire: true},
	}

	rule := NewThreshold()
	cfg := testConfig()

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			intent, fire := rule.Decide(testSnapshot(tc.changePct, tc.volume), cfg)
			if fire != tc.fire {
				t.Fatalf("Decide fired=%v, want %v", fire, tc.fire)
			}
			if !fire {
				return
			}
			if intent.Side != exchange.SideBuy {
				t.Fatalf("intent side = %q, want buy", intent.Side)
			}
			if !intent.AmountQuote.Equal(cfg.TradeAmountQuote) {
				t.Fatalf("intent amount = %s, want %s", intent.AmountQuote, cfg.TradeAmountQuote)
			}
			if intent.Pair.Symbol() != "BTCUSDT" {
				t.Fatalf("intent pair = %s", intent.Pair)
			}
		})
	}
}

func TestDecideNegativeThreshold(t *testing.T) {
	rule := NewThreshold()
	cfg := testConfig()
	cfg.PriceChangeThresholdPct = decimal.RequireFromString("-3")

	if _, fire := rule.Decide(testSnapshot("-1", "15000"), cfg); !fire {
		t.Fatal("change of -1 must fire against a threshold of -3")
	}
	if _, fire := rule.Decide(testSnapshot("-4", "15000"), cfg); fire {
		t.Fatal("change of -4 must not fire against a threshold of -3")
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	rule := NewThreshold()
	cfg := testConfig()
	snap := testSnapshot("7", "15000")

	first, fired := rule.Decide(snap, cfg)
	for i := 0; i < 10; i++ {
		next, f := rule.Decide(snap, cfg)
		if f != fired || next != first {
			t.Fatal("same inputs must always yield the same decision")
		}
	}
}
