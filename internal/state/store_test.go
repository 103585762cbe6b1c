package state

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pairsniper/internal/alerting"
	"pairsniper/internal/exchange"
	"pairsniper/internal/market"
)

func testConfiguration(pair string) Configuration {
	parsed, _ := market.ParsePair(pair)
	return Configuration{
		Pair:                    parsed,
		PriceChangeThresholdPct: decimal.NewFromInt(5),
		VolumeThreshold:         decimal.NewFromInt(10000),
		TradeAmountQuote:        decimal.NewFromInt(100),
		Exchange:                exchange.Credentials{APIKey: "k", APISecret: "s"},
		Messaging:               alerting.Credentials{BotToken: "t", ChatID: "c"},
	}
}

func TestStoreEmpty(t *testing.T) {
	store := NewStore()

	if _, ok := store.Configuration(); ok {
		t.Fatal("empty store must report no configuration")
	}

	display := store.Display()
	if display.Configured || display.Snapshot != nil || display.LastTrade != nil {
		t.Fatalf("empty store display = %+v", display)
	}
}

func TestReplaceResetsDisplayedState(t *testing.T) {
	store := NewStore()
	store.Replace(testConfiguration("BTC-USDT"))
	store.PublishSnapshot(market.Snapshot{
		Pair:      market.Pair{Base: "BTC", Quote: "USDT"},
		PriceUSD:  decimal.NewFromInt(50000),
		FetchedAt: time.Now(),
	})
	store.PublishTrade(TradeOutcome{Side: "buy", Executed: true, At: time.Now()})

	store.Replace(testConfiguration("ETH-USDT"))

	display := store.Display()
	if !display.Configured {
		t.Fatal("store must stay configured after replace")
	}
	if display.Pair != "ETH-USDT" {
		t.Fatalf("display pair = %q, want ETH-USDT", display.Pair)
	}
	if display.Snapshot != nil {
		t.Fatal("replacing configuration must clear the stale snapshot")
	}
	if display.LastTrade != nil {
		t.Fatal("replacing configuration must clear the stale trade outcome")
	}
}

func TestConfigurationReturnsCopy(t *testing.T) {
	store := NewStore()
	store.Replace(testConfiguration("BTC-USDT"))

	cfg, ok := store.Configuration()
	if !ok {
		t.Fatal("configuration expected")
	}
	cfg.Pair = market.Pair{Base: "XXX", Quote: "YYY"}

	unchanged, _ := store.Configuration()
	if unchanged.Pair.String() != "BTC-USDT" {
		t.Fatal("mutating a returned configuration must not affect the store")
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore()
	store.Replace(testConfiguration("BTC-USDT"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				store.PublishSnapshot(market.Snapshot{Pair: market.Pair{Base: "BTC", Quote: "USDT"}})
				_ = store.Display()
				_, _ = store.Configuration()
				store.Replace(testConfiguration("BTC-USDT"))
			}
		}()
	}
	wg.Wait()

	if _, ok := store.Configuration(); !ok {
		t.Fatal("store lost its configuration under concurrent access")
	}
}

func TestConfigurationValidate(t *testing.T) {
	valid := testConfiguration("BTC-USDT")
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid configuration rejected: %v", err)
	}

	// Thresholds are plain comparison operands; a negative price-change
	// threshold arms the loop on a drop and must be accepted.
	negative := testConfiguration("BTC-USDT")
	negative.PriceChangeThresholdPct = decimal.NewFromInt(-3)
	negative.VolumeThreshold = decimal.NewFromInt(-1)
	if err := negative.Validate(); err != nil {
		t.Fatalf("negative thresholds rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Configuration)
	}{
		{"missing pair", func(c *Configuration) { c.Pair = market.Pair{} }},
		{"zero amount", func(c *Configuration) { c.TradeAmountQuote = decimal.Zero }},
		{"negative amount", func(c *Configuration) { c.TradeAmountQuote = decimal.NewFromInt(-1) }},
		{"missing exchange key", func(c *Configuration) { c.Exchange.APIKey = "" }},
		{"missing bot token", func(c *Configuration) { c.Messaging.BotToken = "" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfiguration("BTC-USDT")
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
