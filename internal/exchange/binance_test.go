package exchange

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"pairsniper/internal/market"
)

func testIntent(amount string) Intent {
	return Intent{
		Pair:        market.Pair{Base: "BTC", Quote: "USDT"},
		Side:        SideBuy,
		AmountQuote: decimal.RequireFromString(amount),
	}
}

func testCreds() Credentials {
	return Credentials{APIKey: "key", APISecret: "secret"}
}

func newTestExecutor(baseURL string) *Binance {
	return NewBinance(BinanceOptions{BaseURL: baseURL, Timeout: time.Second}, zerolog.Nop())
}

func TestExecuteSizesOrderFromExchangePrice(t *testing.T) {
	var gotQuantity, gotSide, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/ticker/price":
			_, _ = w.Write([]byte(`[{"symbol":"BTCUSDT","price":"50000"}]`))
		case "/api/v3/order":
			if err := r.ParseForm(); err != nil {
				t.Fatalf("parse order form: %v", err)
			}
			gotQuantity = r.FormValue("quantity")
			gotSide = r.FormValue("side")
			gotType = r.FormValue("type")
			_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","orderId":42,"executedQty":"0.002","cummulativeQuoteQty":"100","fills":[{"price":"50000","qty":"0.002"}]}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	res, err := newTestExecutor(srv.URL).Execute(context.Background(), testIntent("100"), testCreds())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if gotQuantity != "0.002" {
		t.Fatalf("order quantity = %q, want 0.002 (100 quote / 50000 price)", gotQuantity)
	}
	if gotSide != "BUY" {
		t.Fatalf("order side = %q, want BUY", gotSide)
	}
	if gotType != "MARKET" {
		t.Fatalf("order type = %q, want MARKET", gotType)
	}
	if res.OrderID != 42 {
		t.Fatalf("order id = %d", res.OrderID)
	}
	if !res.FilledQuantity.Equal(decimal.RequireFromString("0.002")) {
		t.Fatalf("filled quantity = %s", res.FilledQuantity)
	}
	if !res.FillPrice.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("fill price = %s", res.FillPrice)
	}
}

func TestExecuteOrderRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/ticker/price":
			_, _ = w.Write([]byte(`[{"symbol":"BTCUSDT","price":"50000"}]`))
		case "/api/v3/order":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":-2010,"msg":"Account has insufficient balance for requested action."}`))
		}
	}))
	defer srv.Close()

	if _, err := newTestExecutor(srv.URL).Execute(context.Background(), testIntent("100"), testCreds()); err == nil {
		t.Fatal("rejected order must surface as an error")
	}
}

func TestExecutePriceFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := newTestExecutor(srv.URL).Execute(context.Background(), testIntent("100"), testCreds()); err == nil {
		t.Fatal("price fetch failure must surface as an error")
	}
}

func TestExecuteQuantityRoundsToZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v3/order" {
			t.Fatal("zero quantity must never reach the order endpoint")
		}
		_, _ = w.Write([]byte(`[{"symbol":"BTCUSDT","price":"50000000000"}]`))
	}))
	defer srv.Close()

	if _, err := newTestExecutor(srv.URL).Execute(context.Background(), testIntent("0.00001"), testCreds()); err == nil {
		t.Fatal("quantity truncating to zero must surface as an error")
	}
}

func TestExecuteMalformedQuantityLoggedNotSilent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/ticker/price":
			_, _ = w.Write([]byte(`[{"symbol":"BTCUSDT","price":"50000"}]`))
		case "/api/v3/order":
			_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","orderId":42,"executedQty":"garbage","cummulativeQuoteQty":"100","fills":[{"price":"50100","qty":"0.002"}]}`))
		}
	}))
	defer srv.Close()

	var logs bytes.Buffer
	executor := NewBinance(BinanceOptions{BaseURL: srv.URL, Timeout: time.Second}, zerolog.New(&logs))

	res, err := executor.Execute(context.Background(), testIntent("100"), testCreds())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.FilledQuantity.IsZero() {
		t.Fatalf("filled quantity = %s, want zero for unparseable executedQty", res.FilledQuantity)
	}
	if !res.FillPrice.Equal(decimal.NewFromInt(50100)) {
		t.Fatalf("fill price = %s, want 50100 from the reported fill", res.FillPrice)
	}
	if !strings.Contains(logs.String(), "unparseable quantity") || !strings.Contains(logs.String(), "garbage") {
		t.Fatalf("malformed quantity must be logged, got: %s", logs.String())
	}
}

func TestExecuteMissingCredentials(t *testing.T) {
	if _, err := newTestExecutor("http://localhost").Execute(context.Background(), testIntent("100"), Credentials{}); err == nil {
		t.Fatal("missing credentials must surface as an error")
	}
}
