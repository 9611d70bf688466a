package btrex

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"bitsouk/config"
	"bitsouk/internal/market"
)

func testClient(ts *httptest.Server) *Client {
	cfg := config.DefaultConfig()
	cfg.Upstream.RestURL = ts.URL
	cfg.Upstream.RestTimeout = 5 * time.Second
	cfg.Upstream.RestRateLimit = 1000
	cfg.Upstream.RestRateBurst = 1000
	c := New(cfg)
	c.now = func() time.Time { return time.UnixMilli(1625097600000) }
	return c
}

func TestCurrenciesActiveFlag(t *testing.T) {
	mockData := `[
		{"symbol":"BTC","name":"Bitcoin","txFee":"0.0003","status":"ONLINE"},
		{"symbol":"XVG","name":"Verge","txFee":"0.2","status":"OFFLINE"}
	]`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, mockData)
	}))
	defer ts.Close()

	got, err := testClient(ts).Currencies(context.Background())
	if err != nil {
		t.Fatalf("Currencies failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d currencies, want 2", len(got))
	}
	if !got[0].Active || got[0].TxFee != 0.0003 {
		t.Errorf("BTC = %+v, want active with fee 0.0003", got[0])
	}
	if got[1].Active {
		t.Errorf("XVG should be inactive: %+v", got[1])
	}
}

func TestTickersKeyedBySymbol(t *testing.T) {
	mockData := `[
		{"symbol":"BTC-ETH","bidRate":"0.05","askRate":"0.051","lastTradeRate":"0.0505","high":"0.052","low":"0.049","volume":"120.5"},
		{"symbol":"BTC-LTC","bidRate":"0.01","askRate":"0.011","lastTradeRate":"0.0105","high":"0.012","low":"0.009","volume":"50"}
	]`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets/tickers" {
			t.Errorf("path = %s, want /markets/tickers", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, mockData)
	}))
	defer ts.Close()

	got, err := testClient(ts).Tickers(context.Background())
	if err != nil {
		t.Fatalf("Tickers failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d tickers, want 2", len(got))
	}
	eth := got["BTC-ETH"]
	if eth.Bid != 0.05 || eth.Ask != 0.051 || eth.Last != 0.0505 {
		t.Errorf("BTC-ETH quote = %+v", eth)
	}
	if eth.High24h != 0.052 || eth.Low24h != 0.049 || eth.BaseVolume != 120.5 {
		t.Errorf("BTC-ETH session = %+v", eth)
	}
}

func TestMarketTradesQueryWindow(t *testing.T) {
	tradeID := uuid.New()
	var gotQuery map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets/BTC-ETH/trades" {
			t.Errorf("path = %s, want /markets/BTC-ETH/trades", r.URL.Path)
		}
		gotQuery = map[string]string{
			"startDate": r.URL.Query().Get("startDate"),
			"endDate":   r.URL.Query().Get("endDate"),
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `[{"id":"%s","executedAt":"2021-07-01T00:30:00Z","quantity":"0.25","rate":"0.0505","takerSide":"SELL"}]`, tradeID)
	}))
	defer ts.Close()

	start := time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC)
	got, err := testClient(ts).MarketTrades(context.Background(), "BTC-ETH", start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("MarketTrades failed: %v", err)
	}
	if gotQuery["startDate"] != "2021-07-01T00:00:00Z" || gotQuery["endDate"] != "2021-07-01T01:00:00Z" {
		t.Errorf("query window = %v", gotQuery)
	}
	if len(got) != 1 {
		t.Fatalf("got %d trades, want 1", len(got))
	}
	if got[0].ID != tradeID || got[0].Side != market.SideSell || got[0].Price != 0.0505 || got[0].Quantity != 0.25 {
		t.Errorf("trade = %+v", got[0])
	}
}

func TestSignedRequestHeaders(t *testing.T) {
	var got http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `[{"currencySymbol":"BTC","total":"1.5","available":"1.0","btcValue":"1.5"}]`)
	}))
	defer ts.Close()

	creds := Credentials{Key: "key-1", Secret: "seekrit"}
	balances, err := testClient(ts).Balances(context.Background(), creds)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}

	if got.Get("Api-Key") != "key-1" {
		t.Errorf("Api-Key = %q, want key-1", got.Get("Api-Key"))
	}
	wantTS := "1625097600000"
	if got.Get("Api-Timestamp") != wantTS {
		t.Errorf("Api-Timestamp = %q, want %s", got.Get("Api-Timestamp"), wantTS)
	}
	sum := sha512.Sum512(nil)
	wantHash := hex.EncodeToString(sum[:])
	if got.Get("Api-Content-Hash") != wantHash {
		t.Errorf("Api-Content-Hash = %q, want hash of empty body", got.Get("Api-Content-Hash"))
	}
	mac := hmac.New(sha512.New, []byte("seekrit"))
	mac.Write([]byte(wantTS + ts.URL + "/balances" + http.MethodGet + wantHash))
	wantSig := hex.EncodeToString(mac.Sum(nil))
	if got.Get("Api-Signature") != wantSig {
		t.Errorf("Api-Signature = %q, want %q", got.Get("Api-Signature"), wantSig)
	}

	if len(balances) != 1 {
		t.Fatalf("got %d balances, want 1", len(balances))
	}
	if balances[0].Available != 1.0 || balances[0].OnOrders != 0.5 {
		t.Errorf("balance = %+v, want available 1.0 on orders 0.5", balances[0])
	}
}

func TestSubmitOrderBodyAndResult(t *testing.T) {
	orderID := uuid.New()
	fillID := uuid.New()
	var gotBody map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("%s %s, want POST /orders", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"id":"%s","marketSymbol":"BTC-ETH","direction":"BUY","type":"LIMIT",
			"quantity":"2","limit":"0.05","fillQuantity":"0.5","status":"OPEN",
			"createdAt":"2021-07-01T00:00:00Z",
			"fills":[{"id":"%s","orderId":"%s","marketSymbol":"BTC-ETH","direction":"BUY","rate":"0.05","quantity":"0.5","executedAt":"2021-07-01T00:00:01Z"}]
		}`, orderID, fillID, orderID)
	}))
	defer ts.Close()

	req := NewOrder{
		Symbol:      "BTC-ETH",
		Side:        market.SideBuy,
		Quantity:    2,
		Limit:       0.05,
		TimeInForce: TifFillOrKill,
	}
	res, err := testClient(ts).SubmitOrder(context.Background(), Credentials{Key: "k", Secret: "s"}, req)
	if err != nil {
		t.Fatalf("SubmitOrder failed: %v", err)
	}

	want := map[string]string{
		"marketSymbol": "BTC-ETH",
		"direction":    "BUY",
		"type":         "LIMIT",
		"quantity":     "2.00000000",
		"limit":        "0.05000000",
		"timeInForce":  "FILL_OR_KILL",
	}
	for k, v := range want {
		if gotBody[k] != v {
			t.Errorf("body %s = %q, want %q", k, gotBody[k], v)
		}
	}

	if res.ID != orderID {
		t.Errorf("result id = %s, want %s", res.ID, orderID)
	}
	if res.AmountUnfilled != 1.5 {
		t.Errorf("unfilled = %v, want 1.5", res.AmountUnfilled)
	}
	if len(res.Trades) != 1 || res.Trades[0].ID != fillID || res.Trades[0].Quantity != 0.5 {
		t.Errorf("trades = %+v", res.Trades)
	}
}

func TestGoodTilCancelledOmitsTimeInForce(t *testing.T) {
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"%s","marketSymbol":"BTC-ETH","direction":"SELL","type":"LIMIT","quantity":"1","limit":"0.05","fillQuantity":"0","status":"OPEN","createdAt":"2021-07-01T00:00:00Z"}`, uuid.New())
	}))
	defer ts.Close()

	req := NewOrder{Symbol: "BTC-ETH", Side: market.SideSell, Quantity: 1, Limit: 0.05}
	if _, err := testClient(ts).SubmitOrder(context.Background(), Credentials{Key: "k", Secret: "s"}, req); err != nil {
		t.Fatalf("SubmitOrder failed: %v", err)
	}
	if _, present := gotBody["timeInForce"]; present {
		t.Errorf("timeInForce should be absent for GTC, body = %v", gotBody)
	}
}

func TestAPIErrorSurfaced(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintln(w, `{"code":"INSUFFICIENT_FUNDS"}`)
	}))
	defer ts.Close()

	req := NewOrder{Symbol: "BTC-ETH", Side: market.SideBuy, Quantity: 1, Limit: 0.05}
	_, err := testClient(ts).SubmitOrder(context.Background(), Credentials{Key: "k", Secret: "s"}, req)
	if err == nil {
		t.Fatal("expected an error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", apiErr.Status)
	}
	if apiErr.Message() != "INSUFFICIENT_FUNDS" {
		t.Errorf("message = %q, want INSUFFICIENT_FUNDS", apiErr.Message())
	}
}

func TestCancelOrderRoute(t *testing.T) {
	id := uuid.New()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/orders/"+id.String() {
			t.Errorf("%s %s, want DELETE /orders/%s", r.Method, r.URL.Path, id)
		}
	}))
	defer ts.Close()

	if err := testClient(ts).CancelOrder(context.Background(), Credentials{Key: "k", Secret: "s"}, id); err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}
}

func TestModifyOrderKeepsUnsetFields(t *testing.T) {
	id := uuid.New()
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/"+id.String()+"/modify" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"%s","marketSymbol":"BTC-ETH","direction":"BUY","type":"LIMIT","quantity":"3","limit":"0.04","fillQuantity":"0","status":"OPEN","createdAt":"2021-07-01T00:00:00Z"}`, uuid.New())
	}))
	defer ts.Close()

	res, err := testClient(ts).ModifyOrder(context.Background(), Credentials{Key: "k", Secret: "s"}, id, ModifyOrder{Quantity: 3})
	if err != nil {
		t.Fatalf("ModifyOrder failed: %v", err)
	}
	if gotBody["quantity"] != "3.00000000" {
		t.Errorf("quantity = %v, want 3.00000000", gotBody["quantity"])
	}
	if _, present := gotBody["limit"]; present {
		t.Errorf("limit should be absent when unchanged, body = %v", gotBody)
	}
	if res.AmountUnfilled != 3 {
		t.Errorf("unfilled = %v, want 3", res.AmountUnfilled)
	}
}
