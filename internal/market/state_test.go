package market

import (
	"testing"
	"time"
)

func TestSetTickerMonotonic(t *testing.T) {
	s := NewStore()
	t0 := time.Unix(1000, 0)
	if !s.SetTicker("BTC-ETH", Ticker{Last: 0.05}, t0) {
		t.Fatalf("first ticker not applied")
	}
	if s.SetTicker("BTC-ETH", Ticker{Last: 0.04}, t0.Add(-time.Second)) {
		t.Fatalf("stale ticker applied")
	}
	tk, ts, ok := s.Ticker("BTC-ETH")
	if !ok || tk.Last != 0.05 || !ts.Equal(t0) {
		t.Fatalf("unexpected ticker %v at %v ok=%v", tk, ts, ok)
	}
	if !s.SetTicker("BTC-ETH", Ticker{Last: 0.06}, t0) {
		t.Fatalf("same-timestamp ticker rejected")
	}
	tk, _, _ = s.Ticker("BTC-ETH")
	if tk.Last != 0.06 {
		t.Fatalf("expected last 0.06, got %v", tk.Last)
	}
}

func TestSymbolsSorted(t *testing.T) {
	s := NewStore()
	now := time.Now()
	s.SetTicker("BTC-ZEC", Ticker{}, now)
	s.SetTicker("BTC-ETH", Ticker{}, now)
	s.SetTicker("BTC-LTC", Ticker{}, now)
	got := s.Symbols()
	want := []string{"BTC-ETH", "BTC-LTC", "BTC-ZEC"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestReplaceBookDropsEmptyLevels(t *testing.T) {
	s := NewStore()
	ts := time.Unix(2000, 0)
	s.ReplaceBook("BTC-ETH",
		map[float64]float64{0.0500: 3, 0.0499: 1, 0.0490: 0},
		map[float64]float64{0.0501: 2, 0.0502: 5},
		ts,
	)
	bid, ask, bidTS, askTS := s.Best("BTC-ETH")
	if bid.Price != 0.0500 || bid.Quantity != 3 {
		t.Fatalf("unexpected best bid %+v", bid)
	}
	if ask.Price != 0.0501 || ask.Quantity != 2 {
		t.Fatalf("unexpected best ask %+v", ask)
	}
	if !bidTS.Equal(ts) || !askTS.Equal(ts) {
		t.Fatalf("unexpected side times %v %v", bidTS, askTS)
	}
	if levels, _ := s.BookSide("BTC-ETH", SideBuy); len(levels) != 2 {
		t.Fatalf("expected zero-quantity level dropped, got %v", levels)
	}
}

func TestApplyUpdates(t *testing.T) {
	s := NewStore()
	ts := time.Unix(3000, 0)
	s.ReplaceBook("BTC-ETH",
		map[float64]float64{0.0500: 3},
		map[float64]float64{0.0501: 2},
		ts,
	)
	err := s.ApplyUpdates("BTC-ETH", ts.Add(time.Second), []BookUpdate{
		{Side: SideBuy, Price: 0.0500, Quantity: 0},
		{Side: SideBuy, Price: 0.0498, Quantity: 7},
		{Side: SideSell, Price: 0.0501, Quantity: 1.5},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	bid, ask, bidTS, _ := s.Best("BTC-ETH")
	if bid.Price != 0.0498 || bid.Quantity != 7 {
		t.Fatalf("unexpected best bid %+v", bid)
	}
	if ask.Price != 0.0501 || ask.Quantity != 1.5 {
		t.Fatalf("unexpected best ask %+v", ask)
	}
	if !bidTS.Equal(ts.Add(time.Second)) {
		t.Fatalf("bid time not advanced: %v", bidTS)
	}
}

func TestApplyUpdatesRejectsUnsetSide(t *testing.T) {
	s := NewStore()
	ts := time.Unix(4000, 0)
	s.ReplaceBook("BTC-ETH", map[float64]float64{0.05: 1}, nil, ts)
	err := s.ApplyUpdates("BTC-ETH", ts.Add(time.Second), []BookUpdate{
		{Side: SideBuy, Price: 0.06, Quantity: 1},
		{Side: SideUnset, Price: 0.07, Quantity: 1},
	})
	if err == nil {
		t.Fatalf("expected error for unset side")
	}
	// The whole batch must be rejected, first entry included.
	bid, _, _, _ := s.Best("BTC-ETH")
	if bid.Price != 0.05 {
		t.Fatalf("batch partially applied, best bid %+v", bid)
	}
}

func TestBookSideSorted(t *testing.T) {
	s := NewStore()
	ts := time.Unix(5000, 0)
	s.ReplaceBook("BTC-ETH",
		map[float64]float64{0.0499: 1, 0.0500: 2, 0.0495: 3},
		map[float64]float64{0.0510: 1, 0.0501: 2, 0.0505: 3},
		ts,
	)
	bids, _ := s.BookSide("BTC-ETH", SideBuy)
	for i := 1; i < len(bids); i++ {
		if bids[i].Price > bids[i-1].Price {
			t.Fatalf("bids not descending: %v", bids)
		}
	}
	asks, _ := s.BookSide("BTC-ETH", SideSell)
	for i := 1; i < len(asks); i++ {
		if asks[i].Price < asks[i-1].Price {
			t.Fatalf("asks not ascending: %v", asks)
		}
	}
	if bids[0].Price > asks[0].Price {
		t.Fatalf("book crossed: bid %v ask %v", bids[0].Price, asks[0].Price)
	}
}

func TestSubIDBinding(t *testing.T) {
	s := NewStore()
	s.BindSubID(42, "BTC-ETH")
	sym, ok := s.SymbolForSubID(42)
	if !ok || sym != "BTC-ETH" {
		t.Fatalf("expected BTC-ETH, got %q ok=%v", sym, ok)
	}
	if _, ok := s.SymbolForSubID(43); ok {
		t.Fatalf("unexpected binding for unknown id")
	}
	s.ClearSubIDs()
	if _, ok := s.SymbolForSubID(42); ok {
		t.Fatalf("binding survived clear")
	}
}

func TestLatestTrade(t *testing.T) {
	s := NewStore()
	if _, ok := s.LatestTrade("BTC-ETH"); ok {
		t.Fatalf("unexpected trade before any set")
	}
	tr := Trade{Timestamp: time.Unix(6000, 0), Side: SideSell, Price: 0.05, Quantity: 2}
	s.SetLatestTrade("BTC-ETH", tr)
	got, ok := s.LatestTrade("BTC-ETH")
	if !ok || got != tr {
		t.Fatalf("expected %+v, got %+v ok=%v", tr, got, ok)
	}
}

func TestMarketMetadata(t *testing.T) {
	s := NewStore()
	s.SetMarkets([]Market{
		{Symbol: "BTC-ETH", BaseCurrency: "BTC", QuoteCurrency: "ETH", Active: true, MarginEnabled: true},
		{Symbol: "BTC-LTC", BaseCurrency: "BTC", QuoteCurrency: "LTC", Active: true},
	})
	s.SetCurrencies([]Currency{{Symbol: "BTC", Name: "Bitcoin", Active: true}})
	if !s.MarginEnabled("BTC-ETH") {
		t.Fatalf("expected BTC-ETH margin enabled")
	}
	if s.MarginEnabled("BTC-LTC") || s.MarginEnabled("BTC-XXX") {
		t.Fatalf("unexpected margin flags")
	}
	if _, ok := s.Market("BTC-ETH"); !ok {
		t.Fatalf("missing market record")
	}
	if c, ok := s.Currency("BTC"); !ok || c.Name != "Bitcoin" {
		t.Fatalf("unexpected currency %+v ok=%v", c, ok)
	}
}

func TestParseSide(t *testing.T) {
	cases := []struct {
		in   string
		want Side
		err  bool
	}{
		{"buy", SideBuy, false},
		{"bid", SideBuy, false},
		{"sell", SideSell, false},
		{"ask", SideSell, false},
		{"hold", SideUnset, true},
		{"", SideUnset, true},
	}
	for _, c := range cases {
		got, err := ParseSide(c.in)
		if (err != nil) != c.err || got != c.want {
			t.Errorf("ParseSide(%q) = %v, %v", c.in, got, err)
		}
	}
}
