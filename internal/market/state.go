// Package market holds the process-wide exchange state: currency and market
// metadata fetched at startup, rolling tickers, order books, latest trades
// and the upstream subscription-id table. Writers are the feed supervisor
// and the ticker refresher; request handlers only read.
package market

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Side labels one half of an order book.
type Side int8

const (
	SideUnset Side = iota
	SideBuy
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	}
	return "unset"
}

// ParseSide maps the wire spellings used by the upstream feed.
func ParseSide(s string) (Side, error) {
	switch s {
	case "buy", "bid":
		return SideBuy, nil
	case "sell", "ask":
		return SideSell, nil
	}
	return SideUnset, fmt.Errorf("market: unknown side %q", s)
}

// Currency is one exchange currency record, static after startup.
type Currency struct {
	Symbol string
	Name   string
	TxFee  float64
	Active bool
}

// Market is one tradable pair record, static after startup.
type Market struct {
	Symbol        string
	BaseCurrency  string
	QuoteCurrency string
	MinTradeSize  float64
	Active        bool
	MarginEnabled bool
}

// Ticker is the latest 24h summary observed for a symbol.
type Ticker struct {
	Bid        float64
	Ask        float64
	Last       float64
	Low24h     float64
	High24h    float64
	BaseVolume float64
}

// Trade is the most recent trade seen on the upstream feed for a symbol.
type Trade struct {
	Timestamp time.Time
	Side      Side
	Price     float64
	Quantity  float64
}

// BookLevel is one price level of a book side.
type BookLevel struct {
	Price    float64
	Quantity float64
}

// BookUpdate is one level mutation. Quantity zero deletes the level.
type BookUpdate struct {
	Side     Side
	Price    float64
	Quantity float64
}

type tickerEntry struct {
	ticker Ticker
	ts     time.Time
}

type bookSide struct {
	levels map[float64]float64
	ts     time.Time
}

type book struct {
	bids bookSide
	asks bookSide
}

// Store is the shared state table set. One instance serves the whole
// process; all methods are safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	currencies map[string]Currency
	markets    map[string]Market
	tickers    map[string]tickerEntry
	books      map[string]*book
	trades     map[string]Trade
	subids     map[int64]string
}

func NewStore() *Store {
	return &Store{
		currencies: make(map[string]Currency),
		markets:    make(map[string]Market),
		tickers:    make(map[string]tickerEntry),
		books:      make(map[string]*book),
		trades:     make(map[string]Trade),
		subids:     make(map[int64]string),
	}
}

// SetCurrencies replaces the currency table.
func (s *Store) SetCurrencies(list []Currency) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currencies = make(map[string]Currency, len(list))
	for _, c := range list {
		s.currencies[c.Symbol] = c
	}
}

func (s *Store) Currency(code string) (Currency, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.currencies[code]
	return c, ok
}

// SetMarkets replaces the market table.
func (s *Store) SetMarkets(list []Market) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markets = make(map[string]Market, len(list))
	for _, m := range list {
		s.markets[m.Symbol] = m
	}
}

func (s *Store) Market(symbol string) (Market, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.markets[symbol]
	return m, ok
}

// MarginEnabled reports whether the pair supports margin trading. Unknown
// symbols report false.
func (s *Store) MarginEnabled(symbol string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.markets[symbol].MarginEnabled
}

// SetTicker stores a ticker observed at ts. Stale observations (older than
// the stored timestamp) are dropped; the return value reports whether the
// update was applied.
func (s *Store) SetTicker(symbol string, t Ticker, ts time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.tickers[symbol]; ok && ts.Before(prev.ts) {
		return false
	}
	s.tickers[symbol] = tickerEntry{ticker: t, ts: ts}
	return true
}

func (s *Store) Ticker(symbol string) (Ticker, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.tickers[symbol]
	return e.ticker, e.ts, ok
}

// Symbols lists every symbol present in the ticker table, sorted.
func (s *Store) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.tickers))
	for sym := range s.tickers {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// ReplaceBook installs a full book snapshot, discarding previous levels on
// both sides in one step. Levels with non-positive quantity are dropped so
// the book never carries empty entries.
func (s *Store) ReplaceBook(symbol string, bids, asks map[float64]float64, ts time.Time) {
	clean := func(levels map[float64]float64) map[float64]float64 {
		out := make(map[float64]float64, len(levels))
		for price, qty := range levels {
			if qty > 0 {
				out[price] = qty
			}
		}
		return out
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.bookLocked(symbol)
	b.bids = bookSide{levels: clean(bids), ts: ts}
	b.asks = bookSide{levels: clean(asks), ts: ts}
}

// ApplyUpdates applies a batch of level mutations atomically. Quantity zero
// (or below) deletes the level. An unset side rejects the whole batch
// before any mutation.
func (s *Store) ApplyUpdates(symbol string, ts time.Time, updates []BookUpdate) error {
	for _, u := range updates {
		if u.Side != SideBuy && u.Side != SideSell {
			return fmt.Errorf("market: update book %s: side %d invalid", symbol, u.Side)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.bookLocked(symbol)
	for _, u := range updates {
		side := &b.bids
		if u.Side == SideSell {
			side = &b.asks
		}
		if side.levels == nil {
			side.levels = make(map[float64]float64)
		}
		if u.Quantity > 0 {
			side.levels[u.Price] = u.Quantity
		} else {
			delete(side.levels, u.Price)
		}
		side.ts = ts
	}
	return nil
}

func (s *Store) bookLocked(symbol string) *book {
	b, ok := s.books[symbol]
	if !ok {
		b = &book{}
		s.books[symbol] = b
	}
	return b
}

// Best returns the top of each side: highest bid, lowest ask. A side with
// no levels yields a zero BookLevel and zero time.
func (s *Store) Best(symbol string) (bid, ask BookLevel, bidTS, askTS time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.books[symbol]
	if !ok {
		return
	}
	for price, qty := range b.bids.levels {
		if price > bid.Price {
			bid = BookLevel{Price: price, Quantity: qty}
		}
	}
	if bid.Price > 0 {
		bidTS = b.bids.ts
	}
	for price, qty := range b.asks.levels {
		if ask.Price == 0 || price < ask.Price {
			ask = BookLevel{Price: price, Quantity: qty}
		}
	}
	if ask.Price > 0 {
		askTS = b.asks.ts
	}
	return
}

// BookSide returns a sorted copy of one side: bids descending, asks
// ascending.
func (s *Store) BookSide(symbol string, side Side) ([]BookLevel, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.books[symbol]
	if !ok {
		return nil, time.Time{}
	}
	src := b.bids
	if side == SideSell {
		src = b.asks
	}
	out := make([]BookLevel, 0, len(src.levels))
	for price, qty := range src.levels {
		out = append(out, BookLevel{Price: price, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if side == SideBuy {
			return out[i].Price > out[j].Price
		}
		return out[i].Price < out[j].Price
	})
	return out, src.ts
}

// SetLatestTrade records the most recent feed trade for a symbol.
func (s *Store) SetLatestTrade(symbol string, t Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades[symbol] = t
}

func (s *Store) LatestTrade(symbol string) (Trade, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trades[symbol]
	return t, ok
}

// BindSubID maps an upstream stream id to its symbol. Ids are assigned by
// the upstream per connection and change on every reconnect.
func (s *Store) BindSubID(id int64, symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subids[id] = symbol
}

func (s *Store) SymbolForSubID(id int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sym, ok := s.subids[id]
	return sym, ok
}

// ClearSubIDs drops all stream id bindings, called when the upstream
// connection is replaced.
func (s *Store) ClearSubIDs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subids = make(map[int64]string)
}
