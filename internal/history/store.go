// Package history is the historical data service: per-symbol tick archives
// on disk, a pump that keeps them current from the exchange trade history
// endpoint, and a DTC query server answering historical price data requests
// with raw ticks or OHLCV bars.
package history

import (
	"encoding/binary"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"bitsouk/internal/btrex"
	"bitsouk/internal/market"
	"bitsouk/logger"
)

// satoshi is the stored price/quantity unit: 1e-8 of the quote or base
// currency. Integer storage makes reads reproduce writes bit for bit.
const satoshi = 1e8

// Tick is one stored trade.
type Tick struct {
	TS       time.Time
	Side     market.Side
	PriceSat int64
	QtySat   int64
}

func (t Tick) Price() float64 { return float64(t.PriceSat) / satoshi }
func (t Tick) Qty() float64   { return float64(t.QtySat) / satoshi }

func tickFromTrade(tr btrex.TradeTick) Tick {
	return Tick{
		TS:       tr.ExecutedAt,
		Side:     tr.Side,
		PriceSat: int64(math.Round(tr.Price * satoshi)),
		QtySat:   int64(math.Round(tr.Quantity * satoshi)),
	}
}

// Store is one symbol's tick archive. Keys are big-endian nanosecond
// timestamps so database order is time order; values pack
// (side, price, qty).
type Store struct {
	symbol string
	db     *leveldb.DB
	log    *logger.Entry
}

// OpenStore opens, creating if needed, the archive for one symbol under
// dataDir/symbol.
func OpenStore(dataDir, symbol string) (*Store, error) {
	db, err := leveldb.OpenFile(filepath.Join(dataDir, symbol), nil)
	if err != nil {
		return nil, fmt.Errorf("history: open store %s: %w", symbol, err)
	}
	return &Store{
		symbol: symbol,
		db:     db,
		log:    logger.GetLogger().WithComponent("store").WithFields(logger.Fields{"symbol": symbol}),
	}, nil
}

func (s *Store) Symbol() string { return s.symbol }

func (s *Store) Close() error { return s.db.Close() }

func tickKey(ts time.Time) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], uint64(ts.UnixNano()))
	return k[:]
}

func keyTime(k []byte) time.Time {
	return time.Unix(0, int64(binary.BigEndian.Uint64(k))).UTC()
}

func encodeTick(t Tick) []byte {
	var v [17]byte
	v[0] = byte(t.Side)
	binary.BigEndian.PutUint64(v[1:9], uint64(t.PriceSat))
	binary.BigEndian.PutUint64(v[9:17], uint64(t.QtySat))
	return v[:]
}

func decodeTick(k, v []byte) (Tick, error) {
	if len(k) != 8 || len(v) != 17 {
		return Tick{}, fmt.Errorf("history: corrupt tick record, key %d bytes value %d bytes", len(k), len(v))
	}
	return Tick{
		TS:       keyTime(k),
		Side:     market.Side(v[0]),
		PriceSat: int64(binary.BigEndian.Uint64(v[1:9])),
		QtySat:   int64(binary.BigEndian.Uint64(v[9:17])),
	}, nil
}

// WriteTicks persists one fetch batch. Timestamps that do not advance
// within the batch are nudged forward one nanosecond each so every trade
// keeps its own key; a re-fetched window overwrites in place.
func (s *Store) WriteTicks(ticks []Tick) (int, error) {
	if len(ticks) == 0 {
		return 0, nil
	}
	batch := new(leveldb.Batch)
	var last int64
	for _, t := range ticks {
		ns := t.TS.UnixNano()
		if ns <= last {
			ns = last + 1
		}
		last = ns
		t.TS = time.Unix(0, ns).UTC()
		batch.Put(tickKey(t.TS), encodeTick(t))
	}
	if err := s.db.Write(batch, nil); err != nil {
		return 0, fmt.Errorf("history: write %d ticks for %s: %w", len(ticks), s.symbol, err)
	}
	return len(ticks), nil
}

// Scan walks ticks in time order and hands each to fn. A zero start begins
// at the epoch, a zero end is open-ended; both bounds are inclusive.
func (s *Store) Scan(start, end time.Time, fn func(Tick) error) error {
	rng := new(util.Range)
	if !start.IsZero() {
		rng.Start = tickKey(start)
	}
	if !end.IsZero() {
		rng.Limit = tickKey(end.Add(time.Nanosecond))
	}
	it := s.db.NewIterator(rng, nil)
	defer it.Release()
	for it.Next() {
		t, err := decodeTick(it.Key(), it.Value())
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
	}
	return it.Error()
}

// errStopScan short-circuits a Scan once the caller has what it needs.
var errStopScan = fmt.Errorf("history: stop scan")

// First returns the earliest tick in the range, with ok=false when the
// range is empty.
func (s *Store) First(start, end time.Time) (Tick, bool, error) {
	var (
		first Tick
		found bool
	)
	err := s.Scan(start, end, func(t Tick) error {
		first = t
		found = true
		return errStopScan
	})
	if err != nil && err != errStopScan {
		return Tick{}, false, err
	}
	return first, found, nil
}
