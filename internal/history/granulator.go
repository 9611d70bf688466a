package history

import (
	"time"

	"bitsouk/internal/market"
)

// Bar is one OHLCV bucket.
type Bar struct {
	Start     time.Time
	Open      float64
	High      float64
	Low       float64
	Last      float64
	Volume    float64
	NumTrades uint32
	BidVolume float64 // sell-initiated quantity
	AskVolume float64 // buy-initiated quantity
}

// Granulator folds a time-ordered tick stream into fixed-span OHLCV bars in
// a single pass. Buckets are anchored at the timestamp of the first tick
// they contain rather than at calendar boundaries: a bucket opened at ts
// covers [ts, ts+span-1ns].
type Granulator struct {
	span time.Duration
	emit func(Bar) error

	open bool
	end  time.Time
	cur  Bar
}

func NewGranulator(span time.Duration, emit func(Bar) error) *Granulator {
	return &Granulator{span: span, emit: emit}
}

// Feed folds one tick, emitting the bucket in progress when the tick falls
// past its end.
func (g *Granulator) Feed(t Tick) error {
	if g.open && t.TS.After(g.end) {
		if err := g.emit(g.cur); err != nil {
			return err
		}
		g.open = false
	}
	price, qty := t.Price(), t.Qty()
	if !g.open {
		g.open = true
		g.end = t.TS.Add(g.span - time.Nanosecond)
		g.cur = Bar{
			Start:     t.TS,
			Open:      price,
			High:      price,
			Low:       price,
			Last:      price,
			Volume:    qty,
			NumTrades: 1,
		}
		switch t.Side {
		case market.SideBuy:
			g.cur.AskVolume = qty
		case market.SideSell:
			g.cur.BidVolume = qty
		}
		return nil
	}
	if price > g.cur.High {
		g.cur.High = price
	}
	if price < g.cur.Low {
		g.cur.Low = price
	}
	g.cur.Last = price
	g.cur.Volume += qty
	g.cur.NumTrades++
	switch t.Side {
	case market.SideBuy:
		g.cur.AskVolume += qty
	case market.SideSell:
		g.cur.BidVolume += qty
	}
	return nil
}

// Flush emits the bucket in progress, if any.
func (g *Granulator) Flush() error {
	if !g.open {
		return nil
	}
	g.open = false
	return g.emit(g.cur)
}
