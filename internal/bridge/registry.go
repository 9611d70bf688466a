// Package bridge implements the live trading endpoint: a framed TCP server,
// per-connection session state, and the translation between client requests
// and the upstream exchange.
package bridge

import (
	"sync"
	"time"

	"bitsouk/config"
	"bitsouk/internal/btrex"
	"bitsouk/internal/feed"
	"bitsouk/internal/market"
	"bitsouk/internal/metrics"
	"bitsouk/internal/restsync"
	"bitsouk/logger"
)

// Exchange identity carried in every emitted symbol, and the two trade
// accounts every session exposes.
const (
	exchangeName    = "BTREX"
	accountExchange = "exchange"
	accountMargin   = "margin"
)

// Quantities travel the client wire in units of 1e-4 of the exchange's
// base unit.
const qtyWireScale = 1e4

// Registry is the process-wide connection table. It also receives applied
// market events from the feed and fans them out to every session.
type Registry struct {
	config *config.Config
	store  *market.Store
	client *btrex.Client
	queue  *restsync.Queue
	mu     sync.RWMutex
	conns  map[string]*Conn
	log    *logger.Log
}

func NewRegistry(cfg *config.Config, store *market.Store, client *btrex.Client, queue *restsync.Queue) *Registry {
	return &Registry{
		config: cfg,
		store:  store,
		client: client,
		queue:  queue,
		conns:  make(map[string]*Conn),
		log:    logger.Sub("dtc"),
	}
}

func (r *Registry) add(c *Conn) {
	r.mu.Lock()
	r.conns[c.remote] = c
	n := len(r.conns)
	r.mu.Unlock()
	metrics.IncClientConnections()
	r.log.WithComponent("bridge").WithFields(logger.Fields{"remote": c.remote, "connections": n}).Info("client connected")
}

func (r *Registry) remove(c *Conn) {
	r.mu.Lock()
	if _, ok := r.conns[c.remote]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.conns, c.remote)
	n := len(r.conns)
	r.mu.Unlock()
	metrics.DecClientConnections()
	r.log.WithComponent("bridge").WithFields(logger.Fields{"remote": c.remote, "connections": n}).Info("client disconnected")
}

// snapshot returns the current sessions. Fan-out iterates this copy so
// slow writers never hold the table lock.
func (r *Registry) snapshot() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}

// BookUpdated implements feed.Sink.
func (r *Registry) BookUpdated(symbol string, ts time.Time, update market.BookUpdate) {
	for _, c := range r.snapshot() {
		c.publishBookUpdate(symbol, ts, update)
	}
}

// TradePrinted implements feed.Sink.
func (r *Registry) TradePrinted(symbol string, trade market.Trade) {
	for _, c := range r.snapshot() {
		c.publishTrade(symbol, trade)
	}
}

// TickerChanged implements feed.Sink.
func (r *Registry) TickerChanged(delta feed.TickerDelta) {
	for _, c := range r.snapshot() {
		c.publishTickerDelta(delta)
	}
}
