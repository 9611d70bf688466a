// Package feed keeps the process's market picture current: a supervisor
// owns the single upstream WebSocket and applies its events to the state
// store, and a refresher polls the REST ticker table. Both hand applied
// changes to a Sink for fan-out to subscribed clients.
package feed

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"bitsouk/config"
	"bitsouk/internal/btrex"
	"bitsouk/internal/market"
	"bitsouk/internal/metrics"
	"bitsouk/logger"
)

// Sink receives market events after they are applied to the store. The
// connection registry implements it.
type Sink interface {
	BookUpdated(symbol string, ts time.Time, update market.BookUpdate)
	TradePrinted(symbol string, trade market.Trade)
	TickerChanged(delta TickerDelta)
}

// Supervisor maintains exactly one upstream market socket, resubscribing
// on every reconnect and restarting the socket when it stalls.
type Supervisor struct {
	config    *config.Config
	store     *market.Store
	sink      Sink
	wg        *sync.WaitGroup
	mu        sync.Mutex
	running   bool
	ctx       context.Context
	conn      *websocket.Conn
	lastEvent atomic.Int64
	log       *logger.Log
}

func NewSupervisor(cfg *config.Config, store *market.Store, sink Sink) *Supervisor {
	return &Supervisor{
		config: cfg,
		store:  store,
		sink:   sink,
		wg:     &sync.WaitGroup{},
		log:    logger.Sub("btrex"),
	}
}

// Start launches the stream and watchdog loops.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("feed supervisor already running")
	}
	s.running = true
	s.ctx = ctx
	s.mu.Unlock()

	s.log.WithComponent("feed").WithFields(logger.Fields{"url": s.config.Upstream.WsURL}).Info("starting market feed")

	s.wg.Add(1)
	go s.streamLoop()

	s.wg.Add(1)
	go s.watchdog()
	return nil
}

// Stop waits for the loops to exit. The caller cancels the Start context
// first.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
	s.log.WithComponent("feed").Info("market feed stopped")
}

func (s *Supervisor) streamLoop() {
	defer s.wg.Done()
	btrex.RunStream(s.ctx, btrex.StreamConfig{
		URL:       s.config.Upstream.WsURL,
		Heartbeat: s.config.Upstream.WsHeartbeat,
		Symbols:   s.store.Symbols,
		Handler:   s.handleFrame,
		OnConn:    s.setConn,
	}, s.log.WithComponent("feed"))
}

// setConn tracks the live connection for the watchdog. Stream ids are
// per-connection, so the subid table resets on every connect.
func (s *Supervisor) setConn(conn *websocket.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	s.lastEvent.Store(0)
	if conn != nil {
		s.store.ClearSubIDs()
		s.log.WithComponent("feed").Info("market feed connected")
	}
}

// restart drops the current connection; the stream loop redials.
func (s *Supervisor) restart() {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
	metrics.IncFeedReconnect()
}

func (s *Supervisor) watchdog() {
	defer s.wg.Done()
	timeout := s.config.Upstream.WatchdogTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ticker := time.NewTicker(timeout)
	defer ticker.Stop()
	log := s.log.WithComponent("feed")
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			last := s.lastEvent.Load()
			if last == 0 {
				continue
			}
			if idle := time.Since(time.Unix(0, last)); idle > timeout {
				log.WithFields(logger.Fields{"idle": idle.String()}).Warn("market feed stalled, forcing reconnect")
				s.restart()
			}
		}
	}
}

func (s *Supervisor) handleFrame(data []byte) {
	s.lastEvent.Store(time.Now().UnixNano())
	log := s.log.WithComponent("feed")

	ev, err := btrex.ParseFeedMessage(data)
	if err != nil {
		log.WithError(err).Error("failed to decode market feed frame")
		s.restart()
		return
	}

	now := time.Now()
	switch ev := ev.(type) {
	case btrex.FeedSnapshot:
		s.store.ReplaceBook(ev.Symbol, ev.Bids, ev.Asks, now)
		s.store.BindSubID(ev.SubID, ev.Symbol)
		metrics.IncFeedEvent("snapshot")
		log.WithFields(logger.Fields{"symbol": ev.Symbol, "subid": ev.SubID}).Debug("book snapshot installed")

	case btrex.FeedUpdate:
		symbol, ok := s.store.SymbolForSubID(ev.SubID)
		if !ok {
			metrics.IncFeedEvent("orphan")
			log.WithFields(logger.Fields{"subid": ev.SubID}).Warn("book update for unknown stream")
			return
		}
		update := market.BookUpdate{Side: ev.Side, Price: ev.Price, Quantity: ev.Quantity}
		if err := s.store.ApplyUpdates(symbol, now, []market.BookUpdate{update}); err != nil {
			log.WithError(err).WithFields(logger.Fields{"symbol": symbol}).Error("failed to apply book update")
			return
		}
		metrics.IncFeedEvent("update")
		s.sink.BookUpdated(symbol, now, update)

	case btrex.FeedTrade:
		symbol, ok := s.store.SymbolForSubID(ev.SubID)
		if !ok {
			metrics.IncFeedEvent("orphan")
			log.WithFields(logger.Fields{"subid": ev.SubID}).Warn("trade for unknown stream")
			return
		}
		trade := market.Trade{Timestamp: ev.Timestamp, Side: ev.Side, Price: ev.Price, Quantity: ev.Quantity}
		s.store.SetLatestTrade(symbol, trade)
		metrics.IncFeedEvent("trade")
		s.sink.TradePrinted(symbol, trade)

	case btrex.FeedError:
		metrics.IncFeedEvent("error")
		log.WithFields(logger.Fields{"text": ev.Text}).Warn("market feed reported error")
	}
}
