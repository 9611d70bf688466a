package bridge

import (
	"context"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"bitsouk/internal/btrex"
	"bitsouk/internal/dtc"
	"bitsouk/internal/feed"
	"bitsouk/internal/market"
	"bitsouk/internal/metrics"
	"bitsouk/logger"
)

// Conn is one client session: the socket, its subscriptions in both
// directions, and the account tables the periodic refresh keeps current.
type Conn struct {
	registry *Registry
	nc       net.Conn
	remote   string
	log      *logger.Entry
	ctx      context.Context

	writeMu sync.Mutex
	closed  bool
	dropped atomic.Uint32

	done      chan struct{}
	closeOnce sync.Once

	mu             sync.RWMutex
	loggedOn       bool
	tradingEnabled bool
	sendSecdefs    bool
	creds          btrex.Credentials

	mdBySymbol    map[string]uint32
	mdByID        map[uint32]string
	depthBySymbol map[string]uint32
	depthByID     map[uint32]string

	orders         map[uuid.UUID]btrex.Order
	clientOrders   map[uuid.UUID]dtc.SubmitNewSingleOrder
	fills          map[uuid.UUID]btrex.Fill
	positions      []btrex.Position
	balances       []btrex.Balance
	marginBalances map[string]float64
	marginSummary  btrex.MarginSummary
}

func newConn(registry *Registry, nc net.Conn) *Conn {
	remote := nc.RemoteAddr().String()
	return &Conn{
		registry:      registry,
		nc:            nc,
		remote:        remote,
		log:           registry.log.WithComponent("bridge").WithFields(logger.Fields{"remote": remote}),
		done:          make(chan struct{}),
		mdBySymbol:    make(map[string]uint32),
		mdByID:        make(map[uint32]string),
		depthBySymbol: make(map[string]uint32),
		depthByID:     make(map[uint32]string),
		orders:        make(map[uuid.UUID]btrex.Order),
		clientOrders:  make(map[uuid.UUID]dtc.SubmitNewSingleOrder),
		fills:         make(map[uuid.UUID]btrex.Fill),
	}
}

// teardown closes the session exactly once: the socket, the per-connection
// timers, and the registry entry.
func (c *Conn) teardown(reason string) {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		c.closed = true
		c.writeMu.Unlock()
		close(c.done)
		c.nc.Close()
		c.registry.remove(c)
		c.log.WithFields(logger.Fields{"reason": reason}).Debug("session closed")
	})
}

// send frames and writes one message. Writes after close are dropped and
// counted for the heartbeat's num_dropped_messages.
func (c *Conn) send(msg dtc.Message) {
	frame, err := dtc.EncodeFrame(msg)
	if err != nil {
		c.log.WithError(err).Error("failed to encode message")
		return
	}
	c.writeMu.Lock()
	if c.closed {
		c.writeMu.Unlock()
		c.dropped.Add(1)
		metrics.IncClientDropped()
		return
	}
	_, err = c.nc.Write(frame)
	c.writeMu.Unlock()
	if err != nil {
		c.log.WithError(err).Warn("client write failed")
		c.teardown("write error")
		return
	}
	metrics.IncClientMessage("out", strconv.Itoa(int(msg.Type())))
}

// sendRaw writes a preframed message (the encoding handshake reply).
func (c *Conn) sendRaw(frame []byte) {
	c.writeMu.Lock()
	if c.closed {
		c.writeMu.Unlock()
		c.dropped.Add(1)
		metrics.IncClientDropped()
		return
	}
	_, err := c.nc.Write(frame)
	c.writeMu.Unlock()
	if err != nil {
		c.log.WithError(err).Warn("client write failed")
		c.teardown("write error")
	}
}

func (c *Conn) isLoggedOn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loggedOn
}

func (c *Conn) credentials() (btrex.Credentials, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.creds, c.tradingEnabled
}

// publishBookUpdate forwards one applied book change to a depth-subscribed
// session.
func (c *Conn) publishBookUpdate(symbol string, ts time.Time, update market.BookUpdate) {
	c.mu.RLock()
	id, ok := c.depthBySymbol[symbol]
	c.mu.RUnlock()
	if !ok {
		return
	}
	updateType := dtc.DepthInsertUpdate
	if update.Quantity <= 0 {
		updateType = dtc.DepthDelete
	}
	c.send(&dtc.MarketDepthUpdateLevel{
		SymbolID:   id,
		Side:       toWireSide(update.Side),
		Price:      update.Price,
		Quantity:   update.Quantity,
		UpdateType: updateType,
		DateTime:   dtc.UnixSeconds(ts),
	})
}

// publishTrade forwards one trade print to a market-data-subscribed
// session. A buy-side taker printed at the ask, a sell-side taker at the
// bid.
func (c *Conn) publishTrade(symbol string, trade market.Trade) {
	c.mu.RLock()
	id, ok := c.mdBySymbol[symbol]
	c.mu.RUnlock()
	if !ok {
		return
	}
	at := dtc.AtBid
	if trade.Side == market.SideBuy {
		at = dtc.AtAsk
	}
	c.send(&dtc.MarketDataUpdateTrade{
		SymbolID:   id,
		AtBidOrAsk: at,
		Price:      trade.Price,
		Volume:     trade.Quantity,
		DateTime:   dtc.UnixSeconds(trade.Timestamp),
	})
	if c.registry.config.Upstream.EmitLastTradeSnapshot {
		c.send(&dtc.MarketDataUpdateLastTradeSnapshot{
			SymbolID:          id,
			LastTradePrice:    trade.Price,
			LastTradeVolume:   trade.Quantity,
			LastTradeDateTime: dtc.UnixSeconds(trade.Timestamp),
		})
	}
}

// publishTickerDelta forwards the changed fields of a refreshed ticker.
// Bid/ask moves are suppressed for depth-subscribed sessions, which see
// the book directly.
func (c *Conn) publishTickerDelta(delta feed.TickerDelta) {
	c.mu.RLock()
	loggedOn, sendSecdefs := c.loggedOn, c.sendSecdefs
	id, subscribed := c.mdBySymbol[delta.Symbol]
	_, depthSubscribed := c.depthBySymbol[delta.Symbol]
	c.mu.RUnlock()
	if !loggedOn {
		return
	}
	if delta.First && sendSecdefs {
		c.send(securityDefinition(0, delta.Symbol, true))
	}
	if !subscribed {
		return
	}
	if delta.VolumeChanged {
		c.send(&dtc.MarketDataUpdateSessionVolume{SymbolID: id, Volume: delta.Ticker.BaseVolume})
	}
	if delta.LowChanged {
		c.send(&dtc.MarketDataUpdateSessionLow{SymbolID: id, Price: delta.Ticker.Low24h})
	}
	if delta.HighChanged {
		c.send(&dtc.MarketDataUpdateSessionHigh{SymbolID: id, Price: delta.Ticker.High24h})
	}
	if delta.QuoteChanged && !depthSubscribed {
		c.send(&dtc.MarketDataUpdateBidAsk{
			SymbolID: id,
			BidPrice: delta.Ticker.Bid,
			AskPrice: delta.Ticker.Ask,
			DateTime: dtc.UnixSeconds(time.Now()),
		})
	}
}

func (c *Conn) heartbeatLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.send(&dtc.Heartbeat{
				NumDroppedMessages: c.dropped.Load(),
				CurrentDateTime:    time.Now().Unix(),
			})
		}
	}
}

// refreshLoop enqueues the account refresh thunks on every tick. The first
// round is enqueued by the logon handler so request handlers have tables
// to read.
func (c *Conn) refreshLoop(span time.Duration) {
	if span <= 0 {
		span = 30 * time.Second
	}
	ticker := time.NewTicker(span)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.enqueueAccountRefresh()
		}
	}
}

func (c *Conn) enqueueAccountRefresh() {
	q := c.registry.queue
	thunks := []struct {
		name string
		fn   func() error
	}{
		{"update_orders", c.updateOrders},
		{"update_trades", c.updateTrades},
		{"update_balances", c.updateBalances},
		{"update_positions", c.updatePositions},
	}
	for _, t := range thunks {
		if err := q.PushNowait(t.name, t.fn); err != nil {
			c.log.WithError(err).WithFields(logger.Fields{"call": t.name}).Warn("failed to enqueue account refresh")
		}
	}
}

func (c *Conn) updateOrders() error {
	creds, enabled := c.credentials()
	if !enabled {
		return nil
	}
	orders, err := c.registry.client.OpenOrders(c.ctx, creds)
	if err != nil {
		return err
	}
	next := make(map[uuid.UUID]btrex.Order, len(orders))
	for _, o := range orders {
		next[o.ID] = o
	}
	c.mu.Lock()
	c.orders = next
	c.mu.Unlock()
	return nil
}

func (c *Conn) updateTrades() error {
	creds, enabled := c.credentials()
	if !enabled {
		return nil
	}
	fills, err := c.registry.client.Executions(c.ctx, creds)
	if err != nil {
		return err
	}
	next := make(map[uuid.UUID]btrex.Fill, len(fills))
	for _, f := range fills {
		next[f.ID] = f
	}
	c.mu.Lock()
	// TODO: emit order updates for fills first seen here so clients learn
	// about executions between polls without re-requesting.
	c.fills = next
	c.mu.Unlock()
	return nil
}

func (c *Conn) updateBalances() error {
	creds, enabled := c.credentials()
	if !enabled {
		return nil
	}
	balances, err := c.registry.client.Balances(c.ctx, creds)
	if err != nil {
		return err
	}
	marginBalances, err := c.registry.client.MarginBalances(c.ctx, creds)
	if err != nil {
		return err
	}
	summary, err := c.registry.client.MarginAccountSummary(c.ctx, creds)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.balances = balances
	c.marginBalances = marginBalances
	c.marginSummary = summary
	c.mu.Unlock()
	return nil
}

func (c *Conn) updatePositions() error {
	creds, enabled := c.credentials()
	if !enabled {
		return nil
	}
	positions, err := c.registry.client.MarginPositions(c.ctx, creds)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.positions = positions
	c.mu.Unlock()
	return nil
}

func toWireSide(s market.Side) dtc.BuySell {
	switch s {
	case market.SideBuy:
		return dtc.SideBuy
	case market.SideSell:
		return dtc.SideSell
	}
	return dtc.BuySellUnset
}

func fromWireSide(s dtc.BuySell) market.Side {
	switch s {
	case dtc.SideBuy:
		return market.SideBuy
	case dtc.SideSell:
		return market.SideSell
	}
	return market.SideUnset
}
