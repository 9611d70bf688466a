package bridge

import (
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"bitsouk/internal/dtc"
	"bitsouk/internal/metrics"
	"bitsouk/logger"
)

// logonSendSecdefs is bit 7 of the logon request's integer_1.
const logonSendSecdefs = 1 << 7

func (c *Conn) handleFrame(f dtc.Frame) {
	metrics.IncClientMessage("in", strconv.Itoa(int(f.Type)))
	switch f.Type {
	case dtc.TypeEncodingRequest:
		c.handleEncoding(f)
	case dtc.TypeLogonRequest:
		var req dtc.LogonRequest
		if err := req.Unmarshal(f.Payload); err != nil {
			c.log.WithError(err).Warn("malformed logon request")
			return
		}
		c.handleLogon(&req)
	case dtc.TypeHeartbeat:
		// Inbound heartbeats only prove liveness.
	case dtc.TypeLogoff:
		var req dtc.Logoff
		if err := req.Unmarshal(f.Payload); err == nil && req.Reason != "" {
			c.log.WithFields(logger.Fields{"reason": req.Reason}).Info("client logged off")
		}
		c.teardown("logoff")
	default:
		if !c.isLoggedOn() {
			c.log.WithFields(logger.Fields{"type": int(f.Type)}).Warn("message before logon dropped")
			return
		}
		c.dispatch(f)
	}
}

func (c *Conn) dispatch(f dtc.Frame) {
	switch f.Type {
	case dtc.TypeSecurityDefinitionForSymbolRequest:
		var req dtc.SecurityDefinitionForSymbolRequest
		if err := req.Unmarshal(f.Payload); err != nil {
			c.log.WithError(err).Warn("malformed security definition request")
			return
		}
		c.handleSecurityDefinition(&req)
	case dtc.TypeMarketDataRequest:
		var req dtc.MarketDataRequest
		if err := req.Unmarshal(f.Payload); err != nil {
			c.log.WithError(err).Warn("malformed market data request")
			return
		}
		c.handleMarketData(&req)
	case dtc.TypeMarketDepthRequest:
		var req dtc.MarketDepthRequest
		if err := req.Unmarshal(f.Payload); err != nil {
			c.log.WithError(err).Warn("malformed market depth request")
			return
		}
		c.handleMarketDepth(&req)
	case dtc.TypeSubmitNewSingleOrder:
		var req dtc.SubmitNewSingleOrder
		if err := req.Unmarshal(f.Payload); err != nil {
			c.log.WithError(err).Warn("malformed order submit")
			return
		}
		c.handleSubmit(&req)
	case dtc.TypeCancelOrder:
		var req dtc.CancelOrder
		if err := req.Unmarshal(f.Payload); err != nil {
			c.log.WithError(err).Warn("malformed order cancel")
			return
		}
		c.handleCancel(&req)
	case dtc.TypeCancelReplaceOrder:
		var req dtc.CancelReplaceOrder
		if err := req.Unmarshal(f.Payload); err != nil {
			c.log.WithError(err).Warn("malformed cancel replace")
			return
		}
		c.handleCancelReplace(&req)
	case dtc.TypeOpenOrdersRequest:
		var req dtc.OpenOrdersRequest
		if err := req.Unmarshal(f.Payload); err != nil {
			c.log.WithError(err).Warn("malformed open orders request")
			return
		}
		c.handleOpenOrders(&req)
	case dtc.TypeCurrentPositionsRequest:
		var req dtc.CurrentPositionsRequest
		if err := req.Unmarshal(f.Payload); err != nil {
			c.log.WithError(err).Warn("malformed positions request")
			return
		}
		c.handlePositions(&req)
	case dtc.TypeHistoricalOrderFillsRequest:
		var req dtc.HistoricalOrderFillsRequest
		if err := req.Unmarshal(f.Payload); err != nil {
			c.log.WithError(err).Warn("malformed order fills request")
			return
		}
		c.handleOrderFills(&req)
	case dtc.TypeTradeAccountsRequest:
		var req dtc.TradeAccountsRequest
		if err := req.Unmarshal(f.Payload); err != nil {
			c.log.WithError(err).Warn("malformed trade accounts request")
			return
		}
		c.handleTradeAccounts(&req)
	case dtc.TypeAccountBalanceRequest:
		var req dtc.AccountBalanceRequest
		if err := req.Unmarshal(f.Payload); err != nil {
			c.log.WithError(err).Warn("malformed balance request")
			return
		}
		c.handleBalance(&req)
	default:
		c.log.WithFields(logger.Fields{"type": int(f.Type)}).Warn("unknown message type dropped")
	}
}

func (c *Conn) handleEncoding(f dtc.Frame) {
	if _, err := dtc.ParseEncodingRequest(f.Payload); err != nil {
		c.log.WithError(err).Warn("bad encoding request")
		c.teardown("bad handshake")
		return
	}
	c.sendRaw(dtc.EncodingResponseFrame())
}

// handleLogon validates credentials against the exchange and opens the
// session. The logon response itself always reports success; whether
// trading is supported rides on the credential probe.
func (c *Conn) handleLogon(req *dtc.LogonRequest) {
	if c.isLoggedOn() {
		c.log.Warn("duplicate logon request ignored")
		return
	}

	creds := btrexCredentials(req.Username, req.Password)
	tradingEnabled := false
	var resultText string
	switch {
	case creds.Empty():
		resultText = "Trading disabled: No credentials"
	case req.Integer2 != 0:
		resultText = "Trading disabled: Invalid Bittrex credentials"
	default:
		probe := c.registry.queue.Push("margin_account_summary", func() error {
			_, err := c.registry.client.MarginAccountSummary(c.ctx, creds)
			return err
		})
		if err := <-probe; err != nil {
			c.log.WithError(err).Info("credential validation failed")
			resultText = "Trading disabled: Invalid Bittrex credentials"
		} else {
			tradingEnabled = true
			resultText = "Trading enabled: Valid Bittrex credentials"
		}
	}

	sendSecdefs := req.Integer1&logonSendSecdefs != 0

	c.mu.Lock()
	c.loggedOn = true
	c.tradingEnabled = tradingEnabled
	c.sendSecdefs = sendSecdefs
	c.creds = creds
	c.mu.Unlock()

	c.send(&dtc.LogonResponse{
		ProtocolVersion:                 dtc.ProtocolVersion,
		Result:                          dtc.LogonSuccess,
		ResultText:                      resultText,
		ServerName:                      c.registry.config.Bridge.ServerName,
		MarketDepthUpdatesBestBidAndAsk: true,
		TradingIsSupported:              tradingEnabled,
		OrderCancelReplaceSupported:     true,
		SymbolExchangeDelimiter:         "-",
		SecurityDefinitionsSupported:    true,
		MarketDepthIsSupported:          true,
		MarketDataSupported:             true,
	})

	c.log.WithFields(logger.Fields{
		"client":  req.ClientName,
		"trading": tradingEnabled,
	}).Info("client logged on")

	if req.HeartbeatIntervalInSeconds > 0 {
		go c.heartbeatLoop(time.Duration(req.HeartbeatIntervalInSeconds) * time.Second)
	}
	if !c.registry.config.Bridge.SierraChart || sendSecdefs {
		c.streamSecdefs()
	}
	if tradingEnabled {
		c.enqueueAccountRefresh()
	}
	go c.refreshLoop(c.registry.config.Bridge.UpdateClientSpan)
}

// knownSymbol checks the exchange tag and the ticker table.
func (c *Conn) knownSymbol(symbol, exchange string) bool {
	if exchange != exchangeName {
		return false
	}
	_, _, known := c.registry.store.Ticker(symbol)
	return known
}

func (c *Conn) handleSecurityDefinition(req *dtc.SecurityDefinitionForSymbolRequest) {
	if !c.knownSymbol(req.Symbol, req.Exchange) {
		c.send(&dtc.SecurityDefinitionReject{
			RequestID:  req.RequestID,
			RejectText: "Unknown symbol " + req.Symbol,
		})
		return
	}
	c.send(securityDefinition(req.RequestID, req.Symbol, true))
}

func (c *Conn) handleMarketData(req *dtc.MarketDataRequest) {
	reject := func(text string) {
		c.send(&dtc.MarketDataReject{SymbolID: req.SymbolID, RejectText: text})
	}
	switch req.RequestAction {
	case dtc.ActionUnsubscribe:
		c.mu.Lock()
		if symbol, ok := c.mdByID[req.SymbolID]; ok {
			delete(c.mdByID, req.SymbolID)
			delete(c.mdBySymbol, symbol)
		}
		c.mu.Unlock()

	case dtc.ActionSnapshot:
		if !c.knownSymbol(req.Symbol, req.Exchange) {
			reject("Unknown symbol " + req.Symbol)
			return
		}
		c.send(c.buildSnapshot(req.SymbolID, req.Symbol))

	case dtc.ActionSubscribe:
		if !c.knownSymbol(req.Symbol, req.Exchange) {
			reject("Unknown symbol " + req.Symbol)
			return
		}
		c.mu.Lock()
		if existing, ok := c.mdByID[req.SymbolID]; ok && existing != req.Symbol {
			c.mu.Unlock()
			reject("Already subscribed to " + existing)
			return
		}
		if prev, ok := c.mdBySymbol[req.Symbol]; ok && prev != req.SymbolID {
			delete(c.mdByID, prev)
		}
		c.mdByID[req.SymbolID] = req.Symbol
		c.mdBySymbol[req.Symbol] = req.SymbolID
		c.mu.Unlock()
		c.send(c.buildSnapshot(req.SymbolID, req.Symbol))

	default:
		reject("Unknown request action " + strconv.Itoa(int(req.RequestAction)))
	}
}

// buildSnapshot assembles the one-shot market picture from the ticker,
// latest trade and best bid/ask.
func (c *Conn) buildSnapshot(id uint32, symbol string) *dtc.MarketDataSnapshot {
	store := c.registry.store
	ticker, _, _ := store.Ticker(symbol)
	bid, ask, bidTS, askTS := store.Best(symbol)

	snap := &dtc.MarketDataSnapshot{
		SymbolID:         id,
		SessionHighPrice: ticker.High24h,
		SessionLowPrice:  ticker.Low24h,
		SessionVolume:    ticker.BaseVolume,
		BidPrice:         bid.Price,
		BidQuantity:      bid.Quantity,
		AskPrice:         ask.Price,
		AskQuantity:      ask.Quantity,
		LastTradePrice:   ticker.Last,
	}
	if trade, ok := store.LatestTrade(symbol); ok {
		snap.LastTradePrice = trade.Price
		snap.LastTradeVolume = trade.Quantity
		snap.LastTradeDateTime = dtc.UnixSeconds(trade.Timestamp)
	}
	bidAskTS := bidTS
	if askTS.After(bidAskTS) {
		bidAskTS = askTS
	}
	if !bidAskTS.IsZero() {
		snap.BidAskDateTime = dtc.UnixSeconds(bidAskTS)
	}
	return snap
}

func (c *Conn) handleMarketDepth(req *dtc.MarketDepthRequest) {
	reject := func(text string) {
		c.send(&dtc.MarketDepthReject{SymbolID: req.SymbolID, RejectText: text})
	}
	// Depth snapshots are a single empty final-of-batch level; the real
	// book arrives incrementally through the feed.
	sentinel := func() {
		c.send(&dtc.MarketDepthSnapshotLevel{
			SymbolID:             req.SymbolID,
			IsLastMessageInBatch: true,
		})
	}
	switch req.RequestAction {
	case dtc.ActionUnsubscribe:
		c.mu.Lock()
		if symbol, ok := c.depthByID[req.SymbolID]; ok {
			delete(c.depthByID, req.SymbolID)
			delete(c.depthBySymbol, symbol)
		}
		c.mu.Unlock()

	case dtc.ActionSnapshot:
		if !c.knownSymbol(req.Symbol, req.Exchange) {
			reject("Unknown symbol " + req.Symbol)
			return
		}
		sentinel()

	case dtc.ActionSubscribe:
		if !c.knownSymbol(req.Symbol, req.Exchange) {
			reject("Unknown symbol " + req.Symbol)
			return
		}
		c.mu.Lock()
		if existing, ok := c.depthByID[req.SymbolID]; ok && existing != req.Symbol {
			c.mu.Unlock()
			reject("Already subscribed to " + existing)
			return
		}
		if prev, ok := c.depthBySymbol[req.Symbol]; ok && prev != req.SymbolID {
			delete(c.depthByID, prev)
		}
		c.depthByID[req.SymbolID] = req.Symbol
		c.depthBySymbol[req.Symbol] = req.SymbolID
		c.mu.Unlock()
		sentinel()

	default:
		reject("Unknown request action " + strconv.Itoa(int(req.RequestAction)))
	}
}

func (c *Conn) handleOpenOrders(req *dtc.OpenOrdersRequest) {
	type entry struct {
		id     uuid.UUID
		submit dtc.SubmitNewSingleOrder
		filled float64
	}

	c.mu.RLock()
	entries := make([]entry, 0, len(c.clientOrders))
	for id, submit := range c.clientOrders {
		if req.RequestAllOrders == 0 && req.ServerOrderID != "" && req.ServerOrderID != id.String() {
			continue
		}
		e := entry{id: id, submit: submit}
		if rec, ok := c.orders[id]; ok {
			e.filled = rec.Filled
		}
		entries = append(entries, e)
	}
	c.mu.RUnlock()

	if len(entries) == 0 {
		c.send(&dtc.OrderUpdate{
			RequestID:        req.RequestID,
			TotalNumMessages: 1,
			MessageNumber:    1,
			NoOrders:         true,
		})
		return
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].id.String() < entries[j].id.String() })
	for i, e := range entries {
		filledWire := e.filled * qtyWireScale
		status := dtc.OrderStatusOpen
		if filledWire > 0 {
			status = dtc.OrderStatusPartiallyFilled
		}
		c.send(&dtc.OrderUpdate{
			RequestID:         req.RequestID,
			TotalNumMessages:  int32(len(entries)),
			MessageNumber:     int32(i + 1),
			Symbol:            e.submit.Symbol,
			Exchange:          exchangeName,
			ServerOrderID:     e.id.String(),
			ClientOrderID:     e.submit.ClientOrderID,
			OrderStatus:       status,
			OrderUpdateReason: dtc.ReasonOpenOrdersRequestResponse,
			OrderType:         e.submit.OrderType,
			BuySell:           e.submit.BuySell,
			Price1:            e.submit.Price1,
			TimeInForce:       e.submit.TimeInForce,
			OrderQuantity:     e.submit.Quantity,
			FilledQuantity:    filledWire,
			RemainingQuantity: e.submit.Quantity - filledWire,
			TradeAccount:      e.submit.TradeAccount,
		})
	}
}

func (c *Conn) handlePositions(req *dtc.CurrentPositionsRequest) {
	c.mu.RLock()
	positions := make([]struct {
		symbol string
		qty    float64
		price  float64
		id     string
	}, 0, len(c.positions))
	for _, p := range c.positions {
		positions = append(positions, struct {
			symbol string
			qty    float64
			price  float64
			id     string
		}{p.Symbol, p.Quantity, p.BasePrice, p.ID.String()})
	}
	c.mu.RUnlock()

	if len(positions) == 0 {
		c.send(&dtc.PositionUpdate{
			RequestID:           req.RequestID,
			TotalNumberMessages: 1,
			MessageNumber:       1,
			TradeAccount:        accountMargin,
			NoPositions:         true,
		})
		return
	}

	sort.Slice(positions, func(i, j int) bool { return positions[i].id < positions[j].id })
	for i, p := range positions {
		c.send(&dtc.PositionUpdate{
			RequestID:           req.RequestID,
			TotalNumberMessages: int32(len(positions)),
			MessageNumber:       int32(i + 1),
			Symbol:              p.symbol,
			Exchange:            exchangeName,
			Quantity:            p.qty * qtyWireScale,
			AveragePrice:        p.price,
			PositionIdentifier:  p.id,
			TradeAccount:        accountMargin,
		})
	}
}

func (c *Conn) handleOrderFills(req *dtc.HistoricalOrderFillsRequest) {
	var filterOrder uuid.UUID
	filtered := false
	if req.ServerOrderID != "" {
		id, err := uuid.Parse(req.ServerOrderID)
		if err == nil {
			filterOrder = id
			filtered = true
		}
	}

	c.mu.RLock()
	fills := make([]btrexFill, 0, len(c.fills))
	for _, f := range c.fills {
		if filtered && f.OrderID != filterOrder {
			continue
		}
		fills = append(fills, btrexFill{f.ID, f.OrderID, f.Symbol, toWireSide(f.Side), f.Price, f.Quantity, f.ExecutedAt})
	}
	c.mu.RUnlock()

	if len(fills) == 0 {
		c.send(&dtc.HistoricalOrderFillResponse{
			RequestID:           req.RequestID,
			TotalNumberMessages: 1,
			MessageNumber:       1,
			NoOrderFills:        true,
		})
		return
	}

	sort.Slice(fills, func(i, j int) bool { return fills[i].executedAt.Before(fills[j].executedAt) })
	for i, f := range fills {
		c.send(&dtc.HistoricalOrderFillResponse{
			RequestID:           req.RequestID,
			TotalNumberMessages: int32(len(fills)),
			MessageNumber:       int32(i + 1),
			Symbol:              f.symbol,
			Exchange:            exchangeName,
			ServerOrderID:       f.orderID.String(),
			BuySell:             f.side,
			Price:               f.price,
			DateTime:            f.executedAt.Unix(),
			Quantity:            f.quantity * qtyWireScale,
			UniqueExecutionID:   f.id.String(),
			TradeAccount:        accountExchange,
		})
	}
}

type btrexFill struct {
	id         uuid.UUID
	orderID    uuid.UUID
	symbol     string
	side       dtc.BuySell
	price      float64
	quantity   float64
	executedAt time.Time
}

func (c *Conn) handleTradeAccounts(req *dtc.TradeAccountsRequest) {
	c.send(&dtc.TradeAccountResponse{
		TotalNumberMessages: 2,
		MessageNumber:       1,
		TradeAccount:        accountExchange,
		RequestID:           req.RequestID,
	})
	c.send(&dtc.TradeAccountResponse{
		TotalNumberMessages: 2,
		MessageNumber:       2,
		TradeAccount:        accountMargin,
		RequestID:           req.RequestID,
	})
}

// Balances ride the wire in thousandths of a bitcoin.
const mbtcScale = 1e3

func (c *Conn) exchangeBalanceUpdate(requestID, total, number int32) *dtc.AccountBalanceUpdate {
	c.mu.RLock()
	var sum float64
	for _, b := range c.balances {
		sum += b.BtcValue
	}
	c.mu.RUnlock()
	return &dtc.AccountBalanceUpdate{
		RequestID:                       requestID,
		CashBalance:                     sum * mbtcScale,
		BalanceAvailableForNewPositions: sum * mbtcScale,
		AccountCurrency:                 "mBTC",
		TradeAccount:                    accountExchange,
		TotalNumberMessages:             total,
		MessageNumber:                   number,
	}
}

func (c *Conn) marginBalanceUpdate(requestID, total, number int32) *dtc.AccountBalanceUpdate {
	c.mu.RLock()
	summary := c.marginSummary
	c.mu.RUnlock()
	return &dtc.AccountBalanceUpdate{
		RequestID:                       requestID,
		CashBalance:                     summary.AccountValue * mbtcScale,
		BalanceAvailableForNewPositions: summary.TotalCollateral * mbtcScale,
		AccountCurrency:                 "mBTC",
		TradeAccount:                    accountMargin,
		TotalNumberMessages:             total,
		MessageNumber:                   number,
	}
}

func (c *Conn) handleBalance(req *dtc.AccountBalanceRequest) {
	switch req.TradeAccount {
	case "":
		c.send(c.exchangeBalanceUpdate(req.RequestID, 2, 1))
		c.send(c.marginBalanceUpdate(req.RequestID, 2, 2))
	case accountExchange:
		c.send(c.exchangeBalanceUpdate(req.RequestID, 1, 1))
	case accountMargin:
		c.send(c.marginBalanceUpdate(req.RequestID, 1, 1))
	default:
		c.send(&dtc.AccountBalanceReject{
			RequestID:  req.RequestID,
			RejectText: "Unknown account " + req.TradeAccount,
		})
	}
}
