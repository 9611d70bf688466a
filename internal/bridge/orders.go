package bridge

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"bitsouk/internal/btrex"
	"bitsouk/internal/dtc"
	"bitsouk/logger"
)

func btrexCredentials(username, password string) btrex.Credentials {
	return btrex.Credentials{
		Key:    strings.TrimSpace(username),
		Secret: strings.TrimSpace(password),
	}
}

// orderUpdate builds the envelope every order status message shares.
func orderUpdate(req *dtc.SubmitNewSingleOrder, serverOrderID string) *dtc.OrderUpdate {
	return &dtc.OrderUpdate{
		TotalNumMessages: 1,
		MessageNumber:    1,
		Symbol:           req.Symbol,
		Exchange:         exchangeName,
		ServerOrderID:    serverOrderID,
		ClientOrderID:    req.ClientOrderID,
		OrderType:        req.OrderType,
		BuySell:          req.BuySell,
		Price1:           req.Price1,
		TimeInForce:      req.TimeInForce,
		OrderQuantity:    req.Quantity,
		TradeAccount:     req.TradeAccount,
	}
}

// rejectSubmit reports a refused order entry. The exchange's own words ride
// in info_text when it was the one refusing.
func (c *Conn) rejectSubmit(req *dtc.SubmitNewSingleOrder, text string) {
	up := orderUpdate(req, "")
	up.OrderStatus = dtc.OrderStatusRejected
	up.OrderUpdateReason = dtc.ReasonNewOrderRejected
	up.InfoText = text
	c.send(up)
	c.log.WithFields(logger.Fields{
		"client_order_id": req.ClientOrderID,
		"symbol":          req.Symbol,
		"reason":          text,
	}).Info("order rejected")
}

// restTif maps the accepted client lifetimes onto the exchange's spellings.
// Good-til-cancelled is the exchange default and travels as an absent field.
func restTif(tif dtc.TimeInForce) string {
	switch tif {
	case dtc.TifFillOrKill:
		return btrex.TifFillOrKill
	case dtc.TifImmediateOrCancel:
		return btrex.TifImmediateOrCancel
	}
	return ""
}

// handleSubmit validates an order entry and defers the REST submit onto the
// rest queue. Status updates are emitted by the queue consumer once the
// exchange answers.
func (c *Conn) handleSubmit(req *dtc.SubmitNewSingleOrder) {
	creds, enabled := c.credentials()
	if !enabled {
		c.rejectSubmit(req, "Trading disabled")
		return
	}
	if !c.knownSymbol(req.Symbol, req.Exchange) {
		c.rejectSubmit(req, "Unknown symbol "+req.Symbol)
		return
	}

	switch req.TimeInForce {
	case dtc.TifGoodTillCanceled, dtc.TifFillOrKill, dtc.TifImmediateOrCancel:
	case dtc.TifDay:
		// The exchange has no session close; a day order lives until
		// cancelled.
		req.TimeInForce = dtc.TifGoodTillCanceled
	case dtc.TifUnset:
		c.rejectSubmit(req, "Time in force not set")
		return
	default:
		c.rejectSubmit(req, "Unsupported time in force")
		return
	}

	switch req.OrderType {
	case dtc.OrderTypeMarket:
		// Expressed as a marketable limit: cross the whole book by
		// bidding twice the 24h high, and insist on fill-or-kill so no
		// remainder rests at that price.
		ticker, _, _ := c.registry.store.Ticker(req.Symbol)
		req.TimeInForce = dtc.TifFillOrKill
		req.Price1 = 2 * ticker.High24h
	case dtc.OrderTypeLimit:
		if req.Price1 == 0 {
			c.rejectSubmit(req, "Limit order without a price")
			return
		}
	default:
		c.rejectSubmit(req, "Unsupported order type")
		return
	}

	order := btrex.NewOrder{
		Symbol:      req.Symbol,
		Side:        fromWireSide(req.BuySell),
		Quantity:    req.Quantity / qtyWireScale,
		Limit:       req.Price1,
		TimeInForce: restTif(req.TimeInForce),
	}
	margin := c.registry.store.MarginEnabled(req.Symbol)

	submitted := *req
	c.registry.queue.Push("submit_order", func() error {
		var (
			res btrex.OrderResult
			err error
		)
		if margin {
			res, err = c.registry.client.SubmitMarginOrder(c.ctx, creds, order)
		} else {
			res, err = c.registry.client.SubmitOrder(c.ctx, creds, order)
		}
		if err != nil {
			var apiErr *btrex.APIError
			if errors.As(err, &apiErr) {
				c.rejectSubmit(&submitted, apiErr.Message())
			} else {
				c.rejectSubmit(&submitted, err.Error())
			}
			return err
		}
		c.orderAccepted(&submitted, res, margin)
		return nil
	})
}

// orderAccepted records the accepted order and reports its immediate fate:
// resting, filled, or partially filled.
func (c *Conn) orderAccepted(req *dtc.SubmitNewSingleOrder, res btrex.OrderResult, margin bool) {
	c.mu.Lock()
	c.clientOrders[res.ID] = *req
	c.orders[res.ID] = btrex.Order{
		ID:       res.ID,
		Symbol:   req.Symbol,
		Side:     fromWireSide(req.BuySell),
		Quantity: req.Quantity / qtyWireScale,
		Limit:    req.Price1,
		Filled:   req.Quantity/qtyWireScale - res.AmountUnfilled,
		Status:   "OPEN",
	}
	c.mu.Unlock()

	up := orderUpdate(req, res.ID.String())
	switch {
	case len(res.Trades) == 0:
		up.OrderStatus = dtc.OrderStatusOpen
		up.OrderUpdateReason = dtc.ReasonNewOrderAccepted
		up.FilledQuantity = 0
		up.RemainingQuantity = req.Quantity

	case res.AmountUnfilled == 0:
		up.OrderStatus = dtc.OrderStatusFilled
		up.OrderUpdateReason = dtc.ReasonOrderFilled
		up.FilledQuantity = req.Quantity
		up.RemainingQuantity = 0

	default:
		var filled float64
		for _, t := range res.Trades {
			filled += t.Quantity
		}
		up.OrderStatus = dtc.OrderStatusPartiallyFilled
		up.OrderUpdateReason = dtc.ReasonOrderFilledPartially
		up.FilledQuantity = filled * qtyWireScale
		up.RemainingQuantity = req.Quantity - filled*qtyWireScale
	}
	c.send(up)

	c.log.WithFields(logger.Fields{
		"server_order_id": res.ID.String(),
		"symbol":          req.Symbol,
		"margin":          margin,
		"status":          int(up.OrderStatus),
	}).Info("order accepted")

	// Executions move the margin position; refresh it so the next
	// positions request reflects the fill.
	if margin && len(res.Trades) > 0 {
		if err := c.registry.queue.PushNowait("update_positions", c.updatePositions); err != nil {
			c.log.WithError(err).Warn("failed to enqueue positions refresh")
		}
	}
}

// rejectCancel reports a refused or failed cancel.
func (c *Conn) rejectCancel(req *dtc.CancelOrder, text string) {
	c.send(&dtc.OrderUpdate{
		TotalNumMessages:  1,
		MessageNumber:     1,
		Exchange:          exchangeName,
		ServerOrderID:     req.ServerOrderID,
		ClientOrderID:     req.ClientOrderID,
		OrderStatus:       dtc.OrderStatusRejected,
		OrderUpdateReason: dtc.ReasonOrderCancelRejected,
		InfoText:          text,
	})
}

func (c *Conn) handleCancel(req *dtc.CancelOrder) {
	creds, enabled := c.credentials()
	if !enabled {
		c.rejectCancel(req, "Trading disabled")
		return
	}
	if req.ServerOrderID == "" {
		c.rejectCancel(req, "Cancel without a server order id")
		return
	}
	id, err := uuid.Parse(req.ServerOrderID)
	if err != nil {
		c.rejectCancel(req, "Malformed server order id "+req.ServerOrderID)
		return
	}

	cancel := *req
	c.registry.queue.Push("cancel_order", func() error {
		if err := c.registry.client.CancelOrder(c.ctx, creds, id); err != nil {
			var apiErr *btrex.APIError
			if errors.As(err, &apiErr) {
				c.rejectCancel(&cancel, apiErr.Message())
			} else {
				c.rejectCancel(&cancel, err.Error())
			}
			return err
		}
		c.orderCanceled(&cancel, id)
		return nil
	})
}

// orderCanceled reports a confirmed cancel. The submit record is the
// preferred source for the update's fields; a session that never saw the
// order (server restart, order placed elsewhere) still gets a best-effort
// update from whatever the open-order table holds.
func (c *Conn) orderCanceled(req *dtc.CancelOrder, id uuid.UUID) {
	c.mu.Lock()
	submitted, haveSubmit := c.clientOrders[id]
	open, haveOpen := c.orders[id]
	// The submit record stays for the fills audit; only the open order
	// entry goes.
	delete(c.orders, id)
	c.mu.Unlock()

	var up *dtc.OrderUpdate
	switch {
	case haveSubmit:
		up = orderUpdate(&submitted, id.String())
	case haveOpen:
		c.log.WithFields(logger.Fields{"server_order_id": id.String()}).Error("canceled order missing submit record")
		up = &dtc.OrderUpdate{
			TotalNumMessages: 1,
			MessageNumber:    1,
			Symbol:           open.Symbol,
			Exchange:         exchangeName,
			ServerOrderID:    id.String(),
			BuySell:          toWireSide(open.Side),
			Price1:           open.Limit,
			OrderQuantity:    open.Quantity * qtyWireScale,
		}
	default:
		c.log.WithFields(logger.Fields{"server_order_id": id.String()}).Error("canceled order unknown to session")
		blank := dtc.SubmitNewSingleOrder{}
		up = orderUpdate(&blank, id.String())
	}
	up.ClientOrderID = req.ClientOrderID
	up.OrderStatus = dtc.OrderStatusCanceled
	up.OrderUpdateReason = dtc.ReasonOrderCanceled
	c.send(up)
}

// rejectCancelReplace reports a refused or failed cancel/replace.
func (c *Conn) rejectCancelReplace(req *dtc.CancelReplaceOrder, text string) {
	c.send(&dtc.OrderUpdate{
		TotalNumMessages:  1,
		MessageNumber:     1,
		Exchange:          exchangeName,
		ServerOrderID:     req.ServerOrderID,
		ClientOrderID:     req.ClientOrderID,
		OrderStatus:       dtc.OrderStatusRejected,
		OrderUpdateReason: dtc.ReasonOrderCancelReplaceRejected,
		InfoText:          text,
	})
}

// handleCancelReplace adjusts price and/or quantity of a resting order. The
// exchange re-books under a fresh id; both session tables move to it.
func (c *Conn) handleCancelReplace(req *dtc.CancelReplaceOrder) {
	creds, enabled := c.credentials()
	if !enabled {
		c.rejectCancelReplace(req, "Trading disabled")
		return
	}
	if req.OrderType != dtc.OrderTypeUnset {
		c.rejectCancelReplace(req, "Order type cannot be changed")
		return
	}
	if req.TimeInForce != dtc.TifUnset {
		c.rejectCancelReplace(req, "Time in force cannot be changed")
		return
	}
	if req.ServerOrderID == "" {
		c.rejectCancelReplace(req, "Cancel replace without a server order id")
		return
	}
	if req.Price1 == 0 {
		c.rejectCancelReplace(req, "Cancel replace without a price")
		return
	}
	origID, err := uuid.Parse(req.ServerOrderID)
	if err != nil {
		c.rejectCancelReplace(req, "Malformed server order id "+req.ServerOrderID)
		return
	}

	mod := btrex.ModifyOrder{Limit: req.Price1}
	if req.Quantity > 0 {
		mod.Quantity = req.Quantity / qtyWireScale
	}

	replace := *req
	c.registry.queue.Push("modify_order", func() error {
		res, err := c.registry.client.ModifyOrder(c.ctx, creds, origID, mod)
		if err != nil {
			var apiErr *btrex.APIError
			if errors.As(err, &apiErr) {
				c.rejectCancelReplace(&replace, apiErr.Message())
			} else {
				c.rejectCancelReplace(&replace, err.Error())
			}
			return err
		}
		c.orderReplaced(&replace, origID, res)
		// Fills landing between the cancel and the re-book surface with
		// the next periodic trades refresh; no immediate poll here.
		return nil
	})
}

// orderReplaced rewires the session tables from the original id to the
// exchange's replacement and confirms to the client.
func (c *Conn) orderReplaced(req *dtc.CancelReplaceOrder, origID uuid.UUID, res btrex.OrderResult) {
	c.mu.Lock()
	submitted, haveSubmit := c.clientOrders[origID]
	if haveSubmit {
		delete(c.clientOrders, origID)
		submitted.Price1 = req.Price1
		if req.Quantity > 0 {
			submitted.Quantity = req.Quantity
		}
		c.clientOrders[res.ID] = submitted
	}
	open, haveOpen := c.orders[origID]
	if haveOpen {
		delete(c.orders, origID)
		open.ID = res.ID
		open.Limit = req.Price1
		if req.Quantity > 0 {
			open.Quantity = req.Quantity / qtyWireScale
		}
		c.orders[res.ID] = open
	}
	c.mu.Unlock()

	if !haveSubmit || !haveOpen {
		c.log.WithFields(logger.Fields{
			"server_order_id": origID.String(),
			"have_submit":     haveSubmit,
			"have_open":       haveOpen,
		}).Error("cancel replace with incomplete session tables")
	}

	var up *dtc.OrderUpdate
	if haveSubmit {
		up = orderUpdate(&submitted, res.ID.String())
	} else {
		up = &dtc.OrderUpdate{
			TotalNumMessages: 1,
			MessageNumber:    1,
			Exchange:         exchangeName,
			ServerOrderID:    res.ID.String(),
			Price1:           req.Price1,
			OrderQuantity:    req.Quantity,
		}
	}
	up.PreviousServerOrderID = origID.String()
	up.ClientOrderID = req.ClientOrderID
	up.OrderStatus = dtc.OrderStatusOpen
	up.OrderUpdateReason = dtc.ReasonOrderCancelReplaceComplete
	up.RemainingQuantity = res.AmountUnfilled * qtyWireScale
	c.send(up)

	c.log.WithFields(logger.Fields{
		"previous_order_id": origID.String(),
		"server_order_id":   res.ID.String(),
	}).Info("order replaced")
}
