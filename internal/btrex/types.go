// Package btrex is the upstream exchange client: a signed REST API for
// metadata, account state and order entry, and a persistent WebSocket for
// books and trades.
package btrex

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"bitsouk/internal/market"
)

// Credentials hold one client's API key pair. An empty pair means
// public-data-only access.
type Credentials struct {
	Key    string
	Secret string
}

func (c Credentials) Empty() bool {
	return c.Key == "" && c.Secret == ""
}

// APIError is an error the exchange itself returned, as opposed to a
// transport failure. Rejects built from it quote Message verbatim.
type APIError struct {
	Status int    `json:"-"`
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("btrex: %s: %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("btrex: %s", e.Code)
}

// Message is the short exchange-supplied reason.
func (e *APIError) Message() string {
	if e.Code != "" {
		return e.Code
	}
	return e.Detail
}

// Time-in-force spellings accepted by the order endpoints. Good-til-
// cancelled is the default and is sent as an absent field.
const (
	TifFillOrKill        = "FILL_OR_KILL"
	TifImmediateOrCancel = "IMMEDIATE_OR_CANCEL"
)

// Balance is one currency row of the exchange wallet.
type Balance struct {
	Currency  string
	Available float64
	OnOrders  float64
	BtcValue  float64
}

// Order is one open or historical order.
type Order struct {
	ID        uuid.UUID
	Symbol    string
	Side      market.Side
	Type      string
	Quantity  float64
	Limit     float64
	Filled    float64
	Status    string
	CreatedAt time.Time
}

// Fill is one execution against an order.
type Fill struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	Symbol     string
	Side       market.Side
	Price      float64
	Quantity   float64
	ExecutedAt time.Time
}

// Position is one open margin position.
type Position struct {
	ID        uuid.UUID
	Symbol    string
	Quantity  float64
	BasePrice float64
}

// MarginSummary is the margin account overview, also used as the
// credential validation probe at logon.
type MarginSummary struct {
	AccountValue    float64
	TotalCollateral float64
}

// OrderResult is the submit/modify response: the (new) order id, any
// immediate executions, and the quantity left unfilled.
type OrderResult struct {
	ID             uuid.UUID
	Trades         []Fill
	AmountUnfilled float64
}

// NewOrder is an order entry request. Limit is mandatory; market-style
// orders are expressed as marketable limits by the caller. An empty
// TimeInForce means good-til-cancelled.
type NewOrder struct {
	Symbol      string
	Side        market.Side
	Quantity    float64
	Limit       float64
	TimeInForce string
}

// ModifyOrder carries the changed fields of a cancel/replace. Zero values
// keep the original.
type ModifyOrder struct {
	Quantity float64
	Limit    float64
}

// TradeTick is one public market trade, as served by the trade history
// endpoint.
type TradeTick struct {
	ID         uuid.UUID
	ExecutedAt time.Time
	Side       market.Side
	Price      float64
	Quantity   float64
}
