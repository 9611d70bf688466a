// Package dtc implements the wire protocol spoken to trading clients:
// little-endian length+type framing, the fixed-size encoding negotiation
// record, and protobuf message payloads compatible with DTCProtocol.proto.
package dtc

// MessageType identifies a framed message. Values follow the DTC protocol
// registry.
type MessageType uint16

const (
	TypeLogonRequest     MessageType = 1
	TypeLogonResponse    MessageType = 2
	TypeHeartbeat        MessageType = 3
	TypeLogoff           MessageType = 5
	TypeEncodingRequest  MessageType = 6
	TypeEncodingResponse MessageType = 7

	TypeMarketDataRequest                 MessageType = 101
	TypeMarketDepthRequest                MessageType = 102
	TypeMarketDataReject                  MessageType = 103
	TypeMarketDataSnapshot                MessageType = 104
	TypeMarketDepthUpdateLevel            MessageType = 106
	TypeMarketDataUpdateTrade             MessageType = 107
	TypeMarketDataUpdateBidAsk            MessageType = 108
	TypeMarketDataUpdateSessionVolume     MessageType = 113
	TypeMarketDataUpdateSessionHigh       MessageType = 114
	TypeMarketDataUpdateSessionLow        MessageType = 115
	TypeMarketDepthReject                 MessageType = 121
	TypeMarketDepthSnapshotLevel          MessageType = 122
	TypeMarketDataUpdateLastTradeSnapshot MessageType = 134

	TypeCancelOrder          MessageType = 203
	TypeCancelReplaceOrder   MessageType = 204
	TypeSubmitNewSingleOrder MessageType = 208

	TypeOpenOrdersRequest           MessageType = 300
	TypeOrderUpdate                 MessageType = 301
	TypeHistoricalOrderFillsRequest MessageType = 303
	TypeHistoricalOrderFillResponse MessageType = 304
	TypeCurrentPositionsRequest     MessageType = 305
	TypePositionUpdate              MessageType = 306

	TypeTradeAccountsRequest MessageType = 400
	TypeTradeAccountResponse MessageType = 401

	TypeSecurityDefinitionForSymbolRequest MessageType = 506
	TypeSecurityDefinitionResponse         MessageType = 507
	TypeSecurityDefinitionReject           MessageType = 509

	TypeAccountBalanceUpdate  MessageType = 600
	TypeAccountBalanceRequest MessageType = 601
	TypeAccountBalanceReject  MessageType = 602

	TypeHistoricalPriceDataRequest            MessageType = 800
	TypeHistoricalPriceDataResponseHeader     MessageType = 801
	TypeHistoricalPriceDataReject             MessageType = 802
	TypeHistoricalPriceDataRecordResponse     MessageType = 803
	TypeHistoricalPriceDataTickRecordResponse MessageType = 804
)

// ProtocolVersion is the only version this server negotiates.
const ProtocolVersion = 7

// Encoding is the payload encoding negotiated in the handshake.
type Encoding int32

const (
	EncodingBinary Encoding = iota
	EncodingBinaryVLS
	EncodingJSON
	EncodingJSONCompact
	EncodingProtobuf
)

// LogonStatus reports the result of a logon request.
type LogonStatus int32

const (
	LogonStatusUnset LogonStatus = iota
	LogonSuccess
	LogonError
	LogonErrorNoReconnect
	LogonReconnectNewAddress
)

// RequestAction selects subscribe, unsubscribe or one-shot snapshot
// semantics on market data and depth requests.
type RequestAction int32

const (
	ActionUnset RequestAction = iota
	ActionSubscribe
	ActionUnsubscribe
	ActionSnapshot
)

// BuySell is the order or trade side.
type BuySell int32

const (
	BuySellUnset BuySell = iota
	SideBuy
	SideSell
)

// OrderType enumerates the order kinds a client may submit.
type OrderType int32

const (
	OrderTypeUnset OrderType = iota
	OrderTypeMarket
	OrderTypeLimit
	OrderTypeStop
	OrderTypeStopLimit
	OrderTypeMarketIfTouched
)

// TimeInForce enumerates order lifetimes. Values follow the protocol
// registry; the bridge accepts Day, GTC, IOC and FOK.
type TimeInForce int32

const (
	TifUnset TimeInForce = iota
	TifDay
	TifGoodTillCanceled
	TifGoodTillDateTime
	TifImmediateOrCancel
	TifAllOrNone
	TifFillOrKill
)

// OrderStatus is carried on every order update.
type OrderStatus int32

const (
	OrderStatusUnset OrderStatus = iota
	OrderStatusOrdersNotFound
	OrderStatusSent
	OrderStatusPendingOpen
	OrderStatusPendingChild
	OrderStatusOpen
	OrderStatusPendingCancelReplace
	OrderStatusPendingCancel
	OrderStatusFilled
	OrderStatusCanceled
	OrderStatusRejected
	OrderStatusPartiallyFilled
)

// OrderUpdateReason says why an order update was emitted.
type OrderUpdateReason int32

const (
	OrderUpdateReasonUnset OrderUpdateReason = iota
	ReasonOpenOrdersRequestResponse
	ReasonNewOrderAccepted
	ReasonGeneralOrderUpdate
	ReasonOrderFilled
	ReasonOrderFilledPartially
	ReasonOrderCanceled
	ReasonOrderCancelReplaceComplete
	ReasonNewOrderRejected
	ReasonOrderCancelRejected
	ReasonOrderCancelReplaceRejected
)

// AtBidOrAsk marks which side of the spread a trade executed at.
type AtBidOrAsk int32

const (
	BidAskUnset AtBidOrAsk = iota
	AtBid
	AtAsk
)

// DepthUpdateType distinguishes level upserts from deletions.
type DepthUpdateType int32

const (
	DepthUnset DepthUpdateType = iota
	DepthInsertUpdate
	DepthDelete
)

// SecurityType classifies an instrument in security definitions.
type SecurityType int32

const (
	SecurityTypeUnset SecurityType = iota
	SecurityTypeFuture
	SecurityTypeStock
	SecurityTypeForex
	SecurityTypeIndex
)

// PriceDisplayFormat values are the decimal digit count for display.
type PriceDisplayFormat int32

const (
	PriceDisplayFormatDecimal0 PriceDisplayFormat = 0
	PriceDisplayFormatDecimal8 PriceDisplayFormat = 8
)

// Historical record intervals are expressed in whole seconds; zero requests
// raw ticks.
const IntervalTick int32 = 0
