package dtc

import "google.golang.org/protobuf/encoding/protowire"

// Order entry, order status, position and account balance messages.

type SubmitNewSingleOrder struct {
	Symbol           string
	Exchange         string
	TradeAccount     string
	ClientOrderID    string
	OrderType        OrderType
	BuySell          BuySell
	Price1           float64
	Price2           float64
	Quantity         float64
	TimeInForce      TimeInForce
	GoodTillDateTime int64
	FreeFormText     string
}

func (m *SubmitNewSingleOrder) Type() MessageType { return TypeSubmitNewSingleOrder }

func (m *SubmitNewSingleOrder) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.Symbol)
	b = appendString(b, 2, m.Exchange)
	b = appendString(b, 3, m.TradeAccount)
	b = appendString(b, 4, m.ClientOrderID)
	b = appendInt32(b, 5, int32(m.OrderType))
	b = appendInt32(b, 6, int32(m.BuySell))
	b = appendDouble(b, 7, m.Price1)
	b = appendDouble(b, 8, m.Price2)
	b = appendDouble(b, 9, m.Quantity)
	b = appendInt32(b, 10, int32(m.TimeInForce))
	b = appendInt64(b, 11, m.GoodTillDateTime)
	b = appendString(b, 14, m.FreeFormText)
	return b
}

func (m *SubmitNewSingleOrder) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.Symbol, data, err = wireString(data, typ)
		case 2:
			m.Exchange, data, err = wireString(data, typ)
		case 3:
			m.TradeAccount, data, err = wireString(data, typ)
		case 4:
			m.ClientOrderID, data, err = wireString(data, typ)
		case 5:
			var v int32
			v, data, err = wireInt32(data, typ)
			m.OrderType = OrderType(v)
		case 6:
			var v int32
			v, data, err = wireInt32(data, typ)
			m.BuySell = BuySell(v)
		case 7:
			m.Price1, data, err = wireDouble(data, typ)
		case 8:
			m.Price2, data, err = wireDouble(data, typ)
		case 9:
			m.Quantity, data, err = wireDouble(data, typ)
		case 10:
			var v int32
			v, data, err = wireInt32(data, typ)
			m.TimeInForce = TimeInForce(v)
		case 11:
			m.GoodTillDateTime, data, err = wireInt64(data, typ)
		case 14:
			m.FreeFormText, data, err = wireString(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type CancelOrder struct {
	ServerOrderID string
	ClientOrderID string
}

func (m *CancelOrder) Type() MessageType { return TypeCancelOrder }

func (m *CancelOrder) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.ServerOrderID)
	b = appendString(b, 2, m.ClientOrderID)
	return b
}

func (m *CancelOrder) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.ServerOrderID, data, err = wireString(data, typ)
		case 2:
			m.ClientOrderID, data, err = wireString(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type CancelReplaceOrder struct {
	Price1           float64
	Price2           float64
	Quantity         float64
	ServerOrderID    string
	ClientOrderID    string
	Price1IsSet      bool
	Price2IsSet      bool
	OrderType        OrderType
	TimeInForce      TimeInForce
	GoodTillDateTime int64
	TradeAccount     string
}

func (m *CancelReplaceOrder) Type() MessageType { return TypeCancelReplaceOrder }

func (m *CancelReplaceOrder) Marshal() []byte {
	var b []byte
	b = appendDouble(b, 1, m.Price1)
	b = appendDouble(b, 2, m.Price2)
	b = appendDouble(b, 3, m.Quantity)
	b = appendString(b, 4, m.ServerOrderID)
	b = appendString(b, 5, m.ClientOrderID)
	b = appendBool(b, 6, m.Price1IsSet)
	b = appendBool(b, 7, m.Price2IsSet)
	b = appendInt32(b, 8, int32(m.OrderType))
	b = appendInt32(b, 9, int32(m.TimeInForce))
	b = appendInt64(b, 10, m.GoodTillDateTime)
	b = appendString(b, 12, m.TradeAccount)
	return b
}

func (m *CancelReplaceOrder) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.Price1, data, err = wireDouble(data, typ)
		case 2:
			m.Price2, data, err = wireDouble(data, typ)
		case 3:
			m.Quantity, data, err = wireDouble(data, typ)
		case 4:
			m.ServerOrderID, data, err = wireString(data, typ)
		case 5:
			m.ClientOrderID, data, err = wireString(data, typ)
		case 6:
			m.Price1IsSet, data, err = wireBool(data, typ)
		case 7:
			m.Price2IsSet, data, err = wireBool(data, typ)
		case 8:
			var v int32
			v, data, err = wireInt32(data, typ)
			m.OrderType = OrderType(v)
		case 9:
			var v int32
			v, data, err = wireInt32(data, typ)
			m.TimeInForce = TimeInForce(v)
		case 10:
			m.GoodTillDateTime, data, err = wireInt64(data, typ)
		case 12:
			m.TradeAccount, data, err = wireString(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type OpenOrdersRequest struct {
	RequestID        int32
	RequestAllOrders int32
	ServerOrderID    string
	TradeAccount     string
}

func (m *OpenOrdersRequest) Type() MessageType { return TypeOpenOrdersRequest }

func (m *OpenOrdersRequest) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.RequestID)
	b = appendInt32(b, 2, m.RequestAllOrders)
	b = appendString(b, 3, m.ServerOrderID)
	b = appendString(b, 4, m.TradeAccount)
	return b
}

func (m *OpenOrdersRequest) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.RequestID, data, err = wireInt32(data, typ)
		case 2:
			m.RequestAllOrders, data, err = wireInt32(data, typ)
		case 3:
			m.ServerOrderID, data, err = wireString(data, typ)
		case 4:
			m.TradeAccount, data, err = wireString(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type OrderUpdate struct {
	RequestID             int32
	TotalNumMessages      int32
	MessageNumber         int32
	Symbol                string
	Exchange              string
	PreviousServerOrderID string
	ServerOrderID         string
	ClientOrderID         string
	ExchangeOrderID       string
	OrderStatus           OrderStatus
	OrderUpdateReason     OrderUpdateReason
	OrderType             OrderType
	BuySell               BuySell
	Price1                float64
	Price2                float64
	TimeInForce           TimeInForce
	GoodTillDateTime      int64
	OrderQuantity         float64
	FilledQuantity        float64
	RemainingQuantity     float64
	AverageFillPrice      float64
	LastFillPrice         float64
	LastFillDateTime      int64
	LastFillQuantity      float64
	LastFillExecutionID   string
	TradeAccount          string
	InfoText              string
	NoOrders              bool
	OrderReceivedDateTime int64
}

func (m *OrderUpdate) Type() MessageType { return TypeOrderUpdate }

func (m *OrderUpdate) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.RequestID)
	b = appendInt32(b, 2, m.TotalNumMessages)
	b = appendInt32(b, 3, m.MessageNumber)
	b = appendString(b, 4, m.Symbol)
	b = appendString(b, 5, m.Exchange)
	b = appendString(b, 6, m.PreviousServerOrderID)
	b = appendString(b, 7, m.ServerOrderID)
	b = appendString(b, 8, m.ClientOrderID)
	b = appendString(b, 9, m.ExchangeOrderID)
	b = appendInt32(b, 10, int32(m.OrderStatus))
	b = appendInt32(b, 11, int32(m.OrderUpdateReason))
	b = appendInt32(b, 12, int32(m.OrderType))
	b = appendInt32(b, 13, int32(m.BuySell))
	b = appendDouble(b, 14, m.Price1)
	b = appendDouble(b, 15, m.Price2)
	b = appendInt32(b, 16, int32(m.TimeInForce))
	b = appendInt64(b, 17, m.GoodTillDateTime)
	b = appendDouble(b, 18, m.OrderQuantity)
	b = appendDouble(b, 19, m.FilledQuantity)
	b = appendDouble(b, 20, m.RemainingQuantity)
	b = appendDouble(b, 21, m.AverageFillPrice)
	b = appendDouble(b, 22, m.LastFillPrice)
	b = appendInt64(b, 23, m.LastFillDateTime)
	b = appendDouble(b, 24, m.LastFillQuantity)
	b = appendString(b, 25, m.LastFillExecutionID)
	b = appendString(b, 26, m.TradeAccount)
	b = appendString(b, 27, m.InfoText)
	b = appendBool(b, 28, m.NoOrders)
	b = appendInt64(b, 34, m.OrderReceivedDateTime)
	return b
}

func (m *OrderUpdate) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.RequestID, data, err = wireInt32(data, typ)
		case 2:
			m.TotalNumMessages, data, err = wireInt32(data, typ)
		case 3:
			m.MessageNumber, data, err = wireInt32(data, typ)
		case 4:
			m.Symbol, data, err = wireString(data, typ)
		case 5:
			m.Exchange, data, err = wireString(data, typ)
		case 6:
			m.PreviousServerOrderID, data, err = wireString(data, typ)
		case 7:
			m.ServerOrderID, data, err = wireString(data, typ)
		case 8:
			m.ClientOrderID, data, err = wireString(data, typ)
		case 9:
			m.ExchangeOrderID, data, err = wireString(data, typ)
		case 10:
			var v int32
			v, data, err = wireInt32(data, typ)
			m.OrderStatus = OrderStatus(v)
		case 11:
			var v int32
			v, data, err = wireInt32(data, typ)
			m.OrderUpdateReason = OrderUpdateReason(v)
		case 12:
			var v int32
			v, data, err = wireInt32(data, typ)
			m.OrderType = OrderType(v)
		case 13:
			var v int32
			v, data, err = wireInt32(data, typ)
			m.BuySell = BuySell(v)
		case 14:
			m.Price1, data, err = wireDouble(data, typ)
		case 15:
			m.Price2, data, err = wireDouble(data, typ)
		case 16:
			var v int32
			v, data, err = wireInt32(data, typ)
			m.TimeInForce = TimeInForce(v)
		case 17:
			m.GoodTillDateTime, data, err = wireInt64(data, typ)
		case 18:
			m.OrderQuantity, data, err = wireDouble(data, typ)
		case 19:
			m.FilledQuantity, data, err = wireDouble(data, typ)
		case 20:
			m.RemainingQuantity, data, err = wireDouble(data, typ)
		case 21:
			m.AverageFillPrice, data, err = wireDouble(data, typ)
		case 22:
			m.LastFillPrice, data, err = wireDouble(data, typ)
		case 23:
			m.LastFillDateTime, data, err = wireInt64(data, typ)
		case 24:
			m.LastFillQuantity, data, err = wireDouble(data, typ)
		case 25:
			m.LastFillExecutionID, data, err = wireString(data, typ)
		case 26:
			m.TradeAccount, data, err = wireString(data, typ)
		case 27:
			m.InfoText, data, err = wireString(data, typ)
		case 28:
			m.NoOrders, data, err = wireBool(data, typ)
		case 34:
			m.OrderReceivedDateTime, data, err = wireInt64(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type HistoricalOrderFillsRequest struct {
	RequestID     int32
	ServerOrderID string
	NumberOfDays  int32
	TradeAccount  string
}

func (m *HistoricalOrderFillsRequest) Type() MessageType { return TypeHistoricalOrderFillsRequest }

func (m *HistoricalOrderFillsRequest) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.RequestID)
	b = appendString(b, 2, m.ServerOrderID)
	b = appendInt32(b, 3, m.NumberOfDays)
	b = appendString(b, 4, m.TradeAccount)
	return b
}

func (m *HistoricalOrderFillsRequest) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.RequestID, data, err = wireInt32(data, typ)
		case 2:
			m.ServerOrderID, data, err = wireString(data, typ)
		case 3:
			m.NumberOfDays, data, err = wireInt32(data, typ)
		case 4:
			m.TradeAccount, data, err = wireString(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type HistoricalOrderFillResponse struct {
	RequestID           int32
	TotalNumberMessages int32
	MessageNumber       int32
	Symbol              string
	Exchange            string
	ServerOrderID       string
	BuySell             BuySell
	Price               float64
	DateTime            int64
	Quantity            float64
	UniqueExecutionID   string
	TradeAccount        string
	NoOrderFills        bool
}

func (m *HistoricalOrderFillResponse) Type() MessageType { return TypeHistoricalOrderFillResponse }

func (m *HistoricalOrderFillResponse) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.RequestID)
	b = appendInt32(b, 2, m.TotalNumberMessages)
	b = appendInt32(b, 3, m.MessageNumber)
	b = appendString(b, 4, m.Symbol)
	b = appendString(b, 5, m.Exchange)
	b = appendString(b, 6, m.ServerOrderID)
	b = appendInt32(b, 7, int32(m.BuySell))
	b = appendDouble(b, 8, m.Price)
	b = appendInt64(b, 9, m.DateTime)
	b = appendDouble(b, 10, m.Quantity)
	b = appendString(b, 11, m.UniqueExecutionID)
	b = appendString(b, 12, m.TradeAccount)
	b = appendBool(b, 14, m.NoOrderFills)
	return b
}

func (m *HistoricalOrderFillResponse) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.RequestID, data, err = wireInt32(data, typ)
		case 2:
			m.TotalNumberMessages, data, err = wireInt32(data, typ)
		case 3:
			m.MessageNumber, data, err = wireInt32(data, typ)
		case 4:
			m.Symbol, data, err = wireString(data, typ)
		case 5:
			m.Exchange, data, err = wireString(data, typ)
		case 6:
			m.ServerOrderID, data, err = wireString(data, typ)
		case 7:
			var v int32
			v, data, err = wireInt32(data, typ)
			m.BuySell = BuySell(v)
		case 8:
			m.Price, data, err = wireDouble(data, typ)
		case 9:
			m.DateTime, data, err = wireInt64(data, typ)
		case 10:
			m.Quantity, data, err = wireDouble(data, typ)
		case 11:
			m.UniqueExecutionID, data, err = wireString(data, typ)
		case 12:
			m.TradeAccount, data, err = wireString(data, typ)
		case 14:
			m.NoOrderFills, data, err = wireBool(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type CurrentPositionsRequest struct {
	RequestID    int32
	TradeAccount string
}

func (m *CurrentPositionsRequest) Type() MessageType { return TypeCurrentPositionsRequest }

func (m *CurrentPositionsRequest) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.RequestID)
	b = appendString(b, 2, m.TradeAccount)
	return b
}

func (m *CurrentPositionsRequest) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.RequestID, data, err = wireInt32(data, typ)
		case 2:
			m.TradeAccount, data, err = wireString(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type PositionUpdate struct {
	RequestID           int32
	TotalNumberMessages int32
	MessageNumber       int32
	Symbol              string
	Exchange            string
	Quantity            float64
	AveragePrice        float64
	PositionIdentifier  string
	TradeAccount        string
	NoPositions         bool
	Unsolicited         bool
}

func (m *PositionUpdate) Type() MessageType { return TypePositionUpdate }

func (m *PositionUpdate) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.RequestID)
	b = appendInt32(b, 2, m.TotalNumberMessages)
	b = appendInt32(b, 3, m.MessageNumber)
	b = appendString(b, 4, m.Symbol)
	b = appendString(b, 5, m.Exchange)
	b = appendDouble(b, 6, m.Quantity)
	b = appendDouble(b, 7, m.AveragePrice)
	b = appendString(b, 8, m.PositionIdentifier)
	b = appendString(b, 9, m.TradeAccount)
	b = appendBool(b, 10, m.NoPositions)
	b = appendBool(b, 11, m.Unsolicited)
	return b
}

func (m *PositionUpdate) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.RequestID, data, err = wireInt32(data, typ)
		case 2:
			m.TotalNumberMessages, data, err = wireInt32(data, typ)
		case 3:
			m.MessageNumber, data, err = wireInt32(data, typ)
		case 4:
			m.Symbol, data, err = wireString(data, typ)
		case 5:
			m.Exchange, data, err = wireString(data, typ)
		case 6:
			m.Quantity, data, err = wireDouble(data, typ)
		case 7:
			m.AveragePrice, data, err = wireDouble(data, typ)
		case 8:
			m.PositionIdentifier, data, err = wireString(data, typ)
		case 9:
			m.TradeAccount, data, err = wireString(data, typ)
		case 10:
			m.NoPositions, data, err = wireBool(data, typ)
		case 11:
			m.Unsolicited, data, err = wireBool(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type TradeAccountsRequest struct {
	RequestID int32
}

func (m *TradeAccountsRequest) Type() MessageType { return TypeTradeAccountsRequest }

func (m *TradeAccountsRequest) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.RequestID)
	return b
}

func (m *TradeAccountsRequest) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.RequestID, data, err = wireInt32(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type TradeAccountResponse struct {
	TotalNumberMessages int32
	MessageNumber       int32
	TradeAccount        string
	RequestID           int32
}

func (m *TradeAccountResponse) Type() MessageType { return TypeTradeAccountResponse }

func (m *TradeAccountResponse) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.TotalNumberMessages)
	b = appendInt32(b, 2, m.MessageNumber)
	b = appendString(b, 3, m.TradeAccount)
	b = appendInt32(b, 4, m.RequestID)
	return b
}

func (m *TradeAccountResponse) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.TotalNumberMessages, data, err = wireInt32(data, typ)
		case 2:
			m.MessageNumber, data, err = wireInt32(data, typ)
		case 3:
			m.TradeAccount, data, err = wireString(data, typ)
		case 4:
			m.RequestID, data, err = wireInt32(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type AccountBalanceRequest struct {
	RequestID    int32
	TradeAccount string
}

func (m *AccountBalanceRequest) Type() MessageType { return TypeAccountBalanceRequest }

func (m *AccountBalanceRequest) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.RequestID)
	b = appendString(b, 2, m.TradeAccount)
	return b
}

func (m *AccountBalanceRequest) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.RequestID, data, err = wireInt32(data, typ)
		case 2:
			m.TradeAccount, data, err = wireString(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type AccountBalanceReject struct {
	RequestID  int32
	RejectText string
}

func (m *AccountBalanceReject) Type() MessageType { return TypeAccountBalanceReject }

func (m *AccountBalanceReject) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.RequestID)
	b = appendString(b, 2, m.RejectText)
	return b
}

func (m *AccountBalanceReject) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.RequestID, data, err = wireInt32(data, typ)
		case 2:
			m.RejectText, data, err = wireString(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type AccountBalanceUpdate struct {
	RequestID                       int32
	CashBalance                     float64
	BalanceAvailableForNewPositions float64
	AccountCurrency                 string
	TradeAccount                    string
	SecuritiesValue                 float64
	MarginRequirement               float64
	TotalNumberMessages             int32
	MessageNumber                   int32
	NoAccountBalances               bool
	Unsolicited                     bool
}

func (m *AccountBalanceUpdate) Type() MessageType { return TypeAccountBalanceUpdate }

func (m *AccountBalanceUpdate) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.RequestID)
	b = appendDouble(b, 2, m.CashBalance)
	b = appendDouble(b, 3, m.BalanceAvailableForNewPositions)
	b = appendString(b, 4, m.AccountCurrency)
	b = appendString(b, 5, m.TradeAccount)
	b = appendDouble(b, 6, m.SecuritiesValue)
	b = appendDouble(b, 7, m.MarginRequirement)
	b = appendInt32(b, 8, m.TotalNumberMessages)
	b = appendInt32(b, 9, m.MessageNumber)
	b = appendBool(b, 10, m.NoAccountBalances)
	b = appendBool(b, 11, m.Unsolicited)
	return b
}

func (m *AccountBalanceUpdate) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.RequestID, data, err = wireInt32(data, typ)
		case 2:
			m.CashBalance, data, err = wireDouble(data, typ)
		case 3:
			m.BalanceAvailableForNewPositions, data, err = wireDouble(data, typ)
		case 4:
			m.AccountCurrency, data, err = wireString(data, typ)
		case 5:
			m.TradeAccount, data, err = wireString(data, typ)
		case 6:
			m.SecuritiesValue, data, err = wireDouble(data, typ)
		case 7:
			m.MarginRequirement, data, err = wireDouble(data, typ)
		case 8:
			m.TotalNumberMessages, data, err = wireInt32(data, typ)
		case 9:
			m.MessageNumber, data, err = wireInt32(data, typ)
		case 10:
			m.NoAccountBalances, data, err = wireBool(data, typ)
		case 11:
			m.Unsolicited, data, err = wireBool(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
