package dtc

import "google.golang.org/protobuf/encoding/protowire"

// Market data, market depth and security definition messages.

type SecurityDefinitionForSymbolRequest struct {
	RequestID int32
	Symbol    string
	Exchange  string
}

func (m *SecurityDefinitionForSymbolRequest) Type() MessageType {
	return TypeSecurityDefinitionForSymbolRequest
}

func (m *SecurityDefinitionForSymbolRequest) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.RequestID)
	b = appendString(b, 2, m.Symbol)
	b = appendString(b, 3, m.Exchange)
	return b
}

func (m *SecurityDefinitionForSymbolRequest) Unmarshal(data []byte) error {
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
			m.Symbol, data, err = wireString(data, typ)
		case 3:
			m.Exchange, data, err = wireString(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type SecurityDefinitionResponse struct {
	RequestID                 int32
	Symbol                    string
	Exchange                  string
	SecurityType              SecurityType
	Description               string
	MinPriceIncrement         float64
	PriceDisplayFormat        PriceDisplayFormat
	CurrencyValuePerIncrement float64
	IsFinalMessage            bool
	HasMarketDepthData        bool
}

func (m *SecurityDefinitionResponse) Type() MessageType { return TypeSecurityDefinitionResponse }

func (m *SecurityDefinitionResponse) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.RequestID)
	b = appendString(b, 2, m.Symbol)
	b = appendString(b, 3, m.Exchange)
	b = appendInt32(b, 4, int32(m.SecurityType))
	b = appendString(b, 5, m.Description)
	b = appendDouble(b, 6, m.MinPriceIncrement)
	b = appendInt32(b, 7, int32(m.PriceDisplayFormat))
	b = appendDouble(b, 8, m.CurrencyValuePerIncrement)
	b = appendBool(b, 9, m.IsFinalMessage)
	b = appendBool(b, 23, m.HasMarketDepthData)
	return b
}

func (m *SecurityDefinitionResponse) Unmarshal(data []byte) error {
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
			m.Symbol, data, err = wireString(data, typ)
		case 3:
			m.Exchange, data, err = wireString(data, typ)
		case 4:
			var v int32
			v, data, err = wireInt32(data, typ)
			m.SecurityType = SecurityType(v)
		case 5:
			m.Description, data, err = wireString(data, typ)
		case 6:
			m.MinPriceIncrement, data, err = wireDouble(data, typ)
		case 7:
			var v int32
			v, data, err = wireInt32(data, typ)
			m.PriceDisplayFormat = PriceDisplayFormat(v)
		case 8:
			m.CurrencyValuePerIncrement, data, err = wireDouble(data, typ)
		case 9:
			m.IsFinalMessage, data, err = wireBool(data, typ)
		case 23:
			m.HasMarketDepthData, data, err = wireBool(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type SecurityDefinitionReject struct {
	RequestID  int32
	RejectText string
}

func (m *SecurityDefinitionReject) Type() MessageType { return TypeSecurityDefinitionReject }

func (m *SecurityDefinitionReject) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.RequestID)
	b = appendString(b, 2, m.RejectText)
	return b
}

func (m *SecurityDefinitionReject) Unmarshal(data []byte) error {
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

type MarketDataRequest struct {
	RequestAction RequestAction
	SymbolID      uint32
	Symbol        string
	Exchange      string
}

func (m *MarketDataRequest) Type() MessageType { return TypeMarketDataRequest }

func (m *MarketDataRequest) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, int32(m.RequestAction))
	b = appendUint32(b, 2, m.SymbolID)
	b = appendString(b, 3, m.Symbol)
	b = appendString(b, 4, m.Exchange)
	return b
}

func (m *MarketDataRequest) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			var v int32
			v, data, err = wireInt32(data, typ)
			m.RequestAction = RequestAction(v)
		case 2:
			m.SymbolID, data, err = wireUint32(data, typ)
		case 3:
			m.Symbol, data, err = wireString(data, typ)
		case 4:
			m.Exchange, data, err = wireString(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type MarketDataReject struct {
	SymbolID   uint32
	RejectText string
}

func (m *MarketDataReject) Type() MessageType { return TypeMarketDataReject }

func (m *MarketDataReject) Marshal() []byte {
	var b []byte
	b = appendUint32(b, 1, m.SymbolID)
	b = appendString(b, 2, m.RejectText)
	return b
}

func (m *MarketDataReject) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.SymbolID, data, err = wireUint32(data, typ)
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

type MarketDataSnapshot struct {
	SymbolID                  uint32
	SessionSettlementPrice    float64
	SessionOpenPrice          float64
	SessionHighPrice          float64
	SessionLowPrice           float64
	SessionVolume             float64
	SessionNumTrades          uint32
	OpenInterest              uint32
	BidPrice                  float64
	AskPrice                  float64
	AskQuantity               float64
	BidQuantity               float64
	LastTradePrice            float64
	LastTradeVolume           float64
	LastTradeDateTime         float64
	BidAskDateTime            float64
	SessionSettlementDateTime int64
	TradingSessionDate        int64
}

func (m *MarketDataSnapshot) Type() MessageType { return TypeMarketDataSnapshot }

func (m *MarketDataSnapshot) Marshal() []byte {
	var b []byte
	b = appendUint32(b, 1, m.SymbolID)
	b = appendDouble(b, 2, m.SessionSettlementPrice)
	b = appendDouble(b, 3, m.SessionOpenPrice)
	b = appendDouble(b, 4, m.SessionHighPrice)
	b = appendDouble(b, 5, m.SessionLowPrice)
	b = appendDouble(b, 6, m.SessionVolume)
	b = appendUint32(b, 7, m.SessionNumTrades)
	b = appendUint32(b, 8, m.OpenInterest)
	b = appendDouble(b, 9, m.BidPrice)
	b = appendDouble(b, 10, m.AskPrice)
	b = appendDouble(b, 11, m.AskQuantity)
	b = appendDouble(b, 12, m.BidQuantity)
	b = appendDouble(b, 13, m.LastTradePrice)
	b = appendDouble(b, 14, m.LastTradeVolume)
	b = appendDouble(b, 15, m.LastTradeDateTime)
	b = appendDouble(b, 16, m.BidAskDateTime)
	b = appendInt64(b, 17, m.SessionSettlementDateTime)
	b = appendInt64(b, 18, m.TradingSessionDate)
	return b
}

func (m *MarketDataSnapshot) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.SymbolID, data, err = wireUint32(data, typ)
		case 2:
			m.SessionSettlementPrice, data, err = wireDouble(data, typ)
		case 3:
			m.SessionOpenPrice, data, err = wireDouble(data, typ)
		case 4:
			m.SessionHighPrice, data, err = wireDouble(data, typ)
		case 5:
			m.SessionLowPrice, data, err = wireDouble(data, typ)
		case 6:
			m.SessionVolume, data, err = wireDouble(data, typ)
		case 7:
			m.SessionNumTrades, data, err = wireUint32(data, typ)
		case 8:
			m.OpenInterest, data, err = wireUint32(data, typ)
		case 9:
			m.BidPrice, data, err = wireDouble(data, typ)
		case 10:
			m.AskPrice, data, err = wireDouble(data, typ)
		case 11:
			m.AskQuantity, data, err = wireDouble(data, typ)
		case 12:
			m.BidQuantity, data, err = wireDouble(data, typ)
		case 13:
			m.LastTradePrice, data, err = wireDouble(data, typ)
		case 14:
			m.LastTradeVolume, data, err = wireDouble(data, typ)
		case 15:
			m.LastTradeDateTime, data, err = wireDouble(data, typ)
		case 16:
			m.BidAskDateTime, data, err = wireDouble(data, typ)
		case 17:
			m.SessionSettlementDateTime, data, err = wireInt64(data, typ)
		case 18:
			m.TradingSessionDate, data, err = wireInt64(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type MarketDataUpdateTrade struct {
	SymbolID   uint32
	AtBidOrAsk AtBidOrAsk
	Price      float64
	Volume     float64
	DateTime   float64
}

func (m *MarketDataUpdateTrade) Type() MessageType { return TypeMarketDataUpdateTrade }

func (m *MarketDataUpdateTrade) Marshal() []byte {
	var b []byte
	b = appendUint32(b, 1, m.SymbolID)
	b = appendInt32(b, 2, int32(m.AtBidOrAsk))
	b = appendDouble(b, 3, m.Price)
	b = appendDouble(b, 4, m.Volume)
	b = appendDouble(b, 5, m.DateTime)
	return b
}

func (m *MarketDataUpdateTrade) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.SymbolID, data, err = wireUint32(data, typ)
		case 2:
			var v int32
			v, data, err = wireInt32(data, typ)
			m.AtBidOrAsk = AtBidOrAsk(v)
		case 3:
			m.Price, data, err = wireDouble(data, typ)
		case 4:
			m.Volume, data, err = wireDouble(data, typ)
		case 5:
			m.DateTime, data, err = wireDouble(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type MarketDataUpdateBidAsk struct {
	SymbolID    uint32
	BidPrice    float64
	BidQuantity float64
	AskPrice    float64
	AskQuantity float64
	DateTime    float64
}

func (m *MarketDataUpdateBidAsk) Type() MessageType { return TypeMarketDataUpdateBidAsk }

func (m *MarketDataUpdateBidAsk) Marshal() []byte {
	var b []byte
	b = appendUint32(b, 1, m.SymbolID)
	b = appendDouble(b, 2, m.BidPrice)
	b = appendDouble(b, 3, m.BidQuantity)
	b = appendDouble(b, 4, m.AskPrice)
	b = appendDouble(b, 5, m.AskQuantity)
	b = appendDouble(b, 6, m.DateTime)
	return b
}

func (m *MarketDataUpdateBidAsk) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.SymbolID, data, err = wireUint32(data, typ)
		case 2:
			m.BidPrice, data, err = wireDouble(data, typ)
		case 3:
			m.BidQuantity, data, err = wireDouble(data, typ)
		case 4:
			m.AskPrice, data, err = wireDouble(data, typ)
		case 5:
			m.AskQuantity, data, err = wireDouble(data, typ)
		case 6:
			m.DateTime, data, err = wireDouble(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type MarketDataUpdateSessionHigh struct {
	SymbolID           uint32
	Price              float64
	TradingSessionDate int64
}

func (m *MarketDataUpdateSessionHigh) Type() MessageType { return TypeMarketDataUpdateSessionHigh }

func (m *MarketDataUpdateSessionHigh) Marshal() []byte {
	var b []byte
	b = appendUint32(b, 1, m.SymbolID)
	b = appendDouble(b, 2, m.Price)
	b = appendInt64(b, 3, m.TradingSessionDate)
	return b
}

func (m *MarketDataUpdateSessionHigh) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.SymbolID, data, err = wireUint32(data, typ)
		case 2:
			m.Price, data, err = wireDouble(data, typ)
		case 3:
			m.TradingSessionDate, data, err = wireInt64(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type MarketDataUpdateSessionLow struct {
	SymbolID           uint32
	Price              float64
	TradingSessionDate int64
}

func (m *MarketDataUpdateSessionLow) Type() MessageType { return TypeMarketDataUpdateSessionLow }

func (m *MarketDataUpdateSessionLow) Marshal() []byte {
	var b []byte
	b = appendUint32(b, 1, m.SymbolID)
	b = appendDouble(b, 2, m.Price)
	b = appendInt64(b, 3, m.TradingSessionDate)
	return b
}

func (m *MarketDataUpdateSessionLow) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.SymbolID, data, err = wireUint32(data, typ)
		case 2:
			m.Price, data, err = wireDouble(data, typ)
		case 3:
			m.TradingSessionDate, data, err = wireInt64(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type MarketDataUpdateSessionVolume struct {
	SymbolID           uint32
	Volume             float64
	TradingSessionDate int64
}

func (m *MarketDataUpdateSessionVolume) Type() MessageType { return TypeMarketDataUpdateSessionVolume }

func (m *MarketDataUpdateSessionVolume) Marshal() []byte {
	var b []byte
	b = appendUint32(b, 1, m.SymbolID)
	b = appendDouble(b, 2, m.Volume)
	b = appendInt64(b, 3, m.TradingSessionDate)
	return b
}

func (m *MarketDataUpdateSessionVolume) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.SymbolID, data, err = wireUint32(data, typ)
		case 2:
			m.Volume, data, err = wireDouble(data, typ)
		case 3:
			m.TradingSessionDate, data, err = wireInt64(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type MarketDataUpdateLastTradeSnapshot struct {
	SymbolID          uint32
	LastTradePrice    float64
	LastTradeVolume   float64
	LastTradeDateTime float64
}

func (m *MarketDataUpdateLastTradeSnapshot) Type() MessageType {
	return TypeMarketDataUpdateLastTradeSnapshot
}

func (m *MarketDataUpdateLastTradeSnapshot) Marshal() []byte {
	var b []byte
	b = appendUint32(b, 1, m.SymbolID)
	b = appendDouble(b, 2, m.LastTradePrice)
	b = appendDouble(b, 3, m.LastTradeVolume)
	b = appendDouble(b, 4, m.LastTradeDateTime)
	return b
}

func (m *MarketDataUpdateLastTradeSnapshot) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.SymbolID, data, err = wireUint32(data, typ)
		case 2:
			m.LastTradePrice, data, err = wireDouble(data, typ)
		case 3:
			m.LastTradeVolume, data, err = wireDouble(data, typ)
		case 4:
			m.LastTradeDateTime, data, err = wireDouble(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type MarketDepthRequest struct {
	RequestAction RequestAction
	SymbolID      uint32
	Symbol        string
	Exchange      string
	NumLevels     int32
}

func (m *MarketDepthRequest) Type() MessageType { return TypeMarketDepthRequest }

func (m *MarketDepthRequest) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, int32(m.RequestAction))
	b = appendUint32(b, 2, m.SymbolID)
	b = appendString(b, 3, m.Symbol)
	b = appendString(b, 4, m.Exchange)
	b = appendInt32(b, 5, m.NumLevels)
	return b
}

func (m *MarketDepthRequest) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			var v int32
			v, data, err = wireInt32(data, typ)
			m.RequestAction = RequestAction(v)
		case 2:
			m.SymbolID, data, err = wireUint32(data, typ)
		case 3:
			m.Symbol, data, err = wireString(data, typ)
		case 4:
			m.Exchange, data, err = wireString(data, typ)
		case 5:
			m.NumLevels, data, err = wireInt32(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type MarketDepthReject struct {
	SymbolID   uint32
	RejectText string
}

func (m *MarketDepthReject) Type() MessageType { return TypeMarketDepthReject }

func (m *MarketDepthReject) Marshal() []byte {
	var b []byte
	b = appendUint32(b, 1, m.SymbolID)
	b = appendString(b, 2, m.RejectText)
	return b
}

func (m *MarketDepthReject) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.SymbolID, data, err = wireUint32(data, typ)
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

type MarketDepthSnapshotLevel struct {
	SymbolID              uint32
	Side                  BuySell
	Price                 float64
	Quantity              float64
	Level                 int32
	IsFirstMessageInBatch bool
	IsLastMessageInBatch  bool
	DateTime              float64
	NumOrders             uint32
}

func (m *MarketDepthSnapshotLevel) Type() MessageType { return TypeMarketDepthSnapshotLevel }

func (m *MarketDepthSnapshotLevel) Marshal() []byte {
	var b []byte
	b = appendUint32(b, 1, m.SymbolID)
	b = appendInt32(b, 2, int32(m.Side))
	b = appendDouble(b, 3, m.Price)
	b = appendDouble(b, 4, m.Quantity)
	b = appendInt32(b, 5, m.Level)
	b = appendBool(b, 6, m.IsFirstMessageInBatch)
	b = appendBool(b, 7, m.IsLastMessageInBatch)
	b = appendDouble(b, 8, m.DateTime)
	b = appendUint32(b, 9, m.NumOrders)
	return b
}

func (m *MarketDepthSnapshotLevel) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.SymbolID, data, err = wireUint32(data, typ)
		case 2:
			var v int32
			v, data, err = wireInt32(data, typ)
			m.Side = BuySell(v)
		case 3:
			m.Price, data, err = wireDouble(data, typ)
		case 4:
			m.Quantity, data, err = wireDouble(data, typ)
		case 5:
			m.Level, data, err = wireInt32(data, typ)
		case 6:
			m.IsFirstMessageInBatch, data, err = wireBool(data, typ)
		case 7:
			m.IsLastMessageInBatch, data, err = wireBool(data, typ)
		case 8:
			m.DateTime, data, err = wireDouble(data, typ)
		case 9:
			m.NumOrders, data, err = wireUint32(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type MarketDepthUpdateLevel struct {
	SymbolID   uint32
	Side       BuySell
	Price      float64
	Quantity   float64
	UpdateType DepthUpdateType
	DateTime   float64
	NumOrders  uint32
}

func (m *MarketDepthUpdateLevel) Type() MessageType { return TypeMarketDepthUpdateLevel }

func (m *MarketDepthUpdateLevel) Marshal() []byte {
	var b []byte
	b = appendUint32(b, 1, m.SymbolID)
	b = appendInt32(b, 2, int32(m.Side))
	b = appendDouble(b, 3, m.Price)
	b = appendDouble(b, 4, m.Quantity)
	b = appendInt32(b, 5, int32(m.UpdateType))
	b = appendDouble(b, 6, m.DateTime)
	b = appendUint32(b, 7, m.NumOrders)
	return b
}

func (m *MarketDepthUpdateLevel) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.SymbolID, data, err = wireUint32(data, typ)
		case 2:
			var v int32
			v, data, err = wireInt32(data, typ)
			m.Side = BuySell(v)
		case 3:
			m.Price, data, err = wireDouble(data, typ)
		case 4:
			m.Quantity, data, err = wireDouble(data, typ)
		case 5:
			var v int32
			v, data, err = wireInt32(data, typ)
			m.UpdateType = DepthUpdateType(v)
		case 6:
			m.DateTime, data, err = wireDouble(data, typ)
		case 7:
			m.NumOrders, data, err = wireUint32(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
