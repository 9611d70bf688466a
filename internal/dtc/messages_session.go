package dtc

import "google.golang.org/protobuf/encoding/protowire"

// Session level messages: logon and heartbeat. Field numbers follow
// DTCProtocol.proto.

type LogonRequest struct {
	ProtocolVersion            int32
	Username                   string
	Password                   string
	GeneralTextData            string
	Integer1                   int32
	Integer2                   int32
	HeartbeatIntervalInSeconds int32
	TradeAccount               string
	HardwareIdentifier         string
	ClientName                 string
}

func (m *LogonRequest) Type() MessageType { return TypeLogonRequest }

func (m *LogonRequest) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.ProtocolVersion)
	b = appendString(b, 2, m.Username)
	b = appendString(b, 3, m.Password)
	b = appendString(b, 4, m.GeneralTextData)
	b = appendInt32(b, 5, m.Integer1)
	b = appendInt32(b, 6, m.Integer2)
	b = appendInt32(b, 7, m.HeartbeatIntervalInSeconds)
	b = appendString(b, 9, m.TradeAccount)
	b = appendString(b, 10, m.HardwareIdentifier)
	b = appendString(b, 11, m.ClientName)
	return b
}

func (m *LogonRequest) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.ProtocolVersion, data, err = wireInt32(data, typ)
		case 2:
			m.Username, data, err = wireString(data, typ)
		case 3:
			m.Password, data, err = wireString(data, typ)
		case 4:
			m.GeneralTextData, data, err = wireString(data, typ)
		case 5:
			m.Integer1, data, err = wireInt32(data, typ)
		case 6:
			m.Integer2, data, err = wireInt32(data, typ)
		case 7:
			m.HeartbeatIntervalInSeconds, data, err = wireInt32(data, typ)
		case 9:
			m.TradeAccount, data, err = wireString(data, typ)
		case 10:
			m.HardwareIdentifier, data, err = wireString(data, typ)
		case 11:
			m.ClientName, data, err = wireString(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type LogonResponse struct {
	ProtocolVersion                               int32
	Result                                        LogonStatus
	ResultText                                    string
	ReconnectAddress                              string
	Integer1                                      int32
	ServerName                                    string
	MarketDepthUpdatesBestBidAndAsk               bool
	TradingIsSupported                            bool
	OCOOrdersSupported                            bool
	OrderCancelReplaceSupported                   bool
	SymbolExchangeDelimiter                       string
	SecurityDefinitionsSupported                  bool
	HistoricalPriceDataSupported                  bool
	ResubscribeWhenMarketDataFeedAvailable        bool
	MarketDepthIsSupported                        bool
	OneHistoricalPriceDataRequestPerConnection    bool
	BracketOrdersSupported                        bool
	UsesMultiplePositionsPerSymbolAndTradeAccount bool
	MarketDataSupported                           bool
}

func (m *LogonResponse) Type() MessageType { return TypeLogonResponse }

func (m *LogonResponse) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.ProtocolVersion)
	b = appendInt32(b, 2, int32(m.Result))
	b = appendString(b, 3, m.ResultText)
	b = appendString(b, 4, m.ReconnectAddress)
	b = appendInt32(b, 5, m.Integer1)
	b = appendString(b, 6, m.ServerName)
	b = appendBool(b, 7, m.MarketDepthUpdatesBestBidAndAsk)
	b = appendBool(b, 8, m.TradingIsSupported)
	b = appendBool(b, 9, m.OCOOrdersSupported)
	b = appendBool(b, 10, m.OrderCancelReplaceSupported)
	b = appendString(b, 11, m.SymbolExchangeDelimiter)
	b = appendBool(b, 12, m.SecurityDefinitionsSupported)
	b = appendBool(b, 13, m.HistoricalPriceDataSupported)
	b = appendBool(b, 14, m.ResubscribeWhenMarketDataFeedAvailable)
	b = appendBool(b, 15, m.MarketDepthIsSupported)
	b = appendBool(b, 16, m.OneHistoricalPriceDataRequestPerConnection)
	b = appendBool(b, 17, m.BracketOrdersSupported)
	b = appendBool(b, 19, m.UsesMultiplePositionsPerSymbolAndTradeAccount)
	b = appendBool(b, 20, m.MarketDataSupported)
	return b
}

func (m *LogonResponse) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.ProtocolVersion, data, err = wireInt32(data, typ)
		case 2:
			var v int32
			v, data, err = wireInt32(data, typ)
			m.Result = LogonStatus(v)
		case 3:
			m.ResultText, data, err = wireString(data, typ)
		case 4:
			m.ReconnectAddress, data, err = wireString(data, typ)
		case 5:
			m.Integer1, data, err = wireInt32(data, typ)
		case 6:
			m.ServerName, data, err = wireString(data, typ)
		case 7:
			m.MarketDepthUpdatesBestBidAndAsk, data, err = wireBool(data, typ)
		case 8:
			m.TradingIsSupported, data, err = wireBool(data, typ)
		case 9:
			m.OCOOrdersSupported, data, err = wireBool(data, typ)
		case 10:
			m.OrderCancelReplaceSupported, data, err = wireBool(data, typ)
		case 11:
			m.SymbolExchangeDelimiter, data, err = wireString(data, typ)
		case 12:
			m.SecurityDefinitionsSupported, data, err = wireBool(data, typ)
		case 13:
			m.HistoricalPriceDataSupported, data, err = wireBool(data, typ)
		case 14:
			m.ResubscribeWhenMarketDataFeedAvailable, data, err = wireBool(data, typ)
		case 15:
			m.MarketDepthIsSupported, data, err = wireBool(data, typ)
		case 16:
			m.OneHistoricalPriceDataRequestPerConnection, data, err = wireBool(data, typ)
		case 17:
			m.BracketOrdersSupported, data, err = wireBool(data, typ)
		case 19:
			m.UsesMultiplePositionsPerSymbolAndTradeAccount, data, err = wireBool(data, typ)
		case 20:
			m.MarketDataSupported, data, err = wireBool(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type Heartbeat struct {
	NumDroppedMessages uint32
	CurrentDateTime    int64
}

func (m *Heartbeat) Type() MessageType { return TypeHeartbeat }

func (m *Heartbeat) Marshal() []byte {
	var b []byte
	b = appendUint32(b, 1, m.NumDroppedMessages)
	b = appendInt64(b, 2, m.CurrentDateTime)
	return b
}

func (m *Heartbeat) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var err error
		switch num {
		case 1:
			m.NumDroppedMessages, data, err = wireUint32(data, typ)
		case 2:
			m.CurrentDateTime, data, err = wireInt64(data, typ)
		default:
			data, err = wireSkip(data, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
