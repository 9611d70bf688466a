package dtc

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestLogonResponseRoundTrip(t *testing.T) {
	msg := LogonResponse{
		ProtocolVersion:                 ProtocolVersion,
		Result:                          LogonSuccess,
		ResultText:                      "Trading enabled: Valid Bittrex credentials",
		ServerName:                      "Bitsouk",
		MarketDepthUpdatesBestBidAndAsk: true,
		TradingIsSupported:              true,
		OrderCancelReplaceSupported:     true,
		SecurityDefinitionsSupported:    true,
		MarketDepthIsSupported:          true,
		MarketDataSupported:             true,
	}
	data := msg.Marshal()
	var out LogonResponse
	if err := out.Unmarshal(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != msg {
		t.Fatalf("round trip mismatch: %+v != %+v", out, msg)
	}
}

func TestMarketDataSnapshotRoundTrip(t *testing.T) {
	msg := MarketDataSnapshot{
		SymbolID:          3,
		SessionHighPrice:  0.09181231,
		SessionLowPrice:   0.08644401,
		SessionVolume:     12345.678901,
		BidPrice:          0.08930011,
		AskPrice:          0.08931027,
		BidQuantity:       41.9,
		AskQuantity:       0.0001,
		LastTradePrice:    0.08930500,
		LastTradeVolume:   2.41,
		LastTradeDateTime: 1503072059.422,
		BidAskDateTime:    1503072060.001,
	}
	data := msg.Marshal()
	var out MarketDataSnapshot
	if err := out.Unmarshal(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != msg {
		t.Fatalf("round trip mismatch: %+v != %+v", out, msg)
	}
}

func TestOrderUpdateRoundTrip(t *testing.T) {
	msg := OrderUpdate{
		RequestID:         9,
		TotalNumMessages:  2,
		MessageNumber:     1,
		Symbol:            "BTC-ETH",
		Exchange:          "BTREX",
		ServerOrderID:     "8f1f5c91-4c9a-4a51-9217-60d1b6c9f4a1",
		ClientOrderID:     "ord-77",
		OrderStatus:       OrderStatusPartiallyFilled,
		OrderUpdateReason: ReasonOrderFilledPartially,
		OrderType:         OrderTypeLimit,
		BuySell:           SideBuy,
		Price1:            0.0525,
		TimeInForce:       TifGoodTillCanceled,
		OrderQuantity:     10000,
		FilledQuantity:    2500,
		RemainingQuantity: 7500,
		AverageFillPrice:  0.0524,
		LastFillPrice:     0.0524,
		LastFillQuantity:  2500,
		TradeAccount:      "exchange",
	}
	data := msg.Marshal()
	var out OrderUpdate
	if err := out.Unmarshal(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != msg {
		t.Fatalf("round trip mismatch: %+v != %+v", out, msg)
	}
}

func TestHistoricalRecordRoundTrip(t *testing.T) {
	msg := HistoricalPriceDataRecordResponse{
		RequestID:     4,
		StartDateTime: 1503072000,
		OpenPrice:     0.07215001,
		HighPrice:     0.07293317,
		LowPrice:      0.07119918,
		LastPrice:     0.07254411,
		Volume:        881.0412,
		NumTrades:     512,
	}
	data := msg.Marshal()
	var out HistoricalPriceDataRecordResponse
	if err := out.Unmarshal(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != msg {
		t.Fatalf("round trip mismatch: %+v != %+v", out, msg)
	}
}

func TestZeroValuesMarshalEmpty(t *testing.T) {
	msgs := []Message{
		&LogonRequest{},
		&MarketDataSnapshot{},
		&OrderUpdate{},
		&HistoricalPriceDataTickRecordResponse{},
	}
	for _, m := range msgs {
		if data := m.Marshal(); len(data) != 0 {
			t.Errorf("type %d: expected empty payload for zero value, got %d bytes", m.Type(), len(data))
		}
	}
}

func TestUnmarshalSkipsUnknownFields(t *testing.T) {
	var b []byte
	b = appendVarint(b, 99, 7)
	b = appendString(b, 98, "future field")
	b = appendUint32(b, 1, 5)
	b = appendDouble(b, 3, 0.525)

	var out MarketDataUpdateTrade
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.SymbolID != 5 || out.Price != 0.525 {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestUnmarshalRejectsWrongWireType(t *testing.T) {
	// Field 3 of a trade update is a double; a varint there is malformed.
	b := appendVarint(nil, 3, 42)
	var out MarketDataUpdateTrade
	if err := out.Unmarshal(b); !errors.Is(err, errWireType) {
		t.Fatalf("expected wire type error, got %v", err)
	}
}

func TestUnixSeconds(t *testing.T) {
	if got := UnixSeconds(time.Time{}); got != 0 {
		t.Fatalf("expected 0 for zero time, got %v", got)
	}
	ts := time.Date(2017, 8, 18, 15, 20, 59, 0, time.UTC)
	if got := UnixSeconds(ts); got != 1503069659 {
		t.Fatalf("expected 1503069659, got %v", got)
	}
	ts = ts.Add(422 * time.Millisecond)
	if got := UnixSeconds(ts); math.Abs(got-1503069659.422) > 1e-6 {
		t.Fatalf("expected 1503069659.422, got %v", got)
	}
}
