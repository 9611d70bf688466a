package history

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"bitsouk/config"
	"bitsouk/internal/dtc"
	"bitsouk/internal/market"
)

var histBase = time.Date(2021, 7, 1, 5, 0, 0, 0, time.UTC)

// seededStore holds four trades: three inside one minute, one ninety
// seconds in.
func seededStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(t.TempDir(), "BTC-ETH")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	_, err = store.WriteTicks([]Tick{
		{TS: histBase, Side: market.SideBuy, PriceSat: 5000000, QtySat: 150000000},
		{TS: histBase.Add(20 * time.Second), Side: market.SideSell, PriceSat: 4900000, QtySat: 200000000},
		{TS: histBase.Add(45 * time.Second), Side: market.SideBuy, PriceSat: 5300000, QtySat: 50000000},
		{TS: histBase.Add(90 * time.Second), Side: market.SideSell, PriceSat: 5100000, QtySat: 100000000},
	})
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

func startServer(t *testing.T, stores map[string]*Store) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.History.Port = 0
	srv := NewServer(cfg, stores)
	ctx, cancel := context.WithCancel(context.Background())
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("start history server: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		srv.Stop()
	})
	return srv
}

// wireClient reads one TCP connection and reassembles frames.
type wireClient struct {
	nc     net.Conn
	frames chan dtc.Frame
}

func newWireClient(nc net.Conn) *wireClient {
	c := &wireClient{nc: nc, frames: make(chan dtc.Frame, 64)}
	go c.readLoop()
	return c
}

func (c *wireClient) readLoop() {
	defer close(c.frames)
	var dec dtc.Decoder
	buf := make([]byte, 4096)
	for {
		n, err := c.nc.Read(buf)
		if n > 0 {
			dec.Write(buf[:n])
			for {
				frame, ok, ferr := dec.Next()
				if ferr != nil {
					return
				}
				if !ok {
					break
				}
				payload := make([]byte, len(frame.Payload))
				copy(payload, frame.Payload)
				c.frames <- dtc.Frame{Type: frame.Type, Payload: payload}
			}
		}
		if err != nil {
			return
		}
	}
}

func (c *wireClient) write(t *testing.T, msg dtc.Message) {
	t.Helper()
	frame, err := dtc.EncodeFrame(msg)
	if err != nil {
		t.Fatalf("encode %d: %v", msg.Type(), err)
	}
	if _, err := c.nc.Write(frame); err != nil {
		t.Fatalf("write %d: %v", msg.Type(), err)
	}
}

func (c *wireClient) next(t *testing.T) dtc.Frame {
	t.Helper()
	select {
	case f, ok := <-c.frames:
		if !ok {
			t.Fatal("session closed while a frame was expected")
		}
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a frame")
	}
	return dtc.Frame{}
}

func (c *wireClient) expect(t *testing.T, want dtc.MessageType) dtc.Frame {
	t.Helper()
	f := c.next(t)
	if f.Type != want {
		t.Fatalf("got message type %d, want %d", f.Type, want)
	}
	return f
}

func (c *wireClient) expectNone(t *testing.T) {
	t.Helper()
	select {
	case f, ok := <-c.frames:
		if ok {
			t.Fatalf("unexpected message type %d", f.Type)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func (c *wireClient) expectClosed(t *testing.T) {
	t.Helper()
	select {
	case f, ok := <-c.frames:
		if ok {
			t.Fatalf("got message type %d, want closed session", f.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("session still open")
	}
}

func mustUnmarshal(t *testing.T, f dtc.Frame, msg dtc.Message) {
	t.Helper()
	if err := msg.Unmarshal(f.Payload); err != nil {
		t.Fatalf("decode message type %d: %v", f.Type, err)
	}
}

// dialServer connects and completes the encoding handshake.
func dialServer(t *testing.T, srv *Server) *wireClient {
	t.Helper()
	nc, err := net.Dial("tcp", srv.listener.Addr().String())
	if err != nil {
		t.Fatalf("dial history server: %v", err)
	}
	t.Cleanup(func() { nc.Close() })
	client := newWireClient(nc)

	handshake := make([]byte, 16)
	binary.LittleEndian.PutUint16(handshake[0:2], 16)
	binary.LittleEndian.PutUint16(handshake[2:4], uint16(dtc.TypeEncodingRequest))
	binary.LittleEndian.PutUint32(handshake[4:8], dtc.ProtocolVersion)
	binary.LittleEndian.PutUint32(handshake[8:12], uint32(dtc.EncodingProtobuf))
	copy(handshake[12:16], "DTC\x00")
	if _, err := nc.Write(handshake); err != nil {
		t.Fatalf("write handshake: %v", err)
	}
	client.expect(t, dtc.TypeEncodingResponse)
	return client
}

func TestHistoryServerLogonAndBars(t *testing.T) {
	srv := startServer(t, map[string]*Store{"BTC-ETH": seededStore(t)})
	client := dialServer(t, srv)

	client.write(t, &dtc.LogonRequest{ProtocolVersion: dtc.ProtocolVersion, ClientName: "hist-test"})
	var logon dtc.LogonResponse
	mustUnmarshal(t, client.expect(t, dtc.TypeLogonResponse), &logon)
	if logon.Result != dtc.LogonSuccess || !logon.HistoricalPriceDataSupported {
		t.Fatalf("logon = %+v", logon)
	}
	if !logon.OneHistoricalPriceDataRequestPerConnection {
		t.Error("logon should advertise one request per connection")
	}

	client.write(t, &dtc.HistoricalPriceDataRequest{
		RequestID: 42, Symbol: "BTC-ETH", Exchange: exchangeName, RecordInterval: 60,
	})
	var hdr dtc.HistoricalPriceDataResponseHeader
	mustUnmarshal(t, client.expect(t, dtc.TypeHistoricalPriceDataResponseHeader), &hdr)
	if hdr.RequestID != 42 || hdr.RecordInterval != 60 || hdr.NoRecordsToReturn {
		t.Fatalf("header = %+v", hdr)
	}
	if hdr.IntToFloatPriceDivisor != 1 {
		t.Errorf("price divisor = %v, want 1", hdr.IntToFloatPriceDivisor)
	}

	var first dtc.HistoricalPriceDataRecordResponse
	mustUnmarshal(t, client.expect(t, dtc.TypeHistoricalPriceDataRecordResponse), &first)
	if first.StartDateTime != histBase.Unix() {
		t.Errorf("first bar starts %d, want %d", first.StartDateTime, histBase.Unix())
	}
	if first.OpenPrice != 0.05 || first.HighPrice != 0.053 || first.LowPrice != 0.049 || first.LastPrice != 0.053 {
		t.Errorf("first bar ohlc = %+v", first)
	}
	if first.Volume != 4 || first.NumTrades != 3 || first.BidVolume != 2 || first.AskVolume != 2 {
		t.Errorf("first bar volume = %+v", first)
	}

	var second dtc.HistoricalPriceDataRecordResponse
	mustUnmarshal(t, client.expect(t, dtc.TypeHistoricalPriceDataRecordResponse), &second)
	if second.StartDateTime != histBase.Add(90*time.Second).Unix() {
		t.Errorf("second bar starts %d", second.StartDateTime)
	}
	if second.OpenPrice != 0.051 || second.LastPrice != 0.051 || second.Volume != 1 || second.NumTrades != 1 {
		t.Errorf("second bar = %+v", second)
	}

	var final dtc.HistoricalPriceDataRecordResponse
	mustUnmarshal(t, client.expect(t, dtc.TypeHistoricalPriceDataRecordResponse), &final)
	if !final.IsFinalRecord {
		t.Fatalf("expected the final-record sentinel, got %+v", final)
	}
	client.expectNone(t)

	client.write(t, &dtc.Logoff{Reason: "done"})
	client.expectClosed(t)
}

func TestHistoryServerStreamsRawTicks(t *testing.T) {
	srv := startServer(t, map[string]*Store{"BTC-ETH": seededStore(t)})
	client := dialServer(t, srv)

	client.write(t, &dtc.HistoricalPriceDataRequest{
		RequestID: 7, Symbol: "BTC-ETH", Exchange: exchangeName,
	})
	var hdr dtc.HistoricalPriceDataResponseHeader
	mustUnmarshal(t, client.expect(t, dtc.TypeHistoricalPriceDataResponseHeader), &hdr)
	if hdr.RequestID != 7 || hdr.RecordInterval != 0 || hdr.NoRecordsToReturn {
		t.Fatalf("header = %+v", hdr)
	}

	want := []struct {
		off   time.Duration
		at    dtc.AtBidOrAsk
		price float64
		vol   float64
	}{
		{0, dtc.AtAsk, 0.05, 1.5},
		{20 * time.Second, dtc.AtBid, 0.049, 2},
		{45 * time.Second, dtc.AtAsk, 0.053, 0.5},
		{90 * time.Second, dtc.AtBid, 0.051, 1},
	}
	for i, w := range want {
		var rec dtc.HistoricalPriceDataTickRecordResponse
		mustUnmarshal(t, client.expect(t, dtc.TypeHistoricalPriceDataTickRecordResponse), &rec)
		if rec.IsFinalRecord {
			t.Fatalf("record %d marked final", i)
		}
		wantDT := float64(histBase.Add(w.off).UnixNano()) / 1e9
		if rec.DateTime != wantDT || rec.AtBidOrAsk != w.at || rec.Price != w.price || rec.Volume != w.vol {
			t.Errorf("record %d = %+v", i, rec)
		}
	}

	var final dtc.HistoricalPriceDataTickRecordResponse
	mustUnmarshal(t, client.expect(t, dtc.TypeHistoricalPriceDataTickRecordResponse), &final)
	if !final.IsFinalRecord {
		t.Fatalf("expected the final-record sentinel, got %+v", final)
	}
	client.expectNone(t)
}

func TestHistoryServerEndBoundCoversWholeSecond(t *testing.T) {
	store, err := OpenStore(t.TempDir(), "BTC-ETH")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if _, err := store.WriteTicks([]Tick{
		{TS: histBase.Add(44 * time.Second), Side: market.SideBuy, PriceSat: 100, QtySat: 100000000},
		{TS: histBase.Add(45 * time.Second), Side: market.SideBuy, PriceSat: 200, QtySat: 100000000},
		{TS: histBase.Add(45*time.Second + 500*time.Millisecond), Side: market.SideBuy, PriceSat: 300, QtySat: 100000000},
		{TS: histBase.Add(46 * time.Second), Side: market.SideBuy, PriceSat: 400, QtySat: 100000000},
	}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	srv := startServer(t, map[string]*Store{"BTC-ETH": store})
	client := dialServer(t, srv)

	bound := histBase.Add(45 * time.Second)
	client.write(t, &dtc.HistoricalPriceDataRequest{
		RequestID: 3, Symbol: "BTC-ETH", Exchange: exchangeName,
		StartDateTime: bound.Unix(), EndDateTime: bound.Unix(),
	})
	client.expect(t, dtc.TypeHistoricalPriceDataResponseHeader)

	var dts []float64
	for {
		var rec dtc.HistoricalPriceDataTickRecordResponse
		mustUnmarshal(t, client.expect(t, dtc.TypeHistoricalPriceDataTickRecordResponse), &rec)
		if rec.IsFinalRecord {
			break
		}
		dts = append(dts, rec.DateTime)
	}
	wantDTs := []float64{
		float64(bound.UnixNano()) / 1e9,
		float64(bound.Add(500*time.Millisecond).UnixNano()) / 1e9,
	}
	if len(dts) != 2 || dts[0] != wantDTs[0] || dts[1] != wantDTs[1] {
		t.Errorf("tick datetimes = %v, want the whole 45th second %v", dts, wantDTs)
	}
}

func TestHistoryServerRejectsUnknownSymbol(t *testing.T) {
	srv := startServer(t, map[string]*Store{"BTC-ETH": seededStore(t)})
	client := dialServer(t, srv)

	client.write(t, &dtc.HistoricalPriceDataRequest{RequestID: 9, Symbol: "ETH-BTC", Exchange: exchangeName})
	var rej dtc.HistoricalPriceDataReject
	mustUnmarshal(t, client.expect(t, dtc.TypeHistoricalPriceDataReject), &rej)
	if rej.RequestID != 9 || rej.RejectText != "Unknown symbol ETH-BTC" {
		t.Fatalf("reject = %+v", rej)
	}

	client.write(t, &dtc.HistoricalPriceDataRequest{RequestID: 10, Symbol: "BTC-ETH", Exchange: "NASDAQ"})
	mustUnmarshal(t, client.expect(t, dtc.TypeHistoricalPriceDataReject), &rej)
	if rej.RequestID != 10 || rej.RejectText != "Unknown symbol BTC-ETH" {
		t.Fatalf("wrong-exchange reject = %+v", rej)
	}
}

func TestHistoryServerEmptyRangeReturnsHeaderOnly(t *testing.T) {
	srv := startServer(t, map[string]*Store{"BTC-ETH": seededStore(t)})
	client := dialServer(t, srv)

	client.write(t, &dtc.HistoricalPriceDataRequest{
		RequestID: 11, Symbol: "BTC-ETH", Exchange: exchangeName,
		StartDateTime: histBase.Add(365 * 24 * time.Hour).Unix(),
	})
	var hdr dtc.HistoricalPriceDataResponseHeader
	mustUnmarshal(t, client.expect(t, dtc.TypeHistoricalPriceDataResponseHeader), &hdr)
	if hdr.RequestID != 11 || !hdr.NoRecordsToReturn {
		t.Fatalf("header = %+v", hdr)
	}
	client.expectNone(t)
}

func TestHistoryServerDropsMalformedHandshake(t *testing.T) {
	srv := startServer(t, map[string]*Store{})
	nc, err := net.Dial("tcp", srv.listener.Addr().String())
	if err != nil {
		t.Fatalf("dial history server: %v", err)
	}
	t.Cleanup(func() { nc.Close() })
	client := newWireClient(nc)

	bad := make([]byte, 12)
	binary.LittleEndian.PutUint16(bad[0:2], 12)
	binary.LittleEndian.PutUint16(bad[2:4], uint16(dtc.TypeEncodingRequest))
	if _, err := nc.Write(bad); err != nil {
		t.Fatalf("write handshake: %v", err)
	}
	client.expectClosed(t)
}

func TestHistoryServerRejectsSecondStart(t *testing.T) {
	srv := startServer(t, map[string]*Store{})
	if err := srv.Start(context.Background()); err == nil {
		t.Fatal("second start should fail while running")
	}
}

func TestQueryBoundsWholeSeconds(t *testing.T) {
	var req dtc.HistoricalPriceDataRequest
	start, end := queryBounds(&req)
	if !start.IsZero() || !end.IsZero() {
		t.Fatalf("zero request bounds = %v, %v", start, end)
	}

	req.StartDateTime = 1625115600
	req.EndDateTime = 1625115645
	start, end = queryBounds(&req)
	if !start.Equal(time.Unix(1625115600, 0)) {
		t.Errorf("start = %v", start)
	}
	if !end.Add(time.Nanosecond).Equal(time.Unix(1625115646, 0)) {
		t.Errorf("end should cover its whole second, got %v", end)
	}
}
