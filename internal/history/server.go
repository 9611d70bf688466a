package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"bitsouk/config"
	"bitsouk/internal/dtc"
	"bitsouk/internal/market"
	"bitsouk/internal/metrics"
	"bitsouk/logger"
)

const exchangeName = "BTREX"

// Server answers DTC historical price data requests from the symbol
// stores. Queries stream on the session's read goroutine, so one request
// is served at a time per connection.
type Server struct {
	config   *config.Config
	stores   map[string]*Store
	wg       *sync.WaitGroup
	mu       sync.Mutex
	running  bool
	ctx      context.Context
	listener net.Listener
	log      *logger.Log
}

func NewServer(cfg *config.Config, stores map[string]*Store) *Server {
	return &Server{
		config: cfg,
		stores: stores,
		wg:     &sync.WaitGroup{},
		log:    logger.GetLogger(),
	}
}

// Start binds the history port and launches the accept loop.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("history server already running")
	}
	s.running = true
	s.ctx = ctx
	s.mu.Unlock()

	addr := fmt.Sprintf(":%d", s.config.History.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln

	s.log.WithComponent("history").WithFields(logger.Fields{
		"addr":    addr,
		"symbols": len(s.stores),
	}).Info("history server listening")

	s.wg.Add(1)
	go s.acceptLoop()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-ctx.Done()
		s.listener.Close()
	}()
	return nil
}

// Stop closes the listener and waits for live sessions to finish.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.listener.Close()
	s.wg.Wait()
	s.log.WithComponent("history").Info("history server stopped")
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		nc, err := s.listener.Accept()
		if err != nil {
			if s.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.WithComponent("history").WithError(err).Warn("accept failed")
			continue
		}
		sess := &session{
			server: s,
			nc:     nc,
			log: s.log.WithComponent("history").WithFields(logger.Fields{
				"remote": nc.RemoteAddr().String(),
			}),
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			sess.serve()
		}()
	}
}

// session is one historical client connection.
type session struct {
	server  *Server
	nc      net.Conn
	writeMu sync.Mutex
	log     *logger.Entry
}

func (c *session) serve() {
	defer c.nc.Close()

	var dec dtc.Decoder
	buf := make([]byte, 4096)
	for {
		n, err := c.nc.Read(buf)
		if n > 0 {
			dec.Write(buf[:n])
			for {
				frame, ok, ferr := dec.Next()
				if ferr != nil {
					c.log.WithError(ferr).Warn("invalid frame, dropping connection")
					return
				}
				if !ok {
					break
				}
				if !c.handleFrame(frame) {
					return
				}
			}
		}
		if err != nil {
			if err != io.EOF && c.server.ctx.Err() == nil {
				c.log.WithError(err).Debug("client read ended")
			}
			return
		}
	}
}

func (c *session) send(m dtc.Message) {
	buf, err := dtc.EncodeFrame(m)
	if err != nil {
		c.log.WithError(err).Error("frame encode failed")
		return
	}
	c.sendRaw(buf)
}

func (c *session) sendRaw(buf []byte) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.nc.Write(buf); err != nil {
		c.log.WithError(err).Debug("client write failed")
	}
}

// handleFrame serves one message; returning false closes the session.
func (c *session) handleFrame(f dtc.Frame) bool {
	metrics.IncClientMessage("in", strconv.Itoa(int(f.Type)))
	switch f.Type {
	case dtc.TypeEncodingRequest:
		if _, err := dtc.ParseEncodingRequest(f.Payload); err != nil {
			c.log.WithError(err).Warn("malformed encoding request")
			return false
		}
		c.sendRaw(dtc.EncodingResponseFrame())
	case dtc.TypeLogonRequest:
		var req dtc.LogonRequest
		if err := req.Unmarshal(f.Payload); err != nil {
			c.log.WithError(err).Warn("malformed logon request")
			return false
		}
		c.send(&dtc.LogonResponse{
			ProtocolVersion:              dtc.ProtocolVersion,
			Result:                       dtc.LogonSuccess,
			ResultText:                   "Historical data",
			ServerName:                   c.server.config.Bridge.ServerName,
			SymbolExchangeDelimiter:      "-",
			HistoricalPriceDataSupported: true,
			OneHistoricalPriceDataRequestPerConnection: true,
		})
	case dtc.TypeHeartbeat:
		// Liveness only.
	case dtc.TypeLogoff:
		return false
	case dtc.TypeHistoricalPriceDataRequest:
		var req dtc.HistoricalPriceDataRequest
		if err := req.Unmarshal(f.Payload); err != nil {
			c.log.WithError(err).Warn("malformed historical price data request")
			return false
		}
		c.handleQuery(&req)
	default:
		c.log.WithFields(logger.Fields{"type": int(f.Type)}).Warn("unsupported message dropped")
	}
	return true
}

func (c *session) reject(requestID int32, text string) {
	c.send(&dtc.HistoricalPriceDataReject{
		RequestID:  requestID,
		RejectText: text,
	})
}

// queryBounds converts the request's whole-second bounds to scan bounds.
// Zero start means from the epoch; zero end means open-ended; a set end
// includes its whole second.
func queryBounds(req *dtc.HistoricalPriceDataRequest) (time.Time, time.Time) {
	var start, end time.Time
	if req.StartDateTime != 0 {
		start = time.Unix(req.StartDateTime, 0).UTC()
	}
	if req.EndDateTime != 0 {
		end = time.Unix(req.EndDateTime, 0).Add(time.Second - time.Nanosecond).UTC()
	}
	return start, end
}

func (c *session) handleQuery(req *dtc.HistoricalPriceDataRequest) {
	store, ok := c.server.stores[req.Symbol]
	if !ok || req.Exchange != exchangeName {
		metrics.IncHistoryQuery("reject")
		c.reject(req.RequestID, "Unknown symbol "+req.Symbol)
		return
	}
	start, end := queryBounds(req)
	span := time.Duration(req.RecordInterval) * time.Second

	_, found, err := store.First(start, end)
	if err != nil {
		c.log.WithError(err).Error("tick scan failed")
		metrics.IncHistoryQuery("reject")
		c.reject(req.RequestID, "Storage error")
		return
	}

	c.send(&dtc.HistoricalPriceDataResponseHeader{
		RequestID:              req.RequestID,
		RecordInterval:         req.RecordInterval,
		NoRecordsToReturn:      !found,
		IntToFloatPriceDivisor: 1,
	})
	if !found {
		return
	}

	if span == 0 {
		metrics.IncHistoryQuery("ticks")
		err = c.streamTicks(req, store, start, end)
	} else {
		metrics.IncHistoryQuery("bars")
		err = c.streamBars(req, store, start, end, span)
	}
	if err != nil {
		c.log.WithError(err).Error("historical stream failed")
		return
	}
	c.log.WithFields(logger.Fields{
		"symbol":   req.Symbol,
		"interval": int(req.RecordInterval),
	}).Debug("historical query served")
}

// streamTicks serves a span-zero query: one tick record per stored trade,
// then the final-record sentinel.
func (c *session) streamTicks(req *dtc.HistoricalPriceDataRequest, store *Store, start, end time.Time) error {
	err := store.Scan(start, end, func(t Tick) error {
		at := dtc.AtBid
		if t.Side == market.SideBuy {
			at = dtc.AtAsk
		}
		c.send(&dtc.HistoricalPriceDataTickRecordResponse{
			RequestID:  req.RequestID,
			DateTime:   float64(t.TS.UnixNano()) / 1e9,
			AtBidOrAsk: at,
			Price:      t.Price(),
			Volume:     t.Qty(),
		})
		return nil
	})
	if err != nil {
		return err
	}
	c.send(&dtc.HistoricalPriceDataTickRecordResponse{
		RequestID:     req.RequestID,
		IsFinalRecord: true,
	})
	return nil
}

// streamBars serves a bucketed query: granulate the scan into span-sized
// OHLCV records, then the final-record sentinel.
func (c *session) streamBars(req *dtc.HistoricalPriceDataRequest, store *Store, start, end time.Time, span time.Duration) error {
	g := NewGranulator(span, func(b Bar) error {
		c.send(&dtc.HistoricalPriceDataRecordResponse{
			RequestID:     req.RequestID,
			StartDateTime: b.Start.Unix(),
			OpenPrice:     b.Open,
			HighPrice:     b.High,
			LowPrice:      b.Low,
			LastPrice:     b.Last,
			Volume:        b.Volume,
			NumTrades:     b.NumTrades,
			BidVolume:     b.BidVolume,
			AskVolume:     b.AskVolume,
		})
		return nil
	})
	if err := store.Scan(start, end, g.Feed); err != nil {
		return err
	}
	if err := g.Flush(); err != nil {
		return err
	}
	c.send(&dtc.HistoricalPriceDataRecordResponse{
		RequestID:     req.RequestID,
		IsFinalRecord: true,
	})
	return nil
}
