package btrex

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"bitsouk/internal/market"
	"bitsouk/logger"
)

const (
	defaultReconnectDelay = 5 * time.Second
	defaultKeepAlive      = 20 * time.Second
)

// FeedEvent is one decoded market stream frame: FeedSnapshot, FeedUpdate,
// FeedTrade or FeedError.
type FeedEvent interface {
	feedEvent()
}

// FeedSnapshot is the initial book for a freshly subscribed symbol. It is
// the only frame carrying the symbol; later frames reference SubID.
type FeedSnapshot struct {
	SubID  int64
	Symbol string
	Bids   map[float64]float64
	Asks   map[float64]float64
}

// FeedUpdate is a single level change against a snapshotted stream.
type FeedUpdate struct {
	SubID    int64
	Side     market.Side
	Price    float64
	Quantity float64
}

// FeedTrade is one public trade on a snapshotted stream.
type FeedTrade struct {
	SubID     int64
	Timestamp time.Time
	Side      market.Side
	Price     float64
	Quantity  float64
}

// FeedError is an upstream-reported error frame.
type FeedError struct {
	Text string
}

func (FeedSnapshot) feedEvent() {}
func (FeedUpdate) feedEvent()   {}
func (FeedTrade) feedEvent()    {}
func (FeedError) feedEvent()    {}

type feedFrame struct {
	Type    string      `json:"type"`
	SubID   int64       `json:"subid"`
	Symbol  string      `json:"symbol"`
	Bids    [][2]string `json:"bids"`
	Asks    [][2]string `json:"asks"`
	Side    string      `json:"side"`
	Price   string      `json:"price"`
	Qty     string      `json:"qty"`
	TS      time.Time   `json:"ts"`
	Message string      `json:"message"`
}

func parseLevels(pairs [][2]string) (map[float64]float64, error) {
	out := make(map[float64]float64, len(pairs))
	for _, p := range pairs {
		price, err := optFloat(p[0])
		if err != nil {
			return nil, fmt.Errorf("level price %q: %w", p[0], err)
		}
		qty, err := optFloat(p[1])
		if err != nil {
			return nil, fmt.Errorf("level qty %q: %w", p[1], err)
		}
		out[price] = qty
	}
	return out, nil
}

// ParseFeedMessage decodes one raw stream frame.
func ParseFeedMessage(data []byte) (FeedEvent, error) {
	var raw feedFrame
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("feed frame: %w", err)
	}
	switch raw.Type {
	case "snapshot":
		bids, err := parseLevels(raw.Bids)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", raw.Symbol, err)
		}
		asks, err := parseLevels(raw.Asks)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", raw.Symbol, err)
		}
		return FeedSnapshot{SubID: raw.SubID, Symbol: raw.Symbol, Bids: bids, Asks: asks}, nil
	case "update":
		side, err := market.ParseSide(raw.Side)
		if err != nil {
			return nil, fmt.Errorf("update subid %d: %w", raw.SubID, err)
		}
		price, err := optFloat(raw.Price)
		if err != nil {
			return nil, fmt.Errorf("update subid %d price: %w", raw.SubID, err)
		}
		qty, err := optFloat(raw.Qty)
		if err != nil {
			return nil, fmt.Errorf("update subid %d qty: %w", raw.SubID, err)
		}
		return FeedUpdate{SubID: raw.SubID, Side: side, Price: price, Quantity: qty}, nil
	case "trade":
		side, err := market.ParseSide(raw.Side)
		if err != nil {
			return nil, fmt.Errorf("trade subid %d: %w", raw.SubID, err)
		}
		price, err := optFloat(raw.Price)
		if err != nil {
			return nil, fmt.Errorf("trade subid %d price: %w", raw.SubID, err)
		}
		qty, err := optFloat(raw.Qty)
		if err != nil {
			return nil, fmt.Errorf("trade subid %d qty: %w", raw.SubID, err)
		}
		return FeedTrade{SubID: raw.SubID, Timestamp: raw.TS, Side: side, Price: price, Quantity: qty}, nil
	case "error":
		return FeedError{Text: raw.Message}, nil
	}
	return nil, fmt.Errorf("feed frame: unknown type %q", raw.Type)
}

// StreamConfig configures the reconnecting market stream session.
type StreamConfig struct {
	URL            string
	ReconnectDelay time.Duration
	Heartbeat      time.Duration
	// Symbols is called on every (re)connect; one subscribe command is
	// sent per returned symbol. Stream ids change across reconnects, so
	// the caller must rebuild its subid table from snapshots.
	Symbols func() []string
	// Handler receives every raw frame.
	Handler func(data []byte)
	// OnConn fires with the live connection once subscriptions are sent,
	// and with nil when the connection is torn down. The caller may close
	// the connection to force a reconnect.
	OnConn func(*websocket.Conn)
}

// RunStream keeps exactly one upstream WebSocket alive until ctx is
// canceled, redialing after ReconnectDelay on any failure.
func RunStream(ctx context.Context, cfg StreamConfig, log *logger.Entry) {
	delay := cfg.ReconnectDelay
	if delay <= 0 {
		delay = defaultReconnectDelay
	}
	dialer := websocket.DefaultDialer
	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := dialer.DialContext(ctx, cfg.URL, nil)
		if err != nil {
			log.WithError(err).WithFields(logger.Fields{"url": cfg.URL}).Warn("failed to connect to market stream")
			if waitForReconnect(ctx, delay) {
				return
			}
			continue
		}

		if err := subscribeSymbols(conn, cfg.Symbols()); err != nil {
			log.WithError(err).WithFields(logger.Fields{"url": cfg.URL}).Warn("failed to subscribe to market stream")
			conn.Close()
			if waitForReconnect(ctx, delay) {
				return
			}
			continue
		}
		if cfg.OnConn != nil {
			cfg.OnConn(conn)
		}

		// Closing the connection on cancel unblocks the read loop.
		stopWatch := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				conn.Close()
			case <-stopWatch:
			}
		}()

		pingCancel := startPingLoop(ctx, conn, cfg.Heartbeat, log)

		if err := readFrames(ctx, conn, cfg.Handler); err != nil && ctx.Err() == nil {
			log.WithError(err).WithFields(logger.Fields{"url": cfg.URL}).Warn("market stream read loop ended")
		}

		pingCancel()
		close(stopWatch)
		if cfg.OnConn != nil {
			cfg.OnConn(nil)
		}
		conn.Close()

		if ctx.Err() != nil {
			return
		}
		if waitForReconnect(ctx, delay) {
			return
		}
	}
}

func subscribeSymbols(conn *websocket.Conn, symbols []string) error {
	for _, sym := range symbols {
		req := struct {
			Op     string `json:"op"`
			Symbol string `json:"symbol"`
		}{
			Op:     "subscribe",
			Symbol: sym,
		}
		if err := conn.WriteJSON(req); err != nil {
			return fmt.Errorf("subscribe %s: %w", sym, err)
		}
	}
	return nil
}

func readFrames(ctx context.Context, conn *websocket.Conn, handler func([]byte)) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if handler != nil {
			handler(msg)
		}
	}
}

func waitForReconnect(ctx context.Context, delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return true
	case <-timer.C:
		return false
	}
}

func startPingLoop(ctx context.Context, conn *websocket.Conn, interval time.Duration, log *logger.Entry) context.CancelFunc {
	if interval <= 0 {
		interval = defaultKeepAlive
	}
	pingCtx, cancel := context.WithCancel(ctx)
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-pingCtx.Done():
				return
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(time.Second))
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
					log.WithError(err).Warn("failed to send stream ping")
					cancel()
					return
				}
			}
		}
	}()
	return cancel
}
