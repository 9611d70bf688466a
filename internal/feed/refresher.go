package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bitsouk/config"
	"bitsouk/internal/btrex"
	"bitsouk/internal/market"
	"bitsouk/internal/restsync"
	"bitsouk/logger"
)

// TickerDelta is one refreshed ticker together with which session fields
// moved since the previous poll. First marks a symbol never seen before;
// first sightings carry no field changes.
type TickerDelta struct {
	Symbol        string
	Ticker        market.Ticker
	First         bool
	VolumeChanged bool
	LowChanged    bool
	HighChanged   bool
	QuoteChanged  bool
}

// Refresher polls the REST ticker table on a fixed interval through the
// rest queue and reports per-symbol deltas to the sink.
type Refresher struct {
	config  *config.Config
	store   *market.Store
	client  *btrex.Client
	queue   *restsync.Queue
	sink    Sink
	wg      *sync.WaitGroup
	mu      sync.Mutex
	running bool
	ctx     context.Context
	log     *logger.Log
}

func NewRefresher(cfg *config.Config, store *market.Store, client *btrex.Client, queue *restsync.Queue, sink Sink) *Refresher {
	return &Refresher{
		config: cfg,
		store:  store,
		client: client,
		queue:  queue,
		sink:   sink,
		wg:     &sync.WaitGroup{},
		log:    logger.Sub("btrex"),
	}
}

// Start launches the polling loop.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("ticker refresher already running")
	}
	r.running = true
	r.ctx = ctx
	r.mu.Unlock()

	interval := r.config.Upstream.TickerRefresh
	if interval <= 0 {
		interval = time.Minute
	}
	r.log.WithComponent("refresher").WithFields(logger.Fields{"interval": interval.String()}).Info("starting ticker refresher")

	r.wg.Add(1)
	go r.loop(interval)
	return nil
}

// Stop waits for the polling loop to exit.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	r.wg.Wait()
	r.log.WithComponent("refresher").Info("ticker refresher stopped")
}

func (r *Refresher) loop(interval time.Duration) {
	defer r.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log := r.log.WithComponent("refresher")
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			if err := r.queue.PushNowait("tickers", r.refresh); err != nil {
				log.WithError(err).Warn("failed to enqueue ticker refresh")
			}
		}
	}
}

// refresh runs on the rest queue consumer.
func (r *Refresher) refresh() error {
	tickers, err := r.client.Tickers(r.ctx)
	if err != nil {
		return fmt.Errorf("refresh tickers: %w", err)
	}
	now := time.Now()
	for symbol, cur := range tickers {
		prev, _, known := r.store.Ticker(symbol)
		if !r.store.SetTicker(symbol, cur, now) {
			continue
		}
		delta := TickerDelta{Symbol: symbol, Ticker: cur, First: !known}
		if known {
			delta.VolumeChanged = cur.BaseVolume != prev.BaseVolume
			delta.LowChanged = cur.Low24h != prev.Low24h
			delta.HighChanged = cur.High24h != prev.High24h
			delta.QuoteChanged = cur.Bid != prev.Bid || cur.Ask != prev.Ask
		}
		if !delta.First && !delta.VolumeChanged && !delta.LowChanged && !delta.HighChanged && !delta.QuoteChanged {
			continue
		}
		r.sink.TickerChanged(delta)
	}
	return nil
}
