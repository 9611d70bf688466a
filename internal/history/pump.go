package history

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"bitsouk/config"
	"bitsouk/internal/btrex"
	"bitsouk/internal/metrics"
	"bitsouk/internal/restsync"
	"bitsouk/logger"
)

// pumpIdleInterval paces the pump once a symbol is caught up: the open
// hourly window is refetched this often until it closes.
const pumpIdleInterval = time.Minute

// Pump walks each symbol's hourly windows from the backfill start to the
// present, fetching trade history through the rest queue and persisting it
// to the symbol's store. Completed windows are recorded in the symbol's
// control file; the window still in progress is fetched again on every
// pass.
type Pump struct {
	config  *config.Config
	client  *btrex.Client
	queue   *restsync.Queue
	stores  map[string]*Store
	tee     *Tee
	start   time.Time
	wg      *sync.WaitGroup
	mu      sync.Mutex
	running bool
	ctx     context.Context
	log     *logger.Log
}

// NewPump builds the pump for the given symbol stores. An optional tee
// receives every persisted tick; nil disables it.
func NewPump(cfg *config.Config, client *btrex.Client, queue *restsync.Queue, stores map[string]*Store, tee *Tee) (*Pump, error) {
	start := genesis
	if cfg.History.Start != "" {
		parsed, err := time.Parse("2006-01-02", cfg.History.Start)
		if err != nil {
			return nil, fmt.Errorf("history: bad start date %q: %w", cfg.History.Start, err)
		}
		start = parsed.UTC()
	}
	return &Pump{
		config: cfg,
		client: client,
		queue:  queue,
		stores: stores,
		tee:    tee,
		start:  start,
		wg:     &sync.WaitGroup{},
		log:    logger.GetLogger(),
	}, nil
}

// Start launches one ingestion loop per symbol.
func (p *Pump) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("pump already running")
	}
	p.running = true
	p.ctx = ctx
	p.mu.Unlock()

	log := p.log.WithComponent("pump")
	for symbol, store := range p.stores {
		ctrl, err := p.openCtrl(symbol)
		if err != nil {
			return err
		}
		log.WithFields(logger.Fields{
			"symbol": symbol,
			"next":   ctrl.NextUnfetched(p.start).Format(time.RFC3339),
		}).Info("starting pump")
		p.wg.Add(1)
		go p.run(store, ctrl)
	}
	return nil
}

func (p *Pump) openCtrl(symbol string) (*CtrlFile, error) {
	if p.config.History.DryRun {
		return NewMemCtrlFile(), nil
	}
	return OpenCtrlFile(filepath.Join(p.config.History.DataDir, symbol+".ctrl"))
}

// Stop waits for the ingestion loops to exit.
func (p *Pump) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	p.wg.Wait()
	p.log.WithComponent("pump").Info("pump stopped")
}

func (p *Pump) run(store *Store, ctrl *CtrlFile) {
	defer p.wg.Done()
	for {
		caughtUp := !p.step(store, ctrl)
		if p.ctx.Err() != nil {
			return
		}
		if !caughtUp {
			continue
		}
		select {
		case <-p.ctx.Done():
			return
		case <-time.After(pumpIdleInterval):
		}
	}
}

// step fetches one hourly window. It reports whether another closed window
// is immediately ready, i.e. the backfill is still behind.
func (p *Pump) step(store *Store, ctrl *CtrlFile) bool {
	symbol := store.Symbol()
	win := ctrl.NextUnfetched(p.start)
	end := win.Add(time.Hour)
	log := p.log.WithComponent("pump").WithFields(logger.Fields{
		"symbol": symbol,
		"window": win.Format(time.RFC3339),
	})

	var trades []btrex.TradeTick
	err := <-p.queue.Push("market_trades", func() error {
		var ferr error
		trades, ferr = p.client.MarketTrades(p.ctx, symbol, win, end)
		return ferr
	})
	if err != nil {
		log.WithError(err).Error("trade history fetch failed")
		return false
	}

	ticks := make([]Tick, 0, len(trades))
	for _, tr := range trades {
		ticks = append(ticks, tickFromTrade(tr))
	}

	if p.config.History.DryRun {
		log.WithFields(logger.Fields{"ticks": len(ticks)}).Info("dry run, window not persisted")
	} else if len(ticks) > 0 {
		n, werr := store.WriteTicks(ticks)
		if werr != nil {
			log.WithError(werr).Error("tick write failed")
			return false
		}
		metrics.AddTicksStored(symbol, n)
		if p.tee != nil {
			p.tee.Publish(symbol, ticks)
		}
		log.WithFields(logger.Fields{"ticks": n}).Debug("window stored")
	}

	if err := ctrl.MarkFetched(win); err != nil {
		log.WithError(err).Error("ctrl file update failed")
	}
	// A window that closed means the next one may already be waiting; the
	// open window gets polled again after the idle interval instead.
	return !end.After(time.Now())
}
