package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bitsouk/config"
	"bitsouk/internal/bridge"
	"bitsouk/internal/btrex"
	"bitsouk/internal/feed"
	"bitsouk/internal/market"
	"bitsouk/internal/metrics"
	"bitsouk/internal/pidfile"
	"bitsouk/internal/restsync"
	"bitsouk/logger"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	updateClientSpan := flag.Duration("update-client-span", 30*time.Second, "Interval between per-client account refreshes")
	heartbeat := flag.Duration("heartbeat", 0, "Outbound upstream websocket heartbeat interval (0 uses the transport default)")
	timeout := flag.Duration("timeout", 60*time.Second, "Upstream feed watchdog timeout")
	useTLS := flag.Bool("tls", false, "Serve DTC over TLS")
	port := flag.Int("port", 5573, "DTC listen port")
	daemon := flag.Bool("daemon", false, "Run as a daemon under the service supervisor")
	pidFile := flag.String("pidfile", "run/btrex.pid", "Pid file path")
	logFile := flag.String("logfile", "log/btrex.log", "Log file path")
	logLevel := flag.Int("loglevel", 2, "Log level (1=error, 2=info, 3=debug)")
	logLevelDtc := flag.Int("loglevel-dtc", 2, "DTC subsystem log level (1=error, 2=info, 3=debug)")
	logLevelBtrex := flag.Int("loglevel-btrex", 2, "Exchange subsystem log level (1=error, 2=info, 3=debug)")
	crtFile := flag.String("crt-file", "ssl/bitsouk.com.crt", "TLS certificate file")
	keyFile := flag.String("key-file", "ssl/bitsouk.com.key", "TLS key file")
	sierraChart := flag.Bool("sc", false, "Sierra Chart compatibility mode")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus scrape address (empty disables)")

	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	// Flags given on the command line beat the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "update-client-span":
			cfg.Bridge.UpdateClientSpan = *updateClientSpan
		case "heartbeat":
			cfg.Upstream.WsHeartbeat = *heartbeat
		case "timeout":
			cfg.Upstream.WatchdogTimeout = *timeout
		case "tls":
			cfg.Bridge.TLS = *useTLS
		case "port":
			cfg.Bridge.Port = *port
		case "daemon":
			cfg.Bridge.Daemon = *daemon
		case "pidfile":
			cfg.Bridge.PidFile = *pidFile
		case "logfile":
			cfg.Logging.Output = *logFile
		case "loglevel":
			cfg.Logging.Level = logger.LevelName(*logLevel)
		case "loglevel-dtc":
			cfg.Logging.LevelDtc = logger.LevelName(*logLevelDtc)
		case "loglevel-btrex":
			cfg.Logging.LevelBtrex = logger.LevelName(*logLevelBtrex)
		case "crt-file":
			cfg.Bridge.CrtFile = *crtFile
		case "key-file":
			cfg.Bridge.KeyFile = *keyFile
		case "sc":
			cfg.Bridge.SierraChart = *sierraChart
		case "metrics-addr":
			cfg.Metrics.Addr = *metricsAddr
		}
	})

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}
	if err := logger.SetSubsystemLevel("dtc", cfg.Logging.LevelDtc); err != nil {
		log.WithError(err).Error("Failed to configure dtc logger")
		os.Exit(1)
	}
	if err := logger.SetSubsystemLevel("btrex", cfg.Logging.LevelBtrex); err != nil {
		log.WithError(err).Error("Failed to configure btrex logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service": cfg.Bitsouk.Name,
		"version": cfg.Bitsouk.Version,
	}).Info("starting btrexdtc")

	if cfg.Bridge.Daemon {
		log.WithComponent("main").Info("daemon mode requested; process supervision is external")
	}

	if err := pidfile.Write(cfg.Bridge.PidFile); err != nil {
		log.WithError(err).Error("Failed to acquire pid file")
		os.Exit(1)
	}

	fatal := func(err error, msg string) {
		log.WithError(err).Error(msg)
		pidfile.Remove(cfg.Bridge.PidFile)
		os.Exit(1)
	}

	metrics.Init(cfg.Metrics.Addr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := market.NewStore()
	client := btrex.New(cfg)
	queue := restsync.Default()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		queue.Run(ctx)
	}()

	// The bridge cannot serve logons without the symbol universe; a failed
	// bootstrap aborts the process.
	if err := bootstrap(ctx, store, client, queue); err != nil {
		fatal(err, "Failed to fetch exchange metadata")
	}
	log.WithFields(logger.Fields{"symbols": len(store.Symbols())}).Info("exchange metadata loaded")

	registry := bridge.NewRegistry(cfg, store, client, queue)
	supervisor := feed.NewSupervisor(cfg, store, registry)
	refresher := feed.NewRefresher(cfg, store, client, queue, registry)
	server := bridge.NewServer(cfg, registry)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := supervisor.Start(ctx); err != nil {
			log.WithError(err).Warn("feed supervisor failed to start")
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := refresher.Start(ctx); err != nil {
			log.WithError(err).Warn("ticker refresher failed to start")
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Start(ctx); err != nil {
			log.WithError(err).Warn("dtc server failed to start")
		}
	}()

	time.Sleep(2 * time.Second)
	log.Info("all components started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.WithFields(logger.Fields{"signal": sig.String()}).Info("shutdown signal received")

	log.Info("starting graceful shutdown")
	cancel()

	log.Info("stopping dtc server")
	server.Stop()

	log.Info("stopping ticker refresher")
	refresher.Stop()

	log.Info("stopping feed supervisor")
	supervisor.Stop()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("graceful shutdown completed")
	case <-time.After(30 * time.Second):
		log.Warn("graceful shutdown timeout exceeded")
	}

	pidfile.Remove(cfg.Bridge.PidFile)
	log.Info("btrexdtc stopped")
}

// bootstrap seeds the currency, market and ticker tables through the rest
// queue before any client can connect.
func bootstrap(ctx context.Context, store *market.Store, client *btrex.Client, queue *restsync.Queue) error {
	if err := <-queue.Push("currencies", func() error {
		currencies, err := client.Currencies(ctx)
		if err != nil {
			return err
		}
		store.SetCurrencies(currencies)
		return nil
	}); err != nil {
		return fmt.Errorf("fetch currencies: %w", err)
	}

	if err := <-queue.Push("markets", func() error {
		markets, err := client.Markets(ctx)
		if err != nil {
			return err
		}
		store.SetMarkets(markets)
		return nil
	}); err != nil {
		return fmt.Errorf("fetch markets: %w", err)
	}

	if err := <-queue.Push("tickers", func() error {
		tickers, err := client.Tickers(ctx)
		if err != nil {
			return err
		}
		now := time.Now()
		for symbol, t := range tickers {
			store.SetTicker(symbol, t, now)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("fetch tickers: %w", err)
	}
	return nil
}
