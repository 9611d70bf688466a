package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bitsouk/config"
	"bitsouk/internal/btrex"
	"bitsouk/internal/history"
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
	dryRun := flag.Bool("dry-run", false, "Fetch trade history without persisting anything")
	noPump := flag.Bool("no-pump", false, "Serve existing data without ingesting")
	start := flag.String("start", "", "Backfill start date (YYYY-MM-DD, default exchange genesis)")
	port := flag.Int("port", 5576, "DTC listen port")
	daemon := flag.Bool("daemon", false, "Run as a daemon under the service supervisor")
	dataDir := flag.String("datadir", "data/bittrex", "Tick store directory")
	pidFile := flag.String("pidfile", "run/btrexhist.pid", "Pid file path")
	logFile := flag.String("logfile", "log/btrexhist.log", "Log file path")
	logLevel := flag.Int("loglevel", 2, "Log level (1=error, 2=info, 3=debug)")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus scrape address (empty disables)")
	kafkaBrokers := flag.String("kafka-brokers", "", "Comma-separated kafka brokers for the tick tee (empty disables)")
	kafkaTopic := flag.String("kafka-topic", "", "Kafka topic for the tick tee")

	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	// Flags given on the command line beat the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dry-run":
			cfg.History.DryRun = *dryRun
		case "no-pump":
			cfg.History.NoPump = *noPump
		case "start":
			cfg.History.Start = *start
		case "port":
			cfg.History.Port = *port
		case "daemon":
			cfg.History.Daemon = *daemon
		case "datadir":
			cfg.History.DataDir = *dataDir
		case "pidfile":
			cfg.History.PidFile = *pidFile
		case "logfile":
			cfg.Logging.Output = *logFile
		case "loglevel":
			cfg.Logging.Level = logger.LevelName(*logLevel)
		case "metrics-addr":
			cfg.Metrics.Addr = *metricsAddr
		case "kafka-brokers":
			cfg.History.Kafka.Brokers = splitBrokers(*kafkaBrokers)
		case "kafka-topic":
			cfg.History.Kafka.Topic = *kafkaTopic
		}
	})

	// Trailing arguments are the symbols to serve.
	symbols := flag.Args()
	if len(symbols) == 0 {
		symbols = cfg.History.Symbols
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service": cfg.Bitsouk.Name,
		"version": cfg.Bitsouk.Version,
		"symbols": symbols,
	}).Info("starting btrexhist")

	if len(symbols) == 0 {
		log.Error("No symbols configured; pass them as trailing arguments or set history.symbols")
		os.Exit(1)
	}

	if cfg.History.Daemon {
		log.WithComponent("main").Info("daemon mode requested; process supervision is external")
	}

	if err := pidfile.Write(cfg.History.PidFile); err != nil {
		log.WithError(err).Error("Failed to acquire pid file")
		os.Exit(1)
	}

	fatal := func(err error, msg string) {
		log.WithError(err).Error(msg)
		pidfile.Remove(cfg.History.PidFile)
		os.Exit(1)
	}

	metrics.Init(cfg.Metrics.Addr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The store open also takes the symbol's on-disk lock, so a second
	// instance on the same datadir fails here.
	stores := make(map[string]*history.Store, len(symbols))
	for _, symbol := range symbols {
		st, err := history.OpenStore(cfg.History.DataDir, symbol)
		if err != nil {
			fatal(err, "Failed to open tick store")
		}
		stores[symbol] = st
	}

	client := btrex.New(cfg)
	queue := restsync.Default()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		queue.Run(ctx)
	}()

	var tee *history.Tee
	if len(cfg.History.Kafka.Brokers) > 0 {
		tee, err = history.NewTee(cfg.History.Kafka)
		if err != nil {
			fatal(err, "Failed to build kafka tee")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tee.Start(ctx); err != nil {
				log.WithError(err).Warn("kafka tee failed to start")
			}
		}()
	}

	var pump *history.Pump
	if cfg.History.NoPump {
		log.WithComponent("main").Info("pump disabled; serving existing data only")
	} else {
		pump, err = history.NewPump(cfg, client, queue, stores, tee)
		if err != nil {
			fatal(err, "Failed to build pump")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := pump.Start(ctx); err != nil {
				log.WithError(err).Warn("pump failed to start")
			}
		}()
	}

	server := history.NewServer(cfg, stores)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Start(ctx); err != nil {
			log.WithError(err).Warn("history server failed to start")
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

	log.Info("stopping history server")
	server.Stop()

	if pump != nil {
		log.Info("stopping pump")
		pump.Stop()
	}

	if tee != nil {
		log.Info("stopping kafka tee")
		tee.Stop()
	}

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

	for _, st := range stores {
		if err := st.Close(); err != nil {
			log.WithError(err).Warn("tick store close failed")
		}
	}

	pidfile.Remove(cfg.History.PidFile)
	log.Info("btrexhist stopped")
}

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
