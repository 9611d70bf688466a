package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Bitsouk  BitsoukConfig  `yaml:"bitsouk"`
	Bridge   BridgeConfig   `yaml:"bridge"`
	History  HistoryConfig  `yaml:"history"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type BitsoukConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// BridgeConfig drives the live DTC server.
type BridgeConfig struct {
	Port             int           `yaml:"port"`
	TLS              bool          `yaml:"tls"`
	CrtFile          string        `yaml:"crt_file"`
	KeyFile          string        `yaml:"key_file"`
	ServerName       string        `yaml:"server_name"`
	UpdateClientSpan time.Duration `yaml:"update_client_span"`
	SierraChart      bool          `yaml:"sierra_chart"`
	Daemon           bool          `yaml:"daemon"`
	PidFile          string        `yaml:"pid_file"`
}

// HistoryConfig drives the historical data service.
type HistoryConfig struct {
	Port    int         `yaml:"port"`
	DataDir string      `yaml:"data_dir"`
	DryRun  bool        `yaml:"dry_run"`
	NoPump  bool        `yaml:"no_pump"`
	Start   string      `yaml:"start"`
	Symbols []string    `yaml:"symbols"`
	Daemon  bool        `yaml:"daemon"`
	PidFile string      `yaml:"pid_file"`
	Kafka   KafkaConfig `yaml:"kafka"`
}

// KafkaConfig enables the optional tick tee in the pump. Empty brokers
// disable it.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// UpstreamConfig describes the exchange endpoints and the resilience knobs
// around them.
type UpstreamConfig struct {
	RestURL               string        `yaml:"rest_url"`
	WsURL                 string        `yaml:"ws_url"`
	RestTimeout           time.Duration `yaml:"rest_timeout"`
	RestRateLimit         float64       `yaml:"rest_rate_limit"`
	RestRateBurst         int           `yaml:"rest_rate_burst"`
	WatchdogTimeout       time.Duration `yaml:"watchdog_timeout"`
	WsHeartbeat           time.Duration `yaml:"ws_heartbeat"`
	TickerRefresh         time.Duration `yaml:"ticker_refresh"`
	EmitLastTradeSnapshot bool          `yaml:"emit_last_trade_snapshot"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	LevelDtc   string `yaml:"level_dtc"`
	LevelBtrex string `yaml:"level_btrex"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	MaxAge     int    `yaml:"max_age"`
}

// DefaultConfig returns a configuration carrying every documented default.
// The CLI flags in cmd/ override individual fields after loading.
func DefaultConfig() *Config {
	return &Config{
		Bitsouk: BitsoukConfig{
			Name:    "bitsouk",
			Version: "dev",
		},
		Bridge: BridgeConfig{
			Port:             5573,
			CrtFile:          "ssl/bitsouk.com.crt",
			KeyFile:          "ssl/bitsouk.com.key",
			ServerName:       "Bitsouk",
			UpdateClientSpan: 30 * time.Second,
			PidFile:          "run/btrex.pid",
		},
		History: HistoryConfig{
			Port:    5576,
			DataDir: "data/bittrex",
			PidFile: "run/btrexhist.pid",
		},
		Upstream: UpstreamConfig{
			RestURL:         "https://api.bittrex.com/v3",
			WsURL:           "wss://socket.bittrex.com/v3",
			RestTimeout:     30 * time.Second,
			RestRateLimit:   5,
			RestRateBurst:   10,
			WatchdogTimeout: 60 * time.Second,
			TickerRefresh:   60 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LevelDtc:   "info",
			LevelBtrex: "info",
			Format:     "json",
			Output:     "log/btrex.log",
			MaxAge:     7,
		},
	}
}

// LoadConfig reads a yaml file over the defaults. An empty path returns the
// defaults untouched.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Override upstream endpoints from environment variables if available
	if v := os.Getenv("BTREX_REST_URL"); v != "" {
		config.Upstream.RestURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("BTREX_WS_URL"); v != "" {
		config.Upstream.WsURL = strings.TrimSpace(v)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Bitsouk.Name == "" {
		return fmt.Errorf("bitsouk.name is required")
	}

	if cfg.Bridge.Port <= 0 || cfg.Bridge.Port > 65535 {
		return fmt.Errorf("bridge.port must be in 1..65535")
	}
	if cfg.History.Port <= 0 || cfg.History.Port > 65535 {
		return fmt.Errorf("history.port must be in 1..65535")
	}
	if cfg.Bridge.UpdateClientSpan <= 0 {
		return fmt.Errorf("bridge.update_client_span must be greater than 0")
	}
	if cfg.Bridge.TLS {
		if cfg.Bridge.CrtFile == "" || cfg.Bridge.KeyFile == "" {
			return fmt.Errorf("bridge.crt_file and bridge.key_file are required when TLS is enabled")
		}
	}

	if cfg.Upstream.RestURL == "" {
		return fmt.Errorf("upstream.rest_url is required")
	}
	if cfg.Upstream.WsURL == "" {
		return fmt.Errorf("upstream.ws_url is required")
	}
	if cfg.Upstream.RestTimeout <= 0 {
		return fmt.Errorf("upstream.rest_timeout must be greater than 0")
	}
	if cfg.Upstream.RestRateLimit <= 0 {
		return fmt.Errorf("upstream.rest_rate_limit must be greater than 0")
	}
	if cfg.Upstream.WatchdogTimeout <= 0 {
		return fmt.Errorf("upstream.watchdog_timeout must be greater than 0")
	}
	if cfg.Upstream.TickerRefresh <= 0 {
		return fmt.Errorf("upstream.ticker_refresh must be greater than 0")
	}

	if cfg.History.DataDir == "" {
		return fmt.Errorf("history.data_dir is required")
	}
	if len(cfg.History.Kafka.Brokers) > 0 && cfg.History.Kafka.Topic == "" {
		return fmt.Errorf("history.kafka.topic is required when brokers are configured")
	}

	return nil
}
