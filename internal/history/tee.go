package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	kafka "github.com/segmentio/kafka-go"

	"bitsouk/config"
	"bitsouk/logger"
)

// teeRecord is the published form of one stored tick.
type teeRecord struct {
	Symbol string  `json:"symbol"`
	TS     int64   `json:"ts"`
	Side   string  `json:"side"`
	Price  float64 `json:"price"`
	Qty    float64 `json:"qty"`
}

// Tee copies every persisted tick onto a kafka topic for downstream
// consumers. Publishing is asynchronous and lossy: when the channel is
// full the pump moves on rather than stall ingestion.
type Tee struct {
	config  config.KafkaConfig
	writer  *kafka.Writer
	in      chan teeRecord
	ctx     context.Context
	wg      *sync.WaitGroup
	mu      sync.Mutex
	running bool
	log     *logger.Log
}

func NewTee(cfg config.KafkaConfig) (*Tee, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers not configured")
	}
	t := &Tee{
		config: cfg,
		writer: &kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers...),
			Topic:    cfg.Topic,
			Balancer: &kafka.LeastBytes{},
		},
		in:  make(chan teeRecord, 1024),
		wg:  &sync.WaitGroup{},
		log: logger.GetLogger(),
	}
	t.log.WithComponent("tee").WithFields(logger.Fields{
		"brokers": cfg.Brokers,
		"topic":   cfg.Topic,
	}).Debug("kafka tee initialized")
	return t, nil
}

func (t *Tee) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return fmt.Errorf("kafka tee already running")
	}
	t.running = true
	t.ctx = ctx
	t.mu.Unlock()

	t.wg.Add(1)
	go t.run()
	return nil
}

func (t *Tee) run() {
	defer t.wg.Done()
	log := t.log.WithComponent("tee")
	for {
		select {
		case <-t.ctx.Done():
			return
		case rec := <-t.in:
			data, err := json.Marshal(rec)
			if err != nil {
				log.WithError(err).Warn("failed to marshal tick")
				continue
			}
			msg := kafka.Message{
				Key:   []byte(rec.Symbol),
				Value: data,
			}
			if err := t.writer.WriteMessages(t.ctx, msg); err != nil {
				log.WithError(err).Warn("failed to write tick")
			}
		}
	}
}

// Publish queues a batch of stored ticks. Records beyond the channel's
// capacity are dropped.
func (t *Tee) Publish(symbol string, ticks []Tick) {
	for _, tick := range ticks {
		rec := teeRecord{
			Symbol: symbol,
			TS:     tick.TS.UnixNano(),
			Side:   tick.Side.String(),
			Price:  tick.Price(),
			Qty:    tick.Qty(),
		}
		select {
		case t.in <- rec:
		default:
			t.log.WithComponent("tee").Debug("tee channel full, tick dropped")
			return
		}
	}
}

func (t *Tee) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	t.mu.Unlock()

	t.writer.Close()
	t.wg.Wait()
	t.log.WithComponent("tee").Debug("kafka tee stopped")
}
