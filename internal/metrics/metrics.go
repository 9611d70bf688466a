// Package metrics registers the process Prometheus collectors:
//
//	bitsouk_rest_calls_total / bitsouk_rest_call_errors_total
//	bitsouk_client_connections and per-type client message counters
//	bitsouk_feed_events_total / bitsouk_feed_reconnects_total
//	bitsouk_ticks_stored_total / bitsouk_history_queries_total
//	go_* and process_* system metrics
//
// and exposes them on addr/metrics through the Prometheus HTTP handler. An
// empty addr disables the listener and every helper becomes a no-op.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bitsouk/logger"
)

var (
	once sync.Once

	restCalls        *prometheus.CounterVec
	restErrors       *prometheus.CounterVec
	restQueueDropped *prometheus.CounterVec
	clientConns      prometheus.Gauge
	clientMessages   *prometheus.CounterVec
	clientDropped    prometheus.Counter
	feedEvents       *prometheus.CounterVec
	feedReconnects   prometheus.Counter
	ticksStored      *prometheus.CounterVec
	historyQueries   *prometheus.CounterVec
)

// Init registers the collectors and starts the scrape endpoint. Called once
// from main; an empty addr leaves metrics disabled.
func Init(addr string) {
	if addr == "" {
		return
	}
	once.Do(func() {
		restCalls = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bitsouk_rest_calls_total",
				Help: "Number of upstream REST calls executed",
			},
			[]string{"call"},
		)
		restErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bitsouk_rest_call_errors_total",
				Help: "Number of upstream REST calls that failed",
			},
			[]string{"call"},
		)
		restQueueDropped = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bitsouk_rest_queue_dropped_total",
				Help: "Number of REST calls dropped because the queue was full",
			},
			[]string{"call"},
		)
		clientConns = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bitsouk_client_connections",
				Help: "Currently connected trading clients",
			},
		)
		clientMessages = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bitsouk_client_messages_total",
				Help: "Number of client messages, by direction and message type",
			},
			[]string{"direction", "type"},
		)
		clientDropped = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bitsouk_client_dropped_total",
				Help: "Number of outbound client messages dropped on busy writers",
			},
		)
		feedEvents = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bitsouk_feed_events_total",
				Help: "Number of upstream feed events received, by kind",
			},
			[]string{"kind"},
		)
		feedReconnects = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bitsouk_feed_reconnects_total",
				Help: "Number of upstream feed reconnects",
			},
		)
		ticksStored = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bitsouk_ticks_stored_total",
				Help: "Number of trade ticks persisted, by symbol",
			},
			[]string{"symbol"},
		)
		historyQueries = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bitsouk_history_queries_total",
				Help: "Number of historical data requests, by outcome",
			},
			[]string{"kind"},
		)

		_ = prometheus.Register(restCalls)
		_ = prometheus.Register(restErrors)
		_ = prometheus.Register(restQueueDropped)
		_ = prometheus.Register(clientConns)
		_ = prometheus.Register(clientMessages)
		_ = prometheus.Register(clientDropped)
		_ = prometheus.Register(feedEvents)
		_ = prometheus.Register(feedReconnects)
		_ = prometheus.Register(ticksStored)
		_ = prometheus.Register(historyQueries)
		_ = prometheus.Register(collectors.NewGoCollector())
		_ = prometheus.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(addr, nil); err != nil {
				logger.GetLogger().WithComponent("metrics").WithError(err).Error("metrics server failed")
			}
		}()
	})
}

// IncRestCall counts one executed REST call and, when ok is false, one
// failure.
func IncRestCall(call string, ok bool) {
	if restCalls != nil {
		restCalls.WithLabelValues(call).Inc()
	}
	if !ok && restErrors != nil {
		restErrors.WithLabelValues(call).Inc()
	}
}

func IncRestQueueDropped(call string) {
	if restQueueDropped != nil {
		restQueueDropped.WithLabelValues(call).Inc()
	}
}

func IncClientConnections() {
	if clientConns != nil {
		clientConns.Inc()
	}
}

func DecClientConnections() {
	if clientConns != nil {
		clientConns.Dec()
	}
}

func IncClientMessage(direction, typ string) {
	if clientMessages != nil {
		clientMessages.WithLabelValues(direction, typ).Inc()
	}
}

func IncClientDropped() {
	if clientDropped != nil {
		clientDropped.Inc()
	}
}

func IncFeedEvent(kind string) {
	if feedEvents != nil {
		feedEvents.WithLabelValues(kind).Inc()
	}
}

func IncFeedReconnect() {
	if feedReconnects != nil {
		feedReconnects.Inc()
	}
}

// AddTicksStored counts persisted trade ticks for one symbol.
func AddTicksStored(symbol string, n int) {
	if ticksStored != nil && n > 0 {
		ticksStored.WithLabelValues(symbol).Add(float64(n))
	}
}

// IncHistoryQuery counts one historical data request: "ticks" or "bars"
// when served, "reject" otherwise.
func IncHistoryQuery(kind string) {
	if historyQueries != nil {
		historyQueries.WithLabelValues(kind).Inc()
	}
}
