package history

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bitsouk/config"
	"bitsouk/internal/btrex"
	"bitsouk/internal/market"
	"bitsouk/internal/restsync"
)

// newTestPump wires a pump against a scripted trade history endpoint. The
// returned channel carries the [startDate, endDate] of every upstream call.
func newTestPump(t *testing.T, trades map[string]string) (*Pump, *Store, chan [2]string) {
	t.Helper()

	calls := make(chan [2]string, 16)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets/BTC-ETH/trades" {
			http.NotFound(w, r)
			return
		}
		start := r.URL.Query().Get("startDate")
		select {
		case calls <- [2]string{start, r.URL.Query().Get("endDate")}:
		default:
		}
		w.Header().Set("Content-Type", "application/json")
		if body, ok := trades[start]; ok {
			fmt.Fprint(w, body)
			return
		}
		fmt.Fprint(w, `[]`)
	}))
	t.Cleanup(upstream.Close)

	cfg := config.DefaultConfig()
	cfg.Upstream.RestURL = upstream.URL
	cfg.Upstream.RestTimeout = 5 * time.Second
	cfg.Upstream.RestRateLimit = 1000
	cfg.Upstream.RestRateBurst = 1000
	cfg.History.DataDir = t.TempDir()
	cfg.History.Start = "2021-07-01"

	queue := restsync.New(8)
	ctx, cancel := context.WithCancel(context.Background())
	go queue.Run(ctx)
	t.Cleanup(cancel)

	store, err := OpenStore(cfg.History.DataDir, "BTC-ETH")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	pump, err := NewPump(cfg, btrex.New(cfg), queue, map[string]*Store{"BTC-ETH": store}, nil)
	if err != nil {
		t.Fatalf("new pump: %v", err)
	}
	pump.ctx = context.Background()
	return pump, store, calls
}

func TestPumpStepFetchesStoresAndMarks(t *testing.T) {
	pump, store, calls := newTestPump(t, map[string]string{
		"2021-07-01T00:00:00Z": `[
			{"id":"0b4b1b55-bc41-4504-a54c-9e8897a5ad9f","executedAt":"2021-07-01T00:10:00Z","quantity":"0.25","rate":"0.0505","takerSide":"SELL"},
			{"id":"9a2ed1f3-0f4e-4a17-8f5a-6cf2baba6a01","executedAt":"2021-07-01T00:20:00Z","quantity":"1.5","rate":"0.051","takerSide":"BUY"}
		]`,
	})
	ctrlPath := filepath.Join(pump.config.History.DataDir, "BTC-ETH.ctrl")
	ctrl, err := OpenCtrlFile(ctrlPath)
	if err != nil {
		t.Fatalf("open ctrl file: %v", err)
	}

	if !pump.step(store, ctrl) {
		t.Fatal("a long-closed window should report more work pending")
	}
	if call := <-calls; call != [2]string{"2021-07-01T00:00:00Z", "2021-07-01T01:00:00Z"} {
		t.Fatalf("fetched window = %v", call)
	}

	got := collect(t, store, time.Time{}, time.Time{})
	if len(got) != 2 {
		t.Fatalf("stored %d ticks, want 2", len(got))
	}
	first := got[0]
	if !first.TS.Equal(time.Date(2021, 7, 1, 0, 10, 0, 0, time.UTC)) ||
		first.Side != market.SideSell || first.PriceSat != 5050000 || first.QtySat != 25000000 {
		t.Errorf("first tick = %+v", first)
	}
	second := got[1]
	if second.Side != market.SideBuy || second.PriceSat != 5100000 || second.QtySat != 150000000 {
		t.Errorf("second tick = %+v", second)
	}

	win := time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC)
	if !ctrl.Fetched(win) {
		t.Error("fetched window not recorded")
	}
	if _, err := os.Stat(ctrlPath); err != nil {
		t.Errorf("ctrl file not persisted: %v", err)
	}

	// The walk advances one hour per step.
	pump.step(store, ctrl)
	if call := <-calls; call[0] != "2021-07-01T01:00:00Z" {
		t.Fatalf("second window starts %s, want the next hour", call[0])
	}
	if got := collect(t, store, time.Time{}, time.Time{}); len(got) != 2 {
		t.Errorf("empty window added ticks: %d stored", len(got))
	}
	if !ctrl.Fetched(win.Add(time.Hour)) {
		t.Error("second window not recorded")
	}
}

func TestPumpDryRunLeavesStoreEmpty(t *testing.T) {
	pump, store, calls := newTestPump(t, map[string]string{
		"2021-07-01T00:00:00Z": `[
			{"id":"3f8e0d2a-5c1b-4a3e-9d57-2f10c4a7e6b2","executedAt":"2021-07-01T00:05:00Z","quantity":"2","rate":"0.05","takerSide":"BUY"}
		]`,
	})
	pump.config.History.DryRun = true
	ctrl := NewMemCtrlFile()

	if !pump.step(store, ctrl) {
		t.Fatal("dry run should still report more work pending")
	}
	<-calls

	if got := collect(t, store, time.Time{}, time.Time{}); len(got) != 0 {
		t.Errorf("dry run persisted %d ticks", len(got))
	}
	if !ctrl.Fetched(time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("dry run window not recorded in memory")
	}
}

func TestNewPumpStartDate(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.History.Start = ""
	pump, err := NewPump(cfg, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("new pump: %v", err)
	}
	if !pump.start.Equal(genesis) {
		t.Errorf("default start = %v, want genesis", pump.start)
	}

	cfg.History.Start = "2021-07-01"
	pump, err = NewPump(cfg, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("new pump: %v", err)
	}
	if !pump.start.Equal(time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", pump.start)
	}

	cfg.History.Start = "July 1st"
	if _, err := NewPump(cfg, nil, nil, nil, nil); err == nil {
		t.Fatal("unparseable start date should fail")
	}
}
