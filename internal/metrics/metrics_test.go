package metrics

import "testing"

func TestHelpersSafeWhenDisabled(t *testing.T) {
	// Init was never called with an address, so every helper must be a
	// no-op rather than a nil dereference.
	IncRestCall("tickers", true)
	IncRestCall("tickers", false)
	IncRestQueueDropped("balances")
	IncClientConnections()
	DecClientConnections()
	IncClientMessage("in", "1")
	IncClientDropped()
	IncFeedEvent("snapshot")
	IncFeedReconnect()
	AddTicksStored("BTC-ETH", 3)
	IncHistoryQuery("bars")
}

func TestInitEmptyAddrDisabled(t *testing.T) {
	Init("")
	if restCalls != nil {
		t.Fatalf("expected collectors to stay unregistered with empty addr")
	}
}
