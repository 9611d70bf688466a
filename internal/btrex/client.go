package btrex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"bitsouk/config"
	"bitsouk/internal/market"
	"bitsouk/logger"
)

// Client calls the exchange REST API. One instance is shared by the whole
// process; per-connection credentials are passed per call. All requests
// pace through one rate limiter, on top of the serialization the rest
// queue already provides.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     *logger.Entry
	now     func() time.Time
}

func New(cfg *config.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.Upstream.RestURL, "/"),
		http:    &http.Client{Timeout: cfg.Upstream.RestTimeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.Upstream.RestRateLimit), cfg.Upstream.RestRateBurst),
		log:     logger.Sub("btrex").WithComponent("btrex"),
		now:     time.Now,
	}
}

func (c *Client) do(ctx context.Context, creds *Credentials, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if creds != nil && !creds.Empty() {
		sign(req, *creds, payload, c.now())
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message() == "" {
			apiErr.Code = resp.Status
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// optFloat parses an exchange decimal string, treating absent as zero.
func optFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', 8, 64)
}

func sideFromDirection(s string) (market.Side, error) {
	return market.ParseSide(strings.ToLower(s))
}

type currencyDTO struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	TxFee  string `json:"txFee"`
	Status string `json:"status"`
}

// Currencies fetches the currency metadata table.
func (c *Client) Currencies(ctx context.Context) ([]market.Currency, error) {
	var dtos []currencyDTO
	if err := c.do(ctx, nil, http.MethodGet, "/currencies", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]market.Currency, 0, len(dtos))
	for _, d := range dtos {
		fee, err := optFloat(d.TxFee)
		if err != nil {
			return nil, fmt.Errorf("currency %s: %w", d.Symbol, err)
		}
		out = append(out, market.Currency{
			Symbol: d.Symbol,
			Name:   d.Name,
			TxFee:  fee,
			Active: d.Status == "ONLINE",
		})
	}
	return out, nil
}

type marketDTO struct {
	Symbol        string `json:"symbol"`
	BaseCurrency  string `json:"baseCurrencySymbol"`
	QuoteCurrency string `json:"quoteCurrencySymbol"`
	MinTradeSize  string `json:"minTradeSize"`
	Status        string `json:"status"`
	MarginEnabled bool   `json:"marginEnabled"`
}

// Markets fetches the tradable pair table, including the margin flag used
// to route order entry.
func (c *Client) Markets(ctx context.Context) ([]market.Market, error) {
	var dtos []marketDTO
	if err := c.do(ctx, nil, http.MethodGet, "/markets", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]market.Market, 0, len(dtos))
	for _, d := range dtos {
		minSize, err := optFloat(d.MinTradeSize)
		if err != nil {
			return nil, fmt.Errorf("market %s: %w", d.Symbol, err)
		}
		out = append(out, market.Market{
			Symbol:        d.Symbol,
			BaseCurrency:  d.BaseCurrency,
			QuoteCurrency: d.QuoteCurrency,
			MinTradeSize:  minSize,
			Active:        d.Status == "ONLINE",
			MarginEnabled: d.MarginEnabled,
		})
	}
	return out, nil
}

type tickerDTO struct {
	Symbol string `json:"symbol"`
	Bid    string `json:"bidRate"`
	Ask    string `json:"askRate"`
	Last   string `json:"lastTradeRate"`
	High   string `json:"high"`
	Low    string `json:"low"`
	Volume string `json:"volume"`
}

func (d tickerDTO) ticker() (market.Ticker, error) {
	var t market.Ticker
	var err error
	if t.Bid, err = optFloat(d.Bid); err != nil {
		return t, err
	}
	if t.Ask, err = optFloat(d.Ask); err != nil {
		return t, err
	}
	if t.Last, err = optFloat(d.Last); err != nil {
		return t, err
	}
	if t.High24h, err = optFloat(d.High); err != nil {
		return t, err
	}
	if t.Low24h, err = optFloat(d.Low); err != nil {
		return t, err
	}
	if t.BaseVolume, err = optFloat(d.Volume); err != nil {
		return t, err
	}
	return t, nil
}

// Tickers fetches the 24h summary for every market, keyed by symbol.
func (c *Client) Tickers(ctx context.Context) (map[string]market.Ticker, error) {
	var dtos []tickerDTO
	if err := c.do(ctx, nil, http.MethodGet, "/markets/tickers", nil, &dtos); err != nil {
		return nil, err
	}
	out := make(map[string]market.Ticker, len(dtos))
	for _, d := range dtos {
		t, err := d.ticker()
		if err != nil {
			return nil, fmt.Errorf("ticker %s: %w", d.Symbol, err)
		}
		out[d.Symbol] = t
	}
	return out, nil
}

type tradeDTO struct {
	ID         string    `json:"id"`
	ExecutedAt time.Time `json:"executedAt"`
	Quantity   string    `json:"quantity"`
	Rate       string    `json:"rate"`
	TakerSide  string    `json:"takerSide"`
}

func (d tradeDTO) tick() (TradeTick, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return TradeTick{}, fmt.Errorf("trade id %q: %w", d.ID, err)
	}
	side, err := sideFromDirection(d.TakerSide)
	if err != nil {
		return TradeTick{}, err
	}
	price, err := optFloat(d.Rate)
	if err != nil {
		return TradeTick{}, fmt.Errorf("trade %s rate: %w", d.ID, err)
	}
	qty, err := optFloat(d.Quantity)
	if err != nil {
		return TradeTick{}, fmt.Errorf("trade %s quantity: %w", d.ID, err)
	}
	return TradeTick{ID: id, ExecutedAt: d.ExecutedAt, Side: side, Price: price, Quantity: qty}, nil
}

// MarketTrades fetches public trades for one symbol inside [start, end),
// oldest first.
func (c *Client) MarketTrades(ctx context.Context, symbol string, start, end time.Time) ([]TradeTick, error) {
	q := url.Values{}
	q.Set("startDate", start.UTC().Format(time.RFC3339))
	q.Set("endDate", end.UTC().Format(time.RFC3339))
	path := "/markets/" + url.PathEscape(symbol) + "/trades?" + q.Encode()
	var dtos []tradeDTO
	if err := c.do(ctx, nil, http.MethodGet, path, nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]TradeTick, 0, len(dtos))
	for _, d := range dtos {
		t, err := d.tick()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

type marginSummaryDTO struct {
	AccountValue    string `json:"accountValue"`
	TotalCollateral string `json:"totalCollateral"`
}

// MarginAccountSummary probes the margin account. It doubles as the
// credential check at logon: any exchange error means the key pair is not
// valid for trading.
func (c *Client) MarginAccountSummary(ctx context.Context, creds Credentials) (MarginSummary, error) {
	var dto marginSummaryDTO
	if err := c.do(ctx, &creds, http.MethodGet, "/margin/account", nil, &dto); err != nil {
		return MarginSummary{}, err
	}
	value, err := optFloat(dto.AccountValue)
	if err != nil {
		return MarginSummary{}, fmt.Errorf("margin account value: %w", err)
	}
	collateral, err := optFloat(dto.TotalCollateral)
	if err != nil {
		return MarginSummary{}, fmt.Errorf("margin collateral: %w", err)
	}
	return MarginSummary{AccountValue: value, TotalCollateral: collateral}, nil
}

type balanceDTO struct {
	Currency  string `json:"currencySymbol"`
	Total     string `json:"total"`
	Available string `json:"available"`
	BtcValue  string `json:"btcValue"`
}

// Balances fetches the exchange wallet.
func (c *Client) Balances(ctx context.Context, creds Credentials) ([]Balance, error) {
	var dtos []balanceDTO
	if err := c.do(ctx, &creds, http.MethodGet, "/balances", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]Balance, 0, len(dtos))
	for _, d := range dtos {
		total, err := optFloat(d.Total)
		if err != nil {
			return nil, fmt.Errorf("balance %s: %w", d.Currency, err)
		}
		avail, err := optFloat(d.Available)
		if err != nil {
			return nil, fmt.Errorf("balance %s: %w", d.Currency, err)
		}
		btc, err := optFloat(d.BtcValue)
		if err != nil {
			return nil, fmt.Errorf("balance %s: %w", d.Currency, err)
		}
		out = append(out, Balance{
			Currency:  d.Currency,
			Available: avail,
			OnOrders:  total - avail,
			BtcValue:  btc,
		})
	}
	return out, nil
}

type marginBalanceDTO struct {
	Currency string `json:"currencySymbol"`
	Balance  string `json:"balance"`
}

// MarginBalances fetches the margin wallet as currency → amount.
func (c *Client) MarginBalances(ctx context.Context, creds Credentials) (map[string]float64, error) {
	var dtos []marginBalanceDTO
	if err := c.do(ctx, &creds, http.MethodGet, "/margin/balances", nil, &dtos); err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(dtos))
	for _, d := range dtos {
		v, err := optFloat(d.Balance)
		if err != nil {
			return nil, fmt.Errorf("margin balance %s: %w", d.Currency, err)
		}
		out[d.Currency] = v
	}
	return out, nil
}

type positionDTO struct {
	ID        string `json:"id"`
	Symbol    string `json:"marketSymbol"`
	Quantity  string `json:"quantity"`
	BasePrice string `json:"basePrice"`
}

// MarginPositions fetches open margin positions.
func (c *Client) MarginPositions(ctx context.Context, creds Credentials) ([]Position, error) {
	var dtos []positionDTO
	if err := c.do(ctx, &creds, http.MethodGet, "/margin/positions", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]Position, 0, len(dtos))
	for _, d := range dtos {
		id, err := uuid.Parse(d.ID)
		if err != nil {
			return nil, fmt.Errorf("position id %q: %w", d.ID, err)
		}
		qty, err := optFloat(d.Quantity)
		if err != nil {
			return nil, fmt.Errorf("position %s: %w", d.ID, err)
		}
		base, err := optFloat(d.BasePrice)
		if err != nil {
			return nil, fmt.Errorf("position %s: %w", d.ID, err)
		}
		out = append(out, Position{ID: id, Symbol: d.Symbol, Quantity: qty, BasePrice: base})
	}
	return out, nil
}

type fillDTO struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"orderId"`
	Symbol     string    `json:"marketSymbol"`
	Direction  string    `json:"direction"`
	Rate       string    `json:"rate"`
	Quantity   string    `json:"quantity"`
	ExecutedAt time.Time `json:"executedAt"`
}

func (d fillDTO) fill() (Fill, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return Fill{}, fmt.Errorf("fill id %q: %w", d.ID, err)
	}
	var orderID uuid.UUID
	if d.OrderID != "" {
		if orderID, err = uuid.Parse(d.OrderID); err != nil {
			return Fill{}, fmt.Errorf("fill %s order id: %w", d.ID, err)
		}
	}
	var side market.Side
	if d.Direction != "" {
		if side, err = sideFromDirection(d.Direction); err != nil {
			return Fill{}, err
		}
	}
	price, err := optFloat(d.Rate)
	if err != nil {
		return Fill{}, fmt.Errorf("fill %s rate: %w", d.ID, err)
	}
	qty, err := optFloat(d.Quantity)
	if err != nil {
		return Fill{}, fmt.Errorf("fill %s quantity: %w", d.ID, err)
	}
	return Fill{
		ID:         id,
		OrderID:    orderID,
		Symbol:     d.Symbol,
		Side:       side,
		Price:      price,
		Quantity:   qty,
		ExecutedAt: d.ExecutedAt,
	}, nil
}

// Executions fetches the account's historical fills, newest first.
func (c *Client) Executions(ctx context.Context, creds Credentials) ([]Fill, error) {
	var dtos []fillDTO
	if err := c.do(ctx, &creds, http.MethodGet, "/executions", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]Fill, 0, len(dtos))
	for _, d := range dtos {
		f, err := d.fill()
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

type orderDTO struct {
	ID           string    `json:"id"`
	Symbol       string    `json:"marketSymbol"`
	Direction    string    `json:"direction"`
	Type         string    `json:"type"`
	Quantity     string    `json:"quantity"`
	Limit        string    `json:"limit"`
	FillQuantity string    `json:"fillQuantity"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	Fills        []fillDTO `json:"fills"`
}

func (d orderDTO) order() (Order, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return Order{}, fmt.Errorf("order id %q: %w", d.ID, err)
	}
	side, err := sideFromDirection(d.Direction)
	if err != nil {
		return Order{}, err
	}
	qty, err := optFloat(d.Quantity)
	if err != nil {
		return Order{}, fmt.Errorf("order %s quantity: %w", d.ID, err)
	}
	limit, err := optFloat(d.Limit)
	if err != nil {
		return Order{}, fmt.Errorf("order %s limit: %w", d.ID, err)
	}
	filled, err := optFloat(d.FillQuantity)
	if err != nil {
		return Order{}, fmt.Errorf("order %s fill quantity: %w", d.ID, err)
	}
	return Order{
		ID:        id,
		Symbol:    d.Symbol,
		Side:      side,
		Type:      d.Type,
		Quantity:  qty,
		Limit:     limit,
		Filled:    filled,
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
	}, nil
}

func (d orderDTO) result() (OrderResult, error) {
	o, err := d.order()
	if err != nil {
		return OrderResult{}, err
	}
	res := OrderResult{ID: o.ID, AmountUnfilled: o.Quantity - o.Filled}
	for _, f := range d.Fills {
		fill, err := f.fill()
		if err != nil {
			return OrderResult{}, err
		}
		res.Trades = append(res.Trades, fill)
	}
	return res, nil
}

// OpenOrders fetches the account's open orders.
func (c *Client) OpenOrders(ctx context.Context, creds Credentials) ([]Order, error) {
	var dtos []orderDTO
	if err := c.do(ctx, &creds, http.MethodGet, "/orders/open", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(dtos))
	for _, d := range dtos {
		o, err := d.order()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

type newOrderBody struct {
	MarketSymbol string `json:"marketSymbol"`
	Direction    string `json:"direction"`
	Type         string `json:"type"`
	Quantity     string `json:"quantity"`
	Limit        string `json:"limit,omitempty"`
	TimeInForce  string `json:"timeInForce,omitempty"`
}

func orderBody(req NewOrder) newOrderBody {
	direction := "BUY"
	if req.Side == market.SideSell {
		direction = "SELL"
	}
	body := newOrderBody{
		MarketSymbol: req.Symbol,
		Direction:    direction,
		Type:         "LIMIT",
		Quantity:     formatQty(req.Quantity),
		TimeInForce:  req.TimeInForce,
	}
	if req.Limit > 0 {
		body.Limit = formatQty(req.Limit)
	}
	return body
}

// SubmitOrder places a spot order.
func (c *Client) SubmitOrder(ctx context.Context, creds Credentials, req NewOrder) (OrderResult, error) {
	var dto orderDTO
	if err := c.do(ctx, &creds, http.MethodPost, "/orders", orderBody(req), &dto); err != nil {
		return OrderResult{}, err
	}
	return dto.result()
}

// SubmitMarginOrder places a margin order.
func (c *Client) SubmitMarginOrder(ctx context.Context, creds Credentials, req NewOrder) (OrderResult, error) {
	var dto orderDTO
	if err := c.do(ctx, &creds, http.MethodPost, "/margin/orders", orderBody(req), &dto); err != nil {
		return OrderResult{}, err
	}
	return dto.result()
}

// CancelOrder cancels one order by id.
func (c *Client) CancelOrder(ctx context.Context, creds Credentials, id uuid.UUID) error {
	return c.do(ctx, &creds, http.MethodDelete, "/orders/"+id.String(), nil, nil)
}

type modifyOrderBody struct {
	Quantity string `json:"quantity,omitempty"`
	Limit    string `json:"limit,omitempty"`
}

// ModifyOrder adjusts quantity and/or limit price of an open order. The
// exchange cancels and re-books under a fresh id, returned in the result.
func (c *Client) ModifyOrder(ctx context.Context, creds Credentials, id uuid.UUID, mod ModifyOrder) (OrderResult, error) {
	body := modifyOrderBody{}
	if mod.Quantity > 0 {
		body.Quantity = formatQty(mod.Quantity)
	}
	if mod.Limit > 0 {
		body.Limit = formatQty(mod.Limit)
	}
	var dto orderDTO
	if err := c.do(ctx, &creds, http.MethodPost, "/orders/"+id.String()+"/modify", body, &dto); err != nil {
		return OrderResult{}, err
	}
	return dto.result()
}
