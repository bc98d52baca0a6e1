// Package angelone is the REST client for the Angel One SmartAPI brokerage
// endpoints this backend depends on: session login, last traded price,
// historical candles, and scrip search.
package angelone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"marketpulse/internal/domain"
)

const (
	loginPath  = "/rest/auth/angelbroking/user/v1/loginByPassword"
	ltpPath    = "/rest/secure/angelbroking/order/v1/getLtpData"
	candlePath = "/rest/secure/angelbroking/historical/v1/getCandleData"
	searchPath = "/rest/secure/angelbroking/order/v1/searchScrip"

	// candleDateLayout is the fromdate/todate format SmartAPI expects.
	candleDateLayout = "2006-01-02 15:04"
)

// Client is the REST client for the SmartAPI.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	mu        sync.RWMutex
	authToken string
}

// NewClient creates a new SmartAPI client.
//
// baseURL is the API root, e.g. "https://apiconnect.angelbroking.com".
// apiKey is the application private key sent in the X-PrivateKey header.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetAuthToken installs the JWT used for secure endpoints. Safe to call from
// another goroutine.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.authToken = token
	c.mu.Unlock()
}

// Connected reports whether a session token has been installed.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authToken != ""
}

// Login generates a SmartAPI session and installs the returned JWT on the
// client for subsequent secure calls.
func (c *Client) Login(ctx context.Context, clientCode, pin, totp string) (Session, error) {
	body, err := c.doRequest(ctx, loginPath, loginRequest{
		ClientCode: clientCode,
		Password:   pin,
		TOTP:       totp,
	})
	if err != nil {
		return Session{}, fmt.Errorf("angelone: login: %w", err)
	}

	var resp struct {
		apiEnvelope
		Data Session `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Session{}, fmt.Errorf("angelone: decode login response: %w", err)
	}
	if !resp.Status {
		return Session{}, fmt.Errorf("angelone: login rejected: %s (%s): %w",
			resp.Message, resp.ErrorCode, domain.ErrUnauthorized)
	}
	if resp.Data.JWTToken == "" {
		return Session{}, fmt.Errorf("angelone: login returned no token: %w", domain.ErrUnauthorized)
	}

	c.SetAuthToken(resp.Data.JWTToken)
	return resp.Data, nil
}

// LastPrice returns the latest traded price for the instrument.
func (c *Client) LastPrice(ctx context.Context, exchange, symbol, token string) (float64, error) {
	if !c.Connected() {
		return 0, domain.ErrNotConnected
	}

	body, err := c.doRequest(ctx, ltpPath, ltpRequest{
		Exchange:      exchange,
		TradingSymbol: strings.TrimSuffix(symbol, ".BSE"),
		SymbolToken:   token,
	})
	if err != nil {
		return 0, fmt.Errorf("angelone: ltp %s: %w", symbol, err)
	}

	var resp struct {
		apiEnvelope
		Data *ltpData `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("angelone: decode ltp response: %w", err)
	}
	if !resp.Status || resp.Data == nil {
		return 0, envelopeError("ltp "+symbol, resp.apiEnvelope)
	}

	return resp.Data.LTP, nil
}

// DailyBars returns candles for the token over [from, to]. An empty slice
// with a nil error means the provider reported no data for the window.
func (c *Client) DailyBars(ctx context.Context, exchange, token, interval string, from, to time.Time) ([]domain.Bar, error) {
	if !c.Connected() {
		return nil, domain.ErrNotConnected
	}

	body, err := c.doRequest(ctx, candlePath, candleRequest{
		Exchange:    exchange,
		SymbolToken: token,
		Interval:    interval,
		FromDate:    from.Format(candleDateLayout),
		ToDate:      to.Format(candleDateLayout),
	})
	if err != nil {
		return nil, fmt.Errorf("angelone: candles %s: %w", token, err)
	}

	var resp struct {
		apiEnvelope
		Data [][]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("angelone: decode candle response: %w", err)
	}
	if !resp.Status {
		// "no data" for the window is a normal outcome, not an error.
		if resp.ErrorCode == "AB1004" || strings.Contains(strings.ToLower(resp.Message), "no data") {
			return nil, nil
		}
		return nil, envelopeError("candles "+token, resp.apiEnvelope)
	}

	bars := make([]domain.Bar, 0, len(resp.Data))
	for _, row := range resp.Data {
		bar, err := parseBar(row)
		if err != nil {
			return nil, fmt.Errorf("angelone: candles %s: %w", token, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// SearchScrip maps a free-text query to candidate instruments. An unknown
// query yields an empty slice, not an error.
func (c *Client) SearchScrip(ctx context.Context, exchange, query string) ([]domain.Scrip, error) {
	if !c.Connected() {
		return nil, domain.ErrNotConnected
	}

	body, err := c.doRequest(ctx, searchPath, searchRequest{
		Exchange:    exchange,
		SearchScrip: query,
	})
	if err != nil {
		return nil, fmt.Errorf("angelone: search %q: %w", query, err)
	}

	var resp struct {
		apiEnvelope
		Data []scripData `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("angelone: decode search response: %w", err)
	}
	if !resp.Status {
		return nil, envelopeError("search "+query, resp.apiEnvelope)
	}

	scrips := make([]domain.Scrip, 0, len(resp.Data))
	for _, s := range resp.Data {
		scrips = append(scrips, domain.Scrip{
			Exchange: s.Exchange,
			Symbol:   s.TradingSymbol,
			Token:    s.SymbolToken,
		})
	}
	return scrips, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doRequest builds, sends, and reads a SmartAPI POST request. All SmartAPI
// endpoints used here are JSON-over-POST.
func (c *Client) doRequest(ctx context.Context, path string, reqBody any) ([]byte, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-UserType", "USER")
	req.Header.Set("X-SourceID", "WEB")
	req.Header.Set("X-PrivateKey", c.apiKey)

	c.mu.RLock()
	token := c.authToken
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkStatus(resp.StatusCode, respBody); err != nil {
		return nil, err
	}

	return respBody, nil
}

// checkStatus maps non-2xx HTTP status codes to domain errors.
func checkStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	var env apiEnvelope
	_ = json.Unmarshal(body, &env)

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("HTTP %d: %s (%s): %w", statusCode, env.Message, env.ErrorCode, domain.ErrUnauthorized)
	case http.StatusNotFound:
		return fmt.Errorf("HTTP %d: %s (%s): %w", statusCode, env.Message, env.ErrorCode, domain.ErrNotFound)
	case http.StatusTooManyRequests:
		return fmt.Errorf("HTTP %d: %s (%s): %w", statusCode, env.Message, env.ErrorCode, domain.ErrRateLimited)
	default:
		return fmt.Errorf("HTTP %d: %s (%s): %w", statusCode, env.Message, env.ErrorCode, domain.ErrUpstream)
	}
}

// envelopeError maps a status=false SmartAPI envelope to a domain error.
// AG8xxx codes indicate an invalid or expired session token.
func envelopeError(op string, env apiEnvelope) error {
	kind := domain.ErrUpstream
	switch {
	case strings.HasPrefix(env.ErrorCode, "AG8"):
		kind = domain.ErrUnauthorized
	case env.ErrorCode == "AB1004":
		kind = domain.ErrNotFound
	}
	return fmt.Errorf("angelone: %s: %s (%s): %w", op, env.Message, env.ErrorCode, kind)
}

// parseBar decodes one candle row: [timestamp, open, high, low, close, volume].
func parseBar(row []json.RawMessage) (domain.Bar, error) {
	if len(row) < 6 {
		return domain.Bar{}, fmt.Errorf("candle row has %d fields, want 6", len(row))
	}

	var tsStr string
	if err := json.Unmarshal(row[0], &tsStr); err != nil {
		return domain.Bar{}, fmt.Errorf("candle timestamp: %w", err)
	}
	ts, err := time.Parse(time.RFC3339, tsStr)
	if err != nil {
		return domain.Bar{}, fmt.Errorf("candle timestamp %q: %w", tsStr, err)
	}

	var vals [5]float64
	for i := 1; i < 6; i++ {
		if err := json.Unmarshal(row[i], &vals[i-1]); err != nil {
			return domain.Bar{}, fmt.Errorf("candle field %d: %w", i, err)
		}
	}

	return domain.Bar{
		Timestamp: ts,
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    int64(vals[4]),
	}, nil
}

// Compile-time interface check.
var _ domain.QuoteProvider = (*Client)(nil)
